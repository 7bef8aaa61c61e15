package msgpack

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Pack encodes a value to MessagePack bytes using DefaultOptions.
func Pack(v *Value) ([]byte, error) {
	return PackWithOptions(v, DefaultOptions())
}

// PackWithOptions encodes a value with explicit options. Encoding is
// deterministic: equal inputs under equal options produce identical
// bytes. On error no partial output is returned.
func PackWithOptions(v *Value, opts Options) ([]byte, error) {
	p := &packer{opts: opts}
	if err := p.pack(v); err != nil {
		return nil, err
	}
	return p.buf, nil
}

type packer struct {
	buf  []byte
	opts Options
}

func (p *packer) pack(v *Value) error {
	if v == nil || v.kind == KindNil {
		p.buf = append(p.buf, tagNil)
		return nil
	}

	switch v.kind {
	case KindBool:
		if v.boolVal {
			p.buf = append(p.buf, tagTrue)
		} else {
			p.buf = append(p.buf, tagFalse)
		}
		return nil

	case KindInt:
		p.packInt(v.intVal)
		return nil

	case KindUint:
		p.packUint(v.uintVal)
		return nil

	case KindFloat:
		p.packFloat(v.floatVal)
		return nil

	case KindString:
		return p.packString(v.strVal)

	case KindBinary:
		return p.packBin(v.binVal)

	case KindArray:
		return p.packArray(v.arrayVal)

	case KindMap:
		return p.packMapEntries(v.mapVal)

	case KindTable:
		return p.packTable(v.mapVal)

	case KindExt:
		return p.packExt(v.extType, v.extData)

	default:
		return fmt.Errorf("%w (kind %d)", ErrUnsupportedKind, uint8(v.kind))
	}
}

// ============================================================
// Numeric packing
// ============================================================

// packInt picks the smallest signed wire class. Non-negative values
// share the unsigned classes.
func (p *packer) packInt(i int64) {
	if i >= 0 {
		p.packUint(uint64(i))
		return
	}
	switch {
	case i >= -32:
		p.buf = append(p.buf, byte(i))
	case i >= math.MinInt8:
		p.buf = append(p.buf, tagInt8, byte(i))
	case i >= math.MinInt16:
		p.buf = append(p.buf, tagInt16)
		p.buf = binary.BigEndian.AppendUint16(p.buf, uint16(i))
	case i >= math.MinInt32:
		p.buf = append(p.buf, tagInt32)
		p.buf = binary.BigEndian.AppendUint32(p.buf, uint32(i))
	default:
		p.buf = append(p.buf, tagInt64)
		p.buf = binary.BigEndian.AppendUint64(p.buf, uint64(i))
	}
}

// packUint picks the smallest unsigned wire class.
func (p *packer) packUint(u uint64) {
	switch {
	case u <= uint64(posFixintMax):
		p.buf = append(p.buf, byte(u))
	case u <= max8:
		p.buf = append(p.buf, tagUint8, byte(u))
	case u <= max16:
		p.buf = append(p.buf, tagUint16)
		p.buf = binary.BigEndian.AppendUint16(p.buf, uint16(u))
	case u <= max32:
		p.buf = append(p.buf, tagUint32)
		p.buf = binary.BigEndian.AppendUint32(p.buf, uint32(u))
	default:
		p.buf = append(p.buf, tagUint64)
		p.buf = binary.BigEndian.AppendUint64(p.buf, u)
	}
}

// packFloat routes whole numbers to the integer classes and the rest
// to the configured float width. Integer magnitudes past 2^53 may have
// lost precision in the float64 before arriving here; the 64-bit wire
// form still carries whatever value remains.
func (p *packer) packFloat(f float64) {
	asInt, asUint := integralFloat(f)
	switch {
	case asInt:
		p.packInt(int64(f))
	case asUint:
		p.packUint(uint64(f))
	case p.opts.NumberMode == NumberFloat32:
		p.buf = append(p.buf, tagFloat32)
		p.buf = binary.BigEndian.AppendUint32(p.buf, float32WireBits(f))
	default:
		p.buf = append(p.buf, tagFloat64)
		p.buf = binary.BigEndian.AppendUint64(p.buf, float64WireBits(f))
	}
}

// ============================================================
// Strings and binary
// ============================================================

func (p *packer) packString(s string) error {
	n := len(s)
	if uint64(n) > max32 {
		return fmt.Errorf("%w: string of %d bytes", ErrOverflow, n)
	}

	switch p.opts.StringMode {
	case StringBinary:
		p.packBinHeader(n)

	case StringLegacy:
		switch {
		case n <= fixstrMaxLen:
			p.buf = append(p.buf, fixstrTag|byte(n))
		case n <= max16:
			p.buf = append(p.buf, tagStr16)
			p.buf = binary.BigEndian.AppendUint16(p.buf, uint16(n))
		default:
			p.buf = append(p.buf, tagStr32)
			p.buf = binary.BigEndian.AppendUint32(p.buf, uint32(n))
		}

	default: // StringModern
		switch {
		case n <= fixstrMaxLen:
			p.buf = append(p.buf, fixstrTag|byte(n))
		case n <= max8:
			p.buf = append(p.buf, tagStr8, byte(n))
		case n <= max16:
			p.buf = append(p.buf, tagStr16)
			p.buf = binary.BigEndian.AppendUint16(p.buf, uint16(n))
		default:
			p.buf = append(p.buf, tagStr32)
			p.buf = binary.BigEndian.AppendUint32(p.buf, uint32(n))
		}
	}

	p.buf = append(p.buf, s...)
	return nil
}

func (p *packer) packBin(b []byte) error {
	n := len(b)
	if uint64(n) > max32 {
		return fmt.Errorf("%w: binary of %d bytes", ErrOverflow, n)
	}
	p.packBinHeader(n)
	p.buf = append(p.buf, b...)
	return nil
}

func (p *packer) packBinHeader(n int) {
	switch {
	case n <= max8:
		p.buf = append(p.buf, tagBin8, byte(n))
	case n <= max16:
		p.buf = append(p.buf, tagBin16)
		p.buf = binary.BigEndian.AppendUint16(p.buf, uint16(n))
	default:
		p.buf = append(p.buf, tagBin32)
		p.buf = binary.BigEndian.AppendUint32(p.buf, uint32(n))
	}
}

// ============================================================
// Containers
// ============================================================

func (p *packer) packArray(elems []*Value) error {
	if err := p.packArrayHeader(len(elems)); err != nil {
		return err
	}
	for _, e := range elems {
		if err := p.pack(e); err != nil {
			return err
		}
	}
	return nil
}

func (p *packer) packArrayHeader(n int) error {
	switch {
	case n <= fixContainerMax:
		p.buf = append(p.buf, fixarrayTag|byte(n))
	case n <= max16:
		p.buf = append(p.buf, tagArray16)
		p.buf = binary.BigEndian.AppendUint16(p.buf, uint16(n))
	case uint64(n) <= max32:
		p.buf = append(p.buf, tagArray32)
		p.buf = binary.BigEndian.AppendUint32(p.buf, uint32(n))
	default:
		return fmt.Errorf("%w: array of %d elements", ErrOverflow, n)
	}
	return nil
}

func (p *packer) packMapEntries(entries []MapEntry) error {
	if err := p.packMapHeader(len(entries)); err != nil {
		return err
	}
	for _, e := range entries {
		if err := p.pack(e.Key); err != nil {
			return err
		}
		if err := p.pack(e.Value); err != nil {
			return err
		}
	}
	return nil
}

func (p *packer) packMapHeader(n int) error {
	switch {
	case n <= fixContainerMax:
		p.buf = append(p.buf, fixmapTag|byte(n))
	case n <= max16:
		p.buf = append(p.buf, tagMap16)
		p.buf = binary.BigEndian.AppendUint16(p.buf, uint16(n))
	case uint64(n) <= max32:
		p.buf = append(p.buf, tagMap32)
		p.buf = binary.BigEndian.AppendUint32(p.buf, uint32(n))
	default:
		return fmt.Errorf("%w: map of %d entries", ErrOverflow, n)
	}
	return nil
}

// packTable resolves a table's wire identity under the configured
// array mode, then emits it as an array or a map.
func (p *packer) packTable(entries []MapEntry) error {
	if p.opts.ArrayMode == ArrayAlwaysMap {
		return p.packMapEntries(entries)
	}

	high, allIndexed := indexSpan(entries)

	if p.opts.ArrayMode == ArrayStrict {
		if allIndexed && high == int64(len(entries)) {
			return p.packTableArray(entries, high)
		}
		return p.packMapEntries(entries)
	}

	// ArrayPermissive: any positive-integer key set qualifies, with
	// missing indices emitted as nil.
	if allIndexed {
		return p.packTableArray(entries, high)
	}
	return p.packMapEntries(entries)
}

func (p *packer) packTableArray(entries []MapEntry, high int64) error {
	if uint64(high) > max32 {
		return fmt.Errorf("%w: array of %d elements", ErrOverflow, high)
	}
	elems := make([]*Value, high)
	for _, e := range entries {
		idx, _ := arrayIndex(e.Key)
		elems[idx-1] = e.Value
	}
	if err := p.packArrayHeader(int(high)); err != nil {
		return err
	}
	for _, e := range elems {
		if err := p.pack(e); err != nil {
			return err
		}
	}
	return nil
}

// indexSpan scans table keys as 1-based array indices, returning the
// highest index seen and whether every key qualified.
func indexSpan(entries []MapEntry) (high int64, ok bool) {
	for _, e := range entries {
		idx, isIdx := arrayIndex(e.Key)
		if !isIdx {
			return 0, false
		}
		if idx > high {
			high = idx
		}
	}
	return high, true
}

// arrayIndex returns the positive integer index a key denotes, if any.
// Whole-number float keys count; dynamic hosts do not keep the two
// apart.
func arrayIndex(key *Value) (int64, bool) {
	if key == nil {
		return 0, false
	}
	switch key.kind {
	case KindInt:
		if key.intVal > 0 {
			return key.intVal, true
		}
	case KindFloat:
		f := key.floatVal
		if math.Trunc(f) == f && f > 0 && f < maxInt64Float {
			return int64(f), true
		}
	}
	return 0, false
}
