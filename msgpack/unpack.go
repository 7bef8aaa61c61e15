package msgpack

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Unpack decodes exactly one value from data using DefaultOptions.
func Unpack(data []byte) (*Value, error) {
	return UnpackWithOptions(data, DefaultOptions())
}

// UnpackWithOptions decodes exactly one value from data. When trailing
// bytes follow the value, both the decoded value and ErrExtraBytes are
// returned; the caller decides whether the trailing input matters.
// Decoded values never alias data.
func UnpackWithOptions(data []byte, opts Options) (*Value, error) {
	src := &bufferSource{data: data}
	d := &decoder{src: src, opts: opts}
	v, err := d.value()
	if err != nil {
		return nil, err
	}
	if rest := src.rest(); rest > 0 {
		return v, fmt.Errorf("%w (%d trailing at offset %d)", ErrExtraBytes, rest, src.pos)
	}
	return v, nil
}

type decoder struct {
	src  byteSource
	opts Options
}

// decodeFunc decodes the value a tag byte introduces; the tag itself
// has already been consumed.
type decodeFunc func(d *decoder, tag byte) (*Value, error)

// decodeTable maps every possible tag byte to its decoder. The single
// hole at 0xC1 is the one byte the format never assigns.
var decodeTable [256]decodeFunc

func init() {
	for b := 0x00; b <= 0x7F; b++ {
		decodeTable[b] = decodePosFixint
	}
	for b := 0x80; b <= 0x8F; b++ {
		decodeTable[b] = decodeFixMap
	}
	for b := 0x90; b <= 0x9F; b++ {
		decodeTable[b] = decodeFixArray
	}
	for b := 0xA0; b <= 0xBF; b++ {
		decodeTable[b] = decodeFixStr
	}
	for b := 0xE0; b <= 0xFF; b++ {
		decodeTable[b] = decodeNegFixint
	}

	decodeTable[tagNil] = decodeNil
	decodeTable[tagFalse] = decodeBool
	decodeTable[tagTrue] = decodeBool

	decodeTable[tagBin8] = decodeBin
	decodeTable[tagBin16] = decodeBin
	decodeTable[tagBin32] = decodeBin

	decodeTable[tagExt8] = decodeExt
	decodeTable[tagExt16] = decodeExt
	decodeTable[tagExt32] = decodeExt

	decodeTable[tagFloat32] = decodeFloat32
	decodeTable[tagFloat64] = decodeFloat64

	decodeTable[tagUint8] = decodeUint
	decodeTable[tagUint16] = decodeUint
	decodeTable[tagUint32] = decodeUint
	decodeTable[tagUint64] = decodeUint

	decodeTable[tagInt8] = decodeInt
	decodeTable[tagInt16] = decodeInt
	decodeTable[tagInt32] = decodeInt
	decodeTable[tagInt64] = decodeInt

	decodeTable[tagFixExt1] = decodeFixExt
	decodeTable[tagFixExt2] = decodeFixExt
	decodeTable[tagFixExt4] = decodeFixExt
	decodeTable[tagFixExt8] = decodeFixExt
	decodeTable[tagFixExt16] = decodeFixExt

	decodeTable[tagStr8] = decodeStr
	decodeTable[tagStr16] = decodeStr
	decodeTable[tagStr32] = decodeStr

	decodeTable[tagArray16] = decodeArray
	decodeTable[tagArray32] = decodeArray

	decodeTable[tagMap16] = decodeMap
	decodeTable[tagMap32] = decodeMap
}

// value decodes one complete value from the source.
func (d *decoder) value() (*Value, error) {
	b, err := d.src.take(1)
	if err != nil {
		return nil, err
	}
	tag := b[0]
	fn := decodeTable[tag]
	if fn == nil {
		return nil, fmt.Errorf("%w 0x%02X at offset %d", ErrUnimplementedTag, tag, d.src.offset()-1)
	}
	return fn(d, tag)
}

// length reads an unsigned big-endian length field of the given width.
func (d *decoder) length(width int) (uint64, error) {
	b, err := d.src.take(width)
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(b)), nil
	default:
		return uint64(binary.BigEndian.Uint32(b)), nil
	}
}

// sliceLen bounds a wire length field to the platform int range. A
// length past that can never be satisfied by real input.
func (d *decoder) sliceLen(n uint64) (int, error) {
	if n > uint64(math.MaxInt) {
		return 0, fmt.Errorf("%w (need %d at offset %d)", ErrMissingBytes, n, d.src.offset())
	}
	return int(n), nil
}

// Preallocation cap for containers whose claimed size has not been
// seen on the wire yet.
const allocHint = 1024

// ============================================================
// Scalar decoders
// ============================================================

func decodePosFixint(d *decoder, tag byte) (*Value, error) {
	return Int(int64(tag)), nil
}

func decodeNegFixint(d *decoder, tag byte) (*Value, error) {
	return Int(int64(int8(tag))), nil
}

func decodeNil(d *decoder, tag byte) (*Value, error) {
	return Nil(), nil
}

func decodeBool(d *decoder, tag byte) (*Value, error) {
	return Bool(tag == tagTrue), nil
}

// decodeUint reassembles the unsigned classes. Values that fit int64
// normalize to KindInt via the Uint constructor.
func decodeUint(d *decoder, tag byte) (*Value, error) {
	switch tag {
	case tagUint8:
		b, err := d.src.take(1)
		if err != nil {
			return nil, err
		}
		return Int(int64(b[0])), nil
	case tagUint16:
		b, err := d.src.take(2)
		if err != nil {
			return nil, err
		}
		return Int(int64(binary.BigEndian.Uint16(b))), nil
	case tagUint32:
		b, err := d.src.take(4)
		if err != nil {
			return nil, err
		}
		return Int(int64(binary.BigEndian.Uint32(b))), nil
	default:
		b, err := d.src.take(8)
		if err != nil {
			return nil, err
		}
		return Uint(binary.BigEndian.Uint64(b)), nil
	}
}

// decodeInt reassembles the signed classes; two's-complement
// reconstruction is a plain narrowing conversion.
func decodeInt(d *decoder, tag byte) (*Value, error) {
	switch tag {
	case tagInt8:
		b, err := d.src.take(1)
		if err != nil {
			return nil, err
		}
		return Int(int64(int8(b[0]))), nil
	case tagInt16:
		b, err := d.src.take(2)
		if err != nil {
			return nil, err
		}
		return Int(int64(int16(binary.BigEndian.Uint16(b)))), nil
	case tagInt32:
		b, err := d.src.take(4)
		if err != nil {
			return nil, err
		}
		return Int(int64(int32(binary.BigEndian.Uint32(b)))), nil
	default:
		b, err := d.src.take(8)
		if err != nil {
			return nil, err
		}
		return Int(int64(binary.BigEndian.Uint64(b))), nil
	}
}

// Float decoding reconstructs whatever bits arrive, subnormals and
// odd NaNs included; the encode-side canonicalization is not applied.

func decodeFloat32(d *decoder, tag byte) (*Value, error) {
	b, err := d.src.take(4)
	if err != nil {
		return nil, err
	}
	f := math.Float32frombits(binary.BigEndian.Uint32(b))
	return Float(float64(f)), nil
}

func decodeFloat64(d *decoder, tag byte) (*Value, error) {
	b, err := d.src.take(8)
	if err != nil {
		return nil, err
	}
	return Float(math.Float64frombits(binary.BigEndian.Uint64(b))), nil
}

// ============================================================
// String and binary decoders
// ============================================================

func decodeFixStr(d *decoder, tag byte) (*Value, error) {
	return d.str(int(tag - fixstrTag))
}

func decodeStr(d *decoder, tag byte) (*Value, error) {
	var width int
	switch tag {
	case tagStr8:
		width = 1
	case tagStr16:
		width = 2
	default:
		width = 4
	}
	n, err := d.length(width)
	if err != nil {
		return nil, err
	}
	size, err := d.sliceLen(n)
	if err != nil {
		return nil, err
	}
	return d.str(size)
}

func (d *decoder) str(n int) (*Value, error) {
	b, err := d.src.take(n)
	if err != nil {
		return nil, err
	}
	return Str(string(b)), nil
}

func decodeBin(d *decoder, tag byte) (*Value, error) {
	var width int
	switch tag {
	case tagBin8:
		width = 1
	case tagBin16:
		width = 2
	default:
		width = 4
	}
	n, err := d.length(width)
	if err != nil {
		return nil, err
	}
	size, err := d.sliceLen(n)
	if err != nil {
		return nil, err
	}
	b, err := d.src.take(size)
	if err != nil {
		return nil, err
	}
	return Bin(append([]byte(nil), b...)), nil
}

// ============================================================
// Container decoders
// ============================================================

func decodeFixArray(d *decoder, tag byte) (*Value, error) {
	return d.array(int(tag - fixarrayTag))
}

func decodeArray(d *decoder, tag byte) (*Value, error) {
	width := 2
	if tag == tagArray32 {
		width = 4
	}
	n, err := d.length(width)
	if err != nil {
		return nil, err
	}
	size, err := d.sliceLen(n)
	if err != nil {
		return nil, err
	}
	return d.array(size)
}

func (d *decoder) array(n int) (*Value, error) {
	hint := n
	if hint > allocHint {
		hint = allocHint
	}
	elems := make([]*Value, 0, hint)
	for i := 0; i < n; i++ {
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return Array(elems...), nil
}

func decodeFixMap(d *decoder, tag byte) (*Value, error) {
	return d.mapValue(int(tag - fixmapTag))
}

func decodeMap(d *decoder, tag byte) (*Value, error) {
	width := 2
	if tag == tagMap32 {
		width = 4
	}
	n, err := d.length(width)
	if err != nil {
		return nil, err
	}
	size, err := d.sliceLen(n)
	if err != nil {
		return nil, err
	}
	return d.mapValue(size)
}

func (d *decoder) mapValue(n int) (*Value, error) {
	mb := newMapBuilder(n)
	for i := 0; i < n; i++ {
		k, err := d.value()
		if err != nil {
			return nil, err
		}
		// Keys the host model cannot hold collapse into Sentinel.
		if k.kind == KindNil || (k.kind == KindFloat && math.IsNaN(k.floatVal)) {
			k = Sentinel
		}
		v, err := d.value()
		if err != nil {
			return nil, err
		}
		mb.put(k, v)
	}
	return Map(mb.entries...), nil
}

// mapBuilder assembles decoded map entries with last-write-wins
// semantics for duplicate keys, matching what assignment into a host
// table does. String and integer keys are indexed; everything else is
// rare enough as a key to scan for.
type mapBuilder struct {
	entries []MapEntry
	strIdx  map[string]int
	intIdx  map[int64]int
	scan    []int // entry positions with unindexed key kinds
}

func newMapBuilder(n int) *mapBuilder {
	hint := n
	if hint > allocHint {
		hint = allocHint
	}
	return &mapBuilder{entries: make([]MapEntry, 0, hint)}
}

func (mb *mapBuilder) put(k, v *Value) {
	if at, ok := mb.find(k); ok {
		mb.entries[at].Value = v
		return
	}
	mb.entries = append(mb.entries, MapEntry{Key: k, Value: v})
	at := len(mb.entries) - 1
	switch {
	case k.kind == KindString:
		if mb.strIdx == nil {
			mb.strIdx = make(map[string]int)
		}
		mb.strIdx[k.strVal] = at
	case intKeyable(k):
		if mb.intIdx == nil {
			mb.intIdx = make(map[int64]int)
		}
		mb.intIdx[intKey(k)] = at
	default:
		mb.scan = append(mb.scan, at)
	}
}

func (mb *mapBuilder) find(k *Value) (int, bool) {
	switch {
	case k.kind == KindString:
		at, ok := mb.strIdx[k.strVal]
		return at, ok
	case intKeyable(k):
		at, ok := mb.intIdx[intKey(k)]
		return at, ok
	default:
		for _, at := range mb.scan {
			if mb.entries[at].Key.Equal(k) {
				return at, true
			}
		}
		return 0, false
	}
}

// intKeyable reports whether a key can be indexed by its int64 value.
// Whole-number floats share the index with ints so that 1 and 1.0
// land on the same entry, as they would in a host table.
func intKeyable(k *Value) bool {
	switch k.kind {
	case KindInt:
		return true
	case KindFloat:
		f := k.floatVal
		return math.Trunc(f) == f && f >= float64(math.MinInt64) && f < maxInt64Float
	default:
		return false
	}
}

func intKey(k *Value) int64 {
	if k.kind == KindInt {
		return k.intVal
	}
	return int64(k.floatVal)
}
