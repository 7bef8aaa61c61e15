package msgpack

import (
	"encoding/binary"
	"fmt"
)

// packExt emits an extension value. Payloads of exactly 1, 2, 4, 8, or
// 16 bytes use the fixext forms; everything else takes the smallest of
// ext8/ext16/ext32.
func (p *packer) packExt(typ int8, data []byte) error {
	n := len(data)
	switch n {
	case 1:
		p.buf = append(p.buf, tagFixExt1, byte(typ))
	case 2:
		p.buf = append(p.buf, tagFixExt2, byte(typ))
	case 4:
		p.buf = append(p.buf, tagFixExt4, byte(typ))
	case 8:
		p.buf = append(p.buf, tagFixExt8, byte(typ))
	case 16:
		p.buf = append(p.buf, tagFixExt16, byte(typ))
	default:
		switch {
		case n <= max8:
			p.buf = append(p.buf, tagExt8, byte(n), byte(typ))
		case n <= max16:
			p.buf = append(p.buf, tagExt16)
			p.buf = binary.BigEndian.AppendUint16(p.buf, uint16(n))
			p.buf = append(p.buf, byte(typ))
		case uint64(n) <= max32:
			p.buf = append(p.buf, tagExt32)
			p.buf = binary.BigEndian.AppendUint32(p.buf, uint32(n))
			p.buf = append(p.buf, byte(typ))
		default:
			return fmt.Errorf("%w: ext payload of %d bytes", ErrOverflow, n)
		}
	}
	p.buf = append(p.buf, data...)
	return nil
}

// decodeFixExt handles fixext1/2/4/8/16; the payload size is implied
// by the tag.
func decodeFixExt(d *decoder, tag byte) (*Value, error) {
	var n int
	switch tag {
	case tagFixExt1:
		n = 1
	case tagFixExt2:
		n = 2
	case tagFixExt4:
		n = 4
	case tagFixExt8:
		n = 8
	default:
		n = 16
	}
	return d.ext(n)
}

// decodeExt handles ext8/16/32 with an explicit length field.
func decodeExt(d *decoder, tag byte) (*Value, error) {
	var width int
	switch tag {
	case tagExt8:
		width = 1
	case tagExt16:
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
	return d.ext(size)
}

// ext reads the type byte plus an n-byte payload and runs the
// configured extension decoder, if any. Unrecognized extensions stay
// as raw Ext values.
func (d *decoder) ext(n int) (*Value, error) {
	tb, err := d.src.take(1)
	if err != nil {
		return nil, err
	}
	typ := int8(tb[0])

	b, err := d.src.take(n)
	if err != nil {
		return nil, err
	}
	data := append([]byte(nil), b...)

	if d.opts.Ext != nil {
		if v, ok := d.opts.Ext(typ, data); ok {
			return v, nil
		}
	}
	return Ext(typ, data), nil
}
