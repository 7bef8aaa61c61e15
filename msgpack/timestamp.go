package msgpack

import (
	"encoding/binary"
	"fmt"
	"time"
)

// TimestampType is the predefined extension type for timestamps.
const TimestampType int8 = -1

// Timestamp creates the extension value for an instant, using the
// smallest of the three standard layouts: 32-bit seconds, 64-bit
// packed seconds+nanoseconds, or the full 96-bit form for instants
// before 1970 or past the 34-bit second range.
func Timestamp(t time.Time) *Value {
	sec := t.Unix()
	nsec := uint64(t.Nanosecond())

	if sec>>34 == 0 {
		packed := nsec<<34 | uint64(sec)
		if packed&0xFFFFFFFF00000000 == 0 {
			data := make([]byte, 4)
			binary.BigEndian.PutUint32(data, uint32(sec))
			return Ext(TimestampType, data)
		}
		data := make([]byte, 8)
		binary.BigEndian.PutUint64(data, packed)
		return Ext(TimestampType, data)
	}

	data := make([]byte, 12)
	binary.BigEndian.PutUint32(data[:4], uint32(nsec))
	binary.BigEndian.PutUint64(data[4:], uint64(sec))
	return Ext(TimestampType, data)
}

// IsTimestamp returns true for extension values carrying a timestamp.
func (v *Value) IsTimestamp() bool {
	return v != nil && v.kind == KindExt && v.extType == TimestampType
}

// AsTimestamp decodes a timestamp extension value. The result is in
// UTC; the wire format does not carry a zone.
func (v *Value) AsTimestamp() (time.Time, error) {
	typ, data, err := v.AsExt()
	if err != nil {
		return time.Time{}, err
	}
	if typ != TimestampType {
		return time.Time{}, fmt.Errorf("msgpack: expected timestamp ext %d, got %d", TimestampType, typ)
	}

	switch len(data) {
	case 4:
		sec := binary.BigEndian.Uint32(data)
		return time.Unix(int64(sec), 0).UTC(), nil
	case 8:
		packed := binary.BigEndian.Uint64(data)
		nsec := packed >> 34
		sec := packed & (1<<34 - 1)
		return time.Unix(int64(sec), int64(nsec)).UTC(), nil
	case 12:
		nsec := binary.BigEndian.Uint32(data[:4])
		sec := int64(binary.BigEndian.Uint64(data[4:]))
		return time.Unix(sec, int64(nsec)).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("msgpack: invalid timestamp payload of %d bytes", len(data))
	}
}
