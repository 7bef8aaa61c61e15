package msgpack

import (
	"bytes"
	"fmt"
	"math"
)

// Kind identifies the concrete type a Value holds.
type Kind uint8

const (
	KindNil Kind = iota
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindBinary
	KindArray
	KindMap
	KindTable
	KindExt
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindBinary:
		return "binary"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindTable:
		return "table"
	case KindExt:
		return "ext"
	default:
		return "unknown"
	}
}

// Value is one node of MessagePack data, either decoded from the wire
// or built up for encoding.
type Value struct {
	kind Kind

	// Scalar values (only one valid based on kind)
	boolVal  bool
	intVal   int64
	uintVal  uint64
	floatVal float64
	strVal   string
	binVal   []byte

	// Container values; mapVal serves both KindMap and KindTable
	arrayVal []*Value
	mapVal   []MapEntry

	// Extension payload
	extType int8
	extData []byte
}

// MapEntry represents a key-value pair in a map or table.
type MapEntry struct {
	Key   *Value
	Value *Value
}

// Sentinel is the shared placeholder for map keys the host model
// cannot hold directly: decoding redirects nil and NaN keys here, so
// all such keys collapse into a single entry (last write wins).
// Sentinel is a nil value and encodes as nil.
var Sentinel = &Value{kind: KindNil}

// ============================================================
// Constructors
// ============================================================

// Nil creates a nil value.
func Nil() *Value {
	return &Value{kind: KindNil}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Int creates an integer value.
func Int(v int64) *Value {
	return &Value{kind: KindInt, intVal: v}
}

// Uint creates an unsigned integer value. Values that fit in an int64
// normalize to KindInt, matching what decoding produces; KindUint
// appears only above math.MaxInt64.
func Uint(v uint64) *Value {
	if v <= math.MaxInt64 {
		return &Value{kind: KindInt, intVal: int64(v)}
	}
	return &Value{kind: KindUint, uintVal: v}
}

// Float creates a floating-point value.
func Float(v float64) *Value {
	return &Value{kind: KindFloat, floatVal: v}
}

// Str creates a string value.
func Str(v string) *Value {
	return &Value{kind: KindString, strVal: v}
}

// Bin creates a binary blob value.
func Bin(v []byte) *Value {
	return &Value{kind: KindBinary, binVal: v}
}

// Array creates an array value. Arrays always encode with array tags.
func Array(elems ...*Value) *Value {
	return &Value{kind: KindArray, arrayVal: elems}
}

// Map creates a map value from key-value entries. Maps always encode
// with map tags and preserve entry order. Keys are unique by Equal;
// use Set to upsert.
func Map(entries ...MapEntry) *Value {
	return &Value{kind: KindMap, mapVal: entries}
}

// Table creates a generic container whose wire form (array or map) is
// decided only at encode time by the configured array mode. Decoding
// never produces a table; wire tags are unambiguous.
func Table(entries ...MapEntry) *Value {
	return &Value{kind: KindTable, mapVal: entries}
}

// Ext creates an extension value with an application-defined type tag
// and raw payload.
func Ext(typ int8, data []byte) *Value {
	return &Value{kind: KindExt, extType: typ, extData: data}
}

// Entry creates a MapEntry for use in Map and Table construction.
func Entry(key, value *Value) MapEntry {
	return MapEntry{Key: key, Value: value}
}

// Field creates a string-keyed MapEntry.
func Field(key string, value *Value) MapEntry {
	return MapEntry{Key: Str(key), Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNil
	}
	return v.kind
}

// IsNil returns true if this is a nil value.
func (v *Value) IsNil() bool {
	return v == nil || v.kind == KindNil
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if v == nil {
		return false, fmt.Errorf("msgpack: nil value")
	}
	if v.kind != KindBool {
		return false, fmt.Errorf("msgpack: expected bool, got %s", v.kind)
	}
	return v.boolVal, nil
}

// AsInt returns the integer value.
func (v *Value) AsInt() (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("msgpack: nil value")
	}
	if v.kind != KindInt {
		return 0, fmt.Errorf("msgpack: expected int, got %s", v.kind)
	}
	return v.intVal, nil
}

// AsUint returns the unsigned integer value. Plain integer values
// convert when non-negative.
func (v *Value) AsUint() (uint64, error) {
	if v == nil {
		return 0, fmt.Errorf("msgpack: nil value")
	}
	switch v.kind {
	case KindUint:
		return v.uintVal, nil
	case KindInt:
		if v.intVal < 0 {
			return 0, fmt.Errorf("msgpack: negative int %d as uint", v.intVal)
		}
		return uint64(v.intVal), nil
	default:
		return 0, fmt.Errorf("msgpack: expected uint, got %s", v.kind)
	}
}

// AsFloat returns the floating-point value.
//
// Note the codec's precision contract: hosts whose numbers are IEEE-754
// doubles hold 53 bits of integer precision, while the wire carries
// full 64-bit integers. Values decoded from int64/uint64 wire forms
// keep all 64 bits here (as KindInt/KindUint); converting them to
// float64 is where precision is lost.
func (v *Value) AsFloat() (float64, error) {
	if v == nil {
		return 0, fmt.Errorf("msgpack: nil value")
	}
	if v.kind != KindFloat {
		return 0, fmt.Errorf("msgpack: expected float, got %s", v.kind)
	}
	return v.floatVal, nil
}

// AsStr returns the string value.
func (v *Value) AsStr() (string, error) {
	if v == nil {
		return "", fmt.Errorf("msgpack: nil value")
	}
	if v.kind != KindString {
		return "", fmt.Errorf("msgpack: expected string, got %s", v.kind)
	}
	return v.strVal, nil
}

// AsBin returns the binary blob value.
func (v *Value) AsBin() ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("msgpack: nil value")
	}
	if v.kind != KindBinary {
		return nil, fmt.Errorf("msgpack: expected binary, got %s", v.kind)
	}
	return v.binVal, nil
}

// AsArray returns the array elements.
func (v *Value) AsArray() ([]*Value, error) {
	if v == nil {
		return nil, fmt.Errorf("msgpack: nil value")
	}
	if v.kind != KindArray {
		return nil, fmt.Errorf("msgpack: expected array, got %s", v.kind)
	}
	return v.arrayVal, nil
}

// AsMap returns the map entries.
func (v *Value) AsMap() ([]MapEntry, error) {
	if v == nil {
		return nil, fmt.Errorf("msgpack: nil value")
	}
	if v.kind != KindMap {
		return nil, fmt.Errorf("msgpack: expected map, got %s", v.kind)
	}
	return v.mapVal, nil
}

// AsTable returns the table entries.
func (v *Value) AsTable() ([]MapEntry, error) {
	if v == nil {
		return nil, fmt.Errorf("msgpack: nil value")
	}
	if v.kind != KindTable {
		return nil, fmt.Errorf("msgpack: expected table, got %s", v.kind)
	}
	return v.mapVal, nil
}

// AsExt returns the extension type tag and payload.
func (v *Value) AsExt() (typ int8, data []byte, err error) {
	if v == nil {
		return 0, nil, fmt.Errorf("msgpack: nil value")
	}
	if v.kind != KindExt {
		return 0, nil, fmt.Errorf("msgpack: expected ext, got %s", v.kind)
	}
	return v.extType, v.extData, nil
}

// Len returns the length of an array, map, or table.
func (v *Value) Len() int {
	if v == nil {
		return 0
	}
	switch v.kind {
	case KindArray:
		return len(v.arrayVal)
	case KindMap, KindTable:
		return len(v.mapVal)
	default:
		return 0
	}
}

// Get returns the value stored under key in a map or table, or nil if
// absent. Keys match by Equal.
func (v *Value) Get(key *Value) *Value {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindMap, KindTable:
		for _, e := range v.mapVal {
			if e.Key.Equal(key) {
				return e.Value
			}
		}
	}
	return nil
}

// Index returns the i-th element of an array.
func (v *Value) Index(i int) (*Value, error) {
	if v == nil || v.kind != KindArray {
		return nil, fmt.Errorf("msgpack: not an array")
	}
	if i < 0 || i >= len(v.arrayVal) {
		return nil, fmt.Errorf("msgpack: index %d out of bounds (len=%d)", i, len(v.arrayVal))
	}
	return v.arrayVal[i], nil
}

// ============================================================
// Mutators
// ============================================================

// Set upserts a key-value entry on a map or table.
func (v *Value) Set(key, val *Value) {
	switch v.kind {
	case KindMap, KindTable:
		for i := range v.mapVal {
			if v.mapVal[i].Key.Equal(key) {
				v.mapVal[i].Value = val
				return
			}
		}
		v.mapVal = append(v.mapVal, MapEntry{Key: key, Value: val})
	default:
		panic("msgpack: cannot set on non-map/table")
	}
}

// Append adds an element to an array.
func (v *Value) Append(elem *Value) {
	if v.kind != KindArray {
		panic("msgpack: cannot append to non-array")
	}
	v.arrayVal = append(v.arrayVal, elem)
}

// String returns a shallow debug representation. Containers render
// their sizes, not their contents.
func (v *Value) String() string {
	if v == nil {
		return "nil"
	}
	switch v.kind {
	case KindNil:
		return "nil"
	case KindBool:
		return fmt.Sprintf("bool(%t)", v.boolVal)
	case KindInt:
		return fmt.Sprintf("int(%d)", v.intVal)
	case KindUint:
		return fmt.Sprintf("uint(%d)", v.uintVal)
	case KindFloat:
		return fmt.Sprintf("float(%g)", v.floatVal)
	case KindString:
		return fmt.Sprintf("string(%q)", v.strVal)
	case KindBinary:
		return fmt.Sprintf("binary(%d bytes)", len(v.binVal))
	case KindArray:
		return fmt.Sprintf("array(%d)", len(v.arrayVal))
	case KindMap:
		return fmt.Sprintf("map(%d)", len(v.mapVal))
	case KindTable:
		return fmt.Sprintf("table(%d)", len(v.mapVal))
	case KindExt:
		return fmt.Sprintf("ext(%d, %d bytes)", v.extType, len(v.extData))
	default:
		return fmt.Sprintf("unknown(%d)", uint8(v.kind))
	}
}

// ============================================================
// Numeric Coercion Helpers
// ============================================================

// Number returns a numeric value as float64 if int, uint, or float.
func (v *Value) Number() (float64, bool) {
	if v == nil {
		return 0, false
	}
	switch v.kind {
	case KindInt:
		return float64(v.intVal), true
	case KindUint:
		return float64(v.uintVal), true
	case KindFloat:
		return v.floatVal, true
	default:
		return 0, false
	}
}

// IsNumeric returns true if int, uint, or float.
func (v *Value) IsNumeric() bool {
	if v == nil {
		return false
	}
	return v.kind == KindInt || v.kind == KindUint || v.kind == KindFloat
}

// ============================================================
// Equality
// ============================================================

// Equal reports deep equality. Numeric kinds compare by mathematical
// value, so Int(5) equals Float(5.0); NaN equals NaN. Maps and tables
// compare entry-by-entry in order.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v.IsNil() && o.IsNil()
	}
	if v.IsNumeric() && o.IsNumeric() {
		return numericEqual(v, o)
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNil:
		return true
	case KindBool:
		return v.boolVal == o.boolVal
	case KindString:
		return v.strVal == o.strVal
	case KindBinary:
		return bytes.Equal(v.binVal, o.binVal)
	case KindArray:
		if len(v.arrayVal) != len(o.arrayVal) {
			return false
		}
		for i := range v.arrayVal {
			if !v.arrayVal[i].Equal(o.arrayVal[i]) {
				return false
			}
		}
		return true
	case KindMap, KindTable:
		if len(v.mapVal) != len(o.mapVal) {
			return false
		}
		for i := range v.mapVal {
			if !v.mapVal[i].Key.Equal(o.mapVal[i].Key) {
				return false
			}
			if !v.mapVal[i].Value.Equal(o.mapVal[i].Value) {
				return false
			}
		}
		return true
	case KindExt:
		return v.extType == o.extType && bytes.Equal(v.extData, o.extData)
	default:
		return false
	}
}

func numericEqual(a, b *Value) bool {
	// Same-kind fast paths.
	if a.kind == b.kind {
		switch a.kind {
		case KindInt:
			return a.intVal == b.intVal
		case KindUint:
			return a.uintVal == b.uintVal
		case KindFloat:
			if math.IsNaN(a.floatVal) && math.IsNaN(b.floatVal) {
				return true
			}
			return a.floatVal == b.floatVal
		}
	}

	// Int never overlaps Uint: the Uint constructor and the decoder
	// both keep KindUint above MaxInt64.
	switch {
	case a.kind == KindFloat:
		return floatIntEqual(a.floatVal, b)
	case b.kind == KindFloat:
		return floatIntEqual(b.floatVal, a)
	default:
		return false
	}
}

// floatIntEqual reports whether f exactly equals the integer value i.
func floatIntEqual(f float64, i *Value) bool {
	if math.Trunc(f) != f || math.IsInf(f, 0) {
		return false
	}
	if i.kind == KindInt {
		return f >= float64(math.MinInt64) && f < maxInt64Float && int64(f) == i.intVal
	}
	return f >= maxInt64Float && f < maxUint64Float && uint64(f) == i.uintVal
}
