package msgpack

// StringMode selects the wire family used for KindString values.
// Binary blobs (KindBinary) always use the bin family.
type StringMode uint8

const (
	// StringModern uses the full str family including str8.
	StringModern StringMode = iota

	// StringLegacy restricts strings to the pre-2013 str forms
	// (fixstr/str16/str32, no str8) for old decoders.
	StringLegacy

	// StringBinary encodes strings with bin tags.
	StringBinary
)

// String returns the mode name.
func (m StringMode) String() string {
	switch m {
	case StringModern:
		return "modern"
	case StringLegacy:
		return "legacy"
	case StringBinary:
		return "binary"
	default:
		return "unknown"
	}
}

// ArrayMode selects how tables resolve to array or map wire forms.
// See Table; plain arrays and maps are unaffected.
type ArrayMode uint8

const (
	// ArrayStrict encodes a table as an array only when its keys are
	// exactly 1..n with no holes; anything else becomes a map.
	ArrayStrict ArrayMode = iota

	// ArrayPermissive encodes a table as an array whenever every key
	// is a positive integer, filling holes with nil elements.
	ArrayPermissive

	// ArrayAlwaysMap encodes every table as a map.
	ArrayAlwaysMap
)

// String returns the mode name.
func (m ArrayMode) String() string {
	switch m {
	case ArrayStrict:
		return "strict"
	case ArrayPermissive:
		return "permissive"
	case ArrayAlwaysMap:
		return "always-map"
	default:
		return "unknown"
	}
}

// NumberMode selects the wire width for non-integral floats.
type NumberMode uint8

const (
	// NumberFloat64 emits float64 wire forms.
	NumberFloat64 NumberMode = iota

	// NumberFloat32 emits float32 wire forms, narrowing the value.
	NumberFloat32
)

// String returns the mode name.
func (m NumberMode) String() string {
	switch m {
	case NumberFloat64:
		return "float64"
	case NumberFloat32:
		return "float32"
	default:
		return "unknown"
	}
}

// ExtDecoder interprets a decoded extension. Returning false leaves
// the raw Ext value in place; an unregistered extension type is never
// a decode error.
type ExtDecoder func(typ int8, data []byte) (*Value, bool)

// Options configures a pack or unpack call. The zero value equals
// DefaultOptions. An Options value must not be mutated while a call
// using it is in flight; build once, then share freely.
type Options struct {
	// StringMode picks the wire family for strings (encode only).
	StringMode StringMode

	// ArrayMode picks array-vs-map resolution for tables (encode only).
	ArrayMode ArrayMode

	// NumberMode picks the float wire width (encode only).
	NumberMode NumberMode

	// Ext, when set, interprets decoded extension values.
	Ext ExtDecoder
}

// DefaultOptions returns the defaults: modern strings, strict arrays,
// float64 numbers, no extension decoder.
func DefaultOptions() Options {
	return Options{
		StringMode: StringModern,
		ArrayMode:  ArrayStrict,
		NumberMode: NumberFloat64,
		Ext:        nil,
	}
}
