package msgpack

import "errors"

// Error sentinels. Callers match them with errors.Is; the values
// returned by Pack/Unpack wrap these with offset or length context.
var (
	// ErrMissingBytes reports a byte source that ran out in the middle
	// of a value. Fatal to the decode call that hit it.
	ErrMissingBytes = errors.New("msgpack: missing bytes")

	// ErrExtraBytes reports trailing input after a complete value.
	// Unpack returns it alongside the decoded value; the caller
	// decides whether the trailing bytes matter.
	ErrExtraBytes = errors.New("msgpack: extra bytes after value")

	// ErrOverflow reports a string, blob, container, or extension
	// whose size exceeds what the 32-bit wire length fields can carry.
	ErrOverflow = errors.New("msgpack: length overflows wire format")

	// ErrUnsupportedKind reports an encode of a Value kind with no
	// wire representation. This is a programmer error, not bad data.
	ErrUnsupportedKind = errors.New("msgpack: unsupported kind")

	// ErrUnimplementedTag reports a decode of the reserved tag byte
	// 0xC1, which the format never assigns.
	ErrUnimplementedTag = errors.New("msgpack: unimplemented tag")
)
