// Package msgpack implements the MessagePack binary serialization
// format: a compact, self-describing encoding interoperable
// byte-for-byte with the other MessagePack implementations.
//
// # Data Model
//
// Scalars: nil, bool, int, uint, float, string, binary
// Containers: array, map (ordered entries), table
// Special: ext (tagged payload), timestamp (ext -1)
//
// Values are built with constructors and inspected with accessors:
//
//	v := msgpack.Map(
//	  msgpack.Field("id", msgpack.Int(7)),
//	  msgpack.Field("name", msgpack.Str("arsenal")),
//	)
//	data, err := msgpack.Pack(v)
//	back, err := msgpack.Unpack(data)
//
// A table is a container whose wire identity is unresolved: dynamic
// hosts use one structure for both sequences and mappings, and the
// array mode decides at encode time whether a table's keys qualify it
// as an array. Plain arrays and maps always keep their wire identity.
//
// # Options
//
// Pack and Unpack take an immutable Options value; there is no global
// state. StringMode picks the str-family era (modern, legacy, or bin
// tags), ArrayMode picks table resolution (strict, permissive, or
// always-map), NumberMode picks the float width, and Ext installs a
// decoder for application extension types.
//
// # Integers and Floats
//
// Encoding always picks the smallest wire class that carries the
// value: 0..127 and -32..-1 are single bytes. Whole-number floats
// take the integer classes. NaN encodes to one canonical quiet-NaN
// pattern, and subnormal magnitudes flush to signed zero on encode;
// decoding reconstructs incoming bits exactly. Hosts with only
// IEEE-754 doubles carry 53 bits of integer precision, while the wire
// carries 64; decoded int64/uint64 values keep all 64 bits here.
//
// # Streaming
//
// Unpack consumes a complete buffer. Unpacker iterates values
// concatenated in a buffer or pulled on demand from an io.Reader:
//
//	u := msgpack.NewStreamUnpacker(conn)
//	for {
//	  _, v, err := u.Next()
//	  if err == io.EOF {
//	    break
//	  }
//	  ...
//	}
//
// Truncated input fails with ErrMissingBytes; input left over after a
// single-value Unpack is reported as ErrExtraBytes alongside the
// decoded value.
//
// # Concurrency
//
// Pack, Unpack, and Value trees are safe for concurrent readers; an
// Unpacker is single-consumer. Configure an Options value once and
// share it freely, but do not mutate it mid-call.
package msgpack
