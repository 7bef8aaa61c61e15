package msgpack

// Wire-format tag bytes. Every MessagePack value starts with one of
// these; multi-byte length and payload fields that follow are
// big-endian.
const (
	tagNil   byte = 0xC0
	tagNever byte = 0xC1 // the one byte the format never assigns
	tagFalse byte = 0xC2
	tagTrue  byte = 0xC3

	tagBin8  byte = 0xC4
	tagBin16 byte = 0xC5
	tagBin32 byte = 0xC6

	tagExt8  byte = 0xC7
	tagExt16 byte = 0xC8
	tagExt32 byte = 0xC9

	tagFloat32 byte = 0xCA
	tagFloat64 byte = 0xCB

	tagUint8  byte = 0xCC
	tagUint16 byte = 0xCD
	tagUint32 byte = 0xCE
	tagUint64 byte = 0xCF

	tagInt8  byte = 0xD0
	tagInt16 byte = 0xD1
	tagInt32 byte = 0xD2
	tagInt64 byte = 0xD3

	tagFixExt1  byte = 0xD4
	tagFixExt2  byte = 0xD5
	tagFixExt4  byte = 0xD6
	tagFixExt8  byte = 0xD7
	tagFixExt16 byte = 0xD8

	tagStr8  byte = 0xD9
	tagStr16 byte = 0xDA
	tagStr32 byte = 0xDB

	tagArray16 byte = 0xDC
	tagArray32 byte = 0xDD

	tagMap16 byte = 0xDE
	tagMap32 byte = 0xDF
)

// Fixed-form tag ranges. The payload size (or the value itself, for
// fixints) is packed into the tag byte.
const (
	posFixintMax byte = 0x7F // 0x00..0x7F holds 0..127 directly
	fixmapTag    byte = 0x80 // 0x80..0x8F, low nibble = entry count
	fixarrayTag  byte = 0x90 // 0x90..0x9F, low nibble = element count
	fixstrTag    byte = 0xA0 // 0xA0..0xBF, low 5 bits = byte length
	negFixintMin byte = 0xE0 // 0xE0..0xFF holds -32..-1 directly

	fixstrMaxLen    = 31 // longest string a fixstr tag can carry
	fixContainerMax = 15 // largest fixarray/fixmap size
)

// Size-class ceilings for length fields.
const (
	max8  = 1<<8 - 1
	max16 = 1<<16 - 1
	max32 = 1<<32 - 1
)

// TagName returns a short human-readable name for a wire tag byte,
// e.g. "fixstr", "uint16", "array32". Used by diagnostic tooling.
func TagName(tag byte) string {
	switch {
	case tag <= posFixintMax:
		return "fixint"
	case tag >= negFixintMin:
		return "fixint"
	case tag >= fixmapTag && tag < fixarrayTag:
		return "fixmap"
	case tag >= fixarrayTag && tag < fixstrTag:
		return "fixarray"
	case tag >= fixstrTag && tag < tagNil:
		return "fixstr"
	}

	switch tag {
	case tagNil:
		return "nil"
	case tagNever:
		return "never-used"
	case tagFalse:
		return "false"
	case tagTrue:
		return "true"
	case tagBin8:
		return "bin8"
	case tagBin16:
		return "bin16"
	case tagBin32:
		return "bin32"
	case tagExt8:
		return "ext8"
	case tagExt16:
		return "ext16"
	case tagExt32:
		return "ext32"
	case tagFloat32:
		return "float32"
	case tagFloat64:
		return "float64"
	case tagUint8:
		return "uint8"
	case tagUint16:
		return "uint16"
	case tagUint32:
		return "uint32"
	case tagUint64:
		return "uint64"
	case tagInt8:
		return "int8"
	case tagInt16:
		return "int16"
	case tagInt32:
		return "int32"
	case tagInt64:
		return "int64"
	case tagFixExt1:
		return "fixext1"
	case tagFixExt2:
		return "fixext2"
	case tagFixExt4:
		return "fixext4"
	case tagFixExt8:
		return "fixext8"
	case tagFixExt16:
		return "fixext16"
	case tagStr8:
		return "str8"
	case tagStr16:
		return "str16"
	case tagStr32:
		return "str32"
	case tagArray16:
		return "array16"
	case tagArray32:
		return "array32"
	case tagMap16:
		return "map16"
	case tagMap32:
		return "map32"
	default:
		return "unknown"
	}
}
