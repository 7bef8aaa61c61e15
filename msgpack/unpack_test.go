package msgpack

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Scalar Decoding
// ============================================================

func TestUnpack_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		hex      string
		wantKind Kind
		want     *Value
	}{
		{"nil", "c0", KindNil, Nil()},
		{"false", "c2", KindBool, Bool(false)},
		{"true", "c3", KindBool, Bool(true)},
		{"posfixint zero", "00", KindInt, Int(0)},
		{"posfixint max", "7f", KindInt, Int(127)},
		{"negfixint", "ff", KindInt, Int(-1)},
		{"negfixint min", "e0", KindInt, Int(-32)},
		{"uint8", "cc80", KindInt, Int(128)},
		{"uint16", "cd0100", KindInt, Int(256)},
		{"uint32", "ceffffffff", KindInt, Int(4294967295)},
		{"uint64 fits int", "cf7fffffffffffffff", KindInt, Int(math.MaxInt64)},
		{"uint64 stays uint", "cf8000000000000000", KindUint, Uint(1 << 63)},
		{"uint64 max", "cfffffffffffffffff", KindUint, Uint(math.MaxUint64)},
		{"int8", "d0df", KindInt, Int(-33)},
		{"int16", "d1ff7f", KindInt, Int(-129)},
		{"int32", "d2ffff7fff", KindInt, Int(-32769)},
		{"int64", "d38000000000000000", KindInt, Int(math.MinInt64)},
		{"float32 half", "ca3f000000", KindFloat, Float(0.5)},
		{"float32 pos inf", "ca7f800000", KindFloat, Float(math.Inf(1))},
		{"float64 half", "cb3fe0000000000000", KindFloat, Float(0.5)},
		{"float64 neg inf", "cbfff0000000000000", KindFloat, Float(math.Inf(-1))},
		{"whole float keeps kind", "cb3ff0000000000000", KindFloat, Float(1)},
		{"subnormal survives", "cb0000000000000001", KindFloat, Float(5e-324)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Unpack(fromHex(t, tt.hex))
			if err != nil {
				t.Fatalf("Unpack failed: %v", err)
			}
			if v.Kind() != tt.wantKind {
				t.Errorf("kind = %v, want %v", v.Kind(), tt.wantKind)
			}
			if !v.Equal(tt.want) {
				t.Errorf("value = %v, want %v", v, tt.want)
			}
		})
	}
}

// Decoding leaves NaN bits alone; only the encoder canonicalizes.
func TestUnpack_NaN(t *testing.T) {
	for _, h := range []string{"cb7ff8000000000000", "cb7ff0000000000001", "ca7fc00000"} {
		v, err := Unpack(fromHex(t, h))
		require.NoError(t, err)
		f, err := v.AsFloat()
		require.NoError(t, err)
		require.True(t, math.IsNaN(f), "input %s", h)
	}
}

// ============================================================
// String and Binary Decoding
// ============================================================

func TestUnpack_Strings(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want string
	}{
		{"fixstr empty", "a0", ""},
		{"fixstr", "a161", "a"},
		{"fixstr max", "bf" + strings.Repeat("61", 31), strings.Repeat("a", 31)},
		{"str8", "d90161", "a"},
		{"str16", "da000161", "a"},
		{"str32", "db0000000161", "a"},
		{"utf8 passthrough", "a668c3a96c6c6f", "héllo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Unpack(fromHex(t, tt.hex))
			if err != nil {
				t.Fatalf("Unpack failed: %v", err)
			}
			s, err := v.AsStr()
			if err != nil {
				t.Fatalf("AsStr: %v", err)
			}
			if s != tt.want {
				t.Errorf("got %q, want %q", s, tt.want)
			}
		})
	}
}

func TestUnpack_Binary(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want []byte
	}{
		{"bin8 empty", "c400", []byte{}},
		{"bin8", "c402dead", []byte{0xDE, 0xAD}},
		{"bin16", "c5000161", []byte{0x61}},
		{"bin32", "c60000000161", []byte{0x61}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Unpack(fromHex(t, tt.hex))
			require.NoError(t, err)
			require.Equal(t, KindBinary, v.Kind())
			b, err := v.AsBin()
			require.NoError(t, err)
			assert.Equal(t, tt.want, b)
		})
	}
}

// Decoded values own their bytes: mutating the input afterwards must
// not show through.
func TestUnpack_NoAliasing(t *testing.T) {
	data := fromHex(t, "92a161c40161")

	v, err := Unpack(data)
	require.NoError(t, err)

	for i := range data {
		data[i] = 0xFF
	}

	first, err := v.Index(0)
	require.NoError(t, err)
	s, err := first.AsStr()
	require.NoError(t, err)
	require.Equal(t, "a", s)

	second, err := v.Index(1)
	require.NoError(t, err)
	b, err := second.AsBin()
	require.NoError(t, err)
	require.Equal(t, []byte{0x61}, b)
}

// ============================================================
// Container Decoding
// ============================================================

func TestUnpack_Arrays(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want *Value
	}{
		{"empty", "90", Array()},
		{"three ints", "93010203", Array(Int(1), Int(2), Int(3))},
		{"array16", "dc0010" + strings.Repeat("00", 16), Array(func() []*Value {
			vs := make([]*Value, 16)
			for i := range vs {
				vs[i] = Int(0)
			}
			return vs
		}()...)},
		{"nested", "92c091c3", Array(Nil(), Array(Bool(true)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Unpack(fromHex(t, tt.hex))
			require.NoError(t, err)
			require.Equal(t, KindArray, v.Kind())
			require.True(t, v.Equal(tt.want), "got %v, want %v", v, tt.want)
		})
	}
}

func TestUnpack_Maps(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want *Value
	}{
		{"empty", "80", Map()},
		{"one entry", "81a16101", Map(Field("a", Int(1)))},
		{"int keys", "8101a161", Map(Entry(Int(1), Str("a")))},
		{"map16", "de0001a16101", Map(Field("a", Int(1)))},
		{"order preserved", "82a16202a16101", Map(Field("b", Int(2)), Field("a", Int(1)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Unpack(fromHex(t, tt.hex))
			require.NoError(t, err)
			require.Equal(t, KindMap, v.Kind())
			require.True(t, v.Equal(tt.want), "got %v, want %v", v, tt.want)
		})
	}
}

func TestUnpack_DuplicateKeys(t *testing.T) {
	t.Run("same kind last wins", func(t *testing.T) {
		v, err := Unpack(fromHex(t, "8201a16101a162"))
		require.NoError(t, err)
		require.Equal(t, 1, v.Len())
		got, err := v.Get(Int(1)).AsStr()
		require.NoError(t, err)
		require.Equal(t, "b", got)
	})

	t.Run("int and whole float collide", func(t *testing.T) {
		v, err := Unpack(fromHex(t, "8201a161cb3ff0000000000000a162"))
		require.NoError(t, err)
		require.Equal(t, 1, v.Len())
		got, err := v.Get(Int(1)).AsStr()
		require.NoError(t, err)
		require.Equal(t, "b", got)
	})

	t.Run("string keys", func(t *testing.T) {
		v, err := Unpack(fromHex(t, "82a16b01a16b02"))
		require.NoError(t, err)
		require.Equal(t, 1, v.Len())
		got, err := v.Get(Str("k")).AsInt()
		require.NoError(t, err)
		require.Equal(t, int64(2), got)
	})
}

// Nil and NaN cannot key a host table; both collapse into the shared
// Sentinel entry, last write winning.
func TestUnpack_SentinelKeys(t *testing.T) {
	v, err := Unpack(fromHex(t, "82c001cb7ff800000000000002"))
	require.NoError(t, err)
	require.Equal(t, 1, v.Len())

	entries, err := v.AsMap()
	require.NoError(t, err)
	require.Same(t, Sentinel, entries[0].Key)

	got, err := entries[0].Value.AsInt()
	require.NoError(t, err)
	require.Equal(t, int64(2), got)
}

// ============================================================
// Extension Decoding
// ============================================================

func TestUnpack_Ext(t *testing.T) {
	tests := []struct {
		name     string
		hex      string
		wantType int8
		wantData []byte
	}{
		{"fixext1", "d401aa", 1, []byte{0xAA}},
		{"fixext2", "d501aabb", 1, []byte{0xAA, 0xBB}},
		{"fixext4", "d6ff01020304", -1, []byte{1, 2, 3, 4}},
		{"fixext8", "d7020707070707070707", 2, []byte{7, 7, 7, 7, 7, 7, 7, 7}},
		{"ext8 empty", "c70005", 5, []byte{}},
		{"ext8", "c70305aabbcc", 5, []byte{0xAA, 0xBB, 0xCC}},
		{"ext16", "c8000105aa", 5, []byte{0xAA}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Unpack(fromHex(t, tt.hex))
			require.NoError(t, err)
			typ, data, err := v.AsExt()
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, typ)
			assert.Equal(t, tt.wantData, data)
		})
	}
}

func TestUnpack_ExtHook(t *testing.T) {
	opts := DefaultOptions()
	opts.Ext = func(typ int8, data []byte) (*Value, bool) {
		if typ == 42 {
			return Str(string(data)), true
		}
		return nil, false
	}

	t.Run("hook claims type", func(t *testing.T) {
		v, err := UnpackWithOptions(fromHex(t, "d62a68657921"), opts)
		require.NoError(t, err)
		s, err := v.AsStr()
		require.NoError(t, err)
		require.Equal(t, "hey!", s)
	})

	t.Run("hook declines", func(t *testing.T) {
		v, err := UnpackWithOptions(fromHex(t, "d401aa"), opts)
		require.NoError(t, err)
		typ, data, err := v.AsExt()
		require.NoError(t, err)
		require.Equal(t, int8(1), typ)
		require.Equal(t, []byte{0xAA}, data)
	})
}

// ============================================================
// Failure Modes
// ============================================================

func TestUnpack_EmptyInput(t *testing.T) {
	_, err := Unpack(nil)
	require.ErrorIs(t, err, ErrMissingBytes)
}

func TestUnpack_NeverUsedTag(t *testing.T) {
	_, err := Unpack([]byte{0xC1})
	require.ErrorIs(t, err, ErrUnimplementedTag)
}

func TestUnpack_ExtraBytes(t *testing.T) {
	v, err := Unpack([]byte{0x00, 0xC0})
	require.ErrorIs(t, err, ErrExtraBytes)

	// The decoded value still comes back; trailing input is the
	// caller's call to make.
	require.NotNil(t, v)
	got, aerr := v.AsInt()
	require.NoError(t, aerr)
	require.Equal(t, int64(0), got)
}

// The format is a prefix code: chopping any complete encoding short
// must surface ErrMissingBytes, never a wrong value.
func TestUnpack_Truncation(t *testing.T) {
	vectors := []string{
		"cc80",
		"cd0100",
		"ce00010000",
		"cf0000000100000000",
		"d0df",
		"d1ff7f",
		"d2ffff7fff",
		"d38000000000000000",
		"ca3f000000",
		"cb3fe0000000000000",
		"a161",
		"d90261aa",
		"da000161",
		"c402dead",
		"93010203",
		"dc0010" + strings.Repeat("00", 16),
		"81a16101",
		"de0001a16101",
		"d401aa",
		"c70305aabbcc",
		"92c091c3",
	}

	for _, vec := range vectors {
		full := fromHex(t, vec)
		for cut := 0; cut < len(full); cut++ {
			_, err := Unpack(full[:cut])
			if err == nil {
				t.Fatalf("vector %s cut at %d: expected error", vec, cut)
			}
			if !assert.ErrorIs(t, err, ErrMissingBytes, "vector %s cut at %d", vec, cut) {
				return
			}
		}
	}
}

func TestUnpack_LengthPastInputFails(t *testing.T) {
	// str32 claiming 4 GiB with a 1-byte body.
	_, err := Unpack(fromHex(t, "dbffffffff61"))
	require.ErrorIs(t, err, ErrMissingBytes)
}

// The dispatch table covers all 256 tag bytes with exactly one hole
// at the never-used byte.
func TestUnpack_DispatchTotal(t *testing.T) {
	for b := 0; b <= 0xFF; b++ {
		fn := decodeTable[b]
		if byte(b) == tagNever {
			if fn != nil {
				t.Errorf("0x%02X should have no decoder", b)
			}
			continue
		}
		if fn == nil {
			t.Errorf("0x%02X (%s) has no decoder", b, TagName(byte(b)))
		}
	}
}
