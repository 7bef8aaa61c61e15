package msgpack

import "math"

// Float boundaries for integer dispatch. Both are exact float64
// values; 1<<63 is the first magnitude past int64.
const (
	maxInt64Float  = float64(1 << 63)
	maxUint64Float = float64(1 << 64)
)

// Canonical quiet-NaN bit patterns. Every NaN input encodes to one of
// these so that packing stays deterministic.
const (
	canonicalNaN64 = 0x7FF8000000000000
	canonicalNaN32 = 0x7FC00000
)

// IEEE-754 field masks.
const (
	exponentMask64 = 0x7FF0000000000000
	signMask64     = 0x8000000000000000
	exponentMask32 = 0x7F800000
	signMask32     = 0x80000000
)

// float64WireBits returns the bit pattern emitted for f as a float64
// wire value: NaNs collapse to the canonical quiet NaN, infinities
// keep their sign, and subnormals flush to signed zero. Decoding does
// none of this; whatever bits arrive are reconstructed exactly.
func float64WireBits(f float64) uint64 {
	if math.IsNaN(f) {
		return canonicalNaN64
	}
	bits := math.Float64bits(f)
	if bits&exponentMask64 == 0 {
		// Zero exponent field: zero or subnormal. Keep the sign only.
		return bits & signMask64
	}
	return bits
}

// float32WireBits returns the bit pattern emitted for f as a float32
// wire value, with the same NaN/subnormal treatment after narrowing.
func float32WireBits(f float64) uint32 {
	f32 := float32(f)
	if math.IsNaN(f) {
		return canonicalNaN32
	}
	bits := math.Float32bits(f32)
	if bits&exponentMask32 == 0 {
		return bits & signMask32
	}
	return bits
}

// integralFloat reports whether f is a whole number that the integer
// wire forms can carry, and in which range.
func integralFloat(f float64) (asInt, asUint bool) {
	if math.IsInf(f, 0) || math.Trunc(f) != f {
		return false, false
	}
	if f >= float64(math.MinInt64) && f < maxInt64Float {
		return true, false
	}
	if f >= maxInt64Float && f < maxUint64Float {
		return false, true
	}
	return false, false
}
