package msgpack

import (
	"math"
	"testing"
)

// ============================================================
// Wire Bit Canonicalization
// ============================================================

func TestFloat64WireBits(t *testing.T) {
	tests := []struct {
		name string
		f    float64
		want uint64
	}{
		{"half", 0.5, 0x3FE0000000000000},
		{"neg half", -0.5, 0xBFE0000000000000},
		{"pos zero", 0, 0x0000000000000000},
		{"neg zero", math.Copysign(0, -1), 0x8000000000000000},
		{"quiet nan", math.NaN(), canonicalNaN64},
		{"payload nan", math.Float64frombits(0x7FF0000000000001), canonicalNaN64},
		{"negative nan", math.Float64frombits(0xFFF8000000001234), canonicalNaN64},
		{"pos inf", math.Inf(1), 0x7FF0000000000000},
		{"neg inf", math.Inf(-1), 0xFFF0000000000000},
		{"min subnormal flushes", 5e-324, 0x0000000000000000},
		{"neg subnormal flushes", -5e-324, 0x8000000000000000},
		{"max subnormal flushes", math.Float64frombits(0x000FFFFFFFFFFFFF), 0x0000000000000000},
		{"min normal survives", math.Float64frombits(0x0010000000000000), 0x0010000000000000},
		{"max float survives", math.MaxFloat64, 0x7FEFFFFFFFFFFFFF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := float64WireBits(tt.f); got != tt.want {
				t.Errorf("got %016X, want %016X", got, tt.want)
			}
		})
	}
}

func TestFloat32WireBits(t *testing.T) {
	tests := []struct {
		name string
		f    float64
		want uint32
	}{
		{"half", 0.5, 0x3F000000},
		{"neg zero", math.Copysign(0, -1), 0x80000000},
		{"nan", math.NaN(), canonicalNaN32},
		{"payload nan", math.Float64frombits(0x7FF0000000000001), canonicalNaN32},
		{"pos inf", math.Inf(1), 0x7F800000},
		{"overflow becomes inf", 1e300, 0x7F800000},
		{"neg overflow becomes inf", -1e300, 0xFF800000},
		{"narrowed subnormal flushes", 1e-40, 0x00000000},
		{"neg narrowed subnormal flushes", -1e-40, 0x80000000},
		{"underflow to zero", 1e-320, 0x00000000},
		{"min normal survives", math.Float64frombits(0x3810000000000000), 0x00800000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := float32WireBits(tt.f); got != tt.want {
				t.Errorf("got %08X, want %08X", got, tt.want)
			}
		})
	}
}

// ============================================================
// Integer Dispatch Ranges
// ============================================================

func TestIntegralFloat(t *testing.T) {
	tests := []struct {
		name   string
		f      float64
		asInt  bool
		asUint bool
	}{
		{"zero", 0, true, false},
		{"neg zero", math.Copysign(0, -1), true, false},
		{"whole", 42, true, false},
		{"neg whole", -42, true, false},
		{"fractional", 0.5, false, false},
		{"neg fractional", -2.25, false, false},
		{"below 2^63", 9223372036854774784, true, false},
		{"at 2^63", 9223372036854775808, false, true},
		{"below 2^64", 18446744073709549568, false, true},
		{"at 2^64", 18446744073709551616, false, false},
		{"int64 min", -9223372036854775808, true, false},
		{"below int64 min", -9223372036854777856, false, false},
		{"pos inf", math.Inf(1), false, false},
		{"neg inf", math.Inf(-1), false, false},
		{"nan", math.NaN(), false, false},
		{"huge whole stays float", 1e300, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asInt, asUint := integralFloat(tt.f)
			if asInt != tt.asInt || asUint != tt.asUint {
				t.Errorf("got (%t, %t), want (%t, %t)", asInt, asUint, tt.asInt, tt.asUint)
			}
		})
	}
}
