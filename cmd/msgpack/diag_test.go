package main

import (
	"bytes"
	"encoding/hex"
	"math"
	"strings"
	"testing"

	"github.com/luapower/messagepack/msgpack"
)

func TestDiagnose(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		// Substrings that must appear in the report.
		wantContains []string
	}{
		{
			name:         "small int",
			hex:          "2a",
			wantContains: []string{"@000000..000001", "fixint", "42"},
		},
		{
			name:         "map with mixed values",
			hex:          "82a16101a16292c3c0",
			wantContains: []string{"fixmap", `{"a": 1, "b": [true, nil]}`},
		},
		{
			name:         "float keeps decimal point",
			hex:          "cb3ff0000000000000",
			wantContains: []string{"float64", "1.0"},
		},
		{
			name:         "binary as hex",
			hex:          "c403010203",
			wantContains: []string{"bin8", "h'010203'"},
		},
		{
			name:         "string is quoted",
			hex:          "a3796179",
			wantContains: []string{"fixstr", `"yay"`},
		},
		{
			name:         "timestamp extension",
			hex:          "d6ff00000000",
			wantContains: []string{"fixext4", "ts(1970-01-01T00:00:00Z)"},
		},
		{
			name:         "opaque extension",
			hex:          "c70107ff",
			wantContains: []string{"ext8", "ext(7, h'ff')"},
		},
		{
			name: "two values get two ranges",
			hex:  "00c3",
			wantContains: []string{
				"@000000..000001",
				"@000001..000002",
				"true",
			},
		},
		{
			name:         "uint64 keeps its magnitude",
			hex:          "cfffffffffffffffff",
			wantContains: []string{"uint64", "18446744073709551615"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := hex.DecodeString(tt.hex)
			if err != nil {
				t.Fatalf("bad test hex: %v", err)
			}
			var report bytes.Buffer
			if err := diagnose(data, &report); err != nil {
				t.Fatalf("diagnose: %v", err)
			}
			got := report.String()
			for _, want := range tt.wantContains {
				if !strings.Contains(got, want) {
					t.Errorf("report %q does not contain %q", got, want)
				}
			}
		})
	}
}

func TestDiagnoseLineCount(t *testing.T) {
	data, _ := hex.DecodeString("00c3a16190")
	var report bytes.Buffer
	if err := diagnose(data, &report); err != nil {
		t.Fatalf("diagnose: %v", err)
	}
	lines := strings.Count(report.String(), "\n")
	if lines != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", lines, report.String())
	}
}

func TestDiagnoseTruncated(t *testing.T) {
	tests := []struct {
		name       string
		hex        string
		wantOffset string
	}{
		{name: "truncated first value", hex: "cc", wantOffset: "offset 0"},
		{name: "truncated second value", hex: "00cc", wantOffset: "offset 1"},
		{name: "never-used tag", hex: "c1", wantOffset: "offset 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, _ := hex.DecodeString(tt.hex)
			var report bytes.Buffer
			err := diagnose(data, &report)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantOffset) {
				t.Errorf("error %q does not mention %q", err, tt.wantOffset)
			}
		})
	}
}

func TestNotation(t *testing.T) {
	tests := []struct {
		name string
		v    *msgpack.Value
		want string
	}{
		{"nil", msgpack.Nil(), "nil"},
		{"bool", msgpack.Bool(false), "false"},
		{"negative int", msgpack.Int(-7), "-7"},
		{"uint", msgpack.Uint(math.MaxUint64), "18446744073709551615"},
		{"string with quotes", msgpack.Str(`say "hi"`), `"say \"hi\""`},
		{"empty binary", msgpack.Bin(nil), "h''"},
		{
			"nested array",
			msgpack.Array(msgpack.Int(1), msgpack.Array(msgpack.Str("x"))),
			`[1, ["x"]]`,
		},
		{
			"map preserves order",
			msgpack.Map(
				msgpack.MapEntry{Key: msgpack.Str("z"), Value: msgpack.Int(1)},
				msgpack.MapEntry{Key: msgpack.Int(2), Value: msgpack.Nil()},
			),
			`{"z": 1, 2: nil}`,
		},
		{
			"table renders as map notation",
			msgpack.Table(
				msgpack.MapEntry{Key: msgpack.Int(1), Value: msgpack.Str("a")},
			),
			`{1: "a"}`,
		},
		{"ext", msgpack.Ext(-2, []byte{0xAB, 0xCD}), "ext(-2, h'abcd')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := notation(tt.v); got != tt.want {
				t.Errorf("notation() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFloatNotation(t *testing.T) {
	tests := []struct {
		f    float64
		want string
	}{
		{1, "1.0"},
		{0.5, "0.5"},
		{-3, "-3.0"},
		{1e21, "1e+21"},
		{5e-324, "5e-324"},
		{math.NaN(), "NaN"},
		{math.Inf(1), "+Inf"},
		{math.Inf(-1), "-Inf"},
		{0, "0.0"},
	}

	for _, tt := range tests {
		if got := floatNotation(tt.f); got != tt.want {
			t.Errorf("floatNotation(%v) = %q, want %q", tt.f, got, tt.want)
		}
	}
}
