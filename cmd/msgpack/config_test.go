package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luapower/messagepack/msgpack"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "msgpack.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
		want msgpack.Options
	}{
		{
			name: "all keys",
			body: "string_mode = \"legacy\"\narray_mode = \"permissive\"\nnumber_mode = \"float32\"\n",
			want: msgpack.Options{
				StringMode: msgpack.StringLegacy,
				ArrayMode:  msgpack.ArrayPermissive,
				NumberMode: msgpack.NumberFloat32,
			},
		},
		{
			name: "partial file leaves other defaults",
			body: "array_mode = \"always-map\"\n",
			want: msgpack.Options{
				StringMode: msgpack.StringModern,
				ArrayMode:  msgpack.ArrayAlwaysMap,
				NumberMode: msgpack.NumberFloat64,
			},
		},
		{
			name: "empty file keeps defaults",
			body: "",
			want: msgpack.DefaultOptions(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.body)
			opts := msgpack.DefaultOptions()
			if err := loadConfig(path, &opts); err != nil {
				t.Fatalf("loadConfig: %v", err)
			}
			if opts.StringMode != tt.want.StringMode {
				t.Errorf("StringMode = %v, want %v", opts.StringMode, tt.want.StringMode)
			}
			if opts.ArrayMode != tt.want.ArrayMode {
				t.Errorf("ArrayMode = %v, want %v", opts.ArrayMode, tt.want.ArrayMode)
			}
			if opts.NumberMode != tt.want.NumberMode {
				t.Errorf("NumberMode = %v, want %v", opts.NumberMode, tt.want.NumberMode)
			}
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "bad string_mode value",
			body:    "string_mode = \"utf16\"\n",
			wantErr: "string_mode",
		},
		{
			name:    "bad array_mode value",
			body:    "array_mode = \"sloppy\"\n",
			wantErr: "array_mode",
		},
		{
			name:    "bad number_mode value",
			body:    "number_mode = \"float16\"\n",
			wantErr: "number_mode",
		},
		{
			name:    "wrong value type",
			body:    "string_mode = 3\n",
			wantErr: "read config",
		},
		{
			name:    "malformed toml",
			body:    "string_mode = \n",
			wantErr: "read config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.body)
			opts := msgpack.DefaultOptions()
			err := loadConfig(path, &opts)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	opts := msgpack.DefaultOptions()
	err := loadConfig(filepath.Join(t.TempDir(), "absent.toml"), &opts)
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestParseModes(t *testing.T) {
	for name, want := range map[string]msgpack.StringMode{
		"modern": msgpack.StringModern,
		"legacy": msgpack.StringLegacy,
		"binary": msgpack.StringBinary,
	} {
		got, err := parseStringMode(name)
		if err != nil || got != want {
			t.Errorf("parseStringMode(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	for name, want := range map[string]msgpack.ArrayMode{
		"strict":     msgpack.ArrayStrict,
		"permissive": msgpack.ArrayPermissive,
		"always-map": msgpack.ArrayAlwaysMap,
	} {
		got, err := parseArrayMode(name)
		if err != nil || got != want {
			t.Errorf("parseArrayMode(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	for name, want := range map[string]msgpack.NumberMode{
		"float64": msgpack.NumberFloat64,
		"float32": msgpack.NumberFloat32,
	} {
		got, err := parseNumberMode(name)
		if err != nil || got != want {
			t.Errorf("parseNumberMode(%q) = %v, %v; want %v", name, got, err, want)
		}
	}

	if _, err := parseStringMode("utf16"); err == nil {
		t.Error("parseStringMode accepted an unknown mode")
	}
	if _, err := parseArrayMode(""); err == nil {
		t.Error("parseArrayMode accepted an empty mode")
	}
	if _, err := parseNumberMode("double"); err == nil {
		t.Error("parseNumberMode accepted an unknown mode")
	}
}
