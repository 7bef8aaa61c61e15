package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/luapower/messagepack/msgpack"
)

// fileConfig mirrors the TOML config file. All keys are optional;
// absent keys leave the defaults untouched.
//
//	string_mode = "legacy"     # modern, legacy, binary
//	array_mode = "permissive"  # strict, permissive, always-map
//	number_mode = "float32"    # float64, float32
type fileConfig struct {
	StringMode string `toml:"string_mode"`
	ArrayMode  string `toml:"array_mode"`
	NumberMode string `toml:"number_mode"`
}

// loadConfig overlays the modes defined in a TOML file onto opts.
// Only keys actually present in the file are applied.
func loadConfig(path string, opts *msgpack.Options) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	if meta.IsDefined("string_mode") {
		m, err := parseStringMode(raw.StringMode)
		if err != nil {
			return fmt.Errorf("string_mode: %w", err)
		}
		opts.StringMode = m
	}
	if meta.IsDefined("array_mode") {
		m, err := parseArrayMode(raw.ArrayMode)
		if err != nil {
			return fmt.Errorf("array_mode: %w", err)
		}
		opts.ArrayMode = m
	}
	if meta.IsDefined("number_mode") {
		m, err := parseNumberMode(raw.NumberMode)
		if err != nil {
			return fmt.Errorf("number_mode: %w", err)
		}
		opts.NumberMode = m
	}
	return nil
}

// resolveOptions builds the encode options from three layers:
// defaults, then the config file, then explicit flags.
func resolveOptions(configPath, stringMode, arrayMode, numberMode string, log zerolog.Logger) msgpack.Options {
	opts := msgpack.DefaultOptions()

	if configPath != "" {
		if err := loadConfig(configPath, &opts); err != nil {
			fatal("config %s: %v", configPath, err)
		}
		log.Debug().Str("config", configPath).Msg("loaded encode modes")
	}

	var err error
	if stringMode != "" {
		if opts.StringMode, err = parseStringMode(stringMode); err != nil {
			fatal("--string-mode: %v", err)
		}
	}
	if arrayMode != "" {
		if opts.ArrayMode, err = parseArrayMode(arrayMode); err != nil {
			fatal("--array-mode: %v", err)
		}
	}
	if numberMode != "" {
		if opts.NumberMode, err = parseNumberMode(numberMode); err != nil {
			fatal("--number-mode: %v", err)
		}
	}
	return opts
}

func parseStringMode(s string) (msgpack.StringMode, error) {
	switch s {
	case "modern":
		return msgpack.StringModern, nil
	case "legacy":
		return msgpack.StringLegacy, nil
	case "binary":
		return msgpack.StringBinary, nil
	default:
		return 0, fmt.Errorf("unknown value %q (want modern, legacy, or binary)", s)
	}
}

func parseArrayMode(s string) (msgpack.ArrayMode, error) {
	switch s {
	case "strict":
		return msgpack.ArrayStrict, nil
	case "permissive":
		return msgpack.ArrayPermissive, nil
	case "always-map":
		return msgpack.ArrayAlwaysMap, nil
	default:
		return 0, fmt.Errorf("unknown value %q (want strict, permissive, or always-map)", s)
	}
}

func parseNumberMode(s string) (msgpack.NumberMode, error) {
	switch s {
	case "float64":
		return msgpack.NumberFloat64, nil
	case "float32":
		return msgpack.NumberFloat32, nil
	default:
		return 0, fmt.Errorf("unknown value %q (want float64 or float32)", s)
	}
}
