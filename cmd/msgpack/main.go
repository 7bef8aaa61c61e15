// msgpack - MessagePack codec CLI tool
//
// Usage:
//
//	msgpack encode [options] [file]   Encode JSON (or YAML/CBOR) to MessagePack
//	msgpack decode [options] [file]   Decode MessagePack to JSON (or YAML/CBOR)
//	msgpack diag [options] [file]     Show typed diagnostic notation with offsets
//	msgpack stream [options] [file]   Decode concatenated values to JSON lines
//	msgpack version                   Print version info
//
// If no file is given, input is read from stdin. Output goes to stdout
// unless --out is given. Files ending in .zst are transparently
// (de)compressed, and --zstd forces that on the MessagePack side
// (encode output, decode/diag/stream input); this is a tool
// convenience, not part of the wire format.
package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/fxamacker/cbor/v2"
	"github.com/jmespath/go-jmespath"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/luapower/messagepack/msgpack"
)

const version = "1.0.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch cmd := os.Args[1]; cmd {
	case "encode":
		cmdEncode(os.Args[2:])
	case "decode":
		cmdDecode(os.Args[2:])
	case "diag":
		cmdDiag(os.Args[2:])
	case "stream":
		cmdStream(os.Args[2:])
	case "version", "-v", "--version":
		fmt.Printf("msgpack %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `msgpack - MessagePack codec CLI tool

Usage:
  msgpack encode [options] [file]   Encode JSON (or YAML/CBOR) to MessagePack
  msgpack decode [options] [file]   Decode MessagePack to JSON (or YAML/CBOR)
  msgpack diag [options] [file]     Show typed diagnostic notation with offsets
  msgpack stream [options] [file]   Decode concatenated values to JSON lines
  msgpack version                   Print version info

Encode options:
  --format FORMAT     Input format: json, yaml, cbor (default: json)
  --string-mode MODE  String wire family: modern, legacy, binary
  --array-mode MODE   Table resolution: strict, permissive, always-map
  --number-mode MODE  Float wire width: float64, float32
  --config FILE       Load encode modes from a TOML file (flags win)
  --hex               Write hex instead of raw bytes

Decode options:
  --format FORMAT     Output format: json, yaml, cbor (default: json)
  --query EXPR        Apply a JMESPath expression to the decoded value
  --compact, -c       Compact JSON output (no indentation)
  --hex, -x           Treat input as hex (whitespace ignored)

Common options:
  --out FILE          Write output to FILE instead of stdout
  --zstd              Force zstd on the MessagePack side of the pipe
  --verbose           Structured diagnostics on stderr

If no file is given, reads from stdin.

Examples:
  echo '{"id":7,"tags":["a","b"]}' | msgpack encode > doc.bin
  msgpack decode doc.bin
  msgpack decode --query 'tags[0]' doc.bin
  msgpack encode --hex <<< '{"n":128}'
  # Output: 81a16ecc80

  msgpack diag doc.bin
  # Output: @000000..00000f  fixmap      {"id": 7, "tags": ["a", "b"]}

  cat values.bin | msgpack stream | head -3
  msgpack decode --format yaml doc.bin.zst
`)
}

// ============================================================
// Shared flags and plumbing
// ============================================================

// commonFlags are the options every data-carrying subcommand accepts.
type commonFlags struct {
	out     string
	zstd    bool
	hex     bool
	verbose bool
}

func newFlagSet(name string, c *commonFlags) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	fs.StringVar(&c.out, "out", "", "write output to this file instead of stdout")
	fs.BoolVar(&c.zstd, "zstd", false, "force zstd on the MessagePack side")
	fs.BoolVarP(&c.hex, "hex", "x", false, "hex-encoded MessagePack in or out")
	fs.BoolVar(&c.verbose, "verbose", false, "structured diagnostics on stderr")
	return fs
}

func newLogger(verbose bool) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("app", "msgpack").Logger()
	if verbose {
		return logger.Level(zerolog.DebugLevel)
	}
	return logger.Level(zerolog.WarnLevel)
}

// fileArg returns the single optional positional argument.
func fileArg(fs *pflag.FlagSet) string {
	args := fs.Args()
	if len(args) > 1 {
		fatal("expected at most one file argument, got %d", len(args))
	}
	if len(args) == 1 && args[0] != "-" {
		return args[0]
	}
	return ""
}

// readInput reads the full input, from a file or stdin, decompressing
// zstd when forced or when the file name says so.
func readInput(path string, forceZstd bool, log zerolog.Logger) []byte {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			fatal("open input: %v", err)
		}
		defer f.Close()
		r = f
	}

	if forceZstd || strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(r)
		if err != nil {
			fatal("zstd reader: %v", err)
		}
		defer dec.Close()
		r = dec
		log.Debug().Str("input", displayName(path)).Msg("decompressing zstd input")
	}

	data, err := io.ReadAll(r)
	if err != nil {
		fatal("read input: %v", err)
	}
	return data
}

// decodeHex strips whitespace from hex input and decodes it, so both
// "81a16101" and "81 a1 61 01" work.
func decodeHex(data []byte) []byte {
	cleaned := bytes.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, data)
	if len(cleaned) == 0 {
		fatal("empty hex input")
	}
	decoded := make([]byte, hex.DecodedLen(len(cleaned)))
	n, err := hex.Decode(decoded, cleaned)
	if err != nil {
		fatal("decode hex input: %v", err)
	}
	return decoded[:n]
}

// writeOutput writes data to --out or stdout, compressing when forced
// or when the target name ends in .zst.
func writeOutput(path string, data []byte, forceZstd bool, log zerolog.Logger) {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			fatal("create output: %v", err)
		}
		defer f.Close()
		w = f
	}

	if forceZstd || strings.HasSuffix(path, ".zst") {
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
		if err != nil {
			fatal("zstd writer: %v", err)
		}
		if _, err := enc.Write(data); err != nil {
			fatal("write output: %v", err)
		}
		if err := enc.Close(); err != nil {
			fatal("flush zstd output: %v", err)
		}
		log.Debug().Int("raw_bytes", len(data)).Str("output", displayName(path)).Msg("compressed zstd output")
		return
	}

	if _, err := w.Write(data); err != nil {
		fatal("write output: %v", err)
	}
}

func displayName(path string) string {
	if path == "" {
		return "(stdio)"
	}
	return path
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "msgpack: "+format+"\n", args...)
	os.Exit(1)
}

// ============================================================
// encode
// ============================================================

func cmdEncode(args []string) {
	var (
		c          commonFlags
		format     string
		configPath string
		stringMode string
		arrayMode  string
		numberMode string
	)
	fs := newFlagSet("encode", &c)
	fs.StringVar(&format, "format", "json", "input format: json, yaml, cbor")
	fs.StringVar(&configPath, "config", "", "TOML file with encode modes")
	fs.StringVar(&stringMode, "string-mode", "", "modern, legacy, or binary")
	fs.StringVar(&arrayMode, "array-mode", "", "strict, permissive, or always-map")
	fs.StringVar(&numberMode, "number-mode", "", "float64 or float32")
	fs.Parse(args)

	log := newLogger(c.verbose)
	opts := resolveOptions(configPath, stringMode, arrayMode, numberMode, log)

	data := readInput(fileArg(fs), false, log)

	native, err := parseInput(data, format)
	if err != nil {
		fatal("parse %s input: %v", format, err)
	}

	v, err := msgpack.FromGo(native)
	if err != nil {
		fatal("convert input: %v", err)
	}

	packed, err := msgpack.PackWithOptions(v, opts)
	if err != nil {
		fatal("encode: %v", err)
	}
	log.Debug().
		Int("bytes_in", len(data)).
		Int("bytes_out", len(packed)).
		Str("string_mode", opts.StringMode.String()).
		Str("array_mode", opts.ArrayMode.String()).
		Str("number_mode", opts.NumberMode.String()).
		Msg("encoded")

	if c.hex {
		packed = append([]byte(hex.EncodeToString(packed)), '\n')
	}
	writeOutput(c.out, packed, c.zstd, log)
}

// parseInput turns textual input into the native Go shape FromGo
// accepts. JSON numbers stay json.Number so integer precision
// survives the trip through the bridge.
func parseInput(data []byte, format string) (any, error) {
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case "yaml":
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "cbor":
		var v any
		if err := cbor.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json, yaml, or cbor)", format)
	}
}

// ============================================================
// decode
// ============================================================

func cmdDecode(args []string) {
	var (
		c       commonFlags
		format  string
		query   string
		compact bool
	)
	fs := newFlagSet("decode", &c)
	fs.StringVar(&format, "format", "json", "output format: json, yaml, cbor")
	fs.StringVar(&query, "query", "", "JMESPath expression applied to the value")
	fs.BoolVarP(&compact, "compact", "c", false, "compact JSON output")
	fs.Parse(args)

	log := newLogger(c.verbose)

	data := readInput(fileArg(fs), c.zstd, log)
	if c.hex {
		data = decodeHex(data)
	}

	v, err := msgpack.Unpack(data)
	if err != nil {
		if errors.Is(err, msgpack.ErrExtraBytes) {
			fatal("decode: %v (use \"msgpack stream\" for concatenated values)", err)
		}
		fatal("decode: %v", err)
	}
	log.Debug().Int("wire_bytes", len(data)).Stringer("value", v).Msg("decoded")

	native, err := v.Go()
	if err != nil {
		fatal("convert value: %v", err)
	}

	if query != "" {
		native, err = jmespath.Search(query, native)
		if err != nil {
			fatal("query %q: %v", query, err)
		}
	}

	out, err := renderOutput(native, format, compact)
	if err != nil {
		fatal("render %s output: %v", format, err)
	}
	writeOutput(c.out, out, false, log)
}

// renderOutput serializes a native Go value in the requested format.
// JSON objects need string keys, so mixed-key maps are stringified
// for that format only; YAML and CBOR carry typed keys natively.
func renderOutput(native any, format string, compact bool) ([]byte, error) {
	switch format {
	case "json":
		native = stringifyKeys(native)
		var out []byte
		var err error
		if compact {
			out, err = json.Marshal(native)
		} else {
			out, err = json.MarshalIndent(native, "", "  ")
		}
		if err != nil {
			return nil, err
		}
		return append(out, '\n'), nil
	case "yaml":
		return yaml.Marshal(native)
	case "cbor":
		return cbor.Marshal(native)
	default:
		return nil, fmt.Errorf("unknown format %q (want json, yaml, or cbor)", format)
	}
}

// stringifyKeys rewrites map[any]any trees into map[string]any so
// encoding/json can serialize them.
func stringifyKeys(native any) any {
	switch val := native.(type) {
	case map[any]any:
		obj := make(map[string]any, len(val))
		for k, v := range val {
			obj[fmt.Sprint(k)] = stringifyKeys(v)
		}
		return obj
	case map[string]any:
		for k, v := range val {
			val[k] = stringifyKeys(v)
		}
		return val
	case []any:
		for i, v := range val {
			val[i] = stringifyKeys(v)
		}
		return val
	default:
		return native
	}
}

// ============================================================
// stream
// ============================================================

func cmdStream(args []string) {
	var (
		c     commonFlags
		query string
	)
	fs := newFlagSet("stream", &c)
	fs.StringVar(&query, "query", "", "JMESPath expression applied to each value")
	fs.Parse(args)

	log := newLogger(c.verbose)

	var r io.Reader = os.Stdin
	path := fileArg(fs)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			fatal("open input: %v", err)
		}
		defer f.Close()
		r = f
	}
	if c.zstd || strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(r)
		if err != nil {
			fatal("zstd reader: %v", err)
		}
		defer dec.Close()
		r = dec
	}

	u := msgpack.NewStreamUnpacker(r)
	count := 0
	for {
		end, v, err := u.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			fatal("value %d (at offset %d): %v", count+1, end, err)
		}
		count++

		native, err := v.Go()
		if err != nil {
			fatal("value %d: %v", count, err)
		}
		if query != "" {
			native, err = jmespath.Search(query, native)
			if err != nil {
				fatal("value %d: query %q: %v", count, query, err)
			}
		}

		line, err := json.Marshal(stringifyKeys(native))
		if err != nil {
			fatal("value %d: render: %v", count, err)
		}
		fmt.Println(string(line))
	}

	log.Debug().Int("values", count).Msg("stream drained")
	fmt.Fprintf(os.Stderr, "--- %d values decoded ---\n", count)
}
