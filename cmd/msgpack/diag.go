package main

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/luapower/messagepack/msgpack"
)

// cmdDiag prints one line per value in the input: the byte range it
// occupies, its leading wire tag, and a typed diagnostic notation that
// keeps distinctions JSON would erase (int vs float, string vs binary,
// extensions, non-string keys).
func cmdDiag(args []string) {
	var c commonFlags
	fs := newFlagSet("diag", &c)
	fs.Parse(args)

	log := newLogger(c.verbose)

	data := readInput(fileArg(fs), c.zstd, log)
	if c.hex {
		data = decodeHex(data)
	}

	var report bytes.Buffer
	if err := diagnose(data, &report); err != nil {
		fatal("%v", err)
	}
	writeOutput(c.out, report.Bytes(), false, log)
}

// diagnose walks every value in data and writes one annotated line per
// value. Trailing garbage or truncation is reported with the offset
// where the broken value started.
func diagnose(data []byte, w io.Writer) error {
	u := msgpack.NewUnpacker(data)
	start := 0
	for {
		end, v, err := u.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("value starting at offset %d: %w", start, err)
		}
		fmt.Fprintf(w, "@%06x..%06x  %-10s  %s\n",
			start, end, msgpack.TagName(data[start]), notation(v))
		start = end
	}
}

// notation renders a value in a diagnostic text form. It is for human
// eyes, not for re-parsing.
func notation(v *msgpack.Value) string {
	switch v.Kind() {
	case msgpack.KindNil:
		return "nil"
	case msgpack.KindBool:
		b, _ := v.AsBool()
		return strconv.FormatBool(b)
	case msgpack.KindInt:
		i, _ := v.AsInt()
		return strconv.FormatInt(i, 10)
	case msgpack.KindUint:
		u, _ := v.AsUint()
		return strconv.FormatUint(u, 10)
	case msgpack.KindFloat:
		f, _ := v.AsFloat()
		return floatNotation(f)
	case msgpack.KindString:
		s, _ := v.AsStr()
		return strconv.Quote(s)
	case msgpack.KindBinary:
		b, _ := v.AsBin()
		return fmt.Sprintf("h'%x'", b)
	case msgpack.KindArray:
		elems, _ := v.AsArray()
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = notation(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case msgpack.KindMap, msgpack.KindTable:
		entries, _ := v.AsMap()
		if v.Kind() == msgpack.KindTable {
			entries, _ = v.AsTable()
		}
		parts := make([]string, len(entries))
		for i, e := range entries {
			parts[i] = notation(e.Key) + ": " + notation(e.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case msgpack.KindExt:
		if v.IsTimestamp() {
			t, err := v.AsTimestamp()
			if err == nil {
				return "ts(" + t.Format(time.RFC3339Nano) + ")"
			}
		}
		typ, payload, _ := v.AsExt()
		return fmt.Sprintf("ext(%d, h'%x')", typ, payload)
	default:
		return v.String()
	}
}

// floatNotation keeps a trailing ".0" on integral floats so they stay
// visually distinct from ints.
func floatNotation(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
