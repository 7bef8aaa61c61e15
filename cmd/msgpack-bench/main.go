// msgpack-bench - codec benchmark runner
//
// Compares MessagePack encoding vs JSON-minified over a corpus of
// JSON documents:
//   - Bytes on wire, raw and zstd-compressed
//   - Encode/decode throughput
//
// Output: CSV and markdown summary
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/luapower/messagepack/msgpack"
)

type CaseResult struct {
	Name       string
	JSONBytes  int
	PackBytes  int
	BytesSaved int
	BytesPct   float64
	JSONZstd   int
	PackZstd   int
	EncodeMBps float64
	DecodeMBps float64
}

type Manifest struct {
	Version     string `json:"version"`
	Description string `json:"description"`
	Cases       []struct {
		Name string `json:"name"`
		File string `json:"file"`
	} `json:"cases"`
}

func main() {
	testdataDir := findTestdata()
	if testdataDir == "" {
		fmt.Fprintln(os.Stderr, "Cannot find testdata/bench_json directory")
		os.Exit(1)
	}

	manifestPath := filepath.Join(testdataDir, "manifest.json")
	manifestData, err := os.ReadFile(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot read manifest: %v\n", err)
		os.Exit(1)
	}

	var manifest Manifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot parse manifest: %v\n", err)
		os.Exit(1)
	}

	zenc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		fmt.Fprintf(os.Stderr, "zstd: %v\n", err)
		os.Exit(1)
	}
	defer zenc.Close()

	fmt.Fprintf(os.Stderr, "MessagePack Benchmark Runner\n")
	fmt.Fprintf(os.Stderr, "============================\n")
	fmt.Fprintf(os.Stderr, "Corpus: %s (%d cases)\n\n", manifest.Version, len(manifest.Cases))

	var results []CaseResult
	var totalJSON, totalPack, totalJSONZstd, totalPackZstd int

	for _, c := range manifest.Cases {
		casePath := filepath.Join(testdataDir, c.File)
		jsonData, err := os.ReadFile(casePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: %v\n", c.Name, err)
			continue
		}

		// Parse with number precision intact, then bridge.
		dec := json.NewDecoder(bytes.NewReader(jsonData))
		dec.UseNumber()
		var native any
		if err := dec.Decode(&native); err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: parse error: %v\n", c.Name, err)
			continue
		}
		v, err := msgpack.FromGo(native)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: bridge error: %v\n", c.Name, err)
			continue
		}
		packed, err := msgpack.Pack(v)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: encode error: %v\n", c.Name, err)
			continue
		}

		// Minify JSON for fair comparison.
		jsonMin, err := json.Marshal(native)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: JSON marshal error: %v\n", c.Name, err)
			continue
		}

		encNs, err := timePerOp(func() error {
			_, err := msgpack.Pack(v)
			return err
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: encode timing: %v\n", c.Name, err)
			continue
		}
		decNs, err := timePerOp(func() error {
			_, err := msgpack.Unpack(packed)
			return err
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skip %s: decode timing: %v\n", c.Name, err)
			continue
		}

		jsonBytes := len(jsonMin)
		packBytes := len(packed)
		bytesSaved := jsonBytes - packBytes
		bytesPct := 0.0
		if jsonBytes > 0 {
			bytesPct = float64(bytesSaved) / float64(jsonBytes) * 100.0
		}
		jsonZstd := len(zenc.EncodeAll(jsonMin, nil))
		packZstd := len(zenc.EncodeAll(packed, nil))

		results = append(results, CaseResult{
			Name:       c.Name,
			JSONBytes:  jsonBytes,
			PackBytes:  packBytes,
			BytesSaved: bytesSaved,
			BytesPct:   bytesPct,
			JSONZstd:   jsonZstd,
			PackZstd:   packZstd,
			EncodeMBps: mbps(packBytes, encNs),
			DecodeMBps: mbps(packBytes, decNs),
		})

		totalJSON += jsonBytes
		totalPack += packBytes
		totalJSONZstd += jsonZstd
		totalPackZstd += packZstd
	}

	if len(results) == 0 {
		fmt.Fprintln(os.Stderr, "No cases ran")
		os.Exit(1)
	}

	csvPath := "bench_results.csv"
	csvFile, err := os.Create(csvPath)
	if err == nil {
		writeCSV(csvFile, results)
		csvFile.Close()
		fmt.Fprintf(os.Stderr, "CSV written to: %s\n", csvPath)
	}

	mdPath := "BENCH.md"
	mdFile, err := os.Create(mdPath)
	if err == nil {
		writeMarkdown(mdFile, results, totalJSON, totalPack, totalJSONZstd, totalPackZstd, manifest.Version)
		mdFile.Close()
		fmt.Fprintf(os.Stderr, "Markdown written to: %s\n", mdPath)
	}

	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Cases:            %d\n", len(results))
	fmt.Printf("JSON total:       %d bytes (%d zstd)\n", totalJSON, totalJSONZstd)
	fmt.Printf("MessagePack total: %d bytes (%d zstd)\n", totalPack, totalPackZstd)
	fmt.Printf("Bytes saved:      %d (%.1f%%)\n", totalJSON-totalPack, float64(totalJSON-totalPack)/float64(totalJSON)*100)
	fmt.Printf("Saved after zstd: %d (%.1f%%)\n", totalJSONZstd-totalPackZstd, float64(totalJSONZstd-totalPackZstd)/float64(totalJSONZstd)*100)
}

// timePerOp measures the average wall time of f in nanoseconds. Runs
// for at least 30ms and at least 50 iterations to smooth out noise.
func timePerOp(f func() error) (float64, error) {
	const minIters = 50
	const minDur = 30 * time.Millisecond

	for i := 0; i < 3; i++ {
		if err := f(); err != nil {
			return 0, err
		}
	}

	iters := 0
	start := time.Now()
	for time.Since(start) < minDur || iters < minIters {
		if err := f(); err != nil {
			return 0, err
		}
		iters++
	}
	return float64(time.Since(start).Nanoseconds()) / float64(iters), nil
}

// mbps converts a per-op nanosecond cost into MB/s over n bytes.
func mbps(n int, nsPerOp float64) float64 {
	if nsPerOp == 0 {
		return 0
	}
	return float64(n) * 1000 / nsPerOp
}

func findTestdata() string {
	paths := []string{
		"testdata/bench_json",
		"../testdata/bench_json",
		"../../testdata/bench_json",
	}

	for _, p := range paths {
		if _, err := os.Stat(filepath.Join(p, "manifest.json")); err == nil {
			return p
		}
	}

	return ""
}

func writeCSV(w io.Writer, results []CaseResult) {
	fmt.Fprintln(w, "name,json_bytes,msgpack_bytes,bytes_saved,bytes_pct,json_zstd,msgpack_zstd,encode_mbps,decode_mbps")
	for _, r := range results {
		fmt.Fprintf(w, "%s,%d,%d,%d,%.1f,%d,%d,%.1f,%.1f\n",
			r.Name, r.JSONBytes, r.PackBytes, r.BytesSaved, r.BytesPct,
			r.JSONZstd, r.PackZstd, r.EncodeMBps, r.DecodeMBps)
	}
}

func writeMarkdown(w io.Writer, results []CaseResult, totalJSON, totalPack, totalJSONZstd, totalPackZstd int, version string) {
	fmt.Fprintf(w, "# MessagePack Benchmark Results\n\n")
	fmt.Fprintf(w, "**Date:** %s  \n", time.Now().Format("2006-01-02"))
	fmt.Fprintf(w, "**Corpus:** %s (%d cases)  \n\n", version, len(results))

	fmt.Fprintf(w, "## Summary\n\n")
	fmt.Fprintf(w, "| Metric | JSON (minified) | MessagePack | Savings |\n")
	fmt.Fprintf(w, "|--------|-----------------|-------------|--------|\n")
	bytesSaved := totalJSON - totalPack
	bytesPct := float64(bytesSaved) / float64(totalJSON) * 100
	zstdSaved := totalJSONZstd - totalPackZstd
	zstdPct := float64(zstdSaved) / float64(totalJSONZstd) * 100
	fmt.Fprintf(w, "| **Bytes** | %d | %d | %d (%.1f%%) |\n", totalJSON, totalPack, bytesSaved, bytesPct)
	fmt.Fprintf(w, "| **Bytes (zstd)** | %d | %d | %d (%.1f%%) |\n\n", totalJSONZstd, totalPackZstd, zstdSaved, zstdPct)

	fmt.Fprintf(w, "## Analysis\n\n")

	sorted := make([]CaseResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].BytesPct > sorted[j].BytesPct
	})

	fmt.Fprintf(w, "### Top 5 Space Savings (by bytes)\n\n")
	fmt.Fprintf(w, "| Case | JSON | MessagePack | Saved |\n")
	fmt.Fprintf(w, "|------|------|-------------|-------|\n")
	for i := 0; i < min(5, len(sorted)); i++ {
		r := sorted[i]
		fmt.Fprintf(w, "| %s | %d | %d | %.1f%% |\n", r.Name, r.JSONBytes, r.PackBytes, r.BytesPct)
	}

	fmt.Fprintf(w, "\n### Cases Where JSON is Smaller\n\n")
	var worse []CaseResult
	for _, r := range results {
		if r.BytesSaved < 0 {
			worse = append(worse, r)
		}
	}
	if len(worse) == 0 {
		fmt.Fprintf(w, "_None - MessagePack is smaller or equal in all cases._\n\n")
	} else {
		fmt.Fprintf(w, "| Case | JSON | MessagePack | Overhead |\n")
		fmt.Fprintf(w, "|------|------|-------------|----------|\n")
		for _, r := range worse {
			fmt.Fprintf(w, "| %s | %d | %d | +%d bytes |\n", r.Name, r.JSONBytes, r.PackBytes, -r.BytesSaved)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "## Throughput\n\n")
	fmt.Fprintf(w, "| Case | Encode MB/s | Decode MB/s |\n")
	fmt.Fprintf(w, "|------|-------------|-------------|\n")
	for _, r := range results {
		fmt.Fprintf(w, "| %s | %.1f | %.1f |\n", truncateName(r.Name, 25), r.EncodeMBps, r.DecodeMBps)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "## Methodology\n\n")
	fmt.Fprintf(w, "- **JSON:** Minified (no whitespace), using Go's `json.Marshal`\n")
	fmt.Fprintf(w, "- **MessagePack:** Default modes via `msgpack.Pack`\n")
	fmt.Fprintf(w, "- **zstd:** Level `SpeedBetterCompression`, whole-document `EncodeAll`\n")
	fmt.Fprintf(w, "- **Throughput:** Wall time over the packed size, 30ms minimum per measurement\n\n")

	fmt.Fprintf(w, "## Detailed Results\n\n")
	fmt.Fprintf(w, "| Case | JSON Bytes | MsgPack Bytes | Bytes %% | JSON zstd | MsgPack zstd |\n")
	fmt.Fprintf(w, "|------|------------|---------------|---------|-----------|--------------|\n")
	for _, r := range results {
		sign := ""
		if r.BytesPct > 0 {
			sign = "+"
		}
		fmt.Fprintf(w, "| %s | %d | %d | %s%.1f%% | %d | %d |\n",
			truncateName(r.Name, 25), r.JSONBytes, r.PackBytes, sign, r.BytesPct,
			r.JSONZstd, r.PackZstd)
	}
}

func truncateName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
