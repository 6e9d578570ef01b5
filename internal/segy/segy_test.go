package segy

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestIBMFloatKnownValue(t *testing.T) {
	// -118.625 is the canonical IBM single-precision example: 0xC2769000.
	got := ibmToFloat(0xC2769000)
	if math.Abs(got-(-118.625)) > 1e-9 {
		t.Errorf("ibmToFloat(0xC2769000) = %f, want -118.625", got)
	}
	if bits := floatToIBM(-118.625); bits != 0xC2769000 {
		t.Errorf("floatToIBM(-118.625) = %#x, want 0xC2769000", bits)
	}
}

func TestIBMFloatRoundTrip(t *testing.T) {
	values := []float64{0, 1, -1, 0.15625, 3.1415926, -2048.5, 1e-6, 1e6}
	for _, v := range values {
		got := ibmToFloat(floatToIBM(v))
		tol := math.Abs(v) * 1e-6
		if tol < 1e-12 {
			tol = 1e-12
		}
		if math.Abs(got-v) > tol {
			t.Errorf("roundtrip %g -> %g", v, got)
		}
	}
}

func TestTextHeaderRoundTrip(t *testing.T) {
	text := "C 1 CLIENT ACME ENERGY\nC 2 LINE 42\nC 3 SAMPLE INTERVAL 4MS"
	raw, err := EncodeText(text)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) != TextHeaderSize {
		t.Fatalf("encoded size = %d", len(raw))
	}
	decoded, err := DecodeText(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(decoded, "CLIENT ACME ENERGY") {
		t.Errorf("decoded header lost content:\n%s", decoded[:200])
	}
	lines := strings.Split(strings.TrimRight(decoded, "\n"), "\n")
	if len(lines) != 40 {
		t.Errorf("decoded cards = %d, want 40", len(lines))
	}
}

// writeTestFile creates a small file with geometry headers and a ramp of
// sample values per trace.
func writeTestFile(t *testing.T, path string, format, nTraces, nSamples int) {
	t.Helper()
	w, err := Create(path, Spec{Samples: nSamples, Format: format, Dt: 4000})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < nTraces; i++ {
		hdr := make([]byte, TraceHeaderSize)
		EncodeTraceHeader(hdr, TraceHeader{
			TraceSeq: int32(i + 1),
			Inline:   int32(100 + i/4),
			Xline:    int32(200 + i%4),
			CDPX:     int32(1000 + 25*i),
			CDPY:     int32(5000),
			Offset:   int32(100 * (i + 1)),
			Scalar:   -100,
			Dt:       4000,
		})
		samples := make([]float64, nSamples)
		for j := range samples {
			samples[j] = float64(i) + float64(j)/100
		}
		if err := w.WriteTrace(hdr, samples); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	for _, format := range []int{1, 2, 3, 5, 8} {
		path := filepath.Join(t.TempDir(), "test.sgy")
		writeTestFile(t, path, format, 8, 25)

		r, err := Open(path)
		if err != nil {
			t.Fatalf("format %d: %v", format, err)
		}
		if r.TraceCount != 8 {
			t.Errorf("format %d: tracecount = %d, want 8", format, r.TraceCount)
		}
		if r.Bin.Samples != 25 || r.Bin.Format != format || r.Bin.Interval != 4000 {
			t.Errorf("format %d: bin header = %+v", format, r.Bin)
		}

		h, err := r.ReadHeader(3)
		if err != nil {
			t.Fatal(err)
		}
		if h.Inline != 100 || h.Xline != 203 || h.Scalar != -100 {
			t.Errorf("format %d: header = %+v", format, h)
		}

		trace, err := r.ReadTrace(3)
		if err != nil {
			t.Fatal(err)
		}
		// Integer formats truncate the fractional ramp.
		tol := 0.011
		if format == 2 || format == 3 || format == 8 {
			tol = 1.0
		}
		if math.Abs(trace[10]-3.10) > tol {
			t.Errorf("format %d: trace[10] = %f, want ~3.10", format, trace[10])
		}
		r.Close()
	}
}

func TestWriterForcesTraceInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resampled.sgy")
	w, err := Create(path, Spec{Samples: 10, Format: 5, Dt: 8000})
	if err != nil {
		t.Fatal(err)
	}
	// Stale header from the source file: old rate and sample count.
	hdr := make([]byte, TraceHeaderSize)
	EncodeTraceHeader(hdr, TraceHeader{TraceSeq: 1, Dt: 4000, NSamples: 40})
	if err := w.WriteTrace(hdr, make([]float64, 10)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	h, err := r.ReadHeader(0)
	if err != nil {
		t.Fatal(err)
	}
	if h.Dt != 8000 {
		t.Errorf("trace dt = %d, want the new interval 8000", h.Dt)
	}
	if h.NSamples != 10 {
		t.Errorf("trace nsamples = %d, want 10", h.NSamples)
	}
}

func TestOpenTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trunc.sgy")
	writeTestFile(t, path, 5, 4, 25)

	info, _ := os.Stat(path)
	if err := os.Truncate(path, info.Size()-7); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); err != ErrTruncated {
		t.Errorf("expected ErrTruncated, got %v", err)
	}
}

func TestScanGeometry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geom.sgy")
	writeTestFile(t, path, 5, 16, 25)

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	g, err := r.ScanGeometry()
	if err != nil {
		t.Fatal(err)
	}
	if !g.HasInlines {
		t.Fatal("geometry not detected")
	}
	if g.InlineMin != 100 || g.InlineMax != 103 {
		t.Errorf("inline range %d-%d, want 100-103", g.InlineMin, g.InlineMax)
	}
	if g.UniqueInlines != 4 || g.UniqueXlines != 4 {
		t.Errorf("unique: %d inlines %d xlines, want 4/4", g.UniqueInlines, g.UniqueXlines)
	}
	if g.Scalar != -100 {
		t.Errorf("scalar = %d, want -100", g.Scalar)
	}
}

func TestExtractByTraces(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.sgy")
	dst := filepath.Join(dir, "dst.sgy")
	writeTestFile(t, src, 5, 16, 25)

	r, err := Open(src)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	rng, err := ParseRange("4:8")
	if err != nil {
		t.Fatal(err)
	}
	n, err := Extract(r, dst, ExtractOptions{Traces: &rng})
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Fatalf("extracted %d traces, want 4", n)
	}

	out, err := Open(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	if out.TraceCount != 4 {
		t.Errorf("output tracecount = %d", out.TraceCount)
	}
	h, _ := out.ReadHeader(0)
	if h.TraceSeq != 5 {
		t.Errorf("first extracted trace seq = %d, want 5", h.TraceSeq)
	}
}

func TestExtractByInlinesAndTime(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.sgy")
	dst := filepath.Join(dir, "dst.sgy")
	writeTestFile(t, src, 5, 16, 25) // inlines 100..103, dt 4ms, 0..96ms

	r, err := Open(src)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	il, _ := ParseRange("101:103")
	tw, _ := ParseRange("20:60")
	n, err := Extract(r, dst, ExtractOptions{Inlines: &il, Time: &tw})
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 {
		t.Fatalf("extracted %d traces, want 8 (2 inlines x 4 xlines)", n)
	}

	out, err := Open(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	// Samples at 20,24,...,56 ms inclusive start, half-open end.
	if out.Bin.Samples != 10 {
		t.Errorf("window samples = %d, want 10", out.Bin.Samples)
	}
	h, _ := out.ReadHeader(0)
	if h.Inline != 101 || h.NSamples != 10 {
		t.Errorf("header = %+v", h)
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in        string
		start, end int
	}{
		{"5", 5, 6},
		{"0:100", 0, 100},
	}
	for _, tt := range tests {
		r, err := ParseRange(tt.in)
		if err != nil {
			t.Fatal(err)
		}
		if r.Start != tt.start || r.End != tt.end {
			t.Errorf("ParseRange(%q) = %+v", tt.in, r)
		}
	}
	if _, err := ParseRange("a:b:c"); err == nil {
		t.Error("expected error for malformed range")
	}
	if _, err := ParseRange("x"); err == nil {
		t.Error("expected error for non-numeric range")
	}
}
