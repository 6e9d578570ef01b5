package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/geoforge/internal/segy"
)

func writeCSV(t *testing.T, path string, n int) {
	t.Helper()
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%f\n", 2.0+0.5*float64(i))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	writeCSV(t, filepath.Join(dir, "a.csv"), 5)
	writeCSV(t, filepath.Join(dir, "b.csv"), 5)

	files, err := Discover(filepath.Join(dir, "*.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("discovered %d files, want 2", len(files))
	}

	if _, err := Discover(filepath.Join(dir, "*.sgy")); err != ErrNoFiles {
		t.Errorf("empty glob: got %v", err)
	}
}

func TestProcessCSV(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "trace.csv")
	writeCSV(t, in, 10)

	p := Pipeline{Detrend: true, Decimate: 2, SampleRate: 100, OutputDir: dir + "/out"}
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	res := p.ProcessFile(in)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.Status != "success" {
		t.Errorf("status = %s", res.Status)
	}

	data, err := os.ReadFile(res.Output)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Count(strings.TrimRight(string(data), "\n"), "\n") + 1
	if lines != 5 {
		t.Errorf("output has %d samples, want 5 after decimate", lines)
	}
}

func TestProcessSEGY(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "line.sgy")

	w, err := segy.Create(in, segy.Spec{Samples: 50, Format: 5, Dt: 4000})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 4; i++ {
		samples := make([]float64, 50)
		for j := range samples {
			samples[j] = float64(j % 7)
		}
		if err := w.WriteTrace(nil, samples); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	p := Pipeline{Filter: "lowpass", FreqMax: 40, OutputDir: filepath.Join(dir, "out")}
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	res := p.ProcessFile(in)
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.NTraces != 4 {
		t.Errorf("traces = %d, want 4", res.NTraces)
	}

	out, err := segy.Open(res.Output)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	if out.TraceCount != 4 || out.Bin.Samples != 50 || out.Bin.Interval != 4000 {
		t.Errorf("output header: %+v traces=%d", out.Bin, out.TraceCount)
	}
}

func TestRunPoolContinuesPastErrors(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.csv")
	writeCSV(t, good, 20)
	missing := filepath.Join(dir, "missing.csv")
	unknown := filepath.Join(dir, "odd.bin")
	if err := os.WriteFile(unknown, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := Pipeline{OutputDir: filepath.Join(dir, "out")}
	if err := os.MkdirAll(p.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	results := Run(context.Background(), []string{good, missing, unknown}, p, 2)
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	ok, failed := Summary(results)
	if ok != 1 || failed != 2 {
		t.Errorf("summary = %d ok, %d failed; want 1/2", ok, failed)
	}
}
