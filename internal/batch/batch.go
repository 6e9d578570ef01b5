// Package batch runs a trace-processing pipeline over many files with
// a worker pool. It handles SEG-Y files and single-column CSV traces.
package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/san-kum/geoforge/internal/logger"
	"github.com/san-kum/geoforge/internal/segy"
	"github.com/san-kum/geoforge/internal/trace"
)

var log = logger.ForComponent("batch")

var (
	// ErrNoFiles indicates the glob matched nothing.
	ErrNoFiles = errors.New("batch: no input files matched")

	// ErrUnknownFormat indicates an input extension the pipeline
	// cannot handle.
	ErrUnknownFormat = errors.New("batch: unknown input format")
)

// Pipeline is the per-trace processing configuration.
type Pipeline struct {
	Detrend    bool    `yaml:"detrend"`
	Taper      float64 `yaml:"taper"`
	Filter     string  `yaml:"filter"` // lowpass, highpass, bandpass or empty
	FreqMin    float64 `yaml:"freqmin"`
	FreqMax    float64 `yaml:"freqmax"`
	Decimate   int     `yaml:"decimate"`
	SampleRate float64 `yaml:"sample_rate"` // Hz, used for CSV inputs
	OutputDir  string  `yaml:"output"`
}

// Result reports the outcome for one input file.
type Result struct {
	File     string
	Status   string // "success" or "error"
	Output   string
	Err      error
	NTraces  int
	Duration time.Duration
}

// Discover expands a doublestar glob into a sorted file list.
func Discover(pattern string) ([]string, error) {
	files, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("batch: bad glob %q: %w", pattern, err)
	}
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	return files, nil
}

// Run processes the files with the given number of workers. Every file
// yields a Result; a failing file does not stop the pool. Cancelling
// the context stops feeding new files.
func Run(ctx context.Context, files []string, p Pipeline, workers int) []Result {
	if workers < 1 {
		workers = 1
	}
	jobs := make(chan string)
	out := make(chan Result)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				out <- p.ProcessFile(path)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range files {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]Result, 0, len(files))
	for r := range out {
		if r.Err != nil {
			log.Warn("file failed", "file", r.File, "error", r.Err)
		} else {
			log.Info("file processed", "file", r.File, "output", r.Output,
				"traces", r.NTraces, "took", r.Duration)
		}
		results = append(results, r)
	}
	return results
}

// Summary counts successes and failures.
func Summary(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.Err == nil {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// ProcessFile runs the pipeline over a single input file.
func (p Pipeline) ProcessFile(path string) Result {
	start := time.Now()
	res := Result{File: path, Status: "success"}

	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sgy", ".segy":
		res.Output, res.NTraces, err = p.processSEGY(path)
	case ".csv", ".txt":
		res.Output, res.NTraces, err = p.processCSV(path)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownFormat, filepath.Ext(path))
	}
	if err != nil {
		res.Status = "error"
		res.Err = err
	}
	res.Duration = time.Since(start)
	return res
}

// apply runs the configured steps over one trace, returning the output
// samples and sample rate (decimation changes both).
func (p Pipeline) apply(x []float64, fs float64) ([]float64, float64, error) {
	if p.Detrend {
		trace.Demean(x)
		trace.DetrendLinear(x)
	}
	if p.Taper > 0 {
		trace.Taper(x, p.Taper)
	}
	var err error
	switch p.Filter {
	case "":
	case "lowpass":
		err = trace.Lowpass(x, fs, p.FreqMax)
	case "highpass":
		err = trace.Highpass(x, fs, p.FreqMin)
	case "bandpass":
		err = trace.Bandpass(x, fs, p.FreqMin, p.FreqMax)
	default:
		err = fmt.Errorf("batch: unknown filter %q", p.Filter)
	}
	if err != nil {
		return nil, 0, err
	}
	if p.Decimate > 1 {
		x, err = trace.Decimate(x, fs, p.Decimate)
		if err != nil {
			return nil, 0, err
		}
		fs /= float64(p.Decimate)
	}
	return x, fs, nil
}

func (p Pipeline) outPath(in, ext string) string {
	stem := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return filepath.Join(p.OutputDir, stem+ext)
}

func (p Pipeline) processSEGY(path string) (string, int, error) {
	r, err := segy.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer r.Close()
	if r.Bin.Interval <= 0 {
		return "", 0, fmt.Errorf("batch: %s has no sample interval", path)
	}
	fs := 1e6 / float64(r.Bin.Interval)

	// Probe the first trace to size the output file.
	first, err := r.ReadTrace(0)
	if err != nil {
		return "", 0, err
	}
	probe, outFS, err := p.apply(first, fs)
	if err != nil {
		return "", 0, err
	}

	out := p.outPath(path, ".sgy")
	w, err := segy.Create(out, segy.Spec{
		RawText: r.RawText,
		RawBin:  r.RawBin,
		Samples: len(probe),
		Format:  r.Bin.Format,
		Dt:      int(1e6 / outFS),
	})
	if err != nil {
		return "", 0, err
	}

	for i := 0; i < r.TraceCount; i++ {
		hdr, err := r.ReadRawHeader(i)
		if err != nil {
			w.Close()
			return "", 0, err
		}
		samples, err := r.ReadTrace(i)
		if err != nil {
			w.Close()
			return "", 0, err
		}
		samples, _, err = p.apply(samples, fs)
		if err != nil {
			w.Close()
			return "", 0, err
		}
		if err := w.WriteTrace(hdr, samples); err != nil {
			w.Close()
			return "", 0, err
		}
	}
	return out, r.TraceCount, w.Close()
}

func (p Pipeline) processCSV(path string) (string, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	var samples []float64
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			if line == 1 {
				continue // header row
			}
			return "", 0, fmt.Errorf("batch: %s line %d: %w", path, line, err)
		}
		samples = append(samples, v)
	}
	if err := sc.Err(); err != nil {
		return "", 0, err
	}
	if len(samples) == 0 {
		return "", 0, fmt.Errorf("batch: %s has no samples", path)
	}

	fs := p.SampleRate
	if fs <= 0 {
		fs = 100
	}
	samples, _, err = p.apply(samples, fs)
	if err != nil {
		return "", 0, err
	}

	out := p.outPath(path, ".csv")
	of, err := os.Create(out)
	if err != nil {
		return "", 0, err
	}
	w := bufio.NewWriter(of)
	for _, v := range samples {
		fmt.Fprintf(w, "%g\n", v)
	}
	if err := w.Flush(); err != nil {
		of.Close()
		return "", 0, err
	}
	return out, 1, of.Close()
}
