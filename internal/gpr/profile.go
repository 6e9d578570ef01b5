// Package gpr processes ground-penetrating radar profiles: dewow,
// background removal, gain and constant-velocity depth conversion.
package gpr

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/geoforge/internal/logger"
	"github.com/san-kum/geoforge/internal/segy"
	"github.com/san-kum/geoforge/internal/trace"
)

var log = logger.ForComponent("gpr")

// ErrVelocity indicates a non-positive radar velocity.
var ErrVelocity = errors.New("gpr: velocity must be positive")

// Profile is one radargram. Traces holds one sample slice per trace;
// TWTT is the two-way travel time axis in ns shared by all traces.
type Profile struct {
	Path     string
	Traces   [][]float64
	TWTT     []float64 // ns
	Pos      []float64 // m along the profile, one per trace
	DtNs     float64
	Velocity float64   // m/ns, set by SetVelocity
	Depth    []float64 // m, set by SetVelocity
	Steps    []string
	Warnings []string
}

// NumTraces returns the trace count.
func (p *Profile) NumTraces() int { return len(p.Traces) }

// NumSamples returns the samples per trace.
func (p *Profile) NumSamples() int {
	if len(p.Traces) == 0 {
		return 0
	}
	return len(p.Traces[0])
}

// TimeRange returns the last two-way time in ns.
func (p *Profile) TimeRange() float64 {
	if len(p.TWTT) == 0 {
		return 0
	}
	return p.TWTT[len(p.TWTT)-1]
}

// Length returns the profile length in m.
func (p *Profile) Length() float64 {
	if len(p.Pos) == 0 {
		return 0
	}
	return p.Pos[len(p.Pos)-1]
}

func (p *Profile) axes(dtNs float64) {
	if dtNs <= 0 {
		dtNs = 1
	}
	p.DtNs = dtNs
	p.TWTT = make([]float64, p.NumSamples())
	for i := range p.TWTT {
		p.TWTT[i] = float64(i) * dtNs
	}
	p.Pos = make([]float64, p.NumTraces())
	for i := range p.Pos {
		p.Pos[i] = float64(i)
	}
}

// ReadCSV parses a samples-by-traces numeric matrix, one row per time
// sample. dtNs of zero defaults to 1 ns.
func ReadCSV(r io.Reader, dtNs float64) (*Profile, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	var rows [][]float64
	for rowNum := 1; ; rowNum++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gpr: read row %d: %w", rowNum, err)
		}
		if len(rows) > 0 && len(rec) != len(rows[0]) {
			return nil, fmt.Errorf("gpr: row %d has %d columns, expected %d", rowNum, len(rec), len(rows[0]))
		}
		row := make([]float64, len(rec))
		for i, field := range rec {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("gpr: row %d column %d: %w", rowNum, i+1, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("gpr: empty profile")
	}

	p := &Profile{Traces: make([][]float64, len(rows[0]))}
	for t := range p.Traces {
		p.Traces[t] = make([]float64, len(rows))
		for s := range rows {
			p.Traces[t][s] = rows[s][t]
		}
	}
	p.axes(dtNs)
	return p, nil
}

// LoadCSV reads a CSV radargram from disk.
func LoadCSV(path string, dtNs float64) (*Profile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := ReadCSV(f, dtNs)
	if err != nil {
		return nil, err
	}
	p.Path = path
	return p, nil
}

// LoadSEGY reads a SEG-Y radargram; the binary header interval field
// carries the sampling in picoseconds (ns * 1000), the GPR convention.
func LoadSEGY(path string) (*Profile, error) {
	r, err := segy.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	p := &Profile{Path: path, Traces: make([][]float64, r.TraceCount)}
	for i := 0; i < r.TraceCount; i++ {
		if p.Traces[i], err = r.ReadTrace(i); err != nil {
			return nil, err
		}
	}
	p.axes(float64(r.Bin.Interval) / 1000)
	return p, nil
}

// Load picks the loader from the file extension.
func Load(path string, dtNs float64) (*Profile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sgy", ".segy":
		return LoadSEGY(path)
	default:
		return LoadCSV(path, dtNs)
	}
}

func (p *Profile) logStep(format string, args ...any) {
	step := fmt.Sprintf(format, args...)
	p.Steps = append(p.Steps, step)
	log.Info("processed", "step", step, "traces", p.NumTraces())
}

// Dewow removes the low-frequency wow with a running mean of the given
// window in ns, converted to samples and clamped to at least one.
func (p *Profile) Dewow(windowNs float64) error {
	window := int(math.Round(windowNs / p.DtNs))
	if window < 1 {
		window = 1
	}
	if window > p.NumSamples() {
		window = p.NumSamples()
	}
	for _, tr := range p.Traces {
		if err := trace.Dewow(tr, window); err != nil {
			return err
		}
	}
	p.logStep("dewow window=%gns (%d samples)", windowNs, window)
	return nil
}

// RemoveBackground subtracts the mean trace. Profiles with fewer
// traces than the requested window are left untouched with a warning.
func (p *Profile) RemoveBackground(ntraces int) {
	if p.NumTraces() <= ntraces {
		p.Warnings = append(p.Warnings, fmt.Sprintf(
			"profile has fewer traces (%d) than background window (%d)", p.NumTraces(), ntraces))
		return
	}
	trace.BackgroundRemove(p.Traces)
	p.logStep("background removal ntraces=%d", ntraces)
}

// Gain applies a t^power spreading correction.
func (p *Profile) Gain(power float64) {
	for _, tr := range p.Traces {
		trace.TPowGain(tr, p.DtNs, power)
	}
	p.logStep("tpow gain power=%g", power)
}

// AGC normalizes each trace by a running RMS window given in ns.
func (p *Profile) AGC(windowNs float64) error {
	window := int(math.Round(windowNs / p.DtNs))
	if window < 1 {
		window = 1
	}
	if window > p.NumSamples() {
		window = p.NumSamples()
	}
	for _, tr := range p.Traces {
		if err := trace.AGCGain(tr, window); err != nil {
			return err
		}
	}
	p.logStep("agc window=%gns (%d samples)", windowNs, window)
	return nil
}

// SetVelocity fixes the radar velocity and derives the depth axis.
func (p *Profile) SetVelocity(v float64) error {
	if v <= 0 {
		return fmt.Errorf("%w: %g", ErrVelocity, v)
	}
	p.Velocity = v
	p.Depth = trace.DepthConvert(p.TWTT, v)
	p.logStep("velocity=%gm/ns max depth=%.2fm", v, p.MaxDepth())
	return nil
}

// DominantFrequencyMHz returns the dominant frequency of the centre
// trace, 0 for an empty profile.
func (p *Profile) DominantFrequencyMHz() float64 {
	if p.NumTraces() == 0 {
		return 0
	}
	return trace.DominantFrequency(p.Traces[p.NumTraces()/2], 1000/p.DtNs)
}

// MaxDepth returns the depth of the last sample, 0 before SetVelocity.
func (p *Profile) MaxDepth() float64 {
	if len(p.Depth) == 0 {
		return 0
	}
	return p.Depth[len(p.Depth)-1]
}
