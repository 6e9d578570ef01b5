// Package geochem normalizes and classifies whole-rock geochemistry:
// chondrite-normalized REE patterns, TAS classification, Harker trends
// and ternary projections.
package geochem

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/geoforge/internal/logger"
)

var log = logger.ForComponent("geochem")

// ErrFewREE indicates fewer than three REE columns in the input.
var ErrFewREE = errors.New("geochem: need at least 3 REE columns")

// reeOrder lists the lanthanides in atomic-number order.
var reeOrder = []string{
	"La", "Ce", "Pr", "Nd", "Sm", "Eu", "Gd",
	"Tb", "Dy", "Ho", "Er", "Tm", "Yb", "Lu",
}

// chondrite holds CI chondrite REE abundances in ppm
// (McDonough & Sun 1995).
var chondrite = map[string]float64{
	"La": 0.237, "Ce": 0.613, "Pr": 0.0928, "Nd": 0.457,
	"Sm": 0.148, "Eu": 0.0563, "Gd": 0.199, "Tb": 0.0361,
	"Dy": 0.246, "Ho": 0.0546, "Er": 0.160, "Tm": 0.0247,
	"Yb": 0.161, "Lu": 0.0246,
}

// Table is a parsed sample set: numeric columns by oxide/element name
// plus an optional grouping column.
type Table struct {
	Columns  []string
	Data     map[string][]float64
	Group    []string // empty strings without a group column
	N        int
	Warnings []string
}

// ReadCSV parses a header-first CSV of numeric columns. The named
// group column (if any) is kept as labels; unparseable numeric cells
// become NaN.
func ReadCSV(r io.Reader, groupCol string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("geochem: read header: %w", err)
	}
	t := &Table{Data: map[string][]float64{}}
	groupIdx := -1
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
		if header[i] == groupCol && groupCol != "" {
			groupIdx = i
			continue
		}
		t.Columns = append(t.Columns, header[i])
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for i, field := range rec {
			if i >= len(header) {
				break
			}
			if i == groupIdx {
				t.Group = append(t.Group, strings.TrimSpace(field))
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				v = math.NaN()
			}
			t.Data[header[i]] = append(t.Data[header[i]], v)
		}
		t.N++
	}
	if t.N == 0 {
		return nil, fmt.Errorf("geochem: no samples")
	}
	if groupIdx < 0 {
		t.Group = make([]string, t.N)
	}
	log.Info("loaded samples", "n", t.N, "columns", len(t.Columns))
	return t, nil
}

// LoadCSV reads a sample table from disk.
func LoadCSV(path, groupCol string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, groupCol)
}

// Has reports whether a column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.Data[name]
	return ok
}

// Patterns holds chondrite-normalized REE values per sample.
type Patterns struct {
	Elements []string    // present REE in lanthanide order
	Norm     [][]float64 // [sample][element], NaN where dropped
}

// REENormalize divides each REE column by its chondrite abundance.
// Zero or negative concentrations are dropped with a warning.
func (t *Table) REENormalize() (*Patterns, error) {
	var present []string
	for _, el := range reeOrder {
		if t.Has(el) {
			present = append(present, el)
		}
	}
	if len(present) < 3 {
		return nil, fmt.Errorf("%w, found %d", ErrFewREE, len(present))
	}

	p := &Patterns{Elements: present, Norm: make([][]float64, t.N)}
	dropped := 0
	for s := 0; s < t.N; s++ {
		p.Norm[s] = make([]float64, len(present))
		for i, el := range present {
			v := t.Data[el][s]
			if v <= 0 || math.IsNaN(v) {
				p.Norm[s][i] = math.NaN()
				if !math.IsNaN(v) {
					dropped++
				}
				continue
			}
			p.Norm[s][i] = v / chondrite[el]
		}
	}
	if dropped > 0 {
		t.Warnings = append(t.Warnings, fmt.Sprintf(
			"dropped %d non-positive concentrations from normalization", dropped))
	}
	return p, nil
}

func (p *Patterns) index(el string) int {
	for i, e := range p.Elements {
		if e == el {
			return i
		}
	}
	return -1
}

// EuAnomaly returns Eu/Eu* = Eu_N / sqrt(Sm_N * Gd_N) per sample, NaN
// where any of the three is missing.
func (p *Patterns) EuAnomaly() []float64 {
	out := make([]float64, len(p.Norm))
	eu, sm, gd := p.index("Eu"), p.index("Sm"), p.index("Gd")
	for s := range p.Norm {
		if eu < 0 || sm < 0 || gd < 0 {
			out[s] = math.NaN()
			continue
		}
		out[s] = p.Norm[s][eu] / math.Sqrt(p.Norm[s][sm]*p.Norm[s][gd])
	}
	return out
}

// LaYbN returns the normalized La/Yb slope per sample.
func (p *Patterns) LaYbN() []float64 {
	out := make([]float64, len(p.Norm))
	la, yb := p.index("La"), p.index("Yb")
	for s := range p.Norm {
		if la < 0 || yb < 0 {
			out[s] = math.NaN()
			continue
		}
		out[s] = p.Norm[s][la] / p.Norm[s][yb]
	}
	return out
}

// WriteNormalizedCSV emits the normalized patterns with a sample index.
func (p *Patterns) WriteNormalizedCSV(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "sample,%s\n", strings.Join(p.Elements, ",")); err != nil {
		return err
	}
	for s, row := range p.Norm {
		fmt.Fprintf(w, "%d", s+1)
		for _, v := range row {
			if math.IsNaN(v) {
				fmt.Fprint(w, ",")
			} else {
				fmt.Fprintf(w, ",%.6g", v)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}
