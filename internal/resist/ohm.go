// Package resist handles DC resistivity data: unified-data-format
// surveys, apparent resistivity QC and 1-D vertical electric sounding
// inversion.
package resist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/geoforge/internal/logger"
)

var log = logger.ForComponent("resist")

// ErrGeometry indicates colocated or otherwise degenerate electrodes.
var ErrGeometry = errors.New("resist: degenerate electrode geometry")

// ErrUnderdetermined indicates fewer data than model parameters.
var ErrUnderdetermined = errors.New("resist: fewer data than parameters")

// Survey is a unified-data-format (.ohm) electrode layout plus the
// measurement table. Electrode indices are 1-based; 0 means an
// electrode at infinity.
type Survey struct {
	Electrodes [][3]float64
	A, B, M, N []int
	Tokens     []string // extra data columns, e.g. rhoa, r, err, i, u
	Columns    map[string][]float64
}

// Size is the number of measurements.
func (s *Survey) Size() int { return len(s.A) }

// Column returns a named data column, or nil.
func (s *Survey) Column(name string) []float64 { return s.Columns[name] }

// Load reads a unified-data-format file.
func Load(path string) (*Survey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads the unified data format: electrode count, optional token
// header, positions; data count, token header, rows.
func Parse(r io.Reader) (*Survey, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1<<20), 1<<20)

	next := func() ([]string, error) {
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			return strings.Fields(line), nil
		}
		if err := sc.Err(); err != nil {
			return nil, err
		}
		return nil, io.ErrUnexpectedEOF
	}

	countOf := func(fields []string) (int, error) {
		n, err := strconv.Atoi(strings.TrimSuffix(fields[0], "#"))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("resist: bad count line %v", fields)
		}
		return n, nil
	}

	fields, err := next()
	if err != nil {
		return nil, err
	}
	nElec, err := countOf(fields)
	if err != nil {
		return nil, err
	}

	s := &Survey{Columns: map[string][]float64{}}
	posTokens := []string{"x", "z"}
	for len(s.Electrodes) < nElec {
		fields, err = next()
		if err != nil {
			return nil, err
		}
		if fields[0] == "#" {
			posTokens = lowerAll(fields[1:])
			continue
		}
		var pos [3]float64
		for i, tok := range posTokens {
			if i >= len(fields) {
				break
			}
			v, err := strconv.ParseFloat(fields[i], 64)
			if err != nil {
				return nil, fmt.Errorf("resist: bad electrode value %q", fields[i])
			}
			switch tok {
			case "x":
				pos[0] = v
			case "y":
				pos[1] = v
			case "z":
				pos[2] = v
			}
		}
		s.Electrodes = append(s.Electrodes, pos)
	}

	fields, err = next()
	if err != nil {
		return nil, err
	}
	nData, err := countOf(fields)
	if err != nil {
		return nil, err
	}

	var dataTokens []string
	for s.Size() < nData {
		fields, err = next()
		if err != nil {
			return nil, err
		}
		if fields[0] == "#" {
			dataTokens = lowerAll(fields[1:])
			for _, tok := range dataTokens {
				if tok != "a" && tok != "b" && tok != "m" && tok != "n" {
					s.Tokens = append(s.Tokens, tok)
					s.Columns[tok] = nil
				}
			}
			continue
		}
		if dataTokens == nil {
			return nil, fmt.Errorf("resist: data rows before token header")
		}
		if len(fields) < len(dataTokens) {
			return nil, fmt.Errorf("resist: short data row %v", fields)
		}
		for i, tok := range dataTokens {
			switch tok {
			case "a", "b", "m", "n":
				idx, err := strconv.Atoi(fields[i])
				if err != nil || idx < 0 || idx > nElec {
					return nil, fmt.Errorf("resist: bad electrode index %q", fields[i])
				}
				switch tok {
				case "a":
					s.A = append(s.A, idx)
				case "b":
					s.B = append(s.B, idx)
				case "m":
					s.M = append(s.M, idx)
				case "n":
					s.N = append(s.N, idx)
				}
			default:
				v, err := strconv.ParseFloat(fields[i], 64)
				if err != nil {
					v = math.NaN()
				}
				s.Columns[tok] = append(s.Columns[tok], v)
			}
		}
	}
	if len(s.A) != nData || len(s.M) != nData || len(s.N) != nData {
		return nil, fmt.Errorf("resist: missing a/m/n electrode columns")
	}
	if len(s.B) == 0 {
		s.B = make([]int, nData) // pole source
	}
	return s, nil
}

func lowerAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.ToLower(s)
	}
	return out
}

// Write emits the survey back in unified data format.
func (s *Survey) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d# Number of electrodes\n# x y z\n", len(s.Electrodes))
	for _, e := range s.Electrodes {
		fmt.Fprintf(bw, "%g %g %g\n", e[0], e[1], e[2])
	}
	fmt.Fprintf(bw, "%d# Number of data\n# a b m n", s.Size())
	for _, tok := range s.Tokens {
		fmt.Fprintf(bw, " %s", tok)
	}
	fmt.Fprintln(bw)
	for i := 0; i < s.Size(); i++ {
		fmt.Fprintf(bw, "%d %d %d %d", s.A[i], s.B[i], s.M[i], s.N[i])
		for _, tok := range s.Tokens {
			fmt.Fprintf(bw, " %g", s.Columns[tok][i])
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

// GeometricFactor computes k = 2*pi / (1/AM - 1/BM - 1/AN + 1/BN) for
// measurement i. Index 0 denotes an electrode at infinity (its terms
// vanish).
func (s *Survey) GeometricFactor(i int) (float64, error) {
	inv := func(p, q int) (float64, error) {
		if p == 0 || q == 0 {
			return 0, nil
		}
		d := dist(s.Electrodes[p-1], s.Electrodes[q-1])
		if d == 0 {
			return 0, fmt.Errorf("%w: electrodes %d and %d colocated", ErrGeometry, p, q)
		}
		return 1 / d, nil
	}
	am, err := inv(s.A[i], s.M[i])
	if err != nil {
		return 0, err
	}
	bm, err := inv(s.B[i], s.M[i])
	if err != nil {
		return 0, err
	}
	an, err := inv(s.A[i], s.N[i])
	if err != nil {
		return 0, err
	}
	bn, err := inv(s.B[i], s.N[i])
	if err != nil {
		return 0, err
	}
	den := am - bm - an + bn
	if den == 0 || math.IsInf(den, 0) || math.IsNaN(den) {
		return 0, fmt.Errorf("%w: zero geometric sum in measurement %d", ErrGeometry, i)
	}
	return 2 * math.Pi / den, nil
}

func dist(a, b [3]float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// AppRes returns apparent resistivities: the rhoa column if present,
// otherwise k*r from the resistance column.
func (s *Survey) AppRes() ([]float64, error) {
	if rhoa, ok := s.Columns["rhoa"]; ok {
		out := make([]float64, len(rhoa))
		copy(out, rhoa)
		return out, nil
	}
	res, ok := s.Columns["r"]
	if !ok {
		return nil, fmt.Errorf("resist: survey has neither rhoa nor r column")
	}
	out := make([]float64, s.Size())
	for i := range out {
		k, err := s.GeometricFactor(i)
		if err != nil {
			return nil, err
		}
		out[i] = k * res[i]
	}
	return out, nil
}

// Clean removes measurements whose apparent resistivity is
// non-positive or non-finite, returning the number removed.
func (s *Survey) Clean() (int, error) {
	rhoa, err := s.AppRes()
	if err != nil {
		return 0, err
	}
	keep := make([]bool, s.Size())
	removed := 0
	for i, v := range rhoa {
		keep[i] = v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
		if !keep[i] {
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	filterInt := func(xs []int) []int {
		out := xs[:0]
		for i, x := range xs {
			if keep[i] {
				out = append(out, x)
			}
		}
		return out
	}
	s.A, s.B, s.M, s.N = filterInt(s.A), filterInt(s.B), filterInt(s.M), filterInt(s.N)
	for tok, col := range s.Columns {
		out := col[:0]
		for i, v := range col {
			if keep[i] {
				out = append(out, v)
			}
		}
		s.Columns[tok] = out
	}
	log.Info("removed invalid measurements", "removed", removed, "remaining", s.Size())
	return removed, nil
}
