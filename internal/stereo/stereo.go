// Package stereo computes orientation statistics for structural
// geology measurements (strike/dip pairs) and renders equal-area
// stereonets.
package stereo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ErrTooFew indicates fewer than three measurements.
var ErrTooFew = errors.New("stereo: need at least three measurements")

// Measurement is one plane in right-hand-rule strike/dip.
type Measurement struct {
	Strike float64
	Dip    float64
	Type   string
}

const deg = math.Pi / 180

// PoleVector returns the downward unit normal of the plane in
// north/east/down components. The pole trend is strike-90, the plunge
// 90-dip.
func (m Measurement) PoleVector() [3]float64 {
	trend := (m.Strike - 90) * deg
	plunge := (90 - m.Dip) * deg
	return [3]float64{
		math.Cos(plunge) * math.Cos(trend),
		math.Cos(plunge) * math.Sin(trend),
		math.Sin(plunge),
	}
}

// TrendPlunge converts a vector to lower-hemisphere trend/plunge in
// degrees.
func TrendPlunge(v [3]float64) (trend, plunge float64) {
	if v[2] < 0 {
		v[0], v[1], v[2] = -v[0], -v[1], -v[2]
	}
	trend = math.Atan2(v[1], v[0]) / deg
	if trend < 0 {
		trend += 360
	}
	plunge = math.Asin(math.Min(1, v[2])) / deg
	return
}

// planeFromNormal converts a pole back to RHR strike/dip.
func planeFromNormal(v [3]float64) (strike, dip float64) {
	trend, plunge := TrendPlunge(v)
	strike = math.Mod(trend+90, 360)
	dip = 90 - plunge
	return
}

// Stats summarizes one measurement group.
type Stats struct {
	N               int        `json:"n"`
	MeanStrike      float64    `json:"mean_strike"`
	MeanDip         float64    `json:"mean_dip"`
	ResultantLength float64    `json:"resultant_length"`
	FisherK         float64    `json:"fisher_k"`
	Eigenvalues     [3]float64 `json:"eigenvalues"`
	WoodcockK       float64    `json:"woodcock_k"`
	WoodcockC       float64    `json:"woodcock_c"`
	Fabric          string     `json:"fabric"`
	GirdleStrike    float64    `json:"girdle_strike"`
	GirdleDip       float64    `json:"girdle_dip"`
	FoldAxisTrend   float64    `json:"fold_axis_trend"`
	FoldAxisPlunge  float64    `json:"fold_axis_plunge"`
}

// Analyze computes orientation statistics over the poles.
func Analyze(ms []Measurement) (*Stats, error) {
	if len(ms) < 3 {
		return nil, ErrTooFew
	}
	n := float64(len(ms))

	// Resultant vector over lower-hemisphere poles.
	var sum [3]float64
	for _, m := range ms {
		v := m.PoleVector()
		if v[2] < 0 {
			v[0], v[1], v[2] = -v[0], -v[1], -v[2]
		}
		sum[0] += v[0]
		sum[1] += v[1]
		sum[2] += v[2]
	}
	r := math.Sqrt(sum[0]*sum[0] + sum[1]*sum[1] + sum[2]*sum[2])

	s := &Stats{N: len(ms), ResultantLength: r / n}
	s.MeanStrike, s.MeanDip = planeFromNormal(sum)
	if n-r > 0 {
		s.FisherK = (n - 1) / (n - r)
	} else {
		s.FisherK = math.Inf(1)
	}

	// Orientation tensor and its spectrum.
	t := mat.NewSymDense(3, nil)
	for _, m := range ms {
		v := m.PoleVector()
		for i := 0; i < 3; i++ {
			for j := i; j < 3; j++ {
				t.SetSym(i, j, t.At(i, j)+v[i]*v[j]/n)
			}
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(t, true) {
		return nil, fmt.Errorf("stereo: eigendecomposition failed")
	}
	vals := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	// Sort descending.
	order := []int{0, 1, 2}
	sort.Slice(order, func(a, b int) bool { return vals[order[a]] > vals[order[b]] })
	for i, o := range order {
		s.Eigenvalues[i] = vals[o]
	}

	// Floor the eigenvalues so a perfectly planar distribution does
	// not blow up the ratios.
	l1 := math.Max(s.Eigenvalues[0], 1e-12)
	l2 := math.Max(s.Eigenvalues[1], 1e-12)
	l3 := math.Max(s.Eigenvalues[2], 1e-12)
	if l2 != l3 {
		s.WoodcockK = math.Log(l1/l2) / math.Log(l2/l3)
	} else {
		s.WoodcockK = math.Inf(1)
	}
	s.WoodcockC = math.Log(l1 / l3)
	if s.WoodcockK > 1 {
		s.Fabric = "cluster"
	} else {
		s.Fabric = "girdle"
	}

	// Girdle plane: normal to the smallest eigenvector; fold axis is
	// its pole.
	small := order[2]
	normal := [3]float64{vecs.At(0, small), vecs.At(1, small), vecs.At(2, small)}
	s.GirdleStrike, s.GirdleDip = planeFromNormal(normal)
	s.FoldAxisTrend, s.FoldAxisPlunge = TrendPlunge(normal)

	return s, nil
}

// GroupBy splits measurements by their type, preserving first-seen
// order; untyped rows group under "all".
func GroupBy(ms []Measurement) ([]string, map[string][]Measurement) {
	groups := map[string][]Measurement{}
	var names []string
	for _, m := range ms {
		key := m.Type
		if key == "" {
			key = "all"
		}
		if _, seen := groups[key]; !seen {
			names = append(names, key)
		}
		groups[key] = append(groups[key], m)
	}
	return names, groups
}

// LoadCSV reads strike,dip[,type] rows. Out-of-range rows are skipped
// and reported in warnings.
func LoadCSV(path string) ([]Measurement, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV is LoadCSV over any reader.
func ReadCSV(r io.Reader) ([]Measurement, []string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("stereo: read header: %w", err)
	}
	iStrike, iDip, iType := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "strike":
			iStrike = i
		case "dip":
			iDip = i
		case "type", "set":
			iType = i
		}
	}
	if iStrike < 0 || iDip < 0 {
		return nil, nil, fmt.Errorf("stereo: csv must have strike and dip columns")
	}

	var ms []Measurement
	var warnings []string
	row := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		row++
		strike, errS := strconv.ParseFloat(rec[iStrike], 64)
		dip, errD := strconv.ParseFloat(rec[iDip], 64)
		if errS != nil || errD != nil {
			warnings = append(warnings, fmt.Sprintf("row %d: unparseable strike/dip", row))
			continue
		}
		if strike < 0 || strike >= 360 {
			warnings = append(warnings, fmt.Sprintf("row %d: strike %g outside [0,360)", row, strike))
			continue
		}
		if dip < 0 || dip > 90 {
			warnings = append(warnings, fmt.Sprintf("row %d: dip %g outside [0,90]", row, dip))
			continue
		}
		m := Measurement{Strike: strike, Dip: dip}
		if iType >= 0 && iType < len(rec) {
			m.Type = strings.TrimSpace(rec[iType])
		}
		ms = append(ms, m)
	}
	return ms, warnings, nil
}
