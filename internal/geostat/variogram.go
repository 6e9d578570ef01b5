package geostat

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/optimize"
)

// Estimator selects the semivariance estimator.
type Estimator string

const (
	Matheron Estimator = "matheron"
	Cressie  Estimator = "cressie"
	Dowd     Estimator = "dowd"
)

// Estimators lists them in report order.
var Estimators = []Estimator{Matheron, Cressie, Dowd}

// Model is a variogram model family.
type Model string

const (
	Spherical   Model = "spherical"
	Exponential Model = "exponential"
	Gaussian    Model = "gaussian"
)

// Models lists the fittable families.
var Models = []Model{Spherical, Exponential, Gaussian}

// Params are fitted variogram model parameters.
type Params struct {
	Range  float64 `json:"range"`
	Sill   float64 `json:"sill"`
	Nugget float64 `json:"nugget"`
}

// Gamma evaluates the model semivariance at lag h.
func (m Model) Gamma(h float64, p Params) float64 {
	if h <= 0 {
		return p.Nugget
	}
	c := p.Sill - p.Nugget
	switch m {
	case Spherical:
		if h >= p.Range {
			return p.Sill
		}
		hr := h / p.Range
		return p.Nugget + c*(1.5*hr-0.5*hr*hr*hr)
	case Exponential:
		return p.Nugget + c*(1-math.Exp(-3*h/p.Range))
	case Gaussian:
		return p.Nugget + c*(1-math.Exp(-3*h*h/(p.Range*p.Range)))
	}
	return math.NaN()
}

// Covariance is C(h) = sill - gamma(h).
func (m Model) Covariance(h float64, p Params) float64 {
	return p.Sill - m.Gamma(h, p)
}

// Empirical is a binned experimental variogram.
type Empirical struct {
	Lags  []float64 `json:"lags"`  // bin centers
	Gamma []float64 `json:"gamma"` // semivariance, NaN for empty bins
	Pairs []int     `json:"pairs"`
}

// MedianDistance returns the median pairwise distance, the default
// maximum lag.
func MedianDistance(p Points) float64 {
	n := p.Len()
	dists := make([]float64, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dists = append(dists, math.Hypot(p.X[i]-p.X[j], p.Y[i]-p.Y[j]))
		}
	}
	sort.Float64s(dists)
	if len(dists) == 0 {
		return 0
	}
	return dists[len(dists)/2]
}

// EmpiricalVariogram bins pairwise semivariances into nLags bins up to
// maxlag. maxlag <= 0 selects the median pairwise distance.
func EmpiricalVariogram(p Points, nLags int, maxlag float64, est Estimator) (*Empirical, error) {
	return directional(p, nLags, maxlag, est, false, 0, 0)
}

// DirectionalVariogram restricts pairs to a direction cone. Azimuth is
// degrees clockwise from north; tolerance is the half-angle.
func DirectionalVariogram(p Points, azimuth, tol float64, nLags int, maxlag float64, est Estimator) (*Empirical, error) {
	return directional(p, nLags, maxlag, est, true, azimuth, tol)
}

func directional(p Points, nLags int, maxlag float64, est Estimator, dir bool, azimuth, tol float64) (*Empirical, error) {
	n := p.Len()
	if n < 2 {
		return nil, ErrInsufficientData
	}
	if nLags < 1 {
		return nil, fmt.Errorf("geostat: nLags = %d", nLags)
	}
	if maxlag <= 0 {
		maxlag = MedianDistance(p)
	}
	if maxlag <= 0 {
		return nil, ErrInsufficientData
	}

	width := maxlag / float64(nLags)
	diffs := make([][]float64, nLags)

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx, dy := p.X[j]-p.X[i], p.Y[j]-p.Y[i]
			d := math.Hypot(dx, dy)
			if d <= 0 || d > maxlag {
				continue
			}
			if dir && !inCone(dx, dy, azimuth, tol) {
				continue
			}
			bin := int(d / width)
			if bin >= nLags {
				bin = nLags - 1
			}
			diffs[bin] = append(diffs[bin], p.V[j]-p.V[i])
		}
	}

	emp := &Empirical{
		Lags:  make([]float64, nLags),
		Gamma: make([]float64, nLags),
		Pairs: make([]int, nLags),
	}
	for b := 0; b < nLags; b++ {
		emp.Lags[b] = (float64(b) + 0.5) * width
		emp.Pairs[b] = len(diffs[b])
		emp.Gamma[b] = semivariance(diffs[b], est)
	}
	return emp, nil
}

// inCone tests the pair direction against an azimuth cone, treating
// opposite directions as equal.
func inCone(dx, dy, azimuth, tol float64) bool {
	ang := math.Atan2(dx, dy) * 180 / math.Pi // from north, clockwise
	diff := math.Mod(ang-azimuth, 180)
	if diff < -90 {
		diff += 180
	}
	if diff > 90 {
		diff -= 180
	}
	return math.Abs(diff) <= tol
}

func semivariance(diffs []float64, est Estimator) float64 {
	n := float64(len(diffs))
	if n == 0 {
		return math.NaN()
	}
	switch est {
	case Cressie:
		// Cressie-Hawkins robust estimator.
		var s float64
		for _, d := range diffs {
			s += math.Sqrt(math.Abs(d))
		}
		s /= n
		return math.Pow(s, 4) / (2 * (0.457 + 0.494/n))
	case Dowd:
		abs := make([]float64, len(diffs))
		for i, d := range diffs {
			abs[i] = math.Abs(d)
		}
		sort.Float64s(abs)
		med := abs[len(abs)/2]
		if len(abs)%2 == 0 {
			med = (abs[len(abs)/2-1] + abs[len(abs)/2]) / 2
		}
		return 2.198 * med * med / 2
	default: // Matheron
		var s float64
		for _, d := range diffs {
			s += d * d
		}
		return s / (2 * n)
	}
}

// FitResult is one fitted model with its fit quality.
type FitResult struct {
	Model  Model   `json:"model"`
	Params Params  `json:"params"`
	RMSE   float64 `json:"rmse"`
}

// Fit finds model parameters minimizing the RMSE against the non-empty
// bins using Nelder-Mead.
func Fit(emp *Empirical, model Model) (FitResult, error) {
	var lags, gamma []float64
	for i := range emp.Lags {
		if emp.Pairs[i] > 0 && !math.IsNaN(emp.Gamma[i]) {
			lags = append(lags, emp.Lags[i])
			gamma = append(gamma, emp.Gamma[i])
		}
	}
	if len(lags) < 3 {
		return FitResult{}, fmt.Errorf("geostat: only %d usable lag bins", len(lags))
	}

	// Starting guesses: half the observed lag span, the mean of the
	// outer third as sill, the first bin as nugget.
	maxLag := lags[len(lags)-1]
	var sill0 float64
	tail := gamma[2*len(gamma)/3:]
	for _, g := range tail {
		sill0 += g
	}
	sill0 /= float64(len(tail))
	nug0 := math.Min(gamma[0], sill0) / 2

	obj := func(x []float64) float64 {
		p := clampParams(x, sill0)
		var sse float64
		for i, h := range lags {
			r := model.Gamma(h, p) - gamma[i]
			sse += r * r
		}
		return math.Sqrt(sse / float64(len(lags)))
	}

	problem := optimize.Problem{Func: obj}
	x0 := []float64{maxLag / 2, sill0, nug0}
	result, err := optimize.Minimize(problem, x0, nil, &optimize.NelderMead{})
	if err != nil && result == nil {
		return FitResult{}, fmt.Errorf("geostat: fit %s: %w", model, err)
	}

	p := clampParams(result.X, sill0)
	return FitResult{Model: model, Params: p, RMSE: obj(result.X)}, nil
}

// clampParams enforces positivity and sill >= nugget >= 0.
func clampParams(x []float64, sillScale float64) Params {
	r := math.Abs(x[0])
	if r == 0 {
		r = 1e-10 * math.Max(sillScale, 1)
	}
	s := math.Abs(x[1])
	n := math.Abs(x[2])
	if n > s {
		n = s
	}
	return Params{Range: r, Sill: s, Nugget: n}
}

// CompareModels fits every family and returns results sorted by RMSE,
// best first.
func CompareModels(emp *Empirical) ([]FitResult, error) {
	var results []FitResult
	for _, m := range Models {
		r, err := Fit(emp, m)
		if err != nil {
			continue
		}
		results = append(results, r)
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("geostat: no model could be fitted")
	}
	sort.Slice(results, func(i, j int) bool { return results[i].RMSE < results[j].RMSE })
	return results, nil
}

// DirectionalFit is a spherical fit along one azimuth.
type DirectionalFit struct {
	Azimuth float64 `json:"azimuth"`
	Range   float64 `json:"range"`
	Sill    float64 `json:"sill"`
}

// anisotropyThreshold is the range ratio above which anisotropy is
// flagged.
const anisotropyThreshold = 1.5

// Anisotropy fits spherical models along azimuths 0/45/90/135 with a
// 22.5 degree tolerance and reports the range ratio.
func Anisotropy(p Points, nLags int, maxlag float64) ([]DirectionalFit, float64, error) {
	var fits []DirectionalFit
	for _, az := range []float64{0, 45, 90, 135} {
		emp, err := DirectionalVariogram(p, az, 22.5, nLags, maxlag, Matheron)
		if err != nil {
			continue
		}
		fit, err := Fit(emp, Spherical)
		if err != nil {
			continue
		}
		fits = append(fits, DirectionalFit{Azimuth: az, Range: fit.Params.Range, Sill: fit.Params.Sill})
	}
	if len(fits) < 2 {
		return fits, 1, nil
	}
	minR, maxR := math.Inf(1), math.Inf(-1)
	for _, f := range fits {
		minR = math.Min(minR, f.Range)
		maxR = math.Max(maxR, f.Range)
	}
	ratio := math.Inf(1)
	if minR > 0 {
		ratio = maxR / minR
	}
	return fits, ratio, nil
}

// Anisotropic reports whether a range ratio is significant.
func Anisotropic(ratio float64) bool { return ratio > anisotropyThreshold }
