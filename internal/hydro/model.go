package hydro

import (
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/optimize"
)

// ErrTooFew indicates too few head observations overlap the stresses.
var ErrTooFew = errors.New("hydro: too few head observations")

// ResponseKind selects the recharge impulse response.
type ResponseKind string

const (
	Gamma       ResponseKind = "Gamma"
	Exponential ResponseKind = "Exponential"
)

// Params holds the calibrated model parameters. Shape is unused for an
// exponential recharge response; the pump parameters are zero without
// a pumping stress.
type Params struct {
	D          float64 `json:"d"`
	Gain       float64 `json:"gain_a"`
	Shape      float64 `json:"shape_n,omitempty"`
	Scale      float64 `json:"scale_a"`
	EvapFactor float64 `json:"evap_f"`
	PumpGain   float64 `json:"pump_gain,omitempty"`
	PumpScale  float64 `json:"pump_scale,omitempty"`
}

// Model couples head observations to daily stress series sharing one
// contiguous axis starting at Start.
type Model struct {
	Name     string
	Response ResponseKind
	Start    time.Time
	NT       int
	Warmup   int

	Precip, Evap, Pump []float64

	ObsIdx   []int // stress-axis index per observation, all >= Warmup
	Obs      []float64
	ObsDates []time.Time

	Warnings []string
}

// New aligns the stresses onto their common daily span and keeps the
// head observations that fall inside it after the warmup period.
func New(head, precip, evap, pump *Series, warmup int) (*Model, error) {
	if warmup <= 0 {
		warmup = 365
	}
	m := &Model{Name: "groundwater_model", Response: Gamma, Warmup: warmup}

	stresses := []*Series{precip, evap}
	if pump != nil {
		stresses = append(stresses, pump)
	}
	for _, s := range stresses {
		if err := s.Regularize(maxFillDays); err != nil {
			return nil, err
		}
	}
	start, end := stresses[0].Dates[0], stresses[0].Dates[len(stresses[0].Dates)-1]
	for _, s := range stresses[1:] {
		if d := s.Dates[0]; d.After(start) {
			start = d
		}
		if d := s.Dates[len(s.Dates)-1]; d.Before(end) {
			end = d
		}
	}
	if !end.After(start) {
		return nil, fmt.Errorf("hydro: stress series do not overlap")
	}
	for _, s := range stresses {
		s.Slice(start, end)
		m.Warnings = append(m.Warnings, s.Warnings...)
	}
	m.Start = start
	m.NT = len(precip.Values)
	m.Precip = precip.Values
	m.Evap = evap.Values
	if pump != nil {
		m.Pump = pump.Values
	}

	m.Warnings = append(m.Warnings, head.Warnings...)
	for i, d := range head.Dates {
		idx := int(d.Sub(start).Hours() / 24)
		if idx < warmup || idx >= m.NT {
			continue
		}
		m.ObsIdx = append(m.ObsIdx, idx)
		m.Obs = append(m.Obs, head.Values[i])
		m.ObsDates = append(m.ObsDates, d)
	}
	if len(m.Obs) < 10 {
		return nil, fmt.Errorf("%w: %d usable after warmup", ErrTooFew, len(m.Obs))
	}
	span := m.ObsDates[len(m.ObsDates)-1].Sub(m.ObsDates[0])
	if span < 2*365*24*time.Hour {
		m.Warnings = append(m.Warnings,
			fmt.Sprintf("only %.1f years of observations, calibration may be unstable", span.Hours()/24/365.25))
	}
	log.Info("model assembled", "days", m.NT, "observations", len(m.Obs),
		"start", start.Format("2006-01-02"), "pumping", pump != nil)
	return m, nil
}

// gammaBlock is the daily block response of a gamma impulse function:
// step(t) = gain * P(shape, t/scale). Truncated once the step is
// within 0.01% of the gain.
func gammaBlock(gain, shape, scale float64, nmax int) []float64 {
	out := make([]float64, 0, 64)
	prev := 0.0
	for i := 0; i < nmax; i++ {
		cur := mathext.GammaIncReg(shape, float64(i+1)/scale)
		out = append(out, gain*(cur-prev))
		prev = cur
		if prev > 0.9999 {
			break
		}
	}
	return out
}

// expBlock is the block response of an exponential impulse function:
// step(t) = gain * (1 - exp(-t/scale)).
func expBlock(gain, scale float64, nmax int) []float64 {
	out := make([]float64, 0, 64)
	prev := 0.0
	for i := 0; i < nmax; i++ {
		cur := 1 - math.Exp(-float64(i+1)/scale)
		out = append(out, gain*(cur-prev))
		prev = cur
		if prev > 0.9999 {
			break
		}
	}
	return out
}

// Simulate evaluates the head on the full stress axis.
func (m *Model) Simulate(p Params) []float64 {
	rech := make([]float64, m.NT)
	for t := range rech {
		rech[t] = m.Precip[t] - p.EvapFactor*m.Evap[t]
	}
	var theta []float64
	if m.Response == Exponential {
		theta = expBlock(p.Gain, p.Scale, m.NT)
	} else {
		theta = gammaBlock(p.Gain, p.Shape, p.Scale, m.NT)
	}
	var thetaPump []float64
	if m.Pump != nil {
		thetaPump = expBlock(p.PumpGain, p.PumpScale, m.NT)
	}

	h := make([]float64, m.NT)
	for t := 0; t < m.NT; t++ {
		sum := p.D
		n := len(theta)
		if t+1 < n {
			n = t + 1
		}
		for i := 0; i < n; i++ {
			sum += theta[i] * rech[t-i]
		}
		if thetaPump != nil {
			n = len(thetaPump)
			if t+1 < n {
				n = t + 1
			}
			for i := 0; i < n; i++ {
				sum += thetaPump[i] * m.Pump[t-i]
			}
		}
		h[t] = sum
	}
	return h
}

// nParams is the free parameter count for the current configuration.
func (m *Model) nParams() int {
	n := 4 // d, gain, scale, evap factor
	if m.Response == Gamma {
		n++
	}
	if m.Pump != nil {
		n += 2
	}
	return n
}

// pack maps parameters to the unconstrained optimization vector; the
// positive ones travel in log space and the pump gain stays negative.
func (m *Model) pack(p Params) []float64 {
	x := []float64{p.D, math.Log(p.Gain)}
	if m.Response == Gamma {
		x = append(x, math.Log(p.Shape))
	}
	x = append(x, math.Log(p.Scale), math.Log(p.EvapFactor))
	if m.Pump != nil {
		x = append(x, math.Log(-p.PumpGain), math.Log(p.PumpScale))
	}
	return x
}

func (m *Model) unpack(x []float64) Params {
	p := Params{D: x[0], Gain: math.Exp(x[1])}
	i := 2
	if m.Response == Gamma {
		p.Shape = math.Exp(x[i])
		i++
	}
	p.Scale = math.Exp(x[i])
	p.EvapFactor = math.Exp(x[i+1])
	i += 2
	if m.Pump != nil {
		p.PumpGain = -math.Exp(x[i])
		p.PumpScale = math.Exp(x[i+1])
	}
	return p
}

// initial seeds the search: the gain from the observation/recharge
// variance ratio, the base level from the steady-state balance.
func (m *Model) initial() Params {
	obsMean, obsStd := meanStd(m.Obs)

	rech := make([]float64, m.NT)
	for t := range rech {
		rech[t] = m.Precip[t] - m.Evap[t]
	}
	rechMean, rechStd := meanStd(rech)

	gain := obsStd / (rechStd + 1e-12)
	if gain < 1e-3 {
		gain = 1e-3
	}
	p := Params{
		D:          obsMean - gain*rechMean,
		Gain:       gain,
		Shape:      1,
		Scale:      50,
		EvapFactor: 1,
	}
	if m.Pump != nil {
		_, pumpStd := meanStd(m.Pump)
		pg := 0.1 * obsStd / (pumpStd + 1e-12)
		if pg < 1e-6 {
			pg = 1e-6
		}
		p.PumpGain = -pg
		p.PumpScale = 60
	}
	return p
}

// FitResult is a calibration outcome with its goodness-of-fit metrics.
type FitResult struct {
	Params    Params       `json:"parameters"`
	Response  ResponseKind `json:"response"`
	EVP       float64      `json:"evp"`
	RMSE      float64      `json:"rmse"`
	R2        float64      `json:"r2"`
	AIC       float64      `json:"aic"`
	BIC       float64      `json:"bic"`
	NObs      int          `json:"n_observations"`
	Simulated []float64    `json:"-"`
}

// Calibrate minimizes the sum of squared residuals over all
// observations with Nelder-Mead on the transformed parameters.
func (m *Model) Calibrate() (*FitResult, error) {
	return m.calibrateOn(allIndices(len(m.Obs)))
}

func (m *Model) calibrateOn(which []int) (*FitResult, error) {
	objective := func(x []float64) float64 {
		p := m.unpack(x)
		if p.Shape > 50 || p.Scale > 5000 || p.PumpScale > 5000 {
			return math.Inf(1)
		}
		sim := m.Simulate(p)
		var sse float64
		for _, k := range which {
			r := sim[m.ObsIdx[k]] - m.Obs[k]
			sse += r * r
		}
		return sse
	}

	x0 := m.pack(m.initial())
	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{Absolute: 1e-12, Iterations: 200},
	}
	result, err := optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
	if err != nil && result == nil {
		return nil, fmt.Errorf("hydro: calibrate: %w", err)
	}

	p := m.unpack(result.X)
	fit := m.Evaluate(p, which)
	log.Info("calibration finished", "response", m.Response,
		"evaluations", result.FuncEvaluations, "evp", fit.EVP, "rmse", fit.RMSE)
	return fit, nil
}

// Evaluate scores a parameter set against the selected observations.
func (m *Model) Evaluate(p Params, which []int) *FitResult {
	sim := m.Simulate(p)
	n := len(which)

	var sse float64
	res := make([]float64, n)
	obs := make([]float64, n)
	for i, k := range which {
		obs[i] = m.Obs[k]
		res[i] = sim[m.ObsIdx[k]] - m.Obs[k]
		sse += res[i] * res[i]
	}
	obsMean, obsStd := meanStd(obs)
	_, resStd := meanStd(res)
	var sst float64
	for _, v := range obs {
		sst += (v - obsMean) * (v - obsMean)
	}

	k := m.nParams()
	fit := &FitResult{
		Params:    p,
		Response:  m.Response,
		RMSE:      math.Sqrt(sse / float64(n)),
		NObs:      n,
		Simulated: sim,
		AIC:       float64(n)*math.Log(math.Max(sse, 1e-300)/float64(n)) + 2*float64(k),
		BIC:       float64(n)*math.Log(math.Max(sse, 1e-300)/float64(n)) + float64(k)*math.Log(float64(n)),
	}
	if obsStd > 0 {
		fit.EVP = math.Max(0, (1-(resStd*resStd)/(obsStd*obsStd))*100)
	}
	if sst > 0 {
		fit.R2 = 1 - sse/sst
	}
	return fit
}

// SplitSample calibrates on the first half of the observations and
// validates the fitted parameters on the second half.
func (m *Model) SplitSample() (cal, val *FitResult, err error) {
	half := len(m.Obs) / 2
	if half < 5 {
		return nil, nil, fmt.Errorf("%w: split-sample needs at least 10", ErrTooFew)
	}
	first := allIndices(half)
	second := make([]int, len(m.Obs)-half)
	for i := range second {
		second[i] = half + i
	}
	cal, err = m.calibrateOn(first)
	if err != nil {
		return nil, nil, err
	}
	val = m.Evaluate(cal.Params, second)
	return cal, val, nil
}

// CompareResponses calibrates the recharge model once per response
// kind and returns the fits ordered as given; lower AIC is better.
func (m *Model) CompareResponses(kinds ...ResponseKind) ([]*FitResult, error) {
	if len(kinds) == 0 {
		kinds = []ResponseKind{Gamma, Exponential}
	}
	saved := m.Response
	defer func() { m.Response = saved }()

	out := make([]*FitResult, 0, len(kinds))
	for _, kind := range kinds {
		m.Response = kind
		fit, err := m.Calibrate()
		if err != nil {
			return nil, fmt.Errorf("hydro: compare %s: %w", kind, err)
		}
		out = append(out, fit)
	}
	return out, nil
}

func allIndices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func meanStd(v []float64) (mean, std float64) {
	if len(v) == 0 {
		return 0, 0
	}
	for _, x := range v {
		mean += x
	}
	mean /= float64(len(v))
	for _, x := range v {
		std += (x - mean) * (x - mean)
	}
	return mean, math.Sqrt(std / float64(len(v)))
}
