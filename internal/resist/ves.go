package resist

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// 41-point linear filter for the Schlumberger resistivity transform,
// sampled at lambda*s = 10^(filterX0 + i*filterDX). Designed by least
// squares against the analytic exponential-kernel pair
// T(l)=exp(-a*l) <-> rhoa(s)=s^3/(a^2+s^2)^(3/2) and normalized so a
// homogeneous half-space is reproduced exactly.
const (
	filterX0 = -2.0
	filterDX = 0.1
)

var filterW = [41]float64{
	4.877196424035e-05, -3.762618763704e-04, 1.305666315767e-03,
	-2.452768811347e-03, 1.965310337153e-03, 2.198671074991e-03,
	-8.658563185826e-03, 1.117567107999e-02, -3.509616462414e-03,
	-1.127927900109e-02, 1.975918614045e-02, -8.379753893463e-03,
	-1.575509469947e-02, 2.968828827224e-02, -4.444817739960e-03,
	-3.570166416631e-02, 6.581339995118e-02, 2.826317054655e-03,
	-4.900488030263e-02, 1.620134638072e-01, 9.210568808764e-02,
	2.023298693226e-02, 5.597201023679e-01, 4.973804393567e-01,
	3.889178486221e-01, 1.114117538921e+00, -2.877008500397e-01,
	-2.683571574632e+00, -4.637860671046e-01, 2.290752045339e+00,
	3.915642732286e-02, -1.322079488693e+00, 5.521023907137e-01,
	3.706456214734e-01, -5.373068061397e-01, 2.175272915358e-01,
	8.630683597914e-02, -1.672750246354e-01, 1.052191850136e-01,
	-3.477846627457e-02, 5.081829995059e-03,
}

// Model is a 1-D layered earth: len(Thk) = len(Res)-1, the last layer
// is a half-space.
type Model struct {
	Res []float64 `json:"resistivities"`
	Thk []float64 `json:"thicknesses"`
}

// kernelT evaluates the resistivity transform by the standard bottom-up
// layer recursion.
func kernelT(lam float64, m Model) float64 {
	t := m.Res[len(m.Res)-1]
	for i := len(m.Res) - 2; i >= 0; i-- {
		th := math.Tanh(lam * m.Thk[i])
		t = (t + m.Res[i]*th) / (1 + t*th/m.Res[i])
	}
	return t
}

// Forward computes Schlumberger apparent resistivities at the given
// AB/2 spacings.
func Forward(m Model, ab2 []float64) []float64 {
	out := make([]float64, len(ab2))
	for j, s := range ab2 {
		var sum float64
		for i, w := range filterW {
			lam := math.Pow(10, filterX0+float64(i)*filterDX) / s
			sum += w * kernelT(lam, m)
		}
		out[j] = sum
	}
	return out
}

// InvOptions controls the Marquardt inversion.
type InvOptions struct {
	Layers  int     // number of layers, default 2
	Lambda  float64 // initial damping, default 20
	MaxIter int     // default 20, capped at 30
}

// InvResult is the inversion outcome.
type InvResult struct {
	Model      Model     `json:"model"`
	RMSHistory []float64 `json:"rms_history"` // relative rms per accepted step
	Chi2       float64   `json:"chi2"`
	Iterations int       `json:"iterations"`
	Converged  bool      `json:"converged"`
}

// assumed relative data error for the chi-squared statistic.
const assumedError = 0.05

// Invert fits a layered model to a Schlumberger sounding by damped
// least squares on log-resistivities and log-thicknesses.
func Invert(ab2, rhoa []float64, opts InvOptions) (*InvResult, error) {
	if len(ab2) != len(rhoa) {
		return nil, fmt.Errorf("resist: ab2 and rhoa lengths differ")
	}
	for i := range ab2 {
		if ab2[i] <= 0 || rhoa[i] <= 0 {
			return nil, fmt.Errorf("resist: non-positive spacing or resistivity at %d", i)
		}
	}
	if opts.Layers <= 0 {
		opts.Layers = 2
	}
	if opts.Lambda <= 0 {
		opts.Lambda = 20
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = 20
	}
	if opts.MaxIter > 30 {
		opts.MaxIter = 30
	}
	nParam := 2*opts.Layers - 1
	if len(ab2) < nParam {
		return nil, fmt.Errorf("%w: %d data for %d parameters", ErrUnderdetermined, len(ab2), nParam)
	}

	p := startModel(ab2, rhoa, opts.Layers)
	lam := opts.Lambda

	res := &InvResult{}
	rms := relRMS(p, ab2, rhoa)
	res.RMSHistory = append(res.RMSHistory, rms)

	for iter := 0; iter < opts.MaxIter; iter++ {
		res.Iterations = iter + 1
		jac, r := jacobian(p, ab2, rhoa)

		accepted := false
		for try := 0; try < 10; try++ {
			step, ok := solveDamped(jac, r, lam)
			if !ok {
				lam *= 3
				continue
			}
			trial := make([]float64, len(p))
			for i := range p {
				trial[i] = p[i] + step[i]
			}
			trialRMS := relRMS(trial, ab2, rhoa)
			if trialRMS < rms {
				p, rms = trial, trialRMS
				lam = math.Max(lam/2, 1e-6)
				accepted = true
				break
			}
			lam *= 3
		}
		if !accepted {
			res.Converged = true
			break
		}
		res.RMSHistory = append(res.RMSHistory, rms)
		if rms < 1e-6 {
			res.Converged = true
			break
		}
		n := len(res.RMSHistory)
		if n > 1 && (res.RMSHistory[n-2]-rms)/res.RMSHistory[n-2] < 1e-5 {
			res.Converged = true
			break
		}
	}

	res.Model = unpack(p, opts.Layers)
	res.Chi2 = (rms / assumedError) * (rms / assumedError)
	log.Info("ves inversion finished",
		"layers", opts.Layers, "iterations", res.Iterations,
		"rms", rms, "chi2", res.Chi2, "converged", res.Converged)
	return res, nil
}

// startModel seeds a uniform-resistivity model with log-spaced
// thicknesses spanning the sounding depths.
func startModel(ab2, rhoa []float64, layers int) []float64 {
	var mean float64
	for _, v := range rhoa {
		mean += math.Log(v)
	}
	mean /= float64(len(rhoa))

	p := make([]float64, 2*layers-1)
	for i := 0; i < layers; i++ {
		p[i] = mean
	}
	minD := ab2[0] / 2
	maxD := ab2[len(ab2)-1] / 3
	for i := 0; i < layers-1; i++ {
		frac := float64(i+1) / float64(layers)
		p[layers+i] = math.Log(minD * math.Pow(maxD/minD, frac))
	}
	return p
}

func unpack(p []float64, layers int) Model {
	m := Model{Res: make([]float64, layers), Thk: make([]float64, layers-1)}
	for i := 0; i < layers; i++ {
		m.Res[i] = math.Exp(p[i])
	}
	for i := 0; i < layers-1; i++ {
		m.Thk[i] = math.Exp(p[layers+i])
	}
	return m
}

func relRMS(p []float64, ab2, rhoa []float64) float64 {
	m := unpack(p, (len(p)+1)/2)
	pred := Forward(m, ab2)
	var sum float64
	for i := range rhoa {
		d := math.Log(rhoa[i]) - math.Log(math.Max(pred[i], 1e-30))
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(rhoa)))
}

// jacobian returns the forward-difference sensitivity of log rhoa to
// the log parameters, and the current residual vector.
func jacobian(p []float64, ab2, rhoa []float64) (*mat.Dense, *mat.VecDense) {
	const delta = 1e-4
	layers := (len(p) + 1) / 2
	base := Forward(unpack(p, layers), ab2)

	jac := mat.NewDense(len(ab2), len(p), nil)
	for j := range p {
		pp := make([]float64, len(p))
		copy(pp, p)
		pp[j] += delta
		pert := Forward(unpack(pp, layers), ab2)
		for i := range ab2 {
			jac.Set(i, j, (math.Log(math.Max(pert[i], 1e-30))-math.Log(math.Max(base[i], 1e-30)))/delta)
		}
	}
	r := mat.NewVecDense(len(ab2), nil)
	for i := range ab2 {
		r.SetVec(i, math.Log(rhoa[i])-math.Log(math.Max(base[i], 1e-30)))
	}
	return jac, r
}

// solveDamped solves (J'J + lam*diag(J'J)) dp = J'r.
func solveDamped(jac *mat.Dense, r *mat.VecDense, lam float64) ([]float64, bool) {
	_, n := jac.Dims()
	var jtj mat.Dense
	jtj.Mul(jac.T(), jac)
	for i := 0; i < n; i++ {
		d := jtj.At(i, i)
		if d <= 0 {
			d = 1e-12
		}
		jtj.Set(i, i, d*(1+lam))
	}
	var jtr mat.VecDense
	jtr.MulVec(jac.T(), r)

	var step mat.VecDense
	if err := step.SolveVec(&jtj, &jtr); err != nil {
		return nil, false
	}
	out := make([]float64, n)
	for i := range out {
		v := step.AtVec(i)
		// Trust region in log space.
		if v > 2 {
			v = 2
		}
		if v < -2 {
			v = -2
		}
		out[i] = v
	}
	return out, true
}
