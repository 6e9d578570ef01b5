package seis

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrSingular indicates the regularized normal equations could not be solved.
var ErrSingular = errors.New("seis: deconvolution system not positive definite")

// DeconvResult holds the recovered reflectivity and fit diagnostics.
type DeconvResult struct {
	Reflectivity     []float64
	ResidualNorm     float64
	RelativeResidual float64
	Correlation      float64 // vs the true series, NaN when unknown
}

// Deconvolve recovers reflectivity from a seismic trace by Tikhonov
// regularized least squares on the convolution matrix:
//
//	(G'G + eps*I) m = G'd
//
// solved by Cholesky factorization. truth may be nil; when given, the
// correlation between truth and estimate is reported.
func Deconvolve(trace, wavelet, truth []float64, eps float64) (*DeconvResult, error) {
	if eps <= 0 {
		return nil, ErrBadParam
	}
	n := len(trace)
	if n == 0 || len(wavelet) == 0 {
		return nil, ErrBadParam
	}

	g := convolutionMatrix(n, wavelet)

	var gtg mat.Dense
	gtg.Mul(g.T(), g)
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := gtg.At(i, j)
			if i == j {
				v += eps
			}
			sym.SetSym(i, j, v)
		}
	}

	d := mat.NewVecDense(n, trace)
	var rhs mat.VecDense
	rhs.MulVec(g.T(), d)

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, ErrSingular
	}
	var m mat.VecDense
	if err := chol.SolveVecTo(&m, &rhs); err != nil {
		return nil, ErrSingular
	}

	est := make([]float64, n)
	copy(est, m.RawVector().Data)

	// Residual d - G m
	var pred mat.VecDense
	pred.MulVec(g, &m)
	var resid, traceNorm float64
	for i := 0; i < n; i++ {
		r := pred.AtVec(i) - trace[i]
		resid += r * r
		traceNorm += trace[i] * trace[i]
	}

	res := &DeconvResult{
		Reflectivity:     est,
		ResidualNorm:     math.Sqrt(resid),
		RelativeResidual: math.Sqrt(resid) / math.Sqrt(traceNorm),
		Correlation:      math.NaN(),
	}
	if truth != nil && len(truth) == n {
		res.Correlation = stat.Correlation(truth, est, nil)
	}
	return res, nil
}

// convolutionMatrix builds the n x n Toeplitz matrix of the wavelet with
// its center on the diagonal.
func convolutionMatrix(n int, wavelet []float64) *mat.Dense {
	g := mat.NewDense(n, n, nil)
	offset := len(wavelet) / 2
	for i := 0; i < n; i++ {
		for j, w := range wavelet {
			k := i + offset - j
			if k >= 0 && k < n {
				g.Set(i, k, w)
			}
		}
	}
	return g
}
