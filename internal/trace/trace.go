// Package trace provides 1-D signal operations for seismic and GPR
// samples: detrending, tapering, Butterworth filtering, decimation,
// spectra and gain functions.
package trace

import (
	"errors"
	"math"
)

var (
	// ErrBadCorner indicates a filter corner at or above Nyquist.
	ErrBadCorner = errors.New("trace: corner frequency at or above nyquist")

	// ErrBadFactor indicates a decimation factor below 2.
	ErrBadFactor = errors.New("trace: decimation factor must be >= 2")

	// ErrWindow indicates a window longer than the trace; the operation
	// is skipped and the data left unchanged.
	ErrWindow = errors.New("trace: window exceeds trace length")
)

// Demean removes the arithmetic mean in place.
func Demean(x []float64) {
	if len(x) == 0 {
		return
	}
	var sum float64
	for _, v := range x {
		sum += v
	}
	mean := sum / float64(len(x))
	for i := range x {
		x[i] -= mean
	}
}

// DetrendLinear removes the least-squares line in place.
func DetrendLinear(x []float64) {
	n := len(x)
	if n < 2 {
		Demean(x)
		return
	}
	// Closed-form fit against sample index.
	var sumT, sumX, sumTT, sumTX float64
	for i, v := range x {
		t := float64(i)
		sumT += t
		sumX += v
		sumTT += t * t
		sumTX += t * v
	}
	fn := float64(n)
	denom := fn*sumTT - sumT*sumT
	if denom == 0 {
		Demean(x)
		return
	}
	slope := (fn*sumTX - sumT*sumX) / denom
	intercept := (sumX - slope*sumT) / fn
	for i := range x {
		x[i] -= intercept + slope*float64(i)
	}
}

// Taper applies a Hann cosine taper to each end of the trace. fraction
// is the tapered share of the length per side, clipped to [0, 0.5].
// The interior is untouched.
func Taper(x []float64, fraction float64) {
	n := len(x)
	if n == 0 || fraction <= 0 {
		return
	}
	if fraction > 0.5 {
		fraction = 0.5
	}
	w := int(fraction * float64(n))
	if w < 1 {
		return
	}
	for i := 0; i < w; i++ {
		c := 0.5 * (1 - math.Cos(math.Pi*float64(i)/float64(w)))
		x[i] *= c
		x[n-1-i] *= c
	}
}

// Decimate lowpasses at 0.4 of the new Nyquist and keeps every
// factor-th sample. The result has ceil(n/factor) samples.
func Decimate(x []float64, fs float64, factor int) ([]float64, error) {
	if factor < 2 {
		return nil, ErrBadFactor
	}
	work := make([]float64, len(x))
	copy(work, x)
	corner := 0.4 * fs / (2 * float64(factor))
	if err := Lowpass(work, fs, corner); err != nil {
		return nil, err
	}
	out := make([]float64, 0, (len(work)+factor-1)/factor)
	for i := 0; i < len(work); i += factor {
		out = append(out, work[i])
	}
	return out, nil
}
