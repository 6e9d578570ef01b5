package trace

import "math"

// Dewow removes a running mean of the given window (in samples) from
// the trace, suppressing the low-frequency wow of GPR records.
func Dewow(x []float64, window int) error {
	n := len(x)
	if window < 1 || window > n {
		return ErrWindow
	}
	// Prefix sums for O(n) window means.
	cum := make([]float64, n+1)
	for i, v := range x {
		cum[i+1] = cum[i] + v
	}
	half := window / 2
	for i := range x {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > n {
			hi = n
		}
		x[i] -= (cum[hi] - cum[lo]) / float64(hi-lo)
	}
	return nil
}

// BackgroundRemove subtracts the profile mean trace from every trace.
// All traces must share a length.
func BackgroundRemove(traces [][]float64) {
	if len(traces) == 0 || len(traces[0]) == 0 {
		return
	}
	n := len(traces[0])
	mean := make([]float64, n)
	for _, tr := range traces {
		for i, v := range tr {
			mean[i] += v
		}
	}
	for i := range mean {
		mean[i] /= float64(len(traces))
	}
	for _, tr := range traces {
		for i := range tr {
			tr[i] -= mean[i]
		}
	}
}

// TPowGain multiplies each sample by t^power, t being the sample time
// for the given sampling step.
func TPowGain(x []float64, dt, power float64) {
	for i := range x {
		x[i] *= math.Pow(float64(i)*dt, power)
	}
}

// AGCGain normalizes the trace by the RMS of a centered window.
func AGCGain(x []float64, window int) error {
	n := len(x)
	if window < 1 || window > n {
		return ErrWindow
	}
	sq := make([]float64, n+1)
	for i, v := range x {
		sq[i+1] = sq[i] + v*v
	}
	half := window / 2
	out := make([]float64, n)
	for i := range x {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > n {
			hi = n
		}
		rms := math.Sqrt((sq[hi] - sq[lo]) / float64(hi-lo))
		if rms > 0 {
			out[i] = x[i] / rms
		}
	}
	copy(x, out)
	return nil
}

// DepthConvert maps a two-way travel time axis to depth for a constant
// velocity (same length units as velocity x time).
func DepthConvert(twtt []float64, velocity float64) []float64 {
	depth := make([]float64, len(twtt))
	for i, t := range twtt {
		depth[i] = t * velocity / 2
	}
	return depth
}
