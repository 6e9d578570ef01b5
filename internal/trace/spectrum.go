package trace

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Spectrum computes the one-sided amplitude spectrum. It returns the
// frequency axis and amplitudes, n/2+1 points each.
func Spectrum(x []float64, fs float64) (freqs, amps []float64) {
	n := len(x)
	if n == 0 {
		return nil, nil
	}
	coeffs := fft.FFTReal(x)
	half := n/2 + 1
	freqs = make([]float64, half)
	amps = make([]float64, half)
	for i := 0; i < half; i++ {
		freqs[i] = float64(i) * fs / float64(n)
		a := cmplx.Abs(coeffs[i]) / float64(n)
		if i > 0 && i < n-i {
			a *= 2 // fold the negative frequencies
		}
		amps[i] = a
	}
	return freqs, amps
}

// DominantFrequency returns the frequency of the largest non-DC
// spectral amplitude.
func DominantFrequency(x []float64, fs float64) float64 {
	freqs, amps := Spectrum(x, fs)
	if len(amps) < 2 {
		return 0
	}
	best := 1
	for i := 2; i < len(amps); i++ {
		if amps[i] > amps[best] {
			best = i
		}
	}
	return freqs[best]
}
