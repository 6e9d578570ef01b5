package seis

import (
	"math"
	"math/rand"
)

// Ricker generates a Ricker wavelet with peak frequency f0 (Hz), sample
// interval dt (s) and total length (s). The peak sits at the center sample.
func Ricker(f0, dt, length float64) ([]float64, error) {
	if f0 <= 0 || dt <= 0 || length <= 0 {
		return nil, ErrBadParam
	}
	n := int(length / dt)
	w := make([]float64, n)
	for i := range w {
		t := -length/2 + float64(i)*dt
		pi2 := math.Pi * f0 * t * math.Pi * f0 * t
		w[i] = (1 - 2*pi2) * math.Exp(-pi2)
	}
	return w, nil
}

// Ormsby generates an Ormsby bandpass wavelet defined by the four corner
// frequencies f1 < f2 < f3 < f4, normalized to unit peak amplitude.
func Ormsby(f1, f2, f3, f4, dt, length float64) ([]float64, error) {
	if !(f1 > 0 && f1 < f2 && f2 < f3 && f3 < f4) || dt <= 0 || length <= 0 {
		return nil, ErrBadParam
	}
	sincSq := func(f, t float64) float64 {
		x := f * t
		if x == 0 {
			return math.Pi * math.Pi * f * f
		}
		s := math.Sin(math.Pi*x) / (math.Pi * x)
		return math.Pi * math.Pi * f * f * s * s
	}

	n := int(length / dt)
	w := make([]float64, n)
	peak := 0.0
	for i := range w {
		t := -length/2 + float64(i)*dt
		w[i] = ((sincSq(f4, t)*f4*f4-sincSq(f3, t)*f3*f3)/(f4-f3) -
			(sincSq(f2, t)*f2*f2-sincSq(f1, t)*f1*f1)/(f2-f1)) / (f4 - f1)
		if a := math.Abs(w[i]); a > peak {
			peak = a
		}
	}
	for i := range w {
		w[i] /= peak
	}
	return w, nil
}

// SyntheticReflectivity builds a sparse random reflectivity series of n
// samples with nSpikes non-zero reflectors in [-1, 1].
func SyntheticReflectivity(n, nSpikes int, seed int64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	r := make([]float64, n)
	placed := 0
	for placed < nSpikes {
		p := rng.Intn(n)
		if r[p] != 0 {
			continue
		}
		r[p] = 2*rng.Float64() - 1
		placed++
	}
	return r
}

// Convolve convolves a model series with a wavelet, keeping the output
// aligned with the input (wavelet center at lag zero).
func Convolve(model, wavelet []float64) []float64 {
	n := len(model)
	offset := len(wavelet) / 2
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for j, w := range wavelet {
			k := i + offset - j
			if k >= 0 && k < n {
				sum += w * model[k]
			}
		}
		out[i] = sum
	}
	return out
}
