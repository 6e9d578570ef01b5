package trace

import "math"

// biquad is one second-order IIR section, applied forward only with a
// transposed direct form II state.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

func (q biquad) apply(x []float64) {
	var z1, z2 float64
	for i, v := range x {
		y := q.b0*v + z1
		z1 = q.b1*v - q.a1*y + z2
		z2 = q.b2*v - q.a2*y
		x[i] = y
	}
}

// Butterworth pole Q factors for a 4th-order filter split into two
// cascaded second-order sections.
var butterQ4 = [2]float64{0.5411961001461969, 1.3065629648763766}

// lowpassSection builds one bilinear-transform lowpass biquad.
func lowpassSection(fs, corner, q float64) biquad {
	w0 := 2 * math.Pi * corner / fs
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / (2 * q)
	a0 := 1 + alpha
	return biquad{
		b0: (1 - cw) / 2 / a0,
		b1: (1 - cw) / a0,
		b2: (1 - cw) / 2 / a0,
		a1: -2 * cw / a0,
		a2: (1 - alpha) / a0,
	}
}

func highpassSection(fs, corner, q float64) biquad {
	w0 := 2 * math.Pi * corner / fs
	cw, sw := math.Cos(w0), math.Sin(w0)
	alpha := sw / (2 * q)
	a0 := 1 + alpha
	return biquad{
		b0: (1 + cw) / 2 / a0,
		b1: -(1 + cw) / a0,
		b2: (1 + cw) / 2 / a0,
		a1: -2 * cw / a0,
		a2: (1 - alpha) / a0,
	}
}

func checkCorner(fs, corner float64) error {
	if corner <= 0 || corner >= fs/2 {
		return ErrBadCorner
	}
	return nil
}

// Lowpass applies a 4th-order Butterworth lowpass in place.
func Lowpass(x []float64, fs, corner float64) error {
	if err := checkCorner(fs, corner); err != nil {
		return err
	}
	for _, q := range butterQ4 {
		lowpassSection(fs, corner, q).apply(x)
	}
	return nil
}

// Highpass applies a 4th-order Butterworth highpass in place.
func Highpass(x []float64, fs, corner float64) error {
	if err := checkCorner(fs, corner); err != nil {
		return err
	}
	for _, q := range butterQ4 {
		highpassSection(fs, corner, q).apply(x)
	}
	return nil
}

// Bandpass cascades a highpass at lo and a lowpass at hi.
func Bandpass(x []float64, fs, lo, hi float64) error {
	if lo >= hi {
		return ErrBadCorner
	}
	if err := Highpass(x, fs, lo); err != nil {
		return err
	}
	return Lowpass(x, fs, hi)
}
