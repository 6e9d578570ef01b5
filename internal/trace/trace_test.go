package trace

import (
	"math"
	"testing"
)

func sine(n int, fs, freq, amp float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/fs)
	}
	return x
}

func rms(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return math.Sqrt(s / float64(len(x)))
}

func TestDemean(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	Demean(x)
	var sum float64
	for _, v := range x {
		sum += v
	}
	if math.Abs(sum) > 1e-12 {
		t.Errorf("residual mean %g", sum/4)
	}
}

func TestDetrendLinearRemovesLine(t *testing.T) {
	x := make([]float64, 50)
	for i := range x {
		x[i] = 3.0 + 0.25*float64(i)
	}
	DetrendLinear(x)
	for i, v := range x {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("x[%d] = %g after detrend", i, v)
		}
	}
}

func TestTaperEndsOnly(t *testing.T) {
	x := make([]float64, 100)
	for i := range x {
		x[i] = 1
	}
	Taper(x, 0.1)
	if x[0] != 0 || x[99] != 0 {
		t.Errorf("endpoints = %g, %g, want 0", x[0], x[99])
	}
	if x[50] != 1 {
		t.Errorf("interior modified: x[50] = %g", x[50])
	}
}

func TestLowpassPassAndStop(t *testing.T) {
	const fs = 100.0

	pass := sine(2000, fs, 2, 1)
	if err := Lowpass(pass, fs, 20); err != nil {
		t.Fatal(err)
	}
	if r := rms(pass[200:]); math.Abs(r-1/math.Sqrt2) > 0.1 {
		t.Errorf("passband rms = %f, want ~0.707", r)
	}

	stop := sine(2000, fs, 40, 1)
	if err := Lowpass(stop, fs, 10); err != nil {
		t.Fatal(err)
	}
	if r := rms(stop[200:]); r > 0.05 {
		t.Errorf("stopband rms = %f, want < 0.05", r)
	}
}

func TestHighpassStopsLow(t *testing.T) {
	const fs = 100.0
	x := sine(2000, fs, 1, 1)
	if err := Highpass(x, fs, 20); err != nil {
		t.Fatal(err)
	}
	if r := rms(x[200:]); r > 0.05 {
		t.Errorf("stopband rms = %f", r)
	}
}

func TestBandpassCorners(t *testing.T) {
	x := sine(500, 100, 10, 1)
	if err := Bandpass(x, 100, 20, 5); err != ErrBadCorner {
		t.Errorf("inverted corners: got %v", err)
	}
	if err := Lowpass(x, 100, 60); err != ErrBadCorner {
		t.Errorf("corner above nyquist: got %v", err)
	}
}

func TestDecimateLength(t *testing.T) {
	x := sine(10, 100, 2, 1)
	out, err := Decimate(x, 100, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 4 {
		t.Errorf("decimated length = %d, want 4", len(out))
	}
	if _, err := Decimate(x, 100, 1); err != ErrBadFactor {
		t.Errorf("factor 1: got %v", err)
	}
}

func TestSpectrumPeak(t *testing.T) {
	// 16 Hz lands exactly on bin 64 of a 512-point transform at 128 Hz.
	x := sine(512, 128, 16, 2)
	freqs, amps := Spectrum(x, 128)
	if len(freqs) != 257 {
		t.Fatalf("spectrum length = %d", len(freqs))
	}
	if math.Abs(freqs[64]-16) > 1e-9 {
		t.Errorf("freqs[64] = %f", freqs[64])
	}
	if math.Abs(amps[64]-2) > 1e-6 {
		t.Errorf("peak amplitude = %f, want 2", amps[64])
	}
	if f := DominantFrequency(x, 128); math.Abs(f-16) > 1e-9 {
		t.Errorf("dominant frequency = %f", f)
	}
}

func TestDewow(t *testing.T) {
	x := []float64{5, 5, 5, 5, 5, 5, 5, 5}
	if err := Dewow(x, 4); err != nil {
		t.Fatal(err)
	}
	for i, v := range x {
		if math.Abs(v) > 1e-12 {
			t.Errorf("x[%d] = %g, want 0", i, v)
		}
	}
	if err := Dewow(x, 100); err != ErrWindow {
		t.Errorf("oversized window: got %v", err)
	}
}

func TestBackgroundRemove(t *testing.T) {
	traces := [][]float64{{1, 2}, {3, 4}}
	BackgroundRemove(traces)
	want := [][]float64{{-1, -1}, {1, 1}}
	for i := range traces {
		for j := range traces[i] {
			if traces[i][j] != want[i][j] {
				t.Errorf("trace[%d][%d] = %g, want %g", i, j, traces[i][j], want[i][j])
			}
		}
	}
}

func TestGains(t *testing.T) {
	x := []float64{1, 1, 1, 1}
	TPowGain(x, 1, 2)
	if x[3] != 9 {
		t.Errorf("tpow x[3] = %g, want 9", x[3])
	}

	y := []float64{1, 1, 1, 1, 1, 1}
	if err := AGCGain(y, 3); err != nil {
		t.Fatal(err)
	}
	for i, v := range y {
		if math.Abs(v-1) > 1e-12 {
			t.Errorf("agc y[%d] = %g, want 1", i, v)
		}
	}
}

func TestDepthConvert(t *testing.T) {
	depth := DepthConvert([]float64{0, 100}, 0.1)
	if depth[1] != 5 {
		t.Errorf("depth = %g m, want 5", depth[1])
	}
}
