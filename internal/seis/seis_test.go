package seis

import (
	"math"
	"testing"
)

func TestShueyNormalIncidence(t *testing.T) {
	l1 := Layer{Vp: 3000, Vs: 1500, Rho: 2.4}
	l2 := Layer{Vp: 3500, Vs: 1800, Rho: 2.5}

	r0 := Shuey(l1, l2, 0)
	want := 0.5 * ((3500.0-3000.0)/3250.0 + (2.5-2.4)/2.45)
	if math.Abs(r0-want) > 1e-12 {
		t.Errorf("R(0) = %f, want %f", r0, want)
	}
}

func TestShueyCoincidentLayers(t *testing.T) {
	l := Layer{Vp: 3000, Vs: 1500, Rho: 2.4}
	for _, theta := range []float64{0, 15, 30, 45} {
		if r := Shuey(l, l, theta); r != 0 {
			t.Errorf("R(%g) = %f for identical layers, want 0", theta, r)
		}
	}
}

func TestAkiRichardsMatchesShueyAtSmallAngle(t *testing.T) {
	l1 := Layer{Vp: 3000, Vs: 1500, Rho: 2.4}
	l2 := Layer{Vp: 3500, Vs: 1800, Rho: 2.5}

	// Third term vanishes at normal incidence and stays small below ~10 deg.
	for _, theta := range []float64{0, 5, 10} {
		s := Shuey(l1, l2, theta)
		a := AkiRichards(l1, l2, theta)
		if math.Abs(s-a) > 5e-3 {
			t.Errorf("theta=%g: shuey=%f aki-richards=%f", theta, s, a)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		intercept, gradient float64
		want                string
	}{
		{0.1, -0.2, "I"},
		{0.1, 0.2, "I (anomalous)"},
		{0.0, -0.2, "II"},
		{0.0, 0.2, "IIp"},
		{-0.1, -0.2, "III"},
		{-0.1, 0.2, "IV"},
	}
	for _, tt := range tests {
		if got := Classify(tt.intercept, tt.gradient); got != tt.want {
			t.Errorf("Classify(%g, %g) = %s, want %s", tt.intercept, tt.gradient, got, tt.want)
		}
	}
}

func TestInterceptGradientConsistent(t *testing.T) {
	l1 := Layer{Vp: 3000, Vs: 1500, Rho: 2.4}
	l2 := Layer{Vp: 3500, Vs: 1800, Rho: 2.5}

	a, b := InterceptGradient(l1, l2)

	// Shuey is exactly linear in sin^2(theta), so the fit must reproduce it.
	for _, theta := range []float64{0, 10, 20} {
		s := math.Sin(theta * math.Pi / 180)
		want := Shuey(l1, l2, theta)
		got := a + b*s*s
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("theta=%g: fit=%f shuey=%f", theta, got, want)
		}
	}
}

func TestAnalyzeRejectsBadLayer(t *testing.T) {
	good := Layer{Vp: 3000, Vs: 1500, Rho: 2.4}
	bad := Layer{Vp: 3000, Vs: 0, Rho: 2.4}
	if _, err := Analyze(good, bad, 45, 1, false); err != ErrBadLayer {
		t.Errorf("expected ErrBadLayer, got %v", err)
	}
}

func TestRickerPeak(t *testing.T) {
	w, err := Ricker(25, 0.004, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	max, maxIdx := 0.0, 0
	for i, v := range w {
		if v > max {
			max, maxIdx = v, i
		}
	}
	if math.Abs(max-1.0) > 1e-6 {
		t.Errorf("ricker peak = %f, want 1", max)
	}
	if maxIdx != len(w)/2 {
		t.Errorf("ricker peak at sample %d, want %d", maxIdx, len(w)/2)
	}
}

func TestOrmsbyNormalized(t *testing.T) {
	w, err := Ormsby(5, 10, 40, 50, 0.004, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	peak := 0.0
	for _, v := range w {
		if a := math.Abs(v); a > peak {
			peak = a
		}
	}
	if math.Abs(peak-1.0) > 1e-9 {
		t.Errorf("ormsby peak = %f, want 1", peak)
	}
}

func TestOrmsbyBadCorners(t *testing.T) {
	if _, err := Ormsby(10, 5, 40, 50, 0.004, 0.1); err != ErrBadParam {
		t.Errorf("expected ErrBadParam, got %v", err)
	}
}

func TestDeconvolveRecoversSpikes(t *testing.T) {
	n := 128
	refl := SyntheticReflectivity(n, 8, 42)
	w, _ := Ricker(25, 0.004, 0.1)
	trace := Convolve(refl, w)

	res, err := Deconvolve(trace, w, refl, 1e-4)
	if err != nil {
		t.Fatal(err)
	}
	if res.Correlation < 0.95 {
		t.Errorf("correlation = %f, want > 0.95 for noise-free trace", res.Correlation)
	}
	if res.RelativeResidual > 0.05 {
		t.Errorf("relative residual = %f, want < 0.05", res.RelativeResidual)
	}
}

func TestDeconvolveRejectsBadEps(t *testing.T) {
	if _, err := Deconvolve([]float64{1, 2}, []float64{1}, nil, 0); err != ErrBadParam {
		t.Errorf("expected ErrBadParam, got %v", err)
	}
}
