package resist

import (
	"errors"
	"math"
	"strings"
	"testing"
)

const sampleOhm = `4# Number of electrodes
# x z
0 0
2 0
4 0
6 0
3# Number of data
# a b m n rhoa
1 4 2 3 100.0
1 4 2 3 -5.0
1 4 2 3 120.0
`

func TestParseOhm(t *testing.T) {
	s, err := Parse(strings.NewReader(sampleOhm))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Electrodes) != 4 || s.Size() != 3 {
		t.Fatalf("parsed %d electrodes, %d data", len(s.Electrodes), s.Size())
	}
	if s.Electrodes[3][0] != 6 {
		t.Errorf("electrodes = %v", s.Electrodes)
	}
	if s.Columns["rhoa"][2] != 120 {
		t.Errorf("rhoa = %v", s.Columns["rhoa"])
	}
}

func TestGeometricFactorWenner(t *testing.T) {
	s, err := Parse(strings.NewReader(sampleOhm))
	if err != nil {
		t.Fatal(err)
	}
	// Wenner spread with a = 2 m: k = 2*pi*a.
	k, err := s.GeometricFactor(0)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(k-4*math.Pi) > 1e-9 {
		t.Errorf("k = %f, want %f", k, 4*math.Pi)
	}

	// Colocated electrodes.
	s.Electrodes[1] = s.Electrodes[0]
	if _, err := s.GeometricFactor(0); !errors.Is(err, ErrGeometry) {
		t.Errorf("err = %v, want ErrGeometry", err)
	}
}

func TestCleanAndWrite(t *testing.T) {
	s, err := Parse(strings.NewReader(sampleOhm))
	if err != nil {
		t.Fatal(err)
	}
	removed, err := s.Clean()
	if err != nil {
		t.Fatal(err)
	}
	if removed != 1 || s.Size() != 2 {
		t.Fatalf("removed = %d, size = %d", removed, s.Size())
	}

	var b strings.Builder
	if err := s.Write(&b); err != nil {
		t.Fatal(err)
	}
	back, err := Parse(strings.NewReader(b.String()))
	if err != nil {
		t.Fatalf("round trip: %v\n%s", err, b.String())
	}
	if back.Size() != 2 || back.Columns["rhoa"][1] != 120 {
		t.Errorf("round trip = %+v", back)
	}
}

func TestAppResFromResistance(t *testing.T) {
	ohm := `4# electrodes
# x z
0 0
2 0
4 0
6 0
1# data
# a b m n r
1 4 2 3 7.957747154595
`
	s, err := Parse(strings.NewReader(ohm))
	if err != nil {
		t.Fatal(err)
	}
	rhoa, err := s.AppRes()
	if err != nil {
		t.Fatal(err)
	}
	// k*r = 4*pi * 100/(4*pi).
	if math.Abs(rhoa[0]-100) > 1e-6 {
		t.Errorf("rhoa = %f, want 100", rhoa[0])
	}
}

func TestPseudosection(t *testing.T) {
	s, err := Parse(strings.NewReader(sampleOhm))
	if err != nil {
		t.Fatal(err)
	}
	ps, err := BuildPseudosection(s, 10, 5)
	if err != nil {
		t.Fatal(err)
	}
	// The negative measurement is excluded.
	if len(ps.Rhoa) != 2 {
		t.Errorf("kept %d points", len(ps.Rhoa))
	}
	min, max, mean := ps.Stats()
	if min != 100 || max != 120 || mean != 110 {
		t.Errorf("stats = %f %f %f", min, max, mean)
	}
	if ps.ASCII() == "" || !strings.Contains(ps.SVG("test"), "</svg>") {
		t.Error("rendering failed")
	}
}

func TestForwardHomogeneous(t *testing.T) {
	m := Model{Res: []float64{55}}
	for _, s := range []float64{0.5, 13.7, 400} {
		got := Forward(m, []float64{s})[0]
		if math.Abs(got-55) > 1e-9 {
			t.Errorf("rhoa(%g) = %f, want 55", s, got)
		}
	}
}

func TestForwardTwoLayer(t *testing.T) {
	m := Model{Res: []float64{100, 10}, Thk: []float64{10}}
	tests := []struct {
		ab2, want, tol float64
	}{
		{1, 99.981327, 0.01},
		{10, 86.908918, 0.05},
		{500, 10.011889, 0.05},
	}
	for _, tt := range tests {
		got := Forward(m, []float64{tt.ab2})[0]
		if math.Abs(got-tt.want) > tt.tol {
			t.Errorf("rhoa(%g) = %f, want %f", tt.ab2, got, tt.want)
		}
	}
}

func logspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = lo * math.Pow(hi/lo, float64(i)/float64(n-1))
	}
	return out
}

func TestInvertRecoversTwoLayer(t *testing.T) {
	truth := Model{Res: []float64{100, 10}, Thk: []float64{10}}
	ab2 := logspace(1, 300, 15)
	rhoa := Forward(truth, ab2)

	res, err := Invert(ab2, rhoa, InvOptions{Layers: 2})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(res.Model.Res[0]-100)/100 > 0.1 {
		t.Errorf("res1 = %f, want ~100", res.Model.Res[0])
	}
	if math.Abs(res.Model.Res[1]-10)/10 > 0.1 {
		t.Errorf("res2 = %f, want ~10", res.Model.Res[1])
	}
	if math.Abs(res.Model.Thk[0]-10)/10 > 0.25 {
		t.Errorf("thk = %f, want ~10", res.Model.Thk[0])
	}

	// Accepted steps never increase the misfit.
	for i := 1; i < len(res.RMSHistory); i++ {
		if res.RMSHistory[i] > res.RMSHistory[i-1] {
			t.Errorf("rms increased at step %d: %v", i, res.RMSHistory)
		}
	}
}

func TestInvertUnderdetermined(t *testing.T) {
	_, err := Invert([]float64{1, 10}, []float64{100, 90}, InvOptions{Layers: 2})
	if !errors.Is(err, ErrUnderdetermined) {
		t.Errorf("err = %v, want ErrUnderdetermined", err)
	}
}
