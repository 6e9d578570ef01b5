package petro

import (
	"math"
	"testing"

	"github.com/san-kum/geoforge/internal/las"
)

func testWell() *las.File {
	f := &las.File{}
	f.Well.Set("STRT", "M", "1000", "")
	f.Well.Set("STOP", "M", "1004", "")
	f.Well.Set("STEP", "M", "1", "")
	f.Well.Set("NULL", "", "-999.25", "")
	f.Curves = []las.Curve{
		{Mnem: "DEPT", Unit: "M", Data: []float64{1000, 1001, 1002, 1003, 1004}},
		{Mnem: "GR", Unit: "API", Data: []float64{20, 45, 70, 120, 30}},
		{Mnem: "RHOB", Unit: "G/CC", Data: []float64{2.30, 2.35, 2.45, 2.55, 2.32}},
		{Mnem: "RT", Unit: "OHMM", Data: []float64{50, 30, 10, 2, 40}},
	}
	return f
}

func TestShaleVolumeMethods(t *testing.T) {
	p := DefaultParams()

	// Clean sand and full shale pin the transform ends for every method.
	for _, method := range []string{"linear", "clavier", "larionov_tertiary", "larionov_older"} {
		p.VshMethod = method
		if v := shaleVolume(p.GRClean, p); math.Abs(v) > 0.01 {
			t.Errorf("%s: vsh(clean) = %f, want ~0", method, v)
		}
		if v := shaleVolume(p.GRShale, p); math.Abs(v-1) > 0.01 {
			t.Errorf("%s: vsh(shale) = %f, want ~1", method, v)
		}
	}

	// Nonlinear transforms suppress mid-range values below linear.
	p.VshMethod = "larionov_tertiary"
	mid := (p.GRClean + p.GRShale) / 2
	if v := shaleVolume(mid, p); v >= 0.5 {
		t.Errorf("larionov_tertiary midpoint = %f, want < 0.5", v)
	}
}

func TestArchie(t *testing.T) {
	p := DefaultParams()

	// High porosity, high resistivity: low water saturation.
	swGood := archie(0.25, 100, p)
	// Low porosity, low resistivity: saturation clamps at 1.
	swWet := archie(0.05, 1, p)

	if swGood >= swWet {
		t.Errorf("sw ordering wrong: good=%f wet=%f", swGood, swWet)
	}
	if swWet != 1 {
		t.Errorf("wet zone sw = %f, want clamped to 1", swWet)
	}
	if !math.IsNaN(archie(0, 10, p)) {
		t.Error("zero porosity should yield NaN")
	}
	if !math.IsNaN(archie(0.2, 0, p)) {
		t.Error("zero resistivity should yield NaN")
	}
}

func TestEvaluatePipeline(t *testing.T) {
	f := testWell()
	sum, err := Evaluate(f, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	for _, mnem := range []string{"VSH", "PHIT", "PHIE", "SW", "PERM", "PAY"} {
		if f.Curve(mnem) == nil {
			t.Errorf("output curve %s missing", mnem)
		}
	}

	vsh := f.Curve("VSH").Data
	if vsh[0] != 0 {
		t.Errorf("vsh at clean GR = %f, want 0", vsh[0])
	}
	if vsh[3] != 1 {
		t.Errorf("vsh at shale GR = %f, want 1", vsh[3])
	}

	phit := f.Curve("PHIT").Data
	want := (2.65 - 2.30) / (2.65 - 1.0)
	if math.Abs(phit[0]-want) > 1e-9 {
		t.Errorf("phit[0] = %f, want %f", phit[0], want)
	}

	if sum.Gross != 4 {
		t.Errorf("gross = %f, want 4", sum.Gross)
	}
	if sum.NetPay <= 0 || sum.NetToGross <= 0 {
		t.Errorf("expected pay in test well: net=%f ntg=%f", sum.NetPay, sum.NetToGross)
	}
}

func TestEvaluateMissingCurvesSkipsSteps(t *testing.T) {
	f := testWell()
	f.Curves = f.Curves[:2] // DEPT and GR only

	sum, err := Evaluate(f, DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if f.Curve("VSH") == nil {
		t.Error("VSH should still be computed from GR")
	}
	if f.Curve("PHIT") != nil || f.Curve("SW") != nil {
		t.Error("porosity/saturation should be skipped without RHOB/RT")
	}
	found := false
	for _, s := range sum.Steps {
		if s == "skipped porosity: curve RHOB missing" {
			found = true
		}
	}
	if !found {
		t.Errorf("skip note missing: %v", sum.Steps)
	}
}

func TestEvaluateNoDepth(t *testing.T) {
	f := &las.File{Curves: []las.Curve{{Mnem: "GR", Data: []float64{1}}}}
	if _, err := Evaluate(f, DefaultParams()); err != ErrNoDepth {
		t.Errorf("expected ErrNoDepth, got %v", err)
	}
}
