package las

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

const sampleLAS = `~Version Information
VERS.     2.0 : CWLS log ASCII standard
WRAP.     NO  : one line per depth step
~Well Information
STRT.M    1000.0000 : start depth
STOP.M    1002.0000 : stop depth
STEP.M    0.5000    : step
NULL.     -999.25   : null value
WELL.     TEST-01   : well name
~Curve Information
DEPT.M              : depth
GR  .API            : gamma ray
RHOB.G/CC           : bulk density
~ASCII
1000.0000   55.1000    2.4500
1000.5000   60.2000 -999.2500
1001.0000   70.8000    2.5000
1001.5000   65.0000    2.5200
1002.0000   58.3000    2.4800
`

func parseSample(t *testing.T) *File {
	t.Helper()
	f, err := Parse(strings.NewReader(sampleLAS))
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestParse(t *testing.T) {
	f := parseSample(t)

	if got := len(f.Curves); got != 3 {
		t.Fatalf("curves = %d, want 3", got)
	}
	if got := f.NSamples(); got != 5 {
		t.Fatalf("samples = %d, want 5", got)
	}
	if f.Curves[1].Mnem != "GR" || f.Curves[1].Unit != "API" {
		t.Errorf("curve 1 = %s.%s, want GR.API", f.Curves[1].Mnem, f.Curves[1].Unit)
	}
	if !math.IsNaN(f.Curves[2].Data[1]) {
		t.Errorf("null sentinel not mapped to NaN: %f", f.Curves[2].Data[1])
	}
	if f.Well.Float("STRT", 0) != 1000 {
		t.Errorf("STRT = %f, want 1000", f.Well.Float("STRT", 0))
	}
}

func TestParseRejectsWrapped(t *testing.T) {
	src := strings.Replace(sampleLAS, "WRAP.     NO ", "WRAP.     YES", 1)
	if _, err := Parse(strings.NewReader(src)); err != ErrUnsupported {
		t.Errorf("expected ErrUnsupported, got %v", err)
	}
}

func TestParseBadDataCell(t *testing.T) {
	src := strings.Replace(sampleLAS, "55.1000", "oops", 1)
	if _, err := Parse(strings.NewReader(src)); err == nil {
		t.Error("expected parse error for non-numeric cell")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	f := parseSample(t)

	var buf bytes.Buffer
	if err := Write(&buf, f); err != nil {
		t.Fatal(err)
	}
	g, err := Parse(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if g.NSamples() != f.NSamples() || len(g.Curves) != len(f.Curves) {
		t.Fatalf("roundtrip shape mismatch: %dx%d vs %dx%d",
			g.NSamples(), len(g.Curves), f.NSamples(), len(f.Curves))
	}
	for c := range f.Curves {
		for r := range f.Curves[c].Data {
			a, b := f.Curves[c].Data[r], g.Curves[c].Data[r]
			if math.IsNaN(a) != math.IsNaN(b) {
				t.Fatalf("curve %d row %d: NaN mismatch", c, r)
			}
			if !math.IsNaN(a) && math.Abs(a-b) > 1e-4 {
				t.Errorf("curve %d row %d: %f != %f", c, r, a, b)
			}
		}
	}
}

func TestValidate(t *testing.T) {
	f := parseSample(t)
	rep := Validate(f)
	if !rep.Valid {
		t.Fatalf("expected valid, errors: %v", rep.Errors)
	}

	// Drop a required header and a unit.
	f.Well.Items = f.Well.Items[:4] // loses WELL
	f.Curves[1].Unit = ""
	rep = Validate(f)
	if !hasWarning(rep.Warnings, "Missing required header: WELL") {
		t.Errorf("missing-header warning not raised: %v", rep.Warnings)
	}
	if !hasWarning(rep.Warnings, "Curve GR has no unit") {
		t.Errorf("missing-unit warning not raised: %v", rep.Warnings)
	}
}

func TestValidateNonMonotonicDepth(t *testing.T) {
	f := parseSample(t)
	f.Curves[0].Data[2] = 999 // out of order
	rep := Validate(f)
	if !hasWarning(rep.Warnings, "not monotonic") {
		t.Errorf("monotonicity warning not raised: %v", rep.Warnings)
	}
}

func TestMerge(t *testing.T) {
	f1 := parseSample(t)

	second := strings.Replace(sampleLAS, "RHOB.G/CC           : bulk density", "NPHI.V/V            : neutron porosity", 1)
	second = strings.Replace(second, "GR  .API            : gamma ray", "GR2 .API            : gamma ray rerun", 1)
	f2, err := Parse(strings.NewReader(second))
	if err != nil {
		t.Fatal(err)
	}

	merged, err := Merge([]*File{f1, f2}, 0, "")
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"DEPT", "GR", "RHOB", "GR2", "NPHI"} {
		if merged.Curve(want) == nil {
			t.Errorf("merged file missing curve %s", want)
		}
	}
	if merged.NSamples() != 5 {
		t.Errorf("merged samples = %d, want 5", merged.NSamples())
	}
}

func TestMergeResample(t *testing.T) {
	f := parseSample(t)
	merged, err := Merge([]*File{f}, 0.25, "")
	if err != nil {
		t.Fatal(err)
	}
	depth := merged.Curves[0].Data
	if len(depth) != 9 {
		t.Fatalf("resampled depth count = %d, want 9", len(depth))
	}
	// Interpolated GR midway between 55.1 and 60.2.
	gr := merged.Curve("GR").Data
	if math.Abs(gr[1]-57.65) > 1e-9 {
		t.Errorf("interpolated GR = %f, want 57.65", gr[1])
	}
}

func TestQC(t *testing.T) {
	f := parseSample(t)
	rep := QC(f)
	if !rep.Valid {
		t.Fatalf("expected valid QC, errors: %v", rep.Errors)
	}
	if rep.WellName != "TEST-01" {
		t.Errorf("well name = %q", rep.WellName)
	}
	var gr *CurveQC
	for i := range rep.Curves {
		if rep.Curves[i].Mnem == "GR" {
			gr = &rep.Curves[i]
		}
	}
	if gr == nil {
		t.Fatal("no GR curve in QC report")
	}
	if gr.Min != 55.1 || gr.Max != 70.8 {
		t.Errorf("GR range = %f - %f", gr.Min, gr.Max)
	}
}

func TestQCSuspiciousRange(t *testing.T) {
	f := parseSample(t)
	f.Curve("GR").Data[0] = 500 // beyond the GR heuristic
	rep := QC(f)
	if !hasWarning(rep.Warnings, "suspicious range") {
		t.Errorf("range warning not raised: %v", rep.Warnings)
	}
}

func TestComputeWellStatsAndSummary(t *testing.T) {
	f := parseSample(t)
	ws := ComputeWellStats("test.las", f, []string{"GR"})

	cs, ok := ws.Curves["GR"]
	if !ok {
		t.Fatal("GR stats missing")
	}
	if math.Abs(cs.Mean-61.88) > 1e-9 {
		t.Errorf("GR mean = %f, want 61.88", cs.Mean)
	}
	if _, ok := ws.Curves["RHOB"]; ok {
		t.Error("RHOB should be filtered out")
	}

	sum := Summarize([]WellStats{ws})
	if sum.NValid != 1 || sum.CurveWells["GR"] != 1 {
		t.Errorf("summary: %+v", sum)
	}
	if math.Abs(sum.MeanOfMeans["GR"]-61.88) > 1e-9 {
		t.Errorf("mean of means = %f", sum.MeanOfMeans["GR"])
	}
}

func TestToCSV(t *testing.T) {
	f := parseSample(t)
	var buf bytes.Buffer
	if err := ToCSV(&buf, f, nil, false); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("csv lines = %d, want 6", len(lines))
	}
	if lines[0] != "DEPT,GR,RHOB" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[2], ",,") && !strings.HasSuffix(lines[2], ",") {
		t.Errorf("null cell not empty: %q", lines[2])
	}
}

func hasWarning(warnings []string, substr string) bool {
	for _, w := range warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}
