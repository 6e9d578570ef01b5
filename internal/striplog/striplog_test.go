package striplog

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		known bool
	}{
		{"sandstone", "sandstone", true},
		{"SAND", "sandstone", true},
		{"sst", "sandstone", true},
		{"Mudstone", "shale", true},
		{"fine sandstone", "sandstone", true},
		{"granite", "granite", false},
	}
	for _, tt := range tests {
		got, known := Resolve(tt.in)
		if got != tt.want || known != tt.known {
			t.Errorf("Resolve(%q) = %q,%v, want %q,%v", tt.in, got, known, tt.want, tt.known)
		}
	}
}

func TestFromCSV(t *testing.T) {
	csvData := `top,base,lithology,notes
0,10,sandstone,clean
10,25,sh,fissile
25,25,coal,
25,40,granite,
`
	log, warnings, err := FromCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatal(err)
	}
	if len(log.Intervals) != 3 {
		t.Fatalf("intervals = %+v", log.Intervals)
	}
	if log.Intervals[1].Lithology != "shale" {
		t.Errorf("synonym not resolved: %+v", log.Intervals[1])
	}
	if log.Intervals[0].Props["notes"] != "clean" {
		t.Errorf("props = %v", log.Intervals[0].Props)
	}
	// One unknown lithology plus one zero-thickness drop.
	if len(warnings) != 2 {
		t.Errorf("warnings = %v", warnings)
	}
	if ColourOf("granite") != unknownColour {
		t.Errorf("unknown colour = %s", ColourOf("granite"))
	}
}

func TestFromText(t *testing.T) {
	log, _, err := FromText("0-10: sandstone, 10-20: shale, 20-35 m: dol")
	if err != nil {
		t.Fatal(err)
	}
	if len(log.Intervals) != 3 || log.Intervals[2].Lithology != "dolomite" {
		t.Fatalf("intervals = %+v", log.Intervals)
	}
	if log.Start() != 0 || log.Stop() != 35 {
		t.Errorf("range = %g-%g", log.Start(), log.Stop())
	}

	if _, _, err := FromText("no depths here"); err == nil {
		t.Error("expected parse error")
	}
}

func TestNewRepairs(t *testing.T) {
	raw := []Interval{
		{Top: 10, Base: 0, Lithology: "sandstone"}, // inverted
		{Top: 5, Base: 20, Lithology: "shale"},     // overlaps after swap
		{Top: 30, Base: 40, Lithology: "coal"},     // leaves a gap
	}
	log, warnings, err := New(raw)
	if err != nil {
		t.Fatal(err)
	}
	if len(warnings) != 2 {
		t.Errorf("warnings = %v", warnings)
	}
	// Overlap clipped: shale now starts at the sandstone base.
	if log.Intervals[1].Top != 10 {
		t.Errorf("clip failed: %+v", log.Intervals[1])
	}
	issues := log.Validate()
	if len(issues) != 1 || !strings.Contains(issues[0], "gap 20-30") {
		t.Errorf("validate = %v", issues)
	}

	if _, _, err := New([]Interval{{Top: 1, Base: 1}}); !errors.Is(err, ErrEmpty) {
		t.Errorf("err = %v, want ErrEmpty", err)
	}
}

func threeLayer(t *testing.T) *Log {
	t.Helper()
	log, _, err := New([]Interval{
		{Top: 0, Base: 10, Lithology: "sandstone"},
		{Top: 10, Base: 25, Lithology: "shale"},
		{Top: 25, Base: 40, Lithology: "sandstone"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return log
}

func TestNetToGrossAndSummary(t *testing.T) {
	log := threeLayer(t)
	if ntg := log.NetToGross("sandstone"); math.Abs(ntg-25.0/40) > 1e-12 {
		t.Errorf("sandstone ntg = %f, want 0.625", ntg)
	}
	if ntg := log.NetToGross("coal"); ntg != 0 {
		t.Errorf("absent lithology ntg = %f", ntg)
	}
	rows := log.Summary()
	if rows[0].Lithology != "sandstone" || math.Abs(rows[0].Thickness-25) > 1e-12 {
		t.Errorf("summary = %+v", rows)
	}
}

func TestCrop(t *testing.T) {
	log := threeLayer(t)
	cropped, err := log.Crop(5, 30)
	if err != nil {
		t.Fatal(err)
	}
	if cropped.Start() != 5 || cropped.Stop() != 30 || len(cropped.Intervals) != 3 {
		t.Fatalf("cropped = %+v", cropped.Intervals)
	}
	if _, err := log.Crop(100, 200); !errors.Is(err, ErrEmpty) {
		t.Errorf("out-of-range crop err = %v", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	log := threeLayer(t)
	var b strings.Builder
	if err := log.WriteJSON(&b); err != nil {
		t.Fatal(err)
	}
	back, err := FromJSON(strings.NewReader(b.String()))
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Intervals) != 3 || back.Intervals[1].Lithology != "shale" {
		t.Fatalf("round trip = %+v", back.Intervals)
	}
}

func TestRender(t *testing.T) {
	log := threeLayer(t)
	svg := log.SVG("well-1")
	if !strings.Contains(svg, "#FFFF00") || !strings.Contains(svg, "</svg>") {
		t.Error("svg missing lithology colour or close tag")
	}

	var b strings.Builder
	log.ASCII(&b, 20)
	out := b.String()
	if !strings.Contains(out, "sandstone") || !strings.Contains(out, "-") {
		t.Errorf("ascii column:\n%s", out)
	}

	b.Reset()
	log.WriteSummary(&b)
	if !strings.Contains(b.String(), "LITHOLOGY") {
		t.Errorf("summary:\n%s", b.String())
	}
}
