package geochem

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func reeTable(t *testing.T) *Table {
	t.Helper()
	// Sample 1 is flat at 10x chondrite, sample 2 carries a negative
	// Eu anomaly, sample 3 has a zero concentration.
	csv := `La,Sm,Eu,Gd,Yb,group
2.37,1.48,0.563,1.99,1.61,flat
2.37,1.48,0.2815,1.99,1.61,anom
2.37,1.48,0,1.99,1.61,zero
`
	tbl, err := ReadCSV(strings.NewReader(csv), "group")
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestReadCSVGroups(t *testing.T) {
	tbl := reeTable(t)
	if tbl.N != 3 || len(tbl.Columns) != 5 {
		t.Fatalf("n = %d, columns = %v", tbl.N, tbl.Columns)
	}
	if tbl.Group[1] != "anom" {
		t.Errorf("group = %v", tbl.Group)
	}
	if tbl.Has("group") {
		t.Error("group column should not be numeric")
	}
}

func TestREENormalize(t *testing.T) {
	tbl := reeTable(t)
	p, err := tbl.REENormalize()
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Elements) != 5 || p.Elements[0] != "La" || p.Elements[4] != "Yb" {
		t.Fatalf("elements = %v", p.Elements)
	}
	// La 2.37 ppm over chondrite 0.237 ppm.
	if math.Abs(p.Norm[0][0]-10) > 1e-9 {
		t.Errorf("La_N = %g", p.Norm[0][0])
	}
	for i := range p.Elements {
		if math.Abs(p.Norm[0][i]-10) > 1e-9 {
			t.Errorf("sample 1 not flat: %v", p.Norm[0])
		}
	}
	if !math.IsNaN(p.Norm[2][2]) {
		t.Errorf("zero Eu should drop to NaN, got %g", p.Norm[2][2])
	}
	if len(tbl.Warnings) != 1 || !strings.Contains(tbl.Warnings[0], "1 non-positive") {
		t.Errorf("warnings = %v", tbl.Warnings)
	}
}

func TestEuAnomalyAndLaYb(t *testing.T) {
	tbl := reeTable(t)
	p, err := tbl.REENormalize()
	if err != nil {
		t.Fatal(err)
	}
	eu := p.EuAnomaly()
	if math.Abs(eu[0]-1) > 1e-9 {
		t.Errorf("flat Eu/Eu* = %g", eu[0])
	}
	// Sample 2 has Eu at half the flat level: 5 / sqrt(10*10).
	if math.Abs(eu[1]-0.5) > 1e-9 {
		t.Errorf("anomalous Eu/Eu* = %g", eu[1])
	}
	if !math.IsNaN(eu[2]) {
		t.Errorf("dropped Eu should give NaN, got %g", eu[2])
	}
	la := p.LaYbN()
	if math.Abs(la[0]-1) > 1e-9 {
		t.Errorf("La/Yb_N = %g", la[0])
	}
}

func TestREENormalizeTooFew(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("La,Ce\n1,2\n"), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tbl.REENormalize(); !errors.Is(err, ErrFewREE) {
		t.Errorf("err = %v, want ErrFewREE", err)
	}
}

func TestWriteNormalizedCSV(t *testing.T) {
	tbl := reeTable(t)
	p, err := tbl.REENormalize()
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	if err := p.WriteNormalizedCSV(&b); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if lines[0] != "sample,La,Sm,Eu,Gd,Yb" {
		t.Errorf("header = %q", lines[0])
	}
	// Dropped Eu in sample 3 leaves an empty cell.
	if lines[3] != "3,10,10,,10,10" {
		t.Errorf("row 3 = %q", lines[3])
	}
}

func TestClassifyTAS(t *testing.T) {
	cases := []struct {
		sio2, alk float64
		want      string
	}{
		{43, 1, "picrobasalt"},
		{48, 3, "basalt"},
		{54, 3, "basaltic andesite"},
		{60, 4, "andesite"},
		{66, 4, "dacite"},
		{73, 10, "rhyolite"},
		{47, 5.8, "trachybasalt"},
		{52, 7.5, "basaltic trachyandesite"},
		{58, 9, "trachyandesite"},
		{64, 11, "trachyte"},
		{43, 6, "tephrite"},
		{48, 10, "phonotephrite"},
		{53, 12, "tephriphonolite"},
		{54, 14.5, "phonolite"},
		{38, 5, "foidite"},
		{38, 1, "foidite"}, // low-silica fallback
		{90, 5, "unclassified"},
	}
	for _, c := range cases {
		if got := ClassifyTAS(c.sio2, c.alk); got != c.want {
			t.Errorf("ClassifyTAS(%g, %g) = %q, want %q", c.sio2, c.alk, got, c.want)
		}
	}
	if ClassifyTAS(math.NaN(), 5) != "unclassified" {
		t.Error("NaN should be unclassified")
	}
}

func majorTable(t *testing.T) *Table {
	t.Helper()
	csv := `SiO2,Na2O,K2O,MgO,group
48,2.5,0.5,8,mafic
54,3.2,0.8,6,mafic
73,5.5,4.0,0.5,felsic
38,3.0,2.0,12,mafic
`
	tbl, err := ReadCSV(strings.NewReader(csv), "group")
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func TestTableTAS(t *testing.T) {
	tbl := majorTable(t)
	results, err := tbl.TAS()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"basalt", "basaltic andesite", "rhyolite", "foidite"}
	for i, w := range want {
		if results[i].Field != w {
			t.Errorf("sample %d: field = %q, want %q", i+1, results[i].Field, w)
		}
	}
	if results[2].Group != "felsic" || math.Abs(results[2].Alkali-9.5) > 1e-12 {
		t.Errorf("result = %+v", results[2])
	}

	var b strings.Builder
	WriteTASTable(&b, results)
	if !strings.Contains(b.String(), "FIELD") || !strings.Contains(b.String(), "rhyolite") {
		t.Errorf("table:\n%s", b.String())
	}

	short, err := ReadCSV(strings.NewReader("SiO2,K2O\n50,1\n"), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := short.TAS(); err == nil {
		t.Error("expected missing-column error")
	}
}

func TestHarker(t *testing.T) {
	tbl := majorTable(t)
	stats, err := tbl.Harker()
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]HarkerStat{}
	for _, s := range stats {
		byName[s.Oxide] = s
	}
	mgo, ok := byName["MgO"]
	if !ok || mgo.N != 4 {
		t.Fatalf("stats = %v", stats)
	}
	// MgO falls almost linearly with silica in this set.
	if mgo.R > -0.95 {
		t.Errorf("MgO r = %g", mgo.R)
	}
	if byName["K2O"].R < 0 {
		t.Errorf("K2O r = %g", byName["K2O"].R)
	}

	var b strings.Builder
	WriteHarkerTable(&b, stats)
	if !strings.Contains(b.String(), "MgO") {
		t.Errorf("table:\n%s", b.String())
	}

	noSi, err := ReadCSV(strings.NewReader("MgO\n1\n"), "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := noSi.Harker(); err == nil {
		t.Error("expected SiO2 requirement error")
	}
}

func TestTernaryXY(t *testing.T) {
	cases := []struct {
		a, b, c, x, y float64
	}{
		{1, 0, 0, 0, 0},
		{0, 1, 0, 1, 0},
		{0, 0, 1, 0.5, math.Sqrt(3) / 2},
		{1, 1, 1, 0.5, math.Sqrt(3) / 6},
	}
	for _, c := range cases {
		x, y := TernaryXY(c.a, c.b, c.c)
		if math.Abs(x-c.x) > 1e-12 || math.Abs(y-c.y) > 1e-12 {
			t.Errorf("TernaryXY(%g,%g,%g) = (%g,%g)", c.a, c.b, c.c, x, y)
		}
	}
	if x, _ := TernaryXY(0, 0, 0); !math.IsNaN(x) {
		t.Error("zero total should project to NaN")
	}
}

func TestRenderers(t *testing.T) {
	tbl := reeTable(t)
	p, err := tbl.REENormalize()
	if err != nil {
		t.Fatal(err)
	}
	svg := p.SpiderSVG("REE")
	if !strings.Contains(svg, "</svg>") || !strings.Contains(svg, "chondrite") {
		t.Error("spider SVG incomplete")
	}

	major := majorTable(t)
	results, err := major.TAS()
	if err != nil {
		t.Fatal(err)
	}
	tas := TASSVG(results, "TAS")
	if !strings.Contains(tas, "rhyolite") || !strings.Contains(tas, "<circle") {
		t.Error("TAS SVG incomplete")
	}

	tern, err := major.TernarySVG([3]string{"Na2O", "K2O", "MgO"}, "AFM-ish")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(tern, "<polygon") {
		t.Error("ternary SVG incomplete")
	}
	if _, err := major.TernarySVG([3]string{"A", "B", "C"}, "x"); err == nil {
		t.Error("expected missing-column error")
	}
}
