package stereo

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestPoleVector(t *testing.T) {
	// Vertical plane striking north: pole is horizontal due west.
	v := Measurement{Strike: 0, Dip: 90}.PoleVector()
	trend, plunge := TrendPlunge(v)
	if math.Abs(trend-270) > 1e-9 || math.Abs(plunge) > 1e-9 {
		t.Errorf("vertical N-S plane pole = %f/%f, want 270/0", trend, plunge)
	}

	// Horizontal plane: pole straight down.
	v = Measurement{Strike: 123, Dip: 0}.PoleVector()
	if _, plunge := TrendPlunge(v); math.Abs(plunge-90) > 1e-9 {
		t.Errorf("horizontal plane pole plunge = %f, want 90", plunge)
	}

	// Unit length.
	v = Measurement{Strike: 42, Dip: 37}.PoleVector()
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if math.Abs(n-1) > 1e-12 {
		t.Errorf("pole vector norm = %f", n)
	}
}

func TestTrendPlungeHemisphereFlip(t *testing.T) {
	s := 1 / math.Sqrt2
	trend, plunge := TrendPlunge([3]float64{0, -s, -s})
	if math.Abs(trend-90) > 1e-9 || math.Abs(plunge-45) > 1e-9 {
		t.Errorf("flipped vector = %f/%f, want 90/45", trend, plunge)
	}
}

func clusterData() []Measurement {
	var ms []Measurement
	for _, ds := range []float64{-6, -3, 0, 3, 6} {
		for _, dd := range []float64{-4, 0, 4} {
			ms = append(ms, Measurement{Strike: 90 + ds, Dip: 45 + dd})
		}
	}
	return ms
}

func girdleData() []Measurement {
	// Beds folded about a horizontal north-south axis: their poles
	// spread along the east-west vertical great circle.
	var ms []Measurement
	for d := 10.0; d <= 90; d += 10 {
		ms = append(ms, Measurement{Strike: 0, Dip: d})
	}
	for d := 10.0; d <= 80; d += 10 {
		ms = append(ms, Measurement{Strike: 180, Dip: d})
	}
	return ms
}

func TestAnalyzeCluster(t *testing.T) {
	st, err := Analyze(clusterData())
	if err != nil {
		t.Fatal(err)
	}
	if st.Fabric != "cluster" || st.WoodcockK <= 1 {
		t.Errorf("fabric = %s, K = %f, want cluster", st.Fabric, st.WoodcockK)
	}
	if math.Abs(st.MeanStrike-90) > 2 || math.Abs(st.MeanDip-45) > 2 {
		t.Errorf("mean plane = %f/%f, want ~090/45", st.MeanStrike, st.MeanDip)
	}
	if st.ResultantLength < 0.99 {
		t.Errorf("resultant length = %f, want near 1 for a tight cluster", st.ResultantLength)
	}
	if st.FisherK < 100 {
		t.Errorf("fisher k = %f, want large for a tight cluster", st.FisherK)
	}
	sum := st.Eigenvalues[0] + st.Eigenvalues[1] + st.Eigenvalues[2]
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("eigenvalue sum = %f", sum)
	}
	if st.Eigenvalues[0] < st.Eigenvalues[1] || st.Eigenvalues[1] < st.Eigenvalues[2] {
		t.Errorf("eigenvalues not descending: %v", st.Eigenvalues)
	}
}

func TestAnalyzeGirdle(t *testing.T) {
	st, err := Analyze(girdleData())
	if err != nil {
		t.Fatal(err)
	}
	if st.Fabric != "girdle" || st.WoodcockK >= 1 {
		t.Errorf("fabric = %s, K = %f, want girdle", st.Fabric, st.WoodcockK)
	}
	// Fold axis is the horizontal north-south line.
	if st.FoldAxisPlunge > 5 {
		t.Errorf("fold axis plunge = %f, want ~0", st.FoldAxisPlunge)
	}
	az := math.Mod(st.FoldAxisTrend, 180)
	if az > 5 && az < 175 {
		t.Errorf("fold axis trend = %f, want ~N-S", st.FoldAxisTrend)
	}
	// The girdle plane is vertical.
	if st.GirdleDip < 85 {
		t.Errorf("girdle dip = %f, want ~90", st.GirdleDip)
	}
}

func TestAnalyzeTooFew(t *testing.T) {
	if _, err := Analyze(clusterData()[:2]); !errors.Is(err, ErrTooFew) {
		t.Errorf("err = %v, want ErrTooFew", err)
	}
}

func TestReadCSV(t *testing.T) {
	csvData := `strike,dip,type
90,45,bedding
95,50,bedding
120,30,joint
400,45,joint
100,95,joint
abc,10,joint
`
	ms, warnings, err := ReadCSV(strings.NewReader(csvData))
	if err != nil {
		t.Fatal(err)
	}
	if len(ms) != 3 {
		t.Fatalf("kept %d rows, want 3: %+v", len(ms), ms)
	}
	if len(warnings) != 3 {
		t.Errorf("warnings = %v, want 3", warnings)
	}

	names, groups := GroupBy(ms)
	if len(names) != 2 || names[0] != "bedding" || len(groups["bedding"]) != 2 {
		t.Errorf("groups = %v %v", names, groups)
	}

	if _, _, err := ReadCSV(strings.NewReader("a,b\n1,2\n")); err == nil {
		t.Error("expected missing-column error")
	}
}

func TestProjectRoundTrip(t *testing.T) {
	for _, tp := range [][2]float64{{0, 90}, {45, 30}, {200, 5}, {359, 60}} {
		x, y := project(tp[0], tp[1])
		if r := math.Hypot(x, y); r > 1+1e-12 {
			t.Errorf("projected point outside net: %v -> r=%f", tp, r)
		}
		trend, plunge := unproject(x, y)
		if math.Abs(trend-tp[0]) > 1e-6 || math.Abs(plunge-tp[1]) > 1e-6 {
			t.Errorf("round trip %v -> %f/%f", tp, trend, plunge)
		}
	}
	// A vertical pole lands at the center.
	if x, y := project(123, 90); math.Hypot(x, y) > 1e-12 {
		t.Errorf("vertical line not at center: %f %f", x, y)
	}
}

func TestStereonetSVG(t *testing.T) {
	svg := StereonetSVG(clusterData(), NetOptions{Title: "test", Planes: true, Contour: true, Stats: true})
	if !strings.HasPrefix(svg, `<?xml`) || !strings.Contains(svg, "</svg>") {
		t.Fatal("not a complete svg document")
	}
	if !strings.Contains(svg, "equal area") {
		t.Error("missing annotation")
	}
	// One circle per pole plus the primitive.
	if n := strings.Count(svg, "<circle"); n < len(clusterData())+1 {
		t.Errorf("found %d circles, want at least %d", n, len(clusterData())+1)
	}
}

func TestWriteReport(t *testing.T) {
	st, err := Analyze(girdleData())
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	WriteReport(&b, "bedding", st)
	out := b.String()
	if !strings.Contains(out, "BEDDING") || !strings.Contains(out, "girdle") {
		t.Errorf("report:\n%s", out)
	}
}
