package plot

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLineSVG(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{1, 3, 2, 4}
	svg := LineSVG([]Curve{{X: x, Y: y, Label: "depth"}}, "Profile", "x (m)", "z (m)")
	for _, want := range []string{"<svg", "</svg>", "Profile", "<path", "depth"} {
		if !strings.Contains(svg, want) {
			t.Errorf("LineSVG missing %q", want)
		}
	}
	if LineSVG(nil, "", "", "") != "" {
		t.Error("LineSVG(nil) should be empty")
	}
}

func TestScatterAndHeatmapSVG(t *testing.T) {
	x := []float64{0, 1, 2}
	y := []float64{0, 1, 4}
	if svg := ScatterSVG(x, y, nil, "Scatter", "x", "y"); !strings.Contains(svg, "circle") {
		t.Error("ScatterSVG has no points")
	}
	vals := []float64{0, 1, 2, 3, 4, 5}
	if svg := HeatmapSVG(vals, 3, 2, "Grid"); !strings.Contains(svg, "rect") {
		t.Error("HeatmapSVG has no cells")
	}
}

func TestEscape(t *testing.T) {
	svg := LineSVG([]Curve{{X: []float64{0, 1}, Y: []float64{0, 1}}}, "a<b&c", "", "")
	if strings.Contains(svg, "a<b") {
		t.Error("title not escaped")
	}
	if !strings.Contains(svg, "a&lt;b&amp;c") {
		t.Error("escaped title missing")
	}
}

func TestHeatASCII(t *testing.T) {
	vals := []float64{0, 1, 2, 3}
	out := HeatASCII(vals, 2, 2)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 2 rows + stats line, got %d lines", len(lines))
	}
	if !strings.Contains(lines[2], "min=0") || !strings.Contains(lines[2], "max=3") {
		t.Errorf("bad stats line %q", lines[2])
	}
	if HeatASCII(vals, 3, 2) != "" {
		t.Error("short value slice should render nothing")
	}
}

func TestHeatASCIINaN(t *testing.T) {
	vals := []float64{math.NaN(), 1, 2, math.NaN()}
	out := HeatASCII(vals, 2, 2)
	if out == "" {
		t.Fatal("grid with some NaN should still render")
	}
	if !strings.Contains(out, " ") {
		t.Error("NaN cells should render as blanks")
	}
}

func TestSeriesAndScatterASCII(t *testing.T) {
	data := []float64{0, 1, 0, -1, 0, 1}
	if out := Series(data, "wave"); !strings.Contains(out, "wave") {
		t.Error("caption missing from series plot")
	}
	x := []float64{0, 5, 10}
	y := []float64{0, 2, 1}
	out := ScatterASCII(x, y, 20, 8)
	if out == "" {
		t.Fatal("scatter plot empty")
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.svg")
	svg := LineSVG([]Curve{{X: []float64{0, 1}, Y: []float64{0, 1}}}, "t", "", "")
	if err := WriteFile(path, svg); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != svg {
		t.Error("file content differs from rendered SVG")
	}
}
