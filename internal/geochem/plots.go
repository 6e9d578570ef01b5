package geochem

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/geoforge/internal/plot"
)

// SpiderSVG renders the normalized patterns on a log axis, one curve
// per sample.
func (p *Patterns) SpiderSVG(title string) string {
	x := make([]float64, len(p.Elements))
	for i := range x {
		x[i] = float64(i)
	}
	curves := make([]plot.Curve, 0, len(p.Norm))
	for s, row := range p.Norm {
		y := make([]float64, len(row))
		for i, v := range row {
			if v > 0 {
				y[i] = math.Log10(v)
			} else {
				y[i] = math.NaN()
			}
		}
		curves = append(curves, plot.Curve{X: x, Y: y, Label: fmt.Sprintf("sample %d", s+1)})
	}
	return plot.LineSVG(curves, title, strings.Join(p.Elements, " "), "log10 sample/chondrite")
}

// groupPalette cycles sample colors by group label.
var groupPalette = []string{"#00ff88", "#ff6b6b", "#4ecdc4", "#ffe66d", "#a78bfa", "#f97316"}

// TASSVG draws the classification grid and the classified samples.
func TASSVG(results []TASResult, title string) string {
	const (
		w, h           = 800, 500
		ml, mt, mr, mb = 60, 40, 20, 50
	)
	xMin, xMax := 35.0, 85.0
	yMin, yMax := 0.0, 16.0
	sx := func(v float64) float64 { return ml + (v-xMin)/(xMax-xMin)*float64(w-ml-mr) }
	sy := func(v float64) float64 { return float64(h-mb) - (v-yMin)/(yMax-yMin)*float64(h-mt-mb) }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", w, h, w, h)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="#0a0a0a"/>`+"\n", w, h)
	fmt.Fprintf(&sb, `<text x="%d" y="24" fill="#eee" font-size="16" text-anchor="middle">%s</text>`+"\n", w/2, title)

	for _, f := range tasFields {
		var pts []string
		cx, cy := 0.0, 0.0
		for _, v := range f.Poly {
			pts = append(pts, fmt.Sprintf("%.1f,%.1f", sx(v[0]), sy(v[1])))
			cx += v[0]
			cy += v[1]
		}
		cx /= float64(len(f.Poly))
		cy /= float64(len(f.Poly))
		fmt.Fprintf(&sb, `<polygon points="%s" fill="none" stroke="#444" stroke-width="1"/>`+"\n", strings.Join(pts, " "))
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#666" font-size="9" text-anchor="middle">%s</text>`+"\n", sx(cx), sy(cy), f.Name)
	}

	groupColor := map[string]string{}
	for _, r := range results {
		c, ok := groupColor[r.Group]
		if !ok {
			c = groupPalette[len(groupColor)%len(groupPalette)]
			groupColor[r.Group] = c
		}
		if math.IsNaN(r.SiO2) || math.IsNaN(r.Alkali) {
			continue
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="4" fill="%s" fill-opacity="0.8" stroke="#000"/>`+"\n",
			sx(r.SiO2), sy(r.Alkali), c)
	}

	fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="#aaa" font-size="12" text-anchor="middle">SiO2 (wt%%)</text>`+"\n", w/2, h-12)
	fmt.Fprintf(&sb, `<text x="16" y="%d" fill="#aaa" font-size="12" transform="rotate(-90 16 %d)" text-anchor="middle">Na2O + K2O (wt%%)</text>`+"\n", h/2, h/2)
	sb.WriteString("</svg>\n")
	return sb.String()
}

// TernaryXY projects (a, b, c) fractions onto the unit triangle with a
// at the lower left, b at the lower right and c on top.
func TernaryXY(a, b, c float64) (x, y float64) {
	s := a + b + c
	if s <= 0 {
		return math.NaN(), math.NaN()
	}
	return (b + c/2) / s, math.Sqrt(3) / 2 * c / s
}

// TernarySVG renders a ternary scatter of three columns.
func (t *Table) TernarySVG(cols [3]string, title string) (string, error) {
	for _, col := range cols {
		if !t.Has(col) {
			return "", fmt.Errorf("geochem: missing column %q for ternary", col)
		}
	}
	const (
		w, h   = 600, 560
		pad    = 50.0
		side   = float64(w) - 2*pad
		height = side * 0.8660254037844386
	)
	px := func(x float64) float64 { return pad + x*side }
	py := func(y float64) float64 { return float64(h) - pad - y*side }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n", w, h, w, h)
	fmt.Fprintf(&sb, `<rect width="%d" height="%d" fill="#0a0a0a"/>`+"\n", w, h)
	fmt.Fprintf(&sb, `<text x="%d" y="24" fill="#eee" font-size="16" text-anchor="middle">%s</text>`+"\n", w/2, title)
	fmt.Fprintf(&sb, `<polygon points="%.1f,%.1f %.1f,%.1f %.1f,%.1f" fill="none" stroke="#555"/>`+"\n",
		px(0), py(0), px(1), py(0), px(0.5), py(height/side))
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#aaa" font-size="12" text-anchor="end">%s</text>`+"\n", px(0)-6, py(0)+14, cols[0])
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#aaa" font-size="12">%s</text>`+"\n", px(1)+6, py(0)+14, cols[1])
	fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#aaa" font-size="12" text-anchor="middle">%s</text>`+"\n", px(0.5), py(height/side)-8, cols[2])

	groupColor := map[string]string{}
	for s := 0; s < t.N; s++ {
		x, y := TernaryXY(t.Data[cols[0]][s], t.Data[cols[1]][s], t.Data[cols[2]][s])
		if math.IsNaN(x) {
			continue
		}
		c, ok := groupColor[t.Group[s]]
		if !ok {
			c = groupPalette[len(groupColor)%len(groupPalette)]
			groupColor[t.Group[s]] = c
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="4" fill="%s" fill-opacity="0.8"/>`+"\n", px(x), py(y), c)
	}
	sb.WriteString("</svg>\n")
	return sb.String(), nil
}

// harkerOxides are plotted against SiO2 when present.
var harkerOxides = []string{"TiO2", "Al2O3", "FeO", "Fe2O3", "MgO", "CaO", "Na2O", "K2O", "P2O5"}

// HarkerStat is the linear correlation of one oxide against SiO2.
type HarkerStat struct {
	Oxide string
	R     float64
	N     int
}

// Harker correlates each available oxide with SiO2 over samples where
// both are finite.
func (t *Table) Harker() ([]HarkerStat, error) {
	if !t.Has("SiO2") {
		return nil, fmt.Errorf("geochem: SiO2 column required for Harker diagrams")
	}
	var out []HarkerStat
	for _, ox := range harkerOxides {
		if !t.Has(ox) {
			continue
		}
		var xs, ys []float64
		for s := 0; s < t.N; s++ {
			x, y := t.Data["SiO2"][s], t.Data[ox][s]
			if math.IsNaN(x) || math.IsNaN(y) {
				continue
			}
			xs = append(xs, x)
			ys = append(ys, y)
		}
		st := HarkerStat{Oxide: ox, N: len(xs), R: math.NaN()}
		if len(xs) >= 3 {
			st.R = stat.Correlation(xs, ys, nil)
		}
		out = append(out, st)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("geochem: no major oxide columns found")
	}
	return out, nil
}

// WriteHarkerTable prints the oxide correlations.
func WriteHarkerTable(w io.Writer, stats []HarkerStat) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "OXIDE\tN\tR(SIO2)")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%.3f\n", s.Oxide, s.N, s.R)
	}
	tw.Flush()
}
