package stereo

import (
	"fmt"
	"io"
	"math"
	"strings"
)

// net geometry.
const (
	netSize   = 600
	netMargin = 40
)

// NetOptions selects what the stereonet shows.
type NetOptions struct {
	Title    string
	Planes   bool // great circles for every measurement
	Contour  bool // Kamb density shading behind the poles
	Stats    bool // mean pole, and girdle/fold axis for girdle fabrics
	PoleSize float64
}

var groupPalette = []string{"#00ff88", "#ff8800", "#00aaff", "#ff44aa", "#ffee00", "#aa88ff"}

// project maps trend/plunge (degrees) to net coordinates in [-1,1],
// x east and y north, Schmidt equal-area.
func project(trend, plunge float64) (x, y float64) {
	psi := (90 - plunge) * deg
	r := math.Sqrt2 * math.Sin(psi/2)
	return r * math.Sin(trend*deg), r * math.Cos(trend*deg)
}

// unproject inverts project for points inside the unit circle.
func unproject(x, y float64) (trend, plunge float64) {
	rho := math.Hypot(x, y)
	if rho > 1 {
		rho = 1
	}
	psi := 2 * math.Asin(rho/math.Sqrt2)
	trend = math.Atan2(x, y) / deg
	if trend < 0 {
		trend += 360
	}
	return trend, 90 - psi/deg
}

// StereonetSVG renders poles (and optionally planes, density contours
// and summary symbols) on an equal-area lower-hemisphere net.
func StereonetSVG(ms []Measurement, opts NetOptions) string {
	cx := float64(netSize) / 2
	cy := float64(netSize) / 2
	radius := float64(netSize)/2 - netMargin
	px := func(x, y float64) (float64, float64) {
		return cx + x*radius, cy - y*radius
	}
	if opts.PoleSize == 0 {
		opts.PoleSize = 3.5
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, netSize, netSize, netSize, netSize)
	if opts.Title != "" {
		fmt.Fprintf(&sb, `<text x="%.0f" y="24" fill="#ddd" font-size="15" text-anchor="middle" font-family="monospace">%s</text>`+"\n",
			cx, escape(opts.Title))
	}

	if opts.Contour && len(ms) > 0 {
		drawDensity(&sb, ms, cx, cy, radius)
	}

	// Primitive circle and cardinal ticks.
	fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#555"/>`+"\n", cx, cy, radius)
	for _, tick := range []struct {
		az    float64
		label string
	}{{0, "N"}, {90, "E"}, {180, "S"}, {270, "W"}} {
		tx := cx + (radius+16)*math.Sin(tick.az*deg)
		ty := cy - (radius+16)*math.Cos(tick.az*deg)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#bbb" font-size="13" text-anchor="middle" font-family="monospace">%s</text>`+"\n",
			tx, ty+4, tick.label)
	}
	// Center cross.
	fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#444"/>`+"\n", cx-5, cy, cx+5, cy)
	fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#444"/>`+"\n", cx, cy-5, cx, cy+5)

	names, groups := GroupBy(ms)
	for gi, name := range names {
		color := groupPalette[gi%len(groupPalette)]
		if opts.Planes {
			for _, m := range groups[name] {
				drawGreatCircle(&sb, m.Strike, m.Dip, color, 0.8, 0.35, px)
			}
		}
		for _, m := range groups[name] {
			trend, plunge := TrendPlunge(m.PoleVector())
			x, y := project(trend, plunge)
			sx, sy := px(x, y)
			fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n",
				sx, sy, opts.PoleSize, color)
		}
		if len(names) > 1 {
			fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="%s" font-size="12" font-family="monospace">%s (n=%d)</text>`+"\n",
				12, 40+16*gi, color, escape(name), len(groups[name]))
		}
	}

	if opts.Stats {
		if st, err := Analyze(ms); err == nil {
			trend, plunge := TrendPlunge(Measurement{Strike: st.MeanStrike, Dip: st.MeanDip}.PoleVector())
			x, y := project(trend, plunge)
			sx, sy := px(x, y)
			drawStar(&sb, sx, sy, 9, "#ff3333")
			if st.Fabric == "girdle" {
				drawGreatCircle(&sb, st.GirdleStrike, st.GirdleDip, "#ff3333", 2, 1, px)
				x, y = project(st.FoldAxisTrend, st.FoldAxisPlunge)
				sx, sy = px(x, y)
				fmt.Fprintf(&sb, `<path d="M%.1f,%.1f L%.1f,%.1f L%.1f,%.1f Z" fill="#ff3333"/>`+"\n",
					sx, sy-7, sx-6, sy+5, sx+6, sy+5)
			}
		}
	}

	fmt.Fprintf(&sb, `<text x="%.0f" y="%d" fill="#999" font-size="12" text-anchor="middle" font-family="monospace">n=%d, equal area, lower hemisphere</text>`+"\n",
		cx, netSize-12, len(ms))
	sb.WriteString("</svg>\n")
	return sb.String()
}

// drawGreatCircle traces the cyclographic arc of one plane.
func drawGreatCircle(sb *strings.Builder, strike, dip float64, color string, width, opacity float64, px func(x, y float64) (float64, float64)) {
	us := [3]float64{math.Cos(strike * deg), math.Sin(strike * deg), 0}
	dd := (strike + 90) * deg
	ud := [3]float64{
		math.Cos(dip*deg) * math.Cos(dd),
		math.Cos(dip*deg) * math.Sin(dd),
		math.Sin(dip * deg),
	}
	fmt.Fprintf(sb, `<path fill="none" stroke="%s" stroke-width="%g" stroke-opacity="%g" d="`, color, width, opacity)
	const steps = 90
	for i := 0; i <= steps; i++ {
		rake := math.Pi * float64(i) / steps
		v := [3]float64{
			math.Cos(rake)*us[0] + math.Sin(rake)*ud[0],
			math.Cos(rake)*us[1] + math.Sin(rake)*ud[1],
			math.Cos(rake)*us[2] + math.Sin(rake)*ud[2],
		}
		trend, plunge := TrendPlunge(v)
		x, y := project(trend, plunge)
		sx, sy := px(x, y)
		if i == 0 {
			fmt.Fprintf(sb, "M%.1f,%.1f", sx, sy)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", sx, sy)
		}
	}
	sb.WriteString("\"/>\n")
}

// drawDensity shades the net by Kamb pole density (counting cap with
// area fraction 9/(n+9) of the hemisphere).
func drawDensity(sb *strings.Builder, ms []Measurement, cx, cy, radius float64) {
	poles := make([][3]float64, len(ms))
	for i, m := range ms {
		v := m.PoleVector()
		if v[2] < 0 {
			v[0], v[1], v[2] = -v[0], -v[1], -v[2]
		}
		poles[i] = v
	}
	n := float64(len(ms))
	cosCap := 1 - 9/(n+9)
	expected := 9 * n / (n + 9)

	const cells = 60
	cell := 2.0 / cells
	maxCount := 0.0
	counts := make([]float64, cells*cells)
	for j := 0; j < cells; j++ {
		for i := 0; i < cells; i++ {
			x := -1 + (float64(i)+0.5)*cell
			y := -1 + (float64(j)+0.5)*cell
			if x*x+y*y > 1 {
				counts[j*cells+i] = math.NaN()
				continue
			}
			trend, plunge := unproject(x, y)
			u := [3]float64{
				math.Cos(plunge*deg) * math.Cos(trend*deg),
				math.Cos(plunge*deg) * math.Sin(trend*deg),
				math.Sin(plunge * deg),
			}
			var c float64
			for _, p := range poles {
				dot := math.Abs(u[0]*p[0] + u[1]*p[1] + u[2]*p[2])
				if dot >= cosCap {
					c++
				}
			}
			counts[j*cells+i] = c
			maxCount = math.Max(maxCount, c)
		}
	}
	if maxCount <= expected {
		return
	}
	for j := 0; j < cells; j++ {
		for i := 0; i < cells; i++ {
			c := counts[j*cells+i]
			if math.IsNaN(c) || c <= expected {
				continue
			}
			t := (c - expected) / (maxCount - expected)
			sx := cx + (-1+float64(i)*cell)*radius
			sy := cy - (-1+float64(j+1)*cell)*radius
			fmt.Fprintf(sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="#ff3300" fill-opacity="%.2f"/>`+"\n",
				sx, sy, cell*radius+0.5, cell*radius+0.5, 0.1+0.5*t)
		}
	}
}

func drawStar(sb *strings.Builder, cx, cy, r float64, color string) {
	fmt.Fprintf(sb, `<path d="`)
	for i := 0; i < 10; i++ {
		rr := r
		if i%2 == 1 {
			rr = r * 0.4
		}
		a := float64(i)*math.Pi/5 - math.Pi/2
		x := cx + rr*math.Cos(a)
		y := cy + rr*math.Sin(a)
		if i == 0 {
			fmt.Fprintf(sb, "M%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(sb, " L%.1f,%.1f", x, y)
		}
	}
	fmt.Fprintf(sb, ` Z" fill="%s"/>`+"\n", color)
}

// WriteReport prints the statistics block for one group.
func WriteReport(w io.Writer, name string, st *Stats) {
	if name != "" {
		fmt.Fprintf(w, "%s\n%s\n", strings.ToUpper(name), strings.Repeat("-", 40))
	}
	fmt.Fprintf(w, "  samples:        %d\n", st.N)
	fmt.Fprintf(w, "  mean pole:      %05.1f/%04.1f\n", st.MeanStrike, st.MeanDip)
	fmt.Fprintf(w, "  resultant R:    %.3f  (fisher k = %.1f)\n", st.ResultantLength, st.FisherK)
	fmt.Fprintf(w, "  eigenvalues:    %.3f  %.3f  %.3f\n", st.Eigenvalues[0], st.Eigenvalues[1], st.Eigenvalues[2])
	fmt.Fprintf(w, "  woodcock K:     %.2f (%s)\n", st.WoodcockK, st.Fabric)
	fmt.Fprintf(w, "  woodcock C:     %.2f\n", st.WoodcockC)
	fmt.Fprintf(w, "  best-fit girdle: %05.1f/%04.1f\n", st.GirdleStrike, st.GirdleDip)
	fmt.Fprintf(w, "  fold axis:      %05.1f/%04.1f\n", st.FoldAxisTrend, st.FoldAxisPlunge)
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}
