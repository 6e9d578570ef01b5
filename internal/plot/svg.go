package plot

import (
	"fmt"
	"math"
	"os"
	"strings"
)

// Curve is one named polyline on an SVG chart.
type Curve struct {
	X, Y  []float64
	Color string
	Label string
}

// chart geometry shared by the SVG writers.
const (
	svgWidth   = 800
	svgHeight  = 500
	marginLeft = 70
	marginTop  = 40
	marginBot  = 60
	marginRt   = 30
)

// LineSVG renders one or more curves with axes, ticks and labels.
func LineSVG(curves []Curve, title, xLabel, yLabel string) string {
	if len(curves) == 0 {
		return ""
	}

	xMin, xMax := math.Inf(1), math.Inf(-1)
	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, c := range curves {
		for i := range c.X {
			if math.IsNaN(c.X[i]) || math.IsNaN(c.Y[i]) {
				continue
			}
			xMin = math.Min(xMin, c.X[i])
			xMax = math.Max(xMax, c.X[i])
			yMin = math.Min(yMin, c.Y[i])
			yMax = math.Max(yMax, c.Y[i])
		}
	}
	if xMin > xMax {
		return ""
	}
	if xMax == xMin {
		xMax = xMin + 1
	}
	if yMax == yMin {
		yMax = yMin + 1
	}
	pad := (yMax - yMin) * 0.05
	yMin -= pad
	yMax += pad

	plotW := float64(svgWidth - marginLeft - marginRt)
	plotH := float64(svgHeight - marginTop - marginBot)
	px := func(x float64) float64 { return marginLeft + (x-xMin)/(xMax-xMin)*plotW }
	py := func(y float64) float64 { return marginTop + (1-(y-yMin)/(yMax-yMin))*plotH }

	var sb strings.Builder
	svgHeader(&sb)
	fmt.Fprintf(&sb, `<text x="%d" y="24" fill="#ddd" font-size="16" text-anchor="middle" font-family="monospace">%s</text>`+"\n",
		svgWidth/2, escape(title))

	// Axes and ticks.
	fmt.Fprintf(&sb, `<rect x="%d" y="%d" width="%.0f" height="%.0f" fill="none" stroke="#555"/>`+"\n",
		marginLeft, marginTop, plotW, plotH)
	for i := 0; i <= 5; i++ {
		xv := xMin + float64(i)*(xMax-xMin)/5
		yv := yMin + float64(i)*(yMax-yMin)/5
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333"/>`+"\n",
			px(xv), py(yMin), px(xv), py(yMax))
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#333"/>`+"\n",
			px(xMin), py(yv), px(xMax), py(yv))
		fmt.Fprintf(&sb, `<text x="%.1f" y="%d" fill="#999" font-size="11" text-anchor="middle" font-family="monospace">%.3g</text>`+"\n",
			px(xv), svgHeight-marginBot+18, xv)
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" fill="#999" font-size="11" text-anchor="end" font-family="monospace">%.3g</text>`+"\n",
			marginLeft-8, py(yv)+4, yv)
	}
	fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="#bbb" font-size="13" text-anchor="middle" font-family="monospace">%s</text>`+"\n",
		svgWidth/2, svgHeight-14, escape(xLabel))
	fmt.Fprintf(&sb, `<text x="18" y="%d" fill="#bbb" font-size="13" text-anchor="middle" font-family="monospace" transform="rotate(-90 18 %d)">%s</text>`+"\n",
		svgHeight/2, svgHeight/2, escape(yLabel))

	// Curves.
	for ci, c := range curves {
		color := c.Color
		if color == "" {
			color = defaultColor(ci)
		}
		sb.WriteString(`<path fill="none" stroke="` + color + `" stroke-width="1.5" d="`)
		started := false
		for i := range c.X {
			if math.IsNaN(c.X[i]) || math.IsNaN(c.Y[i]) {
				started = false
				continue
			}
			if !started {
				fmt.Fprintf(&sb, "M%.1f,%.1f", px(c.X[i]), py(c.Y[i]))
				started = true
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", px(c.X[i]), py(c.Y[i]))
			}
		}
		sb.WriteString("\"/>\n")
		if c.Label != "" {
			fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="%s" font-size="12" font-family="monospace">— %s</text>`+"\n",
				svgWidth-marginRt-180, marginTop+16+16*ci, color, escape(c.Label))
		}
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

// ScatterSVG renders an x/y point cloud; colors may be nil or per-point.
func ScatterSVG(x, y []float64, colors []string, title, xLabel, yLabel string) string {
	if len(x) == 0 || len(x) != len(y) {
		return ""
	}
	curves := []Curve{{X: x, Y: y}}
	base := LineSVG(curves, title, xLabel, yLabel)
	// Replace the connecting path with discrete points.
	idx := strings.Index(base, `<path fill="none"`)
	end := strings.Index(base[idx:], "/>\n")
	if idx < 0 || end < 0 {
		return base
	}
	xMin, xMax := bounds(x)
	yMin, yMax := bounds(y)
	if xMax == xMin {
		xMax = xMin + 1
	}
	if yMax == yMin {
		yMax = yMin + 1
	}
	pad := (yMax - yMin) * 0.05
	yMin -= pad
	yMax += pad
	plotW := float64(svgWidth - marginLeft - marginRt)
	plotH := float64(svgHeight - marginTop - marginBot)

	var pts strings.Builder
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		color := "#00ff88"
		if colors != nil && colors[i] != "" {
			color = colors[i]
		}
		cx := marginLeft + (x[i]-xMin)/(xMax-xMin)*plotW
		cy := float64(marginTop) + (1-(y[i]-yMin)/(yMax-yMin))*plotH
		fmt.Fprintf(&pts, `<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>`+"\n", cx, cy, color)
	}
	return base[:idx] + pts.String() + base[idx+end+3:]
}

// HeatmapSVG renders a row-major grid as colored cells, row 0 at the top.
func HeatmapSVG(vals []float64, nx, ny int, title string) string {
	if nx <= 0 || ny <= 0 || len(vals) < nx*ny {
		return ""
	}
	vMin, vMax := bounds(vals)
	vRange := vMax - vMin
	if vRange == 0 {
		vRange = 1
	}

	cw := float64(svgWidth-marginLeft-marginRt) / float64(nx)
	ch := float64(svgHeight-marginTop-marginBot) / float64(ny)

	var sb strings.Builder
	svgHeader(&sb)
	fmt.Fprintf(&sb, `<text x="%d" y="24" fill="#ddd" font-size="16" text-anchor="middle" font-family="monospace">%s</text>`+"\n",
		svgWidth/2, escape(title))
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v := vals[j*nx+i]
			if math.IsNaN(v) {
				continue
			}
			fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n",
				marginLeft+float64(i)*cw, marginTop+float64(j)*ch, cw+0.5, ch+0.5,
				rampColor((v-vMin)/vRange))
		}
	}
	fmt.Fprintf(&sb, `<text x="%d" y="%d" fill="#999" font-size="12" font-family="monospace">min=%.4g max=%.4g</text>`+"\n",
		marginLeft, svgHeight-14, vMin, vMax)
	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteFile writes rendered SVG content to a file.
func WriteFile(path, svg string) error {
	return os.WriteFile(path, []byte(svg), 0644)
}

func svgHeader(sb *strings.Builder) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, svgWidth, svgHeight, svgWidth, svgHeight)
}

func defaultColor(i int) string {
	colors := []string{"#00ff88", "#ff8800", "#00aaff", "#ff44aa", "#ffee00", "#aa88ff"}
	return colors[i%len(colors)]
}

// rampColor maps t in [0,1] to a blue-to-red ramp.
func rampColor(t float64) string {
	t = math.Max(0, math.Min(1, t))
	r := int(255 * t)
	g := int(80 + 100*math.Sin(t*math.Pi))
	b := int(255 * (1 - t))
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func escape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}
