// Package plot renders analysis results as terminal graphics and SVG files.
package plot

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"
)

// shade ramp for ascii heatmaps, light to dark.
const shadeRamp = " .:-=+*#%@"

// Series renders a single curve with asciigraph.
func Series(data []float64, caption string) string {
	return asciigraph.Plot(data,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

// SeriesPair renders two curves on shared axes.
func SeriesPair(a, b []float64, caption string) string {
	return asciigraph.PlotMany([][]float64{a, b},
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(caption),
	)
}

// ScatterASCII draws an x/y point cloud on a framed character canvas.
func ScatterASCII(x, y []float64, width, height int) string {
	if len(x) == 0 || len(x) != len(y) {
		return ""
	}

	xMin, xMax := bounds(x)
	yMin, yMax := bounds(y)
	xRange := xMax - xMin
	yRange := yMax - yMin
	if xRange == 0 {
		xRange = 1
	}
	if yRange == 0 {
		yRange = 1
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for i := range x {
		px := int(float64(width-1) * (x[i] - xMin) / xRange)
		py := int(float64(height-1) * (y[i] - yMin) / yRange)
		py = height - 1 - py
		if px >= 0 && px < width && py >= 0 && py < height {
			canvas[py][px] = '●'
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "  %8.2f ┌%s┐\n", yMax, strings.Repeat("─", width))
	for i := range canvas {
		if i == height/2 {
			fmt.Fprintf(&sb, "  %8.2f │", (yMax+yMin)/2)
		} else {
			sb.WriteString("           │")
		}
		sb.WriteString(string(canvas[i]))
		sb.WriteString("│\n")
	}
	fmt.Fprintf(&sb, "  %8.2f └%s┘\n", yMin, strings.Repeat("─", width))
	fmt.Fprintf(&sb, "           %-12.2f%*.2f\n", xMin, width-12, xMax)
	return sb.String()
}

// HeatASCII renders a row-major grid as shaded characters, row 0 on top.
// NaN cells render as blanks.
func HeatASCII(vals []float64, nx, ny int) string {
	if nx <= 0 || ny <= 0 || len(vals) < nx*ny {
		return ""
	}

	vMin, vMax := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if v < vMin {
			vMin = v
		}
		if v > vMax {
			vMax = v
		}
	}
	if vMin > vMax {
		return ""
	}
	vRange := vMax - vMin
	if vRange == 0 {
		vRange = 1
	}

	ramp := []rune(shadeRamp)
	var sb strings.Builder
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v := vals[j*nx+i]
			if math.IsNaN(v) {
				sb.WriteRune(' ')
				continue
			}
			idx := int(float64(len(ramp)-1) * (v - vMin) / vRange)
			sb.WriteRune(ramp[idx])
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "min=%.4g max=%.4g\n", vMin, vMax)
	return sb.String()
}

func bounds(v []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range v {
		if math.IsNaN(x) {
			continue
		}
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}
