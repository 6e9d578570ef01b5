package striplog

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
)

// SVG column geometry.
const (
	colWidth  = 220
	colHeight = 760
	rulerLeft = 60
	boxLeft   = 70
	boxWidth  = 90
	marginTop = 40
	marginBot = 30
)

// SVG renders the log as a colour-filled strip column with a depth
// ruler.
func (l *Log) SVG(title string) string {
	start, stop := l.Start(), l.Stop()
	span := stop - start
	if span <= 0 {
		span = 1
	}
	plotH := float64(colHeight - marginTop - marginBot)
	y := func(depth float64) float64 {
		return marginTop + (depth-start)/span*plotH
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, colWidth, colHeight, colWidth, colHeight)
	if title != "" {
		fmt.Fprintf(&sb, `<text x="%d" y="24" fill="#ddd" font-size="14" text-anchor="middle" font-family="monospace">%s</text>`+"\n",
			colWidth/2, svgEscape(title))
	}

	for _, iv := range l.Intervals {
		top, bot := y(iv.Top), y(iv.Base)
		fmt.Fprintf(&sb, `<rect x="%d" y="%.1f" width="%d" height="%.1f" fill="%s" stroke="#222"/>`+"\n",
			boxLeft, top, boxWidth, bot-top, ColourOf(iv.Lithology))
		if bot-top > 12 {
			fmt.Fprintf(&sb, `<text x="%d" y="%.1f" fill="#ddd" font-size="10" font-family="monospace">%s</text>`+"\n",
				boxLeft+boxWidth+6, (top+bot)/2+3, svgEscape(iv.Lithology))
		}
	}

	// Depth ruler with round-number ticks.
	step := tickStep(span)
	fmt.Fprintf(&sb, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#777"/>`+"\n",
		rulerLeft, y(start), rulerLeft, y(stop))
	for d := math.Ceil(start/step) * step; d <= stop+1e-9; d += step {
		fmt.Fprintf(&sb, `<line x1="%d" y1="%.1f" x2="%d" y2="%.1f" stroke="#777"/>`+"\n",
			rulerLeft-5, y(d), rulerLeft, y(d))
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" fill="#999" font-size="10" text-anchor="end" font-family="monospace">%g</text>`+"\n",
			rulerLeft-8, y(d)+3, d)
	}

	sb.WriteString("</svg>\n")
	return sb.String()
}

func tickStep(span float64) float64 {
	raw := span / 10
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if raw <= m*mag {
			return m * mag
		}
	}
	return 10 * mag
}

// ASCII renders the column with one text row per depth step, using the
// lexicon hatch characters.
func (l *Log) ASCII(w io.Writer, rows int) {
	if rows < 2 {
		rows = 20
	}
	start, stop := l.Start(), l.Stop()
	step := (stop - start) / float64(rows)
	for r := 0; r < rows; r++ {
		depth := start + (float64(r)+0.5)*step
		lith := ""
		for _, iv := range l.Intervals {
			if depth >= iv.Top && depth < iv.Base {
				lith = iv.Lithology
				break
			}
		}
		label := ""
		if r == 0 || lithAt(l, start+(float64(r)-0.5)*step) != lith {
			label = lith
		}
		if lith == "" {
			fmt.Fprintf(w, "%8.1f |%s|\n", start+float64(r)*step, strings.Repeat(" ", 20))
			continue
		}
		fmt.Fprintf(w, "%8.1f |%s| %s\n", start+float64(r)*step, strings.Repeat(hatchOf(lith), 20), label)
	}
	fmt.Fprintf(w, "%8.1f\n", stop)
}

func lithAt(l *Log, depth float64) string {
	for _, iv := range l.Intervals {
		if depth >= iv.Top && depth < iv.Base {
			return iv.Lithology
		}
	}
	return ""
}

// WriteSummary prints the interval count, depth range and per-lithology
// thickness table.
func (l *Log) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "depth range: %.1f - %.1f\n", l.Start(), l.Stop())
	fmt.Fprintf(w, "intervals:   %d\n\n", len(l.Intervals))
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LITHOLOGY\tTHICKNESS\tFRACTION")
	for _, row := range l.Summary() {
		fmt.Fprintf(tw, "%s\t%.1f\t%.1f%%\n", row.Lithology, row.Thickness, row.Fraction*100)
	}
	tw.Flush()
	if issues := l.Validate(); len(issues) > 0 {
		fmt.Fprintln(w)
		for _, issue := range issues {
			fmt.Fprintf(w, "warning: %s\n", issue)
		}
	}
}

func svgEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	return strings.ReplaceAll(s, ">", "&gt;")
}
