package catalog

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
)

func fmtDepth(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f", v)
}

// WriteWellTable prints the catalog listing.
func WriteWellTable(w io.Writer, wells []Well) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WELL\tUWI\tSTART\tSTOP\tSTEP\tCURVES\tPATH")
	for _, well := range wells {
		if well.Error != "" {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t%s (failed: %s)\n", well.Name, well.Path, well.Error)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			well.Name, well.UWI, fmtDepth(well.DepthStart), fmtDepth(well.DepthStop),
			fmtDepth(well.Step), well.NCurves, well.Path)
	}
	tw.Flush()
}

// WriteCurveTable prints the availability query.
func WriteCurveTable(w io.Writer, rows []CurveRow) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WELL\tMNEM\tUNIT\tMIN\tMAX\tMEAN\tNULL%\tPATH")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.3f\t%.3f\t%.3f\t%.1f\t%s\n",
			r.Well, r.Mnem, r.Unit, r.Min, r.Max, r.Mean, r.NullPct, r.Path)
	}
	tw.Flush()
}

// WriteStats prints the aggregate summary.
func WriteStats(w io.Writer, st *Stats) {
	fmt.Fprintf(w, "Wells:             %d\n", st.Wells)
	fmt.Fprintf(w, "Failed:            %d\n", st.Failed)
	fmt.Fprintf(w, "Curves:            %d\n", st.Curves)
	fmt.Fprintf(w, "Distinct mnemonics: %d\n", st.Mnemonics)
	fmt.Fprintf(w, "Depth range:       %s - %s\n", fmtDepth(st.DepthMin), fmtDepth(st.DepthMax))
}
