package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/geoforge/internal/segy"
)

func newSegyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segy",
		Short: "SEG-Y inspection and extraction",
	}
	cmd.AddCommand(newSegyInspectCmd(), newSegyExtractCmd())
	return cmd
}

func newSegyInspectCmd() *cobra.Command {
	var (
		headers  []int
		showText bool
	)
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "summarize a SEG-Y file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := segy.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			fmt.Printf("File:            %s\n", args[0])
			fmt.Printf("Traces:          %d\n", r.TraceCount)
			fmt.Printf("Samples/trace:   %d\n", r.Bin.Samples)
			fmt.Printf("Sample interval: %d us\n", r.Bin.Interval)
			fmt.Printf("Format:          %s\n", segy.FormatName(r.Bin.Format))
			fmt.Printf("Trace length:    %.1f ms\n",
				float64(r.Bin.Samples)*float64(r.Bin.Interval)/1000)

			if showText {
				fmt.Println("\nTextual header:")
				fmt.Println(r.Text)
			}

			geom, err := r.ScanGeometry()
			if err != nil {
				return err
			}
			fmt.Printf("\nGeometry (scanned %d headers):\n", geom.Scanned)
			if geom.HasInlines {
				fmt.Printf("  Inlines:    %d - %d (%d unique)\n",
					geom.InlineMin, geom.InlineMax, geom.UniqueInlines)
				fmt.Printf("  Crosslines: %d - %d (%d unique)\n",
					geom.XlineMin, geom.XlineMax, geom.UniqueXlines)
			}
			if geom.HasCDP {
				fmt.Printf("  CDP X: %d - %d\n", geom.CDPXMin, geom.CDPXMax)
				fmt.Printf("  CDP Y: %d - %d\n", geom.CDPYMin, geom.CDPYMax)
				fmt.Printf("  Coordinate scalar: %d\n", geom.Scalar)
			}
			if geom.HasOffsets {
				fmt.Printf("  Offsets: %d - %d\n", geom.OffsetMin, geom.OffsetMax)
			}

			stats, err := r.TraceStats()
			if err != nil {
				return err
			}
			fmt.Printf("\nSample values (first+last trace): min %.4g, max %.4g, mean %.4g\n",
				stats.Min, stats.Max, stats.Mean)
			if stats.HasNaN {
				fmt.Println("  WARNING: NaN samples present")
			}

			if len(headers) > 0 {
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "\nTRACE\tSEQ\tOFFSET\tCDP_X\tCDP_Y\tINLINE\tXLINE\tNSAMP\tDT")
				for _, i := range headers {
					h, err := r.ReadHeader(i)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
						i, h.TraceSeq, h.Offset, h.CDPX, h.CDPY,
						h.Inline, h.Xline, h.NSamples, h.Dt)
				}
				w.Flush()
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&headers, "headers", nil, "trace indices whose headers to print")
	cmd.Flags().BoolVar(&showText, "text", false, "print the textual header")
	return cmd
}

func newSegyExtractCmd() *cobra.Command {
	var (
		traces  string
		inlines string
		xlines  string
		timeWin string
	)
	cmd := &cobra.Command{
		Use:   "extract IN OUT",
		Short: "extract a subset of traces into a new file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := segy.Open(args[0])
			if err != nil {
				return err
			}
			defer r.Close()

			var opts segy.ExtractOptions
			parse := func(s string) (*segy.Range, error) {
				if s == "" {
					return nil, nil
				}
				rg, err := segy.ParseRange(s)
				if err != nil {
					return nil, err
				}
				return &rg, nil
			}
			if opts.Traces, err = parse(traces); err != nil {
				return err
			}
			if opts.Inlines, err = parse(inlines); err != nil {
				return err
			}
			if opts.Xlines, err = parse(xlines); err != nil {
				return err
			}
			if opts.Time, err = parse(timeWin); err != nil {
				return err
			}
			if opts.Traces == nil && opts.Inlines == nil && opts.Xlines == nil && opts.Time == nil {
				return fmt.Errorf("nothing selected: use --traces, --inlines/--xlines or --time")
			}

			n, err := segy.Extract(r, args[1], opts)
			if err != nil {
				return err
			}
			fmt.Printf("extracted %d of %d traces -> %s\n", n, r.TraceCount, args[1])
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&traces, "traces", "", "trace index range a:b")
	f.StringVar(&inlines, "inlines", "", "inline range a:b")
	f.StringVar(&xlines, "xlines", "", "crossline range a:b")
	f.StringVar(&timeWin, "time", "", "time window in ms a:b")
	return cmd
}
