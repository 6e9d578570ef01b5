package las

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Write emits a canonical column-aligned unwrapped LAS 2.0 file. NaN data
// values are restored to the file's NULL sentinel.
func Write(w io.Writer, f *File) error {
	bw := bufio.NewWriter(w)

	writeSection := func(marker, title string, s *Section) {
		fmt.Fprintf(bw, "~%s %s\n", marker, title)
		for _, it := range s.Items {
			fmt.Fprintf(bw, "%-8s.%-8s %-20s : %s\n", it.Mnem, it.Unit, it.Value, it.Descr)
		}
	}

	if len(f.Version.Items) == 0 {
		f.Version.Set("VERS", "", "2.0", "CWLS log ASCII standard")
		f.Version.Set("WRAP", "", "NO", "one line per depth step")
	}
	writeSection("Version", "Information", &f.Version)
	writeSection("Well", "Information", &f.Well)

	fmt.Fprintln(bw, "~Curve Information")
	for _, c := range f.Curves {
		fmt.Fprintf(bw, "%-8s.%-8s %-20s : %s\n", c.Mnem, c.Unit, "", c.Descr)
	}

	if len(f.Params.Items) > 0 {
		writeSection("Parameter", "Information", &f.Params)
	}
	if len(f.Other) > 0 {
		fmt.Fprintln(bw, "~Other")
		for _, line := range f.Other {
			fmt.Fprintln(bw, line)
		}
	}

	fmt.Fprintln(bw, "~ASCII")
	null := f.Null()
	rows := f.NSamples()
	for r := 0; r < rows; r++ {
		for c := range f.Curves {
			v := f.Curves[c].Data[r]
			if math.IsNaN(v) {
				v = null
			}
			if c > 0 {
				bw.WriteByte(' ')
			}
			fmt.Fprintf(bw, "%10.4f", v)
		}
		bw.WriteByte('\n')
	}

	return bw.Flush()
}

// ToCSV writes the file's data as CSV: depth column first, then either the
// selected curves or all remaining curves. NaN cells are written empty
// unless keepNull, which restores the NULL sentinel.
func ToCSV(w io.Writer, f *File, curves []string, keepNull bool) error {
	depthIdx, _ := f.DepthCurve()

	selected := []int{depthIdx}
	if len(curves) > 0 {
		for _, name := range curves {
			for i := range f.Curves {
				if f.Curves[i].Mnem == name && i != depthIdx {
					selected = append(selected, i)
				}
			}
		}
	} else {
		for i := range f.Curves {
			if i != depthIdx {
				selected = append(selected, i)
			}
		}
	}

	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := make([]string, len(selected))
	for i, idx := range selected {
		header[i] = f.Curves[idx].Mnem
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	null := f.Null()
	rows := f.NSamples()
	record := make([]string, len(selected))
	for r := 0; r < rows; r++ {
		for i, idx := range selected {
			v := f.Curves[idx].Data[r]
			switch {
			case math.IsNaN(v) && keepNull:
				record[i] = strconv.FormatFloat(null, 'f', -1, 64)
			case math.IsNaN(v):
				record[i] = ""
			default:
				record[i] = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
