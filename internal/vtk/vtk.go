// Package vtk writes and inspects legacy ASCII VTK datasets, enough
// for structured-points volumes and triangulated surfaces.
package vtk

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

// ErrFormat indicates the file is not a legacy ASCII VTK dataset.
var ErrFormat = errors.New("vtk: not a legacy ascii vtk file")

const magic = "# vtk DataFile Version 3.0"

// Scalars is one named point-data array.
type Scalars struct {
	Name string
	Data []float64
}

// WriteStructuredPoints writes a regular grid with point-data scalars.
// Every scalar array must hold nx*ny*nz values.
func WriteStructuredPoints(w io.Writer, title string, nx, ny, nz int, origin, spacing [3]float64, scalars []Scalars) error {
	n := nx * ny * nz
	for _, s := range scalars {
		if len(s.Data) != n {
			return fmt.Errorf("vtk: array %q has %d values for %d points", s.Name, len(s.Data), n)
		}
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n%s\nASCII\nDATASET STRUCTURED_POINTS\n", magic, sanitize(title))
	fmt.Fprintf(bw, "DIMENSIONS %d %d %d\n", nx, ny, nz)
	fmt.Fprintf(bw, "ORIGIN %g %g %g\n", origin[0], origin[1], origin[2])
	fmt.Fprintf(bw, "SPACING %g %g %g\n", spacing[0], spacing[1], spacing[2])
	writePointData(bw, n, scalars)
	return bw.Flush()
}

// WritePolyData writes a polygonal surface with point-data scalars.
func WritePolyData(w io.Writer, title string, points [][3]float64, polys [][]int, scalars []Scalars) error {
	for _, s := range scalars {
		if len(s.Data) != len(points) {
			return fmt.Errorf("vtk: array %q has %d values for %d points", s.Name, len(s.Data), len(points))
		}
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n%s\nASCII\nDATASET POLYDATA\n", magic, sanitize(title))
	fmt.Fprintf(bw, "POINTS %d float\n", len(points))
	for _, p := range points {
		fmt.Fprintf(bw, "%g %g %g\n", p[0], p[1], p[2])
	}
	size := 0
	for _, poly := range polys {
		size += len(poly) + 1
	}
	fmt.Fprintf(bw, "POLYGONS %d %d\n", len(polys), size)
	for _, poly := range polys {
		fmt.Fprintf(bw, "%d", len(poly))
		for _, i := range poly {
			fmt.Fprintf(bw, " %d", i)
		}
		fmt.Fprintln(bw)
	}
	writePointData(bw, len(points), scalars)
	return bw.Flush()
}

// WriteFile writes with the given writer function.
func WriteFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writePointData(w io.Writer, n int, scalars []Scalars) {
	if len(scalars) == 0 {
		return
	}
	fmt.Fprintf(w, "POINT_DATA %d\n", n)
	for _, s := range scalars {
		fmt.Fprintf(w, "SCALARS %s float 1\nLOOKUP_TABLE default\n", sanitizeName(s.Name))
		for i, v := range s.Data {
			if i > 0 && i%9 == 0 {
				fmt.Fprintln(w)
			} else if i > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprintf(w, "%g", v)
		}
		fmt.Fprintln(w)
	}
}

func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if s == "" {
		s = "geoforge output"
	}
	return s
}

func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return '_'
		}
		return r
	}, s)
}

// ArrayInfo summarizes one data array.
type ArrayInfo struct {
	Name     string
	N        int
	Min, Max float64
}

// Info describes a legacy VTK dataset header.
type Info struct {
	Title   string
	Type    string
	NPoints int
	NCells  int
	Bounds  [6]float64 // xmin xmax ymin ymax zmin zmax
	Arrays  []ArrayInfo
}

// ReadInfo inspects a legacy ASCII VTK file.
func ReadInfo(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseInfo(f)
}

// ParseInfo reads the header, geometry counts, bounds and per-array
// value ranges.
func ParseInfo(r io.Reader) (*Info, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil || !strings.HasPrefix(line, "# vtk DataFile") {
		return nil, ErrFormat
	}
	title, err := br.ReadString('\n')
	if err != nil {
		return nil, ErrFormat
	}
	encoding, err := br.ReadString('\n')
	if err != nil {
		return nil, ErrFormat
	}
	switch strings.ToUpper(strings.TrimSpace(encoding)) {
	case "ASCII":
	case "BINARY":
		return nil, fmt.Errorf("vtk: binary files are not supported")
	default:
		return nil, ErrFormat
	}

	info := &Info{Title: strings.TrimSpace(title)}
	sc := bufio.NewScanner(br)
	sc.Split(bufio.ScanWords)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)

	word := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		return sc.Text(), true
	}
	number := func() (float64, bool) {
		s, ok := word()
		if !ok {
			return 0, false
		}
		v, err := strconv.ParseFloat(s, 64)
		return v, err == nil
	}
	integer := func() (int, bool) {
		v, ok := number()
		return int(v), ok
	}

	var dims [3]int
	var origin, spacing [3]float64
	attrCount := 0 // points or cells of the active attribute section

	for {
		tok, ok := word()
		if !ok {
			break
		}
		switch strings.ToUpper(tok) {
		case "DATASET":
			info.Type, _ = word()
		case "DIMENSIONS":
			for i := range dims {
				dims[i], _ = integer()
			}
			info.NPoints = dims[0] * dims[1] * dims[2]
			info.NCells = 1
			for _, d := range dims {
				if d > 1 {
					info.NCells *= d - 1
				}
			}
		case "ORIGIN":
			for i := range origin {
				origin[i], _ = number()
			}
		case "SPACING", "ASPECT_RATIO":
			for i := range spacing {
				spacing[i], _ = number()
			}
			for i := 0; i < 3; i++ {
				info.Bounds[2*i] = origin[i]
				info.Bounds[2*i+1] = origin[i] + spacing[i]*float64(dims[i]-1)
			}
		case "POINTS":
			n, _ := integer()
			word() // data type
			info.NPoints = n
			for i := 0; i < 3; i++ {
				info.Bounds[2*i] = math.Inf(1)
				info.Bounds[2*i+1] = math.Inf(-1)
			}
			for p := 0; p < n; p++ {
				for i := 0; i < 3; i++ {
					v, ok := number()
					if !ok {
						return nil, fmt.Errorf("vtk: truncated POINTS section")
					}
					info.Bounds[2*i] = math.Min(info.Bounds[2*i], v)
					info.Bounds[2*i+1] = math.Max(info.Bounds[2*i+1], v)
				}
			}
		case "POLYGONS", "CELLS", "LINES", "VERTICES", "TRIANGLE_STRIPS":
			n, _ := integer()
			size, _ := integer()
			if strings.ToUpper(tok) != "VERTICES" && strings.ToUpper(tok) != "LINES" {
				info.NCells = n
			}
			for i := 0; i < size; i++ {
				if _, ok := integer(); !ok {
					return nil, fmt.Errorf("vtk: truncated %s section", tok)
				}
			}
		case "CELL_TYPES":
			n, _ := integer()
			for i := 0; i < n; i++ {
				integer()
			}
		case "POINT_DATA", "CELL_DATA":
			attrCount, _ = integer()
		case "SCALARS":
			name, _ := word()
			word() // data type
			// Optional component count before LOOKUP_TABLE.
			comps := 1
			next, _ := word()
			if v, err := strconv.Atoi(next); err == nil {
				comps = v
				next, _ = word()
			}
			arr := ArrayInfo{Name: name, N: attrCount, Min: math.Inf(1), Max: math.Inf(-1)}
			start := 0
			if strings.ToUpper(next) == "LOOKUP_TABLE" {
				word()
			} else if v, err := strconv.ParseFloat(next, 64); err == nil {
				// No lookup table, next was already the first value.
				arr.Min, arr.Max = v, v
				start = 1
			}
			for i := start; i < attrCount*comps; i++ {
				v, ok := number()
				if !ok {
					return nil, fmt.Errorf("vtk: truncated SCALARS %s", name)
				}
				arr.Min = math.Min(arr.Min, v)
				arr.Max = math.Max(arr.Max, v)
			}
			info.Arrays = append(info.Arrays, arr)
		}
	}
	if info.Type == "" {
		return nil, ErrFormat
	}
	return info, nil
}

// Describe prints the reader's summary, one line per fact.
func (info *Info) Describe(w io.Writer) {
	fmt.Fprintf(w, "  Type: %s\n", info.Type)
	fmt.Fprintf(w, "  Points: %d\n", info.NPoints)
	fmt.Fprintf(w, "  Cells: %d\n", info.NCells)
	fmt.Fprintf(w, "  Bounds: x [%g, %g]  y [%g, %g]  z [%g, %g]\n",
		info.Bounds[0], info.Bounds[1], info.Bounds[2], info.Bounds[3], info.Bounds[4], info.Bounds[5])
	for _, a := range info.Arrays {
		fmt.Fprintf(w, "  Array %s: %d values in [%g, %g]\n", a.Name, a.N, a.Min, a.Max)
	}
}
