// Package geomodel validates structural-modeling input tables:
// surface-point and orientation CSVs plus their cross-consistency.
package geomodel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/san-kum/geoforge/internal/logger"
)

var log = logger.ForComponent("geomodel")

// ErrExtent indicates a malformed --extent argument.
var ErrExtent = errors.New("geomodel: extent needs 6 comma-separated numbers")

// table is a loosely typed CSV: every cell kept as text, numeric
// columns parsed on demand.
type table struct {
	columns []string
	cells   map[string][]string
	n       int
}

func readTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	t := &table{cells: map[string][]string{}}
	for _, h := range header {
		t.columns = append(t.columns, strings.TrimSpace(h))
	}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		for i, col := range t.columns {
			v := ""
			if i < len(rec) {
				v = strings.TrimSpace(rec[i])
			}
			t.cells[col] = append(t.cells[col], v)
		}
		t.n++
	}
	return t, nil
}

func (t *table) has(col string) bool {
	_, ok := t.cells[col]
	return ok
}

// numeric parses one column; NaN marks empty or unparseable cells.
func (t *table) numeric(col string) (vals []float64, nulls, bad int) {
	vals = make([]float64, t.n)
	for i, s := range t.cells[col] {
		if s == "" {
			vals[i] = math.NaN()
			nulls++
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			vals[i] = math.NaN()
			bad++
			continue
		}
		vals[i] = v
	}
	return vals, nulls, bad
}

// Report is the validation outcome for one file.
type Report struct {
	Name     string
	Valid    bool
	Errors   []string
	Warnings []string
	Info     []string // "key: value" lines in insertion order

	surfaces map[string]int
	xRange   [2]float64
	yRange   [2]float64
	zRange   [2]float64
}

func (r *Report) errorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Valid = false
}

func (r *Report) warnf(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

func (r *Report) infof(format string, args ...any) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

func (r *Report) surfaceNames() []string {
	names := make([]string, 0, len(r.surfaces))
	for s := range r.surfaces {
		names = append(names, s)
	}
	sort.Strings(names)
	return names
}

// checkXYZ validates the coordinate columns shared by both tables.
func checkXYZ(t *table, r *Report) (x, y, z []float64) {
	coords := map[string][]float64{}
	for _, col := range []string{"X", "Y", "Z"} {
		vals, nulls, bad := t.numeric(col)
		if nulls > 0 {
			r.errorf("column %s has %d null values", col, nulls)
		}
		if bad > 0 {
			r.errorf("column %s is not numeric (%d bad values)", col, bad)
		}
		coords[col] = vals
	}
	return coords["X"], coords["Y"], coords["Z"]
}

func valueRange(vals []float64) [2]float64 {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return [2]float64{lo, hi}
}

// ValidatePoints checks a surface-points table: X,Y,Z,surface columns,
// nulls, numeric types, per-surface counts and duplicate points.
func ValidatePoints(r io.Reader, name string) *Report {
	rep := &Report{Name: name, Valid: true, surfaces: map[string]int{}}
	t, err := readTable(r)
	if err != nil {
		rep.errorf("failed to read file: %v", err)
		return rep
	}
	var missing []string
	for _, col := range []string{"X", "Y", "Z", "surface"} {
		if !t.has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		rep.errorf("missing required columns: %s", strings.Join(missing, ", "))
		return rep
	}

	for i := 0; i < t.n; i++ {
		rep.surfaces[t.cells["surface"][i]]++
	}
	rep.infof("n_points: %d", t.n)
	rep.infof("n_surfaces: %d", len(rep.surfaces))
	rep.infof("surfaces: %s", strings.Join(rep.surfaceNames(), ", "))

	x, y, z := checkXYZ(t, rep)

	for _, s := range rep.surfaceNames() {
		if rep.surfaces[s] < 2 {
			rep.warnf("surface %q has only %d point(s) (minimum 2 required)", s, rep.surfaces[s])
		}
	}

	// Duplicates count every member of a duplicated group.
	seen := map[string]int{}
	for i := 0; i < t.n; i++ {
		key := fmt.Sprintf("%s|%s|%s|%s",
			t.cells["X"][i], t.cells["Y"][i], t.cells["Z"][i], t.cells["surface"][i])
		seen[key]++
	}
	dups := 0
	for _, c := range seen {
		if c > 1 {
			dups += c
		}
	}
	if dups > 0 {
		rep.warnf("found %d duplicate points", dups)
	}

	rep.xRange, rep.yRange, rep.zRange = valueRange(x), valueRange(y), valueRange(z)
	rep.infof("x_range: [%g, %g]", rep.xRange[0], rep.xRange[1])
	rep.infof("y_range: [%g, %g]", rep.yRange[0], rep.yRange[1])
	rep.infof("z_range: [%g, %g]", rep.zRange[0], rep.zRange[1])
	return rep
}

// ValidateOrientations checks an orientations table: X,Y,Z,surface plus
// either dip/azimuth or a Gx,Gy,Gz pole vector.
func ValidateOrientations(r io.Reader, name string) *Report {
	rep := &Report{Name: name, Valid: true, surfaces: map[string]int{}}
	t, err := readTable(r)
	if err != nil {
		rep.errorf("failed to read file: %v", err)
		return rep
	}
	var missing []string
	for _, col := range []string{"X", "Y", "Z", "surface"} {
		if !t.has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		rep.errorf("missing required columns: %s", strings.Join(missing, ", "))
		return rep
	}

	hasDipAzimuth := t.has("dip") && t.has("azimuth")
	hasPole := t.has("Gx") && t.has("Gy") && t.has("Gz")
	if !hasDipAzimuth && !hasPole {
		rep.errorf("must have either (dip, azimuth) or (Gx, Gy, Gz) columns")
		return rep
	}

	for i := 0; i < t.n; i++ {
		rep.surfaces[t.cells["surface"][i]]++
	}
	format := "dip/azimuth"
	if !hasDipAzimuth {
		format = "pole_vector"
	}
	rep.infof("n_orientations: %d", t.n)
	rep.infof("n_surfaces: %d", len(rep.surfaces))
	rep.infof("surfaces: %s", strings.Join(rep.surfaceNames(), ", "))
	rep.infof("format: %s", format)

	checkXYZ(t, rep)

	if hasDipAzimuth {
		dip, _, _ := t.numeric("dip")
		azimuth, _, _ := t.numeric("azimuth")
		for _, v := range dip {
			if v < 0 || v > 90 {
				rep.warnf("dip values should be between 0 and 90 degrees")
				break
			}
		}
		for _, v := range azimuth {
			if v < 0 || v >= 360 {
				rep.warnf("azimuth values should be between 0 and 360 degrees")
				break
			}
		}
	}
	if hasPole {
		gx, _, _ := t.numeric("Gx")
		gy, _, _ := t.numeric("Gy")
		gz, _, _ := t.numeric("Gz")
		notUnit := 0
		for i := range gx {
			mag := math.Sqrt(gx[i]*gx[i] + gy[i]*gy[i] + gz[i]*gz[i])
			if math.Abs(mag-1) > 0.01 {
				notUnit++
			}
		}
		if notUnit > 0 {
			rep.warnf("%d pole vectors are not unit vectors", notUnit)
		}
	}
	return rep
}

// ValidatePointsFile and ValidateOrientationsFile wrap the readers.
func ValidatePointsFile(path string) *Report {
	f, err := os.Open(path)
	if err != nil {
		rep := &Report{Name: path, Valid: true}
		rep.errorf("failed to read file: %v", err)
		return rep
	}
	defer f.Close()
	return ValidatePoints(f, path)
}

func ValidateOrientationsFile(path string) *Report {
	f, err := os.Open(path)
	if err != nil {
		rep := &Report{Name: path, Valid: true}
		rep.errorf("failed to read file: %v", err)
		return rep
	}
	defer f.Close()
	return ValidateOrientations(f, path)
}

// ParseExtent parses "xmin,xmax,ymin,ymax,zmin,zmax".
func ParseExtent(s string) ([6]float64, error) {
	var ext [6]float64
	parts := strings.Split(s, ",")
	if len(parts) != 6 {
		return ext, ErrExtent
	}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return ext, fmt.Errorf("%w: %q", ErrExtent, p)
		}
		ext[i] = v
	}
	return ext, nil
}

// CheckConsistency compares the two valid reports: every surface with
// points should have orientations and vice versa, and the point cloud
// should sit inside the model extent when one is given.
func CheckConsistency(points, ori *Report, extent *[6]float64) []string {
	var warnings []string

	var missingOri, extraOri []string
	for _, s := range points.surfaceNames() {
		if ori.surfaces[s] == 0 {
			missingOri = append(missingOri, s)
		}
	}
	for _, s := range ori.surfaceNames() {
		if points.surfaces[s] == 0 {
			extraOri = append(extraOri, s)
		}
	}
	if len(missingOri) > 0 {
		warnings = append(warnings, "surfaces without orientations: "+strings.Join(missingOri, ", "))
	}
	if len(extraOri) > 0 {
		warnings = append(warnings, "orientations for unknown surfaces: "+strings.Join(extraOri, ", "))
	}

	if extent != nil {
		if points.xRange[0] < extent[0] || points.xRange[1] > extent[1] {
			warnings = append(warnings, "X coordinates outside specified extent")
		}
		if points.yRange[0] < extent[2] || points.yRange[1] > extent[3] {
			warnings = append(warnings, "Y coordinates outside specified extent")
		}
		if points.zRange[0] < extent[4] || points.zRange[1] > extent[5] {
			warnings = append(warnings, "Z coordinates outside specified extent")
		}
	}
	return warnings
}

// WriteReport prints one file's findings.
func (r *Report) WriteReport(w io.Writer) {
	status := "VALID"
	if !r.Valid {
		status = "INVALID"
	}
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\n%s: %s\n%s\n", rule, r.Name, status, rule)
	if len(r.Info) > 0 {
		fmt.Fprintf(w, "\nInfo:\n")
		for _, line := range r.Info {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings:\n")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  - %s\n", warn)
		}
	}
	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		fmt.Fprintln(w, "\nNo issues found.")
	}
}

// Validate runs the full check over both files and prints the reports.
// It returns true when both files are valid.
func Validate(w io.Writer, pointsPath, oriPath string, extent *[6]float64) bool {
	points := ValidatePointsFile(pointsPath)
	ori := ValidateOrientationsFile(oriPath)
	points.WriteReport(w)
	ori.WriteReport(w)

	if points.Valid && ori.Valid {
		if warnings := CheckConsistency(points, ori, extent); len(warnings) > 0 {
			rule := strings.Repeat("=", 60)
			fmt.Fprintf(w, "\n%s\nConsistency Check\n%s\n\nWarnings:\n", rule, rule)
			for _, warn := range warnings {
				fmt.Fprintf(w, "  - %s\n", warn)
			}
		}
	}

	allValid := points.Valid && ori.Valid
	verdict := "VALID"
	if !allValid {
		verdict = "INVALID"
	}
	fmt.Fprintf(w, "\n%s\nOverall: %s\n", strings.Repeat("=", 60), verdict)
	log.Info("validation finished", "points", pointsPath, "orientations", oriPath, "valid", allValid)
	return allValid
}
