// Package striplog builds and renders lithology interval logs from CSV
// or free-text descriptions.
package striplog

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrEmpty indicates a log with no usable intervals.
var ErrEmpty = errors.New("striplog: no intervals")

// Lithology is one lexicon entry.
type Lithology struct {
	Name     string
	Synonyms []string
	Colour   string
	Hatch    string
}

// DefaultLexicon covers the common clastic and carbonate lithologies.
var DefaultLexicon = []Lithology{
	{"sandstone", []string{"sand", "ss", "sst", "sandst", "arenite"}, "#FFFF00", "."},
	{"shale", []string{"sh", "clay", "mudstone", "claystone", "argillite"}, "#808080", "-"},
	{"limestone", []string{"ls", "lime", "calcaire", "carbonate"}, "#00BFFF", "+"},
	{"dolomite", []string{"dol", "dolostone"}, "#00FFFF", "x"},
	{"siltstone", []string{"silt", "slst", "sltst"}, "#D2B48C", "."},
	{"conglomerate", []string{"cgl", "congl", "gravel"}, "#FFA500", "o"},
	{"coal", []string{"c", "lignite"}, "#000000", "#"},
}

const unknownColour = "#CCCCCC"

// Resolve maps a free-form description to a canonical lexicon name.
// Matching is case-insensitive, first on exact name/synonym, then on a
// word of the description.
func Resolve(desc string) (name string, known bool) {
	folded := strings.ToLower(strings.TrimSpace(desc))
	for _, l := range DefaultLexicon {
		if folded == l.Name {
			return l.Name, true
		}
		for _, syn := range l.Synonyms {
			if folded == syn {
				return l.Name, true
			}
		}
	}
	for _, word := range strings.Fields(folded) {
		for _, l := range DefaultLexicon {
			if word == l.Name {
				return l.Name, true
			}
			for _, syn := range l.Synonyms {
				if word == syn {
					return l.Name, true
				}
			}
		}
	}
	return folded, false
}

// ColourOf returns the lexicon colour, or a neutral grey for unknown
// lithologies.
func ColourOf(name string) string {
	for _, l := range DefaultLexicon {
		if l.Name == name {
			return l.Colour
		}
	}
	return unknownColour
}

func hatchOf(name string) string {
	for _, l := range DefaultLexicon {
		if l.Name == name {
			return l.Hatch
		}
	}
	return "?"
}

// Interval is one depth slice of the column.
type Interval struct {
	Top       float64           `json:"top"`
	Base      float64           `json:"base"`
	Lithology string            `json:"lithology"`
	Props     map[string]string `json:"props,omitempty"`
}

// Thickness of the interval.
func (iv Interval) Thickness() float64 { return iv.Base - iv.Top }

// Log is a depth-sorted, non-overlapping interval column.
type Log struct {
	Intervals []Interval `json:"intervals"`
}

// New normalizes raw intervals into a log: sorts by top, swaps inverted
// tops, drops zero-thickness intervals and clips overlaps (the later
// interval loses). Every repair is reported as a warning.
func New(raw []Interval) (*Log, []string, error) {
	var warnings []string
	var ivs []Interval
	for _, iv := range raw {
		if iv.Top > iv.Base {
			warnings = append(warnings, fmt.Sprintf("interval %g-%g inverted, swapped", iv.Top, iv.Base))
			iv.Top, iv.Base = iv.Base, iv.Top
		}
		if iv.Thickness() <= 0 {
			warnings = append(warnings, fmt.Sprintf("zero-thickness interval at %g dropped", iv.Top))
			continue
		}
		ivs = append(ivs, iv)
	}
	sort.SliceStable(ivs, func(i, j int) bool { return ivs[i].Top < ivs[j].Top })

	var kept []Interval
	for _, iv := range ivs {
		if n := len(kept); n > 0 && iv.Top < kept[n-1].Base {
			warnings = append(warnings, fmt.Sprintf("interval %g-%g overlaps previous, clipped to %g",
				iv.Top, iv.Base, kept[n-1].Base))
			iv.Top = kept[n-1].Base
			if iv.Thickness() <= 0 {
				continue
			}
		}
		kept = append(kept, iv)
	}
	if len(kept) == 0 {
		return nil, warnings, ErrEmpty
	}
	return &Log{Intervals: kept}, warnings, nil
}

// Start is the shallowest top.
func (l *Log) Start() float64 { return l.Intervals[0].Top }

// Stop is the deepest base.
func (l *Log) Stop() float64 { return l.Intervals[len(l.Intervals)-1].Base }

// Validate reports gaps between consecutive intervals.
func (l *Log) Validate() []string {
	var issues []string
	for i := 1; i < len(l.Intervals); i++ {
		prev, cur := l.Intervals[i-1], l.Intervals[i]
		if cur.Top > prev.Base {
			issues = append(issues, fmt.Sprintf("gap %g-%g between %s and %s",
				prev.Base, cur.Top, prev.Lithology, cur.Lithology))
		}
	}
	return issues
}

// Unique lithologies in depth order of first appearance.
func (l *Log) Unique() []string {
	seen := map[string]bool{}
	var names []string
	for _, iv := range l.Intervals {
		if !seen[iv.Lithology] {
			seen[iv.Lithology] = true
			names = append(names, iv.Lithology)
		}
	}
	return names
}

// NetToGross is the thickness fraction of one lithology over the
// logged range.
func (l *Log) NetToGross(lith string) float64 {
	total := l.Stop() - l.Start()
	if total <= 0 {
		return 0
	}
	var net float64
	for _, iv := range l.Intervals {
		if iv.Lithology == lith {
			net += iv.Thickness()
		}
	}
	return net / total
}

// ThicknessRow is one line of the summary table.
type ThicknessRow struct {
	Lithology string
	Thickness float64
	Fraction  float64
}

// Summary returns per-lithology thicknesses, thickest first.
func (l *Log) Summary() []ThicknessRow {
	rows := make([]ThicknessRow, 0, len(l.Unique()))
	for _, lith := range l.Unique() {
		ntg := l.NetToGross(lith)
		rows = append(rows, ThicknessRow{
			Lithology: lith,
			Thickness: ntg * (l.Stop() - l.Start()),
			Fraction:  ntg,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Thickness > rows[j].Thickness })
	return rows
}

// Crop returns the part of the log inside [top, base], splitting
// boundary intervals.
func (l *Log) Crop(top, base float64) (*Log, error) {
	var ivs []Interval
	for _, iv := range l.Intervals {
		t := math.Max(iv.Top, top)
		b := math.Min(iv.Base, base)
		if b <= t {
			continue
		}
		iv.Top, iv.Base = t, b
		ivs = append(ivs, iv)
	}
	if len(ivs) == 0 {
		return nil, ErrEmpty
	}
	return &Log{Intervals: ivs}, nil
}

// FromCSV parses top,base,lithology rows; extra columns become
// interval properties.
func FromCSV(r io.Reader) (*Log, []string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("striplog: read header: %w", err)
	}
	col := map[string]int{}
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, want := range []string{"top", "base", "lithology"} {
		if _, ok := col[want]; !ok {
			return nil, nil, fmt.Errorf("striplog: missing column %q", want)
		}
	}

	var raw []Interval
	var warnings []string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		top, errT := strconv.ParseFloat(rec[col["top"]], 64)
		base, errB := strconv.ParseFloat(rec[col["base"]], 64)
		if errT != nil || errB != nil {
			warnings = append(warnings, fmt.Sprintf("unparseable depths in row %v", rec))
			continue
		}
		name, known := Resolve(rec[col["lithology"]])
		if !known {
			warnings = append(warnings, fmt.Sprintf("unknown lithology %q kept with default colour", name))
		}
		iv := Interval{Top: top, Base: base, Lithology: name}
		for h, i := range col {
			if h == "top" || h == "base" || h == "lithology" || i >= len(rec) {
				continue
			}
			if iv.Props == nil {
				iv.Props = map[string]string{}
			}
			iv.Props[h] = rec[i]
		}
		raw = append(raw, iv)
	}
	log, more, err := New(raw)
	return log, append(warnings, more...), err
}

var textInterval = regexp.MustCompile(`([0-9.]+)\s*-\s*([0-9.]+)\s*(?:m\s*)?:\s*([^,;\n]+)`)

// FromText parses descriptions like "0-10: sandstone, 10-20: shale".
func FromText(text string) (*Log, []string, error) {
	matches := textInterval.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil, nil, fmt.Errorf("striplog: no intervals found in description")
	}
	var raw []Interval
	var warnings []string
	for _, m := range matches {
		top, _ := strconv.ParseFloat(m[1], 64)
		base, _ := strconv.ParseFloat(m[2], 64)
		name, known := Resolve(m[3])
		if !known {
			warnings = append(warnings, fmt.Sprintf("unknown lithology %q kept with default colour", name))
		}
		raw = append(raw, Interval{Top: top, Base: base, Lithology: name})
	}
	log, more, err := New(raw)
	return log, append(warnings, more...), err
}

// LoadCSV is FromCSV over a file.
func LoadCSV(path string) (*Log, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return FromCSV(f)
}

// WriteJSON emits the log as indented JSON.
func (l *Log) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

// FromJSON reads a log written by WriteJSON.
func FromJSON(r io.Reader) (*Log, error) {
	var l Log
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return nil, fmt.Errorf("striplog: decode json: %w", err)
	}
	if len(l.Intervals) == 0 {
		return nil, ErrEmpty
	}
	return &l, nil
}
