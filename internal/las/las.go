// Package las reads and writes LAS 2.0 well-log files and provides
// validation, merging, QC and project-level statistics over them.
package las

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const DefaultNull = -999.25

var (
	// ErrUnsupported indicates a LAS version or mode this reader does not handle.
	ErrUnsupported = errors.New("las: unsupported file (only unwrapped LAS 2.0)")

	// ErrNoData indicates a file without an ~A section or with no data rows.
	ErrNoData = errors.New("las: no data section")

	// ErrNoCurves indicates a file without curve definitions.
	ErrNoCurves = errors.New("las: no curves defined")
)

// HeaderItem is one "MNEM.UNIT  VALUE : DESCR" line of a header section.
type HeaderItem struct {
	Mnem  string
	Unit  string
	Value string
	Descr string
}

// Section is an ordered header section (~V, ~W, ~P or ~O).
type Section struct {
	Items []HeaderItem
}

// Get returns the item with the given mnemonic, or nil.
func (s *Section) Get(mnem string) *HeaderItem {
	for i := range s.Items {
		if s.Items[i].Mnem == mnem {
			return &s.Items[i]
		}
	}
	return nil
}

// Float returns the item's value parsed as float64, or the fallback.
func (s *Section) Float(mnem string, fallback float64) float64 {
	item := s.Get(mnem)
	if item == nil {
		return fallback
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(item.Value), 64)
	if err != nil {
		return fallback
	}
	return v
}

// Set replaces or appends an item.
func (s *Section) Set(mnem, unit, value, descr string) {
	if item := s.Get(mnem); item != nil {
		item.Unit, item.Value, item.Descr = unit, value, descr
		return
	}
	s.Items = append(s.Items, HeaderItem{mnem, unit, value, descr})
}

// Curve is one log curve with its samples. Null values are held as NaN.
type Curve struct {
	Mnem  string
	Unit  string
	Descr string
	Data  []float64
}

// File is a parsed LAS 2.0 file.
type File struct {
	Version Section
	Well    Section
	Params  Section
	Other   []string
	Curves  []Curve
}

// Null returns the file's NULL sentinel, defaulting to -999.25.
func (f *File) Null() float64 { return f.Well.Float("NULL", DefaultNull) }

// Curve returns the curve with the given mnemonic, or nil.
func (f *File) Curve(mnem string) *Curve {
	for i := range f.Curves {
		if f.Curves[i].Mnem == mnem {
			return &f.Curves[i]
		}
	}
	return nil
}

// DepthCurve returns the index of the standard depth curve
// (DEPT/DEPTH/MD/TVD), or 0 with found=false when none matches.
func (f *File) DepthCurve() (idx int, found bool) {
	for _, name := range []string{"DEPT", "DEPTH", "MD", "TVD"} {
		for i := range f.Curves {
			if f.Curves[i].Mnem == name {
				return i, true
			}
		}
	}
	return 0, false
}

// NSamples returns the number of data rows.
func (f *File) NSamples() int {
	if len(f.Curves) == 0 {
		return 0
	}
	return len(f.Curves[0].Data)
}

// Parse reads an unwrapped LAS 2.0 file. Null sentinel values are mapped
// to NaN on load.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	section := byte(0)
	lineNo := 0
	var dataVals []float64

	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		if strings.HasPrefix(trimmed, "~") {
			section = upperByte(trimmed[1])
			continue
		}

		switch section {
		case 'V':
			item, err := parseHeaderLine(trimmed)
			if err != nil {
				return nil, fmt.Errorf("las: line %d: %w", lineNo, err)
			}
			f.Version.Items = append(f.Version.Items, item)
		case 'W':
			item, err := parseHeaderLine(trimmed)
			if err != nil {
				return nil, fmt.Errorf("las: line %d: %w", lineNo, err)
			}
			f.Well.Items = append(f.Well.Items, item)
		case 'C':
			item, err := parseHeaderLine(trimmed)
			if err != nil {
				return nil, fmt.Errorf("las: line %d: %w", lineNo, err)
			}
			f.Curves = append(f.Curves, Curve{Mnem: item.Mnem, Unit: item.Unit, Descr: item.Descr})
		case 'P':
			item, err := parseHeaderLine(trimmed)
			if err != nil {
				return nil, fmt.Errorf("las: line %d: %w", lineNo, err)
			}
			f.Params.Items = append(f.Params.Items, item)
		case 'O':
			f.Other = append(f.Other, trimmed)
		case 'A':
			for _, tok := range strings.Fields(trimmed) {
				v, err := strconv.ParseFloat(tok, 64)
				if err != nil {
					return nil, fmt.Errorf("las: line %d: bad data value %q", lineNo, tok)
				}
				dataVals = append(dataVals, v)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if vers := f.Version.Get("VERS"); vers != nil {
		v, err := strconv.ParseFloat(strings.TrimSpace(vers.Value), 64)
		if err == nil && v >= 3.0 {
			return nil, ErrUnsupported
		}
	}
	if wrap := f.Version.Get("WRAP"); wrap != nil {
		if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(wrap.Value)), "Y") {
			return nil, ErrUnsupported
		}
	}

	if len(f.Curves) == 0 {
		return nil, ErrNoCurves
	}
	if len(dataVals) == 0 {
		return nil, ErrNoData
	}
	nc := len(f.Curves)
	if len(dataVals)%nc != 0 {
		return nil, fmt.Errorf("las: %d data values not divisible by %d curves", len(dataVals), nc)
	}

	null := f.Null()
	rows := len(dataVals) / nc
	for c := range f.Curves {
		f.Curves[c].Data = make([]float64, rows)
		for r := 0; r < rows; r++ {
			v := dataVals[r*nc+c]
			if v == null {
				v = math.NaN()
			}
			f.Curves[c].Data[r] = v
		}
	}

	return f, nil
}

// parseHeaderLine splits "MNEM.UNIT  VALUE : DESCR".
func parseHeaderLine(line string) (HeaderItem, error) {
	dot := strings.Index(line, ".")
	if dot < 0 {
		return HeaderItem{}, fmt.Errorf("header line missing '.': %q", line)
	}
	mnem := strings.TrimSpace(line[:dot])
	rest := line[dot+1:]

	// Unit runs from the dot to the first whitespace.
	unitEnd := strings.IndexAny(rest, " \t")
	var unit, tail string
	if unitEnd < 0 {
		unit, tail = rest, ""
	} else {
		unit, tail = rest[:unitEnd], rest[unitEnd:]
	}

	// Value and description split on the last colon.
	value, descr := tail, ""
	if colon := strings.LastIndex(tail, ":"); colon >= 0 {
		value, descr = tail[:colon], strings.TrimSpace(tail[colon+1:])
	}

	return HeaderItem{
		Mnem:  mnem,
		Unit:  strings.TrimSpace(unit),
		Value: strings.TrimSpace(value),
		Descr: descr,
	}, nil
}

func upperByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
