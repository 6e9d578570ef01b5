// Package hydro fits transfer-function models of groundwater head:
// head(t) = d + recharge convolved with a gamma response, with an
// optional pumping stress carrying its own exponential response.
package hydro

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
	"time"

	"github.com/san-kum/geoforge/internal/logger"
)

var log = logger.ForComponent("hydro")

// ErrGap indicates a hole in a stress series too wide to forward-fill.
var ErrGap = errors.New("hydro: stress gap exceeds the fill limit")

// maxFillDays is the widest stress gap closed by forward-filling.
const maxFillDays = 2

// Series is a dated scalar time series. After Regularize the dates are
// daily and contiguous.
type Series struct {
	Name     string
	Dates    []time.Time
	Values   []float64
	Warnings []string
}

// LoadSeries reads a date,value CSV file.
func LoadSeries(path, name string) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadSeries(f, name)
}

var dateLayouts = []string{"2006-01-02", "2006-01-02 15:04:05", "2006-01-02T15:04:05"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("hydro: bad date %q", s)
}

// ReadSeries parses date,value rows. A header row is skipped when its
// first field is not a date. Rows arriving out of order are sorted and
// duplicate dates keep their first value, both with a warning.
func ReadSeries(r io.Reader, name string) (*Series, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	s := &Series{Name: name}
	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("hydro: read %s: %w", name, err)
		}
		if len(rec) < 2 {
			continue
		}
		date, err := parseDate(rec[0])
		if err != nil {
			if first {
				first = false
				continue // header
			}
			s.Warnings = append(s.Warnings, fmt.Sprintf("%s: skipped row %v", name, rec))
			continue
		}
		first = false
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			s.Warnings = append(s.Warnings, fmt.Sprintf("%s: bad value on %s", name, rec[0]))
			continue
		}
		s.Dates = append(s.Dates, date)
		s.Values = append(s.Values, v)
	}
	if len(s.Dates) == 0 {
		return nil, fmt.Errorf("hydro: %s is empty", name)
	}

	if !sort.SliceIsSorted(s.Dates, func(i, j int) bool { return s.Dates[i].Before(s.Dates[j]) }) {
		idx := make([]int, len(s.Dates))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return s.Dates[idx[a]].Before(s.Dates[idx[b]]) })
		dates := make([]time.Time, len(idx))
		values := make([]float64, len(idx))
		for i, j := range idx {
			dates[i], values[i] = s.Dates[j], s.Values[j]
		}
		s.Dates, s.Values = dates, values
		s.Warnings = append(s.Warnings, name+": dates were out of order, sorted")
	}

	dates := s.Dates[:1]
	values := s.Values[:1]
	dropped := 0
	for i := 1; i < len(s.Dates); i++ {
		if s.Dates[i].Equal(dates[len(dates)-1]) {
			dropped++
			continue
		}
		dates = append(dates, s.Dates[i])
		values = append(values, s.Values[i])
	}
	if dropped > 0 {
		s.Dates, s.Values = dates, values
		s.Warnings = append(s.Warnings, fmt.Sprintf("%s: dropped %d duplicate dates", name, dropped))
	}
	return s, nil
}

// Regularize expands the series onto a contiguous daily axis,
// forward-filling gaps of at most maxGap days.
func (s *Series) Regularize(maxGap int) error {
	if len(s.Dates) == 0 {
		return fmt.Errorf("hydro: %s is empty", s.Name)
	}
	var dates []time.Time
	var values []float64
	filled := 0
	for i := range s.Dates {
		if i > 0 {
			gap := int(s.Dates[i].Sub(dates[len(dates)-1]).Hours()/24) - 1
			if gap > maxGap {
				return fmt.Errorf("%w: %s missing %d days before %s",
					ErrGap, s.Name, gap, s.Dates[i].Format("2006-01-02"))
			}
			for g := 0; g < gap; g++ {
				dates = append(dates, dates[len(dates)-1].AddDate(0, 0, 1))
				values = append(values, values[len(values)-1])
				filled++
			}
		}
		dates = append(dates, s.Dates[i])
		values = append(values, s.Values[i])
	}
	if filled > 0 {
		s.Warnings = append(s.Warnings, fmt.Sprintf("%s: forward-filled %d missing days", s.Name, filled))
		log.Warn("forward-filled stress gaps", "series", s.Name, "days", filled)
	}
	s.Dates, s.Values = dates, values
	return nil
}

// Slice restricts the series to [start, end] inclusive. The series
// must be daily and contiguous.
func (s *Series) Slice(start, end time.Time) {
	i := int(start.Sub(s.Dates[0]).Hours() / 24)
	j := int(end.Sub(s.Dates[0]).Hours()/24) + 1
	s.Dates = s.Dates[i:j]
	s.Values = s.Values[i:j]
}
