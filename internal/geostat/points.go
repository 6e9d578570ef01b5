// Package geostat implements experimental variograms with model
// fitting, normal-score transforms, simple and ordinary kriging, and
// scattered-data gridders.
package geostat

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// ErrInsufficientData indicates fewer than two usable points.
var ErrInsufficientData = errors.New("geostat: need at least two data points")

// Points holds scattered 2-D samples.
type Points struct {
	X, Y, V []float64
}

func (p Points) Len() int { return len(p.V) }

// Stats returns mean, standard deviation, min and max of the values.
func (p Points) Stats() (mean, std, min, max float64) {
	n := float64(p.Len())
	if n == 0 {
		return 0, 0, 0, 0
	}
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range p.V {
		mean += v
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	mean /= n
	for _, v := range p.V {
		std += (v - mean) * (v - mean)
	}
	std = math.Sqrt(std / n)
	return mean, std, min, max
}

// Bounds returns the coordinate extent.
func (p Points) Bounds() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for i := range p.X {
		xmin = math.Min(xmin, p.X[i])
		xmax = math.Max(xmax, p.X[i])
		ymin = math.Min(ymin, p.Y[i])
		ymax = math.Max(ymax, p.Y[i])
	}
	return
}

// LoadCSV reads named columns from a CSV file, dropping rows where any
// of the three fails to parse.
func LoadCSV(path, xCol, yCol, zCol string) (Points, error) {
	f, err := os.Open(path)
	if err != nil {
		return Points{}, err
	}
	defer f.Close()
	return ReadCSV(f, xCol, yCol, zCol)
}

// ReadCSV is LoadCSV over any reader.
func ReadCSV(r io.Reader, xCol, yCol, zCol string) (Points, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return Points{}, fmt.Errorf("geostat: read header: %w", err)
	}
	ix, iy, iz := -1, -1, -1
	for i, name := range header {
		switch name {
		case xCol:
			ix = i
		case yCol:
			iy = i
		case zCol:
			iz = i
		}
	}
	if ix < 0 || iy < 0 || iz < 0 {
		return Points{}, fmt.Errorf("geostat: columns %q, %q, %q not all found in %v",
			xCol, yCol, zCol, header)
	}

	var p Points
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Points{}, err
		}
		x, errX := strconv.ParseFloat(rec[ix], 64)
		y, errY := strconv.ParseFloat(rec[iy], 64)
		v, errV := strconv.ParseFloat(rec[iz], 64)
		if errX != nil || errY != nil || errV != nil ||
			math.IsNaN(x) || math.IsNaN(y) || math.IsNaN(v) {
			continue
		}
		p.X = append(p.X, x)
		p.Y = append(p.Y, y)
		p.V = append(p.V, v)
	}
	if p.Len() < 2 {
		return Points{}, ErrInsufficientData
	}
	return p, nil
}
