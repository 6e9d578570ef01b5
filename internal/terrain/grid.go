// Package terrain runs a detachment-limited landscape evolution model:
// D8 flow routing, stream-power incision, linear hillslope diffusion
// and uniform tectonic uplift on a regular raster grid.
package terrain

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/san-kum/geoforge/internal/logger"
)

var log = logger.ForComponent("terrain")

// Boundary classifies a grid node.
type Boundary uint8

const (
	Core   Boundary = iota // evolves freely
	Closed                 // no flow in or out, fixed elevation
	Open                   // baselevel outlet, fixed elevation
)

// Grid is a row-major raster with row 0 at the bottom edge.
type Grid struct {
	Rows, Cols int
	DX         float64
	Z          []float64
	Flags      []Boundary
}

// NewGrid builds a grid with closed left/right/top edges and an open
// outlet along the bottom edge.
func NewGrid(rows, cols int, dx float64) (*Grid, error) {
	if rows < 3 || cols < 3 || dx <= 0 {
		return nil, fmt.Errorf("terrain: grid %dx%d dx=%g is too small", rows, cols, dx)
	}
	g := &Grid{
		Rows:  rows,
		Cols:  cols,
		DX:    dx,
		Z:     make([]float64, rows*cols),
		Flags: make([]Boundary, rows*cols),
	}
	for c := 0; c < cols; c++ {
		g.Flags[g.Index(0, c)] = Open
		g.Flags[g.Index(rows-1, c)] = Closed
	}
	for r := 1; r < rows-1; r++ {
		g.Flags[g.Index(r, 0)] = Closed
		g.Flags[g.Index(r, cols-1)] = Closed
	}
	return g, nil
}

// Index maps (row, col) to the flat node index.
func (g *Grid) Index(r, c int) int { return r*g.Cols + c }

// RowCol is the inverse of Index.
func (g *Grid) RowCol(i int) (r, c int) { return i / g.Cols, i % g.Cols }

// CellArea is the area drained by a single cell.
func (g *Grid) CellArea() float64 { return g.DX * g.DX }

// InitialTopography seeds a gentle slope toward the outlet plus
// seeded noise to break symmetry.
func (g *Grid) InitialTopography(noise float64, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	for r := 0; r < g.Rows; r++ {
		y := float64(r) * g.DX
		for c := 0; c < g.Cols; c++ {
			g.Z[g.Index(r, c)] = y/1000 + rng.Float64()*noise
		}
	}
}

// CoreStats returns the mean elevation and relief over core nodes.
func (g *Grid) CoreStats() (mean, relief float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	n := 0
	for i, f := range g.Flags {
		if f != Core {
			continue
		}
		mean += g.Z[i]
		lo = math.Min(lo, g.Z[i])
		hi = math.Max(hi, g.Z[i])
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return mean / float64(n), hi - lo
}

// neighbor offsets: 4 cardinal then 4 diagonal.
var neighborOffsets = [8][2]int{
	{-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {-1, 1}, {1, -1}, {1, 1},
}

// SlopeMap returns the steepest local gradient magnitude per node.
func (g *Grid) SlopeMap() []float64 {
	out := make([]float64, len(g.Z))
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			i := g.Index(r, c)
			if g.Flags[i] == Closed {
				continue
			}
			best := 0.0
			for k, off := range neighborOffsets {
				nr, nc := r+off[0], c+off[1]
				if nr < 0 || nr >= g.Rows || nc < 0 || nc >= g.Cols {
					continue
				}
				j := g.Index(nr, nc)
				if g.Flags[j] == Closed {
					continue
				}
				dist := g.DX
				if k >= 4 {
					dist = g.DX * math.Sqrt2
				}
				s := math.Abs(g.Z[i]-g.Z[j]) / dist
				best = math.Max(best, s)
			}
			out[i] = best
		}
	}
	return out
}
