package terrain

import (
	"math"
	"sort"
)

// Flow holds one routing pass: D8 receivers, slopes to the receiver
// and accumulated drainage area.
type Flow struct {
	Receiver []int // self where no downhill neighbor exists
	Slope    []float64
	Area     []float64
	order    []int // node indices, highest elevation first
}

// RouteFlow computes steepest-descent receivers and accumulates
// drainage area downstream in topographic order.
func (g *Grid) RouteFlow() *Flow {
	n := len(g.Z)
	f := &Flow{
		Receiver: make([]int, n),
		Slope:    make([]float64, n),
		Area:     make([]float64, n),
		order:    make([]int, n),
	}
	for i := range f.Receiver {
		f.Receiver[i] = i
		f.order[i] = i
	}

	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			i := g.Index(r, c)
			if g.Flags[i] != Core {
				continue
			}
			f.Area[i] = g.CellArea()
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
				s := (g.Z[i] - g.Z[j]) / dist
				if s > f.Slope[i] {
					f.Slope[i] = s
					f.Receiver[i] = j
				}
			}
		}
	}

	sort.Slice(f.order, func(a, b int) bool { return g.Z[f.order[a]] > g.Z[f.order[b]] })
	for _, i := range f.order {
		if j := f.Receiver[i]; j != i {
			f.Area[j] += f.Area[i]
		}
	}
	return f
}
