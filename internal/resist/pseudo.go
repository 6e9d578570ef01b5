package resist

import (
	"fmt"
	"math"

	"github.com/san-kum/geoforge/internal/plot"
)

// Pseudosection is apparent resistivity plotted at plotting points
// (midpoint, pseudo-depth), binned onto a regular grid for rendering.
type Pseudosection struct {
	Mid, Depth, Rhoa []float64
	Grid             []float64 // row-major, shallow row first
	NX, NY           int
	XMin, XMax       float64
	DMin, DMax       float64
}

// pseudo-depth fraction of the outer electrode separation.
const depthFactor = 0.19

// BuildPseudosection places every valid measurement at its plotting
// point and averages onto an NX x NY grid.
func BuildPseudosection(s *Survey, nx, ny int) (*Pseudosection, error) {
	rhoa, err := s.AppRes()
	if err != nil {
		return nil, err
	}
	if nx <= 0 {
		nx = 40
	}
	if ny <= 0 {
		ny = 12
	}

	ps := &Pseudosection{NX: nx, NY: ny}
	for i := 0; i < s.Size(); i++ {
		if rhoa[i] <= 0 || math.IsNaN(rhoa[i]) || math.IsInf(rhoa[i], 0) {
			continue
		}
		var xs []float64
		for _, idx := range []int{s.A[i], s.B[i], s.M[i], s.N[i]} {
			if idx > 0 {
				xs = append(xs, s.Electrodes[idx-1][0])
			}
		}
		lo, hi := xs[0], xs[0]
		var mid float64
		for _, x := range xs {
			lo = math.Min(lo, x)
			hi = math.Max(hi, x)
			mid += x
		}
		ps.Mid = append(ps.Mid, mid/float64(len(xs)))
		ps.Depth = append(ps.Depth, depthFactor*(hi-lo))
		ps.Rhoa = append(ps.Rhoa, rhoa[i])
	}
	if len(ps.Mid) == 0 {
		return nil, fmt.Errorf("resist: no valid measurements for pseudosection")
	}

	ps.XMin, ps.XMax = bounds(ps.Mid)
	ps.DMin, ps.DMax = bounds(ps.Depth)
	if ps.XMax == ps.XMin {
		ps.XMax = ps.XMin + 1
	}
	if ps.DMax == ps.DMin {
		ps.DMax = ps.DMin + 1
	}

	sum := make([]float64, nx*ny)
	cnt := make([]int, nx*ny)
	for i := range ps.Mid {
		ix := int(float64(nx-1) * (ps.Mid[i] - ps.XMin) / (ps.XMax - ps.XMin))
		iy := int(float64(ny-1) * (ps.Depth[i] - ps.DMin) / (ps.DMax - ps.DMin))
		sum[iy*nx+ix] += math.Log10(ps.Rhoa[i])
		cnt[iy*nx+ix]++
	}
	ps.Grid = make([]float64, nx*ny)
	for i := range ps.Grid {
		if cnt[i] == 0 {
			ps.Grid[i] = math.NaN()
			continue
		}
		ps.Grid[i] = sum[i] / float64(cnt[i])
	}
	return ps, nil
}

func bounds(v []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range v {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return
}

// ASCII renders the binned section as shaded characters (log10 rhoa).
func (ps *Pseudosection) ASCII() string {
	return plot.HeatASCII(ps.Grid, ps.NX, ps.NY)
}

// SVG renders the binned section as a heatmap.
func (ps *Pseudosection) SVG(title string) string {
	return plot.HeatmapSVG(ps.Grid, ps.NX, ps.NY, title)
}

// Stats summarizes the apparent resistivities.
func (ps *Pseudosection) Stats() (min, max, mean float64) {
	min, max = bounds(ps.Rhoa)
	for _, v := range ps.Rhoa {
		mean += v
	}
	mean /= float64(len(ps.Rhoa))
	return
}
