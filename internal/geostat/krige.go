package geostat

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// KType selects the kriging system.
type KType int

const (
	SimpleKriging KType = iota
	OrdinaryKriging
)

func (k KType) String() string {
	if k == OrdinaryKriging {
		return "ordinary"
	}
	return "simple"
}

// GridSpec defines a regular estimation grid by extent and cell count;
// nodes sit at cell centers.
type GridSpec struct {
	NX, NY                 int
	Xmin, Xmax, Ymin, Ymax float64
}

// SpecFromPoints builds a spec covering the data with a 5% buffer.
func SpecFromPoints(p Points, nx, ny int) GridSpec {
	xmin, xmax, ymin, ymax := p.Bounds()
	bx := (xmax - xmin) * 0.05
	by := (ymax - ymin) * 0.05
	return GridSpec{
		NX: nx, NY: ny,
		Xmin: xmin - bx, Xmax: xmax + bx,
		Ymin: ymin - by, Ymax: ymax + by,
	}
}

func (s GridSpec) CellSizeX() float64 { return (s.Xmax - s.Xmin) / float64(s.NX) }
func (s GridSpec) CellSizeY() float64 { return (s.Ymax - s.Ymin) / float64(s.NY) }

// CellX returns the x coordinate of column ix.
func (s GridSpec) CellX(ix int) float64 {
	return s.Xmin + (float64(ix)+0.5)*s.CellSizeX()
}

// CellY returns the y coordinate of row iy.
func (s GridSpec) CellY(iy int) float64 {
	return s.Ymin + (float64(iy)+0.5)*s.CellSizeY()
}

// Grid holds row-major (iy*NX+ix) estimates, with kriging variance when
// the method provides one.
type Grid struct {
	Spec GridSpec
	Est  []float64
	Var  []float64 // nil for non-kriging gridders
}

// At returns the estimate at (ix, iy).
func (g *Grid) At(ix, iy int) float64 { return g.Est[iy*g.Spec.NX+ix] }

// Stats returns min, max and mean over finite estimates.
func (g *Grid) Stats() (min, max, mean float64) {
	min, max = math.Inf(1), math.Inf(-1)
	var sum float64
	var n int
	for _, v := range g.Est {
		if math.IsNaN(v) {
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
		sum += v
		n++
	}
	if n > 0 {
		mean = sum / float64(n)
	}
	return
}

// WriteCSV emits x,y,value rows (plus variance when present).
func (g *Grid) WriteCSV(w io.Writer) error {
	if g.Var != nil {
		if _, err := fmt.Fprintln(w, "x,y,estimate,variance"); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintln(w, "x,y,estimate"); err != nil {
			return err
		}
	}
	for iy := 0; iy < g.Spec.NY; iy++ {
		for ix := 0; ix < g.Spec.NX; ix++ {
			i := iy*g.Spec.NX + ix
			if g.Var != nil {
				if _, err := fmt.Fprintf(w, "%g,%g,%g,%g\n",
					g.Spec.CellX(ix), g.Spec.CellY(iy), g.Est[i], g.Var[i]); err != nil {
					return err
				}
			} else {
				if _, err := fmt.Fprintf(w, "%g,%g,%g\n",
					g.Spec.CellX(ix), g.Spec.CellY(iy), g.Est[i]); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// jitter stabilizes near-singular kriging systems from (nearly)
// duplicate points.
const jitter = 1e-10

// KrigeOptions tunes the neighbor search and system type.
type KrigeOptions struct {
	Type   KType
	Radius float64 // search radius; <= 0 means unlimited
	NDMax  int     // max conditioning points; <= 0 means all
	SKMean float64 // mean for simple kriging
}

type neighbor struct {
	idx  int
	dist float64
}

// Krige estimates the grid by simple or ordinary kriging with a
// per-node nearest-neighbor search. Nodes without neighbors get a NaN
// estimate and full-sill variance.
func Krige(p Points, model Model, params Params, spec GridSpec, opts KrigeOptions) (*Grid, error) {
	if p.Len() < 2 {
		return nil, ErrInsufficientData
	}
	if spec.NX < 1 || spec.NY < 1 {
		return nil, fmt.Errorf("geostat: bad grid %dx%d", spec.NX, spec.NY)
	}

	g := &Grid{
		Spec: spec,
		Est:  make([]float64, spec.NX*spec.NY),
		Var:  make([]float64, spec.NX*spec.NY),
	}

	for iy := 0; iy < spec.NY; iy++ {
		for ix := 0; ix < spec.NX; ix++ {
			node := iy*spec.NX + ix
			est, kvar := krigeNode(p, model, params, spec.CellX(ix), spec.CellY(iy), opts)
			g.Est[node] = est
			g.Var[node] = kvar
		}
	}
	return g, nil
}

func krigeNode(p Points, model Model, params Params, x, y float64, opts KrigeOptions) (float64, float64) {
	// Neighbor search: all points within the radius, nearest first,
	// truncated to ndmax.
	var nb []neighbor
	for i := range p.V {
		d := math.Hypot(p.X[i]-x, p.Y[i]-y)
		if opts.Radius > 0 && d > opts.Radius {
			continue
		}
		nb = append(nb, neighbor{i, d})
	}
	if len(nb) == 0 {
		return math.NaN(), params.Sill
	}
	sort.Slice(nb, func(a, b int) bool { return nb[a].dist < nb[b].dist })
	if opts.NDMax > 0 && len(nb) > opts.NDMax {
		nb = nb[:opts.NDMax]
	}

	n := len(nb)
	size := n
	if opts.Type == OrdinaryKriging {
		size = n + 1
	}

	a := mat.NewDense(size, size, nil)
	b := mat.NewVecDense(size, nil)
	for i := 0; i < n; i++ {
		pi := nb[i].idx
		for j := 0; j < n; j++ {
			pj := nb[j].idx
			h := math.Hypot(p.X[pi]-p.X[pj], p.Y[pi]-p.Y[pj])
			a.Set(i, j, model.Covariance(h, params))
		}
		a.Set(i, i, a.At(i, i)+jitter)
		b.SetVec(i, model.Covariance(nb[i].dist, params))
	}
	if opts.Type == OrdinaryKriging {
		for i := 0; i < n; i++ {
			a.Set(i, n, 1)
			a.Set(n, i, 1)
		}
		b.SetVec(n, 1)
	}

	var w mat.VecDense
	if err := w.SolveVec(a, b); err != nil {
		return math.NaN(), params.Sill
	}

	var est, kvar float64
	kvar = params.Sill
	switch opts.Type {
	case OrdinaryKriging:
		for i := 0; i < n; i++ {
			est += w.AtVec(i) * p.V[nb[i].idx]
			kvar -= w.AtVec(i) * b.AtVec(i)
		}
		kvar -= w.AtVec(n) // Lagrange multiplier
	default:
		est = opts.SKMean
		for i := 0; i < n; i++ {
			est += w.AtVec(i) * (p.V[nb[i].idx] - opts.SKMean)
			kvar -= w.AtVec(i) * b.AtVec(i)
		}
	}
	if kvar < 0 {
		kvar = 0
	}
	return est, kvar
}
