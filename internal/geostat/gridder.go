package geostat

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// BlockReduce decimates points to one per size-by-size block using the
// mean or median of each block, placed at the block's member centroid.
func BlockReduce(p Points, size float64, reducer string) (Points, error) {
	if size <= 0 {
		return Points{}, fmt.Errorf("geostat: block size = %g", size)
	}
	type block struct {
		xs, ys, vs []float64
	}
	blocks := map[[2]int]*block{}
	for i := range p.V {
		key := [2]int{int(math.Floor(p.X[i] / size)), int(math.Floor(p.Y[i] / size))}
		b := blocks[key]
		if b == nil {
			b = &block{}
			blocks[key] = b
		}
		b.xs = append(b.xs, p.X[i])
		b.ys = append(b.ys, p.Y[i])
		b.vs = append(b.vs, p.V[i])
	}

	keys := make([][2]int, 0, len(blocks))
	for k := range blocks {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a][1] != keys[b][1] {
			return keys[a][1] < keys[b][1]
		}
		return keys[a][0] < keys[b][0]
	})

	var out Points
	for _, k := range keys {
		b := blocks[k]
		out.X = append(out.X, meanOf(b.xs))
		out.Y = append(out.Y, meanOf(b.ys))
		switch reducer {
		case "median":
			out.V = append(out.V, medianOf(b.vs))
		default:
			out.V = append(out.V, meanOf(b.vs))
		}
	}
	return out, nil
}

func meanOf(xs []float64) float64 {
	var s float64
	for _, v := range xs {
		s += v
	}
	return s / float64(len(xs))
}

func medianOf(xs []float64) float64 {
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// Trend is a fitted polynomial surface.
type Trend struct {
	Degree int
	Coef   []float64
}

// Eval returns the trend value at a point.
func (t Trend) Eval(x, y float64) float64 {
	terms := polyTerms(x, y, t.Degree)
	var v float64
	for i, c := range t.Coef {
		v += c * terms[i]
	}
	return v
}

func polyTerms(x, y float64, degree int) []float64 {
	terms := []float64{1, x, y}
	if degree >= 2 {
		terms = append(terms, x*x, x*y, y*y)
	}
	return terms
}

// TrendRemove fits a least-squares polynomial surface of degree 1 or 2
// and returns the residual points with the fitted trend.
func TrendRemove(p Points, degree int) (Points, Trend, error) {
	if degree != 1 && degree != 2 {
		return Points{}, Trend{}, fmt.Errorf("geostat: trend degree %d, want 1 or 2", degree)
	}
	n := p.Len()
	nterms := len(polyTerms(0, 0, degree))
	if n < nterms {
		return Points{}, Trend{}, ErrInsufficientData
	}

	a := mat.NewDense(n, nterms, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		a.SetRow(i, polyTerms(p.X[i], p.Y[i], degree))
		b.SetVec(i, p.V[i])
	}

	var qr mat.QR
	qr.Factorize(a)
	coef := mat.NewVecDense(nterms, nil)
	if err := qr.SolveVecTo(coef, false, b); err != nil {
		return Points{}, Trend{}, fmt.Errorf("geostat: trend fit: %w", err)
	}

	t := Trend{Degree: degree, Coef: mat.VecDenseCopyOf(coef).RawVector().Data}
	out := Points{
		X: append([]float64(nil), p.X...),
		Y: append([]float64(nil), p.Y...),
		V: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		out.V[i] = p.V[i] - t.Eval(p.X[i], p.Y[i])
	}
	return out, t, nil
}

// IDW grids by inverse-distance weighting; exact at data locations.
func IDW(p Points, spec GridSpec, power float64) (*Grid, error) {
	if p.Len() < 1 {
		return nil, ErrInsufficientData
	}
	if power <= 0 {
		power = 2
	}
	g := &Grid{Spec: spec, Est: make([]float64, spec.NX*spec.NY)}
	for iy := 0; iy < spec.NY; iy++ {
		for ix := 0; ix < spec.NX; ix++ {
			x, y := spec.CellX(ix), spec.CellY(iy)
			var num, den float64
			exact := math.NaN()
			for i := range p.V {
				d := math.Hypot(p.X[i]-x, p.Y[i]-y)
				if d < 1e-12 {
					exact = p.V[i]
					break
				}
				w := 1 / math.Pow(d, power)
				num += w * p.V[i]
				den += w
			}
			if !math.IsNaN(exact) {
				g.Est[iy*spec.NX+ix] = exact
			} else {
				g.Est[iy*spec.NX+ix] = num / den
			}
		}
	}
	return g, nil
}

// Nearest grids by nearest-neighbor lookup.
func Nearest(p Points, spec GridSpec) (*Grid, error) {
	if p.Len() < 1 {
		return nil, ErrInsufficientData
	}
	g := &Grid{Spec: spec, Est: make([]float64, spec.NX*spec.NY)}
	for iy := 0; iy < spec.NY; iy++ {
		for ix := 0; ix < spec.NX; ix++ {
			x, y := spec.CellX(ix), spec.CellY(iy)
			best, bestD := 0, math.Inf(1)
			for i := range p.V {
				d := math.Hypot(p.X[i]-x, p.Y[i]-y)
				if d < bestD {
					best, bestD = i, d
				}
			}
			g.Est[iy*spec.NX+ix] = p.V[best]
		}
	}
	return g, nil
}

// green is the biharmonic Green's function r^2 (ln r - 1).
func green(r float64) float64 {
	if r <= 0 {
		return 0
	}
	return r * r * (math.Log(r) - 1)
}

// Spline grids with damped biharmonic spline interpolation: solve
// (G + damping I) c = v over the data, then evaluate the Green's
// functions at grid nodes. Zero damping interpolates exactly.
func Spline(p Points, spec GridSpec, damping float64) (*Grid, error) {
	n := p.Len()
	if n < 2 {
		return nil, ErrInsufficientData
	}
	if damping < 0 {
		damping = 0
	}

	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			r := math.Hypot(p.X[i]-p.X[j], p.Y[i]-p.Y[j])
			a.Set(i, j, green(r))
		}
		a.Set(i, i, a.At(i, i)+damping+jitter)
		b.SetVec(i, p.V[i])
	}

	var c mat.VecDense
	if err := c.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("geostat: spline solve: %w", err)
	}

	g := &Grid{Spec: spec, Est: make([]float64, spec.NX*spec.NY)}
	for iy := 0; iy < spec.NY; iy++ {
		for ix := 0; ix < spec.NX; ix++ {
			x, y := spec.CellX(ix), spec.CellY(iy)
			var v float64
			for i := 0; i < n; i++ {
				v += c.AtVec(i) * green(math.Hypot(p.X[i]-x, p.Y[i]-y))
			}
			g.Est[iy*spec.NX+ix] = v
		}
	}
	return g, nil
}
