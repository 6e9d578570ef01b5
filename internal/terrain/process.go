package terrain

import "math"

// StreamPower applies detachment-limited incision E = K A^m S^n over
// dt years. A node never cuts below its receiver.
func (g *Grid) StreamPower(f *Flow, k, m, n, dt float64) {
	for _, i := range f.order {
		if g.Flags[i] != Core || f.Receiver[i] == i || f.Slope[i] <= 0 {
			continue
		}
		e := k * math.Pow(f.Area[i], m) * math.Pow(f.Slope[i], n) * dt
		floor := g.Z[f.Receiver[i]]
		g.Z[i] = math.Max(g.Z[i]-e, floor)
	}
}

// Diffuse applies linear hillslope diffusion with a 5-point Laplacian,
// subcycled so every explicit step satisfies dt <= dx^2/(4D).
func (g *Grid) Diffuse(d, dt float64) {
	if d <= 0 || dt <= 0 {
		return
	}
	stable := g.DX * g.DX / (4 * d)
	sub := int(math.Ceil(dt / stable))
	if sub < 1 {
		sub = 1
	}
	dtSub := dt / float64(sub)
	factor := d * dtSub / (g.DX * g.DX)

	next := make([]float64, len(g.Z))
	for s := 0; s < sub; s++ {
		copy(next, g.Z)
		for r := 0; r < g.Rows; r++ {
			for c := 0; c < g.Cols; c++ {
				i := g.Index(r, c)
				if g.Flags[i] != Core {
					continue
				}
				var lap float64
				for _, off := range neighborOffsets[:4] {
					nr, nc := r+off[0], c+off[1]
					if nr < 0 || nr >= g.Rows || nc < 0 || nc >= g.Cols {
						continue // zero flux off the grid
					}
					j := g.Index(nr, nc)
					if g.Flags[j] == Closed {
						continue // zero flux into closed edges
					}
					lap += g.Z[j] - g.Z[i]
				}
				next[i] = g.Z[i] + factor*lap
			}
		}
		g.Z, next = next, g.Z
	}
}

// Uplift raises core nodes by rate*dt.
func (g *Grid) Uplift(rate, dt float64) {
	for i, f := range g.Flags {
		if f == Core {
			g.Z[i] += rate * dt
		}
	}
}
