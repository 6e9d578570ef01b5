package geostat

import (
	"math"
	"sort"
)

// TransformTable maps original values to normal scores and back. Both
// slices are sorted ascending and aligned.
type TransformTable struct {
	Z  []float64 // original values
	NS []float64 // normal scores
}

// NScore transforms values to standard normal scores by rank,
// phi^-1((r - 0.5) / n), and returns the table for back-transforming.
func NScore(values []float64) ([]float64, *TransformTable) {
	n := len(values)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	scores := make([]float64, n)
	table := &TransformTable{Z: make([]float64, n), NS: make([]float64, n)}
	for rank, i := range idx {
		p := (float64(rank) + 0.5) / float64(n)
		ns := normalQuantile(p)
		scores[i] = ns
		table.Z[rank] = values[i]
		table.NS[rank] = ns
	}
	return scores, table
}

// BackTransform maps a normal score back to data units by linear
// interpolation in the table, clamped to [zmin, zmax] in the tails.
func (t *TransformTable) BackTransform(ns, zmin, zmax float64) float64 {
	n := len(t.NS)
	if n == 0 {
		return math.NaN()
	}
	if ns <= t.NS[0] {
		return math.Max(zmin, math.Min(t.Z[0], zmax))
	}
	if ns >= t.NS[n-1] {
		return math.Min(zmax, math.Max(t.Z[n-1], zmin))
	}
	i := sort.SearchFloat64s(t.NS, ns)
	// t.NS[i-1] < ns <= t.NS[i]
	lo, hi := t.NS[i-1], t.NS[i]
	f := (ns - lo) / (hi - lo)
	z := t.Z[i-1] + f*(t.Z[i]-t.Z[i-1])
	return math.Max(zmin, math.Min(z, zmax))
}

// normalQuantile is the standard normal inverse CDF.
func normalQuantile(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}
