package gravity

import "math"

// prismGz returns the vertical gravity of a rectangular prism at the
// origin in mGal. Bounds are relative to the observation point with z
// positive down (Nagy's closed form, corner sign expansion).
func prismGz(x1, x2, y1, y2, z1, z2, density float64) float64 {
	var sum float64
	xs := [2]float64{x1, x2}
	ys := [2]float64{y1, y2}
	zs := [2]float64{z1, z2}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				sign := 1.0
				if (i+j+k)%2 == 1 {
					sign = -1
				}
				sum += sign * nagyKernel(xs[i], ys[j], zs[k])
			}
		}
	}
	return bigG * density * sum * mGal
}

func nagyKernel(x, y, z float64) float64 {
	r := math.Sqrt(x*x + y*y + z*z)
	var t float64
	if y+r > 0 {
		t += x * math.Log(y+r)
	}
	if x+r > 0 {
		t += y * math.Log(x+r)
	}
	if z != 0 && r != 0 {
		t -= z * math.Atan2(x*y, z*r)
	}
	return t
}

// TerrainCorrection sums the prism effects of every DEM cell (surface
// referenced to zero) at a station, in mGal. A flat zero-height DEM
// contributes nothing.
func TerrainCorrection(easting, northing, height float64, dem *DEM, density float64) float64 {
	hx := dem.DX / 2
	hy := dem.DY / 2
	var total float64
	for iy, y := range dem.Y {
		for ix, x := range dem.X {
			surf := dem.Z[iy*len(dem.X)+ix]
			if math.IsNaN(surf) || surf == 0 {
				continue
			}
			// Prism from 0 up to surf, in station-down coordinates.
			zTop := height - surf
			zBot := height
			if surf < 0 {
				zTop, zBot = height, height-surf
			}
			rho := density
			if surf < 0 {
				rho = -density // a depression removes mass
			}
			total += prismGz(x-hx-easting, x+hx-easting,
				y-hy-northing, y+hy-northing, zTop, zBot, rho)
		}
	}
	return total
}
