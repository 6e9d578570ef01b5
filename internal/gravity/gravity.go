// Package gravity applies standard corrections to gravity surveys:
// WGS84 normal gravity, free-air and Bouguer anomalies, and prism-based
// terrain corrections against a DEM.
package gravity

import "math"

// WGS84 constants.
const (
	gammaEquator = 9.7803253359     // m/s^2
	somigK       = 0.00193185265241 // Somigliana k
	e2           = 0.00669437999014 // first eccentricity squared
	semiMajor    = 6378137.0        // m
	flattening   = 1 / 298.257223563
	gravRatio    = 0.00344978600308 // omega^2 a^2 b / GM
)

// bigG is the gravitational constant in m^3/(kg s^2).
const bigG = 6.67430e-11

// mGal per m/s^2.
const mGal = 1e5

// NormalGravity returns the WGS84 normal gravity in mGal at a latitude
// (degrees) and ellipsoidal height (m): the Somigliana closed form with
// second-order height terms.
func NormalGravity(latDeg, h float64) float64 {
	s2 := math.Sin(latDeg * math.Pi / 180)
	s2 *= s2
	g0 := gammaEquator * (1 + somigK*s2) / math.Sqrt(1-e2*s2)
	f := flattening
	g := g0 * (1 - 2/semiMajor*(1+f+gravRatio-2*f*s2)*h + 3*h*h/(semiMajor*semiMajor))
	return g * mGal
}

// FreeAir is the free-air anomaly: observed minus normal gravity, both
// in mGal.
func FreeAir(observed, normal float64) float64 {
	return observed - normal
}

// BouguerCorrection is the infinite-slab term 2 pi G rho h in mGal for
// height h (m) and density rho (kg/m^3).
func BouguerCorrection(h, density float64) float64 {
	return 2 * math.Pi * bigG * density * h * mGal
}

// SimpleBouguer is the free-air anomaly minus the slab correction.
func SimpleBouguer(freeAir, bouguerCorr float64) float64 {
	return freeAir - bouguerCorr
}

// Project maps geographic coordinates onto a local equirectangular
// plane centered on the mean latitude, returning easting and northing
// in meters.
func Project(lons, lats []float64) (easting, northing []float64) {
	var latMean float64
	for _, v := range lats {
		latMean += v
	}
	latMean /= float64(len(lats))
	cos := math.Cos(latMean * math.Pi / 180)

	easting = make([]float64, len(lons))
	northing = make([]float64, len(lats))
	for i := range lons {
		easting[i] = semiMajor * cos * lons[i] * math.Pi / 180
		northing[i] = semiMajor * lats[i] * math.Pi / 180
	}
	return easting, northing
}
