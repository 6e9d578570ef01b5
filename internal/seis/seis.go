// Package seis provides AVO reflectivity analysis and seismic wavelet
// operations: Shuey and Aki-Richards approximations, intercept/gradient
// attributes, AVO classification, wavelet generation and deconvolution.
package seis

import (
	"errors"
	"math"
)

var (
	// ErrBadLayer indicates layer properties outside physical bounds.
	ErrBadLayer = errors.New("seis: invalid layer properties")

	// ErrBadParam indicates a parameter value outside valid range.
	ErrBadParam = errors.New("seis: parameter out of valid bounds")
)

// Layer holds elastic properties of a single layer.
type Layer struct {
	Vp  float64 // P-wave velocity (m/s)
	Vs  float64 // S-wave velocity (m/s)
	Rho float64 // density (g/cc)
}

// Impedance returns the acoustic impedance Vp*rho.
func (l Layer) Impedance() float64 { return l.Vp * l.Rho }

// VpVs returns the Vp/Vs ratio.
func (l Layer) VpVs() float64 { return l.Vp / l.Vs }

// PoissonRatio returns Poisson's ratio derived from the Vp/Vs ratio.
func (l Layer) PoissonRatio() float64 {
	r := l.VpVs()
	return (r*r - 2) / (2 * (r*r - 1))
}

func (l Layer) validate() error {
	if l.Vp <= 0 || l.Vs <= 0 || l.Rho <= 0 {
		return ErrBadLayer
	}
	return nil
}

// Shuey computes the P-wave reflection coefficient at an incidence angle
// (degrees) using the 2-term Shuey approximation.
func Shuey(l1, l2 Layer, thetaDeg float64) float64 {
	r0, g := contrasts(l1, l2)
	s := math.Sin(thetaDeg * math.Pi / 180)
	return r0 + g*s*s
}

// AkiRichards computes the P-wave reflection coefficient using the 3-term
// Aki-Richards approximation, valid to wider angles than Shuey.
func AkiRichards(l1, l2 Layer, thetaDeg float64) float64 {
	theta := thetaDeg * math.Pi / 180

	dvp := l2.Vp - l1.Vp
	dvs := l2.Vs - l1.Vs
	drho := l2.Rho - l1.Rho
	vp := (l1.Vp + l2.Vp) / 2
	vs := (l1.Vs + l2.Vs) / 2
	rho := (l1.Rho + l2.Rho) / 2

	sin2 := math.Sin(theta) * math.Sin(theta)
	tan2 := math.Tan(theta) * math.Tan(theta)
	k := (vs / vp) * (vs / vp)

	term1 := 0.5 * (dvp/vp + drho/rho)
	term2 := (0.5*dvp/vp - 2*k*(drho/rho+2*dvs/vs)) * sin2
	term3 := 0.5 * dvp / vp * (tan2 - sin2)

	return term1 + term2 + term3
}

// contrasts returns the Shuey intercept R0 and gradient G.
func contrasts(l1, l2 Layer) (r0, g float64) {
	dvp := l2.Vp - l1.Vp
	dvs := l2.Vs - l1.Vs
	drho := l2.Rho - l1.Rho
	vp := (l1.Vp + l2.Vp) / 2
	vs := (l1.Vs + l2.Vs) / 2
	rho := (l1.Rho + l2.Rho) / 2

	r0 = 0.5 * (dvp/vp + drho/rho)
	g = 0.5*dvp/vp - 2*(vs/vp)*(vs/vp)*(drho/rho+2*dvs/vs)
	return r0, g
}

// InterceptGradient fits Rpp = A + B*sin^2(theta) through the Shuey curve
// at 0, 5, 10, 15 and 20 degrees and returns (A, B).
func InterceptGradient(l1, l2 Layer) (intercept, gradient float64) {
	angles := []float64{0, 5, 10, 15, 20}

	var sx, sy, sxx, sxy float64
	for _, a := range angles {
		s := math.Sin(a * math.Pi / 180)
		x := s * s
		y := Shuey(l1, l2, a)
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
	}
	n := float64(len(angles))
	gradient = (n*sxy - sx*sy) / (n*sxx - sx*sx)
	intercept = (sy - gradient*sx) / n
	return intercept, gradient
}

// Classify assigns the AVO class from intercept and gradient using
// +/- 0.02 intercept cutoffs.
func Classify(intercept, gradient float64) string {
	switch {
	case intercept > 0.02:
		if gradient < 0 {
			return "I"
		}
		return "I (anomalous)"
	case intercept > -0.02:
		if gradient < 0 {
			return "II"
		}
		return "IIp"
	default:
		if gradient < 0 {
			return "III"
		}
		return "IV"
	}
}

// AVOResult holds a full AVO analysis of one interface.
type AVOResult struct {
	Theta             []float64
	Rpp               []float64
	Intercept         float64
	Gradient          float64
	Class             string
	ImpedanceContrast float64
	Upper, Lower      Layer
}

// Analyze computes the reflectivity curve from 0 to thetaMax degrees in
// step increments plus the intercept/gradient attributes and AVO class.
// When threeTerm is set the curve uses Aki-Richards instead of Shuey.
func Analyze(l1, l2 Layer, thetaMax, step float64, threeTerm bool) (*AVOResult, error) {
	if err := l1.validate(); err != nil {
		return nil, err
	}
	if err := l2.validate(); err != nil {
		return nil, err
	}
	if thetaMax <= 0 || step <= 0 {
		return nil, ErrBadParam
	}

	res := &AVOResult{Upper: l1, Lower: l2}
	for theta := 0.0; theta <= thetaMax+step/2; theta += step {
		res.Theta = append(res.Theta, theta)
		if threeTerm {
			res.Rpp = append(res.Rpp, AkiRichards(l1, l2, theta))
		} else {
			res.Rpp = append(res.Rpp, Shuey(l1, l2, theta))
		}
	}

	res.Intercept, res.Gradient = InterceptGradient(l1, l2)
	res.Class = Classify(res.Intercept, res.Gradient)
	res.ImpedanceContrast = (l2.Impedance() - l1.Impedance()) /
		(l2.Impedance() + l1.Impedance())

	return res, nil
}

// At returns the reflectivity at the sample closest to the given angle.
func (r *AVOResult) At(angleDeg float64) float64 {
	best, dist := 0, math.Inf(1)
	for i, t := range r.Theta {
		if d := math.Abs(t - angleDeg); d < dist {
			best, dist = i, d
		}
	}
	return r.Rpp[best]
}
