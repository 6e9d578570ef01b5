// Package petro runs a formation-evaluation pipeline over a parsed LAS
// well: shale volume from gamma ray, density porosity, Archie water
// saturation, permeability and a pay flag with net-pay summary.
package petro

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/san-kum/geoforge/internal/las"
)

var ErrNoDepth = errors.New("petro: depth curve not found")

// Params holds the evaluation parameters. The zero value is not usable;
// start from DefaultParams.
type Params struct {
	// Shale volume
	GRClean   float64 `json:"gr_clean"`
	GRShale   float64 `json:"gr_shale"`
	VshMethod string  `json:"vsh_method"` // linear, clavier, larionov_tertiary, larionov_older

	// Porosity
	RhobMatrix float64 `json:"rhob_matrix"`
	RhobFluid  float64 `json:"rhob_fluid"`
	RhobShale  float64 `json:"rhob_shale"`

	// Archie saturation
	Rw float64 `json:"rw"`
	A  float64 `json:"a"`
	M  float64 `json:"m"`
	N  float64 `json:"n"`

	// Permeability
	PermMethod string `json:"perm_method"` // timur, wyllie

	// Pay cutoffs
	VshCutoff float64 `json:"vsh_cutoff"`
	PhiCutoff float64 `json:"phi_cutoff"`
	SwCutoff  float64 `json:"sw_cutoff"`

	// Curve names
	DepthCurve string `json:"depth_curve"`
	GRCurve    string `json:"gr_curve"`
	RhobCurve  string `json:"rhob_curve"`
	NphiCurve  string `json:"nphi_curve"`
	RtCurve    string `json:"rt_curve"`
}

func DefaultParams() Params {
	return Params{
		GRClean: 20, GRShale: 120, VshMethod: "linear",
		RhobMatrix: 2.65, RhobFluid: 1.0, RhobShale: 2.45,
		Rw: 0.05, A: 1.0, M: 2.0, N: 2.0,
		PermMethod: "timur",
		VshCutoff:  0.4, PhiCutoff: 0.08, SwCutoff: 0.6,
		DepthCurve: "DEPT", GRCurve: "GR", RhobCurve: "RHOB",
		NphiCurve: "NPHI", RtCurve: "RT",
	}
}

// LoadParams overlays a JSON config file onto the defaults.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("petro: parse config: %w", err)
	}
	return p, nil
}

// Summary reports net-pay accounting and pay-zone averages.
type Summary struct {
	NetPay     float64
	Gross      float64
	NetToGross float64
	PayPhiMean float64
	PaySwMean  float64
	PayVshMean float64
	AllPhiMean float64
	AllSwMean  float64
	AllVshMean float64
	PermMean   float64
	Steps      []string // human-readable log of performed steps
}

// Evaluate runs the pipeline in place, appending VSH, PHIT, PHIE, SW,
// PERM and PAY curves to the file. Steps whose input curves are missing
// are skipped with a note in the summary.
func Evaluate(f *las.File, p Params) (*Summary, error) {
	depth := f.Curve(p.DepthCurve)
	if depth == nil {
		return nil, ErrNoDepth
	}
	n := len(depth.Data)
	sum := &Summary{}

	note := func(format string, args ...any) {
		sum.Steps = append(sum.Steps, fmt.Sprintf(format, args...))
	}

	// 1. Shale volume from gamma ray.
	var vsh []float64
	if gr := f.Curve(p.GRCurve); gr != nil {
		vsh = make([]float64, n)
		for i, g := range gr.Data {
			vsh[i] = shaleVolume(g, p)
		}
		appendCurve(f, "VSH", "V/V", "shale volume", vsh)
		lo, hi := validRange(vsh)
		note("VSH range: %.3f - %.3f", lo, hi)
	} else {
		note("skipped VSH: curve %s missing", p.GRCurve)
	}

	// 2. Density porosity, shale-corrected when VSH is present.
	var phit, phie []float64
	if rhob := f.Curve(p.RhobCurve); rhob != nil {
		phit = make([]float64, n)
		phie = make([]float64, n)
		phiShale := (p.RhobMatrix - p.RhobShale) / (p.RhobMatrix - p.RhobFluid)
		for i, rb := range rhob.Data {
			if math.IsNaN(rb) {
				phit[i], phie[i] = math.NaN(), math.NaN()
				continue
			}
			phi := (p.RhobMatrix - rb) / (p.RhobMatrix - p.RhobFluid)
			phit[i] = clamp(phi, 0, 1)
			if vsh != nil && !math.IsNaN(vsh[i]) {
				phie[i] = clamp(phi-vsh[i]*phiShale, 0, 1)
			} else {
				phie[i] = phit[i]
			}
		}
		appendCurve(f, "PHIT", "V/V", "total porosity (density)", phit)
		appendCurve(f, "PHIE", "V/V", "effective porosity", phie)
		lo, hi := validRange(phit)
		note("PHIT range: %.3f - %.3f", lo, hi)
	} else {
		note("skipped porosity: curve %s missing", p.RhobCurve)
	}

	// 3. Archie water saturation.
	var sw []float64
	if rt := f.Curve(p.RtCurve); rt != nil && phit != nil {
		sw = make([]float64, n)
		for i := range sw {
			sw[i] = archie(phit[i], rt.Data[i], p)
		}
		appendCurve(f, "SW", "V/V", "water saturation (archie)", sw)
		lo, hi := validRange(sw)
		note("SW range: %.3f - %.3f", lo, hi)
	} else if phit != nil {
		note("skipped SW: curve %s missing", p.RtCurve)
	}

	// 4. Permeability.
	var perm []float64
	if phit != nil && sw != nil {
		perm = make([]float64, n)
		for i := range perm {
			perm[i] = permeability(phit[i], sw[i], p.PermMethod)
		}
		appendCurve(f, "PERM", "MD", "permeability ("+p.PermMethod+")", perm)
		lo, hi := validRange(perm)
		note("PERM range: %.3f - %.1f mD", lo, hi)
	}

	// 5. Pay flag and summary.
	if vsh != nil && phit != nil && sw != nil {
		pay := make([]float64, n)
		var payPhi, paySw, payVsh, allPhi, allSw, allVsh, permSum float64
		var nPay, nAll, nPerm int
		for i := 0; i < n; i++ {
			if math.IsNaN(vsh[i]) || math.IsNaN(phit[i]) || math.IsNaN(sw[i]) {
				pay[i] = math.NaN()
				continue
			}
			nAll++
			allPhi += phit[i]
			allSw += sw[i]
			allVsh += vsh[i]
			if vsh[i] < p.VshCutoff && phit[i] > p.PhiCutoff && sw[i] < p.SwCutoff {
				pay[i] = 1
				nPay++
				payPhi += phit[i]
				paySw += sw[i]
				payVsh += vsh[i]
				if perm != nil && !math.IsNaN(perm[i]) {
					permSum += perm[i]
					nPerm++
				}
			}
		}
		appendCurve(f, "PAY", "", "pay flag", pay)

		step := medianStep(depth.Data)
		lo, hi := validRange(depth.Data)
		sum.Gross = hi - lo
		sum.NetPay = float64(nPay) * step
		if sum.Gross > 0 {
			sum.NetToGross = sum.NetPay / sum.Gross
		}
		if nPay > 0 {
			sum.PayPhiMean = payPhi / float64(nPay)
			sum.PaySwMean = paySw / float64(nPay)
			sum.PayVshMean = payVsh / float64(nPay)
		}
		if nAll > 0 {
			sum.AllPhiMean = allPhi / float64(nAll)
			sum.AllSwMean = allSw / float64(nAll)
			sum.AllVshMean = allVsh / float64(nAll)
		}
		if nPerm > 0 {
			sum.PermMean = permSum / float64(nPerm)
		}
		note("net pay: %.1f m, gross: %.1f m, N/G: %.1f%%",
			sum.NetPay, sum.Gross, 100*sum.NetToGross)
	}

	return sum, nil
}

// shaleVolume converts gamma ray to shale volume via the configured
// IGR transform, clamped to [0, 1].
func shaleVolume(gr float64, p Params) float64 {
	if math.IsNaN(gr) {
		return math.NaN()
	}
	igr := clamp((gr-p.GRClean)/(p.GRShale-p.GRClean), 0, 1)
	switch p.VshMethod {
	case "clavier":
		return clamp(1.7-math.Sqrt(3.38-(igr+0.7)*(igr+0.7)), 0, 1)
	case "larionov_tertiary":
		return clamp(0.083*(math.Pow(2, 3.7*igr)-1), 0, 1)
	case "larionov_older":
		return clamp(0.33*(math.Pow(2, 2*igr)-1), 0, 1)
	default: // linear
		return igr
	}
}

// archie computes water saturation Sw = ((a*Rw)/(phi^m * Rt))^(1/n),
// clamped to [0, 1]. Zero resistivity or porosity yields NaN.
func archie(phi, rt float64, p Params) float64 {
	if math.IsNaN(phi) || math.IsNaN(rt) || phi <= 0 || rt <= 0 {
		return math.NaN()
	}
	sw := math.Pow(p.A*p.Rw/(math.Pow(phi, p.M)*rt), 1/p.N)
	return clamp(sw, 0, 1)
}

// permeability in mD from porosity and water saturation.
func permeability(phi, sw float64, method string) float64 {
	if math.IsNaN(phi) || math.IsNaN(sw) || sw <= 0 {
		return math.NaN()
	}
	switch method {
	case "wyllie":
		// Wyllie-Rose with Morris-Biggs oil constants.
		k := 62500 * math.Pow(phi, 6) / (sw * sw)
		return k
	default: // timur
		return 8581 * math.Pow(phi, 4.4) / (sw * sw)
	}
}

func appendCurve(f *las.File, mnem, unit, descr string, data []float64) {
	if existing := f.Curve(mnem); existing != nil {
		existing.Data = data
		return
	}
	f.Curves = append(f.Curves, las.Curve{Mnem: mnem, Unit: unit, Descr: descr, Data: data})
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func validRange(v []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, x := range v {
		if math.IsNaN(x) {
			continue
		}
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	if lo > hi {
		return math.NaN(), math.NaN()
	}
	return lo, hi
}

func medianStep(depth []float64) float64 {
	if len(depth) < 2 {
		return 0
	}
	diffs := make([]float64, 0, len(depth)-1)
	for i := 1; i < len(depth); i++ {
		diffs = append(diffs, math.Abs(depth[i]-depth[i-1]))
	}
	sort.Float64s(diffs)
	return diffs[len(diffs)/2]
}
