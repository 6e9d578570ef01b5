// Package mt parses magnetotelluric EDI transfer-function files and
// derives apparent resistivity, phase and quality metrics.
package mt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"os"
	"strconv"
	"strings"
)

// ErrCorrupt indicates impedance blocks inconsistent with the
// frequency list.
var ErrCorrupt = errors.New("mt: impedance block length mismatch")

// Impedance tensor component indices.
const (
	Zxx = iota
	Zxy
	Zyx
	Zyy
	nComp
)

var compNames = [nComp]string{"ZXX", "ZXY", "ZYX", "ZYY"}

// Site is one EDI station: header metadata, frequencies and the
// impedance tensor in field units (mV/km/nT).
type Site struct {
	Station   string
	Lat, Lon  float64
	Elevation float64

	Freq []float64
	Z    [nComp][]complex128
	ZErr [nComp][]float64 // standard error, from the .VAR blocks
}

// Load reads and parses an EDI file.
func Load(path string) (*Site, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads an EDI stream. Numeric blocks may wrap over any number
// of lines; unrecognized blocks (>TROT, tipper, ...) are skipped.
func Parse(r io.Reader) (*Site, error) {
	site := &Site{}
	blocks := map[string][]float64{}
	var current string
	inHead := false

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1<<20), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			tag := strings.ToUpper(strings.Fields(line)[0])
			tag = strings.TrimPrefix(tag, ">")
			inHead = tag == "HEAD" || strings.HasPrefix(tag, "=")
			switch {
			case tag == "FREQ", strings.HasPrefix(tag, "Z"):
				current = tag
			default:
				current = ""
			}
			continue
		}
		if inHead {
			parseHeaderLine(site, line)
			continue
		}
		if current == "" {
			continue
		}
		for _, field := range strings.Fields(line) {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("mt: bad value %q in >%s", field, current)
			}
			blocks[current] = append(blocks[current], v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	site.Freq = blocks["FREQ"]
	if len(site.Freq) == 0 {
		return nil, fmt.Errorf("mt: no >FREQ block")
	}
	for _, f := range site.Freq {
		if f <= 0 {
			return nil, fmt.Errorf("mt: non-positive frequency %g", f)
		}
	}

	nf := len(site.Freq)
	for c := 0; c < nComp; c++ {
		re, okR := blocks[compNames[c]+"R"]
		im, okI := blocks[compNames[c]+"I"]
		if !okR || !okI {
			return nil, fmt.Errorf("mt: missing impedance block >%sR/I", compNames[c])
		}
		if len(re) != nf || len(im) != nf {
			return nil, fmt.Errorf("%w: >%s has %d/%d values for %d frequencies",
				ErrCorrupt, compNames[c], len(re), len(im), nf)
		}
		site.Z[c] = make([]complex128, nf)
		for i := range re {
			site.Z[c][i] = complex(re[i], im[i])
		}
		site.ZErr[c] = make([]float64, nf)
		if vr, ok := blocks[compNames[c]+".VAR"]; ok {
			if len(vr) != nf {
				return nil, fmt.Errorf("%w: >%s.VAR has %d values for %d frequencies",
					ErrCorrupt, compNames[c], len(vr), nf)
			}
			for i, v := range vr {
				site.ZErr[c][i] = math.Sqrt(math.Max(v, 0))
			}
		}
	}
	return site, nil
}

func parseHeaderLine(site *Site, line string) {
	for _, kv := range strings.Fields(line) {
		eq := strings.IndexByte(kv, '=')
		if eq < 0 {
			continue
		}
		key := strings.ToUpper(kv[:eq])
		val := strings.Trim(kv[eq+1:], `"`)
		switch key {
		case "DATAID":
			site.Station = val
		case "LAT", "REFLAT":
			if site.Lat == 0 {
				site.Lat = parseAngle(val)
			}
		case "LONG", "LON", "REFLONG":
			if site.Lon == 0 {
				site.Lon = parseAngle(val)
			}
		case "ELEV", "REFELEV":
			if site.Elevation == 0 {
				site.Elevation, _ = strconv.ParseFloat(val, 64)
			}
		}
	}
}

// parseAngle accepts decimal degrees or DD:MM:SS.s.
func parseAngle(s string) float64 {
	if !strings.Contains(s, ":") {
		v, _ := strconv.ParseFloat(s, 64)
		return v
	}
	parts := strings.Split(s, ":")
	var dms [3]float64
	for i := 0; i < len(parts) && i < 3; i++ {
		dms[i], _ = strconv.ParseFloat(parts[i], 64)
	}
	sign := 1.0
	if strings.HasPrefix(strings.TrimSpace(s), "-") {
		sign = -1
		dms[0] = -dms[0]
	}
	return sign * (dms[0] + dms[1]/60 + dms[2]/3600)
}

// AppRes returns the apparent resistivity curve of one component in
// Ohm-m: rho_a = 0.2 |Z|^2 / f for Z in field units.
func (s *Site) AppRes(comp int) []float64 {
	out := make([]float64, len(s.Freq))
	for i, f := range s.Freq {
		az := cmplx.Abs(s.Z[comp][i])
		out[i] = 0.2 * az * az / f
	}
	return out
}

// Phase returns the impedance phase in degrees.
func (s *Site) Phase(comp int) []float64 {
	out := make([]float64, len(s.Freq))
	for i := range s.Freq {
		z := s.Z[comp][i]
		out[i] = math.Atan2(imag(z), real(z)) * 180 / math.Pi
	}
	return out
}

// RelError returns |Zerr|/|Z| per frequency; NaN where Z vanishes.
func (s *Site) RelError(comp int) []float64 {
	out := make([]float64, len(s.Freq))
	for i := range s.Freq {
		az := cmplx.Abs(s.Z[comp][i])
		if az == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = s.ZErr[comp][i] / az
	}
	return out
}

// Periods returns 1/f.
func (s *Site) Periods() []float64 {
	out := make([]float64, len(s.Freq))
	for i, f := range s.Freq {
		out[i] = 1 / f
	}
	return out
}

// PhaseTensorSkew returns the Caldwell skew angle beta in degrees per
// frequency, from Phi = X^-1 Y with X = Re(Z), Y = Im(Z).
func (s *Site) PhaseTensorSkew() []float64 {
	out := make([]float64, len(s.Freq))
	for i := range s.Freq {
		x11, x12 := real(s.Z[Zxx][i]), real(s.Z[Zxy][i])
		x21, x22 := real(s.Z[Zyx][i]), real(s.Z[Zyy][i])
		y11, y12 := imag(s.Z[Zxx][i]), imag(s.Z[Zxy][i])
		y21, y22 := imag(s.Z[Zyx][i]), imag(s.Z[Zyy][i])

		det := x11*x22 - x12*x21
		if det == 0 {
			out[i] = math.NaN()
			continue
		}
		// Phi = X^-1 Y.
		p11 := (x22*y11 - x12*y21) / det
		p12 := (x22*y12 - x12*y22) / det
		p21 := (-x21*y11 + x11*y21) / det
		p22 := (-x21*y12 + x11*y22) / det
		out[i] = 0.5 * math.Atan2(p12-p21, p11+p22) * 180 / math.Pi
	}
	return out
}
