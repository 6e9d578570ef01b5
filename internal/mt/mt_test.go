package mt

import (
	"errors"
	"math"
	"strings"
	"testing"
)

const sampleEDI = `>HEAD
  DATAID="TEST01"
  LAT=40:30:00 LONG=-105.5 ELEV=1500.
>=MTSECT
>FREQ NFREQ=3 ORDER=DEC // 3
  1.0E2 1.0E1
  1.0E0
>ZXXR // 3
 0.1 0.1 0.1
>ZXXI // 3
 0.0 0.0 0.0
>ZXYR // 3
 10.0 10.0 10.0
>ZXYI // 3
 10.0 10.0 10.0
>ZXY.VAR // 3
 1.0 1.0 100.0
>ZYXR // 3
 -10.0 -10.0 -10.0
>ZYXI // 3
 -10.0 -10.0 -10.0
>ZYYR // 3
 0.1 0.1 0.1
>ZYYI // 3
 0.0 0.0 0.0
>TROT // 3
 0.0 0.0 0.0
>END
`

func parseSample(t *testing.T) *Site {
	t.Helper()
	s, err := Parse(strings.NewReader(sampleEDI))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestParseHeader(t *testing.T) {
	s := parseSample(t)
	if s.Station != "TEST01" {
		t.Errorf("station = %q", s.Station)
	}
	if math.Abs(s.Lat-40.5) > 1e-9 || math.Abs(s.Lon+105.5) > 1e-9 {
		t.Errorf("coords = %f, %f", s.Lat, s.Lon)
	}
	if s.Elevation != 1500 {
		t.Errorf("elevation = %f", s.Elevation)
	}
	if len(s.Freq) != 3 || s.Freq[0] != 100 {
		t.Errorf("freq = %v", s.Freq)
	}
}

func TestDerivedQuantities(t *testing.T) {
	s := parseSample(t)

	// |Zxy|^2 = 200, so rho_a = 0.2*200/f.
	rho := s.AppRes(Zxy)
	for i, want := range []float64{0.4, 4, 40} {
		if math.Abs(rho[i]-want) > 1e-12 {
			t.Errorf("rho_xy[%d] = %f, want %f", i, rho[i], want)
		}
	}

	if ph := s.Phase(Zxy); math.Abs(ph[0]-45) > 1e-9 {
		t.Errorf("phase_xy = %f, want 45", ph[0])
	}
	if ph := s.Phase(Zyx); math.Abs(ph[0]+135) > 1e-9 {
		t.Errorf("phase_yx = %f, want -135", ph[0])
	}

	// err = sqrt(var), |Z| = sqrt(200).
	re := s.RelError(Zxy)
	if math.Abs(re[2]-10/math.Sqrt(200)) > 1e-12 {
		t.Errorf("rel err = %f", re[2])
	}

	if p := s.Periods(); p[2] != 1 {
		t.Errorf("periods = %v", p)
	}
}

func TestPhaseTensorSkew(t *testing.T) {
	s := parseSample(t)
	skew := s.PhaseTensorSkew()
	// Near-2D tensor: beta = 0.5*atan(2/200) = 0.286 deg.
	if math.Abs(skew[0]-0.2865) > 0.01 {
		t.Errorf("skew = %f, want ~0.286", skew[0])
	}
}

func TestAnalyze(t *testing.T) {
	rep := Analyze(parseSample(t))
	if !rep.Valid {
		t.Fatal("sample should be valid")
	}
	// Only the Zxy relative-error warning fires (1/3 points > 50%).
	if len(rep.Warnings) != 1 || !strings.Contains(rep.Warnings[0], "Zxy") {
		t.Errorf("warnings = %v", rep.Warnings)
	}
	if rep.FreqRange != [2]float64{1, 100} {
		t.Errorf("freq range = %v", rep.FreqRange)
	}
	if math.Abs(rep.RhoRangeXY[0]-0.4) > 1e-12 || math.Abs(rep.RhoRangeXY[1]-40) > 1e-12 {
		t.Errorf("rho range = %v", rep.RhoRangeXY)
	}

	var b strings.Builder
	rep.Write(&b, "test.edi")
	out := b.String()
	if !strings.Contains(out, "Status: VALID") || !strings.Contains(out, "max_skew") {
		t.Errorf("report:\n%s", out)
	}
}

func TestParseErrors(t *testing.T) {
	// Impedance block shorter than the frequency list.
	bad := strings.Replace(sampleEDI, ">ZXYR // 3\n 10.0 10.0 10.0", ">ZXYR // 3\n 10.0 10.0", 1)
	if _, err := Parse(strings.NewReader(bad)); !errors.Is(err, ErrCorrupt) {
		t.Errorf("err = %v, want ErrCorrupt", err)
	}

	// Missing impedance block entirely.
	bad = strings.Replace(sampleEDI, ">ZYXR // 3\n -10.0 -10.0 -10.0\n", "", 1)
	if _, err := Parse(strings.NewReader(bad)); err == nil || errors.Is(err, ErrCorrupt) {
		t.Errorf("err = %v, want missing-block error", err)
	}

	// Zero frequency.
	bad = strings.Replace(sampleEDI, "1.0E0", "0.0", 1)
	if _, err := Parse(strings.NewReader(bad)); err == nil {
		t.Error("expected non-positive frequency error")
	}
}

func TestExportCSV(t *testing.T) {
	var b strings.Builder
	if err := ExportCSV(&b, parseSample(t)); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(lines))
	}
	if !strings.HasPrefix(lines[0], "frequency_hz,period_s,rho_xy_ohm_m") {
		t.Errorf("header = %s", lines[0])
	}
}

func TestSoundingASCII(t *testing.T) {
	if out := SoundingASCII(parseSample(t)); out == "" {
		t.Error("empty sounding plot")
	}
}
