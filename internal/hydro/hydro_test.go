package hydro

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func day(offset int) time.Time {
	return time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

// daily builds a contiguous daily series starting 2015-01-01.
func daily(name string, values []float64) *Series {
	s := &Series{Name: name, Values: values}
	for i := range values {
		s.Dates = append(s.Dates, day(i))
	}
	return s
}

// forcing returns three years of seasonal precipitation and
// evaporation with a second harmonic keeping the signal informative.
func forcing() (precip, evap []float64) {
	nt := 3 * 365
	precip = make([]float64, nt)
	evap = make([]float64, nt)
	for t := 0; t < nt; t++ {
		doy := float64(t % 365)
		p := 0.002 + 0.002*math.Sin(2*math.Pi*doy/365) + 0.003*math.Sin(0.7*float64(t))
		precip[t] = math.Max(0, p)
		evap[t] = math.Max(0, 0.0015-0.001*math.Cos(2*math.Pi*doy/365))
	}
	return precip, evap
}

// synthetic builds a model whose observations (every second day after
// the warmup year) are generated by the model itself.
func synthetic(t *testing.T, truth Params, pump []float64) *Model {
	t.Helper()
	precip, evap := forcing()

	obsDates := make([]time.Time, 0)
	obsValues := make([]float64, 0)
	for i := 365; i < len(precip); i += 2 {
		obsDates = append(obsDates, day(i))
		obsValues = append(obsValues, 0)
	}
	head := &Series{Name: "head", Dates: obsDates, Values: obsValues}

	var pumpSeries *Series
	if pump != nil {
		pumpSeries = daily("pump", pump)
	}
	m, err := New(head, daily("precip", precip), daily("evap", evap), pumpSeries, 365)
	if err != nil {
		t.Fatal(err)
	}
	sim := m.Simulate(truth)
	for i, idx := range m.ObsIdx {
		m.Obs[i] = sim[idx]
	}
	return m
}

func TestReadSeriesRepairs(t *testing.T) {
	csv := `date,value
2015-01-03,2.5
2015-01-01,1.0
2015-01-02,1.5
2015-01-02,9.9
2015-01-04,abc
`
	s, err := ReadSeries(strings.NewReader(csv), "head")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Dates) != 3 {
		t.Fatalf("kept %d rows: %v", len(s.Dates), s.Values)
	}
	if !s.Dates[0].Equal(day(0)) || s.Values[2] != 2.5 {
		t.Errorf("series = %v %v", s.Dates, s.Values)
	}
	// Sorted, first duplicate kept, bad value skipped.
	if s.Values[1] != 1.5 {
		t.Errorf("duplicate resolution kept %f", s.Values[1])
	}
	if len(s.Warnings) != 3 {
		t.Errorf("warnings = %v", s.Warnings)
	}
}

func TestRegularizeFillsSmallGaps(t *testing.T) {
	s := &Series{
		Name:   "precip",
		Dates:  []time.Time{day(0), day(1), day(4)},
		Values: []float64{1, 2, 5},
	}
	if err := s.Regularize(maxFillDays); err != nil {
		t.Fatal(err)
	}
	if len(s.Values) != 5 {
		t.Fatalf("values = %v", s.Values)
	}
	if s.Values[2] != 2 || s.Values[3] != 2 {
		t.Errorf("forward fill = %v", s.Values)
	}

	wide := &Series{
		Name:   "precip",
		Dates:  []time.Time{day(0), day(5)},
		Values: []float64{1, 2},
	}
	if err := wide.Regularize(maxFillDays); !errors.Is(err, ErrGap) {
		t.Errorf("err = %v, want ErrGap", err)
	}
}

func TestGammaBlock(t *testing.T) {
	// P(1, 1) = 1 - 1/e for the first daily step.
	theta := gammaBlock(1, 1, 1, 100)
	if math.Abs(theta[0]-(1-math.Exp(-1))) > 1e-9 {
		t.Errorf("theta[0] = %f", theta[0])
	}
	// The block response integrates to the gain.
	theta = gammaBlock(600, 1.5, 30, 10000)
	var sum float64
	for _, v := range theta {
		sum += v
	}
	if math.Abs(sum-600) > 0.1 {
		t.Errorf("sum = %f, want ~600", sum)
	}
}

func TestSimulateSteadyState(t *testing.T) {
	nt := 2000
	precip := make([]float64, nt)
	evap := make([]float64, nt)
	for i := range precip {
		precip[i] = 0.002
		evap[i] = 0.001
	}
	m := &Model{Response: Gamma, NT: nt, Precip: precip, Evap: evap}
	p := Params{D: 5, Gain: 600, Shape: 1.5, Scale: 30, EvapFactor: 0.5}

	// Constant recharge converges to d + gain*recharge.
	want := 5 + 600*(0.002-0.5*0.001)
	got := m.Simulate(p)[nt-1]
	if math.Abs(got-want)/want > 1e-3 {
		t.Errorf("steady state = %f, want %f", got, want)
	}
}

func TestCalibrateRecoversTruth(t *testing.T) {
	truth := Params{D: 5, Gain: 600, Shape: 1.5, Scale: 30, EvapFactor: 0.8}
	m := synthetic(t, truth, nil)

	fit, err := m.Calibrate()
	if err != nil {
		t.Fatal(err)
	}
	if fit.EVP < 99 {
		t.Errorf("EVP = %f", fit.EVP)
	}
	if fit.RMSE > 0.01 {
		t.Errorf("RMSE = %f", fit.RMSE)
	}
	if math.Abs(fit.Params.D-truth.D) > 0.1 {
		t.Errorf("d = %f, want %f", fit.Params.D, truth.D)
	}
	if math.Abs(fit.Params.Gain-truth.Gain)/truth.Gain > 0.1 {
		t.Errorf("gain = %f, want %f", fit.Params.Gain, truth.Gain)
	}
	if math.Abs(fit.Params.Shape-truth.Shape)/truth.Shape > 0.15 {
		t.Errorf("shape = %f, want %f", fit.Params.Shape, truth.Shape)
	}
	if math.Abs(fit.Params.Scale-truth.Scale)/truth.Scale > 0.15 {
		t.Errorf("scale = %f, want %f", fit.Params.Scale, truth.Scale)
	}
	if math.Abs(fit.Params.EvapFactor-truth.EvapFactor)/truth.EvapFactor > 0.15 {
		t.Errorf("evap_f = %f, want %f", fit.Params.EvapFactor, truth.EvapFactor)
	}
}

func TestSplitSample(t *testing.T) {
	truth := Params{D: 5, Gain: 600, Shape: 1.5, Scale: 30, EvapFactor: 0.8}
	m := synthetic(t, truth, nil)

	cal, val, err := m.SplitSample()
	if err != nil {
		t.Fatal(err)
	}
	if cal.EVP < 99 || val.EVP < 95 {
		t.Errorf("calibration EVP = %f, validation EVP = %f", cal.EVP, val.EVP)
	}
	if val.NObs+cal.NObs != len(m.Obs) {
		t.Errorf("split %d + %d != %d", cal.NObs, val.NObs, len(m.Obs))
	}
}

func TestCompareResponses(t *testing.T) {
	truth := Params{D: 5, Gain: 600, Shape: 1.5, Scale: 30, EvapFactor: 0.8}
	m := synthetic(t, truth, nil)

	fits, err := m.CompareResponses(Gamma, Exponential)
	if err != nil {
		t.Fatal(err)
	}
	// The data come from a gamma response with shape != 1.
	if fits[0].AIC >= fits[1].AIC {
		t.Errorf("AIC gamma = %f, exponential = %f", fits[0].AIC, fits[1].AIC)
	}
	var b strings.Builder
	m.WriteComparison(&b, fits)
	if !strings.Contains(b.String(), "Best model (lowest AIC): Gamma") {
		t.Errorf("comparison:\n%s", b.String())
	}
}

func TestPumpingDrawsDown(t *testing.T) {
	truth := Params{D: 5, Gain: 600, Shape: 1.5, Scale: 30, EvapFactor: 0.8,
		PumpGain: -0.004, PumpScale: 60}
	pump := make([]float64, 3*365)
	for i := range pump {
		if (i/180)%2 == 1 {
			pump[i] = 100
		}
	}
	m := synthetic(t, truth, pump)

	// Heads during pumping sit below the unpumped simulation.
	off := truth
	off.PumpGain = 0
	with := m.Simulate(truth)
	without := m.Simulate(off)
	if with[400] >= without[400] {
		t.Errorf("pumped %f >= unpumped %f", with[400], without[400])
	}

	fit, err := m.Calibrate()
	if err != nil {
		t.Fatal(err)
	}
	// The pump response trades off against the recharge parameters, so
	// only the fit quality and the drawdown sign are checked.
	if fit.EVP < 95 {
		t.Errorf("EVP = %f", fit.EVP)
	}
	if fit.Params.PumpGain >= 0 {
		t.Errorf("pump gain = %f, want negative", fit.Params.PumpGain)
	}
}

func TestNewValidation(t *testing.T) {
	// Stresses with disjoint spans.
	precip := daily("precip", make([]float64, 100))
	evap := &Series{Name: "evap", Values: make([]float64, 50)}
	for i := range evap.Values {
		evap.Dates = append(evap.Dates, day(200+i))
	}
	head := daily("head", make([]float64, 100))
	if _, err := New(head, precip, evap, nil, 10); err == nil {
		t.Error("expected overlap error")
	}

	// Too few observations after the warmup.
	precip = daily("precip", make([]float64, 400))
	evap = daily("evap", make([]float64, 400))
	short := &Series{Name: "head", Dates: []time.Time{day(366)}, Values: []float64{1}}
	if _, err := New(short, precip, evap, nil, 365); !errors.Is(err, ErrTooFew) {
		t.Errorf("err = %v, want ErrTooFew", err)
	}
}

func TestShortRecordWarning(t *testing.T) {
	nt := 500 // well under two years of observations
	precip := daily("precip", make([]float64, nt))
	evap := daily("evap", make([]float64, nt))
	head := &Series{Name: "head"}
	for i := 100; i < nt; i += 2 {
		head.Dates = append(head.Dates, day(i))
		head.Values = append(head.Values, 1)
	}
	m, err := New(head, precip, evap, nil, 100)
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, w := range m.Warnings {
		if strings.Contains(w, "years of observations") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v", m.Warnings)
	}
}

func TestReportAndExport(t *testing.T) {
	truth := Params{D: 5, Gain: 600, Shape: 1.5, Scale: 30, EvapFactor: 0.8}
	m := synthetic(t, truth, nil)
	fit := m.Evaluate(truth, allIndices(len(m.Obs)))

	var b strings.Builder
	m.WriteReport(&b, fit)
	out := b.String()
	for _, want := range []string{"Model: groundwater_model", "recharge: Gamma",
		"EVP (Explained Variance):  100.0%", "shape_n"} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}

	b.Reset()
	if err := m.ExportCSV(&b, fit); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if lines[0] != "date,simulated,observed" || len(lines) != m.NT+1 {
		t.Fatalf("export has %d lines", len(lines))
	}
	// Day zero has no observation.
	if !strings.HasSuffix(lines[1], ",") {
		t.Errorf("first row = %q", lines[1])
	}

	if m.ObservedVsSimulatedASCII(fit) == "" {
		t.Error("empty ascii plot")
	}
}
