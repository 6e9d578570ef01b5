package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const wellA = `~Version Information
VERS.     2.0 : CWLS log ASCII standard
WRAP.     NO  : one line per depth step
~Well Information
STRT.M    1000.0000 : start depth
STOP.M    1002.0000 : stop depth
STEP.M    0.5000    : step
NULL.     -999.25   : null value
WELL.     WELL-A    : well name
UWI.      100010001 : unique id
~Curve Information
DEPT.M              : depth
GR  .API            : gamma ray
RHOB.G/CC           : bulk density
~ASCII
1000.0000   55.1000    2.4500
1000.5000   60.2000 -999.2500
1001.0000   70.8000    2.5000
1001.5000   65.0000    2.5200
1002.0000   58.3000    2.4800
`

const wellB = `~Version Information
VERS.     2.0 : CWLS log ASCII standard
WRAP.     NO  : unwrapped
~Well Information
STRT.M    500.0 : start depth
STOP.M    501.0 : stop depth
STEP.M    0.5   : step
NULL.     -999.25 : null value
WELL.     WELL-B : well name
~Curve Information
DEPT.M          : depth
GR  .API        : gamma ray
~ASCII
500.0   10.0
500.5   20.0
501.0   30.0
`

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.las"), []byte(wellA), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "b.las"), []byte(wellB), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.las"), []byte("not a las file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	st, err := Open(filepath.Join(dir, "catalog.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	return st, dir
}

func TestScanAndList(t *testing.T) {
	st, dir := newStore(t)
	res, err := st.Scan(filepath.Join(dir, "*.las"))
	if err != nil {
		t.Fatal(err)
	}
	if res.Scanned != 2 || res.Failed != 1 || res.Skipped != 0 {
		t.Fatalf("result = %+v", res)
	}

	wells, err := st.ListWells()
	if err != nil {
		t.Fatal(err)
	}
	if len(wells) != 3 {
		t.Fatalf("wells = %v", wells)
	}
	if wells[0].Name != "WELL-A" || wells[0].UWI != "100010001" || wells[0].NCurves != 3 {
		t.Errorf("well A = %+v", wells[0])
	}
	if wells[0].DepthStart != 1000 || wells[0].DepthStop != 1002 {
		t.Errorf("well A depths = %+v", wells[0])
	}
	if wells[2].Error == "" {
		t.Errorf("broken well should carry an error: %+v", wells[2])
	}
}

func TestRescanSkipsUnchanged(t *testing.T) {
	st, dir := newStore(t)
	pattern := filepath.Join(dir, "*.las")
	if _, err := st.Scan(pattern); err != nil {
		t.Fatal(err)
	}

	res, err := st.Scan(pattern)
	if err != nil {
		t.Fatal(err)
	}
	// The two good wells are unchanged; the broken one is retried.
	if res.Skipped != 2 || res.Scanned != 0 || res.Failed != 1 {
		t.Fatalf("result = %+v", res)
	}

	// Touching a file forces a rescan of just that file.
	path := filepath.Join(dir, "b.las")
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}
	res, err = st.Scan(pattern)
	if err != nil {
		t.Fatal(err)
	}
	if res.Scanned != 1 || res.Skipped != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestCurveAvailability(t *testing.T) {
	st, dir := newStore(t)
	if _, err := st.Scan(filepath.Join(dir, "*.las")); err != nil {
		t.Fatal(err)
	}

	rows, err := st.CurveAvailability("GR")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0].Well != "WELL-A" || rows[0].Unit != "API" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Min != 10 || rows[1].Max != 30 || rows[1].Mean != 20 {
		t.Errorf("row 1 = %+v", rows[1])
	}
	// RHOB has one null out of five samples.
	rhob, err := st.CurveAvailability("RHOB")
	if err != nil {
		t.Fatal(err)
	}
	if len(rhob) != 1 || rhob[0].NullPct != 20 {
		t.Errorf("rhob = %v", rhob)
	}

	all, err := st.CurveAvailability("")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Errorf("all curves = %d", len(all))
	}
}

func TestStats(t *testing.T) {
	st, dir := newStore(t)
	if _, err := st.Scan(filepath.Join(dir, "*.las")); err != nil {
		t.Fatal(err)
	}
	stats, err := st.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Wells != 3 || stats.Failed != 1 || stats.Curves != 5 || stats.Mnemonics != 3 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.DepthMin != 500 || stats.DepthMax != 1002 {
		t.Errorf("depth range = %g - %g", stats.DepthMin, stats.DepthMax)
	}
}

func TestScanNoFiles(t *testing.T) {
	st, dir := newStore(t)
	if _, err := st.Scan(filepath.Join(dir, "*.sgy")); !errors.Is(err, ErrNoFiles) {
		t.Errorf("err = %v, want ErrNoFiles", err)
	}
}

func TestReports(t *testing.T) {
	st, dir := newStore(t)
	if _, err := st.Scan(filepath.Join(dir, "*.las")); err != nil {
		t.Fatal(err)
	}
	wells, err := st.ListWells()
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	WriteWellTable(&b, wells)
	out := b.String()
	for _, want := range []string{"WELL-A", "100010001", "failed:"} {
		if !strings.Contains(out, want) {
			t.Errorf("well table missing %q:\n%s", want, out)
		}
	}

	rows, err := st.CurveAvailability("GR")
	if err != nil {
		t.Fatal(err)
	}
	b.Reset()
	WriteCurveTable(&b, rows)
	if !strings.Contains(b.String(), "API") {
		t.Errorf("curve table:\n%s", b.String())
	}

	stats, err := st.Stats()
	if err != nil {
		t.Fatal(err)
	}
	b.Reset()
	WriteStats(&b, stats)
	if !strings.Contains(b.String(), "Wells:             3") {
		t.Errorf("stats:\n%s", b.String())
	}
}
