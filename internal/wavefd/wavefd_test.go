package wavefd

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/geoforge/internal/vtk"
)

func TestCircularAnomalyModel(t *testing.T) {
	m := NewCircularAnomalyModel(12, 12, 5, 1500, 2500)
	if m.At(6, 6) != 2500 {
		t.Errorf("center = %g", m.At(6, 6))
	}
	if m.At(0, 0) != 1500 {
		t.Errorf("corner = %g", m.At(0, 0))
	}
	// Radius 2 covers the 9 cells with squared distance < 4.
	count := 0
	for _, v := range m.Vel {
		if v == 2500 {
			count++
		}
	}
	if count != 9 {
		t.Errorf("anomaly cells = %d", count)
	}
	if m.MaxVel() != 2500 {
		t.Errorf("max velocity = %g", m.MaxVel())
	}
}

func TestCheckCFL(t *testing.T) {
	// 2500 m/s * 5 ms / 10 m = 1.25, well past the bound.
	_, err := Run(context.Background(), Config{DTms: 5})
	if !errors.Is(err, ErrUnstableStep) {
		t.Errorf("err = %v, want ErrUnstableStep", err)
	}
	if _, err := Run(context.Background(), Config{NX: 31, NZ: 31, NT: 10}); err != nil {
		t.Errorf("default config should be stable: %v", err)
	}
}

func smallShot(t *testing.T) *Result {
	t.Helper()
	res, err := Run(context.Background(), Config{NX: 51, NZ: 51, NT: 150})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

// firstCross returns the first step where the receiver exceeds the
// threshold, or one past the end if it never does.
func firstCross(shot [][]float64, rec int, threshold float64) int {
	for step := range shot {
		if math.Abs(shot[step][rec]) > threshold {
			return step
		}
	}
	return len(shot)
}

func TestRunPropagates(t *testing.T) {
	res := smallShot(t)
	if res.MaxAmp <= 0 {
		t.Fatal("no energy in the field")
	}
	if len(res.Shot) != 150 || len(res.Shot[0]) != 51 {
		t.Fatalf("shot = %d x %d", len(res.Shot), len(res.Shot[0]))
	}
	if res.SrcIX != 25 {
		t.Errorf("source column = %d", res.SrcIX)
	}

	// The model is symmetric about the source column.
	for step := range res.Shot {
		for k := 1; k <= 20; k++ {
			l, r := res.Shot[step][25-k], res.Shot[step][25+k]
			if math.Abs(l-r) > 1e-9*res.MaxAmp {
				t.Fatalf("step %d offset %d: %g vs %g", step, k, l, r)
			}
		}
	}

	// First arrivals move outward from the source.
	threshold := 1e-6 * res.MaxAmp
	near := firstCross(res.Shot, 25, threshold)
	mid := firstCross(res.Shot, 35, threshold)
	far := firstCross(res.Shot, 45, threshold)
	if !(near < mid && mid < far) {
		t.Errorf("arrivals = %d, %d, %d", near, mid, far)
	}
}

func TestSnapshots(t *testing.T) {
	res, err := Run(context.Background(), Config{
		NX: 31, NZ: 31, NT: 150, Snapshots: true, SnapshotEvery: 50,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Snapshots) != 3 {
		t.Fatalf("snapshots = %d", len(res.Snapshots))
	}
	s := res.Snapshots[0]
	if s.Step != 50 || s.TimeMs != 50 || len(s.Field) != 31*31 {
		t.Errorf("snapshot = step %d, t %g, %d cells", s.Step, s.TimeMs, len(s.Field))
	}
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, Config{NX: 31, NZ: 31}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunGridTooSmall(t *testing.T) {
	m := &Model{NX: 4, NZ: 4, DX: 10, Vel: make([]float64, 16)}
	if _, err := RunModel(context.Background(), m, Config{}); err == nil {
		t.Error("expected stencil-size error")
	}
}

func TestExports(t *testing.T) {
	res, err := Run(context.Background(), Config{
		NX: 31, NZ: 31, NT: 60, Snapshots: true, SnapshotEvery: 30,
	})
	if err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	if err := res.WriteShotCSV(&b, 1); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 61 {
		t.Fatalf("csv lines = %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "t_ms,rec_000,") {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "1,") {
		t.Errorf("first row = %q", lines[1])
	}

	if !strings.Contains(res.ShotSVG("shot"), "</svg>") {
		t.Error("shot SVG incomplete")
	}

	snap := &res.Snapshots[0]
	if snap.FieldASCII(31, 31) == "" {
		t.Error("field ASCII empty")
	}

	b.Reset()
	if err := res.WriteSnapshotVTK(&b, snap); err != nil {
		t.Fatal(err)
	}
	info, err := vtk.ParseInfo(strings.NewReader(b.String()))
	if err != nil {
		t.Fatal(err)
	}
	if info.NPoints != 31*31 || len(info.Arrays) != 2 {
		t.Errorf("vtk info = %+v", info)
	}
	if info.Arrays[0].Name != "pressure" || info.Arrays[1].Name != "velocity" {
		t.Errorf("arrays = %v", info.Arrays)
	}
}

func TestLiveModel(t *testing.T) {
	if _, err := NewLiveModel(Config{DTms: 5}); !errors.Is(err, ErrUnstableStep) {
		t.Errorf("err = %v, want ErrUnstableStep", err)
	}

	lm, err := NewLiveModel(Config{NX: 31, NZ: 31, NT: 50})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 20; i++ {
		lm.advance()
	}
	if lm.err != nil {
		t.Fatal(lm.err)
	}
	if lm.maxAmp <= 0 {
		t.Error("no energy after 20 live steps")
	}
	view := lm.View()
	for _, want := range []string{"ACOUSTIC WAVEFIELD", "Step", "20 / 50"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
