// Package wavefd models 2-D acoustic wave propagation with an explicit
// finite-difference scheme: second order in time, fourth order in
// space, a Ricker source near the surface and a receiver line.
package wavefd

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/geoforge/internal/logger"
	"github.com/san-kum/geoforge/internal/seis"
)

var log = logger.ForComponent("wavefd")

var (
	// ErrUnstableStep indicates the time step violates the CFL bound.
	ErrUnstableStep = errors.New("wavefd: time step violates CFL condition")

	// ErrDiverged indicates the field went NaN or infinite.
	ErrDiverged = errors.New("wavefd: field diverged")
)

// courantLimit is conservative for the 4th-order stencil in 2-D
// (the exact bound is sqrt(3/8)).
const courantLimit = 0.5

// Model holds the velocity field, row-major [iz*NX+ix].
type Model struct {
	NX, NZ int
	DX     float64 // m
	Vel    []float64
}

// At returns the velocity at one cell.
func (m *Model) At(ix, iz int) float64 {
	return m.Vel[iz*m.NX+ix]
}

// MaxVel returns the fastest cell.
func (m *Model) MaxVel() float64 {
	v := 0.0
	for _, c := range m.Vel {
		v = math.Max(v, c)
	}
	return v
}

// NewCircularAnomalyModel builds a constant background with a circular
// anomaly of radius min(nx,nz)/6 at the grid center.
func NewCircularAnomalyModel(nx, nz int, dx, vBg, vAnom float64) *Model {
	m := &Model{NX: nx, NZ: nz, DX: dx, Vel: make([]float64, nx*nz)}
	cx, cz := nx/2, nz/2
	radius := min(nx, nz) / 6
	r2 := radius * radius
	for iz := 0; iz < nz; iz++ {
		for ix := 0; ix < nx; ix++ {
			v := vBg
			if (ix-cx)*(ix-cx)+(iz-cz)*(iz-cz) < r2 {
				v = vAnom
			}
			m.Vel[iz*nx+ix] = v
		}
	}
	return m
}

// Config is one shot-modeling run.
type Config struct {
	NX, NZ int
	NT     int
	DX     float64 // grid spacing, m
	DTms   float64 // time step, ms
	F0     float64 // source dominant frequency, Hz
	V0, V1 float64 // background and anomaly velocity, m/s

	Snapshots     bool
	SnapshotEvery int // steps between kept snapshots, default NT/10
}

func (c Config) withDefaults() Config {
	if c.NX == 0 {
		c.NX = 101
	}
	if c.NZ == 0 {
		c.NZ = 101
	}
	if c.NT == 0 {
		c.NT = 500
	}
	if c.DX == 0 {
		c.DX = 10
	}
	if c.DTms == 0 {
		c.DTms = 1
	}
	if c.F0 == 0 {
		c.F0 = 10
	}
	if c.V0 == 0 {
		c.V0 = 1500
	}
	if c.V1 == 0 {
		c.V1 = 2500
	}
	if c.SnapshotEvery == 0 {
		c.SnapshotEvery = c.NT / 10
		if c.SnapshotEvery == 0 {
			c.SnapshotEvery = 1
		}
	}
	return c
}

// CheckCFL validates the Courant number for the model's fastest cell.
func CheckCFL(m *Model, dtSec float64) error {
	courant := m.MaxVel() * dtSec / m.DX
	if courant > courantLimit {
		return fmt.Errorf("%w: courant %.3f > %.2f (reduce dt below %.3f ms)",
			ErrUnstableStep, courant, courantLimit,
			1000*courantLimit*m.DX/m.MaxVel())
	}
	return nil
}

// Snapshot is one kept wavefield frame.
type Snapshot struct {
	Step   int
	TimeMs float64
	Field  []float64 // row-major NZ x NX
}

// Result is the finished shot.
type Result struct {
	Model     *Model
	Shot      [][]float64 // [step][receiver]
	Snapshots []Snapshot
	MaxAmp    float64
	SrcIX     int
	RecDepth  int // receiver/source row, cells
}

// Run executes the time loop. The source is a Ricker wavelet injected
// near the surface center, scaled by dt^2 v^2; receivers sample every
// column at the source depth. The context is checked between steps.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	m := NewCircularAnomalyModel(cfg.NX, cfg.NZ, cfg.DX, cfg.V0, cfg.V1)
	return RunModel(ctx, m, cfg)
}

// RunModel executes the time loop over a caller-supplied velocity model.
func RunModel(ctx context.Context, m *Model, cfg Config) (*Result, error) {
	cfg = cfg.withDefaults()
	nx, nz, nt := m.NX, m.NZ, cfg.NT
	if nx < 5 || nz < 5 {
		return nil, fmt.Errorf("wavefd: grid %dx%d too small for the stencil", nx, nz)
	}
	dt := cfg.DTms / 1000
	if err := CheckCFL(m, dt); err != nil {
		return nil, err
	}

	src, err := RickerSource(cfg.F0, dt)
	if err != nil {
		return nil, err
	}
	srcIX, srcIZ := nx/2, 2

	res := &Result{
		Model:    m,
		Shot:     make([][]float64, nt),
		SrcIX:    srcIX,
		RecDepth: srcIZ,
	}

	prev := make([]float64, nx*nz)
	cur := make([]float64, nx*nz)
	next := make([]float64, nx*nz)

	log.Info("starting shot", "grid", fmt.Sprintf("%dx%d", nx, nz),
		"steps", nt, "dt_ms", cfg.DTms, "f0_hz", cfg.F0)

	for step := 1; step <= nt; step++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		stepField(m, prev, cur, next, dt)
		if n := step - 1; n < len(src) {
			i := srcIZ*nx + srcIX
			v := m.Vel[i]
			next[i] += src[n] * dt * dt * v * v
		}

		stepMax := 0.0
		rec := make([]float64, nx)
		for ix := 0; ix < nx; ix++ {
			rec[ix] = next[srcIZ*nx+ix]
		}
		for _, v := range next {
			a := math.Abs(v)
			if a > stepMax {
				stepMax = a
			}
		}
		if math.IsNaN(stepMax) || math.IsInf(stepMax, 0) {
			return nil, fmt.Errorf("%w at step %d (t=%.1f ms)",
				ErrDiverged, step, float64(step)*cfg.DTms)
		}
		res.MaxAmp = math.Max(res.MaxAmp, stepMax)
		res.Shot[step-1] = rec

		if cfg.Snapshots && step%cfg.SnapshotEvery == 0 {
			field := make([]float64, len(next))
			copy(field, next)
			res.Snapshots = append(res.Snapshots, Snapshot{
				Step: step, TimeMs: float64(step) * cfg.DTms, Field: field,
			})
		}

		prev, cur, next = cur, next, prev
	}

	log.Info("shot finished", "max_amplitude", res.MaxAmp, "snapshots", len(res.Snapshots))
	return res, nil
}

// RickerSource returns the source sweep. The wavelet is centered, so
// the 2/f0 span starts one period before the peak.
func RickerSource(f0, dt float64) ([]float64, error) {
	return seis.Ricker(f0, dt, 2/f0)
}

// stepField applies one explicit update: 2nd order in time, 4th order
// in space, zero Dirichlet boundaries two cells wide.
func stepField(m *Model, prev, cur, next []float64, dt float64) {
	const c0, c1, c2 = -5.0 / 2.0, 4.0 / 3.0, -1.0 / 12.0
	nx, nz := m.NX, m.NZ
	invDX2 := 1 / (m.DX * m.DX)
	for iz := 2; iz < nz-2; iz++ {
		base := iz * nx
		for ix := 2; ix < nx-2; ix++ {
			i := base + ix
			lap := (c0*cur[i]+c1*(cur[i-1]+cur[i+1])+c2*(cur[i-2]+cur[i+2]))*invDX2 +
				(c0*cur[i]+c1*(cur[i-nx]+cur[i+nx])+c2*(cur[i-2*nx]+cur[i+2*nx]))*invDX2
			v := m.Vel[i]
			next[i] = 2*cur[i] - prev[i] + v*v*dt*dt*lap
		}
	}
}
