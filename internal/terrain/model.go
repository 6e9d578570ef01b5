package terrain

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Options configures a model run. Zero values take the defaults of a
// 50x50, 100 m grid evolved for 5e5 years.
type Options struct {
	Rows, Cols     int
	DX             float64
	Runtime        float64 // years
	Dt             float64 // years
	UpliftRate     float64 // m/yr on core nodes
	Ksp            float64 // stream-power erodibility
	Msp, Nsp       float64 // area and slope exponents
	Diffusivity    float64 // m^2/yr
	NoiseAmplitude float64 // m
	Seed           int64
	OutputInterval int     // steps between progress snapshots
	OutputDir      string  // ESRI ASCII snapshots when set
	SteadyTol      float64 // mean |dz| per step; 0 disables the detector
}

func (o *Options) defaults() {
	if o.Rows == 0 {
		o.Rows = 50
	}
	if o.Cols == 0 {
		o.Cols = 50
	}
	if o.DX == 0 {
		o.DX = 100
	}
	if o.Runtime == 0 {
		o.Runtime = 5e5
	}
	if o.Dt == 0 {
		o.Dt = 1000
	}
	if o.UpliftRate == 0 {
		o.UpliftRate = 0.001
	}
	if o.Ksp == 0 {
		o.Ksp = 1e-5
	}
	if o.Msp == 0 {
		o.Msp = 0.5
	}
	if o.Nsp == 0 {
		o.Nsp = 1.0
	}
	if o.Diffusivity == 0 {
		o.Diffusivity = 0.01
	}
	if o.NoiseAmplitude == 0 {
		o.NoiseAmplitude = 0.1
	}
	if o.Seed == 0 {
		o.Seed = 42
	}
	if o.OutputInterval == 0 {
		o.OutputInterval = 50
	}
}

// Result carries the evolved grid, its final routing and the recorded
// time series.
type Result struct {
	Grid          *Grid
	Flow          *Flow
	MeanElevation []float64 // per step, core nodes
	Relief        []float64 // per step, core max-min
	Steps         int
	SteadyAt      int // 1-based step where the detector fired, 0 otherwise
}

// Run evolves the landscape for Runtime years.
func Run(ctx context.Context, opts Options) (*Result, error) {
	opts.defaults()
	g, err := NewGrid(opts.Rows, opts.Cols, opts.DX)
	if err != nil {
		return nil, err
	}
	g.InitialTopography(opts.NoiseAmplitude, opts.Seed)

	nSteps := int(opts.Runtime / opts.Dt)
	if nSteps < 1 {
		nSteps = 1
	}
	log.Info("starting landscape evolution",
		"grid", fmt.Sprintf("%dx%d", opts.Rows, opts.Cols), "dx", opts.DX,
		"steps", nSteps, "uplift_mm_yr", opts.UpliftRate*1000, "ksp", opts.Ksp)

	res := &Result{Grid: g}
	prev := make([]float64, len(g.Z))

	for step := 1; step <= nSteps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		copy(prev, g.Z)

		flow := g.RouteFlow()
		g.StreamPower(flow, opts.Ksp, opts.Msp, opts.Nsp, opts.Dt)
		g.Diffuse(opts.Diffusivity, opts.Dt)
		g.Uplift(opts.UpliftRate, opts.Dt)

		mean, relief := g.CoreStats()
		res.MeanElevation = append(res.MeanElevation, mean)
		res.Relief = append(res.Relief, relief)
		res.Steps = step

		if step%opts.OutputInterval == 0 {
			log.Info("progress", "time_kyr", float64(step)*opts.Dt/1000,
				"mean_elevation", mean, "relief", relief)
			if opts.OutputDir != "" {
				if err := snapshot(opts.OutputDir, step, g); err != nil {
					return nil, err
				}
			}
		}

		if opts.SteadyTol > 0 {
			var dz float64
			n := 0
			for i, f := range g.Flags {
				if f != Core {
					continue
				}
				dz += math.Abs(g.Z[i] - prev[i])
				n++
			}
			if dz/float64(n) < opts.SteadyTol {
				res.SteadyAt = step
				log.Info("steady state reached", "step", step, "mean_dz", dz/float64(n))
				break
			}
		}
	}

	res.Flow = g.RouteFlow()
	return res, nil
}

func snapshot(dir string, step int, g *Grid) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("topo_%06d.asc", step))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteEsriASCII(f, g, g.Z); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
