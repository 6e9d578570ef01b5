// Package config holds yaml run configurations for the simulation-style
// commands, with named in-code presets as starting points.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is one run configuration. Only the section named by Command is
// consulted; the others keep their defaults so a file can be reused
// across commands.
type Config struct {
	Command string      `yaml:"command"`
	Wave    WaveConfig  `yaml:"wave"`
	Erode   ErodeConfig `yaml:"erode"`
	Hydro   HydroConfig `yaml:"hydro"`
	Krige   KrigeConfig `yaml:"krige"`
}

// WaveConfig drives acoustic shot modeling.
type WaveConfig struct {
	NX            int     `yaml:"nx"`
	NZ            int     `yaml:"nz"`
	NT            int     `yaml:"nt"`
	DX            float64 `yaml:"dx"`
	DtMs          float64 `yaml:"dt_ms"`
	F0            float64 `yaml:"f0"`
	V0            float64 `yaml:"v0"`
	V1            float64 `yaml:"v1"`
	Snapshots     bool    `yaml:"snapshots"`
	SnapshotEvery int     `yaml:"snapshot_every"`
}

// ErodeConfig drives landscape evolution.
type ErodeConfig struct {
	Rows           int     `yaml:"rows"`
	Cols           int     `yaml:"cols"`
	DX             float64 `yaml:"dx"`
	Runtime        float64 `yaml:"runtime"` // years
	Dt             float64 `yaml:"dt"`      // years
	UpliftRate     float64 `yaml:"uplift_rate"`
	Ksp            float64 `yaml:"ksp"`
	Msp            float64 `yaml:"msp"`
	Nsp            float64 `yaml:"nsp"`
	Diffusivity    float64 `yaml:"diffusivity"`
	NoiseAmplitude float64 `yaml:"noise_amplitude"`
	Seed           int64   `yaml:"seed"`
	OutputInterval int     `yaml:"output_interval"`
	SteadyTol      float64 `yaml:"steady_tol"`
}

// HydroConfig drives groundwater head calibration.
type HydroConfig struct {
	Response string `yaml:"response"` // gamma or exponential
	Warmup   int    `yaml:"warmup"`   // days
}

// KrigeConfig drives variogram fitting and grid estimation.
type KrigeConfig struct {
	Model        string  `yaml:"model"` // spherical, exponential, gaussian
	Estimator    string  `yaml:"estimator"`
	Bins         int     `yaml:"bins"`
	Type         string  `yaml:"type"` // ordinary or simple
	NX           int     `yaml:"nx"`
	NY           int     `yaml:"ny"`
	Radius       float64 `yaml:"radius"`
	MaxNeighbors int     `yaml:"max_neighbors"`
}

func DefaultConfig() *Config {
	return &Config{
		Wave: WaveConfig{
			NX: 101, NZ: 101, NT: 500, DX: 10, DtMs: 1,
			F0: 10, V0: 1500, V1: 2500,
		},
		Erode: ErodeConfig{
			Rows: 50, Cols: 50, DX: 100, Runtime: 5e5, Dt: 1000,
			UpliftRate: 0.001, Ksp: 1e-5, Msp: 0.5, Nsp: 1,
			Diffusivity: 0.01, NoiseAmplitude: 0.1, Seed: 42,
			OutputInterval: 50,
		},
		Hydro: HydroConfig{Response: "gamma", Warmup: 365},
		Krige: KrigeConfig{
			Model: "spherical", Estimator: "matheron", Bins: 15,
			Type: "ordinary", NX: 50, NY: 50, MaxNeighbors: 16,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
