package config

import "sort"

// Presets are named starting points, keyed by command then preset name.
var Presets = map[string]map[string]*Config{
	"wave": {
		"demo": {
			Command: "wave",
			Wave: WaveConfig{
				NX: 101, NZ: 101, NT: 500, DX: 10, DtMs: 1,
				F0: 10, V0: 1500, V1: 2500,
			},
		},
		"highres": {
			Command: "wave",
			Wave: WaveConfig{
				NX: 201, NZ: 201, NT: 1500, DX: 5, DtMs: 0.5,
				F0: 20, V0: 1500, V1: 2500,
				Snapshots: true, SnapshotEvery: 100,
			},
		},
		"deep": {
			Command: "wave",
			Wave: WaveConfig{
				NX: 101, NZ: 301, NT: 2000, DX: 10, DtMs: 1,
				F0: 8, V0: 1800, V1: 3200,
			},
		},
	},
	"erode": {
		"fast": {
			Command: "erode",
			Erode: ErodeConfig{
				Rows: 30, Cols: 30, DX: 100, Runtime: 5e4, Dt: 1000,
				UpliftRate: 0.001, Ksp: 1e-5, Msp: 0.5, Nsp: 1,
				Diffusivity: 0.01, NoiseAmplitude: 0.1, Seed: 42,
				OutputInterval: 10,
			},
		},
		"mountain": {
			Command: "erode",
			Erode: ErodeConfig{
				Rows: 80, Cols: 80, DX: 200, Runtime: 1e6, Dt: 1000,
				UpliftRate: 0.002, Ksp: 5e-6, Msp: 0.5, Nsp: 1,
				Diffusivity: 0.02, NoiseAmplitude: 0.5, Seed: 42,
				OutputInterval: 100, SteadyTol: 1e-4,
			},
		},
		"plateau": {
			Command: "erode",
			Erode: ErodeConfig{
				Rows: 60, Cols: 60, DX: 100, Runtime: 5e5, Dt: 500,
				UpliftRate: 0.0005, Ksp: 2e-5, Msp: 0.45, Nsp: 1,
				Diffusivity: 0.05, NoiseAmplitude: 0.1, Seed: 7,
				OutputInterval: 50,
			},
		},
	},
	"hydro": {
		"gamma": {
			Command: "hydro",
			Hydro:   HydroConfig{Response: "gamma", Warmup: 365},
		},
		"exponential": {
			Command: "hydro",
			Hydro:   HydroConfig{Response: "exponential", Warmup: 365},
		},
		"short-warmup": {
			Command: "hydro",
			Hydro:   HydroConfig{Response: "gamma", Warmup: 90},
		},
	},
	"krige": {
		"quick": {
			Command: "krige",
			Krige: KrigeConfig{
				Model: "spherical", Estimator: "matheron", Bins: 12,
				Type: "ordinary", NX: 30, NY: 30, MaxNeighbors: 12,
			},
		},
		"dense": {
			Command: "krige",
			Krige: KrigeConfig{
				Model: "exponential", Estimator: "cressie", Bins: 20,
				Type: "ordinary", NX: 100, NY: 100, MaxNeighbors: 24,
			},
		},
	},
}

func GetPreset(command, preset string) *Config {
	cmds, ok := Presets[command]
	if !ok {
		return nil
	}
	cfg, ok := cmds[preset]
	if !ok {
		return nil
	}
	return cfg
}

// ListPresets returns the preset names for one command, sorted.
func ListPresets(command string) []string {
	cmds, ok := Presets[command]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
