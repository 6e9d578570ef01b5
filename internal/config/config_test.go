package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Wave.NX != 101 || cfg.Wave.V0 != 1500 {
		t.Errorf("wave defaults = %+v", cfg.Wave)
	}
	if cfg.Erode.Runtime != 5e5 || cfg.Erode.Ksp != 1e-5 {
		t.Errorf("erode defaults = %+v", cfg.Erode)
	}
	if cfg.Hydro.Response != "gamma" || cfg.Hydro.Warmup != 365 {
		t.Errorf("hydro defaults = %+v", cfg.Hydro)
	}
	if cfg.Krige.Type != "ordinary" || cfg.Krige.Bins != 15 {
		t.Errorf("krige defaults = %+v", cfg.Krige)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	text := "command: wave\nwave:\n  nx: 51\n  f0: 25\n"
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Command != "wave" {
		t.Errorf("command = %q", cfg.Command)
	}
	if cfg.Wave.NX != 51 || cfg.Wave.F0 != 25 {
		t.Errorf("overrides not applied: %+v", cfg.Wave)
	}
	// Untouched fields keep their defaults.
	if cfg.Wave.V0 != 1500 || cfg.Erode.Rows != 50 {
		t.Errorf("defaults lost: wave=%+v erode=%+v", cfg.Wave, cfg.Erode)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	cfg := GetPreset("erode", "mountain")
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Erode.Rows != 80 || got.Erode.UpliftRate != 0.002 {
		t.Errorf("round trip = %+v", got.Erode)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("wave", "highres")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Wave.NX != 201 || !cfg.Wave.Snapshots {
		t.Errorf("highres = %+v", cfg.Wave)
	}
	if GetPreset("wave", "nope") != nil {
		t.Error("unknown preset should be nil")
	}
	if GetPreset("nope", "demo") != nil {
		t.Error("unknown command should be nil")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets("erode")
	want := []string{"fast", "mountain", "plateau"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names = %v, want %v", names, want)
		}
	}
	if ListPresets("nope") != nil {
		t.Error("unknown command should be nil")
	}
}
