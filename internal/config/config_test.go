package config

import (
	"errors"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/dragonlab/internal/population"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Integrator != "rk45" {
		t.Errorf("expected integrator rk45, got %s", cfg.Integrator)
	}
	if cfg.Population.T1 != 50 {
		t.Errorf("expected t1 50, got %f", cfg.Population.T1)
	}
	if cfg.Farm.SafetyFactor != 1.2 {
		t.Errorf("expected safety factor 1.2, got %f", cfg.Farm.SafetyFactor)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dragonlab.yaml")
	cfg := DefaultConfig()
	cfg.Population.Params.B = 6
	cfg.Farm.PerAge = 3

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Population.Params.B != 6 {
		t.Errorf("expected b 6, got %f", loaded.Population.Params.B)
	}
	if loaded.Farm.PerAge != 3 || loaded.Farm.PreyArea != 5000 {
		t.Errorf("unexpected farm config %+v", loaded.Farm)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("out_dir: elsewhere\nfarm:\n  safety_factor: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.OutDir != "elsewhere" {
		t.Errorf("expected out_dir elsewhere, got %s", cfg.OutDir)
	}
	if cfg.Farm.SafetyFactor != 2 || cfg.Farm.HatchingArea != 1000 {
		t.Errorf("unexpected farm config %+v", cfg.Farm)
	}
	if cfg.Population.Samples != 500 {
		t.Errorf("expected default samples, got %d", cfg.Population.Samples)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DRAGONLAB_OUT_DIR", "/tmp/dragons")
	t.Setenv("DRAGONLAB_LOG_LEVEL", "debug")
	t.Setenv("DRAGONLAB_INTEGRATOR", "rk4")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.OutDir != "/tmp/dragons" {
		t.Errorf("expected env out dir, got %s", cfg.OutDir)
	}
	if cfg.Integrator != "rk4" {
		t.Errorf("expected env integrator, got %s", cfg.Integrator)
	}
	lvl, err := cfg.Level()
	if err != nil || lvl != slog.LevelDebug {
		t.Errorf("expected debug level, got %v (%v)", lvl, err)
	}
	if cfg.DataDir != DefaultDataDir {
		t.Errorf("unset env should keep default, got %s", cfg.DataDir)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(c *Config)
	}{
		{"negative rate", func(c *Config) { c.Population.Params.DA = -1 }},
		{"short initial", func(c *Config) { c.Population.Initial = []float64{1, 2} }},
		{"zero span", func(c *Config) { c.Population.T1 = 0 }},
		{"one sample", func(c *Config) { c.Population.Samples = 1 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"zero safety", func(c *Config) { c.Farm.SafetyFactor = 0 }},
		{"unknown sweep param", func(c *Config) { c.Sweep.Ranges["wings"] = [2]float64{0, 1} }},
		{"inverted range", func(c *Config) { c.Sweep.Ranges["b"] = [2]float64{5, 1} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.edit(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidateWrapsSentinels(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Population.T1 = -1
	cfg.Population.Params.B = math.NaN()

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	if !errors.Is(err, population.ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
}

func TestSimConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Population.T1 = 20
	cfg.Population.Samples = 41

	sim := cfg.SimConfig()
	if sim.T1 != 20 || sim.Samples != 41 {
		t.Errorf("unexpected sim config %+v", sim)
	}
}

func TestGetPreset(t *testing.T) {
	p := GetPreset("stable")
	if p == nil {
		t.Fatal("expected preset, got nil")
	}
	r0, err := population.R0(p.Params)
	if err != nil {
		t.Fatalf("r0: %v", err)
	}
	if math.Abs(r0-1) > 1e-9 {
		t.Errorf("expected R0 1, got %f", r0)
	}
}

func TestPresetR0Ordering(t *testing.T) {
	r0 := func(name string) float64 {
		v, err := population.R0(GetPreset(name).Params)
		if err != nil {
			t.Fatalf("r0 %s: %v", name, err)
		}
		return v
	}
	if !(r0("collapse") < r0("lore") && r0("lore") < 1 && r0("boom") > 1) {
		t.Error("expected collapse < lore < 1 < boom")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	cfg := DefaultConfig()
	if err := cfg.ApplyPreset("nonexistent"); !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestApplyPreset(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.ApplyPreset("boom"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if cfg.Population.Preset != "boom" || cfg.Population.Params.B != 12 {
		t.Errorf("unexpected population config %+v", cfg.Population)
	}

	cfg.Population.Initial[0] = 99
	if Presets["boom"].Initial[0] == 99 {
		t.Error("applying a preset must copy the initial state")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	want := []string{"boom", "collapse", "lore", "stable"}
	if len(presets) != len(want) {
		t.Fatalf("expected %d presets, got %d", len(want), len(presets))
	}
	for i := range want {
		if presets[i] != want[i] {
			t.Errorf("expected %s at %d, got %s", want[i], i, presets[i])
		}
	}
}
