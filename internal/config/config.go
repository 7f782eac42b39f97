// Package config holds the run configuration: directories, logging and
// the parameters of every stage, loaded from YAML and overridden from
// the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dragonlab/internal/allometry"
	"github.com/san-kum/dragonlab/internal/dynamo"
	"github.com/san-kum/dragonlab/internal/energetics"
	"github.com/san-kum/dragonlab/internal/environment"
	"github.com/san-kum/dragonlab/internal/population"
)

const (
	DefaultDataDir    = "data"
	DefaultOutDir     = "outputs"
	DefaultLogLevel   = "info"
	DefaultIntegrator = "rk45"
	DefaultTheme      = "ember"
	DefaultPreset     = "lore"
	DefaultPerAge     = 10
	DefaultMaxAge     = 12
	DefaultSweepSteps = 5
)

var ErrInvalid = errors.New("config: invalid value")

type Config struct {
	DataDir    string              `yaml:"data_dir" env:"DRAGONLAB_DATA_DIR"`
	OutDir     string              `yaml:"out_dir" env:"DRAGONLAB_OUT_DIR"`
	LogLevel   string              `yaml:"log_level" env:"DRAGONLAB_LOG_LEVEL"`
	Integrator string              `yaml:"integrator" env:"DRAGONLAB_INTEGRATOR"`
	Theme      string              `yaml:"theme" env:"DRAGONLAB_THEME"`
	Population PopulationConfig    `yaml:"population"`
	Allometry  allometry.Reference `yaml:"allometry"`
	Energetics energetics.Params   `yaml:"energetics"`
	Farm       FarmConfig          `yaml:"farm"`
	Sweep      SweepConfig         `yaml:"sweep"`
}

type PopulationConfig struct {
	Preset    string            `yaml:"preset"`
	Params    population.Params `yaml:"params"`
	Initial   []float64         `yaml:"initial"`
	T1        float64           `yaml:"t1"`
	Samples   int               `yaml:"samples"`
	Tolerance float64           `yaml:"tolerance"`
}

type FarmConfig struct {
	environment.Options `yaml:",inline"`
	PerAge              int  `yaml:"per_age"`
	MaxAge              int  `yaml:"max_age"`
	UseFittedLength     bool `yaml:"use_fitted_length"`
}

// SweepConfig is a grid over population parameters. Each range is
// [lo, hi] sampled at Steps points.
type SweepConfig struct {
	Objective string                `yaml:"objective"`
	Steps     int                   `yaml:"steps"`
	Ranges    map[string][2]float64 `yaml:"ranges"`
}

func DefaultConfig() *Config {
	sim := population.DefaultSimConfig()
	return &Config{
		DataDir:    DefaultDataDir,
		OutDir:     DefaultOutDir,
		LogLevel:   DefaultLogLevel,
		Integrator: DefaultIntegrator,
		Theme:      DefaultTheme,
		Population: PopulationConfig{
			Preset:    DefaultPreset,
			Params:    population.DefaultParams(),
			Initial:   population.DefaultInitial(),
			T1:        sim.T1,
			Samples:   sim.Samples,
			Tolerance: sim.Tolerance,
		},
		Allometry:  allometry.DefaultReference(),
		Energetics: energetics.DefaultParams(),
		Farm: FarmConfig{
			Options: environment.DefaultOptions(),
			PerAge:  DefaultPerAge,
			MaxAge:  DefaultMaxAge,
		},
		Sweep: SweepConfig{
			Objective: "abs_log_r0",
			Steps:     DefaultSweepSteps,
			Ranges: map[string][2]float64{
				"b":   {2, 8},
				"d_a": {0.2, 0.8},
			},
		},
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
// Environment overrides are applied in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv overrides fields tagged with env from the process environment.
func ParseEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log_level %q", ErrInvalid, c.LogLevel)
	}
	return lvl, nil
}

// SimConfig is the simulator configuration for the population stage.
func (c *Config) SimConfig() dynamo.Config {
	sim := population.DefaultSimConfig()
	sim.T1 = c.Population.T1
	sim.Samples = c.Population.Samples
	sim.Tolerance = c.Population.Tolerance
	return sim
}

// ApplyPreset replaces the population parameters and initial state with
// a named preset.
func (c *Config) ApplyPreset(name string) error {
	p := GetPreset(name)
	if p == nil {
		return fmt.Errorf("%w: unknown preset %q (have %s)", ErrInvalid, name, strings.Join(ListPresets(), ", "))
	}
	c.Population.Preset = name
	c.Population.Params = p.Params
	c.Population.Initial = append([]float64(nil), p.Initial...)
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.OutDir == "" {
		bad("out_dir is empty")
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}

	pop := c.Population
	if err := pop.Params.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(pop.Initial) != len(population.Stages) {
		bad("population.initial needs %d values, got %d", len(population.Stages), len(pop.Initial))
	}
	for i, v := range pop.Initial {
		if v < 0 {
			bad("population.initial[%d] = %v", i, v)
		}
	}
	if pop.T1 <= 0 {
		bad("population.t1 must be positive")
	}
	if pop.Samples < 2 {
		bad("population.samples must be at least 2")
	}
	if pop.Tolerance <= 0 {
		bad("population.tolerance must be positive")
	}

	ref := c.Allometry
	if ref.AdultAge < 0 || ref.AdultMass <= 0 || ref.AdultWingArea <= 0 || ref.Beta <= 0 {
		bad("allometry reference %+v", ref)
	}

	if c.Energetics.FlightHours < 0 || c.Energetics.FireBursts < 0 {
		bad("energetics activity must be non-negative")
	}

	farm := c.Farm
	if farm.SafetyFactor <= 0 {
		bad("farm.safety_factor must be positive")
	}
	if farm.PreyArea < 0 || farm.HatchingArea < 0 {
		bad("farm areas must be non-negative")
	}
	if farm.PerAge < 1 || farm.MaxAge < 0 {
		bad("farm herd %d per age up to %d", farm.PerAge, farm.MaxAge)
	}

	if c.Sweep.Steps < 1 {
		bad("sweep.steps must be at least 1")
	}
	for _, name := range c.SweepParams() {
		var p population.Params
		if err := p.Set(name, 0); err != nil {
			errs = append(errs, err)
		}
		r := c.Sweep.Ranges[name]
		if r[0] > r[1] {
			bad("sweep range %s [%v, %v]", name, r[0], r[1])
		}
	}

	return errors.Join(errs...)
}

// SweepParams lists the swept parameters, sorted.
func (c *Config) SweepParams() []string {
	names := make([]string, 0, len(c.Sweep.Ranges))
	for name := range c.Sweep.Ranges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
