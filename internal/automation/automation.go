// Package automation runs scripted batches of population simulations:
// YAML scenarios of named steps, and Monte Carlo trials over perturbed
// starting populations.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"

	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/dragonlab/internal/config"
	"github.com/san-kum/dragonlab/internal/dynamo"
	"github.com/san-kum/dragonlab/internal/experiment"
	"github.com/san-kum/dragonlab/internal/population"
	"github.com/san-kum/dragonlab/internal/storage"
)

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// Scenario defines a scripted simulation sequence.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides the base population config for one run. Zero
// fields keep the base value; Params are applied after Preset.
type ScenarioStep struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Integrator string             `yaml:"integrator"`
	T1         float64            `yaml:"t1"`
	Samples    int                `yaml:"samples"`
	Initial    []float64          `yaml:"initial"`
	Params     map[string]float64 `yaml:"params"`
	Save       bool               `yaml:"save"`
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}
	return &scenario, nil
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Name   string
	RunID  string
	R0     float64
	Config experiment.Config
	Result *dynamo.Result
}

type Runner struct {
	Registry *experiment.Registry
	// Store receives the runs of steps marked save; nil discards them.
	Store  *storage.Store
	Logger *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Logger
}

// stepConfig resolves a step against a copy of base.
func stepConfig(base *config.Config, step ScenarioStep) (*config.Config, error) {
	cfg := *base
	cfg.Population.Initial = append([]float64(nil), base.Population.Initial...)

	if step.Preset != "" {
		if err := cfg.ApplyPreset(step.Preset); err != nil {
			return nil, err
		}
	}
	for name, v := range step.Params {
		if err := cfg.Population.Params.Set(name, v); err != nil {
			return nil, err
		}
	}
	if step.Integrator != "" {
		cfg.Integrator = step.Integrator
	}
	if step.T1 != 0 {
		cfg.Population.T1 = step.T1
	}
	if step.Samples != 0 {
		cfg.Population.Samples = step.Samples
	}
	if len(step.Initial) > 0 {
		cfg.Population.Initial = append([]float64(nil), step.Initial...)
	}
	return &cfg, cfg.Validate()
}

// RunScenario executes every step in order and stops at the first
// failure, returning the steps completed so far.
func (r *Runner) RunScenario(ctx context.Context, scenario *Scenario, base *config.Config) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		r.logger().Info("running step", "scenario", scenario.Name, "step", name, "index", i+1, "of", len(scenario.Steps))

		cfg, err := stepConfig(base, step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		expCfg := experiment.Config{
			Integrator: cfg.Integrator,
			Params:     cfg.Population.Params,
			InitState:  cfg.Population.Initial,
			Sim:        cfg.SimConfig(),
		}
		exp, err := experiment.Build(r.Registry, expCfg)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Name: name, Config: expCfg, Result: result, R0: math.NaN()}
		if r0, err := population.R0(expCfg.Params); err == nil {
			sr.R0 = r0
		}

		if step.Save && r.Store != nil {
			meta := storage.RunMetadata{
				Preset:     name,
				Integrator: cfg.Integrator,
				T1:         cfg.Population.T1,
				Samples:    cfg.Population.Samples,
				Params:     expCfg.Params,
				Initial:    expCfg.InitState,
			}
			if !math.IsNaN(sr.R0) {
				meta.R0 = &sr.R0
			}
			if sr.RunID, err = r.Store.SaveRun(meta, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}

		results = append(results, sr)
	}

	return results, nil
}

// MonteCarloConfig perturbs every compartment of the base initial state
// by a uniform factor in [1-Perturbation, 1+Perturbation].
type MonteCarloConfig struct {
	Base         experiment.Config
	Perturbation float64
	Trials       int
	Seed         uint64
	// Threshold is the smallest final head count that still counts as a
	// persisting population.
	Threshold float64
}

// MonteCarloResult holds one trial.
type MonteCarloResult struct {
	Trial      int
	Initial    dynamo.State
	Final      dynamo.State
	FinalTotal float64
	Persisted  bool
}

// RunMonteCarlo executes the trials in order with a seeded generator.
func (r *Runner) RunMonteCarlo(ctx context.Context, cfg MonteCarloConfig) ([]MonteCarloResult, error) {
	if cfg.Trials < 1 {
		return nil, fmt.Errorf("automation: trials must be positive, got %d", cfg.Trials)
	}
	if cfg.Perturbation < 0 || cfg.Perturbation > 1 {
		return nil, fmt.Errorf("automation: perturbation must be in [0, 1], got %v", cfg.Perturbation)
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	results := make([]MonteCarloResult, 0, cfg.Trials)

	for trial := 0; trial < cfg.Trials; trial++ {
		initState := make(dynamo.State, len(cfg.Base.InitState))
		for i, v := range cfg.Base.InitState {
			initState[i] = v * (1 + (rng.Float64()*2-1)*cfg.Perturbation)
		}

		expCfg := cfg.Base
		expCfg.InitState = initState
		exp, err := experiment.Build(r.Registry, expCfg)
		if err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("trial %d: %w", trial, err)
		}

		final := result.Final()
		total := final.Sum()
		results = append(results, MonteCarloResult{
			Trial:      trial,
			Initial:    initState,
			Final:      final,
			FinalTotal: total,
			Persisted:  total >= cfg.Threshold,
		})

		if (trial+1)%10 == 0 {
			r.logger().Debug("monte carlo progress", "done", trial+1, "trials", cfg.Trials)
		}
	}

	return results, nil
}

// MonteCarloSummary condenses a set of trials.
type MonteCarloSummary struct {
	Trials    int
	Persisted int
	MeanFinal float64
	StdFinal  float64
}

func MonteCarloStats(results []MonteCarloResult) MonteCarloSummary {
	s := MonteCarloSummary{Trials: len(results)}
	finals := make([]float64, len(results))
	for i, r := range results {
		finals[i] = r.FinalTotal
		if r.Persisted {
			s.Persisted++
		}
	}
	if len(finals) > 1 {
		s.MeanFinal, s.StdFinal = stat.MeanStdDev(finals, nil)
	} else if len(finals) == 1 {
		s.MeanFinal = finals[0]
	}
	return s
}
