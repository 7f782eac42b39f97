// Package experiment wires a population run together: integrator lookup,
// metrics and the simulation config.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/dragonlab/internal/dynamo"
	"github.com/san-kum/dragonlab/internal/population"
)

type Config struct {
	Integrator string
	Params     population.Params
	InitState  []float64
	Sim        dynamo.Config
}

type Experiment struct {
	cfg        Config
	integrator dynamo.Integrator
	metrics    []dynamo.Metric
	observers  []dynamo.Observer
}

func New(cfg Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Build resolves the config's integrator in r and attaches the default
// metrics.
func Build(r *Registry, cfg Config) (*Experiment, error) {
	integ, err := r.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}
	e := New(cfg)
	if err := e.Setup(integ, r.DefaultMetrics()); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Experiment) Setup(integrator dynamo.Integrator, metrics []dynamo.Metric) error {
	if integrator == nil {
		return fmt.Errorf("experiment: nil integrator")
	}
	e.integrator = integrator
	e.metrics = metrics
	return nil
}

// AddObserver registers o for every recorded sample.
func (e *Experiment) AddObserver(o dynamo.Observer) {
	e.observers = append(e.observers, o)
}

func (e *Experiment) Config() Config { return e.cfg }

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	if e.integrator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	x0 := make(dynamo.State, len(e.cfg.InitState))
	copy(x0, e.cfg.InitState)

	return population.Simulate(ctx, e.cfg.Params, x0, population.Options{
		Integrator: e.integrator,
		Sim:        e.cfg.Sim,
		Metrics:    e.metrics,
		Observers:  e.observers,
	})
}
