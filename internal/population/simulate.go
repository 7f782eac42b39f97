package population

import (
	"context"
	"fmt"

	"github.com/san-kum/dragonlab/internal/dataset"
	"github.com/san-kum/dragonlab/internal/dynamo"
	"github.com/san-kum/dragonlab/internal/integrators"
	"github.com/san-kum/dragonlab/internal/metrics"
)

// DefaultSimConfig integrates over 50 years sampled at 500 points.
func DefaultSimConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.T0 = 0
	cfg.T1 = 50
	cfg.Samples = 500
	return cfg
}

type Options struct {
	// Integrator defaults to adaptive RK45.
	Integrator dynamo.Integrator
	// Sim defaults to DefaultSimConfig when zero.
	Sim       dynamo.Config
	Metrics   []dynamo.Metric
	Observers []dynamo.Observer
}

// DefaultMetrics are the trajectory summaries recorded on every run.
func DefaultMetrics() []dynamo.Metric {
	ms := make([]dynamo.Metric, 0, len(Stages)+3)
	for i, s := range Stages {
		ms = append(ms, metrics.NewPeak("peak_"+s, i))
	}
	return append(ms,
		metrics.NewFinalTotal(),
		metrics.NewGrowthRate(),
		metrics.NewStability(1e9),
	)
}

// Simulate integrates the model from y0 and returns the sampled
// trajectory.
func Simulate(ctx context.Context, p Params, y0 dynamo.State, opts Options) (*dynamo.Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(y0) != len(Stages) {
		return nil, fmt.Errorf("%w: initial state needs %d values, got %d",
			dynamo.ErrDimensionMismatch, len(Stages), len(y0))
	}

	integ := opts.Integrator
	if integ == nil {
		integ = integrators.NewRK45()
	}

	cfg := opts.Sim
	if cfg == (dynamo.Config{}) {
		cfg = DefaultSimConfig()
	}

	sim := dynamo.New(NewModel(p), integ)
	for _, m := range opts.Metrics {
		sim.AddMetric(m)
	}
	for _, o := range opts.Observers {
		sim.AddObserver(o)
	}

	return sim.Run(ctx, y0, cfg)
}

// AdultCount counts rows of t aged adultAge or more. Rows without an age
// are ignored.
func AdultCount(t *dataset.Table, adultAge float64) (int, error) {
	ages, err := t.Floats(dataset.ColAge)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, a := range ages {
		if a >= adultAge {
			n++
		}
	}
	return n, nil
}
