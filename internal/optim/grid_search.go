// Package optim searches population parameters on a grid.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/dragonlab/internal/dynamo"
	"github.com/san-kum/dragonlab/internal/experiment"
	"github.com/san-kum/dragonlab/internal/population"
)

var ErrNoFeasible = errors.New("optim: no parameter set could be evaluated")

// Objective scores a finished run; smaller is better. NaN scores are
// discarded.
type Objective func(cfg experiment.Config, res *dynamo.Result) float64

// MetricObjective scores a run by one of its recorded metrics.
func MetricObjective(name string) Objective {
	return func(_ experiment.Config, res *dynamo.Result) float64 {
		v, ok := res.Metrics[name]
		if !ok {
			return math.NaN()
		}
		return v
	}
}

// AbsLogR0 scores how far a parameter set is from exact replacement,
// |ln R0|.
func AbsLogR0(cfg experiment.Config, _ *dynamo.Result) float64 {
	r0, err := population.R0(cfg.Params)
	if err != nil || r0 <= 0 {
		return math.NaN()
	}
	return math.Abs(math.Log(r0))
}

// Objectives maps the names accepted on the command line.
func Objectives() map[string]Objective {
	return map[string]Objective{
		"abs_log_r0":  AbsLogR0,
		"final_total": MetricObjective("final_total"),
		"neg_growth":  func(c experiment.Config, r *dynamo.Result) float64 { return -MetricObjective("growth_rate")(c, r) },
		"growth_rate": MetricObjective("growth_rate"),
	}
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = lo + (hi-lo)*float64(i)/float64(n-1)
	}
	return out
}

// Result is the outcome of a search.
type Result struct {
	Params    map[string]float64
	Score     float64
	Evaluated int
	Failed    int
}

// Search runs every point of the grid and returns the lowest-scoring
// parameter set. Points whose experiment fails to build or run count as
// failed and are skipped.
func (g *GridSearch) Search(
	ctx context.Context,
	buildExperiment func(params map[string]float64) (*experiment.Experiment, error),
	objective Objective,
) (*Result, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, fmt.Errorf("optim: %d parameter names but %d ranges", len(g.paramNames), len(g.ranges))
	}

	res := &Result{Score: math.Inf(1)}
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), buildExperiment, objective, res); err != nil {
		return nil, err
	}
	if res.Params == nil {
		return res, ErrNoFeasible
	}
	return res, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	buildExperiment func(map[string]float64) (*experiment.Experiment, error),
	objective Objective,
	best *Result,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		exp, err := buildExperiment(current)
		if err != nil {
			best.Failed++
			return nil
		}

		result, err := exp.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			best.Failed++
			return nil
		}
		best.Evaluated++

		val := objective(exp.Config(), result)
		if val < best.Score {
			best.Score = val
			best.Params = make(map[string]float64, len(current))
			for k, v := range current {
				best.Params[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, buildExperiment, objective, best); err != nil {
			return err
		}
	}
	return nil
}

// PopulationBuilder returns a buildExperiment func that applies the grid
// values on top of base.
func PopulationBuilder(r *experiment.Registry, base experiment.Config) func(map[string]float64) (*experiment.Experiment, error) {
	return func(values map[string]float64) (*experiment.Experiment, error) {
		cfg := base
		for name, v := range values {
			if err := cfg.Params.Set(name, v); err != nil {
				return nil, err
			}
		}
		return experiment.Build(r, cfg)
	}
}
