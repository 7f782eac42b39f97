package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

const (
	smaxBoundFactor = 10.0
	kBound          = 10.0
	t0BoundFactor   = 2.0
)

// FitLogistic fits y = Smax / (1 + exp(-k(x - t0))) by least squares with
// every parameter confined to (0, upper]:
//
//	Smax ≤ 10 × Smax0, k ≤ 10, t0 ≤ 2 × max(x)
//
// Smax0 is 1.1 × max(y) unless overridden with [WithSmaxInit]. The search
// starts at (Smax0, 1, median(x)).
func FitLogistic(x, y []float64, opts ...Option) (Logistic, float64, error) {
	if err := validate(x, y); err != nil {
		return Logistic{}, math.NaN(), err
	}

	o := newOptions(opts)
	smax0 := o.smaxInit
	if smax0 == 0 {
		smax0 = 1.1 * floats.Max(y)
	}

	upper := []float64{smaxBoundFactor * smax0, kBound, t0BoundFactor * floats.Max(x)}
	for i, ub := range upper {
		if !(ub > 0) || !finite(ub) {
			return Logistic{}, math.NaN(), fmt.Errorf("%w: upper bound %d is %v", ErrInfeasible, i, ub)
		}
	}

	start := []float64{smax0, 1.0, median(x)}
	z := make([]float64, len(start))
	for i := range start {
		z[i] = logit(start[i] / upper[i])
	}

	problem := optimize.Problem{
		Func: func(z []float64) float64 {
			l := toLogistic(z, upper)
			var sse float64
			for i := range x {
				d := y[i] - l.Eval(x[i])
				sse += d * d
			}
			if math.IsNaN(sse) {
				return math.Inf(1)
			}
			return sse
		},
	}

	best, used, err := minimize(problem, z, o.maxEvaluations)
	if err != nil {
		return Logistic{}, math.NaN(), err
	}

	// A second pass from the optimum escapes a collapsed simplex.
	if remaining := o.maxEvaluations - used; remaining > 0 {
		if again, _, err := minimize(problem, best.X, remaining); err == nil && again.F <= best.F {
			best = again
		} else if err != nil {
			o.logger.Debug("logistic restart discarded", "error", err)
		}
	}

	l := toLogistic(best.X, upper)
	return l, RSquared(y, Predict(l, x)), nil
}

func minimize(p optimize.Problem, z []float64, budget int) (*optimize.Result, int, error) {
	settings := &optimize.Settings{
		FuncEvaluations: budget,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-15,
			Relative:   1e-12,
			Iterations: 500,
		},
	}

	res, err := optimize.Minimize(p, z, settings, &optimize.NelderMead{})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrNoConvergence, err)
	}
	switch res.Status {
	case optimize.FunctionEvaluationLimit, optimize.IterationLimit, optimize.RuntimeLimit:
		return nil, res.FuncEvaluations, fmt.Errorf("%w: %s after %d evaluations",
			ErrNoConvergence, res.Status, res.FuncEvaluations)
	}
	if !finite(res.F) {
		return nil, res.FuncEvaluations, fmt.Errorf("%w: objective is %v", ErrNoConvergence, res.F)
	}
	return res, res.FuncEvaluations, nil
}

func toLogistic(z, upper []float64) Logistic {
	return Logistic{
		Smax: upper[0] * sigmoid(z[0]),
		K:    upper[1] * sigmoid(z[1]),
		T0:   upper[2] * sigmoid(z[2]),
	}
}

func sigmoid(v float64) float64 { return 1 / (1 + math.Exp(-v)) }

func logit(p float64) float64 {
	p = math.Min(math.Max(p, 1e-9), 1-1e-9)
	return math.Log(p / (1 - p))
}
