package fit

import (
	"fmt"
	"math"
)

type candidate struct {
	name string
	fit  func(x, y []float64, opts []Option) (Model, float64, error)
}

func polyCandidate(degree int) candidate {
	return candidate{
		name: fmt.Sprintf("poly%d", degree),
		fit: func(x, y []float64, opts []Option) (Model, float64, error) {
			return FitPolynomial(x, y, degree, opts...)
		},
	}
}

var candidates = []candidate{
	{
		name: "linear",
		fit: func(x, y []float64, opts []Option) (Model, float64, error) {
			return FitLinear(x, y, opts...)
		},
	},
	polyCandidate(2),
	polyCandidate(3),
	polyCandidate(4),
	{
		name: "logistic",
		fit: func(x, y []float64, opts []Option) (Model, float64, error) {
			return FitLogistic(x, y, opts...)
		},
	},
}

// Candidates lists the candidate fit types in evaluation order.
func Candidates() []string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.name
	}
	return names
}

// Attempt is the outcome of fitting one candidate.
type Attempt struct {
	Name   string
	Result Result
	Err    error
}

// Evaluate fits every candidate in order. Failures are recorded on the
// attempt, not returned.
func Evaluate(x, y []float64, opts ...Option) []Attempt {
	attempts := make([]Attempt, 0, len(candidates))
	for _, c := range candidates {
		a := Attempt{Name: c.name}
		m, r2, err := c.fit(x, y, opts)
		if err != nil {
			a.Err = err
		} else {
			a.Result = Result{Model: m, RSquared: r2, Equation: m.Equation()}
		}
		attempts = append(attempts, a)
	}
	return attempts
}

// SelectBest fits every candidate and returns the one with the highest
// R². Earlier candidates win ties. Candidates that fail, or whose R² is
// undefined, are skipped.
func SelectBest(x, y []float64, opts ...Option) (Result, error) {
	if err := validate(x, y); err != nil {
		return Result{}, err
	}

	o := newOptions(opts)

	var (
		best  Result
		found bool
	)
	bestR2 := math.Inf(-1)
	for _, a := range Evaluate(x, y, opts...) {
		if a.Err != nil {
			o.logger.Debug("candidate skipped", "fit", a.Name, "error", a.Err)
			continue
		}
		if IsUndefined(a.Result.RSquared) {
			o.logger.Debug("candidate skipped", "fit", a.Name, "reason", "undefined r2")
			continue
		}
		if a.Result.RSquared > bestR2 {
			best, bestR2, found = a.Result, a.Result.RSquared, true
		}
	}

	if !found {
		return Result{}, ErrNoCandidate
	}
	return best, nil
}
