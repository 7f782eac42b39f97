package fit

import "errors"

var (
	// ErrLengthMismatch indicates x and y of different lengths.
	ErrLengthMismatch = errors.New("fit: x and y lengths differ")

	// ErrEmptySample indicates fewer than two usable points.
	ErrEmptySample = errors.New("fit: need at least 2 points")

	// ErrNonFinite indicates a NaN or Inf in the sample.
	ErrNonFinite = errors.New("fit: sample contains NaN or Inf")

	// ErrInvalidDegree indicates a polynomial degree below 1.
	ErrInvalidDegree = errors.New("fit: polynomial degree must be at least 1")

	// ErrTooFewPoints indicates a polynomial degree not below the number
	// of distinct x values.
	ErrTooFewPoints = errors.New("fit: too few points for degree")

	// ErrSingular indicates a least squares system without a finite solution.
	ErrSingular = errors.New("fit: singular least squares system")

	// ErrInfeasible indicates logistic bounds that admit no parameters,
	// e.g. a non-positive max(y) or max(x).
	ErrInfeasible = errors.New("fit: logistic bounds are infeasible")

	// ErrNoConvergence indicates the logistic optimizer stopped without
	// converging within its evaluation budget.
	ErrNoConvergence = errors.New("fit: logistic fit did not converge")

	// ErrNoCandidate indicates that no candidate produced a defined R².
	ErrNoCandidate = errors.New("fit: no candidate model could be fitted")
)
