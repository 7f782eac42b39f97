package fit

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// exactFitTol bounds SS_res, relative to 1+Σy², for a fit of constant data
// to count as exact.
const exactFitTol = 1e-12

// RSquared returns 1 - SS_res/SS_tot. If every y is identical SS_tot is
// zero: the result is 1 when the predictions reproduce y and NaN (undefined)
// otherwise.
func RSquared(y, yhat []float64) float64 {
	if len(y) == 0 || len(y) != len(yhat) {
		return math.NaN()
	}

	var ssRes, sumSq float64
	for i := range y {
		d := y[i] - yhat[i]
		ssRes += d * d
		sumSq += y[i] * y[i]
	}

	if floats.Max(y) == floats.Min(y) {
		if ssRes <= exactFitTol*(1+sumSq) {
			return 1
		}
		return math.NaN()
	}

	mean := stat.Mean(y, nil)
	var ssTot float64
	for _, v := range y {
		d := v - mean
		ssTot += d * d
	}

	return 1 - ssRes/ssTot
}

// IsUndefined reports whether r2 is the undefined sentinel.
func IsUndefined(r2 float64) bool {
	return math.IsNaN(r2)
}
