package fit

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

func validate(x, y []float64) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d x values, %d y values", ErrLengthMismatch, len(x), len(y))
	}
	if len(x) < 2 {
		return fmt.Errorf("%w: got %d", ErrEmptySample, len(x))
	}
	for i := range x {
		if !finite(x[i]) || !finite(y[i]) {
			return fmt.Errorf("%w: point %d", ErrNonFinite, i)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func distinct(x []float64) int {
	s := sortedCopy(x)
	n := 0
	for i, v := range s {
		if i == 0 || v != s[i-1] {
			n++
		}
	}
	return n
}

func median(x []float64) float64 {
	s := sortedCopy(x)
	mid := len(s) / 2
	if len(s)%2 == 1 {
		return s[mid]
	}
	return (s[mid-1] + s[mid]) / 2
}

func sortedCopy(x []float64) []float64 {
	s := make([]float64, len(x))
	copy(s, x)
	sort.Float64s(s)
	return s
}

// Dense evaluates m at n evenly spaced points on [xmin, xmax].
func Dense(m Model, xmin, xmax float64, n int) ([]float64, []float64) {
	if n < 2 {
		n = 2
	}
	xs := floats.Span(make([]float64, n), xmin, xmax)
	return xs, Predict(m, xs)
}
