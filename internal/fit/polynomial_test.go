package fit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitLinearExact(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{1, 3, 5, 7, 9}

	l, r2, err := FitLinear(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, l.Intercept, 1e-9)
	assert.InDelta(t, 2.0, l.Slope, 1e-9)
	assert.InDelta(t, 1.0, r2, 1e-9)
}

func TestFitPolynomialQuadratic(t *testing.T) {
	x := []float64{-2, -1, 0, 1, 2, 3}
	y := make([]float64, len(x))
	for i, v := range x {
		y[i] = 0.5 - v + 2*v*v
	}

	p, r2, err := FitPolynomial(x, y, 2)
	require.NoError(t, err)
	require.Len(t, p.Coeffs, 3)
	assert.InDelta(t, 0.5, p.Coeffs[0], 1e-9)
	assert.InDelta(t, -1.0, p.Coeffs[1], 1e-9)
	assert.InDelta(t, 2.0, p.Coeffs[2], 1e-9)
	assert.InDelta(t, 1.0, r2, 1e-9)
	assert.Equal(t, "poly2", p.Name())
}

func TestFitPolynomialLargeX(t *testing.T) {
	// Kilogram-scale x with a quartic stays solvable.
	x := []float64{10, 200, 1500, 8000, 20000, 35000}
	y := []float64{1, 3, 7, 12, 15, 16}

	_, r2, err := FitPolynomial(x, y, 4)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(r2))
	assert.Greater(t, r2, 0.9)
}

func TestFitPolynomialDegree(t *testing.T) {
	x := []float64{0, 1, 2}
	y := []float64{1, 2, 5}

	tests := []struct {
		name   string
		x      []float64
		degree int
		err    error
	}{
		{"zero degree", x, 0, ErrInvalidDegree},
		{"degree equals points", x, 3, ErrTooFewPoints},
		{"degree above points", x, 4, ErrTooFewPoints},
		{"repeated x", []float64{1, 1, 2}, 2, ErrTooFewPoints},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, r2, err := FitPolynomial(tt.x, y, tt.degree)
			assert.ErrorIs(t, err, tt.err)
			assert.True(t, IsUndefined(r2))
		})
	}

	_, _, err := FitPolynomial(x, y, 2)
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		err  error
	}{
		{"length mismatch", []float64{1, 2}, []float64{1}, ErrLengthMismatch},
		{"single point", []float64{1}, []float64{1}, ErrEmptySample},
		{"empty", nil, nil, ErrEmptySample},
		{"nan", []float64{1, math.NaN()}, []float64{1, 2}, ErrNonFinite},
		{"inf", []float64{1, 2}, []float64{math.Inf(1), 2}, ErrNonFinite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, validate(tt.x, tt.y), tt.err)
		})
	}
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}))
	assert.Equal(t, 2.5, median([]float64{4, 1, 3, 2}))
}

func TestDense(t *testing.T) {
	xs, ys := Dense(Linear{Intercept: 1, Slope: 2}, 0, 10, 11)
	require.Len(t, xs, 11)
	require.Len(t, ys, 11)
	assert.Equal(t, 0.0, xs[0])
	assert.Equal(t, 10.0, xs[10])
	assert.InDelta(t, 21.0, ys[10], 1e-12)
}

func TestEquations(t *testing.T) {
	assert.Equal(t, "y = 1.0000 + 2.0000 x", Linear{Intercept: 1, Slope: 2}.Equation())
	assert.Equal(t,
		"y = 1.0000e+00*x**0 + 2.0000e+00*x**1 + 3.0000e+00*x**2",
		Polynomial{Coeffs: []float64{1, 2, 3}}.Equation())
	assert.Equal(t,
		"y = 100.0000 / (1 + exp(-0.8000*(x - 5.0000)))",
		Logistic{Smax: 100, K: 0.8, T0: 5}.Equation())
}
