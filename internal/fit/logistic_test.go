package fit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sigmoidSample(smax, k, t0 float64) ([]float64, []float64) {
	x := make([]float64, 11)
	y := make([]float64, 11)
	for i := range x {
		x[i] = float64(i)
		y[i] = smax / (1 + math.Exp(-k*(x[i]-t0)))
	}
	return x, y
}

func TestFitLogisticRecoversParameters(t *testing.T) {
	x, y := sigmoidSample(100, 0.8, 5)

	l, r2, err := FitLogistic(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 100, l.Smax, 1e-2)
	assert.InDelta(t, 0.8, l.K, 1e-3)
	assert.InDelta(t, 5, l.T0, 1e-3)
	assert.InDelta(t, 1.0, r2, 1e-9)
}

func TestFitLogisticWithinBounds(t *testing.T) {
	x := []float64{0, 1, 2, 4, 8}
	y := []float64{1, 2, 4, 7, 8}

	l, _, err := FitLogistic(x, y)
	require.NoError(t, err)
	assert.Greater(t, l.Smax, 0.0)
	assert.LessOrEqual(t, l.Smax, 10*1.1*8)
	assert.Greater(t, l.K, 0.0)
	assert.LessOrEqual(t, l.K, 10.0)
	assert.Greater(t, l.T0, 0.0)
	assert.LessOrEqual(t, l.T0, 16.0)
}

func TestFitLogisticInfeasible(t *testing.T) {
	x := []float64{0, 1, 2}

	_, _, err := FitLogistic(x, []float64{-1, -2, -3})
	assert.ErrorIs(t, err, ErrInfeasible)

	_, _, err = FitLogistic([]float64{-3, -2, -1}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrInfeasible)

	_, _, err = FitLogistic(x, []float64{1, 2, 3}, WithSmaxInit(-5))
	assert.ErrorIs(t, err, ErrInfeasible)
}

func TestFitLogisticBudget(t *testing.T) {
	x, y := sigmoidSample(100, 0.8, 5)

	_, r2, err := FitLogistic(x, y, WithMaxEvaluations(5))
	assert.ErrorIs(t, err, ErrNoConvergence)
	assert.True(t, IsUndefined(r2))
}

func TestLogitClamps(t *testing.T) {
	assert.False(t, math.IsInf(logit(0), 0))
	assert.False(t, math.IsInf(logit(1), 0))
	assert.InDelta(t, 0.3, sigmoid(logit(0.3)), 1e-12)
}
