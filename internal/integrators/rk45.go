package integrators

import (
	"math"

	"github.com/san-kum/dragonlab/internal/dynamo"
)

// DormandPrince is the 5(4) pair. The last stage is evaluated at the
// fifth-order solution and only feeds the error estimate.
var DormandPrince = Tableau{
	Name:  "rk45",
	Order: 5,
	A: [][]float64{
		{},
		{1.0 / 5},
		{3.0 / 40, 9.0 / 40},
		{44.0 / 45, -56.0 / 15, 32.0 / 9},
		{19372.0 / 6561, -25360.0 / 2187, 64448.0 / 6561, -212.0 / 729},
		{9017.0 / 3168, -355.0 / 33, 46732.0 / 5247, 49.0 / 176, -5103.0 / 18656},
		{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84},
	},
	B:    []float64{35.0 / 384, 0, 500.0 / 1113, 125.0 / 192, -2187.0 / 6784, 11.0 / 84, 0},
	C:    []float64{0, 1.0 / 5, 3.0 / 10, 4.0 / 5, 8.0 / 9, 1, 1},
	BHat: []float64{5179.0 / 57600, 0, 7571.0 / 16695, 393.0 / 640, -92097.0 / 339200, 187.0 / 2100, 1.0 / 40},
}

// RK45 is an Explicit Dormand-Prince stepper with step size control.
type RK45 struct {
	*Explicit
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return &RK45{
		Explicit: NewExplicit(DormandPrince),
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

// StepAdaptive returns dynamo.ErrStepRejected together with a smaller step
// when the embedded error estimate exceeds tol. The error of each
// component is taken relative to its magnitude.
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, t, dt, tol float64) (dynamo.State, float64, error) {
	r.evalStages(dyn, x, t, dt)
	xNew := r.combine(x, dt, r.tab.B)

	errMax := 0.0
	for i := range x {
		est := 0.0
		for s := range r.k {
			est += (r.tab.B[s] - r.tab.BHat[s]) * r.k[s][i]
		}
		scale := math.Abs(x[i]) + math.Abs(dt*r.k[0][i]) + 1e-10
		errMax = math.Max(errMax, math.Abs(dt*est)/scale)
	}

	ratio := errMax / tol
	if ratio > 1 || math.IsNaN(ratio) {
		scale := r.minScale
		if !math.IsNaN(ratio) {
			scale = math.Max(r.minScale, r.safety*math.Pow(ratio, -0.25))
		}
		return x, dt * scale, dynamo.ErrStepRejected
	}

	if ratio == 0 {
		return xNew, dt * r.maxScale, nil
	}
	return xNew, dt * math.Min(r.maxScale, r.safety*math.Pow(ratio, -0.2)), nil
}
