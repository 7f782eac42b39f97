// Package integrators implements explicit Runge-Kutta schemes from their
// Butcher tableaus: forward Euler, classic RK4 and the adaptive
// Dormand-Prince 5(4) pair.
package integrators

import "github.com/san-kum/dragonlab/internal/dynamo"

// Tableau is an explicit Runge-Kutta scheme in Butcher form. A is
// strictly lower triangular: row i weights the stages before stage i.
type Tableau struct {
	Name  string
	Order int
	A     [][]float64
	B     []float64
	C     []float64
	// BHat weights the embedded lower-order solution; nil when the
	// scheme has none.
	BHat []float64
}

func (tb *Tableau) Stages() int { return len(tb.B) }

// Explicit steps a system with a fixed tableau. Stage buffers are reused
// between steps, so an Explicit must not be shared between goroutines.
type Explicit struct {
	tab     Tableau
	k       []dynamo.State
	scratch dynamo.State
}

func NewExplicit(tab Tableau) *Explicit {
	return &Explicit{tab: tab}
}

func (e *Explicit) Tableau() Tableau { return e.tab }

func (e *Explicit) resize(n int) {
	if len(e.scratch) == n && len(e.k) == e.tab.Stages() {
		return
	}
	e.k = make([]dynamo.State, e.tab.Stages())
	for i := range e.k {
		e.k[i] = make(dynamo.State, n)
	}
	e.scratch = make(dynamo.State, n)
}

// evalStages fills e.k with the stage derivatives of one step.
func (e *Explicit) evalStages(dyn dynamo.System, x dynamo.State, t, dt float64) {
	e.resize(len(x))
	for s := range e.k {
		copy(e.scratch, x)
		for j, a := range e.tab.A[s] {
			if a == 0 {
				continue
			}
			for i := range e.scratch {
				e.scratch[i] += dt * a * e.k[j][i]
			}
		}
		copy(e.k[s], dyn.Derive(e.scratch, t+e.tab.C[s]*dt))
	}
}

// combine returns x + dt·Σ w_s k_s.
func (e *Explicit) combine(x dynamo.State, dt float64, w []float64) dynamo.State {
	out := x.Clone()
	for s, ws := range w {
		if ws == 0 {
			continue
		}
		for i := range out {
			out[i] += dt * ws * e.k[s][i]
		}
	}
	return out
}

func (e *Explicit) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	e.evalStages(dyn, x, t, dt)
	return e.combine(x, dt, e.tab.B)
}

var EulerTableau = Tableau{
	Name:  "euler",
	Order: 1,
	A:     [][]float64{{}},
	B:     []float64{1},
	C:     []float64{0},
}

var RK4Tableau = Tableau{
	Name:  "rk4",
	Order: 4,
	A: [][]float64{
		{},
		{1.0 / 2},
		{0, 1.0 / 2},
		{0, 0, 1},
	},
	B: []float64{1.0 / 6, 1.0 / 3, 1.0 / 3, 1.0 / 6},
	C: []float64{0, 1.0 / 2, 1.0 / 2, 1},
}

func NewEuler() *Explicit { return NewExplicit(EulerTableau) }

func NewRK4() *Explicit { return NewExplicit(RK4Tableau) }
