package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// State is the vector of compartment values of a system at one instant.
type State []float64

func (s State) Clone() State {
	return append(State(nil), s...)
}

// IsValid reports whether every component is finite.
func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Sum returns the sum of all components, e.g. the total head count of a
// stage-structured population.
func (s State) Sum() float64 { return floats.Sum(s) }

// Distance is the Euclidean distance between two states of equal length.
func (s State) Distance(other State) float64 {
	return floats.Distance(s, other, 2)
}

// System is an autonomous or time-dependent ODE right-hand side.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

// AdaptiveIntegrator advances one step under error control. It returns the
// new state, the proposed size of the next step and ErrStepRejected when the
// step must be retried with the proposed (smaller) size.
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, t, dt, tol float64) (State, float64, error)
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnSample(x State, t float64)
}

// Config describes an integration from T0 to T1 sampled at Samples evenly
// spaced output times (both ends included).
type Config struct {
	T0        float64
	T1        float64
	Samples   int
	Dt        float64
	Tolerance float64
	MaxDt     float64
	MinDt     float64
	Adaptive  bool
}

func DefaultConfig() Config {
	return Config{
		T0:        0,
		T1:        50,
		Samples:   500,
		Dt:        0.01,
		Tolerance: 1e-6,
		MaxDt:     1.0,
		MinDt:     1e-10,
		Adaptive:  true,
	}
}

// OutputTimes returns the sampling grid of the config.
func (c Config) OutputTimes() []float64 {
	if c.Samples == 1 {
		return []float64{c.T0}
	}
	times := make([]float64, c.Samples)
	span := c.T1 - c.T0
	for i := range times {
		times[i] = c.T0 + span*float64(i)/float64(c.Samples-1)
	}
	times[len(times)-1] = c.T1
	return times
}

type Result struct {
	States     []State
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Rejected   int
}

// Column extracts component idx of every recorded state.
func (r *Result) Column(idx int) []float64 {
	col := make([]float64, len(r.States))
	for i, s := range r.States {
		if idx < len(s) {
			col[i] = s[idx]
		}
	}
	return col
}

// Final returns the last recorded state or nil for an empty result.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}
