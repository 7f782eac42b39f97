package dynamo

import (
	"context"
	"errors"
	"fmt"
	"math"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func New(dyn System, integrator Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates x0 over [cfg.T0, cfg.T1] and records the state at every
// output time. Steps are clipped so that each output time is hit exactly.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.dyn.StateDim() {
		return nil, fmt.Errorf("%w: state has %d components, system expects %d",
			ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}
	if !x0.IsValid() {
		return nil, ErrInvalidState
	}

	times := cfg.OutputTimes()
	result := &Result{
		States:  make([]State, 0, len(times)),
		Times:   make([]float64, 0, len(times)),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := cfg.T0
	dt := cfg.Dt
	s.record(result, x, t)

	for _, tOut := range times[1:] {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		var err error
		x, dt, err = s.advance(x, t, tOut, dt, cfg, result)
		if err != nil {
			return result, &SimulationError{Step: result.StepsTaken, Time: t, State: x, Wrapped: err}
		}
		t = tOut
		s.record(result, x, t)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (s *Simulator) record(result *Result, x State, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, obs := range s.observers {
		obs.OnSample(x, t)
	}
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)
}

// advance integrates from t to exactly tOut and returns the new state and
// the step size to try next.
func (s *Simulator) advance(x State, t, tOut, dt float64, cfg Config, result *Result) (State, float64, error) {
	maxDt := cfg.MaxDt
	if maxDt <= 0 {
		maxDt = math.Inf(1)
	}

	for t < tOut {
		h := math.Min(dt, tOut-t)
		last := tOut-t <= h

		var newX State
		if cfg.Adaptive {
			var next float64
			var err error
			newX, next, err = s.adaptiveStep(x, t, h, cfg)
			if errors.Is(err, ErrStepRejected) {
				result.Rejected++
				if next < cfg.MinDt {
					return x, dt, ErrStepTooSmall
				}
				dt = next
				continue
			}
			if err != nil {
				return x, dt, err
			}
			if !last {
				dt = math.Max(math.Min(next, maxDt), cfg.MinDt)
			}
		} else {
			newX = s.integrator.Step(s.dyn, x, t, h)
		}

		if !newX.IsValid() {
			return x, dt, ErrInvalidState
		}

		x = newX
		if last {
			t = tOut
		} else {
			t += h
		}
		result.StepsTaken++
	}

	return x, dt, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.T1 <= cfg.T0 {
		return fmt.Errorf("%w: end time %f must be after start time %f", ErrInvalidConfig, cfg.T1, cfg.T0)
	}
	if cfg.Samples < 2 {
		return fmt.Errorf("%w: need at least 2 output samples, got %d", ErrInvalidConfig, cfg.Samples)
	}
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Adaptive && cfg.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be positive for adaptive stepping", ErrInvalidConfig)
	}
	if cfg.MinDt < 0 {
		return fmt.Errorf("%w: min dt must not be negative", ErrInvalidConfig)
	}
	return nil
}

func (s *Simulator) adaptiveStep(x State, t, dt float64, cfg Config) (State, float64, error) {
	if adaptive, ok := s.integrator.(AdaptiveIntegrator); ok {
		return adaptive.StepAdaptive(s.dyn, x, t, dt, cfg.Tolerance)
	}

	// Step doubling for fixed-step integrators.
	x1 := s.integrator.Step(s.dyn, x, t, dt)
	xHalf := s.integrator.Step(s.dyn, x, t, dt/2)
	x2 := s.integrator.Step(s.dyn, xHalf, t+dt/2, dt/2)

	err := x1.Distance(x2)

	if err > cfg.Tolerance {
		return x, dt / 2, ErrStepRejected
	}

	if err < cfg.Tolerance/10 {
		return x2, dt * 2, nil
	}

	return x2, dt, nil
}
