package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/dragonlab/internal/dynamo"
)

func TestRK45AcceptsAndGrows(t *testing.T) {
	x, newDt, err := NewRK45().StepAdaptive(&oscillator{}, dynamo.State{1.0, 0.0}, 0, 0.01, 1e-6)

	if err != nil {
		t.Fatalf("StepAdaptive returned error: %v", err)
	}
	if !x.IsValid() {
		t.Error("StepAdaptive produced invalid state")
	}
	if newDt <= 0.01 {
		t.Errorf("expected step growth after an accurate step, got %f", newDt)
	}
}

func TestRK45RejectsLargeStep(t *testing.T) {
	x, newDt, err := NewRK45().StepAdaptive(&decay{rate: 5}, dynamo.State{1.0}, 0, 2.0, 1e-10)

	if !errors.Is(err, dynamo.ErrStepRejected) {
		t.Fatalf("expected ErrStepRejected, got %v", err)
	}
	if x[0] != 1.0 {
		t.Errorf("rejected step must return the original state, got %v", x)
	}
	if newDt >= 2.0 || newDt < 2.0*0.2 {
		t.Errorf("expected step shrunk by at most 5x, got %f", newDt)
	}
}

func TestRK45AdaptiveDecay(t *testing.T) {
	integ := NewRK45()
	dyn := &decay{rate: 0.75}

	x := dynamo.State{100}
	tNow, dt := 0.0, 0.1
	rejected := 0
	for tNow < 10 {
		if tNow+dt > 10 {
			dt = 10 - tNow
		}
		next, proposed, err := integ.StepAdaptive(dyn, x, tNow, dt, 1e-10)
		if errors.Is(err, dynamo.ErrStepRejected) {
			rejected++
			dt = proposed
			continue
		}
		x, tNow, dt = next, tNow+dt, proposed
	}

	want := 100 * math.Exp(-7.5)
	if math.Abs(x[0]-want)/want > 1e-6 {
		t.Errorf("expected %.8f, got %.8f (%d rejected)", want, x[0], rejected)
	}
}

func TestRK45NaNRejected(t *testing.T) {
	_, newDt, err := NewRK45().StepAdaptive(&decay{rate: 1}, dynamo.State{math.NaN()}, 0, 1, 1e-6)
	if !errors.Is(err, dynamo.ErrStepRejected) {
		t.Fatalf("expected ErrStepRejected, got %v", err)
	}
	if newDt != 0.2 {
		t.Errorf("expected minimum scale step 0.2, got %f", newDt)
	}
}

func TestRK45FifthOrderStep(t *testing.T) {
	x := NewRK45().Step(&decay{rate: 1}, dynamo.State{1}, 0, 0.1)
	if math.Abs(x[0]-math.Exp(-0.1)) > 1e-9 {
		t.Errorf("expected %.12f, got %.12f", math.Exp(-0.1), x[0])
	}
}
