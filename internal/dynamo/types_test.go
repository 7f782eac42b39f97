package dynamo

import (
	"math"
	"testing"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"zeros", State{0.0, 0.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestState_Distance(t *testing.T) {
	tests := []struct {
		a, b     State
		expected float64
	}{
		{State{3, 4}, State{0, 0}, 5.0},
		{State{1, 1, 1, 1}, State{0, 0, 0, 0}, 2.0},
		{State{2, 2}, State{2, 2}, 0.0},
	}

	for _, tt := range tests {
		if got := tt.a.Distance(tt.b); math.Abs(got-tt.expected) > 1e-10 {
			t.Errorf("Distance(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.expected)
		}
	}
}

func TestState_CloneAndSum(t *testing.T) {
	a := State{1, 2, 3}
	c := a.Clone()
	c[0] = 10

	if a[0] != 1 {
		t.Errorf("Clone shares storage: %v", a)
	}
	if a.Sum() != 6 {
		t.Errorf("Sum failed: got %v", a.Sum())
	}
}

func TestConfig_OutputTimes(t *testing.T) {
	cfg := Config{T0: 0, T1: 50, Samples: 6}
	times := cfg.OutputTimes()
	expected := []float64{0, 10, 20, 30, 40, 50}

	if len(times) != len(expected) {
		t.Fatalf("expected %d times, got %d", len(expected), len(times))
	}
	for i := range expected {
		if math.Abs(times[i]-expected[i]) > 1e-12 {
			t.Errorf("times[%d] = %f, want %f", i, times[i], expected[i])
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Dt <= 0 {
		t.Error("DefaultConfig has invalid Dt")
	}
	if cfg.T1 <= cfg.T0 {
		t.Error("DefaultConfig has invalid span")
	}
	if cfg.Tolerance <= 0 {
		t.Error("DefaultConfig has invalid Tolerance")
	}
}

func TestResult_Column(t *testing.T) {
	r := &Result{States: []State{{1, 2}, {3, 4}}}
	col := r.Column(1)
	if col[0] != 2 || col[1] != 4 {
		t.Errorf("Column(1) = %v, want [2 4]", col)
	}
	if (&Result{}).Final() != nil {
		t.Error("expected nil final state for empty result")
	}
}

func TestSimulationError(t *testing.T) {
	err := &SimulationError{Time: 1.5, Step: 150, Wrapped: ErrInvalidState}
	expected := "step 150 (t=1.5000): dynamo: invalid state (NaN or Inf detected)"
	if err.Error() != expected {
		t.Errorf("SimulationError.Error() = %q, want %q", err.Error(), expected)
	}
}
