package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/dragonlab/internal/dynamo"
)

func TestPeak(t *testing.T) {
	p := NewPeak("peak_A", 1)

	if !math.IsNaN(p.Value()) {
		t.Error("expected NaN before any sample")
	}

	p.Observe(dynamo.State{0, 2}, 0)
	p.Observe(dynamo.State{0, 5}, 1)
	p.Observe(dynamo.State{0, 3}, 2)

	if p.Value() != 5 {
		t.Errorf("expected peak 5, got %f", p.Value())
	}

	p.Reset()
	p.Observe(dynamo.State{0, -1}, 0)
	if p.Value() != -1 {
		t.Errorf("expected peak -1 after reset, got %f", p.Value())
	}
}

func TestPeakTime(t *testing.T) {
	p := NewPeakTime("peak_time_H", 0)
	p.Observe(dynamo.State{1}, 0)
	p.Observe(dynamo.State{4}, 2.5)
	p.Observe(dynamo.State{2}, 5)

	if p.Value() != 2.5 {
		t.Errorf("expected peak at 2.5, got %f", p.Value())
	}
}

func TestFinalTotal(t *testing.T) {
	f := NewFinalTotal()
	f.Observe(dynamo.State{1, 2, 3, 4}, 0)
	f.Observe(dynamo.State{2, 2, 2, 2}, 1)

	if f.Value() != 8 {
		t.Errorf("expected final total 8, got %f", f.Value())
	}
}

func TestGrowthRate(t *testing.T) {
	g := NewGrowthRate()
	g.Observe(dynamo.State{1}, 0)
	g.Observe(dynamo.State{math.E}, 0.5)
	g.Observe(dynamo.State{math.Exp(2)}, 1)

	if math.Abs(g.Value()-2) > 1e-12 {
		t.Errorf("expected growth rate 2, got %f", g.Value())
	}

	g.Reset()
	g.Observe(dynamo.State{1}, 0)
	if !math.IsNaN(g.Value()) {
		t.Error("expected NaN with a single sample")
	}
}

func TestStability(t *testing.T) {
	s := NewStability(10)
	s.Observe(dynamo.State{1, 2}, 0)
	s.Observe(dynamo.State{11, 2}, 1)
	s.Observe(dynamo.State{-0.1, 2}, 2)
	s.Observe(dynamo.State{3, 3}, 3)

	if s.Value() != 0.5 {
		t.Errorf("expected stability 0.5, got %f", s.Value())
	}
}
