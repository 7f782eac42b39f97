package metrics

import (
	"math"

	"github.com/san-kum/dragonlab/internal/dynamo"
)

// Peak tracks the largest value one state component reaches.
type Peak struct {
	name  string
	index int
	max   float64
	seen  bool
}

func NewPeak(name string, index int) *Peak {
	return &Peak{name: name, index: index}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(x dynamo.State, t float64) {
	if p.index >= len(x) {
		return
	}
	if !p.seen || x[p.index] > p.max {
		p.max = x[p.index]
		p.seen = true
	}
}

func (p *Peak) Value() float64 {
	if !p.seen {
		return math.NaN()
	}
	return p.max
}

func (p *Peak) Reset() {
	p.max = 0
	p.seen = false
}

// PeakTime reports when a component reached its maximum.
type PeakTime struct {
	name  string
	index int
	max   float64
	at    float64
	seen  bool
}

func NewPeakTime(name string, index int) *PeakTime {
	return &PeakTime{name: name, index: index}
}

func (p *PeakTime) Name() string { return p.name }

func (p *PeakTime) Observe(x dynamo.State, t float64) {
	if p.index >= len(x) {
		return
	}
	if !p.seen || x[p.index] > p.max {
		p.max, p.at, p.seen = x[p.index], t, true
	}
}

func (p *PeakTime) Value() float64 {
	if !p.seen {
		return math.NaN()
	}
	return p.at
}

func (p *PeakTime) Reset() {
	p.max, p.at, p.seen = 0, 0, false
}
