package metrics

import (
	"math"

	"github.com/san-kum/dragonlab/internal/dynamo"
)

// FinalTotal is the sum over all compartments at the last sample.
type FinalTotal struct {
	total float64
	seen  bool
}

func NewFinalTotal() *FinalTotal { return &FinalTotal{} }

func (f *FinalTotal) Name() string { return "final_total" }

func (f *FinalTotal) Observe(x dynamo.State, t float64) {
	f.total = x.Sum()
	f.seen = true
}

func (f *FinalTotal) Value() float64 {
	if !f.seen {
		return math.NaN()
	}
	return f.total
}

func (f *FinalTotal) Reset() {
	f.total = 0
	f.seen = false
}

// GrowthRate is the mean exponential growth rate of the total population,
// ln(N(t1)/N(t0)) / (t1 - t0). It is NaN until two samples with a positive
// total have been seen, and -Inf once the population dies out.
type GrowthRate struct {
	n0, n1 float64
	t0, t1 float64
	count  int
}

func NewGrowthRate() *GrowthRate { return &GrowthRate{} }

func (g *GrowthRate) Name() string { return "growth_rate" }

func (g *GrowthRate) Observe(x dynamo.State, t float64) {
	n := x.Sum()
	if g.count == 0 {
		g.n0, g.t0 = n, t
	}
	g.n1, g.t1 = n, t
	g.count++
}

func (g *GrowthRate) Value() float64 {
	if g.count < 2 || g.t1 == g.t0 || !(g.n0 > 0) {
		return math.NaN()
	}
	return math.Log(g.n1/g.n0) / (g.t1 - g.t0)
}

func (g *GrowthRate) Reset() {
	*g = GrowthRate{}
}

// Stability is the fraction of samples in which every compartment stays
// within [0, threshold]. Negative head counts indicate a numerical problem.
type Stability struct {
	threshold  float64
	violations int
	samples    int
}

func NewStability(threshold float64) *Stability {
	return &Stability{threshold: threshold}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(x dynamo.State, t float64) {
	s.samples++
	for _, v := range x {
		if v < 0 || v > s.threshold {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
