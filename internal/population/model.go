// Package population is a four-stage model of a dragon population:
// hatchlings (H), yearlings (Y), rising juveniles (R) and adults (A).
//
//	dH/dt = b·g·A − (dh+σH)·H
//	dY/dt = σH·H − (dy+σY)·Y
//	dR/dt = σY·Y − (dr+σR)·R
//	dA/dt = σR·R − da·A
//
// b is adult fecundity, g egg survival, σ the maturation rates and d the
// per-stage death rates, all per year.
package population

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/dragonlab/internal/dynamo"
	"gonum.org/v1/gonum/mat"
)

// Compartment indices.
const (
	H = iota
	Y
	R
	A
)

// Stages names the compartments in state order.
var Stages = []string{"H", "Y", "R", "A"}

var (
	ErrDegenerate    = errors.New("population: R0 denominator is zero")
	ErrInvalidParams = errors.New("population: invalid parameters")
	ErrUnknownParam  = errors.New("population: unknown parameter")
)

type Params struct {
	B      float64 `yaml:"b" json:"b"`
	G      float64 `yaml:"g" json:"g"`
	SigmaH float64 `yaml:"sigma_h" json:"sigma_h"`
	SigmaY float64 `yaml:"sigma_y" json:"sigma_y"`
	SigmaR float64 `yaml:"sigma_r" json:"sigma_r"`
	DH     float64 `yaml:"d_h" json:"d_h"`
	DY     float64 `yaml:"d_y" json:"d_y"`
	DR     float64 `yaml:"d_r" json:"d_r"`
	DA     float64 `yaml:"d_a" json:"d_a"`
}

func DefaultParams() Params {
	return Params{
		B:      4.0,
		G:      0.2,
		SigmaH: 1.0,
		SigmaY: 1.0 / 3.0,
		SigmaR: 1.0 / 4.0,
		DH:     0.25,
		DY:     0.10,
		DR:     0.10,
		DA:     0.50,
	}
}

// DefaultInitial is the starting head count [H, Y, R, A].
func DefaultInitial() dynamo.State {
	return dynamo.State{10, 3, 1, 0}
}

func (p *Params) fields() map[string]*float64 {
	return map[string]*float64{
		"b":       &p.B,
		"g":       &p.G,
		"sigma_h": &p.SigmaH,
		"sigma_y": &p.SigmaY,
		"sigma_r": &p.SigmaR,
		"d_h":     &p.DH,
		"d_y":     &p.DY,
		"d_r":     &p.DR,
		"d_a":     &p.DA,
	}
}

// Names lists the parameter names accepted by Set, sorted.
func Names() []string {
	var p Params
	names := make([]string, 0, 9)
	for n := range p.fields() {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Set assigns a parameter by name.
func (p *Params) Set(name string, v float64) error {
	f, ok := p.fields()[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParam, name)
	}
	*f = v
	return nil
}

// Map returns the parameters keyed by name.
func (p Params) Map() map[string]float64 {
	out := make(map[string]float64, 9)
	for n, f := range p.fields() {
		out[n] = *f
	}
	return out
}

// Validate rejects negative or non-finite rates.
func (p Params) Validate() error {
	for n, f := range p.fields() {
		if *f < 0 || math.IsNaN(*f) || math.IsInf(*f, 0) {
			return fmt.Errorf("%w: %s = %v", ErrInvalidParams, n, *f)
		}
	}
	return nil
}

// Model is the stage-structured right-hand side.
type Model struct {
	p Params
}

func NewModel(p Params) *Model {
	return &Model{p: p}
}

func (m *Model) StateDim() int { return 4 }

func (m *Model) Params() Params { return m.p }

func (m *Model) Derive(x dynamo.State, t float64) dynamo.State {
	p := m.p
	return dynamo.State{
		p.B*p.G*x[A] - (p.DH+p.SigmaH)*x[H],
		p.SigmaH*x[H] - (p.DY+p.SigmaY)*x[Y],
		p.SigmaY*x[Y] - (p.DR+p.SigmaR)*x[R],
		p.SigmaR*x[R] - p.DA*x[A],
	}
}

// R0 is the net reproductive ratio: the expected number of hatchlings one
// hatchling produces over its lifetime.
func R0(p Params) (float64, error) {
	den := (p.DH + p.SigmaH) * (p.DY + p.SigmaY) * (p.DR + p.SigmaR) * p.DA
	if den == 0 {
		return math.NaN(), ErrDegenerate
	}
	return p.B * p.G * p.SigmaH * p.SigmaY * p.SigmaR / den, nil
}

// Jacobian returns the constant system matrix of the linear model.
func Jacobian(p Params) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		-(p.DH + p.SigmaH), 0, 0, p.B * p.G,
		p.SigmaH, -(p.DY + p.SigmaY), 0, 0,
		0, p.SigmaY, -(p.DR + p.SigmaR), 0,
		0, 0, p.SigmaR, -p.DA,
	})
}

// AsymptoticGrowthRate is the dominant eigenvalue of the system matrix,
// the long-run exponential growth rate. It is positive exactly when
// R0 > 1.
func AsymptoticGrowthRate(p Params) (float64, error) {
	var eig mat.Eigen
	if ok := eig.Factorize(Jacobian(p), mat.EigenNone); !ok {
		return math.NaN(), fmt.Errorf("population: eigendecomposition failed")
	}

	best := math.Inf(-1)
	for _, v := range eig.Values(nil) {
		best = math.Max(best, real(v))
	}
	return best, nil
}
