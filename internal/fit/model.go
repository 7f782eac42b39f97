package fit

import (
	"fmt"
	"math"
	"strings"
)

// Model is a fitted curve.
type Model interface {
	// Name is the fit type label: linear, poly2..poly4 or logistic.
	Name() string
	Eval(x float64) float64
	Equation() string
}

// Linear is y = Intercept + Slope*x.
type Linear struct {
	Intercept float64
	Slope     float64
}

func (l Linear) Name() string { return "linear" }

func (l Linear) Eval(x float64) float64 { return l.Intercept + l.Slope*x }

func (l Linear) Equation() string {
	return fmt.Sprintf("y = %.4f + %.4f x", l.Intercept, l.Slope)
}

// Polynomial holds coefficients ordered from the constant term up.
type Polynomial struct {
	Coeffs []float64
}

func (p Polynomial) Degree() int { return len(p.Coeffs) - 1 }

func (p Polynomial) Name() string { return fmt.Sprintf("poly%d", p.Degree()) }

// Eval uses Horner's scheme.
func (p Polynomial) Eval(x float64) float64 {
	y := 0.0
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		y = y*x + p.Coeffs[i]
	}
	return y
}

func (p Polynomial) Equation() string {
	terms := make([]string, len(p.Coeffs))
	for i, c := range p.Coeffs {
		terms[i] = fmt.Sprintf("%.4e*x**%d", c, i)
	}
	return "y = " + strings.Join(terms, " + ")
}

// Logistic is y = Smax / (1 + exp(-K*(x - T0))).
type Logistic struct {
	Smax float64
	K    float64
	T0   float64
}

func (l Logistic) Name() string { return "logistic" }

func (l Logistic) Eval(x float64) float64 {
	return l.Smax / (1.0 + math.Exp(-l.K*(x-l.T0)))
}

func (l Logistic) Equation() string {
	return fmt.Sprintf("y = %.4f / (1 + exp(-%.4f*(x - %.4f)))", l.Smax, l.K, l.T0)
}

// Result is a fitted model with its in-sample R² and rendered equation.
type Result struct {
	Model    Model
	RSquared float64
	Equation string
}

// Predict evaluates m at every x.
func Predict(m Model, x []float64) []float64 {
	yhat := make([]float64, len(x))
	for i, v := range x {
		yhat[i] = m.Eval(v)
	}
	return yhat
}
