package fit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// FitPolynomial fits a polynomial of the given degree by ordinary least
// squares and returns it with its R². The degree must be below the number
// of distinct x values.
func FitPolynomial(x, y []float64, degree int, opts ...Option) (Polynomial, float64, error) {
	if err := validate(x, y); err != nil {
		return Polynomial{}, math.NaN(), err
	}
	if degree < 1 {
		return Polynomial{}, math.NaN(), fmt.Errorf("%w: got %d", ErrInvalidDegree, degree)
	}
	if n := distinct(x); degree >= n {
		return Polynomial{}, math.NaN(), fmt.Errorf("%w: degree %d needs at least %d distinct points, got %d",
			ErrTooFewPoints, degree, degree+1, n)
	}

	o := newOptions(opts)
	coeffs, err := leastSquares(x, y, degree, o)
	if err != nil {
		return Polynomial{}, math.NaN(), err
	}

	p := Polynomial{Coeffs: coeffs}
	return p, RSquared(y, Predict(p, x)), nil
}

// FitLinear is FitPolynomial of degree 1.
func FitLinear(x, y []float64, opts ...Option) (Linear, float64, error) {
	p, r2, err := FitPolynomial(x, y, 1, opts...)
	if err != nil {
		return Linear{}, r2, err
	}
	return Linear{Intercept: p.Coeffs[0], Slope: p.Coeffs[1]}, r2, nil
}

// leastSquares solves the Vandermonde system by QR. Columns are scaled to
// unit norm first, as numpy's polyfit does, which keeps degree-4 fits on
// kilogram-scale x usable.
func leastSquares(x, y []float64, degree int, o *options) ([]float64, error) {
	a := vandermonde(x, degree)

	_, cols := a.Dims()
	scale := make([]float64, cols)
	for j := 0; j < cols; j++ {
		col := mat.Col(nil, j, a)
		scale[j] = floats.Norm(col, 2)
		if scale[j] == 0 {
			scale[j] = 1
		}
		for i := range col {
			a.Set(i, j, col[i]/scale[j])
		}
	}

	b := mat.NewVecDense(len(y), y)
	c := mat.NewVecDense(cols, nil)

	qr := new(mat.QR)
	qr.Factorize(a)

	if err := qr.SolveVecTo(c, false, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("%w: %v", ErrSingular, err)
		}
		o.logger.Debug("ill-conditioned polynomial fit", "degree", degree, "condition", float64(cond))
	}

	coeffs := make([]float64, cols)
	for j := range coeffs {
		coeffs[j] = c.AtVec(j) / scale[j]
		if !finite(coeffs[j]) {
			return nil, fmt.Errorf("%w: degree %d coefficient %d is %v", ErrSingular, degree, j, coeffs[j])
		}
	}
	return coeffs, nil
}

func vandermonde(a []float64, degree int) *mat.Dense {
	x := mat.NewDense(len(a), degree+1, nil)
	for i := range a {
		for j, p := 0, 1.0; j <= degree; j, p = j+1, p*a[i] {
			x.Set(i, j, p)
		}
	}
	return x
}
