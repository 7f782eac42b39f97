package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/dragonlab/internal/dataset"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var ErrTooFew = errors.New("analysis: need at least 2 paired values")

// Pearson is the linear correlation coefficient of x and y. It is NaN
// when either sample is constant.
func Pearson(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return math.NaN(), fmt.Errorf("analysis: x has %d values, y has %d", len(x), len(y))
	}
	if len(x) < 2 {
		return math.NaN(), ErrTooFew
	}
	return stat.Correlation(x, y, nil), nil
}

// Spearman is the Pearson correlation of the ranks of x and y. Tied
// values share the average of their ranks.
func Spearman(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return math.NaN(), fmt.Errorf("analysis: x has %d values, y has %d", len(x), len(y))
	}
	return Pearson(Ranks(x), Ranks(y))
}

// Ranks returns 1-based ranks with ties averaged.
func Ranks(v []float64) []float64 {
	idx := make([]int, len(v))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return v[idx[a]] < v[idx[b]] })

	ranks := make([]float64, len(v))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && v[idx[j+1]] == v[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		i = j + 1
	}
	return ranks
}

// CorrelationMatrix is the Pearson matrix of cols over the rows of t with
// no NA in any of them.
func CorrelationMatrix(t *dataset.Table, cols []string) (*mat.SymDense, error) {
	complete, err := t.CompleteRows(cols...)
	if err != nil {
		return nil, err
	}
	n := complete.Len()
	if n < 2 {
		return nil, fmt.Errorf("%w: %d complete rows", ErrTooFew, n)
	}

	data := mat.NewDense(n, len(cols), nil)
	for j, c := range cols {
		vals, err := complete.Floats(c)
		if err != nil {
			return nil, err
		}
		data.SetCol(j, vals)
	}

	corr := mat.NewSymDense(len(cols), nil)
	stat.CorrelationMatrix(corr, data, nil)
	return corr, nil
}

// MatrixTable renders a correlation matrix with a leading label column.
func MatrixTable(corr *mat.SymDense, cols []string) *dataset.Table {
	t := dataset.New(append([]string{""}, cols...)...)
	row := make([]string, len(cols)+1)
	for i, c := range cols {
		row[0] = c
		for j := range cols {
			row[j+1] = dataset.FormatFloat(corr.At(i, j))
		}
		t.AppendRow(row...)
	}
	return t
}
