package analysis

import (
	"fmt"
	"strconv"

	"github.com/san-kum/dragonlab/internal/dataset"
	"github.com/san-kum/dragonlab/internal/fit"
)

// DefaultTraits are the columns related pairwise.
var DefaultTraits = []string{
	dataset.ColLength,
	dataset.ColWingspan,
	dataset.ColHeight,
	dataset.ColMass,
	dataset.ColWingArea,
}

// Pair relates trait Y to trait X.
type Pair struct {
	X, Y     string
	N        int
	Pearson  float64
	Spearman float64
	Best     fit.Result
	Err      error
	Figure   string
}

// FigureName is the file name of the scatter plot of a pair.
func FigureName(x, y string) string {
	return fmt.Sprintf("%s_vs_%s_fit.png", y, x)
}

// PairwiseFits relates every pair of cols present in t, taking only rows
// complete across all of them. Pair (i, j) with i < j puts cols[i] on the
// x axis. A pair whose fit fails keeps its correlations and records the
// error.
func PairwiseFits(t *dataset.Table, cols []string, opts ...fit.Option) ([]Pair, error) {
	present := make([]string, 0, len(cols))
	for _, c := range cols {
		if t.Has(c) {
			present = append(present, c)
		}
	}

	complete, err := t.CompleteRows(present...)
	if err != nil {
		return nil, err
	}

	pairs := make([]Pair, 0, len(present)*(len(present)-1)/2)
	for i := 0; i < len(present); i++ {
		for j := i + 1; j < len(present); j++ {
			p := Pair{X: present[i], Y: present[j], Figure: FigureName(present[i], present[j])}

			x, y, err := complete.Pairs(p.X, p.Y)
			if err != nil {
				return nil, err
			}
			p.N = len(x)

			if p.Pearson, err = Pearson(x, y); err != nil {
				p.Err = err
			}
			if p.Spearman, err = Spearman(x, y); err != nil {
				p.Err = err
			}
			if p.Err == nil {
				p.Best, p.Err = fit.SelectBest(x, y, opts...)
			}

			pairs = append(pairs, p)
		}
	}
	return pairs, nil
}

// PairsTable renders pairs with one row each.
func PairsTable(pairs []Pair) *dataset.Table {
	t := dataset.New("x", "y", "n_points", "pearson", "spearman",
		"best_fit_type", "best_fit_r2", "best_fit_eqn", "figure")
	for _, p := range pairs {
		fitType, r2, eqn := "", "", ""
		if p.Err == nil && p.Best.Model != nil {
			fitType = p.Best.Model.Name()
			r2 = dataset.FormatFloat(p.Best.RSquared)
			eqn = p.Best.Equation
		}
		t.AppendRow(p.X, p.Y, strconv.Itoa(p.N),
			dataset.FormatFloat(p.Pearson), dataset.FormatFloat(p.Spearman),
			fitType, r2, eqn, p.Figure)
	}
	return t
}
