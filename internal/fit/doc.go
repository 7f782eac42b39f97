// Package fit fits growth curves to sparse (x, y) samples and selects the
// best candidate by coefficient of determination.
//
// Candidates are evaluated in a fixed order:
//
//   - linear
//   - polynomial of degree 2, 3 and 4
//   - logistic: y = Smax / (1 + exp(-k(x - t0)))
//
// [SelectBest] keeps the first candidate reaching the highest R²; a later
// candidate must be strictly better to replace it, so simpler models win
// ties. Candidates that fail to fit (too few points, a logistic fit that
// does not converge) are skipped.
//
// When all y values are identical R² is undefined. [RSquared] then reports
// 1 for an exact fit and NaN otherwise; see [IsUndefined].
//
// # Example
//
//	res, err := fit.SelectBest(ages, lengths)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Model.Name(), res.RSquared, res.Equation)
package fit
