// Package analysis relates the traits of the dataset to each other and
// inspects population trajectories.
//
//   - [Pearson], [Spearman]: correlation coefficients
//   - [CorrelationMatrix]: Pearson matrix over complete rows
//   - [PairwiseFits]: correlations plus best-fit selection for every
//     pair of traits
//   - [ParameterScan]: R0 and asymptotic growth over a parameter range
//   - [PhasePortrait]: two compartments of a run plotted against each other
package analysis
