// Package viz renders pipeline results in the terminal.
//
//   - [Table]: styled result tables (lipgloss)
//   - [Trajectory]: multi-series line charts of a run (asciigraph)
//   - [FitPreview]: braille scatter of a sample with its fitted curve
//   - [SparklineChart]: one-line trend of a series
//
// Colors come from the active [Theme]; see [ThemeNames].
package viz
