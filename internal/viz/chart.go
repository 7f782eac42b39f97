package viz

import (
	"github.com/guptarohit/asciigraph"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Red,
	asciigraph.Yellow,
	asciigraph.Green,
	asciigraph.Blue,
	asciigraph.Magenta,
	asciigraph.Cyan,
}

// Trajectory plots several series sharing one time axis. Each series is
// resampled to width points.
func Trajectory(series [][]float64, legends []string, caption string, width, height int) string {
	if len(series) == 0 || len(series[0]) == 0 {
		return ""
	}

	data := make([][]float64, len(series))
	for i, s := range series {
		data[i] = resample(s, width)
	}

	opts := []asciigraph.Option{
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(seriesColors[:min(len(data), len(seriesColors))]...),
	}
	if len(legends) == len(series) {
		opts = append(opts, asciigraph.SeriesLegends(legends...))
	}
	return asciigraph.PlotMany(data, opts...)
}

func resample(s []float64, n int) []float64 {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n == 1 {
		return s[len(s)-1:]
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = s[i*(len(s)-1)/(n-1)]
	}
	return out
}
