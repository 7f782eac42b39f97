package viz

import (
	"fmt"

	"github.com/san-kum/dragonlab/internal/fit"
)

// FitPreview draws the sample as 2x2 dot markers and the fitted model as
// a line, on a width×height character canvas, followed by the axis ranges.
func FitPreview(x, y []float64, m fit.Model, width, height int) string {
	if len(x) == 0 || len(x) != len(y) || width <= 0 || height <= 0 {
		return ""
	}

	xmin, xmax := bounds(x)
	var xs, ys []float64
	if m != nil {
		xs, ys = fit.Dense(m, xmin, xmax, width*2)
	}

	ymin, ymax := bounds(y)
	for _, v := range ys {
		if finite(v) {
			ymin, ymax = min(ymin, v), max(ymax, v)
		}
	}

	c := NewCanvas(width, height, xmin, xmax, ymin, ymax)
	c.Polyline(xs, ys)
	for i := range x {
		c.Marker(x[i], y[i])
	}

	return c.String() + Subtle.Render(fmt.Sprintf("x ∈ [%s, %s]  y ∈ [%s, %s]",
		FormatValue(xmin), FormatValue(xmax), FormatValue(ymin), FormatValue(ymax)))
}

func bounds(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v {
		lo, hi = min(lo, x), max(hi, x)
	}
	return lo, hi
}

// PhasePlot draws a trajectory through the points (x[i], y[i]) and marks
// its starting point with a 2x2 dot block.
func PhasePlot(x, y []float64, width, height int) string {
	if len(x) == 0 || len(x) != len(y) || width <= 0 || height <= 0 {
		return ""
	}
	xmin, xmax := bounds(x)
	ymin, ymax := bounds(y)

	c := NewCanvas(width, height, xmin, xmax, ymin, ymax)
	c.Polyline(x, y)
	c.Marker(x[0], y[0])

	return c.String() + Subtle.Render(fmt.Sprintf("x ∈ [%s, %s]  y ∈ [%s, %s]",
		FormatValue(xmin), FormatValue(xmax), FormatValue(ymin), FormatValue(ymax)))
}
