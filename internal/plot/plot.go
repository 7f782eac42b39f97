// Package plot writes the pipeline's PNG figures.
package plot

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/san-kum/dragonlab/internal/fit"
	"gonum.org/v1/gonum/mat"
	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const curvePoints = 200

var (
	dataColor    = color.RGBA{R: 20, G: 20, B: 20, A: 255}
	scatterColor = color.RGBA{R: 65, G: 105, B: 225, A: 200}
	primaryColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	accentColor  = color.RGBA{R: 255, G: 127, B: 14, A: 255}
	stagePalette = []color.Color{
		color.RGBA{R: 31, G: 119, B: 180, A: 255},
		color.RGBA{R: 255, G: 127, B: 14, A: 255},
		color.RGBA{R: 44, G: 160, B: 44, A: 255},
		color.RGBA{R: 214, G: 39, B: 40, A: 255},
		color.RGBA{R: 148, G: 103, B: 189, A: 255},
	}
)

// Title turns a column name like "length_m" into "Length M".
func Title(col string) string {
	words := strings.Fields(strings.ReplaceAll(col, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func points(x, y []float64) plotter.XYs {
	xys := make(plotter.XYs, 0, len(x))
	for i := range x {
		if finite(x[i]) && finite(y[i]) {
			xys = append(xys, plotter.XY{X: x[i], Y: y[i]})
		}
	}
	return xys
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func bounds(x []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range x {
		if finite(v) {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	return lo, hi
}

func curve(m fit.Model, xmin, xmax float64, c color.Color, dashed bool) (*plotter.Line, error) {
	xs, ys := fit.Dense(m, xmin, xmax, curvePoints)
	l, err := plotter.NewLine(points(xs, ys))
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(2)
	if dashed {
		l.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	}
	return l, nil
}

func scatter(x, y []float64, c color.Color) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(points(x, y))
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = c
	s.GlyphStyle.Radius = vg.Points(3)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	return s, nil
}

func save(p *gplot.Plot, w, h vg.Length, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Growth plots a trait against age with its polynomial fit and, when
// logistic is not nil, the logistic fit dashed on top.
func Growth(path, trait string, age, y []float64, poly fit.Model, r2 float64, logistic fit.Model) error {
	p := gplot.New()
	p.Title.Text = Title(trait) + " vs Age"
	p.X.Label.Text = "Age (years)"
	p.Y.Label.Text = Title(trait)
	p.Add(plotter.NewGrid())

	s, err := scatter(age, y, dataColor)
	if err != nil {
		return err
	}
	p.Add(s)
	p.Legend.Add("Data", s)

	xmin, xmax := bounds(age)
	if poly != nil {
		l, err := curve(poly, xmin, xmax, primaryColor, false)
		if err != nil {
			return err
		}
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("%s (R²=%.3f)", Title(poly.Name()), r2), l)
	}
	if logistic != nil {
		l, err := curve(logistic, xmin, xmax, accentColor, true)
		if err != nil {
			return err
		}
		p.Add(l)
		p.Legend.Add("Logistic", l)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	return save(p, 7*vg.Inch, 5*vg.Inch, path)
}

// Relation plots y against x with the selected best fit.
func Relation(path, xcol, ycol string, x, y []float64, best fit.Result, pearson, spearman float64) error {
	p := gplot.New()
	p.Title.Text = fmt.Sprintf("%s vs %s\n(Pearson=%.2f, Spearman=%.2f)", ycol, xcol, pearson, spearman)
	p.X.Label.Text = xcol
	p.Y.Label.Text = ycol

	s, err := scatter(x, y, scatterColor)
	if err != nil {
		return err
	}
	p.Add(s)

	if best.Model != nil {
		xmin, xmax := bounds(x)
		l, err := curve(best.Model, xmin, xmax, accentColor, false)
		if err != nil {
			return err
		}
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("%s (R²=%.3f)", best.Model.Name(), best.RSquared), l)
		p.Legend.Top = true
		p.Legend.Left = true
	}

	return save(p, 6*vg.Inch, 4*vg.Inch, path)
}

// Population plots every compartment of a run over time.
func Population(path string, times []float64, series [][]float64, names []string) error {
	if len(series) != len(names) {
		return fmt.Errorf("plot: %d series but %d names", len(series), len(names))
	}

	p := gplot.New()
	p.Title.Text = "Dragon stage-structured population dynamics"
	p.X.Label.Text = "Years"
	p.Y.Label.Text = "Individuals"
	p.Add(plotter.NewGrid())

	for i, s := range series {
		l, err := plotter.NewLine(points(times, s))
		if err != nil {
			return err
		}
		l.LineStyle.Color = stagePalette[i%len(stagePalette)]
		l.LineStyle.Width = vg.Points(1.5)
		p.Add(l)
		p.Legend.Add(names[i], l)
	}
	p.Legend.Top = true

	return save(p, 8*vg.Inch, 5*vg.Inch, path)
}

type corrGrid struct {
	m *mat.SymDense
}

func (g corrGrid) Dims() (c, r int) {
	n := g.m.SymmetricDim()
	return n, n
}

// Z maps undefined correlations to zero.
func (g corrGrid) Z(c, r int) float64 {
	v := g.m.At(r, c)
	if math.IsNaN(v) {
		return 0
	}
	return v
}

func (g corrGrid) X(c int) float64 { return float64(c) }
func (g corrGrid) Y(r int) float64 { return float64(r) }

// CorrelationHeatmap draws a correlation matrix with each cell annotated.
func CorrelationHeatmap(path string, corr *mat.SymDense, cols []string) error {
	n := corr.SymmetricDim()
	if n != len(cols) {
		return fmt.Errorf("plot: %d×%d matrix but %d labels", n, n, len(cols))
	}

	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)

	h := plotter.NewHeatMap(corrGrid{m: corr}, cm.Palette(255))
	h.Min, h.Max = -1, 1

	var labels plotter.XYLabels
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			labels.Labels = append(labels.Labels, fmt.Sprintf("%.2f", corr.At(r, c)))
		}
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return err
	}

	p := gplot.New()
	p.Title.Text = "Correlation Matrix (Pearson)"
	p.Add(h, l)
	p.NominalX(cols...)
	p.NominalY(cols...)

	return save(p, 7*vg.Inch, 6*vg.Inch, path)
}
