package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/dragonlab/internal/allometry"
	"github.com/san-kum/dragonlab/internal/analysis"
	"github.com/san-kum/dragonlab/internal/dataset"
	"github.com/san-kum/dragonlab/internal/dynamo"
	"github.com/san-kum/dragonlab/internal/energetics"
	"github.com/san-kum/dragonlab/internal/environment"
	"github.com/san-kum/dragonlab/internal/experiment"
	"github.com/san-kum/dragonlab/internal/fit"
	"github.com/san-kum/dragonlab/internal/plot"
	"github.com/san-kum/dragonlab/internal/population"
	"github.com/san-kum/dragonlab/internal/storage"
)

// GrowthTraits are the traits fitted against age.
var GrowthTraits = []string{dataset.ColLength, dataset.ColWingspan, dataset.ColHeight}

const (
	growthDegree    = 4
	minGrowthPoints = 3
)

type GrowthFit struct {
	Trait       string
	N           int
	Poly        fit.Polynomial
	PolyR2      float64
	Logistic    *fit.Logistic
	LogisticR2  float64
	LogisticErr error
	Figure      string
}

type PopulationRun struct {
	ID     string
	R0     float64
	Growth float64
	Adults int
	Result *dynamo.Result
}

type Report struct {
	Combined  *dataset.Table
	Filled    *dataset.Table
	Constants allometry.Constants
	Energy    *dataset.Table
	Growth    []GrowthFit
	Pairs     []analysis.Pair
	Matrix    *dataset.Table
	Run       *PopulationRun
	Farm      *environment.Estimate
}

// Prep merges the lore anchors with every fan CSV in the data directory
// and writes the combined table.
func (p *Pipeline) Prep() (*dataset.Table, error) {
	fan, err := dataset.ReadFanCSVs(p.cfg.DataDir, p.logger, GeneratedFiles...)
	if err != nil {
		return nil, err
	}

	combined, err := dataset.Combine(dataset.Lore(), dataset.Standardize(fan))
	if err != nil {
		return nil, err
	}

	path := p.dataPath(LorePointsFile)
	if err := combined.SaveCSV(path); err != nil {
		return nil, err
	}
	p.logger.Info("saved combined dataset", "path", path, "rows", combined.Len(), "fan_rows", fan.Len())

	p.report.Combined = combined
	return combined, nil
}

// Allometry fills missing mass and wing area from length and wingspan.
func (p *Pipeline) Allometry() (*dataset.Table, error) {
	t, err := dataset.LoadCSV(p.dataPath(LorePointsFile))
	if err != nil {
		return nil, err
	}

	filled, c, err := allometry.FillMissing(t, p.cfg.Allometry)
	if err != nil {
		return nil, err
	}

	path := p.dataPath(FilledFile)
	if err := filled.SaveCSV(path); err != nil {
		return nil, err
	}
	p.logger.Info("allometry calibrated", "kappa_l", c.KappaL, "kappa_b", c.KappaB, "beta", c.Beta, "path", path)

	p.report.Filled = filled
	p.report.Constants = c
	return filled, nil
}

// Energetics appends the daily energy budget of every row.
func (p *Pipeline) Energetics() (*dataset.Table, error) {
	t, err := dataset.LoadCSV(p.dataPath(FilledFile))
	if err != nil {
		return nil, err
	}

	out, err := energetics.Compute(t, p.cfg.Energetics)
	if err != nil {
		return nil, err
	}

	path := p.dataPath(EnergyFile)
	if err := out.SaveCSV(path); err != nil {
		return nil, err
	}
	p.logger.Info("saved energy budgets", "path", path, "rows", out.Len())

	p.report.Energy = out
	return out, nil
}

// GrowthFits fits every growth trait against age with a polynomial and
// a logistic curve. Traits with fewer than three observations are
// skipped; a failed logistic fit leaves its parameters undefined.
func (p *Pipeline) GrowthFits() ([]GrowthFit, error) {
	t, err := dataset.LoadCSV(p.dataPath(LorePointsFile))
	if err != nil {
		return nil, err
	}

	fits := make([]GrowthFit, 0, len(p.traits))
	for _, trait := range p.traits {
		if !t.Has(trait) {
			p.logger.Warn("skipping trait", "trait", trait, "reason", "column missing")
			continue
		}
		age, y, err := t.Pairs(dataset.ColAge, trait)
		if err != nil {
			return nil, err
		}
		if len(age) < minGrowthPoints {
			p.logger.Warn("skipping trait", "trait", trait, "reason", "too few valid points", "n", len(age))
			continue
		}

		g, err := p.growthFit(trait, age, y)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", trait, err)
		}

		var logistic fit.Model
		if g.Logistic != nil {
			logistic = *g.Logistic
		}
		path := p.store.FigurePath(g.Figure)
		if err := plot.Growth(path, trait, age, y, g.Poly, g.PolyR2, logistic); err != nil {
			return nil, err
		}
		p.logger.Info("saved growth fit", "trait", trait, "poly_r2", g.PolyR2, "path", path)

		fits = append(fits, g)
	}

	if _, err := p.store.WriteTable(GrowthFitsTable, GrowthTable(fits)); err != nil {
		return nil, err
	}

	p.report.Growth = fits
	return fits, nil
}

// growthFit lowers the polynomial degree when the trait has fewer
// distinct ages than the full degree needs.
func (p *Pipeline) growthFit(trait string, age, y []float64) (GrowthFit, error) {
	g := GrowthFit{Trait: trait, N: len(age), LogisticR2: math.NaN(), Figure: trait + "_fit.png"}

	var err error
	for deg := growthDegree; deg >= 1; deg-- {
		g.Poly, g.PolyR2, err = fit.FitPolynomial(age, y, deg, p.fitOptions()...)
		if !errors.Is(err, fit.ErrTooFewPoints) {
			break
		}
		p.logger.Debug("lowering growth degree", "trait", trait, "degree", deg)
	}
	if err != nil {
		return g, err
	}

	l, r2, err := fit.FitLogistic(age, y, p.fitOptions()...)
	if err != nil {
		p.logger.Warn("logistic fit failed", "trait", trait, "error", err)
		g.LogisticErr = err
		return g, nil
	}
	g.Logistic = &l
	g.LogisticR2 = r2
	return g, nil
}

// GrowthTable has one row per fitted trait.
func GrowthTable(fits []GrowthFit) *dataset.Table {
	t := dataset.New("variable", "poly_degree", "poly_r2", "logi_Smax", "logi_k", "logi_t0", "logi_r2")
	for _, g := range fits {
		smax, k, t0 := math.NaN(), math.NaN(), math.NaN()
		if g.Logistic != nil {
			smax, k, t0 = g.Logistic.Smax, g.Logistic.K, g.Logistic.T0
		}
		t.AppendRow(g.Trait,
			fmt.Sprint(g.Poly.Degree()),
			dataset.FormatFloat(g.PolyR2),
			dataset.FormatFloat(smax),
			dataset.FormatFloat(k),
			dataset.FormatFloat(t0),
			dataset.FormatFloat(g.LogisticR2))
	}
	return t
}

// Correlate writes the Pearson matrix of the traits and the best fit of
// every trait pair, with one figure per pair.
func (p *Pipeline) Correlate() ([]analysis.Pair, error) {
	t, err := dataset.LoadCSV(p.dataPath(FilledFile))
	if err != nil {
		return nil, err
	}

	cols := make([]string, 0, len(analysis.DefaultTraits))
	for _, c := range analysis.DefaultTraits {
		if t.Has(c) {
			cols = append(cols, c)
		}
	}

	corr, err := analysis.CorrelationMatrix(t, cols)
	if err != nil {
		return nil, err
	}
	matrix := analysis.MatrixTable(corr, cols)
	if _, err := p.store.WriteTable(MatrixTable, matrix); err != nil {
		return nil, err
	}
	if err := plot.CorrelationHeatmap(p.store.FigurePath(HeatmapFigure), corr, cols); err != nil {
		return nil, err
	}

	pairs, err := analysis.PairwiseFits(t, cols, p.fitOptions()...)
	if err != nil {
		return nil, err
	}

	complete, err := t.CompleteRows(cols...)
	if err != nil {
		return nil, err
	}
	for i := range pairs {
		pr := &pairs[i]
		if pr.Err != nil {
			p.logger.Warn("no fit for pair", "x", pr.X, "y", pr.Y, "error", pr.Err)
			pr.Figure = ""
			continue
		}
		x, y, err := complete.Pairs(pr.X, pr.Y)
		if err != nil {
			return nil, err
		}
		if err := plot.Relation(p.store.FigurePath(pr.Figure), pr.X, pr.Y, x, y, pr.Best, pr.Pearson, pr.Spearman); err != nil {
			return nil, err
		}
		p.logger.Info("best fit", "x", pr.X, "y", pr.Y, "type", pr.Best.Model.Name(), "r2", pr.Best.RSquared, "equation", pr.Best.Equation)
	}

	if _, err := p.store.WriteTable(CorrelationsTable, analysis.PairsTable(pairs)); err != nil {
		return nil, err
	}

	p.report.Pairs = pairs
	p.report.Matrix = matrix
	return pairs, nil
}

// Population simulates the configured population, stores the run and
// plots its trajectory.
func (p *Pipeline) Population(ctx context.Context) (*PopulationRun, error) {
	pop := p.cfg.Population

	exp, err := experiment.Build(p.registry, experiment.Config{
		Integrator: p.cfg.Integrator,
		Params:     pop.Params,
		InitState:  pop.Initial,
		Sim:        p.cfg.SimConfig(),
	})
	if err != nil {
		return nil, err
	}

	res, err := exp.Run(ctx)
	if err != nil {
		return nil, err
	}

	run := &PopulationRun{Result: res, R0: math.NaN(), Growth: math.NaN(), Adults: -1}
	r0, err := population.R0(pop.Params)
	if err != nil {
		p.logger.Warn("R0 undefined", "error", err)
	} else {
		run.R0 = r0
	}
	if g, err := population.AsymptoticGrowthRate(pop.Params); err == nil {
		run.Growth = g
	}

	var r0Ptr *float64
	if !math.IsNaN(run.R0) {
		r0Ptr = &run.R0
	}
	run.ID, err = p.store.SaveRun(storage.RunMetadata{
		Preset:     pop.Preset,
		Integrator: p.integratorName(),
		T0:         p.cfg.SimConfig().T0,
		T1:         pop.T1,
		Samples:    pop.Samples,
		Params:     pop.Params,
		Initial:    pop.Initial,
		R0:         r0Ptr,
	}, res)
	if err != nil {
		return nil, err
	}

	series := make([][]float64, len(population.Stages))
	for i := range series {
		series[i] = res.Column(i)
	}
	if err := plot.Population(p.store.FigurePath(PopulationFigure), res.Times, series, population.Stages); err != nil {
		return nil, err
	}

	if t, err := dataset.LoadCSV(p.dataPath(EnergyFile)); err == nil {
		if n, err := population.AdultCount(t, p.cfg.Allometry.AdultAge); err == nil {
			run.Adults = n
			p.logger.Info("adult dragons in dataset", "min_age", p.cfg.Allometry.AdultAge, "count", n)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	p.logger.Info("population simulated", "run", run.ID, "r0", run.R0, "final_total", res.Metrics["final_total"], "steps", res.StepsTaken)

	p.report.Run = run
	return run, nil
}

func (p *Pipeline) integratorName() string {
	if p.cfg.Integrator == "" {
		return experiment.DefaultIntegrator
	}
	return p.cfg.Integrator
}

// LengthModel is the length-at-age curve used for the farm estimate.
func (p *Pipeline) LengthModel() (fit.Model, error) {
	if !p.cfg.Farm.UseFittedLength {
		return environment.DefaultLengthModel(), nil
	}
	for _, g := range p.report.Growth {
		if g.Trait == dataset.ColLength {
			return g.Poly, nil
		}
	}

	t, err := dataset.LoadCSV(p.dataPath(LorePointsFile))
	if err != nil {
		return nil, err
	}
	age, y, err := t.Pairs(dataset.ColAge, dataset.ColLength)
	if err != nil {
		return nil, err
	}
	g, err := p.growthFit(dataset.ColLength, age, y)
	if err != nil {
		return nil, err
	}
	return g.Poly, nil
}

// Farm sizes a farm for the configured herd.
func (p *Pipeline) Farm() (*environment.Estimate, error) {
	length, err := p.LengthModel()
	if err != nil {
		return nil, err
	}

	ages := environment.Herd(p.cfg.Farm.PerAge, p.cfg.Farm.MaxAge)
	est, err := environment.TotalFarmArea(ages, length, p.cfg.Farm.Options)
	if err != nil {
		return nil, err
	}

	if _, err := p.store.WriteTable(FarmTable, est.PerDragon); err != nil {
		return nil, err
	}
	p.logger.Info("farm estimated",
		"dragons", est.Dragons,
		"total_area_m2", est.TotalArea,
		"total_area_ha", est.TotalArea/10000,
		"dragons_per_ha", est.Density)

	p.report.Farm = &est
	return &est, nil
}
