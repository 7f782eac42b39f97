package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/dragonlab/internal/analysis"
	"github.com/san-kum/dragonlab/internal/config"
	"github.com/san-kum/dragonlab/internal/dataset"
	"github.com/san-kum/dragonlab/internal/dynamo"
	"github.com/san-kum/dragonlab/internal/energetics"
	"github.com/san-kum/dragonlab/internal/experiment"
	"github.com/san-kum/dragonlab/internal/fit"
	"github.com/san-kum/dragonlab/internal/optim"
	"github.com/san-kum/dragonlab/internal/pipeline"
	"github.com/san-kum/dragonlab/internal/plot"
	"github.com/san-kum/dragonlab/internal/population"
	"github.com/san-kum/dragonlab/internal/storage"
	"github.com/san-kum/dragonlab/internal/viz"
)

const (
	chartWidth  = 72
	chartHeight = 12
)

func runStage(ctx context.Context, name string) error {
	p := newPipeline()
	if err := p.RunStage(ctx, name); err != nil {
		return err
	}
	printStage(p, name)
	return nil
}

func runGrowthFits(cmd *cobra.Command, args []string) error {
	p := newPipeline(pipeline.WithTraits(args...))
	if err := p.RunStage(cmd.Context(), pipeline.StageFit); err != nil {
		return err
	}
	printStage(p, pipeline.StageFit)
	return nil
}

func runAll(cmd *cobra.Command, args []string) error {
	p := newPipeline()
	if err := p.Run(cmd.Context()); err != nil {
		return err
	}
	for _, stage := range pipeline.Stages() {
		printStage(p, stage)
	}
	return nil
}

func printStage(p *pipeline.Pipeline, stage string) {
	r := p.Report()
	st := p.Store()

	switch stage {
	case pipeline.StagePrep:
		fmt.Println(viz.Title.Render("dataset"))
		fmt.Println(renderTable(r.Combined, dataset.CanonicalColumns...))
		fmt.Println(viz.Saved.Render("saved " + filepath.Join(cfg.DataDir, pipeline.LorePointsFile)))

	case pipeline.StageAllometry:
		fmt.Println(viz.Title.Render("allometry"))
		fmt.Println(viz.Metric("kappa_L", r.Constants.KappaL))
		fmt.Println(viz.Metric("kappa_b", r.Constants.KappaB))
		fmt.Println(viz.Metric("beta", r.Constants.Beta))
		fmt.Println(viz.Saved.Render("saved " + filepath.Join(cfg.DataDir, pipeline.FilledFile)))

	case pipeline.StageEnergetics:
		fmt.Println(viz.Title.Render("energetics"))
		fmt.Println(renderTable(r.Energy, dataset.ColName, dataset.ColAge, dataset.ColMass,
			energetics.ColRER, energetics.ColMER, energetics.ColFlight, energetics.ColFire))
		fmt.Println(viz.Saved.Render("saved " + filepath.Join(cfg.DataDir, pipeline.EnergyFile)))

	case pipeline.StageFit:
		fmt.Println(viz.Title.Render("growth fits"))
		rows := make([][]string, 0, len(r.Growth))
		for _, g := range r.Growth {
			logistic := viz.Warn.Render("failed")
			if g.Logistic != nil {
				logistic = g.Logistic.Equation()
			}
			rows = append(rows, []string{g.Trait, strconv.Itoa(g.N), viz.FormatValue(g.PolyR2), logistic, viz.FormatValue(g.LogisticR2)})
		}
		fmt.Println(viz.Table([]string{"trait", "n", "poly R²", "logistic", "logistic R²"}, rows))
		fmt.Println(viz.Saved.Render("saved " + st.TablePath(pipeline.GrowthFitsTable)))

	case pipeline.StageCorrelate:
		fmt.Println(viz.Title.Render("correlations"))
		rows := make([][]string, 0, len(r.Pairs))
		for _, pr := range r.Pairs {
			best, r2 := viz.Warn.Render("none"), math.NaN()
			if pr.Err == nil {
				best, r2 = pr.Best.Model.Name(), pr.Best.RSquared
			}
			rows = append(rows, []string{pr.Y + " ~ " + pr.X, strconv.Itoa(pr.N),
				viz.FormatValue(pr.Pearson), viz.FormatValue(pr.Spearman), best, viz.FormatValue(r2)})
		}
		fmt.Println(viz.Table([]string{"relation", "n", "pearson", "spearman", "best", "R²"}, rows))
		fmt.Println(viz.Saved.Render("saved " + st.TablePath(pipeline.CorrelationsTable)))

	case pipeline.StagePopulation:
		printRun(r.Run)

	case pipeline.StageFarm:
		fmt.Println(viz.Title.Render("farm"))
		fmt.Println(viz.Metric("dragons", float64(r.Farm.Dragons)))
		fmt.Println(viz.Metric("dragon area m²", r.Farm.DragonArea))
		fmt.Println(viz.Metric("total area m²", r.Farm.TotalArea))
		fmt.Println(viz.Metric("total area ha", r.Farm.TotalArea/10000))
		fmt.Println(viz.Metric("dragons per ha", r.Farm.Density))
		fmt.Println(viz.Saved.Render("saved " + st.TablePath(pipeline.FarmTable)))
	}
	fmt.Println()
}

func renderTable(t *dataset.Table, cols ...string) string {
	if t == nil {
		return ""
	}
	present := make([]string, 0, len(cols))
	for _, c := range cols {
		if t.Has(c) {
			present = append(present, c)
		}
	}

	rows := make([][]string, t.Len())
	for i := range rows {
		rows[i] = make([]string, len(present))
		for j, c := range present {
			cell, _ := t.Cell(c, i)
			if v, err := strconv.ParseFloat(cell, 64); err == nil {
				cell = viz.FormatValue(v)
			} else if dataset.IsNA(cell) {
				cell = "NA"
			}
			rows[i][j] = cell
		}
	}
	return viz.Table(present, rows)
}

func runBestFit(cmd *cobra.Command, args []string) error {
	xcol, ycol := args[0], args[1]

	path := fitFile
	if path == "" {
		path = filepath.Join(cfg.DataDir, pipeline.FilledFile)
	}
	t, err := dataset.LoadCSV(path)
	if err != nil {
		return err
	}
	x, y, err := t.Pairs(xcol, ycol)
	if err != nil {
		return err
	}

	opts := []fit.Option{fit.WithLogger(logger)}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s vs %s (%d points)", ycol, xcol, len(x))))
	rows := make([][]string, 0, len(fit.Candidates()))
	for _, a := range fit.Evaluate(x, y, opts...) {
		if a.Err != nil {
			rows = append(rows, []string{a.Name, "-", viz.Warn.Render(a.Err.Error())})
			continue
		}
		rows = append(rows, []string{a.Name, viz.FormatValue(a.Result.RSquared), a.Result.Equation})
	}
	fmt.Println(viz.Table([]string{"model", "R²", "equation"}, rows))

	best, err := fit.SelectBest(x, y, opts...)
	if err != nil {
		return err
	}
	fmt.Println(viz.Metric("best "+best.Model.Name(), best.RSquared))
	fmt.Println(best.Equation)
	fmt.Println(viz.FitPreview(x, y, best.Model, chartWidth, chartHeight))

	if fitPlot {
		pearson, err := analysis.Pearson(x, y)
		if err != nil {
			return err
		}
		spearman, err := analysis.Spearman(x, y)
		if err != nil {
			return err
		}
		st := storage.New(cfg.OutDir)
		if err := st.Init(); err != nil {
			return err
		}
		fig := st.FigurePath(analysis.FigureName(xcol, ycol))
		if err := plot.Relation(fig, xcol, ycol, x, y, best, pearson, spearman); err != nil {
			return err
		}
		fmt.Println(viz.Saved.Render("saved " + fig))
	}
	return nil
}

func runPopulation(cmd *cobra.Command, args []string) error {
	n := len(population.Stages)
	if xAxis < 0 || xAxis >= n || yAxis < 0 || yAxis >= n {
		return fmt.Errorf("phase axes must be in [0, %d)", n)
	}

	p := newPipeline()
	if err := p.RunStage(cmd.Context(), pipeline.StagePopulation); err != nil {
		return err
	}
	run := p.Report().Run
	printRun(run)

	if phase {
		portrait := analysis.PhasePortrait(run.Result, xAxis, yAxis)
		fmt.Println(viz.Title.Render(fmt.Sprintf("phase %s vs %s", population.Stages[yAxis], population.Stages[xAxis])))
		if portrait != nil {
			fmt.Println(viz.PhasePlot(portrait.X, portrait.Y, chartWidth, chartHeight))
		}
	}
	return nil
}

func printRun(run *pipeline.PopulationRun) {
	if run == nil {
		return
	}
	fmt.Println(viz.Title.Render("population " + run.ID))
	fmt.Println(viz.Metric("R0", run.R0))
	fmt.Println(viz.Metric("growth rate /yr", run.Growth))
	if run.Adults >= 0 {
		fmt.Println(viz.Metric("adults in data", float64(run.Adults)))
	}
	fmt.Println(viz.Metric("steps", float64(run.Result.StepsTaken)))
	printMetrics(run.Result.Metrics)
	fmt.Println(stageChart(run.Result.States))
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(viz.Metric(name, metrics[name]))
	}
}

func stageChart(states []dynamo.State) string {
	if len(states) == 0 {
		return ""
	}
	series := make([][]float64, len(states[0]))
	for i := range series {
		series[i] = make([]float64, len(states))
		for j, s := range states {
			series[i][j] = s[i]
		}
	}
	return viz.Trajectory(series, population.Stages, "individuals over time", chartWidth, chartHeight)
}

func runR0(cmd *cobra.Command, args []string) error {
	params := cfg.Population.Params

	r0, err := population.R0(params)
	if err != nil {
		return err
	}
	growth, err := population.AsymptoticGrowthRate(params)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render("reproductive outlook (" + cfg.Population.Preset + ")"))
	fmt.Println(viz.Metric("R0", r0))
	fmt.Println(viz.Metric("growth rate /yr", growth))
	if r0 < 1 {
		fmt.Println(viz.Warn.Render("population declines (R0 < 1)"))
	}

	if scanParam == "" {
		return nil
	}

	points, err := analysis.ParameterScan(params, scanParam, scanLo, scanHi, scanSteps)
	if err != nil {
		return err
	}
	rows := make([][]string, len(points))
	r0s := make([]float64, len(points))
	for i, pt := range points {
		rows[i] = []string{viz.FormatValue(pt.Param), viz.FormatValue(pt.R0), viz.FormatValue(pt.Growth)}
		r0s[i] = pt.R0
	}
	fmt.Println()
	fmt.Println(viz.Title.Render("scan " + scanParam))
	fmt.Println(viz.Table([]string{scanParam, "R0", "growth"}, rows))
	fmt.Println(viz.SparklineChart(r0s, chartWidth))
	if v, ok := analysis.Threshold(points); ok {
		fmt.Println(viz.Metric("R0 = 1 at", v))
	} else {
		fmt.Println(viz.Subtle.Render("R0 does not cross 1 in the scanned range"))
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	objectives := optim.Objectives()
	obj, ok := objectives[cfg.Sweep.Objective]
	if !ok {
		names := make([]string, 0, len(objectives))
		for name := range objectives {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("unknown objective %q (available: %s)", cfg.Sweep.Objective, strings.Join(names, ", "))
	}

	names := cfg.SweepParams()
	ranges := make([][]float64, len(names))
	for i, name := range names {
		r := cfg.Sweep.Ranges[name]
		ranges[i] = optim.Linspace(r[0], r[1], cfg.Sweep.Steps)
	}

	registry := experiment.NewRegistry()
	base := experiment.Config{
		Integrator: cfg.Integrator,
		Params:     cfg.Population.Params,
		InitState:  cfg.Population.Initial,
		Sim:        cfg.SimConfig(),
	}

	logger.Info("sweep started", "params", names, "steps", cfg.Sweep.Steps, "objective", cfg.Sweep.Objective)
	gs := optim.NewGridSearch(names, ranges)
	res, err := gs.Search(cmd.Context(), optim.PopulationBuilder(registry, base), obj)
	if err != nil {
		if errors.Is(err, optim.ErrNoFeasible) {
			return fmt.Errorf("%w (%d failed)", err, res.Failed)
		}
		return err
	}

	fmt.Println(viz.Title.Render("sweep " + cfg.Sweep.Objective))
	for _, name := range names {
		fmt.Println(viz.Metric(name, res.Params[name]))
	}
	fmt.Println(viz.Metric("score", res.Score))
	fmt.Println(viz.Subtle.Render(fmt.Sprintf("%d evaluated, %d failed", res.Evaluated, res.Failed)))
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.OutDir)
	runs, err := st.ListRuns()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	rows := make([][]string, len(runs))
	for i, run := range runs {
		r0 := math.NaN()
		if run.R0 != nil {
			r0 = *run.R0
		}
		final, ok := run.Metrics["final_total"]
		if !ok {
			final = math.NaN()
		}
		rows[i] = []string{
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Integrator,
			viz.FormatValue(run.T1),
			viz.FormatValue(r0),
			viz.FormatValue(final),
		}
	}
	fmt.Println(viz.Table([]string{"id", "time", "integrator", "years", "R0", "final total"}, rows))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(cfg.OutDir)
	meta, err := st.LoadRun(runID)
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Println(viz.Title.Render("run " + meta.ID))
	fmt.Println(viz.Metric("samples", float64(len(states))))
	printMetrics(meta.Metrics)
	fmt.Println(stageChart(states))

	for i, name := range population.Stages {
		col := make([]float64, len(states))
		for j, s := range states {
			col[j] = s[i]
		}
		fmt.Printf("%s %s\n", viz.MetricLabel.Render(fmt.Sprintf("%-2s", name)), viz.SparklineChart(col, chartWidth))
	}

	if pngOut {
		if err := st.Init(); err != nil {
			return err
		}
		series := make([][]float64, len(population.Stages))
		for i := range series {
			series[i] = make([]float64, len(states))
			for j, s := range states {
				series[i][j] = s[i]
			}
		}
		fig := st.FigurePath(runID + ".png")
		if err := plot.Population(fig, times, series, population.Stages); err != nil {
			return err
		}
		fmt.Println(viz.Saved.Render("saved " + fig))
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.OutDir)
	if asJSON {
		return st.ExportJSON(os.Stdout, args[0])
	}
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	return storage.WriteStates(os.Stdout, times, states)
}

func listPresets(cmd *cobra.Command, args []string) error {
	names := config.ListPresets()
	rows := make([][]string, len(names))
	for i, name := range names {
		p := config.GetPreset(name)
		r0, err := population.R0(p.Params)
		if err != nil {
			r0 = math.NaN()
		}
		rows[i] = []string{name, viz.FormatValue(r0), p.Description}
	}
	fmt.Println(viz.Table([]string{"preset", "R0", "description"}, rows))
	return nil
}
