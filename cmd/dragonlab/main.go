package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/dragonlab/internal/config"
	"github.com/san-kum/dragonlab/internal/pipeline"
	"github.com/san-kum/dragonlab/internal/viz"
)

var (
	dataDir    string
	outDir     string
	configFile string
	logLevel   string
	theme      string

	cfg    *config.Config
	logger *slog.Logger

	// population
	preset     string
	integrator string
	duration   float64
	samples    int
	phase      bool
	xAxis      int
	yAxis      int

	// r0
	scanParam string
	scanLo    float64
	scanHi    float64
	scanSteps int

	// sweep
	objective string

	// best-fit
	fitFile string
	fitPlot bool

	// export-csv
	asJSON bool
	pngOut bool

	// montecarlo
	trials    int
	perturb   float64
	seed      uint64
	threshold float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "dragonlab",
		Short:             "dragon growth, energetics and population lab",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "input data directory")
	rootCmd.PersistentFlags().StringVar(&outDir, "out", config.DefaultOutDir, "output directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", config.DefaultTheme, "terminal theme")

	stageCmd := func(name, short string) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runStage(cmd.Context(), name)
			},
		}
	}

	fitCmd := &cobra.Command{
		Use:   "fit [trait...]",
		Short: "fit growth curves against age",
		RunE:  runGrowthFits,
	}

	bestFitCmd := &cobra.Command{
		Use:   "best-fit [x] [y]",
		Short: "select the best model relating two columns",
		Args:  cobra.ExactArgs(2),
		RunE:  runBestFit,
	}
	bestFitCmd.Flags().StringVar(&fitFile, "file", "", "csv table (default: filled lore points)")
	bestFitCmd.Flags().BoolVar(&fitPlot, "plot", false, "save a figure of the fit")

	populationCmd := &cobra.Command{
		Use:   "population",
		Short: "simulate the stage-structured population",
		Args:  cobra.NoArgs,
		RunE:  runPopulation,
	}
	populationCmd.Flags().StringVar(&preset, "preset", "", "population preset")
	populationCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	populationCmd.Flags().Float64Var(&duration, "time", 50, "simulated years")
	populationCmd.Flags().IntVar(&samples, "samples", 500, "output samples")
	populationCmd.Flags().BoolVar(&phase, "phase", false, "print a phase portrait")
	populationCmd.Flags().IntVar(&xAxis, "x-axis", 0, "stage index for the phase x-axis")
	populationCmd.Flags().IntVar(&yAxis, "y-axis", 3, "stage index for the phase y-axis")

	r0Cmd := &cobra.Command{
		Use:   "r0",
		Short: "net reproductive ratio of the configured parameters",
		Args:  cobra.NoArgs,
		RunE:  runR0,
	}
	r0Cmd.Flags().StringVar(&preset, "preset", "", "population preset")
	r0Cmd.Flags().StringVar(&scanParam, "scan", "", "parameter to scan")
	r0Cmd.Flags().Float64Var(&scanLo, "lo", 0, "scan start")
	r0Cmd.Flags().Float64Var(&scanHi, "hi", 10, "scan end")
	r0Cmd.Flags().IntVar(&scanSteps, "steps", 21, "scan points")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search population parameters",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&objective, "objective", "", "objective to minimise")
	sweepCmd.Flags().StringVar(&preset, "preset", "", "base population preset")
	sweepCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "list stored population runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().BoolVar(&pngOut, "png", false, "also redraw the run figure")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write a stored run to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCSVCmd.Flags().BoolVar(&asJSON, "json", false, "export as json")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list population presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a yaml scenario of population runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "estimate persistence over perturbed starting populations",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	monteCarloCmd.Flags().StringVar(&preset, "preset", "", "population preset")
	monteCarloCmd.Flags().StringVar(&integrator, "integrator", config.DefaultIntegrator, "integrator")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 100, "number of trials")
	monteCarloCmd.Flags().Float64Var(&perturb, "perturb", 0.2, "relative perturbation of each compartment")
	monteCarloCmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	monteCarloCmd.Flags().Float64Var(&threshold, "threshold", 1, "smallest final head count that persists")

	allCmd := &cobra.Command{
		Use:   "all",
		Short: "run every stage",
		Args:  cobra.NoArgs,
		RunE:  runAll,
	}

	rootCmd.AddCommand(
		stageCmd(pipeline.StagePrep, "merge lore anchors with fan data"),
		stageCmd(pipeline.StageAllometry, "fill missing mass and wing area"),
		stageCmd(pipeline.StageEnergetics, "compute daily energy budgets"),
		fitCmd,
		bestFitCmd,
		stageCmd(pipeline.StageCorrelate, "correlate traits and fit every pair"),
		populationCmd,
		r0Cmd,
		stageCmd(pipeline.StageFarm, "estimate farm land use"),
		sweepCmd,
		runsCmd,
		plotCmd,
		exportCSVCmd,
		presetsCmd,
		scenarioCmd,
		monteCarloCmd,
		allCmd,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, viz.Warn.Render("error: "+err.Error()))
		stop()
		os.Exit(1)
	}
}

// setup loads the config file and environment, then applies the
// persistent flags the user set explicitly.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataDir = dataDir
	}
	if flags.Changed("out") {
		cfg.OutDir = outDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("theme") {
		cfg.Theme = theme
	}
	if flags.Changed("preset") && preset != "" {
		if err := cfg.ApplyPreset(preset); err != nil {
			return err
		}
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("time") {
		cfg.Population.T1 = duration
	}
	if flags.Changed("samples") {
		cfg.Population.Samples = samples
	}
	if flags.Changed("objective") {
		cfg.Sweep.Objective = objective
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.Level()
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	viz.SetTheme(cfg.Theme)
	return nil
}

func newPipeline(opts ...pipeline.Option) *pipeline.Pipeline {
	return pipeline.New(cfg, append([]pipeline.Option{pipeline.WithLogger(logger)}, opts...)...)
}
