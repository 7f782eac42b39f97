package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/san-kum/dragonlab/internal/automation"
	"github.com/san-kum/dragonlab/internal/experiment"
	"github.com/san-kum/dragonlab/internal/storage"
	"github.com/san-kum/dragonlab/internal/viz"
)

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(cfg.OutDir)
	if err := st.Init(); err != nil {
		return err
	}

	runner := &automation.Runner{Registry: experiment.NewRegistry(), Store: st, Logger: logger}
	results, err := runner.RunScenario(cmd.Context(), scenario, cfg)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render("scenario " + scenario.Name))
	if scenario.Description != "" {
		fmt.Println(viz.Subtle.Render(scenario.Description))
	}
	rows := make([][]string, len(results))
	for i, r := range results {
		runID := r.RunID
		if runID == "" {
			runID = "-"
		}
		rows[i] = []string{
			r.Name,
			viz.FormatValue(r.R0),
			viz.FormatValue(r.Result.Metrics["final_total"]),
			viz.FormatValue(r.Result.Metrics["growth_rate"]),
			runID,
		}
	}
	fmt.Println(viz.Table([]string{"step", "R0", "final total", "growth", "run"}, rows))
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	runner := &automation.Runner{Registry: experiment.NewRegistry(), Logger: logger}
	results, err := runner.RunMonteCarlo(cmd.Context(), automation.MonteCarloConfig{
		Base: experiment.Config{
			Integrator: cfg.Integrator,
			Params:     cfg.Population.Params,
			InitState:  cfg.Population.Initial,
			Sim:        cfg.SimConfig(),
		},
		Perturbation: perturb,
		Trials:       trials,
		Seed:         seed,
		Threshold:    threshold,
	})
	if err != nil {
		return err
	}

	s := automation.MonteCarloStats(results)
	finals := make([]float64, len(results))
	for i, r := range results {
		finals[i] = r.FinalTotal
	}

	fmt.Println(viz.Title.Render("monte carlo (" + cfg.Population.Preset + ")"))
	fmt.Println(viz.Metric("trials", float64(s.Trials)))
	fmt.Println(viz.Metric("persisted", float64(s.Persisted)))
	fmt.Println(viz.Metric("persistence", float64(s.Persisted)/float64(s.Trials)))
	fmt.Println(viz.Metric("mean final", s.MeanFinal))
	fmt.Println(viz.Metric("std final", s.StdFinal))
	fmt.Println(viz.Subtle.Render("final head count per trial (seed " + strconv.FormatUint(seed, 10) + ")"))
	fmt.Println(viz.SparklineChart(finals, chartWidth))
	return nil
}
