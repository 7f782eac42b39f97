package experiment

import (
	"context"
	"testing"

	"github.com/san-kum/dragonlab/internal/population"
)

func TestRegistryIntegrators(t *testing.T) {
	r := NewRegistry()

	names := r.ListIntegrators()
	if len(names) != 3 || names[0] != "euler" || names[2] != "rk45" {
		t.Errorf("unexpected integrators %v", names)
	}

	for _, name := range append(names, "") {
		if _, err := r.GetIntegrator(name); err != nil {
			t.Errorf("integrator %q: %v", name, err)
		}
	}

	if _, err := r.GetIntegrator("leapfrog"); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func TestBuildAndRun(t *testing.T) {
	cfg := Config{
		Integrator: "rk4",
		Params:     population.DefaultParams(),
		InitState:  population.DefaultInitial(),
		Sim:        population.DefaultSimConfig(),
	}
	cfg.Sim.Samples = 51

	e, err := Build(NewRegistry(), cfg)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	res, err := e.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.States) != 51 {
		t.Errorf("expected 51 samples, got %d", len(res.States))
	}
	if _, ok := res.Metrics["final_total"]; !ok {
		t.Error("expected final_total metric")
	}
}

func TestRunWithoutSetup(t *testing.T) {
	if _, err := New(Config{}).Run(context.Background()); err == nil {
		t.Error("expected error before setup")
	}
}
