// Package pipeline runs the analysis stages in order: data preparation,
// allometry, energetics, growth fits, correlations, the population model
// and the farm estimate. Each stage reads the previous stage's output
// from disk, so any stage can also be run on its own.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/san-kum/dragonlab/internal/config"
	"github.com/san-kum/dragonlab/internal/experiment"
	"github.com/san-kum/dragonlab/internal/fit"
	"github.com/san-kum/dragonlab/internal/storage"
)

// Files written to the data directory.
const (
	LorePointsFile = "lore_points.csv"
	FilledFile     = "lore_points_filled.csv"
	EnergyFile     = "lore_points_energy.csv"
)

// Files written to the output directory.
const (
	GrowthFitsTable   = "growth_fits.csv"
	CorrelationsTable = "correlations_fitted.csv"
	MatrixTable       = "correlation_matrix.csv"
	FarmTable         = "farm_area_estimates.csv"
	HeatmapFigure     = "correlation_matrix_raw.png"
	PopulationFigure  = "population_sim.png"
)

// GeneratedFiles are never read back as fan data.
var GeneratedFiles = []string{LorePointsFile, FilledFile, EnergyFile}

const (
	StagePrep       = "prep"
	StageAllometry  = "allometry"
	StageEnergetics = "energetics"
	StageFit        = "fit"
	StageCorrelate  = "correlate"
	StagePopulation = "population"
	StageFarm       = "farm"
)

// Stages lists every stage in execution order.
func Stages() []string {
	return []string{StagePrep, StageAllometry, StageEnergetics, StageFit, StageCorrelate, StagePopulation, StageFarm}
}

type Pipeline struct {
	cfg      *config.Config
	store    *storage.Store
	registry *experiment.Registry
	logger   *slog.Logger
	traits   []string
	report   Report
}

type Option func(*Pipeline)

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

func WithRegistry(r *experiment.Registry) Option {
	return func(p *Pipeline) {
		if r != nil {
			p.registry = r
		}
	}
}

// WithTraits restricts the growth fits to the given traits.
func WithTraits(traits ...string) Option {
	return func(p *Pipeline) {
		if len(traits) > 0 {
			p.traits = traits
		}
	}
}

func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		store:    storage.New(cfg.OutDir),
		registry: experiment.NewRegistry(),
		logger:   slog.New(slog.DiscardHandler),
		traits:   GrowthTraits,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Store() *storage.Store { return p.store }

// Report holds what the stages run so far produced.
func (p *Pipeline) Report() *Report { return &p.report }

func (p *Pipeline) dataPath(name string) string {
	return filepath.Join(p.cfg.DataDir, name)
}

func (p *Pipeline) fitOptions() []fit.Option {
	return []fit.Option{fit.WithLogger(p.logger)}
}

// Run executes every stage in order and stops at the first failure.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.cfg.Validate(); err != nil {
		return err
	}
	if err := p.store.Init(); err != nil {
		return err
	}
	for _, stage := range Stages() {
		if err := p.RunStage(ctx, stage); err != nil {
			return err
		}
	}
	return nil
}

// RunStage executes a single stage by name.
func (p *Pipeline) RunStage(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.store.Init(); err != nil {
		return err
	}

	start := time.Now()
	p.logger.Info("stage started", "stage", name)

	var err error
	switch name {
	case StagePrep:
		_, err = p.Prep()
	case StageAllometry:
		_, err = p.Allometry()
	case StageEnergetics:
		_, err = p.Energetics()
	case StageFit:
		_, err = p.GrowthFits()
	case StageCorrelate:
		_, err = p.Correlate()
	case StagePopulation:
		_, err = p.Population(ctx)
	case StageFarm:
		_, err = p.Farm()
	default:
		return fmt.Errorf("pipeline: unknown stage %q", name)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	p.logger.Info("stage finished", "stage", name, "elapsed", time.Since(start))
	return nil
}
