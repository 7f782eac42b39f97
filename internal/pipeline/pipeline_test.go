package pipeline_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/dragonlab/internal/config"
	"github.com/san-kum/dragonlab/internal/dataset"
	"github.com/san-kum/dragonlab/internal/pipeline"
)

const fanCSV = `name,age,length,wingspan,height
Ash,3,9.0,22.5,1.9
Cinder,6,17.5,44.0,3.1
Ember,10,23.0,57.5,4.3
Ash,3,9.0,22.5,1.9
`

var _ = Describe("Pipeline", func() {
	var (
		cfg *config.Config
		p   *pipeline.Pipeline
		ctx context.Context
	)

	BeforeEach(func() {
		root := GinkgoT().TempDir()
		cfg = config.DefaultConfig()
		cfg.DataDir = filepath.Join(root, "data")
		cfg.OutDir = filepath.Join(root, "outputs")
		cfg.Population.Samples = 101
		cfg.Farm.PerAge = 2
		cfg.Farm.MaxAge = 4

		Expect(os.MkdirAll(cfg.DataDir, 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(cfg.DataDir, "fan.csv"), []byte(fanCSV), 0644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(cfg.DataDir, "broken.csv"), []byte("a,b\n1\n"), 0644)).To(Succeed())

		p = pipeline.New(cfg)
		ctx = context.Background()
	})

	Describe("Run", func() {
		BeforeEach(func() {
			Expect(p.Run(ctx)).To(Succeed())
		})

		It("merges lore and fan rows without duplicates", func() {
			t, err := dataset.LoadCSV(filepath.Join(cfg.DataDir, pipeline.LorePointsFile))
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Len()).To(Equal(8))
			Expect(t.Columns()).To(Equal(dataset.CanonicalColumns))

			ages, err := t.Floats(dataset.ColAge)
			Expect(err).NotTo(HaveOccurred())
			Expect(ages).To(Equal([]float64{0, 1, 2.5, 3, 4, 6, 8, 10}))
		})

		It("fills every mass and wing area", func() {
			filled := p.Report().Filled
			Expect(filled).NotTo(BeNil())
			for _, col := range []string{dataset.ColMass, dataset.ColWingArea} {
				vals, err := filled.Floats(col)
				Expect(err).NotTo(HaveOccurred())
				for _, v := range vals {
					Expect(v).To(BeNumerically(">", 0))
				}
			}
		})

		It("writes the energy budget columns", func() {
			t, err := dataset.LoadCSV(filepath.Join(cfg.DataDir, pipeline.EnergyFile))
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Has("RER_kcal_day")).To(BeTrue())
			Expect(t.Has("thermo_kcal_per_degC")).To(BeTrue())
		})

		It("fits every growth trait", func() {
			growth := p.Report().Growth
			Expect(growth).To(HaveLen(len(pipeline.GrowthTraits)))
			for _, g := range growth {
				Expect(g.Poly.Degree()).To(Equal(4))
				Expect(g.PolyR2).To(BeNumerically(">", 0.9))
				Expect(filepath.Join(cfg.OutDir, "figures", g.Figure)).To(BeAnExistingFile())
			}

			t, err := dataset.LoadCSV(filepath.Join(cfg.OutDir, "tables", pipeline.GrowthFitsTable))
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Len()).To(Equal(3))
		})

		It("relates every trait pair", func() {
			Expect(p.Report().Pairs).To(HaveLen(10))

			t, err := dataset.LoadCSV(filepath.Join(cfg.OutDir, "tables", pipeline.CorrelationsTable))
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Len()).To(Equal(10))

			m, err := dataset.LoadCSV(filepath.Join(cfg.OutDir, "tables", pipeline.MatrixTable))
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Len()).To(Equal(5))

			Expect(filepath.Join(cfg.OutDir, "figures", pipeline.HeatmapFigure)).To(BeAnExistingFile())
			Expect(filepath.Join(cfg.OutDir, "figures", "mass_kg_vs_length_m_fit.png")).To(BeAnExistingFile())
		})

		It("stores the population run", func() {
			run := p.Report().Run
			Expect(run).NotTo(BeNil())
			Expect(run.R0).To(BeNumerically("~", 0.7033, 1e-3))
			Expect(run.Adults).To(Equal(2))
			Expect(run.Result.States).To(HaveLen(101))

			runs, err := p.Store().ListRuns()
			Expect(err).NotTo(HaveOccurred())
			Expect(runs).To(HaveLen(1))
			Expect(runs[0].ID).To(Equal(run.ID))
			Expect(runs[0].Integrator).To(Equal("rk45"))

			Expect(filepath.Join(cfg.OutDir, "figures", pipeline.PopulationFigure)).To(BeAnExistingFile())
		})

		It("sizes the farm", func() {
			farm := p.Report().Farm
			Expect(farm).NotTo(BeNil())
			Expect(farm.Dragons).To(Equal(10))
			Expect(farm.TotalArea).To(BeNumerically("~", 1.2*farm.DragonArea+6000, 1e-6))

			t, err := dataset.LoadCSV(filepath.Join(cfg.OutDir, "tables", pipeline.FarmTable))
			Expect(err).NotTo(HaveOccurred())
			Expect(t.Len()).To(Equal(10))
		})
	})

	Describe("RunStage", func() {
		It("fails when the previous stage has not run", func() {
			err := p.RunStage(ctx, pipeline.StageAllometry)
			Expect(err).To(HaveOccurred())
			Expect(errors.Is(err, os.ErrNotExist)).To(BeTrue())
		})

		It("rejects unknown stages", func() {
			Expect(p.RunStage(ctx, "hatch")).To(MatchError(ContainSubstring("unknown stage")))
		})

		It("stops on a cancelled context", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()
			Expect(p.RunStage(cancelled, pipeline.StagePrep)).To(MatchError(context.Canceled))
		})

		It("uses the fitted length model when asked", func() {
			cfg.Farm.UseFittedLength = true
			Expect(p.RunStage(ctx, pipeline.StagePrep)).To(Succeed())

			m, err := p.LengthModel()
			Expect(err).NotTo(HaveOccurred())
			Expect(m.Name()).To(Equal("poly4"))
			Expect(m.Eval(8)).To(BeNumerically("~", 21, 2))
		})
	})
})
