package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/dragonlab/internal/dataset"
	"github.com/san-kum/dragonlab/internal/dynamo"
	"github.com/san-kum/dragonlab/internal/population"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPearson(t *testing.T) {
	r, err := Pearson([]float64{1, 2, 3}, []float64{2, 4, 6})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 1e-12)

	r, err = Pearson([]float64{1, 2, 3}, []float64{3, 2, 1})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, r, 1e-12)

	_, err = Pearson([]float64{1}, []float64{1})
	assert.ErrorIs(t, err, ErrTooFew)

	_, err = Pearson([]float64{1, 2}, []float64{1})
	assert.Error(t, err)
}

func TestRanksWithTies(t *testing.T) {
	assert.Equal(t, []float64{1, 2.5, 2.5, 4}, Ranks([]float64{1, 5, 5, 9}))
	assert.Equal(t, []float64{3, 1, 2}, Ranks([]float64{30, 10, 20}))
}

func TestSpearmanMonotone(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 8, 27, 64, 125}

	rho, err := Spearman(x, y)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rho, 1e-12)

	pearson, _ := Pearson(x, y)
	assert.Less(t, pearson, 1.0)
}

func TestSpearmanTies(t *testing.T) {
	// Ranks x: 1, 2.5, 2.5, 4; y: 1, 2, 3, 4.
	rho, err := Spearman([]float64{1, 2, 2, 3}, []float64{1, 2, 3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 4.5/math.Sqrt(4.5*5), rho, 1e-12)
}

const traits = "length_m,wingspan_m,mass_kg\n" +
	"1,2,1\n" +
	"2,4,8\n" +
	"3,6,27\n" +
	",8,64\n" +
	"5,10,125\n"

func TestCorrelationMatrix(t *testing.T) {
	tbl, err := dataset.ReadCSV(strings.NewReader(traits))
	require.NoError(t, err)

	cols := []string{"length_m", "wingspan_m", "mass_kg"}
	corr, err := CorrelationMatrix(tbl, cols)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, corr.At(0, 0), 1e-12)
	assert.InDelta(t, 1.0, corr.At(0, 1), 1e-12)
	assert.Equal(t, corr.At(0, 2), corr.At(2, 0))

	mt := MatrixTable(corr, cols)
	assert.Equal(t, []string{"", "length_m", "wingspan_m", "mass_kg"}, mt.Columns())
	assert.Equal(t, 3, mt.Len())
}

func TestPairwiseFits(t *testing.T) {
	tbl, err := dataset.ReadCSV(strings.NewReader(traits))
	require.NoError(t, err)

	pairs, err := PairwiseFits(tbl, DefaultTraits)
	require.NoError(t, err)
	require.Len(t, pairs, 3)

	first := pairs[0]
	assert.Equal(t, "length_m", first.X)
	assert.Equal(t, "wingspan_m", first.Y)
	assert.Equal(t, 4, first.N)
	assert.Equal(t, "wingspan_m_vs_length_m_fit.png", first.Figure)
	require.NoError(t, first.Err)
	assert.Equal(t, "linear", first.Best.Model.Name())

	cube := pairs[1]
	assert.Equal(t, "mass_kg", cube.Y)
	require.NoError(t, cube.Err)
	assert.InDelta(t, 1.0, cube.Best.RSquared, 1e-9)

	out := PairsTable(pairs)
	assert.Equal(t, 3, out.Len())
	types, _ := out.Strings("best_fit_type")
	assert.Equal(t, "linear", types[0])
}

func TestPairwiseFitsTooFewRows(t *testing.T) {
	tbl, err := dataset.ReadCSV(strings.NewReader("length_m,mass_kg\n1,2\n"))
	require.NoError(t, err)

	pairs, err := PairwiseFits(tbl, DefaultTraits)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Error(t, pairs[0].Err)

	types, _ := PairsTable(pairs).Strings("best_fit_type")
	assert.Equal(t, "", types[0])
}

func TestParameterScan(t *testing.T) {
	points, err := ParameterScan(population.DefaultParams(), "b", 1, 20, 20)
	require.NoError(t, err)
	require.Len(t, points, 20)

	for _, p := range points {
		assert.Equal(t, p.R0 > 1, p.Growth > 0, "b=%v", p.Param)
	}

	r0, _ := population.R0(population.DefaultParams())
	b, ok := Threshold(points)
	require.True(t, ok)
	assert.InDelta(t, 4/r0, b, 1e-9)

	_, err = ParameterScan(population.DefaultParams(), "bogus", 0, 1, 3)
	assert.ErrorIs(t, err, population.ErrUnknownParam)
}

func TestPhasePortrait(t *testing.T) {
	res := &dynamo.Result{
		States: []dynamo.State{{0, 0}, {1, 1}, {2, 4}},
		Times:  []float64{0, 1, 2},
	}

	p := PhasePortrait(res, 0, 1)
	require.NotNil(t, p)
	assert.Equal(t, []float64{0, 1, 2}, p.X)
	assert.Equal(t, 4.0, p.Y[2])

	xmin, xmax, ymin, ymax := p.Extent()
	assert.Equal(t, []float64{0, 2, 0, 4}, []float64{xmin, xmax, ymin, ymax})

	assert.Nil(t, PhasePortrait(res, 0, 5))
	assert.Nil(t, PhasePortrait(nil, 0, 1))
}
