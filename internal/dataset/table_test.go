package dataset

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustRead(t *testing.T, s string) *Table {
	t.Helper()
	tbl, err := ReadCSV(strings.NewReader(s))
	require.NoError(t, err)
	return tbl
}

func TestReadCSV(t *testing.T) {
	tbl := mustRead(t, "name,age_yr,length_m\nA,1,2.5\nB,NA,\n")

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"name", "age_yr", "length_m"}, tbl.Columns())

	ages, err := tbl.Floats("age_yr")
	require.NoError(t, err)
	assert.Equal(t, 1.0, ages[0])
	assert.True(t, math.IsNaN(ages[1]))
}

func TestReadCSVMalformed(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,2,3\n"))
	assert.Error(t, err)

	_, err = ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = ReadCSV(strings.NewReader("a,\"b\n1,2\n"))
	assert.Error(t, err)
}

func TestFloatsNotNumeric(t *testing.T) {
	tbl := mustRead(t, "x\n1\nabc\n")

	_, err := tbl.Floats("x")
	assert.ErrorIs(t, err, ErrNotNumeric)

	_, err = tbl.Floats("missing")
	assert.ErrorIs(t, err, ErrNoColumn)
}

func TestNAVariants(t *testing.T) {
	for _, cell := range []string{"", "NA", "NaN", "nan", "<NA>", " "} {
		assert.True(t, IsNA(cell), "%q", cell)
	}
	assert.False(t, IsNA("0"))
}

func TestWriteCSVRoundTrip(t *testing.T) {
	tbl := mustRead(t, "a,b\n1,<NA>\n2,x\n")

	var buf bytes.Buffer
	require.NoError(t, tbl.WriteCSV(&buf))
	assert.Equal(t, "a,b\n1,\n2,x\n", buf.String())
}

func TestSetFloats(t *testing.T) {
	tbl := mustRead(t, "a\n1\n2\n")

	require.NoError(t, tbl.SetFloats("b", []float64{0.5, math.NaN()}))
	b, err := tbl.Strings("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"0.5", ""}, b)

	assert.ErrorIs(t, tbl.SetFloats("c", []float64{1}), ErrLength)
}

func TestAppendUnionColumns(t *testing.T) {
	a := mustRead(t, "x,y\n1,2\n")
	b := mustRead(t, "y,z\n3,4\n")

	out := a.Append(b)
	assert.Equal(t, []string{"x", "y", "z"}, out.Columns())
	assert.Equal(t, 2, out.Len())

	x, _ := out.Strings("x")
	z, _ := out.Strings("z")
	assert.Equal(t, []string{"1", ""}, x)
	assert.Equal(t, []string{"", "4"}, z)
}

func TestDropDuplicates(t *testing.T) {
	tbl := mustRead(t, "k,v,src\n1,NA,a\n1.0,,b\n2,3,c\n2,3,d\n2,4,e\n")

	out, err := tbl.DropDuplicates("k", "v")
	require.NoError(t, err)

	src, _ := out.Strings("src")
	assert.Equal(t, []string{"a", "c", "e"}, src)
}

func TestSortByNALast(t *testing.T) {
	tbl := mustRead(t, "age,name\n8,B\n,A\n1,Z\n8,A\n0.5,C\n")

	out, err := tbl.SortBy("age", "name")
	require.NoError(t, err)

	names, _ := out.Strings("name")
	assert.Equal(t, []string{"C", "Z", "A", "B", "A"}, names)

	ages, _ := out.Strings("age")
	assert.Equal(t, "", ages[4])
}

func TestSortByStable(t *testing.T) {
	tbl := mustRead(t, "k,order\n1,first\n0,x\n1,second\n")

	out, err := tbl.SortBy("k")
	require.NoError(t, err)

	order, _ := out.Strings("order")
	assert.Equal(t, []string{"x", "first", "second"}, order)
}

func TestPairsDropsNA(t *testing.T) {
	tbl := mustRead(t, "x,y\n1,2\nNA,3\n4,\n5,6\n")

	x, y, err := tbl.Pairs("x", "y")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 5}, x)
	assert.Equal(t, []float64{2, 6}, y)
}

func TestCompleteRows(t *testing.T) {
	tbl := mustRead(t, "a,b,c\n1,2,\n3,,4\n5,6,7\n")

	out, err := tbl.CompleteRows("a", "b")
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())

	out, err = tbl.CompleteRows("a", "b", "c")
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
}

func TestRenameSelectDrop(t *testing.T) {
	tbl := mustRead(t, "age,length,extra\n1,2,3\n")

	tbl.Rename(map[string]string{"age": "age_yr", "length": "length_m"})
	assert.Equal(t, []string{"age_yr", "length_m", "extra"}, tbl.Columns())

	sel, err := tbl.Select("length_m", "age_yr")
	require.NoError(t, err)
	assert.Equal(t, []string{"length_m", "age_yr"}, sel.Columns())

	_, err = tbl.Select("nope")
	assert.ErrorIs(t, err, ErrNoColumn)

	tbl.Drop("extra")
	assert.False(t, tbl.Has("extra"))
}
