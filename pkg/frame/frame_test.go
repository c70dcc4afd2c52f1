package frame_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/statplot/pkg/frame"
)

func sampleTable(t *testing.T) *frame.Table {
	t.Helper()

	tbl, err := frame.FromRows([][]string{
		{" sex ", "age", "fare"},
		{"male", "22", "7.25"},
		{"female", "38", "71.28"},
		{"female", "", "7.92"},
		{"male", "35", "NA"},
		{"", "54", "51.86"},
	})
	require.NoError(t, err)

	return tbl
}

func TestFromRows_InfersKinds(t *testing.T) {
	t.Parallel()

	tbl := sampleTable(t)

	assert.Equal(t, 5, tbl.Len())
	assert.Equal(t, []string{"sex", "age", "fare"}, tbl.Names())
	assert.True(t, tbl.Has("sex"))
	assert.False(t, tbl.Has(" sex "))

	kind, err := tbl.Kind("age")
	require.NoError(t, err)
	assert.Equal(t, frame.Numeric, kind)

	kind, err = tbl.Kind("sex")
	require.NoError(t, err)
	assert.Equal(t, frame.Categorical, kind)
	assert.Equal(t, "categorical", kind.String())

	age, err := tbl.Numeric("age")
	require.NoError(t, err)
	require.Len(t, age, 5)
	assert.InDelta(t, 22.0, age[0], 1e-12)
	assert.True(t, math.IsNaN(age[2]))
}

func TestNumeric_Errors(t *testing.T) {
	t.Parallel()

	tbl := sampleTable(t)

	_, err := tbl.Numeric("sex")
	require.ErrorIs(t, err, frame.ErrNotNumeric)

	_, err = tbl.Numeric("missing")
	require.ErrorIs(t, err, frame.ErrColumnNotFound)

	_, err = tbl.NumericMatrix([]string{"age", "sex"})
	require.ErrorIs(t, err, frame.ErrNotNumeric)
}

func TestNumeric_ReturnsCopy(t *testing.T) {
	t.Parallel()

	tbl := sampleTable(t)

	age, err := tbl.Numeric("age")
	require.NoError(t, err)

	age[0] = 999

	again, err := tbl.Numeric("age")
	require.NoError(t, err)
	assert.InDelta(t, 22.0, again[0], 1e-12)
}

func TestFromRows_Errors(t *testing.T) {
	t.Parallel()

	_, err := frame.FromRows(nil)
	require.ErrorIs(t, err, frame.ErrEmptyTable)

	_, err = frame.FromRows([][]string{{"a"}, {"1", "2"}})
	require.ErrorIs(t, err, frame.ErrRaggedRow)

	_, err = frame.FromRows([][]string{{"a", "a"}})
	require.ErrorIs(t, err, frame.ErrDuplicateColumn)
}

func TestNew_ColumnLength(t *testing.T) {
	t.Parallel()

	_, err := frame.New(
		frame.Floats("x", []float64{1, 2, 3}),
		frame.Text("y", []string{"a", "b"}),
	)
	require.ErrorIs(t, err, frame.ErrColumnLength)
}

func TestCounts_FirstSeenOrder(t *testing.T) {
	t.Parallel()

	tbl := sampleTable(t)

	counts, err := tbl.Counts("sex")
	require.NoError(t, err)

	assert.Equal(t, []frame.Count{{Category: "male", N: 2}, {Category: "female", N: 2}}, counts)
}

func TestCounts_NumericSorted(t *testing.T) {
	t.Parallel()

	tbl, err := frame.New(frame.Floats("pclass", []float64{3, 1, 3, 2, math.NaN(), 1}))
	require.NoError(t, err)

	counts, err := tbl.Counts("pclass")
	require.NoError(t, err)

	assert.Equal(t, []frame.Count{
		{Category: "1", N: 2},
		{Category: "2", N: 1},
		{Category: "3", N: 2},
	}, counts)
}

func TestGroups(t *testing.T) {
	t.Parallel()

	tbl := sampleTable(t)

	groups, err := tbl.Groups("sex", "fare")
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "male", groups[0].Category)
	assert.Equal(t, []float64{7.25}, groups[0].Values)
	assert.Equal(t, "female", groups[1].Category)
	assert.Equal(t, []float64{71.28, 7.92}, groups[1].Values)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	tbl, err := frame.New(
		frame.Floats("x", []float64{1, 2, 3, math.NaN()}),
		frame.Text("c", []string{"a", "b", "a", ""}),
	)
	require.NoError(t, err)

	summaries := tbl.Describe()
	require.Len(t, summaries, 2)

	x := summaries[0]
	assert.Equal(t, frame.Numeric, x.Kind)
	assert.Equal(t, 3, x.Count)
	assert.Equal(t, 1, x.Missing)
	assert.InDelta(t, 2.0, x.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(2.0/3.0), x.Std, 1e-12)
	assert.InDelta(t, 1.0, x.Min, 1e-12)
	assert.InDelta(t, 3.0, x.Max, 1e-12)

	c := summaries[1]
	assert.Equal(t, frame.Categorical, c.Kind)
	assert.Equal(t, 2, c.Unique)
	assert.Equal(t, 1, c.Missing)
	assert.True(t, math.IsNaN(c.Mean))
}
