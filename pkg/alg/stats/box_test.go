package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBox(t *testing.T) {
	t.Parallel()

	summary, err := Box([]float64{100, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(t, err)

	assert.InDelta(t, 3.25, summary.Q1, 1e-12)
	assert.InDelta(t, 5.5, summary.Median, 1e-12)
	assert.InDelta(t, 7.75, summary.Q3, 1e-12)
	assert.InDelta(t, 1.0, summary.LowWhisker, 1e-12)
	assert.InDelta(t, 9.0, summary.HighWhisker, 1e-12)
	assert.Equal(t, []float64{100}, summary.Outliers)
	assert.Equal(t, 10, summary.N)
}

func TestBox_Empty(t *testing.T) {
	t.Parallel()

	_, err := Box(nil)
	require.ErrorIs(t, err, ErrEmptySample)
}
