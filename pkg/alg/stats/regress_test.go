package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearFit_ExactLine(t *testing.T) {
	t.Parallel()

	x := []float64{1, 2, 3, 4}
	y := []float64{3, 5, 7, 9}

	fit, err := LinearFit(x, y)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, fit.Alpha, 1e-12)
	assert.InDelta(t, 2.0, fit.Beta, 1e-12)
	assert.Equal(t, 4, fit.N)
	assert.InDelta(t, 0.0, fit.ResidualSE, 1e-12)

	for _, r := range fit.Residuals(x, y) {
		assert.InDelta(t, 0.0, r, 1e-12)
	}

	lower, upper := fit.Band([]float64{0, 10}, IntervalCI95)
	assert.InDelta(t, 1.0, lower[0], 1e-12)
	assert.InDelta(t, 21.0, upper[1], 1e-12)
}

func TestLinearFit_BandWidensAwayFromMean(t *testing.T) {
	t.Parallel()

	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 3, 2, 5, 4}

	fit, err := LinearFit(x, y)
	require.NoError(t, err)

	assert.InDelta(t, 0.6, fit.Alpha, 1e-12)
	assert.InDelta(t, 0.8, fit.Beta, 1e-12)

	lower, upper := fit.Band([]float64{1, 3, 5}, IntervalCI95)
	mid := upper[1] - lower[1]

	assert.Greater(t, upper[0]-lower[0], mid)
	assert.Greater(t, upper[2]-lower[2], mid)

	sdLower, sdUpper := fit.Band([]float64{3}, IntervalSD)
	assert.InDelta(t, 2*fit.ResidualSE, sdUpper[0]-sdLower[0], 1e-12)

	noneLower, noneUpper := fit.Band([]float64{3}, IntervalNone)
	assert.Equal(t, noneLower, noneUpper)
}

func TestLinearFit_Degenerate(t *testing.T) {
	t.Parallel()

	_, err := LinearFit([]float64{2, 2, 2}, []float64{1, 2, 3})
	require.ErrorIs(t, err, ErrDegenerateFit)

	_, err = LinearFit([]float64{1, 2}, []float64{1})
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestMeanError(t *testing.T) {
	t.Parallel()

	values := []float64{1, 2, 3, 4, 5}

	tests := []struct {
		name   string
		kind   Interval
		lo, hi float64
		delta  float64
	}{
		{name: "none", kind: IntervalNone, lo: 3, hi: 3, delta: 1e-12},
		{name: "sd", kind: IntervalSD, lo: 1.41886, hi: 4.58114, delta: 1e-4},
		{name: "ci95", kind: IntervalCI95, lo: 1.03675, hi: 4.96325, delta: 1e-3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mean, lo, hi, err := MeanError(values, tt.kind)
			require.NoError(t, err)

			assert.InDelta(t, 3.0, mean, 1e-12)
			assert.InDelta(t, tt.lo, lo, tt.delta)
			assert.InDelta(t, tt.hi, hi, tt.delta)
		})
	}
}

func TestMeanError_SingleValueCollapses(t *testing.T) {
	t.Parallel()

	mean, lo, hi, err := MeanError([]float64{7}, IntervalCI95)
	require.NoError(t, err)

	assert.InDelta(t, 7.0, mean, 1e-12)
	assert.InDelta(t, 7.0, lo, 1e-12)
	assert.InDelta(t, 7.0, hi, 1e-12)
}
