package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bellSample = []float64{1, 2, 2, 3, 3, 3, 4, 4, 5}

func TestKDE_IntegratesToOne(t *testing.T) {
	t.Parallel()

	density, err := KDE(bellSample, DefaultDensityPoints)
	require.NoError(t, err)
	require.Len(t, density.X, DefaultDensityPoints)
	require.Len(t, density.Y, DefaultDensityPoints)

	var area float64

	for i := 1; i < len(density.X); i++ {
		area += (density.X[i] - density.X[i-1]) * (density.Y[i] + density.Y[i-1]) / 2
	}

	assert.InDelta(t, 1.0, area, 0.02)
	assert.Greater(t, density.Bandwidth, 0.0)
}

func TestKDE_ConstantSampleUsesFallbackBandwidth(t *testing.T) {
	t.Parallel()

	density, err := KDE([]float64{2, 2, 2}, 50)
	require.NoError(t, err)

	assert.InDelta(t, fallbackBandwidth, density.Bandwidth, 1e-12)
	assert.False(t, math.IsNaN(density.Peak()))
}

func TestKDE_Empty(t *testing.T) {
	t.Parallel()

	_, err := KDE(nil, 10)
	require.ErrorIs(t, err, ErrEmptySample)
}

func TestNewViolinShape_ScaledAndClipped(t *testing.T) {
	t.Parallel()

	const halfWidth = 0.4

	shape, err := NewViolinShape(bellSample, DefaultDensityPoints, halfWidth)
	require.NoError(t, err)
	require.Len(t, shape.HalfWidth, len(shape.Positions))

	assert.InDelta(t, halfWidth, Max(shape.HalfWidth), 1e-9)
	assert.GreaterOrEqual(t, Min(shape.Positions), 1.0)
	assert.LessOrEqual(t, Max(shape.Positions), 5.0)
}
