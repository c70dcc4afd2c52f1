package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholds(t *testing.T) {
	t.Parallel()

	ts := Thresholds(ROCThresholds)
	require.Len(t, ts, ROCThresholds)

	assert.InDelta(t, 0.0, ts[0], 1e-12)
	assert.InDelta(t, 1.0, ts[len(ts)-1], 1e-12)
}

func TestROC_Endpoints(t *testing.T) {
	t.Parallel()

	labels := []float64{0, 0, 1, 1}
	probs := []float64{0.1, 0.4, 0.35, 0.8}

	points, err := ROC(labels, probs, Thresholds(ROCThresholds))
	require.NoError(t, err)
	require.Len(t, points, ROCThresholds)

	first, last := points[0], points[len(points)-1]

	assert.InDelta(t, 1.0, first.TPR, 1e-12)
	assert.InDelta(t, 1.0, first.FPR, 1e-12)
	assert.InDelta(t, 0.0, last.TPR, 1e-12)
	assert.InDelta(t, 0.0, last.FPR, 1e-12)

	for i := 1; i < len(points); i++ {
		assert.LessOrEqual(t, points[i].TPR, points[i-1].TPR)
	}
}

func TestROC_Errors(t *testing.T) {
	t.Parallel()

	_, err := ROC([]float64{1, 1}, []float64{0.2, 0.3}, Thresholds(5))
	require.ErrorIs(t, err, ErrSingleClass)

	_, err = ROC([]float64{0, 2}, []float64{0.2, 0.3}, Thresholds(5))
	require.ErrorIs(t, err, ErrInvalidLabel)

	_, err = ROC([]float64{0, 1}, []float64{0.2}, Thresholds(5))
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestAUROC(t *testing.T) {
	t.Parallel()

	labels := []float64{0, 0, 1, 1}

	tests := []struct {
		name     string
		scores   []float64
		expected float64
	}{
		{name: "probabilities", scores: []float64{0.1, 0.4, 0.35, 0.8}, expected: 0.75},
		{name: "hard_predictions_with_ties", scores: []float64{0, 1, 1, 1}, expected: 0.75},
		{name: "perfect", scores: []float64{0, 0, 1, 1}, expected: 1},
		{name: "all_equal_is_chance", scores: []float64{1, 1, 1, 1}, expected: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := AUROC(labels, tt.scores)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}
