package graphs

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/aclements/go-moremath/vec"

	"github.com/Sumatoshi-tech/statplot/pkg/alg/stats"
	"github.com/Sumatoshi-tech/statplot/pkg/figure"
)

// ErrNoModel is returned when ROCCurve has nothing to score with.
var ErrNoModel = errors.New("roc: no probability predictor")

// ROC curve axis labels and legend entries.
const (
	ROCXLabel       = "1 - Specificity"
	ROCYLabel       = "Sensitivity"
	ROCCurveName    = "ROC Curve"
	ROCBaselineName = "Baseline"
)

// ProbabilityPredictor is a fitted binary classifier. PredictProba returns
// the positive-class probability of every feature row.
type ProbabilityPredictor interface {
	PredictProba(features [][]float64) ([]float64, error)
}

// ColumnPredictor replays precomputed probabilities, one per row.
type ColumnPredictor struct {
	Scores []float64
}

// PredictProba returns the stored scores. A non-nil features matrix must
// have one row per score.
func (p ColumnPredictor) PredictProba(features [][]float64) ([]float64, error) {
	if features != nil && len(features) != len(p.Scores) {
		return nil, fmt.Errorf("%w: %d rows, %d scores", ErrLengthMismatch, len(features), len(p.Scores))
	}

	return p.Scores, nil
}

// ROCSpec is the input of ROCCurve.
type ROCSpec struct {
	Model    ProbabilityPredictor
	Features [][]float64
	// Labels are the true classes, 0 or 1.
	Labels []float64
	// Predicted are the model's hard predictions, scored for the title.
	Predicted []float64
	Title     string
}

// ROCTitle formats the chart title with the AUROC rounded to five places.
func ROCTitle(title string, auroc float64) string {
	score := strconv.FormatFloat(stats.Round(auroc, stats.AUROCPlaces), 'f', -1, 64)

	return fmt.Sprintf("%s With A Score of %s", title, score)
}

// ROCCurve sweeps 500 thresholds over the model's probabilities and plots
// the curve against the y = x baseline. The returned AUROC is computed from
// the labels and the hard predictions. Labels holding a single class fail
// with stats.ErrSingleClass.
func ROCCurve(s ROCSpec, o Options) (*figure.Figure, float64, error) {
	if s.Model == nil {
		return nil, 0, ErrNoModel
	}

	auroc, err := stats.AUROC(s.Labels, s.Predicted)
	if err != nil {
		return nil, 0, err
	}

	probs, err := s.Model.PredictProba(s.Features)
	if err != nil {
		return nil, 0, fmt.Errorf("predict: %w", err)
	}

	points, err := stats.ROC(s.Labels, probs, stats.Thresholds(stats.ROCThresholds))
	if err != nil {
		return nil, 0, err
	}

	fpr := make([]float64, len(points))
	tpr := make([]float64, len(points))

	for i, p := range points {
		fpr[i] = p.FPR
		tpr[i] = p.TPR
	}

	fig, err := o.newFigure("", Grid{Rows: 1, Cols: 1}, 1)
	if err != nil {
		return nil, 0, err
	}

	baseline := vec.Linspace(0, 1, stats.ROCThresholds)

	ax := fig.At(0)
	ax.Title = ROCTitle(s.Title, auroc)
	ax.XLabel = ROCXLabel
	ax.YLabel = ROCYLabel
	ax.Legend = figure.LegendOutside
	ax.Add(
		figure.Line{Name: ROCCurveName, X: fpr, Y: tpr, Color: o.Colors.ROC},
		figure.Line{Name: ROCBaselineName, X: baseline, Y: baseline, Color: o.Colors.Baseline, Dashed: true},
	)

	return fig, auroc, nil
}
