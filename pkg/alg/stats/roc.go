package stats

import (
	"errors"
	"fmt"

	mstats "github.com/aclements/go-moremath/stats"
	"github.com/aclements/go-moremath/vec"
)

// ROCThresholds is the number of evenly spaced cut points swept over [0, 1].
const ROCThresholds = 500

// AUROCPlaces is the rounding applied to a reported AUROC.
const AUROCPlaces = 5

// chanceAUROC is the score of a classifier that cannot separate the classes.
const chanceAUROC = 0.5

// ROC errors.
var (
	ErrSingleClass  = errors.New("labels must contain both classes")
	ErrInvalidLabel = errors.New("labels must be 0 or 1")
)

// ROCPoint is one threshold of a receiver operating characteristic curve.
type ROCPoint struct {
	Threshold float64
	TPR       float64
	FPR       float64
}

// Thresholds returns n evenly spaced cut points over [0, 1], inclusive.
func Thresholds(n int) []float64 {
	return vec.Linspace(0, 1, n)
}

// ROC sweeps thresholds over the predicted probabilities.
//
//	TPR(t) = #(y=1, p ≥ t) / #(y=1)
//	FPR(t) = 1 − #(y=0, p ≤ t) / #(y=0)
//
// Both classes must be present, so neither rate has a zero denominator.
func ROC(labels, probs, thresholds []float64) ([]ROCPoint, error) {
	if len(labels) != len(probs) {
		return nil, fmt.Errorf("roc: %w: %d labels, %d probabilities", ErrLengthMismatch, len(labels), len(probs))
	}

	positives, negatives, err := countClasses(labels)
	if err != nil {
		return nil, err
	}

	points := make([]ROCPoint, len(thresholds))

	for i, t := range thresholds {
		var truePos, trueNeg int

		for k, y := range labels {
			switch {
			case y == 1 && probs[k] >= t:
				truePos++
			case y == 0 && probs[k] <= t:
				trueNeg++
			}
		}

		points[i] = ROCPoint{
			Threshold: t,
			TPR:       float64(truePos) / float64(positives),
			FPR:       1 - float64(trueNeg)/float64(negatives),
		}
	}

	return points, nil
}

// AUROC returns the area under the ROC curve of scores against labels in
// closed form: the Mann-Whitney U of positive over negative scores divided by
// the number of pairs, with ties counted as one half.
func AUROC(labels, scores []float64) (float64, error) {
	if len(labels) != len(scores) {
		return 0, fmt.Errorf("auroc: %w: %d labels, %d scores", ErrLengthMismatch, len(labels), len(scores))
	}

	_, _, err := countClasses(labels)
	if err != nil {
		return 0, err
	}

	var pos, neg []float64

	for i, y := range labels {
		if y == 1 {
			pos = append(pos, scores[i])
		} else {
			neg = append(neg, scores[i])
		}
	}

	res, err := mstats.MannWhitneyUTest(pos, neg, mstats.LocationDiffers)
	if errors.Is(err, mstats.ErrSamplesEqual) {
		return chanceAUROC, nil
	}

	if err != nil {
		return 0, fmt.Errorf("auroc: %w", err)
	}

	return res.U / float64(res.N1*res.N2), nil
}

func countClasses(labels []float64) (positives, negatives int, err error) {
	for _, y := range labels {
		switch y {
		case 1:
			positives++
		case 0:
			negatives++
		default:
			return 0, 0, fmt.Errorf("%w: got %v", ErrInvalidLabel, y)
		}
	}

	if positives == 0 || negatives == 0 {
		return 0, 0, fmt.Errorf("%w: %d positive, %d negative", ErrSingleClass, positives, negatives)
	}

	return positives, negatives, nil
}
