package stats

import "slices"

// whiskerFactor is Tukey's fence multiplier.
const whiskerFactor = 1.5

// BoxSummary is the five-number summary drawn by a box plot.
type BoxSummary struct {
	Q1, Median, Q3 float64
	// LowWhisker and HighWhisker are the most extreme values within
	// 1.5·IQR of the quartiles.
	LowWhisker, HighWhisker float64
	Outliers                []float64
	N                       int
}

// Box computes the box-plot summary of the finite values.
func Box(values []float64) (BoxSummary, error) {
	sorted := Finite(values)
	if len(sorted) == 0 {
		return BoxSummary{}, ErrEmptySample
	}

	slices.Sort(sorted)

	q1 := sortedPercentile(sorted, quartileLow)
	q3 := sortedPercentile(sorted, quartileHigh)
	iqr := q3 - q1
	loFence, hiFence := q1-whiskerFactor*iqr, q3+whiskerFactor*iqr

	summary := BoxSummary{
		Q1:          q1,
		Median:      sortedPercentile(sorted, quartileMid),
		Q3:          q3,
		LowWhisker:  q1,
		HighWhisker: q3,
		N:           len(sorted),
	}

	for _, v := range sorted {
		if v < loFence || v > hiFence {
			summary.Outliers = append(summary.Outliers, v)

			continue
		}

		summary.LowWhisker = min(summary.LowWhisker, v)
		summary.HighWhisker = max(summary.HighWhisker, v)
	}

	return summary, nil
}
