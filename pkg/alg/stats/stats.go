// Package stats provides the numerical routines behind the plot builders:
// summary statistics, bin selection, density estimates, correlation,
// least-squares fits and classifier curves.
package stats

import (
	"cmp"
	"errors"
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Sentinel errors.
var (
	ErrEmptySample    = errors.New("sample has no finite values")
	ErrLengthMismatch = errors.New("input slices differ in length")
)

// Quartile positions used by box summaries and bin widths.
const (
	quartileLow  = 0.25
	quartileMid  = 0.5
	quartileHigh = 0.75
)

// Finite returns the values that are neither NaN nor infinite, in order.
func Finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))

	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}

	return out
}

// Mean is the arithmetic mean; 0 when values is empty.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return stat.Mean(values, nil)
}

// MeanStdDev returns the mean and the population (ddof=0) standard
// deviation, or zeros for an empty sample.
func MeanStdDev(values []float64) (mean, stddev float64) {
	if len(values) == 0 {
		return 0, 0
	}

	return stat.PopMeanStdDev(values, nil)
}

// sortedPercentile interpolates linearly between the closest ranks of an
// ascending, non-empty slice.
func sortedPercentile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))

	if lo == hi || hi >= len(sorted) {
		return sorted[lo]
	}

	frac := pos - float64(lo)

	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// IQR is the interquartile range of values, 0 when empty.
func IQR(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return sortedPercentile(sorted, quartileHigh) - sortedPercentile(sorted, quartileLow)
}

// Round rounds x half away from zero to the given number of decimal places.
func Round(x float64, places int) float64 {
	scale := math.Pow(10, float64(places))

	return math.Round(x*scale) / scale
}

// Min is slices.Min that returns the zero value for an empty slice.
func Min[T cmp.Ordered](values []T) T {
	if len(values) == 0 {
		var zero T

		return zero
	}

	return slices.Min(values)
}

// Max is slices.Max that returns the zero value for an empty slice.
func Max[T cmp.Ordered](values []T) T {
	if len(values) == 0 {
		var zero T

		return zero
	}

	return slices.Max(values)
}
