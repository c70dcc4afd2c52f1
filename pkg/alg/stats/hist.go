package stats

import (
	"math"
	"slices"
)

// MaxHistogramBins caps automatic bin selection.
const MaxHistogramBins = 50

// FreedmanDiaconisBins returns the Freedman-Diaconis bin count for values:
// bin width 2·IQR/n^(1/3) over the data range. A zero IQR falls back to
// floor(sqrt(n)). Fewer than two values yield a single bin.
func FreedmanDiaconisBins(values []float64) int {
	n := len(values)
	if n < 2 {
		return 1
	}

	width := 2 * IQR(values) / math.Cbrt(float64(n))
	if width == 0 {
		return max(1, int(math.Sqrt(float64(n))))
	}

	lo, hi := Min(values), Max(values)

	return max(1, int(math.Ceil((hi-lo)/width)))
}

// AutoBins is FreedmanDiaconisBins capped at MaxHistogramBins.
func AutoBins(values []float64) int {
	return min(FreedmanDiaconisBins(values), MaxHistogramBins)
}

// Histogram holds equal-width bin edges and per-bin counts.
// len(Edges) == len(Counts)+1.
type Histogram struct {
	Edges  []float64
	Counts []float64
}

// Centers returns the midpoint of every bin.
func (h Histogram) Centers() []float64 {
	centers := make([]float64, len(h.Counts))

	for i := range h.Counts {
		centers[i] = (h.Edges[i] + h.Edges[i+1]) / 2
	}

	return centers
}

// Width returns the common bin width.
func (h Histogram) Width() float64 {
	if len(h.Edges) < 2 {
		return 0
	}

	return h.Edges[1] - h.Edges[0]
}

// NewHistogram bins the finite values into bins equal-width intervals.
// The last bin is closed on the right so the maximum is counted.
// A degenerate range is widened by 0.5 on each side.
func NewHistogram(values []float64, bins int) (Histogram, error) {
	finite := Finite(values)
	if len(finite) == 0 {
		return Histogram{}, ErrEmptySample
	}

	bins = max(1, bins)
	lo, hi := slices.Min(finite), slices.Max(finite)

	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}

	width := (hi - lo) / float64(bins)

	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}

	edges[bins] = hi

	counts := make([]float64, bins)

	for _, v := range finite {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}

		counts[idx]++
	}

	return Histogram{Edges: edges, Counts: counts}, nil
}
