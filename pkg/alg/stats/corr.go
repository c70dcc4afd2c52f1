package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// minPairs is the smallest number of complete pairs a correlation needs.
const minPairs = 2

// CorrelationMatrix returns the Pearson correlation of every pair of columns.
// Rows with a NaN in either column are dropped pairwise. Pairs with fewer
// than two complete rows, or a constant column, yield NaN. The diagonal is 1
// for any column with variance. The result is symmetric.
func CorrelationMatrix(columns [][]float64) ([][]float64, error) {
	for _, col := range columns[min(1, len(columns)):] {
		if len(col) != len(columns[0]) {
			return nil, ErrLengthMismatch
		}
	}

	n := len(columns)

	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}

	for i := range n {
		for j := i; j < n; j++ {
			r := pairwisePearson(columns[i], columns[j])
			matrix[i][j] = r
			matrix[j][i] = r
		}
	}

	return matrix, nil
}

func pairwisePearson(x, y []float64) float64 {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))

	for k := range x {
		if math.IsNaN(x[k]) || math.IsNaN(y[k]) {
			continue
		}

		xs = append(xs, x[k])
		ys = append(ys, y[k])
	}

	if len(xs) < minPairs {
		return math.NaN()
	}

	r := stat.Correlation(xs, ys, nil)
	if math.IsInf(r, 0) {
		return math.NaN()
	}

	return max(-1, min(r, 1))
}
