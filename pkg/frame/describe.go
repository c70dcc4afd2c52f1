package frame

import (
	"math"

	"github.com/Sumatoshi-tech/statplot/pkg/alg/stats"
)

// Summary describes one column. Numeric fields are NaN for categorical
// columns and for numeric columns with no values.
type Summary struct {
	Name    string
	Kind    Kind
	Count   int
	Missing int
	Unique  int
	Mean    float64
	Std     float64
	Min     float64
	Max     float64
}

// Describe summarizes every column in table order. Std is the population
// standard deviation.
func (t *Table) Describe() []Summary {
	out := make([]Summary, len(t.names))

	for i, name := range t.names {
		s := Summary{
			Name: name,
			Kind: t.kinds[i],
			Mean: math.NaN(),
			Std:  math.NaN(),
			Min:  math.NaN(),
			Max:  math.NaN(),
		}

		counts, _ := t.Counts(name)
		s.Unique = len(counts)

		for _, c := range counts {
			s.Count += c.N
		}

		s.Missing = t.rows - s.Count

		if s.Kind == Numeric && s.Count > 0 {
			values := stats.Finite(t.numbers[i])
			s.Mean, s.Std = stats.MeanStdDev(values)
			s.Min = stats.Min(values)
			s.Max = stats.Max(values)
		}

		out[i] = s
	}

	return out
}
