package graphs

import (
	"github.com/Sumatoshi-tech/statplot/pkg/alg/stats"
	"github.com/Sumatoshi-tech/statplot/pkg/figure"
	"github.com/Sumatoshi-tech/statplot/pkg/frame"
)

// CountSpec selects the categorical columns of CountPlots.
type CountSpec struct {
	Columns []string
	Titles  []string
	Labels  []string
	YLabel  string
	Grid    Grid
}

// CountPlots draws the number of rows per category of each column.
// Orientation defaults to "h". Confidence intervals do not apply.
func CountPlots(t *frame.Table, s CountSpec, o Options) (*figure.Figure, error) {
	err := checkLengths(len(s.Columns),
		map[string]int{"titles": len(s.Titles)},
		map[string]int{"labels": len(s.Labels)})
	if err != nil {
		return nil, err
	}

	orient, err := o.Style.Orientation.resolve(Horizontal)
	if err != nil {
		return nil, err
	}

	return eachColumn(o, s.Columns, s.Grid, func(i int, ax *figure.Axes) error {
		counts, countErr := t.Counts(s.Columns[i])
		if countErr != nil {
			return countErr
		}

		bars := figure.CategoryBars{
			Name:        s.Columns[i],
			Categories:  make([]string, len(counts)),
			Values:      make([]float64, len(counts)),
			Orientation: orient,
		}

		for k, c := range counts {
			bars.Categories[k] = c.Category
			bars.Values[k] = float64(c.N)
		}

		ax.Title = s.Titles[i]
		ax.XLabel = at(s.Labels, i)
		ax.YLabel = s.YLabel
		ax.Add(bars)

		return nil
	})
}

// BarSpec plots the mean of Y per category of each of Columns.
type BarSpec struct {
	Columns []string
	Y       string
	Titles  []string
	Labels  []string
	YLabel  string
	Grid    Grid
}

// BarPlots draws the mean of Y per category of each column, with error bars
// when Style.ConfidenceInterval is set. Orientation defaults to "v".
func BarPlots(t *frame.Table, s BarSpec, o Options) (*figure.Figure, error) {
	err := checkLengths(len(s.Columns),
		map[string]int{"titles": len(s.Titles)},
		map[string]int{"labels": len(s.Labels)})
	if err != nil {
		return nil, err
	}

	orient, err := o.Style.Orientation.resolve(Vertical)
	if err != nil {
		return nil, err
	}

	kind := o.Style.ConfidenceInterval

	return eachColumn(o, s.Columns, s.Grid, func(i int, ax *figure.Axes) error {
		groups, groupErr := t.Groups(s.Columns[i], s.Y)
		if groupErr != nil {
			return groupErr
		}

		bars := figure.CategoryBars{Name: s.Y, Orientation: orient}

		for _, g := range groups {
			mean, lo, hi, meanErr := stats.MeanError(g.Values, kind)
			if meanErr != nil {
				continue
			}

			bars.Categories = append(bars.Categories, g.Category)
			bars.Values = append(bars.Values, mean)

			if kind != CINone {
				bars.Lower = append(bars.Lower, lo)
				bars.Upper = append(bars.Upper, hi)
			}
		}

		ax.Title = s.Titles[i]
		ax.XLabel = at(s.Labels, i)
		ax.YLabel = s.YLabel
		ax.Add(bars)

		return nil
	})
}
