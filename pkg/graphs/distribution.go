package graphs

import (
	"fmt"

	"github.com/Sumatoshi-tech/statplot/pkg/alg/stats"
	"github.com/Sumatoshi-tech/statplot/pkg/figure"
	"github.com/Sumatoshi-tech/statplot/pkg/frame"
)

const (
	violinPoints    = 128
	violinHalfWidth = 0.4
	shadeOpacity    = 0.25
)

// HistogramSpec selects the columns and per-column cosmetics of Histograms.
type HistogramSpec struct {
	Columns []string
	Titles  []string
	Labels  []string
	YLabel  string
	// Ticks are the x tick positions of each subplot. Optional.
	Ticks [][]float64
	Grid  Grid
}

// Histograms draws one histogram per column titled "Distribution Of {title}",
// with a vertical line at the column mean.
func Histograms(t *frame.Table, s HistogramSpec, o Options) (*figure.Figure, error) {
	err := checkLengths(len(s.Columns),
		map[string]int{"titles": len(s.Titles)},
		map[string]int{"labels": len(s.Labels), "ticks": len(s.Ticks)})
	if err != nil {
		return nil, err
	}

	return eachColumn(o, s.Columns, s.Grid, func(i int, ax *figure.Axes) error {
		values, numErr := t.Numeric(s.Columns[i])
		if numErr != nil {
			return numErr
		}

		finite := stats.Finite(values)

		hist, histErr := stats.NewHistogram(finite, stats.AutoBins(finite))
		if histErr != nil {
			return histErr
		}

		ax.Title = "Distribution Of " + s.Titles[i]
		ax.XLabel = at(s.Labels, i)
		ax.YLabel = s.YLabel
		ax.XTicks = at(s.Ticks, i)
		ax.Add(
			figure.Bars{Name: s.Columns[i], Edges: hist.Edges, Counts: hist.Counts, Color: o.Colors.Histogram},
			figure.RefLine{Name: "mean", Vertical: true, Value: stats.Mean(finite), Color: o.Colors.Mean},
		)

		return nil
	})
}

// KDESpec is the fixed pair of columns compared by KDEPlots.
type KDESpec struct {
	Columns [2]string
	Title   string
	Colors  [2]string
	Labels  [2]string
	XLabel  string
	YLabel  string
	Ticks   []float64
}

// KDEPlots overlays the density estimates of exactly two columns on one
// axes, with the legend outside the plot area.
func KDEPlots(t *frame.Table, s KDESpec, o Options) (*figure.Figure, error) {
	fig, err := o.newFigure("", Grid{Rows: 1, Cols: 1}, 1)
	if err != nil {
		return nil, err
	}

	ax := fig.At(0)
	ax.Title = s.Title
	ax.XLabel = s.XLabel
	ax.YLabel = s.YLabel
	ax.XTicks = s.Ticks
	ax.Legend = figure.LegendOutside

	for k, col := range s.Columns {
		values, numErr := t.Numeric(col)
		if numErr != nil {
			_ = fig.Close()

			return nil, fmt.Errorf("column %q: %w", col, numErr)
		}

		density, kdeErr := stats.KDE(values, stats.DefaultDensityPoints)
		if kdeErr != nil {
			_ = fig.Close()

			return nil, fmt.Errorf("column %q: %w", col, kdeErr)
		}

		name := s.Labels[k]
		if name == "" {
			name = col
		}

		color := s.Colors[k]
		if color == "" {
			color = o.Colors.KDE[k]
		}

		ax.Add(figure.Line{
			Name:        name,
			X:           density.X,
			Y:           density.Y,
			Color:       color,
			Fill:        o.Style.Shade,
			FillOpacity: shadeOpacity,
		})
	}

	return fig, nil
}

// DistributionSpec selects the columns of BoxPlots and ViolinPlots.
type DistributionSpec struct {
	Columns []string
	Titles  []string
	Labels  []string
	// Ticks are placed on the value axis of each subplot. Optional.
	Ticks [][]float64
	Grid  Grid
}

func (s DistributionSpec) check() error {
	return checkLengths(len(s.Columns),
		map[string]int{"titles": len(s.Titles)},
		map[string]int{"labels": len(s.Labels), "ticks": len(s.Ticks)})
}

// placeValueAxis puts the label on x and the ticks on whichever axis
// carries the values.
func placeValueAxis(ax *figure.Axes, label string, ticks []float64, orient figure.Orientation) {
	ax.XLabel = label
	if orient == figure.Horizontal {
		ax.XTicks = ticks
	} else {
		ax.YTicks = ticks
	}
}

// BoxPlots draws one box plot per column. Orientation defaults to "h".
func BoxPlots(t *frame.Table, s DistributionSpec, o Options) (*figure.Figure, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	orient, err := o.Style.Orientation.resolve(Horizontal)
	if err != nil {
		return nil, err
	}

	return eachColumn(o, s.Columns, s.Grid, func(i int, ax *figure.Axes) error {
		values, numErr := t.Numeric(s.Columns[i])
		if numErr != nil {
			return numErr
		}

		summary, boxErr := stats.Box(values)
		if boxErr != nil {
			return boxErr
		}

		ax.Title = s.Titles[i]
		placeValueAxis(ax, at(s.Labels, i), at(s.Ticks, i), orient)
		ax.Add(figure.Box{Name: s.Columns[i], Summary: summary, Orientation: orient})

		return nil
	})
}

// ViolinPlots draws one violin per column: the mirrored density with the
// quartiles and median inside. Orientation defaults to "h".
func ViolinPlots(t *frame.Table, s DistributionSpec, o Options) (*figure.Figure, error) {
	if err := s.check(); err != nil {
		return nil, err
	}

	orient, err := o.Style.Orientation.resolve(Horizontal)
	if err != nil {
		return nil, err
	}

	return eachColumn(o, s.Columns, s.Grid, func(i int, ax *figure.Axes) error {
		values, numErr := t.Numeric(s.Columns[i])
		if numErr != nil {
			return numErr
		}

		summary, boxErr := stats.Box(values)
		if boxErr != nil {
			return boxErr
		}

		shape, shapeErr := stats.NewViolinShape(values, violinPoints, violinHalfWidth)
		if shapeErr != nil {
			return shapeErr
		}

		ax.Title = s.Titles[i]
		placeValueAxis(ax, at(s.Labels, i), at(s.Ticks, i), orient)
		ax.Add(figure.Violin{Name: s.Columns[i], Shape: shape, Summary: summary, Orientation: orient})

		return nil
	})
}
