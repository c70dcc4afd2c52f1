package graphs

import (
	"github.com/aclements/go-moremath/vec"

	"github.com/Sumatoshi-tech/statplot/pkg/alg/stats"
	"github.com/Sumatoshi-tech/statplot/pkg/figure"
	"github.com/Sumatoshi-tech/statplot/pkg/frame"
)

// fitPoints is the number of x positions a fitted line and its band are
// evaluated at.
const fitPoints = 100

// bandOpacity is the fill opacity of confidence bands.
const bandOpacity = 0.2

// Residual plot axis labels used when none are given.
const (
	DefaultResidualXLabel = "Actual"
	DefaultResidualYLabel = "Predicted"
)

// RegressionSpec regresses Y on each of Columns.
type RegressionSpec struct {
	Columns []string
	Y       string
	Titles  []string
	Labels  []string
	YLabel  string
	Ticks   [][]float64
	Grid    Grid
	// Marker defaults to a star.
	Marker *figure.Marker
}

// RegressionPlots draws, per column, the scatter of Y against the column and
// its least-squares line. A band is added when Style.ConfidenceInterval is set.
func RegressionPlots(t *frame.Table, s RegressionSpec, o Options) (*figure.Figure, error) {
	err := checkLengths(len(s.Columns),
		map[string]int{"titles": len(s.Titles)},
		map[string]int{"labels": len(s.Labels), "ticks": len(s.Ticks)})
	if err != nil {
		return nil, err
	}

	y, err := t.Numeric(s.Y)
	if err != nil {
		return nil, err
	}

	marker := figure.MarkerStar
	if s.Marker != nil {
		marker = *s.Marker
	}

	return eachColumn(o, s.Columns, s.Grid, func(i int, ax *figure.Axes) error {
		x, numErr := t.Numeric(s.Columns[i])
		if numErr != nil {
			return numErr
		}

		fit, fitErr := stats.LinearFit(x, y)
		if fitErr != nil {
			return fitErr
		}

		finite := stats.Finite(x)
		xs := vec.Linspace(stats.Min(finite), stats.Max(finite), fitPoints)
		ys := make([]float64, len(xs))

		for k, v := range xs {
			ys[k] = fit.Predict(v)
		}

		ax.Title = s.Titles[i]
		ax.XLabel = at(s.Labels, i)
		ax.YLabel = s.YLabel
		ax.XTicks = at(s.Ticks, i)

		if o.Style.ConfidenceInterval != CINone {
			lower, upper := fit.Band(xs, o.Style.ConfidenceInterval)
			ax.Add(figure.Band{
				Name:    "ci",
				X:       xs,
				Lower:   lower,
				Upper:   upper,
				Color:   o.fitColor(),
				Opacity: bandOpacity,
			})
		}

		ax.Add(
			figure.Scatter{Name: s.Columns[i], X: x, Y: y, Marker: marker, Color: o.Colors.Marker},
			figure.Line{Name: "fit", X: xs, Y: ys, Color: o.fitColor()},
		)

		return nil
	})
}

// ResidualSpec plots the residuals of each column regressed on X.
type ResidualSpec struct {
	// X is the column of actual values.
	X       string
	Columns []string
	Titles  []string
	XLabel  string
	YLabel  string
	Grid    Grid
}

// ResidualPlots draws, per column, the residuals of a least-squares fit of
// the column on X, with a dashed zero line.
func ResidualPlots(t *frame.Table, s ResidualSpec, o Options) (*figure.Figure, error) {
	err := checkLengths(len(s.Columns), map[string]int{"titles": len(s.Titles)}, nil)
	if err != nil {
		return nil, err
	}

	x, err := t.Numeric(s.X)
	if err != nil {
		return nil, err
	}

	xLabel, yLabel := s.XLabel, s.YLabel
	if xLabel == "" {
		xLabel = DefaultResidualXLabel
	}

	if yLabel == "" {
		yLabel = DefaultResidualYLabel
	}

	return eachColumn(o, s.Columns, s.Grid, func(i int, ax *figure.Axes) error {
		y, numErr := t.Numeric(s.Columns[i])
		if numErr != nil {
			return numErr
		}

		fit, fitErr := stats.LinearFit(x, y)
		if fitErr != nil {
			return fitErr
		}

		ax.Title = s.Titles[i]
		ax.XLabel = xLabel
		ax.YLabel = yLabel
		ax.Add(
			figure.Scatter{Name: s.Columns[i], X: x, Y: fit.Residuals(x, y), Color: o.Colors.Residual},
			figure.RefLine{Name: "zero", Value: 0, Color: "gray", Dashed: true},
		)

		return nil
	})
}
