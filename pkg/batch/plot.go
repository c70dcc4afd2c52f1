// Package batch describes plots as data, so that job files, HTTP requests
// and MCP tool calls share one plot vocabulary, and renders whole jobs.
package batch

import (
	"errors"
	"fmt"

	"github.com/Sumatoshi-tech/statplot/pkg/figure"
	"github.com/Sumatoshi-tech/statplot/pkg/frame"
	"github.com/Sumatoshi-tech/statplot/pkg/graphs"
)

// Sentinel errors.
var (
	ErrUnknownKind    = errors.New("unknown plot kind")
	ErrMissingField   = errors.New("plot is missing a required field")
	ErrKDEColumns     = errors.New("kde takes exactly two columns")
	ErrUnknownMarker  = errors.New("unknown marker")
	ErrROCPrediction  = errors.New("roc needs a score column")
	ErrInvalidJob     = errors.New("job does not match schema")
	ErrDuplicatePlot  = errors.New("duplicate plot name")
	ErrPlotsFailed    = errors.New("some plots failed")
	ErrPlotPanicked   = errors.New("plot panicked")
	ErrEmptyPlotsList = errors.New("job has no plots")
	ErrPathEscapes    = errors.New("path escapes the data directory")
)

// Plot kinds.
const (
	KindHistogram  = "hist"
	KindKDE        = "kde"
	KindBox        = "box"
	KindViolin     = "violin"
	KindRegression = "regress"
	KindCount      = "count"
	KindBar        = "bar"
	KindHeatmap    = "heatmap"
	KindROC        = "roc"
	KindResidual   = "residual"
)

// Kinds lists every plot kind.
func Kinds() []string {
	return []string{
		KindHistogram, KindKDE, KindBox, KindViolin, KindRegression,
		KindCount, KindBar, KindHeatmap, KindROC, KindResidual,
	}
}

// defaultGridCols is the column count of a grid whose shape was not given.
const defaultGridCols = 3

// rocThreshold turns scores into hard predictions when no prediction
// column is given.
const rocThreshold = 0.5

// StyleOverride replaces parts of the configured style for one plot.
type StyleOverride struct {
	LineColor          string `yaml:"line_color,omitempty" json:"line_color,omitempty"`
	Shade              *bool  `yaml:"shade,omitempty" json:"shade,omitempty"`
	ConfidenceInterval string `yaml:"confidence_interval,omitempty" json:"confidence_interval,omitempty"`
	Orientation        string `yaml:"orientation,omitempty" json:"orientation,omitempty"`
}

// Plot is one plot call. Fields a kind does not use are ignored.
type Plot struct {
	Kind    string      `yaml:"kind" json:"kind"`
	Name    string      `yaml:"name,omitempty" json:"name,omitempty"`
	Columns []string    `yaml:"columns,omitempty" json:"columns,omitempty"`
	Titles  []string    `yaml:"titles,omitempty" json:"titles,omitempty"`
	Labels  []string    `yaml:"labels,omitempty" json:"labels,omitempty"`
	Ticks   [][]float64 `yaml:"ticks,omitempty" json:"ticks,omitempty"`
	Title   string      `yaml:"title,omitempty" json:"title,omitempty"`
	XLabel  string      `yaml:"xlabel,omitempty" json:"xlabel,omitempty"`
	YLabel  string      `yaml:"ylabel,omitempty" json:"ylabel,omitempty"`
	Rows    int         `yaml:"rows,omitempty" json:"rows,omitempty"`
	Cols    int         `yaml:"cols,omitempty" json:"cols,omitempty"`

	// Y is the response of regress and bar plots.
	Y string `yaml:"y,omitempty" json:"y,omitempty"`
	// X is the actual-value column of residual plots.
	X string `yaml:"x,omitempty" json:"x,omitempty"`

	// Colors are the two kde curve colors.
	Colors []string `yaml:"colors,omitempty" json:"colors,omitempty"`
	Marker string   `yaml:"marker,omitempty" json:"marker,omitempty"`

	Min          *float64 `yaml:"vmin,omitempty" json:"vmin,omitempty"`
	Max          *float64 `yaml:"vmax,omitempty" json:"vmax,omitempty"`
	Colormap     string   `yaml:"colormap,omitempty" json:"colormap,omitempty"`
	Annotate     *bool    `yaml:"annotate,omitempty" json:"annotate,omitempty"`
	Precision    *int     `yaml:"precision,omitempty" json:"precision,omitempty"`
	HideDiagonal bool     `yaml:"hide_diagonal,omitempty" json:"hide_diagonal,omitempty"`

	// Target, Score and Predicted are the roc label, probability and hard
	// prediction columns. Predicted defaults to Score ≥ 0.5.
	Target    string `yaml:"target,omitempty" json:"target,omitempty"`
	Score     string `yaml:"score,omitempty" json:"score,omitempty"`
	Predicted string `yaml:"predicted,omitempty" json:"predicted,omitempty"`

	Style *StyleOverride `yaml:"style,omitempty" json:"style,omitempty"`
}

// Result is a built figure plus the numbers some kinds compute.
type Result struct {
	Figure *figure.Figure
	// AUROC is set for roc plots.
	AUROC *float64
	// Matrix is the correlation matrix of heatmap plots.
	Matrix [][]float64
}

// Close releases the figure.
func (r *Result) Close() error {
	if r.Figure == nil {
		return nil
	}

	return r.Figure.Close()
}

// Build draws p from t. The caller owns the returned figure.
func Build(t *frame.Table, p Plot, o graphs.Options) (*Result, error) {
	opts, err := p.apply(o)
	if err != nil {
		return nil, err
	}

	grid := p.grid()

	var fig *figure.Figure

	switch p.Kind {
	case KindHistogram:
		fig, err = graphs.Histograms(t, graphs.HistogramSpec{
			Columns: p.Columns, Titles: p.titles(), Labels: p.Labels, YLabel: p.YLabel, Ticks: p.Ticks, Grid: grid,
		}, opts)
	case KindKDE:
		return p.kde(t, opts)
	case KindBox:
		fig, err = graphs.BoxPlots(t, p.distribution(grid), opts)
	case KindViolin:
		fig, err = graphs.ViolinPlots(t, p.distribution(grid), opts)
	case KindRegression:
		return p.regression(t, grid, opts)
	case KindCount:
		fig, err = graphs.CountPlots(t, graphs.CountSpec{
			Columns: p.Columns, Titles: p.titles(), Labels: p.Labels, YLabel: p.YLabel, Grid: grid,
		}, opts)
	case KindBar:
		if p.Y == "" {
			return nil, fmt.Errorf("%w: bar needs y", ErrMissingField)
		}

		fig, err = graphs.BarPlots(t, graphs.BarSpec{
			Columns: p.Columns, Y: p.Y, Titles: p.titles(), Labels: p.Labels, YLabel: p.YLabel, Grid: grid,
		}, opts)
	case KindHeatmap:
		return p.heatmap(t, opts)
	case KindROC:
		return p.roc(t, opts)
	case KindResidual:
		if p.X == "" {
			return nil, fmt.Errorf("%w: residual needs x", ErrMissingField)
		}

		fig, err = graphs.ResidualPlots(t, graphs.ResidualSpec{
			X: p.X, Columns: p.Columns, Titles: p.titles(), XLabel: p.XLabel, YLabel: p.YLabel, Grid: grid,
		}, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, p.Kind)
	}

	if err != nil {
		return nil, err
	}

	return &Result{Figure: fig}, nil
}

// apply layers the plot's style override on o.
func (p Plot) apply(o graphs.Options) (graphs.Options, error) {
	if p.Style == nil {
		return o, nil
	}

	s := p.Style

	if s.LineColor != "" {
		if _, err := figure.ParseColor(s.LineColor); err != nil {
			return o, err
		}

		o.Style.LineColor = s.LineColor
	}

	if s.Shade != nil {
		o.Style.Shade = *s.Shade
	}

	if s.ConfidenceInterval != "" {
		ci, err := graphs.ParseCI(s.ConfidenceInterval)
		if err != nil {
			return o, err
		}

		o.Style.ConfidenceInterval = ci
	}

	if s.Orientation != "" {
		orient, err := graphs.ParseOrientation(s.Orientation)
		if err != nil {
			return o, err
		}

		o.Style.Orientation = orient
	}

	return o, nil
}

// grid returns the requested grid, filling a missing dimension so every
// column gets a cell.
func (p Plot) grid() graphs.Grid {
	n := max(len(p.Columns), 1)
	rows, cols := p.Rows, p.Cols

	switch {
	case rows > 0 && cols > 0:
	case rows > 0:
		cols = ceilDiv(n, rows)
	case cols > 0:
		rows = ceilDiv(n, cols)
	default:
		cols = min(n, defaultGridCols)
		rows = ceilDiv(n, cols)
	}

	return graphs.Grid{Rows: rows, Cols: cols}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// titles defaults each subplot title to its column name.
func (p Plot) titles() []string {
	if len(p.Titles) > 0 {
		return p.Titles
	}

	return p.Columns
}

func (p Plot) distribution(grid graphs.Grid) graphs.DistributionSpec {
	return graphs.DistributionSpec{
		Columns: p.Columns, Titles: p.titles(), Labels: p.Labels, Ticks: p.Ticks, Grid: grid,
	}
}

func (p Plot) kde(t *frame.Table, o graphs.Options) (*Result, error) {
	if len(p.Columns) != 2 {
		return nil, fmt.Errorf("%w: got %d", ErrKDEColumns, len(p.Columns))
	}

	spec := graphs.KDESpec{
		Columns: [2]string{p.Columns[0], p.Columns[1]},
		Title:   p.Title,
		XLabel:  p.XLabel,
		YLabel:  p.YLabel,
	}

	copy(spec.Colors[:], p.Colors)
	copy(spec.Labels[:], p.Labels)

	if len(p.Ticks) > 0 {
		spec.Ticks = p.Ticks[0]
	}

	fig, err := graphs.KDEPlots(t, spec, o)
	if err != nil {
		return nil, err
	}

	return &Result{Figure: fig}, nil
}

var markers = map[string]figure.Marker{
	"o": figure.MarkerCircle, "circle": figure.MarkerCircle,
	"*": figure.MarkerStar, "star": figure.MarkerStar,
	"x": figure.MarkerCross, "cross": figure.MarkerCross,
	"+": figure.MarkerPlus, "plus": figure.MarkerPlus,
	"s": figure.MarkerSquare, "square": figure.MarkerSquare,
	"^": figure.MarkerTriangle, "triangle": figure.MarkerTriangle,
}

func (p Plot) regression(t *frame.Table, grid graphs.Grid, o graphs.Options) (*Result, error) {
	if p.Y == "" {
		return nil, fmt.Errorf("%w: regress needs y", ErrMissingField)
	}

	spec := graphs.RegressionSpec{
		Columns: p.Columns, Y: p.Y, Titles: p.titles(), Labels: p.Labels, YLabel: p.YLabel, Ticks: p.Ticks, Grid: grid,
	}

	if p.Marker != "" {
		m, ok := markers[p.Marker]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMarker, p.Marker)
		}

		spec.Marker = &m
	}

	fig, err := graphs.RegressionPlots(t, spec, o)
	if err != nil {
		return nil, err
	}

	return &Result{Figure: fig}, nil
}

func (p Plot) heatmap(t *frame.Table, o graphs.Options) (*Result, error) {
	spec := graphs.NewHeatmapSpec(p.Columns, p.Title)
	spec.HideDiagonal = p.HideDiagonal

	if p.Min != nil {
		spec.Min = *p.Min
	}

	if p.Max != nil {
		spec.Max = *p.Max
	}

	if p.Colormap != "" {
		spec.Colormap = p.Colormap
	} else {
		spec.Colormap = o.Colors.Colormap
	}

	if p.Annotate != nil {
		spec.Annotate = *p.Annotate
	}

	if p.Precision != nil {
		spec.Precision = *p.Precision
	}

	fig, matrix, err := graphs.Heatmap(t, spec, o)
	if err != nil {
		return nil, err
	}

	return &Result{Figure: fig, Matrix: matrix}, nil
}

func (p Plot) roc(t *frame.Table, o graphs.Options) (*Result, error) {
	if p.Target == "" {
		return nil, fmt.Errorf("%w: roc needs target", ErrMissingField)
	}

	if p.Score == "" {
		return nil, ErrROCPrediction
	}

	labels, err := t.Numeric(p.Target)
	if err != nil {
		return nil, err
	}

	scores, err := t.Numeric(p.Score)
	if err != nil {
		return nil, err
	}

	predicted := make([]float64, len(scores))

	if p.Predicted != "" {
		predicted, err = t.Numeric(p.Predicted)
		if err != nil {
			return nil, err
		}
	} else {
		for i, s := range scores {
			if s >= rocThreshold {
				predicted[i] = 1
			}
		}
	}

	title := p.Title
	if title == "" {
		title = p.Score
	}

	fig, auroc, err := graphs.ROCCurve(graphs.ROCSpec{
		Model:     graphs.ColumnPredictor{Scores: scores},
		Labels:    labels,
		Predicted: predicted,
		Title:     title,
	}, o)
	if err != nil {
		return nil, err
	}

	return &Result{Figure: fig, AUROC: &auroc}, nil
}
