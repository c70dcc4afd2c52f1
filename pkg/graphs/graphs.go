// Package graphs builds figures from tables: histograms, density overlays,
// box and violin plots, regression, count and bar plots, correlation
// heatmaps, ROC curves and residual plots.
//
// Every entry point returns a fresh *figure.Figure owned by the caller, who
// renders it and then calls Close. Nothing is shared between calls.
package graphs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/statplot/pkg/alg/stats"
	"github.com/Sumatoshi-tech/statplot/pkg/figure"
)

// Sentinel errors.
var (
	ErrLengthMismatch = errors.New("parallel list length does not match column count")
	ErrNoColumns      = errors.New("no columns selected")
	ErrOrientation    = errors.New(`orientation must be "h" or "v"`)
	ErrConfidence     = errors.New(`confidence interval must be none, true, 95 or "sd"`)
)

// CI selects the uncertainty drawn by regression and bar plots.
type CI = stats.Interval

// Confidence intervals.
const (
	CINone = stats.IntervalNone
	CI95   = stats.IntervalCI95
	CISD   = stats.IntervalSD
)

// ParseCI accepts the spellings used by job files and flags:
// "", none, false, 0 → CINone; true, 1, 95, ci95 → CI95; sd → CISD.
func ParseCI(s string) (CI, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "false", "off", "0":
		return CINone, nil
	case "true", "1", "95", "ci95", "ci":
		return CI95, nil
	case "sd":
		return CISD, nil
	default:
		return CINone, fmt.Errorf("%w: %q", ErrConfidence, s)
	}
}

// Orientation is "h" or "v". Empty leaves the choice to each plot.
type Orientation string

// Orientations.
const (
	Horizontal Orientation = "h"
	Vertical   Orientation = "v"
)

// ParseOrientation accepts h, v, horizontal and vertical.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return "", nil
	case "h", "horizontal":
		return Horizontal, nil
	case "v", "vertical":
		return Vertical, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrOrientation, s)
	}
}

func (o Orientation) resolve(fallback Orientation) (figure.Orientation, error) {
	if o == "" {
		o = fallback
	}

	switch o {
	case Horizontal:
		return figure.Horizontal, nil
	case Vertical:
		return figure.Vertical, nil
	default:
		return figure.Vertical, fmt.Errorf("%w: %q", ErrOrientation, string(o))
	}
}

// Style holds the recognized styling options.
type Style struct {
	// LineColor colors fitted lines. Empty means the palette's fit color.
	LineColor string
	// Shade fills the area under density curves.
	Shade bool
	// ConfidenceInterval draws bands on fits and error bars on bar plots.
	ConfidenceInterval CI
	// Orientation overrides each plot's default orientation.
	Orientation Orientation
}

// Palette names the fixed colors of the plots.
type Palette struct {
	Histogram string
	Mean      string
	Marker    string
	Fit       string
	KDE       [2]string
	ROC       string
	Baseline  string
	Residual  string
	Colormap  string
}

// Options are the settings threaded into every call.
type Options struct {
	// Width and Height are the figure size in inches. Zero uses the figure default.
	Width  float64
	Height float64
	Fonts  figure.Fonts
	Style  Style
	Colors Palette
}

// DefaultOptions returns the stock look: black histograms with a red mean
// line, black star markers with a red fit, shaded densities.
func DefaultOptions() Options {
	return Options{
		Width:  figure.DefaultWidth,
		Height: figure.DefaultHeight,
		Fonts:  figure.DefaultFonts(),
		Style:  Style{Shade: true},
		Colors: Palette{
			Histogram: "black",
			Mean:      "red",
			Marker:    "black",
			Fit:       "red",
			KDE:       [2]string{"", ""},
			ROC:       "darkorange",
			Baseline:  "navy",
			Residual:  "",
			Colormap:  figure.ColormapRdBu,
		},
	}
}

// Grid is the subplot arrangement of a multi-column call.
type Grid struct {
	Rows int
	Cols int
}

func (o Options) newFigure(title string, grid Grid, n int) (*figure.Figure, error) {
	fig, err := figure.New(title, figure.Layout{
		Rows:   grid.Rows,
		Cols:   grid.Cols,
		Width:  o.Width,
		Height: o.Height,
	}, n)
	if err != nil {
		return nil, err
	}

	if o.Fonts != (figure.Fonts{}) {
		fig.Fonts = o.Fonts
	}

	return fig, nil
}

func (o Options) fitColor() string {
	if o.Style.LineColor != "" {
		return o.Style.LineColor
	}

	return o.Colors.Fit
}

// eachColumn builds a figure with one axes per column. On error the
// partially built figure is closed.
func eachColumn(o Options, columns []string, grid Grid, fill func(i int, ax *figure.Axes) error) (*figure.Figure, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}

	fig, err := o.newFigure("", grid, len(columns))
	if err != nil {
		return nil, err
	}

	for i, ax := range fig.Axes() {
		fillErr := fill(i, ax)
		if fillErr != nil {
			_ = fig.Close()

			return nil, fmt.Errorf("column %q: %w", columns[i], fillErr)
		}
	}

	return fig, nil
}

// checkLengths verifies that every required list has n entries and every
// optional list is either empty or has n entries.
func checkLengths(n int, required map[string]int, optional map[string]int) error {
	for name, got := range required {
		if got != n {
			return fmt.Errorf("%w: %d columns, %d %s", ErrLengthMismatch, n, got, name)
		}
	}

	for name, got := range optional {
		if got != 0 && got != n {
			return fmt.Errorf("%w: %d columns, %d %s", ErrLengthMismatch, n, got, name)
		}
	}

	return nil
}

func at[T any](list []T, i int) T {
	var zero T
	if i < len(list) {
		return list[i]
	}

	return zero
}
