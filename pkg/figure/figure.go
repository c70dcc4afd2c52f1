// Package figure is the renderer-neutral chart model: a figure owns a grid of
// axes, and each axes holds the layers drawn on it.
//
// A figure is created by New, filled in by a plot builder, written by a
// renderer and released with Close. It is not safe for concurrent mutation.
package figure

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	ErrInvalidGrid  = errors.New("grid rows and cols must be positive")
	ErrGridTooSmall = errors.New("grid has fewer cells than plots")
	ErrClosed       = errors.New("figure is closed")
)

// Default figure geometry, in inches.
const (
	DefaultWidth  = 12.0
	DefaultHeight = 8.0
)

// Default font sizes, in points.
const (
	DefaultTitleSize = 18.0
	DefaultLabelSize = 16.0
	DefaultTickSize  = 14.0
)

// Layout places plots on a Rows×Cols grid of a Width×Height inch figure.
type Layout struct {
	Rows   int
	Cols   int
	Width  float64
	Height float64
}

// Cells returns the number of grid cells.
func (l Layout) Cells() int { return l.Rows * l.Cols }

// Fonts are the text sizes used on every axes, in points.
type Fonts struct {
	Title float64
	Label float64
	Tick  float64
}

// DefaultFonts returns the stock text sizes.
func DefaultFonts() Fonts {
	return Fonts{Title: DefaultTitleSize, Label: DefaultLabelSize, Tick: DefaultTickSize}
}

// Figure is a grid of axes plus the page-level title.
type Figure struct {
	Title  string
	Layout Layout
	Fonts  Fonts

	axes   []*Axes
	closed bool
}

// New creates a figure with n empty axes on layout. Rows and Cols must be
// positive and leave a cell for every plot. Zero sizes take the defaults.
func New(title string, layout Layout, n int) (*Figure, error) {
	if layout.Rows <= 0 || layout.Cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidGrid, layout.Rows, layout.Cols)
	}

	if layout.Cells() < n {
		return nil, fmt.Errorf("%w: %dx%d grid for %d plots", ErrGridTooSmall, layout.Rows, layout.Cols, n)
	}

	if layout.Width <= 0 {
		layout.Width = DefaultWidth
	}

	if layout.Height <= 0 {
		layout.Height = DefaultHeight
	}

	fig := &Figure{
		Title:  title,
		Layout: layout,
		Fonts:  DefaultFonts(),
		axes:   make([]*Axes, n),
	}

	for i := range fig.axes {
		fig.axes[i] = &Axes{}
	}

	return fig, nil
}

// Len returns the number of axes.
func (f *Figure) Len() int { return len(f.axes) }

// Axes returns the axes in row-major order.
func (f *Figure) Axes() []*Axes { return f.axes }

// At returns the i-th axes.
func (f *Figure) At(i int) *Axes { return f.axes[i] }

// Cell returns the zero-based grid row and column of the i-th axes.
func (f *Figure) Cell(i int) (row, col int) {
	return i / f.Layout.Cols, i % f.Layout.Cols
}

// Close releases the axes. Closing twice is a no-op.
func (f *Figure) Close() error {
	f.axes = nil
	f.closed = true

	return nil
}

// Closed reports whether Close has been called.
func (f *Figure) Closed() bool { return f.closed }

// Check returns ErrClosed once the figure has been closed. Renderers call it
// before drawing.
func (f *Figure) Check() error {
	if f == nil || f.closed {
		return ErrClosed
	}

	return nil
}

// Legend is where an axes draws its legend.
type Legend int

const (
	// LegendNone hides the legend.
	LegendNone Legend = iota
	// LegendInside draws the legend in the plot area.
	LegendInside
	// LegendOutside draws the legend to the right of the plot area.
	LegendOutside
)

// Axes is one plot cell.
type Axes struct {
	Title  string
	XLabel string
	YLabel string
	// XTicks and YTicks pin the tick positions. Nil leaves them automatic.
	XTicks []float64
	YTicks []float64
	Legend Legend
	Layers []Layer
}

// Add appends layers in draw order.
func (a *Axes) Add(layers ...Layer) {
	a.Layers = append(a.Layers, layers...)
}
