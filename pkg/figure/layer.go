package figure

import (
	"math"

	"github.com/Sumatoshi-tech/statplot/pkg/alg/stats"
)

// Layer is a drawable element of an axes. The set of layers is closed.
type Layer interface {
	layer()
}

// Orientation is the direction categories or distributions run along.
type Orientation int

const (
	// Vertical draws bars upward and distributions along the y axis.
	Vertical Orientation = iota
	// Horizontal draws bars rightward and distributions along the x axis.
	Horizontal
)

// Marker is a scatter point shape.
type Marker int

// Scatter markers.
const (
	MarkerCircle Marker = iota
	MarkerStar
	MarkerCross
	MarkerPlus
	MarkerSquare
	MarkerTriangle
)

// Bars is a histogram: len(Edges) == len(Counts)+1.
type Bars struct {
	Name   string
	Edges  []float64
	Counts []float64
	Color  string
}

// CategoryBars is one bar per category. Lower and Upper, when set, are the
// error bar bounds for each value.
type CategoryBars struct {
	Name        string
	Categories  []string
	Values      []float64
	Lower       []float64
	Upper       []float64
	Orientation Orientation
	Color       string
}

// HasErrors reports whether error bars are drawn.
func (b CategoryBars) HasErrors() bool {
	return len(b.Lower) == len(b.Values) && len(b.Upper) == len(b.Values) && len(b.Values) > 0
}

// Line is a polyline, optionally filled down to y=0.
type Line struct {
	Name        string
	X           []float64
	Y           []float64
	Color       string
	Width       float64
	Dashed      bool
	Fill        bool
	FillOpacity float64
}

// Band is a shaded envelope between Lower and Upper over X.
type Band struct {
	Name    string
	X       []float64
	Lower   []float64
	Upper   []float64
	Color   string
	Opacity float64
}

// Scatter is a point cloud.
type Scatter struct {
	Name   string
	X      []float64
	Y      []float64
	Marker Marker
	Color  string
	Size   float64
}

// Box is a box-and-whisker summary of one sample.
type Box struct {
	Name        string
	Summary     stats.BoxSummary
	Orientation Orientation
	Color       string
}

// Violin is a mirrored density outline with the sample's quartiles inside.
type Violin struct {
	Name        string
	Shape       stats.ViolinShape
	Summary     stats.BoxSummary
	Orientation Orientation
	Color       string
}

// Heatmap is a labeled square matrix. Row 0 is drawn at the top.
type Heatmap struct {
	Labels []string
	Values [][]float64
	// Mask hides a cell when true. Nil hides nothing.
	Mask      [][]bool
	Min       float64
	Max       float64
	Colormap  string
	Annotate  bool
	Precision int
}

// Visible reports whether cell (i, j) is drawn.
func (h Heatmap) Visible(i, j int) bool {
	if h.Mask != nil && h.Mask[i][j] {
		return false
	}

	return !math.IsNaN(h.Values[i][j])
}

// RefLine is a straight reference line across the whole axes.
type RefLine struct {
	Name string
	// Vertical draws x = Value; otherwise y = Value.
	Vertical bool
	Value    float64
	Color    string
	Dashed   bool
}

func (Bars) layer()         {}
func (CategoryBars) layer() {}
func (Line) layer()         {}
func (Band) layer()         {}
func (Scatter) layer()      {}
func (Box) layer()          {}
func (Violin) layer()       {}
func (Heatmap) layer()      {}
func (RefLine) layer()      {}
