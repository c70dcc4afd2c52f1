package canvas

import (
	"errors"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Sumatoshi-tech/statplot/pkg/alg/stats"
	"github.com/Sumatoshi-tech/statplot/pkg/figure"
)

// ErrUnsupportedLayer is returned for a layer the image renderer cannot draw.
var ErrUnsupportedLayer = errors.New("unsupported layer")

const outlierRadius = vg.Length(3)

// boxPlot draws a precomputed box summary at category position 0.
type boxPlot struct {
	summary    stats.BoxSummary
	horizontal bool
	fill       color.Color
	line       draw.LineStyle
	halfWidth  float64
}

func (b *boxPlot) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	pt := func(pos, v float64) vg.Point {
		if b.horizontal {
			return vg.Point{X: trX(v), Y: trY(pos)}
		}

		return vg.Point{X: trX(pos), Y: trY(v)}
	}

	s := b.summary
	lo, hi := -b.halfWidth, b.halfWidth
	box := []vg.Point{pt(lo, s.Q1), pt(hi, s.Q1), pt(hi, s.Q3), pt(lo, s.Q3)}

	c.FillPolygon(b.fill, c.ClipPolygonXY(box))
	c.StrokeLines(b.line, c.ClipLinesXY(append(box, box[0]))...)
	c.StrokeLines(b.line, c.ClipLinesXY([]vg.Point{pt(lo, s.Median), pt(hi, s.Median)})...)

	capHalf := b.halfWidth / 2
	c.StrokeLines(b.line, c.ClipLinesXY(
		[]vg.Point{pt(0, s.Q1), pt(0, s.LowWhisker)},
		[]vg.Point{pt(0, s.Q3), pt(0, s.HighWhisker)},
		[]vg.Point{pt(-capHalf, s.LowWhisker), pt(capHalf, s.LowWhisker)},
		[]vg.Point{pt(-capHalf, s.HighWhisker), pt(capHalf, s.HighWhisker)},
	)...)

	ring := draw.GlyphStyle{Color: b.line.Color, Radius: outlierRadius, Shape: draw.RingGlyph{}}
	for _, v := range s.Outliers {
		c.DrawGlyph(ring, pt(0, v))
	}
}

func (b *boxPlot) DataRange() (xmin, xmax, ymin, ymax float64) {
	lo, hi := b.summary.LowWhisker, b.summary.HighWhisker
	for _, v := range b.summary.Outliers {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}

	if b.horizontal {
		return lo, hi, -violinExtent, violinExtent
	}

	return -violinExtent, violinExtent, lo, hi
}

// refLine spans the whole data area at a fixed x or y.
type refLine struct {
	vertical bool
	value    float64
	style    draw.LineStyle
}

func (r *refLine) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	if r.vertical {
		x := trX(r.value)
		if c.ContainsX(x) {
			c.StrokeLine2(r.style, x, c.Min.Y, x, c.Max.Y)
		}

		return
	}

	y := trY(r.value)
	if c.ContainsY(y) {
		c.StrokeLine2(r.style, c.Min.X, y, c.Max.X, y)
	}
}

// DataRange keeps the line's own coordinate in view and leaves the other
// axis to the rest of the plot.
func (r *refLine) DataRange() (xmin, xmax, ymin, ymax float64) {
	inf := math.Inf(1)
	if r.vertical {
		return r.value, r.value, inf, -inf
	}

	return inf, -inf, r.value, r.value
}

func (r *refLine) Thumbnail(c *draw.Canvas) {
	y := c.Center().Y
	c.StrokeLine2(r.style, c.Min.X, y, c.Max.X, y)
}

// matrixGrid exposes a heatmap with row 0 at the top. Hidden cells are NaN.
type matrixGrid struct {
	h figure.Heatmap
}

func (g matrixGrid) Dims() (c, r int) {
	n := len(g.h.Labels)

	return n, n
}

func (g matrixGrid) Z(c, r int) float64 {
	i := len(g.h.Labels) - 1 - r
	if !g.h.Visible(i, c) {
		return math.NaN()
	}

	return g.h.Values[i][c]
}

func (g matrixGrid) X(c int) float64 { return float64(c) }
func (g matrixGrid) Y(r int) float64 { return float64(r) }

// starGlyph is an asterisk: a plus over a cross.
type starGlyph struct{}

func (starGlyph) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	draw.PlusGlyph{}.DrawGlyph(c, sty, pt)
	draw.CrossGlyph{}.DrawGlyph(c, sty, pt)
}

func glyph(m figure.Marker) draw.GlyphDrawer {
	switch m {
	case figure.MarkerStar:
		return starGlyph{}
	case figure.MarkerCross:
		return draw.CrossGlyph{}
	case figure.MarkerPlus:
		return draw.PlusGlyph{}
	case figure.MarkerSquare:
		return draw.BoxGlyph{}
	case figure.MarkerTriangle:
		return draw.PyramidGlyph{}
	default:
		return draw.CircleGlyph{}
	}
}
