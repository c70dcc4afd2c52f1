package canvas

import (
	"fmt"
	"image/color"
	"math"
	"slices"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Sumatoshi-tech/statplot/pkg/figure"
)

const (
	barHalfWidth    = 0.4
	boxHalfWidth    = 0.25
	violinExtent    = 0.5
	defaultOpacity  = 0.2
	violinOpacity   = 0.6
	defaultWidth    = 2
	defaultMarker   = 8
	quartileWidth   = 4
	heatmapColors   = 64
	dashedPattern   = 1
	outlineWidthPts = 0.5
)

type legendEntry struct {
	name   string
	thumbs []plot.Thumbnailer
}

// builder adds the layers of one axes to a plot.
type builder struct {
	plot     *plot.Plot
	fonts    figure.Fonts
	entries  []legendEntry
	index    int
	nominalX bool
	nominalY bool
}

func buildPlot(ax *figure.Axes, fonts figure.Fonts) (*plot.Plot, *plot.Legend, error) {
	p := plot.New()
	p.Title.Text = ax.Title
	p.Title.TextStyle.Font.Size = vg.Points(fonts.Title)
	p.X.Label.Text = ax.XLabel
	p.X.Label.TextStyle.Font.Size = vg.Points(fonts.Label)
	p.Y.Label.Text = ax.YLabel
	p.Y.Label.TextStyle.Font.Size = vg.Points(fonts.Label)
	p.X.Tick.Label.Font.Size = vg.Points(fonts.Tick)
	p.Y.Tick.Label.Font.Size = vg.Points(fonts.Tick)

	b := &builder{plot: p, fonts: fonts}

	for _, l := range ax.Layers {
		if err := b.add(l); err != nil {
			return nil, nil, err
		}
	}

	if !b.nominalX {
		pinTicks(&p.X, ax.XTicks)
	}

	if !b.nominalY {
		pinTicks(&p.Y, ax.YTicks)
	}

	return p, b.legend(ax.Legend), nil
}

// legend fills the plot legend, or returns a separate one for the
// outside placement.
func (b *builder) legend(placement figure.Legend) *plot.Legend {
	if placement == figure.LegendNone || len(b.entries) == 0 {
		return nil
	}

	target := &b.plot.Legend

	var outside *plot.Legend

	if placement == figure.LegendOutside {
		l := plot.NewLegend()
		l.Left = true
		outside = &l
		target = outside
	}

	target.Top = true
	target.TextStyle.Font.Size = vg.Points(b.fonts.Tick)

	for _, e := range b.entries {
		target.Add(e.name, e.thumbs...)
	}

	return outside
}

func (b *builder) add(l figure.Layer) error {
	switch layer := l.(type) {
	case figure.Bars:
		return b.addBars(layer)
	case figure.CategoryBars:
		return b.addCategoryBars(layer)
	case figure.Line:
		return b.addLine(layer)
	case figure.Band:
		return b.addBand(layer)
	case figure.Scatter:
		return b.addScatter(layer)
	case figure.Box:
		return b.addBox(layer)
	case figure.Violin:
		return b.addViolin(layer)
	case figure.Heatmap:
		return b.addHeatmap(layer)
	case figure.RefLine:
		return b.addRefLine(layer)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedLayer, l)
	}
}

// color resolves a layer color. Empty takes the next default color.
func (b *builder) color(name string) (color.Color, error) {
	if name == "" {
		c := plotutil.Color(b.index)
		b.index++

		return c, nil
	}

	c, err := figure.ParseColor(name)
	if err != nil {
		return nil, err
	}

	return c, nil
}

func (b *builder) entry(name string, thumbs ...plot.Thumbnailer) {
	if name != "" {
		b.entries = append(b.entries, legendEntry{name: name, thumbs: thumbs})
	}
}

func (b *builder) addBars(bars figure.Bars) error {
	fill, err := b.color(bars.Color)
	if err != nil {
		return err
	}

	var first *plotter.Polygon

	for k, n := range bars.Counts {
		lo, hi := bars.Edges[k], bars.Edges[k+1]

		poly, polyErr := plotter.NewPolygon(plotter.XYs{{X: lo, Y: 0}, {X: hi, Y: 0}, {X: hi, Y: n}, {X: lo, Y: n}})
		if polyErr != nil {
			return fmt.Errorf("histogram bin %d: %w", k, polyErr)
		}

		poly.Color = fill
		poly.LineStyle = outline()
		b.plot.Add(poly)

		if first == nil {
			first = poly
		}
	}

	if first != nil {
		b.entry(bars.Name, first)
	}

	return nil
}

func (b *builder) addCategoryBars(bars figure.CategoryBars) error {
	fill, err := b.color(bars.Color)
	if err != nil {
		return err
	}

	horizontal := bars.Orientation == figure.Horizontal

	var first *plotter.Polygon

	for i, v := range bars.Values {
		pos := float64(i)
		ring := plotter.XYs{{X: pos - barHalfWidth, Y: 0}, {X: pos + barHalfWidth, Y: 0}, {X: pos + barHalfWidth, Y: v}, {X: pos - barHalfWidth, Y: v}}

		if horizontal {
			for j := range ring {
				ring[j].X, ring[j].Y = ring[j].Y, ring[j].X
			}
		}

		poly, polyErr := plotter.NewPolygon(ring)
		if polyErr != nil {
			return fmt.Errorf("bar %q: %w", bars.Categories[i], polyErr)
		}

		poly.Color = fill
		poly.LineStyle.Width = 0
		b.plot.Add(poly)

		if first == nil {
			first = poly
		}
	}

	if first != nil {
		b.entry(bars.Name, first)
	}

	if bars.HasErrors() {
		b.plot.Add(errorBars(bars))
	}

	if len(bars.Categories) > 0 {
		if horizontal {
			b.plot.NominalY(bars.Categories...)
			b.nominalY = true
		} else {
			b.plot.NominalX(bars.Categories...)
			b.nominalX = true
		}
	}

	return nil
}

func errorBars(bars figure.CategoryBars) plot.Plotter {
	points := make(plotter.XYs, len(bars.Values))
	errs := make(plotter.Errors, len(bars.Values))

	for i, v := range bars.Values {
		points[i] = plotter.XY{X: float64(i), Y: v}
		errs[i].Low = v - bars.Lower[i]
		errs[i].High = bars.Upper[i] - v
	}

	sty := draw.LineStyle{Color: color.Black, Width: vg.Points(defaultWidth)}

	if bars.Orientation == figure.Horizontal {
		for i := range points {
			points[i].X, points[i].Y = points[i].Y, points[i].X
		}

		return &plotter.XErrorBars{XYs: points, XErrors: plotter.XErrors(errs), LineStyle: sty, CapWidth: plotter.DefaultCapWidth}
	}

	return &plotter.YErrorBars{XYs: points, YErrors: plotter.YErrors(errs), LineStyle: sty, CapWidth: plotter.DefaultCapWidth}
}

func (b *builder) addLine(l figure.Line) error {
	stroke, err := b.color(l.Color)
	if err != nil {
		return err
	}

	line, err := plotter.NewLine(finitePoints(l.X, l.Y))
	if err != nil {
		return fmt.Errorf("line %q: %w", l.Name, err)
	}

	width := l.Width
	if width <= 0 {
		width = defaultWidth
	}

	line.LineStyle = draw.LineStyle{Color: stroke, Width: vg.Points(width)}
	if l.Dashed {
		line.Dashes = plotutil.Dashes(dashedPattern)
	}

	if l.Fill {
		opacity := l.FillOpacity
		if opacity <= 0 {
			opacity = defaultOpacity
		}

		line.FillColor = withAlpha(stroke, opacity)
	}

	b.plot.Add(line)
	b.entry(l.Name, line)

	return nil
}

func (b *builder) addBand(band figure.Band) error {
	fill, err := b.color(band.Color)
	if err != nil {
		return err
	}

	n := min(len(band.X), len(band.Lower), len(band.Upper))
	ring := make(plotter.XYs, 0, 2*n)

	for i := range n {
		ring = append(ring, plotter.XY{X: band.X[i], Y: band.Upper[i]})
	}

	for i := n - 1; i >= 0; i-- {
		ring = append(ring, plotter.XY{X: band.X[i], Y: band.Lower[i]})
	}

	poly, err := plotter.NewPolygon(ring)
	if err != nil {
		return fmt.Errorf("band %q: %w", band.Name, err)
	}

	opacity := band.Opacity
	if opacity <= 0 {
		opacity = defaultOpacity
	}

	poly.Color = withAlpha(fill, opacity)
	poly.LineStyle.Width = 0
	b.plot.Add(poly)
	b.entry(band.Name, poly)

	return nil
}

func (b *builder) addScatter(s figure.Scatter) error {
	fill, err := b.color(s.Color)
	if err != nil {
		return err
	}

	points, err := plotter.NewScatter(finitePoints(s.X, s.Y))
	if err != nil {
		return fmt.Errorf("scatter %q: %w", s.Name, err)
	}

	size := s.Size
	if size <= 0 {
		size = defaultMarker
	}

	points.GlyphStyle = draw.GlyphStyle{Color: fill, Radius: vg.Points(size / 2), Shape: glyph(s.Marker)}
	b.plot.Add(points)
	b.entry(s.Name, points)

	return nil
}

func (b *builder) addBox(box figure.Box) error {
	fill, err := b.color(box.Color)
	if err != nil {
		return err
	}

	b.plot.Add(&boxPlot{
		summary:    box.Summary,
		horizontal: box.Orientation == figure.Horizontal,
		fill:       fill,
		line:       draw.LineStyle{Color: color.Black, Width: vg.Points(1)},
		halfWidth:  boxHalfWidth,
	})

	if box.Orientation == figure.Horizontal {
		b.plot.NominalY(box.Name)
		b.nominalY = true
	} else {
		b.plot.NominalX(box.Name)
		b.nominalX = true
	}

	return nil
}

func (b *builder) addViolin(v figure.Violin) error {
	fill, err := b.color(v.Color)
	if err != nil {
		return err
	}

	horizontal := v.Orientation == figure.Horizontal
	at := func(pos, offset float64) plotter.XY {
		if horizontal {
			return plotter.XY{X: pos, Y: offset}
		}

		return plotter.XY{X: offset, Y: pos}
	}

	n := len(v.Shape.Positions)
	ring := make(plotter.XYs, 0, 2*n)

	for i := range n {
		ring = append(ring, at(v.Shape.Positions[i], v.Shape.HalfWidth[i]))
	}

	for i := n - 1; i >= 0; i-- {
		ring = append(ring, at(v.Shape.Positions[i], -v.Shape.HalfWidth[i]))
	}

	poly, err := plotter.NewPolygon(ring)
	if err != nil {
		return fmt.Errorf("violin %q: %w", v.Name, err)
	}

	poly.Color = withAlpha(fill, violinOpacity)
	poly.LineStyle = outline()

	quartiles, err := plotter.NewLine(plotter.XYs{at(v.Summary.Q1, 0), at(v.Summary.Q3, 0)})
	if err != nil {
		return fmt.Errorf("violin %q quartiles: %w", v.Name, err)
	}

	quartiles.LineStyle = draw.LineStyle{Color: color.Black, Width: vg.Points(quartileWidth)}

	median, err := plotter.NewScatter(plotter.XYs{at(v.Summary.Median, 0)})
	if err != nil {
		return fmt.Errorf("violin %q median: %w", v.Name, err)
	}

	median.GlyphStyle = draw.GlyphStyle{Color: color.White, Radius: vg.Points(3), Shape: draw.CircleGlyph{}}

	b.plot.Add(poly, quartiles, median)
	b.entry(v.Name, poly)

	if horizontal {
		b.plot.Y.Min, b.plot.Y.Max = -violinExtent, violinExtent
		b.plot.HideY()
		b.nominalY = true
	} else {
		b.plot.X.Min, b.plot.X.Max = -violinExtent, violinExtent
		b.plot.HideX()
		b.nominalX = true
	}

	return nil
}

func (b *builder) addHeatmap(h figure.Heatmap) error {
	n := len(h.Labels)
	if n == 0 {
		return nil
	}

	pal, err := figure.Palette(h.Colormap, heatmapColors)
	if err != nil {
		return err
	}

	grid := matrixGrid{h: h}
	hm := plotter.NewHeatMap(grid, pal)
	hm.Min, hm.Max = h.Min, h.Max
	hm.NaN = color.Transparent
	b.plot.Add(hm)

	if h.Annotate {
		labels, labelErr := annotations(grid, h.Precision, b.fonts.Tick)
		if labelErr != nil {
			return labelErr
		}

		b.plot.Add(labels)
	}

	rows := slices.Clone(h.Labels)
	slices.Reverse(rows)

	b.plot.NominalX(h.Labels...)
	b.plot.NominalY(rows...)
	b.nominalX, b.nominalY = true, true

	return nil
}

func annotations(grid matrixGrid, precision int, size float64) (*plotter.Labels, error) {
	cols, rows := grid.Dims()

	var data plotter.XYLabels

	for c := range cols {
		for r := range rows {
			z := grid.Z(c, r)
			if math.IsNaN(z) {
				continue
			}

			data.XYs = append(data.XYs, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			data.Labels = append(data.Labels, strconv.FormatFloat(z, 'f', max(precision, 0), 64))
		}
	}

	labels, err := plotter.NewLabels(data)
	if err != nil {
		return nil, fmt.Errorf("heatmap annotations: %w", err)
	}

	for i := range labels.TextStyle {
		labels.TextStyle[i].Font.Size = vg.Points(size)
		labels.TextStyle[i].XAlign = draw.XCenter
		labels.TextStyle[i].YAlign = draw.YCenter
	}

	return labels, nil
}

func (b *builder) addRefLine(r figure.RefLine) error {
	stroke, err := b.color(r.Color)
	if err != nil {
		return err
	}

	line := &refLine{
		vertical: r.Vertical,
		value:    r.Value,
		style:    draw.LineStyle{Color: stroke, Width: vg.Points(defaultWidth)},
	}
	if r.Dashed {
		line.style.Dashes = plotutil.Dashes(dashedPattern)
	}

	b.plot.Add(line)
	b.entry(r.Name, line)

	return nil
}

func outline() draw.LineStyle {
	return draw.LineStyle{Color: color.Black, Width: vg.Points(outlineWidthPts)}
}

func withAlpha(c color.Color, alpha float64) color.Color {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	nc.A = uint8(math.Round(alpha * math.MaxUint8))

	return nc
}

// finitePoints pairs xs with ys, dropping pairs with a non-finite value.
func finitePoints(xs, ys []float64) plotter.XYs {
	n := min(len(xs), len(ys))
	out := make(plotter.XYs, 0, n)

	for i := range n {
		if isFinite(xs[i]) && isFinite(ys[i]) {
			out = append(out, plotter.XY{X: xs[i], Y: ys[i]})
		}
	}

	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
