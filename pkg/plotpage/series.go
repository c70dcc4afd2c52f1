package plotpage

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/statplot/pkg/figure"
)

// ErrUnsupportedLayer is returned for a layer the HTML renderer cannot draw.
var ErrUnsupportedLayer = errors.New("unsupported layer")

// Marker glyphs outside the echarts built-in symbol set.
const (
	starSymbol  = "path://M50 0L61 35H98L68 57L79 91L50 70L21 91L32 57L2 35H39Z"
	plusSymbol  = "path://M40 0H60V40H100V60H60V100H40V60H0V40H40Z"
	crossSymbol = "path://M15 0L50 35L85 0L100 15L65 50L100 85L85 100L50 65L15 100L0 85L35 50L0 15Z"
)

const (
	defaultLineWidth   = 2
	defaultMarkerSize  = 8
	defaultBandOpacity = 0.2
	violinOpacity      = 0.6
	quartileWidth      = 5
	errorBarWidth      = 2
	heatmapStops       = 11
	violinExtent       = 0.5
)

// BuildAxesChart converts one axes into an echarts chart sized in inches.
// The chart type follows the dominant layer: heatmap, category bars, box,
// otherwise a value-axis line chart that carries every other layer.
func BuildAxesChart(c *ChartOpts, ax *figure.Axes, widthIn, heightIn float64) (Renderable, error) {
	for _, l := range ax.Layers {
		switch layer := l.(type) {
		case figure.Heatmap:
			hm, err := buildHeatmap(c, ax, layer, widthIn, heightIn)
			if err != nil {
				return nil, err
			}

			return hm, nil
		case figure.CategoryBars:
			return buildCategoryBars(c, ax, layer, widthIn, heightIn), nil
		case figure.Box:
			return buildBox(c, ax, layer, widthIn, heightIn), nil
		}
	}

	line, err := buildValueChart(c, ax, widthIn, heightIn)
	if err != nil {
		return nil, err
	}

	return line, nil
}

// commonGlobals returns the options every chart carries. margin picks the
// plot-area margins, which differ from the legend placement for heatmaps.
func commonGlobals(c *ChartOpts, ax *figure.Axes, widthIn, heightIn float64, trigger string, margin figure.Legend) []charts.GlobalOpts {
	return []charts.GlobalOpts{
		charts.WithInitializationOpts(c.Init(widthIn, heightIn)),
		charts.WithTitleOpts(c.Title(ax.Title)),
		charts.WithLegendOpts(c.Legend(ax.Legend)),
		charts.WithGridOpts(c.Grid(margin)),
		charts.WithTooltipOpts(c.Tooltip(trigger)),
	}
}

func buildHeatmap(c *ChartOpts, ax *figure.Axes, h figure.Heatmap, widthIn, heightIn float64) (*charts.HeatMap, error) {
	stops, err := figure.PaletteHex(h.Colormap, heatmapStops)
	if err != nil {
		return nil, err
	}

	n := len(h.Labels)
	rowLabels := slices.Clone(h.Labels)
	slices.Reverse(rowLabels)

	data := make([]opts.HeatMapData, 0, n*n)

	for i := range n {
		for j := range n {
			if !h.Visible(i, j) || !isFinite(h.Values[i][j]) {
				continue
			}

			data = append(data, opts.HeatMapData{Value: []any{j, n - 1 - i, round(h.Values[i][j], h.Precision)}})
		}
	}

	xAxis := c.CategoryXAxis(ax.XLabel, h.Labels)
	xAxis.SplitArea = &opts.SplitArea{Show: opts.Bool(true)}
	yAxis := c.CategoryYAxis(ax.YLabel, rowLabels)
	yAxis.SplitArea = &opts.SplitArea{Show: opts.Bool(true)}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(commonGlobals(c, ax, widthIn, heightIn, "item", figure.LegendOutside)...)
	hm.SetGlobalOptions(
		charts.WithXAxisOpts(xAxis),
		charts.WithYAxisOpts(yAxis),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(h.Min),
			Max:        float32(h.Max),
			InRange:    &opts.VisualMapInRange{Color: stops},
			Orient:     "vertical",
			Right:      "0",
			Top:        "center",
		}),
	)

	hm.AddSeries("", data, charts.WithLabelOpts(opts.Label{
		Show:     opts.Bool(h.Annotate),
		Color:    c.theme.ChartText,
		FontSize: float32(c.fonts.Tick),
	}))

	return hm, nil
}

func buildCategoryBars(c *ChartOpts, ax *figure.Axes, b figure.CategoryBars, widthIn, heightIn float64) *charts.Bar {
	color := c.SeriesColor(b.Color, 0)

	bar := charts.NewBar()
	bar.SetGlobalOptions(commonGlobals(c, ax, widthIn, heightIn, "axis", ax.Legend)...)

	if b.Orientation == figure.Horizontal {
		bar.SetGlobalOptions(
			charts.WithXAxisOpts(c.ValueXAxis(ax.XLabel, ax.XTicks)),
			charts.WithYAxisOpts(c.CategoryYAxis(ax.YLabel, b.Categories)),
		)
		bar.XYReversal()
	} else {
		bar.SetGlobalOptions(
			charts.WithXAxisOpts(c.CategoryXAxis(ax.XLabel, b.Categories)),
			charts.WithYAxisOpts(c.ValueYAxis(ax.YLabel, ax.YTicks)),
		)
	}

	bar.SetXAxis(b.Categories)

	data := make([]opts.BarData, len(b.Values))
	for i, v := range b.Values {
		data[i] = opts.BarData{Name: b.Categories[i], Value: v}
		if !isFinite(v) {
			data[i].Value = "-"
		}
	}

	seriesOpts := []charts.SeriesOpts{
		charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
		charts.WithBarChartOpts(opts.BarChart{BarCategoryGap: "20%"}),
	}

	if b.HasErrors() {
		seriesOpts = append(seriesOpts, errorBars(c, b)...)
	}

	bar.AddSeries(b.Name, data, seriesOpts...)

	return bar
}

// errorBars draws one mark line segment per category between its bounds.
func errorBars(c *ChartOpts, b figure.CategoryBars) []charts.SeriesOpts {
	items := make([]opts.MarkLineNameCoordItem, 0, len(b.Values))

	for i, cat := range b.Categories {
		if !isFinite(b.Lower[i]) || !isFinite(b.Upper[i]) {
			continue
		}

		lo, hi := []any{cat, b.Lower[i]}, []any{cat, b.Upper[i]}
		if b.Orientation == figure.Horizontal {
			lo, hi = []any{b.Lower[i], cat}, []any{b.Upper[i], cat}
		}

		items = append(items, opts.MarkLineNameCoordItem{Coordinate0: lo, Coordinate1: hi})
	}

	return []charts.SeriesOpts{
		charts.WithMarkLineNameCoordItemOpts(items...),
		charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol:    []string{"none", "none"},
			Label:     &opts.Label{Show: opts.Bool(false)},
			LineStyle: &opts.LineStyle{Color: c.SeriesColor("black", 0), Width: errorBarWidth, Type: "solid"},
		}),
	}
}

func buildBox(c *ChartOpts, ax *figure.Axes, b figure.Box, widthIn, heightIn float64) *charts.BoxPlot {
	color := c.SeriesColor(b.Color, 0)
	s := b.Summary
	categories := []string{b.Name}

	box := charts.NewBoxPlot()
	box.SetGlobalOptions(commonGlobals(c, ax, widthIn, heightIn, "item", ax.Legend)...)

	outliers := make([]opts.ScatterData, len(s.Outliers))

	if b.Orientation == figure.Horizontal {
		box.SetGlobalOptions(
			charts.WithXAxisOpts(c.ValueXAxis(ax.XLabel, ax.XTicks)),
			charts.WithYAxisOpts(c.CategoryYAxis(ax.YLabel, categories)),
		)

		for i, v := range s.Outliers {
			outliers[i] = opts.ScatterData{Value: []any{v, b.Name}}
		}
	} else {
		box.SetGlobalOptions(
			charts.WithXAxisOpts(c.CategoryXAxis(ax.XLabel, categories)),
			charts.WithYAxisOpts(c.ValueYAxis(ax.YLabel, ax.YTicks)),
		)
		box.SetXAxis(categories)

		for i, v := range s.Outliers {
			outliers[i] = opts.ScatterData{Value: []any{b.Name, v}}
		}
	}

	box.AddSeries(b.Name, []opts.BoxPlotData{{
		Name:  b.Name,
		Value: []float64{s.LowWhisker, s.Q1, s.Median, s.Q3, s.HighWhisker},
	}}, charts.WithItemStyleOpts(opts.ItemStyle{Color: color, BorderColor: c.SeriesColor("black", 0)}))

	if len(outliers) > 0 {
		points := charts.NewScatter()
		points.AddSeries("outliers", outliers,
			charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
			charts.WithScatterChartOpts(opts.ScatterChart{Symbol: "circle", SymbolSize: defaultMarkerSize}),
		)
		box.Overlap(points)
	}

	return box
}

// valueChart accumulates the layers of a value-axis chart.
type valueChart struct {
	c       *ChartOpts
	line    *charts.Line
	scatter *charts.Scatter
	index   int
}

func buildValueChart(c *ChartOpts, ax *figure.Axes, widthIn, heightIn float64) (*charts.Line, error) {
	vc := &valueChart{c: c, line: charts.NewLine()}

	xAxis := c.ValueXAxis(ax.XLabel, ax.XTicks)
	yAxis := c.ValueYAxis(ax.YLabel, ax.YTicks)

	if v, ok := violinOf(ax); ok {
		xAxis, yAxis = violinAxes(c, ax, v)
	}

	if len(ax.XTicks) == 0 && len(ax.YTicks) == 0 && countOf[figure.Bars](ax) > 0 {
		yAxis.Scale = opts.Bool(false)
	}

	vc.line.SetGlobalOptions(commonGlobals(c, ax, widthIn, heightIn, "item", ax.Legend)...)
	vc.line.SetGlobalOptions(charts.WithXAxisOpts(xAxis), charts.WithYAxisOpts(yAxis))

	for _, l := range ax.Layers {
		switch layer := l.(type) {
		case figure.Bars:
			vc.addBars(layer)
		case figure.Line:
			vc.addLine(layer)
		case figure.Band:
			vc.addBand(layer)
		case figure.Scatter:
			vc.addScatter(layer)
		case figure.Violin:
			vc.addViolin(layer)
		case figure.RefLine:
			vc.addRefLine(layer)
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedLayer, l)
		}
	}

	if vc.scatter != nil {
		vc.line.Overlap(vc.scatter)
	}

	return vc.line, nil
}

func (vc *valueChart) nextColor(color string) string {
	resolved := vc.c.SeriesColor(color, vc.index)
	vc.index++

	return resolved
}

// addBars draws a histogram as a filled step outline.
func (vc *valueChart) addBars(b figure.Bars) {
	if len(b.Counts) == 0 || len(b.Edges) != len(b.Counts)+1 {
		return
	}

	color := vc.nextColor(b.Color)
	data := make([]opts.LineData, 0, 2*len(b.Counts)+2)
	data = append(data, point(b.Edges[0], 0))

	for k, n := range b.Counts {
		data = append(data, point(b.Edges[k], n), point(b.Edges[k+1], n))
	}

	data = append(data, point(b.Edges[len(b.Edges)-1], 0))

	vc.line.AddSeries(b.Name, data,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 1}),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: color, Opacity: opts.Float(violinOpacity)}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
	)
}

func (vc *valueChart) addLine(l figure.Line) {
	color := vc.nextColor(l.Color)

	width := l.Width
	if width <= 0 {
		width = defaultLineWidth
	}

	lineType := "solid"
	if l.Dashed {
		lineType = "dashed"
	}

	n := min(len(l.X), len(l.Y))
	data := make([]opts.LineData, 0, n)

	for i := range n {
		if isFinite(l.X[i]) && isFinite(l.Y[i]) {
			data = append(data, point(l.X[i], l.Y[i]))
		}
	}

	seriesOpts := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: float32(width), Type: lineType}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
	}

	if l.Fill {
		opacity := l.FillOpacity
		if opacity <= 0 {
			opacity = defaultBandOpacity
		}

		seriesOpts = append(seriesOpts, charts.WithAreaStyleOpts(opts.AreaStyle{Color: color, Opacity: opts.Float(float32(opacity))}))
	}

	vc.line.AddSeries(l.Name, data, seriesOpts...)
}

// addBand stacks the band height on an invisible lower bound.
func (vc *valueChart) addBand(b figure.Band) {
	color := vc.nextColor(b.Color)
	stack := fmt.Sprintf("band-%d", vc.index)

	opacity := b.Opacity
	if opacity <= 0 {
		opacity = defaultBandOpacity
	}

	n := min(len(b.X), len(b.Lower), len(b.Upper))
	lower := make([]opts.LineData, 0, n)
	height := make([]opts.LineData, 0, n)

	for i := range n {
		if !isFinite(b.X[i]) || !isFinite(b.Lower[i]) || !isFinite(b.Upper[i]) {
			continue
		}

		lower = append(lower, point(b.X[i], b.Lower[i]))
		height = append(height, point(b.X[i], b.Upper[i]-b.Lower[i]))
	}

	hidden := opts.LineStyle{Color: color, Opacity: opts.Float(0)}

	vc.line.AddSeries("", lower,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), Stack: stack}),
		charts.WithLineStyleOpts(hidden),
	)
	vc.line.AddSeries(b.Name, height,
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false), Stack: stack}),
		charts.WithLineStyleOpts(hidden),
		charts.WithAreaStyleOpts(opts.AreaStyle{Color: color, Opacity: opts.Float(float32(opacity))}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
	)
}

func (vc *valueChart) addScatter(s figure.Scatter) {
	if vc.scatter == nil {
		vc.scatter = charts.NewScatter()
	}

	color := vc.nextColor(s.Color)

	size := s.Size
	if size <= 0 {
		size = defaultMarkerSize
	}

	n := min(len(s.X), len(s.Y))
	data := make([]opts.ScatterData, 0, n)

	// A NaN fails JSON encoding, which blanks the whole chart.
	for i := range n {
		if isFinite(s.X[i]) && isFinite(s.Y[i]) {
			data = append(data, opts.ScatterData{Value: []float64{s.X[i], s.Y[i]}})
		}
	}

	vc.scatter.AddSeries(s.Name, data,
		charts.WithScatterChartOpts(opts.ScatterChart{Symbol: markerSymbol(s.Marker), SymbolSize: size}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
	)
}

// addViolin draws the mirrored density with a quartile bar and median dot.
// Horizontal violins sit on y=0, vertical ones on x=0.
func (vc *valueChart) addViolin(v figure.Violin) {
	color := vc.nextColor(v.Color)
	horizontal := v.Orientation == figure.Horizontal

	at := func(pos, offset float64) opts.LineData {
		if horizontal {
			return point(pos, offset)
		}

		return point(offset, pos)
	}

	upper := make([]opts.LineData, len(v.Shape.Positions))
	lower := make([]opts.LineData, len(v.Shape.Positions))

	for i, p := range v.Shape.Positions {
		upper[i] = at(p, v.Shape.HalfWidth[i])
		lower[i] = at(p, -v.Shape.HalfWidth[i])
	}

	outline := []charts.SeriesOpts{
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: color, Width: 1}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
	}

	if horizontal {
		outline = append(outline, charts.WithAreaStyleOpts(opts.AreaStyle{
			Color:   color,
			Opacity: opts.Float(violinOpacity),
		}))
	}

	vc.line.AddSeries(v.Name, upper, outline...)
	vc.line.AddSeries(v.Name, lower, outline...)

	ink := vc.c.SeriesColor("black", 0)
	vc.line.AddSeries("", []opts.LineData{at(v.Summary.Q1, 0), at(v.Summary.Q3, 0)},
		charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: ink, Width: quartileWidth}),
	)
	vc.line.AddSeries("", []opts.LineData{at(v.Summary.Median, 0)},
		charts.WithLineChartOpts(opts.LineChart{Symbol: "circle", SymbolSize: defaultMarkerSize}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "white", BorderColor: ink}),
	)
}

func (vc *valueChart) addRefLine(r figure.RefLine) {
	if !isFinite(r.Value) {
		return
	}

	color := vc.nextColor(r.Color)

	lineType := "solid"
	if r.Dashed {
		lineType = "dashed"
	}

	var mark charts.SeriesOpts
	if r.Vertical {
		mark = charts.WithMarkLineNameXAxisItemOpts(opts.MarkLineNameXAxisItem{Name: r.Name, XAxis: r.Value})
	} else {
		mark = charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{Name: r.Name, YAxis: r.Value})
	}

	vc.line.AddSeries(r.Name, []opts.LineData{},
		mark,
		charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
			Symbol:    []string{"none", "none"},
			Label:     &opts.Label{Show: opts.Bool(false)},
			LineStyle: &opts.LineStyle{Color: color, Width: defaultLineWidth, Type: lineType},
		}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: color}),
	)
}

// violinAxes hides the density axis of a violin and fixes it to ±0.5.
func violinAxes(c *ChartOpts, ax *figure.Axes, v figure.Violin) (opts.XAxis, opts.YAxis) {
	xAxis := c.ValueXAxis(ax.XLabel, ax.XTicks)
	yAxis := c.ValueYAxis(ax.YLabel, ax.YTicks)
	hidden := &opts.AxisLabel{Show: opts.Bool(false)}

	if v.Orientation == figure.Horizontal {
		yAxis.Min, yAxis.Max = -violinExtent, violinExtent
		yAxis.AxisLabel = hidden
		yAxis.SplitLine = &opts.SplitLine{Show: opts.Bool(false)}
	} else {
		xAxis.Min, xAxis.Max = -violinExtent, violinExtent
		xAxis.AxisLabel = hidden
	}

	return xAxis, yAxis
}

func violinOf(ax *figure.Axes) (figure.Violin, bool) {
	for _, l := range ax.Layers {
		if v, ok := l.(figure.Violin); ok {
			return v, true
		}
	}

	return figure.Violin{}, false
}

func countOf[T figure.Layer](ax *figure.Axes) int {
	n := 0

	for _, l := range ax.Layers {
		if _, ok := l.(T); ok {
			n++
		}
	}

	return n
}

func markerSymbol(m figure.Marker) string {
	switch m {
	case figure.MarkerStar:
		return starSymbol
	case figure.MarkerCross:
		return crossSymbol
	case figure.MarkerPlus:
		return plusSymbol
	case figure.MarkerSquare:
		return "rect"
	case figure.MarkerTriangle:
		return "triangle"
	default:
		return "circle"
	}
}

func point(x, y float64) opts.LineData {
	return opts.LineData{Value: []float64{x, y}}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func round(v float64, precision int) float64 {
	scale := math.Pow(10, float64(max(precision, 0)))

	return math.Round(v*scale) / scale
}
