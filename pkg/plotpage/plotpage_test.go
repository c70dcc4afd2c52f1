package plotpage

import (
	"bytes"
	"math"
	"slices"
	"strings"
	"testing"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/statplot/pkg/alg/stats"
	"github.com/Sumatoshi-tech/statplot/pkg/figure"
)

func newFigure(t *testing.T, rows, cols, n int) *figure.Figure {
	t.Helper()

	fig, err := figure.New("Report", figure.Layout{Rows: rows, Cols: cols}, n)
	require.NoError(t, err)

	return fig
}

func TestParseTheme(t *testing.T) {
	t.Parallel()

	theme, err := ParseTheme("")
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)

	theme, err = ParseTheme(" Dark ")
	require.NoError(t, err)
	assert.Equal(t, ThemeDark, theme)

	_, err = ParseTheme("sepia")
	require.ErrorIs(t, err, ErrUnknownTheme)
}

func TestPageRenderLight(t *testing.T) {
	t.Parallel()

	page := NewPage("Light Page", "Light theme test")

	var buf bytes.Buffer

	require.NoError(t, page.Render(&buf))

	html := buf.String()
	assert.Contains(t, html, "cdn.tailwindcss.com")
	assert.Contains(t, html, DefaultEChartsURL)
	assert.Contains(t, html, "Light Page")
	assert.Contains(t, html, "Light theme test")
	assert.NotContains(t, html, `class="dark"`)
}

func TestPageRenderDark(t *testing.T) {
	t.Parallel()

	page := NewPage("Dark Page", "").WithTheme(ThemeDark)
	page.ShowThemeToggle = true

	var buf bytes.Buffer

	require.NoError(t, page.Render(&buf))

	html := buf.String()
	assert.Contains(t, html, `class="dark"`)
	assert.Contains(t, html, "theme-toggle")
}

func TestRenderFigureGrid(t *testing.T) {
	t.Parallel()

	fig := newFigure(t, 2, 2, 3)
	defer fig.Close()

	for i, ax := range fig.Axes() {
		ax.Title = []string{"Alpha Panel", "Beta Panel", "Gamma Panel"}[i]
		ax.Add(figure.Line{Name: "line", X: []float64{0, 1, 2}, Y: []float64{1, 3, 2}})
	}

	var buf bytes.Buffer

	require.NoError(t, RenderFigure(&buf, fig, ThemeLight))

	html := buf.String()
	assert.Equal(t, 3, strings.Count(html, `class="echart-box"`))
	assert.Equal(t, 3, strings.Count(html, "data-cell="))
	assert.Contains(t, html, "repeat(2, minmax(0, 1fr))")
	assert.Contains(t, html, "Alpha Panel")
	assert.Contains(t, html, "Gamma Panel")
	assert.NotContains(t, html, `class="container"`)
}

func TestRenderFigureClosed(t *testing.T) {
	t.Parallel()

	fig := newFigure(t, 1, 1, 1)
	require.NoError(t, fig.Close())

	var buf bytes.Buffer

	err := RenderFigure(&buf, fig, ThemeLight)
	require.ErrorIs(t, err, figure.ErrClosed)
	assert.Zero(t, buf.Len())
}

func TestBuildAxesChartDispatch(t *testing.T) {
	t.Parallel()

	summary, err := stats.Box([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100})
	require.NoError(t, err)

	shape, err := stats.NewViolinShape([]float64{1, 2, 2, 3, 3, 3, 4, 4, 5}, 64, 0.4)
	require.NoError(t, err)

	tests := []struct {
		name   string
		layers []figure.Layer
		check  func(t *testing.T, chart Renderable)
	}{
		{
			name: "heatmap",
			layers: []figure.Layer{figure.Heatmap{
				Labels:   []string{"a", "b"},
				Values:   [][]float64{{1, 0.5}, {0.5, 1}},
				Mask:     [][]bool{{false, true}, {false, false}},
				Min:      -1,
				Max:      1,
				Colormap: figure.ColormapRdBu,
				Annotate: true,
			}},
			check: func(t *testing.T, chart Renderable) {
				t.Helper()

				hm, ok := chart.(*charts.HeatMap)
				require.True(t, ok)
				require.Len(t, hm.MultiSeries, 1)
				assert.Len(t, hm.MultiSeries[0].Data, 3)
				require.Len(t, hm.VisualMapList, 1)
				assert.Len(t, hm.VisualMapList[0].InRange.Color, heatmapStops)
				assert.NotContains(t, hm.VisualMapList[0].InRange.Color, "")
			},
		},
		{
			name: "category bars with errors",
			layers: []figure.Layer{figure.CategoryBars{
				Name:       "mean",
				Categories: []string{"x", "y"},
				Values:     []float64{2, 3},
				Lower:      []float64{1, 2},
				Upper:      []float64{3, 4},
			}},
			check: func(t *testing.T, chart Renderable) {
				t.Helper()

				bar, ok := chart.(*charts.Bar)
				require.True(t, ok)
				require.Len(t, bar.MultiSeries, 1)
				require.NotNil(t, bar.MultiSeries[0].MarkLines)
				assert.Len(t, bar.MultiSeries[0].MarkLines.Data, 2)
			},
		},
		{
			name: "box with outliers",
			layers: []figure.Layer{figure.Box{Name: "score", Summary: summary, Orientation: figure.Horizontal}},
			check: func(t *testing.T, chart Renderable) {
				t.Helper()

				box, ok := chart.(*charts.BoxPlot)
				require.True(t, ok)
				require.Len(t, box.MultiSeries, 2)
				assert.Equal(t, "outliers", box.MultiSeries[1].Name)
			},
		},
		{
			name: "value layers",
			layers: []figure.Layer{
				figure.Bars{Name: "hist", Edges: []float64{0, 1, 2}, Counts: []float64{3, 4}},
				figure.Band{Name: "ci", X: []float64{0, 1}, Lower: []float64{0, 1}, Upper: []float64{1, 2}},
				figure.Scatter{Name: "points", X: []float64{1}, Y: []float64{2}, Marker: figure.MarkerStar},
				figure.RefLine{Name: "mean", Vertical: true, Value: 1, Color: "red"},
			},
			check: func(t *testing.T, chart Renderable) {
				t.Helper()

				line, ok := chart.(*charts.Line)
				require.True(t, ok)

				names := make([]string, 0, len(line.MultiSeries))
				for _, s := range line.MultiSeries {
					names = append(names, s.Name)
				}

				assert.Equal(t, []string{"hist", "", "ci", "mean", "points"}, names)
				assert.Equal(t, starSymbol, line.MultiSeries[4].Symbol)
			},
		},
		{
			name: "violin",
			layers: []figure.Layer{figure.Violin{
				Name:        "v",
				Shape:       shape,
				Summary:     summary,
				Orientation: figure.Horizontal,
			}},
			check: func(t *testing.T, chart Renderable) {
				t.Helper()

				line, ok := chart.(*charts.Line)
				require.True(t, ok)
				assert.Len(t, line.MultiSeries, 4)
				assert.InDelta(t, -violinExtent, line.YAxisList[0].Min, 1e-9)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ax := &figure.Axes{Title: tt.name}
			ax.Add(tt.layers...)

			chart, err := BuildAxesChart(DefaultChartOpts(), ax, 6, 4)
			require.NoError(t, err)
			tt.check(t, chart)

			var buf bytes.Buffer

			require.NoError(t, WrapChart(chart).Render(&buf))
			assert.Contains(t, buf.String(), `class="echart-box"`)
		})
	}
}

func TestRenderFigureSkipsNonFinitePoints(t *testing.T) {
	t.Parallel()

	fig := newFigure(t, 1, 1, 1)
	defer fig.Close()

	nan := math.NaN()
	fig.At(0).Add(
		figure.Scatter{Name: "points", X: []float64{1, 2, nan, 4}, Y: []float64{2, nan, 6, 8}},
		figure.Line{Name: "fit", X: []float64{1, 2, 3}, Y: []float64{2, math.Inf(1), 6}},
		figure.RefLine{Name: "zero", Value: nan},
	)

	chart, err := BuildAxesChart(DefaultChartOpts(), fig.At(0), 6, 4)
	require.NoError(t, err)

	line, ok := chart.(*charts.Line)
	require.True(t, ok)
	require.Len(t, line.MultiSeries, 2)
	assert.Equal(t, "fit", line.MultiSeries[0].Name)
	assert.Len(t, line.MultiSeries[0].Data, 2)
	assert.Equal(t, "points", line.MultiSeries[1].Name)
	assert.Len(t, line.MultiSeries[1].Data, 2)

	var buf bytes.Buffer

	require.NoError(t, RenderFigure(&buf, fig, ThemeLight))
	assert.Regexp(t, `option_\w+ = \{`, buf.String())
	assert.Contains(t, buf.String(), `"points"`)
}

func TestBuildHeatmapUnknownColormap(t *testing.T) {
	t.Parallel()

	ax := &figure.Axes{}
	ax.Add(figure.Heatmap{
		Labels:   []string{"a"},
		Values:   [][]float64{{1}},
		Mask:     [][]bool{{false}},
		Min:      -1,
		Max:      1,
		Colormap: "jet",
	})

	chart, err := BuildAxesChart(DefaultChartOpts(), ax, 6, 4)
	require.ErrorIs(t, err, figure.ErrUnknownColormap)
	assert.Nil(t, chart)
}

func TestSeriesColor(t *testing.T) {
	t.Parallel()

	light := DefaultChartOpts()
	dark := NewChartOpts(ThemeDark, figure.DefaultFonts())

	assert.Equal(t, "#4c72b0", light.SeriesColor("", 0))
	assert.Equal(t, "#dd8452", light.SeriesColor("", 11))
	assert.Equal(t, "black", light.SeriesColor("black", 0))
	assert.Equal(t, darkTheme.Ink, dark.SeriesColor("Black", 0))
	assert.Equal(t, "red", dark.SeriesColor("red", 3))
}

func TestValueAxisTicks(t *testing.T) {
	t.Parallel()

	axis := DefaultChartOpts().ValueXAxis("x", []float64{0, 0.25, 0.5, 0.75, 1})
	assert.Equal(t, 0.0, axis.Min)
	assert.Equal(t, 1.0, axis.Max)
	assert.Equal(t, 4, axis.SplitNumber)
	assert.InDelta(t, 0.25, axis.MinInterval, 1e-12)
	assert.InDelta(t, 0.25, axis.MaxInterval, 1e-12)
	assert.Empty(t, axis.AxisLabel.Formatter)

	bare := DefaultChartOpts().ValueYAxis("y", nil)
	assert.Nil(t, bare.Min)
	assert.Zero(t, bare.MaxInterval)
}

func TestPinTicks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		ticks    []float64
		step     float64
		splits   int
		filtered bool
	}{
		{name: "even", ticks: []float64{20, 40, 60}, step: 20, splits: 2},
		{name: "decimal", ticks: []float64{0.1, 0.2, 0.3}, step: 0.1, splits: 2},
		{name: "offset", ticks: []float64{5, 15, 25}, step: 5, splits: 4, filtered: true},
		{name: "uneven", ticks: []float64{10, 0, 3, 1}, step: 1, splits: 10, filtered: true},
		{name: "too fine", ticks: []float64{0, 0.001, 100}, step: 0, splits: 2, filtered: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pin, ok := pinTicks(tt.ticks)
			require.True(t, ok)

			assert.InDelta(t, slices.Min(tt.ticks), pin.min, 0)
			assert.InDelta(t, slices.Max(tt.ticks), pin.max, 0)
			assert.InDelta(t, tt.step, pin.step, 1e-9)
			assert.Equal(t, tt.splits, pin.splits)
			assert.Equal(t, tt.filtered, pin.labels != "")
		})
	}

	_, ok := pinTicks([]float64{3, 3})
	assert.False(t, ok)

	pin, _ := pinTicks([]float64{0, 1, 3, 10})
	assert.Contains(t, string(pin.labels), "[0, 1, 3, 10]")
}
