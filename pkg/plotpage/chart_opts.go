package plotpage

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/Sumatoshi-tech/statplot/pkg/figure"
)

// Plot-area margins. The outside legend takes the right-hand strip.
const (
	gridMarginOutside = "24%"
	gridMarginDefault = "6%"
	gridTop           = "14%"
	gridBottom        = "10%"
	pixelsPerInch     = 100
)

// Tick pinning limits.
const (
	maxTickSplits = 50
	tickTolerance = 1e-9
)

// ChartOpts provides themed chart options for one figure.
type ChartOpts struct {
	theme   ThemeConfig
	palette ChartPalette
	fonts   figure.Fonts
	dark    bool
}

// NewChartOpts creates chart options for a theme and figure fonts.
func NewChartOpts(theme Theme, fonts figure.Fonts) *ChartOpts {
	return &ChartOpts{
		theme:   GetThemeConfig(theme),
		palette: GetChartPalette(theme),
		fonts:   fonts,
		dark:    theme == ThemeDark,
	}
}

// DefaultChartOpts returns light-theme options with the stock fonts.
func DefaultChartOpts() *ChartOpts {
	return NewChartOpts(ThemeLight, figure.DefaultFonts())
}

// Init returns initialization options for a chart cell of the given inches.
func (c *ChartOpts) Init(widthIn, heightIn float64) opts.Initialization {
	return opts.Initialization{
		Width:           pixels(widthIn),
		Height:          pixels(heightIn),
		BackgroundColor: c.theme.ChartBackground,
	}
}

// Title returns the axes title options.
func (c *ChartOpts) Title(title string) opts.Title {
	return opts.Title{
		Title:      title,
		Left:       "center",
		TitleStyle: &opts.TextStyle{Color: c.theme.ChartText, FontSize: int(c.fonts.Title)},
	}
}

// Legend returns legend options for a placement.
func (c *ChartOpts) Legend(placement figure.Legend) opts.Legend {
	legend := opts.Legend{
		Show:      opts.Bool(placement != figure.LegendNone),
		TextStyle: &opts.TextStyle{Color: c.theme.ChartTextMuted, FontSize: int(c.fonts.Tick)},
	}

	if placement == figure.LegendOutside {
		legend.Orient = "vertical"
		legend.Right = "0"
		legend.Top = gridTop
	} else {
		legend.Top = "bottom"
	}

	return legend
}

// Grid returns the plot-area margins for a legend placement.
func (c *ChartOpts) Grid(placement figure.Legend) opts.Grid {
	right := gridMarginDefault
	if placement == figure.LegendOutside {
		right = gridMarginOutside
	}

	return opts.Grid{
		Top:          gridTop,
		Bottom:       gridBottom,
		Left:         gridMarginDefault,
		Right:        right,
		ContainLabel: opts.Bool(true),
	}
}

// ValueXAxis returns a numeric x axis, pinned to ticks when given.
func (c *ChartOpts) ValueXAxis(name string, ticks []float64) opts.XAxis {
	axis := opts.XAxis{
		Type:         "value",
		Name:         name,
		NameLocation: "middle",
		NameGap:      int(c.fonts.Label * 2),
		AxisLabel:    c.axisLabel(),
		AxisLine:     &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}},
		SplitLine:    &opts.SplitLine{Show: opts.Bool(false)},
		Scale:        opts.Bool(true),
	}

	if pin, ok := pinTicks(ticks); ok {
		axis.Min, axis.Max = pin.min, pin.max
		axis.SplitNumber = pin.splits
		axis.MinInterval, axis.MaxInterval = pin.step, pin.step
		axis.AxisLabel.Formatter = pin.labels
	}

	return axis
}

// ValueYAxis returns a numeric y axis, pinned to ticks when given.
func (c *ChartOpts) ValueYAxis(name string, ticks []float64) opts.YAxis {
	axis := opts.YAxis{
		Type:         "value",
		Name:         name,
		NameLocation: "middle",
		NameGap:      int(c.fonts.Label * 3),
		AxisLabel:    c.axisLabel(),
		AxisLine:     &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}},
		SplitLine: &opts.SplitLine{
			Show:      opts.Bool(true),
			LineStyle: &opts.LineStyle{Color: c.theme.ChartGrid},
		},
		Scale: opts.Bool(true),
	}

	if pin, ok := pinTicks(ticks); ok {
		axis.Min, axis.Max = pin.min, pin.max
		axis.SplitNumber = pin.splits
		axis.MinInterval, axis.MaxInterval = pin.step, pin.step
		axis.AxisLabel.Formatter = pin.labels
	}

	return axis
}

// CategoryXAxis returns a categorical x axis.
func (c *ChartOpts) CategoryXAxis(name string, categories []string) opts.XAxis {
	return opts.XAxis{
		Type:         "category",
		Name:         name,
		NameLocation: "middle",
		NameGap:      int(c.fonts.Label * 2),
		Data:         categories,
		AxisLabel:    c.axisLabel(),
		AxisLine:     &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}},
	}
}

// CategoryYAxis returns a categorical y axis.
func (c *ChartOpts) CategoryYAxis(name string, categories []string) opts.YAxis {
	return opts.YAxis{
		Type:         "category",
		Name:         name,
		NameLocation: "middle",
		NameGap:      int(c.fonts.Label * 4),
		Data:         categories,
		AxisLabel:    c.axisLabel(),
		AxisLine:     &opts.AxisLine{LineStyle: &opts.LineStyle{Color: c.theme.ChartAxis}},
	}
}

// Tooltip returns tooltip options.
func (c *ChartOpts) Tooltip(trigger string) opts.Tooltip {
	return opts.Tooltip{Show: opts.Bool(true), Trigger: trigger}
}

// SeriesColor resolves a layer color: empty takes the i-th palette entry,
// and black is swapped for the theme ink.
func (c *ChartOpts) SeriesColor(color string, i int) string {
	switch {
	case color == "":
		return c.palette.Color(i)
	case c.dark && strings.EqualFold(color, "black"):
		return c.theme.Ink
	default:
		return color
	}
}

// TextColor returns the primary chart text color.
func (c *ChartOpts) TextColor() string {
	return c.theme.ChartText
}

func (c *ChartOpts) axisLabel() *opts.AxisLabel {
	return &opts.AxisLabel{Color: c.theme.ChartTextMuted, FontSize: int(c.fonts.Tick)}
}

func pixels(inches float64) string {
	return strconv.Itoa(int(inches*pixelsPerInch)) + "px"
}

// tickPin fixes an echarts value axis to an explicit tick list. echarts
// puts ticks on multiples of the interval, so the interval is the common
// divisor of the ticks and labels off the list are blanked.
type tickPin struct {
	min, max float64
	step     float64
	splits   int
	labels   types.FuncStr
}

func pinTicks(ticks []float64) (tickPin, bool) {
	sorted := slices.Clone(ticks)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	if len(sorted) < 2 {
		return tickPin{}, false
	}

	pin := tickPin{min: sorted[0], max: sorted[len(sorted)-1]}
	tol := (pin.max - pin.min) * tickTolerance

	step := 0.0
	for _, v := range sorted {
		step = commonDivisor(step, v, tol)
	}

	pin.splits = len(sorted) - 1

	if step > tol && (pin.max-pin.min)/step <= maxTickSplits {
		pin.step = step
		pin.splits = int(math.Round((pin.max - pin.min) / step))
	}

	if pin.step == 0 || pin.splits != len(sorted)-1 {
		pin.labels = tickLabels(sorted, tol)
	}

	return pin, true
}

// commonDivisor is Euclid's algorithm on floats, treating remainders
// within tol as zero.
func commonDivisor(a, b, tol float64) float64 {
	a, b = math.Abs(a), math.Abs(b)

	for b > tol {
		a, b = b, math.Mod(a, b)
		if a-b <= tol {
			b = 0
		}
	}

	return a
}

// tickLabels returns a label formatter that prints only the listed ticks.
func tickLabels(ticks []float64, tol float64) types.FuncStr {
	values := make([]string, len(ticks))
	for i, v := range ticks {
		values[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}

	return opts.FuncOpts(`function (value) {
	var ticks = [` + strings.Join(values, ", ") + `];
	for (var i = 0; i < ticks.length; i++) {
		if (Math.abs(value - ticks[i]) <= ` + strconv.FormatFloat(tol, 'g', -1, 64) + `) {
			return String(ticks[i]);
		}
	}
	return '';
}`)
}
