// Package canvas renders figures to static images (PNG, JPEG, SVG, PDF)
// with gonum/plot, one plot per axes tiled on a single canvas.
package canvas

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/Sumatoshi-tech/statplot/pkg/figure"
)

// Output formats.
const (
	FormatPNG  = "png"
	FormatJPEG = "jpg"
	FormatSVG  = "svg"
	FormatPDF  = "pdf"
)

// ErrUnsupportedFormat is returned for formats other than png, jpg, svg and pdf.
var ErrUnsupportedFormat = errors.New("unsupported image format")

const (
	tilePad      = vg.Length(14)
	legendShare  = 0.22
	titlePadding = vg.Length(6)
)

// NormalizeFormat maps a format name or file extension onto a supported format.
func NormalizeFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))

	switch f {
	case FormatPNG, FormatSVG, FormatPDF, FormatJPEG:
		return f, nil
	case "jpeg":
		return FormatJPEG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Render draws fig and writes it to w in the given format.
func Render(w io.Writer, fig *figure.Figure, format string) error {
	if err := fig.Check(); err != nil {
		return err
	}

	f, err := NormalizeFormat(format)
	if err != nil {
		return err
	}

	cells, err := buildCells(fig)
	if err != nil {
		return err
	}

	width := vg.Length(fig.Layout.Width) * vg.Inch
	height := vg.Length(fig.Layout.Height) * vg.Inch

	cw, err := draw.NewFormattedCanvas(width, height, f)
	if err != nil {
		return fmt.Errorf("create %s canvas: %w", f, err)
	}

	dc := draw.New(cw)
	dc.SetColor(color.White)
	dc.Fill(dc.Rectangle.Path())

	if fig.Title != "" {
		dc = drawFigureTitle(dc, fig)
	}

	drawCells(dc, fig.Layout, cells)

	_, err = cw.WriteTo(w)
	if err != nil {
		return fmt.Errorf("write %s: %w", f, err)
	}

	return nil
}

// cell is one axes ready to draw. legend is set when the legend sits
// outside the plot area.
type cell struct {
	plot   *plot.Plot
	legend *plot.Legend
}

func buildCells(fig *figure.Figure) ([][]cell, error) {
	cells := make([][]cell, fig.Layout.Rows)
	for r := range cells {
		cells[r] = make([]cell, fig.Layout.Cols)
	}

	for i, ax := range fig.Axes() {
		p, legend, err := buildPlot(ax, fig.Fonts)
		if err != nil {
			return nil, fmt.Errorf("axes %d %q: %w", i, ax.Title, err)
		}

		row, col := fig.Cell(i)
		cells[row][col] = cell{plot: p, legend: legend}
	}

	return cells, nil
}

func drawCells(dc draw.Canvas, layout figure.Layout, cells [][]cell) {
	plots := make([][]*plot.Plot, len(cells))
	for r, row := range cells {
		plots[r] = make([]*plot.Plot, len(row))
		for c, cl := range row {
			plots[r][c] = cl.plot
		}
	}

	tiles := draw.Tiles{
		Rows:      layout.Rows,
		Cols:      layout.Cols,
		PadX:      tilePad,
		PadY:      tilePad,
		PadTop:    tilePad,
		PadBottom: tilePad,
		PadLeft:   tilePad,
		PadRight:  tilePad,
	}

	canvases := plot.Align(plots, tiles, dc)

	for r, row := range cells {
		for c, cl := range row {
			if cl.plot == nil {
				continue
			}

			area := canvases[r][c]
			if cl.legend != nil {
				strip := (area.Max.X - area.Min.X) * legendShare
				cl.legend.Draw(draw.Crop(area, area.Max.X-area.Min.X-strip, 0, 0, 0))
				area = draw.Crop(area, 0, -strip, 0, 0)
			}

			cl.plot.Draw(area)
		}
	}
}

func drawFigureTitle(dc draw.Canvas, fig *figure.Figure) draw.Canvas {
	sty := textStyle(fig.Fonts.Title)
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YTop

	dc.FillText(sty, vg.Point{X: dc.Center().X, Y: dc.Max.Y - titlePadding}, fig.Title)

	return draw.Crop(dc, 0, 0, 0, -(sty.Rectangle(fig.Title).Size().Y + 2*titlePadding))
}

func textStyle(size float64) text.Style {
	return text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, vg.Points(size)),
		Handler: plot.DefaultTextHandler,
	}
}

// pinTicks fixes an axis to the given tick positions.
func pinTicks(axis *plot.Axis, ticks []float64) {
	if len(ticks) < 2 {
		return
	}

	marks := make(plot.ConstantTicks, len(ticks))
	for i, v := range ticks {
		marks[i] = plot.Tick{Value: v, Label: strconv.FormatFloat(v, 'g', 4, 64)}
	}

	axis.Min = ticks[0]
	axis.Max = ticks[len(ticks)-1]
	axis.Tick.Marker = marks
}
