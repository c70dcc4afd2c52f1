package plotpage

import (
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/statplot/pkg/figure"
)

// RenderFigure writes fig as a standalone HTML page.
func RenderFigure(w io.Writer, fig *figure.Figure, theme Theme) error {
	page, err := FigurePage(fig, theme)
	if err != nil {
		return err
	}

	return page.Render(w)
}

// FigurePage builds a page with one chart per axes of fig.
func FigurePage(fig *figure.Figure, theme Theme) (*Page, error) {
	if err := fig.Check(); err != nil {
		return nil, err
	}

	cOpts := NewChartOpts(theme, fig.Fonts)
	cellW := fig.Layout.Width / float64(fig.Layout.Cols)
	cellH := fig.Layout.Height / float64(fig.Layout.Rows)

	page := NewPage(fig.Title, "").WithTheme(theme)
	page.Cols = fig.Layout.Cols

	for i, ax := range fig.Axes() {
		chart, err := BuildAxesChart(cOpts, ax, cellW, cellH)
		if err != nil {
			return nil, fmt.Errorf("axes %d %q: %w", i, ax.Title, err)
		}

		page.Add(WrapChart(chart))
	}

	return page, nil
}
