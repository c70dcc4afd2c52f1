// Package plotpage renders figures as standalone HTML pages of echarts
// charts laid out on a CSS grid.
package plotpage

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"strings"
)

const (
	styleTagLen = len("</style>")

	// DefaultEChartsURL is where pages load the echarts runtime from.
	DefaultEChartsURL = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

	projectName = "statplot"
	gridGap     = "gap-4"
)

// ErrUnknownTheme is returned for theme names other than light and dark.
var ErrUnknownTheme = errors.New("unknown theme")

// Renderable is the interface for chart components.
type Renderable interface {
	Render(w io.Writer) error
}

// Page is one HTML document holding a grid of charts.
type Page struct {
	Title           string
	Description     string
	ProjectName     string
	ShowThemeToggle bool
	Theme           Theme
	EChartsURL      string
	// Cols is the number of grid columns. Zero means one.
	Cols  int
	Cells []Renderable
}

// NewPage creates a light-theme page.
func NewPage(title, description string) *Page {
	return &Page{
		Title:       title,
		Description: description,
		ProjectName: projectName,
		Theme:       ThemeLight,
		EChartsURL:  DefaultEChartsURL,
		Cols:        1,
	}
}

// WithTheme sets the theme for the page.
func (p *Page) WithTheme(theme Theme) *Page {
	p.Theme = theme

	return p
}

// Add appends grid cells in row-major order.
func (p *Page) Add(cells ...Renderable) {
	p.Cells = append(p.Cells, cells...)
}

// Render writes the page as HTML.
func (p *Page) Render(w io.Writer) error {
	return HTMLRenderer{}.Render(w, p)
}

// HTMLRenderer renders pages as HTML.
type HTMLRenderer struct {
	ExtraCSS string
}

// Render writes the page as HTML to the writer.
func (r HTMLRenderer) Render(w io.Writer, page *Page) error {
	header, err := renderTemplate("header.html", headerData{
		ProjectName:     page.ProjectName,
		Title:           page.Title,
		Description:     page.Description,
		ShowThemeToggle: page.ShowThemeToggle,
	})
	if err != nil {
		return fmt.Errorf("render header: %w", err)
	}

	grid, err := r.renderGrid(page)
	if err != nil {
		return fmt.Errorf("render grid: %w", err)
	}

	scripts, err := renderTemplate("scripts.html", nil)
	if err != nil {
		return fmt.Errorf("render scripts: %w", err)
	}

	darkClass := ""
	if page.Theme == ThemeDark {
		darkClass = "dark"
	}

	echartsURL := page.EChartsURL
	if echartsURL == "" {
		echartsURL = DefaultEChartsURL
	}

	html, err := renderTemplate("page.html", pageData{
		Title:      page.Title,
		DarkClass:  darkClass,
		EChartsURL: echartsURL,
		Theme:      GetThemeConfig(page.Theme),
		ExtraCSS:   template.CSS(r.ExtraCSS),
		Header:     header,
		Content:    grid,
		Scripts:    scripts,
	})
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	_, err = io.WriteString(w, string(html))
	if err != nil {
		return fmt.Errorf("writing page: %w", err)
	}

	return nil
}

func (r HTMLRenderer) renderGrid(page *Page) (template.HTML, error) {
	items := make([]template.HTML, len(page.Cells))

	for i, cell := range page.Cells {
		content, err := renderChart(cell)
		if err != nil {
			return "", fmt.Errorf("cell %d: %w", i, err)
		}

		items[i] = template.HTML(content)
	}

	return renderTemplate("grid.html", gridData{
		Cols:  max(page.Cols, 1),
		Gap:   gridGap,
		Items: items,
	})
}

// ChartWrapper wraps an echarts chart and renders only the chart content.
type ChartWrapper struct {
	chart Renderable
}

// WrapChart wraps an echarts chart to render only the div and script (no full HTML page).
func WrapChart(chart Renderable) *ChartWrapper {
	return &ChartWrapper{chart: chart}
}

// Render writes the chart element and script without a full HTML page.
func (cw *ChartWrapper) Render(w io.Writer) error {
	content, err := renderChart(cw.chart)
	if err != nil {
		return err
	}

	_, err = io.WriteString(w, content)
	if err != nil {
		return fmt.Errorf("writing chart content: %w", err)
	}

	return nil
}

func renderChart(chart Renderable) (string, error) {
	if chart == nil {
		return "", nil
	}

	var buf bytes.Buffer

	err := chart.Render(&buf)
	if err != nil {
		return "", fmt.Errorf("rendering chart: %w", err)
	}

	return extractChartContent(buf.String()), nil
}

// extractChartContent strips the document shell echarts wraps around a
// chart, keeping the container div and its script.
func extractChartContent(html string) string {
	trimmed := strings.TrimSpace(html)
	if !strings.HasPrefix(trimmed, "<!DOCTYPE") && !strings.HasPrefix(trimmed, "<html") {
		return html
	}

	start := strings.Index(html, `<div class="container">`)
	end := strings.Index(html, `</body>`)

	if start == -1 || end == -1 || end < start {
		return html
	}

	content := strings.ReplaceAll(html[start:end], `class="container"`, `class="echart-box"`)

	return removeStyleTags(content)
}

func removeStyleTags(content string) string {
	for {
		i := strings.Index(content, `<style>`)
		if i == -1 {
			return content
		}

		j := strings.Index(content[i:], `</style>`)
		if j == -1 {
			return content
		}

		content = content[:i] + content[i+j+styleTagLen:]
	}
}
