package plotpage

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageTemplates parses the embedded page fragments on first use.
var pageTemplates = sync.OnceValues(func() (*template.Template, error) {
	return template.New("page").ParseFS(templateFS, "templates/*.html")
})

// renderTemplate executes one fragment into trusted HTML.
func renderTemplate(name string, data any) (template.HTML, error) {
	tmpl, parseErr := pageTemplates()
	if parseErr != nil {
		return "", fmt.Errorf("parse page templates: %w", parseErr)
	}

	var buf bytes.Buffer

	execErr := tmpl.ExecuteTemplate(&buf, name, data)
	if execErr != nil {
		return "", fmt.Errorf("template %s: %w", name, execErr)
	}

	//nolint:gosec // fragments are escaped by html/template.
	return template.HTML(buf.String()), nil
}

type pageData struct {
	Title      string
	DarkClass  string
	EChartsURL string
	Theme      ThemeConfig
	ExtraCSS   template.CSS
	Header     template.HTML
	Content    template.HTML
	Scripts    template.HTML
}

type headerData struct {
	ProjectName     string
	Title           string
	Description     string
	ShowThemeToggle bool
}

// gridData lays out one cell per subplot.
type gridData struct {
	Cols  int
	Gap   string
	Items []template.HTML
}
