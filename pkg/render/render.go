// Package render writes a figure in any supported output format: an
// interactive HTML page or a static image.
package render

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Sumatoshi-tech/statplot/pkg/canvas"
	"github.com/Sumatoshi-tech/statplot/pkg/figure"
	"github.com/Sumatoshi-tech/statplot/pkg/plotpage"
)

// FormatHTML is the interactive page format.
const FormatHTML = "html"

// ErrUnsupportedFormat is returned for unknown output formats.
var ErrUnsupportedFormat = canvas.ErrUnsupportedFormat

// Options control how a figure is written.
type Options struct {
	// Format is html, png, jpg, svg or pdf. Empty means html.
	Format string
	// Theme applies to html output only.
	Theme plotpage.Theme
}

// Formats lists every supported output format.
func Formats() []string {
	return []string{FormatHTML, canvas.FormatPNG, canvas.FormatJPEG, canvas.FormatSVG, canvas.FormatPDF}
}

// NormalizeFormat canonicalizes a format name or file extension.
func NormalizeFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if f == "" || f == FormatHTML || f == "htm" {
		return FormatHTML, nil
	}

	return canvas.NormalizeFormat(f)
}

// FormatFromPath infers the format from a file extension, falling back to
// fallback when the path has none.
func FormatFromPath(path, fallback string) (string, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return NormalizeFormat(fallback)
	}

	return NormalizeFormat(ext)
}

// ContentType returns the MIME type of a normalized format.
func ContentType(format string) string {
	switch format {
	case canvas.FormatPNG:
		return "image/png"
	case canvas.FormatJPEG:
		return "image/jpeg"
	case canvas.FormatSVG:
		return "image/svg+xml"
	case canvas.FormatPDF:
		return "application/pdf"
	default:
		return "text/html; charset=utf-8"
	}
}

// Write renders fig to w.
func Write(w io.Writer, fig *figure.Figure, o Options) error {
	format, err := NormalizeFormat(o.Format)
	if err != nil {
		return err
	}

	if format == FormatHTML {
		theme := o.Theme
		if theme == "" {
			theme = plotpage.ThemeLight
		}

		return plotpage.RenderFigure(w, fig, theme)
	}

	return canvas.Render(w, fig, format)
}

// WriteFile renders fig to path. An empty o.Format is inferred from the
// path extension.
func WriteFile(path string, fig *figure.Figure, o Options) (err error) {
	if o.Format == "" {
		o.Format, err = FormatFromPath(path, FormatHTML)
		if err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	defer func() {
		closeErr := f.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	return Write(f, fig, o)
}
