package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/statplot/pkg/batch"
	"github.com/Sumatoshi-tech/statplot/pkg/frame"
	"github.com/Sumatoshi-tech/statplot/pkg/plotpage"
	"github.com/Sumatoshi-tech/statplot/pkg/render"
)

// Tool name constants.
const (
	ToolNameRender   = "statplot_render"
	ToolNameDescribe = "statplot_describe"
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyData indicates the data parameter is empty.
	ErrEmptyData = errors.New("data parameter is required and must not be empty")
	// ErrFormatMismatch indicates the output extension contradicts the format.
	ErrFormatMismatch = errors.New("output extension does not match format")
)

// RenderInput is the input schema for the statplot_render tool.
type RenderInput struct {
	Data   string     `json:"data"             jsonschema:"path to a csv, tsv or xlsx table"`
	Sheet  string     `json:"sheet,omitempty"  jsonschema:"xlsx sheet name (default: first sheet)"`
	Output string     `json:"output,omitempty" jsonschema:"output file path; its extension picks the format"`
	Format string     `json:"format,omitempty" jsonschema:"html, png, jpg, svg or pdf"`
	Theme  string     `json:"theme,omitempty"  jsonschema:"light or dark (html only)"`
	Plot   batch.Plot `json:"plot"             jsonschema:"the plot: kind plus the columns and options it uses"`
}

// DescribeInput is the input schema for the statplot_describe tool.
type DescribeInput struct {
	Data  string `json:"data"            jsonschema:"path to a csv, tsv or xlsx table"`
	Sheet string `json:"sheet,omitempty" jsonschema:"xlsx sheet name (default: first sheet)"`
}

// RenderResult is the payload of a successful statplot_render call.
type RenderResult struct {
	Path   string   `json:"path"`
	Kind   string   `json:"kind"`
	Format string   `json:"format"`
	Bytes  int64    `json:"bytes"`
	AUROC  *float64 `json:"auroc,omitempty"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

func (s *Server) handleRender(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input RenderInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	table, err := s.load(input.Data, input.Sheet)
	if err != nil {
		return errorResult(err)
	}

	validateErr := batch.ValidatePlot(input.Plot)
	if validateErr != nil {
		return errorResult(validateErr)
	}

	format, theme, err := s.output(input)
	if err != nil {
		return errorResult(err)
	}

	path, err := s.outputPath(input, format)
	if err != nil {
		return errorResult(err)
	}

	res, err := batch.Build(table, input.Plot, s.plot)
	if err != nil {
		return errorResult(err)
	}
	defer res.Close()

	writeErr := render.WriteFile(path, res.Figure, render.Options{Format: format, Theme: theme})
	if writeErr != nil {
		return errorResult(fmt.Errorf("write %s: %w", path, writeErr))
	}

	info, statErr := os.Stat(path)
	if statErr != nil {
		return errorResult(fmt.Errorf("stat output: %w", statErr))
	}

	if s.figures != nil {
		s.figures.RecordFigure(ctx, input.Plot.Kind, format, info.Size())
	}

	return jsonResult(RenderResult{
		Path:   path,
		Kind:   input.Plot.Kind,
		Format: format,
		Bytes:  info.Size(),
		AUROC:  res.AUROC,
	})
}

func (s *Server) handleDescribe(
	_ context.Context,
	_ *mcpsdk.CallToolRequest,
	input DescribeInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	table, err := s.load(input.Data, input.Sheet)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(batch.Describe(table))
}

func (s *Server) load(data, sheet string) (*frame.Table, error) {
	if data == "" {
		return nil, ErrEmptyData
	}

	path, err := batch.ResolvePath(s.dataDir, data)
	if err != nil {
		return nil, err
	}

	return frame.Load(path, frame.LoadOptions{Sheet: sheet})
}

// output resolves the format from, in order, the input format, the output
// path extension and the server default.
func (s *Server) output(input RenderInput) (string, plotpage.Theme, error) {
	fallback := s.format

	if input.Output != "" && filepath.Ext(input.Output) != "" {
		fromPath, err := render.FormatFromPath(input.Output, fallback)
		if err != nil {
			return "", "", err
		}

		fallback = fromPath
	}

	format, err := render.NormalizeFormat(firstNonEmpty(input.Format, fallback))
	if err != nil {
		return "", "", err
	}

	theme := s.theme
	if input.Theme != "" {
		theme, err = plotpage.ParseTheme(input.Theme)
		if err != nil {
			return "", "", err
		}
	}

	return format, theme, nil
}

// outputPath returns the file to write. Without an explicit output a fresh
// file is created in the output directory.
func (s *Server) outputPath(input RenderInput, format string) (string, error) {
	if input.Output != "" {
		if ext := filepath.Ext(input.Output); ext != "" {
			extFormat, err := render.NormalizeFormat(ext)
			if err != nil || extFormat != format {
				return "", fmt.Errorf("%w: %s for %s", ErrFormatMismatch, input.Output, format)
			}
		}

		return input.Output, nil
	}

	dir := s.outDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), serverName)
	}

	mkdirErr := os.MkdirAll(dir, 0o750)
	if mkdirErr != nil {
		return "", fmt.Errorf("create output dir: %w", mkdirErr)
	}

	prefix := input.Plot.Name
	if prefix == "" {
		prefix = input.Plot.Kind
	}

	f, createErr := os.CreateTemp(dir, prefix+"-*."+format)
	if createErr != nil {
		return "", fmt.Errorf("create output: %w", createErr)
	}

	closeErr := f.Close()
	if closeErr != nil {
		return "", fmt.Errorf("create output: %w", closeErr)
	}

	return f.Name(), nil
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}
