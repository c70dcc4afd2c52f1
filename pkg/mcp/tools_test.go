package mcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/statplot/pkg/batch"
	"github.com/Sumatoshi-tech/statplot/pkg/plotpage"
)

const toolCSV = "a,b,group\n1,2,x\n2,4,y\n3,7,x\n4,8,y\n"

func dataDir(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "t.csv"), []byte(toolCSV), 0o600))

	return dir
}

func TestHandleRender_ExplicitOutput(t *testing.T) {
	t.Parallel()

	dir := dataDir(t)
	srv := NewServer(ServerDeps{DataDir: dir})
	out := filepath.Join(t.TempDir(), "bars.png")

	result, output, err := srv.handleRender(context.Background(), &mcpsdk.CallToolRequest{}, RenderInput{
		Data:   "t.csv",
		Output: out,
		Plot:   batch.Plot{Kind: batch.KindBar, Columns: []string{"group"}, Y: "b"},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	got, ok := output.Data.(RenderResult)
	require.True(t, ok)
	assert.Equal(t, out, got.Path)
	assert.Equal(t, "png", got.Format)
	assert.Nil(t, got.AUROC)
	assert.FileExists(t, out)
}

func TestHandleRender_Errors(t *testing.T) {
	t.Parallel()

	dir := dataDir(t)
	srv := NewServer(ServerDeps{DataDir: dir, OutputDir: t.TempDir()})
	hist := batch.Plot{Kind: batch.KindHistogram, Columns: []string{"a"}}

	tests := map[string]RenderInput{
		"empty data":   {Plot: hist},
		"escape":       {Data: "../t.csv", Plot: hist},
		"missing file": {Data: "absent.csv", Plot: hist},
		"schema":       {Data: "t.csv", Plot: batch.Plot{Kind: "kde", Columns: []string{"a"}}},
		"format":       {Data: "t.csv", Format: "gif", Plot: hist},
		"mismatch":     {Data: "t.csv", Format: "svg", Output: filepath.Join(dir, "x.png"), Plot: hist},
		"theme":        {Data: "t.csv", Theme: "sepia", Plot: hist},
	}

	for name, input := range tests {
		result, _, err := srv.handleRender(context.Background(), &mcpsdk.CallToolRequest{}, input)
		require.NoError(t, err, name)
		assert.True(t, result.IsError, name)
	}
}

func TestOutputResolution(t *testing.T) {
	t.Parallel()

	srv := NewServer(ServerDeps{Format: "pdf", Theme: plotpage.ThemeDark})

	tests := []struct {
		input  RenderInput
		format string
	}{
		{RenderInput{}, "pdf"},
		{RenderInput{Output: "fig.svg"}, "svg"},
		{RenderInput{Output: "fig"}, "pdf"},
		{RenderInput{Output: "fig.svg", Format: "svg"}, "svg"},
		{RenderInput{Format: "HTML"}, "html"},
	}

	for _, tt := range tests {
		format, theme, err := srv.output(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.format, format)
		assert.Equal(t, plotpage.ThemeDark, theme)
	}
}

func TestOutputPath_TempFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	srv := NewServer(ServerDeps{OutputDir: filepath.Join(dir, "figs")})

	first, err := srv.outputPath(RenderInput{Plot: batch.Plot{Kind: "hist"}}, "svg")
	require.NoError(t, err)

	second, err := srv.outputPath(RenderInput{Plot: batch.Plot{Kind: "hist", Name: "ages"}}, "svg")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, ".svg", filepath.Ext(first))
	assert.Contains(t, filepath.Base(second), "ages-")
	assert.Equal(t, filepath.Join(dir, "figs"), filepath.Dir(first))
}
