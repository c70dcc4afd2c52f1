package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/statplot/pkg/mcp"
	"github.com/Sumatoshi-tech/statplot/pkg/observability"
)

const sampleCSV = "x,y,label,score\n1,2.1,0,0.1\n2,3.9,0,0.3\n3,6.2,1,0.2\n4,8.1,1,0.8\n5,9.8,0,0.6\n6,12.2,1,0.9\n"

// connect runs srv on an in-memory transport and returns a client session.
func connect(t *testing.T, srv *mcp.Server) *mcpsdk.ClientSession {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return session
}

func writeData(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o600))

	return path
}

func textOf(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	require.NotEmpty(t, result.Content)

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok)

	return text.Text
}

func TestMCPServer_InMemoryTransport_ToolsList(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{})
	session := connect(t, srv)

	toolsResult, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	toolNames := make([]string, 0, len(toolsResult.Tools))
	for _, tool := range toolsResult.Tools {
		toolNames = append(toolNames, tool.Name)
		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}

	assert.ElementsMatch(t, []string{mcp.ToolNameRender, mcp.ToolNameDescribe}, toolNames)
	assert.Equal(t, []string{mcp.ToolNameDescribe, mcp.ToolNameRender}, srv.ListToolNames())
}

func TestMCPServer_InMemoryTransport_RenderROC(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	srv := mcp.NewServer(mcp.ServerDeps{OutputDir: outDir, Format: "svg"})
	session := connect(t, srv)

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name: mcp.ToolNameRender,
		Arguments: map[string]any{
			"data": writeData(t),
			"plot": map[string]any{"kind": "roc", "target": "label", "score": "score", "title": "Model"},
		},
	})
	require.NoError(t, err)
	require.False(t, result.IsError, textOf(t, result))

	var got mcp.RenderResult
	require.NoError(t, json.Unmarshal([]byte(textOf(t, result)), &got))

	assert.Equal(t, "roc", got.Kind)
	assert.Equal(t, "svg", got.Format)
	assert.Equal(t, outDir, filepath.Dir(got.Path))
	assert.FileExists(t, got.Path)
	assert.Positive(t, got.Bytes)
	require.NotNil(t, got.AUROC)
	assert.InDelta(t, 2.0/3.0, *got.AUROC, 1e-9)
}

func TestMCPServer_InMemoryTransport_Describe(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      mcp.ToolNameDescribe,
		Arguments: map[string]any{"data": writeData(t)},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)
	assert.Contains(t, textOf(t, result), `"rows": 6`)
	assert.Contains(t, textOf(t, result), `"name": "score"`)
}

func TestMCPServer_InMemoryTransport_RenderError(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name: mcp.ToolNameRender,
		Arguments: map[string]any{
			"data": writeData(t),
			"plot": map[string]any{"kind": "hist", "columns": []string{"missing"}},
		},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textOf(t, result), "column not found")
}

func TestMCPServer_TracingAndMetrics(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	session := connect(t, mcp.NewServer(mcp.ServerDeps{
		Tracer:  tp.Tracer("test"),
		Metrics: red,
	}))

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      mcp.ToolNameDescribe,
		Arguments: map[string]any{"data": writeData(t)},
	})
	require.NoError(t, err)
	require.False(t, result.IsError)

	last, ok := result.Content[len(result.Content)-1].(*mcpsdk.TextContent)
	require.True(t, ok)
	assert.Contains(t, last.Text, "trace_id=")

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "mcp."+mcp.ToolNameDescribe, spans[0].Name)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := false

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "statplot.requests.total" {
				found = true
			}
		}
	}

	assert.True(t, found)
}
