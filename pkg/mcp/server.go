// Package mcp implements a Model Context Protocol server exposing plot
// rendering and table description as MCP tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/statplot/pkg/graphs"
	"github.com/Sumatoshi-tech/statplot/pkg/observability"
	"github.com/Sumatoshi-tech/statplot/pkg/plotpage"
	"github.com/Sumatoshi-tech/statplot/pkg/version"
)

const (
	serverName = "statplot"

	toolCount = 2
)

// ServerDeps holds injectable dependencies for the MCP server.
// Zero-value fields use production defaults.
type ServerDeps struct {
	// Logger is an optional structured logger. Nil uses slog default.
	Logger *slog.Logger

	// Metrics is an optional RED metrics recorder. Nil disables per-tool metrics.
	Metrics *observability.REDMetrics

	// Figures counts rendered figures. Nil disables it.
	Figures *observability.FigureMetrics

	// Tracer is an optional OTel tracer for per-tool-call spans. Nil disables tracing.
	Tracer trace.Tracer

	// Plot are the default plot options. The zero value uses graphs.DefaultOptions.
	Plot *graphs.Options
	// Format and Theme are the output defaults when a call names none.
	Format string
	Theme  plotpage.Theme

	// DataDir confines data paths. Empty allows any path.
	DataDir string
	// OutputDir receives figures whose call names no output path. Empty
	// uses a statplot directory under os.TempDir.
	OutputDir string
}

// Server wraps the MCP SDK server with the statplot tools.
type Server struct {
	inner   *mcpsdk.Server
	mu      sync.RWMutex
	tools   []string
	metrics *observability.REDMetrics
	figures *observability.FigureMetrics
	tracer  trace.Tracer
	plot    graphs.Options
	format  string
	theme   plotpage.Theme
	dataDir string
	outDir  string
}

// NewServer creates a new MCP server with every tool registered.
func NewServer(deps ServerDeps) *Server {
	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	inner := mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		opts,
	)

	plot := graphs.DefaultOptions()
	if deps.Plot != nil {
		plot = *deps.Plot
	}

	srv := &Server{
		inner:   inner,
		tools:   make([]string, 0, toolCount),
		metrics: deps.Metrics,
		figures: deps.Figures,
		tracer:  deps.Tracer,
		plot:    plot,
		format:  deps.Format,
		theme:   deps.Theme,
		dataDir: deps.DataDir,
		outDir:  deps.OutputDir,
	}

	srv.registerTools()

	return srv
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := slices.Clone(s.tools)
	slices.Sort(names)

	return names
}

// Run starts the MCP server on stdio transport. It blocks until the context
// is canceled or the connection closes.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport starts the MCP server on the given transport.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameRender,
		Description: renderToolDescription,
	}, withMetrics(s.metrics, ToolNameRender, withTracing(s.tracer, ToolNameRender, s.handleRender)))

	s.trackTool(ToolNameRender)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameDescribe,
		Description: describeToolDescription,
	}, withMetrics(s.metrics, ToolNameDescribe, withTracing(s.tracer, ToolNameDescribe, s.handleDescribe)))

	s.trackTool(ToolNameDescribe)
}

const mcpSpanPrefix = "mcp."

// traceIDMetaKey is the metadata key for trace_id in MCP tool responses.
const traceIDMetaKey = "trace_id"

// withTracing wraps a tool handler in a span per invocation and appends the
// trace_id to sampled results.
func withTracing[In any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, In) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, In) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input In) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		if result != nil && result.IsError {
			span.SetAttributes(attribute.Bool("mcp.tool.error", true))
		}

		sc := span.SpanContext()
		if sc.IsSampled() && result != nil {
			traceContent := &mcpsdk.TextContent{Text: fmt.Sprintf("%s=%s", traceIDMetaKey, sc.TraceID().String())}
			result.Content = append(result.Content, traceContent)
		}

		return result, output, err
	}
}

// withMetrics records RED metrics per invocation.
func withMetrics[In any](
	metrics *observability.REDMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, In) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, In) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input In) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()
		op := mcpSpanPrefix + toolName

		decInflight := metrics.TrackInflight(ctx, op)
		defer decInflight()

		result, output, err := handler(ctx, req, input)

		status := observability.StatusOK
		if err != nil || (result != nil && result.IsError) {
			status = observability.StatusError
		}

		metrics.RecordRequest(ctx, op, status, time.Since(start))

		return result, output, err
	}
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

const (
	renderToolDescription = "Render a statistical plot of a CSV, TSV or XLSX table to a file. " +
		"Kinds: hist, kde, box, violin, regress, count, bar, heatmap, roc, residual. " +
		"Returns the output path, its size and, for roc plots, the AUROC."

	describeToolDescription = "Summarize every column of a CSV, TSV or XLSX table: " +
		"kind, count, missing, unique values and, for numeric columns, mean, std, min and max."
)
