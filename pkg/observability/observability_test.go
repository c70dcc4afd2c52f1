package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/statplot/pkg/observability"
)

func TestInitNoop(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)
	assert.Nil(t, providers.MetricsHandler)

	_, span := providers.Tracer.Start(context.Background(), "noop")
	span.End()

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInitPrometheusServesRecordedMetrics(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.Prometheus = true
	cfg.Mode = observability.ModeServe
	cfg.ServiceVersion = "1.0.0"

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })
	require.NotNil(t, providers.MetricsHandler)

	figures, err := observability.NewFigureMetrics(providers.Meter)
	require.NoError(t, err)
	figures.RecordFigure(context.Background(), "hist", "png", 2048)

	rec := httptest.NewRecorder()
	providers.MetricsHandler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "statplot_figures")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]slog.Level{"": slog.LevelInfo, "DEBUG": slog.LevelDebug, "warning": slog.LevelWarn, "error": slog.LevelError} {
		got, err := observability.ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := observability.ParseLevel("loud")
	require.ErrorIs(t, err, observability.ErrUnknownLevel)
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	assert.Nil(t, observability.ParseOTLPHeaders(""))
	assert.Nil(t, observability.ParseOTLPHeaders("novalue,=x"))
	assert.Equal(t,
		map[string]string{"api-key": "abc", "tenant": "t1"},
		observability.ParseOTLPHeaders(" api-key = abc ,tenant=t1"))
}

func TestSpanHandlerInjectsSpan(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.LogJSON = true
	cfg.LogOutput = &buf
	cfg.Environment = "test"
	logger := observability.NewLogger(cfg)

	traceID, err := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	require.NoError(t, err)

	spanID, err := trace.SpanIDFromHex("0102030405060708")
	require.NoError(t, err)

	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	logger.WithGroup("figure").InfoContext(ctx, "rendered", slog.String("format", "svg"))

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "0102030405060708090a0b0c0d0e0f10", record["trace_id"])
	assert.Equal(t, "0102030405060708", record["span_id"])
	assert.Equal(t, "statplot", record["service"])
	assert.Equal(t, "cli", record["mode"])
	assert.Equal(t, "test", record["env"])

	group, ok := record["figure"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "svg", group["format"])
}

func TestSpanHandlerScopes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	handler := observability.NewSpanHandler(slog.NewJSONHandler(&buf, nil), "statplot", "", observability.ModeServe)
	logger := slog.New(handler).With("batch", "nightly").WithGroup("job").With("kind", "hist").WithGroup("render")

	traceID, err := trace.TraceIDFromHex("0f0e0d0c0b0a09080706050403020100")
	require.NoError(t, err)

	spanID, err := trace.SpanIDFromHex("0807060504030201")
	require.NoError(t, err)

	traced := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.InfoContext(traced, "wrote", slog.Int("bytes", 10))
	logger.InfoContext(context.Background(), "wrote", slog.Int("bytes", 20))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	for i, line := range lines {
		var record map[string]any

		require.NoError(t, json.Unmarshal(line, &record))
		assert.Equal(t, "statplot", record["service"])
		assert.Equal(t, "serve", record["mode"])
		assert.NotContains(t, record, "env")
		assert.Equal(t, "nightly", record["batch"])

		job, ok := record["job"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "hist", job["kind"])
		assert.NotContains(t, job, "trace_id")

		render, ok := job["render"].(map[string]any)
		require.True(t, ok)
		assert.InDelta(t, float64(10*(i+1)), render["bytes"], 0)

		if i == 0 {
			assert.Equal(t, "0f0e0d0c0b0a09080706050403020100", record["trace_id"])
			assert.Equal(t, "0807060504030201", record["span_id"])
		} else {
			assert.NotContains(t, record, "trace_id")
		}
	}
}

func newRED(t *testing.T) (*observability.REDMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	red, err := observability.NewREDMetrics(mp.Meter("test"))
	require.NoError(t, err)

	return red, reader
}

func sumOf(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != name {
				continue
			}

			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)

			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}

			return total
		}
	}

	return 0
}

func TestREDMetrics(t *testing.T) {
	t.Parallel()

	red, reader := newRED(t)
	ctx := context.Background()

	done := red.TrackInflight(ctx, "render")
	assert.Equal(t, int64(1), sumOf(t, reader, "statplot.inflight.requests"))
	done()

	red.RecordRequest(ctx, "render", observability.StatusOK, 10*time.Millisecond)
	red.RecordRequest(ctx, "render", observability.StatusError, 5*time.Millisecond)

	assert.Equal(t, int64(2), sumOf(t, reader, "statplot.requests.total"))
	assert.Equal(t, int64(1), sumOf(t, reader, "statplot.errors.total"))
	assert.Equal(t, int64(0), sumOf(t, reader, "statplot.inflight.requests"))
}

func TestHTTPMiddleware(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	red, reader := newRED(t)

	handler := http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		if hr.URL.Path == "/boom" {
			http.Error(rw, "boom", http.StatusInternalServerError)

			return
		}

		_, _ = rw.Write([]byte("ok"))
	})

	mw := observability.HTTPMiddleware(tp.Tracer("test"), red, handler)

	for _, path := range []string{"/v1/render", "/boom"} {
		mw.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, path, http.NoBody))
	}

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "POST /v1/render", spans[0].Name)
	assert.Equal(t, "POST /boom", spans[1].Name)
	assert.Equal(t, "Error", spans[1].Status.Code.String())

	assert.Equal(t, int64(2), sumOf(t, reader, "statplot.requests.total"))
	assert.Equal(t, int64(1), sumOf(t, reader, "statplot.errors.total"))
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	observability.HealthHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
