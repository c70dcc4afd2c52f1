package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "statplot.requests.total"
	metricRequestDuration  = "statplot.request.duration.seconds"
	metricErrorsTotal      = "statplot.errors.total"
	metricInflightRequests = "statplot.inflight.requests"
	metricFiguresTotal     = "statplot.figures.total"
	metricFigureBytes      = "statplot.figure.bytes"

	attrOp     = "op"
	attrStatus = "status"
	attrKind   = "kind"
	attrFormat = "format"
)

// Request outcomes.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Rendering runs from milliseconds for a small PNG to seconds for large
// grids of violins.
var durationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

var sizeBuckets = []float64{1 << 10, 8 << 10, 32 << 10, 128 << 10, 512 << 10, 2 << 20, 8 << 20}

// REDMetrics holds the rate, error and duration instruments of one service
// surface (HTTP routes or MCP tools).
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates the RED instruments on mt.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	reqTotal, err := mt.Int64Counter(metricRequestsTotal,
		metric.WithDescription("Total number of requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestsTotal, err)
	}

	reqDuration, err := mt.Float64Histogram(metricRequestDuration,
		metric.WithDescription("Request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRequestDuration, err)
	}

	errTotal, err := mt.Int64Counter(metricErrorsTotal,
		metric.WithDescription("Total number of failed requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricErrorsTotal, err)
	}

	inflight, err := mt.Int64UpDownCounter(metricInflightRequests,
		metric.WithDescription("Number of in-flight requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricInflightRequests, err)
	}

	return &REDMetrics{
		requestsTotal:    reqTotal,
		requestDuration:  reqDuration,
		errorsTotal:      errTotal,
		inflightRequests: inflight,
	}, nil
}

// RecordRequest records one finished request.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// TrackInflight increments the in-flight gauge and returns its decrement.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}

// FigureMetrics counts rendered figures by plot kind and output format.
type FigureMetrics struct {
	figures metric.Int64Counter
	bytes   metric.Int64Histogram
}

// NewFigureMetrics creates the figure instruments on mt.
func NewFigureMetrics(mt metric.Meter) (*FigureMetrics, error) {
	figures, err := mt.Int64Counter(metricFiguresTotal,
		metric.WithDescription("Figures rendered"),
		metric.WithUnit("{figure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFiguresTotal, err)
	}

	size, err := mt.Int64Histogram(metricFigureBytes,
		metric.WithDescription("Size of rendered figures"),
		metric.WithUnit("By"),
		metric.WithExplicitBucketBoundaries(sizeBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricFigureBytes, err)
	}

	return &FigureMetrics{figures: figures, bytes: size}, nil
}

// RecordFigure records one rendered figure of n bytes.
func (fm *FigureMetrics) RecordFigure(ctx context.Context, kind, format string, n int64) {
	attrs := metric.WithAttributes(
		attribute.String(attrKind, kind),
		attribute.String(attrFormat, format),
	)

	fm.figures.Add(ctx, 1, attrs)
	fm.bytes.Record(ctx, n, attrs)
}
