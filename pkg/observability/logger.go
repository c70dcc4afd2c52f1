package observability

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/trace"
)

// SpanHandler is an [slog.Handler] that stamps records logged under a
// valid span with trace_id and span_id. Both IDs land at the top level of
// the record, beside service, mode and env, however many groups the
// logger has opened.
type SpanHandler struct {
	// root carries the service attributes and nothing else.
	root    slog.Handler
	scoped  slog.Handler
	history []scopeStep
}

// scopeStep records one WithGroup or WithAttrs call so it can be replayed
// over the span attributes.
type scopeStep struct {
	group string
	attrs []slog.Attr
}

func (s scopeStep) apply(h slog.Handler) slog.Handler {
	if s.group != "" {
		return h.WithGroup(s.group)
	}

	return h.WithAttrs(s.attrs)
}

// NewSpanHandler wraps inner; env is omitted when empty.
func NewSpanHandler(inner slog.Handler, service, env string, mode AppMode) *SpanHandler {
	attrs := []slog.Attr{
		slog.String("service", service),
		slog.String("mode", string(mode)),
	}

	if env != "" {
		attrs = append(attrs, slog.String("env", env))
	}

	root := inner.WithAttrs(attrs)

	return &SpanHandler{root: root, scoped: root}
}

func (h *SpanHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.scoped.Enabled(ctx, level)
}

func (h *SpanHandler) Handle(ctx context.Context, record slog.Record) error {
	target := h.scoped

	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		target = h.root.WithAttrs([]slog.Attr{
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		})

		for _, step := range h.history {
			target = step.apply(target)
		}
	}

	if handleErr := target.Handle(ctx, record); handleErr != nil {
		return fmt.Errorf("write log record: %w", handleErr)
	}

	return nil
}

func (h *SpanHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	return h.extend(scopeStep{attrs: slices.Clone(attrs)})
}

func (h *SpanHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	return h.extend(scopeStep{group: name})
}

func (h *SpanHandler) extend(step scopeStep) *SpanHandler {
	return &SpanHandler{
		root:    h.root,
		scoped:  step.apply(h.scoped),
		history: append(slices.Clip(h.history), step),
	}
}
