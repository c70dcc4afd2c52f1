// Package server exposes plot rendering over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/statplot/pkg/graphs"
	"github.com/Sumatoshi-tech/statplot/pkg/observability"
	"github.com/Sumatoshi-tech/statplot/pkg/plotpage"
)

// Routes.
const (
	RouteRender   = "/v1/render"
	RouteDescribe = "/v1/describe"
	RouteHealth   = "/healthz"
	RouteMetrics  = "/metrics"
)

// Default timeouts, used when Options leaves them zero.
const (
	defaultReadTimeout     = 30 * time.Second
	defaultWriteTimeout    = 60 * time.Second
	defaultIdleTimeout     = 120 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxBodyBytes    = 32 << 20
)

// Options configure a Server.
type Options struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxBodyBytes int64
	// DataDir confines request data paths. Empty allows any path.
	DataDir string

	Plot   graphs.Options
	Format string
	Theme  plotpage.Theme
}

// Server is the HTTP render service.
type Server struct {
	opts    Options
	logger  *slog.Logger
	red     *observability.REDMetrics
	figures *observability.FigureMetrics
	handler http.Handler
}

// New wires the routes, metrics and tracing middleware. Missing providers
// fall back to no-ops, and a nil MetricsHandler leaves /metrics unrouted.
func New(opts Options, providers observability.Providers, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if providers.Tracer == nil {
		providers.Tracer = tracenoop.NewTracerProvider().Tracer("statplot")
	}

	if providers.Meter == nil {
		providers.Meter = metricnoop.NewMeterProvider().Meter("statplot")
	}

	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("red metrics: %w", err)
	}

	figures, err := observability.NewFigureMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("figure metrics: %w", err)
	}

	s := &Server{opts: opts, logger: logger, red: red, figures: figures}

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Handle(RouteHealth, observability.HealthHandler())

	if providers.MetricsHandler != nil {
		router.Method(http.MethodGet, RouteMetrics, providers.MetricsHandler)
	}

	router.Group(func(api chi.Router) {
		api.Use(func(next http.Handler) http.Handler {
			return observability.HTTPMiddleware(providers.Tracer, red, next)
		})
		api.Post(RouteRender, s.handleRender)
		api.Post(RouteDescribe, s.handleDescribe)
	})

	s.handler = router

	return s, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on Options.Addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig

	listener, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Addr, err)
	}

	return s.Serve(ctx, listener)
}

// Serve accepts connections on listener until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  orDefault(s.opts.ReadTimeout, defaultReadTimeout),
		WriteTimeout: orDefault(s.opts.WriteTimeout, defaultWriteTimeout),
		IdleTimeout:  orDefault(s.opts.IdleTimeout, defaultIdleTimeout),
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- srv.Serve(listener)
	}()

	s.logger.InfoContext(ctx, "server listening", slog.String("addr", listener.Addr().String()))

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultShutdownTimeout)
	defer cancel()

	s.logger.InfoContext(ctx, "server shutting down")

	shutdownErr := srv.Shutdown(shutdownCtx)
	if shutdownErr != nil {
		return fmt.Errorf("shutdown: %w", shutdownErr)
	}

	return nil
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}

	return d
}
