// Package observability wires OpenTelemetry tracing and metrics, a
// Prometheus scrape endpoint and trace-aware slog logging for every statplot
// mode (cli, serve, mcp).
package observability

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

// AppMode identifies how the binary was launched.
type AppMode string

const (
	// ModeCLI renders one figure per command.
	ModeCLI AppMode = "cli"
	// ModeServe is the HTTP render server.
	ModeServe AppMode = "serve"
	// ModeMCP is the MCP stdio server.
	ModeMCP AppMode = "mcp"
)

const (
	defaultServiceName     = "statplot"
	defaultShutdownTimeout = 5 * time.Second
)

// ErrUnknownLevel is returned by ParseLevel.
var ErrUnknownLevel = errors.New("unknown log level")

// Config holds all observability settings.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Mode           AppMode

	// OTLPEndpoint is the OTLP gRPC collector address. Empty disables export.
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	OTLPInsecure bool

	// SampleRatio is the root trace sampling ratio. Zero samples everything.
	SampleRatio float64

	// Prometheus attaches a Prometheus reader and exposes Providers.MetricsHandler.
	Prometheus bool

	LogLevel slog.Level
	LogJSON  bool
	// LogOutput defaults to stderr.
	LogOutput io.Writer

	ShutdownTimeout time.Duration
}

// DefaultConfig returns the zero-config CLI setup: no export, text logs at info.
func DefaultConfig() Config {
	return Config{
		ServiceName:     defaultServiceName,
		Mode:            ModeCLI,
		LogLevel:        slog.LevelInfo,
		ShutdownTimeout: defaultShutdownTimeout,
	}
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}
