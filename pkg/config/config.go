// Package config loads statplot settings from a YAML file and STATPLOT_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/statplot/pkg/figure"
	"github.com/Sumatoshi-tech/statplot/pkg/graphs"
	"github.com/Sumatoshi-tech/statplot/pkg/observability"
	"github.com/Sumatoshi-tech/statplot/pkg/plotpage"
	"github.com/Sumatoshi-tech/statplot/pkg/render"
)

// Sentinel validation errors.
var (
	ErrInvalidPort       = errors.New("invalid server port")
	ErrInvalidSize       = errors.New("figure width and height must be positive")
	ErrInvalidFontSize   = errors.New("font sizes must be positive")
	ErrInvalidLogFormat  = errors.New(`log format must be "json" or "text"`)
	ErrInvalidSampleRate = errors.New("telemetry sample ratio must be within [0, 1]")
	ErrInvalidBodyLimit  = errors.New("server max body size must be positive")
)

// EnvPrefix prefixes every environment override, e.g. STATPLOT_FIGURE_WIDTH.
const EnvPrefix = "STATPLOT"

// Config holds all statplot configuration.
type Config struct {
	Figure    FigureConfig    `mapstructure:"figure"`
	Style     StyleConfig     `mapstructure:"style"`
	Palette   PaletteConfig   `mapstructure:"palette"`
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// FigureConfig is the page geometry and output defaults.
type FigureConfig struct {
	// Width and Height are in inches.
	Width     float64 `mapstructure:"width"`
	Height    float64 `mapstructure:"height"`
	TitleSize float64 `mapstructure:"title_size"`
	LabelSize float64 `mapstructure:"label_size"`
	TickSize  float64 `mapstructure:"tick_size"`
	Format    string  `mapstructure:"format"`
	Theme     string  `mapstructure:"theme"`
}

// StyleConfig mirrors graphs.Style with string-typed enums.
type StyleConfig struct {
	LineColor          string `mapstructure:"line_color"`
	Shade              bool   `mapstructure:"shade"`
	ConfidenceInterval string `mapstructure:"confidence_interval"`
	Orientation        string `mapstructure:"orientation"`
}

// PaletteConfig names the fixed plot colors.
type PaletteConfig struct {
	Histogram string   `mapstructure:"histogram"`
	Mean      string   `mapstructure:"mean"`
	Marker    string   `mapstructure:"marker"`
	Fit       string   `mapstructure:"fit"`
	KDE       []string `mapstructure:"kde"`
	ROC       string   `mapstructure:"roc"`
	Baseline  string   `mapstructure:"baseline"`
	Residual  string   `mapstructure:"residual"`
	Colormap  string   `mapstructure:"colormap"`
}

// ServerConfig holds the HTTP render server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	// DataDir confines file paths in requests. Empty allows any path.
	DataDir string `mapstructure:"data_dir"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	Environment  string  `mapstructure:"environment"`
	Prometheus   bool    `mapstructure:"prometheus"`
}

// LoadConfig reads configPath, or statplot.yaml from the usual directories
// when configPath is empty, then applies environment overrides.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("statplot")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME/.config/statplot")
		viperCfg.AddConfigPath("/etc/statplot")
	}

	viperCfg.SetEnvPrefix(EnvPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, config.Server.Port)
	}

	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBodyLimit, config.Server.MaxBodyBytes)
	}

	fig := config.Figure
	if fig.Width <= 0 || fig.Height <= 0 {
		return fmt.Errorf("%w: %gx%g", ErrInvalidSize, fig.Width, fig.Height)
	}

	if fig.TitleSize <= 0 || fig.LabelSize <= 0 || fig.TickSize <= 0 {
		return ErrInvalidFontSize
	}

	if _, err := render.NormalizeFormat(fig.Format); err != nil {
		return err
	}

	if _, err := plotpage.ParseTheme(fig.Theme); err != nil {
		return err
	}

	if _, err := config.PlotOptions(); err != nil {
		return err
	}

	if _, err := observability.ParseLevel(config.Logging.Level); err != nil {
		return err
	}

	if f := config.Logging.Format; f != "json" && f != "text" {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, f)
	}

	if r := config.Telemetry.SampleRatio; r < 0 || r > 1 {
		return fmt.Errorf("%w: %g", ErrInvalidSampleRate, r)
	}

	return nil
}

// PlotOptions converts the figure, style and palette sections into the
// options every plot call takes. Colors and the colormap are checked here.
func (c *Config) PlotOptions() (graphs.Options, error) {
	ci, err := graphs.ParseCI(c.Style.ConfidenceInterval)
	if err != nil {
		return graphs.Options{}, err
	}

	orient, err := graphs.ParseOrientation(c.Style.Orientation)
	if err != nil {
		return graphs.Options{}, err
	}

	opts := graphs.DefaultOptions()
	opts.Width = c.Figure.Width
	opts.Height = c.Figure.Height
	opts.Fonts = figure.Fonts{Title: c.Figure.TitleSize, Label: c.Figure.LabelSize, Tick: c.Figure.TickSize}
	opts.Style = graphs.Style{
		LineColor:          c.Style.LineColor,
		Shade:              c.Style.Shade,
		ConfidenceInterval: ci,
		Orientation:        orient,
	}

	p := c.Palette
	opts.Colors = graphs.Palette{
		Histogram: p.Histogram,
		Mean:      p.Mean,
		Marker:    p.Marker,
		Fit:       p.Fit,
		ROC:       p.ROC,
		Baseline:  p.Baseline,
		Residual:  p.Residual,
		Colormap:  p.Colormap,
	}
	copy(opts.Colors.KDE[:], p.KDE)

	colors := []string{c.Style.LineColor, p.Histogram, p.Mean, p.Marker, p.Fit, p.ROC, p.Baseline, p.Residual}
	colors = append(colors, p.KDE...)

	for _, name := range colors {
		if name == "" {
			continue
		}

		if _, colorErr := figure.ParseColor(name); colorErr != nil {
			return graphs.Options{}, colorErr
		}
	}

	if p.Colormap == "" {
		opts.Colors.Colormap = figure.ColormapRdBu
	} else if _, mapErr := figure.Palette(p.Colormap, 2); mapErr != nil {
		return graphs.Options{}, mapErr
	}

	return opts, nil
}

// Observability converts the logging and telemetry sections for mode. The
// Prometheus reader is only attached in serve mode.
func (c *Config) Observability(mode observability.AppMode, serviceVersion string) observability.Config {
	cfg := observability.DefaultConfig()
	cfg.Mode = mode
	cfg.ServiceVersion = serviceVersion
	cfg.Environment = c.Telemetry.Environment
	cfg.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(c.Telemetry.OTLPHeaders)
	cfg.OTLPInsecure = c.Telemetry.OTLPInsecure
	cfg.SampleRatio = c.Telemetry.SampleRatio
	cfg.Prometheus = c.Telemetry.Prometheus && mode == observability.ModeServe
	cfg.LogJSON = c.Logging.Format == "json"

	if level, err := observability.ParseLevel(c.Logging.Level); err == nil {
		cfg.LogLevel = level
	}

	return cfg
}

// Theme returns the parsed page theme.
func (c *Config) Theme() plotpage.Theme {
	theme, err := plotpage.ParseTheme(c.Figure.Theme)
	if err != nil {
		return plotpage.ThemeLight
	}

	return theme
}
