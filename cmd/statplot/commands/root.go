// Package commands implements the statplot CLI commands.
package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/statplot/pkg/config"
	"github.com/Sumatoshi-tech/statplot/pkg/graphs"
	"github.com/Sumatoshi-tech/statplot/pkg/observability"
	"github.com/Sumatoshi-tech/statplot/pkg/plotpage"
	"github.com/Sumatoshi-tech/statplot/pkg/render"
	"github.com/Sumatoshi-tech/statplot/pkg/version"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	verbose    bool
	noColor    bool
	theme      string
	format     string
	output     string
}

// env is what a command needs once the config is resolved.
type env struct {
	cfg    *config.Config
	plot   graphs.Options
	format string
	theme  plotpage.Theme
	logger *slog.Logger
	stdout io.Writer
}

// NewRootCommand builds the statplot command tree.
func NewRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "statplot",
		Short: "Statistical plots from CSV, TSV and XLSX tables",
		Long: `statplot draws histograms, density overlays, box and violin plots,
regressions, count and bar plots, correlation heatmaps, ROC curves and
residual plots from tabular data, as HTML pages or PNG/JPG/SVG/PDF images.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if flags.noColor {
				color.NoColor = true
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "config file (default: ./statplot.yaml, ~/.config/statplot, /etc/statplot)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	pf.StringVar(&flags.theme, "theme", "", "html theme: light or dark (overrides config)")
	pf.StringVarP(&flags.format, "format", "f", "", "output format: html, png, jpg, svg or pdf (overrides config)")
	pf.StringVarP(&flags.output, "output", "o", "", "output file, or output directory for batch")

	for _, cmd := range newPlotCommands(flags) {
		root.AddCommand(cmd)
	}

	root.AddCommand(
		newBatchCommand(flags),
		newDescribeCommand(),
		newServeCommand(flags),
		newMCPCommand(flags),
		newVersionCommand(),
	)

	return root
}

// resolve loads the config and applies the persistent flag overrides.
func (g *globalFlags) resolve(cmd *cobra.Command, mode observability.AppMode) (*env, error) {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return nil, err
	}

	plot, err := cfg.PlotOptions()
	if err != nil {
		return nil, fmt.Errorf("plot options: %w", err)
	}

	format, err := render.NormalizeFormat(firstNonEmpty(g.format, cfg.Figure.Format))
	if err != nil {
		return nil, err
	}

	theme := cfg.Theme()
	if g.theme != "" {
		theme, err = plotpage.ParseTheme(g.theme)
		if err != nil {
			return nil, err
		}
	}

	return &env{
		cfg:    cfg,
		plot:   plot,
		format: format,
		theme:  theme,
		logger: observability.NewLogger(g.observability(cmd, cfg, mode)),
		stdout: cmd.OutOrStdout(),
	}, nil
}

// observability converts the config for mode, logging to stderr and at
// debug level under --verbose.
func (g *globalFlags) observability(cmd *cobra.Command, cfg *config.Config, mode observability.AppMode) observability.Config {
	obsCfg := cfg.Observability(mode, version.Version)
	obsCfg.LogOutput = cmd.ErrOrStderr()

	if g.verbose {
		obsCfg.LogLevel = slog.LevelDebug
	}

	return obsCfg
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
