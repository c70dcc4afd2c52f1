package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/statplot/pkg/mcp"
	"github.com/Sumatoshi-tech/statplot/pkg/observability"
)

func newMCPCommand(g *globalFlags) *cobra.Command {
	var (
		dataDir   string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

Tools:
  - statplot_render: render one plot of a table to a file
  - statplot_describe: summarize the columns of a table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := g.resolve(cmd, observability.ModeMCP)
			if err != nil {
				return err
			}

			// stdout carries the protocol, so logs go to stderr as JSON.
			obsCfg := g.observability(cmd, e.cfg, observability.ModeMCP)
			obsCfg.LogJSON = true

			providers, err := observability.Init(obsCfg)
			if err != nil {
				return fmt.Errorf("observability: %w", err)
			}

			defer func() {
				shutdownErr := providers.Shutdown(context.Background())
				if shutdownErr != nil {
					providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
				}
			}()

			red, err := observability.NewREDMetrics(providers.Meter)
			if err != nil {
				return err
			}

			figures, err := observability.NewFigureMetrics(providers.Meter)
			if err != nil {
				return err
			}

			if outputDir == "" {
				outputDir = g.output
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:    providers.Logger,
				Metrics:   red,
				Figures:   figures,
				Tracer:    providers.Tracer,
				Plot:      &e.plot,
				Format:    e.format,
				Theme:     e.theme,
				DataDir:   dataDir,
				OutputDir: outputDir,
			})

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&dataDir, "data-dir", "", "confine data paths to this directory")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for figures without an explicit output path")

	return cmd
}
