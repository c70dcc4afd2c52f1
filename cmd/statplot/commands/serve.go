package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/statplot/pkg/observability"
	"github.com/Sumatoshi-tech/statplot/pkg/server"
)

func newServeCommand(g *globalFlags) *cobra.Command {
	var (
		host    string
		port    int
		dataDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP render API",
		Long: `Serve the HTTP render API:

  POST /v1/render    render one plot, answered with the figure bytes
  POST /v1/describe  summarize a table as JSON
  GET  /healthz      liveness
  GET  /metrics      Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := g.resolve(cmd, observability.ModeServe)
			if err != nil {
				return err
			}

			sc := e.cfg.Server

			if cmd.Flags().Changed("host") {
				sc.Host = host
			}

			if cmd.Flags().Changed("port") {
				sc.Port = port
			}

			if cmd.Flags().Changed("data-dir") {
				sc.DataDir = dataDir
			}

			obsCfg := g.observability(cmd, e.cfg, observability.ModeServe)

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

			srv, err := server.New(server.Options{
				Addr:         sc.Addr(),
				ReadTimeout:  sc.ReadTimeout,
				WriteTimeout: sc.WriteTimeout,
				IdleTimeout:  sc.IdleTimeout,
				MaxBodyBytes: sc.MaxBodyBytes,
				DataDir:      sc.DataDir,
				Plot:         e.plot,
				Format:       e.format,
				Theme:        e.theme,
			}, providers, providers.Logger)
			if err != nil {
				return err
			}

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "confine request data paths to this directory")

	return cmd
}
