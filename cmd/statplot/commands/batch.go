package commands

import (
	"fmt"
	"io"
	"runtime"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/statplot/pkg/alg/stats"
	"github.com/Sumatoshi-tech/statplot/pkg/batch"
	"github.com/Sumatoshi-tech/statplot/pkg/observability"
)

func newBatchCommand(g *globalFlags) *cobra.Command {
	var (
		schema  bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "batch <job.yaml>",
		Short: "Render every plot of a YAML job file",
		Long: `Render every plot of a YAML (or JSON) job file. The job names a data file,
an output directory, a format and a list of plots; it is validated against
an embedded JSON schema first. A failing plot does not stop the others.

Use --schema to print the schema.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if schema {
				return cobra.NoArgs(cmd, args)
			}

			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if schema {
				_, err := cmd.OutOrStdout().Write(batch.Schema())

				return err
			}

			return runBatch(cmd, g, args[0], workers)
		},
	}

	cmd.Flags().BoolVar(&schema, "schema", false, "print the job file JSON schema and exit")
	cmd.Flags().IntVarP(&workers, "jobs", "j", runtime.NumCPU(), "plots rendered in parallel")

	return cmd
}

func runBatch(cmd *cobra.Command, g *globalFlags, path string, workers int) error {
	e, err := g.resolve(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}

	job, err := batch.LoadJob(path)
	if err != nil {
		return err
	}

	if g.output != "" {
		job.OutputDir = g.output
	}

	// --format and --theme beat the job file; the config only fills gaps.
	if g.format != "" {
		job.Format = e.format
	}

	if g.theme != "" {
		job.Theme = string(e.theme)
	}

	outcomes, runErr := batch.Run(cmd.Context(), job, batch.RunOptions{
		Plot:    e.plot,
		Format:  e.format,
		Theme:   e.theme,
		Workers: workers,
	}, e.logger)

	if len(outcomes) > 0 {
		writeOutcomes(e.stdout, outcomes)
	}

	return runErr
}

func writeOutcomes(w io.Writer, outcomes []batch.Outcome) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.AppendHeader(table.Row{"Plot", "Kind", "Output", "Size", "Took", "Note"})

	failed := 0

	for _, out := range outcomes {
		if out.Err != nil {
			failed++

			tbl.AppendRow(table.Row{out.Name, out.Kind, "-", "-", "-", color.RedString(out.Err.Error())})

			continue
		}

		note := ""
		if out.AUROC != nil {
			note = "AUROC " + strconv.FormatFloat(stats.Round(*out.AUROC, stats.AUROCPlaces), 'f', -1, 64)
		}

		tbl.AppendRow(table.Row{
			out.Name, out.Kind, out.Path,
			humanize.Bytes(uint64(out.Bytes)),
			out.Duration.Round(time.Millisecond),
			note,
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("%d plots", len(outcomes)), "", "", "", "", fmt.Sprintf("%d failed", failed)})
	tbl.Render()
}
