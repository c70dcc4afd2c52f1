package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/statplot/pkg/frame"
	"github.com/Sumatoshi-tech/statplot/pkg/graphs"
	"github.com/Sumatoshi-tech/statplot/pkg/plotpage"
	"github.com/Sumatoshi-tech/statplot/pkg/render"
)

// RunOptions are the defaults a job's own settings override.
type RunOptions struct {
	Plot   graphs.Options
	Format string
	Theme  plotpage.Theme
	// Workers bounds how many plots render at once. Zero or less means one.
	Workers int
	// OnFigure, when set, is called after each successful write. With more
	// than one worker it is called concurrently.
	OnFigure func(ctx context.Context, kind, format string, bytes int64)
}

// Outcome is the result of one plot of a job.
type Outcome struct {
	Name     string
	Kind     string
	Path     string
	Bytes    int64
	AUROC    *float64
	Duration time.Duration
	Err      error
}

// Run renders every plot of job into job.OutputDir as {name}.{format}.
// Outcomes keep the order of job.Plots. A failing plot does not stop the
// others; the returned error joins every failure under ErrPlotsFailed.
// Cancelling ctx stops before the next plot.
func Run(ctx context.Context, job *Job, opts RunOptions, logger *slog.Logger) ([]Outcome, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	format, theme, err := job.output(opts)
	if err != nil {
		return nil, err
	}

	plotOpts := opts.Plot
	if job.Style != nil {
		plotOpts, err = Plot{Style: job.Style}.apply(plotOpts)
		if err != nil {
			return nil, fmt.Errorf("job style: %w", err)
		}
	}

	table, err := frame.Load(job.Data, frame.LoadOptions{Sheet: job.Sheet})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", job.Data, err)
	}

	mkdirErr := os.MkdirAll(job.OutputDir, 0o750)
	if mkdirErr != nil {
		return nil, fmt.Errorf("create output dir: %w", mkdirErr)
	}

	logger.InfoContext(ctx, "batch started",
		slog.String("data", job.Data),
		slog.Int("rows", table.Len()),
		slog.Int("plots", len(job.Plots)),
		slog.String("format", format))

	outcomes := make([]Outcome, len(job.Plots))
	started := 0

	var group errgroup.Group

	group.SetLimit(max(opts.Workers, 1))

	for i, p := range job.Plots {
		if ctx.Err() != nil {
			break
		}

		started++

		group.Go(func() error {
			out := runPlot(ctx, table, p, plotOpts, job.OutputDir, format, theme, opts.OnFigure)
			outcomes[i] = out

			if out.Err != nil {
				logger.ErrorContext(ctx, "plot failed", slog.String("plot", p.Name), slog.Any("error", out.Err))

				return nil
			}

			logger.InfoContext(ctx, "plot written",
				slog.String("plot", p.Name),
				slog.String("path", out.Path),
				slog.Int64("bytes", out.Bytes),
				slog.Duration("took", out.Duration))

			return nil
		})
	}

	// Plot failures are reported per outcome, never through the group.
	_ = group.Wait()

	outcomes = outcomes[:started]

	if ctxErr := ctx.Err(); ctxErr != nil {
		return outcomes, fmt.Errorf("batch cancelled: %w", ctxErr)
	}

	var failures []error

	for _, out := range outcomes {
		if out.Err != nil {
			failures = append(failures, fmt.Errorf("plot %q: %w", out.Name, out.Err))
		}
	}

	if len(failures) > 0 {
		return outcomes, errors.Join(append([]error{ErrPlotsFailed}, failures...)...)
	}

	return outcomes, nil
}

func (j *Job) output(opts RunOptions) (string, plotpage.Theme, error) {
	format := opts.Format
	if j.Format != "" {
		format = j.Format
	}

	format, err := render.NormalizeFormat(format)
	if err != nil {
		return "", "", err
	}

	theme := opts.Theme
	if j.Theme != "" {
		theme, err = plotpage.ParseTheme(j.Theme)
		if err != nil {
			return "", "", err
		}
	}

	return format, theme, nil
}

func runPlot(
	ctx context.Context, table *frame.Table, p Plot, o graphs.Options,
	dir, format string, theme plotpage.Theme,
	onFigure func(ctx context.Context, kind, format string, bytes int64),
) (out Outcome) {
	start := time.Now()
	out = Outcome{Name: p.Name, Kind: p.Kind, Path: filepath.Join(dir, p.Name+"."+format)}

	// A panic fails this plot only.
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("%w: %v", ErrPlotPanicked, r)
		}
	}()

	res, err := Build(table, p, o)
	if err != nil {
		out.Err = err

		return out
	}

	defer res.Close()

	out.AUROC = res.AUROC

	if err = render.WriteFile(out.Path, res.Figure, render.Options{Format: format, Theme: theme}); err != nil {
		out.Err = err

		return out
	}

	if info, statErr := os.Stat(out.Path); statErr == nil {
		out.Bytes = info.Size()
	}

	out.Duration = time.Since(start)

	if onFigure != nil {
		onFigure(ctx, p.Kind, format, out.Bytes)
	}

	return out
}
