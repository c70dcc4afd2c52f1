package commands

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/statplot/pkg/alg/stats"
	"github.com/Sumatoshi-tech/statplot/pkg/batch"
	"github.com/Sumatoshi-tech/statplot/pkg/frame"
	"github.com/Sumatoshi-tech/statplot/pkg/observability"
	"github.com/Sumatoshi-tech/statplot/pkg/render"
)

// ErrBadTicks is returned for a --ticks value that is not a comma-separated
// list of numbers.
var ErrBadTicks = errors.New("ticks must be comma-separated numbers")

// Option groups a plot command registers flags for.
const (
	optGrid = 1 << iota
	optLabels
	optTicks
	optYLabel
	optXLabel
	optTitle
)

// plotKind describes one plot subcommand.
type plotKind struct {
	kind  string
	use   string
	short string
	// args bounds the positional arguments, the data file included.
	// maxArgs < 0 means unbounded.
	minArgs int
	maxArgs int
	opts    int
	extra   func(cmd *cobra.Command, f *plotFlags)
}

var plotKinds = []plotKind{
	{
		kind: batch.KindHistogram, use: "hist <data> <column>...",
		short:   "Histograms with a mean line, one per column",
		minArgs: 2, maxArgs: -1, opts: optGrid | optLabels | optTicks | optYLabel,
	},
	{
		kind: batch.KindKDE, use: "kde <data> <column> <column>",
		short:   "Two density curves on one axes",
		minArgs: 3, maxArgs: 3, opts: optLabels | optTicks | optYLabel | optXLabel | optTitle,
		extra: func(cmd *cobra.Command, f *plotFlags) {
			cmd.Flags().StringSliceVar(&f.plot.Colors, "colors", nil, "the two curve colors")
		},
	},
	{
		kind: batch.KindBox, use: "box <data> <column>...",
		short:   "Box plots, one per column",
		minArgs: 2, maxArgs: -1, opts: optGrid | optLabels | optTicks,
	},
	{
		kind: batch.KindViolin, use: "violin <data> <column>...",
		short:   "Violin plots, one per column",
		minArgs: 2, maxArgs: -1, opts: optGrid | optLabels | optTicks,
	},
	{
		kind: batch.KindRegression, use: "regress <data> <x>... --y <column>",
		short:   "Scatter plots with a least-squares fit against one response",
		minArgs: 2, maxArgs: -1, opts: optGrid | optLabels | optTicks | optYLabel,
		extra: func(cmd *cobra.Command, f *plotFlags) {
			cmd.Flags().StringVar(&f.plot.Y, "y", "", "response column (required)")
			cmd.Flags().StringVar(&f.plot.Marker, "marker", "", "point marker: o, *, x, +, s or ^")
			_ = cmd.MarkFlagRequired("y")
		},
	},
	{
		kind: batch.KindCount, use: "count <data> <column>...",
		short:   "Category counts, one bar chart per column",
		minArgs: 2, maxArgs: -1, opts: optGrid | optLabels | optYLabel,
	},
	{
		kind: batch.KindBar, use: "bar <data> <category>... --y <column>",
		short:   "Mean of a response per category, with optional error bars",
		minArgs: 2, maxArgs: -1, opts: optGrid | optLabels | optYLabel,
		extra: func(cmd *cobra.Command, f *plotFlags) {
			cmd.Flags().StringVar(&f.plot.Y, "y", "", "response column (required)")
			_ = cmd.MarkFlagRequired("y")
		},
	},
	{
		kind: batch.KindHeatmap, use: "heatmap <data> [column]...",
		short:   "Lower-triangle correlation heatmap of numeric columns",
		minArgs: 1, maxArgs: -1, opts: optTitle,
		extra: func(cmd *cobra.Command, f *plotFlags) {
			cmd.Flags().Float64Var(&f.vmin, "vmin", -1, "color scale minimum")
			cmd.Flags().Float64Var(&f.vmax, "vmax", 1, "color scale maximum")
			cmd.Flags().StringVar(&f.plot.Colormap, "colormap", "", "RdBu, RdBu_r, coolwarm, kindlmann, blackbody or heat")
			cmd.Flags().BoolVar(&f.annotate, "annotate", true, "print values in the cells")
			cmd.Flags().IntVar(&f.precision, "precision", 2, "decimal places of annotations")
			cmd.Flags().BoolVar(&f.plot.HideDiagonal, "hide-diagonal", false, "mask the diagonal too")
		},
	},
	{
		kind: batch.KindROC, use: "roc <data> --target <column> --score <column>",
		short:   "ROC curve of a classifier's scores, titled with its AUROC",
		minArgs: 1, maxArgs: 1, opts: optTitle,
		extra: func(cmd *cobra.Command, f *plotFlags) {
			cmd.Flags().StringVar(&f.plot.Target, "target", "", "0/1 label column (required)")
			cmd.Flags().StringVar(&f.plot.Score, "score", "", "positive-class probability column (required)")
			cmd.Flags().StringVar(&f.plot.Predicted, "predicted", "", "hard prediction column (default: score >= 0.5)")
			_ = cmd.MarkFlagRequired("target")
			_ = cmd.MarkFlagRequired("score")
		},
	},
	{
		kind: batch.KindResidual, use: "residual <data> <predicted>... --x <actual>",
		short:   "Residuals of predictions against the actual values",
		minArgs: 2, maxArgs: -1, opts: optGrid | optYLabel | optXLabel,
		extra: func(cmd *cobra.Command, f *plotFlags) {
			cmd.Flags().StringVar(&f.plot.X, "x", "", "actual-value column (required)")
			_ = cmd.MarkFlagRequired("x")
		},
	},
}

// plotFlags collects the flags of one plot command.
type plotFlags struct {
	plot  batch.Plot
	sheet string
	ticks []string

	vmin, vmax float64
	annotate   bool
	precision  int

	lineColor   string
	shade       bool
	ci          string
	orientation string
}

func newPlotCommands(g *globalFlags) []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(plotKinds))

	for _, k := range plotKinds {
		cmds = append(cmds, newPlotCommand(g, k))
	}

	return cmds
}

func newPlotCommand(g *globalFlags, k plotKind) *cobra.Command {
	f := &plotFlags{}

	args := cobra.MinimumNArgs(k.minArgs)
	if k.maxArgs >= 0 {
		args = cobra.RangeArgs(k.minArgs, k.maxArgs)
	}

	cmd := &cobra.Command{
		Use:   k.use,
		Short: k.short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlot(cmd, g, k, f, args)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.plot.Name, "name", "", "output file stem (default: the plot kind)")
	fs.StringVar(&f.sheet, "sheet", "", "xlsx sheet (default: first)")
	fs.StringVar(&f.lineColor, "line-color", "", "override the configured line color")
	fs.BoolVar(&f.shade, "shade", true, "fill density curves")
	fs.StringVar(&f.ci, "ci", "", "confidence interval: none, 95 or sd")
	fs.StringVar(&f.orientation, "orientation", "", "h or v")

	if k.opts&optGrid != 0 {
		fs.IntVar(&f.plot.Rows, "rows", 0, "grid rows (default: fit the columns)")
		fs.IntVar(&f.plot.Cols, "cols", 0, "grid columns (default: up to 3)")
		fs.StringSliceVar(&f.plot.Titles, "titles", nil, "subplot titles (default: column names)")
	}

	if k.opts&optLabels != 0 {
		fs.StringSliceVar(&f.plot.Labels, "labels", nil, "axis labels, one per column")
	}

	if k.opts&optTicks != 0 {
		fs.StringArrayVar(&f.ticks, "ticks", nil, "tick positions per column, e.g. --ticks 0,10,20 (repeatable)")
	}

	if k.opts&optYLabel != 0 {
		fs.StringVar(&f.plot.YLabel, "ylabel", "", "y axis label")
	}

	if k.opts&optXLabel != 0 {
		fs.StringVar(&f.plot.XLabel, "xlabel", "", "x axis label")
	}

	if k.opts&optTitle != 0 {
		fs.StringVar(&f.plot.Title, "title", "", "figure title")
	}

	if k.extra != nil {
		k.extra(cmd, f)
	}

	return cmd
}

// build turns the parsed flags and arguments into a plot.
func (f *plotFlags) build(cmd *cobra.Command, kind string, args []string) (batch.Plot, error) {
	p := f.plot
	p.Kind = kind
	p.Columns = args[1:]

	for _, raw := range f.ticks {
		ticks, err := parseTicks(raw)
		if err != nil {
			return p, err
		}

		p.Ticks = append(p.Ticks, ticks)
	}

	changed := cmd.Flags().Changed

	if changed("vmin") {
		p.Min = &f.vmin
	}

	if changed("vmax") {
		p.Max = &f.vmax
	}

	if changed("annotate") {
		p.Annotate = &f.annotate
	}

	if changed("precision") {
		p.Precision = &f.precision
	}

	var style batch.StyleOverride

	styled := false

	if changed("line-color") {
		style.LineColor, styled = f.lineColor, true
	}

	if changed("shade") {
		style.Shade, styled = &f.shade, true
	}

	if changed("ci") {
		style.ConfidenceInterval, styled = f.ci, true
	}

	if changed("orientation") {
		style.Orientation, styled = f.orientation, true
	}

	if styled {
		p.Style = &style
	}

	return p, batch.ValidatePlot(p)
}

func parseTicks(raw string) ([]float64, error) {
	ticks := []float64{}

	for field := range strings.SplitSeq(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadTicks, raw)
		}

		ticks = append(ticks, v)
	}

	return ticks, nil
}

func runPlot(cmd *cobra.Command, g *globalFlags, k plotKind, f *plotFlags, args []string) error {
	e, err := g.resolve(cmd, observability.ModeCLI)
	if err != nil {
		return err
	}

	p, err := f.build(cmd, k.kind, args)
	if err != nil {
		return err
	}

	table, err := frame.Load(args[0], frame.LoadOptions{Sheet: f.sheet})
	if err != nil {
		return err
	}

	e.logger.DebugContext(cmd.Context(), "table loaded",
		"path", args[0], "rows", table.Len(), "columns", len(table.Names()))

	res, err := batch.Build(table, p, e.plot)
	if err != nil {
		return err
	}
	defer res.Close()

	path, format, err := g.outputTarget(p, e.format)
	if err != nil {
		return err
	}

	writeErr := render.WriteFile(path, res.Figure, render.Options{Format: format, Theme: e.theme})
	if writeErr != nil {
		return fmt.Errorf("write %s: %w", path, writeErr)
	}

	info, statErr := os.Stat(path)
	if statErr != nil {
		return fmt.Errorf("stat %s: %w", path, statErr)
	}

	color.New(color.FgGreen).Fprintf(e.stdout, "wrote %s (%s)\n", path, humanize.Bytes(uint64(info.Size())))

	if res.AUROC != nil {
		color.New(color.FgCyan).Fprintf(e.stdout, "AUROC %s\n",
			strconv.FormatFloat(stats.Round(*res.AUROC, stats.AUROCPlaces), 'f', -1, 64))
	}

	return nil
}

// outputTarget picks the output path and format. An explicit --output
// decides the format by its extension.
func (g *globalFlags) outputTarget(p batch.Plot, format string) (string, string, error) {
	if g.output != "" {
		resolved, err := render.FormatFromPath(g.output, format)
		if err != nil {
			return "", "", err
		}

		return g.output, resolved, nil
	}

	stem := p.Name
	if stem == "" {
		stem = p.Kind
	}

	return stem + "." + format, format, nil
}
