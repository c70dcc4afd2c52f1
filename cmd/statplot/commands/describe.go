package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/statplot/pkg/alg/stats"
	"github.com/Sumatoshi-tech/statplot/pkg/batch"
	"github.com/Sumatoshi-tech/statplot/pkg/frame"
)

// Correlations at or beyond these magnitudes are highlighted.
const (
	strongCorrelation   = 0.7
	moderateCorrelation = 0.4
)

func newDescribeCommand() *cobra.Command {
	var (
		sheet    string
		corr     bool
		asJSON   bool
		decimals int
	)

	cmd := &cobra.Command{
		Use:   "describe <data>",
		Short: "Summarize the columns of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := frame.Load(args[0], frame.LoadOptions{Sheet: sheet})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")

				return enc.Encode(batch.Describe(tbl))
			}

			writeSummary(out, args[0], tbl, decimals)

			if !corr {
				return nil
			}

			return writeCorrelations(out, tbl, decimals)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "xlsx sheet (default: first)")
	cmd.Flags().BoolVar(&corr, "corr", false, "also print the correlation matrix of numeric columns")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")
	cmd.Flags().IntVar(&decimals, "decimals", 3, "decimal places")

	return cmd
}

func writeSummary(w io.Writer, name string, t *frame.Table, decimals int) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("%s: %s rows", name, humanize.Comma(int64(t.Len())))
	tw.AppendHeader(table.Row{"Column", "Kind", "Count", "Missing", "Unique", "Mean", "Std", "Min", "Max"})

	for _, s := range t.Describe() {
		tw.AppendRow(table.Row{
			s.Name,
			s.Kind,
			humanize.Comma(int64(s.Count)),
			missing(s.Missing),
			humanize.Comma(int64(s.Unique)),
			number(s.Mean, decimals),
			number(s.Std, decimals),
			number(s.Min, decimals),
			number(s.Max, decimals),
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
		{Number: 8, Align: text.AlignRight},
		{Number: 9, Align: text.AlignRight},
	})
	tw.Render()
}

func writeCorrelations(w io.Writer, t *frame.Table, decimals int) error {
	var names []string

	for _, name := range t.Names() {
		if kind, _ := t.Kind(name); kind == frame.Numeric {
			names = append(names, name)
		}
	}

	if len(names) < 2 {
		fmt.Fprintln(w, "fewer than two numeric columns, no correlations")

		return nil
	}

	data, err := t.NumericMatrix(names)
	if err != nil {
		return err
	}

	matrix, err := stats.CorrelationMatrix(data)
	if err != nil {
		return err
	}

	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)
	tw.SetTitle("Pearson correlation")

	header := table.Row{""}
	for _, name := range names {
		header = append(header, name)
	}

	tw.AppendHeader(header)

	for i, name := range names {
		row := table.Row{name}

		for j := range names {
			if j > i {
				row = append(row, "")

				continue
			}

			row = append(row, correlationCell(matrix[i][j], decimals, i == j))
		}

		tw.AppendRow(row)
	}

	tw.Render()

	return nil
}

func correlationCell(r float64, decimals int, diagonal bool) string {
	s := number(r, decimals)

	switch {
	case diagonal || math.IsNaN(r):
		return s
	case math.Abs(r) >= strongCorrelation && r > 0:
		return color.New(color.FgRed, color.Bold).Sprint(s)
	case math.Abs(r) >= strongCorrelation:
		return color.New(color.FgBlue, color.Bold).Sprint(s)
	case math.Abs(r) >= moderateCorrelation && r > 0:
		return color.RedString(s)
	case math.Abs(r) >= moderateCorrelation:
		return color.BlueString(s)
	default:
		return s
	}
}

func missing(n int) string {
	if n == 0 {
		return "0"
	}

	return color.YellowString(humanize.Comma(int64(n)))
}

func number(v float64, decimals int) string {
	if math.IsNaN(v) {
		return "-"
	}

	return strconv.FormatFloat(v, 'f', decimals, 64)
}
