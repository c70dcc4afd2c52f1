package graphs

import (
	"slices"

	"github.com/Sumatoshi-tech/statplot/pkg/alg/stats"
	"github.com/Sumatoshi-tech/statplot/pkg/figure"
	"github.com/Sumatoshi-tech/statplot/pkg/frame"
)

// HeatmapSpec configures the correlation heatmap.
type HeatmapSpec struct {
	// Columns defaults to every numeric column of the table.
	Columns  []string
	Title    string
	Min      float64
	Max      float64
	Colormap string
	Annotate bool
	// Precision is the number of decimals shown in annotations.
	Precision int
	// HideDiagonal also masks the unit diagonal.
	HideDiagonal bool
}

// NewHeatmapSpec returns the stock heatmap: a diverging map over [-1, 1]
// with two-decimal annotations.
func NewHeatmapSpec(columns []string, title string) HeatmapSpec {
	return HeatmapSpec{
		Columns:   columns,
		Title:     title,
		Min:       -1,
		Max:       1,
		Colormap:  figure.ColormapRdBu,
		Annotate:  true,
		Precision: 2,
	}
}

// Heatmap draws the lower triangle of the Pearson correlation matrix of the
// selected columns and returns the full matrix alongside the figure.
func Heatmap(t *frame.Table, s HeatmapSpec, o Options) (*figure.Figure, [][]float64, error) {
	columns := s.Columns
	if len(columns) == 0 {
		columns = numericColumns(t)
	}

	if len(columns) == 0 {
		return nil, nil, ErrNoColumns
	}

	colormap := s.Colormap
	if colormap == "" {
		colormap = o.Colors.Colormap
	}

	if _, err := figure.Palette(colormap, 2); err != nil {
		return nil, nil, err
	}

	data, err := t.NumericMatrix(columns)
	if err != nil {
		return nil, nil, err
	}

	corr, err := stats.CorrelationMatrix(data)
	if err != nil {
		return nil, nil, err
	}

	fig, err := o.newFigure("", Grid{Rows: 1, Cols: 1}, 1)
	if err != nil {
		return nil, nil, err
	}

	ax := fig.At(0)
	ax.Title = s.Title
	ax.Add(figure.Heatmap{
		Labels:    slices.Clone(columns),
		Values:    corr,
		Mask:      upperMask(len(columns), s.HideDiagonal),
		Min:       s.Min,
		Max:       s.Max,
		Colormap:  colormap,
		Annotate:  s.Annotate,
		Precision: s.Precision,
	})

	out := make([][]float64, len(corr))
	for i, row := range corr {
		out[i] = slices.Clone(row)
	}

	return fig, out, nil
}

// upperMask hides every cell above the diagonal, and the diagonal itself
// when withDiagonal is set.
func upperMask(n int, withDiagonal bool) [][]bool {
	mask := make([][]bool, n)

	for i := range mask {
		mask[i] = make([]bool, n)

		for j := range mask[i] {
			mask[i][j] = j > i || (withDiagonal && j == i)
		}
	}

	return mask
}

func numericColumns(t *frame.Table) []string {
	var out []string

	for _, name := range t.Names() {
		if kind, err := t.Kind(name); err == nil && kind == frame.Numeric {
			out = append(out, name)
		}
	}

	return out
}
