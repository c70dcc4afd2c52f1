package figure_test

import (
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/statplot/pkg/figure"
)

func TestNew_GridBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		rows    int
		cols    int
		n       int
		wantErr error
	}{
		{name: "exact_fit", rows: 2, cols: 2, n: 4},
		{name: "spare_cells", rows: 2, cols: 3, n: 4},
		{name: "single", rows: 1, cols: 1, n: 1},
		{name: "too_small", rows: 1, cols: 2, n: 3, wantErr: figure.ErrGridTooSmall},
		{name: "zero_rows", rows: 0, cols: 2, n: 0, wantErr: figure.ErrInvalidGrid},
		{name: "negative_cols", rows: 1, cols: -1, n: 0, wantErr: figure.ErrInvalidGrid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fig, err := figure.New("t", figure.Layout{Rows: tt.rows, Cols: tt.cols}, tt.n)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.n, fig.Len())
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()

	fig, err := figure.New("", figure.Layout{Rows: 1, Cols: 1}, 1)
	require.NoError(t, err)

	assert.InDelta(t, figure.DefaultWidth, fig.Layout.Width, 1e-12)
	assert.InDelta(t, figure.DefaultHeight, fig.Layout.Height, 1e-12)
	assert.Equal(t, figure.DefaultFonts(), fig.Fonts)
}

func TestFigure_CellRowMajor(t *testing.T) {
	t.Parallel()

	fig, err := figure.New("", figure.Layout{Rows: 2, Cols: 3}, 5)
	require.NoError(t, err)

	row, col := fig.Cell(4)
	assert.Equal(t, 1, row)
	assert.Equal(t, 1, col)

	row, col = fig.Cell(2)
	assert.Equal(t, 0, row)
	assert.Equal(t, 2, col)
}

func TestFigure_CloseIdempotent(t *testing.T) {
	t.Parallel()

	fig, err := figure.New("", figure.Layout{Rows: 1, Cols: 1}, 1)
	require.NoError(t, err)
	require.NoError(t, fig.Check())

	require.NoError(t, fig.Close())
	require.NoError(t, fig.Close())

	assert.True(t, fig.Closed())
	assert.Equal(t, 0, fig.Len())
	require.ErrorIs(t, fig.Check(), figure.ErrClosed)
}

func TestAxes_Add(t *testing.T) {
	t.Parallel()

	var ax figure.Axes

	ax.Add(figure.Line{Name: "a"}, figure.RefLine{Vertical: true, Value: 3})

	require.Len(t, ax.Layers, 2)
	assert.IsType(t, figure.Line{}, ax.Layers[0])
}

func TestHeatmap_Visible(t *testing.T) {
	t.Parallel()

	h := figure.Heatmap{
		Values: [][]float64{{1, 0.5}, {0.5, math.NaN()}},
		Mask:   [][]bool{{false, true}, {false, false}},
	}

	assert.True(t, h.Visible(0, 0))
	assert.False(t, h.Visible(0, 1))
	assert.True(t, h.Visible(1, 0))
	assert.False(t, h.Visible(1, 1))
}

func TestCategoryBars_HasErrors(t *testing.T) {
	t.Parallel()

	assert.False(t, figure.CategoryBars{Values: []float64{1}}.HasErrors())
	assert.True(t, figure.CategoryBars{
		Values: []float64{1},
		Lower:  []float64{0},
		Upper:  []float64{2},
	}.HasErrors())
}

func TestParseColor(t *testing.T) {
	t.Parallel()

	c, err := figure.ParseColor("darkorange")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0x8c, B: 0x00, A: 0xff}, c)

	c, err = figure.ParseColor("#0f8")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0x00, G: 0xff, B: 0x88, A: 0xff}, c)

	assert.Equal(t, "#ff8c00", figure.Hex(color.RGBA{R: 0xff, G: 0x8c, A: 0xff}))

	_, err = figure.ParseColor("navyblue")
	require.ErrorIs(t, err, figure.ErrUnknownColor)
}

func TestPaletteHex(t *testing.T) {
	t.Parallel()

	stops, err := figure.PaletteHex(figure.ColormapRdBu, 5)
	require.NoError(t, err)
	require.Len(t, stops, 5)

	low, err := figure.ParseColor(stops[0])
	require.NoError(t, err)

	high, err := figure.ParseColor(stops[4])
	require.NoError(t, err)

	assert.Greater(t, low.R, low.B, "RdBu starts red")
	assert.Greater(t, high.B, high.R, "RdBu ends blue")

	_, err = figure.Palette("jet", 4)
	require.ErrorIs(t, err, figure.ErrUnknownColormap)
}

func TestPaletteReversedOddLength(t *testing.T) {
	t.Parallel()

	for _, n := range []int{3, 5, 11} {
		rdbu, err := figure.PaletteHex(figure.ColormapRdBu, n)
		require.NoError(t, err)
		require.Len(t, rdbu, n)

		coolwarm, err := figure.PaletteHex(figure.ColormapCoolwarm, n)
		require.NoError(t, err)

		for i, stop := range rdbu {
			assert.NotEmpty(t, stop, "stop %d of %d", i, n)
			assert.Equal(t, coolwarm[n-1-i], stop, "stop %d of %d", i, n)
		}
	}
}
