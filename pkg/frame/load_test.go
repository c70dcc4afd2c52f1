package frame_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Sumatoshi-tech/statplot/pkg/frame"
)

func TestLoad_CSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,age\nann,31\nbob,45\n"), 0o600))

	tbl, err := frame.Load(path, frame.LoadOptions{})
	require.NoError(t, err)

	age, err := tbl.Numeric("age")
	require.NoError(t, err)
	assert.Equal(t, []float64{31, 45}, age)
}

func TestLoad_TSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "people.tsv")
	require.NoError(t, os.WriteFile(path, []byte("name\tage\nann\t31\n"), 0o600))

	tbl, err := frame.Load(path, frame.LoadOptions{})
	require.NoError(t, err)

	names, err := tbl.Strings("name")
	require.NoError(t, err)
	assert.Equal(t, []string{"ann"}, names)
}

func TestLoad_XLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "people.xlsx")

	book := excelize.NewFile()

	const sheet = "Sheet1"

	require.NoError(t, book.SetSheetRow(sheet, "A1", &[]any{"name", "age"}))
	require.NoError(t, book.SetSheetRow(sheet, "A2", &[]any{"ann", 31}))
	require.NoError(t, book.SetSheetRow(sheet, "A3", &[]any{"bob", 45}))
	require.NoError(t, book.SaveAs(path))
	require.NoError(t, book.Close())

	tbl, err := frame.Load(path, frame.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	age, err := tbl.Numeric("age")
	require.NoError(t, err)
	assert.Equal(t, []float64{31, 45}, age)

	_, err = frame.Load(path, frame.LoadOptions{Sheet: "Nope"})
	require.Error(t, err)
}

func TestLoad_Unsupported(t *testing.T) {
	t.Parallel()

	_, err := frame.Load("data.parquet", frame.LoadOptions{})
	require.ErrorIs(t, err, frame.ErrUnsupportedFormat)
}

func TestReadCSV(t *testing.T) {
	t.Parallel()

	tbl, err := frame.ReadCSV(strings.NewReader("a,b\n1,x\n2,y\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tbl.Names())
}
