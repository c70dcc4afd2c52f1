package frame

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for file extensions Load cannot read.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// LoadOptions tunes how Load reads a file.
type LoadOptions struct {
	// Sheet selects a workbook sheet. Empty means the first sheet.
	Sheet string
}

// Load reads a table from a .csv, .tsv or .xlsx file.
func Load(path string, opts LoadOptions) (*Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return loadDelimited(path, ',')
	case ".tsv":
		return loadDelimited(path, '\t')
	case ".xlsx", ".xlsm":
		return loadWorkbook(path, opts.Sheet)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// ReadCSV reads a comma-separated table from r.
func ReadCSV(r io.Reader) (*Table, error) {
	return readDelimited(r, ',')
}

func loadDelimited(path string, comma rune) (*Table, error) {
	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, fmt.Errorf("open table: %w", openErr)
	}
	defer f.Close()

	return readDelimited(f, comma)
}

func readDelimited(r io.Reader, comma rune) (*Table, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, readErr := reader.ReadAll()
	if readErr != nil {
		return nil, fmt.Errorf("read delimited table: %w", readErr)
	}

	return FromRows(rows)
}

func loadWorkbook(path, sheet string) (*Table, error) {
	book, openErr := excelize.OpenFile(path)
	if openErr != nil {
		return nil, fmt.Errorf("open workbook: %w", openErr)
	}
	defer book.Close()

	if sheet == "" {
		sheets := book.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyTable
		}

		sheet = sheets[0]
	}

	rows, rowsErr := book.GetRows(sheet)
	if rowsErr != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, rowsErr)
	}

	return FromRows(rows)
}
