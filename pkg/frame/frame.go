// Package frame holds the read-only column table every plot is drawn from.
package frame

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Sentinel errors.
var (
	ErrColumnNotFound  = errors.New("column not found")
	ErrNotNumeric      = errors.New("column is not numeric")
	ErrRaggedRow       = errors.New("row has more cells than the header")
	ErrEmptyTable      = errors.New("table has no header row")
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrColumnLength    = errors.New("columns differ in length")
)

// Kind is the inferred type of a column.
type Kind int

const (
	// Categorical columns hold free text.
	Categorical Kind = iota
	// Numeric columns parse as float64 in every non-missing cell.
	Numeric
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}

	return "categorical"
}

// missingTokens are cell values read as missing data.
var missingTokens = []string{"", "na", "n/a", "nan", "null", "none"}

// Column is one named field. Exactly one of Floats or Text is set.
type Column struct {
	Name   string
	Floats []float64
	Text   []string
}

// Floats builds a numeric column. NaN marks a missing value.
func Floats(name string, values []float64) Column {
	return Column{Name: name, Floats: values}
}

// Text builds a column from raw cell text, inferring its kind.
func Text(name string, values []string) Column {
	return Column{Name: name, Text: values}
}

func (c Column) len() int {
	if c.Floats != nil {
		return len(c.Floats)
	}

	return len(c.Text)
}

// Table is an immutable set of equal-length named columns.
type Table struct {
	names   []string
	index   map[string]int
	kinds   []Kind
	text    [][]string
	numbers [][]float64
	rows    int
}

// New builds a table from columns. Text columns whose non-missing cells all
// parse as numbers become numeric.
func New(columns ...Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(columns))}

	for i, col := range columns {
		if _, dup := t.index[col.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Name)
		}

		if i == 0 {
			t.rows = col.len()
		} else if col.len() != t.rows {
			return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrColumnLength, col.Name, col.len(), t.rows)
		}

		t.index[col.Name] = i
		t.names = append(t.names, col.Name)

		if col.Floats != nil {
			t.kinds = append(t.kinds, Numeric)
			t.numbers = append(t.numbers, slices.Clone(col.Floats))
			t.text = append(t.text, formatFloats(col.Floats))

			continue
		}

		text := slices.Clone(col.Text)
		if nums, ok := parseFloats(text); ok {
			t.kinds = append(t.kinds, Numeric)
			t.numbers = append(t.numbers, nums)
		} else {
			t.kinds = append(t.kinds, Categorical)
			t.numbers = append(t.numbers, nil)
		}

		t.text = append(t.text, text)
	}

	return t, nil
}

// FromRows builds a table from a header row followed by data rows.
// Headers are trimmed. Short rows are padded with missing cells.
func FromRows(rows [][]string) (*Table, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	cells := make([][]string, len(header))
	for i := range cells {
		cells[i] = make([]string, 0, len(rows)-1)
	}

	for r, row := range rows[1:] {
		if len(row) > len(header) {
			return nil, fmt.Errorf("%w: row %d has %d cells, header has %d", ErrRaggedRow, r+2, len(row), len(header))
		}

		for i := range header {
			var cell string
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}

			cells[i] = append(cells[i], cell)
		}
	}

	columns := make([]Column, len(header))
	for i, name := range header {
		columns[i] = Text(name, cells[i])
	}

	return New(columns...)
}

// Len returns the number of rows.
func (t *Table) Len() int { return t.rows }

// Names returns the column names in table order.
func (t *Table) Names() []string { return slices.Clone(t.names) }

// Has reports whether the table has a column named name.
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]

	return ok
}

// Kind returns the inferred kind of a column.
func (t *Table) Kind(name string) (Kind, error) {
	i, err := t.lookup(name)
	if err != nil {
		return Categorical, err
	}

	return t.kinds[i], nil
}

// Numeric returns a copy of a numeric column. Missing cells are NaN.
func (t *Table) Numeric(name string) ([]float64, error) {
	i, err := t.lookup(name)
	if err != nil {
		return nil, err
	}

	if t.kinds[i] != Numeric {
		return nil, fmt.Errorf("%w: %q", ErrNotNumeric, name)
	}

	return slices.Clone(t.numbers[i]), nil
}

// Strings returns a copy of the raw cell text of any column.
func (t *Table) Strings(name string) ([]string, error) {
	i, err := t.lookup(name)
	if err != nil {
		return nil, err
	}

	return slices.Clone(t.text[i]), nil
}

// NumericMatrix returns the named numeric columns in the order given.
func (t *Table) NumericMatrix(names []string) ([][]float64, error) {
	out := make([][]float64, 0, len(names))

	for _, name := range names {
		col, err := t.Numeric(name)
		if err != nil {
			return nil, err
		}

		out = append(out, col)
	}

	return out, nil
}

func (t *Table) lookup(name string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}

	return i, nil
}

func isMissing(cell string) bool {
	return slices.Contains(missingTokens, strings.ToLower(strings.TrimSpace(cell)))
}

func parseFloats(cells []string) ([]float64, bool) {
	out := make([]float64, len(cells))
	seen := false

	for i, cell := range cells {
		if isMissing(cell) {
			out[i] = math.NaN()

			continue
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
		if err != nil {
			return nil, false
		}

		out[i] = v
		seen = true
	}

	return out, seen
}

func formatFloats(values []float64) []string {
	out := make([]string, len(values))

	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}

		out[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}

	return out
}
