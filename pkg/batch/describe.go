package batch

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/Sumatoshi-tech/statplot/pkg/frame"
)

// ColumnInfo is a JSON-safe frame.Summary. Statistics that are undefined
// for the column are omitted.
type ColumnInfo struct {
	Name    string   `json:"name"`
	Kind    string   `json:"kind"`
	Count   int      `json:"count"`
	Missing int      `json:"missing"`
	Unique  int      `json:"unique"`
	Mean    *float64 `json:"mean,omitempty"`
	Std     *float64 `json:"std,omitempty"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
}

// Description is the summary of a whole table.
type Description struct {
	Rows    int          `json:"rows"`
	Columns []ColumnInfo `json:"columns"`
}

// Describe summarizes every column of t.
func Describe(t *frame.Table) Description {
	summaries := t.Describe()
	out := Description{Rows: t.Len(), Columns: make([]ColumnInfo, len(summaries))}

	for i, s := range summaries {
		out.Columns[i] = ColumnInfo{
			Name:    s.Name,
			Kind:    s.Kind.String(),
			Count:   s.Count,
			Missing: s.Missing,
			Unique:  s.Unique,
			Mean:    finite(s.Mean),
			Std:     finite(s.Std),
			Min:     finite(s.Min),
			Max:     finite(s.Max),
		}
	}

	return out
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}

	return &v
}

// ResolvePath confines path to root when root is set. An empty root returns
// path unchanged.
func ResolvePath(root, path string) (string, error) {
	if root == "" {
		return path, nil
	}

	if !filepath.IsLocal(path) {
		return "", fmt.Errorf("%w: %q", ErrPathEscapes, path)
	}

	return filepath.Join(root, path), nil
}
