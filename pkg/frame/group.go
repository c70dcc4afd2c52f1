package frame

import (
	"cmp"
	"math"
	"slices"
	"strconv"
)

// Count is the number of rows holding one category.
type Count struct {
	Category string
	N        int
}

// Group is the numeric values observed for one category.
type Group struct {
	Category string
	Values   []float64
}

// Counts tallies the non-missing cells of a column per category.
// Text categories keep first-seen order; numeric ones are sorted.
func (t *Table) Counts(name string) ([]Count, error) {
	i, err := t.lookup(name)
	if err != nil {
		return nil, err
	}

	order := t.categoryOrder(i)
	pos := make(map[string]int, len(order))
	out := make([]Count, len(order))

	for k, cat := range order {
		pos[cat] = k
		out[k].Category = cat
	}

	for r := range t.rows {
		if cat, ok := t.category(i, r); ok {
			out[pos[cat]].N++
		}
	}

	return out, nil
}

// Groups collects the numeric column y per category of x, in the same order
// as Counts. Rows missing either value are dropped.
func (t *Table) Groups(x, y string) ([]Group, error) {
	xi, err := t.lookup(x)
	if err != nil {
		return nil, err
	}

	ys, err := t.Numeric(y)
	if err != nil {
		return nil, err
	}

	order := t.categoryOrder(xi)
	pos := make(map[string]int, len(order))
	out := make([]Group, len(order))

	for k, cat := range order {
		pos[cat] = k
		out[k].Category = cat
	}

	for r := range t.rows {
		cat, ok := t.category(xi, r)
		if !ok || math.IsNaN(ys[r]) {
			continue
		}

		g := &out[pos[cat]]
		g.Values = append(g.Values, ys[r])
	}

	return out, nil
}

func (t *Table) category(col, row int) (string, bool) {
	if t.kinds[col] == Numeric {
		v := t.numbers[col][row]
		if math.IsNaN(v) {
			return "", false
		}

		return strconv.FormatFloat(v, 'g', -1, 64), true
	}

	cell := t.text[col][row]
	if isMissing(cell) {
		return "", false
	}

	return cell, true
}

func (t *Table) categoryOrder(col int) []string {
	if t.kinds[col] == Numeric {
		vals := make([]float64, 0, t.rows)

		for _, v := range t.numbers[col] {
			if !math.IsNaN(v) {
				vals = append(vals, v)
			}
		}

		slices.SortFunc(vals, cmp.Compare[float64])
		vals = slices.Compact(vals)

		out := make([]string, len(vals))
		for k, v := range vals {
			out[k] = strconv.FormatFloat(v, 'g', -1, 64)
		}

		return out
	}

	seen := make(map[string]struct{})

	var out []string

	for r := range t.rows {
		cat, ok := t.category(col, r)
		if !ok {
			continue
		}

		if _, dup := seen[cat]; dup {
			continue
		}

		seen[cat] = struct{}{}
		out = append(out, cat)
	}

	return out
}
