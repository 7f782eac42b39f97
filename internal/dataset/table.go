// Package dataset holds the small tabular dataset the pipeline works on:
// named columns of raw string cells with NA handling, CSV input and
// output, the lore anchor rows and the merge with fan-supplied CSVs.
package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Table is an ordered set of named columns. Cells are kept as the raw
// strings read from disk; numeric access parses them on demand.
type Table struct {
	columns []string
	cells   map[string][]string
	rows    int
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	t := &Table{cells: make(map[string][]string, len(columns))}
	for _, c := range columns {
		if _, ok := t.cells[c]; ok {
			continue
		}
		t.columns = append(t.columns, c)
		t.cells[c] = nil
	}
	return t
}

// IsNA reports whether a raw cell holds a missing value.
func IsNA(cell string) bool {
	switch strings.TrimSpace(cell) {
	case "", "NA", "NaN", "nan", "<NA>", "N/A", "null":
		return true
	}
	return false
}

// FormatFloat renders a value the way it is written to CSV. NaN is an
// empty cell.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseCell(cell string) (float64, bool, error) {
	if IsNA(cell) {
		return math.NaN(), true, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, false, err
	}
	return v, false, nil
}

func (t *Table) Len() int { return t.rows }

func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

func (t *Table) Has(col string) bool {
	_, ok := t.cells[col]
	return ok
}

// AppendRow adds one row; cells beyond the column count are ignored and
// missing trailing cells are NA.
func (t *Table) AppendRow(cells ...string) {
	for i, c := range t.columns {
		v := ""
		if i < len(cells) {
			v = cells[i]
		}
		t.cells[c] = append(t.cells[c], v)
	}
	t.rows++
}

// Cell returns the raw cell at row i of col.
func (t *Table) Cell(col string, i int) (string, error) {
	vals, ok := t.cells[col]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNoColumn, col)
	}
	if i < 0 || i >= t.rows {
		return "", fmt.Errorf("dataset: row %d out of range [0, %d)", i, t.rows)
	}
	return vals[i], nil
}

func (t *Table) Strings(col string) ([]string, error) {
	vals, ok := t.cells[col]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, col)
	}
	out := make([]string, len(vals))
	copy(out, vals)
	return out, nil
}

// Floats parses col. NA cells become NaN; any other non-numeric cell is
// an error.
func (t *Table) Floats(col string) ([]float64, error) {
	vals, ok := t.cells[col]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoColumn, col)
	}
	out := make([]float64, len(vals))
	for i, cell := range vals {
		v, _, err := parseCell(cell)
		if err != nil {
			return nil, fmt.Errorf("%w: column %q row %d: %q", ErrNotNumeric, col, i, cell)
		}
		out[i] = v
	}
	return out, nil
}

// SetStrings replaces col, adding it at the end if absent.
func (t *Table) SetStrings(col string, vals []string) error {
	if len(t.columns) > 0 && len(vals) != t.rows {
		return fmt.Errorf("%w: %q has %d values, table has %d rows", ErrLength, col, len(vals), t.rows)
	}
	if !t.Has(col) {
		t.columns = append(t.columns, col)
	}
	cp := make([]string, len(vals))
	copy(cp, vals)
	t.cells[col] = cp
	t.rows = len(vals)
	return nil
}

// SetFloats replaces col with formatted values. NaN is written as NA.
func (t *Table) SetFloats(col string, vals []float64) error {
	cells := make([]string, len(vals))
	for i, v := range vals {
		cells[i] = FormatFloat(v)
	}
	return t.SetStrings(col, cells)
}

// Rename renames columns in place. Unknown source names are ignored.
func (t *Table) Rename(names map[string]string) {
	for i, c := range t.columns {
		to, ok := names[c]
		if !ok || to == c {
			continue
		}
		if t.Has(to) {
			continue
		}
		t.cells[to] = t.cells[c]
		delete(t.cells, c)
		t.columns[i] = to
	}
}

// Drop removes the named columns if present.
func (t *Table) Drop(cols ...string) {
	for _, c := range cols {
		if !t.Has(c) {
			continue
		}
		delete(t.cells, c)
		for i, name := range t.columns {
			if name == c {
				t.columns = append(t.columns[:i], t.columns[i+1:]...)
				break
			}
		}
	}
}

// Select returns a copy holding only cols, in that order.
func (t *Table) Select(cols ...string) (*Table, error) {
	out := New(cols...)
	for _, c := range out.columns {
		vals, ok := t.cells[c]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNoColumn, c)
		}
		out.cells[c] = append([]string(nil), vals...)
	}
	out.rows = t.rows
	return out, nil
}

func (t *Table) Clone() *Table {
	out, _ := t.Select(t.columns...)
	return out
}

// Append returns the rows of t followed by the rows of other. The result
// holds the union of both column sets; cells a side lacks are NA.
func (t *Table) Append(other *Table) *Table {
	cols := t.Columns()
	for _, c := range other.columns {
		if !t.Has(c) {
			cols = append(cols, c)
		}
	}

	out := New(cols...)
	for _, c := range cols {
		out.cells[c] = append(column(t, c), column(other, c)...)
	}
	out.rows = t.rows + other.rows
	return out
}

func column(t *Table, c string) []string {
	if vals, ok := t.cells[c]; ok {
		return append([]string(nil), vals...)
	}
	return make([]string, t.rows)
}

// Filter returns the rows for which keep returns true.
func (t *Table) Filter(keep func(i int) bool) *Table {
	idx := make([]int, 0, t.rows)
	for i := 0; i < t.rows; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	return t.take(idx)
}

func (t *Table) take(idx []int) *Table {
	out := New(t.columns...)
	for _, c := range t.columns {
		src := t.cells[c]
		dst := make([]string, len(idx))
		for j, i := range idx {
			dst[j] = src[i]
		}
		out.cells[c] = dst
	}
	out.rows = len(idx)
	return out
}

// normalize maps equal values to equal keys: every NA spelling collapses
// to one key and numeric cells compare by value.
func normalize(cell string) string {
	v, na, err := parseCell(cell)
	switch {
	case na:
		return "\x00NA"
	case err == nil:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return cell
	}
}

// DropDuplicates keeps the first row of every group sharing the same
// values in subset. NA equals NA.
func (t *Table) DropDuplicates(subset ...string) (*Table, error) {
	for _, c := range subset {
		if !t.Has(c) {
			return nil, fmt.Errorf("%w: %q", ErrNoColumn, c)
		}
	}

	seen := make(map[string]struct{}, t.rows)
	var b strings.Builder
	return t.Filter(func(i int) bool {
		b.Reset()
		for _, c := range subset {
			b.WriteString(normalize(t.cells[c][i]))
			b.WriteByte(0x1f)
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	}), nil
}

// SortBy stable-sorts rows ascending by keys in turn. Numeric cells
// compare by value and before non-numeric ones; NA sorts last.
func (t *Table) SortBy(keys ...string) (*Table, error) {
	for _, c := range keys {
		if !t.Has(c) {
			return nil, fmt.Errorf("%w: %q", ErrNoColumn, c)
		}
	}

	idx := make([]int, t.rows)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		for _, c := range keys {
			if cmp := compareCells(t.cells[c][idx[a]], t.cells[c][idx[b]]); cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	return t.take(idx), nil
}

func compareCells(a, b string) int {
	va, naA, errA := parseCell(a)
	vb, naB, errB := parseCell(b)
	switch {
	case naA && naB:
		return 0
	case naA:
		return 1
	case naB:
		return -1
	case errA == nil && errB == nil:
		switch {
		case va < vb:
			return -1
		case va > vb:
			return 1
		}
		return 0
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return strings.Compare(a, b)
}

// CompleteRows returns the rows with no NA in any of cols.
func (t *Table) CompleteRows(cols ...string) (*Table, error) {
	for _, c := range cols {
		if !t.Has(c) {
			return nil, fmt.Errorf("%w: %q", ErrNoColumn, c)
		}
	}
	return t.Filter(func(i int) bool {
		for _, c := range cols {
			if IsNA(t.cells[c][i]) {
				return false
			}
		}
		return true
	}), nil
}

// Pairs returns the (x, y) sample of two numeric columns with every row
// holding an NA in either column dropped.
func (t *Table) Pairs(xcol, ycol string) ([]float64, []float64, error) {
	xs, err := t.Floats(xcol)
	if err != nil {
		return nil, nil, err
	}
	ys, err := t.Floats(ycol)
	if err != nil {
		return nil, nil, err
	}

	x := make([]float64, 0, len(xs))
	y := make([]float64, 0, len(ys))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		x = append(x, xs[i])
		y = append(y, ys[i])
	}
	return x, y, nil
}
