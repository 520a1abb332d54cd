// Package frame is the in-memory table engine: row-indexed tables and
// sequences of loosely typed cells, with the selection, reshaping, hashing
// merge and concatenation primitives the combine and verification layers
// build on.
//
// Values are copy-on-write from the caller's point of view: every method
// that changes shape or content returns a new value and leaves the receiver
// untouched.
package frame

import (
	"fmt"

	"github.com/JonMunkholm/tabkit/internal/errs"
)

// Tabular is implemented by *Frame and *Series.
type Tabular interface {
	Len() int
	Dim() int
	Index() Index
	ToFrame() *Frame
}

// Object is a Tabular value that can copy itself and rename its index
// levels while keeping its concrete type.
type Object[T any] interface {
	Tabular
	Copy() T
	SetIndexNames(names []Label) (T, error)
}

var (
	_ Object[*Frame]  = (*Frame)(nil)
	_ Object[*Series] = (*Series)(nil)
)

// Frame is a two-dimensional table of labeled columns sharing one index.
// Cells are stored column-major.
type Frame struct {
	columns []Label
	data    [][]any
	index   Index
}

// New builds a table from column labels and column-major cells. A nil index
// means RangeIndex over the row count.
func New(columns []Label, data [][]any, index *Index) (*Frame, error) {
	if len(columns) != len(data) {
		return nil, errs.New(errs.ErrShape, "%d column labels for %d columns", len(columns), len(data))
	}
	n := 0
	switch {
	case len(data) > 0:
		n = len(data[0])
	case index != nil:
		n = index.Len()
	}
	for i, col := range data {
		if len(col) != n {
			return nil, errs.New(errs.ErrShape, "column %s has length %d, want %d", FormatLabel(columns[i]), len(col), n)
		}
	}
	ix := RangeIndex(n)
	if index != nil {
		if index.Len() != n {
			return nil, errs.New(errs.ErrShape, "length of index (%d) does not match number of rows (%d)", index.Len(), n)
		}
		ix = index.clone()
	}
	f := &Frame{columns: append([]Label(nil), columns...), data: make([][]any, len(data)), index: ix}
	for i, col := range data {
		f.data[i] = normalizeAll(col)
	}
	return f, nil
}

// MustNew is like New but panics on error.
func MustNew(columns []Label, data [][]any, index *Index) *Frame {
	f, err := New(columns, data, index)
	if err != nil {
		panic(err)
	}
	return f
}

// FromRows builds a table from row-major cells.
func FromRows(columns []Label, rows [][]any, index *Index) (*Frame, error) {
	data := make([][]any, len(columns))
	for c := range data {
		data[c] = make([]any, len(rows))
	}
	for r, row := range rows {
		if len(row) != len(columns) {
			return nil, errs.New(errs.ErrShape, "row %d has %d values, want %d", r, len(row), len(columns))
		}
		for c, v := range row {
			data[c][r] = v
		}
	}
	if len(columns) == 0 && index == nil {
		ix := RangeIndex(len(rows))
		index = &ix
	}
	return New(columns, data, index)
}

// MustFromRows is like FromRows but panics on error.
func MustFromRows(columns []Label, rows [][]any, index *Index) *Frame {
	f, err := FromRows(columns, rows, index)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Frame) Len() int { return f.index.Len() }
func (f *Frame) Width() int { return len(f.columns) }
func (f *Frame) Dim() int { return 2 }
func (f *Frame) Index() Index { return f.index }

// Columns returns a copy of the column labels.
func (f *Frame) Columns() []Label { return append([]Label(nil), f.columns...) }

// Empty reports whether the table has no rows or no columns.
func (f *Frame) Empty() bool { return f.Len() == 0 || f.Width() == 0 }

// Copy returns a deep copy.
func (f *Frame) Copy() *Frame {
	out := &Frame{columns: f.Columns(), data: make([][]any, len(f.data)), index: f.index.clone()}
	for i, col := range f.data {
		out.data[i] = append([]any(nil), col...)
	}
	return out
}

// ToFrame returns a deep copy so that *Frame satisfies Tabular.
func (f *Frame) ToFrame() *Frame { return f.Copy() }

func (f *Frame) positions(label Label) []int {
	var out []int
	for i, c := range f.columns {
		if Equal(c, label) {
			out = append(out, i)
		}
	}
	return out
}

// HasColumn reports whether label names at least one column.
func (f *Frame) HasColumn(label Label) bool { return len(f.positions(label)) > 0 }

func (f *Frame) position(label Label) (int, error) {
	pos := f.positions(label)
	switch len(pos) {
	case 0:
		return -1, errs.Valuef("column %s not found", FormatLabel(label))
	case 1:
		return pos[0], nil
	default:
		return -1, errs.New(errs.ErrDuplicate, "column label %s is not unique", FormatLabel(label))
	}
}

// Column returns the column with the given label as a series sharing the
// table's index.
func (f *Frame) Column(label Label) (*Series, error) {
	i, err := f.position(label)
	if err != nil {
		return nil, err
	}
	return f.ColumnAt(i), nil
}

// ColumnAt returns the i-th column.
func (f *Frame) ColumnAt(i int) *Series {
	return &Series{name: f.columns[i], values: append([]any(nil), f.data[i]...), index: f.index.clone()}
}

// Row returns the cells of row i.
func (f *Frame) Row(i int) []any {
	row := make([]any, len(f.data))
	for c, col := range f.data {
		row[c] = col[i]
	}
	return row
}

// Cell returns the value at row i of the column labeled label.
func (f *Frame) Cell(i int, label Label) (any, error) {
	c, err := f.position(label)
	if err != nil {
		return nil, err
	}
	return f.data[c][i], nil
}

func (f *Frame) rowKey(cols []int) func(int) []any {
	return func(i int) []any {
		key := make([]any, len(cols))
		for k, c := range cols {
			key[k] = f.data[c][i]
		}
		return key
	}
}

func (f *Frame) resolve(labels []Label) ([]int, error) {
	cols := make([]int, len(labels))
	for i, l := range labels {
		c, err := f.position(l)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return cols, nil
}

// Select returns the listed columns in the listed order.
func (f *Frame) Select(labels ...Label) (*Frame, error) {
	cols, err := f.resolve(labels)
	if err != nil {
		return nil, err
	}
	out := &Frame{columns: append([]Label(nil), labels...), data: make([][]any, len(cols)), index: f.index.clone()}
	for i, c := range cols {
		out.data[i] = append([]any(nil), f.data[c]...)
	}
	return out, nil
}

// Drop removes the listed columns. Every label must exist.
func (f *Frame) Drop(labels ...Label) (*Frame, error) {
	for _, l := range labels {
		if !f.HasColumn(l) {
			return nil, errs.Valuef("column %s not found", FormatLabel(l))
		}
	}
	return f.DropIfPresent(labels...), nil
}

// DropIfPresent removes the listed columns, ignoring labels that do not
// exist.
func (f *Frame) DropIfPresent(labels ...Label) *Frame {
	out := &Frame{index: f.index.clone()}
	for i, c := range f.columns {
		drop := false
		for _, l := range labels {
			if Equal(c, l) {
				drop = true
				break
			}
		}
		if !drop {
			out.columns = append(out.columns, c)
			out.data = append(out.data, append([]any(nil), f.data[i]...))
		}
	}
	return out
}

// Rename relabels columns with fn. Every column label is passed to fn.
func (f *Frame) Rename(fn func(Label) Label) *Frame {
	out := f.Copy()
	for i, c := range out.columns {
		out.columns[i] = fn(c)
	}
	return out
}

// RenameColumns relabels the columns found in mapping. Keys must be
// comparable labels (string or int).
func (f *Frame) RenameColumns(mapping map[Label]Label) *Frame {
	return f.Rename(func(l Label) Label {
		if to, ok := mapping[l]; ok {
			return to
		}
		return l
	})
}

// SetColumns replaces all column labels.
func (f *Frame) SetColumns(labels []Label) (*Frame, error) {
	if len(labels) != len(f.columns) {
		return nil, errs.New(errs.ErrShape, "expected %d column labels, got %d", len(f.columns), len(labels))
	}
	out := f.Copy()
	out.columns = append([]Label(nil), labels...)
	return out, nil
}

// WithIndex returns a copy carrying index.
func (f *Frame) WithIndex(index Index) (*Frame, error) {
	if index.Len() != f.Len() {
		return nil, errs.New(errs.ErrShape, "length of index (%d) does not match number of rows (%d)", index.Len(), f.Len())
	}
	out := f.Copy()
	out.index = index.clone()
	return out, nil
}

// SetIndexNames returns a copy with renamed index levels.
func (f *Frame) SetIndexNames(names []Label) (*Frame, error) {
	ix, err := f.index.SetNames(names)
	if err != nil {
		return nil, err
	}
	out := f.Copy()
	out.index = ix
	return out, nil
}

// ResetIndexNames returns the column labels ResetIndex would give the index
// levels: the level name when set, otherwise "index" for a single level (or
// "level_0" if "index" is taken) and "level_i" for compound levels.
func (f *Frame) ResetIndexNames() []Label {
	names := f.index.Names()
	out := make([]Label, len(names))
	for i, n := range names {
		switch {
		case n != nil:
			out[i] = n
		case len(names) == 1 && !f.HasColumn("index"):
			out[i] = "index"
		default:
			out[i] = fmt.Sprintf("level_%d", i)
		}
	}
	return out
}

// ResetIndex moves the index levels in front of the columns and replaces the
// index with the default range index.
func (f *Frame) ResetIndex() (*Frame, error) {
	names := f.ResetIndexNames()
	for _, n := range names {
		if f.HasColumn(n) {
			return nil, errs.New(errs.ErrCollision, "cannot insert %s, already exists", FormatLabel(n))
		}
	}
	out := &Frame{index: RangeIndex(f.Len())}
	for l, n := range names {
		out.columns = append(out.columns, n)
		out.data = append(out.data, f.index.Level(l))
	}
	for i, c := range f.columns {
		out.columns = append(out.columns, c)
		out.data = append(out.data, append([]any(nil), f.data[i]...))
	}
	return out, nil
}

// SetIndex moves the listed columns into the index, replacing it. Level
// names are the column labels.
func (f *Frame) SetIndex(labels ...Label) (*Frame, error) {
	if len(labels) == 0 {
		return nil, errs.Valuef("at least one column is required to set an index")
	}
	cols, err := f.resolve(labels)
	if err != nil {
		return nil, err
	}
	levels := make([][]any, len(cols))
	for i, c := range cols {
		levels[i] = append([]any(nil), f.data[c]...)
	}
	ix, err := NewIndex(labels, levels...)
	if err != nil {
		return nil, err
	}
	out := f.DropIfPresent(labels...)
	out.index = ix
	return out, nil
}

// Take returns the rows at the given positions.
func (f *Frame) Take(rows []int) *Frame {
	out := &Frame{columns: f.Columns(), data: make([][]any, len(f.data)), index: f.index.Take(rows)}
	for c, col := range f.data {
		vals := make([]any, len(rows))
		for i, r := range rows {
			vals[i] = col[r]
		}
		out.data[c] = vals
	}
	return out
}

// Filter keeps the rows whose mask entry is true.
func (f *Frame) Filter(mask []bool) *Frame {
	var rows []int
	for i, keep := range mask {
		if keep {
			rows = append(rows, i)
		}
	}
	return f.Take(rows)
}

// WithColumn returns a copy where the column labeled label holds values,
// appending a new column when the label is absent.
func (f *Frame) WithColumn(label Label, values []any) (*Frame, error) {
	if len(values) != f.Len() {
		return nil, errs.New(errs.ErrShape, "column %s has length %d, want %d", FormatLabel(label), len(values), f.Len())
	}
	out := f.Copy()
	pos := out.positions(label)
	if len(pos) > 1 {
		return nil, errs.New(errs.ErrDuplicate, "column label %s is not unique", FormatLabel(label))
	}
	vals := normalizeAll(values)
	if len(pos) == 1 {
		out.data[pos[0]] = vals
		return out, nil
	}
	out.columns = append(out.columns, label)
	out.data = append(out.data, vals)
	return out, nil
}

// WithColumnAt returns a copy where column i holds values.
func (f *Frame) WithColumnAt(i int, values []any) (*Frame, error) {
	if len(values) != f.Len() {
		return nil, errs.New(errs.ErrShape, "column %s has length %d, want %d", FormatLabel(f.columns[i]), len(values), f.Len())
	}
	out := f.Copy()
	out.data[i] = normalizeAll(values)
	return out, nil
}

// DropNA removes rows containing at least one null cell.
func (f *Frame) DropNA() *Frame {
	mask := make([]bool, f.Len())
	for i := range mask {
		mask[i] = true
		for _, col := range f.data {
			if IsNull(col[i]) {
				mask[i] = false
				break
			}
		}
	}
	return f.Filter(mask)
}

// FillNA replaces null cells with v.
func (f *Frame) FillNA(v any) *Frame {
	out := f.Copy()
	v = Normalize(v)
	for _, col := range out.data {
		for i, x := range col {
			if IsNull(x) {
				col[i] = v
			}
		}
	}
	return out
}

// MapColumn returns a copy with fn applied to every cell of column i.
func (f *Frame) MapColumn(i int, fn func(any) any) *Frame {
	out := f.Copy()
	for r, v := range out.data[i] {
		out.data[i][r] = Normalize(fn(v))
	}
	return out
}

// Equal reports whether both tables hold the same labels, cells and index.
func (f *Frame) Equal(other *Frame) bool {
	if !LabelsEqual(f.columns, other.columns) ||
		!f.index.Equal(other.index) ||
		!LabelsEqual(f.index.names, other.index.names) {
		return false
	}
	for i := range f.data {
		if !rowsEqual(f.data[i], other.data[i]) {
			return false
		}
	}
	return true
}
