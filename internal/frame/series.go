package frame

import (
	"github.com/JonMunkholm/tabkit/internal/errs"
)

// Series is a named one-dimensional sequence of cells with an index.
type Series struct {
	name   Label
	values []any
	index  Index
}

// NewSeries builds a series. A nil index means RangeIndex(len(values)).
func NewSeries(name Label, values []any, index *Index) (*Series, error) {
	ix := RangeIndex(len(values))
	if index != nil {
		if index.Len() != len(values) {
			return nil, errs.New(errs.ErrShape, "length of values (%d) does not match length of index (%d)", len(values), index.Len())
		}
		ix = index.clone()
	}
	return &Series{name: name, values: normalizeAll(values), index: ix}, nil
}

// MustSeries is like NewSeries but panics on error.
func MustSeries(name Label, values []any, index *Index) *Series {
	s, err := NewSeries(name, values, index)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Series) Name() Label { return s.name }
func (s *Series) Len() int { return len(s.values) }
func (s *Series) Dim() int { return 1 }
func (s *Series) Index() Index { return s.index }

// Value returns the cell at row i.
func (s *Series) Value(i int) any { return s.values[i] }

// Values returns a copy of the cells.
func (s *Series) Values() []any { return append([]any(nil), s.values...) }

// Copy returns a deep copy.
func (s *Series) Copy() *Series {
	return &Series{name: s.name, values: s.Values(), index: s.index.clone()}
}

// Rename returns a copy with a new name.
func (s *Series) Rename(name Label) *Series {
	out := s.Copy()
	out.name = name
	return out
}

// SetIndexNames returns a copy with renamed index levels.
func (s *Series) SetIndexNames(names []Label) (*Series, error) {
	ix, err := s.index.SetNames(names)
	if err != nil {
		return nil, err
	}
	out := s.Copy()
	out.index = ix
	return out, nil
}

// WithIndex returns a copy carrying index.
func (s *Series) WithIndex(index Index) (*Series, error) {
	return NewSeries(s.name, s.values, &index)
}

// Take returns the rows at the given positions.
func (s *Series) Take(rows []int) *Series {
	vals := make([]any, len(rows))
	for i, r := range rows {
		vals[i] = s.values[r]
	}
	return &Series{name: s.name, values: vals, index: s.index.Take(rows)}
}

// ToFrame expands the series to a single-column table. An unnamed series
// produces the positional column label 0.
func (s *Series) ToFrame() *Frame {
	name := s.name
	if name == nil {
		name = 0
	}
	return &Frame{
		columns: []Label{name},
		data:    [][]any{s.Values()},
		index:   s.index.clone(),
	}
}

// IsNull returns a mask of null cells.
func (s *Series) IsNull() []bool {
	mask := make([]bool, len(s.values))
	for i, v := range s.values {
		mask[i] = IsNull(v)
	}
	return mask
}

// Map returns a copy with fn applied to every cell.
func (s *Series) Map(fn func(any) any) *Series {
	out := s.Copy()
	for i, v := range out.values {
		out.values[i] = Normalize(fn(v))
	}
	return out
}

// Equal reports whether both series hold equal names, values and index.
func (s *Series) Equal(other *Series) bool {
	return Equal(s.name, other.name) &&
		rowsEqual(s.values, other.values) &&
		s.index.Equal(other.index) &&
		LabelsEqual(s.index.names, other.index.names)
}

// String renders the series as a text table.
func (s *Series) String() string { return s.ToFrame().String() }
