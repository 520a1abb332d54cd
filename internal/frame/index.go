package frame

import (
	"fmt"

	"github.com/JonMunkholm/tabkit/internal/errs"
)

// Index holds the row labels of a table or sequence: one or more levels of
// equal length, each with an optional name. Index values are immutable;
// every method returns a new Index.
//
// The zero Index has no levels. It never appears on a table built by this
// package but is reported as inconsistent by callers that inspect it.
type Index struct {
	names  []Label
	levels [][]any
}

// NewIndex builds an index from level names and level values.
func NewIndex(names []Label, levels ...[]any) (Index, error) {
	if len(levels) == 0 {
		return Index{}, errs.Valuef("index must have at least one level")
	}
	if len(names) != len(levels) {
		return Index{}, errs.Valuef("length of index names (%d) does not match number of levels (%d)", len(names), len(levels))
	}
	n := len(levels[0])
	out := Index{names: append([]Label(nil), names...), levels: make([][]any, len(levels))}
	for i, lvl := range levels {
		if len(lvl) != n {
			return Index{}, errs.Valuef("index level %d has length %d, want %d", i, len(lvl), n)
		}
		out.levels[i] = normalizeAll(lvl)
	}
	return out, nil
}

// MustIndex is like NewIndex but panics on error. Intended for tests and
// static tables.
func MustIndex(names []Label, levels ...[]any) Index {
	ix, err := NewIndex(names, levels...)
	if err != nil {
		panic(err)
	}
	return ix
}

// RangeIndex returns the default unnamed index 0..n-1.
func RangeIndex(n int) Index {
	vals := make([]any, n)
	for i := range vals {
		vals[i] = i
	}
	return Index{names: []Label{nil}, levels: [][]any{vals}}
}

// NLevels returns the number of levels.
func (ix Index) NLevels() int { return len(ix.levels) }

// NNames returns the number of level names. It equals NLevels for every
// index built by this package.
func (ix Index) NNames() int { return len(ix.names) }

// Len returns the number of row labels.
func (ix Index) Len() int {
	if len(ix.levels) == 0 {
		return 0
	}
	return len(ix.levels[0])
}

// Names returns a copy of the level names.
func (ix Index) Names() []Label { return append([]Label(nil), ix.names...) }

// Level returns a copy of the values of level i.
func (ix Index) Level(i int) []any { return append([]any(nil), ix.levels[i]...) }

// Key returns the label tuple of row i.
func (ix Index) Key(i int) []any {
	key := make([]any, len(ix.levels))
	for l, lvl := range ix.levels {
		key[l] = lvl[i]
	}
	return key
}

// SetNames returns a copy of the index with new level names.
func (ix Index) SetNames(names []Label) (Index, error) {
	if len(names) != len(ix.levels) {
		return Index{}, errs.Valuef("length of new names (%d) does not match number of levels (%d)", len(names), len(ix.levels))
	}
	out := ix.clone()
	out.names = append([]Label(nil), names...)
	return out, nil
}

// IsRange reports whether the index is a single level holding exactly the
// integers 0..Len()-1 in order. Names are ignored.
func (ix Index) IsRange() bool {
	if len(ix.levels) != 1 {
		return false
	}
	for i, v := range ix.levels[0] {
		n, ok := v.(int)
		if !ok || n != i {
			return false
		}
	}
	return true
}

// Equal reports whether both indexes have the same values in the same order.
// Names are ignored.
func (ix Index) Equal(other Index) bool {
	if ix.NLevels() != other.NLevels() || ix.Len() != other.Len() {
		return false
	}
	for l := range ix.levels {
		if !rowsEqual(ix.levels[l], other.levels[l]) {
			return false
		}
	}
	return true
}

// HasNulls reports whether level i contains a null value.
func (ix Index) HasNulls(i int) bool {
	for _, v := range ix.levels[i] {
		if IsNull(v) {
			return true
		}
	}
	return false
}

// IsMonotonic reports whether the row label tuples are sorted ascending
// (increasing=true) or descending, allowing ties. An index containing nulls
// is never monotonic.
func (ix Index) IsMonotonic(increasing bool) bool {
	for l := range ix.levels {
		if ix.HasNulls(l) {
			return false
		}
	}
	for i := 1; i < ix.Len(); i++ {
		c := compareRows(ix.Key(i-1), ix.Key(i))
		if increasing && c > 0 || !increasing && c < 0 {
			return false
		}
	}
	return true
}

// Duplicated marks row labels that repeat according to keep.
func (ix Index) Duplicated(keep Keep) []bool {
	return duplicatedMask(ix.Len(), ix.Key, keep)
}

// Take returns the index restricted to the given row positions.
func (ix Index) Take(rows []int) Index {
	out := Index{names: ix.Names(), levels: make([][]any, len(ix.levels))}
	for l, lvl := range ix.levels {
		vals := make([]any, len(rows))
		for i, r := range rows {
			vals[i] = lvl[r]
		}
		out.levels[l] = vals
	}
	return out
}

func (ix Index) clone() Index {
	out := Index{names: ix.Names(), levels: make([][]any, len(ix.levels))}
	for l := range ix.levels {
		out.levels[l] = ix.Level(l)
	}
	return out
}

// String renders the index names and length.
func (ix Index) String() string {
	names := make([]string, len(ix.names))
	for i, n := range ix.names {
		names[i] = FormatLabel(n)
	}
	return fmt.Sprintf("Index(names=%v, len=%d)", names, ix.Len())
}
