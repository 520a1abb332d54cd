package frame

import (
	"sort"

	"github.com/JonMunkholm/tabkit/internal/errs"
)

// Keep selects which occurrence of a repeated row survives.
type Keep int

const (
	KeepFirst Keep = iota
	KeepLast
	KeepNone
)

// ParseKeep maps "first", "last" and "none" (or "false") to a Keep.
func ParseKeep(s string) (Keep, error) {
	switch s {
	case "", "first":
		return KeepFirst, nil
	case "last":
		return KeepLast, nil
	case "none", "false":
		return KeepNone, nil
	default:
		return 0, errs.Valuef(`"keep" must be in [first last none], got: %s.`, s)
	}
}

func (k Keep) String() string {
	switch k {
	case KeepLast:
		return "last"
	case KeepNone:
		return "none"
	default:
		return "first"
	}
}

// duplicatedMask marks rows whose key repeats. KeepFirst leaves the first
// occurrence unmarked, KeepLast the last, KeepNone marks every occurrence.
func duplicatedMask(n int, key func(int) []any, keep Keep) []bool {
	t := newKeyTable()
	ids := make([]int, n)
	for i := 0; i < n; i++ {
		ids[i], _ = t.insert(key(i))
	}
	counts := make([]int, t.len())
	for _, id := range ids {
		counts[id]++
	}

	mask := make([]bool, n)
	seen := make([]int, t.len())
	for i, id := range ids {
		seen[id]++
		switch keep {
		case KeepFirst:
			mask[i] = seen[id] > 1
		case KeepLast:
			mask[i] = seen[id] < counts[id]
		default:
			mask[i] = counts[id] > 1
		}
	}
	return mask
}

// Count is one distinct key tuple and the number of times it occurs.
type Count struct {
	Key []any
	N   int
}

// countValues counts key tuples. Nulls are counted as values. The result is
// sorted by count descending; ties keep first-appearance order.
func countValues(n int, key func(int) []any) []Count {
	t := newKeyTable()
	var counts []Count
	for i := 0; i < n; i++ {
		k := key(i)
		id, created := t.insert(k)
		if created {
			counts = append(counts, Count{Key: k})
		}
		counts[id].N++
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].N > counts[j].N })
	return counts
}

// CountLabels counts repeated labels, such as column names.
func CountLabels(labels []Label) []Count {
	return countValues(len(labels), func(i int) []any { return []any{labels[i]} })
}

// Duplicated marks repeated rows over the subset columns (all columns when
// subset is empty).
func (f *Frame) Duplicated(subset []Label, keep Keep) ([]bool, error) {
	cols, err := f.subsetColumns(subset)
	if err != nil {
		return nil, err
	}
	return duplicatedMask(f.Len(), f.rowKey(cols), keep), nil
}

// ValueCounts counts distinct row tuples over all columns.
func (f *Frame) ValueCounts() []Count {
	cols := make([]int, len(f.columns))
	for i := range cols {
		cols[i] = i
	}
	return countValues(f.Len(), f.rowKey(cols))
}

// DropDuplicates removes repeated rows over the subset columns. With
// ignoreIndex the result carries a fresh range index.
func (f *Frame) DropDuplicates(subset []Label, keep Keep, ignoreIndex bool) (*Frame, error) {
	mask, err := f.Duplicated(subset, keep)
	if err != nil {
		return nil, err
	}
	for i := range mask {
		mask[i] = !mask[i]
	}
	out := f.Filter(mask)
	if ignoreIndex {
		out.index = RangeIndex(out.Len())
	}
	return out, nil
}

func (f *Frame) subsetColumns(subset []Label) ([]int, error) {
	if len(subset) == 0 {
		cols := make([]int, len(f.columns))
		for i := range cols {
			cols[i] = i
		}
		return cols, nil
	}
	return f.resolve(subset)
}

// Duplicated marks repeated values.
func (s *Series) Duplicated(keep Keep) []bool {
	return duplicatedMask(s.Len(), func(i int) []any { return []any{s.values[i]} }, keep)
}

// ValueCounts counts distinct values.
func (s *Series) ValueCounts() []Count {
	return countValues(s.Len(), func(i int) []any { return []any{s.values[i]} })
}

// DropDuplicates removes repeated values.
func (s *Series) DropDuplicates(keep Keep, ignoreIndex bool) *Series {
	mask := s.Duplicated(keep)
	var rows []int
	for i, dup := range mask {
		if !dup {
			rows = append(rows, i)
		}
	}
	out := s.Take(rows)
	if ignoreIndex {
		out.index = RangeIndex(out.Len())
	}
	return out
}

// CountsFrame renders counts as a table indexed by the key tuples with a
// single "count" column. names labels the key levels.
func CountsFrame(counts []Count, names []Label) (*Frame, error) {
	if len(counts) == 0 {
		return nil, errs.Valuef("no counts to render")
	}
	levels := make([][]any, len(names))
	for l := range levels {
		levels[l] = make([]any, len(counts))
	}
	n := make([]any, len(counts))
	for i, c := range counts {
		if len(c.Key) != len(names) {
			return nil, errs.New(errs.ErrShape, "key of length %d for %d names", len(c.Key), len(names))
		}
		for l, v := range c.Key {
			levels[l][i] = v
		}
		n[i] = c.N
	}
	ix, err := NewIndex(names, levels...)
	if err != nil {
		return nil, err
	}
	return New(Labels("count"), [][]any{n}, &ix)
}
