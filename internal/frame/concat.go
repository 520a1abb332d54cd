package frame

import (
	"github.com/JonMunkholm/tabkit/internal/errs"
)

// ConcatOptions configures Concat.
type ConcatOptions struct {
	// Axis 0 stacks rows; axis 1 places tables side by side.
	Axis int
	// Join is Outer (union of the other axis) or Inner (intersection).
	Join How
	// IgnoreIndex renumbers the concatenation axis: row labels for axis 0,
	// column labels for axis 1.
	IgnoreIndex bool
}

// Concat concatenates tables along an axis. Index level names survive only
// where every input agrees on them.
func Concat(objs []*Frame, opts ConcatOptions) (*Frame, error) {
	if len(objs) == 0 {
		return nil, errs.Valuef("no objects to concatenate")
	}
	if opts.Join == "" {
		opts.Join = Outer
	}
	if opts.Join != Outer && opts.Join != Inner {
		return nil, errs.Valuef("only inner and outer joins are supported for concatenation, got %q", opts.Join)
	}
	nlevels := objs[0].index.NLevels()
	for _, f := range objs[1:] {
		if f.index.NLevels() != nlevels {
			return nil, errs.New(errs.ErrShape, "cannot concatenate indexes with %d and %d levels", nlevels, f.index.NLevels())
		}
	}

	switch opts.Axis {
	case 0:
		return concatRows(objs, opts)
	case 1:
		return concatColumns(objs, opts)
	default:
		return nil, errs.Valuef(`"axis" must be in [0 1], got: %d.`, opts.Axis)
	}
}

func concatRows(objs []*Frame, opts ConcatOptions) (*Frame, error) {
	for _, f := range objs {
		if counts := CountLabels(f.columns); len(counts) > 0 && counts[0].N > 1 {
			return nil, errs.New(errs.ErrDuplicate, "cannot align columns: label %s is not unique", FormatLabel(counts[0].Key[0]))
		}
	}

	var columns []Label
	switch opts.Join {
	case Inner:
		for _, c := range objs[0].columns {
			shared := true
			for _, f := range objs[1:] {
				if !f.HasColumn(c) {
					shared = false
					break
				}
			}
			if shared {
				columns = append(columns, c)
			}
		}
	default:
		seen := newKeyTable()
		for _, f := range objs {
			for _, c := range f.columns {
				if _, created := seen.insert([]any{c}); created {
					columns = append(columns, c)
				}
			}
		}
	}

	total := 0
	for _, f := range objs {
		total += f.Len()
	}
	out := &Frame{columns: columns, data: make([][]any, len(columns))}
	for i, c := range columns {
		vals := make([]any, 0, total)
		for _, f := range objs {
			if pos := f.positions(c); len(pos) == 1 {
				vals = append(vals, f.data[pos[0]]...)
			} else {
				vals = append(vals, make([]any, f.Len())...)
			}
		}
		out.data[i] = vals
	}

	if opts.IgnoreIndex {
		out.index = RangeIndex(total)
		return out, nil
	}
	levels := make([][]any, objs[0].index.NLevels())
	for l := range levels {
		levels[l] = make([]any, 0, total)
		for _, f := range objs {
			levels[l] = append(levels[l], f.index.levels[l]...)
		}
	}
	out.index = Index{names: commonNames(objs), levels: levels}
	return out, nil
}

func concatColumns(objs []*Frame, opts ConcatOptions) (*Frame, error) {
	aligned := true
	for _, f := range objs[1:] {
		if !f.index.Equal(objs[0].index) {
			aligned = false
			break
		}
	}

	var index Index
	rows := make([][]int, len(objs))
	if aligned {
		index = objs[0].index.clone()
		for i, f := range objs {
			rows[i] = make([]int, f.Len())
			for r := range rows[i] {
				rows[i][r] = r
			}
		}
	} else {
		tables := make([]*keyTable, len(objs))
		for i, f := range objs {
			if mask := f.index.Duplicated(KeepFirst); anyTrue(mask) {
				return nil, errs.New(errs.ErrDuplicate, "cannot align object at position %d: index values are not unique", i)
			}
			tables[i] = newKeyTable()
			for r := 0; r < f.Len(); r++ {
				tables[i].insert(f.index.Key(r))
			}
		}

		var keys [][]any
		switch opts.Join {
		case Inner:
			for r := 0; r < objs[0].Len(); r++ {
				key := objs[0].index.Key(r)
				shared := true
				for _, t := range tables[1:] {
					if _, ok := t.lookup(key); !ok {
						shared = false
						break
					}
				}
				if shared {
					keys = append(keys, key)
				}
			}
		default:
			union := newKeyTable()
			for _, f := range objs {
				for r := 0; r < f.Len(); r++ {
					key := f.index.Key(r)
					if _, created := union.insert(key); created {
						keys = append(keys, key)
					}
				}
			}
		}

		levels := make([][]any, objs[0].index.NLevels())
		for l := range levels {
			levels[l] = make([]any, len(keys))
			for i, k := range keys {
				levels[l][i] = k[l]
			}
		}
		index = Index{levels: levels}
		for i := range objs {
			rows[i] = make([]int, len(keys))
			for j, k := range keys {
				rows[i][j], _ = tables[i].lookup(k)
			}
		}
	}
	index.names = commonNames(objs)

	out := &Frame{index: index}
	for i, f := range objs {
		for c, col := range f.data {
			vals := make([]any, len(rows[i]))
			for j, r := range rows[i] {
				if r >= 0 {
					vals[j] = col[r]
				}
			}
			out.columns = append(out.columns, f.columns[c])
			out.data = append(out.data, vals)
		}
	}
	if opts.IgnoreIndex {
		for i := range out.columns {
			out.columns[i] = i
		}
	}
	return out, nil
}

// commonNames keeps each level name shared by every input and clears the
// rest.
func commonNames(objs []*Frame) []Label {
	names := objs[0].index.Names()
	for _, f := range objs[1:] {
		for l, n := range f.index.names {
			if !Equal(names[l], n) {
				names[l] = nil
			}
		}
	}
	return names
}

func anyTrue(mask []bool) bool {
	for _, b := range mask {
		if b {
			return true
		}
	}
	return false
}
