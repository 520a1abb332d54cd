package frame

import (
	"github.com/JonMunkholm/tabkit/internal/errs"
)

// How selects which rows a merge keeps.
type How string

const (
	Left  How = "left"
	Right How = "right"
	Inner How = "inner"
	Outer How = "outer"
)

// Indicator values written by a merge with MergeOptions.Indicator set.
const (
	LeftOnly  = "left_only"
	RightOnly = "right_only"
	Both      = "both"
)

// DefaultIndicatorName labels the indicator column when
// MergeOptions.IndicatorName is empty.
const DefaultIndicatorName = "_merge"

// MergeOptions configures Merge. Exactly one of the key pair (LeftOn and
// RightOn, equal length) or the index pair (LeftIndex and RightIndex) must
// be set.
type MergeOptions struct {
	How           How
	LeftOn        []Label
	RightOn       []Label
	LeftIndex     bool
	RightIndex    bool
	Indicator     bool
	IndicatorName string
	Suffixes      [2]string
}

type matchPair struct{ l, r int }

// Merge performs a hash join of left and right.
//
// Key columns sharing one label on both sides are consolidated into a single
// output column. Other overlapping labels receive Suffixes ("_x" and "_y" by
// default). Key merges produce a range index; index merges produce the
// joined index, named after the left side. Null keys match null keys.
func Merge(left, right *Frame, opts MergeOptions) (*Frame, error) {
	if opts.How == "" {
		opts.How = Inner
	}
	if opts.Suffixes == [2]string{} {
		opts.Suffixes = [2]string{"_x", "_y"}
	}
	switch opts.How {
	case Left, Right, Inner, Outer:
	default:
		return nil, errs.Valuef("unsupported merge type %q", opts.How)
	}

	byIndex := opts.LeftIndex || opts.RightIndex
	var lkey, rkey func(int) []any
	switch {
	case byIndex:
		if !opts.LeftIndex || !opts.RightIndex || len(opts.LeftOn) > 0 || len(opts.RightOn) > 0 {
			return nil, errs.New(errs.ErrParam, "index merges require both LeftIndex and RightIndex and no key columns")
		}
		if left.index.NLevels() != right.index.NLevels() {
			return nil, errs.Valuef("cannot join indexes with %d and %d levels", left.index.NLevels(), right.index.NLevels())
		}
		lkey, rkey = left.index.Key, right.index.Key
	default:
		if len(opts.LeftOn) == 0 || len(opts.LeftOn) != len(opts.RightOn) {
			return nil, errs.New(errs.ErrParam, "LeftOn and RightOn must be non-empty and of equal length, got %d and %d", len(opts.LeftOn), len(opts.RightOn))
		}
		lc, err := left.resolve(opts.LeftOn)
		if err != nil {
			return nil, err
		}
		rc, err := right.resolve(opts.RightOn)
		if err != nil {
			return nil, err
		}
		lkey, rkey = left.rowKey(lc), right.rowKey(rc)
	}

	pairs := matchRows(left.Len(), right.Len(), lkey, rkey, opts.How)

	// consolidated[rightCol] = leftCol for key pairs sharing one label
	consolidated := map[int]int{}
	if !byIndex {
		for k := range opts.LeftOn {
			if Equal(opts.LeftOn[k], opts.RightOn[k]) {
				lc, _ := left.position(opts.LeftOn[k])
				rc, _ := right.position(opts.RightOn[k])
				consolidated[rc] = lc
			}
		}
	}
	coalesce := map[int]int{}
	for rc, lc := range consolidated {
		coalesce[lc] = rc
	}

	var rightCols []int
	for i := range right.columns {
		if _, ok := consolidated[i]; !ok {
			rightCols = append(rightCols, i)
		}
	}

	leftLabels := left.Columns()
	rightLabels := make([]Label, len(rightCols))
	for i, c := range rightCols {
		rightLabels[i] = right.columns[c]
	}
	applySuffixes(leftLabels, rightLabels, coalesce, opts.Suffixes)

	out := &Frame{}
	for c := range left.columns {
		vals := make([]any, len(pairs))
		rc, isKey := coalesce[c]
		for i, p := range pairs {
			switch {
			case p.l >= 0:
				vals[i] = left.data[c][p.l]
			case isKey:
				vals[i] = right.data[rc][p.r]
			}
		}
		out.columns = append(out.columns, leftLabels[c])
		out.data = append(out.data, vals)
	}
	for i, c := range rightCols {
		vals := make([]any, len(pairs))
		for r, p := range pairs {
			if p.r >= 0 {
				vals[r] = right.data[c][p.r]
			}
		}
		out.columns = append(out.columns, rightLabels[i])
		out.data = append(out.data, vals)
	}

	if opts.Indicator {
		name := opts.IndicatorName
		if name == "" {
			name = DefaultIndicatorName
		}
		if out.HasColumn(name) {
			return nil, errs.New(errs.ErrCollision, "cannot use name of an existing column for indicator column: %s", name)
		}
		vals := make([]any, len(pairs))
		for i, p := range pairs {
			switch {
			case p.l >= 0 && p.r >= 0:
				vals[i] = Both
			case p.l >= 0:
				vals[i] = LeftOnly
			default:
				vals[i] = RightOnly
			}
		}
		out.columns = append(out.columns, name)
		out.data = append(out.data, vals)
	}

	if !byIndex {
		out.index = RangeIndex(len(pairs))
		return out, nil
	}

	levels := make([][]any, left.index.NLevels())
	for l := range levels {
		levels[l] = make([]any, len(pairs))
		for i, p := range pairs {
			if p.l >= 0 {
				levels[l][i] = left.index.levels[l][p.l]
			} else {
				levels[l][i] = right.index.levels[l][p.r]
			}
		}
	}
	out.index = Index{names: left.index.Names(), levels: levels}
	return out, nil
}

// matchRows pairs left and right row positions; -1 marks a missing side.
// Right joins follow right row order; every other kind follows left row
// order, with unmatched right rows appended for outer joins.
func matchRows(nl, nr int, lkey, rkey func(int) []any, how How) []matchPair {
	if how == Right {
		flipped := matchRows(nr, nl, rkey, lkey, Left)
		for i, p := range flipped {
			flipped[i] = matchPair{l: p.r, r: p.l}
		}
		return flipped
	}

	t := newKeyTable()
	var groups [][]int
	for r := 0; r < nr; r++ {
		id, created := t.insert(rkey(r))
		if created {
			groups = append(groups, nil)
		}
		groups[id] = append(groups[id], r)
	}

	matched := make([]bool, nr)
	var pairs []matchPair
	for l := 0; l < nl; l++ {
		id, ok := t.lookup(lkey(l))
		if !ok {
			if how != Inner {
				pairs = append(pairs, matchPair{l: l, r: -1})
			}
			continue
		}
		for _, r := range groups[id] {
			matched[r] = true
			pairs = append(pairs, matchPair{l: l, r: r})
		}
	}
	if how == Outer {
		for r, ok := range matched {
			if !ok {
				pairs = append(pairs, matchPair{l: -1, r: r})
			}
		}
	}
	return pairs
}

// applySuffixes renames labels present on both sides, skipping consolidated
// key columns on the left.
func applySuffixes(left, right []Label, keys map[int]int, suffixes [2]string) {
	for i, l := range left {
		if _, isKey := keys[i]; isKey {
			continue
		}
		for j, r := range right {
			if Equal(l, r) {
				left[i] = suffixed(l, suffixes[0])
				right[j] = suffixed(r, suffixes[1])
			}
		}
	}
}

func suffixed(l Label, suffix string) Label {
	return FormatLabel(l) + suffix
}
