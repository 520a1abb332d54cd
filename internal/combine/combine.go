// Package combine merges, joins and concatenates tables with stricter
// defaults than the underlying engine: left joins by default, anti joins,
// duplicate key checks before each step, a column collision guard instead of
// silent suffixing, and preservation of the leftmost input's index names.
package combine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/JonMunkholm/tabkit/internal/dupes"
	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
	"github.com/JonMunkholm/tabkit/internal/indexing"
	"github.com/JonMunkholm/tabkit/internal/validate"
)

// Merge folds objs left to right with key-based merges. The leftmost
// input's named index, if any, is restored on the result.
func Merge(objs []frame.Tabular, p Params) (*frame.Frame, error) {
	return merge(objs, p, false)
}

// Join folds objs left to right aligning on their indexes. Inputs must share
// index names; with NoneOK (the default) inputs with an unnamed index are
// exempt from the comparison.
func Join(objs []frame.Tabular, p Params) (*frame.Frame, error) {
	if err := validateObjs(objs); err != nil {
		return nil, err
	}
	noneOK := p.NoneOK == nil || *p.NoneOK
	checked := objs
	if noneOK {
		checked = nil
		for _, obj := range objs {
			named, err := indexing.HasNamed(obj)
			if err != nil {
				return nil, err
			}
			if named {
				checked = append(checked, obj)
			}
		}
	}
	var opts []indexing.ConsistencyOption
	if !noneOK {
		opts = append(opts, indexing.RequireNamed())
	}
	if err := indexing.VerifyConsistentNames(checked, opts...); err != nil {
		return nil, err
	}
	return merge(objs, p, true)
}

func validateObjs(objs []frame.Tabular) error {
	if len(objs) == 0 {
		return errs.Valuef("'objs' cannot be empty")
	}
	for i, obj := range objs {
		if obj == nil || obj.Dim() < 1 {
			return errs.Typef("object at position %d must be a table or sequence, got: <%T>.", i, obj)
		}
	}
	return nil
}

func merge(objs []frame.Tabular, p Params, join bool) (*frame.Frame, error) {
	if err := validateObjs(objs); err != nil {
		return nil, err
	}
	params, err := prepParams(p, join)
	if err != nil {
		return nil, err
	}

	named, err := indexing.HasNamed(objs[0])
	if err != nil {
		return nil, err
	}
	restoreIndex := !join && named
	indexNames, err := indexing.Names(objs[0], false)
	if err != nil {
		return nil, err
	}

	var df *frame.Frame
	for pos, obj := range objs {
		side := left
		if pos > 0 {
			side = right
		}

		f := obj.ToFrame()
		if !join {
			hasNamed, err := indexing.HasNamed(f)
			if err != nil {
				return nil, err
			}
			if hasNamed {
				if f, err = f.ResetIndex(); err != nil {
					return nil, err
				}
			}
		}

		opts := []dupes.Option{dupes.WithLabel(side)}
		if params.maxShown > 0 {
			opts = append(opts, dupes.MaxShown(params.maxShown))
		}
		if !params.dupesOK(side) {
			if join {
				opts = append(opts, dupes.CheckIndexValues())
			} else {
				opts = append(opts, dupes.ColumnValues(labelStrings(params.keys(side))))
			}
		}
		if err := dupes.VerifyUnique(f, opts...); err != nil {
			return nil, err
		}

		if df == nil {
			df = f
			continue
		}
		if df, err = mergePair(df, f, params, join); err != nil {
			return nil, err
		}
	}

	if restoreIndex {
		if df, err = df.SetIndex(indexNames...); err != nil {
			return nil, err
		}
	}
	if err := indexing.VerifyConsistentNames([]frame.Tabular{df}, indexing.WithExpected(indexNames...)); err != nil {
		return nil, err
	}
	return df, nil
}

func labelStrings(labels []frame.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = fmt.Sprint(l)
	}
	return out
}

// mergePair merges two tables after checking that the output column names
// are unique.
func mergePair(l, r *frame.Frame, p prepared, join bool) (*frame.Frame, error) {
	opts := frame.MergeOptions{How: p.how, Indicator: p.indicator}
	if join {
		opts.LeftIndex, opts.RightIndex = true, true
	} else {
		opts.LeftOn, opts.RightOn = p.leftOn, p.rightOn
	}

	isAnti := p.how == Anti
	if isAnti {
		opts.How, opts.Indicator = frame.Left, true
		if !p.indicator {
			opts.IndicatorName = "_merge_" + uuid.NewString()
		}
		var keep []frame.Label
		if !join {
			keep = p.rightOn
		}
		var err error
		if r, err = r.Select(keep...); err != nil {
			return nil, err
		}
	}

	leftCols, rightCols := l.Columns(), r.Columns()
	var rightKeys []frame.Label
	if !join {
		leftOn := sortedKeys(p.leftOn)
		var shared []frame.Label
		for _, k := range p.rightOn {
			if contains(leftOn, k) {
				shared = append(shared, k)
			} else {
				rightKeys = append(rightKeys, k)
			}
		}
		if len(shared) > 0 {
			sharedKeys := sortedKeys(shared)
			var kept []frame.Label
			for _, c := range rightCols {
				if !contains(sharedKeys, c) {
					kept = append(kept, c)
				}
			}
			rightCols = kept
		}
	}

	if err := verifyNoCollisions(leftCols, rightCols, p.maxShown); err != nil {
		return nil, err
	}

	df, err := frame.Merge(l, r, opts)
	if err != nil {
		return nil, err
	}

	if isAnti {
		name := opts.IndicatorName
		if name == "" {
			name = frame.DefaultIndicatorName
		}
		ind, err := df.Column(name)
		if err != nil {
			return nil, err
		}
		mask := make([]bool, ind.Len())
		for i, v := range ind.Values() {
			mask[i] = v == frame.LeftOnly
		}
		df = df.Filter(mask)
		if !p.indicator {
			df = df.DropIfPresent(name)
		}
	}

	if len(rightKeys) > 0 {
		df = df.DropIfPresent(rightKeys...)
	}
	return df, nil
}

// verifyNoCollisions rejects output column names that would appear on both
// sides of a merge.
func verifyNoCollisions(leftCols, rightCols []frame.Label, maxShown int) error {
	names := append(append([]any(nil), leftCols...), rightCols...)
	s, err := frame.NewSeries("name", names, nil)
	if err != nil {
		return err
	}
	opts := []dupes.Option{dupes.WithLabel("left & right column name"), dupes.ColumnValues(true)}
	if maxShown > 0 {
		opts = append(opts, dupes.MaxShown(maxShown))
	}
	if err := dupes.VerifyUnique(s, opts...); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrCollision, err)
	}
	return nil
}

// Concat concatenates objs along an axis. Index names must agree across the
// inputs; when the index is kept the result must carry the leftmost input's
// index names.
func Concat(objs []frame.Tabular, p ConcatParams) (*frame.Frame, error) {
	if err := validateObjs(objs); err != nil {
		return nil, err
	}
	join := p.Join
	if p.How != "" {
		if p.Join != "" {
			return nil, errs.Valuef("cannot specify both 'how' and 'join'")
		}
		join = p.How
	}
	if join == "" {
		join = frame.Outer
	}
	if err := validate.Value(string(join), "join", validate.Whitelist("inner", "outer")); err != nil {
		return nil, err
	}
	if err := validate.Value(p.Axis, "axis", validate.Whitelist(0, 1)); err != nil {
		return nil, err
	}

	if err := indexing.VerifyConsistentNames(objs); err != nil {
		return nil, err
	}
	indexNames, err := indexing.Names(objs[0], false)
	if err != nil {
		return nil, err
	}

	var ignoreIndex bool
	switch {
	case p.IgnoreIndex != nil:
		ignoreIndex = *p.IgnoreIndex
	case p.Axis == 0:
		named, err := indexing.HasNamed(objs[0])
		if err != nil {
			return nil, err
		}
		ignoreIndex = !named
	}

	frames := make([]*frame.Frame, len(objs))
	for i, obj := range objs {
		frames[i] = obj.ToFrame()
	}
	df, err := frame.Concat(frames, frame.ConcatOptions{Axis: p.Axis, Join: join, IgnoreIndex: ignoreIndex})
	if err != nil {
		return nil, err
	}

	if !ignoreIndex {
		if err := indexing.VerifyConsistentNames([]frame.Tabular{df}, indexing.WithExpected(indexNames...)); err != nil {
			return nil, err
		}
	}
	return df, nil
}
