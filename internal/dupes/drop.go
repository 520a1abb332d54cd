package dupes

import (
	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
	"github.com/JonMunkholm/tabkit/internal/indexing"
)

// DropDuplicateRows returns a copy of obj without repeated rows. With
// IncludeIndex the index values take part in the comparison; the index is
// restored afterwards unless IgnoreIndex is also set, in which case it is
// dropped. InPlace is rejected.
func DropDuplicateRows[T frame.Object[T]](obj T, opts ...Option) (T, error) {
	var zero T
	o, err := resolve(obj, opts)
	if err != nil {
		return zero, err
	}
	if o.inPlace {
		return zero, errs.Valuef("the 'inplace' parameter is not supported")
	}

	df := obj.ToFrame()
	subset := o.subset
	var names []frame.Label
	if o.includeIndex {
		if names, err = indexing.Names(obj, false); err != nil {
			return zero, err
		}
		if df, err = df.ResetIndex(); err != nil {
			return zero, err
		}
		if len(subset) > 0 {
			subset = append(append([]frame.Label(nil), names...), subset...)
		}
	}

	if df, err = df.DropDuplicates(subset, o.keep, o.ignoreIndex); err != nil {
		return zero, err
	}

	if o.includeIndex {
		if o.ignoreIndex {
			df = df.DropIfPresent(names...)
		} else if df, err = df.SetIndex(names...); err != nil {
			return zero, err
		}
	}

	switch src := any(obj).(type) {
	case *frame.Series:
		return any(df.ColumnAt(0).Rename(src.Name())).(T), nil
	default:
		return any(df).(T), nil
	}
}
