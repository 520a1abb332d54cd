// Package interop converts frames to and from other Go table libraries:
// gota dataframes and Apache Arrow records.
//
// Both directions go through a per-column kind inferred from the cells, so
// a column of ints stays integral, a mix of ints and floats widens to float
// and anything irregular falls back to strings.
package interop

import (
	"time"

	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
)

type kind int

const (
	kindNull kind = iota
	kindInt
	kindFloat
	kindBool
	kindTime
	kindString
)

// inferKind returns the narrowest kind holding every non-null value.
func inferKind(values []any) kind {
	k := kindNull
	for _, v := range values {
		if frame.IsNull(v) {
			continue
		}
		var vk kind
		switch v.(type) {
		case int:
			vk = kindInt
		case float64:
			vk = kindFloat
		case bool:
			vk = kindBool
		case time.Time:
			vk = kindTime
		default:
			return kindString
		}
		switch {
		case k == kindNull || k == vk:
			k = vk
		case (k == kindInt && vk == kindFloat) || (k == kindFloat && vk == kindInt):
			k = kindFloat
		default:
			return kindString
		}
	}
	return k
}

// columnNames returns the string form of f's labels, rejecting repeats.
func columnNames(f *frame.Frame) ([]string, error) {
	labels := f.Columns()
	names := make([]string, len(labels))
	seen := make(map[string]bool, len(labels))
	for i, l := range labels {
		if l == nil {
			return nil, errs.New(errs.ErrNull, "column %d has no name", i)
		}
		names[i] = frame.FormatLabel(l)
		if seen[names[i]] {
			return nil, errs.New(errs.ErrDuplicate, "column name %q is not unique", names[i])
		}
		seen[names[i]] = true
	}
	return names, nil
}

func prepare(f *frame.Frame, includeIndex bool) (*frame.Frame, error) {
	if !includeIndex {
		return f, nil
	}
	return f.ResetIndex()
}
