package clean

import (
	"context"
	"time"

	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
	"github.com/JonMunkholm/tabkit/internal/logging"
)

// InferTypes purges whitespace from obj and converts each column to dates
// (when its name looks datelike) or numbers (otherwise) if every non-null
// cell parses. Columns that do not parse are kept as they are; a datelike
// column that fails is logged.
func InferTypes(ctx context.Context, obj frame.Tabular) (*frame.Frame, error) {
	if obj == nil {
		return nil, errs.Typef("'obj' argument type not supported: <nil>")
	}
	df := PurgeWhitespace(obj.ToFrame())
	logger := logging.FromContext(ctx)

	var err error
	for c, label := range df.Columns() {
		name, _ := label.(string)
		col := df.ColumnAt(c).Values()
		if IsDatelikeName(name) {
			converted, bad, ok := convertAll(col, toTime)
			if !ok {
				logger.Warn("date conversion failed", "column", name, "value", bad)
				continue
			}
			if df, err = df.WithColumnAt(c, converted); err != nil {
				return nil, err
			}
			continue
		}
		if converted, _, ok := convertAll(col, toNumber); ok {
			if df, err = df.WithColumnAt(c, converted); err != nil {
				return nil, err
			}
		}
	}
	return df, nil
}

// convertAll applies fn to every non-null cell. It stops at the first cell
// fn rejects and returns it.
func convertAll(values []any, fn func(any) (any, bool)) ([]any, any, bool) {
	out := make([]any, len(values))
	for i, v := range values {
		if frame.IsNull(v) {
			continue
		}
		x, ok := fn(v)
		if !ok {
			return nil, v, false
		}
		out[i] = x
	}
	return out, nil, true
}

func toTime(v any) (any, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, true
	case string:
		t, ok := ParseDate(x)
		return t, ok
	default:
		return nil, false
	}
}

func toNumber(v any) (any, bool) {
	switch x := v.(type) {
	case int, float64:
		return x, true
	case string:
		return ParseNumber(x)
	default:
		return nil, false
	}
}
