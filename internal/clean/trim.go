// Package clean tidies loosely typed tables: trimming nulls off the ends of
// a sequence, normalizing column names and whitespace, and inferring
// numeric and date columns from text.
package clean

import (
	"math"

	"github.com/JonMunkholm/tabkit/internal/coerce"
	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
	"github.com/JonMunkholm/tabkit/internal/indexing"
	"github.com/JonMunkholm/tabkit/internal/validate"
)

// Which selects the end(s) TrimNA trims.
type Which string

const (
	Both     Which = "both"
	Leading  Which = "leading"
	Trailing Which = "trailing"
)

// TrimOptions configures TrimNA.
type TrimOptions struct {
	// Which defaults to Both.
	Which Which
	// InfAsNA treats ±Inf as null.
	InfAsNA bool
	// RaiseOnNA fails when nulls remain after trimming, or when the input
	// holds nothing but nulls.
	RaiseOnNA bool
}

// TrimNA drops leading and/or trailing nulls from data after coercing it to
// a sequence. Interior nulls are kept unless RaiseOnNA is set, in which case
// they are reported. Index values must not be null.
func TrimNA(data any, opts TrimOptions) (*frame.Series, error) {
	if opts.Which == "" {
		opts.Which = Both
	}
	if err := validate.Value(string(opts.Which), "which", validate.Types(validate.String), validate.Whitelist("both", "leading", "trailing")); err != nil {
		return nil, err
	}

	s, _, err := coerce.ToSeries(data, coerce.WithoutDefaultName())
	if err != nil {
		return nil, err
	}
	if err := indexing.VerifyValuesNotNull(s); err != nil {
		return nil, err
	}
	if s.Len() == 0 {
		return s, nil
	}

	out := s
	if opts.InfAsNA {
		out = s.Map(func(v any) any {
			if f, ok := v.(float64); ok && math.IsInf(f, 0) {
				return nil
			}
			return v
		})
	}

	nulls := out.IsNull()
	first, last := -1, -1
	for i, null := range nulls {
		if !null {
			if first < 0 {
				first = i
			}
			last = i
		}
	}

	if first < 0 {
		if opts.RaiseOnNA {
			return nil, errs.New(errs.ErrNull, "Series only contains nulls.")
		}
		return out.Take(nil), nil
	}

	lo, hi := 0, len(nulls)-1
	switch opts.Which {
	case Both:
		lo, hi = first, last
	case Leading:
		lo = first
	case Trailing:
		hi = last
	}

	rows := make([]int, 0, hi-lo+1)
	var interior []int
	for i := lo; i <= hi; i++ {
		rows = append(rows, i)
		if nulls[i] {
			interior = append(interior, i)
		}
	}
	out = out.Take(rows)

	if !opts.RaiseOnNA || len(interior) == 0 {
		return out, nil
	}
	return nil, errs.New(errs.ErrNull, "Series contains nulls:\n\n%s\n", s.Take(interior))
}
