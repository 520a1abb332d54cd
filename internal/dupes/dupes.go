// Package dupes verifies uniqueness of column names, index names, index
// values and row values, and drops duplicate rows with optional index
// awareness.
package dupes

import (
	"fmt"

	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
	"github.com/JonMunkholm/tabkit/internal/indexing"
	"github.com/JonMunkholm/tabkit/internal/validate"
)

// DefaultMaxShown caps the entries listed in a duplicate report.
const DefaultMaxShown = 10

// DefaultLabel identifies the checked object in messages when no label is
// given.
const DefaultLabel = "df"

type options struct {
	label        string
	columnNames  bool
	columnValues any
	indexNames   bool
	indexValues  bool
	includeIndex bool
	dropNA       bool
	maxShown     int

	keep        frame.Keep
	ignoreIndex bool
	subset      []frame.Label
	inPlace     bool
}

func defaults() options {
	return options{
		label:        DefaultLabel,
		columnNames:  true,
		columnValues: false,
		indexNames:   true,
		maxShown:     DefaultMaxShown,
	}
}

// Option configures VerifyUnique and DropDuplicateRows.
type Option func(*options)

// WithLabel names the checked object in error messages.
func WithLabel(label string) Option {
	return func(o *options) {
		if label != "" {
			o.label = label
		}
	}
}

// SkipColumnNames disables the duplicate column name check.
func SkipColumnNames() Option { return func(o *options) { o.columnNames = false } }

// ColumnValues enables the duplicate row check. v is true for all columns,
// a column name, or a list of column names.
func ColumnValues(v any) Option { return func(o *options) { o.columnValues = v } }

// SkipIndexNames disables the index name checks.
func SkipIndexNames() Option { return func(o *options) { o.indexNames = false } }

// CheckIndexValues enables the null and duplicate index value checks.
func CheckIndexValues() Option { return func(o *options) { o.indexValues = true } }

// IncludeIndex folds the index into row comparisons. It is ignored on a
// default index and unsupported on an unnamed one.
func IncludeIndex() Option { return func(o *options) { o.includeIndex = true } }

// DropNA ignores rows containing nulls in the duplicate row check.
func DropNA() Option { return func(o *options) { o.dropNA = true } }

// MaxShown caps the entries listed in a report; n ≤ 0 lists all.
func MaxShown(n int) Option { return func(o *options) { o.maxShown = n } }

// Keep selects which duplicate row DropDuplicateRows keeps.
func Keep(k frame.Keep) Option { return func(o *options) { o.keep = k } }

// IgnoreIndex renumbers the rows DropDuplicateRows returns.
func IgnoreIndex() Option { return func(o *options) { o.ignoreIndex = true } }

// Subset restricts DropDuplicateRows to the listed columns.
func Subset(labels ...frame.Label) Option {
	return func(o *options) { o.subset = append(o.subset, labels...) }
}

// InPlace requests in-place modification, which DropDuplicateRows rejects.
func InPlace() Option { return func(o *options) { o.inPlace = true } }

func resolve(obj frame.Tabular, opts []Option) (options, error) {
	o := defaults()
	for _, opt := range opts {
		opt(&o)
	}
	include, err := resolveIncludeIndex(obj, o.includeIndex)
	if err != nil {
		return o, err
	}
	o.includeIndex = include
	return o, nil
}

// resolveIncludeIndex turns an index inclusion request off for a default
// index and rejects it for an unnamed one.
func resolveIncludeIndex(obj frame.Tabular, include bool) (bool, error) {
	if !include {
		return false, nil
	}
	isDefault, err := indexing.IsDefault(obj, true)
	if err != nil {
		return false, err
	}
	if isDefault {
		return false, nil
	}
	named, err := indexing.HasNamed(obj)
	if err != nil {
		return false, err
	}
	if !named {
		return false, errs.NotImplementedf("support for including unnamed index is not yet implemented")
	}
	return true, nil
}

// VerifyUnique fails if obj holds duplicates. In order it rejects null
// column names, duplicate column names, duplicate index names, index and
// column name conflicts, null or duplicate index values, and duplicate row
// values. Only the name checks are enabled by default.
func VerifyUnique(obj frame.Tabular, opts ...Option) error {
	o, err := resolve(obj, opts)
	if err != nil {
		return err
	}
	df := obj.ToFrame()
	msg := "Duplicates detected in " + o.label

	columns := df.Columns()
	for _, c := range columns {
		if frame.IsNull(c) {
			return errs.New(errs.ErrNull, "NaNs detected in %s column names.", o.label)
		}
	}

	if o.columnNames {
		if err := o.checkLabels(columns, msg+" column names"); err != nil {
			return err
		}
	}

	if o.indexNames {
		names, err := indexing.Names(obj, true)
		if err != nil {
			return err
		}
		if len(names) > 0 {
			if err := o.checkLabels(names, msg+" index names"); err != nil {
				return err
			}
			conflict := fmt.Sprintf("Conflicts detected between %s index and column names", o.label)
			if err := o.checkLabels(append(names, columns...), conflict); err != nil {
				return err
			}
		}
	}

	if o.indexValues {
		if err := indexing.VerifyValuesNotNull(obj); err != nil {
			return err
		}
		ix := df.Index()
		if err := o.checkIndex(ix, msg+" index values"); err != nil {
			return err
		}
	}

	if df.Empty() {
		return nil
	}

	subset, err := selectColumns(df, o.columnValues)
	if err != nil || subset == nil {
		return err
	}
	if df, err = df.Select(subset...); err != nil {
		return err
	}
	if o.includeIndex {
		if df, err = df.ResetIndex(); err != nil {
			return err
		}
	}
	if o.dropNA {
		if df = df.DropNA(); df.Len() == 0 {
			return nil
		}
	}
	mask, err := df.Duplicated(nil, frame.KeepNone)
	if err != nil {
		return err
	}
	return o.report(df.Filter(mask).ValueCounts(), df.Columns(), msg+" values")
}

// selectColumns resolves the column_values setting to column labels; a nil
// result disables the row check.
func selectColumns(df *frame.Frame, v any) ([]frame.Label, error) {
	var subset []frame.Label
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if !x {
			return nil, nil
		}
		subset = df.Columns()
	case string:
		subset = []frame.Label{x}
	case []string:
		subset = frame.Labels(x...)
	case []any:
		subset = append(subset, x...)
	default:
		if err := validate.Value(v, "column_values", validate.Types(validate.Bool, validate.String, validate.List)); err != nil {
			return nil, err
		}
		return nil, errs.Typef(`"column_values" must be a list of <string>, got: <%T>.`, v)
	}
	for _, k := range subset {
		if err := validate.Value(k, "column", validate.Types(validate.String)); err != nil {
			return nil, err
		}
	}
	return subset, nil
}

func (o options) checkLabels(labels []frame.Label, header string) error {
	if len(labels) < 2 {
		return nil
	}
	return o.report(frame.CountLabels(labels), []frame.Label{nil}, header)
}

func (o options) checkIndex(ix frame.Index, header string) error {
	if ix.Len() < 2 {
		return nil
	}
	var rows []int
	for i, dup := range ix.Duplicated(frame.KeepNone) {
		if dup {
			rows = append(rows, i)
		}
	}
	dupIx := ix.Take(rows)
	positions := make([]frame.Label, dupIx.NLevels())
	levels := make([][]any, dupIx.NLevels())
	for l := range levels {
		positions[l] = l
		levels[l] = dupIx.Level(l)
	}
	keys, err := frame.New(positions, levels, nil)
	if err != nil {
		return err
	}
	return o.report(keys.ValueCounts(), ix.Names(), header)
}

// report builds a DuplicateError from the counts that exceed one, or
// returns nil when there are none.
func (o options) report(counts []frame.Count, names []frame.Label, header string) error {
	var dupes []frame.Count
	for _, c := range counts {
		if c.N > 1 {
			dupes = append(dupes, c)
		}
	}
	if len(dupes) == 0 {
		return nil
	}
	total := len(dupes)
	if o.maxShown > 0 && o.maxShown < total {
		dupes = dupes[:o.maxShown]
	}
	table, err := frame.CountsFrame(dupes, names)
	if err != nil {
		return err
	}
	return &errs.DuplicateError{Header: header, Report: table.String(), Shown: len(dupes), Total: total}
}
