// Package indexing inspects and asserts index metadata: level names,
// default-index detection, monotonicity and null-free values.
//
// Every function reads the object's current index; nothing is cached.
package indexing

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
	"github.com/JonMunkholm/tabkit/internal/validate"
)

// DefaultNameTemplate names unnamed index levels in EnsureNamed.
const DefaultNameTemplate = "level_{level}"

const placeholder = "{level}"

// Names returns one name per index level. When every level is unnamed it
// returns all nils, or an empty slice if dropEmpty is set. When any level is
// named, every level must be named with a non-empty string.
func Names(obj frame.Tabular, dropEmpty bool) ([]frame.Label, error) {
	ix := obj.Index()
	names := ix.Names()
	if len(names) == 0 || ix.NLevels() == 0 {
		return nil, errs.Valuef("index must have at least one level")
	}
	if len(names) != ix.NLevels() {
		return nil, errs.Valuef("length of index names (%d) does not match number of levels (%d)", len(names), ix.NLevels())
	}

	allNil := true
	for _, n := range names {
		if n != nil {
			allNil = false
			break
		}
	}
	if allNil {
		if dropEmpty {
			return []frame.Label{}, nil
		}
		return names, nil
	}
	for _, n := range names {
		if err := validate.Value(n, "index name", validate.Types(validate.String), validate.NotEmpty()); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// HasNamed reports whether at least one index level is named.
func HasNamed(obj frame.Tabular) (bool, error) {
	names, err := Names(obj, true)
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// IsDefault reports whether obj carries the default 0..n-1 row index.
// Compound indexes are never default; with ignoreName false a named level
// is not default either.
func IsDefault(obj frame.Tabular, ignoreName bool) (bool, error) {
	names, err := Names(obj, false)
	if err != nil {
		return false, err
	}
	if len(names) > 1 || !ignoreName && names[0] != nil {
		return false, nil
	}
	ix := obj.Index()
	return ix.Len() == obj.Len() && ix.IsRange(), nil
}

// EnsureNamed returns a copy of obj whose index levels are all named. An
// already named index is left as is; otherwise template (DefaultNameTemplate
// when empty) is expanded per level by replacing "{level}" with the level
// position.
func EnsureNamed[T frame.Object[T]](obj T, template string) (T, error) {
	var zero T
	named, err := HasNamed(obj)
	if err != nil {
		return zero, err
	}
	if named {
		return obj.Copy(), nil
	}
	if template == "" {
		template = DefaultNameTemplate
	}
	if !strings.Contains(template, placeholder) {
		return zero, errs.Valuef("'name_template' argument must include a %q placeholder, got: %q.", placeholder, template)
	}
	names := make([]frame.Label, obj.Index().NLevels())
	for l := range names {
		names[l] = strings.ReplaceAll(template, placeholder, fmt.Sprint(l))
	}
	return obj.SetIndexNames(names)
}

// Direction is the sort order checked by VerifyMonotonic.
type Direction int

const (
	Increasing Direction = iota
	Decreasing
)

func (d Direction) String() string {
	if d == Decreasing {
		return "decreasing"
	}
	return "increasing"
}

// VerifyMonotonic fails unless the index is sorted in the given direction.
// Ties are allowed; an index containing nulls is never sorted.
func VerifyMonotonic(obj frame.Tabular, d Direction) error {
	if !obj.Index().IsMonotonic(d == Increasing) {
		return errs.Valuef("index is not monotonic %s", d)
	}
	return nil
}

type consistency struct {
	expected    []frame.Label
	hasExpected bool
	requireName bool
}

// ConsistencyOption configures VerifyConsistentNames.
type ConsistencyOption func(*consistency)

// WithExpected requires every object's index names to equal names exactly.
// It takes precedence over RequireNamed.
func WithExpected(names ...frame.Label) ConsistencyOption {
	return func(c *consistency) {
		c.expected = names
		c.hasExpected = true
	}
}

// RequireNamed rejects objects with an unnamed index.
func RequireNamed() ConsistencyOption {
	return func(c *consistency) { c.requireName = true }
}

// VerifyConsistentNames checks that objs share identical index names, in
// order, with each other or with the expected names.
func VerifyConsistentNames(objs []frame.Tabular, opts ...ConsistencyOption) error {
	var c consistency
	for _, opt := range opts {
		opt(&c)
	}

	var prior []frame.Label
	for pos, obj := range objs {
		msg := fmt.Sprintf("object at position %d", pos)
		names, err := Names(obj, false)
		if err != nil {
			return err
		}
		if !c.hasExpected && c.requireName {
			named, err := HasNamed(obj)
			if err != nil {
				return err
			}
			if !named {
				return errs.Valuef("%s is missing a named index, got: %s.", msg, formatNames(names))
			}
		}
		msg += " has different index names than"
		if c.hasExpected && !frame.LabelsEqual(names, c.expected) {
			return errs.Valuef("%s expected: %s vs %s.", msg, formatNames(names), formatNames(c.expected))
		}
		if pos > 0 && !frame.LabelsEqual(names, prior) {
			return errs.Valuef("%s the previous object: %s vs %s.", msg, formatNames(names), formatNames(prior))
		}
		prior = names
	}
	return nil
}

// VerifyValuesNotNull fails if any index level holds a null value.
func VerifyValuesNotNull(obj frame.Tabular) error {
	ix := obj.Index()
	names := ix.Names()
	for l := 0; l < ix.NLevels(); l++ {
		if !ix.HasNulls(l) {
			continue
		}
		label := fmt.Sprintf("level %d", l)
		if names[l] != nil {
			label += fmt.Sprintf(" (%q)", frame.FormatLabel(names[l]))
		}
		return errs.New(errs.ErrNull, "NaNs detected in %s index values.", label)
	}
	return nil
}

func formatNames(names []frame.Label) string {
	parts := make([]string, len(names))
	for i, n := range names {
		if s, ok := n.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
		} else {
			parts[i] = frame.FormatLabel(n)
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
