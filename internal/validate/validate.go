// Package validate provides a generic precondition checker for loosely typed
// values (cells, labels, decoded request parameters).
//
// Checks run in a fixed order and the first failure is returned:
//
//  1. type membership (errs.ErrType)
//  2. blacklist membership (errs.ErrValue)
//  3. whitelist membership; a match ends validation early
//  4. emptiness (errs.ErrValue)
//  5. finiteness (errs.ErrType)
//  6. lower then upper numeric bound (errs.ErrValue)
//
// A nil value with NoneOK skips every check.
package validate

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/JonMunkholm/tabkit/internal/errs"
)

// Kind is a coarse runtime type class used for type membership checks.
type Kind int

const (
	String Kind = iota + 1
	Int
	Float
	Bool
	List
	Map
	Time
)

// String returns the display name used in error messages.
func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case List:
		return "list"
	case Map:
		return "map"
	case Time:
		return "time"
	default:
		return "unknown"
	}
}

type bound struct {
	limit     float64
	inclusive bool
}

type options struct {
	kinds     []Kind
	whitelist []any
	blacklist []any
	noneOK    bool
	emptyOK   bool
	finite    bool
	min       *bound
	max       *bound
}

// Option configures a single Value call.
type Option func(*options)

// Types restricts the value to one of the given kinds.
func Types(kinds ...Kind) Option {
	return func(o *options) { o.kinds = append(o.kinds, kinds...) }
}

// Whitelist lists acceptable values. Only entries whose runtime type matches
// the value's type are considered, so mixed-type lists are allowed.
func Whitelist(values ...any) Option {
	return func(o *options) { o.whitelist = append(o.whitelist, values...) }
}

// Blacklist lists prohibited values.
func Blacklist(values ...any) Option {
	return func(o *options) { o.blacklist = append(o.blacklist, values...) }
}

// NoneOK accepts a nil value without further checks.
func NoneOK() Option {
	return func(o *options) { o.noneOK = true }
}

// NotEmpty rejects strings, lists and maps of length zero.
func NotEmpty() Option {
	return func(o *options) { o.emptyOK = false }
}

// Finite rejects NaN and infinite numbers.
func Finite() Option {
	return func(o *options) { o.finite = true }
}

// Min sets a lower bound; inclusive allows equality.
func Min(limit float64, inclusive bool) Option {
	return func(o *options) { o.min = &bound{limit: limit, inclusive: inclusive} }
}

// Max sets an upper bound; inclusive allows equality.
func Max(limit float64, inclusive bool) Option {
	return func(o *options) { o.max = &bound{limit: limit, inclusive: inclusive} }
}

// Value validates v against the given constraints. name identifies the value
// in error messages and defaults to "value".
func Value(v any, name string, opts ...Option) error {
	o := options{emptyOK: true}
	for _, opt := range opts {
		opt(&o)
	}

	if o.noneOK && v == nil {
		return nil
	}
	if name == "" {
		name = "value"
	}

	if len(o.kinds) > 0 && !kindIn(KindOf(v), o.kinds) {
		return errs.Typef("%q must be a %s, got: <%T>.", name, kindNames(o.kinds), v)
	}

	if len(o.blacklist) > 0 && contains(o.blacklist, v) {
		return errs.Valuef("%q cannot be in %v, got: %v.", name, o.blacklist, v)
	}

	if len(o.whitelist) > 0 {
		var typed []any
		for _, w := range o.whitelist {
			if reflect.TypeOf(w) == reflect.TypeOf(v) {
				typed = append(typed, w)
			}
		}
		if len(typed) > 0 {
			if contains(typed, v) {
				return nil
			}
			return errs.Valuef("%q must be in %v, got: %v.", name, o.whitelist, v)
		}
	}

	if !o.emptyOK {
		n, ok := length(v)
		if !ok {
			return errs.Typef("%q has no length, got: <%T>.", name, v)
		}
		if n == 0 {
			return errs.Valuef("%q cannot be empty.", name)
		}
	}

	if o.finite {
		f, ok := toFloat(v)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return errs.Typef("%q must be finite, got: %v.", name, v)
		}
	}

	if o.min == nil && o.max == nil {
		return nil
	}

	f, ok := toFloat(v)
	if !ok {
		return errs.Typef("%q must be numeric to compare against bounds, got: <%T>.", name, v)
	}

	if b := o.min; b != nil {
		symbol := ""
		if b.inclusive && f < b.limit {
			symbol = "≥"
		}
		if !b.inclusive && f <= b.limit {
			symbol = ">"
		}
		if symbol != "" {
			return errs.Valuef("%q must be %s %v, got: %v", name, symbol, b.limit, v)
		}
	}

	if b := o.max; b != nil {
		symbol := ""
		if b.inclusive && f > b.limit {
			symbol = "≤"
		}
		if !b.inclusive && f >= b.limit {
			symbol = "<"
		}
		if symbol != "" {
			return errs.Valuef("%q must be %s %v, got: %v", name, symbol, b.limit, v)
		}
	}

	return nil
}

// KindOf classifies v. It returns 0 for nil and unsupported types.
func KindOf(v any) Kind {
	if v == nil {
		return 0
	}
	if _, ok := v.(time.Time); ok {
		return Time
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.String:
		return String
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int
	case reflect.Float32, reflect.Float64:
		return Float
	case reflect.Bool:
		return Bool
	case reflect.Slice, reflect.Array:
		return List
	case reflect.Map:
		return Map
	default:
		return 0
	}
}

func kindIn(k Kind, kinds []Kind) bool {
	for _, want := range kinds {
		if k == want {
			return true
		}
	}
	return false
}

// kindNames renders kinds as "<a>", "<a> or <b>", "<a>, <b> or <c>".
func kindNames(kinds []Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = "<" + k.String() + ">"
	}
	if len(names) == 1 {
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " or " + names[len(names)-1]
}

func contains(list []any, v any) bool {
	for _, x := range list {
		if reflect.DeepEqual(x, v) {
			return true
		}
	}
	return false
}

func length(v any) (int, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

// Strings validates that every element of list is a non-empty string and
// returns them. name identifies the list in error messages.
func Strings(list any, name string) ([]string, error) {
	switch v := list.(type) {
	case []string:
		for _, s := range v {
			if err := Value(s, name, NotEmpty()); err != nil {
				return nil, err
			}
		}
		return append([]string(nil), v...), nil
	case []any:
		out := make([]string, len(v))
		for i, x := range v {
			if err := Value(x, name, Types(String), NotEmpty()); err != nil {
				return nil, err
			}
			out[i] = x.(string)
		}
		return out, nil
	default:
		return nil, errs.Typef("%q must be a <list> of <string>, got: <%s>.", name, fmt.Sprintf("%T", list))
	}
}
