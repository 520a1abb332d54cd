// Package coerce converts loosely typed input into sequences and tables and
// reports the input's dimensionality so results can be reshaped back.
//
// Accepted input shapes:
//
//   - *frame.Frame (2-D) and *frame.Series (1-D)
//   - frame.Index: dimensionality is min(levels, 2)
//   - Mapping, or any Go map: ≤1 entry is 1-D, more is 2-D
//   - Set: 1-D
//   - slices and arrays: one dimension per nesting level, jagged nesting
//     counts the deepest element
//   - anything else, including nil and strings: a 0-D scalar
package coerce

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
	"github.com/JonMunkholm/tabkit/internal/validate"
)

// DefaultName prefixes the labels given to unnamed results.
const DefaultName = "unnamed"

// Entry is one key/value pair of a Mapping.
type Entry struct {
	Key   frame.Label
	Value any
}

// Mapping is an ordered collection of named values. Go maps are accepted as
// well and are read in sorted key order.
type Mapping []Entry

// Set is an unordered collection of values; it is always one-dimensional.
// Elements are used in the order given.
type Set []any

type shape int

const (
	shapeScalar shape = iota
	shapeNative
	shapeMapping
	shapeSet
	shapeSeries
	shapeFrame
	shapeIndex
)

// input is the classified form of a caller's data, computed once per call.
type input struct {
	shape   shape
	dim     int
	data    any
	mapping Mapping
}

func classify(data any) (input, error) {
	in := input{data: data}
	switch v := data.(type) {
	case *frame.Frame:
		in.shape, in.dim = shapeFrame, 2
	case *frame.Series:
		in.shape, in.dim = shapeSeries, 1
	case frame.Index:
		in.shape, in.dim = shapeIndex, min(v.NLevels(), 2)
	case Set:
		in.shape, in.dim = shapeSet, 1
	default:
		if m, ok := asMapping(data); ok {
			in.shape, in.mapping = shapeMapping, m
			in.dim = min(max(len(m), 1), 2)
			break
		}
		in.dim = ndim(reflect.ValueOf(data))
		if in.dim > 0 {
			in.shape = shapeNative
		}
	}
	if in.dim > 2 {
		return input{}, errs.New(errs.ErrShape, "expected ndim to be ≤ 2, got: %d. Invalid 'data' argument of type <%T>:\n\n%v.", in.dim, data, data)
	}
	return in, nil
}

// Dim returns the dimensionality of data without converting it.
func Dim(data any) (int, error) {
	in, err := classify(data)
	if err != nil {
		return 0, err
	}
	return in.dim, nil
}

func asMapping(data any) (Mapping, bool) {
	if m, ok := data.(Mapping); ok {
		return m, true
	}
	rv := reflect.ValueOf(data)
	if rv.Kind() != reflect.Map {
		return nil, false
	}
	keys := rv.MapKeys()
	out := make(Mapping, len(keys))
	for i, k := range keys {
		out[i] = Entry{Key: frame.Normalize(k.Interface()), Value: rv.MapIndex(k).Interface()}
	}
	sort.SliceStable(out, func(i, j int) bool { return frame.Compare(out[i].Key, out[j].Key) < 0 })
	return out, true
}

func isList(rv reflect.Value) bool {
	if !rv.IsValid() {
		return false
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

// ndim counts list nesting. A list is one dimension deeper than its deepest
// element, so jagged lists resolve to their deepest branch.
func ndim(rv reflect.Value) int {
	for rv.IsValid() && rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	if !isList(rv) {
		return 0
	}
	deepest := 0
	for i := 0; i < rv.Len(); i++ {
		deepest = max(deepest, ndim(rv.Index(i)))
	}
	return 1 + deepest
}

func listValues(data any) []any {
	rv := reflect.ValueOf(data)
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

type options struct {
	name    string
	skipped bool
}

// Option configures ToSeries and ToFrame.
type Option func(*options)

// WithDefaultName sets the prefix given to unnamed results ("unnamed" by
// default).
func WithDefaultName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithoutDefaultName leaves unnamed results unnamed.
func WithoutDefaultName() Option {
	return func(o *options) { o.skipped = true }
}

func resolve(opts []Option) (options, error) {
	o := options{name: DefaultName}
	for _, opt := range opts {
		opt(&o)
	}
	if !o.skipped {
		if err := validate.Value(o.name, "default_name", validate.Types(validate.String), validate.NotEmpty()); err != nil {
			return o, err
		}
	}
	return o, nil
}

// ToSeries coerces data to a sequence and returns it with the input's
// dimensionality. The result never aliases the input.
func ToSeries(data any, opts ...Option) (*frame.Series, int, error) {
	o, err := resolve(opts)
	if err != nil {
		return nil, 0, err
	}
	in, err := classify(data)
	if err != nil {
		return nil, 0, err
	}
	s, err := toSeries(in)
	if err != nil {
		return nil, 0, err
	}
	if !o.skipped && s.Name() == nil {
		s = s.Rename(o.name + "_0")
	}
	return s, in.dim, nil
}

func toSeries(in input) (*frame.Series, error) {
	switch in.shape {
	case shapeSeries:
		return in.data.(*frame.Series).Copy(), nil
	case shapeFrame:
		f := in.data.(*frame.Frame)
		if f.Width() != 1 {
			return nil, errs.New(errs.ErrShape, "only tables with exactly 1 column may be converted to sequences, got %d columns", f.Width())
		}
		return f.ColumnAt(0), nil
	case shapeMapping:
		switch len(in.mapping) {
		case 0:
			return frame.NewSeries(nil, nil, nil)
		case 1:
			s, _, err := ToSeries(in.mapping[0].Value)
			if err != nil {
				return nil, err
			}
			return s.Rename(in.mapping[0].Key), nil
		default:
			return nil, errs.New(errs.ErrShape, "mapping argument cannot have more than 1 key, got %d keys", len(in.mapping))
		}
	case shapeSet:
		return frame.NewSeries(nil, []any(in.data.(Set)), nil)
	case shapeIndex:
		ix := in.data.(frame.Index)
		if ix.NLevels() != 1 {
			break
		}
		return frame.NewSeries(nil, ix.Level(0), nil)
	}

	switch in.dim {
	case 0:
		return frame.NewSeries(nil, []any{in.data}, nil)
	case 1:
		return frame.NewSeries(nil, listValues(in.data), nil)
	}
	return nil, errs.New(errs.ErrShape, "expected ndim to be ≤ 1, got: %d. Sequence coercion failed for 'data': %v", in.dim, in.data)
}

// ToFrame coerces data to a table and returns it with the input's
// dimensionality. The result never aliases the input.
func ToFrame(data any, opts ...Option) (*frame.Frame, int, error) {
	o, err := resolve(opts)
	if err != nil {
		return nil, 0, err
	}
	in, err := classify(data)
	if err != nil {
		return nil, 0, err
	}
	f, err := toFrame(in)
	if err != nil {
		return nil, 0, err
	}
	if !o.skipped && hasDefaultColumns(f) {
		labels := make([]frame.Label, f.Width())
		for i := range labels {
			labels[i] = fmt.Sprintf("%s_%d", o.name, i)
		}
		if f, err = f.SetColumns(labels); err != nil {
			return nil, 0, err
		}
	}
	return f, in.dim, nil
}

func toFrame(in input) (*frame.Frame, error) {
	switch in.shape {
	case shapeFrame:
		return in.data.(*frame.Frame).Copy(), nil
	case shapeSeries:
		return in.data.(*frame.Series).ToFrame(), nil
	case shapeIndex:
		return indexFrame(in.data.(frame.Index))
	case shapeMapping:
		if len(in.mapping) == 0 {
			break
		}
		parts := make([]*frame.Frame, len(in.mapping))
		for i, e := range in.mapping {
			s, _, err := ToSeries(e.Value)
			if err != nil {
				return nil, err
			}
			parts[i] = s.Rename(e.Key).ToFrame()
		}
		return frame.Concat(parts, frame.ConcatOptions{Axis: 1, Join: frame.Outer})
	}

	if in.dim <= 1 {
		s, _, err := ToSeries(in.data, WithoutDefaultName())
		if err != nil {
			return nil, err
		}
		return s.ToFrame(), nil
	}
	return nativeFrame(listValues(in.data))
}

// indexFrame turns index levels into columns, dropping the row labels.
func indexFrame(ix frame.Index) (*frame.Frame, error) {
	names := ix.Names()
	data := make([][]any, ix.NLevels())
	for l, n := range names {
		if n == nil {
			names[l] = l
		}
		data[l] = ix.Level(l)
	}
	return frame.New(names, data, nil)
}

// nativeFrame builds a table from nested rows, padding short rows with
// nulls. Columns get positional labels.
func nativeFrame(rows []any) (*frame.Frame, error) {
	width := 0
	cells := make([][]any, len(rows))
	for i, r := range rows {
		rv := reflect.ValueOf(r)
		for rv.IsValid() && rv.Kind() == reflect.Interface {
			rv = rv.Elem()
		}
		if !isList(rv) {
			return nil, errs.New(errs.ErrShape, "row %d is not a list, got: <%T>", i, r)
		}
		cells[i] = listValues(rv.Interface())
		width = max(width, len(cells[i]))
	}
	columns := make([]frame.Label, width)
	for c := range columns {
		columns[c] = c
	}
	for i, row := range cells {
		if len(row) < width {
			cells[i] = append(row, make([]any, width-len(row))...)
		}
	}
	return frame.FromRows(columns, cells, nil)
}

// hasDefaultColumns reports whether every column label is its own integer
// position.
func hasDefaultColumns(f *frame.Frame) bool {
	for i, c := range f.Columns() {
		n, ok := c.(int)
		if !ok || n != i {
			return false
		}
	}
	return true
}

// Value is a coerced value of a known dimensionality: exactly one of
// Scalar (Dim 0), Series (Dim 1) or Frame (Dim 2) is meaningful.
type Value struct {
	Dim    int
	Scalar any
	Series *frame.Series
	Frame  *frame.Frame
}

// Any returns the meaningful field.
func (v Value) Any() any {
	switch v.Dim {
	case 0:
		return v.Scalar
	case 1:
		return v.Series
	default:
		return v.Frame
	}
}

// ToDim reshapes data to dim: 0 for a scalar, 1 for a sequence, 2 for a
// table.
func ToDim(data any, dim int) (Value, error) {
	if dim < 0 || dim > 2 {
		return Value{}, errs.New(errs.ErrUnsupportedDim, "unsupported ndim=%d", dim)
	}
	if dim == 2 {
		f, _, err := ToFrame(data)
		if err != nil {
			return Value{}, err
		}
		return Value{Dim: 2, Frame: f}, nil
	}

	s, _, err := ToSeries(data)
	if err != nil {
		return Value{}, err
	}
	if dim == 1 {
		return Value{Dim: 1, Series: s}, nil
	}
	if s.Len() != 1 {
		return Value{}, errs.New(errs.ErrShape, "cannot reduce sequence of length %d to scalar:\n\n%s", s.Len(), s)
	}
	return Value{Dim: 0, Scalar: s.Value(0)}, nil
}

// Preserve coerces data to a table, applies fn and reshapes the result back
// to the input's dimensionality.
func Preserve(data any, fn func(*frame.Frame) (*frame.Frame, error)) (Value, error) {
	f, dim, err := ToFrame(data, WithoutDefaultName())
	if err != nil {
		return Value{}, err
	}
	unnamed := dim < 2 && f.Width() == 1 && frame.Equal(f.Columns()[0], 0)
	out, err := fn(f)
	if err != nil {
		return Value{}, err
	}
	if dim == 2 {
		return Value{Dim: 2, Frame: out}, nil
	}
	v, err := ToDim(out, dim)
	if err != nil {
		return Value{}, err
	}
	if v.Series != nil && unnamed {
		v.Series = v.Series.Rename(nil)
	}
	return v, nil
}
