package combine_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tabkit/internal/combine"
	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
)

func table(columns []frame.Label, rows ...[]any) *frame.Frame {
	return frame.MustFromRows(columns, rows, nil)
}

func objs(tables ...frame.Tabular) []frame.Tabular { return tables }

func ptr[T any](v T) *T { return &v }

func column(t *testing.T, f *frame.Frame, name string) []any {
	t.Helper()
	s, err := f.Column(name)
	require.NoError(t, err)
	return s.Values()
}

func TestMerge_DefaultsToLeft(t *testing.T) {
	a := table(frame.Labels("k", "v"), []any{1, "a"}, []any{2, "b"}, []any{3, "c"})
	b := table(frame.Labels("k", "w"), []any{2, "x"}, []any{4, "y"})

	out, err := combine.Merge(objs(a, b), combine.Params{On: []string{"k"}})
	require.NoError(t, err)
	assert.Equal(t, frame.Labels("k", "v", "w"), out.Columns())
	assert.Equal(t, []any{1, 2, 3}, column(t, out, "k"))
	assert.Equal(t, []any{nil, "x", nil}, column(t, out, "w"))
	assert.True(t, out.Index().IsRange())
}

func TestMerge_OuterKeepsLeftOrder(t *testing.T) {
	a := table(frame.Labels("k", "v"), []any{2, "a"}, []any{1, "b"})
	b := table(frame.Labels("k", "w"), []any{3, "x"}, []any{1, "y"})

	out, err := combine.Merge(objs(a, b), combine.Params{On: []string{"k"}, How: frame.Outer})
	require.NoError(t, err)
	assert.Equal(t, []any{2, 1, 3}, column(t, out, "k"))
	assert.Equal(t, []any{"a", "b", nil}, column(t, out, "v"))
}

func TestMerge_Anti(t *testing.T) {
	a := table(frame.Labels("k"), []any{1}, []any{2})
	b := table(frame.Labels("k"), []any{2})

	out, err := combine.Merge(objs(a, b), combine.Params{On: []string{"k"}, How: combine.Anti})
	require.NoError(t, err)
	assert.Equal(t, frame.Labels("k"), out.Columns())
	assert.Equal(t, []any{1}, column(t, out, "k"))

	out, err = combine.Merge(objs(a, b), combine.Params{On: []string{"k"}, How: combine.Anti, Indicator: true})
	require.NoError(t, err)
	assert.Equal(t, []any{frame.LeftOnly}, column(t, out, frame.DefaultIndicatorName))
}

func TestMerge_AntiIgnoresRightValueColumns(t *testing.T) {
	a := table(frame.Labels("k", "v"), []any{1, "a"}, []any{2, "b"})
	b := table(frame.Labels("k", "v"), []any{1, "z"})

	out, err := combine.Merge(objs(a, b), combine.Params{On: []string{"k"}, How: combine.Anti})
	require.NoError(t, err)
	assert.Equal(t, frame.Labels("k", "v"), out.Columns())
	assert.Equal(t, []any{"b"}, column(t, out, "v"))
}

func TestMerge_Collision(t *testing.T) {
	a := table(frame.Labels("k", "v"), []any{1, "a"})
	b := table(frame.Labels("k", "v"), []any{1, "b"})

	_, err := combine.Merge(objs(a, b), combine.Params{On: []string{"k"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrCollision))
	assert.True(t, errors.Is(err, errs.ErrValue))

	var de *errs.DuplicateError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "Duplicates detected in left & right column name values", de.Header)
}

func TestMerge_DropsRightOnlyKeys(t *testing.T) {
	a := table(frame.Labels("a", "v"), []any{1, "x"}, []any{2, "y"})
	b := table(frame.Labels("b", "w"), []any{2, "z"})

	out, err := combine.Merge(objs(a, b), combine.Params{LeftOn: []string{"a"}, RightOn: []string{"b"}, How: frame.Inner})
	require.NoError(t, err)
	assert.Equal(t, frame.Labels("a", "v", "w"), out.Columns())
	assert.Equal(t, []any{2}, column(t, out, "a"))
}

func TestMerge_DuplicateKeyDefaults(t *testing.T) {
	dupLeft := table(frame.Labels("k", "v"), []any{1, "a"}, []any{1, "b"})
	right := table(frame.Labels("k", "w"), []any{1, "x"})

	out, err := combine.Merge(objs(dupLeft, right), combine.Params{On: []string{"k"}})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())

	_, err = combine.Merge(objs(dupLeft, right), combine.Params{On: []string{"k"}, LeftDupesOK: ptr(false)})
	require.True(t, errors.Is(err, errs.ErrDuplicate))
	assert.Contains(t, err.Error(), "Duplicates detected in left values")

	dupRight := table(frame.Labels("k", "z"), []any{1, "x"}, []any{1, "y"})
	_, err = combine.Merge(objs(right, dupRight), combine.Params{On: []string{"k"}})
	require.True(t, errors.Is(err, errs.ErrDuplicate))
	assert.Contains(t, err.Error(), "Duplicates detected in right values")

	out, err = combine.Merge(objs(right, dupRight), combine.Params{On: []string{"k"}, RightDupesOK: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, frame.Labels("k", "w", "z"), out.Columns())
	assert.Equal(t, []any{"x", "y"}, column(t, out, "z"))
}

func TestMerge_FoldsManyObjects(t *testing.T) {
	a := table(frame.Labels("k", "a"), []any{1, "a1"}, []any{2, "a2"})
	b := table(frame.Labels("k", "b"), []any{1, "b1"})
	c := table(frame.Labels("k", "c"), []any{2, "c2"})

	out, err := combine.Merge(objs(a, b, c), combine.Params{On: []string{"k", "k"}})
	require.NoError(t, err)
	assert.Equal(t, frame.Labels("k", "a", "b", "c"), out.Columns())
	assert.Equal(t, []any{"b1", nil}, column(t, out, "b"))
	assert.Equal(t, []any{nil, "c2"}, column(t, out, "c"))
}

func TestMerge_RestoresNamedIndex(t *testing.T) {
	a, err := table(frame.Labels("id", "k"), []any{"r1", 1}, []any{"r2", 2}).SetIndex("id")
	require.NoError(t, err)
	b := table(frame.Labels("k", "w"), []any{2, "x"})

	out, err := combine.Merge(objs(a, b), combine.Params{On: []string{"k"}})
	require.NoError(t, err)
	assert.Equal(t, []frame.Label{"id"}, out.Index().Names())
	assert.Equal(t, []any{"r1", "r2"}, out.Index().Level(0))
	assert.Equal(t, frame.Labels("k", "w"), out.Columns())
}

func TestMerge_AcceptsSeries(t *testing.T) {
	a := frame.MustSeries("k", []any{1, 2}, nil)
	b := table(frame.Labels("k", "w"), []any{2, "x"})

	out, err := combine.Merge(objs(a, b), combine.Params{On: []string{"k"}, How: frame.Inner})
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, column(t, out, "w"))
}

func TestMerge_ParamErrors(t *testing.T) {
	a := table(frame.Labels("k"), []any{1})
	b := table(frame.Labels("k"), []any{1})

	tests := []struct {
		name string
		p    combine.Params
		want error
	}{
		{"no keys", combine.Params{}, errs.ErrParam},
		{"on with left_on", combine.Params{On: []string{"k"}, LeftOn: []string{"k"}}, errs.ErrParam},
		{"left_on alone", combine.Params{LeftOn: []string{"k"}}, errs.ErrParam},
		{"uneven keys", combine.Params{LeftOn: []string{"k"}, RightOn: []string{"k", "j"}}, errs.ErrParam},
		{"left_index", combine.Params{On: []string{"k"}, LeftIndex: true}, errs.ErrParam},
		{"none_ok", combine.Params{On: []string{"k"}, NoneOK: ptr(true)}, errs.ErrParam},
		{"empty on", combine.Params{On: []string{}}, errs.ErrValue},
		{"bad how", combine.Params{On: []string{"k"}, How: "cross"}, errs.ErrValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := combine.Merge(objs(a, b), tt.p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}

	_, err := combine.Merge(nil, combine.Params{On: []string{"k"}})
	assert.True(t, errors.Is(err, errs.ErrValue))
	_, err = combine.Merge(objs(a, nil), combine.Params{On: []string{"k"}})
	assert.True(t, errors.Is(err, errs.ErrType))
}

func indexed(t *testing.T, f *frame.Frame, names ...frame.Label) *frame.Frame {
	t.Helper()
	out, err := f.SetIndex(names...)
	require.NoError(t, err)
	return out
}

func TestJoin(t *testing.T) {
	a := indexed(t, table(frame.Labels("k", "v"), []any{1, "a"}, []any{2, "b"}), "k")
	b := indexed(t, table(frame.Labels("k", "w"), []any{2, "x"}, []any{2, "y"}), "k")

	out, err := combine.Join(objs(a, b), combine.Params{})
	require.NoError(t, err)
	assert.Equal(t, []frame.Label{"k"}, out.Index().Names())
	assert.Equal(t, []any{1, 2, 2}, out.Index().Level(0))
	assert.Equal(t, []any{nil, "x", "y"}, column(t, out, "w"))

	out, err = combine.Join(objs(a, b), combine.Params{How: combine.Anti})
	require.NoError(t, err)
	assert.Equal(t, []any{1}, out.Index().Level(0))
	assert.Equal(t, frame.Labels("v"), out.Columns())
}

func TestJoin_IndexNames(t *testing.T) {
	a := indexed(t, table(frame.Labels("k", "v"), []any{1, "a"}), "k")
	b := indexed(t, table(frame.Labels("j", "w"), []any{1, "x"}), "j")

	_, err := combine.Join(objs(a, b), combine.Params{})
	require.True(t, errors.Is(err, errs.ErrValue))
	assert.Contains(t, err.Error(), "different index names")

	unnamed := frame.MustFromRows(frame.Labels("w"), [][]any{{"x"}}, ptr(frame.MustIndex([]frame.Label{nil}, []any{1})))
	out, err := combine.Join(objs(a, unnamed), combine.Params{})
	require.NoError(t, err)
	assert.Equal(t, []frame.Label{"k"}, out.Index().Names())

	_, err = combine.Join(objs(a, unnamed), combine.Params{NoneOK: ptr(false)})
	require.True(t, errors.Is(err, errs.ErrValue))
	assert.Contains(t, err.Error(), "missing a named index")
}

func TestJoin_ParamErrors(t *testing.T) {
	a := indexed(t, table(frame.Labels("k", "v"), []any{1, "a"}), "k")
	b := indexed(t, table(frame.Labels("k", "w"), []any{1, "x"}), "k")

	_, err := combine.Join(objs(a, b), combine.Params{On: []string{"k"}})
	assert.True(t, errors.Is(err, errs.ErrParam))

	_, err = combine.Join(objs(a, b), combine.Params{RightDupesOK: ptr(false)})
	assert.True(t, errors.Is(err, errs.ErrNotImplemented))
	assert.Contains(t, err.Error(), "right_dupes_ok")

	_, err = combine.Join(objs(a, b), combine.Params{RightIndex: true})
	assert.True(t, errors.Is(err, errs.ErrParam))
}

func TestJoin_Collision(t *testing.T) {
	a := indexed(t, table(frame.Labels("k", "v"), []any{1, "a"}), "k")
	b := indexed(t, table(frame.Labels("k", "v"), []any{1, "b"}), "k")

	_, err := combine.Join(objs(a, b), combine.Params{})
	assert.True(t, errors.Is(err, errs.ErrCollision))
}

func TestConcat_Rows(t *testing.T) {
	a := table(frame.Labels("x", "y"), []any{1, 2})
	b := table(frame.Labels("x", "z"), []any{3, 4}, []any{5, 6})

	out, err := combine.Concat(objs(a, b), combine.ConcatParams{})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Len())
	assert.True(t, out.Index().IsRange())
	assert.Equal(t, frame.Labels("x", "y", "z"), out.Columns())
	assert.Equal(t, []any{1, 3, 5}, column(t, out, "x"))

	out, err = combine.Concat(objs(a, b), combine.ConcatParams{How: frame.Inner})
	require.NoError(t, err)
	assert.Equal(t, frame.Labels("x"), out.Columns())

	out, err = combine.Concat(objs(a, b), combine.ConcatParams{IgnoreIndex: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, []any{0, 0, 1}, out.Index().Level(0))
}

func TestConcat_KeepsNamedIndex(t *testing.T) {
	a := indexed(t, table(frame.Labels("k", "v"), []any{"a", 1}), "k")
	b := indexed(t, table(frame.Labels("k", "v"), []any{"b", 2}), "k")

	out, err := combine.Concat(objs(a, b), combine.ConcatParams{})
	require.NoError(t, err)
	assert.Equal(t, []frame.Label{"k"}, out.Index().Names())
	assert.Equal(t, []any{"a", "b"}, out.Index().Level(0))

	plain := table(frame.Labels("v"), []any{3})
	_, err = combine.Concat(objs(a, plain), combine.ConcatParams{})
	require.True(t, errors.Is(err, errs.ErrValue))
}

func TestConcat_Columns(t *testing.T) {
	a := table(frame.Labels("x"), []any{1}, []any{2})
	b := table(frame.Labels("y"), []any{3}, []any{4})

	out, err := combine.Concat(objs(a, b), combine.ConcatParams{Axis: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())
	assert.Equal(t, frame.Labels("x", "y"), out.Columns())
}

func TestConcat_ParamErrors(t *testing.T) {
	a := table(frame.Labels("x"), []any{1})

	_, err := combine.Concat(objs(a, a), combine.ConcatParams{How: frame.Inner, Join: frame.Inner})
	assert.True(t, errors.Is(err, errs.ErrValue))

	_, err = combine.Concat(objs(a, a), combine.ConcatParams{Join: frame.Left})
	assert.True(t, errors.Is(err, errs.ErrValue))

	_, err = combine.Concat(objs(a, a), combine.ConcatParams{Axis: 2})
	assert.True(t, errors.Is(err, errs.ErrValue))
}
