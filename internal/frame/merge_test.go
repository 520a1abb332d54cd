package frame_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
)

func orders() *frame.Frame {
	return frame.MustFromRows(frame.Labels("k", "qty"), [][]any{
		{1, 10},
		{2, 20},
		{4, 40},
	}, nil)
}

func prices() *frame.Frame {
	return frame.MustFromRows(frame.Labels("k", "price"), [][]any{
		{2, 2.5},
		{3, 3.5},
		{1, 1.5},
	}, nil)
}

func column(t *testing.T, f *frame.Frame, label frame.Label) []any {
	t.Helper()
	s, err := f.Column(label)
	require.NoError(t, err)
	return s.Values()
}

func TestMerge_Kinds(t *testing.T) {
	tests := []struct {
		how   frame.How
		k     []any
		qty   []any
		price []any
	}{
		{frame.Left, []any{1, 2, 4}, []any{10, 20, 40}, []any{1.5, 2.5, nil}},
		{frame.Inner, []any{1, 2}, []any{10, 20}, []any{1.5, 2.5}},
		{frame.Right, []any{2, 3, 1}, []any{20, nil, 10}, []any{2.5, 3.5, 1.5}},
		{frame.Outer, []any{1, 2, 4, 3}, []any{10, 20, 40, nil}, []any{1.5, 2.5, nil, 3.5}},
	}

	for _, tt := range tests {
		t.Run(string(tt.how), func(t *testing.T) {
			out, err := frame.Merge(orders(), prices(), frame.MergeOptions{
				How:     tt.how,
				LeftOn:  frame.Labels("k"),
				RightOn: frame.Labels("k"),
			})
			require.NoError(t, err)
			assert.Equal(t, frame.Labels("k", "qty", "price"), out.Columns())
			assert.Equal(t, tt.k, column(t, out, "k"))
			assert.Equal(t, tt.qty, column(t, out, "qty"))
			assert.Equal(t, tt.price, column(t, out, "price"))
			assert.True(t, out.Index().IsRange())
		})
	}
}

func TestMerge_Suffixes(t *testing.T) {
	right := frame.MustFromRows(frame.Labels("k", "qty"), [][]any{{1, 99}}, nil)
	out, err := frame.Merge(orders(), right, frame.MergeOptions{
		How:     frame.Left,
		LeftOn:  frame.Labels("k"),
		RightOn: frame.Labels("k"),
	})
	require.NoError(t, err)
	assert.Equal(t, frame.Labels("k", "qty_x", "qty_y"), out.Columns())
}

func TestMerge_DifferentKeyNames(t *testing.T) {
	right := frame.MustFromRows(frame.Labels("id", "price"), [][]any{{2, 2.5}}, nil)
	out, err := frame.Merge(orders(), right, frame.MergeOptions{
		How:     frame.Inner,
		LeftOn:  frame.Labels("k"),
		RightOn: frame.Labels("id"),
	})
	require.NoError(t, err)
	assert.Equal(t, frame.Labels("k", "qty", "id", "price"), out.Columns())
	assert.Equal(t, []any{2, 20, 2, 2.5}, out.Row(0))
}

func TestMerge_Indicator(t *testing.T) {
	out, err := frame.Merge(orders(), prices(), frame.MergeOptions{
		How:       frame.Outer,
		LeftOn:    frame.Labels("k"),
		RightOn:   frame.Labels("k"),
		Indicator: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []any{frame.Both, frame.Both, frame.LeftOnly, frame.RightOnly}, column(t, out, frame.DefaultIndicatorName))

	withCol, err := orders().WithColumn("_merge", []any{0, 0, 0})
	require.NoError(t, err)
	_, err = frame.Merge(withCol, prices(), frame.MergeOptions{
		LeftOn:    frame.Labels("k"),
		RightOn:   frame.Labels("k"),
		Indicator: true,
	})
	require.True(t, errors.Is(err, errs.ErrCollision))
}

func TestMerge_NullKeysMatch(t *testing.T) {
	left := frame.MustFromRows(frame.Labels("k", "a"), [][]any{{nil, 1}}, nil)
	right := frame.MustFromRows(frame.Labels("k", "b"), [][]any{{nil, 2}}, nil)
	out, err := frame.Merge(left, right, frame.MergeOptions{
		How:     frame.Inner,
		LeftOn:  frame.Labels("k"),
		RightOn: frame.Labels("k"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())
}

func TestMerge_ManyToMany(t *testing.T) {
	left := frame.MustFromRows(frame.Labels("k", "a"), [][]any{{1, "a1"}, {1, "a2"}}, nil)
	right := frame.MustFromRows(frame.Labels("k", "b"), [][]any{{1, "b1"}, {1, "b2"}}, nil)
	out, err := frame.Merge(left, right, frame.MergeOptions{
		LeftOn:  frame.Labels("k"),
		RightOn: frame.Labels("k"),
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"b1", "b2", "b1", "b2"}, column(t, out, "b"))
}

func TestMerge_ByIndex(t *testing.T) {
	left, err := orders().SetIndex("k")
	require.NoError(t, err)
	right, err := prices().SetIndex("k")
	require.NoError(t, err)

	out, err := frame.Merge(left, right, frame.MergeOptions{
		How:        frame.Outer,
		LeftIndex:  true,
		RightIndex: true,
	})
	require.NoError(t, err)
	assert.Equal(t, frame.Labels("qty", "price"), out.Columns())
	assert.Equal(t, []frame.Label{"k"}, out.Index().Names())
	assert.Equal(t, []any{1, 2, 4, 3}, out.Index().Level(0))
}

func TestMerge_ParamErrors(t *testing.T) {
	_, err := frame.Merge(orders(), prices(), frame.MergeOptions{LeftOn: frame.Labels("k")})
	require.True(t, errors.Is(err, errs.ErrParam))

	_, err = frame.Merge(orders(), prices(), frame.MergeOptions{LeftIndex: true})
	require.True(t, errors.Is(err, errs.ErrParam))

	_, err = frame.Merge(orders(), prices(), frame.MergeOptions{
		How:     "cross",
		LeftOn:  frame.Labels("k"),
		RightOn: frame.Labels("k"),
	})
	require.True(t, errors.Is(err, errs.ErrValue))
}

func TestConcat_Rows(t *testing.T) {
	a := frame.MustFromRows(frame.Labels("x", "y"), [][]any{{1, 2}}, nil)
	b := frame.MustFromRows(frame.Labels("y", "z"), [][]any{{3, 4}}, nil)

	out, err := frame.Concat([]*frame.Frame{a, b}, frame.ConcatOptions{})
	require.NoError(t, err)
	assert.Equal(t, frame.Labels("x", "y", "z"), out.Columns())
	assert.Equal(t, []any{1, nil}, column(t, out, "x"))
	assert.Equal(t, []any{0, 0}, out.Index().Level(0))

	inner, err := frame.Concat([]*frame.Frame{a, b}, frame.ConcatOptions{Join: frame.Inner, IgnoreIndex: true})
	require.NoError(t, err)
	assert.Equal(t, frame.Labels("y"), inner.Columns())
	assert.True(t, inner.Index().IsRange())
}

func TestConcat_IndexNames(t *testing.T) {
	a, _ := orders().SetIndex("k")
	b, _ := prices().SetIndex("k")
	c := prices()

	out, err := frame.Concat([]*frame.Frame{a, b}, frame.ConcatOptions{})
	require.NoError(t, err)
	assert.Equal(t, []frame.Label{"k"}, out.Index().Names())
	assert.Equal(t, 6, out.Len())

	mixed, err := frame.Concat([]*frame.Frame{a, c}, frame.ConcatOptions{})
	require.NoError(t, err)
	assert.Equal(t, []frame.Label{nil}, mixed.Index().Names())
}

func TestConcat_Columns(t *testing.T) {
	a, _ := orders().SetIndex("k")
	b, _ := prices().SetIndex("k")

	out, err := frame.Concat([]*frame.Frame{a, b}, frame.ConcatOptions{Axis: 1})
	require.NoError(t, err)
	assert.Equal(t, frame.Labels("qty", "price"), out.Columns())
	assert.Equal(t, []any{1, 2, 4, 3}, out.Index().Level(0))
	assert.Equal(t, []any{1.5, 2.5, nil, 3.5}, column(t, out, "price"))

	inner, err := frame.Concat([]*frame.Frame{a, b}, frame.ConcatOptions{Axis: 1, Join: frame.Inner, IgnoreIndex: true})
	require.NoError(t, err)
	assert.Equal(t, []frame.Label{0, 1}, inner.Columns())
	assert.Equal(t, []any{1, 2}, inner.Index().Level(0))
}

func TestConcat_Errors(t *testing.T) {
	_, err := frame.Concat(nil, frame.ConcatOptions{})
	require.True(t, errors.Is(err, errs.ErrValue))

	_, err = frame.Concat([]*frame.Frame{orders()}, frame.ConcatOptions{Axis: 2})
	require.True(t, errors.Is(err, errs.ErrValue))

	dup := frame.MustFromRows(frame.Labels("v"), [][]any{{1}, {2}}, nil)
	dup, _ = dup.WithIndex(frame.MustIndex([]frame.Label{nil}, []any{0, 0}))
	_, err = frame.Concat([]*frame.Frame{dup, orders()}, frame.ConcatOptions{Axis: 1})
	require.True(t, errors.Is(err, errs.ErrDuplicate))
}
