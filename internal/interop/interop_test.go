package interop

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
)

func sample(t *testing.T) *frame.Frame {
	t.Helper()
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	return frame.MustFromRows(frame.Labels("id", "amount", "paid", "due", "note"), [][]any{
		{1, 1.5, true, day, "a"},
		{2, 2, false, nil, nil},
		{nil, nil, nil, day.AddDate(0, 1, 0), "c"},
	}, nil)
}

func TestInferKind(t *testing.T) {
	tests := []struct {
		name   string
		values []any
		want   kind
	}{
		{"empty", nil, kindNull},
		{"nulls", []any{nil, nil}, kindNull},
		{"ints", []any{1, nil, 3}, kindInt},
		{"widened", []any{1, 2.5}, kindFloat},
		{"bools", []any{true, false}, kindBool},
		{"times", []any{time.Now()}, kindTime},
		{"mixed", []any{1, "x"}, kindString},
		{"bool and int", []any{true, 1}, kindString},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferKind(tt.values))
		})
	}
}

func TestGota_RoundTrip(t *testing.T) {
	df, err := ToGota(sample(t), false)
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "amount", "paid", "due", "note"}, df.Names())
	assert.Equal(t, series.Int, df.Col("id").Type())
	assert.Equal(t, series.Float, df.Col("amount").Type())
	assert.Equal(t, series.Bool, df.Col("paid").Type())
	assert.Equal(t, series.String, df.Col("due").Type())
	assert.Equal(t, 3, df.Nrow())

	back, err := FromGota(df)
	require.NoError(t, err)
	assert.Equal(t, []any{1, 1.5, true, "2024-01-02", "a"}, back.Row(0))
	assert.Equal(t, []any{2, 2.0, false, nil, nil}, back.Row(1))
	assert.Equal(t, []any{nil, nil, nil, "2024-02-02", "c"}, back.Row(2))
}

func TestToGota_IncludeIndex(t *testing.T) {
	f, err := sample(t).SetIndex("id")
	require.NoError(t, err)

	df, err := ToGota(f, true)
	require.NoError(t, err)
	assert.Equal(t, "id", df.Names()[0])

	df, err = ToGota(f, false)
	require.NoError(t, err)
	assert.NotContains(t, df.Names(), "id")
}

func TestToGota_DuplicateNames(t *testing.T) {
	f := frame.MustNew(frame.Labels("a", "a"), [][]any{{1}, {2}}, nil)
	_, err := ToGota(f, false)
	require.True(t, errors.Is(err, errs.ErrDuplicate))
}

func TestFromGota(t *testing.T) {
	df := dataframe.New(
		series.New([]string{"x", "y"}, series.String, "k"),
		series.New([]float64{0.5, 1}, series.Float, "v"),
	)
	f, err := FromGota(df)
	require.NoError(t, err)
	assert.Equal(t, []frame.Label{"k", "v"}, f.Columns())
	assert.True(t, f.Index().IsRange())
	assert.Equal(t, []any{"y", 1.0}, f.Row(1))
}

func TestArrow_RoundTrip(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec, err := ToArrow(sample(t), false, mem)
	require.NoError(t, err)
	defer rec.Release()

	schema := rec.Schema()
	assert.Equal(t, arrow.INT64, schema.Field(0).Type.ID())
	assert.Equal(t, arrow.FLOAT64, schema.Field(1).Type.ID())
	assert.Equal(t, arrow.BOOL, schema.Field(2).Type.ID())
	assert.Equal(t, arrow.TIMESTAMP, schema.Field(3).Type.ID())
	assert.Equal(t, arrow.STRING, schema.Field(4).Type.ID())
	assert.Equal(t, int64(3), rec.NumRows())

	back, err := FromArrow(rec)
	require.NoError(t, err)
	assert.True(t, sample(t).Equal(back), back.String())
}

func TestToArrow_IncludeIndex(t *testing.T) {
	f, err := sample(t).SetIndex("note")
	require.NoError(t, err)

	rec, err := ToArrow(f, true, nil)
	require.NoError(t, err)
	defer rec.Release()
	assert.Equal(t, "note", rec.Schema().Field(0).Name)
	assert.Equal(t, int64(5), rec.NumCols())
}

func TestFromArrow_NarrowTypes(t *testing.T) {
	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "i", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "f", Type: arrow.PrimitiveTypes.Float32},
		{Name: "d", Type: arrow.FixedWidthTypes.Date32},
	}, nil)
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	b.Field(0).(*array.Int32Builder).AppendValues([]int32{7, 0}, []bool{true, false})
	b.Field(1).(*array.Float32Builder).AppendValues([]float32{0.5, 2}, nil)
	b.Field(2).(*array.Date32Builder).AppendValues([]arrow.Date32{
		arrow.Date32FromTime(time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)),
		0,
	}, nil)
	rec := b.NewRecord()
	defer rec.Release()

	f, err := FromArrow(rec)
	require.NoError(t, err)
	assert.Equal(t, []any{7, 0.5, time.Date(2023, 6, 30, 0, 0, 0, 0, time.UTC)}, f.Row(0))
	assert.Equal(t, []any{nil, 2.0, time.Unix(0, 0).UTC()}, f.Row(1))
}

func TestDescribe(t *testing.T) {
	f := frame.MustFromRows(frame.Labels("n", "s"), [][]any{{1, "a"}, {3, "b"}}, nil)
	out, err := Describe(f)
	require.NoError(t, err)

	assert.Equal(t, []frame.Label{"column"}, out.Index().Names())
	assert.Equal(t, []any{"mean"}, out.Index().Key(0))
	assert.Equal(t, []frame.Label{"n", "s"}, out.Columns())
	assert.Equal(t, 2.0, out.Row(0)[0])
}

func TestArrowStream_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteArrowStream(&buf, sample(t), false))

	back, err := ReadArrowStream(&buf)
	require.NoError(t, err)
	assert.True(t, sample(t).Equal(back), back.String())
}

func TestReadArrowStream_Garbage(t *testing.T) {
	_, err := ReadArrowStream(bytes.NewReader([]byte("not arrow")))
	assert.Error(t, err)
}
