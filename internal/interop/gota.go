package interop

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/JonMunkholm/tabkit/internal/frame"
)

// ToGota converts f to a gota dataframe. With includeIndex the index levels
// become leading columns. Time cells are rendered as text since gota has
// no time type.
func ToGota(f *frame.Frame, includeIndex bool) (dataframe.DataFrame, error) {
	f, err := prepare(f, includeIndex)
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	names, err := columnNames(f)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	cols := make([]series.Series, f.Width())
	for c := range cols {
		values := f.ColumnAt(c).Values()
		var t series.Type
		switch inferKind(values) {
		case kindInt:
			t = series.Int
		case kindFloat:
			t = series.Float
		case kindBool:
			t = series.Bool
		default:
			t = series.String
			for i, v := range values {
				if !frame.IsNull(v) {
					values[i] = frame.FormatCell(v)
				}
			}
		}
		for i, v := range values {
			if frame.IsNull(v) {
				values[i] = nil
			}
		}
		cols[c] = series.New(values, t, names[c])
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return dataframe.DataFrame{}, df.Err
	}
	return df, nil
}

// FromGota converts a gota dataframe to a frame with a default index. NA
// elements become nulls.
func FromGota(df dataframe.DataFrame) (*frame.Frame, error) {
	if df.Err != nil {
		return nil, df.Err
	}
	names := df.Names()
	columns := make([]frame.Label, len(names))
	data := make([][]any, len(names))
	for c, name := range names {
		columns[c] = name
		col := df.Col(name)
		data[c] = make([]any, col.Len())
		for i := range data[c] {
			e := col.Elem(i)
			if !e.IsNA() {
				data[c][i] = e.Val()
			}
		}
	}
	if len(names) == 0 {
		return frame.New(nil, nil, nil)
	}
	return frame.New(columns, data, nil)
}

// Describe summarizes every column with gota's descriptive statistics. The
// statistic names form the index.
func Describe(f *frame.Frame) (*frame.Frame, error) {
	df, err := ToGota(f, false)
	if err != nil {
		return nil, err
	}
	out, err := FromGota(df.Describe())
	if err != nil {
		return nil, err
	}
	return out.SetIndex("column")
}
