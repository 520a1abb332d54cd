package interop

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/JonMunkholm/tabkit/internal/errs"
	"github.com/JonMunkholm/tabkit/internal/frame"
)

var timestampType = &arrow.TimestampType{Unit: arrow.Microsecond, TimeZone: "UTC"}

func arrowType(k kind) arrow.DataType {
	switch k {
	case kindInt:
		return arrow.PrimitiveTypes.Int64
	case kindFloat:
		return arrow.PrimitiveTypes.Float64
	case kindBool:
		return arrow.FixedWidthTypes.Boolean
	case kindTime:
		return timestampType
	default:
		return arrow.BinaryTypes.String
	}
}

// ToArrow builds an Arrow record from f. The caller owns the record and
// must Release it. A nil mem uses the Go allocator.
func ToArrow(f *frame.Frame, includeIndex bool, mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.NewGoAllocator()
	}
	f, err := prepare(f, includeIndex)
	if err != nil {
		return nil, err
	}
	names, err := columnNames(f)
	if err != nil {
		return nil, err
	}

	fields := make([]arrow.Field, f.Width())
	columns := make([][]any, f.Width())
	for c := range fields {
		columns[c] = f.ColumnAt(c).Values()
		fields[c] = arrow.Field{Name: names[c], Type: arrowType(inferKind(columns[c])), Nullable: true}
	}

	b := array.NewRecordBuilder(mem, arrow.NewSchema(fields, nil))
	defer b.Release()

	for c, values := range columns {
		if err := appendValues(b.Field(c), values); err != nil {
			return nil, fmt.Errorf("column %q: %w", names[c], err)
		}
	}
	return b.NewRecord(), nil
}

func appendValues(fb array.Builder, values []any) error {
	for _, v := range values {
		if frame.IsNull(v) {
			fb.AppendNull()
			continue
		}
		switch b := fb.(type) {
		case *array.Int64Builder:
			b.Append(int64(v.(int)))
		case *array.Float64Builder:
			switch x := v.(type) {
			case int:
				b.Append(float64(x))
			case float64:
				b.Append(x)
			}
		case *array.BooleanBuilder:
			b.Append(v.(bool))
		case *array.TimestampBuilder:
			b.Append(arrow.Timestamp(v.(time.Time).UnixMicro()))
		case *array.StringBuilder:
			b.Append(frame.FormatCell(v))
		default:
			return errs.NotImplementedf("unsupported arrow builder %T", fb)
		}
	}
	return nil
}

// FromArrow converts rec to a frame with a default index. Integer and float
// widths are widened, dates and timestamps become time.Time in UTC, and
// other types are rendered with the array's own formatting.
func FromArrow(rec arrow.Record) (*frame.Frame, error) {
	schema := rec.Schema()
	n := int(rec.NumRows())
	columns := make([]frame.Label, rec.NumCols())
	data := make([][]any, rec.NumCols())

	for c := range columns {
		columns[c] = schema.Field(c).Name
		arr := rec.Column(c)
		vals := make([]any, n)
		for i := 0; i < n; i++ {
			if arr.IsNull(i) {
				continue
			}
			vals[i] = arrowValue(arr, i)
		}
		data[c] = vals
	}
	if len(columns) == 0 {
		ix := frame.RangeIndex(n)
		return frame.New(nil, nil, &ix)
	}
	return frame.New(columns, data, nil)
}

func arrowValue(arr arrow.Array, i int) any {
	switch a := arr.(type) {
	case *array.Int64:
		return int(a.Value(i))
	case *array.Int32:
		return int(a.Value(i))
	case *array.Int16:
		return int(a.Value(i))
	case *array.Int8:
		return int(a.Value(i))
	case *array.Uint32:
		return int(a.Value(i))
	case *array.Float64:
		return a.Value(i)
	case *array.Float32:
		return float64(a.Value(i))
	case *array.Boolean:
		return a.Value(i)
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).UTC()
	case *array.Date32:
		return a.Value(i).ToTime().UTC()
	case *array.Date64:
		return a.Value(i).ToTime().UTC()
	default:
		return a.ValueStr(i)
	}
}
