package dataset

import (
	"fmt"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/rmugicag/pyquet/table"
)

// FormatValue renders row i of arr the way it appears in CSV output and in
// partition directory names. Nulls render as "".
func FormatValue(arr arrow.Array, i int) string {
	if arr.IsNull(i) {
		return ""
	}

	switch a := arr.(type) {
	case *array.String:
		return a.Value(i)
	case *array.LargeString:
		return a.Value(i)
	case *array.Int64:
		return strconv.FormatInt(a.Value(i), 10)
	case *array.Decimal128:
		return table.FormatDecimal(a.Value(i), a.DataType().(*arrow.Decimal128Type).Scale)
	case *array.Date32:
		return a.Value(i).ToTime().Format(table.DateLayout)
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return a.Value(i).ToTime(unit).Format(table.TimestampLayout)
	case *array.Time32:
		unit := a.DataType().(*arrow.Time32Type).Unit
		return a.Value(i).ToTime(unit).Format(table.TimeLayout)
	default:
		return a.ValueStr(i)
	}
}

// stringRecord renders every column of rec to strings, keeping nulls.
func stringRecord(rec arrow.Record, mem memory.Allocator) arrow.Record {
	fields := make([]arrow.Field, rec.NumCols())
	cols := make([]arrow.Array, rec.NumCols())

	for j := range cols {
		col := rec.Column(j)
		b := array.NewStringBuilder(mem)
		b.Reserve(col.Len())
		for i := 0; i < col.Len(); i++ {
			if col.IsNull(i) {
				b.AppendNull()
				continue
			}
			b.Append(FormatValue(col, i))
		}
		cols[j] = b.NewArray()
		b.Release()
		fields[j] = arrow.Field{Name: rec.ColumnName(j), Type: arrow.BinaryTypes.String, Nullable: true}
	}

	out := array.NewRecord(arrow.NewSchema(fields, nil), cols, rec.NumRows())
	for _, c := range cols {
		c.Release()
	}
	return out
}

func partitionSegment(name string, arr arrow.Array, row int) string {
	if arr.IsNull(row) {
		return name + "=" + hiveDefaultPartition
	}
	return fmt.Sprintf("%s=%s", name, escapePartitionValue(FormatValue(arr, row)))
}
