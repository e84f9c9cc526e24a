package dataset

import (
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/rmugicag/pyquet/table"
)

// Cast builds an Arrow record with one column per field of s, coercing each
// table value to the field type. The first value that cannot be coerced
// aborts the cast with ErrSchemaMismatch wrapping a *table.CastError.
func Cast(t *table.Table, s table.Schema, mem memory.Allocator) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}

	cols := make([]arrow.Array, 0, s.Len())
	release := func() {
		for _, c := range cols {
			c.Release()
		}
	}

	for _, f := range s.Fields {
		col, ok := t.Column(f.Name)
		if !ok {
			release()
			return nil, fmt.Errorf("%w: column %q not in table", ErrSchemaMismatch, f.Name)
		}
		arr, err := buildArray(mem, col, f)
		if err != nil {
			release()
			return nil, err
		}
		cols = append(cols, arr)
	}

	rec := array.NewRecord(s.Arrow(), cols, int64(t.RowCount()))
	release()
	return rec, nil
}

func buildArray(mem memory.Allocator, col table.Column, f table.Field) (arrow.Array, error) {
	b := array.NewBuilder(mem, f.Type.Arrow())
	defer b.Release()
	b.Reserve(len(col.Values))

	for row, v := range col.Values {
		cv, err := table.Coerce(v, f.Type)
		if err == nil {
			err = appendValue(b, cv)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSchemaMismatch, &table.CastError{
				Column: f.Name,
				Row:    row,
				Value:  v,
				Type:   f.Type,
				Err:    err,
			})
		}
	}
	return b.NewArray(), nil
}

func appendValue(b array.Builder, v any) error {
	if v == nil {
		b.AppendNull()
		return nil
	}

	switch b := b.(type) {
	case *array.StringBuilder:
		b.Append(v.(string))
	case *array.Int64Builder:
		b.Append(v.(int64))
	case *array.Decimal128Builder:
		b.Append(v.(decimal128.Num))
	case *array.Date32Builder:
		b.Append(arrow.Date32FromTime(v.(time.Time)))
	case *array.TimestampBuilder:
		ts, err := arrow.TimestampFromTime(v.(time.Time), arrow.Millisecond)
		if err != nil {
			return err
		}
		b.Append(ts)
	case *array.Time32Builder:
		b.Append(arrow.Time32(table.TimeOfDayMillis(v.(time.Time))))
	default:
		return fmt.Errorf("no builder for %T", b)
	}
	return nil
}
