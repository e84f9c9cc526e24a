package schema

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

type TypeID int

const (
	InvalidID TypeID = iota
	StringID
	Int64ID
	DecimalID
	Date32ID
	TimestampMillisID
	Time32MillisID
)

// PhysicalType is the storage type a column is cast to before writing.
type PhysicalType struct {
	ID        TypeID
	Precision int32 // decimal only
	Scale     int32 // decimal only
}

func StringType() PhysicalType          { return PhysicalType{ID: StringID} }
func Int64Type() PhysicalType           { return PhysicalType{ID: Int64ID} }
func Date32Type() PhysicalType          { return PhysicalType{ID: Date32ID} }
func TimestampMillisType() PhysicalType { return PhysicalType{ID: TimestampMillisID} }
func Time32MillisType() PhysicalType    { return PhysicalType{ID: Time32MillisID} }

func DecimalType(precision, scale int32) PhysicalType {
	return PhysicalType{ID: DecimalID, Precision: precision, Scale: scale}
}

// String uses the same names Arrow prints for the matching type.
func (t PhysicalType) String() string {
	switch t.ID {
	case StringID:
		return "string"
	case Int64ID:
		return "int64"
	case DecimalID:
		return fmt.Sprintf("decimal128(%d, %d)", t.Precision, t.Scale)
	case Date32ID:
		return "date32"
	case TimestampMillisID:
		return "timestamp[ms]"
	case Time32MillisID:
		return "time32[ms]"
	default:
		return "invalid"
	}
}

// MarshalText renders the type by its String name in JSON output.
func (t PhysicalType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Arrow returns the Arrow data type used for the cast and the Parquet writer.
func (t PhysicalType) Arrow() arrow.DataType {
	switch t.ID {
	case StringID:
		return arrow.BinaryTypes.String
	case Int64ID:
		return arrow.PrimitiveTypes.Int64
	case DecimalID:
		return &arrow.Decimal128Type{Precision: t.Precision, Scale: t.Scale}
	case Date32ID:
		return arrow.FixedWidthTypes.Date32
	case TimestampMillisID:
		return &arrow.TimestampType{Unit: arrow.Millisecond}
	case Time32MillisID:
		return &arrow.Time32Type{Unit: arrow.Millisecond}
	default:
		return nil
	}
}

// FromArrow maps an Arrow type read back from a dataset to a PhysicalType.
func FromArrow(dt arrow.DataType) (PhysicalType, bool) {
	switch t := dt.(type) {
	case *arrow.StringType, *arrow.LargeStringType:
		return StringType(), true
	case *arrow.Int64Type:
		return Int64Type(), true
	case *arrow.Decimal128Type:
		return DecimalType(t.Precision, t.Scale), true
	case *arrow.Date32Type:
		return Date32Type(), true
	case *arrow.TimestampType:
		if t.Unit == arrow.Millisecond {
			return TimestampMillisType(), true
		}
	case *arrow.Time32Type:
		if t.Unit == arrow.Millisecond {
			return Time32MillisType(), true
		}
	}
	return PhysicalType{}, false
}
