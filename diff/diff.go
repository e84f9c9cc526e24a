package diff

import (
	"fmt"

	"github.com/rmugicag/pyquet/introspect"
	"github.com/rmugicag/pyquet/schema"
	"github.com/rmugicag/pyquet/table"
)

type OperationType string

const (
	MissingColumn   OperationType = "MISSING_COLUMN"
	ExtraColumn     OperationType = "EXTRA_COLUMN"
	TypeMismatch    OperationType = "TYPE_MISMATCH"
	PartitionColumn OperationType = "PARTITION_COLUMN"
)

type Operation struct {
	Type     OperationType       `json:"type"`
	Column   string              `json:"column"`
	Expected schema.PhysicalType `json:"expected"`
	Actual   schema.PhysicalType `json:"actual"`
}

func (o Operation) String() string {
	switch o.Type {
	case MissingColumn:
		return fmt.Sprintf("column %q (%s) is missing", o.Column, o.Expected)
	case ExtraColumn:
		return fmt.Sprintf("column %q (%s) is not in the schema", o.Column, o.Actual)
	case TypeMismatch:
		return fmt.Sprintf("column %q is %s, expected %s", o.Column, o.Actual, o.Expected)
	case PartitionColumn:
		return fmt.Sprintf("column %q is stored as a partition directory", o.Column)
	}
	return string(o.Type)
}

// DiffSchemas compares the schema a generator run would write with a dataset
// read back from disk
func DiffSchemas(expected table.Schema, ds *introspect.Dataset) []Operation {
	var ops []Operation

	existingCols := map[string]introspect.ExistingColumn{}
	for _, c := range ds.Columns {
		existingCols[c.Name] = c
	}

	for _, f := range expected.Fields {
		col, exists := existingCols[f.Name]
		if !exists {
			ops = append(ops, Operation{Type: MissingColumn, Column: f.Name, Expected: f.Type})
			continue
		}
		if col.Partition {
			ops = append(ops, Operation{Type: PartitionColumn, Column: f.Name, Expected: f.Type, Actual: col.Type})
			continue
		}
		if !Compatible(f.Type, col) {
			ops = append(ops, Operation{Type: TypeMismatch, Column: f.Name, Expected: f.Type, Actual: col.Type})
		}
	}

	for _, c := range ds.Columns {
		if expected.FieldIndex(c.Name) < 0 {
			ops = append(ops, Operation{Type: ExtraColumn, Column: c.Name, Actual: c.Type})
		}
	}

	return ops
}

// Compatible reports whether col can hold values of type expected. Types
// read from file metadata must match exactly; inferred types only have to
// fit
func Compatible(expected schema.PhysicalType, col introspect.ExistingColumn) bool {
	actual := col.Type
	if actual == expected {
		return true
	}
	if !col.Inferred {
		return false
	}

	switch {
	case actual.ID == schema.InvalidID:
		return true
	case expected.ID == schema.StringID:
		return true
	case expected.ID == schema.DecimalID && actual.ID == schema.Int64ID:
		return true
	case expected.ID == schema.DecimalID && actual.ID == schema.DecimalID:
		return actual.Scale <= expected.Scale &&
			actual.Precision-actual.Scale <= expected.Precision-expected.Scale
	}
	return false
}

// HasDifferences reports whether ops contains anything besides partition
// notes
func HasDifferences(ops []Operation) bool {
	for _, op := range ops {
		if op.Type != PartitionColumn {
			return true
		}
	}
	return false
}
