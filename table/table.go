// Package table assembles generated columns into an ordered table and
// derives the output schema the writer casts to.
package table

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/rmugicag/pyquet/schema"
)

type Column struct {
	Name   string
	Type   schema.PhysicalType
	Values []any
}

type Field struct {
	Name string              `json:"name"`
	Type schema.PhysicalType `json:"type"`
}

// Schema is the ordered list of output fields.
type Schema struct {
	Fields []Field
}

func (s Schema) Len() int { return len(s.Fields) }

func (s Schema) Names() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// FieldIndex returns the position of name, or -1.
func (s Schema) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Arrow returns the equivalent Arrow schema.
func (s Schema) Arrow() *arrow.Schema {
	fields := make([]arrow.Field, len(s.Fields))
	for i, f := range s.Fields {
		fields[i] = arrow.Field{Name: f.Name, Type: f.Type.Arrow(), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func (s Schema) String() string {
	parts := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		parts[i] = f.Name + ": " + f.Type.String()
	}
	return strings.Join(parts, "\n")
}

// Table is an ordered set of equally long columns. Setting a column whose
// name already exists replaces its values and type but keeps its position.
type Table struct {
	cols  []Column
	index map[string]int
}

func New() *Table {
	return &Table{index: map[string]int{}}
}

func (t *Table) Set(col Column) error {
	i, exists := t.index[col.Name]
	onlyColumn := exists && len(t.cols) == 1
	if len(t.cols) > 0 && !onlyColumn && len(col.Values) != t.RowCount() {
		return fmt.Errorf("column %q has %d values, table has %d rows", col.Name, len(col.Values), t.RowCount())
	}
	if exists {
		t.cols[i] = col
		return nil
	}
	t.index[col.Name] = len(t.cols)
	t.cols = append(t.cols, col)
	return nil
}

func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.cols[i], true
}

func (t *Table) Columns() []Column {
	return t.cols
}

func (t *Table) NumCols() int { return len(t.cols) }

func (t *Table) RowCount() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0].Values)
}

// Schema derives the output schema from the declared column types, not
// from the runtime values.
func (t *Table) Schema() Schema {
	fields := make([]Field, len(t.cols))
	for i, c := range t.cols {
		fields[i] = Field{Name: c.Name, Type: c.Type}
	}
	return Schema{Fields: fields}
}

// Decimal is an exact decimal value with its scale.
type Decimal struct {
	Num   decimal128.Num
	Scale int32
}

func (d Decimal) String() string {
	return FormatDecimal(d.Num, d.Scale)
}
