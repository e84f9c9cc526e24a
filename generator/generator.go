// Package generator builds tables of pseudorandom values from a schema
// definition and writes them through the dataset package.
package generator

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/rmugicag/pyquet/catalog"
	"github.com/rmugicag/pyquet/dataset"
	"github.com/rmugicag/pyquet/loader"
	"github.com/rmugicag/pyquet/schema"
	"github.com/rmugicag/pyquet/table"
)

// DefaultNumRows is used when no row count is configured.
const DefaultNumRows = 10

type Config struct {
	Catalog catalog.Catalog
	NumRows int
	// LimitRows sizes the output to the longest catalog list.
	LimitRows bool
	Rand      *rand.Rand
	Now       func() time.Time
	Logf      func(format string, args ...any)
}

type DataGenerator struct {
	Catalog  catalog.Catalog
	RowCount int
	Rand     *rand.Rand
	Now      func() time.Time
	Logf     func(format string, args ...any)
}

// Request describes where and how to write one generated table.
type Request struct {
	OutputType      string
	Partitions      []string
	DestinationPath string
	DestinationDir  string
}

type Result struct {
	Path    string
	Schema  table.Schema
	Table   *table.Table
	Written bool
}

func New(cfg Config) *DataGenerator {
	g := &DataGenerator{
		Catalog:  cfg.Catalog,
		RowCount: cfg.NumRows,
		Rand:     cfg.Rand,
		Now:      cfg.Now,
		Logf:     cfg.Logf,
	}
	if g.Catalog == nil {
		g.Catalog = catalog.Catalog{}
	}
	if cfg.LimitRows && g.Catalog.RowCount() > 0 {
		g.RowCount = g.Catalog.RowCount()
	}
	if g.RowCount <= 0 {
		g.RowCount = DefaultNumRows
	}
	if g.Rand == nil {
		g.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if g.Now == nil {
		g.Now = time.Now
	}
	if g.Logf == nil {
		g.Logf = log.Printf
	}
	return g
}

// MergeFixedValues lays fixed over the catalog. RowCount is left as is.
func (g *DataGenerator) MergeFixedValues(fixed catalog.Catalog) {
	g.Catalog = g.Catalog.Merge(fixed)
}

func (g *DataGenerator) now() time.Time {
	return g.Now()
}

// GenerateFile loads the schema at schemaPath and calls Generate.
func (g *DataGenerator) GenerateFile(schemaPath string, req Request) (*Result, error) {
	def, err := loader.LoadSchema(schemaPath)
	if err != nil {
		return nil, err
	}
	return g.Generate(def, req)
}

// Generate builds a table for def and writes it as requested. Fields with
// an unrecognized logical format are skipped; malformed formats fail before
// anything is generated. An unrecognized output type is reported and
// nothing is written, which is not an error.
func (g *DataGenerator) Generate(def schema.Definition, req Request) (*Result, error) {
	formats := make([]schema.Format, len(def.Fields))
	for i, f := range def.Fields {
		format, err := schema.ParseFormat(f.LogicalFormat)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		formats[i] = format
	}

	tbl := table.New()
	for i, f := range def.Fields {
		format := formats[i]
		if !format.Recognized() {
			g.Logf("Unrecognized logicalFormat: %s", f.LogicalFormat)
			continue
		}
		col, err := g.column(f.Name, format)
		if err != nil {
			return nil, err
		}
		if err := tbl.Set(col); err != nil {
			return nil, err
		}
	}

	res := &Result{
		Path:   dataset.ResolvePath(def, req.DestinationPath, req.DestinationDir),
		Schema: tbl.Schema(),
		Table:  tbl,
	}

	out, ok := dataset.ParseOutputType(req.OutputType)
	if !ok {
		g.Logf("Unrecognized output type: %s Valid options are: csv, parquet", req.OutputType)
		return res, nil
	}
	if out == dataset.Parquet {
		if err := dataset.CheckPartitions(res.Schema, req.Partitions); err != nil {
			return nil, err
		}
	}

	g.Logf("Output schema:\n%s", res.Schema)
	g.Logf("Writing data in: %s", res.Path)
	path, err := dataset.Write(tbl, res.Schema, out, res.Path, req.Partitions)
	if err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	res.Path = path
	res.Written = true
	return res, nil
}

func (g *DataGenerator) column(name string, f schema.Format) (table.Column, error) {
	pt, _ := f.PhysicalType()
	col := table.Column{Name: name, Type: pt}

	var err error
	switch f.Kind {
	case schema.Alphanumeric:
		col.Values = g.GenerateAlphanumeric(name, f.Length)
	case schema.NumericShort:
		col.Values = g.GenerateInt(name, DefaultIntSize)
	case schema.Decimal:
		col.Values = g.GenerateDecimal(name, f.Precision, f.Scale)
	case schema.Date:
		col.Values, err = g.GenerateDate(name)
	case schema.Timestamp:
		col.Values, err = g.GenerateTimestamp(name)
	case schema.Time:
		col.Values, err = g.GenerateTime(name)
	default:
		err = fmt.Errorf("no generator for %s", f.Kind)
	}
	return col, err
}

// OutputSchema returns the schema Generate writes for def without
// generating any values.
func OutputSchema(def schema.Definition) (table.Schema, error) {
	var s table.Schema
	for _, f := range def.Fields {
		format, err := schema.ParseFormat(f.LogicalFormat)
		if err != nil {
			return table.Schema{}, fmt.Errorf("field %q: %w", f.Name, err)
		}
		pt, ok := format.PhysicalType()
		if !ok {
			continue
		}
		if i := s.FieldIndex(f.Name); i >= 0 {
			s.Fields[i].Type = pt
			continue
		}
		s.Fields = append(s.Fields, table.Field{Name: f.Name, Type: pt})
	}
	return s, nil
}
