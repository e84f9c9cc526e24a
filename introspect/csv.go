package introspect

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rmugicag/pyquet/dataset"
	"github.com/rmugicag/pyquet/schema"
	"github.com/rmugicag/pyquet/table"
)

var decimalText = regexp.MustCompile(`^-?([0-9]+)(?:\.([0-9]+))?$`)

// typeInference tracks which types every value of a column still fits.
type typeInference struct {
	seen      int
	isInt     bool
	isDate    bool
	isStamp   bool
	isTime    bool
	isDecimal bool
	intDigits int
	scale     int
}

func newTypeInference() *typeInference {
	return &typeInference{isInt: true, isDate: true, isStamp: true, isTime: true, isDecimal: true}
}

func (ti *typeInference) observe(v string) {
	if v == "" {
		return
	}
	ti.seen++

	if ti.isInt {
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			ti.isInt = false
		}
	}
	if ti.isDate {
		if _, err := time.Parse(table.DateLayout, v); err != nil {
			ti.isDate = false
		}
	}
	if ti.isStamp {
		if _, err := time.Parse(table.TimestampLayout, v); err != nil {
			ti.isStamp = false
		}
	}
	if ti.isTime {
		if _, err := time.Parse(table.TimeLayout, v); err != nil {
			ti.isTime = false
		}
	}
	if ti.isDecimal {
		m := decimalText.FindStringSubmatch(v)
		if m == nil {
			ti.isDecimal = false
			return
		}
		ti.intDigits = max(ti.intDigits, len(strings.TrimLeft(m[1], "0")))
		ti.scale = max(ti.scale, len(m[2]))
	}
}

func (ti *typeInference) result() schema.PhysicalType {
	switch {
	case ti.seen == 0:
		return schema.PhysicalType{}
	case ti.isInt:
		return schema.Int64Type()
	case ti.isDate:
		return schema.Date32Type()
	case ti.isStamp:
		return schema.TimestampMillisType()
	case ti.isTime:
		return schema.Time32MillisType()
	case ti.isDecimal && ti.intDigits+ti.scale <= schema.MaxDecimalPrecision:
		return schema.DecimalType(int32(max(ti.intDigits+ti.scale, 1)), int32(ti.scale))
	default:
		return schema.StringType()
	}
}

func readCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &Dataset{Path: path, Format: dataset.CSV, Files: []string{path}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}

	inferences := make([]*typeInference, len(header))
	for i := range inferences {
		inferences[i] = newTypeInference()
	}

	var rows int64
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading row %d: %w", rows+1, err)
		}
		for j, v := range row {
			inferences[j].observe(v)
		}
		rows++
	}

	ds := &Dataset{Path: path, Format: dataset.CSV, Files: []string{path}, RowCount: rows}
	for i, name := range header {
		ds.Columns = append(ds.Columns, ExistingColumn{
			Name:     name,
			Type:     inferences[i].result(),
			Inferred: true,
		})
	}
	return ds, nil
}
