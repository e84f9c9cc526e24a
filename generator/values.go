package generator

import (
	"math/big"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/rmugicag/pyquet/schema"
	"github.com/rmugicag/pyquet/table"
)

const (
	alphanumericChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// DefaultIntSize is the upper bound of synthetic NUMERIC SHORT values.
	DefaultIntSize = 1000
	maxDayOffset   = 365 * 5
)

// columnSource yields the raw value of a column at a given row.
type columnSource interface {
	value(row int) any
}

type catalogSource struct {
	values []any
}

func (s catalogSource) value(row int) any {
	return s.values[row%len(s.values)]
}

type syntheticSource func() any

func (f syntheticSource) value(int) any {
	return f()
}

// source picks the catalog values for name when there are any, otherwise
// the synthetic generator.
func (g *DataGenerator) source(name string, synth syntheticSource) columnSource {
	if values, ok := g.Catalog.Values(name); ok {
		return catalogSource{values: values}
	}
	return synth
}

func (g *DataGenerator) fill(src columnSource) []any {
	out := make([]any, g.RowCount)
	for i := range out {
		out[i] = src.value(i)
	}
	return out
}

// GenerateAlphanumeric returns RowCount strings of size characters drawn
// from [A-Za-z0-9], or the catalog values for name.
func (g *DataGenerator) GenerateAlphanumeric(name string, size int) []any {
	return g.fill(g.source(name, func() any {
		var sb strings.Builder
		sb.Grow(size)
		for i := 0; i < size; i++ {
			sb.WriteByte(alphanumericChars[g.Rand.Intn(len(alphanumericChars))])
		}
		return sb.String()
	}))
}

// GenerateInt returns integers in [0, size].
func (g *DataGenerator) GenerateInt(name string, size int) []any {
	return g.fill(g.source(name, func() any {
		return int64(g.Rand.Intn(size + 1))
	}))
}

// GenerateDecimal returns exact decimals whose unscaled value is drawn from
// [0, 10^precision).
func (g *DataGenerator) GenerateDecimal(name string, precision, scale int) []any {
	limit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(precision)), nil)
	return g.fill(g.source(name, func() any {
		n := new(big.Int).Rand(g.Rand, limit)
		return table.Decimal{Num: decimal128.FromBigInt(n), Scale: int32(scale)}
	}))
}

// GenerateDate returns dates up to five years before today.
func (g *DataGenerator) GenerateDate(name string) ([]any, error) {
	values := g.fill(g.source(name, func() any {
		return g.now().AddDate(0, 0, -g.Rand.Intn(maxDayOffset+1))
	}))
	return canonical(name, values, schema.Date32Type(), table.ToDate)
}

// GenerateTimestamp returns timestamps up to five years and a day before now.
func (g *DataGenerator) GenerateTimestamp(name string) ([]any, error) {
	values := g.fill(g.source(name, func() any {
		days := g.Rand.Intn(maxDayOffset + 1)
		return g.now().AddDate(0, 0, -days).Add(-g.clockOffset())
	}))
	return canonical(name, values, schema.TimestampMillisType(), table.ToTimestamp)
}

// GenerateTime returns times of day up to a day before now.
func (g *DataGenerator) GenerateTime(name string) ([]any, error) {
	values := g.fill(g.source(name, func() any {
		return g.now().Add(-g.clockOffset())
	}))
	return canonical(name, values, schema.Time32MillisType(), table.ToTime)
}

func (g *DataGenerator) clockOffset() time.Duration {
	h := g.Rand.Intn(24)
	m := g.Rand.Intn(60)
	s := g.Rand.Intn(60)
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second
}

// canonical passes every value through its canonical string form. nil
// tokens stay nil.
func canonical(name string, values []any, t schema.PhysicalType, parse func(any) (time.Time, error)) ([]any, error) {
	for i, v := range values {
		if v == nil {
			continue
		}
		ts, err := parse(v)
		if err != nil {
			return nil, &table.CastError{Column: name, Row: i, Value: v, Type: t, Err: err}
		}
		values[i] = ts
	}
	return values, nil
}
