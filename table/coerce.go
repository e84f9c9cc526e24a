package table

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow/decimal128"
	"github.com/rmugicag/pyquet/catalog"
	"github.com/rmugicag/pyquet/schema"
)

// Canonical layouts for temporal values.
const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
	TimeLayout      = "15:04:05"
)

var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	DateLayout,
}

var errUnsupported = errors.New("unsupported value")

// CastError reports a value that cannot be converted to its column type.
type CastError struct {
	Column string
	Row    int
	Value  any
	Type   schema.PhysicalType
	Err    error
}

func (e *CastError) Error() string {
	msg := fmt.Sprintf("column %q row %d: cannot cast %v (%T) to %s", e.Column, e.Row, e.Value, e.Value, e.Type)
	if e.Err != nil && !errors.Is(e.Err, errUnsupported) {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CastError) Unwrap() error { return e.Err }

// Coerce converts a token to the Go value used for t: string, int64,
// decimal128.Num or time.Time. nil stays nil.
func Coerce(v any, t schema.PhysicalType) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t.ID {
	case schema.StringID:
		return ToString(v)
	case schema.Int64ID:
		return ToInt64(v)
	case schema.DecimalID:
		return ToDecimal(v, t.Precision, t.Scale)
	case schema.Date32ID:
		return ToDate(v)
	case schema.TimestampMillisID:
		return ToTimestamp(v)
	case schema.Time32MillisID:
		return ToTime(v)
	}
	return nil, fmt.Errorf("unknown type %s", t)
}

func ToString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case int:
		return strconv.Itoa(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case catalog.Number:
		return string(x), nil
	case Decimal:
		return x.String(), nil
	case time.Time:
		return x.Format(TimestampLayout), nil
	}
	return "", errUnsupported
}

func ToInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case float64:
		return floatToInt(x)
	case catalog.Number:
		return parseInt(string(x))
	case string:
		return parseInt(x)
	}
	return 0, errUnsupported
}

func parseInt(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return floatToInt(f)
}

func floatToInt(f float64) (int64, error) {
	if f != math.Trunc(f) || math.Abs(f) >= 1<<63 {
		return 0, fmt.Errorf("%v is not integral", f)
	}
	return int64(f), nil
}

// ToDecimal converts a token to a decimal with the given precision and
// scale. Extra fraction digits are rounded half away from zero; values
// wider than the precision fail.
func ToDecimal(v any, precision, scale int32) (decimal128.Num, error) {
	r, err := toRat(v)
	if err != nil {
		return decimal128.Num{}, err
	}

	r.Mul(r, new(big.Rat).SetInt(pow10(scale)))
	i := roundHalfAway(r)
	if i.BitLen() > 127 {
		return decimal128.Num{}, fmt.Errorf("%v does not fit precision %d", v, precision)
	}
	n := decimal128.FromBigInt(i)
	if !n.FitsInPrecision(precision) {
		return decimal128.Num{}, fmt.Errorf("%v does not fit precision %d", v, precision)
	}
	return n, nil
}

func toRat(v any) (*big.Rat, error) {
	switch x := v.(type) {
	case Decimal:
		return new(big.Rat).SetFrac(x.Num.BigInt(), pow10(x.Scale)), nil
	case int64:
		return new(big.Rat).SetInt64(x), nil
	case int:
		return new(big.Rat).SetInt64(int64(x)), nil
	case int32:
		return new(big.Rat).SetInt64(int64(x)), nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, fmt.Errorf("%v is not a finite number", x)
		}
		return new(big.Rat).SetFloat64(x), nil
	case catalog.Number:
		return parseRat(string(x))
	case string:
		return parseRat(x)
	}
	return nil, errUnsupported
}

func parseRat(s string) (*big.Rat, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.Contains(s, "/") {
		return nil, fmt.Errorf("not a decimal: %q", s)
	}
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("not a decimal: %q", s)
	}
	return r, nil
}

func roundHalfAway(r *big.Rat) *big.Int {
	q, m := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	m.Abs(m).Lsh(m, 1)
	if m.Cmp(r.Denom()) >= 0 {
		q.Add(q, big.NewInt(int64(r.Sign())))
	}
	return q
}

func pow10(n int32) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

// FormatDecimal renders n with exactly scale fraction digits.
func FormatDecimal(n decimal128.Num, scale int32) string {
	b := n.BigInt()
	digits := new(big.Int).Abs(b).String()
	if scale > 0 {
		if len(digits) <= int(scale) {
			digits = strings.Repeat("0", int(scale)-len(digits)+1) + digits
		}
		p := len(digits) - int(scale)
		digits = digits[:p] + "." + digits[p:]
	}
	if b.Sign() < 0 {
		digits = "-" + digits
	}
	return digits
}

func ToDate(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return time.Parse(DateLayout, x.Format(DateLayout))
	case string:
		return time.Parse(DateLayout, strings.TrimSpace(x))
	}
	return time.Time{}, errUnsupported
}

// ToTimestamp drops sub-second precision and the zone, as the canonical
// string does.
func ToTimestamp(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return time.Parse(TimestampLayout, x.Format(TimestampLayout))
	case string:
		s := strings.TrimSpace(x)
		var err error
		for _, layout := range timestampLayouts {
			var ts time.Time
			if ts, err = time.Parse(layout, s); err == nil {
				return time.Parse(TimestampLayout, ts.Format(TimestampLayout))
			}
		}
		return time.Time{}, err
	}
	return time.Time{}, errUnsupported
}

// ToTime keeps only the clock part. The returned value is on year 0.
func ToTime(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		return time.Parse(TimeLayout, x.Format(TimeLayout))
	case string:
		return time.Parse(TimeLayout, strings.TrimSpace(x))
	}
	return time.Time{}, errUnsupported
}

// TimeOfDayMillis returns the milliseconds since midnight of t.
func TimeOfDayMillis(t time.Time) int32 {
	h, m, s := t.Clock()
	return int32(((h*60+m)*60+s)*1000 + t.Nanosecond()/int(time.Millisecond))
}
