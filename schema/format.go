package schema

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrMalformedFormat is returned when a recognized logical format carries
// parameters that do not follow its grammar.
var ErrMalformedFormat = errors.New("malformed logical format")

// MaxDecimalPrecision is the widest decimal the output schema can hold.
const MaxDecimalPrecision = 38

type Kind int

const (
	Unrecognized Kind = iota
	Alphanumeric
	NumericShort
	Decimal
	Date
	Timestamp
	Time
)

func (k Kind) String() string {
	switch k {
	case Alphanumeric:
		return "ALPHANUMERIC"
	case NumericShort:
		return "NUMERIC SHORT"
	case Decimal:
		return "DECIMAL"
	case Date:
		return "DATE"
	case Timestamp:
		return "TIMESTAMP"
	case Time:
		return "TIME"
	default:
		return "UNRECOGNIZED"
	}
}

// Format is a parsed logical format. Length is set for Alphanumeric,
// Precision and Scale for Decimal.
type Format struct {
	Kind      Kind
	Raw       string
	Length    int
	Precision int
	Scale     int
}

// Recognized reports whether the format maps to a generator.
func (f Format) Recognized() bool {
	return f.Kind != Unrecognized
}

func (f Format) String() string {
	switch f.Kind {
	case Alphanumeric:
		return fmt.Sprintf("ALPHANUMERIC(%d)", f.Length)
	case Decimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", f.Precision, f.Scale)
	case Unrecognized:
		return f.Raw
	default:
		return f.Kind.String()
	}
}

// PhysicalType returns the destination type for the format. Unrecognized
// formats have no physical type.
func (f Format) PhysicalType() (PhysicalType, bool) {
	switch f.Kind {
	case Alphanumeric:
		return StringType(), true
	case NumericShort:
		return Int64Type(), true
	case Decimal:
		return DecimalType(int32(f.Precision), int32(f.Scale)), true
	case Date:
		return Date32Type(), true
	case Timestamp:
		return TimestampMillisType(), true
	case Time:
		return Time32MillisType(), true
	}
	return PhysicalType{}, false
}

var (
	alphanumericRe = regexp.MustCompile(`^ALPHANUMERIC\(([0-9]*)\)`)
	decimalRe      = regexp.MustCompile(`^DECIMAL\(([0-9]*),?([0-9]*)\)`)
)

// ParseFormat parses a logical format string by prefix. TIMESTAMP is tested
// before TIME. An unknown prefix is not an error: the returned Format has
// Kind Unrecognized.
func ParseFormat(raw string) (Format, error) {
	f := Format{Raw: raw}

	switch {
	case strings.HasPrefix(raw, "ALPHANUMERIC"):
		m := alphanumericRe.FindStringSubmatch(raw)
		if m == nil {
			return f, fmt.Errorf("%w: %q does not match ALPHANUMERIC(n)", ErrMalformedFormat, raw)
		}
		n, err := parseParam(raw, "length", m[1])
		if err != nil {
			return f, err
		}
		f.Kind = Alphanumeric
		f.Length = n

	case strings.HasPrefix(raw, "NUMERIC SHORT"):
		f.Kind = NumericShort

	case strings.HasPrefix(raw, "DECIMAL"):
		m := decimalRe.FindStringSubmatch(raw)
		if m == nil {
			return f, fmt.Errorf("%w: %q does not match DECIMAL(p[,s])", ErrMalformedFormat, raw)
		}
		p, err := parseParam(raw, "precision", m[1])
		if err != nil {
			return f, err
		}
		s := 0
		if m[2] != "" {
			if s, err = parseParam(raw, "scale", m[2]); err != nil {
				return f, err
			}
		}
		if p < 1 || p > MaxDecimalPrecision {
			return f, fmt.Errorf("%w: %q precision must be between 1 and %d", ErrMalformedFormat, raw, MaxDecimalPrecision)
		}
		if s > p {
			return f, fmt.Errorf("%w: %q scale %d exceeds precision %d", ErrMalformedFormat, raw, s, p)
		}
		f.Kind = Decimal
		f.Precision = p
		f.Scale = s

	case strings.HasPrefix(raw, "DATE"):
		f.Kind = Date

	case strings.HasPrefix(raw, "TIMESTAMP"):
		f.Kind = Timestamp

	case strings.HasPrefix(raw, "TIME"):
		f.Kind = Time
	}

	return f, nil
}

func parseParam(raw, name, text string) (int, error) {
	if text == "" {
		return 0, fmt.Errorf("%w: %q is missing its %s", ErrMalformedFormat, raw, name)
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("%w: %q has invalid %s %q", ErrMalformedFormat, raw, name, text)
	}
	return n, nil
}
