package earnings

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// NUMBER - Decimal that never fails to decode
// =============================================================================

// Number is a decimal input value. It decodes leniently: numbers, numeric
// strings, null, booleans and any other JSON value are accepted, and anything
// that does not parse as a number becomes zero. The zero value is 0.
type Number struct {
	decimal.Decimal
}

func NewNumber(v float64) Number { return Number{Decimal: Coerce(v)} }

func NumberFromString(s string) Number { return Number{Decimal: Coerce(s)} }

// UnmarshalJSON never returns an error.
func (n *Number) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		n.Decimal = decimal.Zero
		return nil
	}
	n.Decimal = Coerce(v)
	return nil
}

// MarshalJSON writes a bare JSON number.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(n.Decimal.String()), nil
}

func (n Number) add(o Number) Number { return Number{Decimal: n.Decimal.Add(o.Decimal)} }
func (n Number) round() Number        { return Number{Decimal: Round2(n.Decimal)} }

// Count is an integer input value with the same lenient decoding as Number.
// Fractions are truncated toward zero. Values beyond ±MaxCount read as zero,
// which also keeps sums of counts far from int overflow.
type Count int

const MaxCount = math.MaxInt32

var maxCount = decimal.NewFromInt(MaxCount)

func (c *Count) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		*c = 0
		return nil
	}
	*c = CountOf(Coerce(v))
	return nil
}

// CountOf truncates d to a Count, or returns 0 when it is out of range.
func CountOf(d decimal.Decimal) Count {
	if d.Abs().GreaterThan(maxCount) {
		return 0
	}
	return Count(d.IntPart())
}

// =============================================================================
// COERCION
// =============================================================================

var numericPrefix = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d+)?|\.\d+)(?:[eE][+-]?\d+)?`)

// Coerce converts an arbitrary value into a decimal. Strings are read up to
// the first character that cannot continue a number, so "12.5km" is 12.5.
// Unparseable values, NaN and infinities become zero.
func Coerce(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case Number:
		return x.Decimal
	case float64:
		return fromFloat(x)
	case float32:
		return fromFloat(float64(x))
	case int:
		return decimal.NewFromInt(int64(x))
	case int32:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case Count:
		return decimal.NewFromInt(int64(x))
	case json.Number:
		return parseLeading(x.String())
	case string:
		return parseLeading(x)
	default:
		return decimal.Zero
	}
}

func fromFloat(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

// parseLeading reads the numeric prefix of s. Values outside the float64
// range read as zero, like NaN and infinities.
func parseLeading(s string) decimal.Decimal {
	match := numericPrefix.FindString(strings.TrimSpace(s))
	if match == "" {
		return decimal.Zero
	}
	f, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return decimal.Zero
	}
	return fromFloat(f)
}

// =============================================================================
// ROUNDING
// =============================================================================

var half = decimal.New(5, -1)

// Round2 rounds to 2 decimal places with ties going toward positive infinity:
// 1.005 becomes 1.01 and -1.005 becomes -1.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Shift(2).Add(half).Floor().Shift(-2)
}
