// Package types provides the numeric value types shared by the stock and costing code.
package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Quantity is a fixed-point stock quantity with 4 decimal places (scale = 1e4).
//
// Stored as BIGINT (scaled integer). Fractional ml/gr are legitimate,
// so comparisons are exact integer comparisons and never truncate.
type Quantity int64

const QuantityScale int64 = 10_000

// MaxQuantity is the largest quantity accepted from input: one billion units.
// Products of two input quantities can still exceed int64, so arithmetic is checked.
const MaxQuantity = Quantity(1_000_000_000 * QuantityScale)

// ErrQuantityOverflow is returned when a result does not fit the fixed-point range.
var ErrQuantityOverflow = errors.New("quantity out of range")

var (
	maxScaled = decimal.NewFromInt(math.MaxInt64)
	minScaled = decimal.NewFromInt(math.MinInt64)
)

func NewQuantityFromFloat64(v float64) Quantity {
	return Quantity(math.Round(v * float64(QuantityScale)))
}

// NewQuantity builds a whole-unit quantity (e.g. 3 cups).
func NewQuantity(units int64) Quantity { return Quantity(units * QuantityScale) }

// NewQuantityFromDecimal rounds d half away from zero at the fourth decimal.
func NewQuantityFromDecimal(d decimal.Decimal) (Quantity, error) {
	scaled := d.Shift(4).Round(0)
	if scaled.GreaterThan(maxScaled) || scaled.LessThan(minScaled) {
		return 0, fmt.Errorf("%w: %s", ErrQuantityOverflow, d.String())
	}
	return Quantity(scaled.IntPart()), nil
}

// ParseQuantity parses a decimal string such as "12.5".
func ParseQuantity(s string) (Quantity, error) {
	return parseQuantityString(s)
}

func (q Quantity) Int64Scaled() int64 { return int64(q) }

func (q Quantity) Float64() float64 { return float64(q) / float64(QuantityScale) }

// Decimal returns the exact decimal value of q.
func (q Quantity) Decimal() decimal.Decimal { return decimal.New(int64(q), -4) }

func (q Quantity) IsZero() bool { return q == 0 }

func (q Quantity) IsPositive() bool { return q > 0 }

func (q Quantity) IsNegative() bool { return q < 0 }

func (q Quantity) Neg() Quantity { return -q }

func (q Quantity) Abs() Quantity {
	if q < 0 {
		return -q
	}
	return q
}

// Mul multiplies two quantities (per-unit amount × line quantity), rounding half away from zero
// at the fourth decimal.
func (q Quantity) Mul(other Quantity) (Quantity, error) {
	return NewQuantityFromDecimal(q.Decimal().Mul(other.Decimal()))
}

// Add returns q + other, or ErrQuantityOverflow instead of wrapping.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	if (other > 0 && q > math.MaxInt64-other) || (other < 0 && q < math.MinInt64-other) {
		return 0, fmt.Errorf("%w: %s + %s", ErrQuantityOverflow, q, other)
	}
	return q + other, nil
}

// Sub returns q - other, or ErrQuantityOverflow instead of wrapping.
func (q Quantity) Sub(other Quantity) (Quantity, error) {
	if other == math.MinInt64 {
		return 0, fmt.Errorf("%w: %s - %s", ErrQuantityOverflow, q, other)
	}
	return q.Add(-other)
}

// Cost prices q at unitCost per unit.
func (q Quantity) Cost(unitCost Money) Money {
	return q.Decimal().Mul(unitCost)
}

// String returns a decimal string with 4 fractional digits.
func (q Quantity) String() string {
	neg := q < 0
	v := q
	if neg {
		v = -v
	}
	intPart := int64(v) / QuantityScale
	frac := int64(v) % QuantityScale
	if neg {
		return fmt.Sprintf("-%d.%04d", intPart, frac)
	}
	return fmt.Sprintf("%d.%04d", intPart, frac)
}

// MarshalJSON encodes Quantity as a JSON number.
func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(q.String()), nil
}

// UnmarshalJSON accepts either a JSON number or string.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}

	if len(data) >= 2 && data[0] == '"' && data[len(data)-1] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}

	parsed, err := parseQuantityString(string(data))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

func parseQuantityString(s string) (Quantity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty quantity")
	}

	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parse quantity: %w", err)
		}
		if math.Abs(f) > MaxQuantity.Float64() {
			return 0, fmt.Errorf("parse quantity %q: %w", s, ErrQuantityOverflow)
		}
		return NewQuantityFromFloat64(f), nil
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("parse quantity: %w", err)
	}
	if d.Exponent() < -4 {
		return 0, fmt.Errorf("parse quantity %q: at most 4 fractional digits", s)
	}
	q, err := NewQuantityFromDecimal(d)
	if err != nil || q > MaxQuantity || q < -MaxQuantity {
		return 0, fmt.Errorf("parse quantity %q: %w", s, ErrQuantityOverflow)
	}
	return q, nil
}
