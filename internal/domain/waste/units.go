package waste

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/types"
)

// canonicalUnit folds spelling variants of the convertible units.
var canonicalUnit = map[string]string{
	"g": "g", "gr": "g", "gram": "g", "grams": "g",
	"kg": "kg", "kilogram": "kg", "kilograms": "kg",
	"ml": "ml", "milliliter": "ml", "millilitre": "ml",
	"l": "l", "lt": "l", "liter": "l", "litre": "l",
}

// factor[from][to] multiplies a quantity in from into to.
var factor = map[string]map[string]decimal.Decimal{
	"kg": {"g": decimal.NewFromInt(1000)},
	"g":  {"kg": decimal.New(1, -3)},
	"l":  {"ml": decimal.NewFromInt(1000)},
	"ml": {"l": decimal.New(1, -3)},
}

func normalizeUnit(u string) string {
	u = strings.ToLower(strings.TrimSpace(u))
	if c, ok := canonicalUnit[u]; ok {
		return c
	}
	return u
}

// ConvertQuantity expresses qty, entered in unit from, in the ingredient's stock unit to.
// A blank from means the stock unit. Only mass (kg, g) and volume (l, ml) pairs convert.
func ConvertQuantity(qty types.Quantity, from, to string) (types.Quantity, error) {
	if strings.TrimSpace(from) == "" {
		return qty, nil
	}

	f, t := normalizeUnit(from), normalizeUnit(to)
	if f == t {
		return qty, nil
	}

	if m, ok := factor[f][t]; ok {
		converted, err := types.NewQuantityFromDecimal(qty.Decimal().Mul(m))
		if err != nil {
			return 0, apperror.NewValidation(fmt.Sprintf("%s %s is too large to express in %s", qty, from, to))
		}
		if qty.IsPositive() && !converted.IsPositive() {
			return 0, apperror.NewValidation(fmt.Sprintf("%s %s is too small to express in %s", qty, from, to))
		}
		return converted, nil
	}

	return 0, apperror.NewValidation(fmt.Sprintf("cannot convert %s to %s", from, to)).
		WithDetail("from", from).
		WithDetail("to", to)
}
