package consumption

import (
	"strings"

	"brewpos/internal/domain/catalog"
)

// CupCatalog maps the (temperature, size) axes to the ingredient that stocks that cup.
type CupCatalog struct {
	names map[catalog.Temperature]map[catalog.Size]string
}

// NewCupCatalog builds a catalog from keys like "HOT_S" or "COLD_L".
// Unknown keys are ignored.
func NewCupCatalog(names map[string]string) CupCatalog {
	c := CupCatalog{names: map[catalog.Temperature]map[catalog.Size]string{
		catalog.TemperatureHot:  {},
		catalog.TemperatureCold: {},
	}}

	for key, name := range names {
		temp, size, ok := strings.Cut(strings.ToUpper(key), "_")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}

		var t catalog.Temperature
		switch temp {
		case "HOT":
			t = catalog.TemperatureHot
		case "COLD":
			t = catalog.TemperatureCold
		default:
			continue
		}

		s, err := catalog.ParseSize(size)
		if err != nil || s.IsNone() {
			continue
		}
		c.names[t][s] = strings.TrimSpace(name)
	}
	return c
}

// Name returns the cup ingredient name for a served product-variant.
// A line without a size is served in the medium cup.
func (c CupCatalog) Name(temp catalog.Temperature, size catalog.Size) (string, bool) {
	bySize, ok := c.names[temp]
	if !ok {
		return "", false
	}
	name, ok := bySize[size.OrMedium()]
	return name, ok
}
