package catalog

import "strings"

// Defaults derives Policy and Serving for a product created without them.
// This is the only place where category and name strings influence behaviour;
// the result is stored on the product and never re-derived at sale time.
type Defaults struct {
	UnitTrackedCategories []string
	ColdTokens            []string
	ReusableWareProducts  []string
}

// PolicyFor returns the default policy for category.
func (d Defaults) PolicyFor(category string) CategoryPolicy {
	for _, c := range d.UnitTrackedCategories {
		if strings.EqualFold(strings.TrimSpace(c), strings.TrimSpace(category)) {
			return PolicyUnitTracked
		}
	}
	return PolicyRecipeRequired
}

// ServingFor returns the default serving profile.
// Unit-tracked goods (pastries, bottled drinks) are not poured, so they get no cup.
func (d Defaults) ServingFor(name, category string, policy CategoryPolicy) Serving {
	s := Serving{Temperature: TemperatureHot}
	if policy == PolicyUnitTracked {
		s.Temperature = TemperatureNone
	}

	haystack := strings.ToLower(name + " " + category)
	for _, tok := range d.ColdTokens {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok != "" && strings.Contains(haystack, tok) {
			s.Temperature = TemperatureCold
			break
		}
	}

	for _, n := range d.ReusableWareProducts {
		if strings.EqualFold(strings.TrimSpace(n), strings.TrimSpace(name)) {
			s.ReusableWare = true
			break
		}
	}
	return s
}
