package recipe

import "brewpos/internal/domain/catalog"

// Select picks the recipe for size out of one product's recipes:
// the exact size match first, then the generic recipe, else nil.
//
// It is a pure function of its arguments; ties (which the uniqueness constraint
// prevents) resolve to the first match so the result never depends on call order.
func Select(recipes []*Recipe, size catalog.Size) *Recipe {
	var generic *Recipe
	for _, r := range recipes {
		if r == nil {
			continue
		}
		if r.IsGeneric() {
			if generic == nil {
				generic = r
			}
			continue
		}
		if !size.IsNone() && *r.Size == size {
			return r
		}
	}
	return generic
}
