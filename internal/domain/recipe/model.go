// Package recipe holds bills of materials and the size-aware recipe resolver.
package recipe

import (
	"fmt"
	"time"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/catalog"
)

// Recipe is the bill of materials for one (product, size) pair.
// A nil Size is the generic recipe used when no size-specific one exists.
type Recipe struct {
	ID        id.ID         `db:"id" json:"id"`
	ProductID id.ID         `db:"product_id" json:"productId"`
	Size      *catalog.Size `db:"size" json:"size"`
	Items     []Item        `db:"-" json:"items"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `db:"updated_at" json:"updatedAt"`
}

// Item is one ingredient line: Quantity is consumed per unit of the product-variant.
type Item struct {
	ID           id.ID          `db:"id" json:"id"`
	RecipeID     id.ID          `db:"recipe_id" json:"recipeId"`
	IngredientID id.ID          `db:"ingredient_id" json:"ingredientId"`
	Quantity     types.Quantity `db:"quantity" json:"quantity"`
}

// SizeValue returns the recipe size, SizeNone for the generic recipe.
func (r *Recipe) SizeValue() catalog.Size {
	return catalog.SizeFromPtr(r.Size)
}

// IsGeneric reports whether this is the size-independent recipe.
func (r *Recipe) IsGeneric() bool {
	return r.Size == nil
}

// Validate checks recipe invariants: positive quantities and no ingredient listed twice.
func (r *Recipe) Validate() error {
	if id.IsNil(r.ProductID) {
		return apperror.NewValidation("recipe product is required")
	}
	if len(r.Items) == 0 {
		return apperror.NewValidation("recipe must contain at least one ingredient")
	}

	seen := make(map[id.ID]struct{}, len(r.Items))
	for i, item := range r.Items {
		if id.IsNil(item.IngredientID) {
			return apperror.NewValidation(fmt.Sprintf("item %d: ingredient is required", i+1))
		}
		if !item.Quantity.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("item %d: quantity must be greater than zero", i+1)).
				WithDetail("ingredient_id", item.IngredientID.String())
		}
		if _, dup := seen[item.IngredientID]; dup {
			return apperror.NewValidation(fmt.Sprintf("item %d: ingredient listed twice", i+1)).
				WithDetail("ingredient_id", item.IngredientID.String())
		}
		seen[item.IngredientID] = struct{}{}
	}
	return nil
}

// Resolved is a recipe together with the current ingredient rows it references,
// so callers see costs and stock in the same read.
type Resolved struct {
	Recipe *Recipe
	Lines  []ResolvedLine
}

// ResolvedLine pairs a recipe item with its ingredient.
type ResolvedLine struct {
	Item       Item
	Ingredient *catalog.Ingredient
}

// UnitCost is the ingredient cost of one unit of the product-variant at current prices.
func (r *Resolved) UnitCost() types.Money {
	total := types.Zero()
	for _, l := range r.Lines {
		total = total.Add(l.Item.Quantity.Cost(l.Ingredient.CostPerUnit))
	}
	return total
}
