package dto

import (
	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/recipe"
)

// UpsertRecipeRequest replaces the recipe of one product size. A blank size is the
// generic recipe.
type UpsertRecipeRequest struct {
	Size  string              `json:"size" binding:"size"`
	Items []RecipeItemRequest `json:"items" binding:"required,min=1,dive"`
}

// RecipeItemRequest is one ingredient of a recipe, per unit of product.
type RecipeItemRequest struct {
	IngredientID string         `json:"ingredientId" binding:"required,uuid"`
	Quantity     types.Quantity `json:"quantity"`
}

func (r *UpsertRecipeRequest) ToItems() ([]recipe.ItemInput, error) {
	items := make([]recipe.ItemInput, 0, len(r.Items))
	for _, it := range r.Items {
		ingredientID, err := parseID("ingredientId", it.IngredientID)
		if err != nil {
			return nil, err
		}
		items = append(items, recipe.ItemInput{IngredientID: ingredientID, Quantity: it.Quantity})
	}
	return items, nil
}

// ResolvedRecipeResponse is the recipe that applies to a product size.
type ResolvedRecipeResponse struct {
	RecipeID  id.ID                `json:"recipeId"`
	ProductID id.ID                `json:"productId"`
	Size      string               `json:"size,omitempty"`
	Generic   bool                 `json:"generic"`
	Lines     []ResolvedRecipeLine `json:"lines"`
	UnitCost  types.Money          `json:"unitCost"`
}

// ResolvedRecipeLine is one ingredient of a resolved recipe at current prices.
type ResolvedRecipeLine struct {
	IngredientID   id.ID          `json:"ingredientId"`
	IngredientName string         `json:"ingredientName"`
	Unit           string         `json:"unit"`
	Quantity       types.Quantity `json:"quantity"`
	Cost           types.Money    `json:"cost"`
}

// FromResolved builds the response for r.
func FromResolved(r *recipe.Resolved) ResolvedRecipeResponse {
	resp := ResolvedRecipeResponse{
		RecipeID:  r.Recipe.ID,
		ProductID: r.Recipe.ProductID,
		Size:      string(r.Recipe.SizeValue()),
		Generic:   r.Recipe.IsGeneric(),
		Lines:     make([]ResolvedRecipeLine, 0, len(r.Lines)),
		UnitCost:  r.UnitCost(),
	}
	for _, l := range r.Lines {
		resp.Lines = append(resp.Lines, ResolvedRecipeLine{
			IngredientID:   l.Ingredient.ID,
			IngredientName: l.Ingredient.Name,
			Unit:           l.Ingredient.Unit,
			Quantity:       l.Item.Quantity,
			Cost:           l.Item.Quantity.Cost(l.Ingredient.CostPerUnit),
		})
	}
	return resp
}
