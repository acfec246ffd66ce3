// Package costing computes ingredient cost, profit and margin for completed sales.
// It is read-only: it never touches stock.
package costing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"brewpos/internal/core/id"
	"brewpos/internal/core/tx"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/recipe"
)

// Basis tells how a line's cost was derived.
type Basis string

const (
	// BasisRecipe: the product's current recipe for the line size.
	BasisRecipe Basis = "recipe"
	// BasisNameMatch: no recipe; an ingredient named like the product category or name.
	BasisNameMatch Basis = "name_match"
	// BasisNone: nothing to cost the line against.
	BasisNone Basis = "none"
)

// Line is one sold product-variant.
type Line struct {
	ProductID id.ID
	Size      catalog.Size
	Quantity  types.Quantity
	UnitPrice types.Money
}

// LineCost is the evaluated cost of one line.
type LineCost struct {
	LineNo      int            `json:"lineNo"`
	ProductID   id.ID          `json:"productId"`
	ProductName string         `json:"productName"`
	Size        catalog.Size   `json:"size,omitempty"`
	Quantity    types.Quantity `json:"quantity"`
	Basis       Basis          `json:"basis"`
	RecipeID    *id.ID         `json:"recipeId,omitempty"`
	UnitCost    types.Money    `json:"unitCost"`
	Cost        types.Money    `json:"cost"`
	Revenue     types.Money    `json:"revenue"`
}

// Report is the profitability of one transaction.
type Report struct {
	Lines   []LineCost      `json:"lines"`
	Revenue types.Money     `json:"revenue"`
	Cost    types.Money     `json:"cost"`
	Profit  types.Money     `json:"profit"`
	Margin  decimal.Decimal `json:"margin"`
}

// Evaluator prices lines against current recipes and current ingredient costs.
type Evaluator struct {
	txManager   tx.Manager
	products    catalog.ProductRepository
	ingredients catalog.IngredientRepository
	recipes     recipe.Repository
}

// NewEvaluator creates a cost evaluator.
func NewEvaluator(txManager tx.Manager, products catalog.ProductRepository, ingredients catalog.IngredientRepository, recipes recipe.Repository) *Evaluator {
	return &Evaluator{
		txManager:   txManager,
		products:    products,
		ingredients: ingredients,
		recipes:     recipes,
	}
}

// Evaluate computes the report. All reads share one transaction so the recipe set and
// costs are a consistent snapshot; with unchanged costs two calls return the same report.
func (e *Evaluator) Evaluate(ctx context.Context, lines []Line) (*Report, error) {
	var report *Report
	err := e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		report, err = e.evaluate(ctx, lines)
		return err
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (e *Evaluator) evaluate(ctx context.Context, lines []Line) (*Report, error) {
	productIDs := make([]id.ID, 0, len(lines))
	for _, l := range lines {
		productIDs = append(productIDs, l.ProductID)
	}

	products, err := e.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	recipes, err := e.recipes.ListByProducts(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}

	selected := make([]*recipe.Recipe, len(lines))
	var ingredientIDs []id.ID
	for i, l := range lines {
		selected[i] = recipe.Select(recipes[l.ProductID], l.Size)
		if selected[i] == nil {
			continue
		}
		for _, item := range selected[i].Items {
			ingredientIDs = append(ingredientIDs, item.IngredientID)
		}
	}

	ingredients := map[id.ID]*catalog.Ingredient{}
	if len(ingredientIDs) > 0 {
		if ingredients, err = e.ingredients.GetByIDs(ctx, ingredientIDs); err != nil {
			return nil, fmt.Errorf("load ingredients: %w", err)
		}
	}

	report := &Report{
		Lines:   make([]LineCost, 0, len(lines)),
		Revenue: types.Zero(),
		Cost:    types.Zero(),
	}

	for i, l := range lines {
		lc := LineCost{
			LineNo:    i + 1,
			ProductID: l.ProductID,
			Size:      l.Size,
			Quantity:  l.Quantity,
			Basis:     BasisNone,
			UnitCost:  types.Zero(),
			Revenue:   l.UnitPrice.Mul(l.Quantity.Decimal()).Round(2),
		}

		p, ok := products[l.ProductID]
		if ok {
			lc.ProductName = p.Name
		}

		switch {
		case selected[i] != nil:
			resolved, err := recipe.Bind(selected[i], ingredients)
			if err != nil {
				return nil, err
			}
			rid := selected[i].ID
			lc.RecipeID = &rid
			lc.Basis = BasisRecipe
			lc.UnitCost = resolved.UnitCost()
		case ok:
			ing, err := e.nameMatch(ctx, p)
			if err != nil {
				return nil, err
			}
			if ing != nil {
				lc.Basis = BasisNameMatch
				lc.UnitCost = ing.CostPerUnit
			}
		}

		lc.Cost = lc.UnitCost.Mul(l.Quantity.Decimal())
		report.Lines = append(report.Lines, lc)
		report.Revenue = report.Revenue.Add(lc.Revenue)
		report.Cost = report.Cost.Add(lc.Cost)
	}

	report.Profit = report.Revenue.Sub(report.Cost)
	report.Margin = types.Ratio(report.Profit, report.Revenue)
	return report, nil
}

// nameMatch is the best-effort fallback for products without a recipe: an ingredient named
// after the product's category, then after the product itself.
func (e *Evaluator) nameMatch(ctx context.Context, p *catalog.Product) (*catalog.Ingredient, error) {
	for _, key := range []string{p.Category, p.Name} {
		if key == "" {
			continue
		}
		ing, err := e.ingredients.FindByName(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("find ingredient %q: %w", key, err)
		}
		if ing != nil {
			return ing, nil
		}
	}
	return nil, nil
}
