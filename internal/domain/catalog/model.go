// Package catalog holds the ingredient ledger rows and sellable products.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
)

// Ingredient is a raw material with its on-hand quantity and unit cost.
// Stock is written only by the consumption engine.
type Ingredient struct {
	ID          id.ID          `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Unit        string         `db:"unit" json:"unit"`
	Stock       types.Quantity `db:"stock" json:"stock"`
	CostPerUnit types.Money    `db:"cost_per_unit" json:"costPerUnit"`
	MinStock    types.Quantity `db:"min_stock" json:"minStock"`
	Version     int            `db:"version" json:"version"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// Validate checks ingredient invariants.
func (i *Ingredient) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return apperror.NewValidation("ingredient name is required")
	}
	if strings.TrimSpace(i.Unit) == "" {
		return apperror.NewValidation("ingredient unit is required")
	}
	if i.Stock.IsNegative() {
		return apperror.NewValidation("ingredient stock cannot be negative")
	}
	if i.MinStock.IsNegative() {
		return apperror.NewValidation("ingredient min stock cannot be negative")
	}
	if i.CostPerUnit.IsNegative() {
		return apperror.NewValidation("ingredient cost cannot be negative")
	}
	return nil
}

// IsLow reports whether stock fell to or below the configured minimum.
func (i *Ingredient) IsLow() bool {
	return i.MinStock.IsPositive() && i.Stock <= i.MinStock
}

// CategoryPolicy decides what happens when a product has no recipe.
type CategoryPolicy string

const (
	// PolicyRecipeRequired products cannot be sold without a recipe.
	PolicyRecipeRequired CategoryPolicy = "recipe_required"
	// PolicyUnitTracked products fall back to their own stock counter.
	PolicyUnitTracked CategoryPolicy = "unit_tracked"
)

func (p CategoryPolicy) Valid() bool {
	return p == PolicyRecipeRequired || p == PolicyUnitTracked
}

// Temperature is the cup axis of a product.
type Temperature string

const (
	// TemperatureNone products are never served in a disposable cup.
	TemperatureNone Temperature = "none"
	TemperatureHot  Temperature = "hot"
	TemperatureCold Temperature = "cold"
)

func (t Temperature) Valid() bool {
	return t == TemperatureNone || t == TemperatureHot || t == TemperatureCold
}

// Serving describes how a product is handed over.
type Serving struct {
	Temperature Temperature `db:"serving_temperature" json:"temperature"`
	// ReusableWare products are always served in house ware; no cup is deducted.
	ReusableWare bool `db:"reusable_ware" json:"reusableWare"`
}

// NeedsCup reports whether a sold unit consumes a disposable cup.
func (s Serving) NeedsCup() bool {
	return !s.ReusableWare && s.Temperature != TemperatureNone && s.Temperature != ""
}

// Product is a sellable item. Stock is only meaningful for unit-tracked products;
// SoldCount grows with every sale regardless of policy.
type Product struct {
	ID        id.ID          `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Category  string         `db:"category" json:"category"`
	Policy    CategoryPolicy `db:"policy" json:"policy"`
	Serving                  // flattened columns
	Stock     types.Quantity `db:"stock" json:"stock"`
	SoldCount types.Quantity `db:"sold_count" json:"soldCount"`
	Price     types.Money    `db:"price" json:"price"`
	Active    bool           `db:"active" json:"active"`
	Version   int            `db:"version" json:"version"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time      `db:"updated_at" json:"updatedAt"`
}

// Validate checks product invariants.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperror.NewValidation("product name is required")
	}
	if !p.Policy.Valid() {
		return apperror.NewValidation(fmt.Sprintf("unknown product policy %q", p.Policy))
	}
	if !p.Temperature.Valid() {
		return apperror.NewValidation(fmt.Sprintf("unknown serving temperature %q", p.Temperature))
	}
	if p.Price.IsNegative() {
		return apperror.NewValidation("product price cannot be negative")
	}
	if p.Stock.IsNegative() {
		return apperror.NewValidation("product stock cannot be negative")
	}
	return nil
}

// IsUnitTracked reports whether the product's own stock is decremented when no recipe applies.
func (p *Product) IsUnitTracked() bool {
	return p.Policy == PolicyUnitTracked
}
