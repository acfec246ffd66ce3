// Package consumption turns order-like requests into validated, atomic stock decrements.
//
// Every entry point (order placement, staff consumption, waste, cancellation restock, restock)
// goes through Engine inside one transaction: resolve recipes, lock the touched rows, check the
// whole request against current stock, then apply every decrement and journal it.
package consumption

import (
	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/recipe"
	"brewpos/internal/domain/registers/stock"
)

// Line is one product-variant request.
type Line struct {
	ProductID id.ID
	Size      catalog.Size
	Quantity  types.Quantity
	// ReusableWare opts this line out of the disposable cup deduction.
	ReusableWare bool
}

// IngredientLine removes an ingredient directly (waste of a raw material).
type IngredientLine struct {
	IngredientID id.ID
	Quantity     types.Quantity
}

// Request is one unit of work against the ledger.
type Request struct {
	RecorderID   id.ID
	RecorderType stock.RecorderType

	Lines       []Line
	Ingredients []IngredientLine

	// ServeInCups applies the disposable cup side-deduction.
	ServeInCups bool
	// CountSales increments Product.SoldCount by each line quantity.
	CountSales bool
	// RequireActive rejects inactive products.
	RequireActive bool
}

// LineResult is the outcome of one product line.
type LineResult struct {
	LineNo  int
	Line    Line
	Product *catalog.Product
	// Recipe is nil for unit-tracked lines.
	Recipe *recipe.Resolved
	// UnitCost and Cost are recipe ingredient costs at the moment of consumption.
	UnitCost types.Money
	Cost     types.Money
	// Cup is the cup ingredient deducted for this line, if any.
	Cup *catalog.Ingredient
}

// IngredientResult is the outcome of one direct ingredient line.
type IngredientResult struct {
	LineNo     int
	Ingredient *catalog.Ingredient
	Quantity   types.Quantity
	Cost       types.Money
}

// Result is what a successful Consume applied.
type Result struct {
	Lines       []LineResult
	Ingredients []IngredientResult
	Movements   []stock.Movement
	TotalCost   types.Money
}

// RestockRequest adds stock to one ingredient or product.
type RestockRequest struct {
	Kind     stock.ItemKind
	ItemID   id.ID
	Quantity types.Quantity
}

// ReverseRequest returns the outstanding decrements of a recorded transaction to stock.
type ReverseRequest struct {
	// SourceRecorderID is the transaction whose movements are reversed.
	SourceRecorderID id.ID
	RecorderType     stock.RecorderType
	// Sales undoes sold-count increments per product.
	Sales map[id.ID]types.Quantity
}
