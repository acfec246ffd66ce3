package orders

import (
	"fmt"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/consumption"
)

// ItemInput is one requested line of an order-like document.
type ItemInput struct {
	ProductID id.ID
	Size      string
	Quantity  types.Quantity
	// UnitPrice overrides the catalog price when set.
	UnitPrice    *types.Money
	ReusableWare bool
}

// PriceFunc decides the unit price of a line once the product is known.
type PriceFunc func(p *catalog.Product, in ItemInput) types.Money

// CatalogPrice uses the input price when given, else the product's price.
func CatalogPrice(p *catalog.Product, in ItemInput) types.Money {
	if in.UnitPrice != nil {
		return *in.UnitPrice
	}
	return p.Price
}

// ConsumptionLines validates inputs and converts them for the engine.
func ConsumptionLines(items []ItemInput) ([]consumption.Line, error) {
	if len(items) == 0 {
		return nil, apperror.NewValidation("at least one item is required").WithDetail("field", "items")
	}

	lines := make([]consumption.Line, 0, len(items))
	for i, in := range items {
		if id.IsNil(in.ProductID) {
			return nil, apperror.NewValidation("product is required").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if !in.Quantity.IsPositive() {
			return nil, apperror.NewValidation("quantity must be positive").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
			return nil, apperror.NewValidation("unit price cannot be negative").
				WithDetail("field", "items").
				WithDetail("lineNo", i+1)
		}
		size, err := catalog.ParseSize(in.Size)
		if err != nil {
			return nil, err
		}
		lines = append(lines, consumption.Line{
			ProductID:    in.ProductID,
			Size:         size,
			Quantity:     in.Quantity,
			ReusableWare: in.ReusableWare,
		})
	}
	return lines, nil
}

// ItemsFromResult builds document items from what the engine consumed.
func ItemsFromResult(documentID id.ID, inputs []ItemInput, res *consumption.Result, price PriceFunc) ([]Item, error) {
	if len(res.Lines) != len(inputs) {
		return nil, fmt.Errorf("consumption returned %d lines for %d items", len(res.Lines), len(inputs))
	}

	items := make([]Item, 0, len(inputs))
	for i, lr := range res.Lines {
		unitPrice := price(lr.Product, inputs[i])
		items = append(items, Item{
			ID:           id.New(),
			DocumentID:   documentID,
			LineNo:       lr.LineNo,
			ProductID:    lr.Product.ID,
			ProductName:  lr.Product.Name,
			Size:         lr.Line.Size.Ptr(),
			Quantity:     lr.Line.Quantity,
			UnitPrice:    unitPrice,
			Amount:       unitPrice.Mul(lr.Line.Quantity.Decimal()).Round(2),
			ReusableWare: lr.Line.ReusableWare,
			Cost:         lr.Cost,
		})
	}
	return items, nil
}

// Totals sums amount and realized cost.
func Totals(items []Item) (subtotal, cost types.Money) {
	subtotal, cost = types.Zero(), types.Zero()
	for _, it := range items {
		subtotal = subtotal.Add(it.Amount)
		cost = cost.Add(it.Cost)
	}
	return subtotal, cost
}
