// Package waste writes off spoiled or spilled stock and books its cost as an expense.
package waste

import (
	"fmt"
	"strings"
	"time"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/registers/stock"
)

// Log is one waste write-off.
type Log struct {
	ID     id.ID  `db:"id" json:"id"`
	Number string `db:"number" json:"number"`

	TargetKind stock.ItemKind `db:"target_kind" json:"targetKind"`
	TargetID   id.ID          `db:"target_id" json:"targetId"`
	TargetName string         `db:"target_name" json:"targetName"`
	Size       *catalog.Size  `db:"size" json:"size,omitempty"`

	// Quantity and Unit are as entered; StockQuantity is Quantity in the stock unit.
	Quantity      types.Quantity `db:"quantity" json:"quantity"`
	Unit          string         `db:"unit" json:"unit"`
	StockQuantity types.Quantity `db:"stock_quantity" json:"stockQuantity"`

	Reason  string `db:"reason" json:"reason"`
	StaffID string `db:"staff_id" json:"staffId,omitempty"`

	// Cost is nil when nothing prices the wasted item.
	Cost      *types.Money `db:"cost" json:"cost,omitempty"`
	ExpenseID *id.ID       `db:"expense_id" json:"expenseId,omitempty"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
}

// Expense is a derived cost record.
type Expense struct {
	ID            id.ID       `db:"id" json:"id"`
	Category      string      `db:"category" json:"category"`
	Amount        types.Money `db:"amount" json:"amount"`
	Description   string      `db:"description" json:"description"`
	SourceWasteID *id.ID      `db:"source_waste_id" json:"sourceWasteId,omitempty"`
	Date          time.Time   `db:"expense_date" json:"date"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
}

// Input is a waste request. Exactly one of ProductID and IngredientID is set.
type Input struct {
	ProductID    *id.ID
	IngredientID *id.ID
	Size         string
	Quantity     types.Quantity
	Unit         string
	Reason       string
	StaffID      string
}

// Validate checks the request shape.
func (in Input) Validate() error {
	hasProduct := in.ProductID != nil && !id.IsNil(*in.ProductID)
	hasIngredient := in.IngredientID != nil && !id.IsNil(*in.IngredientID)
	if hasProduct == hasIngredient {
		return apperror.NewValidation("exactly one of productId and ingredientId is required")
	}
	if !in.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if strings.TrimSpace(in.Reason) == "" {
		return apperror.NewValidation("reason is required").WithDetail("field", "reason")
	}
	if hasIngredient && strings.TrimSpace(in.Size) != "" {
		return apperror.NewValidation("size applies to products only").WithDetail("field", "size")
	}
	// product waste is counted in servings
	if unit := strings.TrimSpace(in.Unit); hasProduct && unit != "" && !strings.EqualFold(unit, productUnit) {
		return apperror.NewValidation(fmt.Sprintf("product waste is counted in %q, got %q", productUnit, in.Unit)).
			WithDetail("field", "unit")
	}
	return nil
}
