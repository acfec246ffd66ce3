// Package orders provides the customer Order aggregate and its lifecycle.
// Stock is consumed when the order is placed, not when it is fulfilled.
package orders

import (
	"fmt"
	"time"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/costing"
)

// Status is the order lifecycle state.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus validates a status name.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled:
		return st, nil
	}
	return "", apperror.NewValidation(fmt.Sprintf("unknown order status %q", s)).
		WithDetail("allowed", []Status{StatusPending, StatusPreparing, StatusReady, StatusCompleted, StatusCancelled})
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// next is the forward path of an order. Cancellation is handled separately.
var next = map[Status]Status{
	StatusPending:   StatusPreparing,
	StatusPreparing: StatusReady,
	StatusReady:     StatusCompleted,
}

// Item is one line of an order-like document. Staff consumption tickets use the same shape.
type Item struct {
	ID           id.ID          `db:"id" json:"id"`
	DocumentID   id.ID          `db:"document_id" json:"-"`
	LineNo       int            `db:"line_no" json:"lineNo"`
	ProductID    id.ID          `db:"product_id" json:"productId"`
	ProductName  string         `db:"product_name" json:"productName"`
	Size         *catalog.Size  `db:"size" json:"size,omitempty"`
	Quantity     types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice    types.Money    `db:"unit_price" json:"unitPrice"`
	Amount       types.Money    `db:"amount" json:"amount"`
	ReusableWare bool           `db:"reusable_ware" json:"reusableWare"`
	// Cost is the ingredient cost realized at the moment of sale.
	Cost types.Money `db:"cost" json:"cost"`
}

// SizeValue returns the item size, SizeNone when absent.
func (i *Item) SizeValue() catalog.Size {
	return catalog.SizeFromPtr(i.Size)
}

// Order is a customer order.
type Order struct {
	ID            id.ID  `db:"id" json:"id"`
	Number        string `db:"number" json:"number"`
	CustomerName  string `db:"customer_name" json:"customerName,omitempty"`
	StaffID       string `db:"staff_id" json:"staffId,omitempty"`
	Note          string `db:"note" json:"note,omitempty"`
	PaymentMethod string `db:"payment_method" json:"paymentMethod,omitempty"`
	Status        Status `db:"status" json:"status"`

	Subtotal       types.Money `db:"subtotal" json:"subtotal"`
	IngredientCost types.Money `db:"ingredient_cost" json:"ingredientCost"`

	// Restocked is set when cancellation returned the order's consumption to stock.
	Restocked bool `db:"restocked" json:"restocked"`

	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
	CancelledAt *time.Time `db:"cancelled_at" json:"cancelledAt,omitempty"`

	Items []Item `db:"-" json:"items"`
}

// Advance moves the order one step along PENDING, PREPARING, READY, COMPLETED.
// to must be the next state.
func (o *Order) Advance(to Status) error {
	if to == StatusCancelled {
		return o.Cancel()
	}
	want, ok := next[o.Status]
	if !ok {
		return apperror.NewInvalidTransition("order", o.ID, string(o.Status), string(to),
			fmt.Sprintf("order is %s and cannot change status", o.Status))
	}
	if to != want {
		return apperror.NewInvalidTransition("order", o.ID, string(o.Status), string(to),
			fmt.Sprintf("order in %s can only move to %s", o.Status, want))
	}
	o.Status = to
	o.UpdatedAt = time.Now().UTC()
	return nil
}

// Cancel is allowed only while the order is PENDING. Work already being prepared is
// not cancellable.
func (o *Order) Cancel() error {
	switch o.Status {
	case StatusPending:
	case StatusCancelled:
		return apperror.NewInvalidTransition("order", o.ID, string(o.Status), string(StatusCancelled),
			"order is already cancelled")
	case StatusPreparing:
		return apperror.NewInvalidTransition("order", o.ID, string(o.Status), string(StatusCancelled),
			"order is already being prepared and can no longer be cancelled")
	default:
		return apperror.NewInvalidTransition("order", o.ID, string(o.Status), string(StatusCancelled),
			fmt.Sprintf("order is %s and can no longer be cancelled", o.Status))
	}

	now := time.Now().UTC()
	o.Status = StatusCancelled
	o.CancelledAt = &now
	o.UpdatedAt = now
	return nil
}

// CostLines converts items for the cost evaluator.
func CostLines(items []Item) []costing.Line {
	lines := make([]costing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, costing.Line{
			ProductID: it.ProductID,
			Size:      it.SizeValue(),
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return lines
}

// Sales sums item quantities per product.
func Sales(items []Item) map[id.ID]types.Quantity {
	out := make(map[id.ID]types.Quantity, len(items))
	for _, it := range items {
		out[it.ProductID] += it.Quantity
	}
	return out
}
