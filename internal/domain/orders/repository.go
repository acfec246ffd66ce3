package orders

import (
	"context"

	"brewpos/internal/core/id"
)

// Repository persists orders with their items.
type Repository interface {
	// Create inserts the order and its items.
	Create(ctx context.Context, o *Order) error

	// GetByID returns the order with items.
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)

	// GetForUpdate returns the order with items and locks the order row.
	GetForUpdate(ctx context.Context, orderID id.ID) (*Order, error)

	// UpdateStatus writes status, restocked, cancelled_at and updated_at.
	UpdateStatus(ctx context.Context, o *Order) error

	// List returns orders newest first, without items.
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
}

// ListFilter narrows order lists.
type ListFilter struct {
	Status  *Status
	StaffID string
	Limit   int
	Offset  int
}
