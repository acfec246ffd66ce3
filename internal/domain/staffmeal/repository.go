package staffmeal

import (
	"context"

	"brewpos/internal/core/id"
)

// Repository persists staff consumption tickets with their items.
type Repository interface {
	Create(ctx context.Context, c *Consumption) error
	GetByID(ctx context.Context, consumptionID id.ID) (*Consumption, error)
	// List returns tickets newest first, without items.
	List(ctx context.Context, filter ListFilter) ([]*Consumption, error)
}

// ListFilter narrows ticket lists.
type ListFilter struct {
	StaffID string
	Limit   int
	Offset  int
}
