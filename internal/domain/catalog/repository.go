package catalog

import (
	"context"

	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
)

// IngredientRepository persists ingredients.
type IngredientRepository interface {
	Create(ctx context.Context, ing *Ingredient) error

	// Update writes descriptive fields (name, unit, cost, min stock). It never writes stock.
	Update(ctx context.Context, ing *Ingredient) error

	GetByID(ctx context.Context, id id.ID) (*Ingredient, error)

	// FindByName returns nil, nil when no ingredient has that name (case-insensitive).
	FindByName(ctx context.Context, name string) (*Ingredient, error)

	GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*Ingredient, error)

	List(ctx context.Context, filter ListFilter) ([]*Ingredient, error)

	ListLowStock(ctx context.Context) ([]*Ingredient, error)

	// LockForUpdate loads the rows and holds a row lock until the transaction ends.
	// Missing ids are absent from the result.
	LockForUpdate(ctx context.Context, ids []id.ID) (map[id.ID]*Ingredient, error)

	// SetStock writes the new on-hand quantity. Only the consumption engine calls it.
	SetStock(ctx context.Context, id id.ID, stock types.Quantity) error
}

// ProductRepository persists products.
type ProductRepository interface {
	Create(ctx context.Context, p *Product) error

	// Update writes descriptive fields. It never writes stock or sold count.
	Update(ctx context.Context, p *Product) error

	GetByID(ctx context.Context, id id.ID) (*Product, error)

	GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*Product, error)

	List(ctx context.Context, filter ListFilter) ([]*Product, error)

	LockForUpdate(ctx context.Context, ids []id.ID) (map[id.ID]*Product, error)

	// SetCounters writes stock and sold count. Only the consumption engine calls it.
	SetCounters(ctx context.Context, id id.ID, stock, soldCount types.Quantity) error
}

// ListFilter narrows list queries.
type ListFilter struct {
	Search     string
	Category   string
	ActiveOnly bool
	Limit      int
	Offset     int
}
