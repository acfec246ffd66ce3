package recipe

import (
	"context"

	"brewpos/internal/core/id"
	"brewpos/internal/domain/catalog"
)

// Repository persists recipes with their items.
type Repository interface {
	// ListByProduct returns every recipe of a product, items included.
	ListByProduct(ctx context.Context, productID id.ID) ([]*Recipe, error)

	// ListByProducts is the batched form used by the consumption engine.
	ListByProducts(ctx context.Context, productIDs []id.ID) (map[id.ID][]*Recipe, error)

	// Replace stores r as the recipe for (r.ProductID, r.Size), replacing any existing
	// recipe for that pair and its items.
	Replace(ctx context.Context, r *Recipe) error

	// Delete removes the recipe for (productID, size). Returns NotFound when absent.
	Delete(ctx context.Context, productID id.ID, size catalog.Size) error
}
