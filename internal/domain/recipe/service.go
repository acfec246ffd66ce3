package recipe

import (
	"context"
	"fmt"
	"time"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/core/tx"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/audit"
	"brewpos/internal/domain/catalog"
	"brewpos/pkg/logger"
)

// Service manages recipes and resolves them for a requested size.
type Service struct {
	txManager   tx.Manager
	repo        Repository
	products    catalog.ProductRepository
	ingredients catalog.IngredientRepository
	audit       *audit.Recorder
}

// NewService creates a recipe service.
func NewService(
	txManager tx.Manager,
	repo Repository,
	products catalog.ProductRepository,
	ingredients catalog.IngredientRepository,
	rec *audit.Recorder,
) *Service {
	return &Service{
		txManager:   txManager,
		repo:        repo,
		products:    products,
		ingredients: ingredients,
		audit:       rec,
	}
}

// Bind attaches the ingredient rows referenced by r. An item whose ingredient is missing
// from ingredients is an internal inconsistency (recipes reference ingredients by foreign key).
func Bind(r *Recipe, ingredients map[id.ID]*catalog.Ingredient) (*Resolved, error) {
	res := &Resolved{Recipe: r, Lines: make([]ResolvedLine, 0, len(r.Items))}
	for _, item := range r.Items {
		ing, ok := ingredients[item.IngredientID]
		if !ok {
			return nil, apperror.NewNotFound("ingredient", item.IngredientID).
				WithDetail("recipe_id", r.ID.String())
		}
		res.Lines = append(res.Lines, ResolvedLine{Item: item, Ingredient: ing})
	}
	return res, nil
}

// Resolve returns the recipe that applies to (productID, sizeLabel), with its ingredients.
// Returns NotFound when the product has neither a matching nor a generic recipe.
func (s *Service) Resolve(ctx context.Context, productID id.ID, sizeLabel string) (*Resolved, error) {
	size, err := catalog.ParseSize(sizeLabel)
	if err != nil {
		return nil, err
	}

	var resolved *Resolved
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.products.GetByID(ctx, productID); err != nil {
			return err
		}

		recipes, err := s.repo.ListByProduct(ctx, productID)
		if err != nil {
			return fmt.Errorf("list recipes: %w", err)
		}

		r := Select(recipes, size)
		if r == nil {
			return apperror.NewNotFound("recipe", productID).WithDetail("size", size.String())
		}

		ingredients, err := s.ingredients.GetByIDs(ctx, ingredientIDs(r))
		if err != nil {
			return fmt.Errorf("load recipe ingredients: %w", err)
		}

		resolved, err = Bind(r, ingredients)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resolved, nil
}

// List returns every recipe of a product.
func (s *Service) List(ctx context.Context, productID id.ID) ([]*Recipe, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.repo.ListByProduct(ctx, productID)
}

// ItemInput is one ingredient line of an upsert.
type ItemInput struct {
	IngredientID id.ID
	Quantity     types.Quantity
}

// Upsert replaces the item set of the (productID, sizeLabel) recipe, creating it if needed.
func (s *Service) Upsert(ctx context.Context, productID id.ID, sizeLabel string, items []ItemInput) (*Recipe, error) {
	size, err := catalog.ParseSize(sizeLabel)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r := &Recipe{
		ID:        id.New(),
		ProductID: productID,
		Size:      size.Ptr(),
		Items:     make([]Item, 0, len(items)),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, in := range items {
		r.Items = append(r.Items, Item{
			ID:           id.New(),
			RecipeID:     r.ID,
			IngredientID: in.IngredientID,
			Quantity:     in.Quantity,
		})
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.products.GetByID(ctx, productID); err != nil {
			return err
		}

		ingredients, err := s.ingredients.GetByIDs(ctx, ingredientIDs(r))
		if err != nil {
			return fmt.Errorf("load recipe ingredients: %w", err)
		}
		for _, item := range r.Items {
			if _, ok := ingredients[item.IngredientID]; !ok {
				return apperror.NewNotFound("ingredient", item.IngredientID)
			}
		}

		return s.repo.Replace(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "recipe", r.ID, audit.ActionUpdate, map[string]any{
		"product_id": productID, "size": size.String(), "items": len(r.Items),
	})
	logger.Info(ctx, "recipe saved", "product_id", productID, "size", size.String(), "items", len(r.Items))
	return r, nil
}

// Delete removes the recipe for (productID, sizeLabel).
func (s *Service) Delete(ctx context.Context, productID id.ID, sizeLabel string) error {
	size, err := catalog.ParseSize(sizeLabel)
	if err != nil {
		return err
	}

	if err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, productID, size)
	}); err != nil {
		return err
	}

	s.audit.Record(ctx, "recipe", productID, audit.ActionDelete, map[string]any{"size": size.String()})
	return nil
}

func ingredientIDs(r *Recipe) []id.ID {
	ids := make([]id.ID, 0, len(r.Items))
	for _, item := range r.Items {
		ids = append(ids, item.IngredientID)
	}
	return ids
}
