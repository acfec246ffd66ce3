package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/core/tx"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/audit"
	"brewpos/pkg/logger"
)

// Service provides inventory administration for ingredients and products.
// Stock is set once at creation as an opening balance; afterwards it moves only
// through the consumption engine (sales, waste, restock).
type Service struct {
	txManager   tx.Manager
	ingredients IngredientRepository
	products    ProductRepository
	defaults    Defaults
	audit       *audit.Recorder
}

// NewService creates a catalog service.
func NewService(txManager tx.Manager, ingredients IngredientRepository, products ProductRepository, defaults Defaults, rec *audit.Recorder) *Service {
	return &Service{
		txManager:   txManager,
		ingredients: ingredients,
		products:    products,
		defaults:    defaults,
		audit:       rec,
	}
}

// CreateIngredientInput carries the fields of a new ingredient.
type CreateIngredientInput struct {
	Name         string
	Unit         string
	OpeningStock types.Quantity
	CostPerUnit  types.Money
	MinStock     types.Quantity
}

// CreateIngredient registers a new raw material with its opening balance.
func (s *Service) CreateIngredient(ctx context.Context, in CreateIngredientInput) (*Ingredient, error) {
	now := time.Now().UTC()
	ing := &Ingredient{
		ID:          id.New(),
		Name:        strings.TrimSpace(in.Name),
		Unit:        strings.TrimSpace(in.Unit),
		Stock:       in.OpeningStock,
		CostPerUnit: in.CostPerUnit,
		MinStock:    in.MinStock,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := ing.Validate(); err != nil {
		return nil, err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.ingredients.FindByName(ctx, ing.Name)
		if err != nil {
			return fmt.Errorf("find ingredient by name: %w", err)
		}
		if existing != nil {
			return apperror.NewDuplicate("ingredient", "name", ing.Name)
		}
		return s.ingredients.Create(ctx, ing)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "ingredient", ing.ID, audit.ActionCreate, map[string]any{
		"name": ing.Name, "unit": ing.Unit, "stock": ing.Stock, "cost_per_unit": ing.CostPerUnit,
	})
	logger.Info(ctx, "ingredient created", "ingredient_id", ing.ID, "name", ing.Name)
	return ing, nil
}

// UpdateIngredientInput carries editable ingredient fields. Nil fields are left unchanged.
type UpdateIngredientInput struct {
	Name        *string
	Unit        *string
	CostPerUnit *types.Money
	MinStock    *types.Quantity
}

// UpdateIngredient edits descriptive fields.
func (s *Service) UpdateIngredient(ctx context.Context, ingredientID id.ID, in UpdateIngredientInput) (*Ingredient, error) {
	var ing *Ingredient
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		ing, err = s.ingredients.GetByID(ctx, ingredientID)
		if err != nil {
			return err
		}

		if in.Name != nil && !strings.EqualFold(strings.TrimSpace(*in.Name), ing.Name) {
			other, err := s.ingredients.FindByName(ctx, *in.Name)
			if err != nil {
				return fmt.Errorf("find ingredient by name: %w", err)
			}
			if other != nil && other.ID != ing.ID {
				return apperror.NewDuplicate("ingredient", "name", *in.Name)
			}
			ing.Name = strings.TrimSpace(*in.Name)
		}
		if in.Unit != nil {
			ing.Unit = strings.TrimSpace(*in.Unit)
		}
		if in.CostPerUnit != nil {
			ing.CostPerUnit = *in.CostPerUnit
		}
		if in.MinStock != nil {
			ing.MinStock = *in.MinStock
		}
		if err := ing.Validate(); err != nil {
			return err
		}

		ing.UpdatedAt = time.Now().UTC()
		return s.ingredients.Update(ctx, ing)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "ingredient", ing.ID, audit.ActionUpdate, map[string]any{
		"name": ing.Name, "unit": ing.Unit, "cost_per_unit": ing.CostPerUnit, "min_stock": ing.MinStock,
	})
	return ing, nil
}

// GetIngredient returns one ingredient.
func (s *Service) GetIngredient(ctx context.Context, ingredientID id.ID) (*Ingredient, error) {
	return s.ingredients.GetByID(ctx, ingredientID)
}

// ListIngredients lists ingredients by filter.
func (s *Service) ListIngredients(ctx context.Context, filter ListFilter) ([]*Ingredient, error) {
	return s.ingredients.List(ctx, filter)
}

// ListLowStock lists ingredients at or below their minimum.
func (s *Service) ListLowStock(ctx context.Context) ([]*Ingredient, error) {
	return s.ingredients.ListLowStock(ctx)
}

// CreateProductInput carries the fields of a new product.
// Policy and Serving are optional; when nil they default from the configured lists.
type CreateProductInput struct {
	Name         string
	Category     string
	Price        types.Money
	OpeningStock types.Quantity
	Policy       *CategoryPolicy
	Temperature  *Temperature
	ReusableWare *bool
	Active       *bool
}

// CreateProduct registers a sellable product.
func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (*Product, error) {
	now := time.Now().UTC()
	p := &Product{
		ID:        id.New(),
		Name:      strings.TrimSpace(in.Name),
		Category:  strings.TrimSpace(in.Category),
		Stock:     in.OpeningStock,
		Price:     in.Price,
		Active:    true,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	p.Policy = s.defaults.PolicyFor(p.Category)
	if in.Policy != nil {
		p.Policy = *in.Policy
	}
	p.Serving = s.defaults.ServingFor(p.Name, p.Category, p.Policy)
	if in.Temperature != nil {
		p.Temperature = *in.Temperature
	}
	if in.ReusableWare != nil {
		p.ReusableWare = *in.ReusableWare
	}
	if in.Active != nil {
		p.Active = *in.Active
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.products.Create(ctx, p)
	}); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "product", p.ID, audit.ActionCreate, map[string]any{
		"name": p.Name, "category": p.Category, "policy": p.Policy,
		"temperature": p.Temperature, "reusable_ware": p.ReusableWare, "price": p.Price,
	})
	logger.Info(ctx, "product created", "product_id", p.ID, "name", p.Name, "policy", p.Policy)
	return p, nil
}

// UpdateProductInput carries editable product fields. Nil fields are left unchanged.
type UpdateProductInput struct {
	Name         *string
	Category     *string
	Price        *types.Money
	Policy       *CategoryPolicy
	Temperature  *Temperature
	ReusableWare *bool
	Active       *bool
}

// UpdateProduct edits descriptive fields and the stored policy/serving profile.
func (s *Service) UpdateProduct(ctx context.Context, productID id.ID, in UpdateProductInput) (*Product, error) {
	var p *Product
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		p, err = s.products.GetByID(ctx, productID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			p.Name = strings.TrimSpace(*in.Name)
		}
		if in.Category != nil {
			p.Category = strings.TrimSpace(*in.Category)
		}
		if in.Price != nil {
			p.Price = *in.Price
		}
		if in.Policy != nil {
			p.Policy = *in.Policy
		}
		if in.Temperature != nil {
			p.Temperature = *in.Temperature
		}
		if in.ReusableWare != nil {
			p.ReusableWare = *in.ReusableWare
		}
		if in.Active != nil {
			p.Active = *in.Active
		}
		if err := p.Validate(); err != nil {
			return err
		}

		p.UpdatedAt = time.Now().UTC()
		return s.products.Update(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, "product", p.ID, audit.ActionUpdate, map[string]any{
		"name": p.Name, "category": p.Category, "policy": p.Policy,
		"temperature": p.Temperature, "reusable_ware": p.ReusableWare,
		"price": p.Price, "active": p.Active,
	})
	return p, nil
}

// GetProduct returns one product.
func (s *Service) GetProduct(ctx context.Context, productID id.ID) (*Product, error) {
	return s.products.GetByID(ctx, productID)
}

// ListProducts lists products by filter.
func (s *Service) ListProducts(ctx context.Context, filter ListFilter) ([]*Product, error) {
	return s.products.List(ctx, filter)
}
