package catalog_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/infrastructure/storage/postgres"
)

const ingredientsTable = "ingredients"

// IngredientRepo implements catalog.IngredientRepository.
type IngredientRepo struct {
	baseRepo[catalog.Ingredient]
}

var _ catalog.IngredientRepository = (*IngredientRepo)(nil)

// NewIngredientRepo creates an ingredient repository.
func NewIngredientRepo(txManager *postgres.TxManager) *IngredientRepo {
	return &IngredientRepo{baseRepo: newBaseRepo[catalog.Ingredient](txManager, ingredientsTable, "ingredient")}
}

func (r *IngredientRepo) Create(ctx context.Context, ing *catalog.Ingredient) error {
	return r.insert(ctx, ing, "name")
}

func (r *IngredientRepo) Update(ctx context.Context, ing *catalog.Ingredient) error {
	if ing.UpdatedAt.IsZero() {
		ing.UpdatedAt = time.Now().UTC()
	}
	version, err := r.update(ctx, ing.ID, ing.Version, map[string]any{
		"name":          ing.Name,
		"unit":          ing.Unit,
		"cost_per_unit": ing.CostPerUnit,
		"min_stock":     ing.MinStock,
		"updated_at":    ing.UpdatedAt,
	})
	if err != nil {
		return err
	}
	ing.Version = version
	return nil
}

func (r *IngredientRepo) GetByID(ctx context.Context, ingredientID id.ID) (*catalog.Ingredient, error) {
	return r.getByID(ctx, ingredientID)
}

func (r *IngredientRepo) FindByName(ctx context.Context, name string) (*catalog.Ingredient, error) {
	q := r.baseSelect().Where(squirrel.Expr("lower(name) = lower(?)", strings.TrimSpace(name)))
	ing, err := r.getOne(ctx, q)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find ingredient by name: %w", err)
	}
	return ing, nil
}

func (r *IngredientRepo) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*catalog.Ingredient, error) {
	return r.byIDs(ctx, ids, false, ingredientKey)
}

func (r *IngredientRepo) List(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Ingredient, error) {
	return r.selectMany(ctx, applyListFilter(r.baseSelect(), filter))
}

func (r *IngredientRepo) ListLowStock(ctx context.Context) ([]*catalog.Ingredient, error) {
	return r.selectMany(ctx, r.lowStockQuery())
}

func (r *IngredientRepo) lowStockQuery() squirrel.SelectBuilder {
	return r.baseSelect().
		Where("min_stock > 0").
		Where("stock <= min_stock").
		OrderBy("name")
}

func (r *IngredientRepo) LockForUpdate(ctx context.Context, ids []id.ID) (map[id.ID]*catalog.Ingredient, error) {
	return r.byIDs(ctx, ids, true, ingredientKey)
}

func (r *IngredientRepo) SetStock(ctx context.Context, ingredientID id.ID, stock types.Quantity) error {
	return r.setColumns(ctx, ingredientID, map[string]any{
		"stock":      stock,
		"updated_at": time.Now().UTC(),
	})
}

func ingredientKey(ing *catalog.Ingredient) id.ID { return ing.ID }
