package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/recipe"
	"brewpos/internal/infrastructure/storage/postgres"
)

const (
	recipesTable     = "recipes"
	recipeItemsTable = "recipe_items"
)

// sizeOrder puts the generic recipe first, then S, M, L.
const sizeOrder = "CASE size WHEN 'S' THEN 1 WHEN 'M' THEN 2 WHEN 'L' THEN 3 ELSE 0 END"

var (
	recipeCols     = postgres.ExtractDBColumns[recipe.Recipe]()
	recipeItemCols = postgres.ExtractDBColumns[recipe.Item]()
)

// RecipeRepo implements recipe.Repository.
type RecipeRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
	builder   squirrel.StatementBuilderType
}

var _ recipe.Repository = (*RecipeRepo)(nil)

// NewRecipeRepo creates a recipe repository.
func NewRecipeRepo(txManager *postgres.TxManager) *RecipeRepo {
	return &RecipeRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *RecipeRepo) ListByProduct(ctx context.Context, productID id.ID) ([]*recipe.Recipe, error) {
	byProduct, err := r.ListByProducts(ctx, []id.ID{productID})
	if err != nil {
		return nil, err
	}
	return byProduct[productID], nil
}

func (r *RecipeRepo) ListByProducts(ctx context.Context, productIDs []id.ID) (map[id.ID][]*recipe.Recipe, error) {
	out := make(map[id.ID][]*recipe.Recipe, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	querier := r.txManager.GetQuerier(ctx)

	sql, args, err := r.recipesQuery(productIDs).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recipes query: %w", err)
	}
	var recipes []*recipe.Recipe
	if err := pgxscan.Select(ctx, querier, &recipes, sql, args...); err != nil {
		return nil, fmt.Errorf("select recipes: %w", err)
	}
	if len(recipes) == 0 {
		return out, nil
	}

	byID := make(map[id.ID]*recipe.Recipe, len(recipes))
	recipeIDs := make([]id.ID, 0, len(recipes))
	for _, rec := range recipes {
		byID[rec.ID] = rec
		recipeIDs = append(recipeIDs, rec.ID)
		out[rec.ProductID] = append(out[rec.ProductID], rec)
	}

	sql, args, err = r.builder.Select(recipeItemCols...).
		From(recipeItemsTable).
		Where(squirrel.Eq{"recipe_id": recipeIDs}).
		OrderBy("recipe_id", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recipe items query: %w", err)
	}
	var items []recipe.Item
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select recipe items: %w", err)
	}
	for _, item := range items {
		if rec, ok := byID[item.RecipeID]; ok {
			rec.Items = append(rec.Items, item)
		}
	}
	return out, nil
}

func (r *RecipeRepo) recipesQuery(productIDs []id.ID) squirrel.SelectBuilder {
	return r.builder.Select(recipeCols...).
		From(recipesTable).
		Where(squirrel.Eq{"product_id": productIDs}).
		OrderBy("product_id", sizeOrder)
}

// Replace deletes any recipe for the same (product, size) and inserts rec with its items.
// Items go through COPY, so Replace must run inside a transaction.
func (r *RecipeRepo) Replace(ctx context.Context, rec *recipe.Recipe) error {
	if _, err := r.deleteBySize(ctx, rec.ProductID, rec.SizeValue()); err != nil {
		return err
	}

	sql, args, err := r.builder.Insert(recipesTable).
		Columns("id", "product_id", "size", "created_at", "updated_at").
		Values(rec.ID, rec.ProductID, sizeArg(rec.Size), rec.CreatedAt, rec.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build recipe insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewNotFound("product", rec.ProductID)
		}
		return fmt.Errorf("insert recipe: %w", err)
	}

	rows := make([][]any, 0, len(rec.Items))
	for _, item := range rec.Items {
		rows = append(rows, []any{item.ID, rec.ID, item.IngredientID, item.Quantity})
	}
	if _, err := r.inserter.CopyFromSlice(ctx, recipeItemsTable, []string{"id", "recipe_id", "ingredient_id", "quantity"}, rows); err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return apperror.NewValidation("recipe references an unknown ingredient")
		}
		return fmt.Errorf("copy recipe items: %w", err)
	}
	return nil
}

func (r *RecipeRepo) Delete(ctx context.Context, productID id.ID, size catalog.Size) error {
	deleted, err := r.deleteBySize(ctx, productID, size)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return apperror.NewNotFound("recipe", productID).WithDetail("size", size.String())
	}
	return nil
}

func (r *RecipeRepo) deleteBySize(ctx context.Context, productID id.ID, size catalog.Size) (int64, error) {
	sql, args, err := r.deleteQuery(productID, size).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build recipe delete: %w", err)
	}
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete recipe: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *RecipeRepo) deleteQuery(productID id.ID, size catalog.Size) squirrel.DeleteBuilder {
	q := r.builder.Delete(recipesTable).Where(squirrel.Eq{"product_id": productID})
	if size.IsNone() {
		return q.Where(squirrel.Eq{"size": nil})
	}
	return q.Where(squirrel.Eq{"size": string(size)})
}

// sizeArg passes a nullable size as plain text.
func sizeArg(p *catalog.Size) any {
	if p == nil || p.IsNone() {
		return nil
	}
	return string(*p)
}
