package memory

import (
	"context"
	"sort"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/domain/recipe"
)

// RecipeRepo implements recipe.Repository.
type RecipeRepo struct {
	store *Store
}

var _ recipe.Repository = (*RecipeRepo)(nil)

// NewRecipeRepo creates a recipe repository over store.
func NewRecipeRepo(store *Store) *RecipeRepo {
	return &RecipeRepo{store: store}
}

func cloneRecipe(r recipe.Recipe) *recipe.Recipe {
	r.Items = append([]recipe.Item(nil), r.Items...)
	if r.Size != nil {
		r.Size = r.Size.Ptr()
	}
	return &r
}

func (r *RecipeRepo) ListByProduct(ctx context.Context, productID id.ID) ([]*recipe.Recipe, error) {
	byProduct, err := r.ListByProducts(ctx, []id.ID{productID})
	if err != nil {
		return nil, err
	}
	return byProduct[productID], nil
}

// ListByProducts returns recipes ordered generic first, then S, M, L, matching the postgres order.
func (r *RecipeRepo) ListByProducts(ctx context.Context, productIDs []id.ID) (map[id.ID][]*recipe.Recipe, error) {
	wanted := make(map[id.ID]struct{}, len(productIDs))
	for _, pid := range productIDs {
		wanted[pid] = struct{}{}
	}

	out := make(map[id.ID][]*recipe.Recipe, len(productIDs))
	err := r.store.do(ctx, func(st *state) error {
		for _, rec := range st.recipes {
			if _, ok := wanted[rec.ProductID]; ok {
				out[rec.ProductID] = append(out[rec.ProductID], cloneRecipe(rec))
			}
		}
		return nil
	})
	for _, list := range out {
		sort.Slice(list, func(i, j int) bool {
			return sizeRank(list[i].SizeValue()) < sizeRank(list[j].SizeValue())
		})
	}
	return out, err
}

func (r *RecipeRepo) Replace(ctx context.Context, rec *recipe.Recipe) error {
	return r.store.do(ctx, func(st *state) error {
		size := rec.SizeValue()
		for recID, existing := range st.recipes {
			if existing.ProductID == rec.ProductID && existing.SizeValue() == size {
				delete(st.recipes, recID)
			}
		}
		st.recipes[rec.ID] = *cloneRecipe(*rec)
		return nil
	})
}

func (r *RecipeRepo) Delete(ctx context.Context, productID id.ID, size catalog.Size) error {
	return r.store.do(ctx, func(st *state) error {
		for recID, existing := range st.recipes {
			if existing.ProductID == productID && existing.SizeValue() == size {
				delete(st.recipes, recID)
				return nil
			}
		}
		return apperror.NewNotFound("recipe", productID).WithDetail("size", size.String())
	})
}

func sizeRank(s catalog.Size) int {
	switch s {
	case catalog.SizeSmall:
		return 1
	case catalog.SizeMedium:
		return 2
	case catalog.SizeLarge:
		return 3
	}
	return 0
}
