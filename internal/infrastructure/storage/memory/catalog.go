package memory

import (
	"context"
	"strings"
	"time"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/catalog"
)

// IngredientRepo implements catalog.IngredientRepository.
type IngredientRepo struct {
	store *Store
}

var _ catalog.IngredientRepository = (*IngredientRepo)(nil)

// NewIngredientRepo creates an ingredient repository over store.
func NewIngredientRepo(store *Store) *IngredientRepo {
	return &IngredientRepo{store: store}
}

func (r *IngredientRepo) Create(ctx context.Context, ing *catalog.Ingredient) error {
	return r.store.do(ctx, func(st *state) error {
		for _, other := range st.ingredients {
			if strings.EqualFold(other.Name, ing.Name) {
				return apperror.NewDuplicate("ingredient", "name", ing.Name)
			}
		}
		st.ingredients[ing.ID] = *ing
		return nil
	})
}

func (r *IngredientRepo) Update(ctx context.Context, ing *catalog.Ingredient) error {
	return r.store.do(ctx, func(st *state) error {
		cur, ok := st.ingredients[ing.ID]
		if !ok {
			return apperror.NewNotFound("ingredient", ing.ID)
		}
		cur.Name = ing.Name
		cur.Unit = ing.Unit
		cur.CostPerUnit = ing.CostPerUnit
		cur.MinStock = ing.MinStock
		cur.Version++
		cur.UpdatedAt = time.Now().UTC()
		st.ingredients[ing.ID] = cur

		ing.Version = cur.Version
		ing.UpdatedAt = cur.UpdatedAt
		return nil
	})
}

func (r *IngredientRepo) GetByID(ctx context.Context, ingredientID id.ID) (*catalog.Ingredient, error) {
	var out *catalog.Ingredient
	err := r.store.do(ctx, func(st *state) error {
		ing, ok := st.ingredients[ingredientID]
		if !ok {
			return apperror.NewNotFound("ingredient", ingredientID)
		}
		out = &ing
		return nil
	})
	return out, err
}

func (r *IngredientRepo) FindByName(ctx context.Context, name string) (*catalog.Ingredient, error) {
	var out *catalog.Ingredient
	err := r.store.do(ctx, func(st *state) error {
		name = strings.TrimSpace(name)
		for _, ing := range st.ingredients {
			if strings.EqualFold(ing.Name, name) {
				found := ing
				out = &found
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *IngredientRepo) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*catalog.Ingredient, error) {
	out := make(map[id.ID]*catalog.Ingredient, len(ids))
	err := r.store.do(ctx, func(st *state) error {
		for _, ingID := range ids {
			if ing, ok := st.ingredients[ingID]; ok {
				out[ingID] = &ing
			}
		}
		return nil
	})
	return out, err
}

func (r *IngredientRepo) List(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Ingredient, error) {
	var out []*catalog.Ingredient
	err := r.store.do(ctx, func(st *state) error {
		for _, ing := range st.ingredients {
			if filter.Search != "" && !containsFold(ing.Name, filter.Search) {
				continue
			}
			out = append(out, &ing)
		}
		return nil
	})
	sortByName(out, func(i *catalog.Ingredient) string { return i.Name })
	return page(out, filter.Limit, filter.Offset), err
}

func (r *IngredientRepo) ListLowStock(ctx context.Context) ([]*catalog.Ingredient, error) {
	var out []*catalog.Ingredient
	err := r.store.do(ctx, func(st *state) error {
		for _, ing := range st.ingredients {
			if ing.IsLow() {
				out = append(out, &ing)
			}
		}
		return nil
	})
	sortByName(out, func(i *catalog.Ingredient) string { return i.Name })
	return out, err
}

// LockForUpdate returns copies; the transaction mutex already excludes other writers.
func (r *IngredientRepo) LockForUpdate(ctx context.Context, ids []id.ID) (map[id.ID]*catalog.Ingredient, error) {
	return r.GetByIDs(ctx, ids)
}

func (r *IngredientRepo) SetStock(ctx context.Context, ingredientID id.ID, qty types.Quantity) error {
	return r.store.do(ctx, func(st *state) error {
		ing, ok := st.ingredients[ingredientID]
		if !ok {
			return apperror.NewNotFound("ingredient", ingredientID)
		}
		ing.Stock = qty
		ing.Version++
		ing.UpdatedAt = time.Now().UTC()
		st.ingredients[ingredientID] = ing
		return nil
	})
}

// ProductRepo implements catalog.ProductRepository.
type ProductRepo struct {
	store *Store
}

var _ catalog.ProductRepository = (*ProductRepo)(nil)

// NewProductRepo creates a product repository over store.
func NewProductRepo(store *Store) *ProductRepo {
	return &ProductRepo{store: store}
}

func (r *ProductRepo) Create(ctx context.Context, p *catalog.Product) error {
	return r.store.do(ctx, func(st *state) error {
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) Update(ctx context.Context, p *catalog.Product) error {
	return r.store.do(ctx, func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return apperror.NewNotFound("product", p.ID)
		}
		cur.Name = p.Name
		cur.Category = p.Category
		cur.Policy = p.Policy
		cur.Serving = p.Serving
		cur.Price = p.Price
		cur.Active = p.Active
		cur.Version++
		cur.UpdatedAt = time.Now().UTC()
		st.products[p.ID] = cur

		p.Version = cur.Version
		p.UpdatedAt = cur.UpdatedAt
		return nil
	})
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*catalog.Product, error) {
	var out *catalog.Product
	err := r.store.do(ctx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return apperror.NewNotFound("product", productID)
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*catalog.Product, error) {
	out := make(map[id.ID]*catalog.Product, len(ids))
	err := r.store.do(ctx, func(st *state) error {
		for _, pid := range ids {
			if p, ok := st.products[pid]; ok {
				out[pid] = &p
			}
		}
		return nil
	})
	return out, err
}

func (r *ProductRepo) List(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Product, error) {
	var out []*catalog.Product
	err := r.store.do(ctx, func(st *state) error {
		for _, p := range st.products {
			if filter.Search != "" && !containsFold(p.Name, filter.Search) {
				continue
			}
			if filter.Category != "" && !strings.EqualFold(p.Category, filter.Category) {
				continue
			}
			if filter.ActiveOnly && !p.Active {
				continue
			}
			out = append(out, &p)
		}
		return nil
	})
	sortByName(out, func(p *catalog.Product) string { return p.Name })
	return page(out, filter.Limit, filter.Offset), err
}

func (r *ProductRepo) LockForUpdate(ctx context.Context, ids []id.ID) (map[id.ID]*catalog.Product, error) {
	return r.GetByIDs(ctx, ids)
}

func (r *ProductRepo) SetCounters(ctx context.Context, productID id.ID, stockQty, soldCount types.Quantity) error {
	return r.store.do(ctx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return apperror.NewNotFound("product", productID)
		}
		p.Stock = stockQty
		p.SoldCount = soldCount
		p.Version++
		p.UpdatedAt = time.Now().UTC()
		st.products[productID] = p
		return nil
	})
}
