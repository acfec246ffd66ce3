package catalog_repo

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"

	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

// ProductRepo implements catalog.ProductRepository.
type ProductRepo struct {
	baseRepo[catalog.Product]
}

var _ catalog.ProductRepository = (*ProductRepo)(nil)

// NewProductRepo creates a product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{baseRepo: newBaseRepo[catalog.Product](txManager, productsTable, "product")}
}

func (r *ProductRepo) Create(ctx context.Context, p *catalog.Product) error {
	return r.insert(ctx, p, "name")
}

func (r *ProductRepo) Update(ctx context.Context, p *catalog.Product) error {
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	version, err := r.update(ctx, p.ID, p.Version, map[string]any{
		"name":                p.Name,
		"category":            p.Category,
		"policy":              p.Policy,
		"serving_temperature": p.Temperature,
		"reusable_ware":       p.ReusableWare,
		"price":               p.Price,
		"active":              p.Active,
		"updated_at":          p.UpdatedAt,
	})
	if err != nil {
		return err
	}
	p.Version = version
	return nil
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*catalog.Product, error) {
	return r.getByID(ctx, productID)
}

func (r *ProductRepo) GetByIDs(ctx context.Context, ids []id.ID) (map[id.ID]*catalog.Product, error) {
	return r.byIDs(ctx, ids, false, productKey)
}

func (r *ProductRepo) List(ctx context.Context, filter catalog.ListFilter) ([]*catalog.Product, error) {
	return r.selectMany(ctx, r.listQuery(filter))
}

func (r *ProductRepo) listQuery(filter catalog.ListFilter) squirrel.SelectBuilder {
	q := r.baseSelect()
	if filter.Category != "" {
		q = q.Where(squirrel.Expr("lower(category) = lower(?)", filter.Category))
	}
	if filter.ActiveOnly {
		q = q.Where(squirrel.Eq{"active": true})
	}
	return applyListFilter(q, filter)
}

func (r *ProductRepo) LockForUpdate(ctx context.Context, ids []id.ID) (map[id.ID]*catalog.Product, error) {
	return r.byIDs(ctx, ids, true, productKey)
}

func (r *ProductRepo) SetCounters(ctx context.Context, productID id.ID, stock, soldCount types.Quantity) error {
	return r.setColumns(ctx, productID, map[string]any{
		"stock":      stock,
		"sold_count": soldCount,
		"updated_at": time.Now().UTC(),
	})
}

func productKey(p *catalog.Product) id.ID { return p.ID }
