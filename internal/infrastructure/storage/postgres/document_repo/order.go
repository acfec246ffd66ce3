package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/domain/orders"
	"brewpos/internal/infrastructure/storage/postgres"
)

// OrderRepo implements orders.Repository.
type OrderRepo struct {
	baseDocumentRepo[orders.Order]
}

var _ orders.Repository = (*OrderRepo)(nil)

// NewOrderRepo creates an order repository.
func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{baseDocumentRepo: newBaseDocumentRepo[orders.Order](txManager, "orders", "order_items", "order")}
}

func (r *OrderRepo) Create(ctx context.Context, o *orders.Order) error {
	if err := r.insertHeader(ctx, o); err != nil {
		return err
	}
	return r.insertItems(ctx, o.Items)
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	return r.get(ctx, orderID, false)
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	return r.get(ctx, orderID, true)
}

func (r *OrderRepo) get(ctx context.Context, orderID id.ID, lock bool) (*orders.Order, error) {
	o, err := r.getHeader(ctx, orderID, lock)
	if err != nil {
		return nil, err
	}
	if o.Items, err = r.loadItems(ctx, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, o *orders.Order) error {
	sql, args, err := r.builder.Update(r.tableName).
		Set("status", string(o.Status)).
		Set("restocked", o.Restocked).
		Set("cancelled_at", o.CancelledAt).
		Set("updated_at", o.UpdatedAt).
		Where(squirrel.Eq{"id": o.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("order", o.ID)
	}
	return nil
}

func (r *OrderRepo) List(ctx context.Context, filter orders.ListFilter) ([]*orders.Order, error) {
	return r.selectMany(ctx, r.listQuery(filter))
}

func (r *OrderRepo) listQuery(filter orders.ListFilter) squirrel.SelectBuilder {
	q := r.baseSelect()
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": string(*filter.Status)})
	}
	if filter.StaffID != "" {
		q = q.Where(squirrel.Eq{"staff_id": filter.StaffID})
	}
	return newestFirst(q, filter.Limit, filter.Offset)
}
