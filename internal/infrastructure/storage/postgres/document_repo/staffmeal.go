package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"brewpos/internal/core/id"
	"brewpos/internal/domain/staffmeal"
	"brewpos/internal/infrastructure/storage/postgres"
)

// StaffConsumptionRepo implements staffmeal.Repository.
type StaffConsumptionRepo struct {
	baseDocumentRepo[staffmeal.Consumption]
}

var _ staffmeal.Repository = (*StaffConsumptionRepo)(nil)

// NewStaffConsumptionRepo creates a staff consumption repository.
func NewStaffConsumptionRepo(txManager *postgres.TxManager) *StaffConsumptionRepo {
	return &StaffConsumptionRepo{
		baseDocumentRepo: newBaseDocumentRepo[staffmeal.Consumption](txManager, "staff_consumptions", "staff_consumption_items", "staff_consumption"),
	}
}

func (r *StaffConsumptionRepo) Create(ctx context.Context, c *staffmeal.Consumption) error {
	if err := r.insertHeader(ctx, c); err != nil {
		return err
	}
	return r.insertItems(ctx, c.Items)
}

func (r *StaffConsumptionRepo) GetByID(ctx context.Context, consumptionID id.ID) (*staffmeal.Consumption, error) {
	c, err := r.getHeader(ctx, consumptionID, false)
	if err != nil {
		return nil, err
	}
	if c.Items, err = r.loadItems(ctx, c.ID); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *StaffConsumptionRepo) List(ctx context.Context, filter staffmeal.ListFilter) ([]*staffmeal.Consumption, error) {
	q := r.baseSelect()
	if filter.StaffID != "" {
		q = q.Where(squirrel.Eq{"staff_id": filter.StaffID})
	}
	return r.selectMany(ctx, newestFirst(q, filter.Limit, filter.Offset))
}
