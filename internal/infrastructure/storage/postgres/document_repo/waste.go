package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"brewpos/internal/core/id"
	"brewpos/internal/domain/waste"
	"brewpos/internal/infrastructure/storage/postgres"
)

const expensesTable = "expenses"

var expenseCols = postgres.ExtractDBColumns[waste.Expense]()

// WasteRepo implements waste.Repository.
type WasteRepo struct {
	baseDocumentRepo[waste.Log]
}

var _ waste.Repository = (*WasteRepo)(nil)

// NewWasteRepo creates a waste repository.
func NewWasteRepo(txManager *postgres.TxManager) *WasteRepo {
	return &WasteRepo{baseDocumentRepo: newBaseDocumentRepo[waste.Log](txManager, "waste_logs", "", "waste")}
}

func (r *WasteRepo) Create(ctx context.Context, l *waste.Log) error {
	return r.insertHeader(ctx, l)
}

func (r *WasteRepo) GetByID(ctx context.Context, wasteID id.ID) (*waste.Log, error) {
	return r.getHeader(ctx, wasteID, false)
}

func (r *WasteRepo) List(ctx context.Context, filter waste.ListFilter) ([]*waste.Log, error) {
	return r.selectMany(ctx, r.listQuery(filter))
}

func (r *WasteRepo) listQuery(filter waste.ListFilter) squirrel.SelectBuilder {
	q := r.baseSelect()
	if filter.TargetKind != nil {
		q = q.Where(squirrel.Eq{"target_kind": string(*filter.TargetKind)})
	}
	if filter.TargetID != nil {
		q = q.Where(squirrel.Eq{"target_id": *filter.TargetID})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}
	return newestFirst(q, filter.Limit, filter.Offset)
}

func (r *WasteRepo) CreateExpense(ctx context.Context, e *waste.Expense) error {
	data := postgres.PickColumns(postgres.StructToMap(e), expenseCols)

	sql, args, err := r.builder.Insert(expensesTable).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build expense insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}
	return nil
}
