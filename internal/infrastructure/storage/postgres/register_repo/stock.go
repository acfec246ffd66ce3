// Package register_repo provides the PostgreSQL implementation of the stock movement register.
package register_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"brewpos/internal/core/id"
	"brewpos/internal/domain/registers/stock"
	"brewpos/internal/infrastructure/storage/postgres"
)

const stockMovementsTable = "stock_movements"

var movementCols = postgres.ExtractDBColumns[stock.Movement]()

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	inserter  *postgres.BatchInserter
	builder   squirrel.StatementBuilderType
}

var _ stock.Repository = (*StockRepo)(nil)

// NewStockRepo creates a stock register repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		inserter:  postgres.NewBatchInserter(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateMovements copies movements inside the caller's transaction; outside one it
// falls back to a multi-row INSERT.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []stock.Movement) error {
	if len(movements) == 0 {
		return nil
	}

	if r.txManager.GetTx(ctx) != nil {
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, movementRow(m))
		}
		if _, err := r.inserter.CopyFromSlice(ctx, stockMovementsTable, movementCols, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
		return nil
	}

	sql, args, err := r.insertQuery(movements).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}
	return nil
}

func (r *StockRepo) insertQuery(movements []stock.Movement) squirrel.InsertBuilder {
	q := r.builder.Insert(stockMovementsTable).Columns(movementCols...)
	for _, m := range movements {
		q = q.Values(movementRow(m)...)
	}
	return q
}

// movementRow lists values in movementCols order.
func movementRow(m stock.Movement) []any {
	return []any{
		m.LineID, m.RecorderID, string(m.RecorderType), m.LineNo,
		string(m.ItemKind), m.ItemID, m.ProductID, string(m.RecordType),
		m.Quantity, m.StockAfter, m.CreatedAt,
	}
}

func (r *StockRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]stock.Movement, error) {
	q := r.builder.Select(movementCols...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("line_no", "created_at")
	return r.selectMovements(ctx, q)
}

func (r *StockRepo) GetMovementHistory(ctx context.Context, kind stock.ItemKind, itemID id.ID, filter stock.MovementFilter) ([]stock.Movement, error) {
	return r.selectMovements(ctx, r.historyQuery(kind, itemID, filter))
}

func (r *StockRepo) historyQuery(kind stock.ItemKind, itemID id.ID, filter stock.MovementFilter) squirrel.SelectBuilder {
	q := r.builder.Select(movementCols...).
		From(stockMovementsTable).
		Where(squirrel.Eq{"item_kind": string(kind), "item_id": itemID})

	if filter.RecordType != nil {
		q = q.Where(squirrel.Eq{"record_type": string(*filter.RecordType)})
	}
	if filter.RecorderType != nil {
		q = q.Where(squirrel.Eq{"recorder_type": string(*filter.RecorderType)})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	q = q.OrderBy("created_at DESC", "line_no DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}

func (r *StockRepo) selectMovements(ctx context.Context, q squirrel.SelectBuilder) ([]stock.Movement, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []stock.Movement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return movements, nil
}
