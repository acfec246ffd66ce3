// Package document_repo provides PostgreSQL implementations of the order, staff consumption
// and waste repositories.
package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/domain/orders"
	"brewpos/internal/infrastructure/storage/postgres"
)

var itemCols = postgres.ExtractDBColumns[orders.Item]()

// baseDocumentRepo stores a numbered document header and, when itemsTable is set, its lines.
type baseDocumentRepo[T any] struct {
	txManager  *postgres.TxManager
	inserter   *postgres.BatchInserter
	builder    squirrel.StatementBuilderType
	tableName  string
	itemsTable string
	entityName string
	selectCols []string
}

func newBaseDocumentRepo[T any](txManager *postgres.TxManager, tableName, itemsTable, entityName string) baseDocumentRepo[T] {
	return baseDocumentRepo[T]{
		txManager:  txManager,
		inserter:   postgres.NewBatchInserter(txManager),
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		tableName:  tableName,
		itemsTable: itemsTable,
		entityName: entityName,
		selectCols: postgres.ExtractDBColumns[T](),
	}
}

func (r *baseDocumentRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *baseDocumentRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(r.selectCols...).From(r.tableName)
}

func (r *baseDocumentRepo[T]) insertHeader(ctx context.Context, doc *T) error {
	data := postgres.PickColumns(postgres.StructToMap(doc), r.selectCols)

	sql, args, err := r.builder.Insert(r.tableName).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		if _, dup := postgres.IsUniqueViolation(err); dup {
			return apperror.NewDuplicate(r.entityName, "number", fmt.Sprint(data["number"]))
		}
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return nil
}

func (r *baseDocumentRepo[T]) getHeader(ctx context.Context, docID id.ID, lock bool) (*T, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": docID}).Limit(1)
	if lock {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	doc := new(T)
	if err := pgxscan.Get(ctx, r.querier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entityName, docID)
		}
		return nil, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return doc, nil
}

func (r *baseDocumentRepo[T]) selectMany(ctx context.Context, q squirrel.SelectBuilder) ([]*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var docs []*T
	if err := pgxscan.Select(ctx, r.querier(ctx), &docs, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", r.tableName, err)
	}
	return docs, nil
}

func (r *baseDocumentRepo[T]) insertItems(ctx context.Context, items []orders.Item) error {
	if len(items) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, itemRow(item))
	}
	if _, err := r.inserter.CopyFromSlice(ctx, r.itemsTable, itemCols, rows); err != nil {
		return fmt.Errorf("copy %s: %w", r.itemsTable, err)
	}
	return nil
}

// itemRow lists values in itemCols order.
func itemRow(item orders.Item) []any {
	var size any
	if item.Size != nil && !item.Size.IsNone() {
		size = string(*item.Size)
	}
	return []any{
		item.ID, item.DocumentID, item.LineNo, item.ProductID, item.ProductName, size,
		item.Quantity, item.UnitPrice, item.Amount, item.ReusableWare, item.Cost,
	}
}

func (r *baseDocumentRepo[T]) loadItems(ctx context.Context, docID id.ID) ([]orders.Item, error) {
	sql, args, err := r.builder.Select(itemCols...).
		From(r.itemsTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	var items []orders.Item
	if err := pgxscan.Select(ctx, r.querier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", r.itemsTable, err)
	}
	return items, nil
}

// newestFirst orders and pages a list query.
func newestFirst(q squirrel.SelectBuilder, limit, offset int) squirrel.SelectBuilder {
	q = q.OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	if offset > 0 {
		q = q.Offset(uint64(offset))
	}
	return q
}
