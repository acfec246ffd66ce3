// Package catalog_repo provides PostgreSQL implementations of the catalog and recipe repositories.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/domain/catalog"
	"brewpos/internal/infrastructure/storage/postgres"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// baseRepo holds the CRUD shared by ingredient and product tables.
type baseRepo[T any] struct {
	txManager  *postgres.TxManager
	tableName  string
	entityName string
	selectCols []string
	builder    squirrel.StatementBuilderType
}

func newBaseRepo[T any](txManager *postgres.TxManager, tableName, entityName string) baseRepo[T] {
	return baseRepo[T]{
		txManager:  txManager,
		tableName:  tableName,
		entityName: entityName,
		selectCols: postgres.ExtractDBColumns[T](),
		builder:    squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

func (r *baseRepo[T]) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

func (r *baseRepo[T]) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(r.selectCols...).From(r.tableName)
}

// insert writes every db-tagged column of entity.
func (r *baseRepo[T]) insert(ctx context.Context, entity *T, nameField string) error {
	data := postgres.PickColumns(postgres.StructToMap(entity), r.selectCols)

	sql, args, err := r.builder.Insert(r.tableName).SetMap(data).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		if _, dup := postgres.IsUniqueViolation(err); dup {
			return apperror.NewDuplicate(r.entityName, nameField, fmt.Sprint(data[nameField]))
		}
		return fmt.Errorf("insert %s: %w", r.tableName, err)
	}
	return nil
}

// update writes the given columns under optimistic locking on version.
func (r *baseRepo[T]) update(ctx context.Context, entityID id.ID, version int, set map[string]any) (int, error) {
	q := r.builder.Update(r.tableName).
		SetMap(set).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": entityID, "version": version}).
		Suffix("RETURNING version")

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}

	var newVersion int
	if err := r.querier(ctx).QueryRow(ctx, sql, args...).Scan(&newVersion); err != nil {
		if pgxscan.NotFound(err) {
			return 0, apperror.NewConcurrentModification(r.entityName, entityID)
		}
		if _, dup := postgres.IsUniqueViolation(err); dup {
			return 0, apperror.NewDuplicate(r.entityName, "name", fmt.Sprint(set["name"]))
		}
		return 0, fmt.Errorf("update %s: %w", r.tableName, err)
	}
	return newVersion, nil
}

func (r *baseRepo[T]) getOne(ctx context.Context, q squirrel.SelectBuilder) (*T, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	entity := new(T)
	if err := pgxscan.Get(ctx, r.querier(ctx), entity, sql, args...); err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *baseRepo[T]) getByID(ctx context.Context, entityID id.ID) (*T, error) {
	entity, err := r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": entityID}))
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(r.entityName, entityID)
		}
		return nil, fmt.Errorf("get %s: %w", r.entityName, err)
	}
	return entity, nil
}

func (r *baseRepo[T]) selectMany(ctx context.Context, q squirrel.SelectBuilder) ([]*T, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []*T
	if err := pgxscan.Select(ctx, r.querier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", r.tableName, err)
	}
	return out, nil
}

// byIDsQuery selects rows by id in id order. With lock it takes row locks in that order,
// so two transactions locking overlapping sets cannot deadlock each other.
func (r *baseRepo[T]) byIDsQuery(ids []id.ID, lock bool) squirrel.SelectBuilder {
	q := r.baseSelect().Where(squirrel.Eq{"id": ids}).OrderBy("id")
	if lock {
		q = q.Suffix("FOR UPDATE")
	}
	return q
}

func (r *baseRepo[T]) byIDs(ctx context.Context, ids []id.ID, lock bool, key func(*T) id.ID) (map[id.ID]*T, error) {
	out := make(map[id.ID]*T, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.selectMany(ctx, r.byIDsQuery(ids, lock))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[key(row)] = row
	}
	return out, nil
}

// setColumns writes the given columns without touching version.
func (r *baseRepo[T]) setColumns(ctx context.Context, entityID id.ID, set map[string]any) error {
	sql, args, err := r.builder.Update(r.tableName).
		SetMap(set).
		Where(squirrel.Eq{"id": entityID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update %s: %w", r.tableName, err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound(r.entityName, entityID)
	}
	return nil
}

// applyListFilter adds search, paging and name ordering.
func applyListFilter(q squirrel.SelectBuilder, filter catalog.ListFilter) squirrel.SelectBuilder {
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	q = q.OrderBy("name", "id").Limit(uint64(limit))
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}
