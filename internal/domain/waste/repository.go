package waste

import (
	"context"
	"time"

	"brewpos/internal/core/id"
	"brewpos/internal/domain/registers/stock"
)

// Repository persists waste logs and the expenses derived from them.
type Repository interface {
	Create(ctx context.Context, l *Log) error
	GetByID(ctx context.Context, wasteID id.ID) (*Log, error)
	// List returns logs newest first.
	List(ctx context.Context, filter ListFilter) ([]*Log, error)

	CreateExpense(ctx context.Context, e *Expense) error
}

// ListFilter narrows waste lists.
type ListFilter struct {
	TargetKind *stock.ItemKind
	TargetID   *id.ID
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}
