// Package stock provides the stock movement register.
package stock

import (
	"context"
	"time"

	"brewpos/internal/core/id"
)

// Repository defines operations for the stock register.
type Repository interface {
	// CreateMovements batch inserts movements within the caller's transaction.
	CreateMovements(ctx context.Context, movements []Movement) error

	// GetMovementsByRecorder returns all movements of one order/ticket/waste log, in line order.
	GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]Movement, error)

	// GetMovementHistory returns movements of one ingredient or product, newest first.
	GetMovementHistory(ctx context.Context, kind ItemKind, itemID id.ID, filter MovementFilter) ([]Movement, error)
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	RecordType   *RecordType
	RecorderType *RecorderType
	FromDate     *time.Time
	ToDate       *time.Time
	Limit        int
	Offset       int
}
