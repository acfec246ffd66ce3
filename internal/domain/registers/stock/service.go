package stock

import (
	"context"
	"fmt"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/id"
	"brewpos/internal/core/types"
	"brewpos/pkg/logger"
)

// Service records and queries stock movements.
// Transactions are managed by the caller (the consumption engine).
type Service struct {
	repo Repository
}

// NewService creates a new stock register service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// RecordMovements journals stock movements. Called inside the consumption transaction.
func (s *Service) RecordMovements(ctx context.Context, movements []Movement) error {
	if len(movements) == 0 {
		return nil
	}

	for i, m := range movements {
		if !m.Quantity.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: quantity must be positive", i))
		}
		if id.IsNil(m.RecorderID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: recorder_id is required", i))
		}
		if id.IsNil(m.ItemID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: item_id is required", i))
		}
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Debug(ctx, "recorded stock movements",
		"count", len(movements),
		"recorder_id", movements[0].RecorderID,
		"recorder_type", movements[0].RecorderType,
	)

	return nil
}

// GetByRecorder returns the movements of one transaction.
func (s *Service) GetByRecorder(ctx context.Context, recorderID id.ID) ([]Movement, error) {
	return s.repo.GetMovementsByRecorder(ctx, recorderID)
}

// GetHistory returns movements of one item.
func (s *Service) GetHistory(ctx context.Context, kind ItemKind, itemID id.ID, filter MovementFilter) ([]Movement, error) {
	if filter.Limit <= 0 || filter.Limit > 1000 {
		filter.Limit = 100
	}
	return s.repo.GetMovementHistory(ctx, kind, itemID, filter)
}

// NetByItem sums signed quantities per item. Used to replay or reverse a transaction.
func NetByItem(movements []Movement) map[ItemKey]types.Quantity {
	out := make(map[ItemKey]types.Quantity)
	for i := range movements {
		m := &movements[i]
		out[ItemKey{Kind: m.ItemKind, ID: m.ItemID}] += m.SignedQuantity()
	}
	return out
}

// ItemKey identifies a ledger row.
type ItemKey struct {
	Kind ItemKind
	ID   id.ID
}
