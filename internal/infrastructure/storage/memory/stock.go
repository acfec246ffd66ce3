package memory

import (
	"context"
	"sort"

	"brewpos/internal/core/id"
	"brewpos/internal/domain/registers/stock"
)

// MovementRepo implements stock.Repository.
type MovementRepo struct {
	store *Store
}

var _ stock.Repository = (*MovementRepo)(nil)

// NewMovementRepo creates a stock register repository over store.
func NewMovementRepo(store *Store) *MovementRepo {
	return &MovementRepo{store: store}
}

func (r *MovementRepo) CreateMovements(ctx context.Context, movements []stock.Movement) error {
	return r.store.do(ctx, func(st *state) error {
		st.movements = append(st.movements, movements...)
		return nil
	})
}

func (r *MovementRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]stock.Movement, error) {
	var out []stock.Movement
	err := r.store.do(ctx, func(st *state) error {
		for _, m := range st.movements {
			if m.RecorderID == recorderID {
				out = append(out, m)
			}
		}
		return nil
	})
	return out, err
}

// GetMovementHistory returns newest first.
func (r *MovementRepo) GetMovementHistory(ctx context.Context, kind stock.ItemKind, itemID id.ID, filter stock.MovementFilter) ([]stock.Movement, error) {
	var out []stock.Movement
	err := r.store.do(ctx, func(st *state) error {
		for _, m := range st.movements {
			if m.ItemKind != kind || m.ItemID != itemID {
				continue
			}
			if filter.RecordType != nil && m.RecordType != *filter.RecordType {
				continue
			}
			if filter.RecorderType != nil && m.RecorderType != *filter.RecorderType {
				continue
			}
			if filter.FromDate != nil && m.CreatedAt.Before(*filter.FromDate) {
				continue
			}
			if filter.ToDate != nil && m.CreatedAt.After(*filter.ToDate) {
				continue
			}
			out = append(out, m)
		}
		return nil
	})

	// insertion order breaks ties between movements of the same instant
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	return page(out, filter.Limit, filter.Offset), err
}
