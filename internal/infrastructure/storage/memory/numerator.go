package memory

import (
	"context"
	"time"

	"brewpos/internal/core/numerator"
)

// Numerator implements numerator.Generator over the store's sequences.
type Numerator struct {
	store *Store
}

var _ numerator.Generator = (*Numerator)(nil)

// NewNumerator creates a generator over store.
func NewNumerator(store *Store) *Numerator {
	return &Numerator{store: store}
}

func (n *Numerator) Next(ctx context.Context, cfg numerator.Config, period time.Time) (string, error) {
	var value int64
	err := n.store.do(ctx, func(st *state) error {
		key := numerator.Key(cfg, period)
		st.sequences[key]++
		value = st.sequences[key]
		return nil
	})
	if err != nil {
		return "", err
	}
	return numerator.Format(cfg, period, value), nil
}
