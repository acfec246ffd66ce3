// Package numerator provides the PostgreSQL implementation of document numbering.
package numerator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	corenumerator "brewpos/internal/core/numerator"
)

// Querier is the subset of a pool the numerator needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type cachedRange struct {
	current int64
	max     int64
}

// Service hands out numbers from sys_sequences.
//
// It runs on the pool, outside the business transaction, so a rolled back order
// leaves a gap instead of holding the sequence row lock for the whole transaction.
// With RangeSize > 1 numbers are reserved in blocks and handed out from memory.
type Service struct {
	querier   Querier
	rangeSize int64

	mu     sync.Mutex
	ranges map[string]*cachedRange
}

var _ corenumerator.Generator = (*Service)(nil)

// New creates a strict numerator: one UPSERT per number, no gaps on restart.
func New(querier Querier) *Service {
	return &Service{querier: querier, rangeSize: 1, ranges: map[string]*cachedRange{}}
}

// NewCached creates a numerator that reserves rangeSize numbers per round trip.
func NewCached(querier Querier, rangeSize int64) *Service {
	if rangeSize < 1 {
		rangeSize = 1
	}
	return &Service{querier: querier, rangeSize: rangeSize, ranges: map[string]*cachedRange{}}
}

// Next implements numerator.Generator.
func (s *Service) Next(ctx context.Context, cfg corenumerator.Config, period time.Time) (string, error) {
	key := corenumerator.Key(cfg, period)

	var (
		num int64
		err error
	)
	if s.rangeSize > 1 {
		num, err = s.nextCached(ctx, key)
	} else {
		num, err = s.reserve(ctx, key, 1)
	}
	if err != nil {
		return "", err
	}
	return corenumerator.Format(cfg, period, num), nil
}

// reserve advances the sequence by n and returns its new value.
func (s *Service) reserve(ctx context.Context, key string, n int64) (int64, error) {
	var current int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + $2
		RETURNING current_val
	`, key, n).Scan(&current)
	if err != nil {
		return 0, fmt.Errorf("next %s: %w", key, err)
	}
	return current, nil
}

func (s *Service) nextCached(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rng, ok := s.ranges[key]
	if !ok {
		rng = &cachedRange{}
		s.ranges[key] = rng
	}

	if rng.current >= rng.max {
		newMax, err := s.reserve(ctx, key, s.rangeSize)
		if err != nil {
			return 0, err
		}
		// the reserved block is (newMax-rangeSize, newMax]
		rng.current = newMax - s.rangeSize
		rng.max = newMax
	}

	rng.current++
	return rng.current, nil
}
