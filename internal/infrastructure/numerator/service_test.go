package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corenumerator "brewpos/internal/core/numerator"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if ptr, ok := dest[0].(*int64); ok {
		*ptr = m.val
	}
	return nil
}

// mockQuerier simulates sys_sequences: one counter per key.
type mockQuerier struct {
	mu    sync.Mutex
	vals  map[string]int64
	calls int
	err   error
}

func (m *mockQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return &mockRow{err: m.err}
	}
	if m.vals == nil {
		m.vals = map[string]int64{}
	}
	key := args[0].(string)
	m.vals[key] += args[1].(int64)
	return &mockRow{val: m.vals[key]}
}

var period = time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

func TestNext_Strict(t *testing.T) {
	q := &mockQuerier{}
	svc := New(q)
	ctx := context.Background()

	first, err := svc.Next(ctx, corenumerator.DefaultConfig("ORD"), period)
	require.NoError(t, err)
	second, err := svc.Next(ctx, corenumerator.DefaultConfig("ORD"), period)
	require.NoError(t, err)
	other, err := svc.Next(ctx, corenumerator.DefaultConfig("WST"), period)
	require.NoError(t, err)

	assert.Equal(t, "ORD-2026-00001", first)
	assert.Equal(t, "ORD-2026-00002", second)
	assert.Equal(t, "WST-2026-00001", other)
	assert.Equal(t, 3, q.calls)
}

func TestNext_YearlyReset(t *testing.T) {
	svc := New(&mockQuerier{})
	ctx := context.Background()

	_, err := svc.Next(ctx, corenumerator.DefaultConfig("ORD"), period)
	require.NoError(t, err)
	next, err := svc.Next(ctx, corenumerator.DefaultConfig("ORD"), period.AddDate(1, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, "ORD-2027-00001", next)
}

func TestNext_CachedReservesBlocks(t *testing.T) {
	q := &mockQuerier{}
	svc := NewCached(q, 10)
	ctx := context.Background()

	var got []string
	for i := 0; i < 12; i++ {
		n, err := svc.Next(ctx, corenumerator.DefaultConfig("STF"), period)
		require.NoError(t, err)
		got = append(got, n)
	}

	assert.Equal(t, "STF-2026-00001", got[0])
	assert.Equal(t, "STF-2026-00012", got[11])
	assert.Equal(t, 2, q.calls)
}

func TestNext_PropagatesErrors(t *testing.T) {
	svc := New(&mockQuerier{err: errors.New("connection refused")})

	_, err := svc.Next(context.Background(), corenumerator.DefaultConfig("ORD"), period)
	assert.ErrorContains(t, err, "connection refused")
}
