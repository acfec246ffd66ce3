package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewpos/internal/core/id"
	"brewpos/internal/domain/audit"
)

func TestAuditStore_CompressesLargePayloads(t *testing.T) {
	s, err := NewAuditStore(nil)
	require.NoError(t, err)

	small, err := s.encode(audit.Entry{
		EntityType: "order",
		EntityID:   id.New(),
		Action:     audit.ActionCreate,
		Changes:    map[string]any{"number": "ORD-2026-00001"},
	})
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, small.CompressionAlgo)
	assert.JSONEq(t, `{"number":"ORD-2026-00001"}`, string(small.Changes))
	assert.False(t, small.CreatedAt.IsZero())

	note := strings.Repeat("oat milk ", 1000)
	large, err := s.encode(audit.Entry{
		EntityType: "waste",
		EntityID:   id.New(),
		Action:     audit.ActionWaste,
		Changes:    map[string]any{"reason": note},
	})
	require.NoError(t, err)
	assert.Equal(t, CompressionZstd, large.CompressionAlgo)
	assert.Nil(t, large.Changes)
	assert.Less(t, len(large.ChangesCompressed), len(note))

	require.NoError(t, s.decode(large))
	assert.Nil(t, large.ChangesCompressed)
	assert.Contains(t, string(large.Changes), "oat milk")
}
