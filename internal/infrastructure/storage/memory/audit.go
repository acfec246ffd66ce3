package memory

import (
	"context"
	"sync"

	"brewpos/internal/domain/audit"
)

// AuditSink collects audit entries in memory.
type AuditSink struct {
	mu      sync.Mutex
	entries []audit.Entry
}

var _ audit.Sink = (*AuditSink)(nil)

func NewAuditSink() *AuditSink {
	return &AuditSink{}
}

func (s *AuditSink) Log(_ context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

// Entries returns a copy of everything logged so far.
func (s *AuditSink) Entries() []audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Entry(nil), s.entries...)
}
