// Package audit records who changed what. Audit writes never fail the operation
// they describe: errors are logged and dropped.
package audit

import (
	"context"
	"time"

	appctx "brewpos/internal/core/context"
	"brewpos/internal/core/id"
	"brewpos/pkg/logger"
)

// Action is the audited operation.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionConsume Action = "consume"
	ActionCancel  Action = "cancel"
	ActionStatus  Action = "status"
	ActionRestock Action = "restock"
	ActionWaste   Action = "waste"
)

// Entry is one audit record.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	StaffID    string
	RequestID  string
	Changes    map[string]any
	CreatedAt  time.Time
}

// Sink stores audit entries.
type Sink interface {
	Log(ctx context.Context, entry Entry) error
}

// Recorder is the fire-and-forget front of a Sink. A nil *Recorder is valid and records nothing.
type Recorder struct {
	sink Sink
}

// NewRecorder wraps sink.
func NewRecorder(sink Sink) *Recorder {
	return &Recorder{sink: sink}
}

// Record stores an entry. Call it after the transaction commits.
func (r *Recorder) Record(ctx context.Context, entityType string, entityID id.ID, action Action, changes map[string]any) {
	if r == nil || r.sink == nil {
		return
	}

	entry := Entry{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		StaffID:    appctx.GetStaffID(ctx),
		RequestID:  appctx.GetRequestID(ctx),
		Changes:    changes,
		CreatedAt:  time.Now().UTC(),
	}

	// the request may already be finishing; the write should not be cut short by it
	if err := r.sink.Log(context.WithoutCancel(ctx), entry); err != nil {
		logger.Warn(ctx, "audit write failed",
			"entity_type", entityType,
			"entity_id", entityID,
			"action", action,
			"error", err,
		)
	}
}

// LogSink writes audit entries to the structured log. Used when no database is configured.
type LogSink struct {
	log *logger.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log.WithComponent("audit")}
}

// Log implements Sink.
func (s *LogSink) Log(ctx context.Context, entry Entry) error {
	s.log.WithContext(ctx).Infow("audit",
		"entity_type", entry.EntityType,
		"entity_id", entry.EntityID,
		"action", entry.Action,
		"changes", entry.Changes,
	)
	return nil
}
