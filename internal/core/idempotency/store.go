// Package idempotency defines the replay store behind the X-Idempotency-Key header.
// A retried POST with the same key and body replays the first response instead of
// consuming stock a second time.
package idempotency

import (
	"context"
	"net/http"

	"brewpos/internal/core/apperror"
)

// Status of an idempotent operation.
type Status string

const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Replay is a cached HTTP response.
type Replay struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Store persists idempotency keys.
type Store interface {
	// Acquire claims key for (operation, requestHash).
	// Returns (nil, nil) when the caller should execute the request,
	// a Replay when the operation already finished, or an error when the key
	// is in use by a concurrent request or was used for a different request.
	Acquire(ctx context.Context, key, operation, requestHash string) (*Replay, error)

	// Complete stores a successful response.
	Complete(ctx context.Context, key string, statusCode int, contentType string, body []byte) error

	// Fail stores a deterministic error response for replay.
	Fail(ctx context.Context, key string, statusCode int, contentType string, body []byte) error

	// Release drops a pending key so a retry with it executes again. Used after
	// transient failures (lost races, server errors). Finished keys are left alone.
	Release(ctx context.Context, key string) error
}

// NewMismatch is returned when a key is reused for a different request.
func NewMismatch(key string) *apperror.AppError {
	return &apperror.AppError{
		Code:       apperror.CodeConflict,
		Message:    "Idempotency key was already used for a different request",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"key": key},
	}
}

// NewInProgress is returned while the first request with key is still running.
func NewInProgress(key string) *apperror.AppError {
	return &apperror.AppError{
		Code:       apperror.CodeConflict,
		Message:    "A request with this idempotency key is already in progress",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"key": key},
	}
}

// NormalizeReplay fills defaults for records stored without status or content type.
func NormalizeReplay(r *Replay) *Replay {
	if r.StatusCode == 0 {
		r.StatusCode = http.StatusOK
	}
	if r.ContentType == "" && r.StatusCode != http.StatusNoContent {
		r.ContentType = "application/json"
	}
	return r
}
