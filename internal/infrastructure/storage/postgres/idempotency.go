package postgres

import (
	"context"
	"fmt"
	"time"

	"brewpos/internal/core/idempotency"
)

// IdempotencyStore keeps idempotency keys in sys_idempotency. Its statements run on the
// pool, outside the business transaction, so a key survives the rollback of its request.
type IdempotencyStore struct {
	pool *Pool
	ttl  time.Duration
}

var _ idempotency.Store = (*IdempotencyStore)(nil)

// NewIdempotencyStore creates an idempotency store whose keys expire after ttl.
func NewIdempotencyStore(pool *Pool, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{pool: pool, ttl: ttl}
}

type idempotencyRow struct {
	Operation   string
	Status      idempotency.Status
	RequestHash string
	Response    []byte
	StatusCode  int
	ContentType string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Inserted    bool
}

// Acquire implements idempotency.Store.
func (s *IdempotencyStore) Acquire(ctx context.Context, key, operation, requestHash string) (*idempotency.Replay, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(s.ttl)

	// an expired key is taken over as if it were new; xmax = 0 marks a fresh insert
	var row idempotencyRow
	err := s.pool.QueryRow(ctx, `
		INSERT INTO sys_idempotency (idempotency_key, operation, status, request_hash, created_at, updated_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $5, $6)
		ON CONFLICT (idempotency_key) DO UPDATE SET
			operation = CASE WHEN sys_idempotency.expires_at < $5 THEN EXCLUDED.operation ELSE sys_idempotency.operation END,
			request_hash = CASE WHEN sys_idempotency.expires_at < $5 THEN EXCLUDED.request_hash ELSE sys_idempotency.request_hash END,
			status = CASE WHEN sys_idempotency.expires_at < $5 THEN EXCLUDED.status ELSE sys_idempotency.status END,
			response = CASE WHEN sys_idempotency.expires_at < $5 THEN NULL ELSE sys_idempotency.response END,
			created_at = CASE WHEN sys_idempotency.expires_at < $5 THEN $5 ELSE sys_idempotency.created_at END,
			expires_at = CASE WHEN sys_idempotency.expires_at < $5 THEN $6 ELSE sys_idempotency.expires_at END
		RETURNING operation, status, request_hash, response, response_status, response_content_type,
		          created_at, updated_at, (xmax = 0 OR created_at = $5)
	`, key, operation, idempotency.StatusPending, requestHash, now, expiresAt).Scan(
		&row.Operation, &row.Status, &row.RequestHash, &row.Response, &row.StatusCode, &row.ContentType,
		&row.CreatedAt, &row.UpdatedAt, &row.Inserted,
	)
	if err != nil {
		return nil, fmt.Errorf("acquire idempotency key: %w", err)
	}

	if row.Inserted {
		return nil, nil
	}

	if row.Operation != operation || row.RequestHash != requestHash {
		return nil, idempotency.NewMismatch(key)
	}

	switch row.Status {
	case idempotency.StatusSuccess, idempotency.StatusFailed:
		return idempotency.NormalizeReplay(&idempotency.Replay{
			StatusCode:  row.StatusCode,
			ContentType: row.ContentType,
			Body:        row.Response,
		}), nil
	default:
		// a pending key older than a minute belongs to a request that never finished
		if now.Sub(row.UpdatedAt) > time.Minute {
			tag, err := s.pool.Exec(ctx, `
				UPDATE sys_idempotency SET updated_at = $1
				WHERE idempotency_key = $2 AND status = $3 AND updated_at = $4
			`, now, key, idempotency.StatusPending, row.UpdatedAt)
			if err != nil {
				return nil, fmt.Errorf("reclaim stale key: %w", err)
			}
			if tag.RowsAffected() == 1 {
				return nil, nil
			}
		}
		return nil, idempotency.NewInProgress(key)
	}
}

// Complete implements idempotency.Store.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, statusCode int, contentType string, body []byte) error {
	return s.finish(ctx, key, idempotency.StatusSuccess, statusCode, contentType, body)
}

// Fail implements idempotency.Store.
func (s *IdempotencyStore) Fail(ctx context.Context, key string, statusCode int, contentType string, body []byte) error {
	return s.finish(ctx, key, idempotency.StatusFailed, statusCode, contentType, body)
}

// Release implements idempotency.Store.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM sys_idempotency WHERE idempotency_key = $1 AND status = $2`,
		key, idempotency.StatusPending)
	if err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

func (s *IdempotencyStore) finish(ctx context.Context, key string, status idempotency.Status, statusCode int, contentType string, body []byte) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE sys_idempotency
		SET status = $1,
		    response = $2,
		    response_status = $3,
		    response_content_type = $4,
		    updated_at = $5
		WHERE idempotency_key = $6
	`, status, body, statusCode, contentType, time.Now().UTC(), key)
	if err != nil {
		return fmt.Errorf("store idempotent response: %w", err)
	}
	return nil
}

// CleanupExpired removes expired keys.
func (s *IdempotencyStore) CleanupExpired(ctx context.Context) (int64, error) {
	result, err := s.pool.Exec(ctx, `DELETE FROM sys_idempotency WHERE expires_at < $1`, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("cleanup idempotency keys: %w", err)
	}
	return result.RowsAffected(), nil
}
