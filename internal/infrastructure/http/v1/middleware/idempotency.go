package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"brewpos/internal/core/apperror"
	"brewpos/internal/core/idempotency"
	"brewpos/pkg/logger"
)

const HeaderIdempotencyKey = "X-Idempotency-Key"

const maxIdempotencyBodyBytes = 1 << 20 // 1 MiB

const (
	ctxIdempotencyKey   = "idempotency_key"
	ctxIdempotencyStore = "idempotency_store"
)

// Idempotency replays the first response of a POST carrying X-Idempotency-Key, so a
// till that retries after a timeout does not consume stock twice. Requests without the
// header pass through.
func Idempotency(store idempotency.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost &&
			c.Request.Method != http.MethodPut &&
			c.Request.Method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIdempotencyBodyBytes+1))
		if err != nil {
			_ = c.Error(apperror.NewValidation("failed to read request body"))
			c.Abort()
			return
		}
		if len(body) > maxIdempotencyBodyBytes {
			appErr := apperror.NewValidation("request body too large for idempotency")
			appErr.HTTPStatus = http.StatusRequestEntityTooLarge
			_ = c.Error(appErr.WithDetail("max_bytes", maxIdempotencyBodyBytes))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		hash := sha256.Sum256(body)
		operation := c.Request.Method + " " + c.FullPath()

		replay, err := store.Acquire(c.Request.Context(), key, operation, hex.EncodeToString(hash[:]))
		if err != nil {
			if _, ok := apperror.AsAppError(err); !ok {
				err = apperror.NewInternal(err).WithDetail("component", "idempotency")
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		if replay != nil {
			c.Header("Idempotent-Replayed", "true")
			if replay.StatusCode == http.StatusNoContent {
				c.Status(replay.StatusCode)
			} else {
				c.Data(replay.StatusCode, replay.ContentType, replay.Body)
			}
			c.Abort()
			return
		}

		c.Set(ctxIdempotencyKey, key)
		c.Set(ctxIdempotencyStore, store)
		c.Next()
	}
}

// CompleteIdempotency stores a successful response for replay. No-op without a key.
func CompleteIdempotency(c *gin.Context, statusCode int, response any) {
	finishIdempotency(c, statusCode, response, false)
}

// FailIdempotency stores a deterministic error response for replay. No-op without a key.
func FailIdempotency(c *gin.Context, statusCode int, response any) {
	finishIdempotency(c, statusCode, response, true)
}

// ReleaseIdempotency frees the key after a transient failure so the client's retry runs
// again instead of replaying the failure. No-op without a key.
func ReleaseIdempotency(c *gin.Context) {
	key, store, ok := idempotencyFromContext(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := store.Release(ctx, key); err != nil {
		logger.Warn(ctx, "idempotency key not released", "key", key, "error", err)
	}
}

func idempotencyFromContext(c *gin.Context) (string, idempotency.Store, bool) {
	key := c.GetString(ctxIdempotencyKey)
	if key == "" {
		return "", nil, false
	}
	v, _ := c.Get(ctxIdempotencyStore)
	store, ok := v.(idempotency.Store)
	return key, store, ok
}

func finishIdempotency(c *gin.Context, statusCode int, response any, failed bool) {
	key, store, ok := idempotencyFromContext(c)
	if !ok {
		return
	}

	var (
		body        []byte
		contentType string
	)
	if response != nil {
		var err error
		if body, err = json.Marshal(response); err != nil {
			logger.Warn(c.Request.Context(), "idempotency response not stored", "key", key, "error", err)
			return
		}
		contentType = "application/json; charset=utf-8"
	}

	ctx := c.Request.Context()
	if failed {
		err := store.Fail(ctx, key, statusCode, contentType, body)
		if err != nil {
			logger.Warn(ctx, "idempotency fail not stored", "key", key, "error", err)
		}
		return
	}
	if err := store.Complete(ctx, key, statusCode, contentType, body); err != nil {
		logger.Warn(ctx, "idempotency completion not stored", "key", key, "error", err)
	}
}
