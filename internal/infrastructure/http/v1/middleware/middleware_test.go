package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"brewpos/internal/core/apperror"
	appctx "brewpos/internal/core/context"
	"brewpos/internal/core/idempotency"
	"brewpos/internal/infrastructure/storage/memory"
)

type fakeStore struct {
	replay    *idempotency.Replay
	acquired  []string
	completed map[string]idempotency.Replay
	failed    map[string]idempotency.Replay
	released  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{completed: map[string]idempotency.Replay{}, failed: map[string]idempotency.Replay{}}
}

func (s *fakeStore) Acquire(_ context.Context, key, operation, _ string) (*idempotency.Replay, error) {
	s.acquired = append(s.acquired, key+" "+operation)
	return s.replay, nil
}

func (s *fakeStore) Complete(_ context.Context, key string, statusCode int, contentType string, body []byte) error {
	s.completed[key] = idempotency.Replay{StatusCode: statusCode, ContentType: contentType, Body: body}
	return nil
}

func (s *fakeStore) Fail(_ context.Context, key string, statusCode int, contentType string, body []byte) error {
	s.failed[key] = idempotency.Replay{StatusCode: statusCode, ContentType: contentType, Body: body}
	return nil
}

func (s *fakeStore) Release(_ context.Context, key string) error {
	s.released = append(s.released, key)
	return nil
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), Trace(), ErrorHandler())
	r.POST("/orders", handlers...)
	return r
}

func serve(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(`{"items":[]}`))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler_AppError(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(apperror.NewNotFound("order", "42"))
	})

	w := serve(r, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"NOT_FOUND"`)
}

func TestErrorHandler_HidesUnknownErrors(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		_ = c.Error(errors.New("pq: password authentication failed"))
	})

	w := serve(r, map[string]string{HeaderRequestID: "req-1"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
	assert.Contains(t, w.Body.String(), "req-1")
}

func TestRecovery(t *testing.T) {
	r := newEngine(func(c *gin.Context) {
		panic("boom")
	})

	w := serve(r, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeInternal)
	assert.NotContains(t, w.Body.String(), "boom")
}

func TestTrace_StaffAndRequestIDs(t *testing.T) {
	var staffID, requestID string
	r := newEngine(func(c *gin.Context) {
		staffID = appctx.GetStaffID(c.Request.Context())
		requestID = appctx.GetRequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := serve(r, map[string]string{HeaderStaffID: " barista-7 ", HeaderRequestID: "req-9"})
	assert.Equal(t, "barista-7", staffID)
	assert.Equal(t, "req-9", requestID)
	assert.Equal(t, "req-9", w.Header().Get(HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(HeaderTraceID))
}

func TestIdempotency_CompletesAndReplays(t *testing.T) {
	store := newFakeStore()
	r := newEngine(Idempotency(store), func(c *gin.Context) {
		body := gin.H{"id": "o-1"}
		CompleteIdempotency(c, http.StatusCreated, body)
		c.JSON(http.StatusCreated, body)
	})

	w := serve(r, map[string]string{HeaderIdempotencyKey: "k1"})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Contains(t, store.completed, "k1")
	assert.JSONEq(t, `{"id":"o-1"}`, string(store.completed["k1"].Body))
	assert.Equal(t, []string{"k1 POST /orders"}, store.acquired)

	store.replay = &idempotency.Replay{StatusCode: http.StatusCreated, ContentType: "application/json", Body: []byte(`{"id":"o-1"}`)}
	w = serve(r, map[string]string{HeaderIdempotencyKey: "k1"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, `{"id":"o-1"}`, w.Body.String())
}

func TestIdempotency_StoresFailures(t *testing.T) {
	store := newFakeStore()
	r := newEngine(Idempotency(store), func(c *gin.Context) {
		_ = c.Error(apperror.NewValidation("quantity must be positive"))
	})

	w := serve(r, map[string]string{HeaderIdempotencyKey: "k2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, store.failed, "k2")
	assert.Equal(t, http.StatusBadRequest, store.failed["k2"].StatusCode)
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	store := newFakeStore()
	r := newEngine(Idempotency(store), func(c *gin.Context) {
		CompleteIdempotency(c, http.StatusCreated, gin.H{})
		c.Status(http.StatusCreated)
	})

	w := serve(r, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, store.acquired)
	assert.Empty(t, store.completed)
}

func TestIdempotency_ReleasesTransientFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler gin.HandlerFunc
		status  int
	}{
		{"lost stock race", func(c *gin.Context) {
			_ = c.Error(apperror.NewConcurrentModification("ingredients", "40001"))
		}, http.StatusConflict},
		{"internal error", func(c *gin.Context) {
			_ = c.Error(errors.New("connection reset"))
		}, http.StatusInternalServerError},
		{"panic", func(c *gin.Context) {
			panic("boom")
		}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			r := newEngine(Idempotency(store), tt.handler)

			w := serve(r, map[string]string{HeaderIdempotencyKey: "k3"})
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, []string{"k3"}, store.released)
			assert.Empty(t, store.failed)
		})
	}
}

func TestIdempotency_RetryAfterConcurrentModificationRunsAgain(t *testing.T) {
	store := memory.NewIdempotencyStore(10 * time.Minute)
	calls := 0
	r := newEngine(Idempotency(store), func(c *gin.Context) {
		calls++
		if calls == 1 {
			_ = c.Error(apperror.NewConcurrentModification("ingredients", "40001"))
			return
		}
		body := gin.H{"id": "o-1"}
		CompleteIdempotency(c, http.StatusCreated, body)
		c.JSON(http.StatusCreated, body)
	})

	first := serve(r, map[string]string{HeaderIdempotencyKey: "k1"})
	assert.Equal(t, http.StatusConflict, first.Code)

	second := serve(r, map[string]string{HeaderIdempotencyKey: "k1"})
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Empty(t, second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, 2, calls)

	third := serve(r, map[string]string{HeaderIdempotencyKey: "k1"})
	assert.Equal(t, http.StatusCreated, third.Code)
	assert.Equal(t, "true", third.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, 2, calls)
}

func TestIdempotency_ReplaysDeterministicFailures(t *testing.T) {
	store := memory.NewIdempotencyStore(10 * time.Minute)
	calls := 0
	r := newEngine(Idempotency(store), func(c *gin.Context) {
		calls++
		_ = c.Error(apperror.NewInsufficientStock(apperror.Shortage{IngredientName: "Milk", Unit: "ml", Remaining: 100, Required: 200}))
	})

	first := serve(r, map[string]string{HeaderIdempotencyKey: "k2"})
	assert.Equal(t, http.StatusUnprocessableEntity, first.Code)

	second := serve(r, map[string]string{HeaderIdempotencyKey: "k2"})
	assert.Equal(t, http.StatusUnprocessableEntity, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, 1, calls)
}
