package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appctx "brewpos/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
	// HeaderStaffID names the barista or cashier at the till. Recorded on orders,
	// staff tickets, waste logs and audit entries.
	HeaderStaffID = "X-Staff-ID"
)

const (
	ctxRequestID = "request_id"
	ctxTraceID   = "trace_id"
)

// Trace attaches request and trace ids (taken from the headers or generated) and the
// staff id to the request context, and echoes the ids back.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		ctx := appctx.WithTrace(c.Request.Context(), &appctx.TraceContext{
			TraceID:   traceID,
			SpanID:    uuid.New().String()[:16],
			RequestID: requestID,
		})
		if staffID := strings.TrimSpace(c.GetHeader(HeaderStaffID)); staffID != "" {
			ctx = appctx.WithStaffID(ctx, staffID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Set(ctxTraceID, traceID)
		c.Set(ctxRequestID, requestID)
		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		c.Next()
	}
}
