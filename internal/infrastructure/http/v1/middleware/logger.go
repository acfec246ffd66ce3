package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"brewpos/pkg/logger"
)

// Logger logs one line per request. The request-scoped logger is stored in the context
// so that domain code logs with the same request and trace ids.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		// FromContext adds the trace fields, so the base logger is stored
		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))
		reqLog := log.WithContext(c.Request.Context())

		c.Next()

		status := c.Writer.Status()
		kv := []any{
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "error", c.Errors.Last().Error())
		}

		switch {
		case status >= 500:
			reqLog.Errorw("http request", kv...)
		case status >= 400:
			reqLog.Warnw("http request", kv...)
		default:
			reqLog.Infow("http request", kv...)
		}
	}
}
