// Package middleware provides HTTP middleware components.
package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"brewpos/internal/core/apperror"
	"brewpos/pkg/logger"
)

// Recovery turns a handler panic into a 500. The stack goes to the log only.
// An open transaction was already rolled back by the transaction manager.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error(c.Request.Context(), "panic recovered",
					"error", rec,
					"path", c.Request.URL.Path,
					"stack", string(debug.Stack()),
				)

				_ = c.Error(
					apperror.NewInternal(fmt.Errorf("panic: %v", rec)).
						WithDetail("request_id", c.GetString(ctxRequestID)),
				)
				c.Abort()
				renderError(c)
			}
		}()
		c.Next()
	}
}
