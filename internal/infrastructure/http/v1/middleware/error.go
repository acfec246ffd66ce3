package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"brewpos/internal/core/apperror"
	"brewpos/pkg/logger"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorHandler renders the last error attached by a handler. It is the only place
// that turns errors into responses; internal causes are logged, never returned.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		renderError(c)
	}
}

func renderError(c *gin.Context) {
	if len(c.Errors) == 0 || c.Writer.Written() {
		return
	}

	status, body := errorResponse(c, c.Errors.Last().Err)
	if retryable(status, body.Code) {
		ReleaseIdempotency(c)
	} else {
		FailIdempotency(c, status, body)
	}
	c.JSON(status, body)
}

// retryable errors may succeed when the same request is sent again: lost stock races
// and server faults. Everything else is a stable answer to that request.
func retryable(status int, code string) bool {
	return status >= http.StatusInternalServerError || code == apperror.CodeConcurrentModification
}

func errorResponse(c *gin.Context, err error) (int, ErrorBody) {
	ctx := c.Request.Context()

	appErr, ok := apperror.AsAppError(err)
	if !ok {
		logger.Error(ctx, "unhandled error", "error", err)
		return http.StatusInternalServerError, ErrorBody{
			Code:    apperror.CodeInternal,
			Message: "Internal server error",
			Details: map[string]any{"request_id": c.GetString(ctxRequestID)},
		}
	}

	if appErr.Err != nil {
		logger.Error(ctx, "request error",
			"code", appErr.Code,
			"cause", appErr.Err,
		)
	}
	if appErr.Code == apperror.CodeInternal {
		// the cause stays in the log
		return appErr.HTTPStatus, ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: map[string]any{"request_id": c.GetString(ctxRequestID)},
		}
	}
	return appErr.HTTPStatus, ErrorBody{
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	}
}
