package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"clubledger/internal/core/apperror"
	appctx "clubledger/internal/core/context"
	"clubledger/pkg/logger"
)

// ErrorHandler renders the last gin error as {code, message, details}.
// Internal causes are logged and never sent to the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		status := http.StatusInternalServerError
		body := gin.H{
			"code":    apperror.CodeInternal,
			"message": "Internal server error",
			"details": map[string]any{"request_id": appctx.GetRequestID(c.Request.Context())},
		}

		if appErr, ok := apperror.AsAppError(err); ok {
			if appErr.Err != nil {
				logger.Error(c.Request.Context(), "request error",
					"code", appErr.Code,
					"path", c.FullPath(),
					"cause", appErr.Err,
				)
			}
			status = appErr.HTTPStatus
			if status < http.StatusInternalServerError {
				body = gin.H{
					"code":    appErr.Code,
					"message": appErr.Message,
					"details": appErr.Details,
				}
			}
		} else {
			logger.Error(c.Request.Context(), "unhandled error",
				"path", c.FullPath(),
				"error", err,
			)
		}

		finishIdempotency(c, status, body)
		c.JSON(status, body)
	}
}

// finishIdempotency records a client error for replay and releases the key
// after a server error so the request may be retried.
func finishIdempotency(c *gin.Context, status int, body gin.H) {
	key, store, ok := IdempotencyFrom(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if status >= http.StatusInternalServerError {
		if err := store.ReleaseKey(ctx, key); err != nil {
			logger.Warn(ctx, "release idempotency key failed", "key", key, "error", err)
		}
		return
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return
	}
	if err := store.FailKey(ctx, key, status, "application/json", raw); err != nil {
		logger.Warn(ctx, "fail idempotency key failed", "key", key, "error", err)
	}
}
