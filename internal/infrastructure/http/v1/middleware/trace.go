package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "clubledger/internal/core/context"
	"clubledger/pkg/logger"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
)

// Trace attaches request and trace ids to the context and the response.
// Incoming ids are kept so calls can be followed across services.
func Trace(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		trace := appctx.NewTraceContext()
		if v := c.GetHeader(HeaderRequestID); v != "" {
			trace.RequestID = v
		}
		if v := c.GetHeader(HeaderTraceID); v != "" {
			trace.TraceID = v
		}

		ctx := appctx.WithTrace(c.Request.Context(), trace)
		if log != nil {
			ctx = logger.WithLogger(ctx, log)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Set("trace_id", trace.TraceID)
		c.Set("request_id", trace.RequestID)
		c.Header(HeaderRequestID, trace.RequestID)
		c.Header(HeaderTraceID, trace.TraceID)

		c.Next()
	}
}
