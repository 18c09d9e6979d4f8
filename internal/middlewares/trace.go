package middlewares

import (
	"github.com/gin-gonic/gin"

	logger "github.com/Gopher0727/Concord/middleware/log"
)

// TraceMiddleware attaches a trace ID to every request's context so log
// lines from one request can be correlated. An incoming X-Trace-ID header is
// honored, otherwise a new ID is generated.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader("X-Trace-ID")
		ctx := logger.WithTraceID(c.Request.Context(), traceID)
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Trace-ID", logger.GetTraceID(ctx))
		c.Next()
	}
}
