package tracing

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"chatfilter/pkg/logging"
)

func GinMiddleware(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// LogContextMiddleware copies the active trace id into the request context
// so that context-aware log calls include it. It must run after
// GinMiddleware.
func LogContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if traceID := TraceID(c.Request.Context()); traceID != "" {
			c.Request = c.Request.WithContext(logging.WithTraceID(c.Request.Context(), traceID))
		}
		c.Next()
	}
}
