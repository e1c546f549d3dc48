package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/beezio/marketplace/internal/infrastructure/telemetry"
)

// Profiling attaches the matched route to the pprof labels of the request, so
// Pyroscope profiles can be sliced by endpoint. Unmatched paths are skipped
// to keep label cardinality bounded.
func Profiling() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" || route == "/health" {
			c.Next()
			return
		}
		labels := map[string]string{
			telemetry.ProfilingLabelOperation: "http " + c.Request.Method,
			telemetry.ProfilingLabelRoute:     route,
		}
		telemetry.WithProfilingLabels(c.Request.Context(), labels, func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}
