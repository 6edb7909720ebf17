package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alxdev/echocheck-backend/pkg/metrics"
)

// Metrics records request counts and latencies. The route template keeps the
// label cardinality bounded; unmatched requests share one label.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
