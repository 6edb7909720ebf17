package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/alxdev/echocheck-backend/pkg/logger"
)

// RequestLogger logs one line per completed request.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Info("request completed",
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("latency", time.Since(start)),
			logger.String("clientIp", c.ClientIP()),
		)
	}
}
