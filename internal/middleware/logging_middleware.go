// internal/middleware/logging_middleware.go
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"print-service/internal/utils"
)

// LoggingMiddleware logs every request with its request id. Probe routes
// are skipped so the liveness polling does not flood the print log.
func LoggingMiddleware(logger *utils.ServiceLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/live" || path == "/ready" {
			c.Next()
			return
		}

		startTime := time.Now()
		c.Next()
		duration := time.Since(startTime)

		logger.LogAPIRequest(
			c.Request.Method,
			path,
			c.GetString("request_id"),
			c.ClientIP(),
			c.Writer.Status(),
			duration,
		)
	}
}
