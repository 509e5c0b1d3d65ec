package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haolun/policygraph-backend/internal/platform/logger"
)

// AccessLog writes one structured line per request after the handler chain
// completes.
func AccessLog(log *logger.Logger) gin.HandlerFunc {
	accessLogger := log.With("Middleware", "AccessLog")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		requestID, _ := c.Get("request_id")
		accessLogger.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestID,
		)
	}
}
