package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"cadence/internal/shared/logger"
)

// Logger logs each completed request with latency and caller identity.
func Logger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		args := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", latency,
			"client_ip", c.ClientIP(),
			"body_size", c.Writer.Size(),
		}

		if requestID, exists := c.Get(RequestIDKey); exists {
			args = append(args, "request_id", requestID)
		}
		if userID, exists := c.Get(UserIDKey); exists {
			args = append(args, "user_id", userID)
		}
		if tenantID, exists := c.Get(TenantIDKey); exists {
			args = append(args, "tenant_id", tenantID)
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			log.Errorw("HTTP request completed", args...)
		case status >= 400:
			log.Warnw("HTTP request completed", args...)
		default:
			log.Infow("HTTP request completed", args...)
		}
	}
}
