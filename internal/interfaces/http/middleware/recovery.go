package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cadence/internal/shared/logger"
	"cadence/internal/shared/utils"
)

// Recovery converts panics into 500 responses instead of dropped connections.
func Recovery(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("panic recovered",
					"panic", r,
					"method", c.Request.Method,
					"path", c.Request.URL.Path)
				utils.ErrorResponse(c, http.StatusInternalServerError, "Internal server error occurred")
				c.Abort()
			}
		}()
		c.Next()
	}
}
