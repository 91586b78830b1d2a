package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"cadence/internal/shared/errors"
	"cadence/internal/shared/logger"
	"cadence/internal/shared/utils"
)

const (
	UserIDKey   = "user_id"
	TenantIDKey = "tenant_id"
)

// IdentityClaims are the claims the billing API needs from a token. Tokens
// are issued by the platform's identity service; this service only verifies.
type IdentityClaims struct {
	UserID   uint `json:"user_id"`
	TenantID uint `json:"tenant_id"`
	jwt.RegisteredClaims
}

// Auth verifies the bearer token and stores the caller's user and tenant IDs
// in the request context. Every route behind it is tenant-scoped.
func Auth(secret string, log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("missing bearer token"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &IdentityClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			log.Warnw("token verification failed", "error", err, "client_ip", c.ClientIP())
			utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("invalid token"))
			c.Abort()
			return
		}

		if claims.UserID == 0 || claims.TenantID == 0 {
			utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("token lacks identity claims"))
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(TenantIDKey, claims.TenantID)
		c.Next()
	}
}

// CurrentUserID returns the authenticated user ID from the request context.
func CurrentUserID(c *gin.Context) uint {
	if v, exists := c.Get(UserIDKey); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// CurrentTenantID returns the authenticated tenant ID from the request context.
func CurrentTenantID(c *gin.Context) uint {
	if v, exists := c.Get(TenantIDKey); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
