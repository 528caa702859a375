package middleware

import (
	"net/http"
	"strings"

	"github.com/Velmor/DuoChat/chat-service/internal/domain/jwt"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CallerKey is the gin context key under which RequireAuth stores the
// authenticated account id.
const CallerKey = "callerID"

// RequireAuth validates the bearer access token and injects the account id
// into the request context. A refresh token presented here is rejected.
func RequireAuth(tokenUtil jwt.TokenUtil) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "missing bearer token"})
			return
		}

		claims, err := tokenUtil.ValidateAccessToken(strings.TrimPrefix(header, prefix))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
			return
		}

		uid, err := uuid.Parse(claims.Subject)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
			return
		}

		c.Set(CallerKey, uid)
		c.Next()
	}
}

// Caller returns the account id injected by RequireAuth.
func Caller(c *gin.Context) uuid.UUID {
	v, _ := c.Get(CallerKey)
	uid, _ := v.(uuid.UUID)
	return uid
}
