package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskpulse/internal/auth"
)

// UserIDKey is the gin context key holding the authenticated user's ID.
const UserIDKey = "userID"

// JWTAuthMiddleware resolves the caller identity from the Authorization
// header and stores it on the request context. Requests without a valid
// bearer token never reach the handlers.
func JWTAuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		tokenStr, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Bearer token required"})
			return
		}

		userID, err := tokens.Parse(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID extracts the authenticated user's ID from the context. The
// second return is false when the middleware did not run.
func UserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
