package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey    = "user_id"
	userIDHeader = "X-User-ID"
)

// IdentityProvider resolves an Authorization header value to a user ID.
type IdentityProvider interface {
	CurrentUser(token string) (string, error)
}

// AuthMiddleware attaches the requester's user ID to the context.
// With a nil provider the X-User-ID header is trusted as-is.
// Requests without an identity pass through anonymous; handlers that need
// one call RequireUser.
func AuthMiddleware(provider IdentityProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		if provider == nil {
			if id := c.GetHeader(userIDHeader); id != "" {
				c.Set(userIDKey, id)
			}
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		id, err := provider.CurrentUser(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(userIDKey, id)
		c.Next()
	}
}

// RequireUser rejects anonymous requests.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user ID, or "" for anonymous requests.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
