package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	// UserIDKey is the context key for the authenticated user ID
	UserIDKey = "user_id"
	// UserIDHeader is the HTTP header carrying the user ID
	UserIDHeader = "X-User-ID"
	// DefaultUserID is used when no header is present. Authentication is a
	// mocked local session; a real identity provider would replace this.
	DefaultUserID = "local"
)

// Identity resolves the requesting user from the X-User-ID header and stores
// it in the context. Requests without the header are scoped to the default
// local user.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(UserIDHeader)
		if userID == "" {
			userID = DefaultUserID
		}

		c.Set(UserIDKey, userID)

		c.Next()
	}
}

// GetUserID retrieves the user ID from the Gin context.
// Returns the default user ID if not set.
func GetUserID(c *gin.Context) string {
	if userID, exists := c.Get(UserIDKey); exists {
		if id, ok := userID.(string); ok && id != "" {
			return id
		}
	}
	return DefaultUserID
}
