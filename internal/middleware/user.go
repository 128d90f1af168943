package middleware

import (
	"github.com/gin-gonic/gin"
)

const (
	UserHeader = "User"
	userKey    = "user"
)

// UserMiddleware stores the User header in the context exactly as sent. The
// name is matched byte for byte against the registered participant name.
func UserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(userKey, c.GetHeader(UserHeader))
		c.Next()
	}
}

// User returns the name set by UserMiddleware, or "" when the header was
// absent.
func User(c *gin.Context) string {
	return c.GetString(userKey)
}
