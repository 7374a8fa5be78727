// Package middleware provides authentication middleware for the Gin web framework.
package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Session keys for storing moderator information
const (
	// AdminUserIDKey is the key used to store the moderator account ID in session
	AdminUserIDKey = "admin_user_id"
	// AdminUsernameKey is the key used to store the moderator username in session
	AdminUsernameKey = "admin_username"
)

// RequireAdmin returns a middleware that requires an authenticated moderator session
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(AdminUserIDKey)

		if userID == nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}

		userIDInt, ok := userID.(int)
		if !ok {
			// Session values round-tripped through JSON arrive as float64
			if userIDFloat, ok := userID.(float64); ok {
				userIDInt = int(userIDFloat)
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{
					"error": "Authentication required",
					"code":  "UNAUTHORIZED",
				})
				c.Abort()
				return
			}
		}

		username := session.Get(AdminUsernameKey)
		usernameStr, ok := username.(string)
		if !ok || usernameStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
				"code":  "UNAUTHORIZED",
			})
			c.Abort()
			return
		}

		// Store moderator info in context for handlers to use
		c.Set(AdminUserIDKey, userIDInt)
		c.Set(AdminUsernameKey, usernameStr)

		c.Next()
	}
}
