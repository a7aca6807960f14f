package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAuth verifies the session cookie on every request and attaches
// the identity claims to the gin context. Handlers behind it may assume
// UserID(c) is a verified, non-expired identity.
//
// Missing and invalid credentials are reported separately but both map
// to 401; neither reveals whether a user exists.
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie(SessionCookieName)
		if err != nil || tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "authentication required"})
			c.Abort()
			return
		}

		claims, err := ParseToken(tokenString, secret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUserEmail, claims.Email)

		c.Next()
	}
}
