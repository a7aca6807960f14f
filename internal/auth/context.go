package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserID    = "auth_user_id"
	CtxUserEmail = "auth_user_email"
)

// UserID extracts the verified user id from the gin context.
// Set by RequireAuth; empty when the request never passed the gate.
func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}

// UserEmail extracts the verified email from the gin context.
func UserEmail(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserEmail))
}
