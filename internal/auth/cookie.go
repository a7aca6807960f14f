package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "token"

// CookiePolicy holds the attributes applied to the session cookie.
// Secure and SameSite=Strict are production-only so local frontends on
// plain http keep working; HttpOnly is unconditional.
type CookiePolicy struct {
	Domain   string
	MaxAge   int // seconds
	Secure   bool
	SameSite http.SameSite
}

func NewCookiePolicy(domain string, maxAgeSeconds int, production bool) CookiePolicy {
	p := CookiePolicy{
		MaxAge:   maxAgeSeconds,
		SameSite: http.SameSiteLaxMode,
	}
	if production {
		p.Domain = domain
		p.Secure = true
		p.SameSite = http.SameSiteStrictMode
	}
	return p
}

// SetSessionCookie attaches the token to the response.
func (p CookiePolicy) SetSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(p.SameSite)
	c.SetCookie(SessionCookieName, token, p.MaxAge, "/", p.Domain, p.Secure, true)
}

// ClearSessionCookie removes the session cookie. Attributes must mirror
// SetSessionCookie exactly or browsers keep the stale cookie around.
func (p CookiePolicy) ClearSessionCookie(c *gin.Context) {
	c.SetSameSite(p.SameSite)
	c.SetCookie(SessionCookieName, "", -1, "/", p.Domain, p.Secure, true)
}
