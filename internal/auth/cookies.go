package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"JobPortal-backend/internal/config"
	"JobPortal-backend/internal/session"
)

// Names of the cookies mirroring the session for navigation checks
const (
	CookieToken = session.CookieToken
	CookieRole  = session.CookieRole
)

// SetSessionCookies mirrors token and role into cookies living as long as a session.
func SetSessionCookies(c *gin.Context, token, role string) {
	maxAge := int(config.SessionTTL.Seconds())
	writeCookie(c, CookieToken, token, maxAge, true)
	writeCookie(c, CookieRole, role, maxAge, false)
}

// ClearSessionCookies expires both mirror cookies. Safe to call when none are set.
func ClearSessionCookies(c *gin.Context) {
	writeCookie(c, CookieToken, "", -1, true)
	writeCookie(c, CookieRole, "", -1, false)
}

func writeCookie(c *gin.Context, name, value string, maxAge int, httpOnly bool) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: httpOnly,
		Secure:   gin.Mode() == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	})
}
