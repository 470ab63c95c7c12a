package session

import (
	"net/http"
	"net/url"
	"time"

	"JobPortal-backend/internal/config"
)

// Cookie names read by the edge guard
const (
	CookieToken = "token"
	CookieRole  = "role"
)

// CookieMirror writes the token and role cookies into a jar for base, the
// same pair the server sets on login.
type CookieMirror struct {
	Jar  http.CookieJar
	Base *url.URL
	now  func() time.Time
}

// NewCookieMirror mirrors into jar for the origin of base.
func NewCookieMirror(jar http.CookieJar, base *url.URL) *CookieMirror {
	return &CookieMirror{Jar: jar, Base: base, now: time.Now}
}

// Set stores both cookies with the session lifetime.
func (m *CookieMirror) Set(s Session) error {
	expires := m.now().Add(config.SessionTTL)
	maxAge := int(config.SessionTTL.Seconds())
	m.Jar.SetCookies(m.Base, []*http.Cookie{
		m.cookie(CookieToken, s.Credential, maxAge, expires),
		m.cookie(CookieRole, s.Identity.Role, maxAge, expires),
	})
	return nil
}

// Clear expires both cookies.
func (m *CookieMirror) Clear() error {
	past := m.now().Add(-time.Hour)
	m.Jar.SetCookies(m.Base, []*http.Cookie{
		m.cookie(CookieToken, "", -1, past),
		m.cookie(CookieRole, "", -1, past),
	})
	return nil
}

func (m *CookieMirror) cookie(name, value string, maxAge int, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		SameSite: http.SameSiteLaxMode,
	}
}

// FromCookies rebuilds credential and role from the mirror cookies of r, the
// only thing navigation checks are allowed to read.
func FromCookies(r *http.Request) (token, role string) {
	if c, err := r.Cookie(CookieToken); err == nil {
		token = c.Value
	}
	if c, err := r.Cookie(CookieRole); err == nil {
		role = c.Value
	}
	return token, role
}
