package guard

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/session"
)

// EdgeRules configures EdgeGuard. Paths match exactly or as a prefix followed by "/".
type EdgeRules struct {
	// Public paths need no login.
	Public []string
	// Skip paths are never redirected, e.g. the API and static assets.
	Skip []string
	// Areas maps a path prefix to the only role allowed inside it.
	Areas map[string]string
}

// DefaultEdgeRules are the routes of the web frontend.
func DefaultEdgeRules() EdgeRules {
	return EdgeRules{
		Public: []string{"/", LoginPath, "/register"},
		Skip:   []string{"/api", "/swagger", "/health", "/_next", "/static", "/favicon.ico"},
		Areas: map[string]string{
			"/hrd":       model.RoleEmployer,
			"/jobseeker": model.RoleApplicant,
			"/admin":     model.RoleAdmin,
		},
	}
}

func matches(path, route string) bool {
	if route == "/" {
		return path == "/"
	}
	return path == route || strings.HasPrefix(path, route+"/")
}

func matchesAny(path string, routes []string) bool {
	for _, route := range routes {
		if matches(path, route) {
			return true
		}
	}
	return false
}

// Redirect returns where a navigation to path should go given the mirror
// cookie values, or "" to let it through.
func (r EdgeRules) Redirect(path, token, role string) string {
	if matchesAny(path, r.Skip) {
		return ""
	}
	role = strings.ToUpper(role)

	if token == "" {
		if matchesAny(path, r.Public) {
			return ""
		}
		return LoginPath
	}
	if role == "" {
		return ""
	}

	landing := Landing(role)
	if path == "/" || matches(path, LoginPath) || matches(path, "/register") {
		if landing == path {
			return ""
		}
		return landing
	}
	for prefix, allowed := range r.Areas {
		if matches(path, prefix) && allowed != role {
			return landing
		}
	}
	return ""
}

// EdgeGuard redirects page navigations using only the token and role
// cookies. It never calls into handlers or the database.
func EdgeGuard(rules EdgeRules) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, role := session.FromCookies(c.Request)
		if target := rules.Redirect(c.Request.URL.Path, token, role); target != "" {
			c.Redirect(http.StatusFound, target)
			c.Abort()
			return
		}
		c.Next()
	}
}
