package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/session"
)

func sessionOf(role string) session.Session {
	return session.Session{
		Identity:   session.Identity{UserID: uuid.New(), Name: "n", Email: "n@example.com", Role: role},
		Credential: "tok",
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name     string
		loaded   bool
		sess     session.Session
		required string
		want     Decision
	}{
		{"not restored yet", false, sessionOf(model.RoleEmployer), model.RoleEmployer, Decision{State: Loading}},
		{"empty session", true, session.Session{}, model.RoleApplicant, Decision{State: Unauthorized, RedirectTo: "/login"}},
		{"empty session no role required", true, session.Session{}, "", Decision{State: Unauthorized, RedirectTo: "/login"}},
		{"employer on applicant view", true, sessionOf(model.RoleEmployer), model.RoleApplicant, Decision{State: Unauthorized, RedirectTo: "/hrd/dashboard"}},
		{"applicant on employer view", true, sessionOf(model.RoleApplicant), model.RoleEmployer, Decision{State: Unauthorized, RedirectTo: "/jobseeker/jobs"}},
		{"applicant on admin view", true, sessionOf(model.RoleApplicant), model.RoleAdmin, Decision{State: Unauthorized, RedirectTo: "/jobseeker/jobs"}},
		{"admin on employer view", true, sessionOf(model.RoleAdmin), model.RoleEmployer, Decision{State: Unauthorized, RedirectTo: "/admin"}},
		{"matching role", true, sessionOf(model.RoleEmployer), model.RoleEmployer, Decision{State: Authorized}},
		{"any logged in user", true, sessionOf(model.RoleApplicant), "", Decision{State: Authorized}},
		{"role compared case insensitively", true, sessionOf(model.RoleApplicant), "applicant", Decision{State: Authorized}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.loaded, tt.sess, tt.required))
		})
	}
}

// Authorized exactly when the session is non-empty and the role fits.
func TestEvaluate_AuthorizedIff(t *testing.T) {
	roles := []string{model.RoleEmployer, model.RoleApplicant, model.RoleAdmin}
	required := append([]string{""}, roles...)
	sessions := []session.Session{{}}
	for _, r := range roles {
		sessions = append(sessions, sessionOf(r))
	}

	for _, s := range sessions {
		for _, req := range required {
			d := Evaluate(true, s, req)
			want := !s.Empty() && (req == "" || req == s.Identity.Role)
			assert.Equal(t, want, d.State == Authorized, "role=%q required=%q", s.Identity.Role, req)
			if d.State != Authorized {
				assert.NotEmpty(t, d.RedirectTo)
			}
		}
	}
}

func TestLanding(t *testing.T) {
	assert.Equal(t, "/hrd/dashboard", Landing(model.RoleEmployer))
	assert.Equal(t, "/jobseeker/jobs", Landing("applicant"))
	assert.Equal(t, "/admin", Landing(model.RoleAdmin))
	assert.Equal(t, "/", Landing("HRD"))
	assert.Equal(t, "unauthorized", Unauthorized.String())
}

func next(t *testing.T, ch <-chan Decision) Decision {
	t.Helper()
	select {
	case d, ok := <-ch:
		require.True(t, ok, "watch channel closed")
		return d
	case <-time.After(time.Second):
		t.Fatal("no decision received")
		return Decision{}
	}
}

func TestWatch_RevokesOnLogout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := session.New(nil, nil)

	decisions := Watch(ctx, store, model.RoleEmployer)
	assert.Equal(t, Loading, next(t, decisions).State)

	store.Restore(ctx)
	assert.Equal(t, Decision{State: Unauthorized, RedirectTo: "/login"}, next(t, decisions))

	s := sessionOf(model.RoleEmployer)
	require.NoError(t, store.Establish(ctx, s.Identity, s.Credential))
	assert.Equal(t, Authorized, next(t, decisions).State)

	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, Decision{State: Unauthorized, RedirectTo: "/login"}, next(t, decisions))
}

func TestWatch_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := session.New(nil, nil)
	decisions := Watch(ctx, store, "")
	next(t, decisions)

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-decisions:
			return !ok
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)
}

func TestEdgeRules_Redirect(t *testing.T) {
	rules := DefaultEdgeRules()
	tests := []struct {
		name  string
		path  string
		token string
		role  string
		want  string
	}{
		{"anonymous public root", "/", "", "", ""},
		{"anonymous login", "/login", "", "", ""},
		{"anonymous protected", "/jobseeker/jobs", "", "", "/login"},
		{"anonymous api untouched", "/api/v1/positions", "", "", ""},
		{"employer on login", "/login", "tok", model.RoleEmployer, "/hrd/dashboard"},
		{"applicant on register", "/register", "tok", model.RoleApplicant, "/jobseeker/jobs"},
		{"employer on root", "/", "tok", model.RoleEmployer, "/hrd/dashboard"},
		{"employer in applicant area", "/jobseeker/jobs/42", "tok", model.RoleEmployer, "/hrd/dashboard"},
		{"applicant in employer area", "/hrd/positions", "tok", model.RoleApplicant, "/jobseeker/jobs"},
		{"applicant in admin area", "/admin", "tok", model.RoleApplicant, "/jobseeker/jobs"},
		{"employer in own area", "/hrd/positions", "tok", model.RoleEmployer, ""},
		{"prefix is not a path segment", "/hrdx", "tok", model.RoleApplicant, ""},
		{"token without role passes", "/hrd/positions", "tok", "", ""},
		{"unknown role on login", "/login", "tok", "HRD", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rules.Redirect(tt.path, tt.token, tt.role))
		})
	}
}

func TestEdgeGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(EdgeGuard(DefaultEdgeRules()))
	r.GET("/*path", func(c *gin.Context) { c.String(http.StatusOK, "page") })

	req := httptest.NewRequest(http.MethodGet, "/hrd/dashboard", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	req = httptest.NewRequest(http.MethodGet, "/hrd/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieToken, Value: "tok"})
	req.AddCookie(&http.Cookie{Name: session.CookieRole, Value: model.RoleEmployer})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "page", rec.Body.String())
}
