package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JobPortal-backend/internal/database"
)

// MockBlacklistStore records calls and can be told to fail
type MockBlacklistStore struct {
	added map[string]time.Time
	err   error
}

func (m *MockBlacklistStore) IsBlacklisted(jti string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.added[jti]
	return ok, nil
}

func (m *MockBlacklistStore) AddToBlacklist(jti string, exp time.Time) error {
	if m.err != nil {
		return m.err
	}
	if m.added == nil {
		m.added = map[string]time.Time{}
	}
	m.added[jti] = exp
	return nil
}

func newLogoutContext(t *testing.T, accessToken string, withClaims bool) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req, err := http.NewRequest(http.MethodPost, "/logout", nil)
	require.NoError(t, err)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	c.Request = req

	if withClaims {
		token, err := ValidatedToken(accessToken)
		require.NoError(t, err)
		c.Set("claims", token.Claims.(*jwt.RegisteredClaims))
	}
	return c, rec
}

func TestLogoutSuccess(t *testing.T) {
	accessToken, err := GetAccessToken(t, testDB, database.TestUserApplicant1.Email, database.TestSeedPassword)
	require.NoError(t, err)

	blacklistStore := NewInMemoryBlacklistStore()
	logoutController := NewLogoutController(blacklistStore)

	c, rec := newLogoutContext(t, accessToken, true)
	logoutController.LogoutHandler(c)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Successfully logged out", resp["message"])

	isBlacklisted, err := blacklistStore.IsBlacklisted(accessToken)
	assert.NoError(t, err)
	assert.True(t, isBlacklisted, "Token should be blacklisted after logout")

	token := findCookie(rec.Result().Cookies(), CookieToken)
	require.NotNil(t, token)
	assert.Empty(t, token.Value)
	assert.Less(t, token.MaxAge, 0, "cookie must be expired")
}

func TestLogoutMissingToken(t *testing.T) {
	logoutController := NewLogoutController(NewInMemoryBlacklistStore())

	c, rec := newLogoutContext(t, "", false)
	logoutController.LogoutHandler(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "authorization header")
	assert.NotNil(t, findCookie(rec.Result().Cookies(), CookieRole), "stale cookies are cleared anyway")
}

func TestLogoutMissingClaims(t *testing.T) {
	accessToken, _, err := GenerateStandardToken(database.TestUserApplicant1.ID)
	require.NoError(t, err)

	c, rec := newLogoutContext(t, accessToken, false)
	NewLogoutController(NewInMemoryBlacklistStore()).LogoutHandler(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token claims")
}

func TestLogoutInvalidClaimsType(t *testing.T) {
	accessToken, _, err := GenerateStandardToken(database.TestUserApplicant1.ID)
	require.NoError(t, err)

	c, rec := newLogoutContext(t, accessToken, false)
	c.Set("claims", jwt.MapClaims{"sub": "x"})
	NewLogoutController(NewInMemoryBlacklistStore()).LogoutHandler(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token claims type")
}

func TestLogoutBlacklistStoreError(t *testing.T) {
	accessToken, _, err := GenerateStandardToken(database.TestUserApplicant1.ID)
	require.NoError(t, err)

	store := &MockBlacklistStore{err: errors.New("redis down")}
	c, rec := newLogoutContext(t, accessToken, true)
	NewLogoutController(store).LogoutHandler(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to logout")
}

func TestLogoutStoresTokenExpiry(t *testing.T) {
	accessToken, _, err := GenerateTokenWithDuration(database.TestUserEmployer1.ID, 30*time.Minute, JwtIssuer)
	require.NoError(t, err)

	store := &MockBlacklistStore{}
	c, rec := newLogoutContext(t, accessToken, true)
	NewLogoutController(store).LogoutHandler(c)

	require.Equal(t, http.StatusOK, rec.Code)
	exp, ok := store.added[accessToken]
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 5*time.Second)
}
