package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"JobPortal-backend/internal/auth"
	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/utilities"
)

var testDB *database.DBinstanceStruct

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	var err error
	var midTeardown func(context.Context, ...testcontainers.TerminateOption) error
	midTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		os.Exit(1)
	}
	code := m.Run()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if midTeardown != nil {
		_ = midTeardown(ctx)
	}
	os.Exit(code)
}

func protectedEngine() *gin.Engine {
	r := gin.New()
	r.GET("/protected", RequireAuth(testDB), checkUserHandler)
	return r
}

func checkUserHandler(c *gin.Context) {
	u, exist := c.Get("user")
	if !exist {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
}

func roleHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Hello, " + user.Role})
}

func readFileHandler(c *gin.Context) {
	rawFile, err := c.FormFile("file")
	if err != nil {
		if IsTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Entity too large"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	f, err := rawFile.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot open file", "ok": false})
		return
	}
	defer func() { _ = f.Close() }()

	if _, err := io.ReadAll(f); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cannot read file", "ok": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func doRequest(engine *gin.Engine, method, path, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req, _ := http.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	body := map[string]interface{}{}
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

// sendFile posts size bytes as multipart field "file". When streamed the
// request has no Content-Length.
func sendFile(t *testing.T, engine *gin.Engine, size int, streamed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "upload.bin")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte{'a'}, size))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	var body io.Reader = &buf
	if streamed {
		body = io.NopCloser(&buf)
	}
	req, _ := http.NewRequest(http.MethodPost, "/upload", body)
	if streamed {
		req.ContentLength = -1
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func assertCookiesCleared(t *testing.T, rec *httptest.ResponseRecorder) {
	t.Helper()
	var names []string
	for _, c := range rec.Result().Cookies() {
		names = append(names, c.Name)
		assert.Empty(t, c.Value)
	}
	assert.ElementsMatch(t, []string{auth.CookieToken, auth.CookieRole}, names)
}

func TestRequireAuth_Success(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserApplicant1.Email, database.TestSeedPassword)
	require.NoError(t, err)

	rec, body := doRequest(protectedEngine(), http.MethodGet, "/protected", token)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, body["ok"])
	assert.Empty(t, rec.Result().Cookies())
}

func TestRequireAuth_NoHeader(t *testing.T) {
	rec, body := doRequest(protectedEngine(), http.MethodGet, "/protected", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "Invalid authorization header")
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	token, _, err := auth.GenerateTokenWithDuration(database.TestUserApplicant1.ID, -1*time.Minute, auth.JwtIssuer)
	require.NoError(t, err)

	rec, body := doRequest(protectedEngine(), http.MethodGet, "/protected", token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Access token expired", body["error"])
	assertCookiesCleared(t, rec)
}

func TestRequireAuth_InvalidToken(t *testing.T) {
	validToken, _, err := auth.GenerateTokenWithDuration(database.TestUserApplicant1.ID, time.Hour, auth.JwtIssuer)
	require.NoError(t, err)

	rec, body := doRequest(protectedEngine(), http.MethodGet, "/protected", validToken+"x")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, body["error"], "Failed to validate token")
	assertCookiesCleared(t, rec)
}

func TestRequireAuth_UnknownUser(t *testing.T) {
	token, _, err := auth.GenerateTokenWithDuration(uuid.New(), time.Hour, auth.JwtIssuer)
	require.NoError(t, err)

	rec, body := doRequest(protectedEngine(), http.MethodGet, "/protected", token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, body["error"], "User not exist")
}

func TestRequireAuth_InvalidIssuer(t *testing.T) {
	token, _, err := auth.GenerateTokenWithDuration(database.TestUserEmployer1.ID, time.Hour, "invalid-issuer")
	require.NoError(t, err)

	rec, body := doRequest(protectedEngine(), http.MethodGet, "/protected", token)

	assert.Equal(t, http.StatusUnauthorized, rec.Code, rec.Body.String())
	assert.Contains(t, body["error"], "Invalid token issuer")
}

func TestJwtBlacklistCheck(t *testing.T) {
	store := auth.NewInMemoryBlacklistStoreWithInterval(0)
	engine := gin.New()
	engine.GET("/protected", JwtBlacklistCheck(store), RequireAuth(testDB), checkUserHandler)

	token, _, err := auth.GenerateStandardToken(database.TestUserApplicant2.ID)
	require.NoError(t, err)

	rec, _ := doRequest(engine, http.MethodGet, "/protected", token)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, store.AddToBlacklist(token, time.Now().Add(time.Hour)))

	rec, body := doRequest(engine, http.MethodGet, "/protected", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token has been revoked", body["error"])
	assertCookiesCleared(t, rec)
}

type failingBlacklist struct{}

func (failingBlacklist) IsBlacklisted(string) (bool, error)      { return false, errors.New("down") }
func (failingBlacklist) AddToBlacklist(string, time.Time) error { return errors.New("down") }

func TestJwtBlacklistCheck_StoreError(t *testing.T) {
	engine := gin.New()
	engine.GET("/protected", JwtBlacklistCheck(failingBlacklist{}), checkUserHandler)

	rec, _ := doRequest(engine, http.MethodGet, "/protected", "abc")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCheckRole_NoRequireAuthBefore(t *testing.T) {
	engine := gin.New()
	engine.GET("/need-role", CheckRole(model.RoleApplicant), roleHandler)

	rec, body := doRequest(engine, http.MethodGet, "/need-role", "")

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, body["error"], "User information not provided")
}

func TestCheckRole(t *testing.T) {
	engine := gin.New()
	engine.GET("/need-role", RequireAuth(testDB), CheckRole(model.RoleApplicant, model.RoleAdmin), roleHandler)

	tests := []struct {
		name   string
		email  string
		status int
	}{
		{"applicant allowed", database.TestUserApplicant1.Email, http.StatusOK},
		{"admin allowed", database.TestAdminEmail, http.StatusOK},
		{"employer forbidden", database.TestUserEmployer1.Email, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := auth.GetAccessToken(t, testDB, tt.email, database.TestSeedPassword)
			require.NoError(t, err)

			rec, body := doRequest(engine, http.MethodGet, "/need-role", token)
			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusForbidden {
				assert.Equal(t, "User doesn't have permission to access", body["error"])
			} else {
				assert.Contains(t, body["message"], "Hello, ")
			}
		})
	}
}

func TestSizeLimit(t *testing.T) {
	const limit = 1 << 20
	engine := gin.New()
	engine.POST("/upload", SizeLimit(limit), readFileHandler)

	tests := []struct {
		name     string
		size     int
		streamed bool
		status   int
	}{
		{"below limit", limit / 2, false, http.StatusOK},
		{"at limit", limit, false, http.StatusOK},
		{"content length over limit", 2 * limit, false, http.StatusRequestEntityTooLarge},
		{"streamed over limit", 2 * limit, true, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := sendFile(t, engine, tt.size, tt.streamed)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRateLimiter(t *testing.T) {
	engine := gin.New()
	engine.GET("/limited", RateLimiterMiddleware(2, nil), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	codes := []int{}
	for i := 0; i < 3; i++ {
		rec, _ := doRequest(engine, http.MethodGet, "/limited", "")
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRateLimiter_Redis(t *testing.T) {
	client := startRedis(t)
	engine := gin.New()
	engine.GET("/limited", RateLimiterMiddleware(2, client), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	codes := []int{}
	for i := 0; i < 3; i++ {
		rec, _ := doRequest(engine, http.MethodGet, "/limited", "")
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimiter_RetryAfter(t *testing.T) {
	engine := gin.New()
	engine.GET("/limited", RateLimiterMiddleware(1, nil), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	doRequest(engine, http.MethodGet, "/limited", "")
	rec, body := doRequest(engine, http.MethodGet, "/limited", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, body["error"], "Too many requests")
}

func TestSafeHeader(t *testing.T) {
	engine := gin.New()
	engine.GET("/", SafeHeader(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	rec, _ := doRequest(engine, http.MethodGet, "/", "")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
