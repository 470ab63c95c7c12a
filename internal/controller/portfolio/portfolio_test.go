package portfolio

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"JobPortal-backend/internal/auth"
	"JobPortal-backend/internal/controller/file"
	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/middleware"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/testutil"
)

var testDB *database.DBinstanceStruct

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")

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

func newRouter() *gin.Engine {
	pc := NewPortfolioController(testDB, file.NewFileController(testDB, nil), 1<<20)
	r := gin.New()
	r.Use(middleware.RequireAuth(testDB))
	r.GET("/portfolio-items", pc.GetItems)
	r.POST("/portfolio-items", middleware.CheckRole(model.RoleApplicant), pc.CreateItem)
	r.PUT("/portfolio-items/:id", middleware.CheckRole(model.RoleApplicant), pc.UpdateItem)
	r.DELETE("/portfolio-items/:id", middleware.CheckRole(model.RoleApplicant), pc.DeleteItem)
	return r
}

func token(t *testing.T, email string) string {
	t.Helper()
	tok, err := auth.GetAccessToken(t, testDB, email, database.TestSeedPassword)
	require.NoError(t, err)
	return tok
}

func TestPortfolioLifecycle(t *testing.T) {
	r := newRouter()
	alice := token(t, database.TestUserApplicant1.Email)

	rec, resp := testutil.MakeMultipartRequest(
		map[string]string{"skill": "Go", "description": "gin and gorm"},
		map[string][]byte{"file": samplePDF},
		alice, r, "/portfolio-items", http.MethodPost,
	)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	itemID := resp["id"].(string)
	require.NotNil(t, resp["file_id"])
	firstFile := int(resp["file_id"].(float64))

	var stored model.File
	require.NoError(t, testDB.First(&stored, firstFile).Error)
	assert.Equal(t, "application/pdf", stored.ContentType)

	// listed for employer by owner and for applicant without owner
	employer := token(t, database.TestUserEmployer1.Email)
	for _, tc := range []struct{ tok, url string }{
		{employer, "/portfolio-items?owner=" + database.TestProfile1.ID.String()},
		{alice, "/portfolio-items"},
	} {
		rec, _ = testutil.MakeJSONRequest(nil, tc.tok, r, tc.url, http.MethodGet)
		require.Equal(t, http.StatusOK, rec.Code)
		var items []model.PortfolioItem
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
		require.NotEmpty(t, items)
		assert.Equal(t, itemID, items[0].ID.String())
	}

	rec, resp = testutil.MakeMultipartRequest(
		map[string]string{"skill": "Golang"},
		map[string][]byte{"file": samplePDF},
		alice, r, "/portfolio-items/"+itemID, http.MethodPut,
	)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Golang", resp["skill"])
	assert.Equal(t, "gin and gorm", resp["description"])
	assert.NotEqual(t, float64(firstFile), resp["file_id"])

	var count int64
	testDB.Model(&model.File{}).Where("id = ?", firstFile).Count(&count)
	assert.Zero(t, count, "replaced file is removed")

	rec, _ = testutil.MakeJSONRequest(nil, alice, r, "/portfolio-items/"+itemID, http.MethodDelete)
	require.Equal(t, http.StatusOK, rec.Code)
	testDB.Model(&model.PortfolioItem{}).Where("id = ?", itemID).Count(&count)
	assert.Zero(t, count)
}

func TestCreateItem_Invalid(t *testing.T) {
	r := newRouter()
	alice := token(t, database.TestUserApplicant1.Email)

	tests := []struct {
		name   string
		fields map[string]string
		files  map[string][]byte
		status int
	}{
		{"missing skill", map[string]string{"description": "x"}, nil, http.StatusBadRequest},
		{"text file", map[string]string{"skill": "Go"}, map[string][]byte{"file": []byte("plain text")}, http.StatusUnsupportedMediaType},
		{"too large", map[string]string{"skill": "Go"}, map[string][]byte{"file": append(samplePDF, make([]byte, 2<<20)...)}, http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := testutil.MakeMultipartRequest(tt.fields, tt.files, alice, r, "/portfolio-items", http.MethodPost)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestPortfolio_OwnerOnly(t *testing.T) {
	r := newRouter()
	alice := token(t, database.TestUserApplicant1.Email)
	bob := token(t, database.TestUserApplicant2.Email)

	rec, resp := testutil.MakeMultipartRequest(map[string]string{"skill": "SQL"}, nil, alice, r, "/portfolio-items", http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	itemID := resp["id"].(string)

	rec, _ = testutil.MakeMultipartRequest(map[string]string{"skill": "Stolen"}, nil, bob, r, "/portfolio-items/"+itemID, http.MethodPut)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, bob, r, "/portfolio-items/"+itemID, http.MethodDelete)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	employer := token(t, database.TestUserEmployer1.Email)
	rec, _ = testutil.MakeMultipartRequest(map[string]string{"skill": "Go"}, nil, employer, r, "/portfolio-items", http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, employer, r, "/portfolio-items", http.MethodGet)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "employer must name an owner")
}
