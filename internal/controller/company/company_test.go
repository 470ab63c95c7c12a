package company

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"JobPortal-backend/internal/auth"
	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/middleware"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/position"
	"JobPortal-backend/internal/testutil"
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

func newRouter(rule position.Rule) *gin.Engine {
	cc := NewCompanyController(testDB, rule)
	r := gin.New()
	r.GET("/companies", middleware.RequireAuth(testDB), cc.GetCompanies)
	r.GET("/companies/:id", middleware.RequireAuth(testDB), cc.GetCompanyByID)
	r.PUT("/companies/:id", middleware.RequireAuth(testDB), middleware.CheckRole(model.RoleEmployer), cc.EditCompany)
	return r
}

func TestGetCompanies(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserApplicant1.Email, database.TestSeedPassword)
	require.NoError(t, err)
	r := newRouter(position.RuleEndOnly)

	rec, _ := testutil.MakeJSONRequest(nil, token, r, "/companies", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []model.Company
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.GreaterOrEqual(t, len(all), 2)

	rec, _ = testutil.MakeJSONRequest(nil, token, r, "/companies?search=nova", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	var found []model.Company
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	require.Len(t, found, 1)
	assert.Equal(t, database.TestCompany1.ID, found[0].ID)
}

func TestGetCompanyByID_WithPositions(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserApplicant1.Email, database.TestSeedPassword)
	require.NoError(t, err)

	rec, _ := testutil.MakeJSONRequest(nil, token, newRouter(position.RuleEndOnly), "/companies/"+database.TestCompany1.ID.String(), http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp CompanyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "TechNova", resp.Name)
	open := map[uuid.UUID]bool{}
	for _, v := range resp.Positions {
		open[v.ID] = v.IsOpen
	}
	assert.True(t, open[database.TestPositionOpen1.ID])
	assert.False(t, open[database.TestPositionClosed.ID])
}

func TestGetCompanyByID_NotFound(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserApplicant1.Email, database.TestSeedPassword)
	require.NoError(t, err)

	rec, _ := testutil.MakeJSONRequest(nil, token, newRouter(position.RuleEndOnly), "/companies/"+uuid.NewString(), http.MethodGet)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEditCompany(t *testing.T) {
	token, err := auth.GetAccessToken(t, testDB, database.TestUserEmployer2.Email, database.TestSeedPassword)
	require.NoError(t, err)
	r := newRouter(position.RuleEndOnly)
	endpoint := "/companies/" + database.TestCompany2.ID.String()

	rec, resp := testutil.MakeJSONRequest(gin.H{"description": "Now hiring"}, token, r, endpoint, http.MethodPut)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Now hiring", resp["description"])
	assert.Equal(t, "DataForge", resp["name"], "empty field keeps stored value")

	var stored model.Company
	require.NoError(t, testDB.First(&stored, "id = ?", database.TestCompany2.ID).Error)
	assert.Equal(t, "Now hiring", stored.Description)
}

func TestEditCompany_Rejected(t *testing.T) {
	employer1, err := auth.GetAccessToken(t, testDB, database.TestUserEmployer1.Email, database.TestSeedPassword)
	require.NoError(t, err)
	applicant, err := auth.GetAccessToken(t, testDB, database.TestUserApplicant1.Email, database.TestSeedPassword)
	require.NoError(t, err)
	r := newRouter(position.RuleEndOnly)
	endpoint := "/companies/" + database.TestCompany2.ID.String()

	tests := []struct {
		name   string
		token  string
		body   gin.H
		status int
	}{
		{"other employer", employer1, gin.H{"name": "Taken"}, http.StatusForbidden},
		{"applicant role", applicant, gin.H{"name": "Taken"}, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _ := testutil.MakeJSONRequest(tt.body, tt.token, r, endpoint, http.MethodPut)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	own := "/companies/" + database.TestCompany1.ID.String()
	rec, _ := testutil.MakeJSONRequest(gin.H{"user_id": uuid.NewString()}, employer1, r, own, http.MethodPut)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
