package application

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"

	"JobPortal-backend/internal/auth"
	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/middleware"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/position"
	"JobPortal-backend/internal/testutil"
	"JobPortal-backend/internal/workflow"
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

func newRouter() *gin.Engine {
	service := workflow.NewService(workflow.NewGormStore(testDB.DB), position.RuleEndOnly, zerolog.Nop())
	ac := NewApplicationController(testDB, service)

	r := gin.New()
	r.Use(middleware.RequireAuth(testDB))
	r.POST("/positions/:id/apply", middleware.CheckRole(model.RoleApplicant), ac.Apply)
	r.GET("/applications", ac.GetApplications)
	r.GET("/applications/summary", middleware.CheckRole(model.RoleEmployer), ac.GetSummary)
	r.PATCH("/applications/:id/status", middleware.CheckRole(model.RoleEmployer), ac.UpdateStatus)
	r.PUT("/applications/:id/override", middleware.CheckRole(model.RoleAdmin), ac.Override)
	r.GET("/applications/:id/history", ac.GetHistory)
	return r
}

func token(t *testing.T, email string) string {
	t.Helper()
	tok, err := auth.GetAccessToken(t, testDB, email, database.TestSeedPassword)
	require.NoError(t, err)
	return tok
}

func listApps(t *testing.T, r *gin.Engine, tok, url string) (int, []model.Application) {
	t.Helper()
	rec, _ := testutil.MakeJSONRequest(nil, tok, r, url, http.MethodGet)
	if rec.Code != http.StatusOK {
		return rec.Code, nil
	}
	var apps []model.Application
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apps))
	return rec.Code, apps
}

func ids(apps []model.Application) []string {
	out := make([]string, 0, len(apps))
	for _, a := range apps {
		out = append(out, a.ID.String())
	}
	return out
}

func TestApplicationFlow(t *testing.T) {
	r := newRouter()
	alice := token(t, database.TestUserApplicant1.Email)
	bob := token(t, database.TestUserApplicant2.Email)
	owner := token(t, database.TestUserEmployer1.Email)
	otherEmployer := token(t, database.TestUserEmployer2.Email)
	admin := token(t, database.TestAdminEmail)

	applyURL := "/positions/" + database.TestPositionOpen1.ID.String() + "/apply"

	// submit
	rec, resp := testutil.MakeJSONRequest(nil, alice, r, applyURL, http.MethodPost)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, model.ApplicationStatusPending, resp["status"])
	appID := resp["id"].(string)
	appURL := "/applications/" + appID

	rec, _ = testutil.MakeJSONRequest(nil, alice, r, applyURL, http.MethodPost)
	assert.Equal(t, http.StatusConflict, rec.Code, "second application to same position")

	rec, _ = testutil.MakeJSONRequest(nil, alice, r, "/positions/"+database.TestPositionClosed.ID.String()+"/apply", http.MethodPost)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec, _ = testutil.MakeJSONRequest(nil, owner, r, applyURL, http.MethodPost)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// visibility of lists
	code, apps := listApps(t, r, alice, "/applications")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, ids(apps), appID)

	code, _ = listApps(t, r, alice, "/applications?applicant="+database.TestProfile2.ID.String())
	assert.Equal(t, http.StatusForbidden, code)

	code, apps = listApps(t, r, owner, "/applications?position="+database.TestPositionOpen1.ID.String())
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, ids(apps), appID)

	code, _ = listApps(t, r, otherEmployer, "/applications?company="+database.TestCompany1.ID.String())
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = listApps(t, r, otherEmployer, "/applications?position="+database.TestPositionOpen1.ID.String())
	assert.Equal(t, http.StatusForbidden, code)
	code, apps = listApps(t, r, otherEmployer, "/applications")
	require.Equal(t, http.StatusOK, code)
	assert.NotContains(t, ids(apps), appID)

	code, _ = listApps(t, r, owner, "/applications?position=nope")
	assert.Equal(t, http.StatusBadRequest, code)

	// decide
	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "ACCEPTED"}, otherEmployer, r, appURL+"/status", http.MethodPatch)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = testutil.MakeJSONRequest(gin.H{"status": "MAYBE"}, owner, r, appURL+"/status", http.MethodPatch)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["fields"], "status")

	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "ACCEPTED"}, owner, r, appURL+"/status", http.MethodPatch, map[string]string{"If-Match": `"5"`})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec, resp = testutil.MakeJSONRequest(gin.H{"status": "accepted"}, owner, r, appURL+"/status", http.MethodPatch, map[string]string{"If-Match": `"1"`})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.ApplicationStatusAccepted, resp["status"])
	assert.Equal(t, `"2"`, rec.Header().Get("ETag"))

	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "REJECTED"}, owner, r, appURL+"/status", http.MethodPatch)
	assert.Equal(t, http.StatusConflict, rec.Code, "decisions are final")

	// the applicant sees the decision
	_, apps = listApps(t, r, alice, "/applications")
	for _, a := range apps {
		if a.ID.String() == appID {
			assert.Equal(t, model.ApplicationStatusAccepted, a.Status)
		}
	}

	rec, resp = testutil.MakeJSONRequest(nil, owner, r, "/applications/summary", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.GreaterOrEqual(t, resp["accepted"], float64(1))
	assert.GreaterOrEqual(t, resp["total"], float64(1))

	// admin override
	rec, resp = testutil.MakeJSONRequest(gin.H{"status": "REJECTED"}, admin, r, appURL+"/override", http.MethodPut)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, resp["fields"], "reason")

	rec, _ = testutil.MakeJSONRequest(gin.H{"status": "REJECTED", "reason": "x"}, owner, r, appURL+"/override", http.MethodPut)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = testutil.MakeJSONRequest(gin.H{"status": "REJECTED", "reason": "accepted by mistake"}, admin, r, appURL+"/override", http.MethodPut)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.ApplicationStatusRejected, resp["status"])

	// history
	rec, _ = testutil.MakeJSONRequest(nil, alice, r, appURL+"/history", http.MethodGet)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []model.ApplicationAudit
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 3)
	assert.Equal(t, model.ApplicationStatusPending, history[0].ToStatus)
	assert.Equal(t, model.ApplicationStatusAccepted, history[1].ToStatus)
	assert.True(t, history[2].Override)
	assert.Equal(t, "accepted by mistake", history[2].Reason)

	rec, _ = testutil.MakeJSONRequest(nil, bob, r, appURL+"/history", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = testutil.MakeJSONRequest(nil, otherEmployer, r, appURL+"/history", http.MethodGet)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec, _ = testutil.MakeJSONRequest(nil, admin, r, appURL+"/history", http.MethodGet)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListSortedNewestFirst(t *testing.T) {
	r := newRouter()
	bob := token(t, database.TestUserApplicant2.Email)

	for _, p := range []model.Position{database.TestPositionOpen1, database.TestPositionOpen2} {
		rec, _ := testutil.MakeJSONRequest(nil, bob, r, "/positions/"+p.ID.String()+"/apply", http.MethodPost)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	code, apps := listApps(t, r, bob, "/applications")
	require.Equal(t, http.StatusOK, code)
	require.Len(t, apps, 2)
	assert.Equal(t, database.TestPositionOpen2.ID, apps[0].PositionID)
	assert.False(t, apps[0].AppliedAt.Before(apps[1].AppliedAt))
	require.NotNil(t, apps[0].Position)
	assert.Equal(t, "Data Analyst", apps[0].Position.Name)

	admin := token(t, database.TestAdminEmail)
	code, all := listApps(t, r, admin, "/applications?applicant="+database.TestProfile2.ID.String())
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, all, 2)
}
