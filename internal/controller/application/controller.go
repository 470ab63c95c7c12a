// Package application provides HTTP handlers for job application operations.
package application

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"JobPortal-backend/internal/apperror"
	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/utilities"
	"JobPortal-backend/internal/workflow"
)

// ApplicationController handles job application related endpoints
type ApplicationController struct {
	DB       *database.DBinstanceStruct
	Workflow *workflow.Service
}

// NewApplicationController creates a new instance of ApplicationController
func NewApplicationController(db *database.DBinstanceStruct, service *workflow.Service) *ApplicationController {
	return &ApplicationController{
		DB:       db,
		Workflow: service,
	}
}

type decideRequest struct {
	Status string `json:"status" binding:"required" enums:"ACCEPTED,REJECTED"`
}

type overrideRequest struct {
	Status string `json:"status" binding:"required" enums:"PENDING,ACCEPTED,REJECTED"`
	Reason string `json:"reason"`
}

// Apply creates a pending application of the caller to a position.
// @Summary Apply to a position
// @Description Only applicants can apply, once per position, while the position accepts applications
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of position"
// @Success 201 {object} model.Application "Successfully apply"
// @Failure 400 {object} utilities.ErrorResponse "Invalid position id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as applicant"
// @Failure 404 {object} utilities.ErrorResponse "Position or profile not found"
// @Failure 409 {object} utilities.ErrorResponse "Already applied to this position"
// @Failure 422 {object} utilities.ErrorResponse "Position is not accepting applications"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /positions/{id}/apply [post]
func (j *ApplicationController) Apply(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	positionID, err := utilities.ParseUUIDParam(c, "id")
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	app, err := j.Workflow.Submit(c.Request.Context(), user.ID, positionID)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	utilities.SetETag(c, app.Version)
	c.JSON(http.StatusCreated, app)
}

// UpdateStatus accepts or rejects a pending application.
// @Summary Decide an application
// @Description Only the employer owning the position can decide. ACCEPTED and REJECTED are final. If-Match with the current version is optional.
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param If-Match header string false "Expected version"
// @Param id path string true "ID of application"
// @Param status body decideRequest true "New status"
// @Success 200 {object} model.Application "Successfully decide"
// @Failure 400 {object} utilities.ErrorResponse "Invalid status"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Application belongs to another employer"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 409 {object} utilities.ErrorResponse "Already decided or stale version"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/{id}/status [patch]
func (j *ApplicationController) UpdateStatus(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := utilities.ParseUUIDParam(c, "id")
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	expected, err := utilities.IfMatchVersion(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utilities.RespondError(c, apperror.Validation("Invalid request body", map[string]string{"status": "status is required"}))
		return
	}

	app, err := j.Workflow.Decide(c.Request.Context(), id, req.Status, user.ID, expected)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	utilities.SetETag(c, app.Version)
	c.JSON(http.StatusOK, app)
}

// Override sets any status on an application, recording the reason.
// @Summary Override an application decision
// @Description Only admin can access this endpoint. The change is recorded in the application history.
// @Tags Application
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param If-Match header string false "Expected version"
// @Param id path string true "ID of application"
// @Param override body overrideRequest true "New status and reason"
// @Success 200 {object} model.Application "Successfully override"
// @Failure 400 {object} utilities.ErrorResponse "Invalid status or missing reason"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as admin"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 409 {object} utilities.ErrorResponse "Stale version"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/{id}/override [put]
func (j *ApplicationController) Override(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := utilities.ParseUUIDParam(c, "id")
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	expected, err := utilities.IfMatchVersion(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	var req overrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utilities.RespondError(c, apperror.Validation("Invalid request body", map[string]string{"status": "status is required"}))
		return
	}

	actor := workflow.Actor{ID: user.ID, Role: user.Role}
	app, err := j.Workflow.Override(c.Request.Context(), id, req.Status, actor, req.Reason, expected)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	utilities.SetETag(c, app.Version)
	c.JSON(http.StatusOK, app)
}

// GetApplications lists applications visible to the caller, newest first.
// @Summary List applications
// @Description Applicants see their own applications, employers the applications to their company, admin everything.
// @Description Filters narrow the visible set; asking for another company or applicant answers 403.
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param company query string false "ID of company"
// @Param applicant query string false "ID of applicant profile"
// @Param position query string false "ID of position"
// @Success 200 {array} model.Application "Return applications"
// @Failure 400 {object} utilities.ErrorResponse "Invalid query"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not allowed to see these applications"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications [get]
func (j *ApplicationController) GetApplications(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	filter, err := parseFilter(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	apps, err := j.Workflow.ListVisible(c.Request.Context(), workflow.Actor{ID: user.ID, Role: user.Role}, filter)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, apps)
}

// GetSummary counts applications to the caller's company by status.
// @Summary Application counts for employer dashboard
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Success 200 {object} model.ApplicationSummary "Return counts"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as employer"
// @Failure 404 {object} utilities.ErrorResponse "Company not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/summary [get]
func (j *ApplicationController) GetSummary(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	summary, err := j.Workflow.Summary(c.Request.Context(), user.ID)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetHistory returns the status changes of an application, oldest first.
// @Summary Application history
// @Description Visible to the applicant, the owning employer and admin
// @Tags Application
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of application"
// @Success 200 {array} model.ApplicationAudit "Return history"
// @Failure 400 {object} utilities.ErrorResponse "Invalid application id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not allowed to see this application"
// @Failure 404 {object} utilities.ErrorResponse "Application not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /applications/{id}/history [get]
func (j *ApplicationController) GetHistory(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := utilities.ParseUUIDParam(c, "id")
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	audits, err := j.Workflow.History(c.Request.Context(), id, workflow.Actor{ID: user.ID, Role: user.Role})
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, audits)
}

func parseFilter(c *gin.Context) (workflow.Filter, error) {
	var filter workflow.Filter
	fields := map[string]string{}
	parse := func(name string, dst **uuid.UUID) {
		raw := c.Query(name)
		if raw == "" {
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			fields[name] = "must be a valid uuid"
			return
		}
		*dst = &id
	}
	parse("company", &filter.CompanyID)
	parse("applicant", &filter.ApplicantID)
	parse("position", &filter.PositionID)
	if len(fields) > 0 {
		return filter, apperror.Validation("invalid query", fields)
	}
	return filter, nil
}
