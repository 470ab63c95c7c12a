// Package jobpost provides HTTP handlers for positions, the job openings of companies.
package jobpost

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"JobPortal-backend/internal/apperror"
	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/position"
	"JobPortal-backend/internal/utilities"
)

var errStalePosition = apperror.New(apperror.CodeConflict, "position was modified by someone else", nil)

// PositionController handles position related endpoints
type PositionController struct {
	DB   *database.DBinstanceStruct
	Rule position.Rule
	Now  func() time.Time
}

// NewPositionController creates a new instance of PositionController
func NewPositionController(db *database.DBinstanceStruct, rule position.Rule) *PositionController {
	return &PositionController{
		DB:   db,
		Rule: rule,
		Now:  time.Now,
	}
}

// CreatePosition handles the creation of a new position by an employer.
// @Summary Create position based on given json structure
// @Description Only employers have access to this endpoint. The position belongs to the caller's company.
// @Tags Position
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param position body model.EditablePositionInfo true "Input position information"
// @Success 201 {object} position.View "Successfully create position"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header, or invalid position"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as employer"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /positions [post]
func (jc *PositionController) CreatePosition(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var company model.Company
	if err := jc.DB.WithContext(c.Request.Context()).Where("user_id = ?", user.ID).First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "Only employers with a company can create positions"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve company information: %s", err.Error()),
		})
		return
	}

	pos := model.Position{ID: uuid.New(), CompanyID: company.ID, Version: 1}
	if !decodeInfo(c, &pos.EditablePositionInfo) {
		return
	}

	if err := jc.DB.WithContext(c.Request.Context()).Create(&pos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprint("Failed to create position: ", err),
		})
		return
	}

	utilities.SetETag(c, pos.Version)
	c.JSON(http.StatusCreated, jc.Rule.NewView(pos, jc.Now()))
}

// GetPositions fetches positions that match query, newest first.
// @Summary Get positions based on query
// @Description Every query is optional
// @Tags Position
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param company query string false "Only positions of this company id"
// @Param active query boolean false "Only positions accepting applications now"
// @Param search query string false "Case insensitive substring of position name"
// @Param tag query string false "Only positions carrying this tag"
// @Success 200 {array} position.View "Return matching position(s)"
// @Failure 400 {object} utilities.ErrorResponse "Invalid query"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /positions [get]
func (jc *PositionController) GetPositions(c *gin.Context) {
	now := jc.Now()
	query := jc.DB.WithContext(c.Request.Context()).Preload("Company")

	if raw := c.Query("company"); raw != "" {
		companyID, err := uuid.Parse(raw)
		if err != nil {
			utilities.RespondError(c, apperror.Validation("invalid query", map[string]string{"company": "must be a valid uuid"}))
			return
		}
		query = query.Where("company_id = ?", companyID)
	}

	active := false
	if raw := c.Query("active"); raw != "" {
		var err error
		if active, err = strconv.ParseBool(raw); err != nil {
			utilities.RespondError(c, apperror.Validation("invalid query", map[string]string{"active": "must be true or false"}))
			return
		}
	}
	if active {
		// narrows the scan, the rule below has the final say
		query = query.Where("submission_end >= ?", now)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("name ILIKE ?", utilities.ContainsPattern(search))
	}

	if tag := strings.ToLower(strings.TrimSpace(c.Query("tag"))); tag != "" {
		query = query.Where("? = ANY(tags)", tag)
	}

	positions := []model.Position{}
	if err := query.Order(clause.OrderByColumn{
		Column: clause.Column{Name: "created_at"},
		Desc:   true,
	}).Find(&positions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprint("Failed to fetch positions: ", err.Error()),
		})
		return
	}

	if active {
		positions = jc.Rule.Filter(positions, now)
	}

	c.JSON(http.StatusOK, jc.Rule.NewViews(positions, now))
}

// GetPositionByID retrieves one position with its company.
// @Summary Get position by given ID
// @Description The ETag header carries the version to send back in If-Match when editing
// @Tags Position
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of desired position"
// @Success 200 {object} position.View "Return position"
// @Failure 400 {object} utilities.ErrorResponse "Invalid position id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Position not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /positions/{id} [get]
func (jc *PositionController) GetPositionByID(c *gin.Context) {
	pos, ok := jc.loadPosition(c, true)
	if !ok {
		return
	}

	utilities.SetETag(c, pos.Version)
	c.JSON(http.StatusOK, jc.Rule.NewView(pos, jc.Now()))
}

// EditPosition replaces the editable fields of a position its company owns.
// @Summary Edit position based on given json structure
// @Description Only the employer owning the position can edit. If-Match with the current version is optional; a stale version answers 409.
// @Tags Position
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param If-Match header string false "Expected version"
// @Param id path string true "ID of desired position"
// @Param position body model.EditablePositionInfo true "Input position information"
// @Success 200 {object} position.View "Successfully update position"
// @Failure 400 {object} utilities.ErrorResponse "Invalid position"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not have permission to edit"
// @Failure 404 {object} utilities.ErrorResponse "Position not found"
// @Failure 409 {object} utilities.ErrorResponse "Position was modified by someone else"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /positions/{id} [put]
func (jc *PositionController) EditPosition(c *gin.Context) {
	expected, err := utilities.IfMatchVersion(c)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	pos, ok := jc.loadPosition(c, false)
	if !ok || !jc.checkOwner(c, pos, false) {
		return
	}

	if expected > 0 && expected != pos.Version {
		utilities.RespondError(c, errStalePosition)
		return
	}

	info := model.EditablePositionInfo{}
	if !decodeInfo(c, &info) {
		return
	}

	result := jc.DB.WithContext(c.Request.Context()).
		Model(&model.Position{}).
		Where("id = ? AND version = ?", pos.ID, pos.Version).
		Select("Name", "Description", "Capacity", "Salary", "SubmissionStart", "SubmissionEnd", "Tags", "Version").
		Updates(model.Position{EditablePositionInfo: info, Version: pos.Version + 1})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update position: %s", result.Error.Error()),
		})
		return
	}
	if result.RowsAffected == 0 {
		utilities.RespondError(c, errStalePosition)
		return
	}

	if err := jc.DB.WithContext(c.Request.Context()).Preload("Company").First(&pos, "id = ?", pos.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve updated position: %s", err.Error()),
		})
		return
	}

	utilities.SetETag(c, pos.Version)
	c.JSON(http.StatusOK, jc.Rule.NewView(pos, jc.Now()))
}

// DeletePosition removes a position and its applications.
// @Summary Delete given position ID
// @Description Only the employer owning the position or an admin can delete
// @Tags Position
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of desired position"
// @Success 200 {object} utilities.MessageResponse "Successfully delete position"
// @Failure 400 {object} utilities.ErrorResponse "Invalid position id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not have permission to delete this position"
// @Failure 404 {object} utilities.ErrorResponse "Position not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /positions/{id} [delete]
func (jc *PositionController) DeletePosition(c *gin.Context) {
	pos, ok := jc.loadPosition(c, false)
	if !ok || !jc.checkOwner(c, pos, true) {
		return
	}

	if err := jc.DB.WithContext(c.Request.Context()).Delete(&pos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete position: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Position deleted"})
}

func (jc *PositionController) loadPosition(c *gin.Context, withCompany bool) (model.Position, bool) {
	var pos model.Position
	id, err := utilities.ParseUUIDParam(c, "id")
	if err != nil {
		utilities.RespondError(c, err)
		return pos, false
	}

	query := jc.DB.WithContext(c.Request.Context())
	if withCompany {
		query = query.Preload("Company")
	}
	if err := query.First(&pos, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Position not found"})
			return pos, false
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve position: %s", err.Error()),
		})
		return pos, false
	}
	return pos, true
}

// checkOwner writes 403 unless the caller owns the company of pos. Admins
// pass when allowAdmin is set.
func (jc *PositionController) checkOwner(c *gin.Context, pos model.Position, allowAdmin bool) bool {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return false
	}
	if allowAdmin && user.Role == model.RoleAdmin {
		return true
	}

	var company model.Company
	err = jc.DB.WithContext(c.Request.Context()).Where("user_id = ?", user.ID).First(&company).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve company information: %s", err.Error()),
		})
		return false
	}
	if err != nil || company.ID != pos.CompanyID {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{
			Error: "You are not allowed to change this position",
		})
		return false
	}
	return true
}

// decodeInfo reads and validates the request body into info, answering 400 on failure.
func decodeInfo(c *gin.Context, info *model.EditablePositionInfo) bool {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return false
	}
	info.Name = strings.TrimSpace(info.Name)
	for i, tag := range info.Tags {
		info.Tags[i] = strings.ToLower(strings.TrimSpace(tag))
	}
	if fields := info.Validate(); len(fields) > 0 {
		utilities.RespondError(c, apperror.Validation("invalid position", fields))
		return false
	}
	return true
}
