// Package company provides HTTP handlers for company profiles.
package company

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/position"
	"JobPortal-backend/internal/utilities"
)

// CompanyController handles company related endpoints
type CompanyController struct {
	DB   *database.DBinstanceStruct
	Rule position.Rule
	Now  func() time.Time
}

// NewCompanyController creates a new instance of CompanyController
func NewCompanyController(db *database.DBinstanceStruct, rule position.Rule) *CompanyController {
	return &CompanyController{
		DB:   db,
		Rule: rule,
		Now:  time.Now,
	}
}

// CompanyResponse is a company with its positions and their open flag.
type CompanyResponse struct {
	model.Company
	Positions []position.View `json:"positions"`
}

// GetCompanies lists companies ordered by name.
// @Summary List companies
// @Tags Company
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param search query string false "Case insensitive substring of company name"
// @Success 200 {array} model.Company "Successfully retrieve companies"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /companies [get]
func (jc *CompanyController) GetCompanies(c *gin.Context) {
	query := jc.DB.WithContext(c.Request.Context()).Preload("User")
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("name ILIKE ?", utilities.ContainsPattern(search))
	}

	companies := []model.Company{}
	if err := query.Order(clause.OrderByColumn{Column: clause.Column{Name: "name"}}).Find(&companies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve companies: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, companies)
}

// GetCompanyByID retrieves a company with its positions.
// @Summary Retrieve company profile by given ID
// @Tags Company
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of company"
// @Success 200 {object} CompanyResponse "Successfully retrieve company profile"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header or company id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Company not exist"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /companies/{id} [get]
func (jc *CompanyController) GetCompanyByID(c *gin.Context) {
	id, err := utilities.ParseUUIDParam(c, "id")
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	company := model.Company{}
	if err := jc.DB.WithContext(c.Request.Context()).
		Preload("User").
		Preload("Positions", func(db *gorm.DB) *gorm.DB {
			return db.Order("submission_end DESC")
		}).
		First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve company information from database: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, jc.toResponse(company))
}

// EditCompany overwrites the company profile of its owner.
// @Summary Edit company profile
// @Description Empty fields keep their current value. Only the owning employer can edit.
// @Tags Company
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of company"
// @Param company body model.EditableCompanyInfo true "Company info to be written"
// @Success 200 {object} CompanyResponse "Successfully overwrite"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header or request body"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner of this company"
// @Failure 404 {object} utilities.ErrorResponse "Company not exist"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /companies/{id} [put]
func (jc *CompanyController) EditCompany(c *gin.Context) {
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

	company := model.Company{}
	if err := jc.DB.WithContext(c.Request.Context()).Preload("User").First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Company not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Fail to retrieve company from database: %s", err.Error()),
		})
		return
	}
	if company.UserID != user.ID {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You can only edit your own company"})
		return
	}

	edited := model.EditableCompanyInfo{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&edited); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}
	edited.Name = strings.TrimSpace(edited.Name)

	utilities.MergeNonEmpty(&company.EditableCompanyInfo, &edited)

	if err := jc.DB.WithContext(c.Request.Context()).
		Model(&company).
		Select("Name", "Address", "Phone", "Description").
		Updates(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update company information: %s", err.Error()),
		})
		return
	}

	if err := jc.DB.WithContext(c.Request.Context()).
		Where("company_id = ?", company.ID).
		Order("submission_end DESC").
		Find(&company.Positions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve positions: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, jc.toResponse(company))
}

func (jc *CompanyController) toResponse(company model.Company) CompanyResponse {
	views := jc.Rule.NewViews(company.Positions, jc.Now())
	company.Positions = nil
	return CompanyResponse{Company: company, Positions: views}
}
