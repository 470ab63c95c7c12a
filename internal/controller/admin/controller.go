// Package admin provides HTTP handlers only administrators can reach.
package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"JobPortal-backend/internal/apperror"
	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/utilities"
)

// AdminController handles administration endpoints
type AdminController struct {
	DB *database.DBinstanceStruct
}

// NewAdminController creates a new instance of AdminController
func NewAdminController(db *database.DBinstanceStruct) *AdminController {
	return &AdminController{
		DB: db,
	}
}

// GetUsers lists users, optionally of the given roles.
// @Summary Get users based on given query
// @Description Only admin can access this endpoint
// @Description If no query given, the server will return every user
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param role query string false "Space separated roles, case insensitive" example(employer applicant)
// @Param search query string false "Case insensitive substring of name or email"
// @Success 200 {array} model.User
// @Failure 400 {object} utilities.ErrorResponse "Unknown role"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not logged in as admin"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/users [get]
func (jc *AdminController) GetUsers(c *gin.Context) {
	query := jc.DB.WithContext(c.Request.Context())

	if rawRole := strings.TrimSpace(c.Query("role")); rawRole != "" {
		roles := strings.Fields(strings.ToUpper(rawRole))
		for _, role := range roles {
			if !model.IsKnownRole(role) {
				utilities.RespondError(c, apperror.Validation("invalid query", map[string]string{
					"role": fmt.Sprintf("unknown role %q", strings.ToLower(role)),
				}))
				return
			}
		}
		query = query.Where("role IN ?", roles)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		like := utilities.ContainsPattern(search)
		query = query.Where("name ILIKE ? OR email ILIKE ?", like, like)
	}

	users := []model.User{}
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, users)
}

// DeleteUser removes a user together with its company or profile and everything under them.
// @Summary Delete user by given ID
// @Description Only admin can access this endpoint. Admins cannot delete themselves.
// @Tags Admin
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of user"
// @Success 200 {object} utilities.MessageResponse "Successfully delete user"
// @Failure 400 {object} utilities.ErrorResponse "Invalid user id or deleting self"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Do not logged in as admin"
// @Failure 404 {object} utilities.ErrorResponse "User not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /admin/users/{id} [delete]
func (jc *AdminController) DeleteUser(c *gin.Context) {
	admin, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := utilities.ParseUUIDParam(c, "id")
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	if id == admin.ID {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "You cannot delete your own account"})
		return
	}

	var user model.User
	if err := jc.DB.WithContext(c.Request.Context()).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	// company, profile, positions and applications cascade from the user row
	if err := jc.DB.WithContext(c.Request.Context()).Delete(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete user: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "User deleted"})
}
