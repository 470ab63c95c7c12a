// Package society provides HTTP handlers for applicant profiles.
package society

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"JobPortal-backend/internal/apperror"
	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/utilities"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,19}$`)

// SocietyController handles applicant profile endpoints
type SocietyController struct {
	DB *database.DBinstanceStruct
}

// NewSocietyController creates a new instance of SocietyController
func NewSocietyController(db *database.DBinstanceStruct) *SocietyController {
	return &SocietyController{
		DB: db,
	}
}

// editSociety is the body of EditSociety. Nil fields keep the stored value,
// an empty date_of_birth or gender clears it.
type editSociety struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	DateOfBirth *string `json:"date_of_birth" example:"2001-04-12"`
	Gender      *string `json:"gender" enums:"male,female"`
}

func (e editSociety) apply(info *model.EditableApplicantInfo) map[string]string {
	fields := map[string]string{}
	if e.Name != nil {
		name := strings.TrimSpace(*e.Name)
		if name == "" {
			fields["name"] = "name must not be empty"
		}
		info.Name = name
	}
	if e.Phone != nil {
		phone := strings.TrimSpace(*e.Phone)
		if phone != "" && !phonePattern.MatchString(phone) {
			fields["phone"] = "phone must contain 6 to 20 digits"
		}
		info.Phone = phone
	}
	if e.Address != nil {
		info.Address = strings.TrimSpace(*e.Address)
	}
	if e.DateOfBirth != nil {
		raw := strings.TrimSpace(*e.DateOfBirth)
		if raw == "" {
			info.DateOfBirth = nil
		} else if dob, err := time.Parse(model.DateLayout, raw); err != nil {
			fields["date_of_birth"] = "date of birth must be in YYYY-MM-DD format"
		} else if dob.After(time.Now()) {
			fields["date_of_birth"] = "date of birth must be in the past"
		} else {
			info.DateOfBirth = &dob
		}
	}
	if e.Gender != nil {
		gender := strings.ToLower(strings.TrimSpace(*e.Gender))
		if gender != "" && gender != model.GenderMale && gender != model.GenderFemale {
			fields["gender"] = "gender must be male or female"
		}
		info.Gender = gender
	}
	return fields
}

// GetSocieties lists applicant profiles.
// @Summary List applicant profiles
// @Tags Society
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param search query string false "Case insensitive substring of applicant name"
// @Success 200 {array} model.ApplicantProfile "Successfully retrieve profiles"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /societies [get]
func (jc *SocietyController) GetSocieties(c *gin.Context) {
	query := jc.DB.WithContext(c.Request.Context()).Preload("User")
	if search := strings.TrimSpace(c.Query("search")); search != "" {
		query = query.Where("name ILIKE ?", utilities.ContainsPattern(search))
	}

	profiles := []model.ApplicantProfile{}
	if err := query.Order("name").Find(&profiles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve profiles: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// GetSociety retrieves one applicant profile with its portfolio.
// @Summary Retrieve applicant profile by given ID
// @Tags Society
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of applicant profile"
// @Success 200 {object} model.ApplicantProfile "Successfully retrieve profile"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header or profile id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /societies/{id} [get]
func (jc *SocietyController) GetSociety(c *gin.Context) {
	id, err := utilities.ParseUUIDParam(c, "id")
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	profile := model.ApplicantProfile{}
	if err := jc.DB.WithContext(c.Request.Context()).
		Preload("User").
		Preload("Portfolio", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		}).
		First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve profile from database: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// EditSociety overwrites the applicant profile of its owner.
// @Summary Edit applicant profile
// @Description Omitted fields keep their current value. date_of_birth uses YYYY-MM-DD and gender is male or female.
// @Tags Society
// @Accept json
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of applicant profile"
// @Param profile body editSociety true "Profile info to be written"
// @Success 200 {object} model.ApplicantProfile "Successfully overwrite"
// @Failure 400 {object} utilities.ErrorResponse "Invalid request body or field"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner of this profile"
// @Failure 404 {object} utilities.ErrorResponse "Profile not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /societies/{id} [put]
func (jc *SocietyController) EditSociety(c *gin.Context) {
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

	profile := model.ApplicantProfile{}
	if err := jc.DB.WithContext(c.Request.Context()).Preload("User").First(&profile, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve profile from database: %s", err.Error()),
		})
		return
	}
	if profile.UserID != user.ID {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You can only edit your own profile"})
		return
	}

	edited := editSociety{}
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&edited); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Invalid request body: %s", err.Error()),
		})
		return
	}

	if fields := edited.apply(&profile.EditableApplicantInfo); len(fields) > 0 {
		utilities.RespondError(c, apperror.Validation("invalid profile", fields))
		return
	}

	if err := jc.DB.WithContext(c.Request.Context()).
		Model(&profile).
		Select("Name", "Phone", "Address", "DateOfBirth", "Gender").
		Updates(&profile).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update profile: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}
