// Package portfolio provides HTTP handlers for portfolio items of applicants.
package portfolio

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"JobPortal-backend/internal/apperror"
	"JobPortal-backend/internal/controller/file"
	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/utilities"
)

const maxSkillLength = 100

var errNotOwner = apperror.New(apperror.CodeForbidden, "You can only change your own portfolio", nil)

// PortfolioController handles portfolio item endpoints
type PortfolioController struct {
	DB             *database.DBinstanceStruct
	Files          *file.FileController
	MaxUploadBytes int64
}

// NewPortfolioController creates a new instance of PortfolioController
func NewPortfolioController(db *database.DBinstanceStruct, files *file.FileController, maxUploadBytes int64) *PortfolioController {
	return &PortfolioController{
		DB:             db,
		Files:          files,
		MaxUploadBytes: maxUploadBytes,
	}
}

// GetItems lists portfolio items of a profile, newest first.
// @Summary List portfolio items
// @Description owner is an applicant profile id. Applicants may omit it to list their own items.
// @Tags Portfolio
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param owner query string false "ID of applicant profile"
// @Success 200 {array} model.PortfolioItem "Successfully retrieve items"
// @Failure 400 {object} utilities.ErrorResponse "Invalid owner"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /portfolio-items [get]
func (jc *PortfolioController) GetItems(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var ownerID uuid.UUID
	if raw := c.Query("owner"); raw != "" {
		if ownerID, err = uuid.Parse(raw); err != nil {
			utilities.RespondError(c, apperror.Validation("invalid owner", map[string]string{"owner": "must be a valid uuid"}))
			return
		}
	} else {
		profile, err := jc.profileOf(c, user.ID)
		if err != nil {
			utilities.RespondError(c, apperror.Validation("owner is required", map[string]string{"owner": "owner is required"}))
			return
		}
		ownerID = profile.ID
	}

	items := []model.PortfolioItem{}
	if err := jc.DB.WithContext(c.Request.Context()).
		Where("profile_id = ?", ownerID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve portfolio: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, items)
}

// CreateItem adds a portfolio item to the caller's profile.
// @Summary Create portfolio item
// @Description file is optional and must be a jpeg, png, webp or pdf not larger than 5 MB
// @Tags Portfolio
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param skill formData string true "Skill name"
// @Param description formData string false "Description"
// @Param file formData file false "Attachment"
// @Success 201 {object} model.PortfolioItem "Successfully create item"
// @Failure 400 {object} utilities.ErrorResponse "Invalid field"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not logged in as applicant"
// @Failure 413 {object} utilities.ErrorResponse "File larger than 5 MB"
// @Failure 415 {object} utilities.ErrorResponse "File type not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /portfolio-items [post]
func (jc *PortfolioController) CreateItem(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	profile, err := jc.profileOf(c, user.ID)
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	item := model.PortfolioItem{ID: uuid.New(), ProfileID: profile.ID}
	if fields := readFields(c, &item, true); len(fields) > 0 {
		utilities.RespondError(c, apperror.Validation("invalid portfolio item", fields))
		return
	}

	upload, err := file.ReadUpload(c, "file", jc.MaxUploadBytes, file.PortfolioTypes)
	if err != nil {
		file.RespondUploadError(c, err)
		return
	}

	ctx := c.Request.Context()
	err = jc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if upload != nil {
			f, err := jc.Files.Save(ctx, tx, user.ID, upload, file.PortfolioObjectPrefix)
			if err != nil {
				return err
			}
			item.FileID = &f.ID
		}
		return tx.Create(&item).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create portfolio item: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateItem overwrites skill, description and optionally the file of an item.
// @Summary Edit portfolio item
// @Tags Portfolio
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of portfolio item"
// @Param skill formData string false "Skill name"
// @Param description formData string false "Description"
// @Param file formData file false "Replacement attachment"
// @Success 200 {object} model.PortfolioItem "Successfully update item"
// @Failure 400 {object} utilities.ErrorResponse "Invalid field"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner of this item"
// @Failure 404 {object} utilities.ErrorResponse "Item not found"
// @Failure 413 {object} utilities.ErrorResponse "File larger than 5 MB"
// @Failure 415 {object} utilities.ErrorResponse "File type not allowed"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /portfolio-items/{id} [put]
func (jc *PortfolioController) UpdateItem(c *gin.Context) {
	user, item, ok := jc.ownedItem(c)
	if !ok {
		return
	}

	if fields := readFields(c, &item, false); len(fields) > 0 {
		utilities.RespondError(c, apperror.Validation("invalid portfolio item", fields))
		return
	}

	upload, err := file.ReadUpload(c, "file", jc.MaxUploadBytes, file.PortfolioTypes)
	if err != nil {
		file.RespondUploadError(c, err)
		return
	}

	ctx := c.Request.Context()
	err = jc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		oldFile := item.FileID
		if upload != nil {
			f, err := jc.Files.Save(ctx, tx, user.ID, upload, file.PortfolioObjectPrefix)
			if err != nil {
				return err
			}
			item.FileID = &f.ID
		}
		if err := tx.Model(&item).Select("Skill", "Description", "FileID").Updates(&item).Error; err != nil {
			return err
		}
		if upload != nil && oldFile != nil {
			return jc.Files.Remove(ctx, tx, *oldFile)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update portfolio item: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteItem removes an item and its attachment.
// @Summary Delete portfolio item
// @Tags Portfolio
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of portfolio item"
// @Success 200 {object} utilities.MessageResponse "Successfully delete item"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner of this item"
// @Failure 404 {object} utilities.ErrorResponse "Item not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /portfolio-items/{id} [delete]
func (jc *PortfolioController) DeleteItem(c *gin.Context) {
	_, item, ok := jc.ownedItem(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	err := jc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&item).Error; err != nil {
			return err
		}
		if item.FileID != nil {
			return jc.Files.Remove(ctx, tx, *item.FileID)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to delete portfolio item: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Portfolio item deleted"})
}

func (jc *PortfolioController) profileOf(c *gin.Context, userID uuid.UUID) (model.ApplicantProfile, error) {
	var profile model.ApplicantProfile
	err := jc.DB.WithContext(c.Request.Context()).First(&profile, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return profile, apperror.New(apperror.CodeForbidden, "Only applicants have a portfolio", nil)
	}
	if err != nil {
		return profile, apperror.New(apperror.CodeInternal, "failed to retrieve profile", err)
	}
	return profile, nil
}

// ownedItem loads the item in path param id and checks the caller owns it.
// It writes the error response itself and reports false on failure.
func (jc *PortfolioController) ownedItem(c *gin.Context) (model.User, model.PortfolioItem, bool) {
	var item model.PortfolioItem
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return user, item, false
	}

	id, err := utilities.ParseUUIDParam(c, "id")
	if err != nil {
		utilities.RespondError(c, err)
		return user, item, false
	}

	if err := jc.DB.WithContext(c.Request.Context()).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "Portfolio item not found"})
			return user, item, false
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve portfolio item: %s", err.Error()),
		})
		return user, item, false
	}

	profile, err := jc.profileOf(c, user.ID)
	if err != nil && !apperror.Has(err, apperror.CodeForbidden) {
		utilities.RespondError(c, err)
		return user, item, false
	}
	if err != nil || profile.ID != item.ProfileID {
		utilities.RespondError(c, errNotOwner)
		return user, item, false
	}
	return user, item, true
}

// readFields copies skill and description from the form into item.
// skill is required when create is true.
func readFields(c *gin.Context, item *model.PortfolioItem, create bool) map[string]string {
	fields := map[string]string{}
	if skill, ok := c.GetPostForm("skill"); ok || create {
		skill = strings.TrimSpace(skill)
		switch {
		case skill == "":
			fields["skill"] = "skill is required"
		case len(skill) > maxSkillLength:
			fields["skill"] = fmt.Sprintf("skill must not be longer than %d characters", maxSkillLength)
		}
		item.Skill = skill
	}
	if desc, ok := c.GetPostForm("description"); ok {
		item.Description = strings.TrimSpace(desc)
	}
	return fields
}
