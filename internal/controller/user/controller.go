// Package user provides HTTP handlers for the identity shared by every role.
package user

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"JobPortal-backend/internal/apperror"
	"JobPortal-backend/internal/controller/file"
	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/utilities"
)

// UserController handles user related endpoints
type UserController struct {
	DB             *database.DBinstanceStruct
	Files          *file.FileController
	MaxUploadBytes int64
}

// NewUserController creates a new instance of UserController
func NewUserController(db *database.DBinstanceStruct, files *file.FileController, maxUploadBytes int64) *UserController {
	return &UserController{
		DB:             db,
		Files:          files,
		MaxUploadBytes: maxUploadBytes,
	}
}

// GetUser retrieves a user by id.
// @Summary Retrieve user by given ID
// @Tags User
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of user"
// @Success 200 {object} model.User "Successfully retrieve user"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header or user id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "User not found"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /users/{id} [get]
func (jc *UserController) GetUser(c *gin.Context) {
	id, err := utilities.ParseUUIDParam(c, "id")
	if err != nil {
		utilities.RespondError(c, err)
		return
	}

	var user model.User
	if err := jc.DB.WithContext(c.Request.Context()).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve user: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// UpdateUser overwrites name and avatar of the caller's own user.
// @Summary Edit user name and avatar
// @Description Avatar must be a jpeg, png or webp image not larger than 5 MB. It is stored as a 256x256 jpeg.
// @Tags User
// @Accept mpfd
// @Produce json
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path string true "ID of user"
// @Param name formData string false "New display name"
// @Param avatar formData file false "New avatar image"
// @Success 200 {object} model.User "Successfully update user"
// @Failure 400 {object} utilities.ErrorResponse "Invalid field"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 403 {object} utilities.ErrorResponse "Not the owner of this user"
// @Failure 404 {object} utilities.ErrorResponse "User not found"
// @Failure 413 {object} utilities.ErrorResponse "Avatar larger than 5 MB"
// @Failure 415 {object} utilities.ErrorResponse "Avatar is not an image"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /users/{id} [put]
func (jc *UserController) UpdateUser(c *gin.Context) {
	caller, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	id, err := utilities.ParseUUIDParam(c, "id")
	if err != nil {
		utilities.RespondError(c, err)
		return
	}
	if id != caller.ID {
		c.JSON(http.StatusForbidden, utilities.ErrorResponse{Error: "You can only edit your own account"})
		return
	}

	edited := model.EditableUserInfo{}
	if raw, ok := c.GetPostForm("name"); ok {
		edited.Name = strings.TrimSpace(raw)
		if edited.Name == "" {
			utilities.RespondError(c, apperror.Validation("invalid user", map[string]string{"name": "name must not be empty"}))
			return
		}
	}

	upload, err := file.ReadUpload(c, "avatar", jc.MaxUploadBytes, file.ImageTypes)
	if err != nil {
		file.RespondUploadError(c, err)
		return
	}
	if upload != nil {
		if upload, err = file.NormalizeAvatar(upload); err != nil {
			file.RespondUploadError(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	var user model.User
	err = jc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, "id = ?", id).Error; err != nil {
			return err
		}
		utilities.MergeNonEmpty(&user.EditableUserInfo, &edited)

		oldAvatar := user.AvatarID
		if upload != nil {
			avatar, err := jc.Files.Save(ctx, tx, user.ID, upload, file.AvatarObjectPrefix)
			if err != nil {
				return err
			}
			user.AvatarID = &avatar.ID
		}
		if err := tx.Model(&user).Select("Name", "AvatarID").Updates(&user).Error; err != nil {
			return err
		}
		if upload != nil && oldAvatar != nil {
			return jc.Files.Remove(ctx, tx, *oldAvatar)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to update user: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, user)
}
