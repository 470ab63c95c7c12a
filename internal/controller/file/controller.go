// Package file provides HTTP handlers and helpers for uploaded files.
package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/utilities"
)

// Object name prefixes in the storage bucket
const (
	AvatarObjectPrefix    = "avatars"
	PortfolioObjectPrefix = "portfolio"
)

// FileController handles file related endpoints
type FileController struct {
	DB      *database.DBinstanceStruct
	Storage StorageClient
}

// NewFileController creates a new instance of FileController. storage may be
// nil, then file bytes are kept in the database.
func NewFileController(db *database.DBinstanceStruct, storage StorageClient) *FileController {
	return &FileController{
		DB:      db,
		Storage: storage,
	}
}

// Save stores up for owner and inserts its File row through tx.
func (jc *FileController) Save(ctx context.Context, tx *gorm.DB, owner uuid.UUID, up *Upload, prefix string) (*model.File, error) {
	file := &model.File{OwnerID: owner, ContentType: up.ContentType}
	if err := jc.persistFileData(ctx, file, up.Data, up.Extension, prefix); err != nil {
		return nil, err
	}
	if err := tx.WithContext(ctx).Create(file).Error; err != nil {
		jc.removeObject(ctx, file)
		return nil, err
	}
	return file, nil
}

// Remove deletes the File row with id and its stored object. A missing row is not an error.
func (jc *FileController) Remove(ctx context.Context, tx *gorm.DB, id int) error {
	var file model.File
	err := tx.WithContext(ctx).First(&file, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := tx.WithContext(ctx).Delete(&file).Error; err != nil {
		return err
	}
	jc.removeObject(ctx, &file)
	return nil
}

// GetFile function retrieves a file and sends it as a downloadable attachment in
// the response.
// @Summary Retrieve downloadable attachment
// @Tags File
// @Produce octet-stream
// @Param Authorization header string true "Insert your access token" default(Bearer <your access token>)
// @Param id path int true "ID of wanted file"
// @Success 200 {string} binary "Successfully retrieve file"
// @Failure 400 {object} utilities.ErrorResponse "Invalid authorization header or file id"
// @Failure 401 {object} utilities.ErrorResponse "Invalid token"
// @Failure 404 {object} utilities.ErrorResponse "Given file id not found"
// @Failure 500 {object} utilities.ErrorResponse "Fail to send file content"
// @Router /files/{id} [get]
func (jc *FileController) GetFile(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: "Invalid file id"})
		return
	}

	var file model.File
	if err := jc.DB.WithContext(c.Request.Context()).First(&file, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve file: %s", err.Error()),
		})
		return
	}

	jc.writeFileResponse(c, &file)
}

func (jc *FileController) writeFileResponse(c *gin.Context, file *model.File) {
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if file.StorageObjectName != nil {
		if jc.Storage == nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: "Cloud storage is disabled while the requested file is stored remotely",
			})
			return
		}
		reader, size, err := jc.Storage.DownloadFile(c.Request.Context(), *file.StorageObjectName)
		if errors.Is(err, ErrObjectNotFound) {
			c.JSON(http.StatusNotFound, utilities.ErrorResponse{Error: "File content not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to download file from storage: %s", err.Error()),
			})
			return
		}
		defer func() {
			if err := reader.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close storage reader")
			}
		}()

		setAttachmentHeaders(c, file, contentType)
		if size > 0 {
			c.Writer.Header().Set("Content-Length", fmt.Sprint(size))
		}
		if _, err := io.Copy(c.Writer, reader); err != nil {
			jc.handleWriterError(c, err)
		}
		return
	}

	setAttachmentHeaders(c, file, contentType)
	c.Writer.Header().Set("Content-Length", fmt.Sprint(len(file.Content)))
	if _, err := c.Writer.Write(file.Content); err != nil {
		jc.handleWriterError(c, err)
	}
}

func setAttachmentHeaders(c *gin.Context, file *model.File, contentType string) {
	c.Writer.Header().Set("Content-Disposition", "attachment; filename="+fmt.Sprint(file.ID)+file.Extension)
	c.Writer.Header().Set("Content-Type", contentType)
}

func (jc *FileController) handleWriterError(c *gin.Context, err error) {
	log.Warn().Err(err).Msg("failed to send file content")
	if !c.Writer.Written() {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: "Failed to send file content",
		})
	} else {
		c.Abort()
	}
}

func (jc *FileController) persistFileData(ctx context.Context, file *model.File, fileBytes []byte, extension, prefix string) error {
	file.Extension = extension
	if jc.Storage == nil {
		file.Content = fileBytes
		file.StorageObjectName = nil
		return nil
	}

	objectName := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), extension)
	if err := jc.Storage.UploadFile(ctx, objectName, file.ContentType, bytes.NewReader(fileBytes)); err != nil {
		return err
	}

	file.StorageObjectName = &objectName
	file.Content = nil
	return nil
}

func (jc *FileController) removeObject(ctx context.Context, file *model.File) {
	if jc.Storage == nil || file.StorageObjectName == nil {
		return
	}
	if err := jc.Storage.DeleteFile(ctx, *file.StorageObjectName); err != nil && !errors.Is(err, ErrObjectNotFound) {
		log.Warn().Err(err).Str("object", *file.StorageObjectName).Msg("failed to delete stored object")
	}
}
