package utilities

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"JobPortal-backend/internal/apperror"
)

// RespondError writes err as ErrorResponse with the status of its kind.
func RespondError(c *gin.Context, err error) {
	resp := ErrorResponse{Error: err.Error(), Fields: apperror.FieldsOf(err)}
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Code != apperror.CodeInternal {
		resp.Error = appErr.Message
	}
	c.JSON(apperror.HTTPStatus(err), resp)
}

// ParseUUIDParam reads path parameter name as uuid.
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperror.Validation("invalid id", map[string]string{name: "must be a valid uuid"})
	}
	return id, nil
}

// IfMatchVersion reads the expected version from If-Match, accepting `3` and `"3"`.
// Missing header gives 0.
func IfMatchVersion(c *gin.Context) (int, error) {
	raw := strings.TrimSpace(c.GetHeader("If-Match"))
	if raw == "" {
		return 0, nil
	}
	raw = strings.TrimPrefix(raw, "W/")
	raw = strings.Trim(raw, `"`)
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, apperror.Validation("invalid If-Match header", map[string]string{"If-Match": "must be a positive version number"})
	}
	return v, nil
}

// SetETag writes version as a strong ETag.
func SetETag(c *gin.Context, version int) {
	c.Header("ETag", `"`+strconv.Itoa(version)+`"`)
}
