package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	// registers the webp decoder used by imaging.Decode
	_ "golang.org/x/image/webp"

	"JobPortal-backend/internal/apperror"
	"JobPortal-backend/internal/middleware"
	"JobPortal-backend/internal/utilities"
)

// AvatarSize is the edge length of stored avatars in pixels.
const AvatarSize = 256

// Content types accepted for uploads
var (
	ImageTypes     = []string{"image/jpeg", "image/png", "image/webp"}
	PortfolioTypes = []string{"image/jpeg", "image/png", "image/webp", "application/pdf"}
)

// Upload errors, wrapped inside validation errors so handlers can pick a status.
var (
	ErrTooLarge        = errors.New("file too large")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// Upload is a validated uploaded file.
type Upload struct {
	Data        []byte
	ContentType string
	Extension   string
}

func uploadError(field, msg string, cause error) error {
	return &apperror.Error{
		Code:    apperror.CodeValidation,
		Message: "invalid file",
		Fields:  map[string]string{field: msg},
		Err:     cause,
	}
}

// ReadUpload reads multipart field and checks size and sniffed content type.
// A missing field returns nil without error.
func ReadUpload(c *gin.Context, field string, maxBytes int64, allowed []string) (*Upload, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		if middleware.IsTooLarge(err) {
			return nil, uploadError(field, tooLargeMessage(maxBytes), ErrTooLarge)
		}
		return nil, uploadError(field, "cannot read uploaded file", err)
	}
	if header.Size > maxBytes {
		return nil, uploadError(field, tooLargeMessage(maxBytes), ErrTooLarge)
	}
	return readPart(header, field, maxBytes, allowed)
}

func readPart(header *multipart.FileHeader, field string, maxBytes int64, allowed []string) (*Upload, error) {
	f, err := header.Open()
	if err != nil {
		return nil, uploadError(field, "cannot open uploaded file", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, uploadError(field, "cannot read uploaded file", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, uploadError(field, tooLargeMessage(maxBytes), ErrTooLarge)
	}
	if len(data) == 0 {
		return nil, uploadError(field, "file is empty", nil)
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowed...) {
		return nil, uploadError(field, fmt.Sprintf("file type %s is not allowed", mt.String()), ErrUnsupportedType)
	}
	return &Upload{Data: data, ContentType: mt.String(), Extension: mt.Extension()}, nil
}

func tooLargeMessage(maxBytes int64) string {
	return fmt.Sprintf("file must not be larger than %d MB", maxBytes>>20)
}

// NormalizeAvatar crops the image to a centered AvatarSize square and
// re-encodes it as JPEG.
func NormalizeAvatar(up *Upload) (*Upload, error) {
	img, err := imaging.Decode(bytes.NewReader(up.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, uploadError("avatar", "image cannot be decoded", ErrUnsupportedType)
	}
	img = imaging.Fill(img, AvatarSize, AvatarSize, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, apperror.New(apperror.CodeInternal, "failed to encode avatar", err)
	}
	return &Upload{Data: buf.Bytes(), ContentType: "image/jpeg", Extension: ".jpg"}, nil
}

// RespondUploadError answers 413 for oversized files, 415 for rejected
// types and falls back to utilities.RespondError.
func RespondUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, utilities.ErrorResponse{Error: "File too large", Fields: apperror.FieldsOf(err)})
	case errors.Is(err, ErrUnsupportedType):
		c.JSON(http.StatusUnsupportedMediaType, utilities.ErrorResponse{Error: "File type not allowed", Fields: apperror.FieldsOf(err)})
	default:
		utilities.RespondError(c, err)
	}
}
