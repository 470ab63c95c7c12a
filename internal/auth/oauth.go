// Package auth contains handler relate to log in and create user account
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"JobPortal-backend/internal/config"
	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/utilities"
)

// GoogleUserInfoEndpoint is where google user profile is fetched after code exchange
const GoogleUserInfoEndpoint = "https://www.googleapis.com/oauth2/v3/userinfo"

// NewGoogleOauthConfig builds the google oauth2 config from server settings.
func NewGoogleOauthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleSecret,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
			"openid",
		},
		Endpoint:    google.Endpoint,
		RedirectURL: cfg.OAuthRedirectURL,
	}
}

// OauthLoginHandler struct holds the database connection and OAuth2 configuration for handling OAuth login.
type OauthLoginHandler struct {
	DB               *database.DBinstanceStruct
	OauthConfig      *oauth2.Config
	UserInfoEndpoint string
}

type code struct {
	Code string `json:"code" binding:"required"`
}

// NewOauthLoginHandler creates a new instance of OauthLoginHandler with the provided database connection and OAuth2 configuration.
func NewOauthLoginHandler(db *database.DBinstanceStruct, oauthConfig *oauth2.Config, userInfoEndpoint string) *OauthLoginHandler {
	return &OauthLoginHandler{
		DB:               db,
		OauthConfig:      oauthConfig,
		UserInfoEndpoint: userInfoEndpoint,
	}
}

func (h *OauthLoginHandler) getUserInfo(c *gin.Context) (model.GoogleUserInfo, error) {

	var code code
	var uInfo model.GoogleUserInfo

	// check does body has code
	if err := c.ShouldBindJSON(&code); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("No authorization code provided: %v", err.Error()),
		})
		return uInfo, err
	}

	ctx := c.Request.Context()

	// Exchange code with google and get userinfo
	token, err := h.OauthConfig.Exchange(ctx, code.Code)
	if err != nil {
		LogAuthAttempt("warning", "Google", "Fail", "", "code exchange failed")
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to receive token: %v", err.Error()),
		})
		return uInfo, err
	}

	client := h.OauthConfig.Client(ctx, token)
	resp, err := client.Get(h.UserInfoEndpoint)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch user information: %v", err.Error()),
		})
		return uInfo, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to fetch user information: status=%d body=%s", resp.StatusCode, string(bodyBytes)),
		})
		return uInfo, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&uInfo); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to decode user info: %v", err.Error()),
		})
		return uInfo, err
	}
	if uInfo.GID == "" || uInfo.Email == "" {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Google account did not provide id and email",
		})
		return uInfo, errors.New("incomplete google user info")
	}
	return uInfo, nil
}

// loginOrRegisterUser finds the user by google id, links an existing account of
// the same email and role, or creates a new user with its profile.
func (h *OauthLoginHandler) loginOrRegisterUser(role string, uinfo model.GoogleUserInfo, c *gin.Context) {
	var user model.User
	respStatus := http.StatusOK

	err := h.DB.Where("google_id = ?", uinfo.GID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = h.DB.Where("email = ?", uinfo.Email).First(&user).Error
		if err == nil && user.Role == role {
			gid := uinfo.GID
			user.GoogleID = &gid
			err = h.DB.Model(&user).Update("google_id", gid).Error
		}
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user, err = h.createGoogleUser(role, uinfo)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to create user: %v", err.Error()),
			})
			return
		}
		respStatus = http.StatusCreated
	case err != nil:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %v", err.Error()),
		})
		return
	}

	if user.Role != role {
		LogAuthAttempt("warning", "Google", "Fail", uinfo.Email, "role mismatch")
		c.JSON(http.StatusConflict, utilities.ErrorResponse{
			Error: "You already registered as a different user type",
		})
		return
	}

	resp, err := LoadLoginResponse(h.DB.DB, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve user data: %v", err.Error()),
		})
		return
	}

	LogAuthAttempt("info", "Google", "Success", user.Email, "")
	respondWithSession(c, respStatus, resp)
}

func (h *OauthLoginHandler) createGoogleUser(role string, uinfo model.GoogleUserInfo) (model.User, error) {
	gid := uinfo.GID
	user := model.User{
		EditableUserInfo: model.EditableUserInfo{Name: uinfo.Name},
		Email:            uinfo.Email,
		GoogleID:         &gid,
		Role:             role,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		switch role {
		case model.RoleEmployer:
			return tx.Create(&model.Company{
				UserID:              user.ID,
				EditableCompanyInfo: model.EditableCompanyInfo{Name: uinfo.Name},
			}).Error
		case model.RoleApplicant:
			return tx.Create(&model.ApplicantProfile{
				UserID:                user.ID,
				EditableApplicantInfo: model.EditableApplicantInfo{Name: uinfo.Name},
			}).Error
		}
		return fmt.Errorf("Role '%s' not allowed", role)
	})
	return user, err
}
