package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"JobPortal-backend/internal/database"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/utilities"
)

// LocalAuthHandler holds DB reference for handler methods.
type LocalAuthHandler struct {
	DB *database.DBinstanceStruct
}

// NewLocalAuthHandler creates a new instance of LocalAuthHandler with the provided database connection.
func NewLocalAuthHandler(db *database.DBinstanceStruct) *LocalAuthHandler {
	return &LocalAuthHandler{
		DB: db,
	}
}

// Roles accepted at registration
const (
	registerRoleEmployer  = "employer"
	registerRoleApplicant = "applicant"
)

type registerInfo struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,oneof=employer applicant"`

	// Optional company or profile details
	CompanyName string `json:"company_name"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

type loginInfo struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LocalRegisterHandler creates a user with its company or applicant profile
// @Summary Handles local registration by receiving name, email and password
// @Description Email must not already exist and password must longer or equal to 8 characters long
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body registerInfo true "role can be only 'employer' or 'applicant'"
// @Success 201 {object} model.LoginResponse "Register success, session cookies are set"
// @Failure 400 {object} utilities.ErrorResponse "Info provided not met the condition"
// @Failure 500 {object} utilities.ErrorResponse "Database or password hashing error"
// @Router /auth/register [post]
func (lh *LocalAuthHandler) LocalRegisterHandler(c *gin.Context) {
	var info registerInfo

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Name, email, password, and role (Only 'employer' or 'applicant') must be provided",
		})
		return
	}
	info.Email = strings.ToLower(strings.TrimSpace(info.Email))

	var user model.User
	err := lh.DB.Where("email = ?", info.Email).First(&user).Error

	switch {
	case err == nil:
		LogAuthAttempt("warning", "Local", "Fail", info.Email, "register with existing email")
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error:  "Email already exist",
			Fields: map[string]string{"email": "email is already registered"},
		})
		return

	case errors.Is(err, gorm.ErrRecordNotFound):
		// Do nothing

	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	if len(info.Password) < 8 {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error:  "Password should longer or equal to 8 characters",
			Fields: map[string]string{"password": "password must be at least 8 characters"},
		})
		return
	}

	hashedPassword, err := utilities.HashPassword(info.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed hash password: %s", err.Error()),
		})
		return
	}

	user = model.User{
		EditableUserInfo: model.EditableUserInfo{Name: info.Name},
		Email:            info.Email,
		Password:         hashedPassword,
	}

	var resp model.LoginResponse
	err = lh.DB.Transaction(func(tx *gorm.DB) error {
		switch info.Role {
		case registerRoleEmployer:
			user.Role = model.RoleEmployer
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			companyName := info.CompanyName
			if companyName == "" {
				companyName = info.Name
			}
			company := model.Company{
				UserID: user.ID,
				EditableCompanyInfo: model.EditableCompanyInfo{
					Name:        companyName,
					Address:     info.Address,
					Phone:       info.Phone,
					Description: info.Description,
				},
			}
			if err := tx.Create(&company).Error; err != nil {
				return err
			}
			company.User = user
			resp.Company = &company
		case registerRoleApplicant:
			user.Role = model.RoleApplicant
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			profile := model.ApplicantProfile{
				UserID: user.ID,
				EditableApplicantInfo: model.EditableApplicantInfo{
					Name:    info.Name,
					Phone:   info.Phone,
					Address: info.Address,
				},
			}
			if err := tx.Create(&profile).Error; err != nil {
				return err
			}
			profile.User = user
			resp.Applicant = &profile
		default:
			return fmt.Errorf("Role '%s' not allowed", info.Role)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create user: %s", err.Error()),
		})
		return
	}
	resp.User = user

	LogAuthAttempt("info", "Local", "Success", user.Email, "registered as "+user.Role)
	respondWithSession(c, http.StatusCreated, resp)
}

// LocalLoginHandler function handles local login by receiving email and password
// @Summary Handles local login by receiving email and password
// @Description Email must exist and password match. Also sets the token and role cookies.
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body loginInfo true "Credentials for login"
// @Success 200 {object} model.LoginResponse "Login success"
// @Failure 400 {object} utilities.ErrorResponse "Info provided not met the condition"
// @Failure 401 {object} utilities.ErrorResponse "Email not exist or password incorrect"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/login [post]
// @Router /session [post]
func (lh *LocalAuthHandler) LocalLoginHandler(c *gin.Context) {
	var info loginInfo

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Email or password is not provided",
		})
		return
	}
	info.Email = strings.ToLower(strings.TrimSpace(info.Email))

	var user model.User
	err := lh.DB.Where("email = ?", info.Email).First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		LogAuthAttempt("warning", "Local", "Fail", info.Email, "unknown email")
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: "Email or password is incorrect",
		})
		return

	case err == nil:
		// Do nothing

	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	// Google only accounts have no password
	if user.Password == "" || !utilities.VerifyPassword(info.Password, user.Password) {
		LogAuthAttempt("warning", "Local", "Fail", info.Email, "wrong password")
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: "Email or password is incorrect",
		})
		return
	}

	resp, err := LoadLoginResponse(lh.DB.DB, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve user data: %s", err.Error()),
		})
		return
	}

	LogAuthAttempt("info", "Local", "Success", user.Email, "")
	respondWithSession(c, http.StatusOK, resp)
}

// MeHandler returns the authenticated user with its company or applicant profile
// @Summary Get the current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.LoginResponse "access_token is empty"
// @Failure 401 {object} utilities.ErrorResponse "Not authenticated"
// @Router /auth/me [get]
func (lh *LocalAuthHandler) MeHandler(c *gin.Context) {
	user, err := utilities.ExtractUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	resp, err := LoadLoginResponse(lh.DB.DB, user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to retrieve user data: %s", err.Error()),
		})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LoadLoginResponse fills the role specific part of the login response for user.
func LoadLoginResponse(db *gorm.DB, user model.User) (model.LoginResponse, error) {
	resp := model.LoginResponse{User: user}

	switch user.Role {
	case model.RoleEmployer:
		var company model.Company
		if err := db.Preload("User").Where("user_id = ?", user.ID).First(&company).Error; err != nil {
			return resp, err
		}
		resp.Company = &company
	case model.RoleApplicant:
		var profile model.ApplicantProfile
		if err := db.Preload("User").Preload("Portfolio").Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
			return resp, err
		}
		resp.Applicant = &profile
	}
	return resp, nil
}

// respondWithSession signs a token for resp.User, mirrors it into cookies and writes resp.
func respondWithSession(c *gin.Context, status int, resp model.LoginResponse) {
	accessToken, _, err := GenerateStandardToken(resp.User.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
		})
		return
	}

	resp.SetAccessToken(accessToken)
	SetSessionCookies(c, accessToken, resp.User.Role)
	c.JSON(status, resp)
}
