// Package model contain gorm model for recording data to database
package model

import (
	"time"

	"github.com/google/uuid"
)

// Role of each user. Role is stored once on the user record and every other
// layer reads it from there.
const (
	RoleEmployer  = "EMPLOYER"
	RoleApplicant = "APPLICANT"
	RoleAdmin     = "ADMIN"
)

// IsKnownRole reports whether role is one of the roles above.
func IsKnownRole(role string) bool {
	switch role {
	case RoleEmployer, RoleApplicant, RoleAdmin:
		return true
	default:
		return false
	}
}

// EditableUserInfo is part of user that owner can overwrite
type EditableUserInfo struct {
	Name string `gorm:"type:text" json:"name"`
}

// User is the identity every role shares.
type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	EditableUserInfo
	Email    string  `gorm:"type:text;uniqueIndex;not null" json:"email"`
	Password string  `gorm:"type:text" json:"-"`
	GoogleID *string `gorm:"type:text;uniqueIndex" json:"-"`
	Role     string  `gorm:"type:text;not null" json:"role"`

	AvatarID *int  `json:"avatar_id"`
	Avatar   *File `gorm:"foreignKey:AvatarID;constraint:OnDelete:SET NULL" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// GoogleUserInfo is the subset of google userinfo response we rely on.
type GoogleUserInfo struct {
	GID            string `json:"sub"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"picture"`
}
