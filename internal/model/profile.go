package model

import (
	"time"

	"github.com/google/uuid"
)

// Gender values accepted on an applicant profile
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// DateLayout is the wire format of date-only fields such as date of birth.
const DateLayout = "2006-01-02"

// EditableCompanyInfo is part of company profile that its employer can overwrite
type EditableCompanyInfo struct {
	Name        string `gorm:"type:text" json:"name"`
	Address     string `gorm:"type:text" json:"address"`
	Phone       string `gorm:"type:text" json:"phone"`
	Description string `gorm:"type:text" json:"description"`
}

// Company is owned by exactly one employer user.
type Company struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;<-:create" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	EditableCompanyInfo
	Positions []Position `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE" json:"positions,omitempty"`
}

// EditableApplicantInfo is part of applicant profile that its owner can overwrite
type EditableApplicantInfo struct {
	Name        string     `gorm:"type:text" json:"name"`
	Phone       string     `gorm:"type:text" json:"phone"`
	Address     string     `gorm:"type:text" json:"address"`
	DateOfBirth *time.Time `gorm:"type:date" json:"date_of_birth,omitempty"`
	Gender      string     `gorm:"type:text" json:"gender"`
}

// ApplicantProfile is owned by exactly one applicant user.
type ApplicantProfile struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;<-:create" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	EditableApplicantInfo
	Portfolio []PortfolioItem `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"portfolio,omitempty"`
}

// PortfolioItem is a skill entry with an optional attached file.
type PortfolioItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ProfileID   uuid.UUID `gorm:"type:uuid;not null;index;<-:create" json:"profile_id"`
	Skill       string    `gorm:"type:text;not null" json:"skill"`
	Description string    `gorm:"type:text" json:"description"`
	FileID      *int      `json:"file_id"`
	File        *File     `gorm:"foreignKey:FileID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
