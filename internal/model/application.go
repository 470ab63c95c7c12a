package model

import (
	"time"

	"github.com/google/uuid"
)

// Application status
const (
	// ApplicationStatusPending is the initial status, waiting for employer decision
	ApplicationStatusPending = "PENDING"
	// ApplicationStatusAccepted indicates that employer accepted the applicant
	ApplicationStatusAccepted = "ACCEPTED"
	// ApplicationStatusRejected indicates that employer rejected the applicant
	ApplicationStatusRejected = "REJECTED"
)

// IsKnownApplicationStatus reports whether status is a valid application status.
func IsKnownApplicationStatus(status string) bool {
	switch status {
	case ApplicationStatusPending, ApplicationStatusAccepted, ApplicationStatusRejected:
		return true
	default:
		return false
	}
}

// Application links one applicant profile to one position.
type Application struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	PositionID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_application_pair;<-:create" json:"position_id"`
	Position   *Position `gorm:"foreignKey:PositionID;constraint:OnDelete:CASCADE" json:"position,omitempty"`

	ApplicantID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_application_pair;index;<-:create" json:"applicant_id"`
	Applicant   *ApplicantProfile `gorm:"foreignKey:ApplicantID;constraint:OnDelete:CASCADE" json:"applicant,omitempty"`

	Status    string     `gorm:"type:text;not null;default:'PENDING'" json:"status"`
	AppliedAt time.Time  `gorm:"type:timestamptz;not null;index" json:"apply_date"`
	DecidedAt *time.Time `gorm:"type:timestamptz" json:"decided_at,omitempty"`
	Version   int        `gorm:"not null;default:1" json:"version"`
}

// ApplicationAudit is an append-only record of one status change.
type ApplicationAudit struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;index" json:"application_id"`
	ActorID       uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`
	ActorRole     string    `gorm:"type:text" json:"actor_role"`
	FromStatus    string    `gorm:"type:text" json:"from_status"`
	ToStatus      string    `gorm:"type:text;not null" json:"to_status"`
	Override      bool      `gorm:"not null;default:false" json:"override"`
	Reason        string    `gorm:"type:text" json:"reason,omitempty"`
	At            time.Time `gorm:"type:timestamptz;not null" json:"at"`
}

// ApplicationSummary counts applications of one employer by status.
type ApplicationSummary struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Accepted int64 `json:"accepted"`
	Rejected int64 `json:"rejected"`
}
