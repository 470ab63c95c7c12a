package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// EditablePositionInfo is part of position that owning employer can overwrite
type EditablePositionInfo struct {
	Name            string         `gorm:"type:text;not null" json:"position_name"`
	Description     string         `gorm:"type:text" json:"description"`
	Capacity        int            `gorm:"not null" json:"capacity"`
	Salary          *int64         `json:"salary,omitempty"`
	SubmissionStart *time.Time     `gorm:"type:timestamptz" json:"submission_start_date,omitempty"`
	SubmissionEnd   time.Time      `gorm:"type:timestamptz;not null" json:"submission_end_date"`
	Tags            pq.StringArray `gorm:"type:text[]" json:"tags"`
}

// Position is a job opening of a company
type Position struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index;<-:create" json:"company_id"`
	Company   *Company  `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	EditablePositionInfo
	Version   int       `gorm:"not null;default:1" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOpen reports whether the position still accepts applications at now.
// The end instant itself is still open.
func (p Position) IsOpen(now time.Time) bool {
	return !now.After(p.SubmissionEnd)
}

// IsWithinWindow is the stricter rule: start must be set and already
// reached, and the position must be open.
func (p Position) IsWithinWindow(now time.Time) bool {
	if p.SubmissionStart == nil || p.SubmissionStart.IsZero() {
		return false
	}
	return !now.Before(*p.SubmissionStart) && p.IsOpen(now)
}

// Validate returns field name to message for every invalid field.
func (e EditablePositionInfo) Validate() map[string]string {
	fields := map[string]string{}
	if e.Name == "" {
		fields["position_name"] = "position name is required"
	}
	if e.Capacity <= 0 {
		fields["capacity"] = "capacity must be greater than 0"
	}
	if e.Salary != nil && *e.Salary < 0 {
		fields["salary"] = "salary must not be negative"
	}
	if e.SubmissionEnd.IsZero() {
		fields["submission_end_date"] = "submission end date is required"
	}
	if e.SubmissionStart != nil && !e.SubmissionEnd.IsZero() && e.SubmissionStart.After(e.SubmissionEnd) {
		fields["submission_start_date"] = "submission start date must not be after end date"
	}
	for _, tag := range e.Tags {
		if tag == "" || len(tag) > 50 {
			fields["tags"] = "tags must be 1 to 50 characters"
			break
		}
	}
	return fields
}
