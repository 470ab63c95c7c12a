package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"JobPortal-backend/internal/model"
)

// Filter narrows ListApplications. Nil fields are ignored.
type Filter struct {
	ApplicantID *uuid.UUID
	PositionID  *uuid.UUID
	CompanyID   *uuid.UUID
}

// StatusChange is a compare-and-set of an application status.
type StatusChange struct {
	ApplicationID   uuid.UUID
	ExpectedVersion int
	Status          string
	DecidedAt       *time.Time
	Audit           model.ApplicationAudit
}

// Store persists applications and reads the entities around them.
//
// Lookups return ErrApplicationNotFound, ErrPositionNotFound, ErrProfileNotFound
// or ErrCompanyNotFound when the record is missing. CreateApplication returns
// ErrDuplicateApplication when the pair already exists and UpdateStatus
// returns ErrStaleVersion when the stored version differs from ExpectedVersion.
type Store interface {
	ProfileByUser(ctx context.Context, userID uuid.UUID) (model.ApplicantProfile, error)
	CompanyByUser(ctx context.Context, userID uuid.UUID) (model.Company, error)
	Position(ctx context.Context, id uuid.UUID) (model.Position, error)
	Application(ctx context.Context, id uuid.UUID) (model.Application, error)
	FindApplication(ctx context.Context, positionID, applicantID uuid.UUID) (model.Application, error)
	CreateApplication(ctx context.Context, app *model.Application, audit model.ApplicationAudit) error
	UpdateStatus(ctx context.Context, change StatusChange) (model.Application, error)
	ListApplications(ctx context.Context, filter Filter) ([]model.Application, error)
	Audits(ctx context.Context, applicationID uuid.UUID) ([]model.ApplicationAudit, error)
	Summary(ctx context.Context, companyID uuid.UUID) (model.ApplicationSummary, error)
}
