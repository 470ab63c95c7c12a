// Package workflow implements the application life cycle: submit, decide,
// administrative override and the read projections over applications.
//
// Status moves from PENDING to ACCEPTED or REJECTED once. Decided
// applications only change again through Override, which requires an admin
// and a reason. Every change appends an audit entry.
package workflow

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"JobPortal-backend/internal/apperror"
	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/position"
)

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// Service runs workflow operations over a Store.
type Service struct {
	store  Store
	rule   position.Rule
	logger zerolog.Logger
	now    func() time.Time
}

// Option configures Service
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a Service. rule decides whether a position accepts applications.
func NewService(store Store, rule position.Rule, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		store:  store,
		rule:   rule,
		logger: logger.With().Str("component", "workflow").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rule returns the visibility rule the service applies.
func (s *Service) Rule() position.Rule {
	return s.rule
}

// Now returns the service clock.
func (s *Service) Now() time.Time {
	return s.now()
}

// Submit creates a PENDING application of the applicant user to a position.
func (s *Service) Submit(ctx context.Context, applicantUserID, positionID uuid.UUID) (model.Application, error) {
	profile, err := s.store.ProfileByUser(ctx, applicantUserID)
	if err != nil {
		return model.Application{}, err
	}

	pos, err := s.store.Position(ctx, positionID)
	if err != nil {
		return model.Application{}, err
	}

	now := s.now()
	if !s.rule.Accepting(pos, now) {
		return model.Application{}, ErrPositionClosed
	}

	if _, err := s.store.FindApplication(ctx, positionID, profile.ID); err == nil {
		return model.Application{}, ErrDuplicateApplication
	} else if !errors.Is(err, ErrApplicationNotFound) {
		return model.Application{}, err
	}

	app := model.Application{
		ID:          uuid.New(),
		PositionID:  positionID,
		ApplicantID: profile.ID,
		Status:      model.ApplicationStatusPending,
		AppliedAt:   now,
		Version:     1,
	}
	audit := model.ApplicationAudit{
		ApplicationID: app.ID,
		ActorID:       applicantUserID,
		ActorRole:     model.RoleApplicant,
		ToStatus:      model.ApplicationStatusPending,
		At:            now,
	}
	if err := s.store.CreateApplication(ctx, &app, audit); err != nil {
		return model.Application{}, err
	}

	s.logger.Info().
		Str("application", app.ID.String()).
		Str("position", positionID.String()).
		Str("applicant", profile.ID.String()).
		Msg("application submitted")
	return app, nil
}

// Decide sets the outcome of a pending application. Only the employer owning
// the position's company may decide. expectedVersion of 0 skips the version check.
func (s *Service) Decide(ctx context.Context, applicationID uuid.UUID, outcome string, employerUserID uuid.UUID, expectedVersion int) (model.Application, error) {
	outcome = normalizeStatus(outcome)
	if outcome != model.ApplicationStatusAccepted && outcome != model.ApplicationStatusRejected {
		return model.Application{}, apperror.Validation("invalid outcome", map[string]string{
			"status": "status must be ACCEPTED or REJECTED",
		})
	}

	app, err := s.store.Application(ctx, applicationID)
	if err != nil {
		return model.Application{}, err
	}

	if err := s.checkOwner(ctx, app, employerUserID); err != nil {
		return model.Application{}, err
	}

	if expectedVersion > 0 && expectedVersion != app.Version {
		return model.Application{}, ErrStaleVersion
	}

	if app.Status != model.ApplicationStatusPending {
		return model.Application{}, ErrAlreadyDecided
	}

	return s.changeStatus(ctx, app, outcome, model.ApplicationAudit{
		ActorID:   employerUserID,
		ActorRole: model.RoleEmployer,
	})
}

// Override lets an admin set any status on an application. reason is required
// and stored on the audit entry.
func (s *Service) Override(ctx context.Context, applicationID uuid.UUID, status string, admin Actor, reason string, expectedVersion int) (model.Application, error) {
	if admin.Role != model.RoleAdmin {
		return model.Application{}, apperror.New(apperror.CodeForbidden, "only admin can override a decision", nil)
	}

	status = normalizeStatus(status)
	fields := map[string]string{}
	if !model.IsKnownApplicationStatus(status) {
		fields["status"] = "status must be PENDING, ACCEPTED or REJECTED"
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		fields["reason"] = "reason is required"
	}
	if len(fields) > 0 {
		return model.Application{}, apperror.Validation("invalid override", fields)
	}

	app, err := s.store.Application(ctx, applicationID)
	if err != nil {
		return model.Application{}, err
	}

	if expectedVersion > 0 && expectedVersion != app.Version {
		return model.Application{}, ErrStaleVersion
	}

	if app.Status == status {
		return model.Application{}, apperror.Validation("invalid override", map[string]string{
			"status": "application already has status " + status,
		})
	}

	return s.changeStatus(ctx, app, status, model.ApplicationAudit{
		ActorID:   admin.ID,
		ActorRole: model.RoleAdmin,
		Override:  true,
		Reason:    reason,
	})
}

func (s *Service) changeStatus(ctx context.Context, app model.Application, status string, audit model.ApplicationAudit) (model.Application, error) {
	now := s.now()

	var decidedAt *time.Time
	if status != model.ApplicationStatusPending {
		decidedAt = &now
	}

	audit.ApplicationID = app.ID
	audit.FromStatus = app.Status
	audit.ToStatus = status
	audit.At = now

	updated, err := s.store.UpdateStatus(ctx, StatusChange{
		ApplicationID:   app.ID,
		ExpectedVersion: app.Version,
		Status:          status,
		DecidedAt:       decidedAt,
		Audit:           audit,
	})
	if err != nil {
		return model.Application{}, err
	}

	s.logger.Info().
		Str("application", app.ID.String()).
		Str("actor", audit.ActorID.String()).
		Str("from", audit.FromStatus).
		Str("to", status).
		Bool("override", audit.Override).
		Msg("application status changed")
	return updated, nil
}

// checkOwner fails with ErrForbidden unless userID owns the company of the application's position.
func (s *Service) checkOwner(ctx context.Context, app model.Application, userID uuid.UUID) error {
	pos, err := s.store.Position(ctx, app.PositionID)
	if err != nil {
		return err
	}
	company, err := s.store.CompanyByUser(ctx, userID)
	if errors.Is(err, ErrCompanyNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return err
	}
	if pos.CompanyID != company.ID {
		return ErrForbidden
	}
	return nil
}

// ListForApplicant lists applications of an applicant profile, newest first.
func (s *Service) ListForApplicant(ctx context.Context, applicantID uuid.UUID) ([]model.Application, error) {
	return s.List(ctx, Filter{ApplicantID: &applicantID})
}

// ListForPosition lists applications to a position, newest first.
func (s *Service) ListForPosition(ctx context.Context, positionID uuid.UUID) ([]model.Application, error) {
	return s.List(ctx, Filter{PositionID: &positionID})
}

// ListForEmployer lists applications across every position of the employer's company, newest first.
func (s *Service) ListForEmployer(ctx context.Context, employerUserID uuid.UUID) ([]model.Application, error) {
	company, err := s.store.CompanyByUser(ctx, employerUserID)
	if err != nil {
		return nil, err
	}
	return s.List(ctx, Filter{CompanyID: &company.ID})
}

// ListVisible lists the applications viewer may see that match filter,
// newest first. Filters pointing outside the viewer's own scope are Forbidden;
// admin is not scoped.
func (s *Service) ListVisible(ctx context.Context, viewer Actor, filter Filter) ([]model.Application, error) {
	switch viewer.Role {
	case model.RoleAdmin:
		return s.List(ctx, filter)

	case model.RoleEmployer:
		if filter == (Filter{}) {
			return s.ListForEmployer(ctx, viewer.ID)
		}
		company, err := s.store.CompanyByUser(ctx, viewer.ID)
		if err != nil {
			return nil, err
		}
		if filter.CompanyID != nil && *filter.CompanyID != company.ID {
			return nil, apperror.New(apperror.CodeForbidden, "You can only see applications to your own company", nil)
		}
		if filter.PositionID != nil {
			pos, err := s.store.Position(ctx, *filter.PositionID)
			if err != nil {
				return nil, err
			}
			if pos.CompanyID != company.ID {
				return nil, apperror.New(apperror.CodeForbidden, "You can only see applications to your own positions", nil)
			}
			if filter.ApplicantID == nil {
				return s.ListForPosition(ctx, pos.ID)
			}
		}
		filter.CompanyID = &company.ID
		return s.List(ctx, filter)

	case model.RoleApplicant:
		profile, err := s.store.ProfileByUser(ctx, viewer.ID)
		if err != nil {
			return nil, err
		}
		if filter.ApplicantID != nil && *filter.ApplicantID != profile.ID {
			return nil, apperror.New(apperror.CodeForbidden, "You can only see your own applications", nil)
		}
		if filter.PositionID == nil && filter.CompanyID == nil {
			return s.ListForApplicant(ctx, profile.ID)
		}
		filter.ApplicantID = &profile.ID
		return s.List(ctx, filter)
	}
	return nil, apperror.New(apperror.CodeForbidden, "unknown role", nil)
}

// Summary counts the employer's applications by status.
func (s *Service) Summary(ctx context.Context, employerUserID uuid.UUID) (model.ApplicationSummary, error) {
	company, err := s.store.CompanyByUser(ctx, employerUserID)
	if err != nil {
		return model.ApplicationSummary{}, err
	}
	return s.store.Summary(ctx, company.ID)
}

// History returns the audit trail of an application, oldest first. Visible to
// admin, the owning employer and the applicant.
func (s *Service) History(ctx context.Context, applicationID uuid.UUID, viewer Actor) ([]model.ApplicationAudit, error) {
	app, err := s.store.Application(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	switch viewer.Role {
	case model.RoleAdmin:
	case model.RoleEmployer:
		if err := s.checkOwner(ctx, app, viewer.ID); err != nil {
			return nil, err
		}
	case model.RoleApplicant:
		profile, err := s.store.ProfileByUser(ctx, viewer.ID)
		if err != nil && !errors.Is(err, ErrProfileNotFound) {
			return nil, err
		}
		if err != nil || profile.ID != app.ApplicantID {
			return nil, apperror.New(apperror.CodeForbidden, "application belongs to another applicant", nil)
		}
	default:
		return nil, apperror.New(apperror.CodeForbidden, "unknown role", nil)
	}

	audits, err := s.store.Audits(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(audits, func(i, j int) bool {
		if audits[i].At.Equal(audits[j].At) {
			return audits[i].ID < audits[j].ID
		}
		return audits[i].At.Before(audits[j].At)
	})
	return audits, nil
}

// List returns the applications matching filter, newest first.
func (s *Service) List(ctx context.Context, filter Filter) ([]model.Application, error) {
	apps, err := s.store.ListApplications(ctx, filter)
	if err != nil {
		return nil, err
	}
	SortByAppliedDesc(apps)
	return apps, nil
}

// SortByAppliedDesc orders applications by apply time descending, ties broken by id.
func SortByAppliedDesc(apps []model.Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].AppliedAt.Equal(apps[j].AppliedAt) {
			return apps[i].ID.String() > apps[j].ID.String()
		}
		return apps[i].AppliedAt.After(apps[j].AppliedAt)
	})
}

func normalizeStatus(status string) string {
	return strings.ToUpper(strings.TrimSpace(status))
}
