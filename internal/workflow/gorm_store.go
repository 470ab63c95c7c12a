package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"JobPortal-backend/internal/apperror"
	"JobPortal-backend/internal/model"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// GormStore is the postgres Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func first[T any](ctx context.Context, db *gorm.DB, notFound error, query string, args ...interface{}) (T, error) {
	var out T
	err := db.WithContext(ctx).Where(query, args...).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return out, notFound
	}
	if err != nil {
		return out, apperror.New(apperror.CodeInternal, "database error", err)
	}
	return out, nil
}

// ProfileByUser implements Store
func (g *GormStore) ProfileByUser(ctx context.Context, userID uuid.UUID) (model.ApplicantProfile, error) {
	return first[model.ApplicantProfile](ctx, g.db, ErrProfileNotFound, "user_id = ?", userID)
}

// CompanyByUser implements Store
func (g *GormStore) CompanyByUser(ctx context.Context, userID uuid.UUID) (model.Company, error) {
	return first[model.Company](ctx, g.db, ErrCompanyNotFound, "user_id = ?", userID)
}

// Position implements Store
func (g *GormStore) Position(ctx context.Context, id uuid.UUID) (model.Position, error) {
	return first[model.Position](ctx, g.db, ErrPositionNotFound, "id = ?", id)
}

// Application implements Store
func (g *GormStore) Application(ctx context.Context, id uuid.UUID) (model.Application, error) {
	return first[model.Application](ctx, g.db, ErrApplicationNotFound, "id = ?", id)
}

// FindApplication implements Store
func (g *GormStore) FindApplication(ctx context.Context, positionID, applicantID uuid.UUID) (model.Application, error) {
	return first[model.Application](ctx, g.db, ErrApplicationNotFound, "position_id = ? AND applicant_id = ?", positionID, applicantID)
}

// CreateApplication inserts app and its first audit entry in one transaction.
func (g *GormStore) CreateApplication(ctx context.Context, app *model.Application, audit model.ApplicationAudit) error {
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(app).Error; err != nil {
			return err
		}
		audit.ApplicationID = app.ID
		return tx.Create(&audit).Error
	})
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return ErrDuplicateApplication
		case pgForeignKeyViolation:
			return apperror.Validation("invalid application", map[string]string{
				"position_id": "position or applicant does not exist",
			})
		}
	}
	return apperror.New(apperror.CodeInternal, "failed to create application", err)
}

// UpdateStatus sets the status only when the stored version still equals
// ExpectedVersion, bumps the version and appends the audit entry.
func (g *GormStore) UpdateStatus(ctx context.Context, change StatusChange) (model.Application, error) {
	var updated model.Application
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Application{}).
			Where("id = ? AND version = ?", change.ApplicationID, change.ExpectedVersion).
			Updates(map[string]interface{}{
				"status":     change.Status,
				"decided_at": change.DecidedAt,
				"version":    gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrStaleVersion
		}

		audit := change.Audit
		audit.ApplicationID = change.ApplicationID
		if err := tx.Create(&audit).Error; err != nil {
			return err
		}

		return tx.First(&updated, "id = ?", change.ApplicationID).Error
	})
	if errors.Is(err, ErrStaleVersion) {
		return model.Application{}, ErrStaleVersion
	}
	if err != nil {
		return model.Application{}, apperror.New(apperror.CodeInternal, "failed to update application status", err)
	}
	return updated, nil
}

// ListApplications implements Store. Rows come back newest first.
func (g *GormStore) ListApplications(ctx context.Context, filter Filter) ([]model.Application, error) {
	apps := []model.Application{}

	query := g.db.WithContext(ctx).
		Preload("Position").
		Preload("Position.Company").
		Preload("Applicant").
		Preload("Applicant.User")

	if filter.ApplicantID != nil {
		query = query.Where("applications.applicant_id = ?", *filter.ApplicantID)
	}
	if filter.PositionID != nil {
		query = query.Where("applications.position_id = ?", *filter.PositionID)
	}
	if filter.CompanyID != nil {
		query = query.Joins("JOIN positions ON positions.id = applications.position_id").
			Where("positions.company_id = ?", *filter.CompanyID)
	}

	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Table: "applications", Name: "applied_at"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Table: "applications", Name: "id"}, Desc: true}).
		Find(&apps).Error
	if err != nil {
		return nil, apperror.New(apperror.CodeInternal, "failed to list applications", err)
	}
	return apps, nil
}

// Audits implements Store
func (g *GormStore) Audits(ctx context.Context, applicationID uuid.UUID) ([]model.ApplicationAudit, error) {
	audits := []model.ApplicationAudit{}
	if err := g.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("at ASC, id ASC").
		Find(&audits).Error; err != nil {
		return nil, apperror.New(apperror.CodeInternal, "failed to load application history", err)
	}
	return audits, nil
}

// Summary implements Store
func (g *GormStore) Summary(ctx context.Context, companyID uuid.UUID) (model.ApplicationSummary, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := g.db.WithContext(ctx).
		Model(&model.Application{}).
		Select("applications.status AS status, COUNT(*) AS count").
		Joins("JOIN positions ON positions.id = applications.position_id").
		Where("positions.company_id = ?", companyID).
		Group("applications.status").
		Scan(&rows).Error
	if err != nil {
		return model.ApplicationSummary{}, apperror.New(apperror.CodeInternal, "failed to count applications", err)
	}

	var summary model.ApplicationSummary
	for _, row := range rows {
		summary.Total += row.Count
		switch row.Status {
		case model.ApplicationStatusPending:
			summary.Pending = row.Count
		case model.ApplicationStatusAccepted:
			summary.Accepted = row.Count
		case model.ApplicationStatusRejected:
			summary.Rejected = row.Count
		default:
			return summary, fmt.Errorf("unexpected application status %q", row.Status)
		}
	}
	return summary, nil
}
