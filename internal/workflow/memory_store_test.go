package workflow

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"JobPortal-backend/internal/model"
)

// memoryStore is an in-process Store used by the service tests.
type memoryStore struct {
	mu           sync.Mutex
	profiles     map[uuid.UUID]model.ApplicantProfile
	companies    map[uuid.UUID]model.Company
	positions    map[uuid.UUID]model.Position
	applications map[uuid.UUID]model.Application
	audits       []model.ApplicationAudit

	// skipFind makes FindApplication miss, to exercise the insert-time duplicate check.
	skipFind bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		profiles:     map[uuid.UUID]model.ApplicantProfile{},
		companies:    map[uuid.UUID]model.Company{},
		positions:    map[uuid.UUID]model.Position{},
		applications: map[uuid.UUID]model.Application{},
	}
}

func (m *memoryStore) addProfile(userID uuid.UUID) model.ApplicantProfile {
	p := model.ApplicantProfile{ID: uuid.New(), UserID: userID}
	m.profiles[p.ID] = p
	return p
}

func (m *memoryStore) addCompany(userID uuid.UUID) model.Company {
	c := model.Company{ID: uuid.New(), UserID: userID}
	m.companies[c.ID] = c
	return c
}

func (m *memoryStore) addPosition(p model.Position) model.Position {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	m.positions[p.ID] = p
	return p
}

func (m *memoryStore) ProfileByUser(_ context.Context, userID uuid.UUID) (model.ApplicantProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.profiles {
		if p.UserID == userID {
			return p, nil
		}
	}
	return model.ApplicantProfile{}, ErrProfileNotFound
}

func (m *memoryStore) CompanyByUser(_ context.Context, userID uuid.UUID) (model.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.companies {
		if c.UserID == userID {
			return c, nil
		}
	}
	return model.Company{}, ErrCompanyNotFound
}

func (m *memoryStore) Position(_ context.Context, id uuid.UUID) (model.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.positions[id]
	if !ok {
		return model.Position{}, ErrPositionNotFound
	}
	return p, nil
}

func (m *memoryStore) Application(_ context.Context, id uuid.UUID) (model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applications[id]
	if !ok {
		return model.Application{}, ErrApplicationNotFound
	}
	return a, nil
}

func (m *memoryStore) FindApplication(_ context.Context, positionID, applicantID uuid.UUID) (model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.skipFind {
		return model.Application{}, ErrApplicationNotFound
	}
	for _, a := range m.applications {
		if a.PositionID == positionID && a.ApplicantID == applicantID {
			return a, nil
		}
	}
	return model.Application{}, ErrApplicationNotFound
}

func (m *memoryStore) CreateApplication(_ context.Context, app *model.Application, audit model.ApplicationAudit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.applications {
		if a.PositionID == app.PositionID && a.ApplicantID == app.ApplicantID {
			return ErrDuplicateApplication
		}
	}
	m.applications[app.ID] = *app
	audit.ID = uint(len(m.audits) + 1)
	m.audits = append(m.audits, audit)
	return nil
}

func (m *memoryStore) UpdateStatus(_ context.Context, change StatusChange) (model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.applications[change.ApplicationID]
	if !ok || a.Version != change.ExpectedVersion {
		return model.Application{}, ErrStaleVersion
	}
	a.Status = change.Status
	a.DecidedAt = change.DecidedAt
	a.Version++
	m.applications[a.ID] = a
	audit := change.Audit
	audit.ID = uint(len(m.audits) + 1)
	m.audits = append(m.audits, audit)
	return a, nil
}

func (m *memoryStore) ListApplications(_ context.Context, filter Filter) ([]model.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Application{}
	for _, a := range m.applications {
		if filter.ApplicantID != nil && a.ApplicantID != *filter.ApplicantID {
			continue
		}
		if filter.PositionID != nil && a.PositionID != *filter.PositionID {
			continue
		}
		if filter.CompanyID != nil && m.positions[a.PositionID].CompanyID != *filter.CompanyID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memoryStore) Audits(_ context.Context, applicationID uuid.UUID) ([]model.ApplicationAudit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ApplicationAudit{}
	for _, a := range m.audits {
		if a.ApplicationID == applicationID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memoryStore) Summary(_ context.Context, companyID uuid.UUID) (model.ApplicationSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s model.ApplicationSummary
	for _, a := range m.applications {
		if m.positions[a.PositionID].CompanyID != companyID {
			continue
		}
		s.Total++
		switch a.Status {
		case model.ApplicationStatusPending:
			s.Pending++
		case model.ApplicationStatusAccepted:
			s.Accepted++
		case model.ApplicationStatusRejected:
			s.Rejected++
		}
	}
	return s, nil
}
