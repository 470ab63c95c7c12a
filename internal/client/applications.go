package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"JobPortal-backend/internal/model"
)

// Apply submits the logged in applicant to a position.
func (c *Client) Apply(ctx context.Context, positionID uuid.UUID) (model.Application, error) {
	var out model.Application
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/positions/" + positionID.String() + "/apply"}, &out)
	return out, err
}

// ApplicationQuery filters Applications. The server narrows it further to
// what the caller may see.
type ApplicationQuery struct {
	Company   uuid.UUID
	Applicant uuid.UUID
	Position  uuid.UUID
}

// Applications lists applications, newest applied first.
func (c *Client) Applications(ctx context.Context, q ApplicationQuery) ([]model.Application, error) {
	v := url.Values{}
	for name, id := range map[string]uuid.UUID{"company": q.Company, "applicant": q.Applicant, "position": q.Position} {
		if id != uuid.Nil {
			v.Set(name, id.String())
		}
	}
	var out []model.Application
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/applications", query: v}, &out)
	return out, err
}

// Decide accepts or rejects an application of the caller's company.
func (c *Client) Decide(ctx context.Context, id uuid.UUID, status string, version int) (model.Application, error) {
	var out model.Application
	_, err := c.do(ctx, request{
		method:  http.MethodPatch,
		path:    "/applications/" + id.String() + "/status",
		body:    map[string]string{"status": status},
		ifMatch: version,
	}, &out)
	return out, err
}

// Override sets any status as an administrator. reason is required.
func (c *Client) Override(ctx context.Context, id uuid.UUID, status, reason string, version int) (model.Application, error) {
	var out model.Application
	_, err := c.do(ctx, request{
		method:  http.MethodPut,
		path:    "/applications/" + id.String() + "/override",
		body:    map[string]string{"status": status, "reason": reason},
		ifMatch: version,
	}, &out)
	return out, err
}

// Summary counts the applications of the caller's company by status.
func (c *Client) Summary(ctx context.Context) (model.ApplicationSummary, error) {
	var out model.ApplicationSummary
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/applications/summary"}, &out)
	return out, err
}

// History returns the status changes of an application, oldest first.
func (c *Client) History(ctx context.Context, id uuid.UUID) ([]model.ApplicationAudit, error) {
	var out []model.ApplicationAudit
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/applications/" + id.String() + "/history"}, &out)
	return out, err
}
