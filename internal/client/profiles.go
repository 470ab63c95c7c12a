package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/position"
)

// CompanyProfile is a company with its positions.
type CompanyProfile struct {
	model.Company
	Positions []position.View `json:"positions"`
}

// User fetches a user by id.
func (c *Client) User(ctx context.Context, id uuid.UUID) (model.User, error) {
	var out model.User
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/users/" + id.String()}, &out)
	return out, err
}

// UpdateUser changes the caller's display name and avatar. An empty name or
// nil avatar leaves that part unchanged.
func (c *Client) UpdateUser(ctx context.Context, id uuid.UUID, name string, avatar *Attachment) (model.User, error) {
	fields := map[string]string{}
	if name != "" {
		fields["name"] = name
	}
	var out model.User
	_, err := c.do(ctx, request{
		method: http.MethodPut,
		path:   "/users/" + id.String(),
		fields: fields,
		files:  map[string]*Attachment{"avatar": avatar},
	}, &out)
	if err != nil {
		return out, err
	}
	if cur := c.session.Current(); cur.Identity.UserID == out.ID && cur.Credential != "" {
		err = c.session.Establish(ctx, IdentityOf(out), cur.Credential)
	}
	return out, err
}

func searchQuery(search string) url.Values {
	if search == "" {
		return nil
	}
	return url.Values{"search": {search}}
}

// Companies lists companies whose name contains search.
func (c *Client) Companies(ctx context.Context, search string) ([]model.Company, error) {
	var out []model.Company
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/companies", query: searchQuery(search)}, &out)
	return out, err
}

// Company fetches a company with its positions.
func (c *Client) Company(ctx context.Context, id uuid.UUID) (CompanyProfile, error) {
	var out CompanyProfile
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/companies/" + id.String()}, &out)
	return out, err
}

// UpdateCompany overwrites the caller's company profile.
func (c *Client) UpdateCompany(ctx context.Context, id uuid.UUID, info model.EditableCompanyInfo) (CompanyProfile, error) {
	var out CompanyProfile
	_, err := c.do(ctx, request{method: http.MethodPut, path: "/companies/" + id.String(), body: info}, &out)
	return out, err
}

// Societies lists applicant profiles whose name contains search.
func (c *Client) Societies(ctx context.Context, search string) ([]model.ApplicantProfile, error) {
	var out []model.ApplicantProfile
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/societies", query: searchQuery(search)}, &out)
	return out, err
}

// Society fetches one applicant profile.
func (c *Client) Society(ctx context.Context, id uuid.UUID) (model.ApplicantProfile, error) {
	var out model.ApplicantProfile
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/societies/" + id.String()}, &out)
	return out, err
}

// PortfolioItems lists the portfolio of owner, or of the caller when owner is uuid.Nil.
func (c *Client) PortfolioItems(ctx context.Context, owner uuid.UUID) ([]model.PortfolioItem, error) {
	var q url.Values
	if owner != uuid.Nil {
		q = url.Values{"owner": {owner.String()}}
	}
	var out []model.PortfolioItem
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/portfolio-items", query: q}, &out)
	return out, err
}

// CreatePortfolioItem adds a skill with an optional attachment.
func (c *Client) CreatePortfolioItem(ctx context.Context, skill, description string, attachment *Attachment) (model.PortfolioItem, error) {
	var out model.PortfolioItem
	_, err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/portfolio-items",
		fields: map[string]string{"skill": skill, "description": description},
		files:  map[string]*Attachment{"file": attachment},
	}, &out)
	return out, err
}

// DeletePortfolioItem removes one of the caller's items.
func (c *Client) DeletePortfolioItem(ctx context.Context, id uuid.UUID) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/portfolio-items/" + id.String()}, nil)
	return err
}
