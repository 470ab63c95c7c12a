package client

import (
	"context"
	"net/http"

	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/session"
)

// RegisterRequest is the body of a local registration.
type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	CompanyName string `json:"company_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	Description string `json:"description,omitempty"`
}

// IdentityOf converts a user into the identity kept in the session.
func IdentityOf(u model.User) session.Identity {
	return session.Identity{
		UserID:   u.ID,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role,
		AvatarID: u.AvatarID,
	}
}

// Login exchanges credentials for a session and establishes it.
func (c *Client) Login(ctx context.Context, email, password string) (model.LoginResponse, error) {
	var resp model.LoginResponse
	_, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/session",
		body:      map[string]string{"email": email, "password": password},
		anonymous: true,
	}, &resp)
	if err != nil {
		return resp, err
	}
	return resp, c.session.Establish(ctx, IdentityOf(resp.User), resp.AccessToken)
}

// Register creates an account and establishes its session.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (model.LoginResponse, error) {
	var resp model.LoginResponse
	_, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      "/auth/register",
		body:      req,
		anonymous: true,
	}, &resp)
	if err != nil {
		return resp, err
	}
	return resp, c.session.Establish(ctx, IdentityOf(resp.User), resp.AccessToken)
}

// Logout revokes the credential on the server and always clears the local
// session. A credential the server already rejects is not an error.
func (c *Client) Logout(ctx context.Context) error {
	if c.session.Current().Empty() {
		return c.session.Clear(ctx)
	}
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/auth/logout"}, nil)
	if clearErr := c.session.Clear(context.WithoutCancel(ctx)); clearErr != nil && err == nil {
		err = clearErr
	}
	if IsAuth(err) {
		return nil
	}
	return err
}

// Me fetches the current user with its company or applicant profile and
// refreshes the stored identity.
func (c *Client) Me(ctx context.Context) (model.LoginResponse, error) {
	var resp model.LoginResponse
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me"}, &resp); err != nil {
		return resp, err
	}
	cred := c.session.Current().Credential
	if cred == "" {
		return resp, nil
	}
	return resp, c.session.Establish(ctx, IdentityOf(resp.User), cred)
}
