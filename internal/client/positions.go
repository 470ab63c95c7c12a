package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/position"
)

// PositionQuery filters Positions. Zero fields are ignored.
type PositionQuery struct {
	Company uuid.UUID
	Active  bool
	Search  string
	Tag     string
}

func (q PositionQuery) values() url.Values {
	v := url.Values{}
	if q.Company != uuid.Nil {
		v.Set("company", q.Company.String())
	}
	if q.Active {
		v.Set("active", "true")
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Tag != "" {
		v.Set("tag", q.Tag)
	}
	return v
}

// Positions lists positions, newest first.
func (c *Client) Positions(ctx context.Context, q PositionQuery) ([]position.View, error) {
	var out []position.View
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/positions", query: q.values()}, &out)
	return out, err
}

// Position fetches one position. Its Version doubles as the ETag.
func (c *Client) Position(ctx context.Context, id uuid.UUID) (position.View, error) {
	var out position.View
	h, err := c.do(ctx, request{method: http.MethodGet, path: "/positions/" + id.String()}, &out)
	if err == nil && out.Version == 0 {
		out.Version = versionOf(h)
	}
	return out, err
}

// CreatePosition posts a new position for the caller's company.
func (c *Client) CreatePosition(ctx context.Context, info model.EditablePositionInfo) (position.View, error) {
	var out position.View
	_, err := c.do(ctx, request{method: http.MethodPost, path: "/positions", body: info}, &out)
	return out, err
}

// UpdatePosition replaces the editable fields. A positive version is sent as
// If-Match and a stale one fails with a conflict.
func (c *Client) UpdatePosition(ctx context.Context, id uuid.UUID, info model.EditablePositionInfo, version int) (position.View, error) {
	var out position.View
	_, err := c.do(ctx, request{
		method:  http.MethodPut,
		path:    "/positions/" + id.String(),
		body:    info,
		ifMatch: version,
	}, &out)
	return out, err
}

// DeletePosition removes a position and its applications.
func (c *Client) DeletePosition(ctx context.Context, id uuid.UUID) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/positions/" + id.String()}, nil)
	return err
}
