// Package client is a typed Go client for the JobPortal REST API.
//
// Every call takes a context so callers can abandon a request, e.g. when the
// view that issued it goes away. The bearer credential comes from a
// session.Store, and any 401 answer clears that store. Nothing is retried.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"JobPortal-backend/internal/apperror"
	"JobPortal-backend/internal/session"
	"JobPortal-backend/internal/utilities"
)

// DefaultTimeout bounds a single request when the caller's context has no deadline.
const DefaultTimeout = 30 * time.Second

// Client talks to one API base URL such as http://localhost:8080/api/v1.
type Client struct {
	base    *url.URL
	http    *http.Client
	session *session.Store
	log     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a client for baseURL. store holds the credential and must have
// been restored by the caller.
func New(baseURL string, store *session.Store, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid api url %q: scheme and host are required", baseURL)
	}
	if store == nil {
		store = session.New(nil, nil)
	}

	c := &Client{
		base:    u,
		http:    &http.Client{Timeout: DefaultTimeout},
		session: store,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the API base the client was created with.
func (c *Client) BaseURL() *url.URL {
	u := *c.base
	return &u
}

// Session returns the store the client reads its credential from.
func (c *Client) Session() *session.Store {
	return c.session
}

// Attachment is a file sent in a multipart request.
type Attachment struct {
	Filename string
	Data     io.Reader
}

type request struct {
	method  string
	path    string
	query   url.Values
	body    interface{}
	fields  map[string]string
	files   map[string]*Attachment
	ifMatch int

	// anonymous requests exchange credentials for a session. They carry no
	// bearer and a 401 on them says nothing about the stored session.
	anonymous bool
}

// do sends req and decodes a 2xx JSON answer into out when out is not nil.
func (c *Client) do(ctx context.Context, req request, out interface{}) (http.Header, error) {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperror.New(apperror.CodeNetwork, "request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug().
		Str("method", req.method).
		Str("path", req.path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api call")

	if resp.StatusCode >= 300 {
		apiErr := decodeError(resp)
		if resp.StatusCode == http.StatusUnauthorized && !req.anonymous {
			// the credential is no longer accepted anywhere
			if err := c.session.Clear(context.WithoutCancel(ctx)); err != nil {
				c.log.Warn().Err(err).Msg("failed to clear session after 401")
			}
		}
		return resp.Header, apiErr
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.Header, apperror.New(apperror.CodeInternal, "invalid response body", err)
		}
	}
	return resp.Header, nil
}

func (c *Client) build(ctx context.Context, req request) (*http.Request, error) {
	u := c.base.JoinPath(req.path)
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case req.fields != nil || req.files != nil:
		buf, ct, err := encodeMultipart(req.fields, req.files)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case req.body != nil:
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, err
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if req.ifMatch > 0 {
		httpReq.Header.Set("If-Match", strconv.Quote(strconv.Itoa(req.ifMatch)))
	}
	if cred := c.session.Current().Credential; cred != "" && !req.anonymous {
		httpReq.Header.Set("Authorization", "Bearer "+cred)
	}
	return httpReq, nil
}

func encodeMultipart(fields map[string]string, files map[string]*Attachment) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for field, att := range files {
		if att == nil {
			continue
		}
		part, err := w.CreateFormFile(field, att.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, att.Data); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}

func decodeError(resp *http.Response) error {
	var body utilities.ErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
		if body.Error == "" {
			body.Error = http.StatusText(resp.StatusCode)
		}
	}
	return apperror.FromStatus(resp.StatusCode, body.Error, body.Fields)
}

// versionOf reads the ETag of h as a version, 0 when absent or unreadable.
func versionOf(h http.Header) int {
	raw := strings.Trim(strings.TrimPrefix(h.Get("ETag"), "W/"), `"`)
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return v
}

// IsAuth reports whether err means the credential was rejected.
func IsAuth(err error) bool {
	return apperror.Has(err, apperror.CodeAuth)
}

// IsNetwork reports whether err is a transport failure the user may retry.
func IsNetwork(err error) bool {
	return apperror.Has(err, apperror.CodeNetwork) || errors.Is(err, context.DeadlineExceeded)
}
