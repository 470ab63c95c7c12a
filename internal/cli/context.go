package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"JobPortal-backend/internal/client"
	"JobPortal-backend/internal/session"
	"JobPortal-backend/internal/ui"
)

// Context is passed to every command's Run.
type Context struct {
	Ctx        context.Context
	In         io.Reader
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Config     Config
	ConfigDir  string
	Logger     zerolog.Logger
	Verbose    bool
	JSONOutput bool
	Version    string

	// HTTPClient replaces the default client, used by tests.
	HTTPClient *http.Client

	store *session.Store
}

// Session returns the restored session store kept in the config dir.
func (c *Context) Session() *session.Store {
	if c.store == nil {
		c.store = session.New(session.NewFilePersister(c.ConfigDir), nil, session.WithLogger(c.Logger))
		c.store.Restore(c.Ctx)
	}
	return c.store
}

// Client returns an API client bound to Session.
func (c *Context) Client() (*client.Client, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: c.Config.RequestTimeout()}
	}
	return client.New(c.Config.APIURL, c.Session(),
		client.WithHTTPClient(httpClient),
		client.WithLogger(c.Logger),
	)
}

func (c *Context) printJSON(v any) error {
	enc := json.NewEncoder(c.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
