// Package guard decides whether a role restricted view may be shown.
package guard

import (
	"context"
	"strings"

	"JobPortal-backend/internal/model"
	"JobPortal-backend/internal/session"
)

// State of a guarded view
type State int

const (
	// Loading means the session is not restored yet. Nothing protected is shown.
	Loading State = iota
	// Unauthorized views are never shown; RedirectTo says where to go instead.
	Unauthorized
	// Authorized views may be shown.
	Authorized
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Unauthorized:
		return "unauthorized"
	case Authorized:
		return "authorized"
	default:
		return "unknown"
	}
}

// MarshalText writes the state by name in JSON output.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// LoginPath is where an empty session is sent.
const LoginPath = "/login"

var landings = map[string]string{
	model.RoleEmployer:  "/hrd/dashboard",
	model.RoleApplicant: "/jobseeker/jobs",
	model.RoleAdmin:     "/admin",
}

// Landing returns the default view of role, "/" for unknown roles.
func Landing(role string) string {
	if path, ok := landings[strings.ToUpper(role)]; ok {
		return path
	}
	return "/"
}

// Decision is the outcome of a guard check.
type Decision struct {
	State      State  `json:"state"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

// Evaluate checks s against required, which may be empty for any logged in
// user. A role mismatch redirects to the landing of the role s has, not the
// one that was required.
func Evaluate(loaded bool, s session.Session, required string) Decision {
	if !loaded {
		return Decision{State: Loading}
	}
	if s.Empty() {
		return Decision{State: Unauthorized, RedirectTo: LoginPath}
	}
	if required != "" && !strings.EqualFold(s.Identity.Role, required) {
		return Decision{State: Unauthorized, RedirectTo: Landing(s.Identity.Role)}
	}
	return Decision{State: Authorized}
}

// Watch re-evaluates the guard on every session change until ctx is done.
// Like session subscriptions, a slow reader only gets the latest decision.
func Watch(ctx context.Context, store *session.Store, required string) <-chan Decision {
	snaps, cancel := store.Subscribe()
	out := make(chan Decision, 1)

	go func() {
		defer close(out)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case snap, ok := <-snaps:
				if !ok {
					return
				}
				d := Evaluate(snap.Loaded, snap.Session, required)
				select {
				case <-out:
				default:
				}
				out <- d
			}
		}
	}()
	return out
}
