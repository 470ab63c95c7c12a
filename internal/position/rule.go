// Package position decides whether a position accepts applications.
// Every listing, response and submission goes through the same Rule.
package position

import (
	"time"

	"JobPortal-backend/internal/model"
)

// Rule selects which predicate counts as accepting applications.
type Rule int

const (
	// RuleEndOnly accepts while now <= submission end.
	RuleEndOnly Rule = iota
	// RuleWindow also requires submission start to be set and reached.
	RuleWindow
)

// RuleFromConfig returns RuleWindow when requireStart is true.
func RuleFromConfig(requireStart bool) Rule {
	if requireStart {
		return RuleWindow
	}
	return RuleEndOnly
}

// String is used in logs.
func (r Rule) String() string {
	if r == RuleWindow {
		return "window"
	}
	return "end-only"
}

// Accepting applies r to p at now.
func (r Rule) Accepting(p model.Position, now time.Time) bool {
	if r == RuleWindow {
		return p.IsWithinWindow(now)
	}
	return p.IsOpen(now)
}

// Filter keeps the positions accepting at now, preserving order.
func (r Rule) Filter(positions []model.Position, now time.Time) []model.Position {
	out := make([]model.Position, 0, len(positions))
	for _, p := range positions {
		if r.Accepting(p, now) {
			out = append(out, p)
		}
	}
	return out
}

// View is a position with its computed open flag, the response shape of position endpoints.
type View struct {
	model.Position
	IsOpen bool `json:"is_open"`
}

// NewView computes the open flag of p at now.
func (r Rule) NewView(p model.Position, now time.Time) View {
	return View{Position: p, IsOpen: r.Accepting(p, now)}
}

// NewViews maps NewView over positions.
func (r Rule) NewViews(positions []model.Position, now time.Time) []View {
	out := make([]View, 0, len(positions))
	for _, p := range positions {
		out = append(out, r.NewView(p, now))
	}
	return out
}
