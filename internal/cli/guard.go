package cli

import (
	"fmt"
	"strings"

	"JobPortal-backend/internal/guard"
	"JobPortal-backend/internal/session"
)

// GuardCmd reports what the web guard would do with the stored session.
type GuardCmd struct {
	Role string `arg:"" optional:"" enum:",employer,applicant,admin" default:"" help:"Role the page requires; empty for any logged in user."`
	Path string `help:"Check a page path with the edge cookie rules instead."`
}

type guardResult struct {
	guard.Decision
	Path    string `json:"path,omitempty"`
	Landing string `json:"landing,omitempty"`
}

func (g *GuardCmd) Run(ctx *Context) error {
	store := ctx.Session()
	current := store.Current()

	var res guardResult
	if g.Path != "" {
		res = edgeResult(g.Path, current)
	} else {
		res.Decision = guard.Evaluate(store.Loaded(), current, strings.ToUpper(g.Role))
	}
	if !current.Empty() {
		res.Landing = guard.Landing(current.Identity.Role)
	}

	if ctx.JSONOutput {
		return ctx.printJSON(res)
	}
	_, err := fmt.Fprintln(ctx.Out, res.State)
	if err == nil && res.RedirectTo != "" {
		_, err = fmt.Fprintf(ctx.Out, "redirect: %s\n", res.RedirectTo)
	}
	if err == nil && res.Landing != "" {
		_, err = fmt.Fprintf(ctx.Out, "landing:  %s\n", res.Landing)
	}
	return err
}

// edgeResult runs the cookie-only rules with the values the session mirror would set.
func edgeResult(path string, s session.Session) guardResult {
	res := guardResult{Path: path}
	target := guard.DefaultEdgeRules().Redirect(path, s.Credential, s.Identity.Role)
	switch {
	case target == "":
		res.State = guard.Authorized
	default:
		res.State = guard.Unauthorized
		res.RedirectTo = target
	}
	return res
}
