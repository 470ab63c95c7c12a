package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"JobPortal-backend/internal/client"
	"JobPortal-backend/internal/model"
)

type ApplicationsCmd struct {
	List    ApplicationsListCmd `cmd:"" default:"withargs" help:"List applications visible to you, newest first."`
	Summary SummaryCmd          `cmd:"" help:"Count applications to your company by status."`
	History HistoryCmd          `cmd:"" help:"Show the status changes of one application."`
}

type ApplicationsListCmd struct {
	Position  uuid.UUID `help:"Only applications to this position."`
	Company   uuid.UUID `help:"Only applications to this company (admin)."`
	Applicant uuid.UUID `help:"Only applications of this applicant (admin)."`
}

func (a *ApplicationsListCmd) Run(ctx *Context) error {
	c, err := ctx.Client()
	if err != nil {
		return err
	}
	apps, err := c.Applications(ctx.Ctx, client.ApplicationQuery{
		Company:   a.Company,
		Applicant: a.Applicant,
		Position:  a.Position,
	})
	if err != nil {
		return Describe(err)
	}
	if ctx.JSONOutput {
		return ctx.printJSON(apps)
	}
	if len(apps) == 0 {
		ctx.UI.Infof("No applications found")
		return nil
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tPOSITION\tAPPLIED\tSTATUS\tVERSION")
	for _, app := range apps {
		name := app.PositionID.String()
		if app.Position != nil {
			name = app.Position.Name
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			app.ID, name, app.AppliedAt.Local().Format(time.DateTime), ctx.UI.Status(app.Status), app.Version)
	}
	return w.Flush()
}

type SummaryCmd struct{}

func (s *SummaryCmd) Run(ctx *Context) error {
	c, err := ctx.Client()
	if err != nil {
		return err
	}
	sum, err := c.Summary(ctx.Ctx)
	if err != nil {
		return Describe(err)
	}
	if ctx.JSONOutput {
		return ctx.printJSON(sum)
	}
	_, err = fmt.Fprintf(ctx.Out, "total: %d\n%s: %d\n%s: %d\n%s: %d\n", sum.Total,
		ctx.UI.Status(model.ApplicationStatusPending), sum.Pending,
		ctx.UI.Status(model.ApplicationStatusAccepted), sum.Accepted,
		ctx.UI.Status(model.ApplicationStatusRejected), sum.Rejected)
	return err
}

type HistoryCmd struct {
	ID uuid.UUID `arg:"" help:"Application ID."`
}

func (h *HistoryCmd) Run(ctx *Context) error {
	c, err := ctx.Client()
	if err != nil {
		return err
	}
	entries, err := c.History(ctx.Ctx, h.ID)
	if err != nil {
		return Describe(err)
	}
	if ctx.JSONOutput {
		return ctx.printJSON(entries)
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "AT\tACTOR\tFROM\tTO\tNOTE")
	for _, e := range entries {
		from := e.FromStatus
		if from == "" {
			from = "-"
		}
		note := ""
		if e.Override {
			note = strings.TrimSpace("override " + e.Reason)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.At.Local().Format(time.DateTime), e.ActorRole, from, ctx.UI.Status(e.ToStatus), note)
	}
	return w.Flush()
}

type DecideCmd struct {
	ID      uuid.UUID `arg:"" help:"Application ID."`
	Status  string    `arg:"" enum:"accepted,rejected" help:"New status: accepted or rejected."`
	Version int       `help:"Fail if the application changed since this version."`
}

func (d *DecideCmd) Run(ctx *Context) error {
	c, err := ctx.Client()
	if err != nil {
		return err
	}
	app, err := c.Decide(ctx.Ctx, d.ID, strings.ToUpper(d.Status), d.Version)
	if err != nil {
		return Describe(err)
	}
	return printDecided(ctx, app)
}

type OverrideCmd struct {
	ID      uuid.UUID `arg:"" help:"Application ID."`
	Status  string    `arg:"" enum:"pending,accepted,rejected" help:"New status."`
	Reason  string    `required:"" help:"Why the decision is overridden; kept in the history."`
	Version int       `help:"Fail if the application changed since this version."`
}

func (o *OverrideCmd) Run(ctx *Context) error {
	c, err := ctx.Client()
	if err != nil {
		return err
	}
	app, err := c.Override(ctx.Ctx, o.ID, strings.ToUpper(o.Status), o.Reason, o.Version)
	if err != nil {
		return Describe(err)
	}
	return printDecided(ctx, app)
}

func printDecided(ctx *Context, app model.Application) error {
	if ctx.JSONOutput {
		return ctx.printJSON(app)
	}
	ctx.UI.Successf("%s is now %s (version %d)", app.ID, ctx.UI.Status(app.Status), app.Version)
	return nil
}
