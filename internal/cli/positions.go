package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"JobPortal-backend/internal/client"
	"JobPortal-backend/internal/position"
)

type PositionsCmd struct {
	List PositionsListCmd `cmd:"" default:"withargs" help:"List positions."`
	Show PositionShowCmd  `cmd:"" help:"Show one position."`
}

type PositionsListCmd struct {
	Active  bool      `help:"Only positions still accepting applications."`
	Search  string    `help:"Match name or description."`
	Tag     string    `help:"Only positions with this tag."`
	Company uuid.UUID `help:"Only positions of this company."`
}

func (p *PositionsListCmd) Run(ctx *Context) error {
	c, err := ctx.Client()
	if err != nil {
		return err
	}
	views, err := c.Positions(ctx.Ctx, client.PositionQuery{
		Company: p.Company,
		Active:  p.Active,
		Search:  p.Search,
		Tag:     p.Tag,
	})
	if err != nil {
		return Describe(err)
	}
	if ctx.JSONOutput {
		return ctx.printJSON(views)
	}
	if len(views) == 0 {
		ctx.UI.Infof("No positions found")
		return nil
	}
	return writePositions(ctx, views)
}

func writePositions(ctx *Context, views []position.View) error {
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tCOMPANY\tENDS\tSTATE")
	for _, v := range views {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.Name, companyName(v), v.SubmissionEnd.Local().Format(time.DateTime), ctx.UI.Open(v.IsOpen))
	}
	return w.Flush()
}

func companyName(v position.View) string {
	if v.Company != nil && v.Company.Name != "" {
		return v.Company.Name
	}
	return v.CompanyID.String()
}

type PositionShowCmd struct {
	ID uuid.UUID `arg:"" help:"Position ID."`
}

func (p *PositionShowCmd) Run(ctx *Context) error {
	c, err := ctx.Client()
	if err != nil {
		return err
	}
	v, err := c.Position(ctx.Ctx, p.ID)
	if err != nil {
		return Describe(err)
	}
	if ctx.JSONOutput {
		return ctx.printJSON(v)
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 0, 1, ' ', 0)
	_, _ = fmt.Fprintf(w, "name:\t%s\n", v.Name)
	_, _ = fmt.Fprintf(w, "company:\t%s\n", companyName(v))
	_, _ = fmt.Fprintf(w, "state:\t%s\n", ctx.UI.Open(v.IsOpen))
	if v.SubmissionStart != nil {
		_, _ = fmt.Fprintf(w, "starts:\t%s\n", v.SubmissionStart.Local().Format(time.DateTime))
	}
	_, _ = fmt.Fprintf(w, "ends:\t%s\n", v.SubmissionEnd.Local().Format(time.DateTime))
	_, _ = fmt.Fprintf(w, "capacity:\t%d\n", v.Capacity)
	if len(v.Tags) > 0 {
		_, _ = fmt.Fprintf(w, "tags:\t%s\n", strings.Join(v.Tags, ", "))
	}
	_, _ = fmt.Fprintf(w, "version:\t%d\n", v.Version)
	if err := w.Flush(); err != nil {
		return err
	}
	if v.Description != "" {
		_, err = fmt.Fprintf(ctx.Out, "\n%s\n", v.Description)
	}
	return err
}

type ApplyCmd struct {
	Position uuid.UUID `arg:"" help:"Position ID."`
}

func (a *ApplyCmd) Run(ctx *Context) error {
	c, err := ctx.Client()
	if err != nil {
		return err
	}
	app, err := c.Apply(ctx.Ctx, a.Position)
	if err != nil {
		return Describe(err)
	}
	if ctx.JSONOutput {
		return ctx.printJSON(app)
	}
	ctx.UI.Successf("Applied: %s (%s)", app.ID, ctx.UI.Status(app.Status))
	return nil
}
