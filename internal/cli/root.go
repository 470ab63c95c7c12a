// Package cli implements the jobctl commands on top of the API client.
package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"JobPortal-backend/internal/apperror"
	"JobPortal-backend/internal/client"
)

// CLI is the kong grammar of jobctl.
type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto" env:"JOBCTL_COLOR"`
	JSON    bool   `help:"JSON output to stdout; disables colors." env:"JOBCTL_JSON"`
	Verbose bool   `help:"Enable debug logging." env:"JOBCTL_VERBOSE"`
	APIURL  string `name:"api-url" help:"API base URL; overrides config and JOBCTL_API_URL."`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Login        LoginCmd        `cmd:"" help:"Log in and store the session."`
	Logout       LogoutCmd       `cmd:"" help:"Revoke and forget the stored session."`
	Whoami       WhoamiCmd       `cmd:"" help:"Show the logged in user."`
	Positions    PositionsCmd    `cmd:"" help:"Browse positions."`
	Apply        ApplyCmd        `cmd:"" help:"Apply to a position."`
	Applications ApplicationsCmd `cmd:"" help:"List and inspect applications."`
	Decide       DecideCmd       `cmd:"" help:"Accept or reject an application."`
	Override     OverrideCmd     `cmd:"" help:"Set any application status as admin."`
	Guard        GuardCmd        `cmd:"" help:"Show the guard decision for a role or page."`
	Config       ConfigCmd       `cmd:"" help:"Manage configuration."`
	Version      VersionCmd      `cmd:"" help:"Print version."`
}

// Describe turns API errors into a message that tells the user what to do.
func Describe(err error) error {
	switch {
	case client.IsAuth(err):
		return fmt.Errorf("%w (run `jobctl login` again)", err)
	case client.IsNetwork(err):
		return fmt.Errorf("cannot reach the API: %w", err)
	case apperror.Has(err, apperror.CodeClosed):
		return fmt.Errorf("%w: the submission period is over", err)
	}
	return err
}

type VersionCmd struct{}

func (v *VersionCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintln(ctx.Out, ctx.Version)
	return err
}

type ConfigCmd struct {
	Init InitConfigCmd `cmd:"" help:"Write the default config file."`
	Path PathConfigCmd `cmd:"" help:"Print config directory."`
}

type InitConfigCmd struct{}

type PathConfigCmd struct{}

func (c *InitConfigCmd) Run(ctx *Context) error {
	created, err := InitConfig(ctx.ConfigDir)
	if err != nil {
		return err
	}
	if !created {
		ctx.UI.Infof("Config already initialized at %s", ctx.ConfigDir)
		return nil
	}
	ctx.UI.Infof("Created %s", ctx.ConfigDir)
	return nil
}

func (c *PathConfigCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintln(ctx.Out, ctx.ConfigDir)
	return err
}
