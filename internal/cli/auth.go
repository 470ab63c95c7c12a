package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"JobPortal-backend/internal/session"
)

type LoginCmd struct {
	Email    string `arg:"" help:"Account email."`
	Password string `help:"Account password; read from stdin when empty." env:"JOBCTL_PASSWORD"`
}

func (l *LoginCmd) Run(ctx *Context) error {
	password := l.Password
	if password == "" {
		var err error
		if password, err = readPassword(ctx); err != nil {
			return err
		}
	}

	c, err := ctx.Client()
	if err != nil {
		return err
	}
	resp, err := c.Login(ctx.Ctx, l.Email, password)
	if err != nil {
		return Describe(err)
	}

	if ctx.JSONOutput {
		return ctx.printJSON(ctx.Session().Current().Identity)
	}
	ctx.UI.Successf("Logged in as %s (%s)", resp.User.Email, resp.User.Role)
	return nil
}

func readPassword(ctx *Context) (string, error) {
	if ctx.In == nil {
		return "", errors.New("password required")
	}
	_, _ = fmt.Fprint(ctx.Err, "Password: ")
	line, err := bufio.NewReader(ctx.In).ReadString('\n')
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return "", errors.New("password required")
	}
	return password, nil
}

type LogoutCmd struct{}

func (l *LogoutCmd) Run(ctx *Context) error {
	c, err := ctx.Client()
	if err != nil {
		return err
	}
	if err := c.Logout(ctx.Ctx); err != nil {
		return Describe(err)
	}
	ctx.UI.Infof("Logged out")
	return nil
}

type WhoamiCmd struct {
	Remote bool `help:"Ask the API instead of reading the stored session."`
}

func (w *WhoamiCmd) Run(ctx *Context) error {
	if w.Remote {
		c, err := ctx.Client()
		if err != nil {
			return err
		}
		if _, err := c.Me(ctx.Ctx); err != nil {
			return Describe(err)
		}
	}

	current := ctx.Session().Current()
	if current.Empty() {
		return errors.New("not logged in")
	}
	return printIdentity(ctx, current.Identity)
}

func printIdentity(ctx *Context, id session.Identity) error {
	if ctx.JSONOutput {
		return ctx.printJSON(id)
	}
	_, err := fmt.Fprintf(ctx.Out, "%s <%s>\nrole: %s\nid:   %s\n", id.Name, id.Email, id.Role, id.UserID)
	return err
}
