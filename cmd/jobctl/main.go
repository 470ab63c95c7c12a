// Command jobctl talks to the job portal API from a terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"JobPortal-backend/internal/cli"
	"JobPortal-backend/internal/logging"
	"JobPortal-backend/internal/ui"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	root := &cli.CLI{}
	versionString := buildVersion()

	parser, err := kong.New(root,
		kong.Name("jobctl"),
		kong.Description("Job portal command line client."),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": versionString},
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	kctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		fallbackUI := ui.New(os.Stdout, os.Stderr, ui.NormalizeColorMode(os.Getenv("JOBCTL_COLOR")), false)
		fallbackUI.Errorf("%v", err)
		os.Exit(1)
	}

	configDir, err := cli.ConfigDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := cli.LoadConfig(configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if root.APIURL != "" {
		cfg.APIURL = root.APIURL
	}

	userInterface := ui.New(os.Stdout, os.Stderr, ui.NormalizeColorMode(root.Color), root.JSON)

	level := "info"
	if root.Verbose {
		level = "debug"
	}
	logger := logging.Console(level, os.Stderr, userInterface.ColorEnabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx := &cli.Context{
		Ctx:        ctx,
		In:         os.Stdin,
		Out:        os.Stdout,
		Err:        os.Stderr,
		UI:         userInterface,
		Config:     cfg,
		ConfigDir:  configDir,
		Logger:     logger,
		Verbose:    root.Verbose,
		JSONOutput: root.JSON,
		Version:    versionString,
	}

	if err := kctx.Run(runCtx); err != nil {
		userInterface.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}

func buildVersion() string {
	if commit == "" && date == "" {
		return version
	}
	if commit == "" {
		return fmt.Sprintf("%s (%s)", version, date)
	}
	if date == "" {
		return fmt.Sprintf("%s (%s)", version, commit)
	}
	return fmt.Sprintf("%s (%s, %s)", version, commit, date)
}
