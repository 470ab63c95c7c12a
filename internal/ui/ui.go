// Package ui prints human facing jobctl output with optional terminal colors.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"

	"JobPortal-backend/internal/model"
)

// ColorMode is the value of the --color flag.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ANSI color indexes
const (
	red    = "1"
	green  = "2"
	yellow = "3"
	blue   = "4"
	gray   = "8"
)

// UI writes messages to Out and errors to Err.
type UI struct {
	Out          io.Writer
	Err          io.Writer
	Output       *termenv.Output
	ErrOutput    *termenv.Output
	ColorEnabled bool
}

// New decides once whether colors are used. NO_COLOR always disables them.
func New(out io.Writer, err io.Writer, mode ColorMode, disableColor bool) *UI {
	output := termenv.NewOutput(out)
	return &UI{
		Out:          out,
		Err:          err,
		Output:       output,
		ErrOutput:    termenv.NewOutput(err),
		ColorEnabled: shouldEnableColor(output, mode, disableColor),
	}
}

func shouldEnableColor(output *termenv.Output, mode ColorMode, disableColor bool) bool {
	if disableColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return output.ColorProfile() != termenv.Ascii
	}
}

func (u *UI) paint(out *termenv.Output, color, msg string) string {
	if !u.ColorEnabled {
		return msg
	}
	return out.String(msg).Foreground(out.Color(color)).String()
}

func line(format string, args []any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}

// Errorf prints a red line to Err.
func (u *UI) Errorf(format string, args ...any) {
	fmt.Fprintln(u.Err, u.paint(u.ErrOutput, red, line(format, args)))
}

// Warnf prints a yellow line to Err.
func (u *UI) Warnf(format string, args ...any) {
	fmt.Fprintln(u.Err, u.paint(u.ErrOutput, yellow, line(format, args)))
}

// Infof prints a blue line to Out.
func (u *UI) Infof(format string, args ...any) {
	fmt.Fprintln(u.Out, u.paint(u.Output, blue, line(format, args)))
}

// Successf prints a green line to Out.
func (u *UI) Successf(format string, args ...any) {
	fmt.Fprintln(u.Out, u.paint(u.Output, green, line(format, args)))
}

// Status colors an application status for table cells.
func (u *UI) Status(status string) string {
	switch status {
	case model.ApplicationStatusAccepted:
		return u.paint(u.Output, green, status)
	case model.ApplicationStatusRejected:
		return u.paint(u.Output, red, status)
	case model.ApplicationStatusPending:
		return u.paint(u.Output, yellow, status)
	}
	return status
}

// Open renders the open flag of a position.
func (u *UI) Open(open bool) string {
	if open {
		return u.paint(u.Output, green, "open")
	}
	return u.paint(u.Output, gray, "closed")
}

// NormalizeColorMode maps anything unknown to ColorAuto.
func NormalizeColorMode(value string) ColorMode {
	switch ColorMode(strings.ToLower(strings.TrimSpace(value))) {
	case ColorAlways:
		return ColorAlways
	case ColorNever:
		return ColorNever
	default:
		return ColorAuto
	}
}
