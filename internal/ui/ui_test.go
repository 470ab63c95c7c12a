package ui

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"JobPortal-backend/internal/model"
)

func TestNormalizeColorMode(t *testing.T) {
	assert.Equal(t, ColorAlways, NormalizeColorMode(" Always "))
	assert.Equal(t, ColorNever, NormalizeColorMode("never"))
	assert.Equal(t, ColorAuto, NormalizeColorMode("rainbow"))
	assert.Equal(t, ColorAuto, NormalizeColorMode(""))
}

func TestNoColorWhenDisabled(t *testing.T) {
	var out, errOut bytes.Buffer
	u := New(&out, &errOut, ColorAlways, true)

	u.Successf("done %d", 3)
	u.Errorf("failed\n")

	assert.False(t, u.ColorEnabled)
	assert.Equal(t, "done 3\n", out.String())
	assert.Equal(t, "failed\n", errOut.String())
	assert.Equal(t, model.ApplicationStatusAccepted, u.Status(model.ApplicationStatusAccepted))
	assert.Equal(t, "closed", u.Open(false))
}

func TestNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	u := New(&bytes.Buffer{}, &bytes.Buffer{}, ColorAlways, false)
	assert.False(t, u.ColorEnabled)
}

func TestColorAlways(t *testing.T) {
	var out bytes.Buffer
	u := New(&out, &bytes.Buffer{}, ColorAlways, false)
	if !u.ColorEnabled {
		t.Skip("NO_COLOR set in environment")
	}
	u.Output = termenv.NewOutput(&out, termenv.WithProfile(termenv.ANSI))
	assert.Contains(t, u.Status(model.ApplicationStatusRejected), model.ApplicationStatusRejected)
	assert.NotEqual(t, model.ApplicationStatusRejected, u.Status(model.ApplicationStatusRejected))
}
