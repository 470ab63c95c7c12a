package auth

import (
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"JobPortal-backend/internal/logging"
)

// AuthLogPath is where authentication attempts are recorded when LOGGING=true
const AuthLogPath = "log/auth.log"

var (
	authLogOnce sync.Once
	authLogger  = zerolog.Nop()
)

func authLog() *zerolog.Logger {
	authLogOnce.Do(func() {
		if !strings.EqualFold(strings.TrimSpace(os.Getenv("LOGGING")), "true") {
			return
		}
		// best-effort: if the file cannot be opened, attempts are simply not recorded
		f, err := logging.OpenFile(AuthLogPath)
		if err != nil {
			return
		}
		authLogger = zerolog.New(f).With().Timestamp().Logger()
	})
	return &authLogger
}

// LogAuthAttempt appends an authentication attempt record to log/auth.log.
// level: debug|info|warning|error|fatal
// authType: Local|Google|...
// status: Success|Fail
// identifier: email, userID, etc. (optional)
// message: additional info (optional)
func LogAuthAttempt(level string, authType string, status string, identifier string, message string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if strings.EqualFold(level, "warning") {
		lvl, err = zerolog.WarnLevel, nil
	}
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	// fatal would exit the process
	if lvl == zerolog.FatalLevel || lvl == zerolog.PanicLevel {
		lvl = zerolog.ErrorLevel
	}

	ev := authLog().WithLevel(lvl).
		Str("auth_type", authType).
		Str("status", status)
	if identifier != "" {
		ev = ev.Str("identifier", identifier)
	}
	ev.Msg(message)
}
