// Package config gathers server settings from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	// Load .env file to environments
	_ "github.com/joho/godotenv/autoload"
)

// Config is the whole server configuration
type Config struct {
	Port         int
	AllowOrigins []string
	SecretKey    string
	TokenTTL     time.Duration

	DB DBSettings

	RedisURL          string
	RateLimitPerSec   uint
	GCSBucket         string
	FrontendDir       string
	RequireStartDate  bool
	MaxUploadBytes    int64
	GoogleClientID    string
	GoogleSecret      string
	OAuthRedirectURL  string
	AdminEmail        string
	AdminPassword     string
	AuthLogEnabled    bool
	LogLevel          string
	ShutdownTimeout   time.Duration
	BlacklistInterval time.Duration
}

// DBSettings holds database connection parameters
type DBSettings struct {
	Host          string
	Port          string
	User          string
	Password      string
	Name          string
	UseConnString bool
	ConnString    string
}

// SessionTTL is how long a login stays valid and how long the mirror cookies live.
const SessionTTL = 7 * 24 * time.Hour

// Load reads environment into Config, falling back to defaults.
func Load() *Config {
	return &Config{
		Port:         getInt("PORT", 8080),
		AllowOrigins: splitCSV(getEnv("ALLOW_ORIGIN", "http://localhost:3000")),
		SecretKey:    getEnv("SECRET_KEY", ""),
		TokenTTL:     getDuration("ACCESS_TOKEN_TTL", SessionTTL),
		DB: DBSettings{
			Host:          getEnv("DB_HOST", ""),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USERNAME", ""),
			Password:      getEnv("DB_PASSWORD", ""),
			Name:          getEnv("DB_DATABASE", ""),
			UseConnString: getBool("USE_CONNECTION_STR", false),
			ConnString:    getEnv("DB_CONNECTION_STR", ""),
		},
		RedisURL:          getEnv("REDIS_URL", ""),
		RateLimitPerSec:   uint(positive(getInt("RATE_LIMIT_REQUESTS_PER_SECOND", 5), 5)),
		GCSBucket:         getEnv("GCS_BUCKET", ""),
		FrontendDir:       getEnv("FRONTEND_DIR", ""),
		RequireStartDate:  getBool("POSITION_REQUIRE_WINDOW_START", false),
		MaxUploadBytes:    int64(positive(getInt("MAX_UPLOAD_BYTES", 5<<20), 5<<20)),
		GoogleClientID:    getEnv("GOOGLE_AUTH_CLIENT", ""),
		GoogleSecret:      getEnv("GOOGLE_AUTH_SECRET", ""),
		OAuthRedirectURL:  getEnv("OAUTH_REDIRECT_URL", ""),
		AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		AuthLogEnabled:    getBool("LOGGING", false),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout:   getDuration("SHUTDOWN_TIMEOUT", 5*time.Second),
		BlacklistInterval: getDuration("BLACKLIST_CLEANUP_INTERVAL", 5*time.Minute),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(strings.TrimSpace(value))
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func positive(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
