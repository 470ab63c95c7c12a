package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

const (
	// DirName is the directory under the user config dir, e.g. $XDG_CONFIG_HOME/jobctl.
	DirName        = "jobctl"
	ConfigFileName = "config.json"
	DefaultAPIURL  = "http://localhost:8080/api/v1"
)

// Config is the jobctl config file. Comments and trailing commas are allowed.
type Config struct {
	APIURL  string `json:"api_url"`
	Timeout string `json:"timeout"`
}

// DefaultConfig is used for anything the file does not set.
func DefaultConfig() Config {
	return Config{
		APIURL:  DefaultAPIURL,
		Timeout: "30s",
	}
}

// RequestTimeout parses Timeout, falling back to 30 seconds.
func (c Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.Timeout))
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ConfigDir returns $XDG_CONFIG_HOME/jobctl or its platform equivalent.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, DirName), nil
}

// LoadConfig reads dir/config.json. A missing or blank file gives the
// defaults. JOBCTL_API_URL overrides the file.
func LoadConfig(dir string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(filepath.Join(dir, ConfigFileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, err
	case len(strings.TrimSpace(string(data))) > 0:
		if err := json5.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if env := strings.TrimSpace(os.Getenv("JOBCTL_API_URL")); env != "" {
		cfg.APIURL = env
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	return cfg, nil
}

// InitConfig writes the default config file unless it exists and reports
// whether it was created.
func InitConfig(dir string) (bool, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return false, err
	}
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}

	data, err := json.MarshalIndent(DefaultConfig(), "", "  ")
	if err != nil {
		return false, err
	}
	return true, os.WriteFile(path, append(data, '\n'), 0o600)
}
