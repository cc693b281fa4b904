// Package config handles the configuration directory, credential file paths
// and environment settings.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"taskboard/internal/tasklist"
)

const (
	// AppName is the application directory name.
	AppName = "taskboard"

	// TokenFile is the remembered (persistent) credential filename.
	TokenFile = "token.json"

	// SessionFile is the session credential filename.
	SessionFile = "session.json"

	// EnvFile is the optional settings file inside the config directory.
	EnvFile = "taskboard.env"
)

// Env holds settings read from the environment.
type Env struct {
	APIURL     string        `env:"TASKBOARD_API_URL" env-default:"http://localhost:8000"`
	Timeout    time.Duration `env:"TASKBOARD_TIMEOUT" env-default:"10s"`
	PageSize   int           `env:"TASKBOARD_PAGE_SIZE" env-default:"6"`
	LogFormat  string        `env:"TASKBOARD_LOG_FORMAT" env-default:"console"`
	RuntimeDir string        `env:"XDG_RUNTIME_DIR"`
}

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	Env Env
}

// New creates a new Config with the default or specified config directory
// and reads the environment settings.
// If configDir is empty, uses XDG_CONFIG_HOME/taskboard or $HOME/.config/taskboard.
// When <dir>/taskboard.env exists its values are exported into the
// environment first and take precedence.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	cfg := &Config{Dir: dir}

	var err error
	if path := cfg.EnvFilePath(); fileExists(path) {
		err = cleanenv.ReadConfig(path, &cfg.Env)
	} else {
		err = cleanenv.ReadEnv(&cfg.Env)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	if err := cfg.Env.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings for values the client cannot work with.
func (e Env) Validate() error {
	u, err := url.Parse(e.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid TASKBOARD_API_URL: %q", e.APIURL)
	}
	if e.Timeout <= 0 {
		return fmt.Errorf("invalid TASKBOARD_TIMEOUT: %s", e.Timeout)
	}
	if !slices.Contains(tasklist.PageSizes, e.PageSize) {
		return fmt.Errorf("invalid TASKBOARD_PAGE_SIZE: %d (want 3, 6, 9 or 12)", e.PageSize)
	}
	switch e.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid TASKBOARD_LOG_FORMAT: %q", e.LogFormat)
	}
	return nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// EnvFilePath returns the path to the optional settings file.
func (c *Config) EnvFilePath() string {
	return filepath.Join(c.Dir, EnvFile)
}

// TokenPath returns the path to the remembered credential file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// SessionDir returns the directory holding the session credential.
// It lives under XDG_RUNTIME_DIR, which is emptied at logout/reboot,
// or under the temp dir when that is unset.
func (c *Config) SessionDir() string {
	base := c.Env.RuntimeDir
	if base == "" {
		base = os.TempDir()
	}
	return filepath.Join(base, AppName+"-"+strconv.Itoa(os.Getuid()))
}

// SessionPath returns the path to the session credential file.
func (c *Config) SessionPath() string {
	return filepath.Join(c.SessionDir(), SessionFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasToken checks if either credential file exists.
func (c *Config) HasToken() bool {
	return fileExists(c.TokenPath()) || fileExists(c.SessionPath())
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
