package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/m-mizutani/goerr/v2"
)

const appName = "meetingprep"

// ClientConfig configures the meetingprep CLI
type ClientConfig struct {
	APIBase        string
	DataDir        string
	LogLevel       string
	ExcludedNames  []string
	RequestTimeout time.Duration
	WatchInterval  time.Duration

	// Google Calendar API access, used instead of page snapshots when set
	CalendarToken string
	CalendarID    string
}

type clientFileConfig struct {
	APIBase        string   `toml:"api_base"`
	DataDir        string   `toml:"data_dir"`
	LogLevel       string   `toml:"log_level"`
	ExcludedNames  []string `toml:"excluded_names"`
	RequestTimeout string   `toml:"request_timeout"`
	WatchInterval  string   `toml:"watch_interval"`
	CalendarToken  string   `toml:"calendar_token"`
	CalendarID     string   `toml:"calendar_id"`
}

// LoadClient reads ~/.config/meetingprep/config.toml (or path, when set) and applies
// MEETINGPREP_* environment overrides
func LoadClient(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{
		APIBase:        "http://localhost:8080",
		DataDir:        defaultDataDir(),
		LogLevel:       "warn",
		RequestTimeout: 8 * time.Second,
		WatchInterval:  time.Second,
		CalendarID:     "primary",
	}

	if path == "" {
		path = clientConfigPath()
	}
	if path != "" {
		var fc clientFileConfig
		if _, err := toml.DecodeFile(path, &fc); err != nil {
			return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
		}
		applyFile(cfg, &fc)
	}

	applyClientEnv(cfg)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, goerr.Wrap(err, "failed to create data dir", goerr.V("dir", cfg.DataDir))
	}
	return cfg, nil
}

// StorePath is the local cache database
func (c *ClientConfig) StorePath() string {
	return filepath.Join(c.DataDir, "local.db")
}

func applyFile(cfg *ClientConfig, fc *clientFileConfig) {
	if fc.APIBase != "" {
		cfg.APIBase = fc.APIBase
	}
	if fc.DataDir != "" {
		cfg.DataDir = expandTilde(fc.DataDir)
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.ExcludedNames != nil {
		cfg.ExcludedNames = fc.ExcludedNames
	}
	if d, err := time.ParseDuration(fc.RequestTimeout); err == nil && d > 0 {
		cfg.RequestTimeout = d
	}
	if d, err := time.ParseDuration(fc.WatchInterval); err == nil && d > 0 {
		cfg.WatchInterval = d
	}
	cfg.CalendarToken = fc.CalendarToken
	if fc.CalendarID != "" {
		cfg.CalendarID = fc.CalendarID
	}
}

func applyClientEnv(cfg *ClientConfig) {
	if v := os.Getenv("MEETINGPREP_API_BASE"); v != "" {
		cfg.APIBase = v
	}
	if v := os.Getenv("MEETINGPREP_DATA_DIR"); v != "" {
		cfg.DataDir = expandTilde(v)
	}
	if v := os.Getenv("MEETINGPREP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MEETINGPREP_CALENDAR_TOKEN"); v != "" {
		cfg.CalendarToken = v
	}
	if v := os.Getenv("MEETINGPREP_EXCLUDED_NAMES"); v != "" {
		var names []string
		for _, n := range strings.Split(v, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
		cfg.ExcludedNames = names
	}
}

func clientConfigPath() string {
	var configDir string
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		configDir = filepath.Join(xdg, appName)
	} else if home, err := os.UserHomeDir(); err == nil {
		configDir = filepath.Join(home, ".config", appName)
	} else {
		return ""
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}

func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", appName)
	}
	return filepath.Join(".", "."+appName)
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
