package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/portal-hub/student-portal/config"
)

// fileConfig is the subset of configuration the CLI reads from
// ~/.portal/config.toml. Pointer fields distinguish "not set" from a zero
// value; values present in the file take precedence over environment
// variables.
type fileConfig struct {
	APIURL     *string `toml:"api_url"`
	TimeoutSec *int    `toml:"timeout_seconds"`
	MaxRetries *int    `toml:"max_retries"`
	LogLevel   *string `toml:"log_level"`

	Session struct {
		Store      *string `toml:"store"`
		Passphrase *string `toml:"passphrase"`
		RedisURL   *string `toml:"redis_url"`
		RedisKey   *string `toml:"redis_key"`
	} `toml:"session"`
}

// portalHome returns the CLI's state directory, ~/.portal.
func portalHome() string {
	if dir := os.Getenv("PORTAL_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".portal"
	}
	return filepath.Join(home, ".portal")
}

// loadConfig builds the effective configuration: environment variables over
// built-in defaults, then the config file over both.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(portalHome(), "config.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // no config file yet, env and defaults apply
	}

	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, err
	}

	if fc.APIURL != nil {
		cfg.API.BaseURL = *fc.APIURL
	}
	if fc.TimeoutSec != nil {
		cfg.API.RequestTimeout = time.Duration(*fc.TimeoutSec) * time.Second
	}
	if fc.MaxRetries != nil {
		cfg.API.MaxRetries = *fc.MaxRetries
	}
	if fc.LogLevel != nil {
		cfg.Logging.Level = *fc.LogLevel
	}
	if fc.Session.Store != nil {
		cfg.Session.Store = config.SessionStoreKind(*fc.Session.Store)
	}
	if fc.Session.Passphrase != nil {
		cfg.Session.FilePassphrase = *fc.Session.Passphrase
	}
	if fc.Session.RedisURL != nil {
		cfg.Session.RedisURL = *fc.Session.RedisURL
	}
	if fc.Session.RedisKey != nil {
		cfg.Session.RedisKey = *fc.Session.RedisKey
	}

	return cfg, cfg.Validate()
}
