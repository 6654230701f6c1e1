// Package config loads application configuration from environment
// variables. File-based configuration for the CLI lives in internal/cli and
// is merged over these values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	App     AppConfig
	API     APIConfig
	Session SessionConfig
	Logging LoggingConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
}

// APIConfig holds portal API client settings.
type APIConfig struct {
	// BaseURL of the portal API, without a trailing slash.
	BaseURL string

	// RequestTimeout bounds a single request attempt.
	RequestTimeout time.Duration

	// MaxRetries is the default number of additional attempts for
	// idempotent (GET) requests. Non-idempotent requests never retry
	// unless a call opts in explicitly.
	MaxRetries int

	UserAgent string
}

// SessionStoreKind selects where the session is persisted.
type SessionStoreKind string

const (
	SessionStoreMemory SessionStoreKind = "memory"
	SessionStoreFile   SessionStoreKind = "file"
	SessionStoreRedis  SessionStoreKind = "redis"
)

// SessionConfig holds session persistence settings.
type SessionConfig struct {
	Store SessionStoreKind

	// FilePath is the encrypted session file location (file store).
	FilePath string

	// FilePassphrase seals the session file. A per-install passphrase in
	// the config file is expected for anything beyond local development.
	FilePassphrase string

	// RedisURL is the Redis connection URL (redis store).
	RedisURL string

	// RedisKey scopes the session inside Redis, e.g. a device ID.
	RedisKey string

	// RefreshWindow triggers a proactive token refresh when the session
	// expires within it.
	RefreshWindow time.Duration
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("PORTAL_APP_NAME", "student-portal"),
			Environment: Environment(getEnv("PORTAL_ENV", string(EnvDevelopment))),
			Debug:       getBool("PORTAL_DEBUG", false),
		},
		API: APIConfig{
			BaseURL:        getEnv("PORTAL_API_URL", "http://localhost:8085"),
			RequestTimeout: getDuration("PORTAL_API_TIMEOUT", 10*time.Second),
			MaxRetries:     getInt("PORTAL_API_MAX_RETRIES", 3),
			UserAgent:      getEnv("PORTAL_API_USER_AGENT", "student-portal/1.0"),
		},
		Session: SessionConfig{
			Store:          SessionStoreKind(getEnv("PORTAL_SESSION_STORE", string(SessionStoreFile))),
			FilePath:       getEnv("PORTAL_SESSION_FILE", defaultSessionFile()),
			FilePassphrase: getEnv("PORTAL_SESSION_PASSPHRASE", "student-portal-local"),
			RedisURL:       getEnv("PORTAL_SESSION_REDIS_URL", ""),
			RedisKey:       getEnv("PORTAL_SESSION_REDIS_KEY", "default"),
			RefreshWindow:  getDuration("PORTAL_SESSION_REFRESH_WINDOW", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level: getEnv("PORTAL_LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("config: PORTAL_API_URL must not be empty")
	}
	if c.API.MaxRetries < 0 {
		return fmt.Errorf("config: PORTAL_API_MAX_RETRIES must not be negative")
	}
	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreFile:
	case SessionStoreRedis:
		if c.Session.RedisURL == "" {
			return fmt.Errorf("config: PORTAL_SESSION_REDIS_URL is required for the redis session store")
		}
	default:
		return fmt.Errorf("config: unknown session store %q", c.Session.Store)
	}
	return nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".portal/session"
	}
	return home + "/.portal/session"
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}
