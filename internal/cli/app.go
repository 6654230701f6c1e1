package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/portal-hub/student-portal/config"
	"github.com/portal-hub/student-portal/internal/application/session"
	"github.com/portal-hub/student-portal/internal/infrastructure/gateway"
	"github.com/portal-hub/student-portal/internal/infrastructure/sessionstore"
	"github.com/portal-hub/student-portal/internal/infrastructure/transport"
	"github.com/portal-hub/student-portal/pkg/logger"
)

// app bundles the wired core for one command invocation. Gateways share a
// single transport client, injected explicitly rather than via globals.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	client  *transport.Client
	grades  *gateway.GradeGateway
	session *session.Service
}

// newApp loads configuration and wires the core.
func newApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(os.Stderr, logger.ParseLevel(cfg.Logging.Level))
	if cfg.App.Debug {
		log = logger.New(os.Stderr, logger.LevelDebug)
	}

	client := transport.New(transport.Config{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.RequestTimeout,
		MaxRetries: cfg.API.MaxRetries,
		UserAgent:  cfg.API.UserAgent,
		Logger:     log,
	})

	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		log:     log,
		client:  client,
		grades:  gateway.NewGradeGateway(client, log),
		session: session.NewService(gateway.NewAuthGateway(client, log), store, log),
	}, nil
}

func newStore(cfg *config.Config) (session.Store, error) {
	switch cfg.Session.Store {
	case config.SessionStoreMemory:
		return sessionstore.NewMemory(), nil
	case config.SessionStoreFile:
		path := cfg.Session.FilePath
		if path == "" {
			path = filepath.Join(portalHome(), "session")
		}
		return sessionstore.NewFile(path, cfg.Session.FilePassphrase), nil
	case config.SessionStoreRedis:
		opts, err := redis.ParseURL(cfg.Session.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return sessionstore.NewRedis(redis.NewClient(opts), cfg.Session.RedisKey), nil
	}
	return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
}

// requireSession restores the persisted session and refreshes it when it is
// about to expire. Commands that need authentication call this first.
func (a *app) requireSession(ctx context.Context) (*session.Session, error) {
	sess, err := a.session.Restore(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, fmt.Errorf("not logged in: run `portal login` first")
	}
	return a.session.RefreshIfNeeded(ctx, a.cfg.Session.RefreshWindow)
}
