// Package session is the use-case layer over the auth gateway: it owns the
// login/register/refresh/logout state transitions consumed by the UI layer
// and persists the current session through a pluggable store.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/portal-hub/student-portal/internal/domain/shared"
	"github.com/portal-hub/student-portal/internal/domain/student"
	"github.com/portal-hub/student-portal/internal/infrastructure/gateway"
	"github.com/portal-hub/student-portal/pkg/logger"
)

// Session is an authenticated portal session. ExpiresAt is zero for opaque
// (non-JWT) tokens, whose validity only the server can judge.
type Session struct {
	Token     string          `json:"token"`
	Student   student.Student `json:"student"`
	ExpiresAt time.Time       `json:"expiresAt,omitempty"`
}

// ExpiresWithin reports whether the session expires inside the window.
// Opaque tokens (zero expiry) never report as expiring.
func (s Session) ExpiresWithin(window time.Duration, now time.Time) bool {
	if s.ExpiresAt.IsZero() {
		return false
	}
	return s.ExpiresAt.Before(now.Add(window))
}

// Authenticator is the slice of the auth gateway the service needs.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*gateway.AuthResult, error)
	RegisterStudent(ctx context.Context, reg student.Registration) (*gateway.AuthResult, error)
	ValidateToken(ctx context.Context, token string) (*student.Student, error)
	RefreshToken(ctx context.Context, token string) (*gateway.AuthResult, error)
	RevokeToken(ctx context.Context, token string)
}

// Store persists the current session between runs. Load returns (nil, nil)
// when no session is stored.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context) (*Session, error)
	Clear(ctx context.Context) error
}

// Service orchestrates session state transitions. Safe for concurrent use.
type Service struct {
	auth   Authenticator
	store  Store
	logger *logger.Logger

	mu      sync.RWMutex
	current *Session
}

// NewService creates a session service. The store may be nil for callers
// that do not persist sessions.
func NewService(auth Authenticator, store Store, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		auth:   auth,
		store:  store,
		logger: log.With(logger.String("component", "session")),
	}
}

// Login authenticates the student and establishes the current session.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	result, err := s.auth.Authenticate(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, result), nil
}

// Register creates a new account and establishes the current session.
// The payload is validated locally before any network call.
func (s *Service) Register(ctx context.Context, reg student.Registration) (*Session, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	result, err := s.auth.RegisterStudent(ctx, reg)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, result), nil
}

// Restore revives a persisted session on startup. A missing or invalid
// stored token means "logged out" (nil, nil), not an error; anything else
// propagates.
func (s *Service) Restore(ctx context.Context) (*Session, error) {
	if s.store == nil {
		return nil, nil
	}

	stored, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}

	st, err := s.auth.ValidateToken(ctx, stored.Token)
	if err != nil {
		if shared.IsKind(err, shared.KindTokenInvalid) {
			s.discard(ctx)
			return nil, nil
		}
		return nil, err
	}

	sess := &Session{Token: stored.Token, Student: *st, ExpiresAt: TokenExpiry(stored.Token)}
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
	return s.Current(), nil
}

// Refresh exchanges the current token for a fresh one.
func (s *Service) Refresh(ctx context.Context) (*Session, error) {
	current := s.Current()
	if current == nil {
		return nil, shared.NewError(shared.KindTokenExpired, "No active session")
	}

	result, err := s.auth.RefreshToken(ctx, current.Token)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, result), nil
}

// RefreshIfNeeded refreshes only when the current token expires within the
// window. Sessions with opaque tokens are left alone.
func (s *Service) RefreshIfNeeded(ctx context.Context, window time.Duration) (*Session, error) {
	current := s.Current()
	if current == nil || !current.ExpiresWithin(window, time.Now()) {
		return current, nil
	}
	return s.Refresh(ctx)
}

// Logout revokes the session server-side and clears all local state. It
// never fails: revocation errors are swallowed by the gateway and store
// failures are logged.
func (s *Service) Logout(ctx context.Context) {
	current := s.Current()
	if current != nil {
		s.auth.RevokeToken(ctx, current.Token)
	}
	s.discard(ctx)
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// Current returns a copy of the active session, or nil when logged out.
func (s *Service) Current() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	clone := *s.current
	return &clone
}

func (s *Service) establish(ctx context.Context, result *gateway.AuthResult) *Session {
	sess := &Session{
		Token:     result.Token,
		Student:   result.Student,
		ExpiresAt: TokenExpiry(result.Token),
	}

	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.Save(ctx, sess); err != nil {
			// A session that cannot be persisted still works for this run.
			s.logger.Warn("failed to persist session", logger.Err(err))
		}
	}
	return s.Current()
}

func (s *Service) discard(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Warn("failed to clear stored session", logger.Err(err))
	}
}
