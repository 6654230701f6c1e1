// Package sessionstore provides the session.Store adapters: an in-memory
// store for tests and single-process use, a Redis store for shared portal
// deployments, and an encrypted file store for the CLI's persistent login.
package sessionstore

import (
	"context"
	"sync"

	"github.com/portal-hub/student-portal/internal/application/session"
)

// Verify interface compliance.
var _ session.Store = (*Memory)(nil)

// Memory holds the session in process memory.
type Memory struct {
	mu      sync.RWMutex
	session *session.Session
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

// Save stores a copy of the session.
func (m *Memory) Save(_ context.Context, s *session.Session) error {
	clone := *s
	m.mu.Lock()
	m.session = &clone
	m.mu.Unlock()
	return nil
}

// Load returns a copy of the stored session, or nil when empty.
func (m *Memory) Load(_ context.Context) (*session.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.session == nil {
		return nil, nil
	}
	clone := *m.session
	return &clone, nil
}

// Clear drops the stored session.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.session = nil
	m.mu.Unlock()
	return nil
}
