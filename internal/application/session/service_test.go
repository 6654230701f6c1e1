package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/portal-hub/student-portal/internal/domain/shared"
	"github.com/portal-hub/student-portal/internal/domain/student"
	"github.com/portal-hub/student-portal/internal/infrastructure/gateway"
	"github.com/portal-hub/student-portal/pkg/logger"
)

type fakeAuth struct {
	authenticateErr error
	validateErr     error
	refreshErr      error

	student student.Student
	token   string

	refreshCalls int
	revokedWith  []string
}

func (f *fakeAuth) Authenticate(ctx context.Context, email, password string) (*gateway.AuthResult, error) {
	if f.authenticateErr != nil {
		return nil, f.authenticateErr
	}
	return &gateway.AuthResult{Student: f.student, Token: f.token}, nil
}

func (f *fakeAuth) RegisterStudent(ctx context.Context, reg student.Registration) (*gateway.AuthResult, error) {
	if f.authenticateErr != nil {
		return nil, f.authenticateErr
	}
	return &gateway.AuthResult{Student: f.student, Token: f.token}, nil
}

func (f *fakeAuth) ValidateToken(ctx context.Context, token string) (*student.Student, error) {
	if f.validateErr != nil {
		return nil, f.validateErr
	}
	st := f.student
	return &st, nil
}

func (f *fakeAuth) RefreshToken(ctx context.Context, token string) (*gateway.AuthResult, error) {
	f.refreshCalls++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &gateway.AuthResult{Student: f.student, Token: f.token + "-refreshed"}, nil
}

func (f *fakeAuth) RevokeToken(ctx context.Context, token string) {
	f.revokedWith = append(f.revokedWith, token)
}

type memStore struct {
	saved   *Session
	saveErr error
}

func (m *memStore) Save(ctx context.Context, s *Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	clone := *s
	m.saved = &clone
	return nil
}

func (m *memStore) Load(ctx context.Context) (*Session, error) {
	if m.saved == nil {
		return nil, nil
	}
	clone := *m.saved
	return &clone, nil
}

func (m *memStore) Clear(ctx context.Context) error {
	m.saved = nil
	return nil
}

func demoStudent() student.Student {
	return student.Student{ID: "stu-1", Email: "dana@portal.edu", FirstName: "Dana", LastName: "Demo"}
}

func TestLoginEstablishesAndPersists(t *testing.T) {
	auth := &fakeAuth{student: demoStudent(), token: "tok-1"}
	store := &memStore{}
	svc := NewService(auth, store, logger.Nop())

	sess, err := svc.Login(context.Background(), "dana@portal.edu", "secret")
	assert.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, "stu-1", sess.Student.ID)
	assert.NotNil(t, store.saved)
	assert.Equal(t, "tok-1", store.saved.Token)
	assert.Equal(t, "tok-1", svc.Current().Token)
}

func TestLoginFailureLeavesNoSession(t *testing.T) {
	auth := &fakeAuth{authenticateErr: shared.NewError(shared.KindInvalidCredentials, "Invalid email or password")}
	svc := NewService(auth, &memStore{}, logger.Nop())

	sess, err := svc.Login(context.Background(), "dana@portal.edu", "wrong")
	assert.Nil(t, sess)
	assert.True(t, shared.IsKind(err, shared.KindInvalidCredentials))
	assert.Nil(t, svc.Current())
}

func TestLoginSurvivesStoreFailure(t *testing.T) {
	auth := &fakeAuth{student: demoStudent(), token: "tok-1"}
	store := &memStore{saveErr: errors.New("disk full")}
	svc := NewService(auth, store, logger.Nop())

	sess, err := svc.Login(context.Background(), "dana@portal.edu", "secret")
	assert.NoError(t, err)
	assert.NotNil(t, sess)
	assert.NotNil(t, svc.Current())
}

func TestRegisterValidatesLocally(t *testing.T) {
	auth := &fakeAuth{student: demoStudent(), token: "tok-1"}
	svc := NewService(auth, nil, logger.Nop())

	_, err := svc.Register(context.Background(), student.Registration{Email: "dana@portal.edu"})
	assert.True(t, shared.IsKind(err, shared.KindValidation))

	sess, err := svc.Register(context.Background(), student.Registration{
		StudentID: "S1",
		Email:     "dana@portal.edu",
		Password:  "secret",
		FirstName: "Dana",
		LastName:  "Demo",
	})
	assert.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)
}

func TestRestoreWithValidStoredToken(t *testing.T) {
	auth := &fakeAuth{student: demoStudent()}
	store := &memStore{saved: &Session{Token: "tok-stored"}}
	svc := NewService(auth, store, logger.Nop())

	sess, err := svc.Restore(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "tok-stored", sess.Token)
	assert.Equal(t, "stu-1", sess.Student.ID)
}

func TestRestoreDiscardsInvalidToken(t *testing.T) {
	auth := &fakeAuth{validateErr: shared.NewError(shared.KindTokenInvalid, "Invalid or expired token")}
	store := &memStore{saved: &Session{Token: "tok-stale"}}
	svc := NewService(auth, store, logger.Nop())

	sess, err := svc.Restore(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, sess)
	assert.Nil(t, store.saved, "stale session must be cleared from the store")
}

func TestRestoreWithEmptyStore(t *testing.T) {
	svc := NewService(&fakeAuth{}, &memStore{}, logger.Nop())

	sess, err := svc.Restore(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, sess)
}

func TestRestorePropagatesNetworkFailure(t *testing.T) {
	auth := &fakeAuth{validateErr: shared.NewError(shared.KindNetwork, "Request timed out")}
	store := &memStore{saved: &Session{Token: "tok-stored"}}
	svc := NewService(auth, store, logger.Nop())

	_, err := svc.Restore(context.Background())
	assert.True(t, shared.IsKind(err, shared.KindNetwork))
	assert.NotNil(t, store.saved, "a network blip must not destroy the stored session")
}

func TestRefreshWithoutSession(t *testing.T) {
	svc := NewService(&fakeAuth{}, nil, logger.Nop())

	_, err := svc.Refresh(context.Background())
	assert.True(t, shared.IsKind(err, shared.KindTokenExpired))
	assert.Contains(t, err.Error(), "No active session")
}

func TestRefreshReplacesSession(t *testing.T) {
	auth := &fakeAuth{student: demoStudent(), token: "tok-1"}
	store := &memStore{}
	svc := NewService(auth, store, logger.Nop())

	_, err := svc.Login(context.Background(), "dana@portal.edu", "secret")
	assert.NoError(t, err)

	sess, err := svc.Refresh(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "tok-1-refreshed", sess.Token)
	assert.Equal(t, "tok-1-refreshed", store.saved.Token)
}

func TestRefreshIfNeededSkipsFreshSession(t *testing.T) {
	auth := &fakeAuth{student: demoStudent(), token: "tok-1"}
	svc := NewService(auth, nil, logger.Nop())
	svc.Login(context.Background(), "dana@portal.edu", "secret")

	// Opaque token: zero expiry never triggers a refresh.
	sess, err := svc.RefreshIfNeeded(context.Background(), time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, 0, auth.refreshCalls)
}

func TestExpiresWithin(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	soon := Session{ExpiresAt: now.Add(2 * time.Minute)}
	assert.True(t, soon.ExpiresWithin(5*time.Minute, now))
	assert.False(t, soon.ExpiresWithin(time.Minute, now))

	opaque := Session{}
	assert.False(t, opaque.ExpiresWithin(24*time.Hour, now))
}

func TestLogout(t *testing.T) {
	auth := &fakeAuth{student: demoStudent(), token: "tok-1"}
	store := &memStore{}
	svc := NewService(auth, store, logger.Nop())
	svc.Login(context.Background(), "dana@portal.edu", "secret")

	svc.Logout(context.Background())
	assert.Equal(t, []string{"tok-1"}, auth.revokedWith)
	assert.Nil(t, store.saved)
	assert.Nil(t, svc.Current())
}

func TestLogoutWhileLoggedOut(t *testing.T) {
	auth := &fakeAuth{}
	svc := NewService(auth, &memStore{}, logger.Nop())

	svc.Logout(context.Background())
	assert.Empty(t, auth.revokedWith)
}

func TestCurrentReturnsCopy(t *testing.T) {
	auth := &fakeAuth{student: demoStudent(), token: "tok-1"}
	svc := NewService(auth, nil, logger.Nop())
	svc.Login(context.Background(), "dana@portal.edu", "secret")

	first := svc.Current()
	first.Token = "tampered"
	assert.Equal(t, "tok-1", svc.Current().Token)
}
