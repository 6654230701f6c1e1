package gateway

import (
	"context"
	"net/http"

	"github.com/portal-hub/student-portal/internal/domain/shared"
	"github.com/portal-hub/student-portal/internal/domain/student"
	"github.com/portal-hub/student-portal/internal/infrastructure/transport"
	"github.com/portal-hub/student-portal/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// AUTH GATEWAY
// ══════════════════════════════════════════════════════════════════════════════

// AuthGateway translates session operations into portal API calls and
// re-maps generic transport failures into authentication-specific kinds.
type AuthGateway struct {
	client *transport.Client
	logger *logger.Logger
}

// NewAuthGateway creates an auth gateway over the given transport client.
func NewAuthGateway(client *transport.Client, log *logger.Logger) *AuthGateway {
	if log == nil {
		log = logger.Default()
	}
	return &AuthGateway{
		client: client,
		logger: log.With(logger.String("component", "auth_gateway")),
	}
}

// AuthResult is a successful authentication outcome.
type AuthResult struct {
	Student student.Student
	Token   string
}

// authResponse is the payload shape of the login/register/refresh endpoints.
// Pointers distinguish a missing field from a zero value.
type authResponse struct {
	Student *student.Student `json:"student"`
	Token   string           `json:"token"`
}

type meResponse struct {
	Student *student.Student `json:"student"`
}

// Authenticate logs a student in. The email is normalized (trimmed,
// lowercased) before it is transmitted. On success the token is registered
// with the transport client for subsequent calls.
func (g *AuthGateway) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	payload := map[string]string{
		"email":    student.NormalizeEmail(email),
		"password": password,
	}

	var resp authResponse
	err := g.client.Do(ctx, http.MethodPost, "/api/auth/login", payload, &resp)
	if err != nil {
		if e, ok := shared.AsError(err); ok {
			if e.Kind == shared.KindValidation {
				return nil, shared.NewError(shared.KindInvalidCredentials, "Invalid email or password")
			}
			return nil, err
		}
		return nil, shared.NewError(shared.KindAuthentication, "Authentication failed. Please try again.")
	}

	if resp.Student == nil || resp.Token == "" {
		return nil, shared.NewError(shared.KindAuthentication, "Invalid response from authentication server")
	}

	g.client.SetAuthToken(resp.Token)
	return &AuthResult{Student: *resp.Student, Token: resp.Token}, nil
}

// RegisterStudent creates a new account. Identifying fields are trimmed and
// the email normalized before transmission.
func (g *AuthGateway) RegisterStudent(ctx context.Context, reg student.Registration) (*AuthResult, error) {
	reg = reg.Normalize()

	var resp authResponse
	err := g.client.Do(ctx, http.MethodPost, "/api/auth/register", reg, &resp)
	if err != nil {
		if e, ok := shared.AsError(err); ok {
			switch e.Kind {
			case shared.KindDuplicate:
				return nil, shared.NewError(shared.KindUserExists, "A user with this email or student ID already exists")
			case shared.KindValidation:
				// Keep the server's message: it names the offending field.
				return nil, shared.NewError(shared.KindRegistrationFailed, e.Message).WithField(e.Field)
			}
			return nil, err
		}
		return nil, shared.NewError(shared.KindRegistrationFailed, "Registration failed. Please try again.")
	}

	if resp.Student == nil || resp.Token == "" {
		return nil, shared.NewError(shared.KindRegistrationFailed, "Invalid response from registration server")
	}

	g.client.SetAuthToken(resp.Token)
	return &AuthResult{Student: *resp.Student, Token: resp.Token}, nil
}

// ValidateToken checks a persisted token against the current-user endpoint
// and returns the authenticated student.
func (g *AuthGateway) ValidateToken(ctx context.Context, token string) (*student.Student, error) {
	g.client.SetAuthToken(token)

	var resp meResponse
	err := g.client.Do(ctx, http.MethodGet, "/api/auth/me", nil, &resp)
	if err != nil {
		if e, ok := shared.AsError(err); ok {
			if e.Kind == shared.KindAuthentication {
				return nil, shared.NewError(shared.KindTokenInvalid, "Invalid or expired token")
			}
			return nil, err
		}
		return nil, shared.NewError(shared.KindTokenInvalid, "Token validation failed")
	}

	if resp.Student == nil {
		return nil, shared.NewError(shared.KindTokenInvalid, "Invalid token response")
	}
	return resp.Student, nil
}

// RefreshToken exchanges a token for a fresh one and updates the transport
// client's token on success.
func (g *AuthGateway) RefreshToken(ctx context.Context, token string) (*AuthResult, error) {
	payload := map[string]string{"token": token}

	var resp authResponse
	err := g.client.Do(ctx, http.MethodPost, "/api/auth/refresh", payload, &resp)
	if err != nil {
		if e, ok := shared.AsError(err); ok {
			if e.Kind == shared.KindAuthentication || e.Kind == shared.KindAuthorization {
				return nil, shared.NewError(shared.KindTokenExpired, "Token has expired. Please log in again.")
			}
			return nil, err
		}
		return nil, shared.NewError(shared.KindTokenExpired, "Token refresh failed. Please log in again.")
	}

	if resp.Student == nil || resp.Token == "" {
		return nil, shared.NewError(shared.KindTokenExpired, "Invalid refresh response")
	}

	g.client.SetAuthToken(resp.Token)
	return &AuthResult{Student: *resp.Student, Token: resp.Token}, nil
}

// RevokeToken logs the session out server-side and unconditionally clears
// the transport client's token. It never fails: logout must always succeed
// from the caller's perspective, so any server or network failure is logged
// and swallowed.
func (g *AuthGateway) RevokeToken(ctx context.Context, token string) {
	defer g.client.RemoveAuthToken()

	g.client.SetAuthToken(token)
	if err := g.client.Do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		g.logger.Warn("logout request failed", logger.Err(err))
	}
}
