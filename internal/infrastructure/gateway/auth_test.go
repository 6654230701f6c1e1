package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/portal-hub/student-portal/internal/domain/shared"
	"github.com/portal-hub/student-portal/internal/domain/student"
	"github.com/portal-hub/student-portal/internal/infrastructure/transport"
	"github.com/portal-hub/student-portal/pkg/logger"
)

func newAuthGateway(t *testing.T, handler http.HandlerFunc) (*AuthGateway, *transport.Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := transport.New(transport.Config{BaseURL: srv.URL, Logger: logger.Nop()})
	return NewAuthGateway(client, logger.Nop()), client
}

func authSuccessHandler(capture *map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			json.NewDecoder(r.Body).Decode(capture)
		}
		w.Write([]byte(`{"success":true,"data":{
			"student":{"id":"stu-1","studentId":"S1","email":"dana@portal.edu","firstName":"Dana","lastName":"Demo"},
			"token":"tok-1"}}`))
	}
}

func failWith(status int, code, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"error":   map[string]string{"code": code, "message": message},
		})
	}
}

func TestAuthenticateNormalizesEmail(t *testing.T) {
	var sent map[string]string
	g, client := newAuthGateway(t, authSuccessHandler(&sent))

	res, err := g.Authenticate(context.Background(), "  Dana@Portal.EDU ", "secret")
	assert.NoError(t, err)
	assert.Equal(t, "dana@portal.edu", sent["email"])
	assert.Equal(t, "secret", sent["password"])
	assert.Equal(t, "tok-1", res.Token)
	assert.Equal(t, "Dana Demo", res.Student.FullName())
	assert.Equal(t, "tok-1", client.AuthToken())
}

func TestAuthenticateBadCredentials(t *testing.T) {
	g, client := newAuthGateway(t, failWith(http.StatusBadRequest, "validation", "Invalid email or password"))

	res, err := g.Authenticate(context.Background(), "dana@portal.edu", "wrong")
	assert.Nil(t, res)
	assert.True(t, shared.IsKind(err, shared.KindInvalidCredentials))
	assert.Contains(t, err.Error(), "Invalid email or password")
	assert.Empty(t, client.AuthToken())
}

func TestAuthenticateOtherFailuresPassThrough(t *testing.T) {
	g, _ := newAuthGateway(t, failWith(http.StatusInternalServerError, "server", "boom"))

	_, err := g.Authenticate(context.Background(), "dana@portal.edu", "secret")
	assert.True(t, shared.IsKind(err, shared.KindServer))
}

func TestAuthenticateRejectsPartialResponse(t *testing.T) {
	g, _ := newAuthGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"token":"tok-1"}}`))
	})

	_, err := g.Authenticate(context.Background(), "dana@portal.edu", "secret")
	assert.True(t, shared.IsKind(err, shared.KindAuthentication))
	assert.Contains(t, err.Error(), "Invalid response from authentication server")
}

func TestRegisterStudent(t *testing.T) {
	var sent map[string]string
	g, client := newAuthGateway(t, authSuccessHandler(&sent))

	res, err := g.RegisterStudent(context.Background(), student.Registration{
		StudentID: " S1 ",
		Email:     " Dana@Portal.EDU ",
		Password:  "secret",
		FirstName: " Dana ",
		LastName:  " Demo ",
	})
	assert.NoError(t, err)
	assert.Equal(t, "S1", sent["studentId"])
	assert.Equal(t, "dana@portal.edu", sent["email"])
	assert.Equal(t, "Dana", sent["firstName"])
	assert.Equal(t, "tok-1", client.AuthToken())
	assert.Equal(t, "stu-1", res.Student.ID)
}

func TestRegisterDuplicate(t *testing.T) {
	g, _ := newAuthGateway(t, failWith(http.StatusConflict, "duplicate", "email taken"))

	_, err := g.RegisterStudent(context.Background(), student.Registration{Email: "dana@portal.edu"})
	assert.True(t, shared.IsKind(err, shared.KindUserExists))
	assert.Contains(t, err.Error(), "A user with this email or student ID already exists")
}

func TestRegisterValidationKeepsServerMessage(t *testing.T) {
	g, _ := newAuthGateway(t, failWith(http.StatusBadRequest, "validation", "password too short"))

	_, err := g.RegisterStudent(context.Background(), student.Registration{Email: "dana@portal.edu"})
	assert.True(t, shared.IsKind(err, shared.KindRegistrationFailed))
	assert.Contains(t, err.Error(), "password too short")
}

func TestValidateToken(t *testing.T) {
	var auth string
	g, _ := newAuthGateway(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true,"data":{"student":{"id":"stu-1","email":"dana@portal.edu"}}}`))
	})

	st, err := g.ValidateToken(context.Background(), "tok-1")
	assert.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", auth)
	assert.Equal(t, "stu-1", st.ID)
}

func TestValidateTokenInvalid(t *testing.T) {
	g, _ := newAuthGateway(t, failWith(http.StatusUnauthorized, "authentication", "expired"))

	st, err := g.ValidateToken(context.Background(), "stale")
	assert.Nil(t, st)
	assert.True(t, shared.IsKind(err, shared.KindTokenInvalid))
	assert.Contains(t, err.Error(), "Invalid or expired token")
}

func TestRefreshToken(t *testing.T) {
	var sent map[string]string
	g, client := newAuthGateway(t, authSuccessHandler(&sent))

	res, err := g.RefreshToken(context.Background(), "tok-old")
	assert.NoError(t, err)
	assert.Equal(t, "tok-old", sent["token"])
	assert.Equal(t, "tok-1", res.Token)
	assert.Equal(t, "tok-1", client.AuthToken())
}

func TestRefreshTokenExpired(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		g, _ := newAuthGateway(t, failWith(code, "", ""))

		_, err := g.RefreshToken(context.Background(), "tok-old")
		assert.True(t, shared.IsKind(err, shared.KindTokenExpired), "status %d", code)
		assert.Contains(t, err.Error(), "Token has expired. Please log in again.")
	}
}

func TestRevokeTokenAlwaysClearsToken(t *testing.T) {
	g, client := newAuthGateway(t, failWith(http.StatusInternalServerError, "server", "boom"))
	client.SetAuthToken("tok-1")

	g.RevokeToken(context.Background(), "tok-1")
	assert.Empty(t, client.AuthToken())
}

func TestRevokeTokenSendsLogout(t *testing.T) {
	var path, auth string
	g, client := newAuthGateway(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true}`))
	})

	g.RevokeToken(context.Background(), "tok-1")
	assert.Equal(t, "/api/auth/logout", path)
	assert.Equal(t, "Bearer tok-1", auth)
	assert.Empty(t, client.AuthToken())
}
