package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	k, ok := ParseKind("not-found")
	assert.True(t, ok)
	assert.Equal(t, KindNotFound, k)

	k, ok = ParseKind("duplicate-correction")
	assert.True(t, ok)
	assert.Equal(t, KindDuplicateCorrection, k)

	_, ok = ParseKind("something-the-server-invented")
	assert.False(t, ok)

	_, ok = ParseKind("")
	assert.False(t, ok)
}

func TestErrorString(t *testing.T) {
	err := NewError(KindValidation, "email is required")
	assert.Equal(t, "validation: email is required", err.Error())

	withField := err.WithField("email")
	assert.Equal(t, "validation: email is required (field email)", withField.Error())
	assert.Empty(t, err.Field, "WithField must not mutate the original")
}

func TestErrorIsMatchesByKind(t *testing.T) {
	err := NewError(KindNotFound, "grade not found")

	assert.True(t, errors.Is(err, &Error{Kind: KindNotFound}))
	assert.False(t, errors.Is(err, &Error{Kind: KindServer}))
}

func TestErrorSurvivesWrapping(t *testing.T) {
	inner := NewError(KindTokenExpired, "token has expired")
	wrapped := fmt.Errorf("refresh session: %w", inner)

	got, ok := AsError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindTokenExpired, got.Kind)
	assert.True(t, IsKind(wrapped, KindTokenExpired))
}

func TestKindOfUnstructured(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestWithDetailsClones(t *testing.T) {
	base := NewError(KindBusinessRule, "max corrections reached")
	detailed := base.WithDetails(map[string]any{"attempts": 3})

	assert.Nil(t, base.Details)
	assert.Equal(t, 3, detailed.Details["attempts"])
}

func TestRetryableKind(t *testing.T) {
	assert.False(t, RetryableKind(KindAuthentication))
	assert.False(t, RetryableKind(KindAuthorization))
	assert.False(t, RetryableKind(KindValidation))

	assert.True(t, RetryableKind(KindServer))
	assert.True(t, RetryableKind(KindNetwork))
	assert.True(t, RetryableKind(KindNotFound))
	assert.True(t, RetryableKind(KindBusinessRule))
}
