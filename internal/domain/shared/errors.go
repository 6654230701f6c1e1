// Package shared contains common domain types and the error taxonomy
// used across all portal packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Kind identifies the category of a failure. The set of kinds is closed:
// every error that leaves the data-access layer carries exactly one of the
// constants below, never a free-form string.
type Kind string

// Generic kinds. These are the only kinds the transport client may produce.
const (
	KindValidation     Kind = "validation"
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindNotFound       Kind = "not-found"
	KindDuplicate      Kind = "duplicate"
	KindNetwork        Kind = "network"
	KindServer         Kind = "server"
	KindBusinessRule   Kind = "business-rule"
)

// Resource-specific kinds, produced only by gateway re-mapping.
const (
	KindInvalidCredentials   Kind = "invalid-credentials"
	KindUserExists           Kind = "user-exists"
	KindTokenExpired         Kind = "token-expired"
	KindTokenInvalid         Kind = "token-invalid"
	KindRegistrationFailed   Kind = "registration-failed"
	KindGradeNotFound        Kind = "grade-not-found"
	KindCorrectionNotAllowed Kind = "correction-not-allowed"
	KindMaxCorrections       Kind = "max-corrections-reached"
	KindDuplicateCorrection  Kind = "duplicate-correction"
	KindInvalidGradeData     Kind = "invalid-grade-data"
)

// IsValid reports whether k is a member of the closed enumeration.
func (k Kind) IsValid() bool {
	switch k {
	case KindValidation, KindAuthentication, KindAuthorization, KindNotFound,
		KindDuplicate, KindNetwork, KindServer, KindBusinessRule,
		KindInvalidCredentials, KindUserExists, KindTokenExpired,
		KindTokenInvalid, KindRegistrationFailed, KindGradeNotFound,
		KindCorrectionNotAllowed, KindMaxCorrections, KindDuplicateCorrection,
		KindInvalidGradeData:
		return true
	}
	return false
}

// String returns the wire representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// ParseKind maps a wire code onto a Kind. Unknown codes return false so the
// caller can fall back to a generic classification instead of inventing a
// kind outside the enumeration.
func ParseKind(code string) (Kind, bool) {
	k := Kind(code)
	if k.IsValid() {
		return k, true
	}
	return "", false
}

// Error is the structured failure carried through every layer above the raw
// network call. Instances are never mutated after construction: re-mapping at
// a gateway boundary always allocates a new value.
type Error struct {
	Kind    Kind
	Message string

	// Field optionally names the request field the failure refers to.
	Field string

	// Details carries additional server-provided context, if any.
	Details map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field %s)", e.Kind, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches against another *Error by kind, enabling
// errors.Is(err, &Error{Kind: KindNotFound}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// NewError creates a structured error with the given kind and message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// NewErrorf creates a structured error with a formatted message.
func NewErrorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithField returns a copy of the error pointing at a request field.
func (e *Error) WithField(field string) *Error {
	clone := *e
	clone.Field = field
	return &clone
}

// WithDetails returns a copy of the error carrying server-provided details.
func (e *Error) WithDetails(details map[string]any) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

// AsError extracts the structured error from err, if there is one.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind carried by err, or the empty string when err is not
// a structured error.
func KindOf(err error) Kind {
	if e, ok := AsError(err); ok {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a structured error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsNotFound reports whether err represents a missing resource.
func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}

// RetryableKind reports whether a transport failure of the given kind may be
// retried. Authentication, authorization and validation outcomes are fixed
// 4xx responses: retrying them cannot change the result.
func RetryableKind(k Kind) bool {
	switch k {
	case KindAuthentication, KindAuthorization, KindValidation:
		return false
	}
	return true
}
