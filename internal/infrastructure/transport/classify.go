package transport

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/portal-hub/student-portal/internal/domain/shared"
)

// envelope is the optional {success, data, error} wrapper some endpoints use
// around their payload. Success is a pointer so its presence distinguishes an
// enveloped response from a raw one.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *envelopeError  `json:"error"`
}

type envelopeError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// toError converts a server-provided error block into a structured error.
// Codes outside the closed taxonomy fall back to the server kind rather than
// leaking a free-form string.
func (e *envelopeError) toError() *shared.Error {
	kind, ok := shared.ParseKind(e.Code)
	if !ok {
		kind = shared.KindServer
	}
	message := e.Message
	if message == "" {
		message = "Request failed"
	}
	err := shared.NewError(kind, message)
	if len(e.Details) > 0 {
		err = err.WithDetails(e.Details)
	}
	return err
}

// classifyStatus maps a non-2xx response onto the error taxonomy. The kind is
// decided by the status code alone, before any envelope inspection; the body
// only contributes a better message and details when it carries one.
func classifyStatus(code int, status string, body []byte) *shared.Error {
	var kind shared.Kind
	var message string

	switch {
	case code == http.StatusBadRequest:
		kind, message = shared.KindValidation, "Invalid request data"
	case code == http.StatusUnauthorized:
		kind, message = shared.KindAuthentication, "Authentication required"
	case code == http.StatusForbidden:
		kind, message = shared.KindAuthorization, "Access denied"
	case code == http.StatusNotFound:
		kind, message = shared.KindNotFound, "Resource not found"
	case code == http.StatusConflict:
		kind, message = shared.KindDuplicate, "Resource already exists"
	case code == http.StatusUnprocessableEntity:
		kind, message = shared.KindBusinessRule, "Business rule violation"
	case code == http.StatusTooManyRequests:
		// Reuses the server kind on purpose: a distinct rate-limit kind
		// would change retry semantics for every caller.
		kind, message = shared.KindServer, "Too many requests. Please try again later."
	case code >= 500:
		kind, message = shared.KindServer, "Server error. Please try again later."
	default:
		kind, message = shared.KindNetwork, fmt.Sprintf("Request failed with status %d %s", code, http.StatusText(code))
	}

	err := shared.NewError(kind, message)

	var env envelope
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		if env.Error.Message != "" {
			err.Message = env.Error.Message
		}
		if len(env.Error.Details) > 0 {
			err = err.WithDetails(env.Error.Details)
		}
	}
	return err
}

// decodeSuccess handles a 2xx response body. An empty body is treated as an
// empty object; a body that is not JSON fails with the server kind; an
// enveloped body is unwrapped (or converted into its embedded error); and
// anything else passes through into result as-is.
func decodeSuccess(body []byte, result any) error {
	if len(body) == 0 {
		body = []byte("{}")
	}

	if !json.Valid(body) {
		return shared.NewError(shared.KindServer, "Invalid response format from server")
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Success != nil {
		if !*env.Success {
			if env.Error != nil {
				return env.Error.toError()
			}
			return shared.NewError(shared.KindServer, "Request failed")
		}
		if result == nil || len(env.Data) == 0 {
			return nil
		}
		if err := json.Unmarshal(env.Data, result); err != nil {
			return shared.NewError(shared.KindServer, "Invalid response format from server")
		}
		return nil
	}

	// Raw passthrough for endpoints that skip the envelope.
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(body, result); err != nil {
		return shared.NewError(shared.KindServer, "Invalid response format from server")
	}
	return nil
}
