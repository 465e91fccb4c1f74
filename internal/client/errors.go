// ABOUTME: Structured error types surfaced by the request pipeline
// ABOUTME: Callers branch on Status and Code, never on transport errors

package client

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes the pipeline reacts to. auth.token_expired and
// auth.invalid_token are the only 401 reasons that qualify for a refresh.
const (
	CodeNetworkError = "network_error"
	CodeTokenExpired = "auth.token_expired"
	CodeInvalidToken = "auth.invalid_token"
)

// APIError is the structured error payload echoed by the backend.
type APIError struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Details json.RawMessage `json:"details,omitempty"`
}

// Error is the only error type the pipeline returns for a failed request.
// Status 0 is reserved for transport failures with no HTTP response.
type Error struct {
	Status    int
	API       *APIError
	RequestID string
	Raw       json.RawMessage
	cause     error
}

func (e *Error) Error() string {
	switch {
	case e.Status == 0 && e.cause != nil:
		return fmt.Sprintf("network error: %v", e.cause)
	case e.Status == 0:
		return "network error"
	case e.API != nil && e.API.Message != "":
		return fmt.Sprintf("api error %d %s: %s", e.Status, e.API.Code, e.API.Message)
	case e.API != nil:
		return fmt.Sprintf("api error %d %s", e.Status, e.API.Code)
	default:
		return fmt.Sprintf("api error %d %s", e.Status, http.StatusText(e.Status))
	}
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Code returns the backend error code, or "" when none was supplied.
func (e *Error) Code() string {
	if e.API == nil {
		return ""
	}
	return e.API.Code
}

// IsNetwork reports whether the transport never produced a response.
func (e *Error) IsNetwork() bool {
	return e.Status == 0
}

func networkError(cause error) *Error {
	return &Error{
		Status: 0,
		API:    &APIError{Code: CodeNetworkError, Message: "Network error"},
		cause:  cause,
	}
}

// shouldAttemptRefresh decides whether a failure qualifies for the
// refresh-and-retry protocol. Any other 401 (e.g. bad login credentials)
// must be surfaced untouched.
func shouldAttemptRefresh(e *Error) bool {
	if e.Status != http.StatusUnauthorized {
		return false
	}
	code := e.Code()
	return code == CodeTokenExpired || code == CodeInvalidToken
}
