package entity

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// Conversation errors
	ErrEmptyInput      = errors.New("input is empty")
	ErrRequestInFlight = errors.New("a request is already in flight")

	// Validation errors
	ErrInvalidDocument  = errors.New("invalid document")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrMissingField     = errors.New("required field is missing")

	// Credential errors
	ErrNoCredential = errors.New("no admin credential stored")
)

const DefaultErrorText = "Failed to get response"

type TransportErrorKind string

const (
	// KindNetwork covers unreachable hosts and client-side timeouts alike.
	KindNetwork   TransportErrorKind = "network"
	KindStatus    TransportErrorKind = "status"
	KindMalformed TransportErrorKind = "malformed"
)

// TransportError is the only error the API client surfaces. Detail holds
// the human-readable message the backend put in its error body, if any.
type TransportError struct {
	Kind       TransportErrorKind
	StatusCode int
	Detail     string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Kind == KindStatus && e.Detail != "":
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
	case e.Kind == KindStatus:
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s error", e.Kind)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether the backend rejected the admin credential.
func (e *TransportError) IsUnauthorized() bool {
	return e.Kind == KindStatus && e.StatusCode == 401
}

// RenderError turns a failed turn into the text shown in the transcript:
// the backend detail when present, else the error message, else a fixed default.
func RenderError(err error) string {
	var transportErr *TransportError
	switch {
	case errors.As(err, &transportErr) && transportErr.Detail != "":
		return "Error: " + transportErr.Detail
	case err != nil && err.Error() != "":
		return "Error: " + err.Error()
	default:
		return "Error: " + DefaultErrorText
	}
}
