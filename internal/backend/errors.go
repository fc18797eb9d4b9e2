package backend

import (
	"errors"
	"net/http"
)

// Fallback messages for when the backend doesn't give us anything usable.
const (
	genericAuthMessage       = "could not sign you in, please try again"
	genericValidationMessage = "the submitted data was rejected"
	genericNetworkMessage    = "could not reach the server"
)

// AuthenticationError covers rejected credentials and expired or invalid
// sessions. Message is the backend's error field verbatim when one was given.
type AuthenticationError struct {
	Message    string
	StatusCode int
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// ValidationError is a rejected submission (missing field, password too
// short, and so on). The caller keeps its form state and can resubmit.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NetworkError means the request never got a response from the backend.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return genericNetworkMessage + ": " + e.Err.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsUnauthorized reports whether err is an authentication failure with a 401
// status. The session manager uses this to tell "your token is dead" apart
// from other refresh failures.
func IsUnauthorized(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr) && authErr.StatusCode == http.StatusUnauthorized
}
