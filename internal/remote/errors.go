package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrUnauthorized is returned when the server rejects the bearer
// credential. It is terminal for the session: the client tears the
// session down before returning it and the call must not be retried.
var ErrUnauthorized = errors.New("session expired or credential rejected")

// APIError is a structured failure returned by the GhostLock API.
// Detail carries the server's human-readable message when one was
// present in the response body.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// NotFound reports whether the failure was a missing-record rejection.
func (e *APIError) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// Conflict reports whether the failure was a referential violation.
func (e *APIError) Conflict() bool { return e.StatusCode == http.StatusConflict }
