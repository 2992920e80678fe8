package api

import (
	"errors"
	"fmt"
)

// Classified transport errors. The client never performs navigation itself;
// it returns these and the top-level UI decides where to go.
var (
	// ErrSessionExpired marks a 401 from any endpoint except login. The
	// client has already cleared the local session when this is returned.
	ErrSessionExpired = errors.New("session expired")

	// ErrResourceGone marks a 404 on a read. Mutating requests propagate
	// 404 as a plain APIError instead.
	ErrResourceGone = errors.New("resource gone")
)

// APIError is a non-2xx response carrying the server's message when the
// server provided one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.Status)
}

// RequestError is a client-side validation failure raised before any request
// is sent: a required field missing or an identifier that is not numeric.
type RequestError struct {
	Field  string
	Reason string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// Message extracts a human-readable message from a service error, falling
// back to a generic one. Views use this for inline error display.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Error()
	}
	return fallback
}
