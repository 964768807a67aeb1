package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials covers bad login input and rejected logins.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionExpired is returned by gateway calls that hit a 401. The
	// session is force-expired centrally before the call site sees this.
	ErrSessionExpired = errors.New("session expired")
	// ErrForbidden is a server-side 403 (role rejected by the backend).
	ErrForbidden = errors.New("access forbidden")
	// ErrNotFound is a server-side 404.
	ErrNotFound = errors.New("not found")
	// ErrTransport covers network failures and malformed responses.
	ErrTransport = errors.New("transport failure")
	// ErrChannelClosed is returned when subscribing on a disposed channel.
	ErrChannelClosed = errors.New("event channel closed")
)

// APIError carries the backend's error envelope for non-2xx responses.
// The backend returns {"detail": "<human readable>"}.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: %s (status %d)", e.Detail, e.Status)
}

// Unwrap maps well-known statuses onto sentinel errors so call sites can use
// errors.Is without inspecting status codes.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case 401:
		return ErrSessionExpired
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	}
	return nil
}
