package remote

import "errors"

// Common level service errors.
var (
	// ErrNotFound is returned when a level, cover or archive does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the service rejects the token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the token lacks access.
	ErrForbidden = errors.New("forbidden")
)
