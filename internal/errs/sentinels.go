// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (e.g., duplicate connection).
	ErrAlreadyExists = errors.New("already exists")

	// ErrUnauthorized indicates failed authentication/authorization.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates temporary lockout due to rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrBusy indicates a connect pipeline is already in flight for the session.
	ErrBusy = errors.New("connect in flight")

	// ErrExhausted indicates the candidate pool has been fully consumed.
	ErrExhausted = errors.New("no more candidates")

	// ErrInvalidEnum indicates an unknown enum value in a profile update.
	ErrInvalidEnum = errors.New("invalid enum value")
)
