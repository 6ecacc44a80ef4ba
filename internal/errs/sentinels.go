// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Storage sentinels returned by repositories.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a unique constraint violation (username taken).
	ErrAlreadyExists = errors.New("already exists")
)

// Outcome taxonomy returned by the account service. Boundaries map these to
// transport status codes and fixed messages.
var (
	// ErrMissingFields indicates a required input was absent or empty.
	ErrMissingFields = errors.New("missing fields")

	// ErrUsernameTaken indicates registration of an existing username.
	ErrUsernameTaken = errors.New("username already exists")

	// ErrInvalidCredentials covers both an unknown username and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountNotFound indicates a vault update for an unknown username.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInternal hides storage and hashing faults from callers.
	ErrInternal = errors.New("internal error")
)
