package store

import "errors"

// Sentinel errors for every user-correctable failure. Handlers match on
// these to pick the right status code or flash message; anything else
// coming out of a store is a storage failure and must not reach the
// client verbatim.
var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmptyContent       = errors.New("post content cannot be empty")
)
