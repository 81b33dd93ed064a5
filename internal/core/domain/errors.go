package domain

import "errors"

// Error taxonomy for the workflow core. Every service failure wraps exactly
// one of these sentinels so the HTTP layer can map it to a status code.
var (
	// ErrValidation: malformed or missing input. The caller's fault, never
	// retried automatically.
	ErrValidation = errors.New("validation error")
	// ErrForbidden: role or ownership violation.
	ErrForbidden = errors.New("access forbidden")
	// ErrNotFound: the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a concurrent-write race on the sequence counter or the
	// job version check. Safe to retry once with a fresh read.
	ErrConflict = errors.New("write conflict")
	// ErrUnavailable: a backing store or collaborator is unreachable.
	ErrUnavailable = errors.New("service unavailable")
)

// ErrInvalidTransition marks a (from → to) pair that no edge declares.
var ErrInvalidTransition = errors.New("invalid status transition")

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
