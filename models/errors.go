package models

import "errors"

// Error taxonomy shared by all services. Controllers map these onto HTTP
// status codes; everything else is treated as an infrastructure failure
// and surfaces loudly.
var (
	// ErrValidation rejects malformed input before any mutation.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound covers both "does not exist" and "belongs to another
	// tenant" - callers cannot tell the two apart.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition rejects a state machine violation. The entity
	// is left unchanged.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrConflict signals a concurrent modification or a duplicate
	// operation against a dispatched financial document. Callers should
	// re-read and retry.
	ErrConflict = errors.New("conflict")
)
