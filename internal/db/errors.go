package db

import "errors"

// ErrNotFound is returned (wrapped) when a document or profile lookup
// matches nothing. Callers use errors.Is to distinguish it from I/O
// failures; search flows treat it as an empty result.
var ErrNotFound = errors.New("document not found")

// ErrInvalidEmail is returned when a pre-provision target email fails
// syntactic validation.
var ErrInvalidEmail = errors.New("invalid email address")
