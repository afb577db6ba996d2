package model

import "errors"

// ErrInvariantViolation is returned when a change record breaks the
// structural guarantees of the category encoding (length 1, digit 0-9).
// It always indicates a corrupted parse and is never silently tolerated.
var ErrInvariantViolation = errors.New("invariant violation")
