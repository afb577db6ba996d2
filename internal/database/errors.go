package database

import "errors"

var (
	// ErrRunNotFound is returned when no recorded run matches an ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrAmbiguousRunID is returned when an ID prefix matches several runs.
	ErrAmbiguousRunID = errors.New("run ID prefix matches more than one run")
)
