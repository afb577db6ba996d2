package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and ResolveDir so callers
// can use errors.Is() for programmatic handling.
var (
	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrConflictingSummaryFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingSummaryFormats = errors.New("conflicting summary formats: --json and --markdown cannot be used together")

	// ErrEmptyReportFile is returned when the invalid-object report path is empty.
	ErrEmptyReportFile = errors.New("invalid report file: path must not be empty")

	// ErrInvalidExtension is returned when the map extension does not
	// start with a dot.
	ErrInvalidExtension = errors.New("invalid map extension: must start with '.'")

	// ErrDirNotFound is returned when no candidate for a directory could be
	// resolved to an existing directory.
	ErrDirNotFound = errors.New("directory not found")
)
