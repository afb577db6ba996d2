package patch

import "errors"

var (
	// ErrContentChanged is returned when a target byte no longer holds the
	// value seen when the file was parsed.
	ErrContentChanged = errors.New("file content changed since it was read")

	// ErrOutOfRange is returned when a change targets bytes past the end of
	// the file.
	ErrOutOfRange = errors.New("change offset out of range")

	// ErrOverlappingChanges is returned when two changes target the same byte.
	ErrOverlappingChanges = errors.New("overlapping changes")
)
