package proto

import "errors"

var (
	// ErrListNotFound is returned when items/items.lst does not exist.
	ErrListNotFound = errors.New("prototype list not found")

	// ErrMalformedProto is returned when a .fopro file cannot be parsed or
	// a [Proto] section lacks a required key.
	ErrMalformedProto = errors.New("malformed prototype")

	// ErrDuplicateProto is returned when two sections declare the same ProtoId.
	ErrDuplicateProto = errors.New("duplicate prototype id")
)
