package fomap

import "errors"

var (
	// ErrMalformedMap is returned when the object list violates the grammar
	// in a way the parser cannot step over (field outside an object, missing
	// or invalid ProtoId).
	ErrMalformedMap = errors.New("malformed map")

	// ErrTrailingData is returned by ParseStrict when the parser stops
	// before the end of the input.
	ErrTrailingData = errors.New("unparsed trailing data")
)
