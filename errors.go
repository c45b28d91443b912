package hrtf

import "errors"

// Structural failures reported by the format loaders. A load either returns a
// fully validated table or one of these; a partially populated table is never
// exposed.
var (
	// ErrInvalidMagic indicates the data does not begin with a recognized
	// format marker.
	ErrInvalidMagic = errors.New("hrtf: unrecognized format marker")

	// ErrBadHeader indicates a header field outside its permitted range.
	ErrBadHeader = errors.New("hrtf: header field out of range")

	// ErrNotMonotonic indicates elevation offsets or field distances that do
	// not strictly increase.
	ErrNotMonotonic = errors.New("hrtf: non-monotonic sequence")

	// ErrTruncated indicates the data ended before the declared payload.
	ErrTruncated = errors.New("hrtf: unexpected end of data")
)

// Resource failures reported by the registry.
var (
	// ErrNotFound indicates the requested data set is not in the catalog or
	// its file could not be read.
	ErrNotFound = errors.New("hrtf: data set not found")

	// ErrNoResource indicates an embedded-resource locator referencing a
	// resource that is not compiled in.
	ErrNoResource = errors.New("hrtf: embedded resource not available")
)
