package lo

import "errors"

var (
	// ErrInvalidMode is returned for unknown mode strings and for
	// operations the current mode does not permit, before any round trip.
	ErrInvalidMode = errors.New("unsupported access mode")

	// ErrClosed is returned by operations on a closed stream.
	ErrClosed = errors.New("stream is closed")

	// ErrNotReadable is returned for reads on a write-only stream.
	ErrNotReadable = errors.New("stream is not open for reading")

	// ErrNotWritable is returned for writes on a read-only stream.
	ErrNotWritable = errors.New("stream is not open for writing")
)
