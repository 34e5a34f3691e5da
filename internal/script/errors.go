package script

import "errors"

var (
	// ErrClosed is returned when calling into a handler whose Lua state
	// has been shut down.
	ErrClosed = errors.New("script: handler is closed")

	// ErrMissingFunction is returned when a chunk does not define both
	// probe and execute.
	ErrMissingFunction = errors.New("script: chunk must define probe and execute functions")
)
