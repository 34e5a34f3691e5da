package dispatcher

import "errors"

// Dispatcher errors.
var (
	// ErrNoHandler indicates no handler claimed a cell when one was
	// required.
	ErrNoHandler = errors.New("dispatcher: no handler for cell")

	// ErrPanic indicates a handler panicked during execution.
	ErrPanic = errors.New("dispatcher: handler panic")
)
