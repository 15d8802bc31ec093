package ministl

import "errors"

var (
	// ErrOutOfMemory indicates the underlying system allocation could not
	// satisfy a request. It is always propagated to the caller, never retried.
	ErrOutOfMemory = errors.New("ministl: out of memory")

	// ErrCapacityExceeded indicates a requested element count would overflow
	// the maximum representable size for the element type. It is checked
	// before any allocation attempt.
	ErrCapacityExceeded = errors.New("ministl: element count exceeds max size")

	// ErrOutOfRange indicates a bounds-checked access with an index outside
	// [0, len).
	ErrOutOfRange = errors.New("ministl: index out of range")

	// ErrEmpty indicates first/last-element access on an empty container.
	ErrEmpty = errors.New("ministl: container is empty")
)
