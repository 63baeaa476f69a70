package mmap

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when operating on a closed mapping.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned when the requested mapping size is not positive.
	ErrInvalidSize = errors.New("mmap: mapping size must be positive")
	// ErrOutOfBounds is returned when a byte range lies outside the mapping.
	ErrOutOfBounds = errors.New("mmap: range is outside the mapping")
)

// ErrUnsafeFlagNeeded indicates that an operation requires an unsafe
// flag the caller did not grant at creation time. The operation is
// fully recoverable by re-creating the mapping with the flag set.
type ErrUnsafeFlagNeeded struct {
	Flag UnsafeFlags
}

func (e *ErrUnsafeFlagNeeded) Error() string {
	return fmt.Sprintf("mmap: unsafe flag %s must be set", e.Flag)
}
