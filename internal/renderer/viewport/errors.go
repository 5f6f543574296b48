package viewport

import (
	"errors"
	"fmt"
)

// Errors returned by viewport operations.
var (
	// ErrIO indicates the sink failed to write or flush.
	ErrIO = errors.New("sink i/o error")

	// ErrRange indicates a position cannot be represented as a viewport
	// coordinate.
	ErrRange = errors.New("coordinate out of range")

	// ErrInvalidSize indicates a non-positive or oversized dimension.
	ErrInvalidSize = errors.New("invalid viewport size")

	// ErrInvalidDirection indicates an unknown cursor direction.
	ErrInvalidDirection = errors.New("invalid direction")
)

// RangeError reports a value that does not fit the coordinate width.
type RangeError struct {
	Axis  string // "column" or "row"
	Value int
	Limit int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s %d exceeds coordinate limit %d", e.Axis, e.Value, e.Limit)
}

// Is matches ErrRange.
func (e *RangeError) Is(target error) bool {
	return target == ErrRange
}

// SinkError wraps a failure returned by a Sink.
type SinkError struct {
	Op  string // Sink method that failed
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("sink %s: %v", e.Op, e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}

// Is matches ErrIO as well as the wrapped error.
func (e *SinkError) Is(target error) bool {
	return target == ErrIO
}
