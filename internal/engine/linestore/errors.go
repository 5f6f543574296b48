package linestore

import (
	"errors"
	"fmt"
)

// Errors returned when loading a store.
var (
	// ErrIO matches every load failure, including decode failures.
	ErrIO = errors.New("i/o error")

	// ErrDecode indicates the content is not valid UTF-8.
	ErrDecode = errors.New("invalid utf-8")
)

// IOError describes a failure to load a store from a file.
type IOError struct {
	Op   string // "read" or "decode"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is reports ErrIO for every IOError so callers can match the error kind
// without caring about the underlying cause.
func (e *IOError) Is(target error) bool {
	return e != nil && target == ErrIO
}
