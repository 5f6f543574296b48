package config

import (
	"errors"
	"fmt"

	"github.com/dshills/lineview/internal/config/loader"
)

// ErrValidationFailed indicates the configuration fails validation.
var ErrValidationFailed = errors.New("validation failed")

// ParseError represents an error while parsing a configuration file.
type ParseError = loader.ParseError

// ValidationError describes a validation failure for a setting.
type ValidationError struct {
	// Path is the setting path that failed validation.
	Path string
	// Message describes the validation error.
	Message string
	// Value is the invalid value.
	Value any
	// Code categorizes the validation error.
	Code ValidationErrorCode
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (value: %v)", e.Path, e.Message, e.Value)
}

// Is implements error matching for ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

// ValidationErrorCode categorizes validation errors.
type ValidationErrorCode uint8

const (
	// ErrCodeInvalidEnum indicates the value is not in the allowed enum.
	ErrCodeInvalidEnum ValidationErrorCode = iota
	// ErrCodeTypeMismatch indicates the value cannot be converted.
	ErrCodeTypeMismatch
	// ErrCodeInvalidBinding indicates a key binding that does not parse or
	// conflicts with another.
	ErrCodeInvalidBinding
)

// String returns a human-readable name for the error code.
func (c ValidationErrorCode) String() string {
	switch c {
	case ErrCodeInvalidEnum:
		return "invalid_enum"
	case ErrCodeTypeMismatch:
		return "type_mismatch"
	case ErrCodeInvalidBinding:
		return "invalid_binding"
	default:
		return "unknown"
	}
}
