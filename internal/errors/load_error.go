// Package errors provides standardized error types for CSV load operations.
// This package defines LoadError for consistent error handling across
// all public APIs, with operation context and error wrapping support.
package errors

import (
	"fmt"
)

// LoadError represents a fatal error raised while loading or converting data.
// Per-field parse failures never produce a LoadError; they degrade to NA.
type LoadError struct {
	Op      string // Operation name (e.g., "ReadCSV", "Int64ToHex", "AddInt64")
	Column  string // Column name if applicable
	Message string // Human-readable error description
	Cause   error  // Underlying error cause
}

// Error implements the error interface
func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	if e.Column != "" {
		return fmt.Sprintf("%s failed on column '%s': %s", e.Op, e.Column, msg)
	}
	return fmt.Sprintf("%s failed: %s", e.Op, msg)
}

// Unwrap returns the underlying cause for error wrapping support
func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is().
// Op is ignored when the target leaves it empty so that sentinels match any operation.
func (e *LoadError) Is(target error) bool {
	t, ok := target.(*LoadError)
	if !ok {
		return false
	}
	if t.Op != "" && t.Op != e.Op {
		return false
	}
	return e.Column == t.Column && e.Message == t.Message
}

// NewInvalidInputError creates an error for invalid operation inputs
func NewInvalidInputError(op, message string) *LoadError {
	return &LoadError{
		Op:      op,
		Message: message,
	}
}

// NewUnsupportedTypeError creates an error for unsupported column types
func NewUnsupportedTypeError(op, typeName string) *LoadError {
	return &LoadError{
		Op:      op,
		Message: fmt.Sprintf("unsupported column type '%s'", typeName),
	}
}

// NewValidationError creates an error for input validation failures
func NewValidationError(op, column, message string) *LoadError {
	return &LoadError{
		Op:      op,
		Column:  column,
		Message: message,
	}
}

// NewIOError creates an error for a file that cannot be opened or read
func NewIOError(op, path string, cause error) *LoadError {
	return &LoadError{
		Op:      op,
		Message: fmt.Sprintf("can't open file %s", path),
		Cause:   cause,
	}
}

// NewInternalError creates an error for internal operation failures
func NewInternalError(op string, cause error) *LoadError {
	return &LoadError{
		Op:      op,
		Message: "internal error occurred",
		Cause:   cause,
	}
}

// Predefined error variables for common cases. They carry no Op so that
// errors.Is matches them regardless of the operation that raised them.
var (
	// ErrMissingFilename indicates a schema without a filename
	ErrMissingFilename = &LoadError{Message: "missing 'filename' in the schema"}

	// ErrMissingColumnTypes indicates a schema without column types
	ErrMissingColumnTypes = &LoadError{Message: "missing 'coltypes' in the schema"}

	// ErrMissingNAStrings indicates a schema without NA strings
	ErrMissingNAStrings = &LoadError{Message: "missing 'na.strings' in the schema"}

	// ErrMismatchedLength indicates length mismatches in vector operations
	ErrMismatchedLength = &LoadError{Message: "lengths don't match"}

	// ErrNegativeBase indicates a negative value rendered in a base other than 10
	ErrNegativeBase = &LoadError{Message: "can't convert a negative number to a non-decimal base"}

	// ErrInvalidBase indicates a numeric base outside [2, 16]
	ErrInvalidBase = &LoadError{Message: "base must be between 2 and 16"}
)

// WithOp returns a copy of a sentinel bound to an operation, keeping errors.Is
// compatibility with the sentinel.
func WithOp(sentinel *LoadError, op string) *LoadError {
	c := *sentinel
	c.Op = op
	return &c
}
