package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent compilation failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyTheme indicates a card start with a blank theme.
	// The only user-facing hard parse error.
	ErrEmptyTheme = errors.New("card theme is empty")

	// ErrUnsupportedFormat indicates a source file with an extension
	// the compiler does not handle.
	ErrUnsupportedFormat = errors.New("unsupported source format")

	// ErrRendererUnavailable indicates no renderer is configured.
	ErrRendererUnavailable = errors.New("renderer unavailable")
)

// ParseError is a hard parse failure carrying the offending source
// line. It wraps a sentinel so callers can test with errors.Is.
type ParseError struct {
	Line int
	Err  error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Unwrap exposes the wrapped sentinel.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError builds a ParseError for a source line.
func NewParseError(line int, err error) *ParseError {
	return &ParseError{Line: line, Err: err}
}
