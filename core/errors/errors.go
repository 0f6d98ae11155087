// Package errors provides the error types shared by the export decoders.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrInvalidHeader indicates a wrong magic tag or an impossible header field
	ErrInvalidHeader = errors.New("invalid header")
	// ErrTooSmall indicates a buffer shorter than the format's minimum header
	ErrTooSmall = errors.New("file too small")
	// ErrMissing indicates a required table or section is absent
	ErrMissing = errors.New("missing required element")
	// ErrTruncated indicates a field or record runs past the end of the buffer
	ErrTruncated = errors.New("truncated")
	// ErrUnsupported indicates an unsupported file kind or format variant
	ErrUnsupported = errors.New("unsupported")
)

// StructuralError is a fatal decode failure: the file cannot be traversed at all.
type StructuralError struct {
	Format  string // Format being decoded (e.g., "export database", "analysis container")
	Offset  int    // Byte offset of the offending field, -1 if not applicable
	Message string // Human-readable error message
	Err     error  // Underlying sentinel
}

func (e *StructuralError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: %s (at byte %d)", e.Format, e.Message, e.Offset)
	}
	return fmt.Sprintf("%s: %s", e.Format, e.Message)
}

func (e *StructuralError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidHeader
}

// ParseError represents a failed sub-decode that the caller may degrade from
type ParseError struct {
	Format  string // Encoding being parsed (e.g., "UTF-16BE")
	Offset  int    // Byte offset within the decoded range
	Message string // Error details
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s at byte %d: %s", e.Format, e.Offset, e.Message)
}

func (e *ParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidHeader
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "stat", "decompress")
	Path      string // File path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// UnsupportedError represents an unsupported file kind or variant
type UnsupportedError struct {
	Feature string // Feature or format that is unsupported
	Reason  string // Why it's not supported
	Err     error  // Underlying error, if any
}

func (e *UnsupportedError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported %s: %s", e.Feature, e.Reason)
	}
	return fmt.Sprintf("unsupported %s", e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrUnsupported
}

// Helper functions for creating common errors

// NewStructural creates a StructuralError wrapping sentinel.
func NewStructural(format string, offset int, sentinel error, message string) *StructuralError {
	return &StructuralError{
		Format:  format,
		Offset:  offset,
		Message: message,
		Err:     sentinel,
	}
}

// NewParse creates a ParseError
func NewParse(format string, offset int, message string) *ParseError {
	return &ParseError{
		Format:  format,
		Offset:  offset,
		Message: message,
	}
}

// NewIO creates an IOError
func NewIO(operation, path string, err error) *IOError {
	return &IOError{
		Operation: operation,
		Path:      path,
		Err:       err,
	}
}

// NewUnsupported creates an UnsupportedError
func NewUnsupported(feature, reason string) *UnsupportedError {
	return &UnsupportedError{
		Feature: feature,
		Reason:  reason,
	}
}

// Wrap adds context to an error. If err is nil, returns nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf adds formatted context to an error. If err is nil, returns nil.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// Is wraps errors.Is for convenience
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
