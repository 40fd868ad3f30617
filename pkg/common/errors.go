package common

import (
	"errors"
	"fmt"
)

// Error kinds. Every typed error below matches exactly one of these
// through errors.Is.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrParse            = errors.New("parse error")
	ErrMalformedArchive = errors.New("malformed archive")
	ErrIO               = errors.New("i/o failure")
)

// ValidationError reports a configuration value that cannot be encoded.
type ValidationError struct {
	Field    string
	Expected string
	Actual   string
}

// NewValidationError builds a ValidationError, formatting expected and
// actual with %v.
func NewValidationError(field string, expected, actual interface{}) *ValidationError {
	return &ValidationError{
		Field:    field,
		Expected: fmt.Sprint(expected),
		Actual:   fmt.Sprint(actual),
	}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an explicitly requested file missing from the source.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file %q not found in source directory", e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ParseError reports an icon.sys record or config document that cannot be decoded.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Reason
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// MalformedArchiveError reports an inconsistent PSU byte stream.
type MalformedArchiveError struct {
	Offset int
	Reason string
}

func (e *MalformedArchiveError) Error() string {
	return fmt.Sprintf("malformed archive at offset 0x%X: %s", e.Offset, e.Reason)
}

func (e *MalformedArchiveError) Is(target error) bool { return target == ErrMalformedArchive }

// IOError wraps a failure from the file-access layer.
type IOError struct {
	Op   string
	Path string
	Err  error
}

// NewIOError returns nil when err is nil.
func NewIOError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Op: op, Path: path, Err: err}
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

func (e *IOError) Is(target error) bool { return target == ErrIO }
