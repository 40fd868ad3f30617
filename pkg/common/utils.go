package common

import (
	"bytes"
	"fmt"
)

// ValidateMagic checks that data starts with the expected signature
func ValidateMagic(data []byte, expected, format string) error {
	if len(data) < len(expected) {
		return &ParseError{Reason: fmt.Sprintf("invalid %s header: need %d bytes, got %d", format, len(expected), len(data))}
	}
	if string(data[:len(expected)]) != expected {
		return &ParseError{Reason: fmt.Sprintf("invalid %s header: expected '%s', got '%s'", format, expected, string(data[:len(expected)]))}
	}
	return nil
}

// ParseCString returns the bytes before the first NUL as a string
func ParseCString(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		return string(field[:i])
	}
	return string(field)
}

// PutCString copies s into field and zero-fills the remainder.
// At least one trailing NUL is kept.
func PutCString(field []byte, s string) error {
	if len(s) >= len(field) {
		return fmt.Errorf("string %q needs %d bytes, field holds %d", s, len(s)+1, len(field))
	}
	n := copy(field, s)
	clear(field[n:])
	return nil
}

// IsZeroPadded reports whether every byte of b is zero
func IsZeroPadded(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// AlignTo rounds value up to the next multiple of alignment
func AlignTo(value, alignment int) int {
	if alignment <= 0 {
		return value
	}
	return (value + alignment - 1) / alignment * alignment
}
