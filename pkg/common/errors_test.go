package common

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestErrorKinds(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		kind error
	}{
		{"validation", NewValidationError("icon_sys.background_colors", "4 entries", "3 entries"), ErrValidation},
		{"not found", &NotFoundError{Name: "missing.bin"}, ErrNotFound},
		{"parse", &ParseError{Reason: "short buffer"}, ErrParse},
		{"malformed", &MalformedArchiveError{Offset: 0x200, Reason: "truncated"}, ErrMalformedArchive},
		{"io", NewIOError("read", "BOOT.ELF", fs.ErrPermission), ErrIO},
	}

	kinds := []error{ErrValidation, ErrNotFound, ErrParse, ErrMalformedArchive, ErrIO}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			wrapped := fmt.Errorf("pack: %w", tc.err)
			for _, kind := range kinds {
				if got := errors.Is(wrapped, kind); got != (kind == tc.kind) {
					t.Errorf("errors.Is(%v, %v) = %v", tc.err, kind, got)
				}
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewValidationError("icon_sys.background_colors", "4 entries", "3 entries")
	msg := err.Error()
	for _, part := range []string{"icon_sys.background_colors", "4 entries", "3 entries"} {
		if !strings.Contains(msg, part) {
			t.Errorf("ValidationError message %q should contain %q", msg, part)
		}
	}
}

func TestIOErrorUnwrap(t *testing.T) {
	err := NewIOError("read", "BOOT.ELF", fs.ErrPermission)
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("IOError should unwrap to the underlying error")
	}
	if NewIOError("read", "x", nil) != nil {
		t.Error("NewIOError(nil) should return nil")
	}
}

func TestNotFoundErrorNamesFile(t *testing.T) {
	var nf *NotFoundError
	err := fmt.Errorf("resolve: %w", &NotFoundError{Name: "missing.bin"})
	if !errors.As(err, &nf) || nf.Name != "missing.bin" {
		t.Errorf("errors.As should recover the missing file name, got %v", err)
	}
}
