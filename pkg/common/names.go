// Package common provides shared utilities for PS2 save tooling.
// This file contains name checks for memory card folders and files.
package common

import "strings"

// MaxEntryNameLength is the longest name a memory card directory entry holds
const MaxEntryNameLength = 32

// IsSpecialDirEntry checks if a directory entry is "." or ".."
func IsSpecialDirEntry(name string) bool {
	return name == "." || name == ".."
}

// HasPathSeparator reports whether name refers to something inside a subfolder
func HasPathSeparator(name string) bool {
	return strings.ContainsAny(name, `/\`)
}

// IsValidSaveName checks the folder name written into the root entry.
// Only letters, digits, space, underscore and hyphen are accepted.
func IsValidSaveName(name string) bool {
	if len(name) == 0 || len(name) > MaxEntryNameLength {
		return false
	}
	for _, b := range []byte(name) {
		switch {
		case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		case b == ' ', b == '_', b == '-':
		default:
			return false
		}
	}
	return true
}

// IsValidFileName checks a file name stored inside a save folder
func IsValidFileName(name string) bool {
	if len(name) == 0 || len(name) > MaxEntryNameLength || IsSpecialDirEntry(name) {
		return false
	}

	for _, b := range []byte(name) {
		if b < 0x20 || b >= 0x7F {
			return false
		}
		switch b {
		case '<', '>', ':', '"', '|', '?', '*', '\\', '/':
			return false
		}
	}
	return true
}
