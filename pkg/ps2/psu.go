// Package ps2 provides PlayStation 2 memory card structures and functionality.
// This file contains the directory entry record used by PSU save archives.
package ps2

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/hansbonini/psutools/pkg/common"
)

// PSU layout constants
const (
	PSUEntrySize     = 512  // Directory entry record size
	PSUPageSize      = 1024 // File payloads are padded to this boundary
	PSUNameFieldSize = 448  // Name field width inside the record
	PSUNameOffset    = 0x40 // Offset of the name field
	TimestampSize    = 8    // Encoded timestamp size
)

// Directory entry mode values
const (
	ModeFile      uint16 = 0x0010
	ModeDirectory uint16 = 0x0020
	ModeExists    uint16 = 0x8000

	DirectoryMode uint16 = 0x8427 // read/write/execute, directory, exists
	FileMode      uint16 = 0x8497 // read/write/execute, file, exists
)

// EntryKind tells directories and files apart
type EntryKind uint8

const (
	KindDirectory EntryKind = iota
	KindFile
	KindInvalid
)

func (k EntryKind) String() string {
	switch k {
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	}
	return "invalid"
}

// DirectoryEntry represents one 512-byte PSU directory record.
// Cluster and DirEntry are placeholders: a PSU is a flat archive, not a
// mounted card, so no allocation exists.
type DirectoryEntry struct {
	Mode       uint16    // Mode flags (DirectoryMode / FileMode)
	Size       uint32    // Entry count for directories, byte length for files
	Created    time.Time // Creation time
	Cluster    uint32    // First cluster placeholder
	DirEntry   uint32    // Parent entry placeholder
	Modified   time.Time // Modification time
	Attributes uint32    // Attribute bits
	Name       string    // NUL padded name, at most 32 bytes
}

// Kind derives the entry kind from its mode bits. Entries without the
// exists bit, or with neither or both kind bits, are KindInvalid.
func (e *DirectoryEntry) Kind() EntryKind {
	if e.Mode&ModeExists == 0 {
		return KindInvalid
	}
	switch e.Mode & (ModeFile | ModeDirectory) {
	case ModeDirectory:
		return KindDirectory
	case ModeFile:
		return KindFile
	}
	return KindInvalid
}

// Pack serializes the entry to its 512-byte record
func (e *DirectoryEntry) Pack() ([]byte, error) {
	if len(e.Name) == 0 || len(e.Name) > common.MaxEntryNameLength {
		return nil, common.NewValidationError("entry name", fmt.Sprintf("1-%d bytes", common.MaxEntryNameLength), fmt.Sprintf("%d bytes (%q)", len(e.Name), e.Name))
	}

	buf := make([]byte, PSUEntrySize)
	binary.LittleEndian.PutUint16(buf[0x00:0x02], e.Mode)
	binary.LittleEndian.PutUint32(buf[0x04:0x08], e.Size)
	if err := PutTimestamp(buf[0x08:0x10], e.Created); err != nil {
		return nil, err
	}
	binary.LittleEndian.PutUint32(buf[0x10:0x14], e.Cluster)
	binary.LittleEndian.PutUint32(buf[0x14:0x18], e.DirEntry)
	if err := PutTimestamp(buf[0x18:0x20], e.Modified); err != nil {
		return nil, err
	}
	binary.LittleEndian.PutUint32(buf[0x20:0x24], e.Attributes)
	if err := common.PutCString(buf[PSUNameOffset:], e.Name); err != nil {
		return nil, err
	}

	return buf, nil
}

// Unpack deserializes the entry from a 512-byte record
func (e *DirectoryEntry) Unpack(data []byte) error {
	if len(data) != PSUEntrySize {
		return fmt.Errorf("invalid entry size: %d", len(data))
	}

	nameField := data[PSUNameOffset:]
	name := common.ParseCString(nameField)
	if len(name) == len(nameField) {
		return fmt.Errorf("name field is not NUL terminated")
	}
	if len(name) > common.MaxEntryNameLength {
		return fmt.Errorf("name %q longer than %d bytes", name, common.MaxEntryNameLength)
	}
	if !common.IsZeroPadded(nameField[len(name):]) {
		return fmt.Errorf("name field of %q is not zero padded", name)
	}

	created, err := ParseTimestamp(data[0x08:0x10])
	if err != nil {
		return fmt.Errorf("created timestamp: %w", err)
	}
	modified, err := ParseTimestamp(data[0x18:0x20])
	if err != nil {
		return fmt.Errorf("modified timestamp: %w", err)
	}

	e.Mode = binary.LittleEndian.Uint16(data[0x00:0x02])
	e.Size = binary.LittleEndian.Uint32(data[0x04:0x08])
	e.Created = created
	e.Cluster = binary.LittleEndian.Uint32(data[0x10:0x14])
	e.DirEntry = binary.LittleEndian.Uint32(data[0x14:0x18])
	e.Modified = modified
	e.Attributes = binary.LittleEndian.Uint32(data[0x20:0x24])
	e.Name = name

	return nil
}

// PaddedSize returns the number of bytes a payload of size n occupies
func PaddedSize(n int) int {
	return common.AlignTo(n, PSUPageSize)
}

// PutTimestamp writes t as: unused, sec, min, hour, day, month, year (LE).
// The zero time is written as eight zero bytes. The record has no zone or
// sub-second field, so t must be a whole second with a zero UTC offset.
func PutTimestamp(dst []byte, t time.Time) error {
	clear(dst[:TimestampSize])
	if t.IsZero() {
		return nil
	}
	if _, offset := t.Zone(); offset != 0 {
		return common.NewValidationError("timestamp", "a UTC time", t.Format(time.RFC3339))
	}
	if t.Nanosecond() != 0 {
		return common.NewValidationError("timestamp", "whole seconds", t.Format(time.RFC3339Nano))
	}
	year, err := common.SafeIntToUint16(t.Year())
	if err != nil {
		return common.NewValidationError("timestamp", "year 0-65535", t.Year())
	}

	dst[1] = byte(t.Second())
	dst[2] = byte(t.Minute())
	dst[3] = byte(t.Hour())
	dst[4] = byte(t.Day())
	dst[5] = byte(t.Month())
	binary.LittleEndian.PutUint16(dst[6:8], year)
	return nil
}

// ParseTimestamp reads a timestamp written by PutTimestamp. Wall-clock
// fields are returned in UTC.
func ParseTimestamp(src []byte) (time.Time, error) {
	if len(src) < TimestampSize {
		return time.Time{}, fmt.Errorf("timestamp needs %d bytes, got %d", TimestampSize, len(src))
	}
	if common.IsZeroPadded(src[:TimestampSize]) {
		return time.Time{}, nil
	}

	sec, minute, hour := int(src[1]), int(src[2]), int(src[3])
	day, month := int(src[4]), int(src[5])
	year := int(binary.LittleEndian.Uint16(src[6:8]))

	if sec > 59 || minute > 59 || hour > 23 || month < 1 || month > 12 || day < 1 {
		return time.Time{}, fmt.Errorf("out of range %04d-%02d-%02d %02d:%02d:%02d", year, month, day, hour, minute, sec)
	}
	t := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC)
	if t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid day %d for %04d-%02d", day, year, month)
	}
	return t, nil
}
