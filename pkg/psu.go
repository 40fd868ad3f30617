// Package pkg provides functionality for packaging PlayStation 2 saves.
// This file contains the PSU archive serializer and deserializer.
package pkg

import (
	"bytes"
	"fmt"
	"time"

	"github.com/hansbonini/psutools/pkg/common"
	"github.com/hansbonini/psutools/pkg/ps2"
)

// PSUCodec reads and writes PSU archives
type PSUCodec struct{}

// NewPSUCodec creates a new PSU codec instance
func NewPSUCodec() *PSUCodec {
	return &PSUCodec{}
}

// Serialize builds a PSU archive: the root folder entry, "." and "..",
// then one entry per file followed by its payload padded to 1024 bytes.
// The output depends only on the arguments.
func (c *PSUCodec) Serialize(name string, timestamp time.Time, files []PSUFile) ([]byte, error) {
	if err := validateEntryName("archive_name", name); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(files))
	for _, file := range files {
		if err := validateEntryName("file name", file.Name); err != nil {
			return nil, err
		}
		if _, dup := seen[file.Name]; dup {
			return nil, common.NewValidationError("file name", "unique names", fmt.Sprintf("%q twice", file.Name))
		}
		seen[file.Name] = struct{}{}
	}

	count, err := common.SafeIntToUint32(len(files) + 2)
	if err != nil {
		return nil, common.NewValidationError("file count", "fewer files", len(files))
	}

	var buf bytes.Buffer
	dirs := []ps2.DirectoryEntry{
		{Mode: ps2.DirectoryMode, Size: count, Created: timestamp, Modified: timestamp, Name: name},
		{Mode: ps2.DirectoryMode, Created: timestamp, Modified: timestamp, Name: "."},
		{Mode: ps2.DirectoryMode, Created: timestamp, Modified: timestamp, Name: ".."},
	}
	for i := range dirs {
		if err := writeEntry(&buf, &dirs[i]); err != nil {
			return nil, err
		}
	}

	for _, file := range files {
		size, err := common.SafeIntToUint32(len(file.Data))
		if err != nil {
			return nil, common.NewValidationError(fmt.Sprintf("size of %s", file.Name), "at most 4 GiB", len(file.Data))
		}
		entry := ps2.DirectoryEntry{
			Mode:     ps2.FileMode,
			Size:     size,
			Created:  orDefault(file.Created, timestamp),
			Modified: orDefault(file.Modified, timestamp),
			Name:     file.Name,
		}
		if err := writeEntry(&buf, &entry); err != nil {
			return nil, err
		}
		buf.Write(file.Data)
		buf.Write(make([]byte, ps2.PaddedSize(len(file.Data))-len(file.Data)))
	}

	return buf.Bytes(), nil
}

func writeEntry(buf *bytes.Buffer, entry *ps2.DirectoryEntry) error {
	record, err := entry.Pack()
	if err != nil {
		return err
	}
	common.LogDebug(common.DebugEntryWritten, entry.Name, entry.Mode, entry.Size, buf.Len())
	buf.Write(record)
	return nil
}

func orDefault(t, fallback time.Time) time.Time {
	if t.IsZero() {
		return fallback
	}
	return t
}

// validateEntryName applies the rules for names stored in an entry
func validateEntryName(field, name string) error {
	switch {
	case name == "":
		return common.NewValidationError(field, "a non-empty name", `""`)
	case len(name) > common.MaxEntryNameLength:
		return common.NewValidationError(field, fmt.Sprintf("at most %d bytes", common.MaxEntryNameLength), fmt.Sprintf("%d bytes (%q)", len(name), name))
	case common.HasPathSeparator(name):
		return common.NewValidationError(field, "a name without path separators", fmt.Sprintf("%q", name))
	case common.IsSpecialDirEntry(name):
		return common.NewValidationError(field, "a regular name", fmt.Sprintf("%q", name))
	case !common.IsValidFileName(name):
		return common.NewValidationError(field, `printable ASCII without any of <>:"|?*`, fmt.Sprintf("%q", name))
	}
	return nil
}

// Deserialize parses a PSU archive. The root entry's count must match the
// records present and every payload must lie inside data.
func (c *PSUCodec) Deserialize(data []byte) (*PSUArchive, error) {
	root, err := readEntry(data, 0)
	if err != nil {
		return nil, err
	}
	if root.Mode != ps2.DirectoryMode {
		return nil, &common.MalformedArchiveError{Offset: 0, Reason: fmt.Sprintf("root entry mode 0x%04X is not a directory", root.Mode)}
	}
	if root.Size < 2 {
		return nil, &common.MalformedArchiveError{Offset: 0, Reason: fmt.Sprintf("root entry count %d leaves no room for \".\" and \"..\"", root.Size)}
	}

	archive := &PSUArchive{Root: *root}
	offset := ps2.PSUEntrySize
	for i := uint32(0); i < root.Size; i++ {
		entry, err := readEntry(data, offset)
		if err != nil {
			return nil, err
		}
		common.LogDebug(common.DebugEntryRead, entry.Name, entry.Mode, entry.Size, offset)
		if err := checkEntry(entry, int(i), offset); err != nil {
			return nil, err
		}
		offset += ps2.PSUEntrySize

		item := PSUEntry{Entry: *entry}
		if entry.Kind() == ps2.KindFile {
			size := int(entry.Size)
			padded := ps2.PaddedSize(size)
			if padded > len(data)-offset {
				return nil, &common.MalformedArchiveError{Offset: offset, Reason: fmt.Sprintf("payload of %q needs %d bytes, %d remain", entry.Name, padded, len(data)-offset)}
			}
			item.Data = append([]byte(nil), data[offset : offset+size]...)
			if !common.IsZeroPadded(data[offset+size : offset+padded]) {
				common.LogWarn(common.WarnNonZeroPadding, entry.Name)
			}
			offset += padded
		}
		archive.Entries = append(archive.Entries, item)
	}

	if offset != len(data) {
		return nil, &common.MalformedArchiveError{Offset: offset, Reason: fmt.Sprintf("root entry declares %d records but %d trailing bytes follow them", root.Size, len(data)-offset)}
	}
	return archive, nil
}

// checkEntry rejects unknown modes and requires "." and ".." as the first
// two records of the root folder
func checkEntry(entry *ps2.DirectoryEntry, index, offset int) error {
	if entry.Mode != ps2.DirectoryMode && entry.Mode != ps2.FileMode {
		return &common.MalformedArchiveError{Offset: offset, Reason: fmt.Sprintf("entry %q has unknown mode 0x%04X", entry.Name, entry.Mode)}
	}
	dots := [...]string{".", ".."}
	if index < len(dots) {
		if entry.Name != dots[index] || entry.Kind() != ps2.KindDirectory {
			return &common.MalformedArchiveError{Offset: offset, Reason: fmt.Sprintf("record %d must be the %q directory, got %s %q", index+1, dots[index], entry.Kind(), entry.Name)}
		}
		return nil
	}
	if common.IsSpecialDirEntry(entry.Name) {
		return &common.MalformedArchiveError{Offset: offset, Reason: fmt.Sprintf("misplaced %q entry", entry.Name)}
	}
	return nil
}

func readEntry(data []byte, offset int) (*ps2.DirectoryEntry, error) {
	if ps2.PSUEntrySize > len(data)-offset {
		return nil, &common.MalformedArchiveError{Offset: offset, Reason: fmt.Sprintf("directory entry needs %d bytes, %d remain", ps2.PSUEntrySize, len(data)-offset)}
	}
	entry := &ps2.DirectoryEntry{}
	if err := entry.Unpack(data[offset : offset+ps2.PSUEntrySize]); err != nil {
		return nil, &common.MalformedArchiveError{Offset: offset, Reason: err.Error()}
	}
	return entry, nil
}

// Name returns the save folder name
func (a *PSUArchive) Name() string {
	return a.Root.Name
}

// Timestamp returns the root folder's creation time
func (a *PSUArchive) Timestamp() time.Time {
	return a.Root.Created
}

// Files returns the file entries in stream order, skipping directories
func (a *PSUArchive) Files() []PSUFile {
	var files []PSUFile
	for _, item := range a.Entries {
		if item.Entry.Kind() != ps2.KindFile {
			continue
		}
		files = append(files, PSUFile{
			Name:     item.Entry.Name,
			Data:     item.Data,
			Created:  item.Entry.Created,
			Modified: item.Entry.Modified,
		})
	}
	return files
}

// File returns the payload of the named file
func (a *PSUArchive) File(name string) ([]byte, bool) {
	for _, item := range a.Entries {
		if item.Entry.Kind() == ps2.KindFile && item.Entry.Name == name {
			return item.Data, true
		}
	}
	return nil, false
}
