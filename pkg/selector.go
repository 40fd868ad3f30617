// Package pkg provides functionality for packaging PlayStation 2 saves.
// This file decides which files of a source folder go into an archive.
package pkg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/hansbonini/psutools/pkg/common"
	"github.com/hansbonini/psutools/pkg/ps2"
)

// Config file names recognized in a source folder. They are never packed.
const (
	ConfigFileTOML = "psu.toml"
	ConfigFileYAML = "psu.yaml"
	ConfigFileYML  = "psu.yml"
)

// SourceEntry is one top-level entry of a source folder
type SourceEntry struct {
	Name    string
	Regular bool // false for directories and other non-regular files
}

// ListSource lists the top level of src in lexical order
func ListSource(src afero.Fs) ([]SourceEntry, error) {
	infos, err := afero.ReadDir(src, ".")
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToListSource, common.NewIOError("list", ".", err))
	}

	entries := make([]SourceEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, SourceEntry{
			Name:    info.Name(),
			Regular: info.Mode().IsRegular(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// FileSelector computes the ordered list of files to archive
type FileSelector struct{}

// NewFileSelector creates a new file selector instance
func NewFileSelector() *FileSelector {
	return &FileSelector{}
}

// Resolve returns the file names to archive. With a non-empty include the
// include order is kept; otherwise every regular file is taken in lexical
// order. Exclusions are applied afterwards. With injectIconSys, icon.sys is
// always part of the result.
func (s *FileSelector) Resolve(listing []SourceEntry, include, exclude []string, injectIconSys bool) ([]string, error) {
	byName := make(map[string]SourceEntry, len(listing))
	for _, entry := range listing {
		byName[entry.Name] = entry
	}

	var base []string
	if len(include) > 0 {
		seen := make(map[string]struct{}, len(include))
		for _, name := range include {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}

			if common.HasPathSeparator(name) {
				return nil, common.NewValidationError("include", "a file in the top level of the source folder", fmt.Sprintf("%q", name))
			}
			if isConfigFile(name) {
				common.LogWarn(common.WarnConfigFileSkipped, name)
				continue
			}
			entry, ok := byName[name]
			if !ok {
				if injectIconSys && name == ps2.IconSysFileName {
					base = append(base, name)
					continue
				}
				return nil, &common.NotFoundError{Name: name}
			}
			if !entry.Regular {
				return nil, common.NewValidationError("include", "a regular file", fmt.Sprintf("directory %q", name))
			}
			base = append(base, name)
		}
	} else {
		for _, entry := range listing {
			switch {
			case !entry.Regular:
				common.LogDebug(common.DebugSkippedEntry, entry.Name, "not a regular file")
			case entry.Name == ps2.IconSysFileName:
				common.LogDebug(common.DebugSkippedEntry, entry.Name, "icon.sys is only packed when included or generated")
			case isConfigFile(entry.Name):
				common.LogDebug(common.DebugSkippedEntry, entry.Name, "packer config")
			default:
				base = append(base, entry.Name)
			}
		}
		sort.Strings(base)
	}

	excluded := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		excluded[name] = struct{}{}
		if common.HasPathSeparator(name) {
			common.LogWarn(common.WarnExcludeSubfolder, name)
			continue
		}
		if _, ok := byName[name]; !ok {
			common.LogWarn(common.WarnExcludeNotFound, name)
		}
	}

	files := make([]string, 0, len(base)+1)
	hasIconSys := false
	for _, name := range base {
		if name == ps2.IconSysFileName && injectIconSys {
			files = append(files, name)
			hasIconSys = true
			continue
		}
		if _, skip := excluded[name]; skip {
			common.LogDebug(common.DebugSkippedEntry, name, "excluded")
			continue
		}
		files = append(files, name)
	}
	if injectIconSys && !hasIconSys {
		files = append(files, ps2.IconSysFileName)
	}

	for i, name := range files {
		common.LogDebug(common.DebugSelectedFile, i+1, name)
	}
	return files, nil
}

func isConfigFile(name string) bool {
	switch strings.ToLower(name) {
	case ConfigFileTOML, ConfigFileYAML, ConfigFileYML:
		return true
	}
	return false
}
