// Package pkg provides functionality for packaging PlayStation 2 saves.
// This file contains the file-level operations behind the CLI commands.
package pkg

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/hansbonini/psutools/pkg/common"
	"github.com/hansbonini/psutools/pkg/ps2"
)

// PSUProcessor handles PSU file operations (pack/unpack/list) and icon.sys
// conversion on top of a filesystem
type PSUProcessor struct {
	fs     afero.Fs
	packer *Packer
	codec  ArchiveDeserializer
	icons  *IconSysCodec
}

// NewPSUProcessor creates a new PSU processor working on fs.
// A nil fs selects the operating system filesystem.
func NewPSUProcessor(fs afero.Fs) *PSUProcessor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &PSUProcessor{
		fs:     fs,
		packer: NewPacker(),
		codec:  NewPSUCodec(),
		icons:  NewIconSysCodec(),
	}
}

// PackFolder packs folder into a PSU file. An empty configPath looks for
// psu.toml / psu.yaml inside the folder; an empty outputFile writes
// "<name>.psu". The path written is returned.
func (p *PSUProcessor) PackFolder(folder, configPath, outputFile string) (string, error) {
	if configPath == "" {
		found, err := FindConfig(p.fs, folder)
		if err != nil {
			return "", err
		}
		configPath = found
	}

	cfg, err := LoadConfig(p.fs, configPath)
	if err != nil {
		return "", err
	}

	src := afero.NewReadOnlyFs(afero.NewBasePathFs(p.fs, folder))
	data, err := p.packer.Pack(cfg, src)
	if err != nil {
		return "", err
	}

	if outputFile == "" {
		outputFile = cfg.Name + ".psu"
	}
	if err := afero.WriteFile(p.fs, outputFile, data, 0o644); err != nil {
		return "", common.FormatError(common.ErrFailedToWriteOutputFile, common.NewIOError("write", outputFile, err))
	}

	common.LogInfo(common.InfoPSUPacked, folder, outputFile, len(data))
	return outputFile, nil
}

// List reads and decodes a PSU file
func (p *PSUProcessor) List(inputFile string) (*PSUArchive, error) {
	data, err := afero.ReadFile(p.fs, inputFile)
	if err != nil {
		return nil, common.NewIOError("read", inputFile, err)
	}
	archive, err := p.codec.Deserialize(data)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToDeserializePSU, err)
	}
	return archive, nil
}

// Unpack extracts every file of a PSU into outputDir and writes a psu.toml
// that packs the folder back into an equivalent archive. A valid icon.sys
// is decoded into the [icon_sys] table. Archives holding a config file or
// the same name twice are refused before anything is written.
func (p *PSUProcessor) Unpack(inputFile, outputDir string) error {
	archive, err := p.List(inputFile)
	if err != nil {
		return err
	}

	files := archive.Files()
	seen := make(map[string]struct{}, len(files))
	for _, file := range files {
		if file.Name == "" || common.HasPathSeparator(file.Name) || common.IsSpecialDirEntry(file.Name) {
			return common.NewValidationError("entry name", "a plain file name", fmt.Sprintf("%q", file.Name))
		}
		if isConfigFile(file.Name) {
			return common.NewValidationError("entry name", "a name other than the generated "+ConfigFileTOML, fmt.Sprintf("%q", file.Name))
		}
		if _, dup := seen[file.Name]; dup {
			return common.NewValidationError("entry name", "unique names", fmt.Sprintf("%q twice", file.Name))
		}
		seen[file.Name] = struct{}{}
	}

	if err := p.fs.MkdirAll(outputDir, 0o755); err != nil {
		return common.FormatError(common.ErrFailedToCreateOutputDir, common.NewIOError("mkdir", outputDir, err))
	}

	cfg := &Config{Name: archive.Name()}
	if ts := archive.Timestamp(); !ts.IsZero() {
		cfg.Timestamp = &ts
	}

	for _, file := range files {
		target := filepath.Join(outputDir, file.Name)
		if err := afero.WriteFile(p.fs, target, file.Data, 0o644); err != nil {
			return common.FormatError(common.ErrFailedToWriteOutputFile, common.NewIOError("write", target, err))
		}
		if !file.Modified.IsZero() {
			if err := p.fs.Chtimes(target, file.Modified, file.Modified); err != nil {
				common.LogWarn(common.WarnTimesNotKept, target, err)
			}
		}
		cfg.Include = append(cfg.Include, file.Name)

		if file.Name == ps2.IconSysFileName {
			icon, err := p.icons.Decode(file.Data)
			if err != nil {
				common.LogWarn("%s: %v", common.ErrFailedToDecodeIconSys, err)
				continue
			}
			cfg.IconSys = IconSysConfigFromRecord(icon)
		}
	}

	doc, err := cfg.ToTOML()
	if err != nil {
		return err
	}
	configPath := filepath.Join(outputDir, ConfigFileTOML)
	if err := afero.WriteFile(p.fs, configPath, doc, 0o644); err != nil {
		return common.FormatError(common.ErrFailedToWriteOutputFile, common.NewIOError("write", configPath, err))
	}

	common.LogInfo(common.InfoPSUUnpacked, inputFile, outputDir, len(files))
	return nil
}

// DecodeIconSys reads an icon.sys file and renders it as a TOML or YAML
// [icon_sys] document
func (p *PSUProcessor) DecodeIconSys(inputFile, format string) ([]byte, error) {
	data, err := afero.ReadFile(p.fs, inputFile)
	if err != nil {
		return nil, common.NewIOError("read", inputFile, err)
	}
	icon, err := p.icons.Decode(data)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToDecodeIconSys, err)
	}
	return EncodeIconSysDocument(IconSysConfigFromRecord(icon), format)
}

// EncodeIconSys builds icon.sys from the [icon_sys] table of a config file
func (p *PSUProcessor) EncodeIconSys(configPath, outputFile string) error {
	cfg, err := LoadConfig(p.fs, configPath)
	if err != nil {
		return err
	}
	if cfg.IconSys == nil {
		return common.NewValidationError("icon_sys", "an [icon_sys] table", fmt.Sprintf("none in %s", configPath))
	}

	data, err := p.icons.EncodeConfig(cfg.IconSys)
	if err != nil {
		return common.FormatError(common.ErrFailedToEncodeIconSys, err)
	}
	if err := afero.WriteFile(p.fs, outputFile, data, 0o644); err != nil {
		return common.FormatError(common.ErrFailedToWriteOutputFile, common.NewIOError("write", outputFile, err))
	}

	common.LogInfo(common.InfoIconSysWritten, outputFile)
	return nil
}
