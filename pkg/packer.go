// Package pkg provides functionality for packaging PlayStation 2 saves.
// This file contains the packer that turns a save folder into PSU bytes.
package pkg

import (
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/hansbonini/psutools/pkg/common"
	"github.com/hansbonini/psutools/pkg/ps2"
)

// Packer combines file selection, icon.sys generation and archive
// serialization. It holds no per-call state.
type Packer struct {
	now      func() time.Time
	selector *FileSelector
	iconSys  IconSysEncoder
	archive  ArchiveSerializer
}

// NewPacker creates a new packer using the system clock
func NewPacker() *Packer {
	return &Packer{
		now:      time.Now,
		selector: NewFileSelector(),
		iconSys:  NewIconSysCodec(),
		archive:  NewPSUCodec(),
	}
}

// Pack builds the PSU archive for the folder exposed by src. Either the
// complete archive or an error is returned, never partial output.
func (p *Packer) Pack(cfg *Config, src afero.Fs) ([]byte, error) {
	if cfg == nil {
		return nil, common.NewValidationError("config", "a pack configuration", "nothing")
	}
	if !common.IsValidSaveName(cfg.Name) {
		return nil, common.NewValidationError("archive_name",
			fmt.Sprintf("1-%d characters of A-Z, a-z, 0-9, space, '_' or '-'", common.MaxEntryNameLength),
			fmt.Sprintf("%q", cfg.Name))
	}

	// archives store UTC wall-clock seconds
	var timestamp time.Time
	if cfg.Timestamp != nil {
		timestamp = cfg.Timestamp.UTC()
	} else {
		timestamp = p.now().UTC().Truncate(time.Second)
	}
	common.LogInfo(common.InfoResolvedTimestamp, timestamp.Format(TimestampLayout))

	listing, err := ListSource(src)
	if err != nil {
		return nil, err
	}
	injectIconSys := cfg.IconSys != nil
	names, err := p.selector.Resolve(listing, cfg.Include, cfg.Exclude, injectIconSys)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToResolveFiles, err)
	}

	var iconSysData []byte
	if injectIconSys {
		iconSysData, err = p.iconSys.EncodeConfig(cfg.IconSys)
		if err != nil {
			return nil, common.FormatError(common.ErrFailedToEncodeIconSys, err)
		}
		common.LogInfo(common.InfoIconSysGenerated, len(iconSysData), describeFlags(cfg.IconSys.Flags))
		for _, entry := range listing {
			if entry.Name == ps2.IconSysFileName {
				common.LogWarn(common.WarnIconSysReplaced)
			}
		}
	}

	files := make([]PSUFile, 0, len(names))
	for _, name := range names {
		var data []byte
		if injectIconSys && name == ps2.IconSysFileName {
			data = iconSysData
		} else {
			data, err = afero.ReadFile(src, name)
			if err != nil {
				return nil, common.FormatError(common.ErrFailedToReadSourceFile, common.NewIOError("read", name, err))
			}
		}
		common.LogInfo(common.InfoAddingFile, name, len(data))
		files = append(files, PSUFile{Name: name, Data: data})
	}

	data, err := p.archive.Serialize(cfg.Name, timestamp, files)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToSerializePSU, err)
	}
	return data, nil
}

func describeFlags(setting IconFlagSetting) string {
	if setting == "" {
		return ps2.IconFlagSaveFile.String()
	}
	if flag, err := ps2.ParseIconFlag(string(setting)); err == nil {
		return flag.String()
	}
	return string(setting)
}
