package pkg

import (
	"time"

	"github.com/hansbonini/psutools/pkg/ps2"
)

// Config describes one pack operation: the save folder name, an optional
// fixed timestamp, file selection rules and optional icon.sys metadata.
type Config struct {
	Name      string
	Timestamp *time.Time // nil means "now", resolved once per pack
	Include   []string
	Exclude   []string
	IconSys   *IconSysConfig // non-nil regenerates icon.sys
}

// IconSysConfig is the editable form of icon.sys. Slices are checked
// against the firmware cardinalities by Build.
type IconSysConfig struct {
	Flags                  IconFlagSetting `toml:"flags" yaml:"flags"`
	Title                  string          `toml:"title" yaml:"title"`
	LinebreakPos           *uint16         `toml:"linebreak_pos,omitempty" yaml:"linebreak_pos,omitempty"`
	Preset                 string          `toml:"preset,omitempty" yaml:"preset,omitempty"`
	BackgroundTransparency *uint32         `toml:"background_transparency,omitempty" yaml:"background_transparency,omitempty"`
	BackgroundColors       []ColorConfig   `toml:"background_colors,omitempty" yaml:"background_colors,omitempty"`
	LightDirections        []VectorConfig  `toml:"light_directions,omitempty" yaml:"light_directions,omitempty"`
	LightColors            []ColorFConfig  `toml:"light_colors,omitempty" yaml:"light_colors,omitempty"`
	AmbientColor           *ColorFConfig   `toml:"ambient_color,omitempty" yaml:"ambient_color,omitempty"`
	IconFile               string          `toml:"icon_file,omitempty" yaml:"icon_file,omitempty"`
	IconCopyFile           string          `toml:"icon_copy_file,omitempty" yaml:"icon_copy_file,omitempty"`
	IconDeleteFile         string          `toml:"icon_delete_file,omitempty" yaml:"icon_delete_file,omitempty"`
}

// IconFlagSetting holds flags as written in a config file: a descriptive
// name or a number. It is parsed when the record is built so that typos
// fail at encode time.
type IconFlagSetting string

// ColorConfig is an integer RGBA color
type ColorConfig struct {
	R uint8 `toml:"r" yaml:"r"`
	G uint8 `toml:"g" yaml:"g"`
	B uint8 `toml:"b" yaml:"b"`
	A uint8 `toml:"a" yaml:"a"`
}

// ColorFConfig is a floating point RGBA color
type ColorFConfig struct {
	R float32 `toml:"r" yaml:"r"`
	G float32 `toml:"g" yaml:"g"`
	B float32 `toml:"b" yaml:"b"`
	A float32 `toml:"a" yaml:"a"`
}

// VectorConfig is a light direction
type VectorConfig struct {
	X float32 `toml:"x" yaml:"x"`
	Y float32 `toml:"y" yaml:"y"`
	Z float32 `toml:"z" yaml:"z"`
	W float32 `toml:"w" yaml:"w"`
}

// PSUFile is one file to be stored in an archive. Zero timestamps are
// replaced by the archive timestamp.
type PSUFile struct {
	Name     string
	Data     []byte
	Created  time.Time
	Modified time.Time
}

// PSUEntry is a decoded directory entry with its payload (nil for directories)
type PSUEntry struct {
	Entry ps2.DirectoryEntry
	Data  []byte
}

// PSUArchive is a decoded PSU: the root folder entry followed by ".",
// ".." and the file entries in stream order.
type PSUArchive struct {
	Root    ps2.DirectoryEntry
	Entries []PSUEntry
}

// IconSysEncoder turns icon.sys metadata into the binary record
type IconSysEncoder interface {
	EncodeConfig(cfg *IconSysConfig) ([]byte, error)
}

// ArchiveSerializer writes PSU archives
type ArchiveSerializer interface {
	Serialize(name string, timestamp time.Time, files []PSUFile) ([]byte, error)
}

// ArchiveDeserializer reads PSU archives
type ArchiveDeserializer interface {
	Deserialize(data []byte) (*PSUArchive, error)
}
