// Package pkg provides functionality for packaging PlayStation 2 saves.
// This file contains the psu.toml / psu.yaml loaders and writers.
package pkg

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/hansbonini/psutools/pkg/common"
)

// TimestampLayout is the textual timestamp form used in config files
const TimestampLayout = "2006-01-02 15:04:05"

// configFile mirrors the on-disk layout: a [config] table and an optional
// [icon_sys] table
type configFile struct {
	Config  configSection  `toml:"config" yaml:"config"`
	IconSys *IconSysConfig `toml:"icon_sys,omitempty" yaml:"icon_sys,omitempty"`
}

type configSection struct {
	Name      string     `toml:"name" yaml:"name"`
	Timestamp *Timestamp `toml:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Include   []string   `toml:"include,omitempty" yaml:"include,omitempty"`
	Exclude   []string   `toml:"exclude,omitempty" yaml:"exclude,omitempty"`
}

// Timestamp is a wall-clock time without zone, stored as UTC
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{TimestampLayout, "2006-01-02T15:04:05", time.RFC3339}

func parseTimestamp(value string) (Timestamp, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return Timestamp{wallClock(t)}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("timestamp %q does not match %q", value, TimestampLayout)
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

// UnmarshalTOML accepts both a TOML datetime and a string
func (t *Timestamp) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case time.Time:
		t.Time = wallClock(v)
		return nil
	case string:
		parsed, err := parseTimestamp(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}
	return fmt.Errorf("timestamp must be a string or datetime, got %T", data)
}

// UnmarshalYAML reads the scalar text regardless of its resolved tag
func (t *Timestamp) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: timestamp must be a scalar", node.Line)
	}
	parsed, err := parseTimestamp(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*t = parsed
	return nil
}

// MarshalText writes the timestamp in TimestampLayout
func (t Timestamp) MarshalText() ([]byte, error) {
	return []byte(t.Format(TimestampLayout)), nil
}

// UnmarshalTOML accepts an integer code or a flag name
func (f *IconFlagSetting) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case int64:
		code, err := common.SafeInt64ToUint16(v)
		if err != nil {
			return fmt.Errorf("icon_sys.flags: %w", err)
		}
		*f = IconFlagSetting(strconv.FormatUint(uint64(code), 10))
		return nil
	case string:
		*f = IconFlagSetting(v)
		return nil
	}
	return fmt.Errorf("icon_sys.flags must be a number or a name, got %T", data)
}

// UnmarshalYAML accepts an integer code or a flag name
func (f *IconFlagSetting) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: icon_sys.flags must be a number or a name", node.Line)
	}
	*f = IconFlagSetting(node.Value)
	return nil
}

// ParseConfigTOML decodes a psu.toml document
func ParseConfigTOML(data []byte) (*Config, error) {
	var file configFile
	meta, err := toml.Decode(string(data), &file)
	if err != nil {
		return nil, &common.ParseError{Reason: common.FormatError(common.ErrFailedToParseTOML, err).Error()}
	}
	for _, key := range meta.Undecoded() {
		common.LogWarn(common.WarnUnknownConfigKey, key.String())
	}
	return file.toConfig(), nil
}

// ParseConfigYAML decodes a psu.yaml document
func ParseConfigYAML(data []byte) (*Config, error) {
	var file configFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &common.ParseError{Reason: common.FormatError(common.ErrFailedToParseYAML, err).Error()}
	}
	return file.toConfig(), nil
}

func (f *configFile) toConfig() *Config {
	cfg := &Config{
		Name:    f.Config.Name,
		Include: f.Config.Include,
		Exclude: f.Config.Exclude,
		IconSys: f.IconSys,
	}
	if f.Config.Timestamp != nil {
		ts := f.Config.Timestamp.Time
		cfg.Timestamp = &ts
	}
	return cfg
}

func (c *Config) toFile() configFile {
	file := configFile{
		Config: configSection{
			Name:    c.Name,
			Include: c.Include,
			Exclude: c.Exclude,
		},
		IconSys: c.IconSys,
	}
	if c.Timestamp != nil {
		file.Config.Timestamp = &Timestamp{*c.Timestamp}
	}
	return file
}

// ToTOML renders the config in psu.toml form
func (c *Config) ToTOML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	encoder.Indent = ""
	if err := encoder.Encode(c.toFile()); err != nil {
		return nil, common.FormatError(common.ErrFailedToEncodeConfig, err)
	}
	return buf.Bytes(), nil
}

// ToYAML renders the config in psu.yaml form
func (c *Config) ToYAML() ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(c.toFile()); err != nil {
		return nil, common.FormatError(common.ErrFailedToEncodeConfig, err)
	}
	if err := encoder.Close(); err != nil {
		return nil, common.FormatError(common.ErrFailedToEncodeConfig, err)
	}
	return buf.Bytes(), nil
}

// LoadConfig reads a config file, choosing the parser by extension
func LoadConfig(fsys afero.Fs, name string) (*Config, error) {
	data, err := afero.ReadFile(fsys, name)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToReadConfig, common.NewIOError("read", name, err))
	}

	var cfg *Config
	switch strings.ToLower(filepath.Ext(name)) {
	case ".toml":
		cfg, err = ParseConfigTOML(data)
	case ".yaml", ".yml":
		cfg, err = ParseConfigYAML(data)
	default:
		return nil, common.NewValidationError("config file", "a .toml, .yaml or .yml file", name)
	}
	if err != nil {
		return nil, err
	}

	common.LogInfo(common.InfoConfigLoaded, name, cfg.Name)
	return cfg, nil
}

// FindConfig returns the path of the config file inside dir, trying
// psu.toml, psu.yaml and psu.yml in that order
func FindConfig(fsys afero.Fs, dir string) (string, error) {
	for _, name := range []string{ConfigFileTOML, ConfigFileYAML, ConfigFileYML} {
		candidate := filepath.Join(dir, name)
		exists, err := afero.Exists(fsys, candidate)
		if err != nil {
			return "", common.NewIOError("stat", candidate, err)
		}
		if exists {
			return candidate, nil
		}
	}
	return "", common.FormatError(common.ErrNoConfigFound, &common.NotFoundError{Name: ConfigFileTOML})
}

// Output formats for config documents
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

type iconSysDocument struct {
	IconSys *IconSysConfig `toml:"icon_sys" yaml:"icon_sys"`
}

// EncodeIconSysDocument renders icon metadata alone as an [icon_sys]
// document that LoadConfig can read back
func EncodeIconSysDocument(icon *IconSysConfig, format string) ([]byte, error) {
	doc := iconSysDocument{IconSys: icon}
	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case FormatTOML:
		encoder := toml.NewEncoder(&buf)
		encoder.Indent = ""
		if err := encoder.Encode(doc); err != nil {
			return nil, common.FormatError(common.ErrFailedToEncodeConfig, err)
		}
	case FormatYAML, "yml":
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return nil, common.FormatError(common.ErrFailedToEncodeConfig, err)
		}
		if err := encoder.Close(); err != nil {
			return nil, common.FormatError(common.ErrFailedToEncodeConfig, err)
		}
	default:
		return nil, common.NewValidationError("format", "toml or yaml", fmt.Sprintf("%q", format))
	}
	return buf.Bytes(), nil
}
