// Package pkg provides tests for the save folder packer
package pkg

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hansbonini/psutools/pkg/common"
	"github.com/hansbonini/psutools/pkg/ps2"
)

func exampleSource(t *testing.T) map[string]string {
	t.Helper()
	return map[string]string{
		"BOOT.ELF":  strings.Repeat("E", 10),
		"TITLE.DB":  strings.Repeat("T", 20),
		"debug.log": "trace",
	}
}

func TestPacker_PackIncludedFiles(t *testing.T) {
	src := newSource(t, exampleSource(t))
	cfg := &Config{
		Name:      "Example Save",
		Timestamp: timePtr(fixedTime),
		Include:   []string{"BOOT.ELF", "TITLE.DB"},
	}

	data, err := newTestPacker(fixedTime).Pack(cfg, src)
	require.NoError(t, err)
	assert.Len(t, data, 3*ps2.PSUEntrySize+2*(ps2.PSUEntrySize+ps2.PSUPageSize))

	archive, err := NewPSUCodec().Deserialize(data)
	require.NoError(t, err)
	assert.Equal(t, "Example Save", archive.Name())
	assert.True(t, archive.Timestamp().Equal(fixedTime))

	files := archive.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "BOOT.ELF", files[0].Name)
	assert.Len(t, files[0].Data, 10)
	assert.Equal(t, "TITLE.DB", files[1].Name)
	assert.Len(t, files[1].Data, 20)
}

func TestPacker_PackScansFolder(t *testing.T) {
	files := exampleSource(t)
	files["psu.toml"] = "[config]\nname = \"Example Save\"\n"
	files["icon.sys"] = "stale"
	src := newSource(t, files, "extras")

	data, err := newTestPacker(fixedTime).Pack(&Config{Name: "Example Save"}, src)
	require.NoError(t, err)

	archive, err := NewPSUCodec().Deserialize(data)
	require.NoError(t, err)
	var names []string
	for _, file := range archive.Files() {
		names = append(names, file.Name)
	}
	assert.Equal(t, []string{"BOOT.ELF", "TITLE.DB", "debug.log"}, names)
}

func TestPacker_PackUsesClockWithoutTimestamp(t *testing.T) {
	src := newSource(t, exampleSource(t))
	now := fixedTime.Add(750 * time.Millisecond)

	data, err := newTestPacker(now).Pack(&Config{Name: "SAVE", Include: []string{"BOOT.ELF"}}, src)
	require.NoError(t, err)

	archive, err := NewPSUCodec().Deserialize(data)
	require.NoError(t, err)
	assert.True(t, archive.Timestamp().Equal(fixedTime), "got %v", archive.Timestamp())
	assert.True(t, archive.Files()[0].Modified.Equal(fixedTime))
}

func TestPacker_PackStoresUTC(t *testing.T) {
	src := newSource(t, exampleSource(t))
	jst := time.FixedZone("JST", 9*60*60)
	local := time.Date(2024, time.October, 10, 19, 30, 0, 0, jst)

	t.Run("clock", func(t *testing.T) {
		data, err := newTestPacker(local.Add(250*time.Millisecond)).Pack(&Config{Name: "SAVE", Include: []string{"BOOT.ELF"}}, src)
		require.NoError(t, err)
		archive, err := NewPSUCodec().Deserialize(data)
		require.NoError(t, err)
		assert.Equal(t, fixedTime, archive.Timestamp())
	})

	t.Run("config", func(t *testing.T) {
		cfg := &Config{Name: "SAVE", Timestamp: timePtr(local), Include: []string{"BOOT.ELF"}}
		data, err := newTestPacker(fixedTime).Pack(cfg, src)
		require.NoError(t, err)
		archive, err := NewPSUCodec().Deserialize(data)
		require.NoError(t, err)
		assert.True(t, archive.Timestamp().Equal(local), "got %v", archive.Timestamp())
	})

	t.Run("fractional config time", func(t *testing.T) {
		cfg := &Config{Name: "SAVE", Timestamp: timePtr(fixedTime.Add(time.Millisecond)), Include: []string{"BOOT.ELF"}}
		_, err := newTestPacker(fixedTime).Pack(cfg, src)
		assert.ErrorIs(t, err, common.ErrValidation)
	})
}

func TestPacker_PackIsDeterministic(t *testing.T) {
	src := newSource(t, exampleSource(t))
	cfg := &Config{
		Name:      "Example Save",
		Timestamp: timePtr(fixedTime),
		IconSys:   &IconSysConfig{Title: "Example Save", Preset: "warm_sunset"},
	}

	first, err := newTestPacker(fixedTime).Pack(cfg, src)
	require.NoError(t, err)
	second, err := newTestPacker(fixedTime.Add(time.Hour)).Pack(cfg, src)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPacker_PackInjectsIconSys(t *testing.T) {
	logs := captureLogs(t)
	files := exampleSource(t)
	files["icon.sys"] = "stale bytes on disk"
	src := newSource(t, files)

	iconCfg := &IconSysConfig{Flags: "Software (PS2)", Title: "Example Save", LinebreakPos: uint16Ptr(7)}
	cfg := &Config{
		Name:      "Example Save",
		Timestamp: timePtr(fixedTime),
		Include:   []string{"icon.sys", "BOOT.ELF"},
		IconSys:   iconCfg,
	}

	data, err := newTestPacker(fixedTime).Pack(cfg, src)
	require.NoError(t, err)

	expected, err := NewIconSysCodec().EncodeConfig(iconCfg)
	require.NoError(t, err)

	archive, err := NewPSUCodec().Deserialize(data)
	require.NoError(t, err)
	packed := archive.Files()
	require.Len(t, packed, 2)
	assert.Equal(t, "icon.sys", packed[0].Name)
	assert.Equal(t, expected, packed[0].Data)
	assert.Equal(t, "BOOT.ELF", packed[1].Name)

	assert.Contains(t, logs.String(), "icon.sys in source folder is replaced by generated metadata")
}

func TestPacker_PackAppendsIconSys(t *testing.T) {
	src := newSource(t, exampleSource(t))
	cfg := &Config{
		Name:      "Example Save",
		Timestamp: timePtr(fixedTime),
		Include:   []string{"BOOT.ELF"},
		IconSys:   &IconSysConfig{Title: "Example Save"},
	}

	data, err := newTestPacker(fixedTime).Pack(cfg, src)
	require.NoError(t, err)

	archive, err := NewPSUCodec().Deserialize(data)
	require.NoError(t, err)
	packed := archive.Files()
	require.Len(t, packed, 2)
	assert.Equal(t, "icon.sys", packed[1].Name)
	assert.Len(t, packed[1].Data, ps2.IconSysSize)

	icon, err := NewIconSysCodec().Decode(packed[1].Data)
	require.NoError(t, err)
	assert.Equal(t, "Example Save", icon.Title)
	assert.Equal(t, ps2.IconFlagSaveFile, icon.Flags)
}

func TestPacker_PackErrors(t *testing.T) {
	testCases := []struct {
		name  string
		cfg   *Config
		kind  error
		field string
	}{
		{
			name: "nil config",
			kind: common.ErrValidation,
		},
		{
			name:  "invalid archive name",
			cfg:   &Config{Name: "bad/name"},
			kind:  common.ErrValidation,
			field: "archive_name",
		},
		{
			name:  "empty archive name",
			cfg:   &Config{Name: ""},
			kind:  common.ErrValidation,
			field: "archive_name",
		},
		{
			name: "three background colors",
			cfg: &Config{
				Name: "Example Save",
				IconSys: &IconSysConfig{
					Title:            "Example Save",
					BackgroundColors: make([]ColorConfig, 3),
				},
			},
			kind:  common.ErrValidation,
			field: "background_colors",
		},
		{
			name: "linebreak past title",
			cfg: &Config{
				Name:    "Example Save",
				IconSys: &IconSysConfig{Title: "Short", LinebreakPos: uint16Ptr(20)},
			},
			kind: common.ErrValidation,
		},
		{
			name: "unknown flag",
			cfg: &Config{
				Name:    "Example Save",
				IconSys: &IconSysConfig{Title: "A", Flags: "Mystery"},
			},
			kind: common.ErrValidation,
		},
		{
			name: "missing include",
			cfg:  &Config{Name: "Example Save", Include: []string{"BOOT.ELF", "missing.bin"}},
			kind: common.ErrNotFound,
		},
	}

	src := newSource(t, exampleSource(t))
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			data, err := newTestPacker(fixedTime).Pack(tc.cfg, src)
			assert.Nil(t, data)
			require.ErrorIs(t, err, tc.kind)
			if tc.field != "" {
				assert.Contains(t, err.Error(), tc.field)
			}
		})
	}
}

func TestPacker_PackMissingFileIsNamed(t *testing.T) {
	src := newSource(t, exampleSource(t))
	_, err := newTestPacker(fixedTime).Pack(&Config{Name: "Example Save", Include: []string{"missing.bin"}}, src)

	var nf *common.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing.bin", nf.Name)
}
