// Package pkg provides tests for the icon.sys codec
package pkg

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hansbonini/psutools/pkg/common"
	"github.com/hansbonini/psutools/pkg/ps2"
)

func sampleIconSys() *ps2.IconSys {
	return &ps2.IconSys{
		Flags:                  ps2.IconFlagSettings,
		Title:                  "Example Save",
		LinebreakPos:           7,
		BackgroundTransparency: 64,
		BackgroundColors: [ps2.BackgroundColorCount]ps2.Color{
			{R: 10, G: 20, B: 30, A: 0},
			{R: 40, G: 50, B: 60, A: 0},
			{R: 70, G: 80, B: 90, A: 0},
			{R: 255, G: 128, B: 0, A: 0},
		},
		LightDirections: [ps2.LightCount]ps2.Vector{
			{X: 0, Y: 0, Z: 1, W: 0},
			{X: -0.5, Y: -0.5, Z: 0.5, W: 0},
			{X: 0.5, Y: -0.5, Z: 0.5, W: 0},
		},
		LightColors: [ps2.LightCount]ps2.ColorF{
			{R: 1, G: 1, B: 1, A: 1},
			{R: 0.5, G: 0.5, B: 0.6, A: 1},
			{R: 0.3, G: 0.3, B: 0.4, A: 1},
		},
		AmbientColor:   ps2.ColorF{R: 0.2, G: 0.2, B: 0.2, A: 1},
		IconFile:       "list.icn",
		IconCopyFile:   "copy.icn",
		IconDeleteFile: "del.icn",
	}
}

func TestIconSysCodec_EncodeLayout(t *testing.T) {
	data, err := NewIconSysCodec().Encode(sampleIconSys())
	require.NoError(t, err)
	require.Len(t, data, ps2.IconSysSize)

	assert.Equal(t, "PS2D", string(data[0:4]))
	assert.Equal(t, uint16(4), binary.LittleEndian.Uint16(data[0x004:]))
	// "Example" is 7 full-width characters of 2 bytes each
	assert.Equal(t, uint16(14), binary.LittleEndian.Uint16(data[0x006:]))
	assert.Zero(t, binary.LittleEndian.Uint32(data[0x008:]))
	assert.Equal(t, uint32(64), binary.LittleEndian.Uint32(data[0x00C:]))

	// background colors are stored one u32 per component
	assert.Equal(t, uint32(10), binary.LittleEndian.Uint32(data[0x010:]))
	assert.Equal(t, uint32(20), binary.LittleEndian.Uint32(data[0x014:]))
	assert.Equal(t, uint32(255), binary.LittleEndian.Uint32(data[0x040:]))

	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(data[0x058:])))
	assert.Equal(t, float32(-0.5), math.Float32frombits(binary.LittleEndian.Uint32(data[0x060:])))
	assert.Equal(t, float32(0.6), math.Float32frombits(binary.LittleEndian.Uint32(data[0x098:])))
	assert.Equal(t, float32(0.2), math.Float32frombits(binary.LittleEndian.Uint32(data[0x0B0:])))

	assert.Equal(t, []byte{0x82, 0x64, 0x82, 0x98}, data[0x0C0:0x0C4], "title starts with full-width \"Ex\"")
	assert.Equal(t, []byte{0x81, 0x40}, data[0x0C0+14:0x0C0+16], "space becomes an ideographic space")
	assert.True(t, common.IsZeroPadded(data[0x0C0+24:0x104]))

	assert.Equal(t, "list.icn", common.ParseCString(data[0x104:0x144]))
	assert.Equal(t, "copy.icn", common.ParseCString(data[0x144:0x184]))
	assert.Equal(t, "del.icn", common.ParseCString(data[0x184:0x1C4]))
	assert.True(t, common.IsZeroPadded(data[0x1C4:]))
}

func TestIconSysCodec_RoundTrip(t *testing.T) {
	codec := NewIconSysCodec()

	testCases := []struct {
		name   string
		modify func(*ps2.IconSys)
	}{
		{"sample", func(*ps2.IconSys) {}},
		{"empty title", func(r *ps2.IconSys) { r.Title = ""; r.LinebreakPos = 0 }},
		{"two full lines", func(r *ps2.IconSys) {
			r.Title = "ABCDEFGHIJKLMNOPQRSTUVWXYZ012345"
			r.LinebreakPos = 16
		}},
		{"linebreak at end", func(r *ps2.IconSys) { r.LinebreakPos = 12 }},
		{"japanese title", func(r *ps2.IconSys) { r.Title = "セーブデータ"; r.LinebreakPos = 3 }},
		{"raw flags", func(r *ps2.IconSys) { r.Flags = 0x1F }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			record := sampleIconSys()
			tc.modify(record)

			data, err := codec.Encode(record)
			require.NoError(t, err)
			decoded, err := codec.Decode(data)
			require.NoError(t, err)
			assert.Equal(t, record, decoded)
		})
	}
}

func TestIconSysCodec_EncodeValidation(t *testing.T) {
	codec := NewIconSysCodec()

	testCases := []struct {
		name   string
		field  string
		modify func(*ps2.IconSys)
	}{
		{"title too long", "icon_sys.title", func(r *ps2.IconSys) { r.Title = strings.Repeat("A", 33) }},
		{"unencodable title", "icon_sys.title", func(r *ps2.IconSys) { r.Title = "Save 😀"; r.LinebreakPos = 0 }},
		{"linebreak beyond title", "icon_sys.linebreak_pos", func(r *ps2.IconSys) { r.LinebreakPos = 13 }},
		{"icon file too long", "icon_sys.icon_file", func(r *ps2.IconSys) { r.IconFile = strings.Repeat("i", 64) }},
		{"non-ascii copy file", "icon_sys.icon_copy_file", func(r *ps2.IconSys) { r.IconCopyFile = "コピー.icn" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			record := sampleIconSys()
			tc.modify(record)

			data, err := codec.Encode(record)
			assert.Nil(t, data)
			require.ErrorIs(t, err, common.ErrValidation)

			var verr *common.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestIconSysCodec_DecodeErrors(t *testing.T) {
	codec := NewIconSysCodec()
	valid, err := codec.Encode(sampleIconSys())
	require.NoError(t, err)

	badMagic := append([]byte(nil), valid...)
	copy(badMagic, "PS1D")

	testCases := map[string][]byte{
		"empty":     nil,
		"truncated": valid[:963],
		"bad magic": badMagic,
	}
	for name, data := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decode(data)
			assert.ErrorIs(t, err, common.ErrParse)
		})
	}
}

func TestIconSysCodec_DecodeClampsLinebreak(t *testing.T) {
	codec := NewIconSysCodec()
	data, err := codec.Encode(sampleIconSys())
	require.NoError(t, err)

	binary.LittleEndian.PutUint16(data[0x006:], 200)
	decoded, err := codec.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, uint16(12), decoded.LinebreakPos)
}

func TestIconSysConfig_Build(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		icon, err := (&IconSysConfig{Title: "Save"}).Build()
		require.NoError(t, err)

		preset, err := ps2.LookupPreset(ps2.DefaultPresetID)
		require.NoError(t, err)
		assert.Equal(t, ps2.IconFlagSaveFile, icon.Flags)
		assert.Zero(t, icon.LinebreakPos)
		assert.Zero(t, icon.BackgroundTransparency)
		assert.Equal(t, preset.LightColors, icon.LightColors)
		assert.Equal(t, preset.AmbientColor, icon.AmbientColor)
		assert.Equal(t, ps2.DefaultIconFile, icon.IconFile)
		assert.Equal(t, ps2.DefaultIconFile, icon.IconCopyFile)
		assert.Equal(t, ps2.DefaultIconFile, icon.IconDeleteFile)
	})

	t.Run("explicit fields override the preset", func(t *testing.T) {
		transparency := uint32(12)
		cfg := &IconSysConfig{
			Flags:                  "software",
			Title:                  "Example Save",
			LinebreakPos:           uint16Ptr(7),
			Preset:                 "cool_blue",
			BackgroundTransparency: &transparency,
			AmbientColor:           &ColorFConfig{R: 0.5, G: 0.4, B: 0.3, A: 1},
			IconFile:               "view.icn",
		}
		icon, err := cfg.Build()
		require.NoError(t, err)

		preset, err := ps2.LookupPreset("cool_blue")
		require.NoError(t, err)
		assert.Equal(t, ps2.IconFlagSoftware, icon.Flags)
		assert.Equal(t, uint16(7), icon.LinebreakPos)
		assert.Equal(t, uint32(12), icon.BackgroundTransparency)
		assert.Equal(t, preset.BackgroundColors, icon.BackgroundColors)
		assert.Equal(t, preset.LightDirections, icon.LightDirections)
		assert.Equal(t, ps2.ColorF{R: 0.5, G: 0.4, B: 0.3, A: 1}, icon.AmbientColor)
		assert.Equal(t, "view.icn", icon.IconFile)
		assert.Equal(t, ps2.DefaultIconFile, icon.IconCopyFile)
	})

	t.Run("numeric flags", func(t *testing.T) {
		icon, err := (&IconSysConfig{Flags: "0x1F", Title: "x"}).Build()
		require.NoError(t, err)
		assert.Equal(t, ps2.IconFlag(0x1F), icon.Flags)
	})
}

func TestIconSysConfig_BuildCardinality(t *testing.T) {
	testCases := []struct {
		name   string
		field  string
		modify func(*IconSysConfig)
	}{
		{"three background colors", "icon_sys.background_colors", func(c *IconSysConfig) {
			c.BackgroundColors = make([]ColorConfig, 3)
		}},
		{"five background colors", "icon_sys.background_colors", func(c *IconSysConfig) {
			c.BackgroundColors = make([]ColorConfig, 5)
		}},
		{"two light directions", "icon_sys.light_directions", func(c *IconSysConfig) {
			c.LightDirections = make([]VectorConfig, 2)
		}},
		{"four light colors", "icon_sys.light_colors", func(c *IconSysConfig) {
			c.LightColors = make([]ColorFConfig, 4)
		}},
		{"empty light colors", "icon_sys.light_colors", func(c *IconSysConfig) {
			c.LightColors = []ColorFConfig{}
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &IconSysConfig{Title: "Save"}
			tc.modify(cfg)

			data, err := NewIconSysCodec().EncodeConfig(cfg)
			assert.Nil(t, data)

			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Contains(t, verr.Error(), "entries")
		})
	}
}

func TestIconSysConfig_BuildValidation(t *testing.T) {
	testCases := []struct {
		name  string
		field string
		cfg   IconSysConfig
	}{
		{"unknown flag name", "icon_sys.flags", IconSysConfig{Flags: "savegame", Title: "x"}},
		{"flag out of range", "icon_sys.flags", IconSysConfig{Flags: "70000", Title: "x"}},
		{"unknown preset", "icon_sys.preset", IconSysConfig{Title: "x", Preset: "neon"}},
		{"linebreak beyond title", "icon_sys.linebreak_pos", IconSysConfig{Title: "Save", LinebreakPos: uint16Ptr(5)}},
		{"title too long", "icon_sys.title", IconSysConfig{Title: strings.Repeat("T", 33)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.cfg.Build()
			var verr *common.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestIconSysConfigFromRecord(t *testing.T) {
	record := sampleIconSys()
	cfg := IconSysConfigFromRecord(record)

	assert.Equal(t, IconFlagSetting("settings"), cfg.Flags)
	assert.Len(t, cfg.BackgroundColors, ps2.BackgroundColorCount)
	assert.Len(t, cfg.LightDirections, ps2.LightCount)
	assert.Len(t, cfg.LightColors, ps2.LightCount)

	rebuilt, err := cfg.Build()
	require.NoError(t, err)
	assert.Equal(t, record, rebuilt)

	record.Flags = 0x1F
	assert.Equal(t, IconFlagSetting("0x1F"), IconSysConfigFromRecord(record).Flags)
}
