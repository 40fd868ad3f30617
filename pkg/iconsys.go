// Package pkg provides functionality for packaging PlayStation 2 saves.
// This file contains the icon.sys encoder and decoder.
package pkg

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/hansbonini/psutools/pkg/common"
	"github.com/hansbonini/psutools/pkg/ps2"
)

// IconSysCodec converts between ps2.IconSys and the 964-byte record
type IconSysCodec struct{}

// NewIconSysCodec creates a new icon.sys codec instance
func NewIconSysCodec() *IconSysCodec {
	return &IconSysCodec{}
}

// EncodeConfig validates cfg and encodes the resulting record
func (c *IconSysCodec) EncodeConfig(cfg *IconSysConfig) ([]byte, error) {
	icon, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return c.Encode(icon)
}

// Encode serializes icon into the fixed icon.sys layout
func (c *IconSysCodec) Encode(icon *ps2.IconSys) ([]byte, error) {
	title, linebreak, err := encodeTitle(icon.Title, icon.LinebreakPos)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, ps2.IconSysSize)
	copy(buf[0:4], ps2.IconSysMagic)
	binary.LittleEndian.PutUint16(buf[ps2.IconSysFlagsOffset:], uint16(icon.Flags))
	binary.LittleEndian.PutUint16(buf[ps2.IconSysLinebreakOffset:], linebreak)
	binary.LittleEndian.PutUint32(buf[ps2.IconSysTransparencyOffset:], icon.BackgroundTransparency)

	offset := ps2.IconSysBackgroundOffset
	for _, color := range icon.BackgroundColors {
		putColor(buf[offset:], color)
		offset += 16
	}
	for _, dir := range icon.LightDirections {
		putFloats(buf[offset:], dir.X, dir.Y, dir.Z, dir.W)
		offset += 16
	}
	for _, color := range icon.LightColors {
		putFloats(buf[offset:], color.R, color.G, color.B, color.A)
		offset += 16
	}
	putFloats(buf[offset:], icon.AmbientColor.R, icon.AmbientColor.G, icon.AmbientColor.B, icon.AmbientColor.A)

	copy(buf[ps2.IconSysTitleOffset : ps2.IconSysTitleOffset+ps2.IconSysTitleSize], title)

	names := []struct {
		field  string
		value  string
		offset int
	}{
		{"icon_sys.icon_file", icon.IconFile, ps2.IconSysIconFileOffset},
		{"icon_sys.icon_copy_file", icon.IconCopyFile, ps2.IconSysCopyFileOffset},
		{"icon_sys.icon_delete_file", icon.IconDeleteFile, ps2.IconSysDeleteFileOffset},
	}
	for _, name := range names {
		if !isASCII(name.value) {
			return nil, common.NewValidationError(name.field, "ASCII file name", fmt.Sprintf("%q", name.value))
		}
		field := buf[name.offset : name.offset+ps2.IconSysIconNameSize]
		if err := common.PutCString(field, name.value); err != nil {
			return nil, common.NewValidationError(name.field, fmt.Sprintf("at most %d bytes", ps2.IconSysIconNameSize-1), len(name.value))
		}
	}

	common.LogDebug(common.DebugIconSysTitle, icon.Title, icon.LinebreakPos, linebreak)
	return buf, nil
}

// Decode parses an icon.sys record. Unknown flag codes are kept as raw values.
func (c *IconSysCodec) Decode(data []byte) (*ps2.IconSys, error) {
	if len(data) < ps2.IconSysSize {
		return nil, &common.ParseError{Reason: fmt.Sprintf("icon.sys needs %d bytes, got %d", ps2.IconSysSize, len(data))}
	}
	if err := common.ValidateMagic(data, ps2.IconSysMagic, "icon.sys"); err != nil {
		return nil, err
	}

	icon := &ps2.IconSys{
		Flags:                  ps2.IconFlag(binary.LittleEndian.Uint16(data[ps2.IconSysFlagsOffset:])),
		BackgroundTransparency: binary.LittleEndian.Uint32(data[ps2.IconSysTransparencyOffset:]),
	}

	offset := ps2.IconSysBackgroundOffset
	for i := range icon.BackgroundColors {
		icon.BackgroundColors[i] = readColor(data[offset:])
		offset += 16
	}
	for i := range icon.LightDirections {
		x, y, z, w := readFloats(data[offset:])
		icon.LightDirections[i] = ps2.Vector{X: x, Y: y, Z: z, W: w}
		offset += 16
	}
	for i := range icon.LightColors {
		r, g, b, a := readFloats(data[offset:])
		icon.LightColors[i] = ps2.ColorF{R: r, G: g, B: b, A: a}
		offset += 16
	}
	r, g, b, a := readFloats(data[offset:])
	icon.AmbientColor = ps2.ColorF{R: r, G: g, B: b, A: a}

	linebreak := int(binary.LittleEndian.Uint16(data[ps2.IconSysLinebreakOffset:]))
	title, pos, err := decodeTitle(data[ps2.IconSysTitleOffset : ps2.IconSysTitleOffset+ps2.IconSysTitleSize], linebreak)
	if err != nil {
		return nil, err
	}
	icon.Title = title
	icon.LinebreakPos = pos

	icon.IconFile = common.ParseCString(data[ps2.IconSysIconFileOffset:ps2.IconSysCopyFileOffset])
	icon.IconCopyFile = common.ParseCString(data[ps2.IconSysCopyFileOffset:ps2.IconSysDeleteFileOffset])
	icon.IconDeleteFile = common.ParseCString(data[ps2.IconSysDeleteFileOffset : ps2.IconSysDeleteFileOffset+ps2.IconSysIconNameSize])

	return icon, nil
}

// encodeTitle returns the Shift-JIS title and the linebreak as a byte offset
func encodeTitle(title string, linebreakPos uint16) ([]byte, uint16, error) {
	runes := []rune(title)
	if len(runes) > ps2.IconSysMaxTitle {
		return nil, 0, common.NewValidationError("icon_sys.title", fmt.Sprintf("at most %d characters", ps2.IconSysMaxTitle), fmt.Sprintf("%d characters", len(runes)))
	}
	if int(linebreakPos) > len(runes) {
		return nil, 0, common.NewValidationError("icon_sys.linebreak_pos", fmt.Sprintf("at most the title length (%d)", len(runes)), linebreakPos)
	}

	encoded, err := common.EncodeSJIS(title)
	if err != nil {
		return nil, 0, common.NewValidationError("icon_sys.title", "Shift-JIS representable text", err)
	}
	if len(encoded) >= ps2.IconSysTitleSize {
		return nil, 0, common.NewValidationError("icon_sys.title", fmt.Sprintf("at most %d encoded bytes", ps2.IconSysTitleSize-1), len(encoded))
	}

	firstLine, err := common.EncodeSJIS(string(runes[:linebreakPos]))
	if err != nil {
		return nil, 0, common.NewValidationError("icon_sys.title", "Shift-JIS representable text", err)
	}
	offset, err := common.SafeIntToUint16(len(firstLine))
	if err != nil {
		return nil, 0, common.NewValidationError("icon_sys.linebreak_pos", "offset within the title", err)
	}
	return encoded, offset, nil
}

// decodeTitle converts the title buffer and byte linebreak back to text
// and a character offset. Out of range offsets are clamped to the title.
func decodeTitle(field []byte, linebreak int) (string, uint16, error) {
	raw := field
	if i := bytes.IndexByte(field, 0); i >= 0 {
		raw = field[:i]
	}
	if linebreak > len(raw) {
		linebreak = len(raw)
	}

	title, err := common.DecodeSJIS(raw)
	if err != nil {
		return "", 0, &common.ParseError{Reason: fmt.Sprintf("icon.sys title: %v", err)}
	}
	firstLine, err := common.DecodeSJIS(raw[:linebreak])
	if err != nil {
		return "", 0, &common.ParseError{Reason: fmt.Sprintf("icon.sys title: %v", err)}
	}

	pos, err := common.SafeIntToUint16(utf8.RuneCountInString(firstLine))
	if err != nil {
		return "", 0, &common.ParseError{Reason: err.Error()}
	}
	return title, pos, nil
}

func putColor(dst []byte, c ps2.Color) {
	binary.LittleEndian.PutUint32(dst[0:4], uint32(c.R))
	binary.LittleEndian.PutUint32(dst[4:8], uint32(c.G))
	binary.LittleEndian.PutUint32(dst[8:12], uint32(c.B))
	binary.LittleEndian.PutUint32(dst[12:16], uint32(c.A))
}

func readColor(src []byte) ps2.Color {
	return ps2.Color{
		R: common.SafeUint32ToUint8(binary.LittleEndian.Uint32(src[0:4])),
		G: common.SafeUint32ToUint8(binary.LittleEndian.Uint32(src[4:8])),
		B: common.SafeUint32ToUint8(binary.LittleEndian.Uint32(src[8:12])),
		A: common.SafeUint32ToUint8(binary.LittleEndian.Uint32(src[12:16])),
	}
}

func putFloats(dst []byte, a, b, c, d float32) {
	binary.LittleEndian.PutUint32(dst[0:4], math.Float32bits(a))
	binary.LittleEndian.PutUint32(dst[4:8], math.Float32bits(b))
	binary.LittleEndian.PutUint32(dst[8:12], math.Float32bits(c))
	binary.LittleEndian.PutUint32(dst[12:16], math.Float32bits(d))
}

func readFloats(src []byte) (a, b, c, d float32) {
	a = math.Float32frombits(binary.LittleEndian.Uint32(src[0:4]))
	b = math.Float32frombits(binary.LittleEndian.Uint32(src[4:8]))
	c = math.Float32frombits(binary.LittleEndian.Uint32(src[8:12]))
	d = math.Float32frombits(binary.LittleEndian.Uint32(src[12:16]))
	return a, b, c, d
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Build validates the config and produces the record form. The preset
// supplies lighting and background; explicit fields override it.
func (c *IconSysConfig) Build() (*ps2.IconSys, error) {
	if c == nil {
		return nil, common.NewValidationError("icon_sys", "a metadata table", "nothing")
	}

	flags := ps2.IconFlagSaveFile
	if c.Flags != "" {
		parsed, err := ps2.ParseIconFlag(string(c.Flags))
		if err != nil {
			return nil, err
		}
		flags = parsed
	}

	preset, err := ps2.LookupPreset(c.Preset)
	if err != nil {
		return nil, err
	}

	icon := &ps2.IconSys{
		Flags:          flags,
		Title:          c.Title,
		IconFile:       ps2.DefaultIconFile,
		IconCopyFile:   ps2.DefaultIconFile,
		IconDeleteFile: ps2.DefaultIconFile,
	}
	preset.Apply(icon)

	if c.LinebreakPos != nil {
		icon.LinebreakPos = *c.LinebreakPos
	}
	if c.BackgroundTransparency != nil {
		icon.BackgroundTransparency = *c.BackgroundTransparency
		common.LogDebug(common.DebugIconSysOverride, "background_transparency")
	}

	if c.BackgroundColors != nil {
		if len(c.BackgroundColors) != ps2.BackgroundColorCount {
			return nil, countError("icon_sys.background_colors", ps2.BackgroundColorCount, len(c.BackgroundColors))
		}
		for i, color := range c.BackgroundColors {
			icon.BackgroundColors[i] = ps2.Color{R: color.R, G: color.G, B: color.B, A: color.A}
		}
		common.LogDebug(common.DebugIconSysOverride, "background_colors")
	}
	if c.LightDirections != nil {
		if len(c.LightDirections) != ps2.LightCount {
			return nil, countError("icon_sys.light_directions", ps2.LightCount, len(c.LightDirections))
		}
		for i, dir := range c.LightDirections {
			icon.LightDirections[i] = ps2.Vector{X: dir.X, Y: dir.Y, Z: dir.Z, W: dir.W}
		}
		common.LogDebug(common.DebugIconSysOverride, "light_directions")
	}
	if c.LightColors != nil {
		if len(c.LightColors) != ps2.LightCount {
			return nil, countError("icon_sys.light_colors", ps2.LightCount, len(c.LightColors))
		}
		for i, color := range c.LightColors {
			icon.LightColors[i] = ps2.ColorF{R: color.R, G: color.G, B: color.B, A: color.A}
		}
		common.LogDebug(common.DebugIconSysOverride, "light_colors")
	}
	if c.AmbientColor != nil {
		icon.AmbientColor = ps2.ColorF{R: c.AmbientColor.R, G: c.AmbientColor.G, B: c.AmbientColor.B, A: c.AmbientColor.A}
		common.LogDebug(common.DebugIconSysOverride, "ambient_color")
	}

	if c.IconFile != "" {
		icon.IconFile = c.IconFile
	}
	if c.IconCopyFile != "" {
		icon.IconCopyFile = c.IconCopyFile
	}
	if c.IconDeleteFile != "" {
		icon.IconDeleteFile = c.IconDeleteFile
	}

	// title limits
	if _, _, err := encodeTitle(icon.Title, icon.LinebreakPos); err != nil {
		return nil, err
	}
	return icon, nil
}

func countError(field string, expected, actual int) error {
	return common.NewValidationError(field, fmt.Sprintf("%d entries", expected), fmt.Sprintf("%d entries", actual))
}

// IconSysConfigFromRecord maps a decoded record back to its editable form.
// Every field is written out explicitly so the result does not depend on
// a preset.
func IconSysConfigFromRecord(icon *ps2.IconSys) *IconSysConfig {
	linebreak := icon.LinebreakPos
	transparency := icon.BackgroundTransparency
	ambient := ColorFConfig{R: icon.AmbientColor.R, G: icon.AmbientColor.G, B: icon.AmbientColor.B, A: icon.AmbientColor.A}

	cfg := &IconSysConfig{
		Flags:                  IconFlagSetting(icon.Flags.String()),
		Title:                  icon.Title,
		LinebreakPos:           &linebreak,
		BackgroundTransparency: &transparency,
		BackgroundColors:       make([]ColorConfig, 0, ps2.BackgroundColorCount),
		LightDirections:        make([]VectorConfig, 0, ps2.LightCount),
		LightColors:            make([]ColorFConfig, 0, ps2.LightCount),
		AmbientColor:           &ambient,
		IconFile:               icon.IconFile,
		IconCopyFile:           icon.IconCopyFile,
		IconDeleteFile:         icon.IconDeleteFile,
	}
	for _, color := range icon.BackgroundColors {
		cfg.BackgroundColors = append(cfg.BackgroundColors, ColorConfig{R: color.R, G: color.G, B: color.B, A: color.A})
	}
	for _, dir := range icon.LightDirections {
		cfg.LightDirections = append(cfg.LightDirections, VectorConfig{X: dir.X, Y: dir.Y, Z: dir.Z, W: dir.W})
	}
	for _, color := range icon.LightColors {
		cfg.LightColors = append(cfg.LightColors, ColorFConfig{R: color.R, G: color.G, B: color.B, A: color.A})
	}
	return cfg
}
