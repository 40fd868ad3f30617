// Package ps2 provides PlayStation 2 memory card structures and functionality.
// This file contains the icon.sys record consumed by the save browser.
package ps2

import (
	"strconv"
	"strings"

	"github.com/hansbonini/psutools/pkg/common"
)

// icon.sys layout constants
const (
	IconSysMagic        = "PS2D"
	IconSysFileName     = "icon.sys"
	IconSysSize         = 964
	IconSysTitleSize    = 68  // Shift-JIS title buffer
	IconSysIconNameSize = 64  // Each icon model filename
	IconSysReservedSize = 512 // Trailing reserved block
	IconSysMaxTitle     = 32  // Two display lines of 16 characters
	DefaultIconFile     = "icon.icn"

	BackgroundColorCount = 4
	LightCount           = 3
)

// Field offsets inside the record
const (
	IconSysFlagsOffset        = 0x004
	IconSysLinebreakOffset    = 0x006
	IconSysTransparencyOffset = 0x00C
	IconSysBackgroundOffset   = 0x010
	IconSysLightDirOffset     = 0x050
	IconSysLightColorOffset   = 0x080
	IconSysAmbientOffset      = 0x0B0
	IconSysTitleOffset        = 0x0C0
	IconSysIconFileOffset     = 0x104
	IconSysCopyFileOffset     = 0x144
	IconSysDeleteFileOffset   = 0x184
)

// Color is an integer RGBA color. Each component is stored as a u32.
type Color struct {
	R, G, B, A uint8
}

// ColorF is a floating point RGBA color
type ColorF struct {
	R, G, B, A float32
}

// Vector is a four component light direction
type Vector struct {
	X, Y, Z, W float32
}

// IconSys is the decoded icon.sys record. Array lengths are the
// cardinalities the console's fixed 3-light renderer expects.
type IconSys struct {
	Flags                  IconFlag
	Title                  string
	LinebreakPos           uint16 // Character offset where the second line begins
	BackgroundTransparency uint32
	BackgroundColors       [BackgroundColorCount]Color // top-left, top-right, bottom-left, bottom-right
	LightDirections        [LightCount]Vector
	LightColors            [LightCount]ColorF
	AmbientColor           ColorF
	IconFile               string
	IconCopyFile           string
	IconDeleteFile         string
}

// IconFlag is the save-type code shown by the browser
type IconFlag uint16

// Known save-type codes. Code 5 only exists on later BIOS revisions.
const (
	IconFlagSaveFile      IconFlag = 0
	IconFlagSoftware      IconFlag = 1
	IconFlagUnrecognized  IconFlag = 2
	IconFlagPocketStation IconFlag = 3
	IconFlagSettings      IconFlag = 4
	IconFlagSystemDriver  IconFlag = 5
)

var iconFlagNames = map[IconFlag]string{
	IconFlagSaveFile:      "save file",
	IconFlagSoftware:      "software",
	IconFlagUnrecognized:  "unrecognized data",
	IconFlagPocketStation: "pocketstation software",
	IconFlagSettings:      "settings",
	IconFlagSystemDriver:  "system driver",
}

// keys are normalized: lowercase without spaces, underscores or parentheses
var iconFlagAliases = map[string]IconFlag{
	"savefile":              IconFlagSaveFile,
	"ps2savefile":           IconFlagSaveFile,
	"software":              IconFlagSoftware,
	"softwareps2":           IconFlagSoftware,
	"application":           IconFlagSoftware,
	"unrecognizeddata":      IconFlagUnrecognized,
	"unrecognized":          IconFlagUnrecognized,
	"data":                  IconFlagUnrecognized,
	"pocketstationsoftware": IconFlagPocketStation,
	"softwarepocketstation": IconFlagPocketStation,
	"pocketstation":         IconFlagPocketStation,
	"settings":              IconFlagSettings,
	"settingsps2":           IconFlagSettings,
	"systemdriver":          IconFlagSystemDriver,
	"driver":                IconFlagSystemDriver,
}

// Name returns the canonical name of a known code
func (f IconFlag) Name() (string, bool) {
	name, ok := iconFlagNames[f]
	return name, ok
}

// Known reports whether the code belongs to the named enumeration
func (f IconFlag) Known() bool {
	_, ok := iconFlagNames[f]
	return ok
}

// String returns the canonical name, or the raw value in hex
func (f IconFlag) String() string {
	if name, ok := f.Name(); ok {
		return name
	}
	return "0x" + strings.ToUpper(strconv.FormatUint(uint64(f), 16))
}

// ParseIconFlag accepts a descriptive name or a decimal/hex number
func ParseIconFlag(value string) (IconFlag, error) {
	trimmed := strings.TrimSpace(value)
	if flag, ok := iconFlagAliases[normalizeFlagName(trimmed)]; ok {
		return flag, nil
	}

	base, digits := 10, trimmed
	if rest, ok := strings.CutPrefix(strings.ToLower(trimmed), "0x"); ok {
		base, digits = 16, rest
	}
	code, err := strconv.ParseUint(digits, base, 16)
	if err != nil {
		return 0, common.NewValidationError("icon_sys.flags", "a known flag name or a number 0-65535", strconv.Quote(value))
	}
	return IconFlag(code), nil
}

func normalizeFlagName(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		switch r {
		case ' ', '\t', '_', '(', ')':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
