package ps2

import (
	"sort"

	"github.com/hansbonini/psutools/pkg/common"
)

// IconSysPreset bundles the lighting and background settings of an icon.sys
type IconSysPreset struct {
	ID                     string
	Label                  string
	BackgroundTransparency uint32
	BackgroundColors       [BackgroundColorCount]Color
	LightDirections        [LightCount]Vector
	LightColors            [LightCount]ColorF
	AmbientColor           ColorF
}

// DefaultPresetID names the preset used when a config does not pick one
const DefaultPresetID = "default"

var iconSysPresets = map[string]IconSysPreset{
	DefaultPresetID: {
		ID:    DefaultPresetID,
		Label: "Standard (PS2)",
		LightDirections: [LightCount]Vector{
			{0, 0, 1, 0},
			{0, 0, 1, 0},
			{0, 0, 1, 0},
		},
		LightColors: [LightCount]ColorF{
			{1, 1, 1, 1},
			{0.5, 0.5, 0.5, 1},
			{0.3, 0.3, 0.3, 1},
		},
		AmbientColor: ColorF{0.2, 0.2, 0.2, 1},
	},
	"cool_blue": {
		ID:    "cool_blue",
		Label: "Cool Blue",
		BackgroundColors: [BackgroundColorCount]Color{
			{0, 32, 96, 0},
			{0, 48, 128, 0},
			{0, 64, 160, 0},
			{0, 16, 48, 0},
		},
		LightDirections: [LightCount]Vector{
			{0, 0, 1, 0},
			{-0.5, -0.5, 0.5, 0},
			{0.5, -0.5, 0.5, 0},
		},
		LightColors: [LightCount]ColorF{
			{1, 1, 1, 1},
			{0.5, 0.5, 0.6, 1},
			{0.3, 0.3, 0.4, 1},
		},
		AmbientColor: ColorF{0.2, 0.2, 0.2, 1},
	},
	"warm_sunset": {
		ID:    "warm_sunset",
		Label: "Warm Sunset",
		BackgroundColors: [BackgroundColorCount]Color{
			{128, 48, 16, 0},
			{176, 72, 32, 0},
			{208, 112, 48, 0},
			{96, 32, 16, 0},
		},
		LightDirections: [LightCount]Vector{
			{-0.2, -0.4, 0.8, 0},
			{0, -0.6, 0.6, 0},
			{0.3, -0.5, 0.7, 0},
		},
		LightColors: [LightCount]ColorF{
			{1, 0.9, 0.75, 1},
			{0.9, 0.6, 0.3, 1},
			{0.6, 0.3, 0.2, 1},
		},
		AmbientColor: ColorF{0.25, 0.18, 0.12, 1},
	},
}

// LookupPreset returns the preset with the given id. An empty id selects
// the default preset.
func LookupPreset(id string) (IconSysPreset, error) {
	if id == "" {
		id = DefaultPresetID
	}
	preset, ok := iconSysPresets[id]
	if !ok {
		return IconSysPreset{}, common.NewValidationError("icon_sys.preset", PresetIDs(), id)
	}
	return preset, nil
}

// PresetIDs lists the available preset ids in lexical order
func PresetIDs() []string {
	ids := make([]string, 0, len(iconSysPresets))
	for id := range iconSysPresets {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Apply copies the preset's lighting and background onto icon
func (p IconSysPreset) Apply(icon *IconSys) {
	icon.BackgroundTransparency = p.BackgroundTransparency
	icon.BackgroundColors = p.BackgroundColors
	icon.LightDirections = p.LightDirections
	icon.LightColors = p.LightColors
	icon.AmbientColor = p.AmbientColor
}
