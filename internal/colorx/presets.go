package colorx

// DefaultProfileColor is assigned to profiles created without a color.
const DefaultProfileColor = "#3B82F6"

// Lightness bounds offered by the picker slider. Extremes are excluded
// because pure black or white swatches are unreadable on the map.
const (
	MinPickerLightness = 10
	MaxPickerLightness = 90
)

// PresetColors are the swatches shown before the custom picker.
var PresetColors = []string{
	"#EF4444", "#F87171",
	"#EC4899", "#F472B6",
	"#F97316", "#FB923C",
	"#F59E0B", "#FBBF24",
	"#22C55E", "#4ADE80",
	"#10B981", "#34D399",
	"#3B82F6", "#60A5FA",
	"#06B6D4", "#22D3EE",
	"#8B5CF6", "#A78BFA",
	"#A855F7", "#C084FC",
	"#6B7280", "#9CA3AF",
	"#78716C", "#A8A29E",
}

// IsPreset reports whether hex is one of PresetColors. Case is ignored.
func IsPreset(hex string) bool {
	norm, ok := NormalizeHex(hex)
	if !ok {
		return false
	}
	for _, p := range PresetColors {
		if p == norm {
			return true
		}
	}
	return false
}

// WithLightness returns c with L replaced and limited to the picker range.
func (c HSL) WithLightness(l float64) HSL {
	c.L = clamp(l, MinPickerLightness, MaxPickerLightness)
	return c
}
