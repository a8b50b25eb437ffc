package cli

import (
	"testing"

	"github.com/dmitrijs2005/invaders/internal/colorx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColorChoice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		current string
		want    string
		wantErr bool
	}{
		{name: "empty keeps current", input: "", current: "#123456", want: "#123456"},
		{name: "first preset", input: "1", current: "#123456", want: colorx.PresetColors[0]},
		{name: "last preset", input: "24", current: "#123456", want: colorx.PresetColors[23]},
		{name: "preset out of range", input: "25", wantErr: true},
		{name: "preset zero", input: "0", wantErr: true},
		{name: "manual hex is uppercased", input: "#abcdef", want: "#ABCDEF"},
		{name: "manual hex needs six digits", input: "#abc", wantErr: true},
		{name: "manual hex needs hash", input: "abcdef", wantErr: true},
		{name: "hsl", input: "hsl 0 100 50", want: "#FF0000"},
		{name: "hsl with percent signs", input: "HSL 120 100% 50%", want: "#00FF00"},
		{name: "hsl lightness clamped high", input: "hsl 0 0 100", want: "#E6E6E6"},
		{name: "hsl lightness clamped low", input: "hsl 0 0 0", want: "#1A1A1A"},
		{name: "hsl missing component", input: "hsl 10 20", wantErr: true},
		{name: "hsl not a number", input: "hsl a b c", wantErr: true},
		{name: "lightness of current", input: "light 50", current: "#000000", want: "#808080"},
		{name: "lightness clamped", input: "light 95", current: "#FF0000", want: "#FFCCCC"},
		{name: "lightness not a number", input: "light up", current: "#FF0000", wantErr: true},
		{name: "garbage", input: "blue", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := parseColorChoice(tc.input, tc.current)
			if tc.wantErr {
				require.ErrorIs(t, err, errBadColor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAdjustLightness_KeepsHue(t *testing.T) {
	got := adjustLightness("#3B82F6", 30)

	before, ok := colorx.HexToHSLExact("#3B82F6")
	require.True(t, ok)
	after, ok := colorx.HexToHSLExact(got)
	require.True(t, ok)

	assert.InDelta(t, before.H, after.H, 1)
	assert.InDelta(t, 30, after.L, 0.5)
}

func TestAdjustLightness_MalformedUsesFallback(t *testing.T) {
	assert.Equal(t, "#FF0000", adjustLightness("nope", 50))
}
