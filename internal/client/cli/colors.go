package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/invaders/internal/colorx"
)

var errBadColor = errors.New("enter a preset number, #RRGGBB, hsl H S L or light L")

// Colors prints the preset palette.
func (a *App) Colors(context.Context) error {
	a.println(renderPalette())
	return nil
}

// chooseColor shows the palette and reads a color. An empty answer keeps
// current. Bad input is asked again.
func (a *App) chooseColor(current string) (string, error) {
	if current == "" {
		current = colorx.DefaultProfileColor
	}
	a.println(renderPalette())

	for {
		s, err := GetSimpleText(a.reader,
			fmt.Sprintf("Color: 1-%d, #RRGGBB, 'hsl H S L' or 'light L' (empty keeps %s %s)",
				len(colorx.PresetColors), renderSwatch(current), current), a.out)
		if err != nil {
			return "", err
		}

		hex, err := parseColorChoice(s, current)
		if err == nil {
			a.println("Picked " + renderSwatch(hex) + " " + hex)
			return hex, nil
		}
		a.println(errorStyle.Render(err.Error()))
	}
}

// parseColorChoice turns picker input into an uppercase #RRGGBB. Custom HSL
// and "light L" input keep lightness inside the picker range; "light L"
// changes only the lightness of current.
func parseColorChoice(input, current string) (string, error) {
	input = strings.TrimSpace(input)

	switch {
	case input == "":
		return current, nil

	case strings.HasPrefix(input, "#"):
		hex, ok := colorx.NormalizeHex(input)
		if !ok {
			return "", fmt.Errorf("%w: %q is not #RRGGBB", errBadColor, input)
		}
		return hex, nil

	case strings.HasPrefix(strings.ToLower(input), "hsl"):
		fields := strings.Fields(input[3:])
		if len(fields) != 3 {
			return "", errBadColor
		}
		var v [3]float64
		for i, f := range fields {
			n, err := strconv.ParseFloat(strings.TrimSuffix(f, "%"), 64)
			if err != nil {
				return "", fmt.Errorf("%w: %q", errBadColor, f)
			}
			v[i] = n
		}
		return colorx.HSLToHex(colorx.HSL{H: v[0], S: v[1]}.WithLightness(v[2])), nil

	case strings.HasPrefix(strings.ToLower(input), "light"):
		l, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(input[5:]), "%"), 64)
		if err != nil {
			return "", fmt.Errorf("%w: %q", errBadColor, input)
		}
		return adjustLightness(current, l), nil
	}

	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > len(colorx.PresetColors) {
		return "", errBadColor
	}
	return colorx.PresetColors[n-1], nil
}

// adjustLightness re-renders hex at lightness l, keeping hue and saturation.
func adjustLightness(hex string, l float64) string {
	c, ok := colorx.HexToHSLExact(hex)
	if !ok {
		c = colorx.Fallback
	}
	return colorx.HSLToHex(c.WithLightness(l))
}
