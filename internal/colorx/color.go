// Package colorx converts between #RRGGBB strings and HSL triples for the
// profile color picker.
package colorx

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// HSL is a color in degrees (H, 0–360) and percents (S and L, 0–100).
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

// Fallback is what HexToHSL returns for input it cannot parse.
var Fallback = HSL{H: 0, S: 100, L: 50}

var hexPattern = regexp.MustCompile(`(?i)^#?([a-f\d]{2})([a-f\d]{2})([a-f\d]{2})$`)

// HexToHSL parses a six digit hex color, with or without a leading '#', in
// any case. H is rounded to whole degrees in [0,360); S and L to whole
// percents. Malformed input yields Fallback.
//
// The rounding is lossy: converting the result back may differ from the
// input by a few units per channel. Use HexToHSLExact where that matters.
func HexToHSL(hex string) HSL {
	c, ok := HexToHSLExact(hex)
	if !ok {
		return Fallback
	}
	return c.Round()
}

// HexToHSLExact is HexToHSL without rounding. ok is false for malformed input.
func HexToHSLExact(hex string) (c HSL, ok bool) {
	m := hexPattern.FindStringSubmatch(hex)
	if m == nil {
		return HSL{}, false
	}

	r := channel(m[1])
	g := channel(m[2])
	b := channel(m[3])

	hi := math.Max(r, math.Max(g, b))
	lo := math.Min(r, math.Min(g, b))
	l := (hi + lo) / 2

	var h, s float64
	if hi != lo {
		d := hi - lo
		if l > 0.5 {
			s = d / (2 - hi - lo)
		} else {
			s = d / (hi + lo)
		}

		switch hi {
		case r:
			h = (g - b) / d
			if g < b {
				h += 6
			}
		case g:
			h = (b-r)/d + 2
		default:
			h = (r-g)/d + 4
		}
		h /= 6
	}

	return HSL{H: math.Mod(h*360, 360), S: s * 100, L: l * 100}, true
}

func channel(pair string) float64 {
	v, _ := strconv.ParseUint(pair, 16, 8)
	return float64(v) / 255
}

// Round returns c with every component rounded to an integer, H wrapped
// into [0,360).
func (c HSL) Round() HSL {
	return HSL{
		H: math.Mod(math.Round(c.H), 360),
		S: math.Round(c.S),
		L: math.Round(c.L),
	}
}

// Clamp wraps H into [0,360) and limits S and L to [0,100].
func (c HSL) Clamp() HSL {
	h := math.Mod(c.H, 360)
	if h < 0 {
		h += 360
	}
	return HSL{H: h, S: clamp(c.S, 0, 100), L: clamp(c.L, 0, 100)}
}

// HSLToHex renders c as an uppercase #RRGGBB string. Out of range input is
// clamped first and every channel is clamped to [0,255] before encoding.
func HSLToHex(c HSL) string {
	c = c.Clamp()
	s := c.S / 100
	l := c.L / 100
	a := s * math.Min(l, 1-l)

	f := func(n float64) int {
		k := math.Mod(n+c.H/30, 12)
		v := l - a*math.Max(math.Min(math.Min(k-3, 9-k), 1), -1)
		return int(clamp(math.Round(255*v), 0, 255))
	}

	return fmt.Sprintf("#%02X%02X%02X", f(0), f(8), f(4))
}

// NormalizeHex accepts exactly "#RRGGBB" (any case) and returns it uppercased.
// This is the rule for colors typed in by hand.
func NormalizeHex(s string) (string, bool) {
	if len(s) != 7 || s[0] != '#' || !hexPattern.MatchString(s) {
		return "", false
	}
	return strings.ToUpper(s), true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
