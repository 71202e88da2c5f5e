package imaging

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// namedColors maps the CSS colour names the whiteboard uses to hex values.
var namedColors = map[string]string{
	"black":  "#000000",
	"white":  "#ffffff",
	"red":    "#ff0000",
	"green":  "#008000",
	"blue":   "#0000ff",
	"gray":   "#808080",
	"grey":   "#808080",
	"orange": "#ffa500",
	"purple": "#800080",
	"yellow": "#ffff00",
}

// ParseColor converts a CSS-style colour string into a color.Color.
//
// Accepted forms:
//   - "#rgb" and "#rrggbb" hex
//   - "rgb(r, g, b)" and "rgba(r, g, b, a)" with a in 0-1
//   - a small set of named colours and "transparent"
//
// Empty or unparseable strings return fallback.
func ParseColor(s string, fallback color.Color) color.Color {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return fallback
	}
	if s == "transparent" {
		return color.Transparent
	}
	if hex, ok := namedColors[s]; ok {
		s = hex
	}

	if strings.HasPrefix(s, "#") {
		c, err := colorful.Hex(s)
		if err != nil {
			return fallback
		}
		return toNRGBA(c, 1)
	}

	c, alpha, err := parseRGBFunc(s)
	if err != nil {
		return fallback
	}
	return toNRGBA(c, alpha)
}

// parseRGBFunc parses "rgb(...)" and "rgba(...)" notation.
func parseRGBFunc(s string) (colorful.Color, float64, error) {
	var r, g, b uint8
	alpha := 1.0

	compact := strings.ReplaceAll(s, " ", "")
	switch {
	case strings.HasPrefix(compact, "rgba("):
		if _, err := fmt.Sscanf(compact, "rgba(%d,%d,%d,%g)", &r, &g, &b, &alpha); err != nil {
			return colorful.Color{}, 0, fmt.Errorf("invalid rgba colour %q: %w", s, err)
		}
	case strings.HasPrefix(compact, "rgb("):
		if _, err := fmt.Sscanf(compact, "rgb(%d,%d,%d)", &r, &g, &b); err != nil {
			return colorful.Color{}, 0, fmt.Errorf("invalid rgb colour %q: %w", s, err)
		}
	default:
		return colorful.Color{}, 0, fmt.Errorf("unsupported colour %q", s)
	}

	if alpha < 0 {
		alpha = 0
	}
	if alpha > 1 {
		alpha = 1
	}
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}, alpha, nil
}

func toNRGBA(c colorful.Color, alpha float64) color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(alpha*255 + 0.5)}
}

// HexColor formats a colour as "#RRGGBB", dropping alpha.
func HexColor(c color.Color) string {
	cf, _ := colorful.MakeColor(c)
	return strings.ToUpper(cf.Hex())
}
