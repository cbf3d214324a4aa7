package board

import (
	"fmt"
	"image/color"
	"strings"

	gcolor "github.com/gookit/color"
)

const (
	DefaultColor = "#c5364a"
	DefaultSize  = 6.0
)

var defaultRGBA = color.NRGBA{R: 0xc5, G: 0x36, B: 0x4a, A: 0xff}

// ParseColor understands the CSS forms the toolbar presets use: #rgb,
// #rrggbb, rgb(r,g,b) and hsl(h,s%,l%). Anything else paints in the
// default colour.
func ParseColor(s string) color.NRGBA {
	s = strings.ToLower(strings.TrimSpace(s))

	switch {
	case strings.HasPrefix(s, "#"):
		if rgb := gcolor.HexToRgb(s); len(rgb) == 3 {
			return opaque(rgb[0], rgb[1], rgb[2])
		}

	case strings.HasPrefix(s, "rgb("):
		var r, g, b int
		if _, err := fmt.Sscanf(compact(s), "rgb(%d,%d,%d)", &r, &g, &b); err == nil {
			return opaque(r, g, b)
		}

	case strings.HasPrefix(s, "hsl("):
		var h, sat, l float64
		if _, err := fmt.Sscanf(compact(s), "hsl(%g,%g%%,%g%%)", &h, &sat, &l); err == nil {
			h = h - 360*float64(int(h/360))
			if h < 0 {
				h += 360
			}
			rgb := gcolor.HslToRgb(h/360, clamp01(sat/100), clamp01(l/100))
			if len(rgb) == 3 {
				return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: 0xff}
			}
		}
	}

	return defaultRGBA
}

func opaque(r, g, b int) color.NRGBA {
	return color.NRGBA{R: channel(r), G: channel(g), B: channel(b), A: 0xff}
}

func channel(v int) uint8 {
	return uint8(max(0, min(255, v)))
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}

func compact(s string) string {
	return strings.ReplaceAll(s, " ", "")
}
