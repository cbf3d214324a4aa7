package middleware

import (
	"fmt"
	"hash/fnv"

	"github.com/gookit/color"
)

// ColorFromName picks a stable pen colour for a display name.
func ColorFromName(name string) string {
	h := fnv.New32a()
	h.Write([]byte(name))
	hue := float64(h.Sum32()%360) / 360

	rgb := color.HslToRgb(hue, 0.7, 0.55)
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}
