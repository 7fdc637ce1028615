package pocket

import (
	"github.com/lucasb-eyer/go-colorful"
)

// NoPocketColor is the display colour for entities outside every pocket.
const NoPocketColor = "#787878"

// Palette returns n distinguishable display colours, spaced evenly around
// the hue wheel.
func Palette(n int) []string {
	colors := make([]string, n)
	for i := range colors {
		hue := 360.0 * float64(i) / float64(n)
		colors[i] = colorful.Hsv(hue, 0.65, 0.9).Hex()
	}
	return colors
}
