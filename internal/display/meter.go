package display

import (
	"fmt"
	"math"
	"strings"
)

// ProgressBar renders fraction (clamped to [0, 1]) as a bar of width cells.
func ProgressBar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	filled := int(math.Round(fraction * float64(width)))
	return Green(strings.Repeat("█", filled)) + Gray(strings.Repeat("░", width-filled))
}

var compassPoints = [...]string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// CompassPoint names the 16-wind direction nearest to bearing (degrees
// clockwise from north).
func CompassPoint(bearing float64) string {
	b := math.Mod(math.Mod(bearing, 360)+360, 360)
	idx := int(math.Round(b/22.5)) % len(compassPoints)
	return compassPoints[idx]
}

// Bearing formats a bearing as "118.99° ESE".
func Bearing(bearing float64) string {
	return fmt.Sprintf("%.2f° %s", bearing, CompassPoint(bearing))
}

// TurnHint tells the user which way to rotate, given the signed difference
// between the target bearing and the current heading.
func TurnHint(delta float64, aligned bool) string {
	switch {
	case aligned:
		return Green("✓ facing the Qibla")
	case delta > 0:
		return Yellow(fmt.Sprintf("turn right %.1f°", delta))
	default:
		return Yellow(fmt.Sprintf("turn left %.1f°", -delta))
	}
}
