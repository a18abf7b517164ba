package display

import (
	"math"
	"strings"
	"testing"
)

func TestProgressBar(t *testing.T) {
	SetEnabled(false)

	tests := []struct {
		fraction float64
		width    int
		want     string
	}{
		{0, 4, "░░░░"},
		{0.5, 4, "██░░"},
		{1, 4, "████"},
		{1.7, 3, "███"},
		{-0.2, 3, "░░░"},
		{math.NaN(), 2, "░░"},
		{0.5, 0, ""},
	}

	for _, tt := range tests {
		if got := ProgressBar(tt.fraction, tt.width); got != tt.want {
			t.Errorf("ProgressBar(%v, %d) = %q, want %q", tt.fraction, tt.width, got, tt.want)
		}
	}
}

func TestCompassPoint(t *testing.T) {
	tests := []struct {
		bearing float64
		want    string
	}{
		{0, "N"},
		{359, "N"},
		{360, "N"},
		{-10, "N"},
		{45, "NE"},
		{58.48, "ENE"},
		{90, "E"},
		{118.99, "ESE"},
		{180, "S"},
		{295.15, "WNW"},
		{339.05, "NNW"},
	}

	for _, tt := range tests {
		if got := CompassPoint(tt.bearing); got != tt.want {
			t.Errorf("CompassPoint(%v) = %q, want %q", tt.bearing, got, tt.want)
		}
	}
}

func TestBearing(t *testing.T) {
	if got := Bearing(118.987); got != "118.99° ESE" {
		t.Errorf("Bearing = %q", got)
	}
}

func TestTurnHint(t *testing.T) {
	SetEnabled(false)

	if got := TurnHint(2, true); !strings.Contains(got, "facing") {
		t.Errorf("aligned hint = %q", got)
	}
	if got := TurnHint(30.25, false); got != "turn right 30.2°" && got != "turn right 30.3°" {
		t.Errorf("right hint = %q", got)
	}
	if got := TurnHint(-90, false); got != "turn left 90.0°" {
		t.Errorf("left hint = %q", got)
	}
}
