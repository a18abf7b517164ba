package watch

import (
	"time"

	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

// EventType defines the type of Watcher event.
type EventType string

const (
	// EventTick is sent on every tick with a fresh countdown.
	EventTick EventType = "tick"
	// EventPrayer is sent when the current prayer changes.
	EventPrayer EventType = "prayer"
	// EventRollover is sent when the schedule moves to a new civil date.
	EventRollover EventType = "rollover"
	// EventError is sent when a schedule could not be obtained.
	EventError EventType = "error"
)

// Event represents a Watcher update for observers.
type Event struct {
	Type    EventType
	Current prayer.Name
	// Started is when Current began; before Fajr it is yesterday's Isha.
	Started   prayer.Instant
	Next      prayer.Instant
	Countdown prayer.Countdown
	Progress  float64
	// Schedule is set on EventRollover and EventPrayer.
	Schedule prayer.Schedule
	Err      error
	At       time.Time
}
