// Package cache keeps fetched schedules and geolocation results between runs.
package cache

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/smokyabdulrahman/miqat/internal/geo"
)

const geoTTL = 24 * time.Hour

// Cache stores schedules fetched from a remote source and the last detected
// location. Loads return nil on a miss; a broken cache is never fatal.
type Cache interface {
	LoadSchedule(key Key) *ScheduleEntry
	SaveSchedule(key Key, entry *ScheduleEntry) error
	LoadGeo() *geo.Location
	SaveGeo(loc *geo.Location) error
}

// Key holds every parameter that affects a schedule.
type Key struct {
	Date      time.Time
	Latitude  float64
	Longitude float64
	City      string
	Country   string
	Method    string
	Source    string
}

// day returns the key's civil date as YYYY-MM-DD.
func (k Key) day() string {
	return k.Date.Format("2006-01-02")
}

// hash builds a deterministic digest so different locations and methods get
// separate entries.
func (k Key) hash() string {
	raw := fmt.Sprintf("%s|%.6f|%.6f|%s|%s|%s|%s", k.day(), k.Latitude, k.Longitude, k.City, k.Country, k.Method, k.Source)
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h[:8])
}

// ScheduleEntry stores a day's raw timings along with metadata for validation.
type ScheduleEntry struct {
	Date     string            `json:"date"` // YYYY-MM-DD
	Method   string            `json:"method"`
	Source   string            `json:"source"`
	Timings  map[string]string `json:"timings"` // lowercase prayer name -> "HH:MM"
	Timezone string            `json:"timezone,omitempty"`
	Hijri    string            `json:"hijri,omitempty"`
}

// GeoEntry stores a cached geolocation result with a timestamp.
type GeoEntry struct {
	Location geo.Location `json:"location"`
	CachedAt time.Time    `json:"cached_at"`
}
