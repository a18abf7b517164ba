// Package prayer computes daily prayer schedules and the values derived from
// them: the current prayer, the next prayer and the countdown to it.
package prayer

import (
	"fmt"
	"strings"
	"time"
)

// Name identifies one of the six daily instants.
type Name int

const (
	Fajr Name = iota
	Sunrise
	Dhuhr
	Asr
	Maghrib
	Isha
)

// Names lists every instant in chronological order.
var Names = []Name{Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha}

var nameStrings = [...]string{"Fajr", "Sunrise", "Dhuhr", "Asr", "Maghrib", "Isha"}

// shortNames maps each instant to a one-letter abbreviation for status bars.
var shortNames = [...]string{"F", "S", "D", "A", "M", "I"}

func (n Name) String() string {
	if n < Fajr || n > Isha {
		return fmt.Sprintf("Name(%d)", int(n))
	}
	return nameStrings[n]
}

// Short returns the abbreviated name, e.g. "A" for Asr.
func (n Name) Short() string {
	if n < Fajr || n > Isha {
		return "?"
	}
	return shortNames[n]
}

// Key returns the lowercase form used in JSON output and config values.
func (n Name) Key() string {
	return strings.ToLower(n.String())
}

// MarshalText implements encoding.TextMarshaler.
func (n Name) MarshalText() ([]byte, error) {
	if n < Fajr || n > Isha {
		return nil, fmt.Errorf("invalid prayer name %d", int(n))
	}
	return []byte(n.Key()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Name) UnmarshalText(text []byte) error {
	parsed, err := ParseName(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// ParseName resolves a prayer name case-insensitively. "Zuhr" and "Duhr" are
// accepted as spellings of Dhuhr.
func ParseName(s string) (Name, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "zuhr", "duhr", "dhuhur":
		return Dhuhr, nil
	}
	for i, n := range nameStrings {
		if strings.ToLower(n) == key {
			return Name(i), nil
		}
	}
	return 0, fmt.Errorf("unknown prayer name %q; valid names: %s", s, strings.Join(nameStrings[:], ", "))
}

// ParseNames parses a comma-separated list such as "Fajr,Dhuhr,Isha".
func ParseNames(list string) ([]Name, error) {
	var out []Name
	for _, part := range strings.Split(list, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		n, err := ParseName(part)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Coordinate is a point on the earth in decimal degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate reports whether the coordinate is inside the valid ranges.
func (c Coordinate) Validate() error {
	if !(c.Latitude >= -90 && c.Latitude <= 90) {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Latitude)
	}
	if !(c.Longitude >= -180 && c.Longitude <= 180) {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Longitude)
	}
	return nil
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.4f, %.4f", c.Latitude, c.Longitude)
}

// Instant is a named point in time within a schedule. A zero Time means the
// instant could not be computed for that day (see Available).
type Instant struct {
	Name Name      `json:"name"`
	Time time.Time `json:"time"`
}

// Available reports whether the instant was computed. Near the poles the sun
// may never reach the twilight angle a method asks for.
func (i Instant) Available() bool {
	return !i.Time.IsZero()
}

// Params is the full input of a schedule computation.
type Params struct {
	Coordinate Coordinate
	// Date is the civil date, interpreted in Location. The clock part is ignored.
	Date     time.Time
	Method   Method
	Location *time.Location
	// HighLatitude substitutes unreachable twilight instants. The zero value
	// leaves them unavailable.
	HighLatitude HighLatitudeRule
}

// location returns the zone the schedule is expressed in.
func (p Params) location() *time.Location {
	if p.Location != nil {
		return p.Location
	}
	return p.Date.Location()
}

// Day returns the civil date of the parameters at midnight in their location.
func (p Params) Day() time.Time {
	loc := p.location()
	y, m, d := p.Date.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Tomorrow returns a copy of p for the following civil date.
func (p Params) Tomorrow() Params {
	next := p
	next.Date = p.Day().AddDate(0, 0, 1)
	return next
}

// Yesterday returns a copy of p for the previous civil date.
func (p Params) Yesterday() Params {
	prev := p
	prev.Date = p.Day().AddDate(0, 0, -1)
	return prev
}

// Schedule holds the six instants of one civil date for one coordinate and
// method. A schedule is never mutated once computed.
type Schedule struct {
	Params   Params
	Instants [6]Instant
}

// Get returns the instant with the given name.
func (s Schedule) Get(n Name) Instant {
	return s.Instants[n]
}

// Date returns the civil date the schedule covers.
func (s Schedule) Date() time.Time {
	return s.Params.Day()
}

// Complete reports whether all six instants were computed.
func (s Schedule) Complete() bool {
	for _, in := range s.Instants {
		if !in.Available() {
			return false
		}
	}
	return true
}

// Ordered reports whether the available instants are strictly increasing.
func (s Schedule) Ordered() bool {
	var prev time.Time
	for _, in := range s.Instants {
		if !in.Available() {
			continue
		}
		if !prev.IsZero() && !in.Time.After(prev) {
			return false
		}
		prev = in.Time
	}
	return true
}

// Select returns the available instants whose names appear in names, in
// chronological order. A nil names selects all six.
func (s Schedule) Select(names []Name) []Instant {
	var out []Instant
	for _, in := range s.Instants {
		if !in.Available() {
			continue
		}
		if names != nil && !containsName(names, in.Name) {
			continue
		}
		out = append(out, in)
	}
	return out
}

func containsName(names []Name, n Name) bool {
	for _, x := range names {
		if x == n {
			return true
		}
	}
	return false
}
