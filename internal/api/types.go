package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

// Response represents the top-level Al Adhan API response.
type Response struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   Data   `json:"data"`
}

func (r *Response) status() (int, string) { return r.Code, r.Status }

// Data holds the prayer timings, date info, and metadata.
type Data struct {
	Timings Timings  `json:"timings"`
	Date    DateInfo `json:"date"`
	Meta    Meta     `json:"meta"`
}

// Timings contains all prayer and event times as HH:MM strings.
// The API may include a timezone suffix like " (BST)" which we strip during parsing.
type Timings struct {
	Fajr       string `json:"Fajr"`
	Sunrise    string `json:"Sunrise"`
	Dhuhr      string `json:"Dhuhr"`
	Asr        string `json:"Asr"`
	Sunset     string `json:"Sunset"`
	Maghrib    string `json:"Maghrib"`
	Isha       string `json:"Isha"`
	Imsak      string `json:"Imsak"`
	Midnight   string `json:"Midnight"`
	Firstthird string `json:"Firstthird"`
	Lastthird  string `json:"Lastthird"`
}

// field returns the raw string for one of the six daily instants.
func (t Timings) field(n prayer.Name) string {
	switch n {
	case prayer.Fajr:
		return t.Fajr
	case prayer.Sunrise:
		return t.Sunrise
	case prayer.Dhuhr:
		return t.Dhuhr
	case prayer.Asr:
		return t.Asr
	case prayer.Maghrib:
		return t.Maghrib
	case prayer.Isha:
		return t.Isha
	}
	return ""
}

// Map returns the six daily instants keyed by their lowercase name.
func (t Timings) Map() map[string]string {
	m := make(map[string]string, len(prayer.Names))
	for _, n := range prayer.Names {
		m[n.Key()] = t.field(n)
	}
	return m
}

// TimingsFromMap is the inverse of Map.
func TimingsFromMap(m map[string]string) Timings {
	return Timings{
		Fajr:    m[prayer.Fajr.Key()],
		Sunrise: m[prayer.Sunrise.Key()],
		Dhuhr:   m[prayer.Dhuhr.Key()],
		Asr:     m[prayer.Asr.Key()],
		Maghrib: m[prayer.Maghrib.Key()],
		Isha:    m[prayer.Isha.Key()],
	}
}

// Schedule converts the timings into a schedule for p, reading each clock
// time in p's location.
func (t Timings) Schedule(p prayer.Params) (prayer.Schedule, error) {
	return t.scheduleIn(p, p.Day().Location())
}

func (t Timings) scheduleIn(p prayer.Params, loc *time.Location) (prayer.Schedule, error) {
	s := prayer.Schedule{Params: p}
	day := p.Day()
	for _, n := range prayer.Names {
		tm, err := parseTimeStr(t.field(n), day, loc)
		if err != nil {
			return prayer.Schedule{}, fmt.Errorf("parsing %s: %w", n, err)
		}
		// Isha can fall after midnight in high-latitude summers.
		if n > prayer.Dhuhr && tm.Before(s.Instants[n-1].Time) {
			tm = tm.AddDate(0, 0, 1)
		}
		s.Instants[n] = prayer.Instant{Name: n, Time: tm}
	}
	if !s.Ordered() {
		return prayer.Schedule{}, fmt.Errorf("timings for %s are out of order", day.Format("2006-01-02"))
	}
	return s, nil
}

// parseTimeStr parses "HH:MM" or "HH:MM (TZ)" on date's civil day in loc.
func parseTimeStr(raw string, date time.Time, loc *time.Location) (time.Time, error) {
	clean := strings.TrimSpace(raw)
	if idx := strings.Index(clean, " "); idx > 0 {
		clean = clean[:idx]
	}

	var h, m int
	if _, err := fmt.Sscanf(clean, "%d:%d", &h, &m); err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", raw, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return time.Time{}, fmt.Errorf("invalid time %q", raw)
	}

	y, mo, d := date.Date()
	return time.Date(y, mo, d, h, m, 0, 0, loc), nil
}

// DateInfo contains date representations.
type DateInfo struct {
	Readable  string        `json:"readable"`
	Timestamp string        `json:"timestamp"`
	Hijri     HijriDate     `json:"hijri"`
	Gregorian GregorianDate `json:"gregorian"`
}

// HijriDate represents the Hijri (Islamic) date from the API response.
type HijriDate struct {
	Date        string           `json:"date"` // e.g. "10-08-1447"
	Day         string           `json:"day"`
	Month       HijriMonth       `json:"month"`
	Year        string           `json:"year"`
	Designation HijriDesignation `json:"designation"`
}

// HijriMonth represents the month in the Hijri calendar.
type HijriMonth struct {
	Number int    `json:"number"`
	En     string `json:"en"` // English name, e.g. "Shaʿbān"
	Ar     string `json:"ar"` // Arabic name
}

// HijriDesignation contains the calendar designation labels.
type HijriDesignation struct {
	Abbreviated string `json:"abbreviated"` // "AH"
	Expanded    string `json:"expanded"`    // "Anno Hegirae"
}

// Format returns the Hijri date as "DD MonthName YYYY AH".
func (h HijriDate) Format() string {
	if h.Day == "" || h.Month.En == "" || h.Year == "" {
		return ""
	}
	abbr := h.Designation.Abbreviated
	if abbr == "" {
		abbr = "AH"
	}
	return h.Day + " " + h.Month.En + " " + h.Year + " " + abbr
}

// GregorianDate represents the Gregorian date from the API response.
type GregorianDate struct {
	Date    string         `json:"date"` // e.g. "28-02-2026"
	Day     string         `json:"day"`
	Weekday GregorianDay   `json:"weekday"`
	Month   GregorianMonth `json:"month"`
	Year    string         `json:"year"`
}

// GregorianDay contains the weekday name.
type GregorianDay struct {
	En string `json:"en"` // e.g. "Saturday"
}

// GregorianMonth contains the month details.
type GregorianMonth struct {
	Number int    `json:"number"`
	En     string `json:"en"` // e.g. "February"
}

// Meta contains request metadata returned by the API.
type Meta struct {
	Latitude  float64    `json:"latitude"`
	Longitude float64    `json:"longitude"`
	Timezone  string     `json:"timezone"`
	Method    MethodInfo `json:"method"`
	School    string     `json:"school"`
}

// MethodInfo identifies the calculation method used.
type MethodInfo struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CalendarResponse represents the Al Adhan calendar API response.
// The calendar endpoint returns an array of daily data objects for a whole month.
type CalendarResponse struct {
	Code   int    `json:"code"`
	Status string `json:"status"`
	Data   []Data `json:"data"`
}

func (r *CalendarResponse) status() (int, string) { return r.Code, r.Status }
