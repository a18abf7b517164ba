package prayer

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// HighLatitudeRule decides how Fajr and Isha are placed when the twilight
// angle is never reached or the night is too short for it.
type HighLatitudeRule int

const (
	// HighLatitudeNone leaves unreachable instants unavailable.
	HighLatitudeNone HighLatitudeRule = iota
	// HighLatitudeMiddleOfNight caps the twilight at half the night.
	HighLatitudeMiddleOfNight
	// HighLatitudeSeventhOfNight caps the twilight at a seventh of the night.
	HighLatitudeSeventhOfNight
	// HighLatitudeTwilightAngle caps the twilight at angle/60 of the night.
	HighLatitudeTwilightAngle
)

var highLatitudeKeys = map[HighLatitudeRule]string{
	HighLatitudeNone:           "none",
	HighLatitudeMiddleOfNight:  "middle-of-night",
	HighLatitudeSeventhOfNight: "seventh-of-night",
	HighLatitudeTwilightAngle:  "twilight-angle",
}

func (r HighLatitudeRule) String() string {
	if k, ok := highLatitudeKeys[r]; ok {
		return k
	}
	return fmt.Sprintf("HighLatitudeRule(%d)", int(r))
}

// ParseHighLatitudeRule resolves a rule by its key. The empty string means none.
func ParseHighLatitudeRule(s string) (HighLatitudeRule, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return HighLatitudeNone, nil
	}
	for r, k := range highLatitudeKeys {
		if k == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown high latitude rule %q; valid rules: none, middle-of-night, seventh-of-night, twilight-angle", s)
}

// portion returns the share of the night the twilight may occupy.
func (r HighLatitudeRule) portion(angle float64) float64 {
	switch r {
	case HighLatitudeMiddleOfNight:
		return 1.0 / 2
	case HighLatitudeSeventhOfNight:
		return 1.0 / 7
	case HighLatitudeTwilightAngle:
		return angle / 60
	default:
		return 0
	}
}

// asrShadowFactor is the Shafi shadow ratio.
const asrShadowFactor = 1

// Compute returns the schedule for p. It is pure: the same Params always give
// the same Schedule. Instants the sun never reaches are left unavailable.
func Compute(p Params) Schedule {
	loc := p.location()
	day := p.Day()
	y, m, d := day.Date()
	cfg := p.Method.Config()
	lat, lng := p.Coordinate.Latitude, p.Coordinate.Longitude

	sd := solarDay{jd: julianDate(y, m, d) - lng/(15*24), lat: lat}

	var hours [6]float64
	hours[Fajr] = sd.sunAngleTime(cfg.FajrAngle, 5.0/24, true)
	hours[Sunrise] = sd.sunAngleTime(riseSetAngle, 6.0/24, true)
	hours[Dhuhr] = sd.midDay(12.0 / 24)
	hours[Asr] = sd.asrTime(asrShadowFactor, 13.0/24)
	sunset := sd.sunAngleTime(riseSetAngle, 18.0/24, false)

	hours[Maghrib] = sunset
	if cfg.MaghribAngle > 0 {
		hours[Maghrib] = sd.sunAngleTime(cfg.MaghribAngle, 18.0/24, false)
	}
	if cfg.IshaInterval > 0 {
		hours[Isha] = hours[Maghrib] + float64(cfg.IshaInterval)/60
	} else {
		hours[Isha] = sd.sunAngleTime(cfg.IshaAngle, 18.0/24, false)
	}

	if math.IsNaN(hours[Sunrise]) && math.IsNaN(sunset) && sd.noonAltitude() < -riseSetAngle {
		// Polar night: only the transit is defined.
		for _, n := range []Name{Fajr, Asr, Maghrib, Isha} {
			hours[n] = math.NaN()
		}
	}

	if p.HighLatitude != HighLatitudeNone {
		adjustHighLatitude(&hours, p.HighLatitude, cfg, hours[Sunrise], sunset)
	}

	midnightUTC := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	s := Schedule{Params: p}
	for _, n := range Names {
		s.Instants[n].Name = n
		h := hours[n]
		if math.IsNaN(h) || math.IsInf(h, 0) {
			continue
		}
		utc := h - lng/15 + float64(cfg.Adjustments[n])/60
		t := midnightUTC.Add(time.Duration(utc * float64(time.Hour)))
		s.Instants[n].Time = t.Round(time.Minute).In(loc)
	}
	dropUnordered(&s)
	return s
}

// dropUnordered makes unavailable every instant that does not fall strictly
// after the previous available one, so a schedule is always ordered.
func dropUnordered(s *Schedule) {
	var prev time.Time
	for i := range s.Instants {
		in := &s.Instants[i]
		if !in.Available() {
			continue
		}
		if !prev.IsZero() && !in.Time.After(prev) {
			in.Time = time.Time{}
			continue
		}
		prev = in.Time
	}
}

// adjustHighLatitude replaces Fajr and Isha when they are unreachable or fall
// further from sunrise/sunset than the rule allows.
func adjustHighLatitude(hours *[6]float64, rule HighLatitudeRule, cfg MethodConfig, sunrise, sunset float64) {
	if math.IsNaN(sunrise) || math.IsNaN(sunset) {
		return
	}
	night := fixHour(sunrise - sunset)

	fajrPortion := rule.portion(cfg.FajrAngle) * night
	if math.IsNaN(hours[Fajr]) || fixHour(sunrise-hours[Fajr]) > fajrPortion {
		hours[Fajr] = sunrise - fajrPortion
	}

	if cfg.IshaInterval > 0 {
		return
	}
	ishaPortion := rule.portion(cfg.IshaAngle) * night
	if math.IsNaN(hours[Isha]) || fixHour(hours[Isha]-sunset) > ishaPortion {
		hours[Isha] = sunset + ishaPortion
		// An angle-based Maghrib can be later than the capped twilight.
		if !math.IsNaN(hours[Maghrib]) && hours[Isha] <= hours[Maghrib] {
			hours[Isha] = hours[Maghrib] + 1.0/60
		}
	}
}
