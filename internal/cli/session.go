package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/miqat/internal/api"
	"github.com/smokyabdulrahman/miqat/internal/cache"
	"github.com/smokyabdulrahman/miqat/internal/config"
	"github.com/smokyabdulrahman/miqat/internal/geo"
	"github.com/smokyabdulrahman/miqat/internal/hijri"
	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

// place is the resolved position of the user.
type place struct {
	Coordinate prayer.Coordinate
	// HasCoordinate is false in city mode, where only the remote source
	// knows where the city is.
	HasCoordinate bool
	City          string
	Country       string
	Timezone      string // optional hint from geo-detection
}

// Label builds a "City, Country" string, falling back to coordinates.
func (p place) Label() string {
	if p.City != "" && p.Country != "" {
		return p.City + ", " + p.Country
	}
	return fmt.Sprintf("%.4f, %.4f", p.Coordinate.Latitude, p.Coordinate.Longitude)
}

// session bundles everything a schedule command needs.
type session struct {
	cfg     *config.Config
	place   place
	loc     *time.Location
	method  prayer.Method
	rule    prayer.HighLatitudeRule
	prayers []prayer.Name
	layout  string
	source  prayer.Source
	// remote is set when schedules come from Al Adhan.
	remote *api.Source
}

// newSession resolves the location, timezone and schedule source.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg := currentConfig()

	names, err := cfg.PrayerNames()
	if err != nil {
		return nil, err
	}
	if cfg.Source == config.SourceLocal && cfg.City != "" {
		if _, ok := cfg.Coordinate(); !ok {
			return nil, errors.New("--city needs --source aladhan; the local source requires --latitude and --longitude")
		}
	}

	c := openCache(cfg)
	p, err := resolveLocation(cmd.Context(), cfg, c, FlagOffline)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:     cfg,
		place:   p,
		method:  cfg.MethodOrDefault(prayer.DefaultMethod),
		rule:    cfg.HighLatitude(),
		prayers: names,
		layout:  prayer.TimeLayout(cfg.TimeFormat),
	}
	s.source, s.remote = newSource(cfg, c, p)

	// Determine timezone: config > detected > remote > system.
	s.loc, err = cfg.Location()
	if err != nil {
		return nil, err
	}
	if s.loc == nil && p.Timezone != "" {
		if l, err := time.LoadLocation(p.Timezone); err == nil {
			s.loc = l
		} else {
			log.Warn().Str("timezone", p.Timezone).Msg("ignoring unknown detected timezone")
		}
	}
	if s.loc == nil && s.remote != nil {
		day, err := s.remote.Day(cmd.Context(), s.params(clock()))
		if err != nil {
			return nil, err
		}
		if l, err := time.LoadLocation(day.Timezone); err == nil {
			s.loc = l
		}
	}
	if s.loc == nil {
		s.loc = time.Local
	}

	return s, nil
}

// openCache returns the configured cache, or nil when none can be opened.
// A redis address takes precedence over the file cache.
func openCache(cfg *config.Config) cache.Cache {
	if cfg.RedisAddr != "" {
		r, err := cache.NewRedis(cfg.RedisAddr, os.Getenv(config.EnvName("redis_password")))
		if err == nil {
			return r
		}
		log.Warn().Err(err).Msg("redis cache unavailable, using file cache")
	}
	f, err := cache.New(cfg.CacheDir)
	if err != nil {
		log.Warn().Err(err).Msg("cache disabled")
		return nil
	}
	return f
}

// newSource picks the schedule source. remote is nil for local computation.
func newSource(cfg *config.Config, c cache.Cache, p place) (src prayer.Source, remote *api.Source) {
	if cfg.Source != config.SourceAladhan {
		return prayer.Local{}, nil
	}
	remote = api.NewSource(c)
	if !p.HasCoordinate {
		remote.City = p.City
		remote.Country = p.Country
	}
	return remote, remote
}

// resolveLocation determines the effective location based on user flags, config, or auto-detection.
// Priority: CLI flags > config > cached geolocation > IP auto-detect > Makkah.
func resolveLocation(ctx context.Context, cfg *config.Config, c cache.Cache, offline bool) (place, error) {
	if coord, ok := cfg.Coordinate(); ok {
		if err := coord.Validate(); err != nil {
			return place{}, err
		}
		return place{Coordinate: coord, HasCoordinate: true, City: cfg.City, Country: cfg.Country}, nil
	}
	if cfg.Latitude != nil || cfg.Longitude != nil {
		return place{}, errors.New("--latitude and --longitude must be given together")
	}
	if cfg.City != "" {
		if cfg.Country == "" {
			return place{}, errors.New("--country is required when using --city")
		}
		return place{City: cfg.City, Country: cfg.Country}, nil
	}

	// Try cached geolocation first.
	if c != nil {
		if cached := c.LoadGeo(); cached != nil {
			return placeFromGeo(*cached), nil
		}
	}

	if !offline {
		detected, err := geo.DetectLocation(ctx)
		if err == nil {
			if c != nil {
				if err := c.SaveGeo(detected); err != nil {
					log.Warn().Err(err).Msg("failed to cache location")
				}
			}
			return placeFromGeo(*detected), nil
		}
		log.Warn().Err(err).Msg("location detection failed")
	}

	log.Warn().Str("city", geo.Fallback.City).Msg("no location configured, using fallback")
	return placeFromGeo(geo.Fallback), nil
}

func placeFromGeo(l geo.Location) place {
	return place{
		Coordinate:    l.Coordinate(),
		HasCoordinate: true,
		City:          l.City,
		Country:       l.Country,
		Timezone:      l.Timezone,
	}
}

// params builds schedule parameters for date's civil day in the session zone.
func (s *session) params(date time.Time) prayer.Params {
	loc := s.loc
	if loc == nil {
		loc = time.Local
	}
	return prayer.Params{
		Coordinate:   s.place.Coordinate,
		Date:         date.In(loc),
		Method:       s.method,
		Location:     loc,
		HighLatitude: s.rule,
	}
}

// day returns date's schedule and its Hijri date. The remote source reports
// its own Hijri date; otherwise the tabular calendar is used.
func (s *session) day(ctx context.Context, date time.Time) (prayer.Schedule, string, error) {
	p := s.params(date)
	if s.remote != nil {
		d, err := s.remote.Day(ctx, p)
		if err != nil {
			return prayer.Schedule{}, "", err
		}
		h := d.Hijri
		if h == "" {
			h = hijri.FromTime(p.Day()).String()
		}
		return d.Schedule, h, nil
	}
	sched, err := s.source.Schedule(ctx, p)
	if err != nil {
		return prayer.Schedule{}, "", err
	}
	return sched, hijri.FromTime(p.Day()).String(), nil
}

// prefetch warms the cache for every month in [start, start+days).
func (s *session) prefetch(ctx context.Context, start time.Time, days int) {
	if s.remote == nil {
		return
	}
	seen := make(map[string]bool)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, i)
		month := d.Format("2006-01")
		if seen[month] {
			continue
		}
		seen[month] = true
		first := time.Date(d.Year(), d.Month(), 1, 12, 0, 0, 0, s.loc)
		if err := s.remote.Prefetch(ctx, s.params(first)); err != nil {
			log.Warn().Err(err).Str("month", month).Msg("calendar prefetch failed")
		}
	}
}

// selected returns the instants of sched the user tracks.
func (s *session) selected(sched prayer.Schedule) []prayer.Instant {
	return sched.Select(s.prayers)
}

// next returns the first tracked instant after now, looking into tomorrow
// when today has none left.
func (s *session) next(ctx context.Context, sched prayer.Schedule, now time.Time) (prayer.Instant, error) {
	if len(s.prayers) == 0 {
		return prayer.NextFrom(ctx, s.source, sched, now)
	}
	for _, in := range s.selected(sched) {
		if in.Available() && in.Time.After(now) {
			return in, nil
		}
	}
	tomorrow, err := s.source.Schedule(ctx, sched.Params.Tomorrow())
	if err != nil {
		return prayer.Instant{}, err
	}
	for _, in := range s.selected(tomorrow) {
		if in.Available() {
			return in, nil
		}
	}
	return prayer.Instant{}, nil
}

// formatTime renders an instant in the session zone, or --:-- when the sun
// never reaches its angle.
func (s *session) formatTime(in prayer.Instant) string {
	if !in.Available() {
		return "--:--"
	}
	return in.Time.In(s.loc).Format(s.layout)
}
