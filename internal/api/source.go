package api

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/miqat/internal/cache"
	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

// SourceName identifies schedules fetched from Al Adhan in cache keys and
// configuration.
const SourceName = "aladhan"

// Day is a fetched schedule with the metadata the service returns alongside.
type Day struct {
	Schedule prayer.Schedule
	Hijri    string
	Timezone string
}

// Source is a prayer.Source backed by the Al Adhan API. When City is set the
// city endpoint is used instead of the coordinate one. Cache may be nil.
type Source struct {
	Client  *Client
	Cache   cache.Cache
	City    string
	Country string
}

var _ prayer.Source = (*Source)(nil)

// NewSource returns a Source using a default client.
func NewSource(c cache.Cache) *Source {
	return &Source{Client: NewClient(), Cache: c}
}

func (s *Source) key(p prayer.Params) cache.Key {
	return cache.Key{
		Date:      p.Day(),
		Latitude:  p.Coordinate.Latitude,
		Longitude: p.Coordinate.Longitude,
		City:      s.City,
		Country:   s.Country,
		Method:    p.Method.String(),
		Source:    SourceName,
	}
}

// Schedule implements prayer.Source.
func (s *Source) Schedule(ctx context.Context, p prayer.Params) (prayer.Schedule, error) {
	day, err := s.Day(ctx, p)
	if err != nil {
		return prayer.Schedule{}, err
	}
	return day.Schedule, nil
}

// Day returns the schedule for p along with its Hijri date, from the cache
// when possible.
func (s *Source) Day(ctx context.Context, p prayer.Params) (Day, error) {
	key := s.key(p)
	if s.Cache != nil {
		if entry := s.Cache.LoadSchedule(key); entry != nil {
			day, err := dayFromEntry(p, entry)
			if err == nil {
				return day, nil
			}
			log.Warn().Err(err).Str("date", key.Date.Format("2006-01-02")).Msg("ignoring unreadable cached schedule")
		}
	}

	var (
		resp *Response
		err  error
	)
	if s.City != "" {
		resp, err = s.Client.FetchByCity(ctx, p.Day(), s.City, s.Country, p.Method)
	} else {
		resp, err = s.Client.FetchByCoordinates(ctx, p.Day(), p.Coordinate.Latitude, p.Coordinate.Longitude, p.Method)
	}
	if err != nil {
		return Day{}, fmt.Errorf("fetching schedule from %s: %w", SourceName, err)
	}

	entry := s.entry(resp.Data)
	day, err := dayFromEntry(p, entry)
	if err != nil {
		return Day{}, err
	}
	s.save(key, entry)
	return day, nil
}

// Prefetch stores every day of p's month in the cache with a single request.
// It does nothing without a cache.
func (s *Source) Prefetch(ctx context.Context, p prayer.Params) error {
	if s.Cache == nil {
		return nil
	}

	first := p.Day()
	var (
		resp *CalendarResponse
		err  error
	)
	if s.City != "" {
		resp, err = s.Client.FetchCalendarByCity(ctx, first.Year(), first.Month(), s.City, s.Country, p.Method)
	} else {
		resp, err = s.Client.FetchCalendarByCoordinates(ctx, first.Year(), first.Month(), p.Coordinate.Latitude, p.Coordinate.Longitude, p.Method)
	}
	if err != nil {
		return fmt.Errorf("fetching calendar from %s: %w", SourceName, err)
	}

	for _, data := range resp.Data {
		date, err := time.ParseInLocation("02-01-2006", data.Date.Gregorian.Date, first.Location())
		if err != nil {
			log.Warn().Err(err).Str("date", data.Date.Gregorian.Date).Msg("skipping calendar day")
			continue
		}
		dp := p
		dp.Date = date
		s.save(s.key(dp), s.entry(data))
	}
	return nil
}

func (s *Source) entry(data Data) *cache.ScheduleEntry {
	return &cache.ScheduleEntry{
		Method:   data.Meta.Method.Name,
		Source:   SourceName,
		Timings:  data.Timings.Map(),
		Timezone: data.Meta.Timezone,
		Hijri:    data.Date.Hijri.Format(),
	}
}

func (s *Source) save(key cache.Key, entry *cache.ScheduleEntry) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.SaveSchedule(key, entry); err != nil {
		log.Warn().Err(err).Msg("failed to cache schedule")
	}
}

// dayFromEntry reads the timings in the zone the service reported. The
// resulting instants are absolute, so they compare correctly against any
// clock regardless of p's location.
func dayFromEntry(p prayer.Params, entry *cache.ScheduleEntry) (Day, error) {
	loc := p.Day().Location()
	if entry.Timezone != "" {
		if l, err := time.LoadLocation(entry.Timezone); err == nil {
			loc = l
		}
	}

	sched, err := TimingsFromMap(entry.Timings).scheduleIn(p, loc)
	if err != nil {
		return Day{}, err
	}
	return Day{Schedule: sched, Hijri: entry.Hijri, Timezone: entry.Timezone}, nil
}
