package api

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/smokyabdulrahman/miqat/internal/cache"
	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

func londonParams() prayer.Params {
	return prayer.Params{
		Coordinate: prayer.Coordinate{Latitude: 51.5074, Longitude: -0.1278},
		Date:       feb28,
		Method:     prayer.NorthAmerica,
		Location:   time.UTC,
	}
}

func newCountingSource(t *testing.T, c cache.Cache) (*Source, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path == "/calendar/2026/2" {
			writeJSON(w, sampleCalendarResponse(28))
			return
		}
		writeJSON(w, sampleResponse())
	})
	return &Source{Client: client, Cache: c}, &calls
}

func TestSource_ScheduleWithoutCache(t *testing.T) {
	src, calls := newCountingSource(t, nil)

	for i := 0; i < 2; i++ {
		s, err := src.Schedule(context.Background(), londonParams())
		if err != nil {
			t.Fatalf("Schedule error: %v", err)
		}
		if got := s.Get(prayer.Fajr).Time.Format("15:04"); got != "05:17" {
			t.Errorf("Fajr = %s, want 05:17", got)
		}
	}
	if calls.Load() != 2 {
		t.Errorf("requests = %d, want 2 without a cache", calls.Load())
	}
}

func TestSource_DayUsesCache(t *testing.T) {
	c, err := cache.New(t.TempDir())
	if err != nil {
		t.Fatalf("cache.New error: %v", err)
	}
	src, calls := newCountingSource(t, c)

	first, err := src.Day(context.Background(), londonParams())
	if err != nil {
		t.Fatalf("Day error: %v", err)
	}
	second, err := src.Day(context.Background(), londonParams())
	if err != nil {
		t.Fatalf("Day error: %v", err)
	}

	if calls.Load() != 1 {
		t.Errorf("requests = %d, want 1", calls.Load())
	}
	if first.Hijri != "11 Ramaḍān 1447 AH" || second.Hijri != first.Hijri {
		t.Errorf("Hijri = %q / %q", first.Hijri, second.Hijri)
	}
	for _, n := range prayer.Names {
		if !first.Schedule.Get(n).Time.Equal(second.Schedule.Get(n).Time) {
			t.Errorf("%s differs between fetch and cache", n)
		}
	}
}

func TestSource_CityKeyedSeparately(t *testing.T) {
	c, _ := cache.New(t.TempDir())
	src, calls := newCountingSource(t, c)

	if _, err := src.Schedule(context.Background(), londonParams()); err != nil {
		t.Fatalf("Schedule error: %v", err)
	}
	src.City, src.Country = "London", "UK"
	if _, err := src.Schedule(context.Background(), londonParams()); err != nil {
		t.Fatalf("Schedule error: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("requests = %d, want 2", calls.Load())
	}
}

func TestSource_ServesNextPrayerAfterIsha(t *testing.T) {
	src, _ := newCountingSource(t, nil)
	today, err := src.Schedule(context.Background(), londonParams())
	if err != nil {
		t.Fatalf("Schedule error: %v", err)
	}

	now := time.Date(2026, 2, 28, 21, 0, 0, 0, time.UTC)
	next, err := prayer.NextFrom(context.Background(), src, today, now)
	if err != nil {
		t.Fatalf("NextFrom error: %v", err)
	}
	if next.Name != prayer.Fajr || !next.Time.After(now) {
		t.Errorf("next = %+v, want tomorrow's Fajr", next)
	}
}

func TestSource_Error(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})
	src := &Source{Client: client}

	if _, err := src.Schedule(context.Background(), londonParams()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestSource_Prefetch(t *testing.T) {
	c, _ := cache.New(t.TempDir())
	src, calls := newCountingSource(t, c)

	p := londonParams()
	p.Date = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if err := src.Prefetch(context.Background(), p); err != nil {
		t.Fatalf("Prefetch error: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("requests = %d, want 1", calls.Load())
	}

	for _, day := range []int{1, 14, 28} {
		p.Date = time.Date(2026, 2, day, 0, 0, 0, 0, time.UTC)
		if _, err := src.Schedule(context.Background(), p); err != nil {
			t.Fatalf("Schedule(%d) error: %v", day, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("requests after prefetch = %d, want 1", calls.Load())
	}
}

func TestSource_PrefetchWithoutCache(t *testing.T) {
	src, calls := newCountingSource(t, nil)
	if err := src.Prefetch(context.Background(), londonParams()); err != nil {
		t.Fatalf("Prefetch error: %v", err)
	}
	if calls.Load() != 0 {
		t.Errorf("requests = %d, want 0", calls.Load())
	}
}
