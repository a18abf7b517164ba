package prayer

import (
	"context"
	"fmt"
	"time"
)

// CurrentPrayer returns the latest available instant at or before now. Before
// Fajr the night still belongs to the previous day's Isha, so Isha is returned.
func CurrentPrayer(s Schedule, now time.Time) Name {
	current := Isha
	for _, in := range s.Instants {
		if !in.Available() {
			continue
		}
		if in.Time.After(now) {
			break
		}
		current = in.Name
	}
	return current
}

// upcoming returns the first available instant strictly after now.
func upcoming(s Schedule, now time.Time) (Instant, bool) {
	for _, in := range s.Instants {
		if in.Available() && in.Time.After(now) {
			return in, true
		}
	}
	return Instant{}, false
}

// NextPrayer returns the first instant strictly after now. After Isha it
// computes tomorrow's schedule and returns its Fajr. The result is
// unavailable only if tomorrow has no computable instant at all.
func NextPrayer(s Schedule, now time.Time) Instant {
	next, _ := NextFrom(context.Background(), Local{}, s, now)
	return next
}

// NextFrom is NextPrayer with tomorrow's schedule obtained from src.
func NextFrom(ctx context.Context, src Source, s Schedule, now time.Time) (Instant, error) {
	if in, ok := upcoming(s, now); ok {
		return in, nil
	}

	tomorrow, err := src.Schedule(ctx, s.Params.Tomorrow())
	if err != nil {
		return Instant{}, fmt.Errorf("tomorrow's schedule: %w", err)
	}
	if fajr := tomorrow.Get(Fajr); fajr.Available() {
		return fajr, nil
	}
	// Fajr unreachable tomorrow; the first instant that exists takes its place.
	for _, in := range tomorrow.Instants {
		if in.Available() {
			return in, nil
		}
	}
	return Instant{Name: Fajr}, nil
}

// Countdown is a non-negative duration broken into clock components.
type Countdown struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// TimeUntil returns the time left until target. A target in the past yields
// a zero countdown.
func TimeUntil(target, now time.Time) Countdown {
	d := target.Sub(now)
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return Countdown{
		Hours:   total / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}

// Duration converts the countdown back into a time.Duration.
func (c Countdown) Duration() time.Duration {
	return time.Duration(c.Hours)*time.Hour + time.Duration(c.Minutes)*time.Minute + time.Duration(c.Seconds)*time.Second
}

// String renders the countdown as HH:MM:SS.
func (c Countdown) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hours, c.Minutes, c.Seconds)
}

// CurrentFrom returns the instant CurrentPrayer names, with its time. Before
// Fajr that is the previous day's Isha, taken from src; it is unavailable
// when the sun never reached the Isha angle that night.
func CurrentFrom(ctx context.Context, src Source, s Schedule, now time.Time) (Instant, error) {
	var current Instant
	for _, in := range s.Instants {
		if !in.Available() {
			continue
		}
		if in.Time.After(now) {
			break
		}
		current = in
	}
	if current.Available() {
		return current, nil
	}

	yesterday, err := src.Schedule(ctx, s.Params.Yesterday())
	if err != nil {
		return Instant{}, fmt.Errorf("yesterday's schedule: %w", err)
	}
	return Instant{Name: Isha, Time: yesterday.Get(Isha).Time}, nil
}

// Progress returns how far now is through the interval from current to next,
// in [0, 1]. It is 0 when either end is unavailable.
func Progress(current, next Instant, now time.Time) float64 {
	if !current.Available() || !next.Available() {
		return 0
	}
	total := next.Time.Sub(current.Time)
	if total <= 0 {
		return 0
	}
	p := float64(now.Sub(current.Time)) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// FormatRemaining formats a duration as "Xh Ym" or "Ym" if less than an hour.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		return "0m"
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60

	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}
