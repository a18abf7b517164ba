// Package watch keeps the current prayer, the next prayer and the countdown
// up to date on a ticker and tells observers when they change.
package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

// midnight is the cron spec of the daily schedule refresh.
const midnight = "0 0 * * *"

// Config contains runtime options for Watcher.
type Config struct {
	TickInterval time.Duration
}

// Watcher re-derives the prayer state on every tick. The schedule is
// replaced by a cron job at local midnight and, should that job be missed
// (suspend, clock change), by a date check on every tick.
type Watcher struct {
	mu       sync.Mutex
	src      prayer.Source
	params   prayer.Params
	options  Config
	schedule prayer.Schedule
	current  prayer.Name
	started  prayer.Instant
	next     prayer.Instant
	ctx      context.Context
	cron     *cron.Cron
	events   []chan Event
	stopCh   chan struct{}
	running  bool
}

// New creates a Watcher for params. Schedules come from src.
func New(src prayer.Source, params prayer.Params, options Config) *Watcher {
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if src == nil {
		src = prayer.Local{}
	}
	return &Watcher{
		src:     src,
		params:  params,
		options: options,
		stopCh:  make(chan struct{}),
	}
}

// Subscribe registers a new observer channel. Slow observers miss events
// rather than block the watcher.
func (w *Watcher) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	w.mu.Lock()
	w.events = append(w.events, ch)
	w.mu.Unlock()
	return ch
}

// Start loads the schedule of now's date and launches the ticking loop and
// the midnight job. ctx bounds every schedule lookup made while running.
func (w *Watcher) Start(ctx context.Context, now time.Time) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	p := w.params
	p.Date = now
	s, err := w.src.Schedule(ctx, p)
	if err != nil {
		return fmt.Errorf("loading schedule: %w", err)
	}

	c := cron.New(cron.WithLocation(s.Date().Location()))
	if _, err := c.AddFunc(midnight, func() { w.rollover(time.Now()) }); err != nil {
		return fmt.Errorf("scheduling midnight refresh: %w", err)
	}

	w.mu.Lock()
	w.ctx = ctx
	w.schedule = s
	w.current = prayer.CurrentPrayer(s, now)
	w.started, w.next = prayer.Instant{}, prayer.Instant{}
	w.cron = c
	w.running = true
	w.emitLocked(Event{Type: EventRollover, Current: w.current, Schedule: s, At: now})
	w.mu.Unlock()

	c.Start()
	go w.run()
	log.Debug().Str("date", s.Date().Format("2006-01-02")).Dur("interval", w.options.TickInterval).Msg("watcher started")
	return nil
}

// Stop terminates the ticking loop and closes observers.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.stopCh)
	w.running = false
	c := w.cron
	events := w.events
	w.events = nil
	w.mu.Unlock()

	<-c.Stop().Done()
	for _, ch := range events {
		close(ch)
	}
}

// Schedule returns the schedule in use.
func (w *Watcher) Schedule() prayer.Schedule {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.schedule
}

func (w *Watcher) run() {
	ticker := time.NewTicker(w.options.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case tickTime := <-ticker.C:
			w.tick(tickTime)
		}
	}
}

func (w *Watcher) tick(now time.Time) {
	if w.stale(now) {
		w.rollover(now)
	}

	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	ctx, sched := w.ctx, w.schedule
	started, next := w.started, w.next
	w.mu.Unlock()

	// Lookups may reach a remote source; run them unlocked like rollover.
	if !next.Available() || !next.Time.After(now) {
		var err error
		next, err = prayer.NextFrom(ctx, w.src, sched, now)
		if err == nil {
			started, err = prayer.CurrentFrom(ctx, w.src, sched, now)
		}
		if err != nil {
			log.Warn().Err(err).Msg("prayer lookup failed")
			w.mu.Lock()
			w.emitLocked(Event{Type: EventError, Err: err, At: now})
			w.mu.Unlock()
			return
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	// Stopped or rolled over while unlocked; the next tick starts afresh.
	if !w.running || !w.schedule.Date().Equal(sched.Date()) {
		return
	}
	w.started, w.next = started, next

	ev := Event{
		Current:   started.Name,
		Started:   started,
		Next:      next,
		Countdown: prayer.TimeUntil(next.Time, now),
		Progress:  prayer.Progress(started, next, now),
		Schedule:  sched,
		At:        now,
	}
	if started.Name != w.current {
		w.current = started.Name
		ev.Type = EventPrayer
		log.Info().Str("prayer", started.Name.String()).Time("at", now).Msg("prayer time")
		w.emitLocked(ev)
	}
	ev.Type = EventTick
	w.emitLocked(ev)
}

// stale reports whether now falls on a later civil date than the schedule.
func (w *Watcher) stale(now time.Time) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return false
	}
	day := w.schedule.Date()
	y, m, d := now.In(day.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, day.Location()).After(day)
}

// rollover replaces the schedule with the one for now's date.
func (w *Watcher) rollover(now time.Time) {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	ctx := w.ctx
	p := w.params
	w.mu.Unlock()

	p.Date = now
	s, err := w.src.Schedule(ctx, p)

	w.mu.Lock()
	defer w.mu.Unlock()
	if err != nil {
		log.Warn().Err(err).Msg("schedule refresh failed")
		w.emitLocked(Event{Type: EventError, Err: err, At: now})
		return
	}
	if !w.running || s.Date().Equal(w.schedule.Date()) {
		return
	}
	w.schedule = s
	w.started, w.next = prayer.Instant{}, prayer.Instant{}
	log.Info().Str("date", s.Date().Format("2006-01-02")).Msg("schedule rolled over")
	w.emitLocked(Event{Type: EventRollover, Current: w.current, Schedule: s, At: now})
}

func (w *Watcher) emitLocked(event Event) {
	for _, ch := range w.events {
		select {
		case ch <- event:
		default:
		}
	}
}
