package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/miqat/internal/display"
	"github.com/smokyabdulrahman/miqat/internal/prayer"
	"github.com/smokyabdulrahman/miqat/internal/qibla"
)

// todayView is everything the root command shows.
type todayView struct {
	Now      time.Time
	Hijri    string
	Schedule prayer.Schedule
	Current  prayer.Instant
	Next     prayer.Instant
}

func runToday(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	// Re-anchor "now" to the display timezone.
	now := clock().In(s.loc)

	sched, hijriDate, err := s.day(cmd.Context(), now)
	if err != nil {
		return err
	}

	next, err := s.next(cmd.Context(), sched, now)
	if err != nil {
		return err
	}
	current, err := prayer.CurrentFrom(cmd.Context(), s.source, sched, now)
	if err != nil {
		return err
	}

	v := todayView{
		Now:      now,
		Hijri:    hijriDate,
		Schedule: sched,
		Current:  current,
		Next:     next,
	}

	// JSON output.
	if FlagJSON {
		return printTodayJSON(cmd.OutOrStdout(), s, v)
	}

	// Rich terminal output.
	printTodayRich(cmd.OutOrStdout(), s, v)
	return nil
}

// printTodayRich renders the colored terminal output for today's prayer schedule.
func printTodayRich(w io.Writer, s *session, v todayView) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Prayer Times"))
	fmt.Fprintln(w)

	// Location and date info.
	fmt.Fprintf(w, "  %s\n", s.place.Label())
	fmt.Fprintf(w, "  %s · %s\n", s.loc, s.method.Config().Name)
	fmt.Fprintf(w, "  %s\n", v.Now.Format("Monday 02 January 2006"))
	if v.Hijri != "" {
		fmt.Fprintf(w, "  %s\n", v.Hijri)
	}
	fmt.Fprintln(w)

	// Find the max prayer name length for alignment.
	maxNameLen := 0
	for _, n := range prayer.Names {
		if l := len(n.String()); l > maxNameLen {
			maxNameLen = l
		}
	}

	// Print each prayer.
	for _, in := range v.Schedule.Instants {
		if s.prayers != nil && !tracked(s.prayers, in.Name) {
			continue
		}
		line := fmt.Sprintf("  %-*s  %s", maxNameLen, in.Name, s.formatTime(in))

		switch {
		case !in.Available():
			fmt.Fprintln(w, display.Gray(line))
		case in.Name == v.Current.Name && in.Time.Equal(v.Current.Time):
			// Current prayer: dimmed.
			fmt.Fprintln(w, display.Dim(line))
		case in.Name == v.Next.Name && in.Time.Equal(v.Next.Time):
			// Next prayer: accent color + countdown.
			remaining := prayer.FormatRemaining(v.Next.Time.Sub(v.Now))
			suffix := fmt.Sprintf("  <- next in %s", remaining)
			fmt.Fprintln(w, display.Accent(line)+display.Accent(suffix))
		default:
			fmt.Fprintln(w, line)
		}
	}

	// After Isha the next prayer belongs to tomorrow.
	if v.Next.Available() && v.Next.Time.In(s.loc).YearDay() != v.Now.YearDay() {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s\n", display.Accent(fmt.Sprintf("Tomorrow's %s at %s, in %s",
			v.Next.Name, s.formatTime(v.Next), prayer.FormatRemaining(v.Next.Time.Sub(v.Now)))))
	}

	if !v.Schedule.Complete() {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  %s\n", display.Yellow("Some times cannot be computed at this latitude; try --high-latitude-rule"))
	}

	if s.place.HasCoordinate {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "  Qibla  %s\n", display.Bearing(qibla.Bearing(s.place.Coordinate)))
	}

	fmt.Fprintln(w)
}

func tracked(names []prayer.Name, n prayer.Name) bool {
	for _, x := range names {
		if x == n {
			return true
		}
	}
	return false
}

// todayJSON is the JSON output structure for the root command.
type todayJSON struct {
	Location todayJSONLocation `json:"location"`
	Date     todayJSONDate     `json:"date"`
	Method   string            `json:"method"`
	Timings  map[string]string `json:"timings"`
	Current  string            `json:"current"`
	Next     *todayJSONNext    `json:"next"`
	Progress float64           `json:"progress"`
	Qibla    *float64          `json:"qibla,omitempty"`
}

type todayJSONLocation struct {
	City      string  `json:"city,omitempty"`
	Country   string  `json:"country,omitempty"`
	Timezone  string  `json:"timezone"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type todayJSONDate struct {
	Gregorian string `json:"gregorian"`
	Hijri     string `json:"hijri"`
}

type todayJSONNext struct {
	Prayer    string `json:"prayer"`
	Time      string `json:"time"`
	Remaining string `json:"remaining"`
	Countdown string `json:"countdown"`
}

func jsonLocation(s *session) todayJSONLocation {
	return todayJSONLocation{
		City:      s.place.City,
		Country:   s.place.Country,
		Timezone:  s.loc.String(),
		Latitude:  s.place.Coordinate.Latitude,
		Longitude: s.place.Coordinate.Longitude,
	}
}

// timingsMap keys tracked, available instants by lowercase name.
func timingsMap(s *session, sched prayer.Schedule) map[string]string {
	timings := make(map[string]string)
	for _, in := range s.selected(sched) {
		timings[in.Name.Key()] = s.formatTime(in)
	}
	return timings
}

// printTodayJSON renders structured JSON output.
func printTodayJSON(w io.Writer, s *session, v todayView) error {
	out := todayJSON{
		Location: jsonLocation(s),
		Date: todayJSONDate{
			Gregorian: v.Now.Format("02 Jan 2006"),
			Hijri:     v.Hijri,
		},
		Method:   s.method.String(),
		Timings:  timingsMap(s, v.Schedule),
		Current:  v.Current.Name.Key(),
		Progress: prayer.Progress(v.Current, v.Next, v.Now),
	}

	if v.Next.Available() {
		out.Next = &todayJSONNext{
			Prayer:    v.Next.Name.Key(),
			Time:      s.formatTime(v.Next),
			Remaining: prayer.FormatRemaining(v.Next.Time.Sub(v.Now)),
			Countdown: prayer.TimeUntil(v.Next.Time, v.Now).String(),
		}
	}
	if s.place.HasCoordinate {
		b := qibla.Bearing(s.place.Coordinate)
		out.Qibla = &b
	}

	return writeJSON(w, out)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// writeJSONLine writes v as a single line, for streamed output.
func writeJSONLine(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
