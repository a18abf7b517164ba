package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/miqat/internal/display"
	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [days]",
		Short: "Show prayer times for multiple days",
		Long:  "Display a grid of prayer times for N days (default: 7).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, args, 7)
		},
	}
}

func newWeekCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "week",
		Short: "Show prayer times for the next 7 days",
		Long:  "Alias for 'list 7'. Display a grid of prayer times for 7 days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, 7)
		},
	}
}

func newMonthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "Show prayer times for the next 30 days",
		Long:  "Alias for 'list 30'. Display a grid of prayer times for 30 days.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, nil, 30)
		},
	}
}

// dayData holds a single day's schedule for list/query output.
type dayData struct {
	Schedule prayer.Schedule
	Hijri    string
}

// parseDays reads a positive day count.
func parseDays(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid number of days: %q (must be a positive integer)", raw)
	}
	return n, nil
}

// runList is the handler for the list subcommand.
func runList(cmd *cobra.Command, args []string, defaultDays int) error {
	days := defaultDays
	if len(args) > 0 {
		n, err := parseDays(args[0])
		if err != nil {
			return err
		}
		days = n
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	daysList, err := s.loadDays(cmd, days)
	if err != nil {
		return err
	}

	if FlagJSON {
		return printListJSON(cmd.OutOrStdout(), s, daysList)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold(fmt.Sprintf("Prayer Times: %d Days", days)))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.place.Label())
	fmt.Fprintln(w)

	// Build table.
	names := s.prayers
	if names == nil {
		names = prayer.Names
	}
	headers := []string{"Date"}
	for _, n := range names {
		headers = append(headers, n.String())
	}
	tbl := display.NewTable(headers)

	for _, dd := range daysList {
		row := []string{dd.Schedule.Date().Format("Mon 02 Jan")}
		for _, n := range names {
			row = append(row, s.formatTime(dd.Schedule.Get(n)))
		}
		tbl.AddRow(row)
	}
	// The first row is always today.
	tbl.SetHighlightRow(0)

	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
	return nil
}

// loadDays returns the schedules of `days` consecutive days starting today.
// A remote source fetches whole months at once.
func (s *session) loadDays(cmd *cobra.Command, days int) ([]dayData, error) {
	start := clock().In(s.loc)
	s.prefetch(cmd.Context(), start, days)

	out := make([]dayData, 0, days)
	for i := 0; i < days; i++ {
		sched, h, err := s.day(cmd.Context(), start.AddDate(0, 0, i))
		if err != nil {
			return nil, err
		}
		out = append(out, dayData{Schedule: sched, Hijri: h})
	}
	return out, nil
}

// listJSONOutput is the JSON structure for the list command.
type listJSONOutput struct {
	Location todayJSONLocation `json:"location"`
	Method   string            `json:"method"`
	Days     []listJSONDay     `json:"days"`
}

type listJSONDay struct {
	Date    string            `json:"date"`
	Hijri   string            `json:"hijri"`
	Timings map[string]string `json:"timings"`
}

func printListJSON(w io.Writer, s *session, daysList []dayData) error {
	out := listJSONOutput{
		Location: jsonLocation(s),
		Method:   s.method.String(),
	}

	for _, dd := range daysList {
		out.Days = append(out.Days, listJSONDay{
			Date:    dd.Schedule.Date().Format("2006-01-02"),
			Hijri:   dd.Hijri,
			Timings: timingsMap(s, dd.Schedule),
		})
	}

	return writeJSON(w, out)
}
