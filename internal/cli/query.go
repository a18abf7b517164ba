package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/miqat/internal/display"
	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

var flagQueryDays string

func newQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <prayer>",
		Short: "Query a specific prayer time",
		Long:  "Query a specific prayer time for today, or across multiple days with --days.\n\nValid prayer names: Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha",
		Args:  cobra.ExactArgs(1),
		RunE:  runQuery,
	}

	cmd.Flags().StringVar(&flagQueryDays, "days", "", "Number of days to show (or 'week'/'month')")

	return cmd
}

// parseQueryDays reads --days: a positive integer, week or month.
func parseQueryDays(raw string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return 1, nil
	case "week":
		return 7, nil
	case "month":
		return 30, nil
	}
	n, err := parseDays(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid --days value %q: must be a positive integer, 'week', or 'month'", raw)
	}
	return n, nil
}

func runQuery(cmd *cobra.Command, args []string) error {
	name, err := prayer.ParseName(args[0])
	if err != nil {
		return err
	}
	days, err := parseQueryDays(flagQueryDays)
	if err != nil {
		return err
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	daysList, err := s.loadDays(cmd, days)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	// Single day: one line.
	if days == 1 {
		dd := daysList[0]
		in := dd.Schedule.Get(name)
		if FlagJSON {
			return writeJSON(w, queryJSONSingle{
				Prayer: name.Key(),
				Time:   s.formatTime(in),
				Date:   dd.Schedule.Date().Format("2006-01-02"),
				Hijri:  dd.Hijri,
			})
		}
		fmt.Fprintf(w, "%s %s\n", name, s.formatTime(in))
		return nil
	}

	if FlagJSON {
		out := queryJSONMulti{
			Location: jsonLocation(s),
			Prayer:   name.Key(),
		}
		for _, dd := range daysList {
			out.Days = append(out.Days, queryJSONDay{
				Date:  dd.Schedule.Date().Format("2006-01-02"),
				Hijri: dd.Hijri,
				Time:  s.formatTime(dd.Schedule.Get(name)),
			})
		}
		return writeJSON(w, out)
	}

	// Rich terminal output.
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold(fmt.Sprintf("%s Times: %d Days", name, days)))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.place.Label())
	fmt.Fprintln(w)

	tbl := display.NewTable([]string{"Date", name.String()})
	for _, dd := range daysList {
		tbl.AddRow([]string{dd.Schedule.Date().Format("Mon 02 Jan"), s.formatTime(dd.Schedule.Get(name))})
	}
	tbl.SetHighlightRow(0)

	fmt.Fprint(w, tbl.Render())
	fmt.Fprintln(w)
	return nil
}

type queryJSONSingle struct {
	Prayer string `json:"prayer"`
	Time   string `json:"time"`
	Date   string `json:"date"`
	Hijri  string `json:"hijri"`
}

type queryJSONMulti struct {
	Location todayJSONLocation `json:"location"`
	Prayer   string            `json:"prayer"`
	Days     []queryJSONDay    `json:"days"`
}

type queryJSONDay struct {
	Date  string `json:"date"`
	Hijri string `json:"hijri"`
	Time  string `json:"time"`
}
