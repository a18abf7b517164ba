package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/miqat/internal/display"
	"github.com/smokyabdulrahman/miqat/internal/hijri"
)

var flagDate string

// civilDate returns --date, or today, in the configured timezone. It never
// looks up the location.
func civilDate() (time.Time, error) {
	loc, err := currentConfig().Location()
	if err != nil {
		return time.Time{}, err
	}
	if loc == nil {
		loc = time.Local
	}
	if flagDate == "" {
		return clock().In(loc), nil
	}
	d, err := time.ParseInLocation("2006-01-02", flagDate, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q: must be YYYY-MM-DD", flagDate)
	}
	return d, nil
}

func newHijriCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hijri",
		Short: "Show the Hijri date",
		Long:  "Convert today (or --date) to the tabular Islamic calendar.\nObserved dates can differ by a day or two from local moon sighting.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := civilDate()
			if err != nil {
				return err
			}
			h := hijri.FromTime(date)

			if FlagJSON {
				return writeJSON(cmd.OutOrStdout(), struct {
					Gregorian string     `json:"gregorian"`
					Hijri     hijri.Date `json:"hijri"`
					Formatted string     `json:"formatted"`
				}{date.Format("2006-01-02"), h, h.String()})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s  (%s)\n", display.Bold(h.String()), date.Format("Mon 02 Jan 2006"))
			return nil
		},
	}

	cmd.Flags().StringVar(&flagDate, "date", "", "Gregorian date YYYY-MM-DD (default: today)")

	return cmd
}

func newRamadanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ramadan",
		Short: "Show the Ramadan countdown",
		Long:  "Show the day of Ramadan, or the number of days until it begins.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := civilDate()
			if err != nil {
				return err
			}
			info := hijri.RamadanStatus(date)

			w := cmd.OutOrStdout()
			if FlagJSON {
				return writeJSON(w, info)
			}

			if info.Active {
				total := info.Day + info.DaysLeft - 1
				fmt.Fprintf(w, "%s  %s\n",
					display.Accent(fmt.Sprintf("Ramadan day %d of %d", info.Day, total)),
					display.ProgressBar(float64(info.Day)/float64(total), 20))
				fmt.Fprintf(w, "%d days left, counting today\n", info.DaysLeft)
				return nil
			}
			fmt.Fprintf(w, "%s until Ramadan %d, expected %s\n",
				display.Accent(fmt.Sprintf("%d days", info.DaysUntil)),
				hijri.FromTime(info.Start).Year,
				info.Start.Format("Mon 02 Jan 2006"))
			return nil
		},
	}

	cmd.Flags().StringVar(&flagDate, "date", "", "Gregorian date YYYY-MM-DD (default: today)")

	return cmd
}
