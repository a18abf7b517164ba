package cli

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

var (
	flagFormat  string
	flagPrayers string
)

func newNextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the next prayer with countdown",
		Long:  "Display the next upcoming prayer time with a countdown.\nThe compact formats are meant for status bars such as tmux.",
		RunE:  runNext,
	}

	cmd.Flags().StringVar(&flagFormat, "format", prayer.FormatFull, "Display format: time-remaining, next-prayer-time, name-and-time, name-and-remaining, short-name-and-time, short-name-and-remaining, countdown, full, or a custom Go template")
	cmd.Flags().StringVar(&flagPrayers, "prayers", "", "Comma-separated list of prayers to track (overrides config)")

	return cmd
}

func runNext(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	now := clock().In(s.loc)
	sched, _, err := s.day(cmd.Context(), now)
	if err != nil {
		return err
	}

	next, err := s.next(cmd.Context(), sched, now)
	if err != nil {
		// Tomorrow's data is unavailable: show the last prayer with a
		// "done" indicator rather than breaking the status bar.
		if selected := s.selected(sched); len(selected) > 0 {
			log.Warn().Err(err).Msg("could not load tomorrow's schedule")
			fmt.Fprintf(cmd.OutOrStdout(), "%s --:--", selected[len(selected)-1].Name)
			return nil
		}
		return err
	}
	if !next.Available() {
		return errors.New("could not determine next prayer")
	}

	next.Time = next.Time.In(s.loc)
	output := prayer.FormatOutput(next, prayer.CurrentPrayer(sched, now), now, flagFormat, s.layout)
	fmt.Fprint(cmd.OutOrStdout(), output)

	return nil
}
