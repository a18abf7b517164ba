package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/miqat/internal/display"
	"github.com/smokyabdulrahman/miqat/internal/hijri"
	"github.com/smokyabdulrahman/miqat/internal/store"
)

// withStore opens the records database for the duration of fn.
func withStore(fn func(*store.Store) error) error {
	st, err := store.Open(currentConfig().DBPath)
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func parsePositive(what, raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s %q: must be a positive integer", what, raw)
	}
	return n, nil
}

func newDhikrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dhikr",
		Short: "Count dhikr",
		Long:  "Keep named dhikr counters with optional targets.\nWhen run without subcommands, lists every counter.",
		Args:  cobra.NoArgs,
		RunE:  runDhikrList,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List counters",
		Args:  cobra.NoArgs,
		RunE:  runDhikrList,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "inc <name> [n]",
		Short: "Add to a counter (default 1)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n := 1
			if len(args) == 2 {
				v, err := parsePositive("count", args[1])
				if err != nil {
					return err
				}
				n = v
			}
			return withStore(func(st *store.Store) error {
				c, reached, err := st.Increment(args[0], n)
				if err != nil {
					return err
				}
				if FlagJSON {
					return writeJSON(cmd.OutOrStdout(), struct {
						store.Counter
						Reached bool `json:"reached"`
					}{c, reached})
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatCounter(c))
				if reached {
					fmt.Fprintln(cmd.OutOrStdout(), display.Green(fmt.Sprintf("Target of %d reached.", c.Target)))
				}
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-target <name> <target>",
		Short: "Set a counter's target (0 removes it)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid target %q: must be an integer", args[1])
			}
			return withStore(func(st *store.Store) error {
				c, err := st.SetTarget(args[0], target)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatCounter(c))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset <name>",
		Short: "Reset a counter to zero",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(st *store.Store) error {
				if err := st.Reset(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %s.\n", args[0])
				return nil
			})
		},
	})

	return cmd
}

func runDhikrList(cmd *cobra.Command, args []string) error {
	return withStore(func(st *store.Store) error {
		counters, err := st.List()
		if err != nil {
			return err
		}
		if FlagJSON {
			return writeJSON(cmd.OutOrStdout(), counters)
		}
		tbl := display.NewTable([]string{"Dhikr", "Count", "Target", ""})
		for _, c := range counters {
			target := "-"
			if c.Target > 0 {
				target = strconv.Itoa(c.Target)
			}
			bar := ""
			if c.Target > 0 {
				bar = display.ProgressBar(float64(c.Count)/float64(c.Target), 10)
			}
			tbl.AddRow([]string{c.Name, strconv.Itoa(c.Count), target, bar})
		}
		fmt.Fprint(cmd.OutOrStdout(), tbl.Render())
		return nil
	})
}

// formatCounter renders "SubhanAllah 12/33" or "Salawat 40".
func formatCounter(c store.Counter) string {
	if c.Target > 0 {
		return fmt.Sprintf("%s %d/%d", c.Name, c.Count, c.Target)
	}
	return fmt.Sprintf("%s %d", c.Name, c.Count)
}

func newKhatmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "khatm",
		Short: "Track Quran reading by juz",
		Long:  "Mark each juz as it is read. A cycle completes when all 30 are read and a new one begins.\nWhen run without subcommands, shows the progress of the open cycle.",
		Args:  cobra.NoArgs,
		RunE:  runKhatmStatus,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the open cycle",
		Args:  cobra.NoArgs,
		RunE:  runKhatmStatus,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "mark <juz>",
		Short: "Mark a juz (1-30) as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			juz, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid juz %q: must be a number between 1 and %d", args[0], store.JuzCount)
			}
			return withStore(func(st *store.Store) error {
				status, completed, err := st.MarkJuz(juz)
				if err != nil {
					return err
				}
				if FlagJSON {
					return writeJSON(cmd.OutOrStdout(), status)
				}
				if completed {
					fmt.Fprintln(cmd.OutOrStdout(), display.Green(fmt.Sprintf("Khatm %d complete.", status.Completed)))
				}
				printKhatm(cmd.OutOrStdout(), status)
				return nil
			})
		},
	})

	return cmd
}

func runKhatmStatus(cmd *cobra.Command, args []string) error {
	return withStore(func(st *store.Store) error {
		status, err := st.KhatmProgress()
		if err != nil {
			return err
		}
		if FlagJSON {
			return writeJSON(cmd.OutOrStdout(), status)
		}
		printKhatm(cmd.OutOrStdout(), status)
		return nil
	})
}

func printKhatm(w io.Writer, k store.KhatmStatus) {
	fmt.Fprintf(w, "Cycle %d  %s  %d/%d juz (%.0f%%)\n",
		k.Cycle, display.ProgressBar(k.Percent/100, 30), len(k.Juz), store.JuzCount, k.Percent)
	if remaining := k.Remaining(); len(remaining) > 0 && len(remaining) < store.JuzCount {
		fmt.Fprintf(w, "Remaining: %s\n", joinInts(remaining))
	}
	if k.Completed > 0 {
		fmt.Fprintf(w, "Completed cycles: %d\n", k.Completed)
	}
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

var (
	flagFastYear   int
	flagFastMissed bool
)

// fastYear returns --year, or the Hijri year of today.
func fastYear(cmd *cobra.Command) (int, error) {
	if flagWasSet(cmd.Flags(), cmd.Root().PersistentFlags(), "year") {
		return flagFastYear, nil
	}
	today, err := civilDate()
	if err != nil {
		return 0, err
	}
	return hijri.FromTime(today).Year, nil
}

func newFastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fast",
		Short: "Log Ramadan fasts",
		Long:  "Record whether each day of Ramadan was fasted and summarize the month.",
	}
	cmd.PersistentFlags().IntVar(&flagFastYear, "year", 0, "Hijri year (default: current)")

	logCmd := &cobra.Command{
		Use:   "log [day]",
		Short: "Log a fast (default: today's Ramadan day)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := fastYear(cmd)
			if err != nil {
				return err
			}
			var day int
			if len(args) == 1 {
				day, err = parsePositive("day", args[0])
				if err != nil {
					return err
				}
			} else {
				today, err := civilDate()
				if err != nil {
					return err
				}
				info := hijri.RamadanStatus(today)
				if !info.Active {
					return fmt.Errorf("it is not Ramadan; give the day to log")
				}
				day = info.Day
			}
			return withStore(func(st *store.Store) error {
				if err := st.LogFast(year, day, !flagFastMissed); err != nil {
					return err
				}
				state := "kept"
				if flagFastMissed {
					state = "missed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Ramadan %d, day %d: %s\n", year, day, state)
				return nil
			})
		},
	}
	logCmd.Flags().BoolVar(&flagFastMissed, "missed", false, "Log the day as missed")
	cmd.AddCommand(logCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "summary",
		Short: "Summarize a Ramadan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := fastYear(cmd)
			if err != nil {
				return err
			}
			return withStore(func(st *store.Store) error {
				summary, err := st.FastSummary(year)
				if err != nil {
					return err
				}
				if FlagJSON {
					return writeJSON(cmd.OutOrStdout(), summary)
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Ramadan %d: %d kept, %d missed\n", summary.Year, summary.Kept, summary.Missed)
				var missed []int
				for _, f := range summary.Days {
					if !f.Kept {
						missed = append(missed, f.Day)
					}
				}
				if len(missed) > 0 {
					fmt.Fprintf(w, "To make up: %s\n", joinInts(missed))
				}
				return nil
			})
		},
	})

	return cmd
}
