package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/miqat/internal/display"
	"github.com/smokyabdulrahman/miqat/internal/qibla"
)

var (
	flagHeading float64
	flagStdin   bool
)

func newQiblaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "qibla",
		Short: "Show the Qibla direction",
		Long: "Print the bearing and distance to the Kaaba from the current location.\n" +
			"With --heading, check whether a compass heading faces the Qibla.\n" +
			"With --stdin, read one heading per line and report each as it arrives.",
		Args: cobra.NoArgs,
		RunE: runQibla,
	}

	cmd.Flags().Float64Var(&flagHeading, "heading", 0, "Compass heading in degrees clockwise from north")
	cmd.Flags().BoolVar(&flagStdin, "stdin", false, "Read headings from standard input, one per line")

	return cmd
}

type qiblaJSON struct {
	Location   todayJSONLocation `json:"location"`
	Bearing    float64           `json:"bearing"`
	Compass    string            `json:"compass"`
	DistanceKm float64           `json:"distance_km"`
	Alignment  *qibla.Alignment  `json:"alignment,omitempty"`
}

func runQibla(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}
	if !s.place.HasCoordinate {
		return errors.New("the Qibla needs coordinates; set --latitude and --longitude")
	}

	bearing := qibla.Bearing(s.place.Coordinate)
	distance := qibla.Distance(s.place.Coordinate)
	w := cmd.OutOrStdout()

	if flagStdin {
		return streamHeadings(cmd, bearing)
	}

	var alignment *qibla.Alignment
	if cmd.Flags().Changed("heading") {
		if math.IsNaN(flagHeading) || math.IsInf(flagHeading, 0) {
			return errors.New("--heading must be a finite number")
		}
		a := qibla.Check(flagHeading, bearing)
		alignment = &a
	}

	if FlagJSON {
		return writeJSON(w, qiblaJSON{
			Location:   jsonLocation(s),
			Bearing:    bearing,
			Compass:    display.CompassPoint(bearing),
			DistanceKm: distance,
			Alignment:  alignment,
		})
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", display.Bold("Qibla"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s\n", s.place.Label())
	fmt.Fprintf(w, "  Bearing   %s\n", display.Accent(display.Bearing(bearing)))
	fmt.Fprintf(w, "  Distance  %.0f km\n", distance)
	if alignment != nil {
		fmt.Fprintf(w, "  Heading   %.2f°  %s\n", alignment.Heading, display.TurnHint(alignment.Delta, alignment.Aligned))
	}
	fmt.Fprintln(w)
	return nil
}

// streamHeadings reports every heading read from stdin until EOF or an
// interrupt. Lines that are not numbers are skipped with a warning.
func streamHeadings(cmd *cobra.Command, bearing float64) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	headings := make(chan float64)
	readErr := make(chan error, 1)
	go func() {
		defer close(headings)
		readErr <- readHeadings(cmd.InOrStdin(), headings, ctx.Done())
	}()

	w := cmd.OutOrStdout()
	for a := range qibla.Track(ctx, headings, bearing) {
		if FlagJSON {
			if err := writeJSONLine(w, a); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintf(w, "%7.2f°  %s\n", a.Heading, display.TurnHint(a.Delta, a.Aligned))
	}

	select {
	case err := <-readErr:
		return err
	default:
		return nil
	}
}

func readHeadings(r io.Reader, out chan<- float64, done <-chan struct{}) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		h, err := strconv.ParseFloat(line, 64)
		if err != nil || math.IsNaN(h) || math.IsInf(h, 0) {
			log.Warn().Str("line", line).Msg("skipping invalid heading")
			continue
		}
		select {
		case out <- h:
		case <-done:
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading headings: %w", err)
	}
	return nil
}
