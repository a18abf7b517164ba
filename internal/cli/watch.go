package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/miqat/internal/config"
	"github.com/smokyabdulrahman/miqat/internal/display"
	"github.com/smokyabdulrahman/miqat/internal/notify"
	"github.com/smokyabdulrahman/miqat/internal/watch"
)

var (
	flagInterval time.Duration
	flagMQTT     bool
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the current prayer live",
		Long: "Keep a live countdown to the next prayer, announce each prayer as it begins\n" +
			"and refresh the schedule at midnight. With --mqtt, publish every change to\n" +
			"<mqtt_topic>/current and <mqtt_topic>/schedule on the configured broker.",
		Args: cobra.NoArgs,
		RunE: runWatch,
	}

	cmd.Flags().DurationVar(&flagInterval, "interval", time.Second, "Refresh interval")
	cmd.Flags().BoolVar(&flagMQTT, "mqtt", false, "Publish prayer changes to the MQTT broker (mqtt_broker)")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	var pub *notify.Publisher
	if flagMQTT {
		if s.cfg.MQTTBroker == "" {
			return errors.New("--mqtt needs a broker; run 'miqat config set mqtt_broker tcp://host:1883'")
		}
		pub, err = notify.Connect(notify.Options{
			Broker:   s.cfg.MQTTBroker,
			Topic:    s.cfg.MQTTTopic,
			Username: os.Getenv(config.EnvName("mqtt_username")),
			Password: os.Getenv(config.EnvName("mqtt_password")),
		})
		if err != nil {
			return err
		}
		defer pub.Close()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	now := clock().In(s.loc)
	w := watch.New(s.source, s.params(now), watch.Config{TickInterval: flagInterval})
	events := w.Subscribe(16)
	if pub != nil {
		go pub.Run(ctx, w.Subscribe(16))
	}
	if err := w.Start(ctx, now); err != nil {
		return err
	}
	defer w.Stop()

	out := cmd.OutOrStdout()
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if FlagJSON {
				if ev.Type != watch.EventTick {
					if err := writeJSONLine(out, watchJSON(s, ev)); err != nil {
						return err
					}
				}
				continue
			}
			printWatchEvent(out, s, ev)
		}
	}
}

type watchEventJSON struct {
	Type      string `json:"type"`
	At        string `json:"at"`
	Current   string `json:"current,omitempty"`
	Next      string `json:"next,omitempty"`
	NextTime  string `json:"next_time,omitempty"`
	Countdown string `json:"countdown,omitempty"`
	Error     string `json:"error,omitempty"`
}

func watchJSON(s *session, ev watch.Event) watchEventJSON {
	out := watchEventJSON{Type: string(ev.Type), At: ev.At.In(s.loc).Format(time.RFC3339)}
	switch ev.Type {
	case watch.EventError:
		out.Error = ev.Err.Error()
	case watch.EventRollover:
		out.Current = ev.Current.Key()
	default:
		out.Current = ev.Current.Key()
		out.Next = ev.Next.Name.Key()
		out.NextTime = ev.Next.Time.In(s.loc).Format(time.RFC3339)
		out.Countdown = ev.Countdown.String()
	}
	return out
}

// printWatchEvent redraws the status line on ticks and prints a line of its
// own for everything else.
func printWatchEvent(w io.Writer, s *session, ev watch.Event) {
	switch ev.Type {
	case watch.EventTick:
		fmt.Fprintf(w, "\r  %-7s %s  %s %s in %s ",
			ev.Current,
			display.ProgressBar(ev.Progress, 20),
			display.Accent(ev.Next.Name.String()),
			s.formatTime(ev.Next),
			ev.Countdown)
	case watch.EventPrayer:
		fmt.Fprintf(w, "\r\033[K  %s\n", display.Green(fmt.Sprintf("%s time, %s", ev.Current, s.formatTime(ev.Schedule.Get(ev.Current)))))
	case watch.EventRollover:
		fmt.Fprintf(w, "\r\033[K  %s\n", display.Bold(ev.Schedule.Date().Format("Monday 02 January 2006")))
		for _, in := range s.selected(ev.Schedule) {
			fmt.Fprintf(w, "    %-7s %s\n", in.Name, s.formatTime(in))
		}
	case watch.EventError:
		log.Warn().Err(ev.Err).Msg("watch")
	}
}
