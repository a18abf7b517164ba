package cli

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/miqat/internal/config"
	"github.com/smokyabdulrahman/miqat/internal/prayer"
	"github.com/smokyabdulrahman/miqat/internal/server"
)

var flagAddr string

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: "Serve schedules, countdowns, the Hijri date and the Qibla direction over HTTP,\n" +
			"plus a websocket at /ws/qibla that checks compass headings as they stream in.\n" +
			"Every request names its own coordinate with lat and lng.",
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides listen_addr)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	if loc == nil {
		loc = time.UTC
	}

	// Every request carries its own coordinate, so the remote source is
	// always keyed by coordinate.
	var src prayer.Source = prayer.Local{}
	if cfg.Source == config.SourceAladhan {
		src, _ = newSource(cfg, openCache(cfg), place{HasCoordinate: true})
	}

	addr := cfg.ListenAddr
	if cmd.Flags().Changed("addr") {
		addr = flagAddr
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(server.Options{
		Source:       src,
		Method:       cfg.MethodOrDefault(prayer.DefaultMethod),
		HighLatitude: cfg.HighLatitude(),
		Location:     loc,
		Now:          clock,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx, addr)
}
