package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/smokyabdulrahman/miqat/internal/config"
	"github.com/smokyabdulrahman/miqat/internal/logging"
)

// Global flags shared across all subcommands.
var (
	FlagCity         string
	FlagCountry      string
	FlagLatitude     float64
	FlagLongitude    float64
	FlagMethod       string
	FlagSource       string
	FlagHighLatitude string
	FlagTimezone     string
	FlagJSON         bool
	FlagOffline      bool
	FlagCacheDir     string
	FlagTimeFormat   string
	FlagLogLevel     string
)

// flagKeys maps flags that override a config key to that key.
var flagKeys = map[string]string{
	"latitude":           "latitude",
	"longitude":          "longitude",
	"city":               "city",
	"country":            "country",
	"method":             "method",
	"source":             "source",
	"high-latitude-rule": "high_latitude_rule",
	"timezone":           "timezone",
	"time-format":        "time_format",
	"cache-dir":          "cache_dir",
	"log-level":          "log_level",
	"prayers":            "prayers",
}

// loadedConfig holds the merged config built during PersistentPreRunE.
// Available to all subcommand handlers.
var loadedConfig *config.Config

// clock is the time source of every command.
var clock = time.Now

// NewRootCmd creates the root command for the miqat CLI.
// The version parameter is set by the calling binary via ldflags.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "miqat",
		Short:   "Islamic prayer times, Qibla direction and daily companion",
		Long:    "Compute the daily prayer times for any location, follow the current and next prayer,\nfind the Qibla and keep track of dhikr, Quran reading and Ramadan fasts.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			fileCfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := fileCfg.ApplyEnv(); err != nil {
				return err
			}
			cfg, err := effectiveConfig(cmd, fileCfg)
			if err != nil {
				return err
			}
			loadedConfig = cfg

			return logging.Setup(logging.Options{
				Level: cfg.LogLevel,
				JSON:  cmd.Name() == "serve",
				Out:   cmd.ErrOrStderr(),
			})
		},
		// Default action: show today's prayer schedule.
		RunE:          runToday,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Register global persistent flags.
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&FlagCity, "city", "", "Override city (remote source only)")
	pf.StringVar(&FlagCountry, "country", "", "Override country")
	pf.Float64Var(&FlagLatitude, "latitude", 0, "Override latitude")
	pf.Float64Var(&FlagLongitude, "longitude", 0, "Override longitude")
	pf.StringVar(&FlagMethod, "method", "", "Calculation method (see 'miqat methods')")
	pf.StringVar(&FlagSource, "source", "", "Schedule source: local or aladhan")
	pf.StringVar(&FlagHighLatitude, "high-latitude-rule", "", "none, middle-of-night, seventh-of-night or twilight-angle")
	pf.StringVar(&FlagTimezone, "timezone", "", "IANA timezone used for display (default: detected or system)")
	pf.BoolVar(&FlagJSON, "json", false, "Output as JSON (where supported)")
	pf.BoolVar(&FlagOffline, "offline", false, "Never look up the location over the network")
	pf.StringVar(&FlagCacheDir, "cache-dir", "", "Cache directory (default: ~/.cache/miqat/)")
	pf.StringVar(&FlagTimeFormat, "time-format", "", "Time format: 12h or 24h (overrides config)")
	pf.StringVar(&FlagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")

	// Register subcommands.
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newWeekCmd())
	rootCmd.AddCommand(newMonthCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newQiblaCmd())
	rootCmd.AddCommand(newHijriCmd())
	rootCmd.AddCommand(newRamadanCmd())
	rootCmd.AddCommand(newDhikrCmd())
	rootCmd.AddCommand(newKhatmCmd())
	rootCmd.AddCommand(newFastCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newMethodsCmd())

	return rootCmd
}

// PrintVersion prints the version string in the expected format.
func PrintVersion(version string) string {
	return fmt.Sprintf("miqat %s\n", version)
}

// effectiveConfig returns the merged configuration values,
// applying the priority: CLI flags > environment > config file > defaults.
// It uses cobra's Changed() to detect whether a flag was explicitly set.
// Flag values are validated like `config set`.
func effectiveConfig(cmd *cobra.Command, fileCfg *config.Config) (*config.Config, error) {
	cfg := config.Config{}
	if fileCfg != nil {
		cfg = *fileCfg
	}

	flags := cmd.Flags()
	root := cmd.Root().PersistentFlags()

	for name, key := range flagKeys {
		f := changedFlag(flags, root, name)
		if f == nil {
			continue
		}
		if err := cfg.Set(key, f.Value.String()); err != nil {
			return nil, fmt.Errorf("--%s: %w", name, err)
		}
	}

	// Apply defaults for unset config values.
	defaults := config.Defaults()
	if cfg.Method == "" {
		cfg.Method = defaults.Method
	}
	if cfg.Source == "" {
		cfg.Source = defaults.Source
	}
	if cfg.HighLatitudeRule == "" {
		cfg.HighLatitudeRule = defaults.HighLatitudeRule
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = defaults.TimeFormat
	}
	if cfg.MQTTTopic == "" {
		cfg.MQTTTopic = defaults.MQTTTopic
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaults.ListenAddr
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}

	return &cfg, nil
}

// flagWasSet checks if a flag was explicitly set on either the local or persistent flag set.
func flagWasSet(local, persistent *pflag.FlagSet, name string) bool {
	return changedFlag(local, persistent, name) != nil
}

func changedFlag(local, persistent *pflag.FlagSet, name string) *pflag.Flag {
	if f := local.Lookup(name); f != nil && f.Changed {
		return f
	}
	if f := persistent.Lookup(name); f != nil && f.Changed {
		return f
	}
	return nil
}

// currentConfig returns the merged config, or defaults when the pre-run hook
// has not run.
func currentConfig() *config.Config {
	if loadedConfig == nil {
		cfg := config.Defaults()
		return &cfg
	}
	return loadedConfig
}
