package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smokyabdulrahman/miqat/internal/config"
	"github.com/smokyabdulrahman/miqat/internal/display"
	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or modify configuration",
		Long:  "Display current configuration, or use subcommands to modify it.\nWhen run without subcommands, shows the current configuration.",
		RunE:  runConfigShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config value",
		Long: fmt.Sprintf("Set a configuration value. Valid keys: %s\n\nExamples:\n  miqat config set latitude 21.4225\n  miqat config set longitude 39.8262\n  miqat config set method UmmAlQura\n  miqat config set time_format 12h\n  miqat config set prayers Fajr,Dhuhr,Asr,Maghrib,Isha",
			strings.Join(config.ValidKeys, ", ")),
		Args: cobra.ExactArgs(2),
		RunE: runConfigSet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a config value",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigGet,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Reset config to defaults",
		Long:  "Delete the config file and restore all settings to defaults.",
		RunE:  runConfigReset,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print config file path",
		RunE:  runConfigPath,
	})

	return cmd
}

// runConfigShow displays the configuration file, marking values overridden
// by the environment.
func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "  Configuration (%s)\n\n", path)

	for _, key := range config.ValidKeys {
		val, _ := cfg.Get(key)
		shown := val
		if shown == "" {
			shown = display.Gray("(not set)")
		}
		// Add descriptive labels for the method.
		if key == "method" && val != "" {
			shown = formatMethodValue(val)
		}
		if env := os.Getenv(config.EnvName(key)); env != "" {
			shown += display.Yellow(fmt.Sprintf("  [%s=%s]", config.EnvName(key), env))
		}
		fmt.Fprintf(w, "  %-19s %s\n", key, shown)
	}
	return nil
}

// runConfigSet sets a config key to the given value.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := cfg.Save(); err != nil {
		return err
	}

	stored, _ := cfg.Get(key)
	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, stored)
	return nil
}

// runConfigGet prints one value of the configuration file.
func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	val, err := cfg.Get(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), val)
	return nil
}

// runConfigReset deletes the config file.
func runConfigReset(cmd *cobra.Command, args []string) error {
	if err := config.Reset(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Configuration reset to defaults.")
	return nil
}

// runConfigPath prints the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

// formatMethodValue adds the method name to the stored key.
func formatMethodValue(val string) string {
	m, err := prayer.ParseMethod(val)
	if err != nil {
		return val
	}
	return fmt.Sprintf("%s (%s)", val, m.Config().Name)
}

// formatIsha describes how a method places Isha.
func formatIsha(cfg prayer.MethodConfig) string {
	if cfg.IshaInterval > 0 {
		return fmt.Sprintf("%d min", cfg.IshaInterval)
	}
	return fmt.Sprintf("%g°", cfg.IshaAngle)
}

func newMethodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "methods",
		Short: "List all calculation methods",
		Long:  "Print the table of supported calculation methods with their twilight angles.",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			if FlagJSON {
				type methodJSON struct {
					Key          string  `json:"key"`
					Code         string  `json:"code"`
					Name         string  `json:"name"`
					FajrAngle    float64 `json:"fajr_angle"`
					IshaAngle    float64 `json:"isha_angle,omitempty"`
					IshaInterval int     `json:"isha_interval,omitempty"`
				}
				out := make([]methodJSON, 0, len(prayer.Methods))
				for _, m := range prayer.Methods {
					c := m.Config()
					out = append(out, methodJSON{c.Key, c.Code, c.Name, c.FajrAngle, c.IshaAngle, c.IshaInterval})
				}
				return writeJSON(w, out)
			}

			fmt.Fprintln(w, "Supported calculation methods:")
			fmt.Fprintln(w)
			tbl := display.NewTable([]string{"Key", "Code", "Name", "Fajr", "Isha"})
			for i, m := range prayer.Methods {
				c := m.Config()
				tbl.AddRow([]string{c.Key, c.Code, c.Name, fmt.Sprintf("%g°", c.FajrAngle), formatIsha(c)})
				if m == prayer.DefaultMethod {
					tbl.SetHighlightRow(i)
				}
			}
			fmt.Fprint(w, tbl.Render())
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Use --method <key or code> to select a calculation method.")
			fmt.Fprintf(w, "If omitted, %s is used.\n", prayer.DefaultMethod.Config().Name)
			return nil
		},
	}
}
