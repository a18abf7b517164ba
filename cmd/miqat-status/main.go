// Command miqat-status prints the next prayer on one line for status bars
// such as tmux:
//
//	set -g status-right '#(miqat-status --format short-name-and-remaining)'
//
// It accepts every flag of `miqat next`.
package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/smokyabdulrahman/miqat/internal/cli"
)

var version = "dev"

func main() {
	rootCmd := cli.NewRootCmd(version)
	rootCmd.SetArgs(statusArgs(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		// Keep the status bar short.
		fmt.Fprintf(os.Stderr, "miqat-status: %v\n", err)
		os.Exit(1)
	}
}

// statusArgs runs `next` with the compact name-and-time format unless the
// caller picked a format or asked for the version.
func statusArgs(args []string) []string {
	out := []string{"next"}
	hasFormat := false
	for _, a := range args {
		switch {
		case a == "--version" || a == "-v":
			return []string{"--version"}
		case a == "--format" || len(a) > 9 && a[:9] == "--format=":
			hasFormat = true
		}
	}
	if !hasFormat {
		out = append(out, "--format", "name-and-time")
	}
	return append(out, args...)
}
