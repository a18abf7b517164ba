// Package display renders miqat's terminal output: ANSI styles, aligned
// tables and the meters drawn for countdowns and the Qibla.
//
// Styling is switched off by NO_COLOR (https://no-color.org/), forced on by
// FORCE_COLOR, and otherwise follows whether stdout is a terminal.
package display

import (
	"os"
	"strings"
)

// style is a sequence of SGR parameters, e.g. "1;36".
type style string

const (
	styleBold   style = "1"
	styleDim    style = "2"
	styleGreen  style = "32"
	styleYellow style = "33"
	styleGray   style = "90"
	// styleAccent marks the next prayer and live countdowns.
	styleAccent style = "1;36"
)

var enabled = detect(os.Stdout, os.LookupEnv)

func detect(f *os.File, lookup func(string) (string, bool)) bool {
	if _, ok := lookup("NO_COLOR"); ok {
		return false
	}
	if _, ok := lookup("FORCE_COLOR"); ok {
		return true
	}
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// SetEnabled overrides the detected state.
func SetEnabled(b bool) {
	enabled = b
}

// Enabled reports whether styles are applied.
func Enabled() bool {
	return enabled
}

func (s style) paint(text string) string {
	if !enabled || text == "" {
		return text
	}
	var sb strings.Builder
	sb.Grow(len(text) + len(s) + 7)
	sb.WriteString("\033[")
	sb.WriteString(string(s))
	sb.WriteString("m")
	sb.WriteString(text)
	sb.WriteString("\033[0m")
	return sb.String()
}

func Bold(text string) string   { return styleBold.paint(text) }
func Dim(text string) string    { return styleDim.paint(text) }
func Green(text string) string  { return styleGreen.paint(text) }
func Yellow(text string) string { return styleYellow.paint(text) }

// Gray mutes text, such as times that cannot be computed.
func Gray(text string) string { return styleGray.paint(text) }

// Accent highlights the next prayer and the running countdown.
func Accent(text string) string { return styleAccent.paint(text) }
