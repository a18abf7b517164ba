package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func restoreGlobals(t *testing.T) {
	t.Helper()
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})
}

func TestSetup_JSONFiltersByLevel(t *testing.T) {
	restoreGlobals(t)

	var buf bytes.Buffer
	if err := Setup(Options{Level: "warn", JSON: true, Out: &buf}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	log.Info().Msg("hidden")
	log.Warn().Str("key", "cache").Msg("cache unavailable")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["level"] != "warn" || entry["message"] != "cache unavailable" || entry["key"] != "cache" {
		t.Errorf("unexpected entry: %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("entry has no timestamp")
	}
}

func TestSetup_ConsoleFormat(t *testing.T) {
	restoreGlobals(t)

	var buf bytes.Buffer
	if err := Setup(Options{Level: "debug", Out: &buf}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	log.Debug().Msg("schedule computed")

	if !strings.Contains(buf.String(), "schedule computed") {
		t.Errorf("console output missing message: %q", buf.String())
	}
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("console output should not be JSON: %q", buf.String())
	}
}

func TestSetup_InvalidLevel(t *testing.T) {
	restoreGlobals(t)

	if err := Setup(Options{Level: "loud"}); err == nil {
		t.Fatal("Setup with invalid level should fail")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"", zerolog.WarnLevel},
		{"DEBUG", zerolog.DebugLevel},
		{" info ", zerolog.InfoLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if err != nil {
			t.Fatalf("ParseLevel(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
