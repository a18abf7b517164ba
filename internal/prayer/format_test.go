package prayer

import (
	"strings"
	"testing"
	"time"
)

// helper: a fixed instant and "now" time for format tests.
func formatTestInstant() (Instant, time.Time) {
	at := time.Date(2026, 2, 28, 15, 2, 0, 0, time.UTC)
	now := time.Date(2026, 2, 28, 12, 47, 0, 0, time.UTC)
	return Instant{Name: Asr, Time: at}, now
}

func TestFormatOutput_AllBuiltinModes(t *testing.T) {
	next, now := formatTestInstant()

	tests := []struct {
		mode string
		want string
	}{
		{FormatTimeRemaining, "2h 15m"},
		{FormatNextPrayerTime, "15:02"},
		{FormatNameAndTime, "Asr 15:02"},
		{FormatNameAndRemaining, "Asr 2h 15m"},
		{FormatShortNameAndTime, "A 15:02"},
		{FormatShortNameAndRemain, "A 2h 15m"},
		{FormatCountdown, "Asr -02:15:00"},
		{FormatFull, "Asr 15:02 (2h 15m)"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got := FormatOutput(next, Dhuhr, now, tt.mode, Layout24h)
			if got != tt.want {
				t.Errorf("FormatOutput(%q) = %q, want %q", tt.mode, got, tt.want)
			}
		})
	}
}

func TestFormatOutput_12HourFormat(t *testing.T) {
	next, now := formatTestInstant()

	got := FormatOutput(next, Dhuhr, now, FormatNameAndTime, TimeLayout("12h"))
	if got != "Asr 3:02 PM" {
		t.Errorf("12h format = %q, want %q", got, "Asr 3:02 PM")
	}
}

func TestFormatOutput_UnknownModeDefaultsToNameAndTime(t *testing.T) {
	next, now := formatTestInstant()

	got := FormatOutput(next, Dhuhr, now, "nonexistent-format", Layout24h)
	if got != "Asr 15:02" {
		t.Errorf("unknown mode = %q, want %q", got, "Asr 15:02")
	}
}

func TestFormatOutput_CustomTemplate(t *testing.T) {
	next, now := formatTestInstant()

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"name and remaining", "{{.Name}} in {{.Remaining}}", "Asr in 2h 15m"},
		{"short name and time", "{{.ShortName}} @ {{.Time}}", "A @ 15:02"},
		{"hours and minutes fields", "{{.Hours}}h {{.Minutes}}m until {{.Name}}", "2h 15m until Asr"},
		{"current prayer", "{{.Current}} now, {{.Name}} next", "Dhuhr now, Asr next"},
		{"countdown", "{{.Countdown}}", "02:15:00"},
		{
			"all fields",
			"{{.Name}}|{{.ShortName}}|{{.Time}}|{{.Remaining}}|{{.Hours}}|{{.Minutes}}|{{.Seconds}}",
			"Asr|A|15:02|2h 15m|2|15|0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatOutput(next, Dhuhr, now, tt.tmpl, Layout24h)
			if got != tt.want {
				t.Errorf("custom template %q = %q, want %q", tt.tmpl, got, tt.want)
			}
		})
	}
}

func TestFormatOutput_InvalidTemplate(t *testing.T) {
	next, now := formatTestInstant()

	got := FormatOutput(next, Dhuhr, now, "{{.Invalid", Layout24h)
	if !strings.HasPrefix(got, "template-err:") {
		t.Errorf("invalid template should return 'template-err:...', got %q", got)
	}
}

func TestFormatOutput_TemplateBadField(t *testing.T) {
	next, now := formatTestInstant()

	got := FormatOutput(next, Dhuhr, now, "{{.NonExistent}}", Layout24h)
	if !strings.HasPrefix(got, "template-err:") {
		t.Errorf("bad field template should return 'template-err:...', got %q", got)
	}
}

func TestFormatOutput_LessThanOneHour(t *testing.T) {
	next := Instant{Name: Dhuhr, Time: time.Date(2026, 2, 28, 13, 30, 0, 0, time.UTC)}
	now := time.Date(2026, 2, 28, 13, 5, 0, 0, time.UTC)

	got := FormatOutput(next, Sunrise, now, FormatTimeRemaining, Layout24h)
	if got != "25m" {
		t.Errorf("time-remaining < 1h = %q, want %q", got, "25m")
	}
}

func TestFormatOutput_ZeroRemaining(t *testing.T) {
	now := time.Date(2026, 2, 28, 15, 2, 0, 0, time.UTC)
	next := Instant{Name: Asr, Time: now}

	got := FormatOutput(next, Dhuhr, now, FormatTimeRemaining, Layout24h)
	if got != "0m" {
		t.Errorf("zero remaining = %q, want %q", got, "0m")
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"hours and minutes", 2*time.Hour + 15*time.Minute, "2h 15m"},
		{"only minutes", 45 * time.Minute, "45m"},
		{"exactly one hour", 1 * time.Hour, "1h 0m"},
		{"zero", 0, "0m"},
		{"negative", -30 * time.Minute, "0m"},
		{"large", 10*time.Hour + 59*time.Minute, "10h 59m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatRemaining(tt.duration)
			if got != tt.want {
				t.Errorf("FormatRemaining(%v) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}
