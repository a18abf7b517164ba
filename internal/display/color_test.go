package display

import (
	"os"
	"testing"
)

func TestStyles(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	tests := []struct {
		name string
		fn   func(string) string
		want string
	}{
		{"Bold", Bold, "\033[1mMaghrib\033[0m"},
		{"Dim", Dim, "\033[2mMaghrib\033[0m"},
		{"Green", Green, "\033[32mMaghrib\033[0m"},
		{"Yellow", Yellow, "\033[33mMaghrib\033[0m"},
		{"Gray", Gray, "\033[90mMaghrib\033[0m"},
		{"Accent", Accent, "\033[1;36mMaghrib\033[0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn("Maghrib"); got != tt.want {
				t.Errorf("%s(%q) = %q, want %q", tt.name, "Maghrib", got, tt.want)
			}
		})
	}
}

func TestStyles_Disabled(t *testing.T) {
	SetEnabled(false)

	for _, fn := range []func(string) string{Bold, Dim, Green, Yellow, Gray, Accent} {
		if got := fn("--:--"); got != "--:--" {
			t.Errorf("styled %q with colours off", got)
		}
	}
}

func TestStyles_EmptyTextStaysEmpty(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	if got := Accent(""); got != "" {
		t.Errorf("Accent(\"\") = %q, want empty", got)
	}
}

func TestDetect(t *testing.T) {
	env := func(vars ...string) func(string) (string, bool) {
		return func(key string) (string, bool) {
			for _, v := range vars {
				if v == key {
					return "1", true
				}
			}
			return "", false
		}
	}

	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	tests := []struct {
		name   string
		file   *os.File
		lookup func(string) (string, bool)
		want   bool
	}{
		{"regular file", f, env(), false},
		{"no file", nil, env(), false},
		{"NO_COLOR wins", f, env("NO_COLOR", "FORCE_COLOR"), false},
		{"FORCE_COLOR", f, env("FORCE_COLOR"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detect(tt.file, tt.lookup); got != tt.want {
				t.Errorf("detect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnabled_ReportsState(t *testing.T) {
	SetEnabled(true)
	if !Enabled() {
		t.Error("Enabled() should return true after SetEnabled(true)")
	}

	SetEnabled(false)
	if Enabled() {
		t.Error("Enabled() should return false after SetEnabled(false)")
	}
}
