package api

import (
	"strings"
	"testing"
	"time"

	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

func TestHijriDate_Format(t *testing.T) {
	tests := []struct {
		name string
		h    HijriDate
		want string
	}{
		{
			name: "full date",
			h: HijriDate{
				Day:         "10",
				Month:       HijriMonth{Number: 8, En: "Sha'ban"},
				Year:        "1447",
				Designation: HijriDesignation{Abbreviated: "AH"},
			},
			want: "10 Sha'ban 1447 AH",
		},
		{
			name: "missing abbreviated defaults to AH",
			h: HijriDate{
				Day:   "1",
				Month: HijriMonth{Number: 1, En: "Muharram"},
				Year:  "1448",
			},
			want: "1 Muharram 1448 AH",
		},
		{
			name: "empty day returns empty",
			h: HijriDate{
				Month: HijriMonth{En: "Ramadan"},
				Year:  "1447",
			},
			want: "",
		},
		{
			name: "empty month returns empty",
			h: HijriDate{
				Day:  "15",
				Year: "1447",
			},
			want: "",
		},
		{
			name: "empty year returns empty",
			h: HijriDate{
				Day:   "15",
				Month: HijriMonth{En: "Ramadan"},
			},
			want: "",
		},
		{
			name: "all empty returns empty",
			h:    HijriDate{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.h.Format()
			if got != tt.want {
				t.Errorf("HijriDate.Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseTimeStr(t *testing.T) {
	date := time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		input   string
		wantH   int
		wantM   int
		wantErr bool
	}{
		{"15:02", 15, 2, false},
		{"00:00", 0, 0, false},
		{"15:02 (BST)", 15, 2, false},
		{"  05:17  (EET) ", 5, 17, false},
		{"bad", 0, 0, true},
		{"", 0, 0, true},
		{"15:", 0, 0, true},
		{"ab:cd", 0, 0, true},
		{"25:00", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseTimeStr(tt.input, date, time.UTC)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseTimeStr(%q) expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseTimeStr(%q) error: %v", tt.input, err)
			}
			if got.Hour() != tt.wantH || got.Minute() != tt.wantM {
				t.Errorf("parseTimeStr(%q) = %02d:%02d, want %02d:%02d", tt.input, got.Hour(), got.Minute(), tt.wantH, tt.wantM)
			}
			if got.Day() != 28 {
				t.Errorf("parseTimeStr(%q) day = %d, want 28", tt.input, got.Day())
			}
		})
	}
}

func TestTimings_Schedule(t *testing.T) {
	zone := time.FixedZone("UTC+3", 3*3600)
	p := prayer.Params{
		Coordinate: prayer.Coordinate{Latitude: 21.4225, Longitude: 39.8262},
		Date:       time.Date(2026, 2, 28, 17, 0, 0, 0, zone),
		Method:     prayer.UmmAlQura,
	}

	s, err := sampleData("28-02-2026").Timings.Schedule(p)
	if err != nil {
		t.Fatalf("Schedule error: %v", err)
	}
	if !s.Complete() || !s.Ordered() {
		t.Fatalf("schedule should be complete and ordered: %+v", s.Instants)
	}
	want := time.Date(2026, 2, 28, 15, 2, 0, 0, zone)
	if got := s.Get(prayer.Asr).Time; !got.Equal(want) {
		t.Errorf("Asr = %v, want %v", got, want)
	}
	if s.Params.Method != prayer.UmmAlQura {
		t.Errorf("Params not carried over: %+v", s.Params)
	}
}

func TestTimings_ScheduleIshaAfterMidnight(t *testing.T) {
	tm := Timings{Fajr: "02:40", Sunrise: "04:43", Dhuhr: "13:02", Asr: "17:24", Maghrib: "21:21", Isha: "00:15"}
	p := prayer.Params{Date: time.Date(2026, 6, 21, 0, 0, 0, 0, time.UTC)}

	s, err := tm.Schedule(p)
	if err != nil {
		t.Fatalf("Schedule error: %v", err)
	}
	isha := s.Get(prayer.Isha).Time
	if isha.Day() != 22 || isha.Hour() != 0 || isha.Minute() != 15 {
		t.Errorf("Isha = %v, want 00:15 on the following day", isha)
	}
}

func TestTimings_ScheduleInvalid(t *testing.T) {
	tm := sampleData("28-02-2026").Timings
	tm.Dhuhr = "noon"
	_, err := tm.Schedule(prayer.Params{Date: time.Now()})
	if err == nil || !strings.Contains(err.Error(), "Dhuhr") {
		t.Fatalf("expected error naming Dhuhr, got %v", err)
	}
}

func TestTimings_MapRoundTrip(t *testing.T) {
	tm := sampleData("28-02-2026").Timings
	m := tm.Map()
	if len(m) != 6 {
		t.Fatalf("Map has %d entries, want 6: %v", len(m), m)
	}
	if m["maghrib"] != "17:39" {
		t.Errorf("maghrib = %q", m["maghrib"])
	}
	back := TimingsFromMap(m)
	for _, n := range prayer.Names {
		if back.field(n) != tm.field(n) {
			t.Errorf("%s = %q, want %q", n, back.field(n), tm.field(n))
		}
	}
}
