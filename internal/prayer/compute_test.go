package prayer

import (
	"testing"
	"time"
)

// exampleParams is a location near Makkah on 2025-03-10 with Umm al-Qura.
func exampleParams() Params {
	return Params{
		Coordinate: Coordinate{Latitude: 21.0, Longitude: 40.0},
		Date:       time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		Method:     UmmAlQura,
		Location:   time.FixedZone("AST", 3*3600),
	}
}

// clock is an "HH:MM" expectation; "" means the instant is unavailable.
type clock string

func assertSchedule(t *testing.T, s Schedule, want [6]clock) {
	t.Helper()
	for _, n := range Names {
		in := s.Get(n)
		if in.Name != n {
			t.Errorf("instant %d carries name %v", int(n), in.Name)
		}
		if want[n] == "" {
			if in.Available() {
				t.Errorf("%v = %v, want unavailable", n, in.Time)
			}
			continue
		}
		if !in.Available() {
			t.Errorf("%v unavailable, want %s", n, want[n])
			continue
		}
		exp, err := time.ParseInLocation("2006-01-02 15:04", in.Time.Format("2006-01-02 ")+string(want[n]), in.Time.Location())
		if err != nil {
			t.Fatalf("bad expectation %q: %v", want[n], err)
		}
		diff := in.Time.Sub(exp)
		if diff < -time.Minute || diff > time.Minute {
			t.Errorf("%v = %s, want %s (±1m)", n, in.Time.Format("15:04"), want[n])
		}
	}
}

func TestCompute_KnownTimetables(t *testing.T) {
	tests := []struct {
		name string
		p    Params
		want [6]clock
	}{
		{
			name: "makkah region umm al-qura",
			p:    exampleParams(),
			want: [6]clock{"05:17", "06:33", "12:30", "15:54", "18:28", "19:58"},
		},
		{
			name: "new york isna summer",
			p: Params{
				Coordinate: Coordinate{40.7128, -74.0060},
				Date:       time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC),
				Method:     NorthAmerica,
				Location:   time.FixedZone("EDT", -4*3600),
			},
			want: [6]clock{"03:45", "05:25", "12:59", "16:58", "20:31", "22:11"},
		},
		{
			name: "london mwl winter",
			p: Params{
				Coordinate: Coordinate{51.5074, -0.1278},
				Date:       time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
				Method:     MuslimWorldLeague,
				Location:   time.UTC,
			},
			want: [6]clock{"05:59", "07:59", "12:11", "14:02", "16:21", "18:15"},
		},
		{
			name: "tehran maghrib angle",
			p: Params{
				Coordinate: Coordinate{35.6892, 51.3890},
				Date:       time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
				Method:     Tehran,
				Location:   time.FixedZone("IRST", 3*3600+1800),
			},
			want: [6]clock{"04:59", "06:22", "12:15", "15:35", "18:26", "19:13"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Compute(tt.p)
			assertSchedule(t, s, tt.want)
			if !s.Complete() {
				t.Error("schedule should be complete")
			}
			if !s.Ordered() {
				t.Error("schedule should be strictly ordered")
			}
		})
	}
}

func TestCompute_InstantsInRequestedLocation(t *testing.T) {
	p := exampleParams()
	s := Compute(p)
	for _, in := range s.Instants {
		if in.Time.Location() != p.Location {
			t.Errorf("%v location = %v, want %v", in.Name, in.Time.Location(), p.Location)
		}
		if in.Time.Second() != 0 || in.Time.Nanosecond() != 0 {
			t.Errorf("%v = %v, want whole minutes", in.Name, in.Time)
		}
		if y, m, d := in.Time.Date(); y != 2025 || m != time.March || d != 10 {
			t.Errorf("%v falls on %v, want 2025-03-10", in.Name, in.Time)
		}
	}
}

func sameInstants(a, b Schedule) bool {
	for i := range a.Instants {
		if a.Instants[i].Name != b.Instants[i].Name || !a.Instants[i].Time.Equal(b.Instants[i].Time) {
			return false
		}
	}
	return true
}

func TestCompute_Deterministic(t *testing.T) {
	p := exampleParams()
	a, b := Compute(p), Compute(p)
	if !sameInstants(a, b) {
		t.Errorf("Compute is not deterministic:\n%v\n%v", a.Instants, b.Instants)
	}
}

func TestCompute_ClockIgnored(t *testing.T) {
	p := exampleParams()
	evening := p
	evening.Date = time.Date(2025, 3, 10, 17, 45, 0, 0, p.Location)
	if a, b := Compute(evening), Compute(p); !sameInstants(a, b) {
		t.Errorf("clock part changed the schedule:\n%v\n%v", a.Instants, b.Instants)
	}
}

func TestCompute_OrderedAcrossLatitudes(t *testing.T) {
	dates := []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 9, 23, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 21, 0, 0, 0, 0, time.UTC),
	}
	for lat := -45.0; lat <= 45; lat += 15 {
		for lng := -150.0; lng <= 150; lng += 60 {
			for _, m := range Methods {
				for _, d := range dates {
					// A zone near local mean time keeps the whole day on one civil date.
					loc := time.FixedZone("LMT", int(lng/15)*3600)
					s := Compute(Params{Coordinate: Coordinate{lat, lng}, Date: d, Method: m, Location: loc})
					if !s.Complete() {
						t.Errorf("lat %v lng %v %v %s: incomplete schedule", lat, lng, m, d.Format("2006-01-02"))
						continue
					}
					if !s.Ordered() {
						t.Errorf("lat %v lng %v %v %s: out of order %v", lat, lng, m, d.Format("2006-01-02"), s.Instants)
					}
				}
			}
		}
	}
}

func TestCompute_PolarDayLeavesInstantsUnavailable(t *testing.T) {
	p := Params{
		Coordinate: Coordinate{69.65, 18.96},
		Date:       time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC),
		Method:     MuslimWorldLeague,
		Location:   time.FixedZone("CEST", 2*3600),
	}
	s := Compute(p)
	assertSchedule(t, s, [6]clock{"", "", "12:47", "17:58", "", ""})
	if s.Complete() {
		t.Error("polar schedule should not be complete")
	}
	if !s.Ordered() {
		t.Error("available instants should still be ordered")
	}
}

func TestCompute_OrderedNearThePoles(t *testing.T) {
	rules := []HighLatitudeRule{HighLatitudeNone, HighLatitudeMiddleOfNight, HighLatitudeSeventhOfNight, HighLatitudeTwilightAngle}
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for lat := -89.0; lat <= 89; lat += 2 {
		for _, m := range Methods {
			for _, rule := range rules {
				for day := 0; day < 365; day += 7 {
					d := start.AddDate(0, 0, day)
					s := Compute(Params{Coordinate: Coordinate{lat, 10}, Date: d, Method: m, Location: time.UTC, HighLatitude: rule})
					if !s.Ordered() {
						t.Errorf("lat %v %v %v %s: out of order %v", lat, m, rule, d.Format("2006-01-02"), s.Instants)
					}
				}
			}
		}
	}
}

func TestCompute_PolarNightKeepsOnlyDhuhr(t *testing.T) {
	rules := []HighLatitudeRule{HighLatitudeNone, HighLatitudeMiddleOfNight, HighLatitudeSeventhOfNight, HighLatitudeTwilightAngle}
	for _, rule := range rules {
		t.Run(rule.String(), func(t *testing.T) {
			s := Compute(Params{
				Coordinate:   Coordinate{69.6492, 18.9553},
				Date:         time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC),
				Method:       MuslimWorldLeague,
				Location:     time.FixedZone("CET", 3600),
				HighLatitude: rule,
			})
			for _, in := range s.Instants {
				if got, want := in.Available(), in.Name == Dhuhr; got != want {
					t.Errorf("%v available = %v, want %v (%v)", in.Name, got, want, in.Time)
				}
			}
		})
	}
}

func TestCompute_AdjustedIshaFollowsMaghrib(t *testing.T) {
	s := Compute(Params{
		Coordinate:   Coordinate{59.33, 18.07},
		Date:         time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		Method:       Tehran,
		Location:     time.FixedZone("CEST", 2*3600),
		HighLatitude: HighLatitudeSeventhOfNight,
	})
	maghrib, isha := s.Get(Maghrib), s.Get(Isha)
	if !maghrib.Available() || !isha.Available() {
		t.Fatalf("maghrib and isha should be available: %v", s.Instants)
	}
	if !isha.Time.After(maghrib.Time) {
		t.Errorf("isha %v is not after maghrib %v", isha.Time, maghrib.Time)
	}
	if !s.Ordered() {
		t.Errorf("out of order: %v", s.Instants)
	}
}

func TestCompute_HighLatitudeRuleFillsTwilight(t *testing.T) {
	p := Params{
		Coordinate: Coordinate{51.5074, -0.1278},
		Date:       time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC),
		Method:     MuslimWorldLeague,
		Location:   time.FixedZone("BST", 3600),
	}

	plain := Compute(p)
	if plain.Get(Fajr).Available() || plain.Get(Isha).Available() {
		t.Fatalf("without a rule fajr/isha should be unavailable, got %v", plain.Instants)
	}

	for _, rule := range []HighLatitudeRule{HighLatitudeMiddleOfNight, HighLatitudeSeventhOfNight, HighLatitudeTwilightAngle} {
		t.Run(rule.String(), func(t *testing.T) {
			p.HighLatitude = rule
			s := Compute(p)
			if !s.Complete() {
				t.Fatalf("rule %v left gaps: %v", rule, s.Instants)
			}
			if !s.Ordered() {
				t.Errorf("rule %v out of order: %v", rule, s.Instants)
			}
			// Untouched instants match the plain computation.
			for _, n := range []Name{Sunrise, Dhuhr, Asr, Maghrib} {
				if !s.Get(n).Time.Equal(plain.Get(n).Time) {
					t.Errorf("rule %v moved %v: %v vs %v", rule, n, s.Get(n).Time, plain.Get(n).Time)
				}
			}
		})
	}
}

func TestCompute_HighLatitudeSeventhOfNight(t *testing.T) {
	p := Params{
		Coordinate:   Coordinate{51.5074, -0.1278},
		Date:         time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC),
		Method:       MuslimWorldLeague,
		Location:     time.FixedZone("BST", 3600),
		HighLatitude: HighLatitudeSeventhOfNight,
	}
	s := Compute(p)
	night := s.Get(Sunrise).Time.AddDate(0, 0, 1).Sub(s.Get(Maghrib).Time)
	gap := s.Get(Sunrise).Time.Sub(s.Get(Fajr).Time)
	want := night / 7
	if diff := gap - want; diff < -2*time.Minute || diff > 2*time.Minute {
		t.Errorf("fajr precedes sunrise by %v, want about %v", gap, want)
	}
}

func TestParseHighLatitudeRule(t *testing.T) {
	tests := []struct {
		raw     string
		want    HighLatitudeRule
		wantErr bool
	}{
		{"", HighLatitudeNone, false},
		{"none", HighLatitudeNone, false},
		{"Middle-Of-Night", HighLatitudeMiddleOfNight, false},
		{"seventh-of-night", HighLatitudeSeventhOfNight, false},
		{"twilight-angle", HighLatitudeTwilightAngle, false},
		{"angle-based", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseHighLatitudeRule(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHighLatitudeRule(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseHighLatitudeRule(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}
