package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func detector(t *testing.T, handler http.HandlerFunc) *Detector {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return &Detector{URL: server.URL, HTTP: server.Client()}
}

func reply(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func TestDetect_Success(t *testing.T) {
	d := detector(t, reply(`{"status":"success","lat":51.5074,"lon":-0.1278,"city":"London","country":"United Kingdom","timezone":"Europe/London"}`))

	loc, err := d.Detect(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Location{Latitude: 51.5074, Longitude: -0.1278, City: "London", Country: "United Kingdom", Timezone: "Europe/London"}
	if *loc != want {
		t.Errorf("Detect() = %+v, want %+v", *loc, want)
	}
}

func TestDetect_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr string
	}{
		{"service failure", reply(`{"status":"fail","message":"reserved range"}`), "reserved range"},
		{"http error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "internal error", http.StatusInternalServerError)
		}, "500"},
		{"invalid json", reply("not json at all"), "decode"},
		{"coordinate out of range", reply(`{"status":"success","lat":123,"lon":0}`), "latitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := detector(t, tt.handler).Detect(context.Background())
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestDetect_ConnectionRefused(t *testing.T) {
	d := &Detector{URL: "http://127.0.0.1:1", HTTP: &http.Client{Timeout: time.Second}}
	if _, err := d.Detect(context.Background()); err == nil {
		t.Fatal("expected error for connection refused, got nil")
	}
}

func TestDetect_ContextCanceled(t *testing.T) {
	d := detector(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.Detect(ctx); err == nil {
		t.Fatal("expected error for canceled context, got nil")
	}
}

func TestNewDetector(t *testing.T) {
	d := NewDetector()
	if d.URL != DefaultURL || d.HTTP.Timeout != 5*time.Second {
		t.Errorf("NewDetector() = %+v", d)
	}
}

func TestFallback(t *testing.T) {
	c := Fallback.Coordinate()
	if err := c.Validate(); err != nil {
		t.Fatalf("fallback coordinate invalid: %v", err)
	}
	if c.Latitude != 21.3891 || c.Longitude != 39.8579 {
		t.Errorf("Fallback.Coordinate() = %v", c)
	}
	if Fallback.Timezone != "Asia/Riyadh" {
		t.Errorf("Fallback.Timezone = %q", Fallback.Timezone)
	}
}
