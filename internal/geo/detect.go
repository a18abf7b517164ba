// Package geo finds the user's approximate position from their public IP.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

// Location is a detected place. The JSON form is what the cache stores.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Timezone  string  `json:"timezone"`
}

// Coordinate returns the location as a prayer coordinate.
func (l Location) Coordinate() prayer.Coordinate {
	return prayer.Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Fallback is used when the location cannot be detected and none is
// configured: Makkah.
var Fallback = Location{
	Latitude:  21.3891,
	Longitude: 39.8579,
	City:      "Makkah",
	Country:   "Saudi Arabia",
	Timezone:  "Asia/Riyadh",
}

// DefaultURL is the ip-api.com endpoint, restricted to the fields we read.
// The service needs no API key.
const DefaultURL = "http://ip-api.com/json/?fields=status,message,lat,lon,city,country,timezone"

// Detector looks up the location of the caller's public IP.
type Detector struct {
	URL  string
	HTTP *http.Client
}

// NewDetector returns a Detector for ip-api.com with a short timeout, since
// detection sits on the path of every command without a configured place.
func NewDetector() *Detector {
	return &Detector{URL: DefaultURL, HTTP: &http.Client{Timeout: 5 * time.Second}}
}

// DetectLocation is NewDetector().Detect(ctx).
func DetectLocation(ctx context.Context) (*Location, error) {
	return NewDetector().Detect(ctx)
}

type ipAPIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Location
}

// Detect queries the service. A reply outside the valid coordinate range is
// an error, so a broken response never becomes a schedule.
func (d *Detector) Detect(ctx context.Context) (*Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("building geolocation request: %w", err)
	}

	resp, err := d.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geolocation API returned status %d", resp.StatusCode)
	}

	var result ipAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation response: %w", err)
	}
	if result.Status != "success" {
		return nil, fmt.Errorf("geolocation failed: %s", result.Message)
	}
	if err := result.Coordinate().Validate(); err != nil {
		return nil, fmt.Errorf("geolocation returned %w", err)
	}

	loc := result.Location
	return &loc, nil
}
