// Package api fetches prayer schedules from the Al Adhan web service.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/smokyabdulrahman/miqat/internal/prayer"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

// shafiSchool selects the standard Asr shadow ratio, the only one computed
// locally as well.
const shafiSchool = 0

// Client communicates with the Al Adhan prayer times API.
type Client struct {
	httpClient *http.Client
	// BaseURL is the API base URL. Defaults to the Al Adhan API.
	// Exported for testing with httptest.
	BaseURL string
}

// NewClient creates a new API client with sensible defaults.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		BaseURL: defaultBaseURL,
	}
}

func methodParams(method prayer.Method) url.Values {
	params := url.Values{}
	params.Set("method", strconv.Itoa(method.Config().AladhanID))
	params.Set("school", strconv.Itoa(shafiSchool))
	return params
}

// FetchByCoordinates fetches prayer times for the given date and coordinates.
func (c *Client) FetchByCoordinates(ctx context.Context, date time.Time, lat, lon float64, method prayer.Method) (*Response, error) {
	endpoint := fmt.Sprintf("%s/timings/%s", c.BaseURL, date.Format("02-01-2006"))

	params := methodParams(method)
	params.Set("latitude", fmt.Sprintf("%f", lat))
	params.Set("longitude", fmt.Sprintf("%f", lon))

	var resp Response
	if err := c.doRequest(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchByCity fetches prayer times for the given date, city, and country.
func (c *Client) FetchByCity(ctx context.Context, date time.Time, city, country string, method prayer.Method) (*Response, error) {
	endpoint := fmt.Sprintf("%s/timingsByCity/%s", c.BaseURL, date.Format("02-01-2006"))

	params := methodParams(method)
	params.Set("city", city)
	params.Set("country", country)

	var resp Response
	if err := c.doRequest(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchCalendarByCoordinates fetches a whole month of prayer times in one
// request.
func (c *Client) FetchCalendarByCoordinates(ctx context.Context, year int, month time.Month, lat, lon float64, method prayer.Method) (*CalendarResponse, error) {
	endpoint := fmt.Sprintf("%s/calendar/%d/%d", c.BaseURL, year, int(month))

	params := methodParams(method)
	params.Set("latitude", fmt.Sprintf("%f", lat))
	params.Set("longitude", fmt.Sprintf("%f", lon))

	var resp CalendarResponse
	if err := c.doRequest(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchCalendarByCity is FetchCalendarByCoordinates for a city and country.
func (c *Client) FetchCalendarByCity(ctx context.Context, year int, month time.Month, city, country string, method prayer.Method) (*CalendarResponse, error) {
	endpoint := fmt.Sprintf("%s/calendarByCity/%d/%d", c.BaseURL, year, int(month))

	params := methodParams(method)
	params.Set("city", city)
	params.Set("country", country)

	var resp CalendarResponse
	if err := c.doRequest(ctx, endpoint, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// envelope is the part shared by every Al Adhan response.
type envelope interface {
	status() (int, string)
}

func (c *Client) doRequest(ctx context.Context, endpoint string, params url.Values, out envelope) error {
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("building API request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode API response: %w", err)
	}

	if code, status := out.status(); code != 200 {
		return fmt.Errorf("API error: code=%d status=%s", code, status)
	}

	return nil
}
