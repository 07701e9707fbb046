package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

// ErrProviderUnavailable wraps every failure to obtain usable data from the
// prayer-time provider. Callers recover from it with cached or default data.
var ErrProviderUnavailable = errors.New("prayer-time provider unavailable")

// Query identifies the location and calculation settings for a request.
// When City is set the city endpoints are used, otherwise coordinates.
// Method and School of -1 leave the choice to the provider.
type Query struct {
	Latitude  float64
	Longitude float64
	City      string
	Country   string
	Method    int
	School    int
}

// ByCity reports whether the query addresses a city rather than coordinates.
func (q Query) ByCity() bool {
	return q.City != ""
}

// CacheKey renders the fields that influence the provider's answer.
func (q Query) CacheKey() string {
	return fmt.Sprintf("%.6f|%.6f|%s|%s|%d|%d", q.Latitude, q.Longitude, q.City, q.Country, q.Method, q.School)
}

func (q Query) values() url.Values {
	params := url.Values{}
	if q.ByCity() {
		params.Set("city", q.City)
		params.Set("country", q.Country)
	} else {
		params.Set("latitude", strconv.FormatFloat(q.Latitude, 'f', 6, 64))
		params.Set("longitude", strconv.FormatFloat(q.Longitude, 'f', 6, 64))
	}
	if q.Method >= 0 {
		params.Set("method", strconv.Itoa(q.Method))
	}
	if q.School >= 0 {
		params.Set("school", strconv.Itoa(q.School))
	}
	return params
}

// Client communicates with the Al Adhan prayer times API.
type Client struct {
	httpClient *http.Client
	// BaseURL is exported so tests can point it at an httptest server.
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

// Day fetches timings and the hijri date for a single calendar day.
func (c *Client) Day(ctx context.Context, date time.Time, q Query) (*Response, error) {
	path := "timings"
	if q.ByCity() {
		path = "timingsByCity"
	}
	endpoint := fmt.Sprintf("%s/%s/%s", c.BaseURL, path, date.Format("02-01-2006"))

	var resp Response
	if err := c.get(ctx, endpoint, q.values(), &resp); err != nil {
		return nil, err
	}
	if resp.Code != http.StatusOK {
		return nil, fmt.Errorf("%w: code=%d status=%s", ErrProviderUnavailable, resp.Code, resp.Status)
	}
	return &resp, nil
}

// Month fetches a whole gregorian month in one request.
func (c *Client) Month(ctx context.Context, year, month int, q Query) (*CalendarResponse, error) {
	path := "calendar"
	if q.ByCity() {
		path = "calendarByCity"
	}
	endpoint := fmt.Sprintf("%s/%s/%d/%d", c.BaseURL, path, year, month)

	var resp CalendarResponse
	if err := c.get(ctx, endpoint, q.values(), &resp); err != nil {
		return nil, err
	}
	if resp.Code != http.StatusOK {
		return nil, fmt.Errorf("%w: code=%d status=%s", ErrProviderUnavailable, resp.Code, resp.Status)
	}
	return &resp, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrProviderUnavailable, err)
	}
	return nil
}
