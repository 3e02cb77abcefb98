// Package besttime provides a client for the BestTime foot-traffic forecast
// API.
package besttime

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/sells-group/eagle-eye-cli/internal/resilience"
)

const defaultBaseURL = "https://besttime.app/api/v1"

// ErrVenueNotFound means BestTime has no forecast for the venue. Callers fall
// back to synthetic patterns.
var ErrVenueNotFound = errors.New("besttime: venue not found")

// Client queries BestTime forecasts.
type Client interface {
	// Forecast creates or refreshes the week forecast for a venue by name
	// and address.
	Forecast(ctx context.Context, venueName, venueAddress string) (*Forecast, error)

	// VenueWeek returns the stored week forecast for a known venue ID.
	VenueWeek(ctx context.Context, venueID string) (*Forecast, error)
}

// Forecast is the week analysis for one venue.
type Forecast struct {
	VenueInfo VenueInfo     `json:"venue_info"`
	Analysis  []DayAnalysis `json:"analysis"`
}

// VenueInfo identifies the analyzed venue.
type VenueInfo struct {
	VenueID      string `json:"venue_id"`
	VenueName    string `json:"venue_name"`
	VenueAddress string `json:"venue_address"`
}

// DayAnalysis is one day of hour-by-hour intensity. Day 0 is Monday.
type DayAnalysis struct {
	DayInfo struct {
		DayInt  int    `json:"day_int"`
		DayText string `json:"day_text"`
	} `json:"day_info"`
	HourAnalysis []HourIntensity `json:"hour_analysis"`
}

// HourIntensity is the busyness for one hour. Intensity 999 means closed.
type HourIntensity struct {
	Hour        int `json:"hour"`
	IntensityNr int `json:"intensity_nr"`
}

// Option configures the client.
type Option func(*client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *client) {
		c.baseURL = u
	}
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

type client struct {
	privateKey string
	publicKey  string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Client. The private key authorizes forecast creation,
// the public key read-only venue queries.
func NewClient(privateKey, publicKey string, opts ...Option) Client {
	c := &client{
		privateKey: privateKey,
		publicKey:  publicKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    rate.NewLimiter(2, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Forecast issues a POST with query parameters, which is how the BestTime
// API expects forecast requests.
func (c *client) Forecast(ctx context.Context, venueName, venueAddress string) (*Forecast, error) {
	params := url.Values{
		"api_key_private": {c.privateKey},
		"venue_name":      {venueName},
		"venue_address":   {venueAddress},
	}
	return c.do(ctx, http.MethodPost, "/forecasts", params)
}

func (c *client) VenueWeek(ctx context.Context, venueID string) (*Forecast, error) {
	params := url.Values{
		"api_key_public": {c.publicKey},
		"venue_id":       {venueID},
	}
	return c.do(ctx, http.MethodGet, "/venues/week", params)
}

func (c *client) do(ctx context.Context, method, path string, params url.Values) (*Forecast, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "besttime: rate limit")
	}

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "besttime: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "besttime: %s request", path)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrVenueNotFound
	}
	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("besttime: %s returned status %d", path, resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "besttime: read body")
	}

	var f Forecast
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, eris.Wrap(err, "besttime: parse response")
	}
	return &f, nil
}
