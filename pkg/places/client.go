// Package places provides a Google Maps client for geocoding, nearby place
// search, and place details.
package places

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

// Client talks to the Google Maps Geocoding and Places APIs.
type Client interface {
	// Geocode resolves an address to coordinates. Unmatched addresses
	// return (nil, nil).
	Geocode(ctx context.Context, address string) (*LatLng, error)

	// NearbySearch finds places around a point, sorted by distance.
	NearbySearch(ctx context.Context, q NearbyQuery) ([]Place, error)

	// PlaceDetails fetches details for a known place ID.
	PlaceDetails(ctx context.Context, placeID string) (*PlaceDetail, error)
}

// LatLng is a WGS84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// NearbyQuery parameterizes a nearby search.
type NearbyQuery struct {
	Lat     float64
	Lng     float64
	Keyword string
	Type    string // Places type, e.g. "convenience_store"
	Radius  int    // meters
}

// Place is one nearby search result.
type Place struct {
	Name              string   `json:"name"`
	PlaceID           string   `json:"place_id"`
	Address           string   `json:"address"` // vicinity
	Rating            float64  `json:"rating"`
	UserRatingsTotal  int      `json:"user_ratings_total"`
	Types             []string `json:"types"`
	Location          LatLng   `json:"location"`
	DistanceKM        float64  `json:"distance_km"` // from the query point
	PermanentlyClosed bool     `json:"permanently_closed"`
}

// PlaceDetail is the subset of place details the pipeline uses.
type PlaceDetail struct {
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"user_ratings_total"`
	Types            []string `json:"types"`
	Location         LatLng   `json:"location"`
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

// WithRegion sets the geocoding region bias, e.g. "th".
func WithRegion(region string) Option {
	return func(c *client) {
		c.region = region
	}
}

type client struct {
	apiKey     string
	baseURL    string
	region     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Client with the given API key and options.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		region:     "th",
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(10, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
