package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/eagle-eye-cli/internal/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(1000))
}

func TestGeocode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/geocode/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "th", r.URL.Query().Get("region"))
		assert.Equal(t, "Baan Don", r.URL.Query().Get("address"))

		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [{"geometry": {"location": {"lat": 9.3226, "lng": 99.7041}}}]
		}`))
	})

	loc, err := c.Geocode(context.Background(), "Baan Don")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.InDelta(t, 9.3226, loc.Lat, 1e-9)
	assert.InDelta(t, 99.7041, loc.Lng, 1e-9)
}

func TestGeocodeNoMatch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})

	loc, err := c.Geocode(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestGeocodeAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "REQUEST_DENIED"}`))
	})

	_, err := c.Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
}

func TestNearbySearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/nearbysearch/json", r.URL.Path)
		assert.Equal(t, "9.32,99.7", r.URL.Query().Get("location"))
		assert.Equal(t, "350", r.URL.Query().Get("radius"))
		assert.Equal(t, "7-Eleven", r.URL.Query().Get("keyword"))
		assert.Equal(t, "convenience_store", r.URL.Query().Get("type"))

		// Far result first: the client must re-sort by distance.
		_, _ = w.Write([]byte(`{
			"status": "OK",
			"results": [
				{
					"name": "7-Eleven Far",
					"place_id": "pid-far",
					"vicinity": "Elsewhere",
					"types": ["convenience_store"],
					"geometry": {"location": {"lat": 9.34, "lng": 99.72}}
				},
				{
					"name": "7-Eleven Near",
					"place_id": "pid-near",
					"vicinity": "Main Rd",
					"rating": 4.2,
					"user_ratings_total": 88,
					"types": ["convenience_store", "store"],
					"geometry": {"location": {"lat": 9.321, "lng": 99.701}}
				}
			]
		}`))
	})

	places, err := c.NearbySearch(context.Background(), NearbyQuery{
		Lat: 9.32, Lng: 99.7, Keyword: "7-Eleven", Type: "convenience_store", Radius: 350,
	})
	require.NoError(t, err)
	require.Len(t, places, 2)

	assert.Equal(t, "7-Eleven Near", places[0].Name)
	assert.Equal(t, "pid-near", places[0].PlaceID)
	assert.Equal(t, "Main Rd", places[0].Address)
	assert.InDelta(t, 4.2, places[0].Rating, 1e-9)
	assert.Less(t, places[0].DistanceKM, places[1].DistanceKM)
	assert.Greater(t, places[0].DistanceKM, 0.0)
}

func TestNearbySearchZeroResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "ZERO_RESULTS", "results": []}`))
	})

	places, err := c.NearbySearch(context.Background(), NearbyQuery{Lat: 1, Lng: 1, Radius: 350})
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestNearbySearchHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.NearbySearch(context.Background(), NearbyQuery{Lat: 1, Lng: 1, Radius: 350})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.True(t, resilience.IsTransient(err))
}

func TestPlaceDetails(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/place/details/json", r.URL.Path)
		assert.Equal(t, "pid-1", r.URL.Query().Get("place_id"))

		_, _ = w.Write([]byte(`{
			"status": "OK",
			"result": {
				"name": "7-Eleven Talat",
				"formatted_address": "123 Main Rd, Surat Thani",
				"rating": 4.0,
				"types": ["convenience_store"],
				"geometry": {"location": {"lat": 9.3, "lng": 99.7}}
			}
		}`))
	})

	d, err := c.PlaceDetails(context.Background(), "pid-1")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "7-Eleven Talat", d.Name)
	assert.Equal(t, "123 Main Rd, Surat Thani", d.FormattedAddress)
}

func TestPlaceDetailsNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "NOT_FOUND"}`))
	})

	d, err := c.PlaceDetails(context.Background(), "gone")
	require.NoError(t, err)
	assert.Nil(t, d)
}
