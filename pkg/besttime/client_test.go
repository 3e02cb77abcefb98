package besttime

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
	return NewClient("priv-key", "pub-key", WithBaseURL(srv.URL), WithRateLimit(1000))
}

func TestForecast(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/forecasts", r.URL.Path)
		assert.Equal(t, "priv-key", r.URL.Query().Get("api_key_private"))
		assert.Equal(t, "7-Eleven Talat", r.URL.Query().Get("venue_name"))
		assert.Equal(t, "Surat Thani", r.URL.Query().Get("venue_address"))

		_, _ = w.Write([]byte(`{
			"venue_info": {"venue_id": "ven_123", "venue_name": "7-Eleven Talat"},
			"analysis": [
				{
					"day_info": {"day_int": 0, "day_text": "Monday"},
					"hour_analysis": [
						{"hour": 17, "intensity_nr": 2},
						{"hour": 3, "intensity_nr": 999}
					]
				}
			]
		}`))
	})

	f, err := c.Forecast(context.Background(), "7-Eleven Talat", "Surat Thani")
	require.NoError(t, err)

	assert.Equal(t, "ven_123", f.VenueInfo.VenueID)
	require.Len(t, f.Analysis, 1)
	assert.Equal(t, "Monday", f.Analysis[0].DayInfo.DayText)
	require.Len(t, f.Analysis[0].HourAnalysis, 2)
	assert.Equal(t, 17, f.Analysis[0].HourAnalysis[0].Hour)
	assert.Equal(t, 999, f.Analysis[0].HourAnalysis[1].IntensityNr)
}

func TestForecastVenueNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.Forecast(context.Background(), "Nowhere", "Nowhere")
	require.ErrorIs(t, err, ErrVenueNotFound)
}

func TestForecastServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.Forecast(context.Background(), "x", "y")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrVenueNotFound)
	assert.Contains(t, err.Error(), "status 502")
	assert.True(t, resilience.IsTransient(err))
}

func TestVenueWeek(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/venues/week", r.URL.Path)
		assert.Equal(t, "pub-key", r.URL.Query().Get("api_key_public"))
		assert.Equal(t, "ven_123", r.URL.Query().Get("venue_id"))

		_, _ = w.Write([]byte(`{"venue_info": {"venue_id": "ven_123"}, "analysis": []}`))
	})

	f, err := c.VenueWeek(context.Background(), "ven_123")
	require.NoError(t, err)
	assert.Equal(t, "ven_123", f.VenueInfo.VenueID)
}
