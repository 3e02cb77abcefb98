package places

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/eagle-eye-cli/internal/resilience"
)

// statusZeroResults is a successful response with no matches.
const statusZeroResults = "ZERO_RESULTS"

func (c *client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "places: rate limit")
	}

	params.Set("key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "places: build request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "places: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("places: %s returned status %d", path, resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "places: read body")
	}
	return body, nil
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location LatLng `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (c *client) Geocode(ctx context.Context, address string) (*LatLng, error) {
	params := url.Values{
		"address": {address},
		"region":  {c.region},
	}
	body, err := c.get(ctx, "/geocode/json", params)
	if err != nil {
		return nil, err
	}

	var gr geocodeResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, eris.Wrap(err, "places: parse geocode response")
	}

	if gr.Status == statusZeroResults || len(gr.Results) == 0 {
		return nil, nil
	}
	if gr.Status != "OK" {
		return nil, eris.Errorf("places: geocode status %s", gr.Status)
	}
	loc := gr.Results[0].Geometry.Location
	return &loc, nil
}

type nearbyResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Name             string   `json:"name"`
		PlaceID          string   `json:"place_id"`
		Vicinity         string   `json:"vicinity"`
		Rating           float64  `json:"rating"`
		UserRatingsTotal int      `json:"user_ratings_total"`
		Types            []string `json:"types"`
		Geometry         struct {
			Location LatLng `json:"location"`
		} `json:"geometry"`
		PermanentlyClosed bool `json:"permanently_closed"`
	} `json:"results"`
}

func (c *client) NearbySearch(ctx context.Context, q NearbyQuery) ([]Place, error) {
	params := url.Values{
		"location": {formatLatLng(q.Lat, q.Lng)},
		"radius":   {strconv.Itoa(q.Radius)},
	}
	if q.Keyword != "" {
		params.Set("keyword", q.Keyword)
	}
	if q.Type != "" {
		params.Set("type", q.Type)
	}

	body, err := c.get(ctx, "/place/nearbysearch/json", params)
	if err != nil {
		return nil, err
	}

	var nr nearbyResponse
	if err := json.Unmarshal(body, &nr); err != nil {
		return nil, eris.Wrap(err, "places: parse nearby response")
	}

	if nr.Status == statusZeroResults {
		return nil, nil
	}
	if nr.Status != "OK" {
		return nil, eris.Errorf("places: nearby search status %s", nr.Status)
	}

	places := make([]Place, 0, len(nr.Results))
	for _, r := range nr.Results {
		p := Place{
			Name:              r.Name,
			PlaceID:           r.PlaceID,
			Address:           r.Vicinity,
			Rating:            r.Rating,
			UserRatingsTotal:  r.UserRatingsTotal,
			Types:             r.Types,
			Location:          r.Geometry.Location,
			PermanentlyClosed: r.PermanentlyClosed,
		}
		p.DistanceKM = round2(haversineKM(q.Lat, q.Lng, p.Location.Lat, p.Location.Lng))
		places = append(places, p)
	}

	sort.SliceStable(places, func(i, j int) bool {
		return places[i].DistanceKM < places[j].DistanceKM
	})
	return places, nil
}

type detailsResponse struct {
	Status string `json:"status"`
	Result struct {
		Name             string   `json:"name"`
		FormattedAddress string   `json:"formatted_address"`
		Rating           float64  `json:"rating"`
		UserRatingsTotal int      `json:"user_ratings_total"`
		Types            []string `json:"types"`
		Geometry         struct {
			Location LatLng `json:"location"`
		} `json:"geometry"`
	} `json:"result"`
}

func (c *client) PlaceDetails(ctx context.Context, placeID string) (*PlaceDetail, error) {
	params := url.Values{
		"place_id": {placeID},
		"fields":   {"name,formatted_address,geometry,rating,user_ratings_total,types"},
	}
	body, err := c.get(ctx, "/place/details/json", params)
	if err != nil {
		return nil, err
	}

	var dr detailsResponse
	if err := json.Unmarshal(body, &dr); err != nil {
		return nil, eris.Wrap(err, "places: parse details response")
	}

	if dr.Status == "NOT_FOUND" || dr.Status == statusZeroResults {
		return nil, nil
	}
	if dr.Status != "OK" {
		return nil, eris.Errorf("places: details status %s", dr.Status)
	}

	return &PlaceDetail{
		Name:             dr.Result.Name,
		FormattedAddress: dr.Result.FormattedAddress,
		Rating:           dr.Result.Rating,
		UserRatingsTotal: dr.Result.UserRatingsTotal,
		Types:            dr.Result.Types,
		Location:         dr.Result.Geometry.Location,
	}, nil
}

func formatLatLng(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + "," + strconv.FormatFloat(lng, 'f', -1, 64)
}

func haversineKM(lat1, lng1, lat2, lng2 float64) float64 {
	const r = 6371
	p1 := lat1 * math.Pi / 180
	p2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(p1)*math.Cos(p2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * r * math.Asin(math.Sqrt(a))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
