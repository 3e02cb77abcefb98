package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/eagle-eye-cli/pkg/places"
)

// geocodeFake scripts Geocode responses; the other endpoints are unused here.
type geocodeFake struct {
	loc *places.LatLng
	err error
}

func (g *geocodeFake) Geocode(ctx context.Context, address string) (*places.LatLng, error) {
	return g.loc, g.err
}

func (g *geocodeFake) NearbySearch(ctx context.Context, q places.NearbyQuery) ([]places.Place, error) {
	return nil, nil
}

func (g *geocodeFake) PlaceDetails(ctx context.Context, placeID string) (*places.PlaceDetail, error) {
	return nil, nil
}

func TestLocateBlock_FoundInSnapshot(t *testing.T) {
	_, st := newTestAPI(t)
	seedServeBlocks(t, st)

	var out bytes.Buffer
	pc := &geocodeFake{loc: &places.LatLng{Lat: 9.3226, Lng: 99.7041}}
	require.NoError(t, locateBlock(context.Background(), &out, pc, st, "Talat, Mueang Surat Thani"))

	assert.Contains(t, out.String(), "09320-099700")
	assert.Contains(t, out.String(), "Village: Ban Don")
}

func TestLocateBlock_NotInSnapshot(t *testing.T) {
	_, st := newTestAPI(t)

	var out bytes.Buffer
	pc := &geocodeFake{loc: &places.LatLng{Lat: 13.75, Lng: 100.50}}
	require.NoError(t, locateBlock(context.Background(), &out, pc, st, "Bangkok"))

	assert.Contains(t, out.String(), "13750-100500")
	assert.Contains(t, out.String(), "not in the snapshot")
}

func TestLocateBlock_NoGeocodeMatch(t *testing.T) {
	_, st := newTestAPI(t)

	var out bytes.Buffer
	require.NoError(t, locateBlock(context.Background(), &out, &geocodeFake{}, st, "nowhere at all"))
	assert.Contains(t, out.String(), "No geocoding match")
}

func TestLocateBlock_GeocodeError(t *testing.T) {
	_, st := newTestAPI(t)

	var out bytes.Buffer
	err := locateBlock(context.Background(), &out, &geocodeFake{err: assert.AnError}, st, "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocks locate")
}
