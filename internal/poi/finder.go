package poi

import (
	"context"
	"fmt"
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/eagle-eye-cli/internal/model"
	"github.com/sells-group/eagle-eye-cli/internal/spatial"
	"github.com/sells-group/eagle-eye-cli/pkg/places"
)

// Block-level search radius in meters. Slightly under the half-cell diagonal
// so results stay inside the block.
const blockRadius = 350

// Finder locates indicator POIs via the Places API.
type Finder struct {
	client places.Client
	log    *zap.Logger
}

// NewFinder creates a Finder.
func NewFinder(client places.Client) *Finder {
	return &Finder{
		client: client,
		log:    zap.L().With(zap.String("component", "poi")),
	}
}

// FindForBlock finds the indicator POI for a Happy Block. It searches the
// block itself first, then walks the neighbor rings outward. A miss
// everywhere returns a not_found POI rather than an error.
func (f *Finder) FindForBlock(ctx context.Context, blockID string, lat, lng float64) (model.POI, error) {
	poi, err := f.searchCommunity(ctx, lat, lng)
	if err != nil {
		return model.POI{}, err
	}
	if poi != nil {
		poi.Status = model.SearchFoundCurrent
		poi.Remark = "POI found in current Happy Block"
		f.applyDetails(ctx, poi)
		return *poi, nil
	}

	id, err := spatial.ParseBlockID(blockID)
	if err != nil {
		return model.POI{}, eris.Wrapf(err, "poi: block %s", blockID)
	}

	f.log.Debug("no POI in current block, walking neighbors", zap.String("block", blockID))
	origin := id.Centroid()

	for ring := 1; ring <= spatial.MaxRing; ring++ {
		for _, neighbor := range id.Neighbors(ring) {
			c := neighbor.Centroid()
			poi, err := f.searchCommunity(ctx, c[1], c[0])
			if err != nil {
				return model.POI{}, err
			}
			if poi == nil {
				continue
			}

			fromHB := spatial.Haversine(origin, c)
			poi.Status = model.SearchFoundNearby
			poi.SourceBlock = neighbor.String()
			poi.Remark = fmt.Sprintf("No POI (nearby happyblock: %s, distance: %.1fkm)", neighbor, fromHB)
			poi.DistanceKM = round2(fromHB)
			f.applyDetails(ctx, poi)
			return *poi, nil
		}
	}

	return model.POI{
		Status:     model.SearchNotFound,
		Confidence: model.ConfidenceNone,
		Remark:     "No POI found within 2km radius",
	}, nil
}

// applyDetails upgrades a winning POI with the Place Details endpoint: the
// formatted address replaces the terse nearby-search vicinity, and rating and
// types refresh. Best effort; a failed lookup keeps the search result as is.
func (f *Finder) applyDetails(ctx context.Context, poi *model.POI) {
	if poi.PlaceID == "" {
		return
	}
	d, err := f.client.PlaceDetails(ctx, poi.PlaceID)
	if err != nil {
		f.log.Warn("place details lookup failed",
			zap.String("place_id", poi.PlaceID), zap.Error(err))
		return
	}
	if d == nil {
		return
	}
	if d.FormattedAddress != "" {
		poi.Address = d.FormattedAddress
	}
	if d.Rating > 0 {
		poi.Rating = d.Rating
	}
	if len(d.Types) > 0 {
		poi.Types = d.Types
	}
}

// searchCommunity runs the prioritized community-store strategies around a
// point. Mall results are dropped, duplicates collapse on place ID, and the
// winner minimizes priority*2 + distance.
func (f *Finder) searchCommunity(ctx context.Context, lat, lng float64) (*model.POI, error) {
	type candidate struct {
		place    places.Place
		strategy strategy
	}

	seen := make(map[string]candidate)
	for _, s := range communityStrategies {
		found, err := f.client.NearbySearch(ctx, places.NearbyQuery{
			Lat: lat, Lng: lng,
			Keyword: s.Keyword,
			Type:    s.Type,
			Radius:  blockRadius,
		})
		if err != nil {
			f.log.Warn("nearby search failed",
				zap.String("keyword", s.Keyword), zap.Error(err))
			continue
		}

		for _, p := range found {
			if p.PlaceID == "" || isMall(p.Name) {
				continue
			}
			if _, ok := seen[p.PlaceID]; !ok {
				seen[p.PlaceID] = candidate{place: p, strategy: s}
			}
		}
	}

	if len(seen) == 0 {
		return nil, nil
	}

	var best *candidate
	bestScore := math.Inf(1)
	for id := range seen {
		c := seen[id]
		score := float64(c.strategy.Priority)*2 + c.place.DistanceKM
		if score < bestScore {
			bestScore = score
			cc := c
			best = &cc
		}
	}

	p := best.place
	return &model.POI{
		Name:          p.Name,
		Address:       p.Address,
		PlaceID:       p.PlaceID,
		DistanceKM:    p.DistanceKM,
		Rating:        p.Rating,
		Types:         p.Types,
		SearchKeyword: best.strategy.Keyword,
		Confidence:    communityConfidence(p),
	}, nil
}

// communityConfidence grades a community-store hit by distance and type.
func communityConfidence(p places.Place) model.Confidence {
	switch {
	case p.DistanceKM <= 0.5 && isConvenience(p.Name, p.Types):
		return model.ConfidenceHigh
	case p.DistanceKM <= 1.0 && (hasType(p.Types, "convenience_store") || hasType(p.Types, "supermarket")):
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
