package poi

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/sells-group/eagle-eye-cli/internal/model"
	"github.com/sells-group/eagle-eye-cli/pkg/places"
)

// FindResidentialIndicator runs the tiered zone search around a point: close
// convenience stores first, then supermarkets further out, then any retail.
// The zone that produces the winner sets the confidence. Excluded place IDs
// are skipped so retries can blacklist stale venues. A total miss returns
// nil without error.
func (f *Finder) FindResidentialIndicator(ctx context.Context, lat, lng float64, excluded map[string]bool) (*model.POI, error) {
	for _, zone := range confidenceZones {
		candidates := make(map[string]candidateHit)

		for _, s := range zone.Searches {
			found, err := f.client.NearbySearch(ctx, places.NearbyQuery{
				Lat: lat, Lng: lng,
				Keyword: s.Keyword,
				Type:    s.Type,
				Radius:  s.Radius,
			})
			if err != nil {
				f.log.Warn("zone search failed",
					zap.String("keyword", s.Keyword),
					zap.String("zone", string(zone.Level)),
					zap.Error(err))
				continue
			}

			for _, p := range found {
				if p.PlaceID == "" || excluded[p.PlaceID] || p.DistanceKM > zone.MaxKM {
					continue
				}
				if _, ok := candidates[p.PlaceID]; !ok {
					candidates[p.PlaceID] = candidateHit{place: p, keyword: s.Keyword}
				}
			}
		}

		if best := bestInZone(candidates); best != nil {
			f.log.Debug("residential indicator found",
				zap.String("name", best.place.Name),
				zap.String("zone", string(zone.Level)),
				zap.Float64("distance_km", best.place.DistanceKM))

			p := best.place
			return &model.POI{
				Name:          p.Name,
				Address:       p.Address,
				PlaceID:       p.PlaceID,
				DistanceKM:    p.DistanceKM,
				Rating:        p.Rating,
				Types:         p.Types,
				SearchKeyword: best.keyword,
				Confidence:    zone.Level,
			}, nil
		}
	}

	return nil, nil
}

type candidateHit struct {
	place   places.Place
	keyword string
}

// bestInZone prefers convenience stores over supermarkets over the rest,
// implemented as distance bonuses rather than hard tiers.
func bestInZone(candidates map[string]candidateHit) *candidateHit {
	var best *candidateHit
	bestScore := math.Inf(1)

	for id := range candidates {
		c := candidates[id]
		score := c.place.DistanceKM
		switch {
		case isConvenience(c.place.Name, c.place.Types):
			score -= 0.5
		case hasType(c.place.Types, "supermarket"):
			score -= 0.2
		}
		if score < bestScore {
			bestScore = score
			cc := c
			best = &cc
		}
	}
	return best
}
