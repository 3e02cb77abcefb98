// Package enrich runs the POI and visit-timing enrichment pass over the top
// Happy Blocks, backed by the store's TTL caches so repeated runs only pay
// for blocks the caches have expired.
package enrich

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/eagle-eye-cli/internal/model"
	"github.com/sells-group/eagle-eye-cli/internal/resilience"
	"github.com/sells-group/eagle-eye-cli/internal/store"
)

// POIFinder locates the indicator POI for a block.
type POIFinder interface {
	FindForBlock(ctx context.Context, blockID string, lat, lng float64) (model.POI, error)
}

// TimingProvider returns visit-timing patterns for a venue.
type TimingProvider interface {
	PatternFor(ctx context.Context, venueName, venueAddress string) (model.TimingPattern, error)

	// PatternForVenue rebuilds the pattern for a venue the provider already
	// knows by ID.
	PatternForVenue(ctx context.Context, venueID string) (model.TimingPattern, error)
}

// Enricher coordinates the enrichment pass.
type Enricher struct {
	Store       store.Store
	Finder      POIFinder
	Timing      TimingProvider
	Retry       resilience.RetryConfig
	Concurrency int
	POITTL      time.Duration
	TimingTTL   time.Duration

	// RefreshLive re-reads cached live patterns from the stored week
	// forecast instead of trusting them until expiry.
	RefreshLive bool
}

// Result counts what the pass did.
type Result struct {
	Blocks        int
	POICached     int
	POIFetched    int
	POINotFound   int
	TimingCached  int
	TimingFetched int
}

// Run enriches the given blocks concurrently. Cache hits skip the APIs
// entirely; misses are fetched with retry and written back with the
// configured TTLs.
func (e *Enricher) Run(ctx context.Context, blocks []model.HappyBlock) (Result, error) {
	var (
		mu  sync.Mutex
		res Result
	)
	res.Blocks = len(blocks)

	limit := e.Concurrency
	if limit < 1 {
		limit = 1
	}

	log := zap.L().With(zap.String("component", "enrich"))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, b := range blocks {
		g.Go(func() error {
			poi, fromCache, err := e.poiFor(gctx, b)
			if err != nil {
				return eris.Wrapf(err, "enrich: block %s", b.ID)
			}

			pattern, timingCached, err := e.timingFor(gctx, poi)
			if err != nil {
				return eris.Wrapf(err, "enrich: block %s", b.ID)
			}

			mu.Lock()
			if fromCache {
				res.POICached++
			} else {
				res.POIFetched++
			}
			if poi.Status == model.SearchNotFound {
				res.POINotFound++
			}
			if timingCached {
				res.TimingCached++
			} else {
				res.TimingFetched++
			}
			mu.Unlock()

			log.Debug("block enriched",
				zap.String("block", b.ID),
				zap.String("poi", poi.Name),
				zap.String("timing_status", pattern.Status),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return res, err
	}

	log.Info("enrichment pass complete",
		zap.Int("blocks", res.Blocks),
		zap.Int("poi_cached", res.POICached),
		zap.Int("poi_fetched", res.POIFetched),
		zap.Int("poi_not_found", res.POINotFound),
		zap.Int("timing_cached", res.TimingCached),
		zap.Int("timing_fetched", res.TimingFetched),
	)
	return res, nil
}

func (e *Enricher) poiFor(ctx context.Context, b model.HappyBlock) (model.POI, bool, error) {
	cached, err := e.Store.GetCachedPOI(ctx, b.ID)
	if err != nil {
		return model.POI{}, false, err
	}
	if cached != nil {
		return *cached, true, nil
	}

	poi, err := resilience.DoVal(ctx, e.Retry, func(ctx context.Context) (model.POI, error) {
		return e.Finder.FindForBlock(ctx, b.ID, b.Latitude, b.Longitude)
	})
	if err != nil {
		return model.POI{}, false, err
	}

	if err := e.Store.SetCachedPOI(ctx, b.ID, poi, e.POITTL); err != nil {
		return model.POI{}, false, err
	}
	return poi, false, nil
}

func (e *Enricher) timingFor(ctx context.Context, poi model.POI) (model.TimingPattern, bool, error) {
	key := VenueKey(poi.Name, poi.Address)

	cached, err := e.Store.GetCachedTiming(ctx, key)
	if err != nil {
		return model.TimingPattern{}, false, err
	}
	if cached != nil {
		if e.RefreshLive && cached.Status == model.TimingLive && cached.VenueID != "" {
			return e.refreshTiming(ctx, key, *cached)
		}
		return *cached, true, nil
	}

	pattern, err := resilience.DoVal(ctx, e.Retry, func(ctx context.Context) (model.TimingPattern, error) {
		return e.Timing.PatternFor(ctx, poi.Name, poi.Address)
	})
	if err != nil {
		return model.TimingPattern{}, false, err
	}

	if err := e.Store.SetCachedTiming(ctx, key, pattern, e.TimingTTL); err != nil {
		return model.TimingPattern{}, false, err
	}
	return pattern, false, nil
}

// refreshTiming re-fetches a cached live pattern by venue ID. A failed
// refresh keeps the cached pattern rather than failing the block.
func (e *Enricher) refreshTiming(ctx context.Context, key string, cached model.TimingPattern) (model.TimingPattern, bool, error) {
	pattern, err := resilience.DoVal(ctx, e.Retry, func(ctx context.Context) (model.TimingPattern, error) {
		return e.Timing.PatternForVenue(ctx, cached.VenueID)
	})
	if err != nil {
		if ctx.Err() != nil {
			return model.TimingPattern{}, false, err
		}
		zap.L().Warn("timing refresh failed, keeping cached pattern",
			zap.String("venue_id", cached.VenueID), zap.Error(err))
		return cached, true, nil
	}

	if err := e.Store.SetCachedTiming(ctx, key, pattern, e.TimingTTL); err != nil {
		return model.TimingPattern{}, false, err
	}
	return pattern, false, nil
}

// VenueKey builds the timing-cache key for a venue.
func VenueKey(name, address string) string {
	return name + "|" + address
}

// Collect reads cached enrichment for the given blocks without touching any
// API. Blocks never enriched simply have no entry in the returned maps.
func Collect(ctx context.Context, st store.Store, blocks []model.HappyBlock) (map[string]model.POI, map[string]model.TimingPattern, error) {
	pois := make(map[string]model.POI)
	timings := make(map[string]model.TimingPattern)

	for _, b := range blocks {
		poi, err := st.GetCachedPOI(ctx, b.ID)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "enrich: collect poi for %s", b.ID)
		}
		if poi == nil {
			continue
		}
		pois[b.ID] = *poi

		pattern, err := st.GetCachedTiming(ctx, VenueKey(poi.Name, poi.Address))
		if err != nil {
			return nil, nil, eris.Wrapf(err, "enrich: collect timing for %s", b.ID)
		}
		if pattern != nil {
			timings[b.ID] = *pattern
		}
	}
	return pois, timings, nil
}
