// Package store persists Happy Block snapshots, enrichment caches, and
// report run history behind a backend-neutral interface.
package store

import (
	"context"
	"time"

	"github.com/sells-group/eagle-eye-cli/internal/model"
)

// BlockFilter narrows a block listing to an area of interest.
type BlockFilter struct {
	Province    string  `json:"province,omitempty"`
	District    string  `json:"district,omitempty"`
	Subdistrict string  `json:"subdistrict,omitempty"`
	Village     string  `json:"village,omitempty"`
	MinScore    float64 `json:"min_score,omitempty"`
	Limit       int     `json:"limit,omitempty"`
	Offset      int     `json:"offset,omitempty"`
}

// RunFilter specifies criteria for listing report runs.
type RunFilter struct {
	Status string `json:"status,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for block snapshots and the
// enrichment caches that keep repeat runs off the paid APIs. Single-record
// lookups (GetCachedPOI, GetCachedTiming, GetRun) return nil, nil on a miss.
type Store interface {
	// Blocks
	SaveBlocks(ctx context.Context, blocks []model.HappyBlock) (int, error)
	ListBlocks(ctx context.Context, filter BlockFilter) ([]model.HappyBlock, error)

	// POI cache, keyed by block ID
	GetCachedPOI(ctx context.Context, blockID string) (*model.POI, error)
	SetCachedPOI(ctx context.Context, blockID string, poi model.POI, ttl time.Duration) error
	DeleteExpiredPOIs(ctx context.Context) (int, error)

	// Timing cache, keyed by venue name+address
	GetCachedTiming(ctx context.Context, venueKey string) (*model.TimingPattern, error)
	SetCachedTiming(ctx context.Context, venueKey string, pattern model.TimingPattern, ttl time.Duration) error
	DeleteExpiredTimings(ctx context.Context) (int, error)

	// Report runs
	CreateRun(ctx context.Context, area string) (*model.ReportRun, error)
	CompleteRun(ctx context.Context, runID string, rowCount int, outputPath string) error
	FailRun(ctx context.Context, runID string, errMsg string) error
	GetRun(ctx context.Context, runID string) (*model.ReportRun, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.ReportRun, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
