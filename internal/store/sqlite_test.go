package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/eagle-eye-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testBlock(id, village string, score float64) model.HappyBlock {
	return model.HappyBlock{
		ID:            id,
		Village:       village,
		L2Count:       3,
		AvailPorts:    12,
		PriorityScore: score,
		PriorityLabel: model.PriorityHigh,
		Latitude:      9.3225,
		Longitude:     99.7025,
		Province:      "Surat Thani",
		District:      "Mueang Surat Thani",
		Subdistrict:   "Makham Tia",
		InstallStatus: model.InstallNew,
	}
}

// --- Blocks ---

func TestSQLite_SaveBlocks_And_List(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.SaveBlocks(ctx, []model.HappyBlock{
		testBlock("09320-099700", "Bang Kung", 72.5),
		testBlock("09325-099700", "Bang Kung", 48.1),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	blocks, err := st.ListBlocks(ctx, BlockFilter{})
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	// Highest score first.
	assert.Equal(t, "09320-099700", blocks[0].ID)
	assert.Equal(t, 72.5, blocks[0].PriorityScore)
	assert.Equal(t, model.InstallNew, blocks[0].InstallStatus)
}

func TestSQLite_SaveBlocks_Upsert(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	b := testBlock("09320-099700", "Bang Kung", 50.0)
	_, err := st.SaveBlocks(ctx, []model.HappyBlock{b})
	require.NoError(t, err)

	// Next weekly snapshot moves the score.
	b.PriorityScore = 80.0
	_, err = st.SaveBlocks(ctx, []model.HappyBlock{b})
	require.NoError(t, err)

	blocks, err := st.ListBlocks(ctx, BlockFilter{})
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, 80.0, blocks[0].PriorityScore)
}

func TestSQLite_SaveBlocks_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)

	n, err := st.SaveBlocks(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSQLite_ListBlocks_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	a := testBlock("09320-099700", "Bang Kung", 72.5)
	b := testBlock("09420-099800", "Makham Tia", 35.0)
	b.District = "Kanchanadit"
	_, err := st.SaveBlocks(ctx, []model.HappyBlock{a, b})
	require.NoError(t, err)

	blocks, err := st.ListBlocks(ctx, BlockFilter{Village: "Makham Tia"})
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "09420-099800", blocks[0].ID)

	blocks, err = st.ListBlocks(ctx, BlockFilter{District: "Kanchanadit"})
	require.NoError(t, err)
	require.Len(t, blocks, 1)

	blocks, err = st.ListBlocks(ctx, BlockFilter{MinScore: 50})
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	assert.Equal(t, "09320-099700", blocks[0].ID)
}

func TestSQLite_ListBlocks_Limit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.SaveBlocks(ctx, []model.HappyBlock{
		testBlock("09320-099700", "Bang Kung", 70),
		testBlock("09325-099700", "Bang Kung", 60),
		testBlock("09330-099700", "Bang Kung", 50),
	})
	require.NoError(t, err)

	blocks, err := st.ListBlocks(ctx, BlockFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, blocks, 2)
}

// --- POI cache ---

func TestSQLite_POICache_SetAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	poi := model.POI{
		Name:       "7-Eleven Makham Tia",
		PlaceID:    "place-1",
		DistanceKM: 0.2,
		Confidence: model.ConfidenceHigh,
		Status:     model.SearchFoundCurrent,
	}
	err := st.SetCachedPOI(ctx, "09320-099700", poi, 1*time.Hour)
	require.NoError(t, err)

	cached, err := st.GetCachedPOI(ctx, "09320-099700")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "7-Eleven Makham Tia", cached.Name)
	assert.Equal(t, model.SearchFoundCurrent, cached.Status)
}

func TestSQLite_POICache_Missing(t *testing.T) {
	st := newTestSQLiteStore(t)

	cached, err := st.GetCachedPOI(context.Background(), "00000-000000")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestSQLite_POICache_Expired(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	err := st.SetCachedPOI(ctx, "09320-099700", model.POI{Name: "Old"}, -1*time.Hour)
	require.NoError(t, err)

	cached, err := st.GetCachedPOI(ctx, "09320-099700")
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestSQLite_POICache_Overwrite(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	err := st.SetCachedPOI(ctx, "09320-099700", model.POI{Name: "Original"}, 1*time.Hour)
	require.NoError(t, err)
	err = st.SetCachedPOI(ctx, "09320-099700", model.POI{Name: "Updated"}, 1*time.Hour)
	require.NoError(t, err)

	cached, err := st.GetCachedPOI(ctx, "09320-099700")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, "Updated", cached.Name)
}

func TestSQLite_POICache_DeleteExpired(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	err := st.SetCachedPOI(ctx, "expired-block", model.POI{Name: "Old"}, -1*time.Hour)
	require.NoError(t, err)
	err = st.SetCachedPOI(ctx, "fresh-block", model.POI{Name: "Fresh"}, 1*time.Hour)
	require.NoError(t, err)

	deleted, err := st.DeleteExpiredPOIs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	cached, err := st.GetCachedPOI(ctx, "fresh-block")
	require.NoError(t, err)
	assert.NotNil(t, cached)
}

// --- Timing cache ---

func TestSQLite_TimingCache_SetAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	p := model.TimingPattern{
		VenueName: "7-Eleven Makham Tia",
		Weekday:   []string{"17:00", "18:00"},
		BestDay:   "Friday",
		Status:    model.TimingLive,
	}
	err := st.SetCachedTiming(ctx, "7-Eleven Makham Tia|Surat Thani", p, 1*time.Hour)
	require.NoError(t, err)

	cached, err := st.GetCachedTiming(ctx, "7-Eleven Makham Tia|Surat Thani")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, []string{"17:00", "18:00"}, cached.Weekday)
	assert.Equal(t, model.TimingLive, cached.Status)
}

func TestSQLite_TimingCache_Expired(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	err := st.SetCachedTiming(ctx, "old-venue", model.TimingPattern{VenueName: "Old"}, -1*time.Hour)
	require.NoError(t, err)

	cached, err := st.GetCachedTiming(ctx, "old-venue")
	require.NoError(t, err)
	assert.Nil(t, cached)

	deleted, err := st.DeleteExpiredTimings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

// --- Report runs ---

func TestSQLite_CreateRun_And_GetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "Surat Thani / Mueang")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunPending, run.Status)

	fetched, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, fetched.ID)
	assert.Equal(t, "Surat Thani / Mueang", fetched.Area)
	assert.Nil(t, fetched.CompletedAt)
}

func TestSQLite_CompleteRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "Surat Thani")
	require.NoError(t, err)

	err = st.CompleteRun(ctx, run.ID, 42, "/tmp/report.xlsx")
	require.NoError(t, err)

	fetched, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunComplete, fetched.Status)
	assert.Equal(t, 42, fetched.RowCount)
	assert.Equal(t, "/tmp/report.xlsx", fetched.OutputPath)
	assert.NotNil(t, fetched.CompletedAt)
}

func TestSQLite_FailRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "Surat Thani")
	require.NoError(t, err)

	err = st.FailRun(ctx, run.ID, "places quota exceeded")
	require.NoError(t, err)

	fetched, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunFailed, fetched.Status)
	assert.Equal(t, "places quota exceeded", fetched.Error)
}

func TestSQLite_CompleteRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.CompleteRun(context.Background(), "nonexistent", 0, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_ListRuns_FilterByStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "Surat Thani")
	require.NoError(t, err)
	require.NoError(t, st.CompleteRun(ctx, run.ID, 10, "/tmp/a.xlsx"))

	_, err = st.CreateRun(ctx, "Nakhon Si Thammarat")
	require.NoError(t, err)

	runs, err := st.ListRuns(ctx, RunFilter{Status: model.RunComplete, Limit: 10})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)

	runs, err = st.ListRuns(ctx, RunFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

// --- Migrate ---

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	st := newTestSQLiteStore(t)

	// Migrate was already called in newTestSQLiteStore; calling again should not error.
	err := st.Migrate(context.Background())
	require.NoError(t, err)
}
