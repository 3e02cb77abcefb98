package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/eagle-eye-cli/internal/db"
	"github.com/sells-group/eagle-eye-cli/internal/model"
)

// PostgresStore implements Store using pgxpool. Used when several operators
// share one block snapshot and cache.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations. The cache
// lookups run once per block per enrichment pass.
var preparedStatements = map[string]string{
	"get_cached_poi":    `SELECT poi FROM poi_cache WHERE block_id = $1 AND expires_at > now()`,
	"set_cached_poi":    `INSERT INTO poi_cache (block_id, poi, cached_at, expires_at) VALUES ($1, $2, $3, $4) ON CONFLICT (block_id) DO UPDATE SET poi = $2, cached_at = $3, expires_at = $4`,
	"get_cached_timing": `SELECT pattern FROM timing_cache WHERE venue_key = $1 AND expires_at > now()`,
	"set_cached_timing": `INSERT INTO timing_cache (venue_key, pattern, cached_at, expires_at) VALUES ($1, $2, $3, $4) ON CONFLICT (venue_key) DO UPDATE SET pattern = $2, cached_at = $3, expires_at = $4`,
	"insert_run":        `INSERT INTO report_runs (id, area, status, created_at) VALUES ($1, $2, $3, $4)`,
	"complete_run":      `UPDATE report_runs SET status = $1, row_count = $2, output_path = $3, completed_at = $4 WHERE id = $5`,
	"get_run":           `SELECT id, area, status, row_count, output_path, error, created_at, completed_at FROM report_runs WHERE id = $1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	// Apply pool sizing from config with sensible defaults.
	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	// Prepare frequently-used statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need direct
// query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS happy_blocks (
	id             TEXT PRIMARY KEY,
	village        TEXT NOT NULL,
	province       TEXT NOT NULL DEFAULT '',
	district       TEXT NOT NULL DEFAULT '',
	subdistrict    TEXT NOT NULL DEFAULT '',
	priority_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	priority_label TEXT NOT NULL DEFAULT '',
	data           JSONB NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS poi_cache (
	block_id   TEXT PRIMARY KEY,
	poi        JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS timing_cache (
	venue_key  TEXT PRIMARY KEY,
	pattern    JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS report_runs (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	area         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'pending',
	row_count    INTEGER NOT NULL DEFAULT 0,
	output_path  TEXT,
	error        TEXT,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_happy_blocks_village ON happy_blocks(village);
CREATE INDEX IF NOT EXISTS idx_happy_blocks_province ON happy_blocks(province);
CREATE INDEX IF NOT EXISTS idx_happy_blocks_score ON happy_blocks(priority_score DESC);
CREATE INDEX IF NOT EXISTS idx_poi_cache_expires_at ON poi_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_timing_cache_expires_at ON timing_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_report_runs_status ON report_runs(status);
`

// blockColumns is the happy_blocks column order used by SaveBlocks.
var blockColumns = []string{
	"id", "village", "province", "district", "subdistrict",
	"priority_score", "priority_label", "data", "updated_at",
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

// SaveBlocks bulk-upserts a block snapshot. Weekly dumps re-cover the same
// grid, so nearly every row is an update.
func (s *PostgresStore) SaveBlocks(ctx context.Context, blocks []model.HappyBlock) (int, error) {
	if len(blocks) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	rows := make([][]any, 0, len(blocks))
	for _, b := range blocks {
		b.UpdatedAt = now
		data, err := json.Marshal(b)
		if err != nil {
			return 0, eris.Wrapf(err, "postgres: marshal block %s", b.ID)
		}
		rows = append(rows, []any{
			b.ID, b.Village, b.Province, b.District, b.Subdistrict,
			b.PriorityScore, string(b.PriorityLabel), data, now,
		})
	}

	n, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "happy_blocks",
		Columns:      blockColumns,
		ConflictKeys: []string{"id"},
	}, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: save blocks")
	}
	return int(n), nil
}

func (s *PostgresStore) ListBlocks(ctx context.Context, filter BlockFilter) ([]model.HappyBlock, error) {
	query := `SELECT data FROM happy_blocks WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Province != "" {
		query += fmt.Sprintf(` AND province = $%d`, argIdx)
		args = append(args, filter.Province)
		argIdx++
	}
	if filter.District != "" {
		query += fmt.Sprintf(` AND district = $%d`, argIdx)
		args = append(args, filter.District)
		argIdx++
	}
	if filter.Subdistrict != "" {
		query += fmt.Sprintf(` AND subdistrict = $%d`, argIdx)
		args = append(args, filter.Subdistrict)
		argIdx++
	}
	if filter.Village != "" {
		query += fmt.Sprintf(` AND village = $%d`, argIdx)
		args = append(args, filter.Village)
		argIdx++
	}
	if filter.MinScore > 0 {
		query += fmt.Sprintf(` AND priority_score >= $%d`, argIdx)
		args = append(args, filter.MinScore)
		argIdx++
	}
	query += ` ORDER BY priority_score DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list blocks")
	}
	defer rows.Close()

	var blocks []model.HappyBlock
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan block")
		}
		var b model.HappyBlock
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal block")
		}
		blocks = append(blocks, b)
	}
	return blocks, eris.Wrap(rows.Err(), "postgres: list blocks iterate")
}

func (s *PostgresStore) GetCachedPOI(ctx context.Context, blockID string) (*model.POI, error) {
	var poiJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT poi FROM poi_cache WHERE block_id = $1 AND expires_at > now()`,
		blockID,
	).Scan(&poiJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get cached poi")
	}

	var poi model.POI
	if err := json.Unmarshal(poiJSON, &poi); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached poi")
	}
	return &poi, nil
}

func (s *PostgresStore) SetCachedPOI(ctx context.Context, blockID string, poi model.POI, ttl time.Duration) error {
	now := time.Now().UTC()

	poiJSON, err := json.Marshal(poi)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal poi")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO poi_cache (block_id, poi, cached_at, expires_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (block_id) DO UPDATE SET poi = $2, cached_at = $3, expires_at = $4`,
		blockID, poiJSON, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached poi")
}

func (s *PostgresStore) DeleteExpiredPOIs(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM poi_cache WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired pois")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) GetCachedTiming(ctx context.Context, venueKey string) (*model.TimingPattern, error) {
	var patternJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT pattern FROM timing_cache WHERE venue_key = $1 AND expires_at > now()`,
		venueKey,
	).Scan(&patternJSON)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: get cached timing")
	}

	var p model.TimingPattern
	if err := json.Unmarshal(patternJSON, &p); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached timing")
	}
	return &p, nil
}

func (s *PostgresStore) SetCachedTiming(ctx context.Context, venueKey string, pattern model.TimingPattern, ttl time.Duration) error {
	now := time.Now().UTC()

	patternJSON, err := json.Marshal(pattern)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal timing pattern")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO timing_cache (venue_key, pattern, cached_at, expires_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (venue_key) DO UPDATE SET pattern = $2, cached_at = $3, expires_at = $4`,
		venueKey, patternJSON, now, now.Add(ttl),
	)
	return eris.Wrap(err, "postgres: set cached timing")
}

func (s *PostgresStore) DeleteExpiredTimings(ctx context.Context) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM timing_cache WHERE expires_at <= now()`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete expired timings")
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, area string) (*model.ReportRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO report_runs (id, area, status, created_at) VALUES ($1, $2, $3, $4)`,
		id, area, model.RunPending, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &model.ReportRun{
		ID:        id,
		Area:      area,
		Status:    model.RunPending,
		CreatedAt: now,
	}, nil
}

func (s *PostgresStore) CompleteRun(ctx context.Context, runID string, rowCount int, outputPath string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE report_runs SET status = $1, row_count = $2, output_path = $3, completed_at = $4 WHERE id = $5`,
		model.RunComplete, rowCount, outputPath, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

func (s *PostgresStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE report_runs SET status = $1, error = $2, completed_at = $3 WHERE id = $4`,
		model.RunFailed, errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", runID)
	}
	return nil
}

// GetRun returns nil without error when no run matches, like the cache
// lookups do.
func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.ReportRun, error) {
	r, err := scanPgRun(s.pool.QueryRow(ctx,
		`SELECT id, area, status, row_count, output_path, error, created_at, completed_at FROM report_runs WHERE id = $1`,
		runID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get run %s", runID)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ReportRun, error) {
	query := `SELECT id, area, status, row_count, output_path, error, created_at, completed_at FROM report_runs WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.ReportRun
	for rows.Next() {
		r, err := scanPgRun(rows)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

func scanPgRun(row scannable) (*model.ReportRun, error) {
	var r model.ReportRun
	var outputPath, errMsg *string
	var completedAt *time.Time

	if err := row.Scan(&r.ID, &r.Area, &r.Status, &r.RowCount, &outputPath, &errMsg, &r.CreatedAt, &completedAt); err != nil {
		return nil, err
	}
	if outputPath != nil {
		r.OutputPath = *outputPath
	}
	if errMsg != nil {
		r.Error = *errMsg
	}
	r.CompletedAt = completedAt
	return &r, nil
}
