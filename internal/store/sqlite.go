package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/eagle-eye-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite. It is the default
// backend for single-operator use; field laptops don't run Postgres.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

// Blocks keep their filterable fields as columns and the full record as a
// JSON blob, so listings never chase schema drift in the aggregate shape.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS happy_blocks (
	id             TEXT PRIMARY KEY,
	village        TEXT NOT NULL,
	province       TEXT NOT NULL DEFAULT '',
	district       TEXT NOT NULL DEFAULT '',
	subdistrict    TEXT NOT NULL DEFAULT '',
	priority_score REAL NOT NULL DEFAULT 0,
	priority_label TEXT NOT NULL DEFAULT '',
	data           TEXT NOT NULL,
	updated_at     DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS poi_cache (
	block_id   TEXT PRIMARY KEY,
	poi        TEXT NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS timing_cache (
	venue_key  TEXT PRIMARY KEY,
	pattern    TEXT NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now')),
	expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS report_runs (
	id           TEXT PRIMARY KEY,
	area         TEXT NOT NULL,
	status       TEXT NOT NULL DEFAULT 'pending',
	row_count    INTEGER NOT NULL DEFAULT 0,
	output_path  TEXT,
	error        TEXT,
	created_at   DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at DATETIME
);

CREATE INDEX IF NOT EXISTS idx_happy_blocks_village ON happy_blocks(village);
CREATE INDEX IF NOT EXISTS idx_happy_blocks_province ON happy_blocks(province);
CREATE INDEX IF NOT EXISTS idx_happy_blocks_score ON happy_blocks(priority_score);
CREATE INDEX IF NOT EXISTS idx_poi_cache_expires_at ON poi_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_timing_cache_expires_at ON timing_cache(expires_at);
CREATE INDEX IF NOT EXISTS idx_report_runs_status ON report_runs(status);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveBlocks(ctx context.Context, blocks []model.HappyBlock) (int, error) {
	if len(blocks) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO happy_blocks (id, village, province, district, subdistrict, priority_score, priority_label, data, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   village = excluded.village, province = excluded.province, district = excluded.district,
		   subdistrict = excluded.subdistrict, priority_score = excluded.priority_score,
		   priority_label = excluded.priority_label, data = excluded.data, updated_at = excluded.updated_at`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare block upsert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, b := range blocks {
		b.UpdatedAt = now
		data, err := json.Marshal(b)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: marshal block %s", b.ID)
		}
		if _, err := stmt.ExecContext(ctx,
			b.ID, b.Village, b.Province, b.District, b.Subdistrict,
			b.PriorityScore, string(b.PriorityLabel), string(data), now,
		); err != nil {
			return 0, eris.Wrapf(err, "sqlite: upsert block %s", b.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit blocks")
	}
	return len(blocks), nil
}

func (s *SQLiteStore) ListBlocks(ctx context.Context, filter BlockFilter) ([]model.HappyBlock, error) {
	query := `SELECT data FROM happy_blocks WHERE 1=1`
	var args []any

	if filter.Province != "" {
		query += ` AND province = ?`
		args = append(args, filter.Province)
	}
	if filter.District != "" {
		query += ` AND district = ?`
		args = append(args, filter.District)
	}
	if filter.Subdistrict != "" {
		query += ` AND subdistrict = ?`
		args = append(args, filter.Subdistrict)
	}
	if filter.Village != "" {
		query += ` AND village = ?`
		args = append(args, filter.Village)
	}
	if filter.MinScore > 0 {
		query += ` AND priority_score >= ?`
		args = append(args, filter.MinScore)
	}
	query += ` ORDER BY priority_score DESC, id`

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list blocks")
	}
	defer rows.Close()

	var blocks []model.HappyBlock
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan block")
		}
		var b model.HappyBlock
		if err := json.Unmarshal([]byte(data), &b); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal block")
		}
		blocks = append(blocks, b)
	}
	return blocks, eris.Wrap(rows.Err(), "sqlite: list blocks iterate")
}

func (s *SQLiteStore) GetCachedPOI(ctx context.Context, blockID string) (*model.POI, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT poi FROM poi_cache WHERE block_id = ? AND expires_at > datetime('now')`,
		blockID,
	)

	var poiJSON string
	err := row.Scan(&poiJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached poi")
	}

	var poi model.POI
	if err := json.Unmarshal([]byte(poiJSON), &poi); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached poi")
	}
	return &poi, nil
}

func (s *SQLiteStore) SetCachedPOI(ctx context.Context, blockID string, poi model.POI, ttl time.Duration) error {
	now := time.Now().UTC()

	poiJSON, err := json.Marshal(poi)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal poi")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO poi_cache (block_id, poi, cached_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (block_id) DO UPDATE SET poi = excluded.poi, cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		blockID, string(poiJSON), now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: set cached poi")
}

func (s *SQLiteStore) DeleteExpiredPOIs(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM poi_cache WHERE expires_at <= datetime('now')`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired pois")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) GetCachedTiming(ctx context.Context, venueKey string) (*model.TimingPattern, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT pattern FROM timing_cache WHERE venue_key = ? AND expires_at > datetime('now')`,
		venueKey,
	)

	var patternJSON string
	err := row.Scan(&patternJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get cached timing")
	}

	var p model.TimingPattern
	if err := json.Unmarshal([]byte(patternJSON), &p); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached timing")
	}
	return &p, nil
}

func (s *SQLiteStore) SetCachedTiming(ctx context.Context, venueKey string, pattern model.TimingPattern, ttl time.Duration) error {
	now := time.Now().UTC()

	patternJSON, err := json.Marshal(pattern)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal timing pattern")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO timing_cache (venue_key, pattern, cached_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (venue_key) DO UPDATE SET pattern = excluded.pattern, cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		venueKey, string(patternJSON), now, now.Add(ttl),
	)
	return eris.Wrap(err, "sqlite: set cached timing")
}

func (s *SQLiteStore) DeleteExpiredTimings(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM timing_cache WHERE expires_at <= datetime('now')`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete expired timings")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func (s *SQLiteStore) CreateRun(ctx context.Context, area string) (*model.ReportRun, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO report_runs (id, area, status, created_at) VALUES (?, ?, ?, ?)`,
		id, area, model.RunPending, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &model.ReportRun{
		ID:        id,
		Area:      area,
		Status:    model.RunPending,
		CreatedAt: now,
	}, nil
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, runID string, rowCount int, outputPath string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE report_runs SET status = ?, row_count = ?, output_path = ?, completed_at = ? WHERE id = ?`,
		model.RunComplete, rowCount, outputPath, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

func (s *SQLiteStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE report_runs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		model.RunFailed, errMsg, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail run %s", runID)
	}
	return checkRowsAffected(res, "run", runID)
}

// GetRun returns nil without error when no run matches, like the cache
// lookups do.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.ReportRun, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, area, status, row_count, output_path, error, created_at, completed_at FROM report_runs WHERE id = ?`,
		runID,
	)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.ReportRun, error) {
	query := `SELECT id, area, status, row_count, output_path, error, created_at, completed_at FROM report_runs WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.ReportRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*model.ReportRun, error) {
	var r model.ReportRun
	var outputPath, errMsg sql.NullString
	var completedAt sql.NullTime

	err := row.Scan(&r.ID, &r.Area, &r.Status, &r.RowCount, &outputPath, &errMsg, &r.CreatedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	r.OutputPath = outputPath.String
	r.Error = errMsg.String
	if completedAt.Valid {
		t := completedAt.Time
		r.CompletedAt = &t
	}
	return &r, nil
}
