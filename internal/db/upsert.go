package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertConfig names the target of a bulk upsert.
type UpsertConfig struct {
	Table        string   // target table (e.g., "happy_blocks")
	Columns      []string // all columns being inserted
	ConflictKeys []string // columns forming the unique constraint
	UpdateCols   []string // columns to update on conflict; nil = all non-conflict columns
}

func (cfg UpsertConfig) validate() error {
	if len(cfg.Columns) == 0 {
		return eris.New("db: upsert: no columns specified")
	}
	if len(cfg.ConflictKeys) == 0 {
		return eris.New("db: upsert: no conflict keys specified")
	}
	return nil
}

// updateColumns resolves the SET list: explicit UpdateCols when given,
// otherwise every column that is not a conflict key.
func (cfg UpsertConfig) updateColumns() []string {
	if cfg.UpdateCols != nil {
		return cfg.UpdateCols
	}
	keys := make(map[string]bool, len(cfg.ConflictKeys))
	for _, k := range cfg.ConflictKeys {
		keys[k] = true
	}
	var cols []string
	for _, c := range cfg.Columns {
		if !keys[c] {
			cols = append(cols, c)
		}
	}
	return cols
}

// stageTable derives the session-local staging table name.
func (cfg UpsertConfig) stageTable() string {
	return "_stage_" + strings.ReplaceAll(cfg.Table, ".", "_")
}

// BulkUpsert merges rows into cfg.Table inside one transaction: COPY into a
// temp staging table, then INSERT ... ON CONFLICT DO UPDATE from it. The
// weekly snapshot refresh hits mostly-existing block rows, where a plain
// COPY would trip the primary key and per-row upserts would crawl.
func BulkUpsert(ctx context.Context, pool Pool, cfg UpsertConfig, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if err := cfg.validate(); err != nil {
		return 0, err
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "db: upsert: begin tx")
	}
	defer tx.Rollback(ctx)

	stage := cfg.stageTable()
	createSQL := fmt.Sprintf(
		"CREATE TEMP TABLE %s (LIKE %s INCLUDING DEFAULTS) ON COMMIT DROP",
		pgx.Identifier{stage}.Sanitize(),
		sanitizeTable(cfg.Table),
	)
	if _, err := tx.Exec(ctx, createSQL); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: create staging table for %s", cfg.Table)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{stage}, cfg.Columns, pgx.CopyFromRows(rows)); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: COPY into staging table for %s", cfg.Table)
	}

	tag, err := tx.Exec(ctx, cfg.mergeSQL(stage))
	if err != nil {
		return 0, eris.Wrapf(err, "db: upsert: merge from staging table for %s", cfg.Table)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: upsert: commit tx")
	}
	return tag.RowsAffected(), nil
}

// mergeSQL builds the INSERT ... ON CONFLICT DO UPDATE statement that moves
// staged rows into the target table.
func (cfg UpsertConfig) mergeSQL(stage string) string {
	cols := joinIdents(cfg.Columns)

	sets := make([]string, 0, len(cfg.Columns))
	for _, col := range cfg.updateColumns() {
		ident := pgx.Identifier{col}.Sanitize()
		sets = append(sets, ident+" = EXCLUDED."+ident)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s FROM %s ON CONFLICT (%s) DO UPDATE SET %s",
		sanitizeTable(cfg.Table),
		cols,
		cols,
		pgx.Identifier{stage}.Sanitize(),
		joinIdents(cfg.ConflictKeys),
		strings.Join(sets, ", "),
	)
}

// sanitizeTable handles schema-qualified table names like "eagle.happy_blocks".
func sanitizeTable(table string) string {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return pgx.Identifier{schema, name}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

func joinIdents(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
