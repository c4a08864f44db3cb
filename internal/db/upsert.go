package db

import (
	"context"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertConfig names the target table and how rows collide with it.
type UpsertConfig struct {
	Table        string   // optionally schema-qualified
	Columns      []string // column order of every row
	ConflictKeys []string // unique constraint columns, a subset of Columns
	UpdateCols   []string // nil updates every non-key column
}

// BulkUpsert stages rows with CopyFrom into a transaction-scoped temp table,
// then merges them into cfg.Table with INSERT ... ON CONFLICT. The whole load
// commits or rolls back as one unit.
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
	defer func() { _ = tx.Rollback(ctx) }()

	staging := cfg.stagingTable()
	if _, err := tx.Exec(ctx, createStagingSQL(staging, cfg.Table)); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: create temp table for %s", cfg.Table)
	}
	if _, err := CopyFrom(ctx, tx, staging, cfg.Columns, rows); err != nil {
		return 0, eris.Wrapf(err, "db: upsert: COPY into temp table for %s", cfg.Table)
	}

	tag, err := tx.Exec(ctx, cfg.mergeSQL(staging))
	if err != nil {
		return 0, eris.Wrapf(err, "db: upsert: merge into %s", cfg.Table)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "db: upsert: commit tx")
	}
	return tag.RowsAffected(), nil
}

func (cfg UpsertConfig) validate() error {
	if len(cfg.Columns) == 0 {
		return eris.New("db: upsert: no columns specified")
	}
	if len(cfg.ConflictKeys) == 0 {
		return eris.New("db: upsert: no conflict keys specified")
	}
	for _, k := range cfg.ConflictKeys {
		if !slices.Contains(cfg.Columns, k) {
			return eris.Errorf("db: upsert: conflict key %q is not a column", k)
		}
	}
	return nil
}

// stagingTable is unqualified: temp tables live in the session's own schema.
func (cfg UpsertConfig) stagingTable() string {
	return "_tmp_upsert_" + strings.ReplaceAll(cfg.Table, ".", "_")
}

// updateColumns resolves UpdateCols, defaulting to every non-key column.
func (cfg UpsertConfig) updateColumns() []string {
	if cfg.UpdateCols != nil {
		return cfg.UpdateCols
	}
	var cols []string
	for _, c := range cfg.Columns {
		if !slices.Contains(cfg.ConflictKeys, c) {
			cols = append(cols, c)
		}
	}
	return cols
}

// mergeSQL moves staged rows into the target. With nothing to update, an
// existing key is left as it is.
func (cfg UpsertConfig) mergeSQL(staging string) string {
	cols := quoteAndJoin(cfg.Columns)

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(sanitizeTable(cfg.Table))
	b.WriteString(" (" + cols + ") SELECT " + cols + " FROM ")
	b.WriteString(pgx.Identifier{staging}.Sanitize())
	b.WriteString(" ON CONFLICT (" + quoteAndJoin(cfg.ConflictKeys) + ")")

	update := cfg.updateColumns()
	if len(update) == 0 {
		b.WriteString(" DO NOTHING")
		return b.String()
	}
	b.WriteString(" DO UPDATE SET ")
	for i, c := range update {
		if i > 0 {
			b.WriteString(", ")
		}
		q := pgx.Identifier{c}.Sanitize()
		b.WriteString(q + " = EXCLUDED." + q)
	}
	return b.String()
}

func createStagingSQL(staging, table string) string {
	return "CREATE TEMP TABLE " + pgx.Identifier{staging}.Sanitize() +
		" (LIKE " + sanitizeTable(table) + " INCLUDING DEFAULTS) ON COMMIT DROP"
}

// sanitizeTable quotes a possibly schema-qualified table name.
func sanitizeTable(table string) string {
	return Identifier(table).Sanitize()
}

// quoteAndJoin quotes each column name and joins with commas.
func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
