// Package export loads the model table into Postgres.
package export

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sfhousing/parcel-enrich/internal/db"
	"github.com/sfhousing/parcel-enrich/internal/output"
	"github.com/sfhousing/parcel-enrich/internal/parcel"
	"github.com/sfhousing/parcel-enrich/internal/resilience"
	"github.com/sfhousing/parcel-enrich/internal/source"
)

// Export modes.
const (
	ModeReplace = "replace"
	ModeUpsert  = "upsert"
)

// Options selects the target table and how existing rows are treated.
type Options struct {
	Table string
	Mode  string
}

// flagColumns hold 0/1 values and are stored as smallint.
var flagColumns = flagSet()

func flagSet() map[string]bool {
	set := map[string]bool{
		source.ColResDummy: true,
		source.ColHistoric: true,
		source.ColSDB:      true,
	}
	for _, c := range parcel.ZoningColumns {
		set[c] = true
	}
	for _, c := range parcel.DistrictColumns {
		set[c] = true
	}
	return set
}

// CreateTableSQL returns the DDL for the model table.
func CreateTableSQL(table string) string {
	defs := make([]string, 0, len(output.ModelColumns))
	for _, col := range output.ModelColumns {
		typ := "double precision"
		switch {
		case col == source.ColBlockLot:
			typ = "text PRIMARY KEY"
		case flagColumns[col]:
			typ = "smallint"
		}
		defs = append(defs, pgx.Identifier{col}.Sanitize()+" "+typ)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", db.Identifier(table).Sanitize(), strings.Join(defs, ", "))
}

// Values converts a rendered model record into COPY values. Blank cells
// become NULL.
func Values(rec []string) []any {
	vals := make([]any, len(output.ModelColumns))
	for i, col := range output.ModelColumns {
		if i >= len(rec) || rec[i] == "" {
			continue
		}
		switch {
		case col == source.ColBlockLot:
			vals[i] = rec[i]
		case flagColumns[col]:
			if b := parcel.Flag(rec[i]); b != nil {
				vals[i] = int16(parcel.FlagValue(b))
			}
		default:
			if v := parcel.Number(rec[i]); v != nil {
				vals[i] = *v
			}
		}
	}
	return vals
}

// Rows renders every parcel of t as COPY values.
func Rows(t parcel.Table) [][]any {
	rows := make([][]any, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		p := t.At(i)
		rows = append(rows, Values(output.ModelRecord(&p)))
	}
	return rows
}

// ReadModelCSV reads a model table written by a previous run.
func ReadModelCSV(ctx context.Context, path string) ([][]any, error) {
	var rows [][]any
	rec := make([]string, len(output.ModelColumns))
	err := source.ReadRecords(ctx, path, func(r source.Record) error {
		for i, col := range output.ModelColumns {
			rec[i] = r.Get(col)
		}
		rows = append(rows, Values(rec))
		return nil
	}, output.ModelColumns...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ParcelModel writes rows to the model table, creating it if needed. Replace
// mode truncates and reloads inside one transaction; upsert mode merges on
// BlockLot and keeps rows the export does not mention.
func ParcelModel(ctx context.Context, pool db.Pool, opts Options, rows [][]any) (int64, error) {
	if opts.Table == "" {
		return 0, eris.New("export: table is empty")
	}
	log := zap.L().With(zap.String("table", opts.Table), zap.String("mode", opts.Mode))

	var (
		n   int64
		err error
	)
	switch opts.Mode {
	case ModeReplace, "":
		n, err = replace(ctx, pool, opts.Table, rows)
	case ModeUpsert:
		if _, err = pool.Exec(ctx, CreateTableSQL(opts.Table)); err != nil {
			return 0, eris.Wrapf(err, "export: create %s", opts.Table)
		}
		n, err = db.BulkUpsert(ctx, pool, db.UpsertConfig{
			Table:        opts.Table,
			Columns:      output.ModelColumns,
			ConflictKeys: []string{source.ColBlockLot},
		}, rows)
	default:
		return 0, eris.Errorf("export: unknown mode %q", opts.Mode)
	}
	if err != nil {
		return 0, err
	}

	log.Info("export: model table loaded", zap.Int64("rows", n))
	return n, nil
}

func replace(ctx context.Context, pool db.Pool, table string, rows [][]any) (int64, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "export: begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, CreateTableSQL(table)); err != nil {
		return 0, eris.Wrapf(err, "export: create %s", table)
	}
	if _, err := tx.Exec(ctx, "TRUNCATE "+db.Identifier(table).Sanitize()); err != nil {
		return 0, eris.Wrapf(err, "export: truncate %s", table)
	}
	n, err := db.CopyFrom(ctx, tx, table, output.ModelColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "export: copy model rows")
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "export: commit tx")
	}
	return n, nil
}

// Exporter loads a run's final table with ParcelModel. Both modes are
// idempotent, so a transient failure reruns the whole load.
type Exporter struct {
	Pool    db.Pool
	Options Options
	Retry   resilience.Policy
}

// Export implements the pipeline's exporter hook.
func (e *Exporter) Export(ctx context.Context, t parcel.Table) (int64, error) {
	rows := Rows(t)
	return resilience.DoVal(ctx, e.Retry, func(ctx context.Context) (int64, error) {
		return ParcelModel(ctx, e.Pool, e.Options, rows)
	})
}
