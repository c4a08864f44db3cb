package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sfhousing/parcel-enrich/internal/db"
	"github.com/sfhousing/parcel-enrich/internal/export"
	"github.com/sfhousing/parcel-enrich/internal/resilience"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Load a model CSV into Postgres",
	Long:  "Copies the model output of a previous run into a Postgres table, either replacing its contents or upserting by BlockLot.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		modelPath, _ := cmd.Flags().GetString("model")
		if modelPath == "" {
			modelPath = cfg.Output(cfg.Outputs.Model)
		}
		opts := export.Options{Table: cfg.Export.Table, Mode: cfg.Export.Mode}
		if cmd.Flags().Changed("table") {
			opts.Table, _ = cmd.Flags().GetString("table")
		}
		if cmd.Flags().Changed("mode") {
			opts.Mode, _ = cmd.Flags().GetString("mode")
		}
		if cfg.Export.DatabaseURL == "" {
			return eris.New("export requires export.database_url (PARCEL_EXPORT_DATABASE_URL)")
		}

		rows, err := export.ReadModelCSV(ctx, modelPath)
		if err != nil {
			return err
		}

		pool, err := db.Connect(ctx, cfg.Export.DatabaseURL, exportRetry())
		if err != nil {
			return eris.Wrap(err, "connect export database")
		}
		defer pool.Close()

		n, err := resilience.DoVal(ctx, exportRetry(), func(ctx context.Context) (int64, error) {
			return export.ParcelModel(ctx, pool, opts, rows)
		})
		if err != nil {
			return err
		}
		zap.L().Info("export complete",
			zap.String("table", opts.Table),
			zap.String("mode", opts.Mode),
			zap.Int64("rows", n),
		)
		return nil
	},
}

// exportRetry is the retry policy for export connections and loads.
func exportRetry() resilience.Policy {
	p := resilience.DefaultPolicy().WithAttempts(cfg.Export.MaxAttempts)
	p.OnRetry = resilience.LogRetry("export")
	return p
}

func init() {
	exportCmd.Flags().String("model", "", "model CSV (default: configured model output)")
	exportCmd.Flags().String("table", "", "target table (default: export.table)")
	exportCmd.Flags().String("mode", "", "replace or upsert (default: export.mode)")
	rootCmd.AddCommand(exportCmd)
}
