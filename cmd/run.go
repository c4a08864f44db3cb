package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sfhousing/parcel-enrich/internal/config"
	"github.com/sfhousing/parcel-enrich/internal/db"
	"github.com/sfhousing/parcel-enrich/internal/export"
	"github.com/sfhousing/parcel-enrich/internal/metrics"
	"github.com/sfhousing/parcel-enrich/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full enrichment pipeline",
	Long:  "Loads every input, runs the enrichment stages in order, writes the geometry, overlay and model outputs, and updates the public parcels artifact.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := applyRunFlags(cmd, cfg); err != nil {
			return err
		}

		src, err := pipeline.LoadSources(ctx, cfg)
		if err != nil {
			return err
		}
		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			zap.L().Info("dry run: inputs loaded, skipping stages")
			return nil
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		env, err := pipeline.NewEnv(cfg, src, metrics.New())
		if err != nil {
			return err
		}

		if doExport, _ := cmd.Flags().GetBool("export"); doExport {
			pool, err := db.Connect(ctx, cfg.Export.DatabaseURL, exportRetry())
			if err != nil {
				return eris.Wrap(err, "connect export database")
			}
			defer pool.Close()
			env.Exporter = &export.Exporter{
				Pool:    pool,
				Options: export.Options{Table: cfg.Export.Table, Mode: cfg.Export.Mode},
				Retry:   exportRetry(),
			}
		}

		result, err := pipeline.New(st, nil).Run(ctx, env)
		if err != nil {
			return eris.Wrap(err, "pipeline run")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summarize(result))
	},
}

// runSummary is the JSON printed after a run.
type runSummary struct {
	RunID        string         `json:"run_id"`
	Rows         int            `json:"rows"`
	UnitsLow     float64        `json:"units_low"`
	UnitsHigh    float64        `json:"units_high"`
	PublicAdded  int            `json:"public_added"`
	Exported     int64          `json:"exported,omitempty"`
	Uncalculable map[string]int `json:"uncalculable,omitempty"`
}

func summarize(r *pipeline.Result) runSummary {
	return runSummary{
		RunID:        r.RunID,
		Rows:         r.Table.Len(),
		UnitsLow:     r.Totals.Low,
		UnitsHigh:    r.Totals.High,
		PublicAdded:  r.PublicAdded,
		Exported:     r.Exported,
		Uncalculable: r.Uncalculable,
	}
}

// applyRunFlags overrides configuration with flags the user set explicitly.
func applyRunFlags(cmd *cobra.Command, c *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		c.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("output-dir") {
		c.Outputs.Dir, _ = flags.GetString("output-dir")
	}
	if flags.Changed("workers") {
		c.Pipeline.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("transit-index") {
		c.Pipeline.TransitIndex, _ = flags.GetString("transit-index")
	}
	if flags.Changed("xlsx") {
		c.Outputs.XLSX, _ = flags.GetString("xlsx")
	}
	if doExport, _ := flags.GetBool("export"); doExport && c.Export.DatabaseURL == "" {
		return eris.New("--export requires export.database_url (PARCEL_EXPORT_DATABASE_URL)")
	}
	return c.Validate()
}

func registerRunFlags(c *cobra.Command) {
	c.Flags().String("data-dir", "", "directory input paths are relative to")
	c.Flags().String("output-dir", "", "directory for output files")
	c.Flags().Int("workers", 0, "parallel workers for joins and scoring (0 = GOMAXPROCS)")
	c.Flags().String("transit-index", "s2", "nearest-stop index: s2 or scan")
	c.Flags().String("xlsx", "", "also write an XLSX workbook with this file name")
	c.Flags().Bool("export", false, "load the model table into Postgres")
	c.Flags().Bool("dry-run", false, "load and validate inputs only")
}

func init() {
	registerRunFlags(runCmd)
	rootCmd.AddCommand(runCmd)
}
