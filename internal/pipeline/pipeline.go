// Package pipeline runs the enrichment stages in their fixed order, records
// each stage in the run store and metrics, and writes the outputs.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sfhousing/parcel-enrich/internal/config"
	"github.com/sfhousing/parcel-enrich/internal/enrich"
	"github.com/sfhousing/parcel-enrich/internal/parcel"
	"github.com/sfhousing/parcel-enrich/internal/store"
	"github.com/sfhousing/parcel-enrich/internal/units"
)

// Pipeline executes an ordered list of stages against a run store.
type Pipeline struct {
	store  store.Store
	stages []Stage
}

// New creates a Pipeline. A nil stage list selects Stages().
func New(st store.Store, stages []Stage) *Pipeline {
	if stages == nil {
		stages = Stages()
	}
	return &Pipeline{store: st, stages: stages}
}

// Result is the outcome of a completed run.
type Result struct {
	RunID        string
	Table        parcel.Table
	Totals       units.Totals
	Joins        []enrich.JoinStats
	Uncalculable map[string]int
	PublicAdded  int
	Exported     int64
}

// Run executes every stage in order. A stage error, or a stage breaking its
// row-count contract, fails the run; there is no partial success.
func (p *Pipeline) Run(ctx context.Context, env *Env) (*Result, error) {
	digest, err := Digest(env.Config)
	if err != nil {
		return nil, err
	}
	run, err := p.store.CreateRun(ctx, digest)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	log := zap.L().With(zap.String("run_id", run.ID))
	log.Info("pipeline: starting run", zap.Int("stages", len(p.stages)))

	var t parcel.Table
	for seq, st := range p.stages {
		before := t.Len()
		start := time.Now()
		out, err := st.Run(ctx, t, env)
		elapsed := time.Since(start)
		if err == nil {
			err = checkRows(st, before, out.Len())
		}
		if err != nil {
			err = eris.Wrapf(err, "pipeline: stage %s", st.Name)
			log.Error("pipeline: stage failed",
				zap.String("stage", st.Name),
				zap.Int64("duration_ms", elapsed.Milliseconds()),
				zap.Error(err),
			)
			if failErr := p.store.FailRun(ctx, run.ID, err); failErr != nil {
				log.Warn("pipeline: failed to mark run failed", zap.Error(failErr))
			}
			return nil, err
		}
		t = out

		if recErr := p.store.RecordStage(ctx, store.Stage{
			RunID:      run.ID,
			Seq:        seq,
			Name:       st.Name,
			RowsBefore: before,
			RowsAfter:  t.Len(),
			DurationMs: elapsed.Milliseconds(),
		}); recErr != nil {
			log.Warn("pipeline: failed to record stage", zap.String("stage", st.Name), zap.Error(recErr))
		}
		env.Metrics.ObserveStage(st.Name, before, t.Len(), elapsed)
		log.Info("pipeline: stage complete",
			zap.String("stage", st.Name),
			zap.String("kind", st.Kind.String()),
			zap.Int("rows_before", before),
			zap.Int("rows_after", t.Len()),
			zap.Duration("duration", elapsed),
		)
	}

	if err := p.store.CompleteRun(ctx, run.ID, store.RunResult{
		Rows:      t.Len(),
		UnitsLow:  env.Totals.Low,
		UnitsHigh: env.Totals.High,
	}); err != nil {
		log.Warn("pipeline: failed to save run result", zap.Error(err))
	}
	env.Metrics.MarkSuccess(time.Now())
	if path := env.Config.Metrics.TextfilePath; path != "" {
		if err := env.Metrics.WriteTextfile(path); err != nil {
			log.Warn("pipeline: failed to write metrics textfile", zap.Error(err))
		}
	}

	log.Info("pipeline: run complete",
		zap.Int("rows", t.Len()),
		zap.Float64("units_low", env.Totals.Low),
		zap.Float64("units_high", env.Totals.High),
		zap.Int("public_added", env.PublicAdded),
	)

	return &Result{
		RunID:        run.ID,
		Table:        t,
		Totals:       env.Totals,
		Joins:        env.Joins,
		Uncalculable: env.Uncalculable,
		PublicAdded:  env.PublicAdded,
		Exported:     env.Exported,
	}, nil
}

func checkRows(st Stage, before, after int) error {
	switch st.Kind {
	case KindFill:
		if after != before {
			return eris.Errorf("pipeline: fill stage changed row count from %d to %d", before, after)
		}
	case KindRemoval:
		if after > before {
			return eris.Errorf("pipeline: removal stage grew row count from %d to %d", before, after)
		}
	}
	return nil
}

// Digest fingerprints the configuration a run was started with.
func Digest(cfg *config.Config) (string, error) {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return "", eris.Wrap(err, "pipeline: marshal config")
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
