package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/sfhousing/parcel-enrich/internal/enrich"
	"github.com/sfhousing/parcel-enrich/internal/output"
	"github.com/sfhousing/parcel-enrich/internal/parcel"
	"github.com/sfhousing/parcel-enrich/internal/transit"
	"github.com/sfhousing/parcel-enrich/internal/units"
)

// Kind tells the orchestrator which row-count contract a stage keeps.
type Kind int

const (
	// KindLoad builds the table from sources; its input is ignored.
	KindLoad Kind = iota
	// KindFill fills or derives columns and keeps every row.
	KindFill
	// KindRemoval drops rows and never adds any.
	KindRemoval
)

func (k Kind) String() string {
	switch k {
	case KindLoad:
		return "load"
	case KindFill:
		return "fill"
	case KindRemoval:
		return "removal"
	}
	return "unknown"
}

// StageFunc transforms the table. It must not mutate its input.
type StageFunc func(ctx context.Context, t parcel.Table, env *Env) (parcel.Table, error)

// Stage is one named step of the run.
type Stage struct {
	Name string
	Kind Kind
	Run  StageFunc
}

func pure(fn func(parcel.Table, *Env) parcel.Table) StageFunc {
	return func(_ context.Context, t parcel.Table, env *Env) (parcel.Table, error) {
		return fn(t, env), nil
	}
}

// Stages returns the fixed stage order. Each stage may read only columns
// populated by the stages before it.
func Stages() []Stage {
	return []Stage{
		{"deduplicate", KindLoad, func(_ context.Context, _ parcel.Table, env *Env) (parcel.Table, error) {
			return enrich.Deduplicate(env.Sources.Registry)
		}},
		{"fill_addresses", KindFill, pure(func(t parcel.Table, env *Env) parcel.Table {
			return enrich.FillAddresses(t, env.Sources.LandUse)
		})},
		// A left join that also drops inactive parcels without model data.
		{"merge_model", KindRemoval, pure(func(t parcel.Table, env *Env) parcel.Table {
			return enrich.MergeModel(t, env.Sources.Model, env.Sources.Registry)
		})},
		{"remove_public", KindRemoval, pure(func(t parcel.Table, env *Env) parcel.Table {
			return enrich.RemovePublic(t, env.Public)
		})},
		{"fill_area", KindFill, func(_ context.Context, t parcel.Table, env *Env) (parcel.Table, error) {
			return enrich.FillArea(t, env.AreaProj)
		}},
		{"remove_excluded_district", KindRemoval, pure(func(t parcel.Table, _ *Env) parcel.Table {
			return enrich.RemoveExcludedDistrict(t)
		})},
		{"fill_districts", KindFill, pure(func(t parcel.Table, _ *Env) parcel.Table {
			return enrich.FillDistricts(t)
		})},
		{"fill_res_dummy", KindFill, pure(func(t parcel.Table, env *Env) parcel.Table {
			return enrich.FillResDummy(t, env.Sources.LandUse)
		})},
		{"fill_building_sqft", KindFill, pure(func(t parcel.Table, env *Env) parcel.Table {
			return enrich.FillBuildingSqFt(t, env.Sources.LandUse)
		})},
		{"join_zoning", KindFill, func(ctx context.Context, t parcel.Table, env *Env) (parcel.Table, error) {
			out, stats, err := env.Joiner.FillPlanningCode(ctx, t, env.Sources.Zoning)
			env.recordJoin(stats)
			return out, err
		}},
		{"fill_zoning_categories", KindFill, pure(func(t parcel.Table, _ *Env) parcel.Table {
			return enrich.FillZoningCategories(t)
		})},
		{"join_height", KindFill, func(ctx context.Context, t parcel.Table, env *Env) (parcel.Table, error) {
			out, stats, err := env.Joiner.FillHeight(ctx, t, env.Sources.Height)
			env.recordJoin(stats)
			return out, err
		}},
		{"remove_open_space", KindRemoval, pure(func(t parcel.Table, env *Env) parcel.Table {
			return enrich.RemoveOpenSpace(t, env.Public)
		})},
		{"remove_non_housing", KindRemoval, pure(func(t parcel.Table, env *Env) parcel.Table {
			return enrich.RemoveNonHousing(t, env.Public)
		})},
		{"remove_shipyard", KindRemoval, pure(func(t parcel.Table, _ *Env) parcel.Table {
			return enrich.RemoveShipyard(t)
		})},
		{"fill_envelope", KindFill, pure(func(t parcel.Table, _ *Env) parcel.Table {
			return enrich.FillEnvelope(t)
		})},
		{"fill_sdb", KindFill, pure(func(t parcel.Table, _ *Env) parcel.Table {
			return enrich.FillSDB(t)
		})},
		{"join_historic", KindFill, func(ctx context.Context, t parcel.Table, env *Env) (parcel.Table, error) {
			out, stats, err := env.Joiner.MarkHistoricDistricts(ctx, t, env.Sources.Historic)
			env.recordJoin(stats)
			return out, err
		}},
		{"fill_historic", KindFill, pure(func(t parcel.Table, _ *Env) parcel.Table {
			return enrich.FillHistoric(t)
		})},
		{"expected_units", KindFill, expectedUnits},
		{"transit_distance", KindFill, func(ctx context.Context, t parcel.Table, env *Env) (parcel.Table, error) {
			return transit.Fill(ctx, t, env.Transit, env.Locator, env.Workers)
		}},
		{"write_outputs", KindFill, writeOutputs},
		{"export", KindFill, exportTable},
	}
}

func expectedUnits(ctx context.Context, t parcel.Table, env *Env) (parcel.Table, error) {
	out, totals, err := units.Apply(ctx, t, env.Workers)
	if err != nil {
		return parcel.Table{}, err
	}
	env.Totals = totals
	env.Metrics.SetExpectedUnits(totals.Low, totals.High)

	env.Uncalculable = Uncalculable(out)
	for hood, n := range env.Uncalculable {
		zap.L().Info("pipeline: uncalculable parcels",
			zap.String("neighborhood", hood),
			zap.Int("count", n),
		)
	}
	zap.L().Info("pipeline: expected units",
		zap.Float64("low", totals.Low),
		zap.Float64("high", totals.High),
	)
	return out, nil
}

func writeOutputs(_ context.Context, t parcel.Table, env *Env) (parcel.Table, error) {
	cfg := env.Config
	if err := output.WriteGeometry(cfg.Output(cfg.Outputs.Geometry), t); err != nil {
		return parcel.Table{}, err
	}
	if err := output.WriteOverlay(cfg.Output(cfg.Outputs.Overlay), t); err != nil {
		return parcel.Table{}, err
	}
	if err := output.WriteModel(cfg.Output(cfg.Outputs.Model), t); err != nil {
		return parcel.Table{}, err
	}
	if cfg.Outputs.XLSX != "" {
		if err := output.WriteWorkbook(cfg.Output(cfg.Outputs.XLSX), t); err != nil {
			return parcel.Table{}, err
		}
	}

	n, err := output.FlushPublic(cfg.Input(cfg.Inputs.Public), env.Public.Added(), env.Sources.Registry)
	if err != nil {
		return parcel.Table{}, err
	}
	env.PublicAdded = n
	return t, nil
}

func exportTable(ctx context.Context, t parcel.Table, env *Env) (parcel.Table, error) {
	if env.Exporter == nil {
		return t, nil
	}
	n, err := env.Exporter.Export(ctx, t)
	if err != nil {
		return parcel.Table{}, err
	}
	env.Exported = n
	return t, nil
}
