package pipeline

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sfhousing/parcel-enrich/internal/config"
	"github.com/sfhousing/parcel-enrich/internal/crs"
	"github.com/sfhousing/parcel-enrich/internal/enrich"
	"github.com/sfhousing/parcel-enrich/internal/metrics"
	"github.com/sfhousing/parcel-enrich/internal/parcel"
	"github.com/sfhousing/parcel-enrich/internal/spatial"
	"github.com/sfhousing/parcel-enrich/internal/transit"
	"github.com/sfhousing/parcel-enrich/internal/units"
)

// Exporter receives the final table, for example to load it into a
// database.
type Exporter interface {
	Export(ctx context.Context, t parcel.Table) (int64, error)
}

// Env is the state shared by the stages of one run.
type Env struct {
	Config   *config.Config
	Sources  *Sources
	AreaProj crs.Projection
	Locator  *spatial.Locator
	Joiner   enrich.Joiner
	Transit  transit.Index
	Public   *enrich.PublicAccumulator
	Metrics  *metrics.Recorder
	Exporter Exporter
	Workers  int

	// Filled in as stages run.
	Joins        []enrich.JoinStats
	Totals       units.Totals
	Uncalculable map[string]int
	PublicAdded  int
	Exported     int64
}

// NewEnv prepares the projections, indexes and accumulator for a run over
// src.
func NewEnv(cfg *config.Config, src *Sources, rec *metrics.Recorder) (*Env, error) {
	areaProj, err := crs.ByEPSG(cfg.Projection.AreaEPSG)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: area projection")
	}
	centroidProj, err := crs.ByEPSG(cfg.Projection.CentroidEPSG)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: centroid projection")
	}
	idx, err := transit.NewIndex(cfg.Pipeline.TransitIndex, src.Stops)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: transit index")
	}
	if rec == nil {
		rec = metrics.New()
	}

	loc := spatial.NewLocator(centroidProj)
	return &Env{
		Config:   cfg,
		Sources:  src,
		AreaProj: areaProj,
		Locator:  loc,
		Joiner:   enrich.Joiner{Locator: loc, Workers: cfg.Pipeline.Workers},
		Transit:  idx,
		Public:   enrich.NewPublicAccumulator(src.Public),
		Metrics:  rec,
		Workers:  cfg.Pipeline.Workers,
	}, nil
}

func (e *Env) recordJoin(stats enrich.JoinStats) {
	e.Joins = append(e.Joins, stats)
	e.Metrics.ObserveJoin(stats.Layer, stats.Unresolved())
}
