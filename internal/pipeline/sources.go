package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sfhousing/parcel-enrich/internal/config"
	"github.com/sfhousing/parcel-enrich/internal/source"
	"github.com/sfhousing/parcel-enrich/internal/spatial"
)

// Sources holds every input dataset of a run, loaded once up front.
type Sources struct {
	Registry []source.RawParcel
	Model    []source.ModelRow
	Public   []string
	LandUse  source.LandUseIndex
	Zoning   *spatial.Layer
	Height   *spatial.Layer
	Historic *spatial.Layer
	Stops    []spatial.Point
}

// LoadSources reads all inputs concurrently. Any missing or malformed input
// fails the load.
func LoadSources(ctx context.Context, cfg *config.Config) (*Sources, error) {
	in := cfg.Inputs
	src := &Sources{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		src.Registry, err = source.LoadRegistry(gctx, cfg.Input(in.Parcels))
		return err
	})
	g.Go(func() error {
		var err error
		src.Model, err = source.LoadModel(gctx, cfg.Input(in.Model))
		return err
	})
	g.Go(func() error {
		fc, err := source.ReadFeatureCollection(cfg.Input(in.Public))
		if err != nil {
			return err
		}
		src.Public = source.FeatureIDs(fc)
		return nil
	})
	g.Go(func() error {
		var err error
		src.LandUse, err = source.LoadLandUse(cfg.Input(in.LandUse))
		return err
	})
	g.Go(func() error {
		var err error
		src.Zoning, err = source.LoadLayer(gctx, "zoning", cfg.Input(in.Zoning), source.ZoningField, in.GeomField)
		return err
	})
	g.Go(func() error {
		var err error
		src.Height, err = source.LoadLayer(gctx, "height", cfg.Input(in.Height), source.HeightField, in.GeomField)
		return err
	})
	g.Go(func() error {
		var err error
		src.Historic, err = source.LoadLayer(gctx, "historic", cfg.Input(in.Historic), source.HistoricField, in.GeomField)
		return err
	})
	g.Go(func() error {
		if len(in.Transit) == 0 {
			return eris.New("pipeline: no transit stop inputs configured")
		}
		paths := make([]string, len(in.Transit))
		for i, p := range in.Transit {
			paths[i] = cfg.Input(p)
		}
		var err error
		src.Stops, err = source.LoadStops(paths...)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "pipeline: load sources")
	}

	zap.L().Info("pipeline: sources loaded",
		zap.Int("registry_rows", len(src.Registry)),
		zap.Int("model_rows", len(src.Model)),
		zap.Int("public_parcels", len(src.Public)),
		zap.Int("land_use_rows", len(src.LandUse)),
		zap.Int("zoning_polygons", src.Zoning.Len()),
		zap.Int("height_polygons", src.Height.Len()),
		zap.Int("historic_polygons", src.Historic.Len()),
		zap.Int("transit_stops", len(src.Stops)),
	)
	return src, nil
}
