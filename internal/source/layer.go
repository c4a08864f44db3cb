package source

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sfhousing/parcel-enrich/internal/spatial"
)

// Reference layer attribute names.
const (
	ZoningField   = "zoning"
	HeightField   = "gen_hght"
	HistoricField = "name"
)

// LoadLayer reads a polygon reference layer and indexes it. The format is
// chosen by extension: .shp, .geojson/.json, otherwise CSV with a WKT
// geometry column named geomField.
func LoadLayer(ctx context.Context, name, path, valueField, geomField string) (*spatial.Layer, error) {
	var (
		features []spatial.Feature
		err      error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		features, err = readShapefileLayer(path, valueField)
	case ".geojson", ".json":
		features, err = readGeoJSONLayer(path, valueField)
	default:
		features, err = readCSVLayer(ctx, path, valueField, geomField)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "source: load %s layer", name)
	}
	return spatial.NewLayer(name, features), nil
}

func readCSVLayer(ctx context.Context, path, valueField, geomField string) ([]spatial.Feature, error) {
	var features []spatial.Feature
	row := 0
	err := ReadRecords(ctx, path, func(rec Record) error {
		row++
		g, err := spatial.ParseWKT(rec.Get(geomField))
		if err != nil {
			return eris.Wrapf(err, "source: %s row %d", path, row)
		}
		features = append(features, spatial.Feature{Geom: g, Value: rec.Get(valueField)})
		return nil
	}, valueField, geomField)
	if err != nil {
		return nil, err
	}
	return features, nil
}
