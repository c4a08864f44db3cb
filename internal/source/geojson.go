package source

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sfhousing/parcel-enrich/internal/spatial"
)

// ReadFeatureCollection decodes a GeoJSON FeatureCollection file.
func ReadFeatureCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "source: read %s", path)
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrapf(err, "source: decode geojson %s", path)
	}
	return &fc, nil
}

// Property returns a feature property rendered as a string. Absent and null
// properties are "".
func Property(f *geojson.Feature, key string) string {
	if f == nil || f.Properties == nil {
		return ""
	}
	switch v := f.Properties[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// readGeoJSONLayer reads polygon features whose valueField property becomes
// the feature value.
func readGeoJSONLayer(path, valueField string) ([]spatial.Feature, error) {
	fc, err := ReadFeatureCollection(path)
	if err != nil {
		return nil, err
	}
	features := make([]spatial.Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		var g geom.T
		switch f.Geometry.(type) {
		case *geom.Polygon, *geom.MultiPolygon:
			g = f.Geometry
		case nil:
		default:
			return nil, eris.Errorf("source: %s: expected polygonal geometry, got %T", path, f.Geometry)
		}
		features = append(features, spatial.Feature{Geom: g, Value: Property(f, valueField)})
	}
	return features, nil
}

// LoadStops reads transit stop locations from one or more GeoJSON files. The
// first coordinate of each feature is its location; features without
// geometry are skipped.
func LoadStops(paths ...string) ([]spatial.Point, error) {
	var stops []spatial.Point
	for _, path := range paths {
		fc, err := ReadFeatureCollection(path)
		if err != nil {
			return nil, err
		}
		for _, f := range fc.Features {
			if f.Geometry == nil {
				continue
			}
			flat := f.Geometry.FlatCoords()
			if len(flat) < 2 {
				continue
			}
			stops = append(stops, spatial.Point{Lon: flat[0], Lat: flat[1]})
		}
	}
	return stops, nil
}

// FeatureIDs returns the mapblklot property of every feature, in order.
func FeatureIDs(fc *geojson.FeatureCollection) []string {
	ids := make([]string, 0, len(fc.Features))
	for _, f := range fc.Features {
		ids = append(ids, Property(f, ColMapBlkLot))
	}
	return ids
}
