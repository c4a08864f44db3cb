package output

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sfhousing/parcel-enrich/internal/parcel"
	"github.com/sfhousing/parcel-enrich/internal/source"
)

// WriteGeometry writes one feature per parcel carrying only its mapblklot.
func WriteGeometry(path string, t parcel.Table) error {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, t.Len())}
	for i := 0; i < t.Len(); i++ {
		p := t.At(i)
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   p.Geom,
			Properties: map[string]interface{}{source.ColMapBlkLot: p.MapBlkLot},
		})
	}
	return writeFeatureCollection(path, fc)
}

func writeFeatureCollection(path string, fc *geojson.FeatureCollection) error {
	data, err := json.Marshal(fc)
	if err != nil {
		return eris.Wrapf(err, "output: encode %s", path)
	}
	return writeAtomic(path, func(f *os.File) error {
		_, err := f.Write(data)
		return eris.Wrapf(err, "output: write %s", path)
	})
}
