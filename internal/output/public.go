package output

import (
	"github.com/twpayne/go-geom/encoding/geojson"
	"go.uber.org/zap"

	"github.com/sfhousing/parcel-enrich/internal/parcel"
	"github.com/sfhousing/parcel-enrich/internal/source"
)

// registryColumns are the overlay columns the registry can supply.
var registryColumns = []string{
	source.ColFromAddressNum,
	source.ColStreetName,
	source.ColStreetType,
	source.ColAnalysisNeighborhood,
	source.ColZoningCode,
	source.ColZoningDistrict,
	source.ColSupervisorDistrict,
	source.ColSupName,
}

// FlushPublic updates the public parcels artifact at path in one write:
// parcels in added that it lacks are appended, keeping only properties the
// artifact already carries, then every feature gets its registry overlay
// columns from the first registry row of its mapblklot. It returns the
// number of features appended.
func FlushPublic(path string, added []parcel.Parcel, raw []source.RawParcel) (int, error) {
	fc, err := source.ReadFeatureCollection(path)
	if err != nil {
		return 0, err
	}

	known := make(map[string]bool, len(fc.Features))
	keys := map[string]bool{source.ColMapBlkLot: true}
	for _, f := range fc.Features {
		known[source.Property(f, source.ColMapBlkLot)] = true
		for k := range f.Properties {
			keys[k] = true
		}
	}

	appended := 0
	for i := range added {
		p := &added[i]
		if known[p.MapBlkLot] {
			continue
		}
		known[p.MapBlkLot] = true
		props := make(map[string]interface{})
		for k, v := range parcelProperties(p) {
			if keys[k] {
				props[k] = v
			}
		}
		fc.Features = append(fc.Features, &geojson.Feature{Geometry: p.Geom, Properties: props})
		appended++
	}

	registry := make(map[string]*source.RawParcel, len(raw))
	for i := range raw {
		if _, ok := registry[raw[i].MapBlkLot]; !ok {
			registry[raw[i].MapBlkLot] = &raw[i]
		}
	}
	backfilled := 0
	for _, f := range fc.Features {
		r, ok := registry[source.Property(f, source.ColMapBlkLot)]
		if !ok {
			continue
		}
		if f.Properties == nil {
			f.Properties = make(map[string]interface{})
		}
		overlay := r.Overlay()
		for k, v := range parcelProperties(&overlay) {
			if k != source.ColMapBlkLot {
				f.Properties[k] = v
			}
		}
		backfilled++
	}

	if err := writeFeatureCollection(path, fc); err != nil {
		return 0, err
	}
	zap.L().Info("output: public parcels updated",
		zap.String("path", path),
		zap.Int("appended", appended),
		zap.Int("backfilled", backfilled),
		zap.Int("features", len(fc.Features)),
	)
	return appended, nil
}

// parcelProperties returns the registry overlay columns of p, with missing
// values as JSON null.
func parcelProperties(p *parcel.Parcel) map[string]interface{} {
	vals := []*string{
		p.FromAddressNum,
		p.StreetName,
		p.StreetType,
		p.AnalysisNeighborhood,
		p.ZoningCode,
		p.ZoningDistrict,
		p.SupervisorDistrict,
		p.SupName,
	}
	props := map[string]interface{}{source.ColMapBlkLot: p.MapBlkLot}
	for i, col := range registryColumns {
		if vals[i] == nil {
			props[col] = nil
		} else {
			props[col] = *vals[i]
		}
	}
	return props
}
