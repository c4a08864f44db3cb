// Package transit computes the great-circle distance from each parcel to the
// nearest transit stop.
package transit

import (
	"context"
	"math"

	"github.com/golang/geo/s2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sfhousing/parcel-enrich/internal/parcel"
	"github.com/sfhousing/parcel-enrich/internal/spatial"
)

// EarthRadiusMiles is the mean earth radius used for distances.
const EarthRadiusMiles = 3958.8

const feetPerMile = 5280

// Index kinds accepted by NewIndex.
const (
	KindS2   = "s2"
	KindScan = "scan"
)

// HaversineFeet returns the great-circle distance in feet between two
// lon/lat points.
func HaversineFeet(a, b spatial.Point) float64 {
	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLat := radians(b.Lat - a.Lat)
	dLon := radians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMiles * c * feetPerMile
}

func radians(d float64) float64 { return d * math.Pi / 180 }

// Index finds the distance to the nearest stop. ok is false when the index
// holds no stops.
type Index interface {
	Nearest(p spatial.Point) (feet float64, ok bool)
}

// NewIndex builds the index named by kind over stops.
func NewIndex(kind string, stops []spatial.Point) (Index, error) {
	switch kind {
	case KindS2, "":
		return NewS2Index(stops), nil
	case KindScan:
		return ScanIndex(stops), nil
	default:
		return nil, eris.Errorf("transit: unknown index %q", kind)
	}
}

// ScanIndex compares against every stop.
type ScanIndex []spatial.Point

// Nearest implements Index.
func (s ScanIndex) Nearest(p spatial.Point) (float64, bool) {
	if len(s) == 0 {
		return 0, false
	}
	best := math.Inf(1)
	for _, stop := range s {
		if d := HaversineFeet(p, stop); d < best {
			best = d
		}
	}
	return best, true
}

// S2Index finds the nearest stop with a closest-edge query over an s2 shape
// index. The reported distance is recomputed with HaversineFeet so both
// indexes agree.
type S2Index struct {
	stops []spatial.Point
	index *s2.ShapeIndex
	opts  *s2.EdgeQueryOptions
}

// NewS2Index indexes stops.
func NewS2Index(stops []spatial.Point) *S2Index {
	pv := make(s2.PointVector, len(stops))
	for i, s := range stops {
		pv[i] = s2.PointFromLatLng(s2.LatLngFromDegrees(s.Lat, s.Lon))
	}
	index := s2.NewShapeIndex()
	if len(pv) > 0 {
		index.Add(&pv)
	}
	return &S2Index{
		stops: stops,
		index: index,
		opts:  s2.NewClosestEdgeQueryOptions().MaxResults(1),
	}
}

// Nearest implements Index. Safe for concurrent use: each call builds its own
// query.
func (x *S2Index) Nearest(p spatial.Point) (float64, bool) {
	if len(x.stops) == 0 {
		return 0, false
	}
	q := s2.NewClosestEdgeQuery(x.index, x.opts)
	target := s2.NewMinDistanceToPointTarget(s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon)))
	res := q.FindEdges(target)
	if len(res) == 0 {
		return 0, false
	}
	id := int(res[0].EdgeID())
	if id < 0 || id >= len(x.stops) {
		return 0, false
	}
	return HaversineFeet(p, x.stops[id]), true
}

// Fill sets distance_to_transit on every parcel. A parcel without a
// resolvable representative point gets no distance.
func Fill(ctx context.Context, t parcel.Table, idx Index, loc *spatial.Locator, workers int) (parcel.Table, error) {
	rows := t.Rows()
	missing := make([]bool, len(rows))
	err := spatial.ForEachChunk(ctx, len(rows), workers, func(start, end int) error {
		for i := start; i < end; i++ {
			rows[i].DistanceToTransit = nil
			// Centroid taken in the planar CRS and returned as lon/lat degrees.
			pt, ok, err := loc.Locate(rows[i].Geom)
			if err != nil {
				return eris.Wrapf(err, "transit: locate %s", rows[i].MapBlkLot)
			}
			if !ok {
				missing[i] = true
				continue
			}
			if d, found := idx.Nearest(pt); found {
				rows[i].DistanceToTransit = parcel.Float(d)
			} else {
				missing[i] = true
			}
		}
		return nil
	})
	if err != nil {
		return parcel.Table{}, err
	}

	n := 0
	for _, m := range missing {
		if m {
			n++
		}
	}
	zap.L().Info("transit: distances computed",
		zap.Int("parcels", len(rows)),
		zap.Int("unresolved", n),
	)
	return parcel.NewTable(rows), nil
}
