// Package spatial provides the geometry primitives behind the fill stages:
// WKT parsing, projected area, representative points and an R-tree backed
// point-in-polygon lookup over reference layers.
package spatial

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
	"github.com/twpayne/go-geom/xy"

	"github.com/sfhousing/parcel-enrich/internal/crs"
)

// ParseWKT parses a polygonal WKT string. Empty input yields a nil geometry
// and no error; anything other than a Polygon or MultiPolygon is rejected.
func ParseWKT(s string) (geom.T, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, eris.Wrap(err, "spatial: parse wkt")
	}
	switch g.(type) {
	case *geom.Polygon, *geom.MultiPolygon:
		return g, nil
	default:
		return nil, eris.Errorf("spatial: expected polygonal geometry, got %T", g)
	}
}

// Polygons flattens g into its member polygons.
func Polygons(g geom.T) []*geom.Polygon {
	switch t := g.(type) {
	case *geom.Polygon:
		return []*geom.Polygon{t}
	case *geom.MultiPolygon:
		out := make([]*geom.Polygon, 0, t.NumPolygons())
		for i := 0; i < t.NumPolygons(); i++ {
			out = append(out, t.Polygon(i))
		}
		return out
	default:
		return nil
	}
}

// Area returns the planar area of g after projecting it with p, in the
// projection's squared units.
func Area(g geom.T, p crs.Projection) (float64, error) {
	projected, err := crs.Project(g, p)
	if err != nil {
		return 0, eris.Wrap(err, "spatial: project for area")
	}
	switch t := projected.(type) {
	case *geom.Polygon:
		return t.Area(), nil
	case *geom.MultiPolygon:
		return t.Area(), nil
	default:
		return 0, eris.Errorf("spatial: area of %T", projected)
	}
}

// Point is a lon/lat position in degrees.
type Point struct {
	Lon, Lat float64
}

// Centroid returns the centroid of g computed in the planar system p and
// converted back to lon/lat. ok is false for empty or degenerate geometry.
func Centroid(g geom.T, p crs.Projection) (pt Point, ok bool, err error) {
	if g == nil || len(g.FlatCoords()) == 0 {
		return Point{}, false, nil
	}
	projected, err := crs.Project(g, p)
	if err != nil {
		return Point{}, false, eris.Wrap(err, "spatial: project for centroid")
	}
	c, err := xy.Centroid(projected)
	if err != nil {
		return Point{}, false, eris.Wrap(err, "spatial: centroid")
	}
	if len(c) < 2 || math.IsNaN(c[0]) || math.IsNaN(c[1]) || math.IsInf(c[0], 0) || math.IsInf(c[1], 0) {
		return Point{}, false, nil
	}
	lon, lat := p.Inverse(c[0], c[1])
	return Point{Lon: lon, Lat: lat}, true, nil
}

// containsPoint reports whether (x, y) lies inside poly: within the outer
// ring and outside every hole.
func containsPoint(poly *geom.Polygon, x, y float64) bool {
	if poly.NumLinearRings() == 0 {
		return false
	}
	c := geom.Coord{x, y}
	if !xy.IsPointInRing(poly.Layout(), c, poly.LinearRing(0).FlatCoords()) {
		return false
	}
	for i := 1; i < poly.NumLinearRings(); i++ {
		if xy.IsPointInRing(poly.Layout(), c, poly.LinearRing(i).FlatCoords()) {
			return false
		}
	}
	return true
}
