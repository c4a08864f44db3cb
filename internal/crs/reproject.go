package crs

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Project returns a copy of g with every coordinate passed through
// p.Forward. g itself is not modified.
func Project(g geom.T, p Projection) (geom.T, error) {
	return transform(g, p.Forward)
}

// Unproject returns a copy of g with every coordinate passed through
// p.Inverse.
func Unproject(g geom.T, p Projection) (geom.T, error) {
	return transform(g, p.Inverse)
}

func transform(g geom.T, fn func(a, b float64) (float64, float64)) (geom.T, error) {
	var out geom.T
	switch t := g.(type) {
	case *geom.Point:
		out = t.Clone()
	case *geom.MultiPoint:
		out = t.Clone()
	case *geom.LineString:
		out = t.Clone()
	case *geom.Polygon:
		out = t.Clone()
	case *geom.MultiPolygon:
		out = t.Clone()
	case nil:
		return nil, eris.New("crs: nil geometry")
	default:
		return nil, eris.Errorf("crs: unsupported geometry %T", g)
	}

	flat := out.FlatCoords()
	stride := out.Stride()
	for i := 0; i+1 < len(flat); i += stride {
		flat[i], flat[i+1] = fn(flat[i], flat[i+1])
	}
	return out, nil
}
