package spatial

import (
	"github.com/tidwall/rtree"
	"github.com/twpayne/go-geom"
)

// Feature is one polygon of a reference layer and the attribute it carries.
type Feature struct {
	Geom  geom.T
	Value string
}

// Layer is a polygon reference set indexed by bounding box. Lookups run a
// cheap R-tree search first and the exact ring test only on candidates.
type Layer struct {
	name     string
	features []Feature
	polys    [][]*geom.Polygon
	tree     rtree.RTreeG[int]
}

// NewLayer indexes features. Features with empty geometry are kept (so ids
// match load order) but never match.
func NewLayer(name string, features []Feature) *Layer {
	l := &Layer{
		name:     name,
		features: features,
		polys:    make([][]*geom.Polygon, len(features)),
	}
	for i, f := range features {
		if f.Geom == nil || len(f.Geom.FlatCoords()) == 0 {
			continue
		}
		l.polys[i] = Polygons(f.Geom)
		b := f.Geom.Bounds()
		l.tree.Insert([2]float64{b.Min(0), b.Min(1)}, [2]float64{b.Max(0), b.Max(1)}, i)
	}
	return l
}

// Name returns the layer name used in logs and metrics.
func (l *Layer) Name() string { return l.name }

// Len returns the number of features.
func (l *Layer) Len() int { return len(l.features) }

// Value returns the attribute of feature id.
func (l *Layer) Value(id int) string { return l.features[id].Value }

// Named returns a layer holding only the features with a non-empty value,
// so lookups skip unnamed polygons that overlap named ones.
func (l *Layer) Named() *Layer {
	named := make([]Feature, 0, len(l.features))
	for _, f := range l.features {
		if f.Value != "" {
			named = append(named, f)
		}
	}
	return NewLayer(l.name, named)
}

// FindContaining returns the id of the polygon containing (lon, lat). When
// polygons overlap, the one loaded first wins.
func (l *Layer) FindContaining(lon, lat float64) (int, bool) {
	best := -1
	pt := [2]float64{lon, lat}
	l.tree.Search(pt, pt, func(_, _ [2]float64, id int) bool {
		if best >= 0 && id > best {
			return true
		}
		for _, poly := range l.polys[id] {
			if containsPoint(poly, lon, lat) {
				best = id
				break
			}
		}
		return true
	})
	return best, best >= 0
}
