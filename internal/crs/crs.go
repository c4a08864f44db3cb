// Package crs implements the projected coordinate systems used internally for
// area and centroid computation. All input and output geometry is EPSG:4326
// (lon/lat degrees); projected coordinates never leave the process.
package crs

import (
	"github.com/rotisserie/eris"
	"github.com/wroge/wgs84"
)

// EPSG codes supported by ByEPSG.
const (
	WGS84           = 4326
	CAStatePlaneIII = 2227
	WebMercator     = 3857
)

// usSurveyFoot is one US survey foot in meters.
const usSurveyFoot = 1200.0 / 3937.0

// Projection converts between lon/lat degrees and a planar system.
type Projection interface {
	EPSG() int
	Forward(lon, lat float64) (x, y float64)
	Inverse(x, y float64) (lon, lat float64)
}

// ByEPSG returns the projection registered for code.
func ByEPSG(code int) (Projection, error) {
	switch code {
	case CAStatePlaneIII:
		return caZoneIII, nil
	case WebMercator:
		return webMercator, nil
	default:
		return nil, eris.Errorf("crs: unsupported projection EPSG:%d", code)
	}
}

// caZoneIII is NAD83 / California zone 3 (ftUS). False origin is given in
// meters; coordinates are reported in US survey feet.
var caZoneIII = &planar{
	epsg: CAStatePlaneIII,
	sys: wgs84.NAD83().LambertConformalConic2SP(
		-120.5, 36.5,
		38+26.0/60, 37+4.0/60,
		2000000.0001016, 500000.0001016001,
	),
	unit: usSurveyFoot,
}

// webMercator is EPSG:3857 on the WGS84 semi-major axis, in meters.
var webMercator = &planar{
	epsg: WebMercator,
	sys:  wgs84.WebMercator(),
	unit: 1,
}

// planar applies a projection on its own datum's ellipsoid. No datum shift
// is applied: NAD83 and WGS84 are treated as coincident at parcel scale.
type planar struct {
	epsg int
	sys  wgs84.ProjectedReferenceSystem
	unit float64 // meters per output unit
}

func (p *planar) EPSG() int { return p.epsg }

func (p *planar) Forward(lon, lat float64) (float64, float64) {
	x, y := p.sys.Projection.FromLonLat(lon, lat, p.sys.Datum)
	return x / p.unit, y / p.unit
}

func (p *planar) Inverse(x, y float64) (float64, float64) {
	return p.sys.Projection.ToLonLat(x*p.unit, y*p.unit, p.sys.Datum)
}
