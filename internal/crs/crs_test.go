package crs

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
	"github.com/wroge/wgs84"
)

func TestByEPSG(t *testing.T) {
	p, err := ByEPSG(CAStatePlaneIII)
	require.NoError(t, err)
	assert.Equal(t, 2227, p.EPSG())

	p, err = ByEPSG(WebMercator)
	require.NoError(t, err)
	assert.Equal(t, 3857, p.EPSG())

	_, err = ByEPSG(32610)
	assert.Error(t, err)
}

func TestCAZoneIII_Origin(t *testing.T) {
	// The projection origin maps to the false easting/northing in US feet.
	x, y := caZoneIII.Forward(-120.5, 36.5)
	assert.InDelta(t, 6561666.667, x, 0.01)
	assert.InDelta(t, 1640416.667, y, 0.01)
}

func TestCAZoneIII_CityHall(t *testing.T) {
	x, y := caZoneIII.Forward(-122.4193, 37.7793)
	assert.InDelta(t, 6007018.85, x, 0.5)
	assert.InDelta(t, 2111910.39, y, 0.5)
}

func TestCAZoneIII_FeetMatchMeters(t *testing.T) {
	// Output is the library's metric state plane scaled to US survey feet.
	x, y := caZoneIII.Forward(-122.4193, 37.7793)
	e, n, _ := wgs84.To(caZoneIII.sys)(-122.4193, 37.7793, 0)
	assert.InDelta(t, e, x*usSurveyFoot, 0.01)
	assert.InDelta(t, n, y*usSurveyFoot, 0.01)
}

func TestWebMercator_KnownPoint(t *testing.T) {
	x, y := webMercator.Forward(180, 0)
	assert.InDelta(t, 20037508.34, x, 0.01)
	assert.InDelta(t, 0, y, 1e-6)
}

func TestRoundTrip(t *testing.T) {
	points := [][2]float64{
		{-122.4193, 37.7793},
		{-122.5107, 37.7694},
		{-122.3585, 37.7290},
		{-120.5, 36.5},
	}
	for _, code := range []int{CAStatePlaneIII, WebMercator} {
		p, err := ByEPSG(code)
		require.NoError(t, err)
		for _, pt := range points {
			x, y := p.Forward(pt[0], pt[1])
			lon, lat := p.Inverse(x, y)
			assert.InDelta(t, pt[0], lon, 1e-9, "EPSG:%d lon", code)
			assert.InDelta(t, pt[1], lat, 1e-9, "EPSG:%d lat", code)
		}
	}
}

func TestProject_SquareArea(t *testing.T) {
	square := geom.NewPolygonFlat(geom.XY, []float64{
		-122.42, 37.77,
		-122.419, 37.77,
		-122.419, 37.771,
		-122.42, 37.771,
		-122.42, 37.77,
	}, []int{10})

	projected, err := Project(square, caZoneIII)
	require.NoError(t, err)

	area := projected.(*geom.Polygon).Area()
	assert.InDelta(t, 105245.13, area, 1.0)

	// Input untouched.
	assert.Equal(t, -122.42, square.FlatCoords()[0])
}

func TestProject_Unsupported(t *testing.T) {
	_, err := Project(nil, caZoneIII)
	assert.Error(t, err)

	_, err = Project(geom.NewGeometryCollection(), caZoneIII)
	assert.Error(t, err)
}

func TestUnproject_Point(t *testing.T) {
	pt := geom.NewPointFlat(geom.XY, []float64{6007018.85, 2111910.39})
	g, err := Unproject(pt, caZoneIII)
	require.NoError(t, err)

	c := g.(*geom.Point).Coords()
	assert.InDelta(t, -122.4193, c.X(), 1e-6)
	assert.InDelta(t, 37.7793, c.Y(), 1e-6)
	assert.False(t, math.IsNaN(c.X()))
}
