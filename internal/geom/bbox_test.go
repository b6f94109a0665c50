package geom

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mixedCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{-3, 7}))
	fc.Append(geojson.NewFeature(orb.LineString{{0, 0}, {5, -2}}))
	fc.Append(geojson.NewFeature(orb.MultiPolygon{{{{1, 1}, {9, 1}, {9, 4}, {1, 1}}}}))
	return fc
}

func TestBoundsLibrary(t *testing.T) {
	b, ok := Bounds(mixedCollection())
	require.True(t, ok)
	assert.Equal(t, orb.Bound{Min: orb.Point{-3, -2}, Max: orb.Point{9, 7}}, b)
}

func TestBoundsFallback(t *testing.T) {
	failing := func(*geojson.FeatureCollection) orb.Bound { panic("bbox unavailable") }
	b, ok := BoundsWith(mixedCollection(), failing)
	require.True(t, ok)
	assert.Equal(t, [4]float64{-3, -2, 9, 7}, [4]float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]})
}

func TestBoundsEmpty(t *testing.T) {
	_, ok := Bounds(geojson.NewFeatureCollection())
	assert.False(t, ok)

	_, ok = Bounds(nil)
	assert.False(t, ok)

	_, ok = BoundsWith(geojson.NewFeatureCollection(), func(*geojson.FeatureCollection) orb.Bound { panic("x") })
	assert.False(t, ok)
}
