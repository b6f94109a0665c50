package layers

import (
	"slices"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geolayers/internal/mapsurface"
)

func collection(gs ...orb.Geometry) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, g := range gs {
		fc.Append(geojson.NewFeature(g))
	}
	return fc
}

func TestDominantClass(t *testing.T) {
	poly := orb.Polygon{{{0, 0}, {1, 0}, {1, 1}, {0, 0}}}
	line := orb.LineString{{0, 0}, {1, 1}}
	pt := orb.Point{0, 0}

	assert.Equal(t, Polygon, DominantClass(collection(poly, poly, line)))
	assert.Equal(t, Line, DominantClass(collection(line, line, pt)))
	assert.Equal(t, Point, DominantClass(collection(pt)))
	assert.Equal(t, Point, DominantClass(collection()))
	assert.Equal(t, Point, DominantClass(nil))
	assert.Equal(t, Polygon, DominantClass(collection(orb.MultiPolygon{poly})))
	assert.Equal(t, Line, DominantClass(collection(pt, orb.MultiLineString{line})), "ties go to the later type")
	assert.Equal(t, Point, DominantClass(collection(orb.MultiPoint{pt}, orb.MultiPoint{pt}, line)))
}

// stage adds a source and the given sub-layers to the canvas.
func stage(t *testing.T, c *mapsurface.Canvas, sourceID string, layerIDs ...string) {
	t.Helper()
	if _, ok := c.GetSource(sourceID); !ok {
		require.NoError(t, c.AddSource(sourceID, collection(orb.Point{1, 1})))
	}
	for _, id := range layerIDs {
		require.NoError(t, c.AddLayer(mapsurface.Layer{
			ID: id, Kind: mapsurface.Circle, Source: sourceID,
			Layout: map[string]any{mapsurface.Visibility: mapsurface.Visible},
		}))
	}
}

func TestRemoveCleansSurface(t *testing.T) {
	c := mapsurface.NewCanvas()
	reg := NewRegistry(c)
	stage(t, c, "source-roads", "layer-roads-line")
	c.On(mapsurface.Click, "layer-roads-line", func(mapsurface.Event) {})
	reg.Add("source-roads", "layer-roads", "roads", Line, "#123456")

	require.True(t, reg.Remove("layer-roads"))
	assert.Empty(t, c.Layers())
	assert.Empty(t, c.Sources())
	assert.Zero(t, c.HandlerCount(mapsurface.Click, "layer-roads-line"))
	assert.Zero(t, reg.Len())

	assert.False(t, reg.Remove("layer-roads"), "second removal is a no-op")
}

func TestRemoveBareLegacyID(t *testing.T) {
	c := mapsurface.NewCanvas()
	reg := NewRegistry(c)
	stage(t, c, "s", "legacy")
	reg.Add("s", "legacy", "legacy", Point, "#000000")

	require.True(t, reg.Remove("legacy"))
	assert.Empty(t, c.Layers())
	assert.Empty(t, c.Sources())
}

func TestRemoveAtTopLevel(t *testing.T) {
	c := mapsurface.NewCanvas()
	reg := NewRegistry(c)
	for _, n := range []string{"a", "b", "c"} {
		stage(t, c, "source-"+n, "layer-"+n+"-point")
		reg.Add("source-"+n, "layer-"+n, n, Point, "#ffffff")
	}
	stage(t, c, "source-b", "layer-b-outline-line")
	reg.AddChild("layer-b", "source-b", "layer-b-outline", "b outline", Line, "#ffffff")

	assert.False(t, reg.RemoveAt(3))
	require.True(t, reg.RemoveAt(1))

	var names []string
	for rec := range reg.All() {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"a", "c"}, names, "children go with their parent")
	assert.Equal(t, []string{"layer-a-point", "layer-c-point"}, c.Layers())
	assert.Equal(t, []string{"source-a", "source-c"}, c.Sources())
}

func TestVisibilityCascade(t *testing.T) {
	c := mapsurface.NewCanvas()
	reg := NewRegistry(c)
	stage(t, c, "source-p", "layer-p-fill", "layer-p-line")
	stage(t, c, "source-o", "layer-o-line")
	reg.Add("source-p", "layer-p", "parent", Polygon, "#aa0000")
	reg.AddChild("layer-p", "source-o", "layer-o", "outline", Line, "#aa0000")

	require.True(t, reg.SetVisible("layer-p", false))
	for rec := range reg.All() {
		assert.False(t, rec.Visible, rec.LayerID)
		assert.Equal(t, "#aa0000", rec.Color)
	}
	for _, id := range []string{"layer-p-fill", "layer-p-line", "layer-o-line"} {
		l, ok := c.GetLayer(id)
		require.True(t, ok)
		assert.False(t, l.Visible(), id)
	}

	require.True(t, reg.SetVisible("layer-p", true))
	l, _ := c.GetLayer("layer-o-line")
	assert.True(t, l.Visible())

	assert.False(t, reg.SetVisible("nope", true))
}

func TestListingIsLazyAndRestartable(t *testing.T) {
	reg := NewRegistry(mapsurface.NewCanvas())
	seq := reg.TopLevel()
	assert.Empty(t, slices.Collect(seq))

	reg.Add("s1", "l1", "one", Point, "#000000")
	reg.AddChild("l1", "s1", "l1c", "child", Point, "#000000")
	reg.Add("s2", "l2", "two", Point, "#000000")

	got := slices.Collect(seq)
	require.Len(t, got, 2)
	assert.Equal(t, "one", got[0].Name)
	assert.Equal(t, "two", got[1].Name)
	assert.Len(t, slices.Collect(reg.All()), 3)

	rec, ok := reg.At(1)
	require.True(t, ok)
	assert.Equal(t, "l2", rec.LayerID)
}

func TestAddReplacesSameLayerID(t *testing.T) {
	reg := NewRegistry(mapsurface.NewCanvas())
	reg.Add("s", "l", "first", Point, "#000000")
	reg.Add("s", "l", "second", Line, "#111111")
	assert.Equal(t, 1, reg.Len())
	rec, ok := reg.Get("l")
	require.True(t, ok)
	assert.Equal(t, "second", rec.Name)
}
