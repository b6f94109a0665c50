package mapsurface

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// FeaturesAt returns the features of a visible layer under cell (x, y).
// Fill layers match by containment, line and circle layers by distance
// within one cell.
func (c *Canvas) FeaturesAt(layerID string, x, y int) []*geojson.Feature {
	l, ok := c.GetLayer(layerID)
	if !ok || !l.Visible() {
		return nil
	}
	src, ok := c.sources[l.Source]
	if !ok || src.Data == nil {
		return nil
	}
	p := c.Unproject(float64(x), float64(y))
	tol := c.cellSpan(x, y)

	var hits []*geojson.Feature
	for _, f := range src.Data.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		if hit(l.Kind, f.Geometry, p, tol) {
			hits = append(hits, f)
		}
	}
	return hits
}

// cellSpan is the larger of one cell's width and height in degrees.
func (c *Canvas) cellSpan(x, y int) float64 {
	a := c.Unproject(float64(x), float64(y))
	b := c.Unproject(float64(x+1), float64(y+1))
	return math.Max(math.Abs(b[0]-a[0]), math.Abs(b[1]-a[1]))
}

func hit(k Kind, g orb.Geometry, p orb.Point, tol float64) bool {
	switch k {
	case Fill:
		switch g := g.(type) {
		case orb.Polygon:
			return planar.PolygonContains(g, p)
		case orb.MultiPolygon:
			return planar.MultiPolygonContains(g, p)
		}
	case Line:
		switch g.(type) {
		case orb.LineString, orb.MultiLineString:
			return planar.DistanceFrom(g, p) <= tol
		case orb.Polygon, orb.MultiPolygon:
			return planar.DistanceFrom(boundary(g), p) <= tol
		}
	case Circle:
		switch g.(type) {
		case orb.Point, orb.MultiPoint:
			return planar.DistanceFrom(g, p) <= tol
		}
	}
	return false
}

// boundary returns polygon rings as lines so distance is measured to the
// outline rather than the interior.
func boundary(g orb.Geometry) orb.MultiLineString {
	var mls orb.MultiLineString
	add := func(p orb.Polygon) {
		for _, r := range p {
			mls = append(mls, orb.LineString(r))
		}
	}
	switch g := g.(type) {
	case orb.Polygon:
		add(g)
	case orb.MultiPolygon:
		for _, p := range g {
			add(p)
		}
	}
	return mls
}

// Click dispatches a click event to every layer, top-most first, that has
// click handlers and features under the cell. It reports whether any
// handler ran.
func (c *Canvas) Click(x, y int) bool {
	fired := false
	ll := c.Unproject(float64(x), float64(y))
	for i := len(c.layers) - 1; i >= 0; i-- {
		id := c.layers[i].ID
		if c.HandlerCount(Click, id) == 0 {
			continue
		}
		feats := c.FeaturesAt(id, x, y)
		if len(feats) == 0 {
			continue
		}
		c.emit(Event{Type: Click, LayerID: id, LngLat: ll, X: x, Y: y, Features: feats})
		fired = true
	}
	return fired
}

// Hover tracks which layers are under the pointer and dispatches
// mouseenter/mouseleave on transitions.
func (c *Canvas) Hover(x, y int) {
	ll := c.Unproject(float64(x), float64(y))
	ids := make([]string, 0, len(c.layers))
	for i := len(c.layers) - 1; i >= 0; i-- {
		ids = append(ids, c.layers[i].ID)
	}
	for _, id := range ids {
		feats := c.FeaturesAt(id, x, y)
		switch {
		case len(feats) > 0 && !c.hovered[id]:
			c.hovered[id] = true
			c.emit(Event{Type: MouseEnter, LayerID: id, LngLat: ll, X: x, Y: y, Features: feats})
		case len(feats) == 0 && c.hovered[id]:
			delete(c.hovered, id)
			c.emit(Event{Type: MouseLeave, LayerID: id, LngLat: ll, X: x, Y: y})
		}
	}
}
