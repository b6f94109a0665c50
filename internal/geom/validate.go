package geom

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Validate keeps the candidates that satisfy the feature invariant, in input
// order. Bare geometries are wrapped into features with empty properties and
// features without properties get an empty mapping; nothing else is changed.
func Validate(cands []Candidate) []*geojson.Feature {
	out := make([]*geojson.Feature, 0, len(cands))
	for _, c := range cands {
		if f, ok := validFeature(c); ok {
			out = append(out, f)
		}
	}
	return out
}

func validFeature(c Candidate) (*geojson.Feature, bool) {
	var (
		raw   *RawGeometry
		props map[string]any
		id    any
	)
	switch c := c.(type) {
	case *FeatureCandidate:
		if c == nil {
			return nil, false
		}
		raw, props, id = c.Geometry, c.Properties, c.ID
	case *GeometryCandidate:
		if c == nil {
			return nil, false
		}
		raw = &c.Geometry
	default:
		return nil, false
	}
	if raw == nil || !geometryTypes[raw.Type] || raw.Coordinates == nil {
		return nil, false
	}
	g, ok := buildGeometry(raw)
	if !ok {
		return nil, false
	}
	f := geojson.NewFeature(g)
	f.ID = id
	if props != nil {
		f.Properties = props
	}
	return f, true
}

func buildGeometry(raw *RawGeometry) (orb.Geometry, bool) {
	if g, ok := raw.Coordinates.(orb.Geometry); ok {
		return g, g.GeoJSONType() == raw.Type && wellFormed(g)
	}
	switch raw.Type {
	case "Point":
		p, ok := position(raw.Coordinates)
		return p, ok
	case "MultiPoint":
		pts, ok := positions(raw.Coordinates)
		return orb.MultiPoint(pts), ok
	case "LineString":
		pts, ok := positions(raw.Coordinates)
		return orb.LineString(pts), ok
	case "MultiLineString":
		lines, ok := lineList(raw.Coordinates)
		if !ok {
			return nil, false
		}
		mls := make(orb.MultiLineString, len(lines))
		for i, l := range lines {
			mls[i] = orb.LineString(l)
		}
		return mls, true
	case "Polygon":
		rings, ok := lineList(raw.Coordinates)
		if !ok {
			return nil, false
		}
		return polygon(rings), true
	case "MultiPolygon":
		arr, ok := raw.Coordinates.([]any)
		if !ok || len(arr) == 0 {
			return nil, false
		}
		mp := make(orb.MultiPolygon, 0, len(arr))
		for _, el := range arr {
			rings, ok := lineList(el)
			if !ok {
				return nil, false
			}
			mp = append(mp, polygon(rings))
		}
		return mp, true
	}
	return nil, false
}

// position accepts an array of at least two values, all numeric.
func position(v any) (orb.Point, bool) {
	a, ok := v.([]any)
	if !ok || len(a) < 2 {
		return orb.Point{}, false
	}
	var xy [2]float64
	for i, el := range a {
		n, ok := number(el)
		if !ok {
			return orb.Point{}, false
		}
		if i < 2 {
			xy[i] = n
		}
	}
	return orb.Point(xy), true
}

func positions(v any) ([]orb.Point, bool) {
	a, ok := v.([]any)
	if !ok || len(a) == 0 {
		return nil, false
	}
	pts := make([]orb.Point, 0, len(a))
	for _, el := range a {
		p, ok := position(el)
		if !ok {
			return nil, false
		}
		pts = append(pts, p)
	}
	return pts, true
}

func lineList(v any) ([][]orb.Point, bool) {
	a, ok := v.([]any)
	if !ok || len(a) == 0 {
		return nil, false
	}
	out := make([][]orb.Point, 0, len(a))
	for _, el := range a {
		pts, ok := positions(el)
		if !ok {
			return nil, false
		}
		out = append(out, pts)
	}
	return out, true
}

func polygon(rings [][]orb.Point) orb.Polygon {
	p := make(orb.Polygon, len(rings))
	for i, r := range rings {
		p[i] = orb.Ring(r)
	}
	return p
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// wellFormed applies the nesting rules to geometries built by typed decoders.
func wellFormed(g orb.Geometry) bool {
	switch g := g.(type) {
	case orb.Point:
		return true
	case orb.MultiPoint:
		return len(g) > 0
	case orb.LineString:
		return len(g) > 0
	case orb.MultiLineString:
		if len(g) == 0 {
			return false
		}
		for _, l := range g {
			if len(l) == 0 {
				return false
			}
		}
		return true
	case orb.Polygon:
		return ringsOK(g)
	case orb.MultiPolygon:
		if len(g) == 0 {
			return false
		}
		for _, p := range g {
			if !ringsOK(p) {
				return false
			}
		}
		return true
	}
	return false
}

func ringsOK(p orb.Polygon) bool {
	if len(p) == 0 {
		return false
	}
	for _, r := range p {
		if len(r) == 0 {
			return false
		}
	}
	return true
}

// Sanitize re-checks an already built collection and returns the features
// that still satisfy the feature invariant, in order.
func Sanitize(fc *geojson.FeatureCollection) []*geojson.Feature {
	if fc == nil {
		return nil
	}
	out := make([]*geojson.Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil || !geometryTypes[f.Geometry.GeoJSONType()] || !wellFormed(f.Geometry) {
			continue
		}
		if f.Properties == nil {
			f.Properties = geojson.Properties{}
		}
		out = append(out, f)
	}
	return out
}
