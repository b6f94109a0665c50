package geom

import "github.com/paulmach/orb"

// Candidate is one decoder output awaiting validation. It is one of
// *FeatureCandidate, *GeometryCandidate or *InvalidCandidate.
type Candidate interface {
	candidate()
}

// RawGeometry is a geometry as the decoder found it. Coordinates holds either
// nested []any values decoded from JSON or an orb geometry built by a typed
// decoder.
type RawGeometry struct {
	Type        string
	Coordinates any
}

// FeatureCandidate is a record already wrapped as a feature. Geometry may be
// nil when the source record had none.
type FeatureCandidate struct {
	ID         any
	Geometry   *RawGeometry
	Properties map[string]any
}

// GeometryCandidate is a bare geometry without a feature envelope.
type GeometryCandidate struct {
	Geometry RawGeometry
}

// InvalidCandidate is anything that is neither a feature nor a geometry.
type InvalidCandidate struct {
	Reason string
}

func (*FeatureCandidate) candidate()  {}
func (*GeometryCandidate) candidate() {}
func (*InvalidCandidate) candidate()  {}

// geometryTypes are the only geometry types a feature may carry.
var geometryTypes = map[string]bool{
	"Point":           true,
	"MultiPoint":      true,
	"LineString":      true,
	"MultiLineString": true,
	"Polygon":         true,
	"MultiPolygon":    true,
}

// typed wraps an orb geometry built by a decoder as a raw geometry.
func typed(g orb.Geometry) *RawGeometry {
	if g == nil {
		return nil
	}
	return &RawGeometry{Type: g.GeoJSONType(), Coordinates: g}
}

// Classify sorts a loosely decoded JSON value into a candidate variant.
// Objects typed "Feature" become features; objects whose type is a valid
// geometry type and which carry coordinates become bare geometries.
func Classify(v any) Candidate {
	obj, ok := v.(map[string]any)
	if !ok {
		return &InvalidCandidate{Reason: "not an object"}
	}
	t, _ := obj["type"].(string)
	if t == "Feature" {
		fc := &FeatureCandidate{ID: obj["id"]}
		if props, ok := obj["properties"].(map[string]any); ok {
			fc.Properties = props
		}
		if g, ok := obj["geometry"].(map[string]any); ok {
			gt, _ := g["type"].(string)
			fc.Geometry = &RawGeometry{Type: gt, Coordinates: g["coordinates"]}
		}
		return fc
	}
	if coords, ok := obj["coordinates"]; ok && geometryTypes[t] {
		return &GeometryCandidate{Geometry: RawGeometry{Type: t, Coordinates: coords}}
	}
	if t == "" {
		return &InvalidCandidate{Reason: "missing type"}
	}
	return &InvalidCandidate{Reason: "unexpected type " + t}
}
