package geom

import (
	"encoding/json"
	"errors"
)

// DecodeGeoJSON parses GeoJSON (or plain JSON holding GeoJSON objects) into
// candidates. Only JSON syntax is checked here; structure is left to Validate.
// Accepted roots: FeatureCollection, Feature, a bare geometry, a
// GeometryCollection, or an array of any of those.
func DecodeGeoJSON(data []byte) ([]Candidate, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Format: GeoJSON, Err: err}
	}
	if raw == nil {
		return nil, &ParseError{Format: GeoJSON, Err: errors.New("document is null")}
	}
	var out []Candidate
	var walk func(v any)
	walk = func(v any) {
		switch t := v.(type) {
		case []any:
			for _, el := range t {
				walk(el)
			}
			return
		case map[string]any:
			switch t["type"] {
			case "FeatureCollection":
				fs, _ := t["features"].([]any)
				for _, f := range fs {
					out = append(out, Classify(f))
				}
				return
			case "GeometryCollection":
				gs, _ := t["geometries"].([]any)
				for _, g := range gs {
					out = append(out, Classify(g))
				}
				return
			}
		}
		out = append(out, Classify(v))
	}
	walk(raw)
	return out, nil
}
