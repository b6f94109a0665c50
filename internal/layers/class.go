package layers

import (
	"strings"

	"github.com/paulmach/orb/geojson"
)

// Class is the rendering class of a layer.
type Class string

const (
	Point   Class = "point"
	Line    Class = "line"
	Polygon Class = "polygon"
)

// DominantClass takes the most frequent geometry type (later types win
// ties) and maps it by containment: any type naming Polygon is a polygon,
// any naming LineString a line, everything else a point. An empty
// collection is a point.
func DominantClass(fc *geojson.FeatureCollection) Class {
	counts := map[string]int{}
	var seen []string
	if fc != nil {
		for _, f := range fc.Features {
			if f == nil || f.Geometry == nil {
				continue
			}
			t := f.Geometry.GeoJSONType()
			if counts[t] == 0 {
				seen = append(seen, t)
			}
			counts[t]++
		}
	}
	top := "Point"
	for _, t := range seen {
		if !(counts[top] > counts[t]) {
			top = t
		}
	}
	switch {
	case strings.Contains(top, "Polygon"):
		return Polygon
	case strings.Contains(top, "LineString"):
		return Line
	}
	return Point
}
