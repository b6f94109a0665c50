package geom

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlBoundary struct {
	LinearRing kmlCoords `xml:"LinearRing"`
}

type kmlPolygon struct {
	Outer kmlBoundary   `xml:"outerBoundaryIs"`
	Inner []kmlBoundary `xml:"innerBoundaryIs"`
}

type kmlMulti struct {
	Points   []kmlCoords  `xml:"Point"`
	Lines    []kmlCoords  `xml:"LineString"`
	Polygons []kmlPolygon `xml:"Polygon"`
	Multi    []kmlMulti   `xml:"MultiGeometry"`
}

type kmlData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

type kmlSimpleData struct {
	Name  string `xml:"name,attr"`
	Value string `xml:",chardata"`
}

type kmlPlacemark struct {
	Name         string `xml:"name"`
	Description  string `xml:"description"`
	StyleURL     string `xml:"styleUrl"`
	ExtendedData struct {
		Data       []kmlData `xml:"Data"`
		SchemaData []struct {
			SimpleData []kmlSimpleData `xml:"SimpleData"`
		} `xml:"SchemaData"`
	} `xml:"ExtendedData"`
	Point         *kmlCoords  `xml:"Point"`
	LineString    *kmlCoords  `xml:"LineString"`
	Polygon       *kmlPolygon `xml:"Polygon"`
	MultiGeometry *kmlMulti   `xml:"MultiGeometry"`
}

// DecodeKML extracts every Placemark, at any Document/Folder depth, as
// features. KML coordinates are "lon,lat[,alt]"; altitude is ignored.
// A MultiGeometry becomes the matching Multi* type when its members share a
// type, and one feature per member otherwise.
func DecodeKML(data []byte) ([]Candidate, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	var out []Candidate
	sawRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &ParseError{Format: KML, Err: err}
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if se.Name.Local != "Placemark" {
			continue
		}
		var pm kmlPlacemark
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return nil, &ParseError{Format: KML, Err: err}
		}
		props := pm.props()
		for _, g := range pm.geometries() {
			out = append(out, &FeatureCandidate{Geometry: typed(g), Properties: clone(props)})
		}
	}
	if !sawRoot {
		return nil, &ParseError{Format: KML, Err: errors.New("no root element")}
	}
	return out, nil
}

func (pm kmlPlacemark) props() map[string]any {
	props := map[string]any{}
	set := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			props[k] = v
		}
	}
	set("name", pm.Name)
	set("description", pm.Description)
	set("styleUrl", pm.StyleURL)
	for _, d := range pm.ExtendedData.Data {
		set(d.Name, d.Value)
	}
	for _, sd := range pm.ExtendedData.SchemaData {
		for _, d := range sd.SimpleData {
			set(d.Name, d.Value)
		}
	}
	return props
}

// geometries returns the placemark's geometry, or several when a mixed
// MultiGeometry has to be split.
func (pm kmlPlacemark) geometries() []orb.Geometry {
	switch {
	case pm.Point != nil:
		if pts := parseKMLCoords(pm.Point.Coordinates); len(pts) > 0 {
			return []orb.Geometry{pts[0]}
		}
	case pm.LineString != nil:
		if ls := parseKMLCoords(pm.LineString.Coordinates); len(ls) > 0 {
			return []orb.Geometry{orb.LineString(ls)}
		}
	case pm.Polygon != nil:
		if p := pm.Polygon.polygon(); p != nil {
			return []orb.Geometry{p}
		}
	case pm.MultiGeometry != nil:
		return mergeMembers(pm.MultiGeometry.members())
	}
	return nil
}

func (p kmlPolygon) polygon() orb.Polygon {
	outer := parseKMLCoords(p.Outer.LinearRing.Coordinates)
	if len(outer) == 0 {
		return nil
	}
	poly := orb.Polygon{orb.Ring(outer)}
	for _, in := range p.Inner {
		if r := parseKMLCoords(in.LinearRing.Coordinates); len(r) > 0 {
			poly = append(poly, orb.Ring(r))
		}
	}
	return poly
}

func (m kmlMulti) members() []orb.Geometry {
	var gs []orb.Geometry
	for _, c := range m.Points {
		if pts := parseKMLCoords(c.Coordinates); len(pts) > 0 {
			gs = append(gs, pts[0])
		}
	}
	for _, c := range m.Lines {
		if ls := parseKMLCoords(c.Coordinates); len(ls) > 0 {
			gs = append(gs, orb.LineString(ls))
		}
	}
	for _, p := range m.Polygons {
		if poly := p.polygon(); poly != nil {
			gs = append(gs, poly)
		}
	}
	for _, nested := range m.Multi {
		gs = append(gs, nested.members()...)
	}
	return gs
}

// mergeMembers folds homogeneous members into one Multi* geometry.
func mergeMembers(gs []orb.Geometry) []orb.Geometry {
	if len(gs) <= 1 {
		return gs
	}
	var (
		mp  orb.MultiPoint
		mls orb.MultiLineString
		mpg orb.MultiPolygon
	)
	for _, g := range gs {
		switch g := g.(type) {
		case orb.Point:
			mp = append(mp, g)
		case orb.LineString:
			mls = append(mls, g)
		case orb.Polygon:
			mpg = append(mpg, g)
		}
	}
	switch len(gs) {
	case len(mp):
		return []orb.Geometry{mp}
	case len(mls):
		return []orb.Geometry{mls}
	case len(mpg):
		return []orb.Geometry{mpg}
	}
	return gs
}

// parseKMLCoords reads whitespace separated "lon,lat[,alt]" tuples.
func parseKMLCoords(s string) []orb.Point {
	var pts []orb.Point
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		pts = append(pts, orb.Point{lon, lat})
	}
	return pts
}

func clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
