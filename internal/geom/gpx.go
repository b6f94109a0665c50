package geom

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

type gpxMeta struct {
	Name string `xml:"name"`
	Desc string `xml:"desc"`
	Cmt  string `xml:"cmt"`
	Type string `xml:"type"`
	Sym  string `xml:"sym"`
}

type gpxPoint struct {
	Lat  string `xml:"lat,attr"`
	Lon  string `xml:"lon,attr"`
	Time string `xml:"time"`
	gpxMeta
}

type gpxRoute struct {
	Points []gpxPoint `xml:"rtept"`
	gpxMeta
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxTrack struct {
	Segments []gpxSegment `xml:"trkseg"`
	gpxMeta
}

type gpxDoc struct {
	XMLName   xml.Name   `xml:"gpx"`
	Waypoints []gpxPoint `xml:"wpt"`
	Routes    []gpxRoute `xml:"rte"`
	Tracks    []gpxTrack `xml:"trk"`
}

// DecodeGPX converts tracks to LineString (MultiLineString when a track has
// several segments), routes to LineString and waypoints to Point, in that
// order. Points whose lat/lon do not parse are skipped.
func DecodeGPX(data []byte) ([]Candidate, error) {
	var doc gpxDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Format: GPX, Err: err}
	}
	parsePoint := func(p gpxPoint) (orb.Point, bool) {
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(p.Lon), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(p.Lat), 64)
		if err1 != nil || err2 != nil {
			return orb.Point{}, false
		}
		return orb.Point{lon, lat}, true
	}
	parseLine := func(pts []gpxPoint) orb.LineString {
		var ls orb.LineString
		for _, p := range pts {
			if pt, ok := parsePoint(p); ok {
				ls = append(ls, pt)
			}
		}
		return ls
	}

	var out []Candidate
	for _, trk := range doc.Tracks {
		var lines orb.MultiLineString
		for _, seg := range trk.Segments {
			if ls := parseLine(seg.Points); len(ls) > 0 {
				lines = append(lines, ls)
			}
		}
		switch len(lines) {
		case 0:
			continue
		case 1:
			out = append(out, &FeatureCandidate{Geometry: typed(lines[0]), Properties: trk.props()})
		default:
			out = append(out, &FeatureCandidate{Geometry: typed(lines), Properties: trk.props()})
		}
	}
	for _, rte := range doc.Routes {
		if ls := parseLine(rte.Points); len(ls) > 0 {
			out = append(out, &FeatureCandidate{Geometry: typed(ls), Properties: rte.props()})
		}
	}
	for _, wpt := range doc.Waypoints {
		pt, ok := parsePoint(wpt)
		if !ok {
			continue
		}
		props := wpt.props()
		if t := strings.TrimSpace(wpt.Time); t != "" {
			props["time"] = t
		}
		out = append(out, &FeatureCandidate{Geometry: typed(pt), Properties: props})
	}
	return out, nil
}

func (m gpxMeta) props() map[string]any {
	props := map[string]any{}
	set := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			props[k] = v
		}
	}
	set("name", m.Name)
	set("desc", m.Desc)
	set("cmt", m.Cmt)
	set("type", m.Type)
	set("sym", m.Sym)
	return props
}
