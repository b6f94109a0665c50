package geom

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// BoundFunc computes the extent of a collection.
type BoundFunc func(fc *geojson.FeatureCollection) orb.Bound

// LibraryBound is the union of each geometry's orb bound.
func LibraryBound(fc *geojson.FeatureCollection) orb.Bound {
	var b orb.Bound
	first := true
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		if first {
			b, first = f.Geometry.Bound(), false
			continue
		}
		b = b.Union(f.Geometry.Bound())
	}
	if first {
		return orb.Bound{Min: orb.Point{math.NaN(), math.NaN()}, Max: orb.Point{math.NaN(), math.NaN()}}
	}
	return b
}

// Bounds returns the extent of every feature, or false when no finite
// extent exists.
func Bounds(fc *geojson.FeatureCollection) (orb.Bound, bool) {
	return BoundsWith(fc, LibraryBound)
}

// BoundsWith tries primary first and falls back to a manual scan over every
// coordinate when primary fails.
func BoundsWith(fc *geojson.FeatureCollection, primary BoundFunc) (orb.Bound, bool) {
	if fc == nil {
		return orb.Bound{}, false
	}
	b, err := guarded(primary, fc)
	if err != nil {
		log.Warn().Err(err).Msg("bbox computation failed, scanning coordinates")
		b = ScanBound(fc)
	}
	return b, finite(b)
}

func guarded(fn BoundFunc, fc *geojson.FeatureCollection) (b orb.Bound, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()
	return fn(fc), nil
}

// ScanBound walks all coordinates of every feature and tracks min/max.
func ScanBound(fc *geojson.FeatureCollection) orb.Bound {
	b := orb.Bound{
		Min: orb.Point{math.Inf(1), math.Inf(1)},
		Max: orb.Point{math.Inf(-1), math.Inf(-1)},
	}
	visit := func(p orb.Point) {
		b.Min[0] = math.Min(b.Min[0], p[0])
		b.Min[1] = math.Min(b.Min[1], p[1])
		b.Max[0] = math.Max(b.Max[0], p[0])
		b.Max[1] = math.Max(b.Max[1], p[1])
	}
	for _, f := range fc.Features {
		if f != nil {
			eachPoint(f.Geometry, visit)
		}
	}
	return b
}

func eachPoint(g orb.Geometry, fn func(orb.Point)) {
	switch g := g.(type) {
	case orb.Point:
		fn(g)
	case orb.MultiPoint:
		for _, p := range g {
			fn(p)
		}
	case orb.LineString:
		for _, p := range g {
			fn(p)
		}
	case orb.Ring:
		for _, p := range g {
			fn(p)
		}
	case orb.MultiLineString:
		for _, l := range g {
			eachPoint(l, fn)
		}
	case orb.Polygon:
		for _, r := range g {
			eachPoint(r, fn)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			eachPoint(p, fn)
		}
	case orb.Collection:
		for _, c := range g {
			eachPoint(c, fn)
		}
	}
}

func finite(b orb.Bound) bool {
	for _, v := range []float64{b.Min[0], b.Min[1], b.Max[0], b.Max[1]} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
