package mapsurface

import (
	"math"
	"slices"
	"strings"

	"github.com/paulmach/orb"
)

// Render resizes the canvas to w x h cells and rasterises every visible
// layer in draw order into coloured braille.
func (c *Canvas) Render(w, h int) string {
	c.SetSize(w, h)
	d := newDots(c.w, c.h)
	for _, l := range c.layers {
		if !l.Visible() {
			continue
		}
		src, ok := c.sources[l.Source]
		if !ok || src.Data == nil {
			continue
		}
		switch l.Kind {
		case Fill:
			d.pen = paintString(l.Paint, FillColor)
			sparse := paintFloat(l.Paint, FillOpacity, 1) < 1
			for _, f := range src.Data.Features {
				c.fill(d, f.Geometry, sparse)
			}
		case Line:
			d.pen = paintString(l.Paint, LineColor)
			for _, f := range src.Data.Features {
				c.stroke(d, f.Geometry)
			}
		case Circle:
			d.pen = paintString(l.Paint, CircleColor)
			r := int(math.Round(paintFloat(l.Paint, CircleRadius, 4) / 4))
			for _, f := range src.Data.Features {
				c.markers(d, f.Geometry, r)
			}
		}
	}
	return strings.Join(d.lines(), "\n")
}

func (c *Canvas) stroke(d *dots, g orb.Geometry) {
	path := func(pts []orb.Point, closed bool) {
		if len(pts) == 0 {
			return
		}
		px, py := c.micro(pts[0])
		d.set(px, py)
		for _, p := range pts[1:] {
			x, y := c.micro(p)
			d.line(px, py, x, y)
			px, py = x, y
		}
		if closed && len(pts) > 2 {
			x, y := c.micro(pts[0])
			d.line(px, py, x, y)
		}
	}
	switch g := g.(type) {
	case orb.LineString:
		path(g, false)
	case orb.MultiLineString:
		for _, ls := range g {
			path(ls, false)
		}
	case orb.Polygon:
		for _, r := range g {
			path(r, true)
		}
	case orb.MultiPolygon:
		for _, p := range g {
			for _, r := range p {
				path(r, true)
			}
		}
	}
}

// fill scans every micro row and lights dots between crossings of all rings
// (even-odd), so holes stay empty. Sparse fills light every other dot.
func (c *Canvas) fill(d *dots, g orb.Geometry, sparse bool) {
	var polys []orb.Polygon
	switch g := g.(type) {
	case orb.Polygon:
		polys = []orb.Polygon{g}
	case orb.MultiPolygon:
		polys = g
	default:
		return
	}
	hMic := c.h * 4
	for _, poly := range polys {
		var rings [][][2]int
		for _, r := range poly {
			var mr [][2]int
			for _, p := range r {
				x, y := c.micro(p)
				mr = append(mr, [2]int{x, y})
			}
			if len(mr) >= 3 {
				rings = append(rings, mr)
			}
		}
		for y := range hMic {
			var xs []int
			for _, r := range rings {
				for i := range r {
					a, b := r[i], r[(i+1)%len(r)]
					if a[1] == b[1] {
						continue
					}
					if (y >= a[1] && y < b[1]) || (y >= b[1] && y < a[1]) {
						t := float64(y-a[1]) / float64(b[1]-a[1])
						xs = append(xs, int(float64(a[0])+t*float64(b[0]-a[0])))
					}
				}
			}
			slices.Sort(xs)
			for i := 0; i+1 < len(xs); i += 2 {
				for x := max(0, xs[i]); x <= xs[i+1] && x < c.w*2; x++ {
					if !sparse || (x+y)%2 == 0 {
						d.set(x, y)
					}
				}
			}
		}
	}
}

func (c *Canvas) markers(d *dots, g orb.Geometry, r int) {
	var pts []orb.Point
	switch g := g.(type) {
	case orb.Point:
		pts = []orb.Point{g}
	case orb.MultiPoint:
		pts = g
	default:
		return
	}
	for _, p := range pts {
		x, y := c.micro(p)
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx*dx+dy*dy <= r*r {
					d.set(x+dx, y+dy)
				}
			}
		}
	}
}

func paintString(p map[string]any, key string) string {
	s, _ := p[key].(string)
	return s
}

func paintFloat(p map[string]any, key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return def
}
