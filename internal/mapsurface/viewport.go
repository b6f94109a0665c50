package mapsurface

import (
	"math"

	"github.com/paulmach/orb"
)

var world = orb.Bound{Min: orb.Point{-180, -90}, Max: orb.Point{180, 90}}

// SetSize sets the canvas size in cells.
func (c *Canvas) SetSize(w, h int) {
	c.w, c.h = max(2, w), max(2, h)
}

// Size returns the canvas size in cells.
func (c *Canvas) Size() (w, h int) { return c.w, c.h }

// View returns the framed extent and the zoom factor applied around its centre.
func (c *Canvas) View() (orb.Bound, float64) { return c.view, c.zoom }

// FitBounds frames b with opts.Padding cells on every side and resets zoom
// and pan.
func (c *Canvas) FitBounds(b orb.Bound, opts FitOptions) {
	if opts.MaxZoom > 0 {
		c.maxZoom = opts.MaxZoom
	}
	minSpan := 1 / c.maxZoom
	center := b.Center()
	spanX := math.Max(b.Max[0]-b.Min[0], minSpan)
	spanY := math.Max(b.Max[1]-b.Min[1], minSpan)

	// widen the frame so the bound lands inside the padded area
	pad := float64(max(0, opts.Padding))
	if inner := float64(c.w) - 2*pad; inner > 1 {
		spanX *= float64(c.w) / inner
	}
	if inner := float64(c.h) - 2*pad; inner > 1 {
		spanY *= float64(c.h) / inner
	}
	c.view = orb.Bound{
		Min: orb.Point{center[0] - spanX/2, center[1] - spanY/2},
		Max: orb.Point{center[0] + spanX/2, center[1] + spanY/2},
	}
	c.zoom = 1
	c.offX, c.offY = 0, 0
}

// Project maps lon/lat to fractional cell coordinates under the current
// zoom and pan.
func (c *Canvas) Project(ll orb.Point) (x, y float64) {
	nx := (ll[0] - c.view.Min[0]) / (c.view.Max[0] - c.view.Min[0])
	ny := (ll[1] - c.view.Min[1]) / (c.view.Max[1] - c.view.Min[1])
	zx := 0.5 + (nx-0.5)*c.zoom
	zy := 0.5 + (ny-0.5)*c.zoom
	x = zx*float64(c.w-1) + float64(c.offX)
	y = (1-zy)*float64(c.h-1) + float64(c.offY)
	return x, y
}

// Unproject is the inverse of Project.
func (c *Canvas) Unproject(x, y float64) orb.Point {
	zx := (x - float64(c.offX)) / float64(c.w-1)
	zy := 1 - (y-float64(c.offY))/float64(c.h-1)
	nx := 0.5 + (zx-0.5)/c.zoom
	ny := 0.5 + (zy-0.5)/c.zoom
	return orb.Point{
		c.view.Min[0] + nx*(c.view.Max[0]-c.view.Min[0]),
		c.view.Min[1] + ny*(c.view.Max[1]-c.view.Min[1]),
	}
}

// micro maps lon/lat onto the 2x4 braille dot grid.
func (c *Canvas) micro(ll orb.Point) (int, int) {
	x, y := c.Project(ll)
	fx := (x - float64(c.offX)) / float64(c.w-1)
	fy := (y - float64(c.offY)) / float64(c.h-1)
	return int(fx*float64(c.w*2-1)) + c.offX*2, int(fy*float64(c.h*4-1)) + c.offY*4
}

// Pan shifts the view by whole cells.
func (c *Canvas) Pan(dx, dy int) {
	c.offX += dx
	c.offY += dy
}

// Zoom multiplies the zoom factor, staying within [0.05, MaxZoom].
func (c *Canvas) Zoom(factor float64) {
	z := c.zoom * factor
	if z < 0.05 || z > c.maxZoom {
		return
	}
	c.zoom = z
}
