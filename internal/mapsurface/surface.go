// Package mapsurface defines the map capabilities the ingestion pipeline
// drives and provides Canvas, an in-memory surface rasterised to the terminal.
package mapsurface

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Surface is the mutation and query interface of a map.
type Surface interface {
	AddSource(id string, data *geojson.FeatureCollection) error
	RemoveSource(id string) error
	GetSource(id string) (*Source, bool)

	AddLayer(l Layer) error
	RemoveLayer(id string) error
	GetLayer(id string) (*Layer, bool)
	SetLayoutProperty(layerID, prop string, value any) error

	FitBounds(b orb.Bound, opts FitOptions)
	Project(ll orb.Point) (x, y float64)
	Unproject(x, y float64) orb.Point

	// On registers h for event on layerID. Off drops every handler
	// registered for that pair.
	On(event, layerID string, h Handler)
	Off(event, layerID string)

	SetCursor(style string)
	OpenPopup(p Popup)
}

// Source is a GeoJSON data source.
type Source struct {
	ID   string
	Data *geojson.FeatureCollection
}

// Kind is the rendering primitive of a layer.
type Kind string

const (
	Fill   Kind = "fill"
	Line   Kind = "line"
	Circle Kind = "circle"
)

// Layout and paint property names understood by Canvas.
const (
	Visibility = "visibility"

	FillColor         = "fill-color"
	FillOpacity       = "fill-opacity"
	LineColor         = "line-color"
	LineWidth         = "line-width"
	CircleColor       = "circle-color"
	CircleRadius      = "circle-radius"
	CircleStrokeWidth = "circle-stroke-width"
	CircleStrokeColor = "circle-stroke-color"
)

// Visibility values.
const (
	Visible = "visible"
	Hidden  = "none"
)

// Layer renders one source with one primitive.
type Layer struct {
	ID     string
	Kind   Kind
	Source string
	Paint  map[string]any
	Layout map[string]any
}

// Visible reports whether the layout visibility is anything but "none".
func (l *Layer) Visible() bool {
	v, _ := l.Layout[Visibility].(string)
	return v != Hidden
}

// Event names.
const (
	Click      = "click"
	MouseEnter = "mouseenter"
	MouseLeave = "mouseleave"
)

// Event is delivered to handlers. Features holds the features of LayerID
// under the pointer; it is empty for mouseleave.
type Event struct {
	Type     string
	LayerID  string
	LngLat   orb.Point
	X, Y     int
	Features []*geojson.Feature
}

type Handler func(Event)

// Popup is an information box anchored at a position.
type Popup struct {
	LngLat orb.Point
	Title  string
	Rows   [][2]string
}

// FitOptions controls FitBounds. Padding is in cells. MaxZoom bounds how
// tightly a small extent is framed: each axis spans at least 1/MaxZoom
// degrees, and keyboard zoom stops at MaxZoom.
type FitOptions struct {
	Padding int
	MaxZoom float64
}
