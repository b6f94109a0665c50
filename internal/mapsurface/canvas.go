package mapsurface

import (
	"fmt"
	"maps"
	"slices"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// Canvas is an in-memory Surface. It is not safe for concurrent use; the UI
// loop owns it.
type Canvas struct {
	sources map[string]*Source
	layers  []*Layer // draw order, last on top

	handlers map[handlerKey][]Handler
	hovered  map[string]bool

	cursor string
	popup  *Popup

	w, h    int
	view    orb.Bound
	zoom    float64
	maxZoom float64
	offX    int
	offY    int
}

type handlerKey struct{ event, layer string }

// NewCanvas returns an empty canvas framing the whole world.
func NewCanvas() *Canvas {
	return &Canvas{
		sources:  map[string]*Source{},
		handlers: map[handlerKey][]Handler{},
		hovered:  map[string]bool{},
		w:        80,
		h:        24,
		view:     world,
		zoom:     1,
		maxZoom:  64,
	}
}

var _ Surface = (*Canvas)(nil)

func (c *Canvas) AddSource(id string, data *geojson.FeatureCollection) error {
	if _, ok := c.sources[id]; ok {
		return fmt.Errorf("source %q already exists", id)
	}
	if data == nil {
		data = geojson.NewFeatureCollection()
	}
	c.sources[id] = &Source{ID: id, Data: data}
	log.Debug().Str("source", id).Int("features", len(data.Features)).Msg("source added")
	return nil
}

func (c *Canvas) RemoveSource(id string) error {
	if _, ok := c.sources[id]; !ok {
		return fmt.Errorf("source %q not found", id)
	}
	for _, l := range c.layers {
		if l.Source == id {
			return fmt.Errorf("source %q is used by layer %q", id, l.ID)
		}
	}
	delete(c.sources, id)
	return nil
}

func (c *Canvas) GetSource(id string) (*Source, bool) {
	s, ok := c.sources[id]
	return s, ok
}

func (c *Canvas) AddLayer(l Layer) error {
	if _, ok := c.GetLayer(l.ID); ok {
		return fmt.Errorf("layer %q already exists", l.ID)
	}
	if _, ok := c.sources[l.Source]; !ok {
		return fmt.Errorf("layer %q: source %q not found", l.ID, l.Source)
	}
	switch l.Kind {
	case Fill, Line, Circle:
	default:
		return fmt.Errorf("layer %q: unknown kind %q", l.ID, l.Kind)
	}
	l.Paint = maps.Clone(l.Paint)
	l.Layout = maps.Clone(l.Layout)
	if l.Layout == nil {
		l.Layout = map[string]any{}
	}
	c.layers = append(c.layers, &l)
	log.Debug().Str("layer", l.ID).Str("source", l.Source).Str("kind", string(l.Kind)).Msg("layer added")
	return nil
}

func (c *Canvas) RemoveLayer(id string) error {
	i := c.layerIndex(id)
	if i < 0 {
		return fmt.Errorf("layer %q not found", id)
	}
	c.layers = slices.Delete(c.layers, i, i+1)
	delete(c.hovered, id)
	return nil
}

func (c *Canvas) GetLayer(id string) (*Layer, bool) {
	if i := c.layerIndex(id); i >= 0 {
		return c.layers[i], true
	}
	return nil, false
}

func (c *Canvas) layerIndex(id string) int {
	return slices.IndexFunc(c.layers, func(l *Layer) bool { return l.ID == id })
}

// Layers returns the layer ids in draw order.
func (c *Canvas) Layers() []string {
	ids := make([]string, len(c.layers))
	for i, l := range c.layers {
		ids[i] = l.ID
	}
	return ids
}

// Sources returns the source ids, sorted.
func (c *Canvas) Sources() []string {
	return slices.Sorted(maps.Keys(c.sources))
}

func (c *Canvas) SetLayoutProperty(layerID, prop string, value any) error {
	l, ok := c.GetLayer(layerID)
	if !ok {
		return fmt.Errorf("layer %q not found", layerID)
	}
	l.Layout[prop] = value
	return nil
}

func (c *Canvas) On(event, layerID string, h Handler) {
	k := handlerKey{event, layerID}
	c.handlers[k] = append(c.handlers[k], h)
}

func (c *Canvas) Off(event, layerID string) {
	delete(c.handlers, handlerKey{event, layerID})
}

// HandlerCount reports how many handlers are registered for the pair.
func (c *Canvas) HandlerCount(event, layerID string) int {
	return len(c.handlers[handlerKey{event, layerID}])
}

func (c *Canvas) emit(ev Event) {
	for _, h := range c.handlers[handlerKey{ev.Type, ev.LayerID}] {
		h(ev)
	}
}

func (c *Canvas) SetCursor(style string) { c.cursor = style }

// Cursor is the style last set by a handler; empty means default.
func (c *Canvas) Cursor() string { return c.cursor }

func (c *Canvas) OpenPopup(p Popup) { c.popup = &p }

// Popup returns the open popup, if any.
func (c *Canvas) Popup() (Popup, bool) {
	if c.popup == nil {
		return Popup{}, false
	}
	return *c.popup, true
}

func (c *Canvas) ClosePopup() { c.popup = nil }
