package ingest

import (
	"fmt"
	"slices"

	"github.com/hashicorp/go-multierror"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"geolayers/internal/geom"
	"geolayers/internal/layers"
	"geolayers/internal/mapsurface"
)

// popup keys that only repeat the coordinates
var coordinateKeys = []string{"lat", "lon", "latitude", "longitude"}

// AddCollection adds fc to the map as layer name, replacing any layer
// already using that name, and frames the view on it. On failure the
// surface is left as it was before the call, apart from the replaced layer.
func (c *Controller) AddCollection(fc *geojson.FeatureCollection, name string) (layers.Record, error) {
	feats := geom.Sanitize(fc)
	if len(feats) == 0 {
		err := &geom.EmptyResultError{}
		log.Warn().Str("layer", name).Msg("no valid features to add")
		c.notifier.Notify(Message{Text: "The file contains no valid geometries", Severity: Info})
		return layers.Record{}, err
	}
	if name == "" {
		c.unnamed++
		name = fmt.Sprintf("Layer %d", c.unnamed)
	}
	sourceID, layerID := "source-"+name, "layer-"+name
	c.clear(sourceID, layerID)

	data := geojson.NewFeatureCollection()
	data.Features = feats
	if err := c.surface.AddSource(sourceID, data); err != nil {
		err = fmt.Errorf("add source for %q: %w", name, err)
		c.fail(name, err)
		return layers.Record{}, err
	}

	class := layers.DominantClass(data)
	color := c.color()
	var added []string
	for _, l := range subLayers(class, sourceID, layerID, color) {
		if err := c.surface.AddLayer(l); err != nil {
			err = c.rollback(fmt.Errorf("add layer %q: %w", l.ID, err), sourceID, added)
			c.fail(name, err)
			return layers.Record{}, err
		}
		added = append(added, l.ID)
	}
	for _, id := range added {
		c.attach(id, name)
	}

	rec := c.registry.Add(sourceID, layerID, name, class, color)
	c.frame(data, name)

	log.Info().Str("layer", name).Str("class", string(class)).Int("features", len(feats)).Msg("layer added")
	c.notifier.LayersChanged()
	c.notifier.Notify(Message{Text: fmt.Sprintf("Layer %q added successfully", name), Severity: Success})
	return rec, nil
}

// subLayers builds the rendering layers for a geometry class.
func subLayers(class layers.Class, sourceID, layerID, color string) []mapsurface.Layer {
	layout := func() map[string]any { return map[string]any{mapsurface.Visibility: mapsurface.Visible} }
	switch class {
	case layers.Polygon:
		return []mapsurface.Layer{
			{ID: layerID + "-fill", Kind: mapsurface.Fill, Source: sourceID, Layout: layout(),
				Paint: map[string]any{mapsurface.FillColor: color, mapsurface.FillOpacity: 0.5}},
			{ID: layerID + "-line", Kind: mapsurface.Line, Source: sourceID, Layout: layout(),
				Paint: map[string]any{mapsurface.LineColor: color, mapsurface.LineWidth: 1.5}},
		}
	case layers.Line:
		return []mapsurface.Layer{
			{ID: layerID + "-line", Kind: mapsurface.Line, Source: sourceID, Layout: layout(),
				Paint: map[string]any{mapsurface.LineColor: color, mapsurface.LineWidth: 2.0}},
		}
	}
	return []mapsurface.Layer{
		{ID: layerID + "-point", Kind: mapsurface.Circle, Source: sourceID, Layout: layout(),
			Paint: map[string]any{
				mapsurface.CircleRadius:      5.0,
				mapsurface.CircleColor:       color,
				mapsurface.CircleStrokeWidth: 1.0,
				mapsurface.CircleStrokeColor: "#ffffff",
			}},
	}
}

// clear removes whatever currently uses the ids: the registered record if
// any, then stray surface layers and the source.
func (c *Controller) clear(sourceID, layerID string) {
	if _, ok := c.registry.Get(layerID); ok {
		c.registry.Remove(layerID)
	}
	stray := layers.Record{LayerID: layerID}
	for _, id := range stray.SubLayers() {
		if _, ok := c.surface.GetLayer(id); ok {
			c.detach(id)
			if err := c.surface.RemoveLayer(id); err != nil {
				log.Warn().Err(err).Str("layer", id).Msg("remove stray layer")
			}
		}
	}
	if _, ok := c.surface.GetSource(sourceID); ok {
		if err := c.surface.RemoveSource(sourceID); err != nil {
			log.Warn().Err(err).Str("source", sourceID).Msg("remove stray source")
		}
	}
}

// rollback removes the layers and source added so far and folds any
// cleanup failure into cause.
func (c *Controller) rollback(cause error, sourceID string, added []string) error {
	var result *multierror.Error
	result = multierror.Append(result, cause)
	for _, id := range slices.Backward(added) {
		if err := c.surface.RemoveLayer(id); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := c.surface.RemoveSource(sourceID); err != nil {
		result = multierror.Append(result, err)
	}
	if len(result.Errors) == 1 {
		return cause
	}
	return result
}

func (c *Controller) attach(layerID, name string) {
	c.surface.On(mapsurface.Click, layerID, func(ev mapsurface.Event) {
		if len(ev.Features) == 0 {
			return
		}
		c.surface.OpenPopup(Popup(name, ev))
	})
	c.surface.On(mapsurface.MouseEnter, layerID, func(mapsurface.Event) { c.surface.SetCursor("pointer") })
	c.surface.On(mapsurface.MouseLeave, layerID, func(mapsurface.Event) { c.surface.SetCursor("") })
}

func (c *Controller) detach(layerID string) {
	for _, ev := range []string{mapsurface.Click, mapsurface.MouseEnter, mapsurface.MouseLeave} {
		c.surface.Off(ev, layerID)
	}
}

// Popup lists the first clicked feature's properties sorted by key,
// without the coordinate columns.
func Popup(title string, ev mapsurface.Event) mapsurface.Popup {
	p := mapsurface.Popup{LngLat: ev.LngLat, Title: title}
	if len(ev.Features) == 0 {
		return p
	}
	props := ev.Features[0].Properties
	keys := make([]string, 0, len(props))
	for k := range props {
		if !slices.Contains(coordinateKeys, k) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	for _, k := range keys {
		v := props[k]
		if v == nil {
			v = ""
		}
		p.Rows = append(p.Rows, [2]string{k, fmt.Sprint(v)})
	}
	return p
}

// frame fits the view on the data, or logs and skips when no finite extent
// exists.
func (c *Controller) frame(fc *geojson.FeatureCollection, name string) {
	b, ok := geom.Bounds(fc)
	if !ok {
		log.Warn().Str("layer", name).Msg("no finite extent, view unchanged")
		return
	}
	c.surface.FitBounds(b, c.fit)
}
