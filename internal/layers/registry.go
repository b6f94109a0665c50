// Package layers keeps the bookkeeping of every dataset added to the map.
package layers

import (
	"iter"
	"slices"

	"github.com/rs/zerolog/log"

	"geolayers/internal/mapsurface"
)

// Sub-layer suffixes, in removal order.
var suffixes = []string{"-fill", "-line", "-point"}

// Record tracks the surface ids and UI state of one imported dataset.
type Record struct {
	SourceID string
	LayerID  string
	Name     string
	Class    Class
	Visible  bool
	Color    string
	ParentID string
}

// SubLayers lists every surface layer id the record may own: the suffixed
// sub-layers followed by the bare id.
func (r Record) SubLayers() []string {
	ids := make([]string, 0, len(suffixes)+1)
	for _, s := range suffixes {
		ids = append(ids, r.LayerID+s)
	}
	return append(ids, r.LayerID)
}

// Registry holds records in registration order and mirrors removals and
// visibility changes onto the surface. Operations on unknown ids are
// no-ops. It is meant to be used from a single goroutine.
type Registry struct {
	surface mapsurface.Surface
	records []*Record
}

func NewRegistry(s mapsurface.Surface) *Registry {
	return &Registry{surface: s}
}

// Add registers a top-level record. It does not touch the surface. A
// record already registered under layerID is replaced.
func (r *Registry) Add(sourceID, layerID, name string, class Class, color string) Record {
	return r.add(&Record{SourceID: sourceID, LayerID: layerID, Name: name, Class: class, Visible: true, Color: color})
}

// AddChild registers a record that follows parentID on removal and
// visibility changes.
func (r *Registry) AddChild(parentID, sourceID, layerID, name string, class Class, color string) Record {
	return r.add(&Record{SourceID: sourceID, LayerID: layerID, Name: name, Class: class, Visible: true, Color: color, ParentID: parentID})
}

func (r *Registry) add(rec *Record) Record {
	if i := r.index(rec.LayerID); i >= 0 {
		log.Debug().Str("layer", rec.LayerID).Msg("replacing registry record")
		r.records = slices.Delete(r.records, i, i+1)
	}
	r.records = append(r.records, rec)
	return *rec
}

func (r *Registry) index(layerID string) int {
	return slices.IndexFunc(r.records, func(rec *Record) bool { return rec.LayerID == layerID })
}

// Get returns the record registered under layerID.
func (r *Registry) Get(layerID string) (Record, bool) {
	if i := r.index(layerID); i >= 0 {
		return *r.records[i], true
	}
	return Record{}, false
}

// Len counts every record, children included.
func (r *Registry) Len() int { return len(r.records) }

// All yields every record in registration order. The sequence reads the
// registry when iterated, so it can be ranged over again after changes.
func (r *Registry) All() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for _, rec := range r.records {
			if !yield(*rec) {
				return
			}
		}
	}
}

// TopLevel is All without child records.
func (r *Registry) TopLevel() iter.Seq[Record] {
	return func(yield func(Record) bool) {
		for rec := range r.All() {
			if rec.ParentID != "" {
				continue
			}
			if !yield(rec) {
				return
			}
		}
	}
}

// At returns the index-th top-level record.
func (r *Registry) At(index int) (Record, bool) {
	i := 0
	for rec := range r.TopLevel() {
		if i == index {
			return rec, true
		}
		i++
	}
	return Record{}, false
}

// RemoveAt removes the index-th top-level record.
func (r *Registry) RemoveAt(index int) bool {
	rec, ok := r.At(index)
	if !ok {
		log.Debug().Int("index", index).Msg("remove: no layer at index")
		return false
	}
	return r.Remove(rec.LayerID)
}

// Remove deletes the record, its children first, and every surface layer
// and the source it names. Missing surface objects are skipped.
func (r *Registry) Remove(layerID string) bool {
	i := r.index(layerID)
	if i < 0 {
		log.Debug().Str("layer", layerID).Msg("remove: unknown layer")
		return false
	}
	rec := r.records[i]
	for _, child := range r.children(layerID) {
		r.Remove(child.LayerID)
	}
	for _, id := range rec.SubLayers() {
		if _, ok := r.surface.GetLayer(id); !ok {
			continue
		}
		for _, ev := range []string{mapsurface.Click, mapsurface.MouseEnter, mapsurface.MouseLeave} {
			r.surface.Off(ev, id)
		}
		if err := r.surface.RemoveLayer(id); err != nil {
			log.Warn().Err(err).Str("layer", id).Msg("remove layer")
		}
	}
	// the record may have moved while children were removed
	r.records = slices.DeleteFunc(r.records, func(x *Record) bool { return x == rec })
	if _, ok := r.surface.GetSource(rec.SourceID); ok && !r.sourceShared(rec.SourceID) {
		if err := r.surface.RemoveSource(rec.SourceID); err != nil {
			log.Warn().Err(err).Str("source", rec.SourceID).Msg("remove source")
		}
	}
	log.Debug().Str("layer", layerID).Msg("layer removed")
	return true
}

func (r *Registry) children(parentID string) []*Record {
	var out []*Record
	for _, rec := range r.records {
		if rec.ParentID == parentID && rec.LayerID != parentID {
			out = append(out, rec)
		}
	}
	return out
}

func (r *Registry) sourceShared(sourceID string) bool {
	return slices.ContainsFunc(r.records, func(x *Record) bool { return x.SourceID == sourceID })
}

// SetVisible sets layout visibility on every existing sub-layer of the
// record and of its children, and updates their Visible flags.
func (r *Registry) SetVisible(layerID string, visible bool) bool {
	i := r.index(layerID)
	if i < 0 {
		log.Debug().Str("layer", layerID).Msg("visibility: unknown layer")
		return false
	}
	rec := r.records[i]
	value := mapsurface.Hidden
	if visible {
		value = mapsurface.Visible
	}
	for _, id := range rec.SubLayers() {
		if _, ok := r.surface.GetLayer(id); !ok {
			continue
		}
		if err := r.surface.SetLayoutProperty(id, mapsurface.Visibility, value); err != nil {
			log.Warn().Err(err).Str("layer", id).Msg("set visibility")
		}
	}
	rec.Visible = visible
	for _, child := range r.children(layerID) {
		r.SetVisible(child.LayerID, visible)
	}
	return true
}
