// Package ingest turns files and URLs into map layers. Decoding runs
// wherever the caller likes; committing the result to the surface and the
// registry must happen on the goroutine that owns them.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"

	"geolayers/internal/geom"
	"geolayers/internal/layers"
	"geolayers/internal/mapsurface"
)

// Options configures a Controller. Zero values fall back to defaults.
type Options struct {
	Formats     []geom.Format // enabled formats; nil means all
	FitPadding  int
	MaxZoom     float64
	HTTPTimeout time.Duration
	Client      *http.Client
	Color       func() string // layer colour generator
}

// Controller is the ingestion orchestrator and the entry points the UI
// calls.
type Controller struct {
	surface  mapsurface.Surface
	registry *layers.Registry
	notifier Notifier

	formats []geom.Format
	client  *http.Client
	color   func() string
	fit     mapsurface.FitOptions

	unnamed int
}

func New(s mapsurface.Surface, reg *layers.Registry, n Notifier, opts Options) *Controller {
	if n == nil {
		n = nopNotifier{}
	}
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = 30 * time.Second
	}
	if opts.Client == nil {
		opts.Client = newClient(opts.HTTPTimeout)
	}
	if opts.Color == nil {
		opts.Color = RandomColor
	}
	if opts.MaxZoom <= 0 {
		opts.MaxZoom = 64
	}
	return &Controller{
		surface:  s,
		registry: reg,
		notifier: n,
		formats:  opts.Formats,
		client:   opts.Client,
		color:    opts.Color,
		fit:      mapsurface.FitOptions{Padding: opts.FitPadding, MaxZoom: opts.MaxZoom},
	}
}

// Formats returns the enabled formats.
func (c *Controller) Formats() []geom.Format {
	if c.formats == nil {
		return geom.Formats()
	}
	return c.formats
}

// RandomColor returns a random "#rrggbb" colour.
func RandomColor() string {
	return fmt.Sprintf("#%06x", rand.IntN(1<<24))
}

// File is a local file handed over by the UI.
type File struct {
	Name string
	Data []byte
}

// Loaded is the outcome of reading and decoding one input. Exactly one of
// Err, Table and Collection is set. Table means the CSV columns must be
// chosen before the import can finish.
type Loaded struct {
	Name       string
	Format     geom.Format
	Collection *geojson.FeatureCollection
	Table      *geom.Table
	Err        error
}

// Decode decodes data as format f. It touches no shared state.
func (c *Controller) Decode(name string, f geom.Format, data []byte) Loaded {
	l := Loaded{Name: name, Format: f}
	fc, err := geom.Decode(f, data)
	var cols *geom.ColumnsRequired
	switch {
	case errors.As(err, &cols):
		l.Table = cols.Table
	case err != nil:
		l.Err = err
	default:
		l.Collection = fc
	}
	return l
}

// LoadFile picks the format from the file extension and decodes data. The
// layer is named after the file up to its first dot.
func (c *Controller) LoadFile(fileName string, data []byte) Loaded {
	name := layerName(fileName)
	f, err := geom.FormatForFile(fileName, c.formats)
	if err != nil {
		return Loaded{Name: name, Err: err}
	}
	return c.Decode(name, f, data)
}

// ReadFile reads a file from disk and decodes it.
func (c *Controller) ReadFile(path string) Loaded {
	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{Name: layerName(filepath.Base(path)), Err: err}
	}
	return c.LoadFile(filepath.Base(path), data)
}

// Fetch downloads url and decodes it as the given format tag.
func (c *Controller) Fetch(ctx context.Context, url, format, name string) Loaded {
	f, err := geom.ParseFormat(format, c.formats)
	if err != nil {
		return Loaded{Name: name, Err: err}
	}
	data, err := get(ctx, c.client, url)
	if err != nil {
		return Loaded{Name: name, Format: f, Err: err}
	}
	return c.Decode(name, f, data)
}

func layerName(fileName string) string {
	name, _, _ := strings.Cut(fileName, ".")
	return name
}

// Begin shows a sticky loading message; Commit dismisses it.
func (c *Controller) Begin(text string) {
	c.notifier.Notify(Message{Text: text, Severity: Info, Sticky: true})
}

// Commit finishes an import on the owning goroutine. A CSV without
// detectable geocolumns returns *ColumnChoice and changes nothing; every
// other failure is reported as one message and returned.
func (c *Controller) Commit(l Loaded) error {
	c.notifier.Dismiss()
	switch {
	case l.Err != nil:
		c.fail(l.Name, l.Err)
		return l.Err
	case l.Table != nil:
		return &ColumnChoice{Pending: l}
	}
	_, err := c.AddCollection(l.Collection, l.Name)
	return err
}

// ResolveColumns resumes a suspended CSV import with the chosen columns.
func (c *Controller) ResolveColumns(pending Loaded, lat, lon string) error {
	if pending.Table == nil {
		return errors.New("no pending CSV import")
	}
	fc, err := geom.Collect(geom.CSV, pending.Table.Points(lat, lon))
	return c.Commit(Loaded{Name: pending.Name, Format: geom.CSV, Collection: fc, Err: err})
}

func (c *Controller) fail(name string, err error) {
	log.Error().Err(err).Str("layer", name).Msg("import failed")
	c.notifier.Notify(Message{Text: err.Error(), Severity: severityOf(err)})
}

// ImportLocalFile imports a file synchronously.
func (c *Controller) ImportLocalFile(f File) error {
	return c.Commit(c.LoadFile(f.Name, f.Data))
}

// ImportFromURL fetches and imports url synchronously. layerName may be
// empty.
func (c *Controller) ImportFromURL(ctx context.Context, url, format, layerName string) error {
	if strings.TrimSpace(url) == "" {
		err := errors.New("enter a valid URL")
		c.notifier.Notify(Message{Text: err.Error(), Severity: Error})
		return err
	}
	c.Begin("Loading " + url + "...")
	return c.Commit(c.Fetch(ctx, url, format, layerName))
}

// RemoveLayer removes the index-th top-level layer.
func (c *Controller) RemoveLayer(index int) bool {
	rec, ok := c.registry.At(index)
	if !ok || !c.registry.RemoveAt(index) {
		return false
	}
	c.notifier.LayersChanged()
	c.notifier.Notify(Message{Text: fmt.Sprintf("Layer %q removed successfully", rec.Name), Severity: Success})
	return true
}

// SetLayerVisible shows or hides a layer and its children.
func (c *Controller) SetLayerVisible(layerID string, visible bool) bool {
	if !c.registry.SetVisible(layerID, visible) {
		return false
	}
	c.notifier.LayersChanged()
	return true
}

// Registry exposes the layer records for display.
func (c *Controller) Registry() *layers.Registry { return c.registry }
