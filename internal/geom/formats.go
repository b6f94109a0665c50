package geom

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"

	"github.com/paulmach/orb/geojson"
)

// Format is a supported input format tag.
type Format string

const (
	GeoJSON   Format = "geojson"
	JSON      Format = "json"
	CSV       Format = "csv"
	GPX       Format = "gpx"
	KML       Format = "kml"
	Shapefile Format = "shp"
	ZIP       Format = "zip"
)

// Label is the human readable format name used in messages.
func (f Format) Label() string {
	switch f {
	case GeoJSON:
		return "GeoJSON"
	case JSON:
		return "JSON"
	case CSV:
		return "CSV"
	case GPX:
		return "GPX"
	case KML:
		return "KML"
	case Shapefile:
		return "shapefile"
	case ZIP:
		return "shapefile (ZIP)"
	}
	return string(f)
}

// Binary reports whether the format is read as raw bytes rather than text.
func (f Format) Binary() bool { return f == Shapefile || f == ZIP }

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decoder turns raw input into validation candidates.
type Decoder func(data []byte) ([]Candidate, error)

var decoders = map[Format]Decoder{
	GeoJSON:   DecodeGeoJSON,
	JSON:      DecodeGeoJSON,
	CSV:       DecodeCSV,
	GPX:       DecodeGPX,
	KML:       DecodeKML,
	Shapefile: DecodeShapefile,
	ZIP:       DecodeShapefile,
}

var order = []Format{GeoJSON, JSON, CSV, GPX, KML, Shapefile, ZIP}

// Formats returns every supported format in stable order.
func Formats() []Format { return slices.Clone(order) }

// Lookup returns the decoder registered for f.
func Lookup(f Format) (Decoder, bool) {
	d, ok := decoders[f]
	return d, ok
}

// ParseFormat resolves a tag (case-insensitive) against the enabled formats.
// A nil enabled list means every supported format.
func ParseFormat(tag string, enabled []Format) (Format, error) {
	if enabled == nil {
		enabled = order
	}
	f := Format(strings.ToLower(strings.TrimSpace(tag)))
	if _, ok := decoders[f]; !ok || !slices.Contains(enabled, f) {
		return "", &UnsupportedFormatError{Format: tag, Supported: slices.Clone(enabled)}
	}
	return f, nil
}

// FormatForFile picks the format from a file name's extension.
func FormatForFile(name string, enabled []Format) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	return ParseFormat(ext, enabled)
}

// Decode runs the decoder for f and validates its output. It fails with
// *EmptyResultError when no feature survives validation; for CSV input whose
// geocolumns cannot be detected it returns *ColumnsRequired.
func Decode(f Format, data []byte) (*geojson.FeatureCollection, error) {
	dec, ok := Lookup(f)
	if !ok {
		return nil, &UnsupportedFormatError{Format: string(f), Supported: Formats()}
	}
	if !f.Binary() {
		data = bytes.TrimPrefix(data, utf8BOM)
	}
	cands, err := dec(data)
	if err != nil {
		return nil, err
	}
	return Collect(f, cands)
}

// Collect validates candidates into a collection, failing when none survive.
func Collect(f Format, cands []Candidate) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	fc.Features = Validate(cands)
	if len(fc.Features) == 0 {
		return nil, &EmptyResultError{Format: f}
	}
	return fc, nil
}
