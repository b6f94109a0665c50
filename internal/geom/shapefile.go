package geom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/klauspost/compress/zip"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/rs/zerolog/log"
)

var zipMagic = []byte{0x50, 0x4B, 0x03, 0x04}

const shpFileCode = 9994

// DecodeShapefile accepts a ZIP archive holding a .shp (and optionally a
// .dbf) or a bare .shp stream. Attributes are paired with geometries only
// when both sequences have the same length. Every failure is wrapped with
// the shapefile prefix.
func DecodeShapefile(data []byte) ([]Candidate, error) {
	var shpData, dbfData []byte
	if bytes.HasPrefix(data, zipMagic) {
		var err error
		shpData, dbfData, err = unpackArchive(data)
		if err != nil {
			return nil, shapefileError(err)
		}
	} else {
		shpData = data
	}
	if len(shpData) < 100 || binary.BigEndian.Uint32(shpData) != shpFileCode {
		return nil, shapefileError(&ParseError{Format: Shapefile, Err: errors.New("bad file code")})
	}
	cands, err := assemble(shpData, dbfData)
	if err != nil {
		return nil, shapefileError(err)
	}
	return cands, nil
}

// unpackArchive returns the first .shp and .dbf payloads of the archive.
func unpackArchive(data []byte) (shpData, dbfData []byte, err error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, err
	}
	var shpFile, dbfFile *zip.File
	for _, f := range zr.File {
		base := path.Base(f.Name)
		if f.FileInfo().IsDir() || strings.HasPrefix(base, "._") {
			continue
		}
		switch strings.ToLower(path.Ext(base)) {
		case ".shp":
			if shpFile == nil {
				shpFile = f
			}
		case ".dbf":
			if dbfFile == nil {
				dbfFile = f
			}
		}
	}
	if shpFile == nil {
		return nil, nil, &MissingGeometryError{}
	}
	if shpData, err = readZipFile(shpFile); err != nil {
		return nil, nil, err
	}
	if dbfFile != nil {
		if dbfData, err = readZipFile(dbfFile); err != nil {
			log.Warn().Err(err).Str("entry", dbfFile.Name).Msg("unable to read attribute table, importing geometry only")
			dbfData = nil
		}
	}
	return shpData, dbfData, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("inflate %s: %w", f.Name, err)
	}
	return b, nil
}

// assemble stages the payloads on disk so go-shp's random-access Reader can
// check the attribute count before reading any rows.
func assemble(shpData, dbfData []byte) (cands []Candidate, err error) {
	dir, err := os.MkdirTemp("", "geolayers-shp-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	shpPath := filepath.Join(dir, "layer.shp")
	if err := os.WriteFile(shpPath, shpData, 0o600); err != nil {
		return nil, err
	}
	if dbfData != nil {
		if err := os.WriteFile(filepath.Join(dir, "layer.dbf"), dbfData, 0o600); err != nil {
			return nil, err
		}
	}

	r, err := shp.Open(shpPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	// go-shp panics on truncated records instead of reporting them.
	defer func() {
		if p := recover(); p != nil {
			cands, err = nil, fmt.Errorf("corrupt geometry record: %v", p)
		}
	}()

	for r.Next() {
		_, s := r.Shape()
		cands = append(cands, &FeatureCandidate{Geometry: typed(shapeGeometry(s)), Properties: map[string]any{}})
	}
	if err := r.Err(); err != nil {
		return nil, err
	}

	if dbfData != nil {
		attachAttributes(r, cands)
	}
	return cands, nil
}

func attachAttributes(r *shp.Reader, cands []Candidate) {
	if r.Fields() == nil {
		log.Warn().Msg("unreadable dbf header, importing geometry only")
		return
	}
	// The record count comes from the dbf header and is not trusted.
	if n := r.AttributeCount(); n != len(cands) {
		log.Warn().Int("shapes", len(cands)).Int("records", n).
			Msg("shapefile attribute count mismatch, importing geometry only")
		return
	}
	rows, err := readAttributes(r, len(cands))
	if err != nil {
		log.Warn().Err(err).Msg("unable to parse attribute table, importing geometry only")
		return
	}
	for i, c := range cands {
		c.(*FeatureCandidate).Properties = rows[i]
	}
}

func readAttributes(r *shp.Reader, n int) (rows []map[string]any, err error) {
	defer func() {
		if p := recover(); p != nil {
			rows, err = nil, fmt.Errorf("corrupt attribute record: %v", p)
		}
	}()
	fields := r.Fields()
	rows = make([]map[string]any, n)
	for i := range n {
		row := make(map[string]any, len(fields))
		for j, f := range fields {
			row[f.String()] = attributeValue(f.Fieldtype, r.ReadAttribute(i, j))
		}
		rows[i] = row
	}
	return rows, nil
}

// attributeValue types a dbf cell by its field type.
func attributeValue(kind byte, raw string) any {
	s := strings.TrimSpace(strings.Trim(raw, "\x00"))
	switch kind {
	case 'N', 'F':
		if s == "" {
			return nil
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return v
		}
		return nil
	case 'L':
		switch s {
		case "T", "t", "Y", "y":
			return true
		case "F", "f", "N", "n":
			return false
		}
		return nil
	}
	return s
}

// shapeGeometry converts a shape record; Z and M values are dropped.
// Null and unsupported shapes give nil.
func shapeGeometry(s shp.Shape) orb.Geometry {
	switch s := s.(type) {
	case *shp.Point:
		return orb.Point{s.X, s.Y}
	case *shp.PointZ:
		return orb.Point{s.X, s.Y}
	case *shp.PointM:
		return orb.Point{s.X, s.Y}
	case *shp.MultiPoint:
		return multiPoint(s.Points)
	case *shp.MultiPointZ:
		return multiPoint(s.Points)
	case *shp.MultiPointM:
		return multiPoint(s.Points)
	case *shp.PolyLine:
		return lines(parts(s.Parts, s.Points))
	case *shp.PolyLineZ:
		return lines(parts(s.Parts, s.Points))
	case *shp.PolyLineM:
		return lines(parts(s.Parts, s.Points))
	case *shp.Polygon:
		return polygons(parts(s.Parts, s.Points))
	case *shp.PolygonZ:
		return polygons(parts(s.Parts, s.Points))
	case *shp.PolygonM:
		return polygons(parts(s.Parts, s.Points))
	}
	return nil
}

func multiPoint(pts []shp.Point) orb.Geometry {
	mp := make(orb.MultiPoint, len(pts))
	for i, p := range pts {
		mp[i] = orb.Point{p.X, p.Y}
	}
	return mp
}

// parts splits a flat point array at the part start offsets.
func parts(starts []int32, pts []shp.Point) [][]orb.Point {
	out := make([][]orb.Point, 0, len(starts))
	for i, start := range starts {
		end := int32(len(pts))
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		if start < 0 || start > end || end > int32(len(pts)) {
			continue
		}
		part := make([]orb.Point, 0, end-start)
		for _, p := range pts[start:end] {
			part = append(part, orb.Point{p.X, p.Y})
		}
		out = append(out, part)
	}
	return out
}

func lines(ps [][]orb.Point) orb.Geometry {
	switch len(ps) {
	case 0:
		return nil
	case 1:
		return orb.LineString(ps[0])
	}
	mls := make(orb.MultiLineString, len(ps))
	for i, p := range ps {
		mls[i] = orb.LineString(p)
	}
	return mls
}

// polygons groups rings into polygons: clockwise rings are outer rings and
// counter-clockwise rings are holes of the outer ring containing them. Holes
// with no enclosing outer ring become polygons of their own.
func polygons(ps [][]orb.Point) orb.Geometry {
	var (
		out   orb.MultiPolygon
		holes []orb.Ring
	)
	for _, p := range ps {
		r := orb.Ring(p)
		if len(r) == 0 {
			continue
		}
		if r.Orientation() == orb.CW {
			out = append(out, orb.Polygon{r})
		} else {
			holes = append(holes, r)
		}
	}
	for _, h := range holes {
		placed := false
		for i := range out {
			if planar.RingContains(out[i][0], h[0]) {
				out[i] = append(out[i], h)
				placed = true
				break
			}
		}
		if !placed {
			out = append(out, orb.Polygon{h})
		}
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	}
	return out
}
