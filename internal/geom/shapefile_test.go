package geom

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/klauspost/compress/zip"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writePoints writes a point shapefile with NAME and POP attributes and
// returns the .shp and .dbf contents.
func writePoints(t *testing.T, pts []shp.Point) (shpData, dbfData []byte) {
	t.Helper()
	base := filepath.Join(t.TempDir(), "pts.shp")
	w, err := shp.Create(base, shp.POINT)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.StringField("NAME", 16),
		shp.NumberField("POP", 8),
	}))
	for i := range pts {
		n := int(w.Write(&pts[i]))
		require.NoError(t, w.WriteAttribute(n, 0, "site"+string(rune('A'+i))))
		require.NoError(t, w.WriteAttribute(n, 1, (i+1)*100))
	}
	w.Close()

	shpData, err = os.ReadFile(base)
	require.NoError(t, err)
	// go-shp names the table by appending "dbf" to the stripped base name.
	dbfData, err = os.ReadFile(strings.TrimSuffix(base, ".shp") + "dbf")
	require.NoError(t, err)
	return shpData, dbfData
}

func zipEntries(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		f, err := zw.Create(name)
		require.NoError(t, err)
		_, err = f.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func samplePoints() []shp.Point {
	return []shp.Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 6}}
}

func TestShapefileZipPairsAttributes(t *testing.T) {
	shpData, dbfData := writePoints(t, samplePoints())
	archive := zipEntries(t, map[string][]byte{
		"data/PTS.SHP": shpData,
		"data/PTS.DBF": dbfData,
		"data/pts.prj": []byte("GEOGCS[]"),
	})

	fc, err := Decode(ZIP, archive)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	for i, f := range fc.Features {
		assert.NotEmpty(t, f.Properties, "feature %d", i)
	}
	assert.Equal(t, orb.Point{1, 2}, fc.Features[0].Geometry)
	assert.Equal(t, "siteA", fc.Features[0].Properties["NAME"])
	assert.Equal(t, 300.0, fc.Features[2].Properties["POP"])
}

func TestShapefileZipCountMismatch(t *testing.T) {
	shpData, _ := writePoints(t, samplePoints())
	_, dbfData := writePoints(t, samplePoints()[:2])
	archive := zipEntries(t, map[string][]byte{"a.shp": shpData, "a.dbf": dbfData})

	fc, err := Decode(ZIP, archive)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	for _, f := range fc.Features {
		assert.Empty(t, f.Properties)
	}
}

func TestShapefileZipIgnoresInflatedRecordCount(t *testing.T) {
	shpData, dbfData := writePoints(t, samplePoints())
	// dbf header: record count is a little-endian uint32 at offset 4.
	binary.LittleEndian.PutUint32(dbfData[4:8], 0x7FFFFFF0)
	archive := zipEntries(t, map[string][]byte{"a.shp": shpData, "a.dbf": dbfData})

	fc, err := Decode(ZIP, archive)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	for _, f := range fc.Features {
		assert.Empty(t, f.Properties)
	}
}

func TestShapefileBare(t *testing.T) {
	shpData, _ := writePoints(t, samplePoints())
	fc, err := Decode(Shapefile, shpData)
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)
	assert.Empty(t, fc.Features[1].Properties)
	assert.Equal(t, orb.Point{3, 4}, fc.Features[1].Geometry)
}

func TestShapefileZipWithoutShp(t *testing.T) {
	archive := zipEntries(t, map[string][]byte{"readme.txt": []byte("hi"), "x.dbf": {0}})
	_, err := DecodeShapefile(archive)
	var missing *MissingGeometryError
	require.ErrorAs(t, err, &missing)
	assert.True(t, strings.HasPrefix(err.Error(), "unable to process the file as shapefile/archive: "))
}

func TestShapefileGarbage(t *testing.T) {
	_, err := DecodeShapefile([]byte("definitely not a shapefile"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, err.Error(), "unable to process the file as shapefile/archive")

	_, err = DecodeShapefile(append([]byte{0x50, 0x4B, 0x03, 0x04}, make([]byte, 20)...))
	require.Error(t, err)
}

func TestShapefilePolyLines(t *testing.T) {
	base := filepath.Join(t.TempDir(), "lines.shp")
	w, err := shp.Create(base, shp.POLYLINE)
	require.NoError(t, err)
	w.Write(shp.NewPolyLine([][]shp.Point{{{X: 0, Y: 0}, {X: 1, Y: 1}}}))
	w.Write(shp.NewPolyLine([][]shp.Point{{{X: 0, Y: 0}, {X: 1, Y: 1}}, {{X: 2, Y: 2}, {X: 3, Y: 3}}}))
	w.Close()
	data, err := os.ReadFile(base)
	require.NoError(t, err)

	fc, err := Decode(Shapefile, data)
	require.NoError(t, err)
	require.Len(t, fc.Features, 2)
	assert.Equal(t, orb.LineString{{0, 0}, {1, 1}}, fc.Features[0].Geometry)
	assert.Equal(t, "MultiLineString", fc.Features[1].Geometry.GeoJSONType())
}

func TestPolygonRingGrouping(t *testing.T) {
	outer := []orb.Point{{0, 0}, {0, 10}, {10, 10}, {10, 0}, {0, 0}}    // clockwise
	hole := []orb.Point{{2, 2}, {4, 2}, {4, 4}, {2, 4}, {2, 2}}         // counter-clockwise
	other := []orb.Point{{20, 20}, {20, 30}, {30, 30}, {30, 20}, {20, 20}} // clockwise

	g := polygons([][]orb.Point{outer, hole})
	p, ok := g.(orb.Polygon)
	require.True(t, ok)
	assert.Len(t, p, 2)

	g = polygons([][]orb.Point{outer, other, hole})
	mp, ok := g.(orb.MultiPolygon)
	require.True(t, ok)
	require.Len(t, mp, 2)
	assert.Len(t, mp[0], 2)
	assert.Len(t, mp[1], 1)
}

func TestAttributeValue(t *testing.T) {
	assert.Equal(t, 12.5, attributeValue('N', " 12.5"))
	assert.Nil(t, attributeValue('N', ""))
	assert.Equal(t, true, attributeValue('L', "T"))
	assert.Nil(t, attributeValue('L', "?"))
	assert.Equal(t, "abc", attributeValue('C', "abc\x00\x00"))
}
