package geom

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wellFormed3 = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": 7, "geometry": {"type": "Point", "coordinates": [1, 2]}, "properties": {"name": "a"}},
    {"type": "Feature", "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}, "properties": {"name": "b"}},
    {"type": "Feature", "geometry": {"type": "MultiPolygon", "coordinates": [[[[0, 0], [1, 0], [1, 1], [0, 0]]]]}, "properties": {}}
  ]
}`

func TestValidateRoundTrip(t *testing.T) {
	cands, err := DecodeGeoJSON([]byte(wellFormed3))
	require.NoError(t, err)

	got := Validate(cands)
	want, err := geojson.UnmarshalFeatureCollection([]byte(wellFormed3))
	require.NoError(t, err)

	require.Len(t, got, len(want.Features))
	for i := range got {
		assert.Equal(t, want.Features[i].Geometry, got[i].Geometry, "feature %d", i)
		assert.Equal(t, want.Features[i].Properties, got[i].Properties, "feature %d", i)
	}
	assert.EqualValues(t, 7, got[0].ID)
}

func TestValidatePromotesBareGeometry(t *testing.T) {
	got := Validate([]Candidate{
		&GeometryCandidate{Geometry: RawGeometry{Type: "Point", Coordinates: []any{3.0, 4.0}}},
	})
	require.Len(t, got, 1)
	assert.Equal(t, orb.Point{3, 4}, got[0].Geometry)
	assert.NotNil(t, got[0].Properties)
	assert.Empty(t, got[0].Properties)
}

func TestValidateDropsMalformed(t *testing.T) {
	cases := map[string]Candidate{
		"nil candidate":       nil,
		"nil feature":         (*FeatureCandidate)(nil),
		"invalid":             &InvalidCandidate{Reason: "x"},
		"no geometry":         &FeatureCandidate{},
		"unknown type":        &FeatureCandidate{Geometry: &RawGeometry{Type: "Circle", Coordinates: []any{1.0, 2.0}}},
		"collection type":     &FeatureCandidate{Geometry: &RawGeometry{Type: "GeometryCollection", Coordinates: []any{}}},
		"missing coordinates": &FeatureCandidate{Geometry: &RawGeometry{Type: "Point"}},
		"short point":         &FeatureCandidate{Geometry: &RawGeometry{Type: "Point", Coordinates: []any{1.0}}},
		"string in point":     &FeatureCandidate{Geometry: &RawGeometry{Type: "Point", Coordinates: []any{1.0, "2"}}},
		"flat line":           &FeatureCandidate{Geometry: &RawGeometry{Type: "LineString", Coordinates: []any{1.0, 2.0}}},
		"empty line":          &FeatureCandidate{Geometry: &RawGeometry{Type: "LineString", Coordinates: []any{}}},
		"polygon one level":   &FeatureCandidate{Geometry: &RawGeometry{Type: "Polygon", Coordinates: []any{[]any{1.0, 2.0}}}},
		"multipolygon rings":  &FeatureCandidate{Geometry: &RawGeometry{Type: "MultiPolygon", Coordinates: []any{[]any{[]any{1.0, 2.0}}}}},
		"typed mismatch":      &FeatureCandidate{Geometry: &RawGeometry{Type: "Polygon", Coordinates: orb.Point{1, 2}}},
		"typed empty":         &FeatureCandidate{Geometry: &RawGeometry{Type: "LineString", Coordinates: orb.LineString{}}},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Empty(t, Validate([]Candidate{c}))
		})
	}
}

func TestValidateKeepsOrderAmongSurvivors(t *testing.T) {
	pt := func(x float64) Candidate {
		return &FeatureCandidate{Geometry: &RawGeometry{Type: "Point", Coordinates: []any{x, 0.0}}}
	}
	got := Validate([]Candidate{pt(1), &InvalidCandidate{}, pt(2), nil, pt(3)})
	require.Len(t, got, 3)
	for i, f := range got {
		assert.Equal(t, orb.Point{float64(i + 1), 0}, f.Geometry)
	}
}

func TestValidateAcceptsAltitude(t *testing.T) {
	got := Validate([]Candidate{
		&FeatureCandidate{Geometry: &RawGeometry{Type: "Point", Coordinates: []any{1.0, 2.0, 300.0}}},
	})
	require.Len(t, got, 1)
	assert.Equal(t, orb.Point{1, 2}, got[0].Geometry)
}

func TestCollectEmpty(t *testing.T) {
	bad := `{"type":"FeatureCollection","features":[
	  {"type":"Feature","geometry":{"type":"Polygon","coordinates":[[1,2]]},"properties":{}}]}`
	_, err := Decode(GeoJSON, []byte(bad))
	var empty *EmptyResultError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, GeoJSON, empty.Format)
	assert.EqualError(t, err, "no valid data found in GeoJSON")
}
