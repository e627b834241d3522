package domain

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const districtCollection = `{
  "type": "FeatureCollection",
  "features": [
    {"type":"Feature","properties":{"id":2,"name":"Verdun"},
     "geometry":{"type":"Polygon","coordinates":[[[0,0],[0,10],[10,10],[10,0],[0,0]]]}},
    {"type":"Feature","properties":{"id":"1","name":"Écully"},
     "geometry":{"type":"GeometryCollection","geometries":[
       {"type":"Polygon","coordinates":[[[20,20],[20,30],[30,30],[30,20],[20,20]]]}]}},
    {"type":"Feature","properties":{"id":3,"name":"abitibi-Est"},
     "geometry":{"type":"Polygon","coordinates":[[[40,40],[40,50],[50,50],[50,40],[40,40]]]}},
    {"type":"Feature","properties":{"name":"no id"},
     "geometry":{"type":"Point","coordinates":[1,1]}},
    {"type":"Feature","properties":{"id":2,"name":"Verdun again"},
     "geometry":{"type":"Point","coordinates":[1,1]}}
  ]
}`

func TestDecodeDistrictMap(t *testing.T) {
	m, skipped, err := DecodeDistrictMap([]byte(districtCollection))
	require.NoError(t, err)

	assert.Equal(t, 2, skipped)
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, []District{
		{ID: 3, Name: "abitibi-Est"},
		{ID: 1, Name: "Écully"},
		{ID: 2, Name: "Verdun"},
	}, m.Districts())

	g, ok := m.Geometry(1)
	require.True(t, ok)
	assert.Len(t, PolygonRings(g), 1)

	g, ok = m.Geometry(2)
	require.True(t, ok)
	assert.True(t, RingContains(PolygonRings(g)[0], orb.Point{5, 5}))

	_, ok = m.Geometry(99)
	assert.False(t, ok)
}

func TestDecodeDistrictMap_Malformed(t *testing.T) {
	_, _, err := DecodeDistrictMap([]byte(`{"type":"FeatureCollection","features":`))
	require.ErrorIs(t, err, ErrMalformedDocument)
}

func TestNewDistrictMap_SortsByCollation(t *testing.T) {
	m := NewDistrictMap([]District{
		{ID: 1, Name: "Rimouski"},
		{ID: 2, Name: "Îles-de-la-Madeleine"},
		{ID: 3, Name: "Chicoutimi"},
		{ID: 4, Name: "chicoutimi"},
	}, nil)

	assert.Equal(t, []District{
		{ID: 3, Name: "Chicoutimi"},
		{ID: 4, Name: "chicoutimi"},
		{ID: 2, Name: "Îles-de-la-Madeleine"},
		{ID: 1, Name: "Rimouski"},
	}, m.Districts())
}
