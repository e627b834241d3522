package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupCatastrophes(t *testing.T) {
	montreal := LatLng{Lat: 45.50884, Lng: -73.58781}
	nearMontreal := LatLng{Lat: 45.508841, Lng: -73.587812}
	quebec := LatLng{Lat: 46.81228, Lng: -71.21454}

	events := []Catastrophe{
		{ID: "1", Location: montreal, City: "Montréal", Type: CatastropheFlood, Severity: SeverityModerate},
		{ID: "2", Location: quebec, City: "Québec", Type: CatastropheTornado, Severity: SeverityMinor},
		{ID: "3", Location: nearMontreal, City: "Montréal", Type: CatastropheFlood, Severity: SeverityExtreme, Approximate: true},
		{ID: "4", Location: quebec, City: "Québec", Type: CatastropheHeatWave, Severity: SeverityImportant},
	}

	groups := GroupCatastrophes(events)
	require.Len(t, groups, 2)

	mtl := groups[0]
	assert.Equal(t, montreal, mtl.Location)
	assert.Equal(t, CatastropheFlood, mtl.Type)
	assert.Equal(t, SeverityModerate, mtl.MinSeverity)
	assert.Equal(t, SeverityExtreme, mtl.MaxSeverity)
	assert.True(t, mtl.Approximate)
	assert.Equal(t, []string{"1", "3"}, eventIDs(mtl.Events))

	qc := groups[1]
	assert.Equal(t, CatastropheUnknown, qc.Type, "mixed types")
	assert.Equal(t, SeverityMinor, qc.MinSeverity)
	assert.Equal(t, SeverityImportant, qc.MaxSeverity)
	assert.False(t, qc.Approximate)
}

func TestGroupCatastrophes_Empty(t *testing.T) {
	groups := GroupCatastrophes(nil)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}
