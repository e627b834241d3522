package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIndex(t *testing.T) {
	idx := BuildIndex([]AdminRegion{
		{ID: 1, Name: "Capitale-Nationale", Districts: []int{10, 20}},
		{ID: 2, Name: "Estrie", Districts: []int{30}},
	})

	r, ok := idx.FindRegion(20)
	require.True(t, ok)
	assert.Equal(t, 1, r.ID)

	r, ok = idx.FindRegion(30)
	require.True(t, ok)
	assert.Equal(t, 2, r.ID)

	_, ok = idx.FindRegion(99)
	assert.False(t, ok)

	_, ok = idx.FindRegion(ProvinceID)
	assert.False(t, ok)

	r, ok = idx.Region(2)
	require.True(t, ok)
	assert.Equal(t, "Estrie", r.Name)
	assert.Empty(t, idx.Duplicates())
}

func TestBuildIndex_DuplicateDistrictFirstWins(t *testing.T) {
	idx := BuildIndex([]AdminRegion{
		{ID: 1, Districts: []int{10}},
		{ID: 2, Districts: []int{10, 11}},
	})

	r, ok := idx.FindRegion(10)
	require.True(t, ok)
	assert.Equal(t, 1, r.ID)
	assert.Equal(t, []DuplicateDistrict{{District: 10, KeptIn: 1, Ignored: 2}}, idx.Duplicates())

	r, ok = idx.FindRegion(11)
	require.True(t, ok)
	assert.Equal(t, 2, r.ID)
}

func TestAdminIndex_NilSafe(t *testing.T) {
	var idx *AdminIndex
	_, ok := idx.FindRegion(1)
	assert.False(t, ok)
	assert.Nil(t, idx.Regions())
}

func TestDecodeRegions(t *testing.T) {
	regions, err := DecodeRegions([]byte(`[{"id":3,"name":"Outaouais","districts":[51,52]}]`))
	require.NoError(t, err)
	assert.Equal(t, []AdminRegion{{ID: 3, Name: "Outaouais", Districts: []int{51, 52}}}, regions)

	_, err = DecodeRegions([]byte(`{"id":3}`))
	require.ErrorIs(t, err, ErrMalformedDocument)
}
