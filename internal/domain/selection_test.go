package domain

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(t *testing.T) *Resolver {
	t.Helper()

	ref := mustBuild(t, ReferenceYear, YearlyDocument{
		Statistics: map[string]RawStatistics{
			"0": {AvgTemp: ptr(4.0)},
			"1": {AvgTemp: ptr(5.0)},
			"2": {AvgTemp: ptr(3.0)},
		},
	}, nil)
	y2022 := mustBuild(t, 2022, YearlyDocument{
		Catastrophes: []CatastropheDocument{
			{ID: "flood-10", Location: []float64{5, 5}, Type: "FLOOD", District: 10},
			{ID: "tornado-10", Location: []float64{6, 6}, Type: "TORNADO", District: 10},
			{ID: "flood-20", Location: []float64{25, 25}, Type: "FLOOD", District: 20},
			{ID: "mistagged", Location: []float64{25, 26}, Type: "FLOOD", District: 10},
			{ID: "tagged-30", Location: []float64{45, 45}, Type: "HEAT_WAVE", District: 30},
		},
		Statistics: map[string]RawStatistics{
			"0":  {AvgTemp: ptr(5.0)},
			"1":  {AvgTemp: ptr(7.0)},
			"2":  {AvgTemp: ptr(3.5)},
			"20": {AvgTemp: ptr(8.0)},
		},
	}, ref)

	store := mapStore{ReferenceYear: ref, 2022: y2022}
	return &Resolver{
		Snapshots: store,
		Regions: BuildIndex([]AdminRegion{
			{ID: 1, Name: "Montérégie", Districts: []int{10, 20}},
			{ID: 2, Name: "Estrie", Districts: []int{30}},
		}),
		Candidates: NewCandidateDirectory([]Candidate{
			{Name: "A", Party: PartyQS, District: 10},
			{Name: "B", Party: PartyPQ, District: 20},
			{Name: "C", Party: PartyPLQ, District: 30},
		}),
		Districts: NewDistrictMap(
			[]District{{ID: 10, Name: "Dix"}, {ID: 20, Name: "Vingt"}},
			map[int]orb.Geometry{
				10: orb.Polygon{{{0, 0}, {0, 10}, {10, 10}, {10, 0}}},
				20: orb.Polygon{{{20, 20}, {20, 30}, {30, 30}, {30, 20}}},
			},
		),
		Crossings:   ComputeCrossings(store, DefaultTimeline(), CrossingThreshold),
		Containment: ContainDistrict,
	}
}

func TestResolve_Province(t *testing.T) {
	r := newTestResolver(t)
	view := r.Resolve(UserSelection{Year: 2022, District: ProvinceID})

	assert.True(t, view.Loaded)
	assert.Nil(t, view.Region)
	assert.NotNil(t, view.Types)
	assert.Empty(t, view.Types, "no filter selects every type")
	assert.Len(t, view.Catastrophes, 5)
	assert.Len(t, view.Candidates, 3)
	require.NotNil(t, view.Statistics)
	assert.InDelta(t, 1.0, view.Statistics.TempIncrease, 1e-9)
	assert.Nil(t, view.CrossingYear, "province only warmed by 1.0")
}

func TestResolve_DistrictByTag(t *testing.T) {
	r := newTestResolver(t)
	view := r.Resolve(UserSelection{Year: 2022, District: 10, Types: NewTypeFilter(CatastropheFlood)})

	require.NotNil(t, view.Region)
	assert.Equal(t, 1, view.Region.ID)
	assert.Equal(t, []CatastropheType{CatastropheFlood}, view.Types)
	assert.Equal(t, []string{"flood-10", "mistagged"}, eventIDs(view.Catastrophes))
	require.Len(t, view.Candidates, 1)
	assert.Equal(t, "A", view.Candidates[0].Name)

	require.NotNil(t, view.Statistics)
	assert.InDelta(t, 2.0, view.Statistics.TempIncrease, 1e-9, "falls back to region 1")
	require.NotNil(t, view.CrossingYear)
	assert.Equal(t, 2022, *view.CrossingYear)
}

func TestResolve_DistrictStatisticsPreferred(t *testing.T) {
	r := newTestResolver(t)
	view := r.Resolve(UserSelection{Year: 2022, District: 20})

	require.NotNil(t, view.Statistics)
	assert.Equal(t, 8.0, *view.Statistics.AvgTemp)
	assert.Zero(t, view.Statistics.TempIncrease, "district 20 has no reference value")
	require.NotNil(t, view.CrossingYear)
	assert.Equal(t, 2022, *view.CrossingYear, "crossing comes from region 1")
}

func TestResolve_DistrictByGeometry(t *testing.T) {
	r := newTestResolver(t)
	r.Containment = ContainGeometry

	view := r.Resolve(UserSelection{Year: 2022, District: 20})
	assert.Equal(t, []string{"flood-20", "mistagged"}, eventIDs(view.Catastrophes))

	view = r.Resolve(UserSelection{Year: 2022, District: 10, Types: NewTypeFilter(CatastropheTornado)})
	assert.Equal(t, []string{"tornado-10"}, eventIDs(view.Catastrophes))

	// District 30 has a tagged event but no shape.
	view = r.Resolve(UserSelection{Year: 2022, District: 30})
	assert.NotNil(t, view.Catastrophes)
	assert.Empty(t, view.Catastrophes)
	require.NotNil(t, view.Region)
	assert.Equal(t, 2, view.Region.ID)
	assert.Nil(t, view.CrossingYear)
}

func TestResolve_DistrictByTagIgnoresShapes(t *testing.T) {
	r := newTestResolver(t)
	view := r.Resolve(UserSelection{Year: 2022, District: 30})
	assert.Equal(t, []string{"tagged-30"}, eventIDs(view.Catastrophes))
}

func TestResolve_MissingYear(t *testing.T) {
	r := newTestResolver(t)
	view := r.Resolve(UserSelection{Year: 2050, District: 10})

	assert.False(t, view.Loaded)
	assert.NotNil(t, view.Catastrophes)
	assert.Empty(t, view.Catastrophes)
	assert.Empty(t, view.Candidates)
	assert.Nil(t, view.Statistics)
	assert.Nil(t, view.CrossingYear)
}

func TestResolve_UnknownDistrict(t *testing.T) {
	r := newTestResolver(t)
	view := r.Resolve(UserSelection{Year: 2022, District: 99})

	assert.True(t, view.Loaded)
	assert.Nil(t, view.Region)
	assert.Empty(t, view.Catastrophes)
	assert.Nil(t, view.Statistics)
}

func TestResolve_Idempotent(t *testing.T) {
	r := newTestResolver(t)
	sel := UserSelection{Year: 2022, District: 10, Types: NewTypeFilter(CatastropheFlood)}
	assert.Equal(t, r.Resolve(sel), r.Resolve(sel))
}

func TestParseContainmentMethod(t *testing.T) {
	m, err := ParseContainmentMethod("geometry")
	require.NoError(t, err)
	assert.Equal(t, ContainGeometry, m)

	_, err = ParseContainmentMethod("nearest")
	require.Error(t, err)
}
