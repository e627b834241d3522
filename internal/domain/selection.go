package domain

import "fmt"

// ContainmentMethod selects how events are matched to a district.
type ContainmentMethod string

const (
	// ContainDistrict trusts the district id each event is tagged with.
	ContainDistrict ContainmentMethod = "district"
	// ContainGeometry tests event coordinates against the district shape.
	ContainGeometry ContainmentMethod = "geometry"
)

// ParseContainmentMethod validates a containment method name.
func ParseContainmentMethod(s string) (ContainmentMethod, error) {
	switch m := ContainmentMethod(s); m {
	case ContainDistrict, ContainGeometry:
		return m, nil
	default:
		return "", fmt.Errorf("unknown containment method %q", s)
	}
}

// UserSelection is what the user is looking at.
type UserSelection struct {
	Year     int
	District int // ProvinceID for the whole province
	Types    TypeFilter
}

// RegionSnapshot is the consolidated view for a selection.
type RegionSnapshot struct {
	Year         int               `json:"year"`
	District     int               `json:"district"`
	Region       *AdminRegion      `json:"region,omitempty"`
	Loaded       bool              `json:"loaded"`
	Types        []CatastropheType `json:"types"` // active filter, empty for all types
	Catastrophes []Catastrophe     `json:"catastrophes"`
	Statistics   *RegionStatistics `json:"statistics,omitempty"`
	Candidates   []Candidate       `json:"candidates"`
	CrossingYear *int              `json:"crossing_year,omitempty"`
}

// Resolver derives RegionSnapshot views from loaded data. It holds no state
// of its own; Resolve is a pure function of its fields and the selection.
type Resolver struct {
	Snapshots   SnapshotStore
	Regions     *AdminIndex
	Candidates  *CandidateDirectory
	Districts   *DistrictMap
	Crossings   map[int]int
	Containment ContainmentMethod
	Timeline    []int // ordered years covered by Series
}

// Resolve builds the view for sel. A year with no snapshot gives an empty
// view. For a district, statistics and the crossing year are looked up under
// the district id first and then under its owning region.
func (r *Resolver) Resolve(sel UserSelection) RegionSnapshot {
	view := RegionSnapshot{
		Year:         sel.Year,
		District:     sel.District,
		Types:        sel.Types.Types(),
		Catastrophes: []Catastrophe{},
		Candidates:   []Candidate{},
	}
	if r.Snapshots == nil {
		return view
	}
	snap, ok := r.Snapshots.Snapshot(sel.Year)
	if !ok || snap == nil {
		return view
	}
	view.Loaded = true

	if sel.District == ProvinceID {
		view.Catastrophes = FilterByType(snap.Catastrophes, sel.Types)
		view.Candidates = r.Candidates.ByDistrict(ProvinceID)
		view.Statistics = lookupStatistics(snap, ProvinceID)
		view.CrossingYear = r.lookupCrossing(ProvinceID)
		return view
	}

	keys, region := r.statisticKeys(sel.District)
	view.Region = region
	view.Catastrophes = r.districtEvents(snap.Catastrophes, sel)
	view.Candidates = r.Candidates.ByDistrict(sel.District)
	view.Statistics = lookupStatistics(snap, keys...)
	view.CrossingYear = r.lookupCrossing(keys...)
	return view
}

func (r *Resolver) districtEvents(events []Catastrophe, sel UserSelection) []Catastrophe {
	if r.Containment == ContainGeometry {
		// A district without a known shape contains nothing.
		g, _ := r.Districts.Geometry(sel.District)
		return FilterByType(FilterByGeometry(events, g), sel.Types)
	}
	return FilterCatastrophes(events, sel.District, sel.Types)
}

// statisticKeys lists the statistics keys for district, most specific
// first, along with the owning region if any.
func (r *Resolver) statisticKeys(district int) ([]int, *AdminRegion) {
	if district == ProvinceID {
		return []int{ProvinceID}, nil
	}
	region, ok := r.Regions.FindRegion(district)
	if !ok {
		return []int{district}, nil
	}
	return []int{district, region.ID}, &region
}

func lookupStatistics(snap *YearlySnapshot, keys ...int) *RegionStatistics {
	for _, k := range keys {
		if st, ok := snap.RegionStatistics(k); ok {
			return &st
		}
	}
	return nil
}

func (r *Resolver) lookupCrossing(keys ...int) *int {
	for _, k := range keys {
		if y, ok := r.Crossings[k]; ok {
			return &y
		}
	}
	return nil
}
