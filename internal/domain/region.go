package domain

import (
	"encoding/json"
	"fmt"
)

// ProvinceID is the reserved id meaning "no district filter". It doubles as
// the key of the province-wide statistics entry.
const ProvinceID = 0

// AdminRegion is an administrative region and the districts it contains.
type AdminRegion struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Districts []int  `json:"districts"`
}

// DuplicateDistrict records a district claimed by more than one region.
type DuplicateDistrict struct {
	District int
	KeptIn   int // region id that owns the district in the index
	Ignored  int // region id whose claim was dropped
}

// AdminIndex maps district ids to their owning region. It is read-only after
// BuildIndex returns and safe for concurrent readers.
type AdminIndex struct {
	regions    []AdminRegion
	byDistrict map[int]int // district id -> position in regions
	byID       map[int]int
	duplicates []DuplicateDistrict
}

// BuildIndex flattens every (region, district) pair into a direct lookup.
// When a district appears in several regions the first region in load order
// keeps it; later claims are recorded in Duplicates.
func BuildIndex(regions []AdminRegion) *AdminIndex {
	idx := &AdminIndex{
		regions:    regions,
		byDistrict: make(map[int]int),
		byID:       make(map[int]int, len(regions)),
	}
	for ri := range regions {
		if _, ok := idx.byID[regions[ri].ID]; !ok {
			idx.byID[regions[ri].ID] = ri
		}
		for _, d := range regions[ri].Districts {
			if d == ProvinceID {
				continue
			}
			if owner, ok := idx.byDistrict[d]; ok {
				idx.duplicates = append(idx.duplicates, DuplicateDistrict{
					District: d,
					KeptIn:   regions[owner].ID,
					Ignored:  regions[ri].ID,
				})
				continue
			}
			idx.byDistrict[d] = ri
		}
	}
	return idx
}

// FindRegion returns the region that owns district.
func (idx *AdminIndex) FindRegion(district int) (AdminRegion, bool) {
	if idx == nil {
		return AdminRegion{}, false
	}
	ri, ok := idx.byDistrict[district]
	if !ok {
		return AdminRegion{}, false
	}
	return idx.regions[ri], true
}

// Region looks a region up by its own id.
func (idx *AdminIndex) Region(id int) (AdminRegion, bool) {
	if idx == nil {
		return AdminRegion{}, false
	}
	ri, ok := idx.byID[id]
	if !ok {
		return AdminRegion{}, false
	}
	return idx.regions[ri], true
}

// Regions returns the regions in load order.
func (idx *AdminIndex) Regions() []AdminRegion {
	if idx == nil {
		return nil
	}
	return idx.regions
}

// Duplicates lists the data-quality violations found while indexing.
func (idx *AdminIndex) Duplicates() []DuplicateDistrict {
	if idx == nil {
		return nil
	}
	return idx.duplicates
}

// DecodeRegions decodes the administrative region list.
func DecodeRegions(data []byte) ([]AdminRegion, error) {
	var regions []AdminRegion
	if err := json.Unmarshal(data, &regions); err != nil {
		return nil, fmt.Errorf("decode regions: %w: %w", ErrMalformedDocument, err)
	}
	return regions, nil
}
