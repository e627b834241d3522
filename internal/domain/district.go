package domain

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// District is an electoral district as listed to users.
type District struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// DistrictMap holds the electoral map: district names and geometries.
type DistrictMap struct {
	sorted   []District
	geometry map[int]orb.Geometry
}

// DecodeDistrictMap reads a GeoJSON FeatureCollection whose features carry
// "id" and "name" properties. Features without a usable id are skipped; the
// returned count says how many.
func DecodeDistrictMap(data []byte) (*DistrictMap, int, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, 0, fmt.Errorf("decode district map: %w: %w", ErrMalformedDocument, err)
	}

	m := &DistrictMap{geometry: make(map[int]orb.Geometry, len(fc.Features))}
	skipped := 0
	var districts []District
	for _, f := range fc.Features {
		id, ok := propertyInt(f.Properties["id"])
		if !ok || id == ProvinceID {
			skipped++
			continue
		}
		if _, dup := m.geometry[id]; dup {
			skipped++
			continue
		}
		name, _ := f.Properties["name"].(string)
		m.geometry[id] = f.Geometry
		districts = append(districts, District{ID: id, Name: name})
	}
	m.sorted = sortDistricts(districts)
	return m, skipped, nil
}

// NewDistrictMap builds a map from already decoded districts and geometries.
func NewDistrictMap(districts []District, geometry map[int]orb.Geometry) *DistrictMap {
	g := make(map[int]orb.Geometry, len(geometry))
	for id, geom := range geometry {
		g[id] = geom
	}
	return &DistrictMap{sorted: sortDistricts(slices.Clone(districts)), geometry: g}
}

// Geometry returns the shape of district id.
func (m *DistrictMap) Geometry(id int) (orb.Geometry, bool) {
	if m == nil {
		return nil, false
	}
	g, ok := m.geometry[id]
	return g, ok && g != nil
}

// Districts returns every district ordered by name using French collation
// rules, ignoring case and accents.
func (m *DistrictMap) Districts() []District {
	if m == nil {
		return nil
	}
	return m.sorted
}

// Len is the number of districts.
func (m *DistrictMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.sorted)
}

func sortDistricts(districts []District) []District {
	// District names are French.
	c := collate.New(language.French, collate.Loose)
	slices.SortStableFunc(districts, func(a, b District) int {
		if r := c.CompareString(a.Name, b.Name); r != 0 {
			return r
		}
		return a.ID - b.ID
	})
	return districts
}

func propertyInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), n == float64(int(n))
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}
