package domain

import "fmt"

// CatastropheGroup gathers events reported at the same coordinates,
// compared at 4 decimal places.
type CatastropheGroup struct {
	Location    LatLng          `json:"location"`
	City        string          `json:"city"`
	District    int             `json:"district"`
	Type        CatastropheType `json:"type"` // CatastropheUnknown when members differ
	MinSeverity Severity        `json:"min_severity"`
	MaxSeverity Severity        `json:"max_severity"`
	Approximate bool            `json:"approximate"`
	Events      []Catastrophe   `json:"events"`
}

// GroupCatastrophes groups events by rounded location. Groups come out in
// order of their first member and members keep input order. The first member
// provides the representative location, city and district.
func GroupCatastrophes(events []Catastrophe) []CatastropheGroup {
	index := make(map[string]int)
	groups := make([]CatastropheGroup, 0)

	for i := range events {
		e := events[i]
		key := locationKey(e.Location)
		gi, ok := index[key]
		if !ok {
			index[key] = len(groups)
			groups = append(groups, CatastropheGroup{
				Location:    e.Location,
				City:        e.City,
				District:    e.District,
				Type:        e.Type,
				MinSeverity: e.Severity,
				MaxSeverity: e.Severity,
				Approximate: e.Approximate,
				Events:      []Catastrophe{e},
			})
			continue
		}

		g := &groups[gi]
		g.Events = append(g.Events, e)
		if g.Type != e.Type {
			g.Type = CatastropheUnknown
		}
		g.MinSeverity = min(g.MinSeverity, e.Severity)
		g.MaxSeverity = max(g.MaxSeverity, e.Severity)
		g.Approximate = g.Approximate || e.Approximate
	}
	return groups
}

func locationKey(l LatLng) string {
	return fmt.Sprintf("%.4f|%.4f", l.Lat, l.Lng)
}
