package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrMalformedDocument marks a yearly or static document whose shape cannot
// be decoded. Callers treat it like any other failed fetch for that document.
var ErrMalformedDocument = errors.New("malformed document")

// CatastropheType is the closed set of event categories.
type CatastropheType string

const (
	CatastropheFlood        CatastropheType = "FLOOD"
	CatastropheForestFire   CatastropheType = "FOREST_FIRE"
	CatastropheViolentStorm CatastropheType = "VIOLENT_STORM"
	CatastropheTornado      CatastropheType = "TORNADO"
	CatastropheFreezingRain CatastropheType = "FREEZING_RAIN"
	CatastropheWinterStorm  CatastropheType = "WINTER_STORM"
	CatastropheStormWinds   CatastropheType = "STORM_WINDS"
	CatastropheHeatWave     CatastropheType = "HEAT_WAVE"
	CatastropheTicks        CatastropheType = "TICKS"

	// CatastropheUnknown covers unrecognized codes and doubles as the "mixed"
	// type of a group whose members do not share one type.
	CatastropheUnknown CatastropheType = "UNKNOWN"
)

// AllCatastropheTypes lists the known types in display order.
var AllCatastropheTypes = []CatastropheType{
	CatastropheFlood,
	CatastropheForestFire,
	CatastropheViolentStorm,
	CatastropheTornado,
	CatastropheFreezingRain,
	CatastropheWinterStorm,
	CatastropheStormWinds,
	CatastropheHeatWave,
	CatastropheTicks,
}

// ParseCatastropheType maps a type code to a CatastropheType. Codes are
// matched case-insensitively; anything else is CatastropheUnknown.
func ParseCatastropheType(code string) CatastropheType {
	t := CatastropheType(strings.ToUpper(strings.TrimSpace(code)))
	if slices.Contains(AllCatastropheTypes, t) {
		return t
	}
	return CatastropheUnknown
}

// Severity is ordered: Unknown < Minor < Moderate < Important < Extreme.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityMinor
	SeverityModerate
	SeverityImportant
	SeverityExtreme
)

// ParseSeverity converts the 0–4 integer used by the documents. Out of range
// values collapse to SeverityUnknown.
func ParseSeverity(v int) Severity {
	if v < int(SeverityUnknown) || v > int(SeverityExtreme) {
		return SeverityUnknown
	}
	return Severity(v)
}

func (s Severity) String() string {
	switch s {
	case SeverityMinor:
		return "minor"
	case SeverityModerate:
		return "moderate"
	case SeverityImportant:
		return "important"
	case SeverityExtreme:
		return "extreme"
	default:
		return "unknown"
	}
}

// MarshalText encodes the severity label.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity label. Unknown labels decode to SeverityUnknown.
func (s *Severity) UnmarshalText(text []byte) error {
	*s = SeverityUnknown
	for v := SeverityMinor; v <= SeverityExtreme; v++ {
		if strings.EqualFold(string(text), v.String()) {
			*s = v
			break
		}
	}
	return nil
}

// LatLng is a WGS-84 coordinate in (lat, lng) order.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CatastropheDocument is one raw event as published in a yearly document.
type CatastropheDocument struct {
	ID          string    `json:"id"`
	Location    []float64 `json:"location"` // [lng, lat]
	City        string    `json:"city"`
	Type        string    `json:"type"`
	Date        string    `json:"date"`
	Severity    int       `json:"severity"`
	District    int       `json:"district"`
	Approximate bool      `json:"approximate"`
}

// Catastrophe is a parsed event. It is never modified after parsing.
type Catastrophe struct {
	ID          string          `json:"id"`
	Location    LatLng          `json:"location"`
	City        string          `json:"city"`
	Type        CatastropheType `json:"type"`
	Date        string          `json:"date"`
	Severity    Severity        `json:"severity"`
	District    int             `json:"district"`
	Approximate bool            `json:"approximate"`
}

// OccurredAt parses the event date. The parser keeps the raw string, so a
// bad date only surfaces here.
func (c Catastrophe) OccurredAt() (time.Time, bool) {
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, c.Date); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseCatastrophe converts a raw document, swapping the coordinate pair to
// (lat, lng). Only the structure is checked; dates are not validated.
func ParseCatastrophe(doc CatastropheDocument) (Catastrophe, error) {
	if len(doc.Location) != 2 {
		return Catastrophe{}, fmt.Errorf("catastrophe %q: location has %d coordinates: %w",
			doc.ID, len(doc.Location), ErrMalformedDocument)
	}
	return Catastrophe{
		ID:          doc.ID,
		Location:    LatLng{Lat: doc.Location[1], Lng: doc.Location[0]},
		City:        doc.City,
		Type:        ParseCatastropheType(doc.Type),
		Date:        doc.Date,
		Severity:    ParseSeverity(doc.Severity),
		District:    doc.District,
		Approximate: doc.Approximate,
	}, nil
}

// ParseCatastrophes parses every document, failing on the first malformed one.
func ParseCatastrophes(docs []CatastropheDocument) ([]Catastrophe, error) {
	events := make([]Catastrophe, 0, len(docs))
	for i := range docs {
		c, err := ParseCatastrophe(docs[i])
		if err != nil {
			return nil, fmt.Errorf("catastrophe %d: %w", i, err)
		}
		events = append(events, c)
	}
	return events, nil
}

// TypeFilter selects catastrophe types. An empty filter selects everything.
type TypeFilter map[CatastropheType]struct{}

// NewTypeFilter builds a filter from the given types.
func NewTypeFilter(types ...CatastropheType) TypeFilter {
	f := make(TypeFilter, len(types))
	for _, t := range types {
		f[t] = struct{}{}
	}
	return f
}

// ParseTypeFilter reads a comma separated list of type codes, e.g.
// "FLOOD,TORNADO". Blank input yields the empty (match-all) filter.
func ParseTypeFilter(s string) (TypeFilter, error) {
	f := TypeFilter{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		t := ParseCatastropheType(part)
		if t == CatastropheUnknown && !strings.EqualFold(part, string(CatastropheUnknown)) {
			return nil, fmt.Errorf("unknown catastrophe type %q", part)
		}
		f[t] = struct{}{}
	}
	return f, nil
}

// Allows reports whether events of type t pass the filter.
func (f TypeFilter) Allows(t CatastropheType) bool {
	if len(f) == 0 {
		return true
	}
	_, ok := f[t]
	return ok
}

// Types returns the selected types sorted by code.
func (f TypeFilter) Types() []CatastropheType {
	types := make([]CatastropheType, 0, len(f))
	for t := range f {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// FilterCatastrophes keeps the events owned by district (0 = every district)
// whose type passes filter. The result is never nil and preserves order.
func FilterCatastrophes(events []Catastrophe, district int, filter TypeFilter) []Catastrophe {
	out := make([]Catastrophe, 0, len(events))
	for i := range events {
		if district != ProvinceID && events[i].District != district {
			continue
		}
		if !filter.Allows(events[i].Type) {
			continue
		}
		out = append(out, events[i])
	}
	return out
}

// FilterByType applies only the type predicate.
func FilterByType(events []Catastrophe, filter TypeFilter) []Catastrophe {
	return FilterCatastrophes(events, ProvinceID, filter)
}
