package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"
)

// ReferenceYear is the baseline for temperature deltas.
const ReferenceYear = 1990

// LoadStatus describes how a year's snapshot came to be.
type LoadStatus string

const (
	StatusLoaded    LoadStatus = "loaded"
	StatusAbsent    LoadStatus = "absent"    // no document published for the year
	StatusFailed    LoadStatus = "failed"    // fetch failed
	StatusMalformed LoadStatus = "malformed" // document could not be decoded
)

// RawStatistics is a region entry of the yearly document. Every field may be null.
type RawStatistics struct {
	AvgTemp        *float64 `json:"avg_temp"`
	AvgPrec        *float64 `json:"avg_prec"`
	AvgLiqPrec     *float64 `json:"avg_liq_prec"`
	DaysAbove30    *float64 `json:"days_above_30"`
	DaysBelowMin25 *float64 `json:"days_below_min_25"`
}

// RegionStatistics are the statistics of one region for one year.
// TempIncrease is always set; see the package documentation.
type RegionStatistics struct {
	AvgTemp        *float64 `json:"avg_temp,omitempty"`
	AvgPrec        *float64 `json:"avg_prec,omitempty"`
	AvgLiqPrec     *float64 `json:"avg_liq_prec,omitempty"`
	DaysAbove30    *float64 `json:"days_above_30,omitempty"`
	DaysBelowMin25 *float64 `json:"days_below_min_25,omitempty"`
	TempIncrease   float64  `json:"temp_increase"`
}

// YearlyDocument is the decoded, not yet validated, per-year document.
type YearlyDocument struct {
	Catastrophes []CatastropheDocument   `json:"catastrophes"`
	Statistics   map[string]RawStatistics `json:"statistics"`
}

// YearlySnapshot is the parsed dataset for one year. A snapshot is owned by
// the cache entry holding it and is never modified once built.
type YearlySnapshot struct {
	Year         int                      `json:"year"`
	Status       LoadStatus               `json:"status"`
	Catastrophes []Catastrophe            `json:"catastrophes"`
	Statistics   map[int]RegionStatistics `json:"statistics"`
	LoadedAt     time.Time                `json:"loaded_at"`
}

// DecodeYearlyDocument decodes the raw JSON of a yearly document.
func DecodeYearlyDocument(data []byte) (YearlyDocument, error) {
	var doc YearlyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return YearlyDocument{}, fmt.Errorf("decode yearly document: %w: %w", ErrMalformedDocument, err)
	}
	return doc, nil
}

// BuildSnapshot parses the events of doc and derives each region's
// temperature delta against reference. Statistic fields are copied verbatim.
// The delta is current minus reference average temperature when both exist,
// and 0 otherwise. A nil reference yields 0 for every region, which is what
// the reference year itself gets.
func BuildSnapshot(year int, doc YearlyDocument, reference *YearlySnapshot) (*YearlySnapshot, error) {
	events, err := ParseCatastrophes(doc.Catastrophes)
	if err != nil {
		return nil, fmt.Errorf("year %d: %w", year, err)
	}

	stats := make(map[int]RegionStatistics, len(doc.Statistics))
	for key, raw := range doc.Statistics {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("year %d: statistics key %q: %w", year, key, ErrMalformedDocument)
		}
		stats[id] = RegionStatistics{
			AvgTemp:        raw.AvgTemp,
			AvgPrec:        raw.AvgPrec,
			AvgLiqPrec:     raw.AvgLiqPrec,
			DaysAbove30:    raw.DaysAbove30,
			DaysBelowMin25: raw.DaysBelowMin25,
			TempIncrease:   temperatureDelta(raw.AvgTemp, reference, id),
		}
	}

	return &YearlySnapshot{
		Year:         year,
		Status:       StatusLoaded,
		Catastrophes: events,
		Statistics:   stats,
		LoadedAt:     clock.Now(),
	}, nil
}

// EmptySnapshot stands in for a year whose document could not be used.
func EmptySnapshot(year int, status LoadStatus) *YearlySnapshot {
	return &YearlySnapshot{
		Year:         year,
		Status:       status,
		Catastrophes: []Catastrophe{},
		Statistics:   map[int]RegionStatistics{},
		LoadedAt:     clock.Now(),
	}
}

func temperatureDelta(current *float64, reference *YearlySnapshot, region int) float64 {
	if current == nil || reference == nil {
		return 0
	}
	ref, ok := reference.Statistics[region]
	if !ok || ref.AvgTemp == nil {
		return 0
	}
	return *current - *ref.AvgTemp
}

// RegionStatistics returns the statistics recorded under id.
func (s *YearlySnapshot) RegionStatistics(id int) (RegionStatistics, bool) {
	if s == nil {
		return RegionStatistics{}, false
	}
	st, ok := s.Statistics[id]
	return st, ok
}

// RegionIDs returns the ids with statistics, sorted ascending.
func (s *YearlySnapshot) RegionIDs() []int {
	if s == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(s.Statistics))
}

// SnapshotStore gives read access to snapshots by year. A missing year means
// it has not been loaded yet.
type SnapshotStore interface {
	Snapshot(year int) (*YearlySnapshot, bool)
}
