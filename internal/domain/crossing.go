package domain

// CrossingThreshold is the warming, in °C over the reference year, that marks
// a region's crossing year.
const CrossingThreshold = 1.5

// ComputeCrossings scans years in the given order and records, per region,
// the first year whose temperature delta is at least threshold. Years
// missing from the store are skipped. Recorded years are never overwritten.
func ComputeCrossings(store SnapshotStore, orderedYears []int, threshold float64) map[int]int {
	crossings := make(map[int]int)
	for _, year := range orderedYears {
		snap, ok := store.Snapshot(year)
		if !ok {
			continue
		}
		for region, st := range snap.Statistics {
			if _, done := crossings[region]; done {
				continue
			}
			if st.TempIncrease >= threshold {
				crossings[region] = year
			}
		}
	}
	return crossings
}

// Crossing pairs a region with its crossing year.
type Crossing struct {
	Region int `json:"region"`
	Year   int `json:"year"`
}
