package domain

import "fmt"

// Statistic names one field of RegionStatistics.
type Statistic string

const (
	StatAvgTemp        Statistic = "avg_temp"
	StatAvgPrec        Statistic = "avg_prec"
	StatAvgLiqPrec     Statistic = "avg_liq_prec"
	StatDaysAbove30    Statistic = "days_above_30"
	StatDaysBelowMin25 Statistic = "days_below_min_25"
	StatTempIncrease   Statistic = "temp_increase"
)

// ParseStatistic validates a statistic name.
func ParseStatistic(s string) (Statistic, error) {
	switch st := Statistic(s); st {
	case StatAvgTemp, StatAvgPrec, StatAvgLiqPrec, StatDaysAbove30, StatDaysBelowMin25, StatTempIncrease:
		return st, nil
	default:
		return "", fmt.Errorf("unknown statistic %q", s)
	}
}

// Value extracts the statistic from st; nil when the document left it out.
func (s Statistic) Value(st RegionStatistics) *float64 {
	switch s {
	case StatAvgTemp:
		return st.AvgTemp
	case StatAvgPrec:
		return st.AvgPrec
	case StatAvgLiqPrec:
		return st.AvgLiqPrec
	case StatDaysAbove30:
		return st.DaysAbove30
	case StatDaysBelowMin25:
		return st.DaysBelowMin25
	case StatTempIncrease:
		v := st.TempIncrease
		return &v
	}
	return nil
}

// SeriesPoint is one timeline year of a series. Value is nil when the year
// is not loaded or has no statistics for the district or its region.
type SeriesPoint struct {
	Year  int      `json:"year"`
	Value *float64 `json:"value"`
}

// Series returns stat for district over the whole timeline, one point per
// year in timeline order. Lookups use the same district-then-region
// fallback as Resolve.
func (r *Resolver) Series(district int, stat Statistic) []SeriesPoint {
	keys, _ := r.statisticKeys(district)
	points := make([]SeriesPoint, 0, len(r.Timeline))
	for _, year := range r.Timeline {
		p := SeriesPoint{Year: year}
		if r.Snapshots != nil {
			if snap, ok := r.Snapshots.Snapshot(year); ok && snap != nil {
				if st := lookupStatistics(snap, keys...); st != nil {
					p.Value = stat.Value(*st)
				}
			}
		}
		points = append(points, p)
	}
	return points
}
