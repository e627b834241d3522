package domain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Timeline bounds: observed years run continuously, then jump to modeled
// scenario years.
const (
	minContinuousYear = ReferenceYear
	maxContinuousYear = 2035
)

var modeledYears = []int{2050, 2100}

// Years outside [MinTimelineYear, MaxTimelineYear] are rejected by ParseTimeline.
const (
	MinTimelineYear = 1800
	MaxTimelineYear = 2200
)

// DefaultTimeline returns 1990..2035 followed by the modeled years.
func DefaultTimeline() []int {
	years := make([]int, 0, maxContinuousYear-minContinuousYear+1+len(modeledYears))
	for y := minContinuousYear; y <= maxContinuousYear; y++ {
		years = append(years, y)
	}
	return append(years, modeledYears...)
}

// ParseTimeline reads a list of years and inclusive ranges, for example
// "1990-2035,2050,2100". The result is sorted and deduplicated.
func ParseTimeline(s string) ([]int, error) {
	var years []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, isRange := strings.Cut(part, "-")
		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("timeline entry %q: %w", part, err)
		}
		to := from
		if isRange {
			to, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("timeline entry %q: %w", part, err)
			}
			if to < from {
				return nil, fmt.Errorf("timeline entry %q: range is reversed", part)
			}
		}
		if from < MinTimelineYear || to > MaxTimelineYear {
			return nil, fmt.Errorf("timeline entry %q: years must lie in %d-%d", part, MinTimelineYear, MaxTimelineYear)
		}
		for y := from; y <= to; y++ {
			years = append(years, y)
		}
	}
	if len(years) == 0 {
		return nil, fmt.Errorf("timeline is empty")
	}
	slices.Sort(years)
	return slices.Compact(years), nil
}
