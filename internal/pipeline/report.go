package pipeline

import (
	"time"

	"github.com/couchcryptid/climate-snapshot-service/internal/domain"
)

// YearSummary describes the outcome of loading one year.
type YearSummary struct {
	Year     int               `json:"year"`
	Outcome  domain.LoadStatus `json:"outcome"`
	Events   int               `json:"events"`
	Regions  int               `json:"regions"`
	LoadedAt time.Time         `json:"loaded_at"`
	Error    string            `json:"error,omitempty"`
}

// LoadReport is emitted after each load or retry round.
type LoadReport struct {
	Years       []YearSummary     `json:"years"`
	Crossings   []domain.Crossing `json:"crossings"`
	PublishedAt time.Time         `json:"published_at"`
}

// Outcomes counts years per outcome.
func (r LoadReport) Outcomes() map[domain.LoadStatus]int {
	out := make(map[domain.LoadStatus]int)
	for _, y := range r.Years {
		out[y.Outcome]++
	}
	return out
}

func summarize(snap *domain.YearlySnapshot, err error) YearSummary {
	s := YearSummary{
		Year:     snap.Year,
		Outcome:  snap.Status,
		Events:   len(snap.Catastrophes),
		Regions:  len(snap.Statistics),
		LoadedAt: snap.LoadedAt,
	}
	if err != nil {
		s.Error = err.Error()
	}
	return s
}
