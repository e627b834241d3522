// Package source names the documents the service reads and the interface
// used to fetch them.
package source

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound means the document was never published. For a year this is the
// expected "no data" outcome rather than a failure.
var ErrNotFound = errors.New("document not found")

// Document names, relative to the data root.
const (
	RegionsDocument    = "regions.json"
	CandidatesDocument = "candidates.json"
	DistrictsDocument  = "districts.geojson"
)

// YearDocument is the name of the yearly document for year.
func YearDocument(year int) string {
	return fmt.Sprintf("yearly_data/%d.json", year)
}

// Source fetches raw documents by name. Implementations must be safe for
// concurrent use.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
}
