package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/climate-snapshot-service/internal/domain"
	"github.com/couchcryptid/climate-snapshot-service/internal/source"
)

var errValidationFailed = errors.New("validation failed")

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the published documents for integrity problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(os.Stderr)
			if err != nil {
				return err
			}
			src, err := newSource(cfg, logger)
			if err != nil {
				return err
			}
			if !runValidate(cmd.Context(), src, cfg.Timeline, cmd.OutOrStdout()) {
				return errValidationFailed
			}
			return nil
		},
	}
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// dataset is everything validate managed to decode.
type dataset struct {
	regions    *domain.AdminIndex
	candidates []domain.Candidate
	districts  *domain.DistrictMap
	years      map[int]domain.YearlyDocument
	absent     int
}

func runValidate(ctx context.Context, src source.Source, timeline []int, out io.Writer) bool {
	fmt.Fprintln(out, "=== Climate Data Integrity Validation ===")
	fmt.Fprintln(out)

	data := &dataset{years: make(map[int]domain.YearlyDocument)}
	phases := []*phase{
		validateStatic(ctx, src, data),
		validateYears(ctx, src, timeline, data),
		validateCatastrophes(data),
		validateMembership(data),
	}

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(out, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Documents: %d regions, %d candidates, %d districts, %d years loaded, %d years absent\n",
		len(data.regions.Regions()), len(data.candidates), data.districts.Len(), len(data.years), data.absent)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(out, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(out, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(out, "\nAll validations passed.")
		return true
	}
	fmt.Fprintln(out, "\nValidation FAILED.")
	return false
}

func validateStatic(ctx context.Context, src source.Source, data *dataset) *phase {
	p := &phase{name: "Phase 1: Static documents"}
	data.regions = domain.BuildIndex(nil)
	data.districts = domain.NewDistrictMap(nil, nil)

	raw, err := src.Fetch(ctx, source.RegionsDocument)
	if err != nil {
		p.errorf("%s: %v", source.RegionsDocument, err)
	} else if regions, err := domain.DecodeRegions(raw); err != nil {
		p.errorf("%s: %v", source.RegionsDocument, err)
	} else {
		data.regions = domain.BuildIndex(regions)
	}

	raw, err = src.Fetch(ctx, source.CandidatesDocument)
	switch {
	case errors.Is(err, source.ErrNotFound):
	case err != nil:
		p.errorf("%s: %v", source.CandidatesDocument, err)
	default:
		if data.candidates, err = domain.DecodeCandidates(raw); err != nil {
			p.errorf("%s: %v", source.CandidatesDocument, err)
		}
	}

	raw, err = src.Fetch(ctx, source.DistrictsDocument)
	switch {
	case errors.Is(err, source.ErrNotFound):
	case err != nil:
		p.errorf("%s: %v", source.DistrictsDocument, err)
	default:
		districts, skipped, err := domain.DecodeDistrictMap(raw)
		if err != nil {
			p.errorf("%s: %v", source.DistrictsDocument, err)
			break
		}
		data.districts = districts
		if skipped > 0 {
			p.errorf("%s: %d features without a usable id", source.DistrictsDocument, skipped)
		}
	}
	return p
}

func validateYears(ctx context.Context, src source.Source, timeline []int, data *dataset) *phase {
	p := &phase{name: "Phase 2: Yearly documents"}
	for _, year := range timeline {
		raw, err := src.Fetch(ctx, source.YearDocument(year))
		if errors.Is(err, source.ErrNotFound) {
			data.absent++
			continue
		}
		if err != nil {
			p.errorf("year %d: %v", year, err)
			continue
		}
		doc, err := domain.DecodeYearlyDocument(raw)
		if err != nil {
			p.errorf("year %d: %v", year, err)
			continue
		}
		if _, err := domain.BuildSnapshot(year, doc, nil); err != nil {
			p.errorf("year %d: %v", year, err)
			continue
		}
		data.years[year] = doc
	}
	return p
}

func validateCatastrophes(data *dataset) *phase {
	p := &phase{name: "Phase 3: Catastrophe fields"}
	for _, year := range sortedYears(data.years) {
		seen := make(map[string]bool)
		for i, doc := range data.years[year].Catastrophes {
			label := fmt.Sprintf("year %d event %d (%q)", year, i, doc.ID)
			if doc.ID == "" {
				p.errorf("%s: empty id", label)
			} else if seen[doc.ID] {
				p.errorf("%s: duplicate id", label)
			}
			seen[doc.ID] = true

			if doc.Severity < int(domain.SeverityUnknown) || doc.Severity > int(domain.SeverityExtreme) {
				p.errorf("%s: severity %d out of range", label, doc.Severity)
			}
			if domain.ParseCatastropheType(doc.Type) == domain.CatastropheUnknown {
				p.errorf("%s: unknown type %q", label, doc.Type)
			}
			if len(doc.Location) == 2 && doc.Location[0] == 0 && doc.Location[1] == 0 {
				p.errorf("%s: location is (0, 0)", label)
			}
			event, err := domain.ParseCatastrophe(doc)
			if err == nil {
				if _, ok := event.OccurredAt(); !ok {
					p.errorf("%s: unparseable date %q", label, doc.Date)
				}
			}
		}
	}
	return p
}

func validateMembership(data *dataset) *phase {
	p := &phase{name: "Phase 4: District membership"}
	for _, d := range data.regions.Duplicates() {
		p.errorf("district %d listed in regions %d and %d", d.District, d.KeptIn, d.Ignored)
	}
	for _, year := range sortedYears(data.years) {
		for _, doc := range data.years[year].Catastrophes {
			if doc.District == domain.ProvinceID {
				continue
			}
			if _, ok := data.regions.FindRegion(doc.District); !ok {
				p.errorf("year %d event %q: district %d belongs to no region", year, doc.ID, doc.District)
			}
		}
	}
	for _, c := range data.candidates {
		if _, ok := data.regions.FindRegion(c.District); !ok {
			p.errorf("candidate %q: district %d belongs to no region", c.Name, c.District)
		}
		if !c.Party.Known() {
			p.errorf("candidate %q: unknown party", c.Name)
		}
	}
	if data.districts.Len() > 0 {
		for _, region := range data.regions.Regions() {
			for _, id := range region.Districts {
				if _, ok := data.districts.Geometry(id); !ok {
					p.errorf("region %d: district %d has no shape", region.ID, id)
				}
			}
		}
	}
	return p
}

func sortedYears(years map[int]domain.YearlyDocument) []int {
	return slices.Sorted(maps.Keys(years))
}
