package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/climate-snapshot-service/internal/domain"
	"github.com/couchcryptid/climate-snapshot-service/internal/observability"
	"github.com/couchcryptid/climate-snapshot-service/internal/source"
	"github.com/couchcryptid/climate-snapshot-service/internal/store"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Publisher receives a report after each load or retry round.
type Publisher interface {
	Publish(ctx context.Context, report LoadReport) error
}

// Options tune a Loader.
type Options struct {
	ReferenceYear int
	Timeline      []int // ordered years scanned for crossings
	Threshold     float64
	Concurrency   int
	RetryFailed   bool
	Containment   domain.ContainmentMethod
	Clock         clockwork.Clock
}

// Loader fetches the static documents and every timeline year into the
// snapshot cache, then derives crossing years.
type Loader struct {
	src       source.Source
	cache     *store.SnapshotCache
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	opts      Options
	ready     atomic.Bool

	mu         sync.RWMutex
	regions    *domain.AdminIndex
	candidates *domain.CandidateDirectory
	districts  *domain.DistrictMap
}

// New creates a Loader. publisher may be nil.
func New(src source.Source, cache *store.SnapshotCache, publisher Publisher, logger *slog.Logger, metrics *observability.Metrics, opts Options) *Loader {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Containment == "" {
		opts.Containment = domain.ContainDistrict
	}
	return &Loader{
		src:        src,
		cache:      cache,
		publisher:  publisher,
		logger:     logger,
		metrics:    metrics,
		opts:       opts,
		regions:    domain.BuildIndex(nil),
		candidates: domain.NewCandidateDirectory(nil),
		districts:  domain.NewDistrictMap(nil, nil),
	}
}

// CheckReadiness returns nil once the first load has completed.
func (l *Loader) CheckReadiness(_ context.Context) error {
	if !l.ready.Load() {
		return errors.New("initial load has not completed yet")
	}
	return nil
}

// Ready reports whether the first load has completed.
func (l *Loader) Ready() bool {
	return l.ready.Load()
}

// Run loads everything, then keeps retrying failed and malformed years with
// exponential backoff until they load or ctx is cancelled.
func (l *Loader) Run(ctx context.Context) error {
	l.logger.Info("loader started",
		"reference_year", l.opts.ReferenceYear,
		"years", len(l.opts.Timeline),
		"concurrency", l.opts.Concurrency,
	)
	l.metrics.LoaderRunning.Set(1)
	defer l.metrics.LoaderRunning.Set(0)

	if _, err := l.Load(ctx); err != nil {
		if ctx.Err() != nil {
			l.logger.Info("loader stopping", "reason", ctx.Err())
			return nil
		}
		return err
	}
	if !l.opts.RetryFailed {
		return nil
	}

	backoff := initialBackoff
	for {
		pending := l.cache.YearsWithStatus(domain.StatusFailed, domain.StatusMalformed)
		if len(pending) == 0 {
			l.logger.Info("all years settled", "years", l.cache.Len())
			return nil
		}
		if !sleepWithContext(ctx, backoff) {
			l.logger.Info("loader stopping", "reason", ctx.Err(), "pending_years", len(pending))
			return nil
		}
		backoff = nextBackoff(backoff, maxBackoff)

		l.logger.Info("retrying years", "years", pending)
		if _, err := l.retry(ctx, pending); err != nil {
			return nil
		}
	}
}

// Load fetches the static documents and every year once. Per-year failures
// are recorded in the cache and the report; only ctx cancellation is
// returned as an error.
func (l *Loader) Load(ctx context.Context) (LoadReport, error) {
	l.loadStatic(ctx)

	ref := l.loadReference(ctx)
	summaries := []YearSummary{ref}
	summaries = append(summaries, l.loadYears(ctx, l.otherYears())...)
	if err := ctx.Err(); err != nil {
		return LoadReport{}, err
	}

	report := l.finish(ctx, summaries)
	l.ready.Store(true)
	l.logger.Info("load complete", "outcomes", report.Outcomes(), "crossings", len(report.Crossings))
	return report, nil
}

// retry reloads the given years. When the reference year recovers, every
// other year is rebuilt since their deltas depend on it.
func (l *Loader) retry(ctx context.Context, years []int) (LoadReport, error) {
	var summaries []YearSummary
	if slices.Contains(years, l.opts.ReferenceYear) {
		ref := l.loadReference(ctx)
		summaries = append(summaries, ref)
		if ref.Outcome == domain.StatusLoaded {
			years = l.otherYears()
		} else {
			years = slices.DeleteFunc(slices.Clone(years), func(y int) bool { return y == l.opts.ReferenceYear })
		}
	}
	summaries = append(summaries, l.loadYears(ctx, years)...)
	if err := ctx.Err(); err != nil {
		return LoadReport{}, err
	}
	return l.finish(ctx, summaries), nil
}

// Resolver returns a resolver over the current data.
func (l *Loader) Resolver() *domain.Resolver {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return &domain.Resolver{
		Snapshots:   l.cache,
		Regions:     l.regions,
		Candidates:  l.candidates,
		Districts:   l.districts,
		Crossings:   l.cache.Crossings(),
		Containment: l.opts.Containment,
		Timeline:    l.opts.Timeline,
	}
}

// Regions returns the administrative index.
func (l *Loader) Regions() *domain.AdminIndex {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.regions
}

// Districts returns the electoral map.
func (l *Loader) Districts() *domain.DistrictMap {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.districts
}

func (l *Loader) otherYears() []int {
	return slices.DeleteFunc(slices.Clone(l.opts.Timeline), func(y int) bool { return y == l.opts.ReferenceYear })
}

func (l *Loader) loadReference(ctx context.Context) YearSummary {
	return l.loadYear(ctx, l.opts.ReferenceYear, nil)
}

// loadYears fans the years out. Each goroutine writes only its own year.
func (l *Loader) loadYears(ctx context.Context, years []int) []YearSummary {
	ref, ok := l.cache.Snapshot(l.opts.ReferenceYear)
	if !ok || ref.Status != domain.StatusLoaded {
		ref = nil
	}

	summaries := make([]YearSummary, len(years))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Concurrency)
	for i, year := range years {
		g.Go(func() error {
			summaries[i] = l.loadYear(gctx, year, ref)
			return nil
		})
	}
	_ = g.Wait()
	return summaries
}

func (l *Loader) loadYear(ctx context.Context, year int, ref *domain.YearlySnapshot) YearSummary {
	start := time.Now()
	snap, err := l.fetchYear(ctx, year, ref)
	l.metrics.YearFetchDuration.Observe(time.Since(start).Seconds())
	if ctx.Err() != nil {
		// Leave the previous entry, if any, in place.
		return summarize(snap, err)
	}

	l.metrics.YearFetches.WithLabelValues(string(snap.Status)).Inc()
	switch snap.Status {
	case domain.StatusAbsent:
		l.logger.Debug("no document for year", "year", year)
	case domain.StatusFailed, domain.StatusMalformed:
		l.logger.Error("year load failed", "year", year, "outcome", snap.Status, "error", err)
	}
	l.cache.Put(snap)
	return summarize(snap, err)
}

func (l *Loader) fetchYear(ctx context.Context, year int, ref *domain.YearlySnapshot) (*domain.YearlySnapshot, error) {
	data, err := l.src.Fetch(ctx, source.YearDocument(year))
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			return domain.EmptySnapshot(year, domain.StatusAbsent), nil
		}
		return domain.EmptySnapshot(year, domain.StatusFailed), err
	}

	doc, err := domain.DecodeYearlyDocument(data)
	if err == nil {
		var snap *domain.YearlySnapshot
		if snap, err = domain.BuildSnapshot(year, doc, ref); err == nil {
			return snap, nil
		}
	}
	if inv, ok := l.src.(invalidator); ok {
		inv.Invalidate(source.YearDocument(year))
	}
	return domain.EmptySnapshot(year, domain.StatusMalformed), err
}

// invalidator is implemented by caching sources.
type invalidator interface {
	Invalidate(name string)
}

// finish recomputes crossings, refreshes gauges and publishes the report.
func (l *Loader) finish(ctx context.Context, summaries []YearSummary) LoadReport {
	crossings := domain.ComputeCrossings(l.cache, l.opts.Timeline, l.opts.Threshold)
	l.cache.SetCrossings(crossings)

	loaded, events := 0, 0
	for _, year := range l.cache.Years() {
		snap, _ := l.cache.Snapshot(year)
		if snap.Status == domain.StatusLoaded {
			loaded++
		}
		events += len(snap.Catastrophes)
	}
	l.metrics.LoadedYears.Set(float64(loaded))
	l.metrics.SnapshotEvents.Set(float64(events))
	l.metrics.RegionsCrossed.Set(float64(len(crossings)))

	slices.SortFunc(summaries, func(a, b YearSummary) int { return a.Year - b.Year })
	report := LoadReport{
		Years:       summaries,
		Crossings:   sortedCrossings(crossings),
		PublishedAt: l.opts.Clock.Now(),
	}

	if l.publisher != nil {
		if err := l.publisher.Publish(ctx, report); err != nil {
			l.metrics.PublishErrors.Inc()
			l.logger.Error("publish load report failed", "error", err, "years", len(report.Years))
		}
	}
	return report
}

func (l *Loader) loadStatic(ctx context.Context) {
	if regions, err := fetchStatic(ctx, l, source.RegionsDocument, domain.DecodeRegions); err == nil {
		idx := domain.BuildIndex(regions)
		for _, d := range idx.Duplicates() {
			l.logger.Warn("district claimed by several regions",
				"district", d.District, "kept_in", d.KeptIn, "ignored", d.Ignored)
		}
		l.mu.Lock()
		l.regions = idx
		l.mu.Unlock()
	}

	if candidates, err := fetchStatic(ctx, l, source.CandidatesDocument, domain.DecodeCandidates); err == nil {
		l.mu.Lock()
		l.candidates = domain.NewCandidateDirectory(candidates)
		l.mu.Unlock()
	}

	decodeMap := func(data []byte) (*domain.DistrictMap, error) {
		m, skipped, err := domain.DecodeDistrictMap(data)
		if err == nil && skipped > 0 {
			l.logger.Warn("skipped district features", "skipped", skipped)
		}
		return m, err
	}
	if districts, err := fetchStatic(ctx, l, source.DistrictsDocument, decodeMap); err == nil {
		l.mu.Lock()
		l.districts = districts
		l.mu.Unlock()
	}
}

func fetchStatic[T any](ctx context.Context, l *Loader, name string, decode func([]byte) (T, error)) (T, error) {
	var zero T
	data, err := l.src.Fetch(ctx, name)
	if err != nil {
		if errors.Is(err, source.ErrNotFound) {
			l.logger.Warn("static document missing", "document", name)
		} else {
			l.logger.Error("static document fetch failed", "document", name, "error", err)
		}
		return zero, err
	}
	v, err := decode(data)
	if err != nil {
		l.logger.Error("static document malformed", "document", name, "error", err)
		return zero, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func sortedCrossings(crossings map[int]int) []domain.Crossing {
	out := make([]domain.Crossing, 0, len(crossings))
	for _, region := range slices.Sorted(maps.Keys(crossings)) {
		out = append(out, domain.Crossing{Region: region, Year: crossings[region]})
	}
	return out
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
