// Package cache holds the in-memory listing collections, their name-prefix
// indices, and the population lifecycle that builds them from Airtable.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/Jairajmehra/projects-api/internal/airtable"
	"github.com/Jairajmehra/projects-api/internal/listing"
	"github.com/Jairajmehra/projects-api/internal/logger"
	"github.com/Jairajmehra/projects-api/internal/metrics"
)

// Fetcher lists every raw record of one table. Satisfied by
// *airtable.Client; tests inject fakes.
type Fetcher interface {
	FetchAll(ctx context.Context, t airtable.Table) ([]airtable.Record, error)
}

// Tables names the five remote datasets the cache is built from.
type Tables struct {
	ResidentialProjects   airtable.Table
	CommercialProjects    airtable.Table
	ResidentialProperties airtable.Table
	CommercialProperties  airtable.Table
	Localities            airtable.Table
}

// Population lifecycle states. The only legal transitions are
// Empty->Loading (CAS by EnsureInitialized), Loading->Ready (successful
// population) and Loading->Empty (failed population, so a later call can
// retry).
const (
	StateEmpty int32 = iota
	StateLoading
	StateReady
)

// Snapshot is one immutable build of all five collections plus the two name
// indices. Readers get the whole struct through an atomic pointer and never
// observe a half-built cache. Collections may contain nil entries for records
// the formatter rejected; consumers skip them.
type Snapshot struct {
	ResidentialProjects   []listing.Entity
	CommercialProjects    []listing.Entity
	ResidentialProperties []listing.Entity
	CommercialProperties  []listing.Entity
	Localities            []listing.Entity
	ResidentialNameIndex  map[string][]int
	CommercialNameIndex   map[string][]int
}

func emptySnapshot() *Snapshot {
	return &Snapshot{
		ResidentialNameIndex: map[string][]int{},
		CommercialNameIndex:  map[string][]int{},
	}
}

// Store owns the cache state. Readers go through Snapshot(); the only writers
// are the one background population goroutine and Refresh.
type Store struct {
	fetcher Fetcher
	tables  Tables
	backoff time.Duration

	state atomic.Int32
	snap  atomic.Pointer[Snapshot]
}

// New builds an empty store. backoff is the pause between the sequential
// dataset fetches during population, pacing the remote source's rate limit.
func New(f Fetcher, tables Tables, backoff time.Duration) *Store {
	s := &Store{fetcher: f, tables: tables, backoff: backoff}
	s.snap.Store(emptySnapshot())
	return s
}

// Snapshot returns the current cache contents. The returned struct and its
// slices must not be mutated.
func (s *Store) Snapshot() *Snapshot { return s.snap.Load() }

// Ready reports whether population has completed.
func (s *Store) Ready() bool { return s.state.Load() == StateReady }

// CacheSize returns the residential and commercial property counts, the pair
// the status endpoint reports.
func (s *Store) CacheSize() (int, int) {
	snap := s.Snapshot()
	return len(snap.ResidentialProperties), len(snap.CommercialProperties)
}

// EnsureInitialized triggers population if it never ran. Returns true when
// the cache is ready, false otherwise; callers are never blocked and must
// poll again later. The Empty->Loading CAS guarantees at most one concurrent
// population run no matter how many callers race here.
func (s *Store) EnsureInitialized() bool {
	switch s.state.Load() {
	case StateReady:
		return true
	case StateLoading:
		return false
	}
	if !s.state.CompareAndSwap(StateEmpty, StateLoading) {
		// Lost the race; someone else is loading, or just finished.
		return s.state.Load() == StateReady
	}
	go s.populateInBackground()
	return false
}

// populateInBackground runs one population to completion. On failure the
// store resets to empty so a future EnsureInitialized can retry; the failure
// surfaces only through logs and the next readiness poll.
func (s *Store) populateInBackground() {
	t0 := time.Now()
	snap, err := s.populate(context.Background())
	if err != nil {
		logger.L().Error("cache_populate_error", "err", err)
		metrics.CacheBuildFailuresTotal.Inc()
		s.snap.Store(emptySnapshot())
		s.state.Store(StateEmpty)
		return
	}
	s.snap.Store(snap)
	s.state.Store(StateReady)
	metrics.CacheBuildsTotal.Inc()
	metrics.CacheBuildDurationMs.Observe(float64(time.Since(t0).Milliseconds()))
	logger.L().Info("cache_populate_done",
		"residential_projects", len(snap.ResidentialProjects),
		"commercial_projects", len(snap.CommercialProjects),
		"residential_properties", len(snap.ResidentialProperties),
		"commercial_properties", len(snap.CommercialProperties),
		"localities", len(snap.Localities),
		"duration_ms", time.Since(t0).Milliseconds(),
	)
}

// Refresh reruns population synchronously regardless of the current state
// (administrative trigger). The snapshot is swapped only on success; on
// failure the previous contents stay in place and the error goes back to the
// caller.
func (s *Store) Refresh(ctx context.Context) error {
	snap, err := s.populate(ctx)
	if err != nil {
		metrics.CacheBuildFailuresTotal.Inc()
		return err
	}
	s.snap.Store(snap)
	s.state.Store(StateReady)
	metrics.CacheBuildsTotal.Inc()
	return nil
}

// populate fetches the five datasets in a fixed order, formats them and
// builds the name indices. Residential projects must be formatted before
// residential properties: the property formatter reads the projects
// collection to backfill missing photos.
func (s *Store) populate(ctx context.Context) (*Snapshot, error) {
	resProjectRecs, err := s.fetch(ctx, "residential_projects", s.tables.ResidentialProjects)
	if err != nil {
		return nil, err
	}
	if err := s.pause(ctx); err != nil {
		return nil, err
	}
	comProjectRecs, err := s.fetch(ctx, "commercial_projects", s.tables.CommercialProjects)
	if err != nil {
		return nil, err
	}
	if err := s.pause(ctx); err != nil {
		return nil, err
	}
	resPropertyRecs, err := s.fetch(ctx, "residential_properties", s.tables.ResidentialProperties)
	if err != nil {
		return nil, err
	}
	if err := s.pause(ctx); err != nil {
		return nil, err
	}
	comPropertyRecs, err := s.fetch(ctx, "commercial_properties", s.tables.CommercialProperties)
	if err != nil {
		return nil, err
	}
	if err := s.pause(ctx); err != nil {
		return nil, err
	}
	localityRecs, err := s.fetch(ctx, "localities", s.tables.Localities)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{}
	snap.ResidentialProjects = formatAll("residential_projects", resProjectRecs, listing.FormatResidentialProject)
	snap.CommercialProjects = formatAll("commercial_projects", comProjectRecs, listing.FormatCommercialProject)
	snap.ResidentialProperties = formatAll("residential_properties", resPropertyRecs, func(rec airtable.Record) listing.Entity {
		return listing.FormatResidentialProperty(rec, snap.ResidentialProjects)
	})
	snap.CommercialProperties = formatAll("commercial_properties", comPropertyRecs, listing.FormatCommercialProperty)
	snap.Localities = formatAll("localities", localityRecs, listing.FormatLocality)
	snap.ResidentialNameIndex = BuildNameIndex(snap.ResidentialProjects)
	snap.CommercialNameIndex = BuildNameIndex(snap.CommercialProjects)
	return snap, nil
}

func (s *Store) fetch(ctx context.Context, dataset string, t airtable.Table) ([]airtable.Record, error) {
	t0 := time.Now()
	recs, err := s.fetcher.FetchAll(ctx, t)
	if err != nil {
		metrics.FetchFailuresTotal.WithLabelValues(dataset).Inc()
		logger.L().Error("cache_fetch_error", "dataset", dataset, "err", err)
		return nil, err
	}
	metrics.FetchDurationMs.WithLabelValues(dataset).Observe(float64(time.Since(t0).Milliseconds()))
	logger.L().Info("cache_fetch_done", "dataset", dataset, "records", len(recs), "duration_ms", time.Since(t0).Milliseconds())
	return recs, nil
}

// pause sleeps the configured inter-fetch backoff, aborting early if the
// context is cancelled.
func (s *Store) pause(ctx context.Context) error {
	if s.backoff <= 0 {
		return nil
	}
	select {
	case <-time.After(s.backoff):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// formatAll formats a raw record batch slot for slot. A record that fails to
// format, or whose formatter panics, becomes a nil entry; the batch is never
// aborted.
func formatAll(dataset string, recs []airtable.Record, f func(airtable.Record) listing.Entity) []listing.Entity {
	out := make([]listing.Entity, len(recs))
	for i, rec := range recs {
		out[i] = formatOne(dataset, rec, f)
	}
	return out
}

func formatOne(dataset string, rec airtable.Record, f func(airtable.Record) listing.Entity) (e listing.Entity) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("format_panic", "dataset", dataset, "record_id", rec.ID, "panic", r, "record", rec.Fields)
			metrics.FormatFailuresTotal.WithLabelValues(dataset).Inc()
			e = nil
		}
	}()
	e = f(rec)
	if e == nil {
		metrics.FormatFailuresTotal.WithLabelValues(dataset).Inc()
	}
	return e
}
