package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Jairajmehra/projects-api/internal/airtable"
)

// fakeFetcher serves canned records per table id and records the call order.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   []string
	records map[string][]airtable.Record
	err     error
	delay   time.Duration
}

func (f *fakeFetcher) FetchAll(ctx context.Context, t airtable.Table) ([]airtable.Record, error) {
	f.mu.Lock()
	f.calls = append(f.calls, t.ID)
	err := f.err
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.records[t.ID], nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) callOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeFetcher) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func testTables() Tables {
	return Tables{
		ResidentialProjects:   airtable.Table{Base: "inv", ID: "res_projects", View: "Production"},
		CommercialProjects:    airtable.Table{Base: "proj", ID: "com_projects"},
		ResidentialProperties: airtable.Table{Base: "inv", ID: "res_properties", View: "Production"},
		CommercialProperties:  airtable.Table{Base: "inv", ID: "com_properties", View: "Production"},
		Localities:            airtable.Table{Base: "inv", ID: "localities"},
	}
}

func testRecords() map[string][]airtable.Record {
	return map[string][]airtable.Record{
		"res_projects": {
			{ID: "rp1", Fields: map[string]any{
				"Project Name": "Kalhaar Blues",
				"RERA Number":  "RERA-1",
				"Photos":       "https://img/k1.jpg,https://img/k2.jpg",
			}},
			{ID: "rp2", Fields: map[string]any{"Project Name": "Aranya"}},
			{ID: "rpBroken"}, // no fields, formatter drops it
		},
		"com_projects": {
			{ID: "cp1", Fields: map[string]any{"Project Name": "West Gate", "Coordinates": "23.01,72.50"}},
		},
		"res_properties": {
			{ID: "rr1", Fields: map[string]any{
				"Property Name": "Unit 12",
				"RERA Number (from residential projects)": []any{"RERA-1"},
			}},
		},
		"com_properties": {
			{ID: "cc1", Fields: map[string]any{"Property Name": "Shop B", "Photos": "https://img/s1.jpg"}},
			{ID: "cc2", Fields: map[string]any{"Property Name": "Office 3"}},
		},
		"localities": {
			{ID: "l1", Fields: map[string]any{"Name": "bopal"}},
		},
	}
}

func waitReady(t *testing.T, s *Store) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Ready() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("store never became ready")
}

func TestEnsureInitialized_SinglePopulationRun(t *testing.T) {
	f := &fakeFetcher{records: testRecords(), delay: 10 * time.Millisecond}
	s := New(f, testTables(), 0)

	const callers = 50
	results := make([]bool, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = s.EnsureInitialized()
		}(i)
	}
	wg.Wait()
	// Population takes at least 50ms (five paced fetches); every caller got
	// the not-ready signal.
	for i, ok := range results {
		if ok {
			t.Errorf("caller %d saw ready before population completed", i)
		}
	}
	waitReady(t, s)

	want := []string{"res_projects", "com_projects", "res_properties", "com_properties", "localities"}
	got := f.callOrder()
	if len(got) != len(want) {
		t.Fatalf("fetch calls = %v, want exactly one run %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("fetch order = %v, want %v", got, want)
		}
	}
	if !s.EnsureInitialized() {
		t.Error("EnsureInitialized should report ready after population")
	}
	// Repeated triggers on a ready store never refetch.
	s.EnsureInitialized()
	if f.callCount() != 5 {
		t.Errorf("ready store refetched: %d calls", f.callCount())
	}
}

func TestPopulate_SnapshotContents(t *testing.T) {
	f := &fakeFetcher{records: testRecords()}
	s := New(f, testTables(), 0)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()

	if len(snap.ResidentialProjects) != 3 {
		t.Fatalf("residential projects = %d, want 3 (including nil slot)", len(snap.ResidentialProjects))
	}
	if snap.ResidentialProjects[2] != nil {
		t.Error("broken record should occupy a nil slot")
	}
	// Property photo backfill proves projects were formatted first.
	prop := snap.ResidentialProperties[0]
	if got := prop.Str("photos"); got != "https://img/k1.jpg" {
		t.Errorf("backfilled photo = %q, want first Kalhaar photo", got)
	}
	// Indices rebuilt from scratch with lowercased exact names.
	if got := snap.ResidentialNameIndex["kalhaar blues"]; len(got) != 1 || got[0] != 0 {
		t.Errorf("residential index entry = %v", got)
	}
	if got := snap.CommercialNameIndex["west gate"]; len(got) != 1 || got[0] != 0 {
		t.Errorf("commercial index entry = %v", got)
	}
	resCount, comCount := s.CacheSize()
	if resCount != 1 || comCount != 2 {
		t.Errorf("cache size = (%d,%d), want (1,2)", resCount, comCount)
	}
}

func TestPopulateFailure_ResetsAndRetries(t *testing.T) {
	f := &fakeFetcher{records: testRecords(), err: errors.New("airtable down")}
	s := New(f, testTables(), 0)

	if s.EnsureInitialized() {
		t.Fatal("fresh store cannot be ready")
	}
	// Wait for the failed run to settle, then heal the fetcher; the next
	// poll must be able to launch a fresh run because state reset to empty.
	deadline := time.Now().Add(2 * time.Second)
	for f.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	f.setErr(nil)
	for time.Now().Before(deadline) {
		if s.EnsureInitialized() {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	waitReady(t, s)
	if res, _ := s.CacheSize(); res != 1 {
		t.Errorf("retried population did not land: cache size %d", res)
	}
}

func TestRefresh_FailureKeepsPreviousSnapshot(t *testing.T) {
	f := &fakeFetcher{records: testRecords()}
	s := New(f, testTables(), 0)
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := s.Snapshot()

	f.setErr(errors.New("rate limited"))
	if err := s.Refresh(context.Background()); err == nil {
		t.Fatal("failed refresh must surface its error")
	}
	if s.Snapshot() != before {
		t.Error("failed refresh must not replace the snapshot")
	}
	if !s.Ready() {
		t.Error("failed refresh must not reset a ready store")
	}
}

func TestRefresh_RunsRegardlessOfState(t *testing.T) {
	f := &fakeFetcher{records: testRecords()}
	s := New(f, testTables(), 0)
	// Refresh on a never-initialized store populates synchronously.
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !s.Ready() {
		t.Fatal("refresh must leave the store ready")
	}
	calls := f.callCount()
	// And on a ready store it refetches everything.
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if f.callCount() != calls+5 {
		t.Errorf("second refresh made %d calls, want 5", f.callCount()-calls)
	}
}

func TestPause_CancelledContext(t *testing.T) {
	f := &fakeFetcher{records: testRecords()}
	s := New(f, testTables(), time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Refresh(ctx); err == nil {
		t.Error("refresh with cancelled context should fail during pacing")
	}
}
