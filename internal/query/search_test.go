package query

import (
	"testing"

	"github.com/Jairajmehra/projects-api/internal/listing"
)

func TestSearchByNamePrefix(t *testing.T) {
	collection := make([]listing.Entity, 8)
	collection[3] = listing.Entity{"name": "Kalhaar Blues"}
	collection[7] = listing.Entity{"name": "Kalptaru"}
	collection[5] = listing.Entity{"name": "West Gate"}
	index := map[string][]int{
		"kalptaru":      {7},
		"kalhaar blues": {3},
		"west gate":     {5},
	}

	got := SearchByNamePrefix(index, collection, "kal")
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	// Alphabetical by lowercased name, independent of index iteration order.
	if got[0].Name() != "Kalhaar Blues" || got[1].Name() != "Kalptaru" {
		t.Errorf("got [%q, %q], want sorted [Kalhaar Blues, Kalptaru]", got[0].Name(), got[1].Name())
	}

	if got := SearchByNamePrefix(index, collection, "xyz"); len(got) != 0 {
		t.Errorf("no-match search returned %d entities", len(got))
	}
	// Full-name term still matches as its own prefix.
	if got := SearchByNamePrefix(index, collection, "west gate"); len(got) != 1 {
		t.Errorf("exact-name search returned %d entities, want 1", len(got))
	}
}

func TestSearchByNamePrefix_DuplicatePositionsCollapse(t *testing.T) {
	collection := []listing.Entity{{"name": "Alpha"}}
	index := map[string][]int{
		"alpha": {0, 0},
	}
	if got := SearchByNamePrefix(index, collection, "al"); len(got) != 1 {
		t.Errorf("duplicate positions must collapse, got %d entities", len(got))
	}
}

func TestSearchByNamePrefix_StalePositionIgnored(t *testing.T) {
	collection := []listing.Entity{{"name": "Alpha"}}
	index := map[string][]int{"alpha": {0}, "beta": {9}}
	if got := SearchByNamePrefix(index, collection, ""); len(got) != 1 {
		t.Errorf("out-of-range positions must be skipped, got %d", len(got))
	}
}
