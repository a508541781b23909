package cache

import (
	"reflect"
	"testing"

	"github.com/Jairajmehra/projects-api/internal/listing"
)

func TestBuildNameIndex(t *testing.T) {
	entities := []listing.Entity{
		{"name": "Kalhaar Blues"},
		nil,
		{"name": "West Gate"},
		{"name": "kalhaar blues"},
		{"name": ""},
	}
	idx := BuildNameIndex(entities)
	if !reflect.DeepEqual(idx["kalhaar blues"], []int{0, 3}) {
		t.Errorf("kalhaar blues positions = %v, want [0 3]", idx["kalhaar blues"])
	}
	if !reflect.DeepEqual(idx["west gate"], []int{2}) {
		t.Errorf("west gate positions = %v, want [2]", idx["west gate"])
	}
	// Nil entries and blank names stay out of the index.
	if len(idx) != 2 {
		t.Errorf("index has %d keys, want 2: %v", len(idx), idx)
	}
}
