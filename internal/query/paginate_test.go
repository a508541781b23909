package query

import (
	"fmt"
	"testing"

	"github.com/Jairajmehra/projects-api/internal/listing"
)

func TestPaginate(t *testing.T) {
	var items []listing.Entity
	for i := 0; i < 25; i++ {
		items = append(items, listing.Entity{"name": fmt.Sprintf("e%d", i)})
	}

	p := Paginate(items, 12, 0)
	if p.Total != 25 || len(p.Items) != 12 || !p.HasMore || p.Overflow {
		t.Fatalf("page 1: total=%d len=%d hasMore=%v overflow=%v", p.Total, len(p.Items), p.HasMore, p.Overflow)
	}
	p2 := Paginate(items, 12, 12)
	if len(p2.Items) != 12 || !p2.HasMore {
		t.Fatalf("page 2: len=%d hasMore=%v", len(p2.Items), p2.HasMore)
	}
	// Consecutive pages are disjoint and ordered: together they are the
	// first 24 items.
	for i := 0; i < 12; i++ {
		if p.Items[i].Name() != fmt.Sprintf("e%d", i) || p2.Items[i].Name() != fmt.Sprintf("e%d", i+12) {
			t.Fatalf("pagination not stable at %d", i)
		}
	}
	p3 := Paginate(items, 12, 24)
	if len(p3.Items) != 1 || p3.HasMore {
		t.Fatalf("page 3: len=%d hasMore=%v", len(p3.Items), p3.HasMore)
	}
}

func TestPaginate_OffsetOverflow(t *testing.T) {
	items := []listing.Entity{{"name": "only"}}
	p := Paginate(items, 12, 5)
	if !p.Overflow || len(p.Items) != 0 || p.HasMore {
		t.Errorf("overflow: overflow=%v len=%d hasMore=%v", p.Overflow, len(p.Items), p.HasMore)
	}
	if p.Total != 1 {
		t.Errorf("overflow total = %d, want 1", p.Total)
	}
}

func TestPaginate_Clamps(t *testing.T) {
	items := []listing.Entity{{"name": "a"}, {"name": "b"}}
	p := Paginate(items, 0, -3)
	if p.Limit != 1 || p.Offset != 0 {
		t.Errorf("clamps: limit=%d offset=%d, want (1,0)", p.Limit, p.Offset)
	}
	// The flat path deliberately has no upper limit clamp.
	p = Paginate(items, 10000, 0)
	if p.Limit != 10000 || len(p.Items) != 2 {
		t.Errorf("no upper clamp expected: limit=%d len=%d", p.Limit, len(p.Items))
	}
}
