package query

import "github.com/Jairajmehra/projects-api/internal/listing"

// Page is one offset/limit slice of a collection. Overflow reports that the
// offset landed past the end; callers attach the informational message.
type Page struct {
	Items    []listing.Entity
	Total    int
	Limit    int
	Offset   int
	HasMore  bool
	Overflow bool
}

// Paginate slices items at [offset, offset+limit). Offset is clamped to >=0
// and limit to >=1; the flat listing paths deliberately have no upper limit
// clamp.
func Paginate(items []listing.Entity, limit, offset int) Page {
	limit = max(1, limit)
	offset = max(0, offset)
	p := Page{Total: len(items), Limit: limit, Offset: offset}
	if offset >= len(items) {
		p.Items = []listing.Entity{}
		p.Overflow = true
		return p
	}
	end := offset + limit
	if end > len(items) {
		p.Items = items[offset:]
		return p
	}
	p.Items = items[offset:end]
	p.HasMore = end < len(items)
	return p
}
