package query

import "github.com/Jairajmehra/projects-api/internal/listing"

// ByID scans the collection for the first entity whose airtable_id equals
// id. A miss is a not-found condition, not an error. Collections are small
// enough that the linear scan costs nothing worth indexing away.
func ByID(entities []listing.Entity, id string) (listing.Entity, bool) {
	for _, e := range entities {
		if e == nil {
			continue
		}
		if e.AirtableID() == id {
			return e, true
		}
	}
	return nil, false
}
