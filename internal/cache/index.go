package cache

import (
	"strings"

	"github.com/Jairajmehra/projects-api/internal/listing"
)

// BuildNameIndex maps each entity's lowercased exact name to its positions in
// the collection. The index is rebuilt in full whenever its collection is
// rebuilt; there is no incremental maintenance. Nil entries and entities
// without a name are left out.
func BuildNameIndex(entities []listing.Entity) map[string][]int {
	idx := make(map[string][]int)
	for i, e := range entities {
		if e == nil {
			continue
		}
		name := e.Name()
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		idx[key] = append(idx[key], i)
	}
	return idx
}
