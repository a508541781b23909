package query

import (
	"sort"
	"strings"

	"github.com/Jairajmehra/projects-api/internal/listing"
)

// SearchByNamePrefix returns every entity whose lowercased name starts with
// the term, sorted alphabetically by lowercased name. The term must already
// be lowercased and trimmed (the handler validates it is non-empty).
//
// The scan is linear over the distinct index keys, not a trie; collections
// top out in the low thousands so this stays cheap. Positions are collected
// as a set because overlapping keys could repeat, and the result is re-sorted
// since set iteration order is unspecified.
func SearchByNamePrefix(index map[string][]int, collection []listing.Entity, term string) []listing.Entity {
	seen := make(map[int]struct{})
	for key, positions := range index {
		if strings.HasPrefix(key, term) {
			for _, p := range positions {
				seen[p] = struct{}{}
			}
		}
	}
	out := make([]listing.Entity, 0, len(seen))
	for p := range seen {
		if p >= 0 && p < len(collection) && collection[p] != nil {
			out = append(out, collection[p])
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name()) < strings.ToLower(out[j].Name())
	})
	return out
}
