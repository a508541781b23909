// Package listing defines the cached entity shape and the per-dataset record
// formatters that translate raw Airtable rows into it.
package listing

import "strings"

// Entity is one formatted listing record: a flat field-name to value mapping
// serialized as-is to clients. Values are strings, numbers passed through
// from the source, or []string for normalized list fields. A nil Entity marks
// a record the formatter rejected; every consumer must skip nil entries.
type Entity map[string]any

// Str returns the field as a string, or "" when absent or not a string.
func (e Entity) Str(key string) string {
	if e == nil {
		return ""
	}
	s, _ := e[key].(string)
	return s
}

// Strings returns the field as a string list, or nil when absent.
func (e Entity) Strings(key string) []string {
	if e == nil {
		return nil
	}
	v, _ := e[key].([]string)
	return v
}

// AirtableID returns the opaque primary key carried by project and property
// entities.
func (e Entity) AirtableID() string { return e.Str("airtable_id") }

// Name returns the display name used by the prefix indices.
func (e Entity) Name() string { return e.Str("name") }

// CoordinateString returns the raw "lat,lng" value, checking the lowercase
// key first and the capitalized one second. Commercial projects inherited the
// capitalized key from the source schema; the viewport filter depends on the
// dual lookup, so it is kept rather than normalized.
func (e Entity) CoordinateString() string {
	if s := e.Str("coordinates"); s != "" {
		return s
	}
	return e.Str("Coordinates")
}

// toStrings normalizes a raw field that is sometimes a scalar string and
// sometimes a list into a flat []string. Empty values collapse to nil.
func toStrings(v any) []string {
	switch x := v.(type) {
	case string:
		if x == "" {
			return nil
		}
		return []string{x}
	case []string:
		return x
	case []any:
		var out []string
		for _, item := range x {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// firstCommaSplit returns the first element of a comma-joined string.
func firstCommaSplit(s string) string {
	if i := strings.IndexByte(s, ','); i >= 0 {
		return s[:i]
	}
	return s
}
