package query

import (
	"strconv"
	"strings"

	"github.com/Jairajmehra/projects-api/internal/listing"
)

// ResidentialFilter holds the optional criteria for residential property
// queries. Zero values mean "no constraint"; supplied criteria are
// AND-combined.
type ResidentialFilter struct {
	PriceMin        *float64
	PriceMax        *float64
	BHK             []string
	TransactionType string
	PropertyTypes   []string
	Localities      []string
}

// CommercialFilter is the commercial variant; commercial listings carry no
// bhk field.
type CommercialFilter struct {
	PriceMin        *float64
	PriceMax        *float64
	TransactionType string
	PropertyTypes   []string
	Localities      []string
}

// parsePrice normalizes a stored price to a number. Text prices may carry
// thousands separators or a rupee glyph; anything that still fails to parse
// leaves the property out of every price-bounded query.
func parsePrice(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		cleaned := strings.ReplaceAll(x, ",", "")
		cleaned = strings.ReplaceAll(cleaned, "₹", "")
		cleaned = strings.TrimSpace(cleaned)
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// lowerTrimmed normalizes caller-supplied criteria values once per filter
// pass.
func lowerTrimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, strings.ToLower(strings.TrimSpace(v)))
	}
	return out
}

// entityLocalities returns the property's locality values lowercased.
// Formatters emit []string, but a scalar string is still tolerated.
func entityLocalities(e listing.Entity) []string {
	vals := e.Strings("locality")
	if vals == nil {
		if s := e.Str("locality"); s != "" {
			vals = []string{s}
		}
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		out = append(out, strings.ToLower(v))
	}
	return out
}

func matchPrice(e listing.Entity, priceMin, priceMax *float64) bool {
	if priceMin == nil && priceMax == nil {
		return true
	}
	price, ok := parsePrice(e["price"])
	if !ok {
		return false
	}
	if priceMin != nil && price < *priceMin {
		return false
	}
	if priceMax != nil && price > *priceMax {
		return false
	}
	return true
}

// matchCommon evaluates the criteria shared by both property kinds. The
// criteria lists must already be lowercased and trimmed.
func matchCommon(e listing.Entity, priceMin, priceMax *float64, transactionType string, propertyTypes, localities []string) bool {
	if !matchPrice(e, priceMin, priceMax) {
		return false
	}
	// Transaction type is an exact, case-sensitive match.
	if transactionType != "" && e.Str("transactionType") != transactionType {
		return false
	}
	if len(propertyTypes) > 0 {
		propType := strings.ToLower(e.Str("propertyType"))
		found := false
		for _, t := range propertyTypes {
			if propType == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(localities) > 0 {
		propLocalities := entityLocalities(e)
		found := false
		for _, want := range localities {
			for _, have := range propLocalities {
				if want == have {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Apply filters the residential collection. Nil entries are skipped, and a
// property only survives when it passes every supplied criterion. bhk is a
// lowercase substring match so a query for "3" matches "3 BHK".
func (f ResidentialFilter) Apply(properties []listing.Entity) []listing.Entity {
	propertyTypes := lowerTrimmed(f.PropertyTypes)
	localities := lowerTrimmed(f.Localities)
	bhkValues := make([]string, 0, len(f.BHK))
	for _, b := range f.BHK {
		bhkValues = append(bhkValues, strings.ToLower(b))
	}

	filtered := []listing.Entity{}
	for _, e := range properties {
		if e == nil {
			continue
		}
		if !matchCommon(e, f.PriceMin, f.PriceMax, f.TransactionType, propertyTypes, localities) {
			continue
		}
		if len(bhkValues) > 0 {
			propBHK := strings.ToLower(e.Str("bhk"))
			found := false
			for _, b := range bhkValues {
				if strings.Contains(propBHK, b) {
					found = true
					break
				}
			}
			if !found {
				continue
			}
		}
		filtered = append(filtered, e)
	}
	return filtered
}

// Apply filters the commercial collection with the shared criteria only.
func (f CommercialFilter) Apply(properties []listing.Entity) []listing.Entity {
	propertyTypes := lowerTrimmed(f.PropertyTypes)
	localities := lowerTrimmed(f.Localities)

	filtered := []listing.Entity{}
	for _, e := range properties {
		if e == nil {
			continue
		}
		if !matchCommon(e, f.PriceMin, f.PriceMax, f.TransactionType, propertyTypes, localities) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}
