// Package query implements the read-side algorithms over cache collections:
// geographic viewport filtering, attribute filtering, name-prefix search,
// offset/limit pagination and point lookup. Everything here is pure,
// synchronous and in-memory.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Jairajmehra/projects-api/internal/listing"
)

// ErrInvalidParameter marks request parameter validation failures; handlers
// map it to HTTP 400 with the wrapped message.
var ErrInvalidParameter = errors.New("invalid parameter")

// Viewport is a rectangular geographic bounding box. Construct through
// NewViewport so the bounds invariants hold.
type Viewport struct {
	MinLat float64 `json:"minLat"`
	MaxLat float64 `json:"maxLat"`
	MinLng float64 `json:"minLng"`
	MaxLng float64 `json:"maxLng"`
}

// NewViewport parses and validates the four bound parameters. Any
// non-numeric value, min above max, or out-of-range latitude/longitude fails
// with ErrInvalidParameter.
func NewViewport(minLat, maxLat, minLng, maxLng string) (Viewport, error) {
	vals := [4]float64{}
	for i, raw := range [4]string{minLat, maxLat, minLng, maxLng} {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return Viewport{}, fmt.Errorf("%w: all viewport parameters must be numeric", ErrInvalidParameter)
		}
		vals[i] = v
	}
	vp := Viewport{MinLat: vals[0], MaxLat: vals[1], MinLng: vals[2], MaxLng: vals[3]}
	if vp.MinLat > vp.MaxLat || vp.MinLng > vp.MaxLng {
		return Viewport{}, fmt.Errorf("%w: min values cannot be greater than max values", ErrInvalidParameter)
	}
	if vp.MinLat < -90 || vp.MinLat > 90 || vp.MaxLat < -90 || vp.MaxLat > 90 {
		return Viewport{}, fmt.Errorf("%w: latitude must be between -90 and 90 degrees", ErrInvalidParameter)
	}
	if vp.MinLng < -180 || vp.MinLng > 180 || vp.MaxLng < -180 || vp.MaxLng > 180 {
		return Viewport{}, fmt.Errorf("%w: longitude must be between -180 and 180 degrees", ErrInvalidParameter)
	}
	return vp, nil
}

// Contains tests the point against the viewport, bounds inclusive.
func (v Viewport) Contains(lat, lng float64) bool {
	return v.MinLat <= lat && lat <= v.MaxLat && v.MinLng <= lng && lng <= v.MaxLng
}

// ParseCoordinates parses a "lat,lng" pair. Fails on anything that is not
// exactly two in-range floats.
func ParseCoordinates(s string) (lat, lng float64, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed coordinates %q", s)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed coordinates %q", s)
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("malformed coordinates %q", s)
	}
	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("latitude out of range in %q", s)
	}
	if lng < -180 || lng > 180 {
		return 0, 0, fmt.Errorf("longitude out of range in %q", s)
	}
	return lat, lng, nil
}

// FilterViewport keeps the entities whose coordinates fall inside the
// viewport, preserving relative order. Entities with empty or malformed
// coordinates are silently dropped, never an error.
func FilterViewport(entities []listing.Entity, vp Viewport) []listing.Entity {
	filtered := []listing.Entity{}
	for _, e := range entities {
		if e == nil {
			continue
		}
		coordStr := e.CoordinateString()
		if coordStr == "" {
			continue
		}
		lat, lng, err := ParseCoordinates(coordStr)
		if err != nil {
			continue
		}
		if vp.Contains(lat, lng) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// PageParams carries the viewport-path pagination inputs before clamping.
type PageParams struct {
	Page   int
	Limit  int
	Offset int
}

// ViewportResult is the outcome of a viewport query: the page slice plus the
// echoed, clamped parameters the response reports.
type ViewportResult struct {
	Items    []listing.Entity
	Total    int
	Page     int
	Limit    int
	Offset   int
	HasMore  bool
	Message  string
	Viewport Viewport
}

// InViewport filters the collection by viewport and paginates the result.
// Limit is clamped to [1,500], page to >=1, offset to >=0; the effective
// start is (page-1)*limit+offset. A start beyond the filtered set yields an
// empty page with an informational message, not an error.
func InViewport(entities []listing.Entity, vp Viewport, pp PageParams) ViewportResult {
	filtered := FilterViewport(entities, vp)

	page := max(1, pp.Page)
	limit := min(500, max(1, pp.Limit))
	offset := max(0, pp.Offset)
	start := (page-1)*limit + offset
	end := start + limit

	res := ViewportResult{
		Total:    len(filtered),
		Page:     page,
		Limit:    limit,
		Offset:   offset,
		Viewport: vp,
	}
	if start >= len(filtered) {
		res.Items = []listing.Entity{}
		res.HasMore = false
		res.Message = "Page number exceeds available data for this viewport"
		return res
	}
	if end > len(filtered) {
		end = len(filtered)
	}
	res.Items = filtered[start:end]
	res.HasMore = end < len(filtered)
	return res
}
