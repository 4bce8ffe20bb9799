// Package domain defines the value types shared by the search pipeline:
// requests, resolved coordinates, listings, and the persisted cache record.
// These types carry no behavior beyond small normalization helpers so they can
// be passed freely between the cache, geocoding, aggregation, and HTTP layers.
package domain

import (
	"sort"
	"strings"
)

// Filters narrows aggregated listings. Nil pointers mean "not set".
type Filters struct {
	Amenities   []string `json:"amenities,omitempty"`
	MinPrice    *int     `json:"min_price,omitempty"`
	MaxPrice    *int     `json:"max_price,omitempty"`
	MinBedrooms *int     `json:"min_bedrooms,omitempty"`
}

// SearchRequest is a single user submission. It is treated as immutable once
// handed to the search service.
type SearchRequest struct {
	LocationText string   `json:"location"`
	RadiusMiles  float64  `json:"radius"`
	Filters      Filters  `json:"filters"`
	Sources      []string `json:"sources,omitempty"`
}

// Coordinates is a resolved search center.
type Coordinates struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formatted_address"`
}

// NormalizeSet lower-cases and trims each element, drops empties and
// duplicates, and returns the result sorted. A nil or empty input yields nil.
func NormalizeSet(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.Join(strings.Fields(s), " "))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
