package domain

// Listing is a single apartment candidate produced by a listing source.
//
// Fields:
//   - ID: stable for a given (source, search cell, index) so repeated
//     aggregation runs produce comparable records.
//   - DistanceMiles: derived from the search center during aggregation.
//   - Amenities: lower-case amenity names, sorted.
//   - AvailableDate: calendar date in YYYY-MM-DD form.
type Listing struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Address       string   `json:"address"`
	City          string   `json:"city,omitempty"`
	State         string   `json:"state,omitempty"`
	Zipcode       string   `json:"zipcode,omitempty"`
	Price         int      `json:"price"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     float64  `json:"bathrooms"`
	SqftArea      int      `json:"sqft"`
	Lat           float64  `json:"lat"`
	Lng           float64  `json:"lng"`
	DistanceMiles float64  `json:"distance_miles"`
	Amenities     []string `json:"amenities"`
	Source        string   `json:"source"`
	ImageRef      string   `json:"image_url"`
	Description   string   `json:"description,omitempty"`
	AvailableDate string   `json:"available_date"`
}

// HasAmenities reports whether the listing offers every amenity in want.
// Comparison is against normalized (lower-case, trimmed) names.
func (l Listing) HasAmenities(want []string) bool {
	if len(want) == 0 {
		return true
	}
	have := make(map[string]struct{}, len(l.Amenities))
	for _, a := range l.Amenities {
		have[a] = struct{}{}
	}
	for _, w := range want {
		if _, ok := have[w]; !ok {
			return false
		}
	}
	return true
}

// SearchResult is what a search returns, and what is cached per search key.
// FromCache is derived on read and never persisted.
type SearchResult struct {
	Listings  []Listing   `json:"listings"`
	Center    Coordinates `json:"center"`
	FromCache bool        `json:"-"`
}
