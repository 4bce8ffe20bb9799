package search

import (
	"math"
	"strings"
)

// Source describes one listing provider the aggregator can synthesize
// candidates for. Bias and Phase keep different sources from overlapping.
type Source struct {
	// Name is the lower-case identifier used in requests ("zillow").
	Name string
	// Label is the display name stored on listings ("Zillow").
	Label string
	// BiasNorth/BiasEast shift every candidate by a fraction of the radius.
	BiasNorth float64
	BiasEast  float64
	// Phase rotates the placement spiral, in radians.
	Phase float64
	// PriceOffset is added to every formulaic price.
	PriceOffset int
}

// DefaultSources are the providers a real integration would plug into.
var DefaultSources = []Source{
	{Name: "zillow", Label: "Zillow", BiasNorth: 0.02, BiasEast: 0.01, Phase: 0, PriceOffset: 0},
	{Name: "realtor", Label: "Realtor.com", BiasNorth: -0.015, BiasEast: 0.02, Phase: math.Pi / 9, PriceOffset: 75},
	{Name: "apartments", Label: "Apartments.com", BiasNorth: 0.01, BiasEast: -0.02, Phase: 2 * math.Pi / 9, PriceOffset: -50},
}

// amenityCatalog is the closed set of amenities listings may carry.
var amenityCatalog = []string{
	"parking", "gym", "pool", "pet friendly", "laundry",
	"balcony", "dishwasher", "air conditioning", "heating", "storage",
}

// Amenities returns a copy of the known amenity names.
func Amenities() []string {
	out := make([]string, len(amenityCatalog))
	copy(out, amenityCatalog)
	return out
}

// SourceNames returns the names of DefaultSources in declaration order.
func SourceNames() []string {
	out := make([]string, len(DefaultSources))
	for i, s := range DefaultSources {
		out[i] = s.Name
	}
	return out
}

var (
	streetNames = []string{
		"main st", "oak ave", "maple st", "park ave", "cedar ln",
		"river rd", "elm st", "broad st", "pine st", "market st",
	}
	titleWords = []string{
		"sunny", "modern", "spacious", "renovated", "cozy",
		"bright", "quiet", "updated", "classic", "luxury",
	}
	descriptions = []string{
		"Beautiful apartment in a great location with modern amenities.",
		"Steps from transit, shops, and restaurants.",
		"Freshly renovated unit with plenty of natural light.",
		"Quiet building with responsive on-site management.",
		"Open floor plan with an updated kitchen.",
	}
	imageRefs = []string{
		"https://images.unsplash.com/photo-1545324418-cc1a3fa10c00?w=400&h=300&fit=crop",
		"https://images.unsplash.com/photo-1522708323590-d24dbb6b0267?w=400&h=300&fit=crop",
		"https://images.unsplash.com/photo-1502672260066-6bc176c6864a?w=400&h=300&fit=crop",
		"https://images.unsplash.com/photo-1460317442991-0ec209397118?w=400&h=300&fit=crop",
		"https://images.unsplash.com/photo-1512917774080-9991f1c4c750?w=400&h=300&fit=crop",
		"https://images.unsplash.com/photo-1564013799919-ab600027ffc6?w=400&h=300&fit=crop",
		"https://images.unsplash.com/photo-1502672023488-70e25813eb80?w=400&h=300&fit=crop",
	}
)

// SelectSources returns the DefaultSources named in names, in the order given,
// plus the names that matched nothing. Matching ignores case and surrounding
// blanks; duplicates are dropped.
func SelectSources(names []string) (selected []Source, unknown []string) {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		key := strings.ToLower(strings.TrimSpace(n))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		found := false
		for _, s := range DefaultSources {
			if s.Name == key {
				selected = append(selected, s)
				found = true
				break
			}
		}
		if !found {
			unknown = append(unknown, n)
		}
	}
	return selected, unknown
}
