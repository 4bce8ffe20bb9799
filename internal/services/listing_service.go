package services

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tbourn/go-apartment-search/internal/cache"
	"github.com/tbourn/go-apartment-search/internal/domain"
	"github.com/tbourn/go-apartment-search/internal/search"
)

// Amenity is one entry of the amenity catalogue. Value is what clients send
// in filters; Label is for display.
type Amenity struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ListingService serves remembered listings, the amenity catalogue and cache
// maintenance.
type ListingService struct {
	Cache *cache.Cache

	// Catalog reports the enabled sources; nil means every known source.
	Catalog interface{ Sources() []string }

	// Locale used for amenity labels; zero means English.
	Locale language.Tag
}

// Get returns a remembered listing by id.
func (s *ListingService) Get(ctx context.Context, id string) (domain.Listing, error) {
	id = strings.TrimSpace(id)
	if id == "" || s.Cache == nil {
		return domain.Listing{}, ErrListingNotFound
	}
	l, ok := s.Cache.Listings.Get(ctx, id)
	if !ok {
		return domain.Listing{}, ErrListingNotFound
	}
	return l, nil
}

// Amenities returns the amenity catalogue in catalogue order.
func (s *ListingService) Amenities() []Amenity {
	tag := s.Locale
	if tag == language.Und {
		tag = language.English
	}
	title := cases.Title(tag)

	names := search.Amenities()
	out := make([]Amenity, len(names))
	for i, n := range names {
		out[i] = Amenity{Value: n, Label: title.String(n)}
	}
	return out
}

// Sources returns the enabled listing source names.
func (s *ListingService) Sources() []string {
	if s.Catalog != nil {
		return s.Catalog.Sources()
	}
	return search.SourceNames()
}

// ClearCache removes every cached result and remembered listing.
func (s *ListingService) ClearCache(ctx context.Context) int {
	if s.Cache == nil {
		return 0
	}
	return s.Cache.Clear(ctx)
}

// SweepCache removes stale entries from both cache tiers.
func (s *ListingService) SweepCache(ctx context.Context) int {
	if s.Cache == nil {
		return 0
	}
	return s.Cache.SweepStale(ctx)
}
