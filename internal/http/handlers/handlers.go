// Package handlers provides HTTP handler implementations for the public API.
//
// This file declares the service contracts the handlers consume and the
// Handlers type that binds them to routes:
//   - POST   /search, GET /search   (run a search)
//   - GET    /listings/{id}         (remembered listing)
//   - GET    /amenities, /sources   (catalogues)
//   - DELETE /cache                 (clear both cache tiers)
//   - POST   /cache/sweep           (drop stale entries now)
//   - GET    /api/geocode           (geocoding proxy)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
package handlers

import (
	"context"

	"github.com/tbourn/go-apartment-search/internal/domain"
	"github.com/tbourn/go-apartment-search/internal/services"
)

//
// Service contracts (context-aware)
//

// SearchService runs searches.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type SearchService interface {
	Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error)
}

// ListingService serves remembered listings, catalogues and cache upkeep.
type ListingService interface {
	Get(ctx context.Context, id string) (domain.Listing, error)
	Amenities() []services.Amenity
	Sources() []string
	ClearCache(ctx context.Context) int
	SweepCache(ctx context.Context) int
}

// GeocodeLookup is the provider call behind the geocoding proxy endpoint.
// It returns geocode.ErrNotConfigured or geocode.ErrNoResult for the two
// expected failure modes.
type GeocodeLookup interface {
	Lookup(ctx context.Context, text string) (domain.Coordinates, string, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints. It depends on abstract service interfaces to
// keep transport concerns separate from business logic.
type Handlers struct {
	searchSvc  SearchService
	listingSvc ListingService
	geocoder   GeocodeLookup
}

// New constructs a Handlers bound to the given services. geocoder may be nil,
// in which case the proxy endpoint reports not_configured.
func New(searchSvc SearchService, listingSvc ListingService, geocoder GeocodeLookup) *Handlers {
	return &Handlers{searchSvc: searchSvc, listingSvc: listingSvc, geocoder: geocoder}
}
