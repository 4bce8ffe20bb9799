// Package services – SearchService
//
// This file implements SearchService, the single entry point presentation
// code uses to run a search. It validates the request, consults the result
// cache, and on a miss resolves the location, aggregates listings and writes
// the result (and optionally each listing) back to the cache.
//
// A cache hit never geocodes: cached results already embed the resolved
// center.
//
// Observability: Search is OpenTelemetry-instrumented; the span records the
// cache outcome and the listing count.

package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-apartment-search/internal/cache"
	"github.com/tbourn/go-apartment-search/internal/domain"
	"github.com/tbourn/go-apartment-search/internal/geocode"
	"github.com/tbourn/go-apartment-search/internal/search"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxRadiusMiles caps the search radius when MaxRadiusMiles is unset.
const DefaultMaxRadiusMiles = 100.0

// Geocoder resolves free text into a search center.
type Geocoder interface {
	Resolve(ctx context.Context, text string) (domain.Coordinates, error)
}

// ListingGenerator produces filtered, sorted listings around a center.
type ListingGenerator interface {
	Generate(center domain.Coordinates, radiusMiles float64, sources []string, f domain.Filters) []domain.Listing
}

// SearchService orchestrates cache lookup, geocoding and aggregation.
type SearchService struct {
	Cache      *cache.Cache
	Geocoder   Geocoder
	Aggregator ListingGenerator

	// MaxRadiusMiles bounds RadiusMiles; zero means DefaultMaxRadiusMiles.
	MaxRadiusMiles float64
	// RememberListings stores each returned listing in the long-lived tier
	// unless a fresh copy is already there.
	RememberListings bool
}

// Search runs req and reports whether the result came from the cache.
// Blank locations and out-of-range radii are rejected before any cache or
// network access.
func (s *SearchService) Search(ctx context.Context, req domain.SearchRequest) (domain.SearchResult, error) {
	tr := otel.Tracer("services/SearchService")
	ctx, span := tr.Start(ctx, "Search",
		trace.WithAttributes(
			attribute.Float64("search.radius_miles", req.RadiusMiles),
			attribute.Int("search.sources", len(req.Sources)),
		),
	)
	defer span.End()

	if err := s.validate(req); err != nil {
		return domain.SearchResult{}, err
	}

	key := search.CanonicalKey(req)
	if s.Cache != nil {
		if res, ok := s.Cache.Results.Get(ctx, key); ok {
			res.FromCache = true
			if res.Listings == nil {
				res.Listings = []domain.Listing{}
			}
			span.SetAttributes(
				attribute.Bool("search.from_cache", true),
				attribute.Int("search.listings", len(res.Listings)),
			)
			return res, nil
		}
	}

	center, err := s.Geocoder.Resolve(ctx, req.LocationText)
	if err != nil {
		if errors.Is(err, geocode.ErrEmptyLocation) {
			return domain.SearchResult{}, ErrEmptyLocation
		}
		span.RecordError(err)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.SearchResult{}, err
		}
		return domain.SearchResult{}, fmt.Errorf("%w: %v", ErrGeocodeFailed, err)
	}

	res := domain.SearchResult{
		Listings: s.Aggregator.Generate(center, req.RadiusMiles, req.Sources, req.Filters),
		Center:   center,
	}

	// Results computed for an abandoned request are returned but never
	// cached.
	if s.Cache != nil && ctx.Err() == nil {
		s.Cache.Results.Set(ctx, key, res)
		if s.RememberListings {
			s.remember(ctx, res.Listings)
		}
	}

	span.SetAttributes(
		attribute.Bool("search.from_cache", false),
		attribute.Int("search.listings", len(res.Listings)),
	)
	return res, nil
}

func (s *SearchService) validate(req domain.SearchRequest) error {
	if strings.TrimSpace(req.LocationText) == "" {
		return ErrEmptyLocation
	}
	maxR := s.MaxRadiusMiles
	if maxR <= 0 {
		maxR = DefaultMaxRadiusMiles
	}
	r := req.RadiusMiles
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 || r > maxR {
		return ErrInvalidRadius
	}
	return nil
}

func (s *SearchService) remember(ctx context.Context, listings []domain.Listing) {
	added := 0
	for _, l := range listings {
		if s.Cache.Listings.SetIfAbsent(ctx, l.ID, l) {
			added++
		}
	}
	if added > 0 {
		log.Debug().Int("added", added).Int("total", len(listings)).Msg("remembered listings")
	}
}
